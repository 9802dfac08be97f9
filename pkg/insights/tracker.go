package insights

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// Summary aggregates the traffic a public board page received.
type Summary struct {
	BoardID          string      `json:"boardId"`
	TotalVisits      int         `json:"totalVisits"`
	VisitsLast30Days int         `json:"visitsLast30Days"`
	VisitsToday      int         `json:"visitsToday"`
	TotalClicks      int         `json:"totalClicks"`
	TopClickedLinks  []LinkCount `json:"topClickedLinks"`
	Daily            []DayCount  `json:"daily"`
}

// LinkCount is one entry of the top clicked links ranking.
type LinkCount struct {
	URL    string `json:"url"`
	Clicks int    `json:"clicks"`
}

// DayCount is the view count of one calendar day.
type DayCount struct {
	Day   string `json:"day"`
	Views int    `json:"views"`
}

// Telemetry allows the tracker to emit structured events.
type Telemetry interface {
	Record(ctx context.Context, event string, payload map[string]any)
}

type noopTelemetry struct{}

func (noopTelemetry) Record(context.Context, string, map[string]any) {}

// Options configures the tracker.
type Options struct {
	// Now overrides the clock, used by tests.
	Now       func() time.Time
	Telemetry Telemetry
	// TopLinks caps the length of the clicked-links ranking.
	TopLinks int
}

// Tracker records board page views and link clicks in memory, bucketing views
// per calendar day in UTC.
type Tracker struct {
	mu        sync.RWMutex
	now       func() time.Time
	telemetry Telemetry
	topLinks  int
	boards    map[string]*boardStats
}

type boardStats struct {
	totalViews  int
	viewsPerDay map[string]int
	totalClicks int
	clicks      map[string]int
}

// NewTracker builds a tracker with safe defaults.
func NewTracker(opts Options) *Tracker {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	telemetry := opts.Telemetry
	if telemetry == nil {
		telemetry = noopTelemetry{}
	}
	topLinks := opts.TopLinks
	if topLinks <= 0 {
		topLinks = 5
	}
	return &Tracker{
		now:       now,
		telemetry: telemetry,
		topLinks:  topLinks,
		boards:    map[string]*boardStats{},
	}
}

// RecordView counts one view of the board's public page.
func (t *Tracker) RecordView(ctx context.Context, boardID string) error {
	if boardID == "" {
		return fmt.Errorf("insights: board id is required")
	}
	day := t.now().UTC().Format(time.DateOnly)
	t.mu.Lock()
	stats := t.statsLocked(boardID)
	stats.totalViews++
	stats.viewsPerDay[day]++
	t.mu.Unlock()
	t.telemetry.Record(ctx, "insights.view", map[string]any{"board_id": boardID})
	return nil
}

// RecordClick counts one click on a board link.
func (t *Tracker) RecordClick(ctx context.Context, boardID, linkURL string) error {
	if boardID == "" {
		return fmt.Errorf("insights: board id is required")
	}
	t.mu.Lock()
	stats := t.statsLocked(boardID)
	stats.totalClicks++
	if linkURL != "" {
		stats.clicks[linkURL]++
	}
	t.mu.Unlock()
	t.telemetry.Record(ctx, "insights.click", map[string]any{"board_id": boardID, "url": linkURL})
	return nil
}

// Summary aggregates the board's traffic. Boards without any recorded traffic
// return an empty summary rather than an error.
func (t *Tracker) Summary(_ context.Context, boardID string) (Summary, error) {
	if boardID == "" {
		return Summary{}, fmt.Errorf("insights: board id is required")
	}
	now := t.now().UTC()
	today := now.Format(time.DateOnly)
	cutoff := now.AddDate(0, 0, -30)

	t.mu.RLock()
	defer t.mu.RUnlock()

	summary := Summary{BoardID: boardID}
	stats, ok := t.boards[boardID]
	if !ok {
		return summary, nil
	}
	summary.TotalVisits = stats.totalViews
	summary.TotalClicks = stats.totalClicks
	summary.VisitsToday = stats.viewsPerDay[today]

	for day, views := range stats.viewsPerDay {
		parsed, err := time.Parse(time.DateOnly, day)
		if err != nil {
			continue
		}
		if !parsed.Before(cutoff) {
			summary.VisitsLast30Days += views
		}
		summary.Daily = append(summary.Daily, DayCount{Day: day, Views: views})
	}
	sort.Slice(summary.Daily, func(i, j int) bool { return summary.Daily[i].Day < summary.Daily[j].Day })

	for url, clicks := range stats.clicks {
		summary.TopClickedLinks = append(summary.TopClickedLinks, LinkCount{URL: url, Clicks: clicks})
	}
	sort.Slice(summary.TopClickedLinks, func(i, j int) bool {
		if summary.TopClickedLinks[i].Clicks != summary.TopClickedLinks[j].Clicks {
			return summary.TopClickedLinks[i].Clicks > summary.TopClickedLinks[j].Clicks
		}
		return summary.TopClickedLinks[i].URL < summary.TopClickedLinks[j].URL
	})
	if len(summary.TopClickedLinks) > t.topLinks {
		summary.TopClickedLinks = summary.TopClickedLinks[:t.topLinks]
	}
	return summary, nil
}

func (t *Tracker) statsLocked(boardID string) *boardStats {
	stats, ok := t.boards[boardID]
	if !ok {
		stats = &boardStats{viewsPerDay: map[string]int{}, clicks: map[string]int{}}
		t.boards[boardID] = stats
	}
	return stats
}
