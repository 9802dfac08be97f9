package insights

import (
	"bytes"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

const defaultChartHeight = "320px"

// ChartRenderer renders summary data as embeddable chart HTML. Rendered
// charts are memoized per board for the configured TTL.
type ChartRenderer struct {
	ttl     time.Duration
	mu      sync.RWMutex
	entries map[string]cachedChart
}

type cachedChart struct {
	html    string
	expires time.Time
}

// NewChartRenderer builds a renderer. A zero TTL disables caching.
func NewChartRenderer(ttl time.Duration) *ChartRenderer {
	return &ChartRenderer{ttl: ttl, entries: map[string]cachedChart{}}
}

// ViewsChart renders the last-30-days view counts as a line chart.
func (r *ChartRenderer) ViewsChart(summary Summary) (string, error) {
	key := fmt.Sprintf("views:%s:%d", summary.BoardID, summary.TotalVisits)
	return r.getOrRender(key, func() (string, error) {
		line := charts.NewLine()
		line.SetGlobalOptions(globalChartOptions("Page views")...)
		xAxis := make([]string, 0, len(summary.Daily))
		data := make([]opts.LineData, 0, len(summary.Daily))
		for _, day := range summary.Daily {
			xAxis = append(xAxis, day.Day)
			data = append(data, opts.LineData{Value: day.Views})
		}
		line.SetXAxis(xAxis)
		line.AddSeries("Views", data)
		line.SetSeriesOptions(charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}))
		return renderChart(line)
	})
}

// TopLinksChart renders the clicked-links ranking as a bar chart.
func (r *ChartRenderer) TopLinksChart(summary Summary) (string, error) {
	key := fmt.Sprintf("links:%s:%d", summary.BoardID, summary.TotalClicks)
	return r.getOrRender(key, func() (string, error) {
		bar := charts.NewBar()
		bar.SetGlobalOptions(globalChartOptions("Top clicked links")...)
		xAxis := make([]string, 0, len(summary.TopClickedLinks))
		data := make([]opts.BarData, 0, len(summary.TopClickedLinks))
		for _, link := range summary.TopClickedLinks {
			xAxis = append(xAxis, link.URL)
			data = append(data, opts.BarData{Value: link.Clicks})
		}
		bar.SetXAxis(xAxis)
		bar.AddSeries("Clicks", data)
		return renderChart(bar)
	})
}

func (r *ChartRenderer) getOrRender(key string, render func() (string, error)) (string, error) {
	if html, ok := r.get(key); ok {
		return html, nil
	}
	html, err := render()
	if err != nil {
		return "", err
	}
	r.set(key, html)
	return html, nil
}

func (r *ChartRenderer) get(key string) (string, bool) {
	if r == nil || r.ttl <= 0 {
		return "", false
	}
	r.mu.RLock()
	entry, ok := r.entries[key]
	r.mu.RUnlock()
	if !ok || time.Now().After(entry.expires) {
		return "", false
	}
	return entry.html, true
}

func (r *ChartRenderer) set(key, html string) {
	if r == nil || r.ttl <= 0 {
		return
	}
	r.mu.Lock()
	r.entries[key] = cachedChart{html: html, expires: time.Now().Add(r.ttl)}
	r.mu.Unlock()
}

func globalChartOptions(title string) []charts.GlobalOpts {
	return []charts.GlobalOpts{
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: defaultChartHeight}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	}
}

func renderChart(renderable interface{ Render(io.Writer) error }) (string, error) {
	var buf bytes.Buffer
	if err := renderable.Render(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
