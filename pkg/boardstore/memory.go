package boardstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	boardedit "github.com/goliatone/go-boards/components/boardedit"
	"github.com/goliatone/go-boards/components/boardedit/httpapi"
)

// MemoryStore keeps boards and widgets in memory. It backs the example server
// and tests; swap in a database-backed Store for production use.
type MemoryStore struct {
	mu     sync.RWMutex
	boards map[string]*boardRecord
}

type boardRecord struct {
	board   boardedit.Board
	widgets []boardedit.Widget
	perms   boardedit.Permissions
	nextID  int64
}

// NewMemoryStore builds an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{boards: map[string]*boardRecord{}}
}

var _ httpapi.Store = (*MemoryStore)(nil)

// SeedBoard creates or replaces a board with its widget collection.
func (s *MemoryStore) SeedBoard(board boardedit.Board, widgets []boardedit.Widget, perms boardedit.Permissions) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record := &boardRecord{board: board, perms: perms}
	for _, w := range widgets {
		if w.ID > record.nextID {
			record.nextID = w.ID
		}
		record.widgets = append(record.widgets, cloneWidget(w))
	}
	s.boards[board.ID] = record
}

// Board returns board metadata.
func (s *MemoryStore) Board(_ context.Context, boardID string) (boardedit.Board, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.boards[boardID]
	if !ok {
		return boardedit.Board{}, fmt.Errorf("boardstore: board %s: %w", boardID, boardedit.ErrNotFound)
	}
	return record.board, nil
}

// Widgets returns the board's widgets sorted by order.
func (s *MemoryStore) Widgets(_ context.Context, boardID string) ([]boardedit.Widget, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.boards[boardID]
	if !ok {
		return nil, fmt.Errorf("boardstore: board %s: %w", boardID, boardedit.ErrNotFound)
	}
	out := make([]boardedit.Widget, 0, len(record.widgets))
	for _, w := range record.widgets {
		out = append(out, cloneWidget(w))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

// CreateWidget appends a widget, assigning the next id.
func (s *MemoryStore) CreateWidget(_ context.Context, boardID string, payload boardedit.UpsertWidget) (boardedit.Widget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.boards[boardID]
	if !ok {
		return boardedit.Widget{}, fmt.Errorf("boardstore: board %s: %w", boardID, boardedit.ErrNotFound)
	}
	record.nextID++
	widget := widgetFromUpsert(record.nextID, payload)
	record.widgets = append(record.widgets, widget)
	return cloneWidget(widget), nil
}

// UpdateWidget replaces the widget with the given id.
func (s *MemoryStore) UpdateWidget(_ context.Context, boardID string, widgetID int64, payload boardedit.UpsertWidget) (boardedit.Widget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.boards[boardID]
	if !ok {
		return boardedit.Widget{}, fmt.Errorf("boardstore: board %s: %w", boardID, boardedit.ErrNotFound)
	}
	for i, w := range record.widgets {
		if w.ID == widgetID {
			widget := widgetFromUpsert(widgetID, payload)
			record.widgets[i] = widget
			return cloneWidget(widget), nil
		}
	}
	return boardedit.Widget{}, fmt.Errorf("boardstore: widget %d: %w", widgetID, boardedit.ErrNotFound)
}

// DeleteWidget removes the widget with the given id.
func (s *MemoryStore) DeleteWidget(_ context.Context, boardID string, widgetID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.boards[boardID]
	if !ok {
		return fmt.Errorf("boardstore: board %s: %w", boardID, boardedit.ErrNotFound)
	}
	for i, w := range record.widgets {
		if w.ID == widgetID {
			record.widgets = append(record.widgets[:i], record.widgets[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("boardstore: widget %d: %w", widgetID, boardedit.ErrNotFound)
}

// SyncWidgets replaces the board's collection with the batch: entries carrying
// an id update the matching widget, entries without one are created, and
// persisted widgets absent from the batch are deleted.
func (s *MemoryStore) SyncWidgets(_ context.Context, boardID string, items []boardedit.SyncWidgetItem) ([]boardedit.Widget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.boards[boardID]
	if !ok {
		return nil, fmt.Errorf("boardstore: board %s: %w", boardID, boardedit.ErrNotFound)
	}

	existing := make(map[int64]boardedit.Widget, len(record.widgets))
	for _, w := range record.widgets {
		existing[w.ID] = w
	}

	next := make([]boardedit.Widget, 0, len(items))
	for _, item := range items {
		if item.ID != nil {
			if _, known := existing[*item.ID]; !known {
				return nil, fmt.Errorf("boardstore: widget %d: %w", *item.ID, boardedit.ErrNotFound)
			}
			next = append(next, widgetFromUpsert(*item.ID, item.UpsertWidget))
			continue
		}
		record.nextID++
		next = append(next, widgetFromUpsert(record.nextID, item.UpsertWidget))
	}
	record.widgets = next

	out := make([]boardedit.Widget, 0, len(next))
	for _, w := range next {
		out = append(out, cloneWidget(w))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

// UpdateBoardMeta saves the board's name and headline.
func (s *MemoryStore) UpdateBoardMeta(_ context.Context, boardID string, meta boardedit.BoardMeta) (boardedit.Board, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.boards[boardID]
	if !ok {
		return boardedit.Board{}, fmt.Errorf("boardstore: board %s: %w", boardID, boardedit.ErrNotFound)
	}
	record.board.Name = meta.Name
	record.board.Headline = meta.Headline
	return record.board, nil
}

// Permissions returns the seeded permissions for the board.
func (s *MemoryStore) Permissions(_ context.Context, boardID string) (boardedit.Permissions, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.boards[boardID]
	if !ok {
		return boardedit.Permissions{}, fmt.Errorf("boardstore: board %s: %w", boardID, boardedit.ErrNotFound)
	}
	return record.perms, nil
}

func widgetFromUpsert(id int64, payload boardedit.UpsertWidget) boardedit.Widget {
	config := map[string]any{}
	for k, v := range payload.Config {
		config[k] = v
	}
	return boardedit.Widget{
		ID:      id,
		Type:    payload.Type,
		Title:   payload.Title,
		Layout:  payload.Layout,
		Config:  config,
		Enabled: payload.Enabled,
		Order:   payload.Order,
	}
}

func cloneWidget(w boardedit.Widget) boardedit.Widget {
	config := make(map[string]any, len(w.Config))
	for k, v := range w.Config {
		config[k] = v
	}
	w.Config = config
	return w
}
