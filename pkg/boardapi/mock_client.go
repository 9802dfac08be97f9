package boardapi

import (
	"context"
	"sync"

	boardedit "github.com/goliatone/go-boards/components/boardedit"
)

// MockData seeds deterministic board responses for tests or local demos.
type MockData struct {
	Board       boardedit.Board
	Widgets     []boardedit.Widget
	Permissions boardedit.Permissions
}

// MockClient implements boardedit.API using in-memory fixtures. FailWith makes
// every mutating call return the given error, which lets tests exercise the
// save failure paths.
type MockClient struct {
	mu      sync.RWMutex
	data    MockData
	nextID  int64
	failure error
}

// NewMockClient builds a mock board client from the provided fixtures.
func NewMockClient(data MockData) *MockClient {
	var maxID int64
	for _, w := range data.Widgets {
		if w.ID > maxID {
			maxID = w.ID
		}
	}
	return &MockClient{data: data, nextID: maxID}
}

var (
	_ boardedit.API               = (*MockClient)(nil)
	_ boardedit.PermissionsClient = (*MockClient)(nil)
)

// FailWith makes subsequent mutations fail with err. Pass nil to recover.
func (c *MockClient) FailWith(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failure = err
}

// GetBoard returns the fixture board.
func (c *MockClient) GetBoard(context.Context, string) (boardedit.Board, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.data.Board, nil
}

// GetWidgets returns a copy of the fixture widgets.
func (c *MockClient) GetWidgets(context.Context, string) ([]boardedit.Widget, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return cloneWidgets(c.data.Widgets), nil
}

// CreateWidget appends a widget, assigning the next id.
func (c *MockClient) CreateWidget(_ context.Context, _ string, payload boardedit.UpsertWidget) (boardedit.Widget, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failure != nil {
		return boardedit.Widget{}, c.failure
	}
	c.nextID++
	widget := widgetFromUpsert(c.nextID, payload)
	c.data.Widgets = append(c.data.Widgets, widget)
	return widget, nil
}

// UpdateWidget replaces the widget with the given id.
func (c *MockClient) UpdateWidget(_ context.Context, _ string, widgetID int64, payload boardedit.UpsertWidget) (boardedit.Widget, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failure != nil {
		return boardedit.Widget{}, c.failure
	}
	for i, w := range c.data.Widgets {
		if w.ID == widgetID {
			widget := widgetFromUpsert(widgetID, payload)
			c.data.Widgets[i] = widget
			return widget, nil
		}
	}
	return boardedit.Widget{}, boardedit.ErrNotFound
}

// DeleteWidget removes the widget with the given id.
func (c *MockClient) DeleteWidget(_ context.Context, _ string, widgetID int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failure != nil {
		return c.failure
	}
	for i, w := range c.data.Widgets {
		if w.ID == widgetID {
			c.data.Widgets = append(c.data.Widgets[:i], c.data.Widgets[i+1:]...)
			return nil
		}
	}
	return boardedit.ErrNotFound
}

// UpdateBoardMeta updates the fixture board's name and headline.
func (c *MockClient) UpdateBoardMeta(_ context.Context, _ string, meta boardedit.BoardMeta) (boardedit.Board, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failure != nil {
		return boardedit.Board{}, c.failure
	}
	c.data.Board.Name = meta.Name
	c.data.Board.Headline = meta.Headline
	return c.data.Board, nil
}

// GetBoardPermissions returns the fixture permissions.
func (c *MockClient) GetBoardPermissions(context.Context, string) (boardedit.Permissions, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.data.Permissions, nil
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

func cloneWidgets(widgets []boardedit.Widget) []boardedit.Widget {
	out := make([]boardedit.Widget, len(widgets))
	for i, w := range widgets {
		config := make(map[string]any, len(w.Config))
		for k, v := range w.Config {
			config[k] = v
		}
		w.Config = config
		out[i] = w
	}
	return out
}
