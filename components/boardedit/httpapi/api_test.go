package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	boardedit "github.com/goliatone/go-boards/components/boardedit"
)

type stubStore struct {
	createCalls int
	syncCalls   int
	lastSync    []boardedit.SyncWidgetItem
	err         error
}

func (s *stubStore) Board(context.Context, string) (boardedit.Board, error) {
	if s.err != nil {
		return boardedit.Board{}, s.err
	}
	return boardedit.Board{ID: "b1", Name: "Board"}, nil
}

func (s *stubStore) Widgets(context.Context, string) ([]boardedit.Widget, error) {
	return nil, s.err
}

func (s *stubStore) CreateWidget(_ context.Context, _ string, payload boardedit.UpsertWidget) (boardedit.Widget, error) {
	s.createCalls++
	return boardedit.Widget{ID: 1, Type: payload.Type}, s.err
}

func (s *stubStore) UpdateWidget(_ context.Context, _ string, widgetID int64, payload boardedit.UpsertWidget) (boardedit.Widget, error) {
	if s.err != nil {
		return boardedit.Widget{}, s.err
	}
	return boardedit.Widget{ID: widgetID, Type: payload.Type}, nil
}

func (s *stubStore) DeleteWidget(context.Context, string, int64) error { return s.err }

func (s *stubStore) SyncWidgets(_ context.Context, _ string, items []boardedit.SyncWidgetItem) ([]boardedit.Widget, error) {
	s.syncCalls++
	s.lastSync = items
	return []boardedit.Widget{}, s.err
}

func (s *stubStore) UpdateBoardMeta(_ context.Context, _ string, meta boardedit.BoardMeta) (boardedit.Board, error) {
	if s.err != nil {
		return boardedit.Board{}, s.err
	}
	return boardedit.Board{ID: "b1", Name: meta.Name, Headline: meta.Headline}, nil
}

func (s *stubStore) Permissions(context.Context, string) (boardedit.Permissions, error) {
	return boardedit.Permissions{CanEdit: true}, s.err
}

func newTestHandlers(store Store) *Handlers {
	return NewHandlers(Options{Store: store})
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorPayload {
	t.Helper()
	var payload ErrorPayload
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode error payload: %v", err)
	}
	return payload
}

func TestHandleCreateWidget(t *testing.T) {
	store := &stubStore{}
	api := newTestHandlers(store)
	payload := boardedit.UpsertWidget{
		Type:   "embed",
		Title:  "Clip",
		Layout: "span-2",
		Config: map[string]any{"embedUrl": "https://a/"},
	}
	buf, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPost, "/board/b1/widgets", bytes.NewReader(buf))
	rec := httptest.NewRecorder()
	api.HandleCreateWidget(rec, req, "b1")
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if store.createCalls != 1 {
		t.Fatalf("expected create to reach store")
	}
}

func TestHandleCreateWidgetRejectsBadLayout(t *testing.T) {
	store := &stubStore{}
	api := newTestHandlers(store)
	payload := boardedit.UpsertWidget{Type: "link", Layout: "span-9", Config: map[string]any{"url": "https://a/"}}
	buf, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPost, "/board/b1/widgets", bytes.NewReader(buf))
	rec := httptest.NewRecorder()
	api.HandleCreateWidget(rec, req, "b1")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if store.createCalls != 0 {
		t.Fatalf("expected store untouched")
	}
	if body := decodeError(t, rec); len(body.Errors) == 0 {
		t.Fatalf("expected structured errors, got %+v", body)
	}
}

func TestHandleCreateWidgetRejectsSchemaViolation(t *testing.T) {
	api := newTestHandlers(&stubStore{})
	payload := boardedit.UpsertWidget{
		Type:   "embed",
		Layout: "span-1",
		Config: map[string]any{"embedUrl": "ftp://nope"},
	}
	buf, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPost, "/board/b1/widgets", bytes.NewReader(buf))
	rec := httptest.NewRecorder()
	api.HandleCreateWidget(rec, req, "b1")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestHandleUpdateWidgetNotFound(t *testing.T) {
	store := &stubStore{err: boardedit.ErrNotFound}
	api := newTestHandlers(store)
	payload := boardedit.UpsertWidget{Type: "link", Layout: "span-1", Config: map[string]any{"url": "https://a/"}}
	buf, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPut, "/board/b1/widgets/9", bytes.NewReader(buf))
	rec := httptest.NewRecorder()
	api.HandleUpdateWidget(rec, req, "b1", 9)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestHandleDeleteWidget(t *testing.T) {
	api := newTestHandlers(&stubStore{})
	req := httptest.NewRequest(http.MethodDelete, "/board/b1/widgets/3", nil)
	rec := httptest.NewRecorder()
	api.HandleDeleteWidget(rec, req, "b1", 3)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
}

func TestHandleSyncWidgets(t *testing.T) {
	store := &stubStore{}
	api := newTestHandlers(store)
	id := int64(4)
	body := SyncRequest{Widgets: []boardedit.SyncWidgetItem{
		{ID: &id, UpsertWidget: boardedit.UpsertWidget{Type: "embed", Layout: "span-1", Config: map[string]any{"embedUrl": "https://a/"}}},
		{UpsertWidget: boardedit.UpsertWidget{Type: "link", Layout: "span-1", Config: map[string]any{"url": "https://b/"}, Order: 1}},
	}}
	buf, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPut, "/board/b1/widgets/sync", bytes.NewReader(buf))
	rec := httptest.NewRecorder()
	api.HandleSyncWidgets(rec, req, "b1")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if store.syncCalls != 1 || len(store.lastSync) != 2 {
		t.Fatalf("expected sync batch to reach store, got %+v", store.lastSync)
	}
}

func TestHandleSyncWidgetsRejectsInvalidEntry(t *testing.T) {
	store := &stubStore{}
	api := newTestHandlers(store)
	body := SyncRequest{Widgets: []boardedit.SyncWidgetItem{
		{UpsertWidget: boardedit.UpsertWidget{Layout: "span-1"}},
	}}
	buf, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPut, "/board/b1/widgets/sync", bytes.NewReader(buf))
	rec := httptest.NewRecorder()
	api.HandleSyncWidgets(rec, req, "b1")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if store.syncCalls != 0 {
		t.Fatalf("expected sync rejected before store")
	}
}

func TestHandleUpdateBoardMeta(t *testing.T) {
	api := newTestHandlers(&stubStore{})
	buf, _ := json.Marshal(boardedit.BoardMeta{Name: "New", Headline: "Hi"})
	req := httptest.NewRequest(http.MethodPatch, "/board/b1/meta", bytes.NewReader(buf))
	rec := httptest.NewRecorder()
	api.HandleUpdateBoardMeta(rec, req, "b1")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var board boardedit.Board
	if err := json.Unmarshal(rec.Body.Bytes(), &board); err != nil {
		t.Fatalf("decode board: %v", err)
	}
	if board.Name != "New" {
		t.Fatalf("expected updated name, got %+v", board)
	}
}

func TestHandleGetPermissions(t *testing.T) {
	api := newTestHandlers(&stubStore{})
	req := httptest.NewRequest(http.MethodGet, "/board/b1/permissions", nil)
	rec := httptest.NewRecorder()
	api.HandleGetPermissions(rec, req, "b1")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var perms boardedit.Permissions
	if err := json.Unmarshal(rec.Body.Bytes(), &perms); err != nil {
		t.Fatalf("decode permissions: %v", err)
	}
	if !perms.CanEdit {
		t.Fatalf("expected edit rights")
	}
}
