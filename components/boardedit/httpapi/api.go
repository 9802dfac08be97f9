package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	boardedit "github.com/goliatone/go-boards/components/boardedit"
)

// Store is the server-side persistence surface the handlers drive. Not-found
// conditions must unwrap to boardedit.ErrNotFound so they map to 404.
type Store interface {
	Board(ctx context.Context, boardID string) (boardedit.Board, error)
	Widgets(ctx context.Context, boardID string) ([]boardedit.Widget, error)
	CreateWidget(ctx context.Context, boardID string, payload boardedit.UpsertWidget) (boardedit.Widget, error)
	UpdateWidget(ctx context.Context, boardID string, widgetID int64, payload boardedit.UpsertWidget) (boardedit.Widget, error)
	DeleteWidget(ctx context.Context, boardID string, widgetID int64) error
	SyncWidgets(ctx context.Context, boardID string, items []boardedit.SyncWidgetItem) ([]boardedit.Widget, error)
	UpdateBoardMeta(ctx context.Context, boardID string, meta boardedit.BoardMeta) (boardedit.Board, error)
	Permissions(ctx context.Context, boardID string) (boardedit.Permissions, error)
}

// ErrorPayload is the structured failure body clients decode into
// boardedit.RequestError.
type ErrorPayload struct {
	Message string   `json:"message"`
	Errors  []string `json:"errors,omitempty"`
}

// Handlers exposes the board widget CRUD endpoints over a Store. Config
// payloads are checked against the registered type schemas and layouts against
// the supported tokens before anything is persisted.
type Handlers struct {
	store     Store
	registry  *boardedit.TypeRegistry
	validator boardedit.ConfigValidator
}

// Options configures Handlers.
type Options struct {
	Store     Store
	Registry  *boardedit.TypeRegistry
	Validator boardedit.ConfigValidator
}

// NewHandlers builds the handler set, creating a schema validator over the
// registry when none is supplied.
func NewHandlers(opts Options) *Handlers {
	registry := opts.Registry
	if registry == nil {
		registry = boardedit.NewTypeRegistry()
	}
	validator := opts.Validator
	if validator == nil {
		validator = boardedit.NewJSONSchemaValidator(registry)
	}
	return &Handlers{store: opts.Store, registry: registry, validator: validator}
}

// SyncRequest is the batch upsert body. Widgets absent from the list are
// deleted.
type SyncRequest struct {
	Widgets []boardedit.SyncWidgetItem `json:"widgets"`
}

func (h *Handlers) HandleGetBoard(w http.ResponseWriter, r *http.Request, boardID string) {
	board, err := h.store.Board(r.Context(), boardID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, board)
}

func (h *Handlers) HandleListWidgets(w http.ResponseWriter, r *http.Request, boardID string) {
	widgets, err := h.store.Widgets(r.Context(), boardID)
	if err != nil {
		respondError(w, err)
		return
	}
	if widgets == nil {
		widgets = []boardedit.Widget{}
	}
	respondJSON(w, http.StatusOK, widgets)
}

func (h *Handlers) HandleCreateWidget(w http.ResponseWriter, r *http.Request, boardID string) {
	var payload boardedit.UpsertWidget
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondErrorPayload(w, http.StatusBadRequest, ErrorPayload{Message: "invalid request body"})
		return
	}
	if msgs := h.validateUpsert(payload); len(msgs) > 0 {
		respondErrorPayload(w, http.StatusBadRequest, ErrorPayload{Message: msgs[0], Errors: msgs})
		return
	}
	widget, err := h.store.CreateWidget(r.Context(), boardID, payload)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, widget)
}

func (h *Handlers) HandleUpdateWidget(w http.ResponseWriter, r *http.Request, boardID string, widgetID int64) {
	var payload boardedit.UpsertWidget
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondErrorPayload(w, http.StatusBadRequest, ErrorPayload{Message: "invalid request body"})
		return
	}
	if msgs := h.validateUpsert(payload); len(msgs) > 0 {
		respondErrorPayload(w, http.StatusBadRequest, ErrorPayload{Message: msgs[0], Errors: msgs})
		return
	}
	widget, err := h.store.UpdateWidget(r.Context(), boardID, widgetID, payload)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, widget)
}

func (h *Handlers) HandleDeleteWidget(w http.ResponseWriter, r *http.Request, boardID string, widgetID int64) {
	if err := h.store.DeleteWidget(r.Context(), boardID, widgetID); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) HandleSyncWidgets(w http.ResponseWriter, r *http.Request, boardID string) {
	var payload SyncRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondErrorPayload(w, http.StatusBadRequest, ErrorPayload{Message: "invalid request body"})
		return
	}
	var msgs []string
	for idx, item := range payload.Widgets {
		for _, msg := range h.validateUpsert(item.UpsertWidget) {
			msgs = append(msgs, fmt.Sprintf("widget %d: %s", idx, msg))
		}
	}
	if len(msgs) > 0 {
		respondErrorPayload(w, http.StatusBadRequest, ErrorPayload{Message: msgs[0], Errors: msgs})
		return
	}
	widgets, err := h.store.SyncWidgets(r.Context(), boardID, payload.Widgets)
	if err != nil {
		respondError(w, err)
		return
	}
	if widgets == nil {
		widgets = []boardedit.Widget{}
	}
	respondJSON(w, http.StatusOK, widgets)
}

func (h *Handlers) HandleUpdateBoardMeta(w http.ResponseWriter, r *http.Request, boardID string) {
	var payload boardedit.BoardMeta
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondErrorPayload(w, http.StatusBadRequest, ErrorPayload{Message: "invalid request body"})
		return
	}
	board, err := h.store.UpdateBoardMeta(r.Context(), boardID, payload)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, board)
}

func (h *Handlers) HandleGetPermissions(w http.ResponseWriter, r *http.Request, boardID string) {
	perms, err := h.store.Permissions(r.Context(), boardID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, perms)
}

func (h *Handlers) validateUpsert(payload boardedit.UpsertWidget) []string {
	return ValidateUpsert(h.validator, payload)
}

// ValidateUpsert reports the persistence-boundary validation messages for an
// upsert payload: required type, supported layout, schema-conformant config.
func ValidateUpsert(validator boardedit.ConfigValidator, payload boardedit.UpsertWidget) []string {
	var msgs []string
	if strings.TrimSpace(payload.Type) == "" {
		msgs = append(msgs, "widget type is required")
	}
	if payload.Layout != "" && !boardedit.ValidLayout(payload.Layout) {
		msgs = append(msgs, fmt.Sprintf("unsupported layout %q", payload.Layout))
	}
	if err := validator.Validate(boardedit.WidgetType(payload.Type), payload.Config); err != nil {
		msgs = append(msgs, err.Error())
	}
	return msgs
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func respondErrorPayload(w http.ResponseWriter, status int, payload ErrorPayload) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, err error) {
	if errors.Is(err, boardedit.ErrNotFound) {
		respondErrorPayload(w, http.StatusNotFound, ErrorPayload{Message: "not found"})
		return
	}
	respondErrorPayload(w, http.StatusInternalServerError, ErrorPayload{Message: err.Error()})
}
