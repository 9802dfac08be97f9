package boardedit

import (
	"context"
	"errors"
	"sort"
	"sync"
)

var (
	// ErrNotEditing is returned when an operation needs an active edit session.
	ErrNotEditing = errors.New("boards: no edit session active")
	// ErrSaveInFlight is returned when a save is already running for the session.
	ErrSaveInFlight = errors.New("boards: save already in flight")
)

// SessionOptions configures an edit session. Every collaborator has a safe
// default so callers only wire what they need.
type SessionOptions struct {
	Registry   *TypeRegistry
	Validation *ValidationOptions
	Telemetry  Telemetry
}

// Session holds the draft collection for one board-edit session: the ordered
// drafts, the tombstone list of deleted ids, per-draft validation errors
// keyed by draft Key, and the "new widget" form. All mutations go through
// Session methods; the collection is rebuilt on every StartEdit and discarded
// on Cancel or a committed save.
type Session struct {
	mu        sync.Mutex
	registry  *TypeRegistry
	opts      ValidationOptions
	telemetry Telemetry

	editing    bool
	saving     bool
	generation uint64
	permGen    uint64

	board    Board
	original []Widget

	drafts      []Draft
	tombstones  []int64
	draftErrors map[string]string
	saveError   string

	newDraft      Draft
	newDraftError string
	addFormOpen   bool

	activeSettingsKey string

	draftName     string
	draftHeadline string
	origName      string
	origHeadline  string

	canEdit bool
}

// NewSession builds a session with defaults filled in.
func NewSession(opts SessionOptions) *Session {
	if opts.Registry == nil {
		opts.Registry = NewTypeRegistry()
	}
	validation := DefaultValidationOptions()
	if opts.Validation != nil {
		validation = *opts.Validation
	}
	return &Session{
		registry:    opts.Registry,
		opts:        validation,
		telemetry:   normalizeTelemetry(opts.Telemetry),
		draftErrors: map[string]string{},
		newDraft:    NewEmptyDraft(),
	}
}

// StartEdit seeds a fresh draft collection from the persisted widgets, sorted
// ascending by order, and resets tombstones and validation state.
func (s *Session) StartEdit(ctx context.Context, board Board, widgets []Widget) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	s.board = board
	s.original = append([]Widget(nil), widgets...)
	sort.SliceStable(s.original, func(i, j int) bool {
		return s.original[i].Order < s.original[j].Order
	})
	s.drafts = make([]Draft, 0, len(s.original))
	for _, w := range s.original {
		s.drafts = append(s.drafts, NewDraftFromWidget(s.registry, w))
	}
	s.drafts = NormalizeOrder(s.drafts)
	s.tombstones = nil
	s.draftErrors = map[string]string{}
	s.saveError = ""
	s.newDraft = NewEmptyDraft()
	s.newDraftError = ""
	s.addFormOpen = false
	s.activeSettingsKey = ""
	s.origName = board.Name
	s.origHeadline = board.Headline
	s.draftName = board.Name
	s.draftHeadline = board.Headline
	s.editing = true
	s.telemetry.Record(ctx, "board.edit.start", map[string]any{
		"board_id": board.ID,
		"widgets":  len(widgets),
	})
}

// Cancel discards the draft collection unconditionally. Any save still in
// flight has its completion ignored.
func (s *Session) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	s.resetLocked()
}

func (s *Session) resetLocked() {
	s.editing = false
	s.drafts = nil
	s.tombstones = nil
	s.draftErrors = map[string]string{}
	s.saveError = ""
	s.newDraft = NewEmptyDraft()
	s.newDraftError = ""
	s.addFormOpen = false
	s.activeSettingsKey = ""
}

// Editing reports whether an edit session is active.
func (s *Session) Editing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editing
}

// Saving reports whether a save is in flight.
func (s *Session) Saving() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saving
}

// Board returns the board the session was seeded from.
func (s *Session) Board() Board {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.board
}

// Drafts returns a snapshot of the current draft sequence.
func (s *Session) Drafts() []Draft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Draft(nil), s.drafts...)
}

// Tombstones returns the ids marked for deletion on the next save.
func (s *Session) Tombstones() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int64(nil), s.tombstones...)
}

// DraftError returns the stored validation message for a draft, if any.
func (s *Session) DraftError(key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draftErrors[key]
}

// SaveError returns the collection-level error banner, if any.
func (s *Session) SaveError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveError
}

// SetMeta updates the board name/headline drafts edited alongside widgets.
func (s *Session) SetMeta(name, headline string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draftName = name
	s.draftHeadline = headline
}

// Meta returns the current name/headline drafts.
func (s *Session) Meta() BoardMeta {
	s.mu.Lock()
	defer s.mu.Unlock()
	return BoardMeta{Name: s.draftName, Headline: s.draftHeadline}
}

// OpenAddWidget expands the new-widget form and clears its error.
func (s *Session) OpenAddWidget() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.addFormOpen = true
	s.newDraftError = ""
}

// NewWidgetDraft returns the current new-widget form state.
func (s *Session) NewWidgetDraft() Draft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.newDraft
}

// NewWidgetError returns the validation error scoped to the add form. Add is
// a gated append, so its error never attaches to an existing draft.
func (s *Session) NewWidgetError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.newDraftError
}

// EditNewWidget mutates the new-widget form and clears its validation error,
// which goes stale the moment the user edits anything.
func (s *Session) EditNewWidget(mutate func(*Draft)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := s.newDraft.Key
	mutate(&s.newDraft)
	s.newDraft.Key = key
	s.newDraftError = ""
}

// ChangeNewWidgetType switches the add form's type and clears scratch fields
// the new type does not own.
func (s *Session) ChangeNewWidgetType(t WidgetType) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.newDraft.Type = t
	ResetConfigForType(s.registry, &s.newDraft)
	s.newDraftError = ""
}

// AddWidget validates the new-widget form and, on success, appends it to the
// collection with order = current length and resets the form. On failure the
// error stays on the form and the collection is untouched. Rejected while a
// save is in flight: the in-flight batch would not include the new widget.
// The returned string is the validation message, empty on success.
func (s *Session) AddWidget(ctx context.Context) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.editing {
		return ErrNotEditing.Error()
	}
	if s.saving {
		return ErrSaveInFlight.Error()
	}
	if msg := s.registry.ValidateDraft(s.newDraft, s.opts); msg != "" {
		s.newDraftError = msg
		return msg
	}
	draft := s.newDraft
	if normalized, ok := NormalizeHTTPURL(draft.EmbedURL); ok && draft.EmbedURL != "" {
		draft.EmbedURL = normalized
	}
	if normalized, ok := NormalizeHTTPURL(draft.LinkURL); ok && draft.LinkURL != "" {
		draft.LinkURL = normalized
	}
	draft.Order = len(s.drafts)
	s.drafts = append(s.drafts, draft)
	s.newDraft = NewEmptyDraft()
	s.newDraftError = ""
	s.saveError = ""
	s.addFormOpen = false
	s.telemetry.Record(ctx, "board.widget.add", map[string]any{
		"board_id": s.board.ID,
		"type":     string(draft.Type),
	})
	return ""
}

// DeleteDraft removes a draft from the collection. Persisted widgets get
// their id tombstoned for deletion on save; never-persisted drafts are simply
// dropped. Order is re-normalized and any settings panel open for the draft
// is closed. No-op while a save is in flight: a tombstone appended mid-save
// would be discarded on commit without ever reaching the server.
func (s *Session) DeleteDraft(ctx context.Context, key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saving {
		return false
	}
	idx := s.indexLocked(key)
	if idx < 0 {
		return false
	}
	draft := s.drafts[idx]
	if draft.ID != 0 {
		s.tombstones = append(s.tombstones, draft.ID)
	}
	s.drafts = append(s.drafts[:idx], s.drafts[idx+1:]...)
	s.drafts = NormalizeOrder(s.drafts)
	delete(s.draftErrors, key)
	if s.activeSettingsKey == key {
		s.activeSettingsKey = ""
	}
	s.telemetry.Record(ctx, "board.widget.delete", map[string]any{
		"board_id":  s.board.ID,
		"widget_id": draft.ID,
	})
	return true
}

// MoveDraft swaps a draft with its immediate neighbor. It is a no-op while a
// save is in flight, when the draft is unknown, or when the move would leave
// the collection bounds. Moving multiple slots takes multiple calls.
func (s *Session) MoveDraft(key string, direction int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saving {
		return false
	}
	if direction != -1 && direction != 1 {
		return false
	}
	idx := s.indexLocked(key)
	if idx < 0 {
		return false
	}
	target := idx + direction
	if target < 0 || target >= len(s.drafts) {
		return false
	}
	s.drafts[idx], s.drafts[target] = s.drafts[target], s.drafts[idx]
	s.drafts = NormalizeOrder(s.drafts)
	return true
}

// ChangeType switches a draft's type, clears scratch fields the new type does
// not own, and drops any stored validation error for the draft.
func (s *Session) ChangeType(key string, t WidgetType) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexLocked(key)
	if idx < 0 {
		return false
	}
	s.drafts[idx].Type = t
	ResetConfigForType(s.registry, &s.drafts[idx])
	delete(s.draftErrors, key)
	return true
}

// EditDraft applies a field mutation to a draft and clears stale validation
// state: the draft's own error, and the collection banner when it is showing
// the fix-highlighted-fields message.
func (s *Session) EditDraft(key string, mutate func(*Draft)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexLocked(key)
	if idx < 0 {
		return false
	}
	id, order := s.drafts[idx].ID, s.drafts[idx].Order
	mutate(&s.drafts[idx])
	s.drafts[idx].Key = key
	s.drafts[idx].ID = id
	s.drafts[idx].Order = order
	s.fieldChangedLocked(key)
	return true
}

// FieldChanged clears the draft's validation error and the stale collection
// banner without mutating the draft itself.
func (s *Session) FieldChanged(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fieldChangedLocked(key)
}

func (s *Session) fieldChangedLocked(key string) {
	delete(s.draftErrors, key)
	if s.saveError == msgFixHighlighted {
		s.saveError = ""
	}
}

// OpenSettings toggles the per-draft settings panel. No-op while saving.
func (s *Session) OpenSettings(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saving {
		return
	}
	if s.activeSettingsKey == key {
		s.activeSettingsKey = ""
		return
	}
	if s.indexLocked(key) < 0 {
		return
	}
	s.activeSettingsKey = key
	delete(s.draftErrors, key)
}

// SettingsOpen reports whether the settings panel is open for a draft.
func (s *Session) SettingsOpen(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeSettingsKey == key
}

// CanEdit reports the last permissions result applied to the session.
func (s *Session) CanEdit() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.canEdit
}

// RefreshPermissions fetches edit rights for the session's board. Completions
// are tagged with a request generation; a response that arrives after a newer
// request started (or after the session moved to another board) is discarded
// instead of applied.
func (s *Session) RefreshPermissions(ctx context.Context, client PermissionsClient) error {
	s.mu.Lock()
	s.permGen++
	gen := s.permGen
	boardID := s.board.ID
	s.mu.Unlock()

	perms, err := client.GetBoardPermissions(ctx, boardID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.permGen {
		return nil
	}
	if err != nil {
		s.canEdit = false
		return err
	}
	s.canEdit = perms.CanEdit
	return nil
}

func (s *Session) indexLocked(key string) int {
	for i := range s.drafts {
		if s.drafts[i].Key == key {
			return i
		}
	}
	return -1
}
