package boardedit

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// User-facing messages for the save flow.
const (
	msgFixHighlighted = "Fix highlighted widget fields before saving."
	msgSaveFailed     = "We couldn't save your changes. Please try again."
)

var errMissingAPI = errors.New("boards: persistence API not configured")

// RequestError is the structured failure a persistence client surfaces when
// the backend returned an error payload. The first entry of Messages (falling
// back to Message) is what the editor shows the user.
type RequestError struct {
	StatusCode int
	Message    string
	Messages   []string
}

func (e *RequestError) Error() string {
	if m := e.FirstMessage(); m != "" {
		return fmt.Sprintf("boards: request failed (%d): %s", e.StatusCode, m)
	}
	return fmt.Sprintf("boards: request failed (%d)", e.StatusCode)
}

// FirstMessage returns the first human-readable message, if any.
func (e *RequestError) FirstMessage() string {
	if len(e.Messages) > 0 && e.Messages[0] != "" {
		return e.Messages[0]
	}
	return e.Message
}

// OpKind tags one request of a save batch.
type OpKind string

const (
	OpMeta   OpKind = "meta"
	OpDelete OpKind = "delete"
	OpUpdate OpKind = "update"
	OpCreate OpKind = "create"
)

// OperationResult records the outcome of one request in a save batch.
type OperationResult struct {
	Kind     OpKind
	WidgetID int64
	DraftKey string
	Err      error
}

// SaveInput is the full state the reconciler diffs and submits.
type SaveInput struct {
	BoardID    string
	Original   []Widget
	Drafts     []Draft
	Tombstones []int64
	Meta       *BoardMeta
}

// SaveOutcome reports a save attempt. The backend executes each request
// independently, so a failed batch may have partially applied; Operations and
// PartialFailure make that explicit instead of pretending atomicity.
type SaveOutcome struct {
	Committed      bool
	DraftErrors    map[string]string
	Message        string
	Operations     []OperationResult
	PartialFailure bool
}

// ReconcilerOptions configures a Reconciler.
type ReconcilerOptions struct {
	API        API
	Registry   *TypeRegistry
	Validation *ValidationOptions
	Telemetry  Telemetry
}

// Reconciler diffs an edited draft collection against the persisted widget
// set and submits the create/update/delete batch.
type Reconciler struct {
	api       API
	registry  *TypeRegistry
	opts      ValidationOptions
	telemetry Telemetry
}

// NewReconciler builds a Reconciler with defaults filled in.
func NewReconciler(opts ReconcilerOptions) *Reconciler {
	if opts.Registry == nil {
		opts.Registry = NewTypeRegistry()
	}
	validation := DefaultValidationOptions()
	if opts.Validation != nil {
		validation = *opts.Validation
	}
	return &Reconciler{
		api:       opts.API,
		registry:  opts.Registry,
		opts:      validation,
		telemetry: normalizeTelemetry(opts.Telemetry),
	}
}

// Save validates every draft, then issues the operation batch. If any draft
// fails validation the save aborts with zero network calls and per-draft
// errors; partial validity is never partially submitted. The board-meta
// update goes first since widget data is logically part of the board record.
func (r *Reconciler) Save(ctx context.Context, in SaveInput) SaveOutcome {
	outcome := SaveOutcome{DraftErrors: map[string]string{}}
	if r.api == nil {
		outcome.Message = msgSaveFailed
		outcome.Operations = []OperationResult{{Kind: OpMeta, Err: errMissingAPI}}
		return outcome
	}

	drafts := NormalizeOrder(append([]Draft(nil), in.Drafts...))
	for _, d := range drafts {
		if msg := r.registry.ValidateDraft(d, r.opts); msg != "" {
			outcome.DraftErrors[d.Key] = msg
		}
	}
	if len(outcome.DraftErrors) > 0 {
		outcome.Message = msgFixHighlighted
		return outcome
	}

	originalByID := make(map[int64]Widget, len(in.Original))
	for _, w := range in.Original {
		originalByID[w.ID] = w
	}

	if in.Meta != nil {
		_, err := r.api.UpdateBoardMeta(ctx, in.BoardID, *in.Meta)
		outcome.Operations = append(outcome.Operations, OperationResult{Kind: OpMeta, Err: err})
	}
	for _, id := range in.Tombstones {
		err := r.api.DeleteWidget(ctx, in.BoardID, id)
		outcome.Operations = append(outcome.Operations, OperationResult{Kind: OpDelete, WidgetID: id, Err: err})
	}
	for _, d := range drafts {
		payload, ok := r.registry.BuildPayload(d, r.opts)
		if !ok {
			// validation and payload construction agree; this cannot happen
			// once the gate above passed
			continue
		}
		if d.ID != 0 {
			if orig, found := originalByID[d.ID]; found && r.unchanged(orig, d) {
				continue
			}
			_, err := r.api.UpdateWidget(ctx, in.BoardID, d.ID, payload)
			outcome.Operations = append(outcome.Operations, OperationResult{
				Kind: OpUpdate, WidgetID: d.ID, DraftKey: d.Key, Err: err,
			})
			continue
		}
		_, err := r.api.CreateWidget(ctx, in.BoardID, payload)
		outcome.Operations = append(outcome.Operations, OperationResult{
			Kind: OpCreate, DraftKey: d.Key, Err: err,
		})
	}

	var succeeded, failed int
	for _, op := range outcome.Operations {
		if op.Err != nil {
			failed++
			if outcome.Message == "" {
				outcome.Message = saveErrorMessage(op.Err)
			}
		} else {
			succeeded++
		}
	}
	outcome.Committed = failed == 0
	outcome.PartialFailure = failed > 0 && succeeded > 0
	r.telemetry.Record(ctx, "board.save", map[string]any{
		"board_id":  in.BoardID,
		"requests":  len(outcome.Operations),
		"committed": outcome.Committed,
	})
	return outcome
}

// unchanged reports whether a persisted widget and its edited draft would
// produce the same upsert payload, letting the reconciler skip no-op updates.
func (r *Reconciler) unchanged(orig Widget, d Draft) bool {
	od := NewDraftFromWidget(r.registry, orig)
	od.Order = orig.Order
	return od.Type == d.Type &&
		strings.TrimSpace(od.Title) == strings.TrimSpace(d.Title) &&
		strings.TrimSpace(od.Layout) == strings.TrimSpace(d.Layout) &&
		od.Enabled == d.Enabled &&
		od.Order == d.Order &&
		od.EmbedURL == d.EmbedURL &&
		od.LinkURL == d.LinkURL &&
		od.PlacesText == d.PlacesText
}

func saveErrorMessage(err error) string {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		if m := reqErr.FirstMessage(); m != "" {
			return m
		}
	}
	return msgSaveFailed
}

// Save runs the reconciler against the session's current state. It is gated
// by the in-flight flag, and its completion is ignored when the session was
// reset (cancelled or re-seeded) while requests were outstanding, so late
// responses cannot corrupt a since-reset session. On commit the session
// exits edit mode; the caller must refetch persisted state rather than trust
// local drafts — server-assigned ids and true stored order only come from
// the reload.
func (s *Session) Save(ctx context.Context, r *Reconciler) (SaveOutcome, error) {
	s.mu.Lock()
	if !s.editing {
		s.mu.Unlock()
		return SaveOutcome{}, ErrNotEditing
	}
	if s.saving {
		s.mu.Unlock()
		return SaveOutcome{}, ErrSaveInFlight
	}
	s.saving = true
	gen := s.generation
	s.drafts = NormalizeOrder(s.drafts)
	in := SaveInput{
		BoardID:    s.board.ID,
		Original:   append([]Widget(nil), s.original...),
		Drafts:     append([]Draft(nil), s.drafts...),
		Tombstones: append([]int64(nil), s.tombstones...),
	}
	if s.draftName != s.origName || s.draftHeadline != s.origHeadline {
		in.Meta = &BoardMeta{Name: s.draftName, Headline: s.draftHeadline}
	}
	s.mu.Unlock()

	outcome := r.Save(ctx, in)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.saving = false
	if gen != s.generation {
		return outcome, nil
	}
	if outcome.Committed {
		s.resetLocked()
		return outcome, nil
	}
	for key, msg := range outcome.DraftErrors {
		s.draftErrors[key] = msg
	}
	s.saveError = outcome.Message
	return outcome, nil
}
