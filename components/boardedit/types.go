package boardedit

import (
	"context"
	"errors"
)

// ErrNotFound is returned by API and store implementations when a board or
// widget does not exist.
var ErrNotFound = errors.New("boards: not found")

// WidgetType tags a widget with the config shape and validation rule that
// apply to it. The set is registry-driven and open to extension; unknown tags
// resolve to a pass-through handler.
type WidgetType string

const (
	TypeEmbed         WidgetType = "embed"
	TypeLink          WidgetType = "link"
	TypeMap           WidgetType = "map"
	TypeUserSettings  WidgetType = "user-settings"
	TypeAdminSettings WidgetType = "admin-settings"
	TypeSignin        WidgetType = "signin"
	TypeSignup        WidgetType = "signup"
)

// Widget is the persisted shape served by the backend. Within one board the
// Order values form a dense 0..N-1 permutation; the backend does not enforce
// this, so clients restore it on every save.
type Widget struct {
	ID      int64          `json:"id"`
	Type    string         `json:"type"`
	Title   string         `json:"title"`
	Layout  string         `json:"layout"`
	Config  map[string]any `json:"config"`
	Enabled bool           `json:"enabled"`
	Order   int            `json:"order"`
}

// UpsertWidget is the create/update request body for a single widget.
type UpsertWidget struct {
	Type    string         `json:"type"`
	Title   string         `json:"title"`
	Layout  string         `json:"layout"`
	Config  map[string]any `json:"config"`
	Enabled bool           `json:"enabled"`
	Order   int            `json:"order"`
}

// SyncWidgetItem is one entry of the batch sync endpoint. A nil ID marks a
// pending create; widgets missing from the batch are deleted server-side.
type SyncWidgetItem struct {
	ID *int64 `json:"id,omitempty"`
	UpsertWidget
}

// Board carries the editable page metadata alongside its identity.
type Board struct {
	ID        string `json:"id"`
	BoardName string `json:"boardName"`
	BoardURL  string `json:"boardUrl"`
	Name      string `json:"name"`
	Headline  string `json:"headline"`
}

// BoardMeta is the name/headline update payload saved together with widget
// mutations.
type BoardMeta struct {
	Name     string `json:"name"`
	Headline string `json:"headline"`
}

// Permissions reports what the current caller may do with a board.
type Permissions struct {
	CanEdit bool `json:"canEdit"`
}

// API is the persistence surface the reconciler drives. Implementations live
// in pkg/boardapi; errors should unwrap to *RequestError when the backend
// returned a structured failure.
type API interface {
	GetBoard(ctx context.Context, boardID string) (Board, error)
	GetWidgets(ctx context.Context, boardID string) ([]Widget, error)
	CreateWidget(ctx context.Context, boardID string, payload UpsertWidget) (Widget, error)
	UpdateWidget(ctx context.Context, boardID string, widgetID int64, payload UpsertWidget) (Widget, error)
	DeleteWidget(ctx context.Context, boardID string, widgetID int64) error
	UpdateBoardMeta(ctx context.Context, boardID string, meta BoardMeta) (Board, error)
}

// PermissionsClient resolves edit rights for a board.
type PermissionsClient interface {
	GetBoardPermissions(ctx context.Context, boardID string) (Permissions, error)
}

// Layouts supported by the public renderer. Widgets carrying anything else are
// rejected at the persistence boundary.
var LayoutTokens = []string{
	"span-1", "span-2", "span-3", "span-4",
	"span-1x2", "span-2x2", "span-3x3",
}

// DefaultLayout is applied to freshly created drafts.
const DefaultLayout = "span-1"

// ValidLayout reports whether the token is one of the supported tile layouts.
func ValidLayout(layout string) bool {
	for _, token := range LayoutTokens {
		if token == layout {
			return true
		}
	}
	return false
}
