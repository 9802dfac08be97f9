package boardedit

import "github.com/google/uuid"

// Draft is the editable projection of a widget. Scratch fields are flattened
// per type so switching Type in the editor never corrupts unrelated data; a
// zero ID marks a pending create. Key is a client-generated identity that is
// stable for the life of the edit session, used to attach validation errors
// and panel state without relying on the persisted numeric id.
type Draft struct {
	Key     string
	ID      int64
	Type    WidgetType
	Title   string
	Layout  string
	Enabled bool
	Order   int

	EmbedURL   string
	LinkURL    string
	PlacesText string
}

// NewEmptyDraft seeds the "new widget" form: enabled, default layout, no
// scratch content.
func NewEmptyDraft() Draft {
	return Draft{
		Key:     uuid.NewString(),
		Type:    TypeEmbed,
		Layout:  DefaultLayout,
		Enabled: true,
	}
}

// NewDraftFromWidget projects a persisted widget into an editable draft.
// Unknown type tags are coerced to embed so the form always has a usable
// shape; scratch fields are extracted through the resolved type handler.
func NewDraftFromWidget(reg *TypeRegistry, w Widget) Draft {
	t := WidgetType(w.Type)
	if !reg.Known(t) {
		t = TypeEmbed
	}
	d := Draft{
		Key:     uuid.NewString(),
		ID:      w.ID,
		Type:    t,
		Title:   w.Title,
		Layout:  w.Layout,
		Enabled: w.Enabled,
		Order:   w.Order,
	}
	handler, _ := reg.Resolve(t)
	handler.Extract(w.Config, &d)
	return d
}

// ResetConfigForType clears every scratch field the draft's current type does
// not own, so residual values from a previous type never leak into the new
// type's persisted config.
func ResetConfigForType(reg *TypeRegistry, d *Draft) {
	handler, _ := reg.Resolve(d.Type)
	if !handler.owns(FieldEmbedURL) {
		d.EmbedURL = ""
	}
	if !handler.owns(FieldLinkURL) {
		d.LinkURL = ""
	}
	if !handler.owns(FieldPlacesText) {
		d.PlacesText = ""
	}
}

// NormalizeOrder reassigns dense 0-based order values by current position.
// The authoritative order is always the array position, never a previously
// stored numeric value.
func NormalizeOrder(drafts []Draft) []Draft {
	for i := range drafts {
		drafts[i].Order = i
	}
	return drafts
}
