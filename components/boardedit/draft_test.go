package boardedit

import "testing"

func TestNewEmptyDraftDefaults(t *testing.T) {
	d := NewEmptyDraft()
	if d.Key == "" {
		t.Fatalf("expected a generated draft key")
	}
	if d.Type != TypeEmbed {
		t.Fatalf("expected embed default, got %q", d.Type)
	}
	if d.Layout != DefaultLayout {
		t.Fatalf("expected %q layout, got %q", DefaultLayout, d.Layout)
	}
	if !d.Enabled {
		t.Fatalf("expected new drafts enabled")
	}
	if d.ID != 0 {
		t.Fatalf("expected pending-create marker, got id %d", d.ID)
	}
}

func TestNewDraftFromWidgetExtractsScratchFields(t *testing.T) {
	reg := NewTypeRegistry()
	d := NewDraftFromWidget(reg, Widget{
		ID:      9,
		Type:    "map",
		Title:   "Spots",
		Layout:  "span-2",
		Config:  map[string]any{"places": []any{"Cafe", "Park"}},
		Enabled: true,
		Order:   3,
	})
	if d.Type != TypeMap {
		t.Fatalf("expected map type, got %q", d.Type)
	}
	if d.PlacesText != "Cafe\nPark" {
		t.Fatalf("expected places joined by newline, got %q", d.PlacesText)
	}
	if d.EmbedURL != "" || d.LinkURL != "" {
		t.Fatalf("expected unrelated scratch fields empty")
	}
	if d.ID != 9 || d.Order != 3 {
		t.Fatalf("expected identity preserved, got %+v", d)
	}
}

func TestNewDraftFromWidgetCoercesUnknownType(t *testing.T) {
	reg := NewTypeRegistry()
	d := NewDraftFromWidget(reg, Widget{ID: 1, Type: "countdown", Title: "Soon", Layout: "span-1"})
	if d.Type != TypeEmbed {
		t.Fatalf("expected unknown type coerced to embed, got %q", d.Type)
	}
}

func TestNewDraftKeysAreUnique(t *testing.T) {
	reg := NewTypeRegistry()
	w := Widget{ID: 1, Type: "embed", Config: map[string]any{}}
	a := NewDraftFromWidget(reg, w)
	b := NewDraftFromWidget(reg, w)
	if a.Key == b.Key {
		t.Fatalf("expected distinct draft keys for separate projections")
	}
}

func TestPreviewWidgetUsesPlaceholderIDs(t *testing.T) {
	reg := NewTypeRegistry()
	pending := Draft{Key: "k", Type: TypeLink, Title: "Shop", Layout: "span-1", Enabled: true, LinkURL: "https://b.com/"}

	w := PreviewWidget(reg, pending, 2)
	if w.ID != -3 {
		t.Fatalf("expected synthetic negative id, got %d", w.ID)
	}
	if got := w.Config["url"]; got != "https://b.com/" {
		t.Fatalf("expected link config in preview, got %#v", w.Config)
	}

	persisted := pending
	persisted.ID = 42
	if got := PreviewWidget(reg, persisted, 2); got.ID != 42 {
		t.Fatalf("expected persisted id kept, got %d", got.ID)
	}
}
