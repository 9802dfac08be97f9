package boardedit

import (
	"context"
	"testing"
)

func testWidgets() []Widget {
	return []Widget{
		{ID: 1, Type: "embed", Title: "Clip", Layout: "span-1", Config: map[string]any{"embedUrl": "https://a/"}, Enabled: true, Order: 0},
		{ID: 2, Type: "map", Title: "Spots", Layout: "span-2", Config: map[string]any{"places": []any{"X"}}, Enabled: true, Order: 1},
	}
}

func newTestSession(t *testing.T) *Session {
	t.Helper()
	s := NewSession(SessionOptions{})
	s.StartEdit(context.Background(), Board{ID: "b1", Name: "Board", Headline: "Hello"}, testWidgets())
	return s
}

func TestStartEditSeedsSortedDrafts(t *testing.T) {
	s := NewSession(SessionOptions{})
	widgets := []Widget{
		{ID: 7, Type: "map", Title: "Spots", Layout: "span-1", Config: map[string]any{"places": []any{"X"}}, Enabled: true, Order: 5},
		{ID: 4, Type: "embed", Title: "Clip", Layout: "span-1", Config: map[string]any{"embedUrl": "https://a/"}, Enabled: true, Order: 2},
	}
	s.StartEdit(context.Background(), Board{ID: "b1"}, widgets)

	drafts := s.Drafts()
	if len(drafts) != 2 {
		t.Fatalf("expected 2 drafts, got %d", len(drafts))
	}
	if drafts[0].ID != 4 || drafts[1].ID != 7 {
		t.Fatalf("expected drafts sorted by order, got ids %d,%d", drafts[0].ID, drafts[1].ID)
	}
	for i, d := range drafts {
		if d.Order != i {
			t.Fatalf("expected dense order, draft %d has order %d", i, d.Order)
		}
		if d.Key == "" {
			t.Fatalf("draft %d missing key", i)
		}
	}
}

func TestNormalizeOrderIsDenseAndZeroBased(t *testing.T) {
	drafts := []Draft{{Order: 9}, {Order: 3}, {Order: 3}, {Order: -1}}
	drafts = NormalizeOrder(drafts)
	for i, d := range drafts {
		if d.Order != i {
			t.Fatalf("expected order %d at index %d, got %d", i, i, d.Order)
		}
	}
}

func TestMoveDraftBoundsAreNoOps(t *testing.T) {
	s := newTestSession(t)
	drafts := s.Drafts()

	if s.MoveDraft(drafts[0].Key, -1) {
		t.Fatalf("expected move above top to be a no-op")
	}
	if s.MoveDraft(drafts[len(drafts)-1].Key, 1) {
		t.Fatalf("expected move below bottom to be a no-op")
	}
	if s.MoveDraft("missing", 1) {
		t.Fatalf("expected move of unknown draft to be a no-op")
	}
	after := s.Drafts()
	for i := range drafts {
		if after[i].Key != drafts[i].Key || after[i].Order != i {
			t.Fatalf("expected sequence unchanged after boundary moves")
		}
	}
}

func TestMoveDraftSwapsNeighbors(t *testing.T) {
	s := newTestSession(t)
	drafts := s.Drafts()

	if !s.MoveDraft(drafts[0].Key, 1) {
		t.Fatalf("expected move to succeed")
	}
	after := s.Drafts()
	if after[0].Key != drafts[1].Key || after[1].Key != drafts[0].Key {
		t.Fatalf("expected neighbors swapped")
	}
	if after[0].Order != 0 || after[1].Order != 1 {
		t.Fatalf("expected order re-normalized, got %d,%d", after[0].Order, after[1].Order)
	}
}

func TestMoveDraftBlockedWhileSaving(t *testing.T) {
	s := newTestSession(t)
	drafts := s.Drafts()
	s.mu.Lock()
	s.saving = true
	s.mu.Unlock()

	if s.MoveDraft(drafts[0].Key, 1) {
		t.Fatalf("expected move to be suppressed while a save is in flight")
	}
}

func TestDeleteDraftBlockedWhileSaving(t *testing.T) {
	s := newTestSession(t)
	drafts := s.Drafts()
	s.mu.Lock()
	s.saving = true
	s.mu.Unlock()

	if s.DeleteDraft(context.Background(), drafts[0].Key) {
		t.Fatalf("expected delete to be suppressed while a save is in flight")
	}
	if got := s.Tombstones(); len(got) != 0 {
		t.Fatalf("expected no tombstones, got %v", got)
	}
	if got := s.Drafts(); len(got) != len(drafts) {
		t.Fatalf("expected collection unchanged, got %d drafts", len(got))
	}
}

func TestAddWidgetBlockedWhileSaving(t *testing.T) {
	s := newTestSession(t)
	s.EditNewWidget(func(d *Draft) {
		d.Type = TypeLink
		d.Title = "Shop"
		d.LinkURL = "https://b.com/"
	})
	s.mu.Lock()
	s.saving = true
	s.mu.Unlock()

	if msg := s.AddWidget(context.Background()); msg != ErrSaveInFlight.Error() {
		t.Fatalf("expected add rejected while a save is in flight, got %q", msg)
	}
	if got := s.Drafts(); len(got) != 2 {
		t.Fatalf("expected collection unchanged, got %d drafts", len(got))
	}
}

func TestDeleteDraftTombstonesPersistedIDs(t *testing.T) {
	s := newTestSession(t)
	drafts := s.Drafts()

	s.OpenSettings(drafts[0].Key)
	if !s.DeleteDraft(context.Background(), drafts[0].Key) {
		t.Fatalf("expected delete to succeed")
	}
	tombstones := s.Tombstones()
	if len(tombstones) != 1 || tombstones[0] != 1 {
		t.Fatalf("expected tombstone for id 1, got %v", tombstones)
	}
	after := s.Drafts()
	if len(after) != 1 || after[0].Order != 0 {
		t.Fatalf("expected one remaining draft with order 0, got %+v", after)
	}
	if s.SettingsOpen(drafts[0].Key) {
		t.Fatalf("expected settings panel closed for deleted draft")
	}
}

func TestDeleteDraftWithoutIDLeavesNoTombstone(t *testing.T) {
	s := newTestSession(t)
	s.EditNewWidget(func(d *Draft) {
		d.Type = TypeLink
		d.Title = "Shop"
		d.LinkURL = "shop.example"
	})
	if msg := s.AddWidget(context.Background()); msg != "" {
		t.Fatalf("expected add to succeed, got %q", msg)
	}
	drafts := s.Drafts()
	added := drafts[len(drafts)-1]
	if added.ID != 0 {
		t.Fatalf("expected pending create without id")
	}
	if !s.DeleteDraft(context.Background(), added.Key) {
		t.Fatalf("expected delete to succeed")
	}
	if len(s.Tombstones()) != 0 {
		t.Fatalf("expected no tombstones for never-persisted draft, got %v", s.Tombstones())
	}
}

func TestChangeTypeClearsForeignScratchFields(t *testing.T) {
	s := newTestSession(t)
	drafts := s.Drafts()
	embedKey := drafts[0].Key
	mapKey := drafts[1].Key

	s.ChangeType(embedKey, TypeMap)
	s.ChangeType(mapKey, TypeEmbed)

	after := s.Drafts()
	if after[0].EmbedURL != "" {
		t.Fatalf("expected embedUrl cleared after switch to map, got %q", after[0].EmbedURL)
	}
	if after[1].PlacesText != "" {
		t.Fatalf("expected placesText cleared after switch to embed, got %q", after[1].PlacesText)
	}
}

func TestAddWidgetInvalidLeavesCollectionUntouched(t *testing.T) {
	s := newTestSession(t)
	before := s.Drafts()

	s.EditNewWidget(func(d *Draft) {
		d.Title = "Bad link"
		d.Type = TypeLink
		d.LinkURL = "   "
	})
	msg := s.AddWidget(context.Background())
	if msg != "Link URL must be a valid web address." {
		t.Fatalf("unexpected validation message %q", msg)
	}
	if s.NewWidgetError() != msg {
		t.Fatalf("expected error scoped to the add form")
	}
	if len(s.Drafts()) != len(before) {
		t.Fatalf("expected collection untouched after invalid add")
	}
	for _, d := range before {
		if s.DraftError(d.Key) != "" {
			t.Fatalf("expected no collection draft to carry the add-form error")
		}
	}
}

func TestAddWidgetAppendsWithNormalizedURL(t *testing.T) {
	s := newTestSession(t)
	s.EditNewWidget(func(d *Draft) {
		d.Type = TypeLink
		d.Title = "Shop"
		d.LinkURL = "b.com"
	})
	if msg := s.AddWidget(context.Background()); msg != "" {
		t.Fatalf("expected add to succeed, got %q", msg)
	}
	drafts := s.Drafts()
	added := drafts[len(drafts)-1]
	if added.Order != len(drafts)-1 {
		t.Fatalf("expected appended order %d, got %d", len(drafts)-1, added.Order)
	}
	if added.LinkURL != "https://b.com/" {
		t.Fatalf("expected normalized link url, got %q", added.LinkURL)
	}
	if s.NewWidgetDraft().LinkURL != "" {
		t.Fatalf("expected new-widget form reset after add")
	}
}

func TestFieldChangeClearsDraftErrorAndStaleBanner(t *testing.T) {
	s := newTestSession(t)
	drafts := s.Drafts()
	key := drafts[0].Key
	s.mu.Lock()
	s.draftErrors[key] = msgEmbedURL
	s.saveError = msgFixHighlighted
	s.mu.Unlock()

	s.FieldChanged(key)
	if s.DraftError(key) != "" {
		t.Fatalf("expected draft error cleared")
	}
	if s.SaveError() != "" {
		t.Fatalf("expected stale banner cleared")
	}
}

func TestFieldChangeKeepsServerErrorBanner(t *testing.T) {
	s := newTestSession(t)
	drafts := s.Drafts()
	s.mu.Lock()
	s.saveError = "board is locked"
	s.mu.Unlock()

	s.FieldChanged(drafts[0].Key)
	if s.SaveError() != "board is locked" {
		t.Fatalf("expected server error banner retained, got %q", s.SaveError())
	}
}

type scriptedPermissions struct {
	canEdit bool
	before  func()
}

func (c *scriptedPermissions) GetBoardPermissions(context.Context, string) (Permissions, error) {
	if c.before != nil {
		c.before()
	}
	return Permissions{CanEdit: c.canEdit}, nil
}

func TestRefreshPermissionsDiscardsStaleCompletion(t *testing.T) {
	s := newTestSession(t)
	fast := &scriptedPermissions{canEdit: true}
	// the slow request sees a newer request start before it completes; its
	// completion must be discarded rather than applied
	slow := &scriptedPermissions{canEdit: false}
	slow.before = func() {
		if err := s.RefreshPermissions(context.Background(), fast); err != nil {
			t.Fatalf("refresh: %v", err)
		}
	}
	if err := s.RefreshPermissions(context.Background(), slow); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if !s.CanEdit() {
		t.Fatalf("expected stale completion discarded and newer result kept")
	}
}

func TestCancelDiscardsDrafts(t *testing.T) {
	s := newTestSession(t)
	s.Cancel()
	if s.Editing() {
		t.Fatalf("expected edit mode exited")
	}
	if len(s.Drafts()) != 0 || len(s.Tombstones()) != 0 {
		t.Fatalf("expected draft state discarded")
	}
}
