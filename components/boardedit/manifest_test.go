package boardedit

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeBoardDocument(t *testing.T) {
	doc, err := DecodeBoardDocument(strings.NewReader(`
version: "1"
name: My Corner
headline: Links and maps
widgets:
  - id: 4
    type: embed
    title: Clip
    layout: span-2
    config:
      embedUrl: https://a/
  - type: map
    title: Spots
    config:
      places: [Cafe, Park]
`))
	require.NoError(t, err)
	require.Len(t, doc.Widgets, 2)
	assert.Equal(t, "My Corner", doc.Name)
	require.NotNil(t, doc.Widgets[0].ID)
	assert.Equal(t, int64(4), *doc.Widgets[0].ID)
	assert.Nil(t, doc.Widgets[1].ID)
	assert.Equal(t, "map", doc.Widgets[1].Type)
}

func TestDecodeBoardDocumentRejectsUnknownFields(t *testing.T) {
	_, err := DecodeBoardDocument(strings.NewReader(`
version: "1"
widgets: []
theme: dark
`))
	require.Error(t, err)
}

func TestDecodeBoardDocumentEmpty(t *testing.T) {
	_, err := DecodeBoardDocument(strings.NewReader(""))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "document is empty")
}

func TestBoardDocumentValidate(t *testing.T) {
	doc := &BoardDocument{
		Version: "1",
		Widgets: []DocumentWidget{{Type: "embed", Layout: "span-9"}},
	}
	err := doc.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported layout")

	doc.Widgets[0].Layout = "span-2"
	require.NoError(t, doc.Validate())

	doc.Version = "2"
	require.Error(t, doc.Validate())
}

func TestBoardDocumentValidateRequiresType(t *testing.T) {
	doc := &BoardDocument{Version: "1", Widgets: []DocumentWidget{{Title: "No type"}}}
	err := doc.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing type")
}

func TestSyncItemsAssignsPositionalOrderAndDefaults(t *testing.T) {
	id := int64(7)
	disabled := false
	doc := &BoardDocument{
		Version: "1",
		Widgets: []DocumentWidget{
			{ID: &id, Type: "embed", Title: "Clip", Layout: "span-2", Config: map[string]any{"embedUrl": "https://a/"}},
			{Type: "link", Title: "Shop", Enabled: &disabled},
		},
	}
	items := doc.SyncItems()
	require.Len(t, items, 2)

	require.NotNil(t, items[0].ID)
	assert.Equal(t, int64(7), *items[0].ID)
	assert.Equal(t, 0, items[0].Order)

	assert.Nil(t, items[1].ID)
	assert.Equal(t, 1, items[1].Order)
	assert.Equal(t, DefaultLayout, items[1].Layout)
	assert.NotNil(t, items[1].Config)
	assert.False(t, items[1].Enabled)
	assert.True(t, items[0].Enabled)
}

func TestBoardDocumentRoundTrip(t *testing.T) {
	board := Board{Name: "My Corner", Headline: "Hi", BoardURL: "my-corner"}
	widgets := []Widget{
		{ID: 1, Type: "embed", Title: "Clip", Layout: "span-1", Config: map[string]any{"embedUrl": "https://a/"}, Enabled: true, Order: 0},
		{ID: 2, Type: "map", Title: "Spots", Layout: "span-2", Config: map[string]any{"places": []any{"X"}}, Enabled: false, Order: 1},
	}
	doc := DocumentFromWidgets(board, widgets)

	var buf bytes.Buffer
	require.NoError(t, WriteBoardDocument(&buf, doc))

	decoded, err := DecodeBoardDocument(&buf)
	require.NoError(t, err)
	assert.Equal(t, doc.Name, decoded.Name)
	assert.Equal(t, doc.BoardURL, decoded.BoardURL)
	require.Len(t, decoded.Widgets, 2)
	require.NotNil(t, decoded.Widgets[1].Enabled)
	assert.False(t, *decoded.Widgets[1].Enabled)
}
