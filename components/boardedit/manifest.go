package boardedit

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	boardDocumentVersionV1 = "1"
	// BoardDocumentVersion exposes the current document format version for tooling.
	BoardDocumentVersion = boardDocumentVersionV1
)

// BoardDocument is the YAML/JSON representation of a board and its widget
// collection, used by boardctl to round-trip boards through the sync
// endpoint.
type BoardDocument struct {
	Version  string           `json:"version" yaml:"version"`
	Name     string           `json:"name,omitempty" yaml:"name,omitempty"`
	Headline string           `json:"headline,omitempty" yaml:"headline,omitempty"`
	BoardURL string           `json:"boardUrl,omitempty" yaml:"boardUrl,omitempty"`
	Widgets  []DocumentWidget `json:"widgets" yaml:"widgets"`
	Source   string           `json:"-" yaml:"-"`
}

// DocumentWidget describes one widget entry within a board document. Order is
// positional; the document index is authoritative.
type DocumentWidget struct {
	ID      *int64         `json:"id,omitempty" yaml:"id,omitempty"`
	Type    string         `json:"type" yaml:"type"`
	Title   string         `json:"title,omitempty" yaml:"title,omitempty"`
	Layout  string         `json:"layout,omitempty" yaml:"layout,omitempty"`
	Config  map[string]any `json:"config,omitempty" yaml:"config,omitempty"`
	Enabled *bool          `json:"enabled,omitempty" yaml:"enabled,omitempty"`
}

// ReadBoardDocument loads a board document from disk.
func ReadBoardDocument(path string) (*BoardDocument, error) {
	f, err := os.Open(path) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("boards: open document %s: %w", path, err)
	}
	defer f.Close()
	doc, err := DecodeBoardDocument(f)
	if err != nil {
		return nil, fmt.Errorf("boards: decode document %s: %w", path, err)
	}
	doc.Source = path
	return doc, nil
}

// DecodeBoardDocument reads a board document from any reader.
func DecodeBoardDocument(r io.Reader) (*BoardDocument, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	var doc BoardDocument
	if err := decoder.Decode(&doc); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("boards: document is empty")
		}
		return nil, fmt.Errorf("boards: parse document: %w", err)
	}
	doc.applyDefaults()
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// WriteBoardDocument serializes a document as YAML.
func WriteBoardDocument(w io.Writer, doc *BoardDocument) error {
	if doc == nil {
		return fmt.Errorf("boards: document is nil")
	}
	doc.applyDefaults()
	if err := doc.Validate(); err != nil {
		return err
	}
	encoder := yaml.NewEncoder(w)
	defer encoder.Close()
	if err := encoder.Encode(doc); err != nil {
		return fmt.Errorf("boards: encode document: %w", err)
	}
	return nil
}

// Validate ensures the document satisfies required fields.
func (doc *BoardDocument) Validate() error {
	if doc.Version != boardDocumentVersionV1 {
		return fmt.Errorf("boards: unsupported document version %q", doc.Version)
	}
	for idx, widget := range doc.Widgets {
		if widget.Type == "" {
			return fmt.Errorf("boards: document widget at index %d is missing type", idx)
		}
		if widget.Layout != "" && !ValidLayout(widget.Layout) {
			return fmt.Errorf("boards: document widget at index %d has unsupported layout %q", idx, widget.Layout)
		}
	}
	return nil
}

func (doc *BoardDocument) applyDefaults() {
	if doc.Version == "" {
		doc.Version = boardDocumentVersionV1
	}
}

// SyncItems converts the document's widget entries into the batch sync
// payload, assigning dense order by document position and filling defaults.
func (doc *BoardDocument) SyncItems() []SyncWidgetItem {
	items := make([]SyncWidgetItem, 0, len(doc.Widgets))
	for idx, widget := range doc.Widgets {
		layout := widget.Layout
		if layout == "" {
			layout = DefaultLayout
		}
		config := widget.Config
		if config == nil {
			config = map[string]any{}
		}
		enabled := true
		if widget.Enabled != nil {
			enabled = *widget.Enabled
		}
		items = append(items, SyncWidgetItem{
			ID: widget.ID,
			UpsertWidget: UpsertWidget{
				Type:    widget.Type,
				Title:   widget.Title,
				Layout:  layout,
				Config:  config,
				Enabled: enabled,
				Order:   idx,
			},
		})
	}
	return items
}

// DocumentFromWidgets builds an exportable document from persisted state.
func DocumentFromWidgets(board Board, widgets []Widget) *BoardDocument {
	doc := &BoardDocument{
		Version:  boardDocumentVersionV1,
		Name:     board.Name,
		Headline: board.Headline,
		BoardURL: board.BoardURL,
	}
	for _, w := range widgets {
		id := w.ID
		enabled := w.Enabled
		doc.Widgets = append(doc.Widgets, DocumentWidget{
			ID:      &id,
			Type:    w.Type,
			Title:   w.Title,
			Layout:  w.Layout,
			Config:  w.Config,
			Enabled: &enabled,
		})
	}
	return doc
}
