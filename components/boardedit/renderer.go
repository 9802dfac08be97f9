package boardedit

import (
	"context"
	"fmt"
	"io"
	"sort"
)

// Renderer describes the template renderer contract needed by the controller.
type Renderer interface {
	Render(name string, data any, out ...io.Writer) (string, error)
}

// ControllerOptions wires the public page controller.
type ControllerOptions struct {
	API      API
	Registry *TypeRegistry
	Renderer Renderer
}

// Controller produces the read-only public rendering of a board.
type Controller struct {
	api      API
	registry *TypeRegistry
	renderer Renderer
}

// NewController builds a controller with defaults filled in.
func NewController(opts ControllerOptions) *Controller {
	if opts.Registry == nil {
		opts.Registry = NewTypeRegistry()
	}
	return &Controller{
		api:      opts.API,
		registry: opts.Registry,
		renderer: opts.Renderer,
	}
}

// BoardPage is the resolved public view of a board.
type BoardPage struct {
	Board   Board    `json:"board"`
	Widgets []Widget `json:"widgets"`
}

// BoardPayload loads the board and its enabled widgets sorted by order.
func (c *Controller) BoardPayload(ctx context.Context, boardID string) (BoardPage, error) {
	if c.api == nil {
		return BoardPage{}, errMissingAPI
	}
	board, err := c.api.GetBoard(ctx, boardID)
	if err != nil {
		return BoardPage{}, err
	}
	widgets, err := c.api.GetWidgets(ctx, boardID)
	if err != nil {
		return BoardPage{}, err
	}
	visible := make([]Widget, 0, len(widgets))
	for _, w := range widgets {
		if w.Enabled {
			visible = append(visible, w)
		}
	}
	sort.SliceStable(visible, func(i, j int) bool { return visible[i].Order < visible[j].Order })
	return BoardPage{Board: board, Widgets: visible}, nil
}

// RenderBoard writes the public board page HTML.
func (c *Controller) RenderBoard(ctx context.Context, boardID string, out io.Writer) error {
	if c.renderer == nil {
		return fmt.Errorf("boards: renderer not configured")
	}
	page, err := c.BoardPayload(ctx, boardID)
	if err != nil {
		return err
	}
	tiles := make([]map[string]any, 0, len(page.Widgets))
	for _, w := range page.Widgets {
		handler, known := c.registry.Resolve(WidgetType(w.Type))
		tiles = append(tiles, map[string]any{
			"id":           w.ID,
			"type":         w.Type,
			"type_name":    handler.Name,
			"known":        known,
			"title":        w.Title,
			"layout_class": TileLayoutClass(w.Layout),
			"config":       w.Config,
		})
	}
	_, err = c.renderer.Render("board", map[string]any{
		"board":   page.Board,
		"widgets": tiles,
	}, out)
	return err
}

// TileLayoutClass maps a layout token to the grid class used by the page
// templates. Unsupported tokens fall back to the single-span tile.
func TileLayoutClass(layout string) string {
	if !ValidLayout(layout) {
		layout = DefaultLayout
	}
	return "tile tile-" + layout
}
