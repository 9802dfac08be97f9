package commands

import (
	"context"
	"errors"
	"fmt"

	boardedit "github.com/goliatone/go-boards/components/boardedit"
	gocommand "github.com/goliatone/go-command"
)

// AddWidgetInput carries the new-widget form values.
type AddWidgetInput struct {
	Type       boardedit.WidgetType `json:"type"`
	Title      string               `json:"title"`
	Layout     string               `json:"layout"`
	EmbedURL   string               `json:"embed_url"`
	LinkURL    string               `json:"link_url"`
	PlacesText string               `json:"places_text"`
}

type addSession interface {
	OpenAddWidget()
	EditNewWidget(mutate func(*boardedit.Draft))
	AddWidget(ctx context.Context) string
}

// AddWidgetCommand appends a pending widget draft to the edit session so
// transports can drive the form without linking against the session directly.
type AddWidgetCommand struct {
	session   addSession
	telemetry Telemetry
}

// NewAddWidgetCommand creates a command instance.
func NewAddWidgetCommand(session addSession, telemetry Telemetry) *AddWidgetCommand {
	return &AddWidgetCommand{session: session, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[AddWidgetInput] = (*AddWidgetCommand)(nil)

// Execute fills the new-widget form from the input and commits it to the
// draft collection. A validation failure is returned as an error carrying the
// user-facing message.
func (c *AddWidgetCommand) Execute(ctx context.Context, msg AddWidgetInput) error {
	if c.session == nil {
		return errors.New("add command requires session")
	}
	c.session.OpenAddWidget()
	c.session.EditNewWidget(func(d *boardedit.Draft) {
		if msg.Type != "" {
			d.Type = msg.Type
		}
		d.Title = msg.Title
		if msg.Layout != "" {
			d.Layout = msg.Layout
		}
		d.EmbedURL = msg.EmbedURL
		d.LinkURL = msg.LinkURL
		d.PlacesText = msg.PlacesText
	})
	if failure := c.session.AddWidget(ctx); failure != "" {
		return fmt.Errorf("add widget: %s", failure)
	}
	c.telemetry.Record(ctx, "board.widget.add", map[string]any{
		"type": string(msg.Type),
	})
	return nil
}
