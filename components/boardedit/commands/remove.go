package commands

import (
	"context"
	"errors"
	"fmt"

	gocommand "github.com/goliatone/go-command"
)

// RemoveWidgetInput identifies the draft to remove from the edit session.
type RemoveWidgetInput struct {
	Key string `json:"key"`
}

type removeSession interface {
	DeleteDraft(ctx context.Context, key string) bool
}

// RemoveWidgetCommand drops a draft from the collection, tombstoning the
// persisted widget when one backs it.
type RemoveWidgetCommand struct {
	session   removeSession
	telemetry Telemetry
}

// NewRemoveWidgetCommand builds a command instance.
func NewRemoveWidgetCommand(session removeSession, telemetry Telemetry) *RemoveWidgetCommand {
	return &RemoveWidgetCommand{session: session, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[RemoveWidgetInput] = (*RemoveWidgetCommand)(nil)

// Execute removes the draft.
func (c *RemoveWidgetCommand) Execute(ctx context.Context, msg RemoveWidgetInput) error {
	if c.session == nil {
		return errors.New("remove command requires session")
	}
	if !c.session.DeleteDraft(ctx, msg.Key) {
		return fmt.Errorf("remove widget: no draft with key %q", msg.Key)
	}
	c.telemetry.Record(ctx, "board.widget.remove", map[string]any{"key": msg.Key})
	return nil
}
