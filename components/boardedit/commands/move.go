package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
)

// MoveWidgetInput identifies the draft to reorder and the direction of travel.
// Direction is -1 for up and +1 for down.
type MoveWidgetInput struct {
	Key       string `json:"key"`
	Direction int    `json:"direction"`
}

type moveSession interface {
	MoveDraft(key string, direction int) bool
}

// MoveWidgetCommand swaps a draft with its neighbor in the collection.
type MoveWidgetCommand struct {
	session   moveSession
	telemetry Telemetry
}

// NewMoveWidgetCommand builds a command instance.
func NewMoveWidgetCommand(session moveSession, telemetry Telemetry) *MoveWidgetCommand {
	return &MoveWidgetCommand{session: session, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[MoveWidgetInput] = (*MoveWidgetCommand)(nil)

// Execute performs the move. Rejected moves, such as boundary moves or moves
// issued while a save is in flight, are silently dropped to match the editor
// behavior.
func (c *MoveWidgetCommand) Execute(ctx context.Context, msg MoveWidgetInput) error {
	if c.session == nil {
		return errors.New("move command requires session")
	}
	if !c.session.MoveDraft(msg.Key, msg.Direction) {
		return nil
	}
	c.telemetry.Record(ctx, "board.widget.move", map[string]any{
		"key":       msg.Key,
		"direction": msg.Direction,
	})
	return nil
}
