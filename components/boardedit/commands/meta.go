package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
)

// UpdateMetaInput carries the editable board page metadata.
type UpdateMetaInput struct {
	Name     string `json:"name"`
	Headline string `json:"headline"`
}

type metaSession interface {
	SetMeta(name, headline string)
}

// UpdateMetaCommand stages a board name and headline change in the session.
// The change is persisted on the next save.
type UpdateMetaCommand struct {
	session   metaSession
	telemetry Telemetry
}

// NewUpdateMetaCommand builds a command instance.
func NewUpdateMetaCommand(session metaSession, telemetry Telemetry) *UpdateMetaCommand {
	return &UpdateMetaCommand{session: session, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[UpdateMetaInput] = (*UpdateMetaCommand)(nil)

// Execute stages the metadata change.
func (c *UpdateMetaCommand) Execute(ctx context.Context, msg UpdateMetaInput) error {
	if c.session == nil {
		return errors.New("meta command requires session")
	}
	c.session.SetMeta(msg.Name, msg.Headline)
	c.telemetry.Record(ctx, "board.meta.stage", map[string]any{"name": msg.Name})
	return nil
}
