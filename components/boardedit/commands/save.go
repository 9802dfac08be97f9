package commands

import (
	"context"
	"errors"
	"fmt"

	boardedit "github.com/goliatone/go-boards/components/boardedit"
	gocommand "github.com/goliatone/go-command"
)

// SaveBoardInput triggers a reconciliation of the current edit session.
type SaveBoardInput struct{}

type saveSession interface {
	Save(ctx context.Context, r *boardedit.Reconciler) (boardedit.SaveOutcome, error)
}

// SaveBoardCommand runs the full save pipeline and fails when the batch did
// not commit, carrying the user-facing message from the outcome.
type SaveBoardCommand struct {
	session    saveSession
	reconciler *boardedit.Reconciler
	telemetry  Telemetry
}

// NewSaveBoardCommand builds a command instance.
func NewSaveBoardCommand(session saveSession, reconciler *boardedit.Reconciler, telemetry Telemetry) *SaveBoardCommand {
	return &SaveBoardCommand{session: session, reconciler: reconciler, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[SaveBoardInput] = (*SaveBoardCommand)(nil)

// Execute saves the session's drafts.
func (c *SaveBoardCommand) Execute(ctx context.Context, _ SaveBoardInput) error {
	if c.session == nil {
		return errors.New("save command requires session")
	}
	outcome, err := c.session.Save(ctx, c.reconciler)
	if err != nil {
		return err
	}
	c.telemetry.Record(ctx, "board.save", map[string]any{
		"committed":       outcome.Committed,
		"operations":      len(outcome.Operations),
		"partial_failure": outcome.PartialFailure,
	})
	if !outcome.Committed {
		return fmt.Errorf("save board: %s", outcome.Message)
	}
	return nil
}
