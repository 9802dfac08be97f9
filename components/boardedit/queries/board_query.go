package queries

import (
	"context"
	"sort"

	boardedit "github.com/goliatone/go-boards/components/boardedit"
	gocommand "github.com/goliatone/go-command"
)

// BoardInput identifies a board fetch request.
type BoardInput struct {
	BoardID string
}

// BoardSnapshot is the combined read model a page needs to render or begin
// editing: the board metadata plus its widgets sorted by order.
type BoardSnapshot struct {
	Board   boardedit.Board
	Widgets []boardedit.Widget
}

type boardService interface {
	GetBoard(ctx context.Context, boardID string) (boardedit.Board, error)
	GetWidgets(ctx context.Context, boardID string) ([]boardedit.Widget, error)
}

// BoardQuery fetches a board with its widget collection.
type BoardQuery struct {
	service boardService
}

// NewBoardQuery builds the query.
func NewBoardQuery(service boardService) *BoardQuery {
	return &BoardQuery{service: service}
}

var _ gocommand.Querier[BoardInput, BoardSnapshot] = (*BoardQuery)(nil)

// Query loads board metadata and widgets in one read model.
func (q *BoardQuery) Query(ctx context.Context, input BoardInput) (BoardSnapshot, error) {
	board, err := q.service.GetBoard(ctx, input.BoardID)
	if err != nil {
		return BoardSnapshot{}, err
	}
	widgets, err := q.service.GetWidgets(ctx, input.BoardID)
	if err != nil {
		return BoardSnapshot{}, err
	}
	sort.SliceStable(widgets, func(i, j int) bool { return widgets[i].Order < widgets[j].Order })
	return BoardSnapshot{Board: board, Widgets: widgets}, nil
}
