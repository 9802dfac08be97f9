package queries

import (
	"context"

	boardedit "github.com/goliatone/go-boards/components/boardedit"
	gocommand "github.com/goliatone/go-command"
)

// PermissionsInput identifies a permissions lookup.
type PermissionsInput struct {
	BoardID string
}

type permissionsService interface {
	GetBoardPermissions(ctx context.Context, boardID string) (boardedit.Permissions, error)
}

// PermissionsQuery resolves the caller's edit rights for a board.
type PermissionsQuery struct {
	service permissionsService
}

// NewPermissionsQuery builds the query.
func NewPermissionsQuery(service permissionsService) *PermissionsQuery {
	return &PermissionsQuery{service: service}
}

var _ gocommand.Querier[PermissionsInput, boardedit.Permissions] = (*PermissionsQuery)(nil)

// Query resolves permissions for the board.
func (q *PermissionsQuery) Query(ctx context.Context, input PermissionsInput) (boardedit.Permissions, error) {
	return q.service.GetBoardPermissions(ctx, input.BoardID)
}
