package gorouter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	router "github.com/goliatone/go-router"

	boardedit "github.com/goliatone/go-boards/components/boardedit"
	"github.com/goliatone/go-boards/components/boardedit/httpapi"
)

// Insights receives view and click events from the public page and serves the
// aggregated summary.
type Insights interface {
	RecordView(ctx context.Context, boardID string) error
	RecordClick(ctx context.Context, boardID, url string) error
	Summary(ctx context.Context, boardID string) (any, error)
}

// Config wires go-router with the board store, public page controller, and
// insights tracker.
type Config[T any] struct {
	Router     router.Router[T]
	Store      httpapi.Store
	Controller *boardedit.Controller
	Validator  boardedit.ConfigValidator
	Insights   Insights
	BasePath   string
	Routes     RouteConfig
}

// RouteConfig customizes the relative paths used for board endpoints.
type RouteConfig struct {
	Page            string
	Board           string
	Widgets         string
	WidgetID        string
	Sync            string
	Meta            string
	Permissions     string
	InsightsView    string
	InsightsClick   string
	InsightsSummary string
}

// Register mounts the board REST endpoints, the public HTML page, and the
// insights endpoints on a go-router router.
func Register[T any](cfg Config[T]) error {
	if cfg.Router == nil {
		return errors.New("gorouter: router is required")
	}
	if cfg.Store == nil {
		return errors.New("gorouter: store is required")
	}
	validator := cfg.Validator
	if validator == nil {
		validator = boardedit.NewJSONSchemaValidator(boardedit.NewTypeRegistry())
	}
	routes := defaultRouteConfig(cfg.Routes)
	base := cfg.BasePath
	if base == "" {
		base = "/api"
	}

	if cfg.Controller != nil {
		cfg.Router.Get(routes.Page, router.WrapHandler(func(ctx router.Context) error {
			boardID := ctx.Param("boardId")
			var buf bytes.Buffer
			if err := cfg.Controller.RenderBoard(ctx.Context(), boardID, &buf); err != nil {
				return respondError(ctx, statusFor(err), err)
			}
			ctx.SetHeader("Content-Type", "text/html; charset=utf-8")
			return ctx.Send(buf.Bytes())
		}))
	}

	group := cfg.Router.Group(base)
	registerBoardAPI(group, cfg.Store, validator, routes)

	if cfg.Insights != nil {
		registerInsights(group, cfg.Insights, routes)
	}

	return nil
}

func registerBoardAPI[T any](r router.Router[T], store httpapi.Store, validator boardedit.ConfigValidator, routes RouteConfig) {
	r.Get(routes.Board, router.WrapHandler(func(ctx router.Context) error {
		board, err := store.Board(ctx.Context(), ctx.Param("boardId"))
		if err != nil {
			return respondError(ctx, statusFor(err), err)
		}
		return ctx.JSON(http.StatusOK, board)
	}))

	r.Get(routes.Widgets, router.WrapHandler(func(ctx router.Context) error {
		widgets, err := store.Widgets(ctx.Context(), ctx.Param("boardId"))
		if err != nil {
			return respondError(ctx, statusFor(err), err)
		}
		if widgets == nil {
			widgets = []boardedit.Widget{}
		}
		return ctx.JSON(http.StatusOK, widgets)
	}))

	r.Post(routes.Widgets, router.WrapHandler(func(ctx router.Context) error {
		var payload boardedit.UpsertWidget
		if err := json.Unmarshal(ctx.Body(), &payload); err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		if msgs := httpapi.ValidateUpsert(validator, payload); len(msgs) > 0 {
			return respondMessages(ctx, msgs)
		}
		widget, err := store.CreateWidget(ctx.Context(), ctx.Param("boardId"), payload)
		if err != nil {
			return respondError(ctx, statusFor(err), err)
		}
		return ctx.JSON(http.StatusCreated, widget)
	}))

	// the sync route must be registered before the widget id route so
	// "sync" is not captured as a widget id
	r.Put(routes.Sync, router.WrapHandler(func(ctx router.Context) error {
		var payload httpapi.SyncRequest
		if err := json.Unmarshal(ctx.Body(), &payload); err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		var msgs []string
		for _, item := range payload.Widgets {
			msgs = append(msgs, httpapi.ValidateUpsert(validator, item.UpsertWidget)...)
		}
		if len(msgs) > 0 {
			return respondMessages(ctx, msgs)
		}
		widgets, err := store.SyncWidgets(ctx.Context(), ctx.Param("boardId"), payload.Widgets)
		if err != nil {
			return respondError(ctx, statusFor(err), err)
		}
		if widgets == nil {
			widgets = []boardedit.Widget{}
		}
		return ctx.JSON(http.StatusOK, widgets)
	}))

	r.Put(routes.WidgetID, router.WrapHandler(func(ctx router.Context) error {
		widgetID, err := parseWidgetID(ctx.Param("widgetId"))
		if err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		var payload boardedit.UpsertWidget
		if err := json.Unmarshal(ctx.Body(), &payload); err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		if msgs := httpapi.ValidateUpsert(validator, payload); len(msgs) > 0 {
			return respondMessages(ctx, msgs)
		}
		widget, err := store.UpdateWidget(ctx.Context(), ctx.Param("boardId"), widgetID, payload)
		if err != nil {
			return respondError(ctx, statusFor(err), err)
		}
		return ctx.JSON(http.StatusOK, widget)
	}))

	r.Delete(routes.WidgetID, router.WrapHandler(func(ctx router.Context) error {
		widgetID, err := parseWidgetID(ctx.Param("widgetId"))
		if err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		if err := store.DeleteWidget(ctx.Context(), ctx.Param("boardId"), widgetID); err != nil {
			return respondError(ctx, statusFor(err), err)
		}
		return ctx.JSON(http.StatusNoContent, map[string]string{"status": "deleted"})
	}))

	r.Patch(routes.Meta, router.WrapHandler(func(ctx router.Context) error {
		var payload boardedit.BoardMeta
		if err := json.Unmarshal(ctx.Body(), &payload); err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		board, err := store.UpdateBoardMeta(ctx.Context(), ctx.Param("boardId"), payload)
		if err != nil {
			return respondError(ctx, statusFor(err), err)
		}
		return ctx.JSON(http.StatusOK, board)
	}))

	r.Get(routes.Permissions, router.WrapHandler(func(ctx router.Context) error {
		perms, err := store.Permissions(ctx.Context(), ctx.Param("boardId"))
		if err != nil {
			return respondError(ctx, statusFor(err), err)
		}
		return ctx.JSON(http.StatusOK, perms)
	}))
}

type viewEvent struct {
	BoardID string `json:"boardId"`
	URL     string `json:"url,omitempty"`
}

func registerInsights[T any](r router.Router[T], insights Insights, routes RouteConfig) {
	r.Post(routes.InsightsView, router.WrapHandler(func(ctx router.Context) error {
		var payload viewEvent
		if err := json.Unmarshal(ctx.Body(), &payload); err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		if err := insights.RecordView(ctx.Context(), payload.BoardID); err != nil {
			return respondError(ctx, statusFor(err), err)
		}
		return ctx.JSON(http.StatusAccepted, map[string]string{"status": "recorded"})
	}))

	r.Post(routes.InsightsClick, router.WrapHandler(func(ctx router.Context) error {
		var payload viewEvent
		if err := json.Unmarshal(ctx.Body(), &payload); err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		if err := insights.RecordClick(ctx.Context(), payload.BoardID, payload.URL); err != nil {
			return respondError(ctx, statusFor(err), err)
		}
		return ctx.JSON(http.StatusAccepted, map[string]string{"status": "recorded"})
	}))

	r.Get(routes.InsightsSummary, router.WrapHandler(func(ctx router.Context) error {
		summary, err := insights.Summary(ctx.Context(), ctx.Param("boardId"))
		if err != nil {
			return respondError(ctx, statusFor(err), err)
		}
		return ctx.JSON(http.StatusOK, summary)
	}))
}

func parseWidgetID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, errors.New("widget id must be numeric")
	}
	return id, nil
}

func statusFor(err error) int {
	if errors.Is(err, boardedit.ErrNotFound) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func respondError(ctx router.Context, status int, err error) error {
	return ctx.JSON(status, httpapi.ErrorPayload{Message: err.Error()})
}

func respondMessages(ctx router.Context, msgs []string) error {
	return ctx.JSON(http.StatusBadRequest, httpapi.ErrorPayload{Message: msgs[0], Errors: msgs})
}

func defaultRouteConfig(routes RouteConfig) RouteConfig {
	if routes.Page == "" {
		routes.Page = "/b/:boardId"
	}
	if routes.Board == "" {
		routes.Board = "/board/:boardId"
	}
	if routes.Widgets == "" {
		routes.Widgets = "/board/:boardId/widgets"
	}
	if routes.WidgetID == "" {
		routes.WidgetID = "/board/:boardId/widgets/:widgetId"
	}
	if routes.Sync == "" {
		routes.Sync = "/board/:boardId/widgets/sync"
	}
	if routes.Meta == "" {
		routes.Meta = "/board/:boardId/meta"
	}
	if routes.Permissions == "" {
		routes.Permissions = "/board/:boardId/permissions"
	}
	if routes.InsightsView == "" {
		routes.InsightsView = "/insights/view"
	}
	if routes.InsightsClick == "" {
		routes.InsightsClick = "/insights/click"
	}
	if routes.InsightsSummary == "" {
		routes.InsightsSummary = "/insights/:boardId/summary"
	}
	return routes
}
