package boardapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	boardedit "github.com/goliatone/go-boards/components/boardedit"
)

// HTTPConfig configures the HTTP board client.
type HTTPConfig struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

// HTTPClient talks to the board backend via its REST endpoints. Structured
// failure bodies are surfaced as *boardedit.RequestError so the reconciler can
// attach server messages to the save banner.
type HTTPClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewHTTPClient builds a client for a live board backend.
func NewHTTPClient(cfg HTTPConfig) (*HTTPClient, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("boardapi: base url is required")
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &HTTPClient{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		client:  httpClient,
	}, nil
}

var (
	_ boardedit.API               = (*HTTPClient)(nil)
	_ boardedit.PermissionsClient = (*HTTPClient)(nil)
)

// GetBoard fetches board metadata.
func (c *HTTPClient) GetBoard(ctx context.Context, boardID string) (boardedit.Board, error) {
	var board boardedit.Board
	if err := c.do(ctx, http.MethodGet, c.boardPath(boardID, ""), nil, &board); err != nil {
		return boardedit.Board{}, err
	}
	return board, nil
}

// GetWidgets fetches the widget collection for a board.
func (c *HTTPClient) GetWidgets(ctx context.Context, boardID string) ([]boardedit.Widget, error) {
	var widgets []boardedit.Widget
	if err := c.do(ctx, http.MethodGet, c.boardPath(boardID, "/widgets"), nil, &widgets); err != nil {
		return nil, err
	}
	return widgets, nil
}

// CreateWidget persists a new widget.
func (c *HTTPClient) CreateWidget(ctx context.Context, boardID string, payload boardedit.UpsertWidget) (boardedit.Widget, error) {
	var widget boardedit.Widget
	if err := c.do(ctx, http.MethodPost, c.boardPath(boardID, "/widgets"), payload, &widget); err != nil {
		return boardedit.Widget{}, err
	}
	return widget, nil
}

// UpdateWidget replaces a persisted widget.
func (c *HTTPClient) UpdateWidget(ctx context.Context, boardID string, widgetID int64, payload boardedit.UpsertWidget) (boardedit.Widget, error) {
	var widget boardedit.Widget
	path := c.boardPath(boardID, fmt.Sprintf("/widgets/%d", widgetID))
	if err := c.do(ctx, http.MethodPut, path, payload, &widget); err != nil {
		return boardedit.Widget{}, err
	}
	return widget, nil
}

// DeleteWidget removes a persisted widget.
func (c *HTTPClient) DeleteWidget(ctx context.Context, boardID string, widgetID int64) error {
	path := c.boardPath(boardID, fmt.Sprintf("/widgets/%d", widgetID))
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// SyncWidgets replaces the whole collection in one request. Widgets absent
// from the batch are deleted server-side.
func (c *HTTPClient) SyncWidgets(ctx context.Context, boardID string, items []boardedit.SyncWidgetItem) ([]boardedit.Widget, error) {
	body := struct {
		Widgets []boardedit.SyncWidgetItem `json:"widgets"`
	}{Widgets: items}
	var widgets []boardedit.Widget
	if err := c.do(ctx, http.MethodPut, c.boardPath(boardID, "/widgets/sync"), body, &widgets); err != nil {
		return nil, err
	}
	return widgets, nil
}

// UpdateBoardMeta saves the board name and headline.
func (c *HTTPClient) UpdateBoardMeta(ctx context.Context, boardID string, meta boardedit.BoardMeta) (boardedit.Board, error) {
	var board boardedit.Board
	if err := c.do(ctx, http.MethodPatch, c.boardPath(boardID, "/meta"), meta, &board); err != nil {
		return boardedit.Board{}, err
	}
	return board, nil
}

// GetBoardPermissions resolves the caller's rights for a board.
func (c *HTTPClient) GetBoardPermissions(ctx context.Context, boardID string) (boardedit.Permissions, error) {
	var perms boardedit.Permissions
	if err := c.do(ctx, http.MethodGet, c.boardPath(boardID, "/permissions"), nil, &perms); err != nil {
		return boardedit.Permissions{}, err
	}
	return perms, nil
}

// RecordView reports a public page view to the insights endpoint.
func (c *HTTPClient) RecordView(ctx context.Context, boardID string) error {
	body := map[string]string{"boardId": boardID}
	return c.do(ctx, http.MethodPost, "/insights/view", body, nil)
}

// GetInsightsSummary fetches the aggregated traffic summary for a board. The
// payload shape matches insights.Summary.
func (c *HTTPClient) GetInsightsSummary(ctx context.Context, boardID string, target any) error {
	path := "/insights/" + url.PathEscape(boardID) + "/summary"
	return c.do(ctx, http.MethodGet, path, nil, target)
}

// RecordClick reports a link click to the insights endpoint.
func (c *HTTPClient) RecordClick(ctx context.Context, boardID, linkURL string) error {
	body := map[string]string{"boardId": boardID, "url": linkURL}
	return c.do(ctx, http.MethodPost, "/insights/click", body, nil)
}

func (c *HTTPClient) boardPath(boardID, suffix string) string {
	return "/board/" + url.PathEscape(boardID) + suffix
}

func (c *HTTPClient) do(ctx context.Context, method, path string, payload any, target any) error {
	var reader io.Reader
	if payload != nil {
		body, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("boardapi: encode payload: %w", err)
		}
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("boardapi: build request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("boardapi: http request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return c.decodeError(resp)
	}
	if target == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("boardapi: decode response: %w", err)
	}
	return nil
}

func (c *HTTPClient) decodeError(resp *http.Response) error {
	reqErr := &boardedit.RequestError{StatusCode: resp.StatusCode}
	var payload struct {
		Message string   `json:"message"`
		Errors  []string `json:"errors"`
	}
	data, _ := io.ReadAll(resp.Body)
	if err := json.Unmarshal(data, &payload); err == nil {
		reqErr.Message = payload.Message
		reqErr.Messages = payload.Errors
	}
	return reqErr
}
