package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/ettle/strcase"

	boardedit "github.com/goliatone/go-boards/components/boardedit"
	"github.com/goliatone/go-boards/pkg/boardapi"
	"github.com/goliatone/go-boards/pkg/insights"
)

type cli struct {
	BaseURL string `default:"http://localhost:3000/api" help:"Board API base URL."`
	APIKey  string `help:"Bearer token sent with every request."`

	Export   exportCmd   `cmd:"" help:"Export a board and its widgets to a YAML document."`
	Apply    applyCmd    `cmd:"" help:"Apply a board document through the batch sync endpoint."`
	Insights insightsCmd `cmd:"" help:"Print the traffic summary for a board."`
}

type exportCmd struct {
	BoardID string `arg:"" help:"Board identifier."`
	Out     string `type:"path" help:"Output path (defaults to <board-name>.yaml)."`
}

type applyCmd struct {
	BoardID string `arg:"" help:"Board identifier."`
	File    string `arg:"" type:"path" help:"Board document to apply."`
	NoMeta  bool   `help:"Skip updating the board name and headline."`
}

type insightsCmd struct {
	BoardID string `arg:"" help:"Board identifier."`
}

func main() {
	root := &cli{}
	ctx := kong.Parse(root,
		kong.Description("Board management utility for go-boards backends."),
		kong.UsageOnError(),
	)
	err := ctx.Run(root)
	ctx.FatalIfErrorf(err)
}

func (root *cli) client() (*boardapi.HTTPClient, error) {
	return boardapi.NewHTTPClient(boardapi.HTTPConfig{
		BaseURL: strings.TrimRight(root.BaseURL, "/"),
		APIKey:  root.APIKey,
	})
}

func (cmd *exportCmd) Run(root *cli) error {
	client, err := root.client()
	if err != nil {
		return err
	}
	ctx := context.Background()
	board, err := client.GetBoard(ctx, cmd.BoardID)
	if err != nil {
		return fmt.Errorf("boardctl: fetch board: %w", err)
	}
	widgets, err := client.GetWidgets(ctx, cmd.BoardID)
	if err != nil {
		return fmt.Errorf("boardctl: fetch widgets: %w", err)
	}
	doc := boardedit.DocumentFromWidgets(board, widgets)

	out := cmd.Out
	if out == "" {
		out = deriveFileName(board) + ".yaml"
	}
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return fmt.Errorf("boardctl: mkdir %s: %w", filepath.Dir(out), err)
	}
	file, err := os.Create(out) //nolint:gosec
	if err != nil {
		return fmt.Errorf("boardctl: create %s: %w", out, err)
	}
	defer file.Close()
	if err := boardedit.WriteBoardDocument(file, doc); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "✓ Exported %s (%d widgets) to %s\n", cmd.BoardID, len(doc.Widgets), out)
	return nil
}

func (cmd *applyCmd) Run(root *cli) error {
	client, err := root.client()
	if err != nil {
		return err
	}
	doc, err := boardedit.ReadBoardDocument(cmd.File)
	if err != nil {
		return err
	}
	ctx := context.Background()
	if !cmd.NoMeta && (doc.Name != "" || doc.Headline != "") {
		if _, err := client.UpdateBoardMeta(ctx, cmd.BoardID, boardedit.BoardMeta{
			Name:     doc.Name,
			Headline: doc.Headline,
		}); err != nil {
			return fmt.Errorf("boardctl: update meta: %w", err)
		}
	}
	widgets, err := client.SyncWidgets(ctx, cmd.BoardID, doc.SyncItems())
	if err != nil {
		return fmt.Errorf("boardctl: sync widgets: %w", err)
	}
	fmt.Fprintf(os.Stdout, "✓ Applied %s: board now has %d widgets\n", cmd.File, len(widgets))
	return nil
}

func (cmd *insightsCmd) Run(root *cli) error {
	client, err := root.client()
	if err != nil {
		return err
	}
	var summary insights.Summary
	if err := client.GetInsightsSummary(context.Background(), cmd.BoardID, &summary); err != nil {
		return fmt.Errorf("boardctl: fetch summary: %w", err)
	}
	fmt.Fprintf(os.Stdout, "Board %s\n", cmd.BoardID)
	fmt.Fprintf(os.Stdout, "  total visits:   %d\n", summary.TotalVisits)
	fmt.Fprintf(os.Stdout, "  last 30 days:   %d\n", summary.VisitsLast30Days)
	fmt.Fprintf(os.Stdout, "  today:          %d\n", summary.VisitsToday)
	fmt.Fprintf(os.Stdout, "  total clicks:   %d\n", summary.TotalClicks)
	for _, link := range summary.TopClickedLinks {
		fmt.Fprintf(os.Stdout, "    %4d  %s\n", link.Clicks, link.URL)
	}
	return nil
}

func deriveFileName(board boardedit.Board) string {
	name := board.BoardURL
	if name == "" {
		name = board.Name
	}
	if name == "" {
		name = board.ID
	}
	return strcase.ToSnake(strings.TrimSpace(name))
}
