package commands

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/penwyp/go-virus-feed/internal/application/browser"
	"github.com/penwyp/go-virus-feed/internal/application/server"
	"github.com/penwyp/go-virus-feed/internal/util"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the virus feed over HTTP",
	Long: `Serves the feed, the panel and the timeline of the selected virus as a
JSON and image API. All clients share one selection.

Endpoints:
  GET  /api/feed
  GET  /api/panel
  POST /api/query        {"query": "flu"}
  POST /api/select/:id
  GET  /api/timeline.svg, /api/timeline.png, /api/timeline.json  (?width=&height=)`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080",
		"Listen address")
}

func runServe(cmd *cobra.Command, args []string) error {
	if err := initLogging(true); err != nil {
		return err
	}
	defer util.CloseLogger()

	config, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	details, err := browser.NewDataLoader(config).Load()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return server.New(config, details).Run(ctx, serveAddr)
}
