// Package serve runs the HTTP API.
package serve

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"fjacquet/statement-categorizer/cmd/root"
	"fjacquet/statement-categorizer/internal/container"
	"fjacquet/statement-categorizer/internal/ratelimit"
	"fjacquet/statement-categorizer/internal/server"

	"github.com/spf13/cobra"
)

var addr string

// Cmd represents the serve command
var Cmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the categorization HTTP API",
	Long: `Serve the JSON API used by the web front end: statement conversion, single and
batch categorization, merchant lookups, merchant rules and reports.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := root.App()
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return Run(ctx, app, addr)
	},
}

func init() {
	Cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config)")
}

// New builds the server from the container. A non-empty listenAddr
// overrides the configured address.
func New(app *container.Container, listenAddr string) *server.Server {
	cfg := app.GetConfig().Server
	if listenAddr == "" {
		listenAddr = cfg.Addr
	}
	return server.New(server.Config{
		Addr:           listenAddr,
		MaxUploadBytes: cfg.MaxUploadBytes(),
		APILimiter:     ratelimit.NewFixedWindow(cfg.APIRequestsPerMinute, time.Minute),
		UploadLimiter:  ratelimit.NewFixedWindow(cfg.UploadRequestsPerMinute, time.Minute),
	}, server.Deps{
		State:       app.GetState(),
		Categorizer: app.GetCategorizer(),
		Escalator:   app.GetEscalator(),
		Parsers:     app.ParserOptions(),
		Logger:      app.GetLogger(),
	})
}

// Run serves until ctx ends.
func Run(ctx context.Context, app *container.Container, listenAddr string) error {
	return New(app, listenAddr).Run(ctx)
}
