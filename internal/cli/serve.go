package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gkobilansky/abreport/internal/metrics"
	"github.com/gkobilansky/abreport/internal/server"
	"github.com/gkobilansky/abreport/internal/store"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	port         int
	requireToken bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Start the abreport HTTP server.

The server provides:
  - Dashboard of all tests at /
  - New test form at /new
  - Per-test reports at /report/<id>
  - JSON API, health check and Prometheus metrics

Example:
  abreport serve --port 8080
  abreport serve --store sqlite --db ./abreport.db --require-token`,
	RunE: runServe,
}

func init() {
	for _, cmd := range []*cobra.Command{rootCmd, serveCmd} {
		cmd.Flags().IntVarP(&port, "port", "p", 8080, "port to listen on")
		cmd.Flags().BoolVar(&requireToken, "require-token", false, "protect the dashboard with an access token")
	}
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return withStore(cfg, func(s store.Store) error {
		logger.Info("store opened", zap.String("driver", cfg.Store.Driver), zap.String("path", cfg.Store.Path))

		srv := server.New(s, server.Options{
			Port:         cfg.Server.Port,
			RequireToken: cfg.Server.RequireToken,
			TokenFile:    cfg.Server.TokenFile,
			Logger:       logger,
			Metrics:      metrics.NewCollector(),
		})

		out := cmd.OutOrStdout()
		fmt.Fprintln(out)
		fmt.Fprintf(out, "abreport running on http://localhost:%d\n", cfg.Server.Port)
		fmt.Fprintf(out, "Dashboard: %s\n", srv.URL())
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Press Ctrl+C to stop")

		return srv.Run(ctx)
	})
}
