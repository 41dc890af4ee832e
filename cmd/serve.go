package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/ecboard/internal/dataset"
	"github.com/KaramelBytes/ecboard/internal/httpapi"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve summaries, charts and downloads over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("addr") {
			c.HTTPAddr = serveAddr
		}
		reg, err := c.Registry()
		if err != nil {
			return err
		}
		l, m := sharedLoader()
		src := c.Source()

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		// Startup fails fast when the data directory is incomplete.
		ds, err := l.Load(ctx, reg, src)
		if err != nil {
			return err
		}
		configureChartFont(c.ChartFont)
		reload := httpapi.ReloadFunc(func(ctx context.Context) (*dataset.Dataset, error) {
			return l.Load(ctx, reg, src)
		})
		srv := httpapi.NewServer(c.HTTPAddr, ds, reload, m, slog.Default())

		errCh := make(chan error, 1)
		go func() { errCh <- srv.Start() }()

		select {
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		case <-ctx.Done():
		}

		slog.Info("shutting down", "timeout", c.ShutdownTimeout())
		shutdownCtx, cancel := context.WithTimeout(context.Background(), c.ShutdownTimeout())
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides http_addr)")
}
