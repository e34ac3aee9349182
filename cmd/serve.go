package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"partsource/internal/bootstrap"
	"partsource/internal/bootstrap/logging"
	"partsource/internal/errs"
	sqliterepo "partsource/internal/infrastructure/persistence/sqlite/repository"
	"partsource/internal/transport/httpapi"
	"partsource/internal/usecase/sourcing"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App, svc *sourcing.Service) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		orders := sqliterepo.NewPurchaseOrderRepository(app.DB)
		server := &http.Server{
			Addr:              app.Config.HTTP.Addr,
			Handler:           httpapi.NewRouter(svc, orders),
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			logging.Info(ctx, "http server listening",
				slog.String("command", cmd.CommandPath()),
				slog.String("addr", app.Config.HTTP.Addr))
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}()

		select {
		case err := <-errCh:
			return errs.Wrap(err, "http server")
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return errs.Wrap(err, "shutdown http server")
		}

		logging.Info(cmd.Context(), "http server stopped", slog.String("command", cmd.CommandPath()))
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
