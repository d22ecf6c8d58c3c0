package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/phrazzld/ankigen/internal/api"
	"github.com/phrazzld/ankigen/internal/task"
	"github.com/spf13/cobra"
)

var serveFlags struct {
	port int
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the local generation server",
	Long: `Starts an HTTP server exposing generation runs: POST /api/generate
launches a run in the background, GET /api/runs/{id} reports its status.
One run executes at a time.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		deps, err := buildDependencies(ctx, "")
		if err != nil {
			return err
		}
		defer deps.close()

		runner, err := task.NewRunner(deps.logger, deps.svc)
		if err != nil {
			return err
		}
		defer runner.Stop()

		port := deps.cfg.Server.Port
		if serveFlags.port != 0 {
			port = serveFlags.port
		}

		srv := &http.Server{
			Addr:         fmt.Sprintf(":%d", port),
			Handler:      api.NewRouter(deps.logger, runner, deps.svc),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  120 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			deps.logger.Info("server starting", "port", port)
			errCh <- srv.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server error: %w", err)
			}
			return nil
		case <-ctx.Done():
		}

		deps.logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().IntVarP(&serveFlags.port, "port", "p", 0, "listen port (default from configuration)")
	rootCmd.AddCommand(serveCmd)
}
