package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/raaihank/clipboard-cleaner/internal/config"
	"github.com/raaihank/clipboard-cleaner/internal/server"
	"github.com/raaihank/clipboard-cleaner/internal/websocket"
)

const shutdownTimeout = 30 * time.Second

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and event stream",
	Long: `Serves the cleaning engine over HTTP with a small dashboard and a
WebSocket event stream. The configuration file is watched and profiles are
reloaded when it changes.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "listen port (default: server.port from configuration)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer a.log.Sync()

	if servePort != 0 {
		a.cfg.Server.Port = servePort
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a.log.Info("Starting clipboard-cleaner",
		zap.String("version", version),
		zap.String("config", a.loader.UsedFile()),
		zap.Int("port", a.cfg.Server.Port),
	)

	var hub *websocket.Hub
	if a.cfg.WebSocket.Enabled {
		hub = websocket.NewHub(websocket.NewHubConfig(a.cfg.WebSocket), a.log.Logger)
		go hub.Run(ctx)
	}

	srv := server.New(a.cfg, a.cleaner, hub, a.log, version)

	err = a.loader.Watch(func(cfg *config.Config) {
		if err := a.cleaner.Reload(cfg.Document); err != nil {
			return
		}
		if hub != nil {
			hub.BroadcastStatus()
		}
	}, func(err error) {
		a.log.Error("Failed to reload configuration", zap.Error(err))
	})
	if err != nil {
		a.log.Info("Configuration watch disabled", zap.String("reason", err.Error()))
	}

	serverErrors := make(chan error, 1)
	go func() {
		a.log.Info("HTTP server listening", zap.Int("port", a.cfg.Server.Port))
		serverErrors <- srv.Start()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)

	case <-ctx.Done():
		a.log.Info("Shutdown signal received")

		// Give outstanding requests time to complete
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Stop(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shutdown server gracefully: %w", err)
		}

		a.log.Info("Server shutdown complete")
		return nil
	}
}
