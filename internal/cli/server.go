package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"quiz-portal/internal/config"
	"quiz-portal/internal/logging"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Migrate the database and start the quiz portal",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log := logging.New("quiz-portal", cfg.Log.Level)

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if cfg.Server.SecretKey == config.DefaultSecretKey {
		log.Warn("using the built-in secret key; set SECRET_KEY in production")
	}

	rt, err := Build(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Error("startup failed")
		return err
	}
	defer rt.Close()

	statsCtx, stopStats := context.WithCancel(ctx)
	defer stopStats()
	go rt.ReportPoolStats(statsCtx, 15*time.Second)

	server := &http.Server{
		Addr:              ":" + finalPort,
		Handler:           rt.Handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.WithField("port", finalPort).Info("starting quiz portal")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	select {
	case <-stop:
		log.Info("shutting down server...")
	case <-ctx.Done():
		log.Info("context canceled, shutting down server...")
	case err := <-serveErr:
		log.WithError(err).Error("server failed")
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
