package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"evaluation-console/internal/app"
	"evaluation-console/internal/config"
	transport "evaluation-console/internal/transport/http"
	"github.com/spf13/cobra"
)

// NewStartCmd builds the CLI subcommand to start the console server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the console server",
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

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	c, err := buildConsole(ctx, cfg)
	if err != nil {
		return err
	}
	defer c.Close()

	if cfg.Postgres.URL != "" {
		if err := migrateArchive(ctx, cfg, c.logger); err != nil {
			return err
		}
	}

	theme, err := app.NewThemeStore(ctx, c.prefs)
	if err != nil {
		c.logger.Warn("restore theme preference", err)
	}

	consoleHandler := transport.NewConsoleHandler(transport.ConsoleDeps{
		Options:   c.options,
		Questions: c.client,
		Validator: c.validator,
		Results:   c.results,
		Theme:     theme,
		Logger:    c.logger,
	})
	api := transport.NewAPIHandler(transport.APIDeps{
		Results:   c.results,
		Dashboard: c.dashboard,
		Questions: c.questions,
		Theme:     theme,
		Notices:   c.notifier,
		Catalog:   c.client,
		Options:   c.options,
		Logger:    c.logger,
	})

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", consoleHandler.ServeWS)
	api.Register(mux)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		c.logger.Info("starting evaluation console", ":"+finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			c.logger.Error("failed to start server", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		c.logger.Info("shutting down server...")
	case <-ctx.Done():
		c.logger.Info("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
