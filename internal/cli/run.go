package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/lobbysight/lobbysight/internal/api"
	"github.com/lobbysight/lobbysight/internal/config"
	"github.com/lobbysight/lobbysight/internal/factory"
	"github.com/lobbysight/lobbysight/internal/feed"
	"github.com/lobbysight/lobbysight/internal/logwatch"
	"github.com/lobbysight/lobbysight/internal/model"
)

func newRunCmd() *cobra.Command {
	var logPath string
	var fromStart bool

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Start the overlay",
		Long: `Start the overlay: tail the log file, track the lobby and party,
enrich players with stats, and serve snapshots on the local API.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			envCfg, err := config.Load()
			if err != nil {
				return err
			}
			if logPath != "" {
				envCfg.LogPath = logPath
			}
			if fromStart {
				envCfg.FromStart = true
			}
			return runOverlay(envCfg)
		},
	}

	runCmd.Flags().StringVar(&logPath, "log", "", "Minecraft log file to tail (env: LOBBYSIGHT_LOG_PATH)")
	runCmd.Flags().BoolVar(&fromStart, "from-start", false, "Read the log from the beginning instead of the end")

	return runCmd
}

func runOverlay(envCfg config.Config) error {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(envCfg.LogLevel),
	}))
	slog.SetDefault(logger)

	app, err := factory.New(factory.Config{
		Settings: envCfg,
		Logger:   logger,
	})
	if err != nil {
		return fmt.Errorf("failed to wire application: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Stored settings fill gaps the environment left open
	logPath := envCfg.LogPath
	if settings, err := app.Storage.GetSettings(ctx); err == nil {
		if app.KeyHolder.Get() == "" && settings.APIKey != "" {
			app.KeyHolder.Set(settings.APIKey)
		}
		if logPath == "" {
			logPath = settings.LogPath
		}
	} else if !errors.Is(err, model.ErrSettingsNotFound) {
		logger.Warn("could not load stored settings", slog.String("error", err.Error()))
	}
	if logPath == "" {
		return errors.New("no log file configured: pass --log or set LOBBYSIGHT_LOG_PATH")
	}

	if err := saveSettings(ctx, app, logPath); err != nil {
		logger.Warn("could not persist settings", slog.String("error", err.Error()))
	}

	// Start tailing before anything consumes events
	watcher := logwatch.New(logPath, logger)
	lines, err := watcher.Watch(ctx, envCfg.FromStart)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	logger.Info("tailing log", slog.String("path", logPath))

	lineFeed := feed.New(
		app.Tracker,
		app.Storage,
		app.DenickService,
		app.StatsService,
		app.KeyHolder,
		app.Client,
		app.Clock,
		logger,
	)
	go lineFeed.Run(ctx, lines)
	go app.Orchestrator.Run(ctx)

	router := api.NewRouter(api.RouterConfig{
		Logger:        logger,
		State:         app.State,
		Tracker:       app.Tracker,
		DenickService: app.DenickService,
		Storage:       app.Storage,
		Clock:         app.Clock,
	})

	serverConfig := api.DefaultServerConfig()
	serverConfig.Host = envCfg.Host
	serverConfig.Port = envCfg.Port
	server := api.NewServer(router, serverConfig, logger)

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutdown signal received")
		cancel()
	}()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	logger.Info("overlay started", slog.String("addr", server.Addr()))

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
		if err := server.Shutdown(context.Background()); err != nil {
			return err
		}
	}

	logger.Info("overlay stopped")
	return nil
}

func saveSettings(ctx context.Context, app *factory.App, logPath string) error {
	settings, err := app.Storage.GetSettings(ctx)
	if err != nil {
		settings = &model.Settings{}
	}
	settings.LogPath = logPath
	if key := app.KeyHolder.Get(); key != "" {
		settings.APIKey = key
	}
	settings.UpdatedAt = app.Clock.Now()
	return app.Storage.SaveSettings(ctx, settings)
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
