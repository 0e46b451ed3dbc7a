package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"go.uber.org/zap"

	"github.com/axiona25/Sportello-Notai-sub001/internal/availability"
	"github.com/axiona25/Sportello-Notai-sub001/internal/backend"
	"github.com/axiona25/Sportello-Notai-sub001/internal/bus"
	"github.com/axiona25/Sportello-Notai-sub001/internal/cli"
	"github.com/axiona25/Sportello-Notai-sub001/internal/config"
	"github.com/axiona25/Sportello-Notai-sub001/internal/notify"
	"github.com/axiona25/Sportello-Notai-sub001/internal/poll"
	"github.com/axiona25/Sportello-Notai-sub001/internal/registry"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load()
	rootCmd := cli.NewRootCmd(&cfg, buildApp)
	return rootCmd.Execute()
}

// buildApp wires the engines behind the TUI from the final config.
func buildApp(cfg config.Config) (*cli.App, error) {
	log, err := newFileLogger(cfg.LogPath)
	if err != nil {
		return nil, fmt.Errorf("opening log: %w", err)
	}

	client := backend.NewHTTPClient(backend.Config{
		BaseURL:   cfg.BackendURL,
		AuthToken: cfg.AuthToken,
		Timeout:   cfg.RequestTimeout,
	}, log)

	eventBus := bus.New()
	reg := registry.New(client, eventBus, log)
	reconciler := notify.New(client, reg, eventBus, notify.Config{
		Role:        cfg.Role,
		Debounce:    250 * time.Millisecond,
		DeleteDelay: 4 * time.Second,
	}, log)

	app := &cli.App{
		Cfg:           cfg,
		Log:           log,
		Backend:       client,
		Bus:           eventBus,
		Registry:      reg,
		Notifications: reconciler,
		Slots:         availability.New(client),
	}

	// Silent periodic refresh: appointments and notifications together.
	app.RefreshTask = poll.NewTask("refresh", cfg.RefreshInterval, func(ctx context.Context) {
		_ = reg.Refresh(ctx)
		_ = reconciler.RefreshNotifications(ctx)
	}, log)

	// Slow poll of the service directory.
	app.DirectoryTask = poll.NewTask("directory", cfg.DirectoryInterval, func(ctx context.Context) {
		app.ReloadCatalog(ctx)
	}, log)

	app.IsInteractive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}

	// Warm the catalog before the wizard needs it.
	warmCtx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout)
	app.ReloadCatalog(warmCtx)
	cancel()

	return app, nil
}

// newFileLogger writes structured logs to a file, keeping stdout free for
// the TUI renderer.
func newFileLogger(path string) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	zcfg.OutputPaths = []string{path}
	zcfg.ErrorOutputPaths = []string{path}
	return zcfg.Build()
}
