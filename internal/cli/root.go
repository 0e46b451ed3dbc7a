package cli

import (
	"context"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/axiona25/Sportello-Notai-sub001/internal/availability"
	"github.com/axiona25/Sportello-Notai-sub001/internal/backend"
	"github.com/axiona25/Sportello-Notai-sub001/internal/booking"
	"github.com/axiona25/Sportello-Notai-sub001/internal/bus"
	"github.com/axiona25/Sportello-Notai-sub001/internal/config"
	"github.com/axiona25/Sportello-Notai-sub001/internal/notify"
	"github.com/axiona25/Sportello-Notai-sub001/internal/poll"
	"github.com/axiona25/Sportello-Notai-sub001/internal/registry"
)

// App bundles the engines and runtime settings the TUI depends on.
type App struct {
	Cfg config.Config
	Log *zap.Logger

	Backend       backend.Client
	Bus           *bus.Bus
	Registry      *registry.Registry
	Notifications *notify.Reconciler
	Slots         *availability.Engine

	// Poll tasks, paused while the terminal is unfocused.
	RefreshTask   *poll.Task
	DirectoryTask *poll.Task

	// Detect interactive terminal, injected by main.
	IsInteractive func() bool

	mu      sync.Mutex
	catalog *booking.Catalog
}

// Catalog returns the current service-type catalog, or nil before the
// first directory load.
func (a *App) Catalog() *booking.Catalog {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.catalog
}

// SetCatalog swaps in a freshly loaded catalog. The directory poll calls
// this in the background.
func (a *App) SetCatalog(c *booking.Catalog) {
	a.mu.Lock()
	a.catalog = c
	a.mu.Unlock()
}

// ReloadCatalog fetches the service directory and swaps the catalog.
// Failures keep the previous catalog.
func (a *App) ReloadCatalog(ctx context.Context) {
	c, err := booking.LoadCatalog(ctx, a.Backend)
	if err != nil {
		a.Log.Warn("catalog reload failed, keeping previous", zap.Error(err))
		return
	}
	a.SetCatalog(c)
}

// NewRootCmd creates the top-level "sportello" command. Running it with no
// subcommand assembles the app from the (flag-adjusted) config and starts
// the TUI.
func NewRootCmd(cfg *config.Config, newApp func(config.Config) (*App, error)) *cobra.Command {
	root := &cobra.Command{
		Use:   "sportello",
		Short: "Notarial appointment booking terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(*cfg)
			if err != nil {
				return err
			}
			return RunTUI(app)
		},
	}
	bindConfigFlags(root.PersistentFlags(), cfg)
	return root
}

// bindConfigFlags exposes the environment-driven settings as flag
// overrides. Flags win over env because cobra parses them after Load.
func bindConfigFlags(fs *pflag.FlagSet, cfg *config.Config) {
	fs.StringVar(&cfg.BackendURL, "backend-url", cfg.BackendURL, "backend base URL")
	fs.StringVar(&cfg.NotaryID, "notary", cfg.NotaryID, "target notary office id")
	fs.StringVar(&cfg.LogPath, "log", cfg.LogPath, "log file path")
	fs.DurationVar(&cfg.RefreshInterval, "refresh-interval", cfg.RefreshInterval, "appointment refresh interval")
}

// busBridge subscribes the program to engine bus events, re-delivering
// them as tea messages. Returns the unsubscribe func.
func busBridge(eb *bus.Bus, send func(tea.Msg)) (cancel func()) {
	return eb.Subscribe(func(e bus.Event) {
		send(busEventMsg{event: e})
	})
}
