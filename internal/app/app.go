package app

import (
	"context"
	"fmt"
	"time"

	"github.com/plandy-app/flandy/internal/config"
	"github.com/plandy-app/flandy/internal/plandy"
	"github.com/plandy-app/flandy/internal/prefs"
	"github.com/plandy-app/flandy/internal/state"
	"github.com/plandy-app/flandy/internal/ui"
)

// Options configure the Flandy application.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/flandy/prefs.toml
	PollEvery  int    // seconds; zero uses the config file value
}

// Run boots the Flandy TUI until the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	userPrefs := prefs.Load(opts.PrefsPath)

	client, err := plandy.NewClient(cfg.APIBase)
	if err != nil {
		return fmt.Errorf("init plandy client: %w", err)
	}

	store := &state.Store{}

	// Restore the saved session, if any. The first poll validates it: an
	// expired token comes back as a 401 and the client drops it itself.
	if userPrefs.Token != "" {
		client.SetToken(userPrefs.Token)
		if user, err := client.CurrentUser(ctx); err == nil {
			store.SetSession(userPrefs.Token, user)
		}
	}

	interval := time.Duration(cfg.PollSeconds) * time.Second
	if opts.PollEvery > 0 {
		interval = time.Duration(opts.PollEvery) * time.Second
	}

	// Start background poller
	StartPoller(ctx, store, client, interval)

	// Do initial refresh to populate store before UI starts
	refresh(ctx, store, client)

	uiOpts := ui.Options{
		Context:   ctx,
		Client:    client,
		Store:     store,
		Config:    &cfg,
		PollTick:  interval,
		ThemeName: userPrefs.Theme,
		PrefsPath: opts.PrefsPath,
	}
	return ui.Run(uiOpts)
}
