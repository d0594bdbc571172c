// Package cli wires the npctl commands to the configuration, the device
// connection and the event log.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"

	"simplenp/internal/acm"
	"simplenp/internal/config"
	"simplenp/internal/logging"
	"simplenp/internal/store"
	"simplenp/internal/tui"
)

// Options are the command line overrides applied on top of the config file.
type Options struct {
	ConfigFile string
	Port       string
	LogLevel   string
	Stderr     io.Writer
	// Bind is called with the viper instance before the file is read so
	// flags can be bound to config keys.
	Bind func(*config.Manager) error
}

// App holds CLI dependencies. The device connection and the event log are
// opened on first use.
type App struct {
	Config *config.Manager
	Theme  *tui.Theme
	Log    zerolog.Logger

	ctx   context.Context
	conn  *acm.Conn
	store *store.Store
}

// NewApp loads the configuration and builds the logger.
func NewApp(ctx context.Context, opts Options) (*App, error) {
	mgr, err := config.NewManager(opts.ConfigFile)
	if err != nil {
		return nil, fmt.Errorf("config manager: %w", err)
	}
	if opts.Bind != nil {
		if err := opts.Bind(mgr); err != nil {
			return nil, err
		}
	}
	if err := mgr.Load(); err != nil {
		return nil, err
	}
	cfg := mgr.Get()

	level := cfg.Logging.Level
	if opts.LogLevel != "" {
		level = opts.LogLevel
	}
	w := opts.Stderr
	if w == nil {
		w = os.Stderr
	}
	log := logging.NewWriter(w, logging.Config{
		Level:      logging.ParseLevel(level),
		Format:     cfg.Logging.Format,
		TimeFormat: "15:04:05",
	})
	log.Debug().Str("config", mgr.File()).Str("port", cfg.Device.Port).Msg("config loaded")

	return &App{
		Config: mgr,
		Theme:  tui.DefaultTheme(),
		Log:    log,
		ctx:    logging.WithContext(ctx, log),
	}, nil
}

// Ctx returns the application context with logger.
func (a *App) Ctx() context.Context { return a.ctx }

// Conn dials the configured port.
func (a *App) Conn() (*acm.Conn, error) {
	if a.conn != nil {
		return a.conn, nil
	}
	dev := a.Config.Get().Device
	c, err := acm.Dial(a.ctx, dev.Port,
		acm.WithTimeout(dev.Timeout),
		acm.WithLogger(a.Log.With().Str("port", dev.Port).Logger()),
	)
	if err != nil {
		return nil, err
	}
	a.conn = c
	return c, nil
}

// Store opens the key event log.
func (a *App) Store() (*store.Store, error) {
	if a.store != nil {
		return a.store, nil
	}
	path := a.Config.Get().Store.Path
	s, err := store.Open(a.ctx, path)
	if err != nil {
		return nil, err
	}
	a.Log.Debug().Str("db_path", path).Msg("event log opened")
	a.store = s
	return s, nil
}

// Close releases the connection and the event log.
func (a *App) Close() error {
	var err error
	if a.conn != nil {
		err = a.conn.Close()
		a.conn = nil
	}
	if a.store != nil {
		if cerr := a.store.Close(); err == nil {
			err = cerr
		}
		a.store = nil
	}
	return err
}
