// Package app wires configuration, storage, the diagram engine, autosave
// and scripting into one application and manages their lifecycle.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/dshills/drawstorm/internal/autosave"
	"github.com/dshills/drawstorm/internal/config"
	"github.com/dshills/drawstorm/internal/config/watcher"
	"github.com/dshills/drawstorm/internal/diagram"
	"github.com/dshills/drawstorm/internal/engine"
	"github.com/dshills/drawstorm/internal/script"
	"github.com/dshills/drawstorm/internal/storage"
	"github.com/dshills/drawstorm/internal/storage/sqlite"
)

// Options configures the application.
type Options struct {
	// ConfigPath is the configuration file. Empty uses defaults and the
	// environment only.
	ConfigPath string

	// StoragePath overrides storage.path from the configuration.
	StoragePath string

	// DocumentID selects the document to open. Empty opens the most
	// recently saved document, or creates one when storage is empty.
	DocumentID string

	// DocumentName names a newly created document.
	DocumentName string

	// LogLevel overrides log.level from the configuration.
	LogLevel string

	// LogOutput receives log lines. Defaults to os.Stderr.
	LogOutput io.Writer

	// ScriptOutput receives script print output. Defaults to os.Stdout.
	ScriptOutput io.Writer

	// ReadOnly rejects edits and never writes to storage.
	ReadOnly bool

	// WatchConfig reloads the configuration file when it changes.
	WatchConfig bool

	// Environ replaces the process environment for configuration when set.
	Environ map[string]string

	// Storage is used instead of opening the configured database. The
	// caller keeps ownership.
	Storage storage.Store
}

// App is a running drawstorm instance bound to one document.
type App struct {
	mu sync.Mutex

	opts   Options
	cfg    config.Config
	logger *Logger

	store     storage.Store
	ownsStore bool
	engine    *engine.Engine
	saver     *autosave.Saver
	watcher   *watcher.Watcher

	closed bool
}

// New loads configuration, opens storage and the document, and starts
// background services.
func New(ctx context.Context, opts Options) (*App, error) {
	a := &App{opts: opts}
	if err := a.bootstrap(ctx); err != nil {
		a.shutdown()
		return nil, err
	}
	return a, nil
}

func (a *App) bootstrap(ctx context.Context) error {
	// 1. Configuration
	cfg, err := config.Load(a.loadOptions())
	if err != nil {
		return &InitError{Component: "config", Err: err}
	}
	if a.opts.StoragePath != "" {
		cfg.Storage.Path = a.opts.StoragePath
	}
	if a.opts.LogLevel != "" {
		cfg.Log.Level = a.opts.LogLevel
	}
	a.cfg = cfg

	// 2. Logging
	a.logger = NewLogger(LoggerConfig{
		Level:  ParseLogLevel(cfg.Log.Level),
		Output: a.opts.LogOutput,
		Prefix: cfg.Log.Prefix,
	})

	// 3. Storage
	if a.opts.Storage != nil {
		a.store = a.opts.Storage
	} else {
		st, err := sqlite.Open(cfg.Storage.Path)
		if err != nil {
			return &InitError{Component: "storage", Err: err}
		}
		a.store, a.ownsStore = st, true
	}

	// 4. Document and history
	doc, hist, stored, err := a.loadDocument(ctx)
	if err != nil {
		return &InitError{Component: "document", Err: err}
	}
	engineOpts := []engine.Option{
		engine.WithDocument(doc),
		engine.WithMaxHistorySize(cfg.History.MaxSize),
		engine.WithLogger(a.logger.WithComponent("history")),
	}
	if a.opts.ReadOnly {
		engineOpts = append(engineOpts, engine.WithReadOnly())
	}
	a.engine = engine.New(engineOpts...)
	if len(hist) > 0 {
		if err := a.engine.Open(doc, hist); err != nil {
			a.logger.Warn("discarding unreadable history of %s: %v", doc.ID, err)
		}
	}

	// 5. Autosave
	if !a.opts.ReadOnly {
		a.saver = autosave.New(a.engine, a.store,
			autosave.WithDebounce(cfg.Autosave.Debounce.Std()),
			autosave.WithInterval(cfg.Autosave.Interval.Std()),
			autosave.WithLogger(a.logger.WithComponent("autosave")),
		)
		if stored {
			if err := a.saver.MarkClean(); err != nil {
				return &InitError{Component: "autosave", Err: err}
			}
		}
		if cfg.Autosave.Enabled {
			if err := a.saver.Start(ctx); err != nil {
				return &InitError{Component: "autosave", Err: err}
			}
		}
	}

	// 6. Config live reload
	if a.opts.WatchConfig && a.opts.ConfigPath != "" {
		w, err := config.Watch(a.loadOptions(), a.applyConfig)
		if err != nil {
			return &InitError{Component: "config watcher", Err: err}
		}
		a.watcher = w
	}

	a.logger.Info("opened %s (%s)", doc.Name, doc.ID)
	return nil
}

func (a *App) loadOptions() config.LoadOptions {
	return config.LoadOptions{Path: a.opts.ConfigPath, Environ: a.opts.Environ}
}

// loadDocument resolves the document to open. stored reports whether it
// came from storage.
func (a *App) loadDocument(ctx context.Context) (doc diagram.Document, hist []byte, stored bool, err error) {
	id := a.opts.DocumentID
	if id == "" {
		infos, err := a.store.ListDocuments(ctx)
		if err != nil {
			return doc, nil, false, err
		}
		if len(infos) == 0 {
			return a.newDocument(diagram.NewID()), nil, false, nil
		}
		id = infos[0].ID
	}

	doc, err = a.store.LoadDocument(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return a.newDocument(id), nil, false, nil
	}
	if err != nil {
		return doc, nil, false, err
	}
	hist, err = a.store.LoadHistory(ctx, id)
	if err != nil {
		return doc, nil, false, err
	}
	return doc, hist, true, nil
}

func (a *App) newDocument(id string) diagram.Document {
	name := a.opts.DocumentName
	if name == "" {
		name = "Untitled"
	}
	return diagram.NewDocument(id, name)
}

// applyConfig is the config watcher callback.
func (a *App) applyConfig(cfg config.Config, err error) {
	if err != nil {
		a.logger.Warn("config reload failed, keeping previous settings: %v", err)
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return
	}
	if a.opts.LogLevel == "" {
		a.logger.SetLevel(ParseLogLevel(cfg.Log.Level))
	}
	if cfg.History.MaxSize != a.cfg.History.MaxSize {
		a.engine.SetMaxHistorySize(cfg.History.MaxSize)
		a.logger.Info("history limit set to %d", cfg.History.MaxSize)
	}
	cfg.Storage.Path = a.cfg.Storage.Path
	a.cfg = cfg
}

// Engine returns the diagram engine.
func (a *App) Engine() *engine.Engine {
	return a.engine
}

// Config returns the active configuration.
func (a *App) Config() config.Config {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cfg
}

// Logger returns the application's logger.
func (a *App) Logger() *Logger {
	if a.logger == nil {
		return GetLogger()
	}
	return a.logger
}

// Storage returns the document store.
func (a *App) Storage() storage.Store {
	return a.store
}

// Save writes the document and history now.
func (a *App) Save(ctx context.Context) error {
	if a.saver == nil {
		return ErrReadOnly
	}
	id := a.engine.Document().ID
	if err := a.saver.Flush(ctx); err != nil {
		return NewOperationError("save", id, err)
	}
	return nil
}

// Documents lists stored documents, most recent first.
func (a *App) Documents(ctx context.Context) ([]storage.DocumentInfo, error) {
	return a.store.ListDocuments(ctx)
}

// RunScript executes a Lua file against the engine.
func (a *App) RunScript(ctx context.Context, path string) error {
	if a.opts.ReadOnly {
		return ErrReadOnly
	}
	out := a.opts.ScriptOutput
	if out == nil {
		out = os.Stdout
	}
	r := script.NewRunner(a.engine,
		script.WithOutput(out),
		script.WithLogger(a.logger.WithComponent("script")),
	)
	defer r.Close()

	if err := r.RunFile(ctx, path); err != nil {
		return NewOperationError("script", path, err)
	}
	return nil
}

// Close stops background services, saves pending changes and releases
// storage.
func (a *App) Close() error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	a.closed = true
	a.mu.Unlock()

	return a.shutdown()
}

func (a *App) shutdown() error {
	var errs []error
	if a.watcher != nil {
		a.watcher.Stop()
	}
	if a.saver != nil {
		if err := a.saver.Close(); err != nil {
			errs = append(errs, fmt.Errorf("autosave: %w", err))
		}
	}
	if a.ownsStore && a.store != nil {
		if err := a.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}
	return errors.Join(errs...)
}
