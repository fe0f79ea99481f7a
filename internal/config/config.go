package config

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/dshills/drawstorm/internal/config/loader"
	"github.com/dshills/drawstorm/internal/config/watcher"
)

// DefaultEnvPrefix prefixes every environment override.
const DefaultEnvPrefix = "DRAWSTORM_"

// Default values.
const (
	DefaultMaxHistorySize   = 500
	DefaultAutosaveDebounce = 2 * time.Second
	DefaultAutosaveInterval = 30 * time.Second
	DefaultStoragePath      = "drawstorm.db"
	DefaultLogLevel         = "info"
	DefaultLogPrefix        = "drawstorm"
)

// LogLevels lists the accepted values of Log.Level.
var LogLevels = []string{"debug", "info", "warn", "error"}

// Config is the resolved drawstorm configuration.
type Config struct {
	History  HistoryConfig  `toml:"history" yaml:"history" json:"history" envPrefix:"HISTORY_"`
	Autosave AutosaveConfig `toml:"autosave" yaml:"autosave" json:"autosave" envPrefix:"AUTOSAVE_"`
	Storage  StorageConfig  `toml:"storage" yaml:"storage" json:"storage" envPrefix:"STORAGE_"`
	Log      LogConfig      `toml:"log" yaml:"log" json:"log" envPrefix:"LOG_"`
}

// HistoryConfig configures the undo/redo history.
type HistoryConfig struct {
	// MaxSize bounds the undo stack; the oldest entries are evicted first.
	MaxSize int `toml:"max_size" yaml:"max_size" json:"max_size" env:"MAX_SIZE"`
}

// AutosaveConfig configures background saving.
type AutosaveConfig struct {
	Enabled bool `toml:"enabled" yaml:"enabled" json:"enabled" env:"ENABLED"`
	// Debounce is the quiet period after the last change before saving.
	Debounce Duration `toml:"debounce" yaml:"debounce" json:"debounce" env:"DEBOUNCE"`
	// Interval forces a save during continuous editing. Zero disables it.
	Interval Duration `toml:"interval" yaml:"interval" json:"interval" env:"INTERVAL"`
}

// StorageConfig configures the document database.
type StorageConfig struct {
	Path string `toml:"path" yaml:"path" json:"path" env:"PATH"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `toml:"level" yaml:"level" json:"level" env:"LEVEL"`
	Prefix string `toml:"prefix" yaml:"prefix" json:"prefix" env:"PREFIX"`
}

// Duration is a time.Duration written as a string such as "1.5s".
type Duration time.Duration

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// String implements fmt.Stringer.
func (d Duration) String() string { return time.Duration(d).String() }

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		History: HistoryConfig{MaxSize: DefaultMaxHistorySize},
		Autosave: AutosaveConfig{
			Enabled:  true,
			Debounce: Duration(DefaultAutosaveDebounce),
			Interval: Duration(DefaultAutosaveInterval),
		},
		Storage: StorageConfig{Path: DefaultStoragePath},
		Log:     LogConfig{Level: DefaultLogLevel, Prefix: DefaultLogPrefix},
	}
}

// Validate checks the configuration and returns the first problem found
// as a *ValidationError.
func (c Config) Validate() error {
	switch {
	case c.History.MaxSize <= 0:
		return &ValidationError{Path: "history.max_size", Message: "must be positive", Value: c.History.MaxSize, Code: ErrCodeOutOfRange}
	case c.Autosave.Debounce < 0:
		return &ValidationError{Path: "autosave.debounce", Message: "must not be negative", Value: c.Autosave.Debounce, Code: ErrCodeOutOfRange}
	case c.Autosave.Interval < 0:
		return &ValidationError{Path: "autosave.interval", Message: "must not be negative", Value: c.Autosave.Interval, Code: ErrCodeOutOfRange}
	case strings.TrimSpace(c.Storage.Path) == "":
		return &ValidationError{Path: "storage.path", Message: "is required", Value: c.Storage.Path, Code: ErrCodeRequiredMissing}
	case !slices.Contains(LogLevels, strings.ToLower(c.Log.Level)):
		return &ValidationError{Path: "log.level", Message: "must be one of " + strings.Join(LogLevels, ", "), Value: c.Log.Level, Code: ErrCodeInvalidEnum}
	}
	return nil
}

// LoadOptions controls Load.
type LoadOptions struct {
	// Path is the config file. Empty means defaults and environment only.
	Path string

	// Required makes a missing file an error.
	Required bool

	// FS reads the file. Defaults to the OS file system.
	FS loader.FileSystem

	// EnvPrefix defaults to DefaultEnvPrefix.
	EnvPrefix string

	// Environ replaces the process environment when non-nil.
	Environ map[string]string

	// SkipEnv disables environment overrides.
	SkipEnv bool
}

// Load resolves the configuration: defaults, then the file, then the
// environment. The result is validated.
func Load(opts LoadOptions) (Config, error) {
	cfg := Default()

	if opts.Path != "" {
		fsys := opts.FS
		if fsys == nil {
			fsys = loader.DefaultFS()
		}
		found, err := loader.LoadFile(fsys, opts.Path, &cfg)
		if err != nil {
			return Config{}, err
		}
		if !found && opts.Required {
			return Config{}, fmt.Errorf("%w: %s", ErrFileNotFound, opts.Path)
		}
	}

	if !opts.SkipEnv {
		prefix := opts.EnvPrefix
		if prefix == "" {
			prefix = DefaultEnvPrefix
		}
		var err error
		if opts.Environ != nil {
			err = loader.LoadEnvFrom(opts.Environ, prefix, &cfg)
		} else {
			err = loader.LoadEnv(prefix, &cfg)
		}
		if err != nil {
			return Config{}, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Watch reloads the configuration whenever the file at opts.Path changes
// and passes the result to fn. Reload failures and watcher errors are passed
// to fn as well; the caller decides whether to keep the previous
// configuration. A removed file is ignored until it reappears.
//
// Call Stop on the returned watcher to release it.
func Watch(opts LoadOptions, fn func(Config, error), wopts ...watcher.Option) (*watcher.Watcher, error) {
	if opts.Path == "" {
		return nil, fmt.Errorf("watch config: %w: no path", ErrFileNotFound)
	}

	onError := watcher.WithErrorHandler(func(err error) {
		fn(Config{}, fmt.Errorf("watch config: %w", err))
	})
	w, err := watcher.New(opts.Path, func(ev watcher.Event) {
		if ev.Op == watcher.OpRemove || ev.Op == watcher.OpRename {
			return
		}
		fn(Load(opts))
	}, append([]watcher.Option{onError}, wopts...)...)
	if err != nil {
		return nil, fmt.Errorf("watch config: %w", err)
	}
	return w, nil
}
