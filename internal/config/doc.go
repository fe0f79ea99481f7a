// Package config provides the configuration system for drawstorm.
//
// Configuration is resolved in three layers, higher layers overriding lower:
//
//	┌─────────────────────────────┐
//	│  3. Environment Variables   │  ← DRAWSTORM_* (highest priority)
//	├─────────────────────────────┤
//	│  2. Config File             │  ← drawstorm.toml / .yaml / .json / .jsonc
//	├─────────────────────────────┤
//	│  1. Built-in Defaults       │  ← lowest priority
//	└─────────────────────────────┘
//
// # Sub-packages
//
//   - loader: file decoding (TOML, YAML, JSON, JSONC) and environment overlay
//   - watcher: fsnotify-based file watching for live reload
//
// # Basic Usage
//
//	cfg, err := config.Load(config.LoadOptions{Path: "drawstorm.toml"})
//	if err != nil {
//	    return err
//	}
//	e := engine.New(engine.WithMaxHistorySize(cfg.History.MaxSize))
//
// # Live Reload
//
//	w, err := config.Watch(opts, func(cfg config.Config, err error) {
//	    if err == nil {
//	        e.SetMaxHistorySize(cfg.History.MaxSize)
//	    }
//	})
//	defer w.Stop()
//
// # Environment Variables
//
//	DRAWSTORM_HISTORY_MAX_SIZE=1000
//	DRAWSTORM_AUTOSAVE_ENABLED=false
//	DRAWSTORM_AUTOSAVE_DEBOUNCE=500ms
//	DRAWSTORM_STORAGE_PATH=/var/lib/drawstorm/docs.db
//	DRAWSTORM_LOG_LEVEL=debug
package config
