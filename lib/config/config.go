// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"slices"

	"gopkg.in/yaml.v3"
)

// Config is the master configuration for editview.
type Config struct {
	// Root is the base directory for editview data: traces, logs,
	// anything the host writes. Referenced by other path fields as
	// ${EDITVIEW_ROOT}.
	Root string `yaml:"root"`

	// Editor configures the embedded editor subprocess.
	Editor EditorConfig `yaml:"editor"`

	// UI configures the terminal host.
	UI UIConfig `yaml:"ui"`

	// Trace configures session recording.
	Trace TraceConfig `yaml:"trace"`

	// Log configures structured logging.
	Log LogConfig `yaml:"log"`
}

// EditorConfig configures the embedded editor subprocess.
type EditorConfig struct {
	// Command is the editor argv: the binary followed by extra
	// arguments. The embedding flag is added by the session, not
	// listed here.
	// Default: [nvim]
	Command []string `yaml:"command"`

	// QueueSize bounds the notification queue between the protocol
	// reader and the UI loop.
	// Default: 64
	QueueSize int `yaml:"queue_size"`
}

// UIConfig configures the terminal host.
type UIConfig struct {
	// Bindings is the path to a JSONC file overriding the built-in
	// host key bindings. Empty means built-ins only.
	Bindings string `yaml:"bindings"`

	// Mouse enables forwarding mouse events to the editor.
	// Default: true
	Mouse bool `yaml:"mouse"`
}

// TraceConfig configures session recording.
type TraceConfig struct {
	// Directory is where trace files are written when recording is
	// enabled.
	// Default: ${EDITVIEW_ROOT}/traces
	Directory string `yaml:"directory"`

	// Compression selects the per-frame compression of recorded
	// traces: "none", "lz4", or "zstd".
	// Default: zstd
	Compression string `yaml:"compression"`
}

// LogConfig configures structured logging.
type LogConfig struct {
	// Level is the minimum level logged: "debug", "info", "warn",
	// or "error".
	// Default: info
	Level string `yaml:"level"`

	// File is where log output goes, opened in append mode. Empty
	// discards log output: the terminal itself is owned by the UI,
	// so there is nowhere else to write.
	File string `yaml:"file"`
}

// Default returns the built-in configuration. These defaults are a
// complete working setup for a system with nvim on PATH; a config
// file is only needed to change them.
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	defaultRoot := filepath.Join(homeDir, ".cache", "editview")

	return &Config{
		Root: defaultRoot,
		Editor: EditorConfig{
			Command:   []string{"nvim"},
			QueueSize: 64,
		},
		UI: UIConfig{
			Mouse: true,
		},
		Trace: TraceConfig{
			Directory:   filepath.Join(defaultRoot, "traces"),
			Compression: "zstd",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from the EDITVIEW_CONFIG environment
// variable. Unlike [LoadFile], a missing variable is not an error:
// it means no config file, and the defaults apply unchanged.
func Load() (*Config, error) {
	configPath := os.Getenv("EDITVIEW_CONFIG")
	if configPath == "" {
		cfg := Default()
		cfg.expandVariables()
		return cfg, nil
	}
	return LoadFile(configPath)
}

// LoadFile loads configuration from a specific file path, merging it
// over the defaults.
//
// The config file is the single source of truth. Environment
// variables do not override config values. The only expansion
// performed is ${HOME} and similar path variables for portability.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	cfg.expandVariables()
	return cfg, nil
}

// expandVariables expands ${VAR} and ${VAR:-default} patterns in all
// path fields. Root is expanded first so dependent paths can
// reference ${EDITVIEW_ROOT}.
func (c *Config) expandVariables() {
	vars := map[string]string{
		"EDITVIEW_ROOT": c.Root,
		"HOME":          os.Getenv("HOME"),
	}

	c.Root = expandVars(c.Root, vars)
	vars["EDITVIEW_ROOT"] = c.Root

	c.Trace.Directory = expandVars(c.Trace.Directory, vars)
	c.UI.Bindings = expandVars(c.UI.Bindings, vars)
	c.Log.File = expandVars(c.Log.File, vars)
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// compressionValues are the accepted trace.compression settings,
// matching what the trace package parses.
var compressionValues = []string{"none", "lz4", "zstd"}

// Validate checks the configuration for errors. All problems are
// reported at once via errors.Join, not just the first.
func (c *Config) Validate() error {
	var errs []error

	if c.Root == "" {
		errs = append(errs, fmt.Errorf("root is required"))
	}

	if len(c.Editor.Command) == 0 || c.Editor.Command[0] == "" {
		errs = append(errs, fmt.Errorf("editor.command is required"))
	}
	if c.Editor.QueueSize < 0 {
		errs = append(errs, fmt.Errorf("editor.queue_size must not be negative, got %d", c.Editor.QueueSize))
	}

	if !slices.Contains(compressionValues, c.Trace.Compression) {
		errs = append(errs, fmt.Errorf("trace.compression must be one of %v, got %q", compressionValues, c.Trace.Compression))
	}

	if _, err := ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// ParseLevel converts a config log level string to a slog.Level.
func ParseLevel(level string) (slog.Level, error) {
	switch level {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("log.level must be debug, info, warn, or error, got %q", level)
	}
}

// EnsurePaths creates the configured data directories if they don't
// exist.
func (c *Config) EnsurePaths() error {
	for _, path := range []string{c.Root, c.Trace.Directory} {
		if path == "" {
			continue
		}
		if err := os.MkdirAll(path, 0o755); err != nil {
			return fmt.Errorf("config: creating %s: %w", path, err)
		}
	}
	return nil
}
