// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// editview is a terminal host for an embedded editor. It spawns the
// editor as a subprocess speaking the embedding RPC over stdio,
// mirrors the editor's screen into the terminal, and forwards
// keyboard and mouse input. The editor keeps full ownership of
// editing semantics; editview owns the terminal.
//
// With --record, every inbound protocol frame is captured to a trace
// file that cmd/editview-trace can inspect and verify offline.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/bureau-foundation/editview/editor"
	"github.com/bureau-foundation/editview/lib/config"
	"github.com/bureau-foundation/editview/lib/editorui"
	"github.com/bureau-foundation/editview/lib/version"
	"github.com/bureau-foundation/editview/trace"
)

// attachTimeout bounds the initial handshake. A healthy editor
// answers ui_attach within milliseconds; a hung one should fail the
// launch instead of freezing the terminal.
const attachTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		if coder, ok := err.(interface{ ExitCode() int }); ok {
			os.Exit(coder.ExitCode())
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// exitError propagates the editor's exit status through run without
// printing an extra message; main exits with the code directly.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("editor exited with code %d", e.code)
}

func (e *exitError) ExitCode() int {
	return e.code
}

func run() error {
	var configPath string
	var editorFlag string
	var recordFlag string
	var bindingsFlag string
	var logLevelFlag string

	flagSet := pflag.NewFlagSet("editview", pflag.ContinueOnError)
	flagSet.StringVar(&configPath, "config", "", "config file (default: $EDITVIEW_CONFIG, else built-in defaults)")
	flagSet.StringVar(&editorFlag, "editor", "", "editor executable, replacing the configured command")
	flagSet.StringVar(&recordFlag, "record", "", `record the session to this trace file ("auto" names it under the trace directory)`)
	flagSet.StringVar(&bindingsFlag, "bindings", "", "JSONC key binding override file")
	flagSet.StringVar(&logLevelFlag, "log-level", "", "log level: debug, info, warn, error")
	flagSet.BoolP("help", "h", false, "show help")

	// Handle --version before flag parsing to match the other
	// editview binaries.
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		version.Print("editview")
		return nil
	}

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			printHelp(flagSet)
			return nil
		}
		return err
	}
	if help, _ := flagSet.GetBool("help"); help {
		printHelp(flagSet)
		return nil
	}

	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadFile(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return err
	}

	if editorFlag != "" {
		cfg.Editor.Command = []string{editorFlag}
	}
	// Positional arguments are files for the editor to open.
	cfg.Editor.Command = append(cfg.Editor.Command, flagSet.Args()...)
	if bindingsFlag != "" {
		cfg.UI.Bindings = bindingsFlag
	}
	if logLevelFlag != "" {
		cfg.Log.Level = logLevelFlag
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	level, err := config.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}

	// The terminal belongs to the renderer for the whole run, so log
	// records go to the configured file or nowhere. Writing to
	// stderr would corrupt the alt-screen display.
	logWriter := io.Writer(io.Discard)
	if cfg.Log.File != "" {
		file, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		defer file.Close()
		logWriter = file
	}
	logger := slog.New(slog.NewTextHandler(logWriter, &slog.HandlerOptions{Level: level}))

	output := int(os.Stdout.Fd())
	if !term.IsTerminal(output) {
		return errors.New("stdout is not a terminal")
	}
	width, height, err := term.GetSize(output)
	if err != nil {
		return fmt.Errorf("reading terminal size: %w", err)
	}

	// Resolve the color profile once, up front. Cell styles degrade
	// to it automatically on non-truecolor terminals.
	lipgloss.DefaultRenderer().SetColorProfile(termenv.ColorProfile())

	var recorder *trace.Writer
	if recordFlag != "" {
		path := recordFlag
		if path == "auto" {
			if err := cfg.EnsurePaths(); err != nil {
				return err
			}
			path = filepath.Join(cfg.Trace.Directory, trace.NewID()+".trace")
		}
		compression, err := trace.ParseCompressionTag(cfg.Trace.Compression)
		if err != nil {
			return err
		}
		recorder, err = trace.NewWriter(path, trace.WriterConfig{Compression: compression})
		if err != nil {
			return err
		}
		logger.Info("recording session", "path", path)
	}

	keys := editorui.DefaultKeyMap
	if cfg.UI.Bindings != "" {
		keys, err = editorui.LoadBindings(cfg.UI.Bindings)
		if err != nil {
			return err
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	session, err := editor.Spawn(ctx, editor.Config{
		Command:   cfg.Editor.Command,
		Logger:    logger,
		QueueSize: cfg.Editor.QueueSize,
		Recorder:  recorder,
	})
	if err != nil {
		return err
	}

	// Attach before the program starts; the first redraw batch is
	// already queued when the UI begins listening. One terminal row
	// is held back for the host status bar.
	attachCtx, attachCancel := context.WithTimeout(ctx, attachTimeout)
	err = session.Attach(attachCtx, width, height-1, editor.DefaultAttachOptions())
	attachCancel()
	if err != nil {
		session.Close()
		return err
	}

	model := editorui.New(editorui.Config{
		Controller: session,
		Logger:     logger,
		Keys:       keys,
		Mouse:      cfg.UI.Mouse,
		Recording:  recorder != nil,
		Width:      width,
		Height:     height,
	})

	options := []tea.ProgramOption{tea.WithAltScreen()}
	if cfg.UI.Mouse {
		options = append(options, tea.WithMouseAllMotion())
	}
	program := tea.NewProgram(model, options...)

	finalState, runErr := program.Run()

	final, haveFinal := finalState.(editorui.Model)
	if haveFinal && final.ForceQuit() {
		// Cancelling the spawn context kills the editor's process
		// group outright, skipping the orderly-quit grace period.
		cancel()
	}
	closeErr := session.Close()

	if recorder != nil {
		if err := recorder.Close(); err != nil {
			logger.Warn("closing trace failed", "error", err)
		}
	}

	if runErr != nil {
		return runErr
	}
	if !haveFinal {
		return closeErr
	}
	if err := final.Err(); err != nil {
		return err
	}
	if code, exited := final.ExitCode(); exited && code != 0 {
		logger.Warn("editor exited non-zero", "code", code)
		return &exitError{code: code}
	}
	return closeErr
}

func printHelp(flagSet *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, `editview — terminal host for an embedded editor.

Spawns the configured editor as a subprocess in embedding mode,
renders its screen into the terminal, and forwards input. C-q
detaches: the editor is asked to quit and the terminal is restored.
M-C-q force-quits an editor that no longer responds.

Configuration comes from --config or $EDITVIEW_CONFIG (YAML); with
neither set, built-in defaults spawn "nvim".

Usage:
  editview [flags] [file ...]

Examples:
  # Open a file with the configured editor
  editview main.go

  # Use a specific editor build
  editview --editor /opt/neovim/bin/nvim main.go

  # Record the session protocol stream for later inspection
  editview --record auto main.go

Flags:
`)
	flagSet.SetOutput(os.Stderr)
	flagSet.PrintDefaults()
}
