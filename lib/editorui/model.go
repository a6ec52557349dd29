// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package editorui

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/bureau-foundation/editview/editor"
	"github.com/bureau-foundation/editview/lib/keymap"
	"github.com/bureau-foundation/editview/rpc"
	"github.com/bureau-foundation/editview/screen"
)

// Controller is the slice of the editor session the UI drives. It is
// what [editor.Session] provides; tests substitute a fake.
type Controller interface {
	Input(ctx context.Context, keys string) (int, error)
	InputMouse(ctx context.Context, button, action, modifier string, grid, row, col int) error
	TryResize(ctx context.Context, width, height int) error
	Notifications() <-chan editor.Notification
}

// Config configures [New].
type Config struct {
	// Controller drives the editor session. Required.
	Controller Controller

	// Logger receives structured log output. If nil, slog.Default()
	// is used. The UI never writes to stderr itself; the terminal
	// belongs to the renderer.
	Logger *slog.Logger

	// Keys are the host-reserved bindings. Zero value means
	// DefaultKeyMap.
	Keys KeyMap

	// Theme colors the host chrome. Zero value means DefaultTheme.
	Theme Theme

	// Mouse forwards mouse events to the editor when true.
	Mouse bool

	// Recording shows the trace-recording indicator in the status
	// bar.
	Recording bool

	// Width and Height are the terminal dimensions at startup, from
	// the pre-attach size probe. The program's first WindowSizeMsg
	// confirms them.
	Width  int
	Height int
}

// notificationMsg carries one session notification into the message
// loop.
type notificationMsg struct {
	notification editor.Notification
}

// drainedMsg reports that a batch of editor-bound calls finished.
type drainedMsg struct {
	err error
}

// outboundKind discriminates queued editor-bound work.
type outboundKind int

const (
	outboundInput outboundKind = iota
	outboundMouse
	outboundResize
)

// outbound is one queued editor-bound call. Calls are issued by a
// single drain command at a time, so they reach the editor in the
// order the user produced them.
type outbound struct {
	kind outboundKind

	// outboundInput
	keys string

	// outboundMouse
	button, action, modifier string
	row, col                 int

	// outboundResize
	width, height int
}

// Model is the host UI: it applies redraw batches to a screen state
// machine, renders the presented surface plus a one-line status bar,
// and forwards input to the editor.
type Model struct {
	controller Controller
	screen     *screen.Screen
	logger     *slog.Logger
	keys       KeyMap
	theme      Theme
	mouse      bool
	recording  bool

	width  int
	height int

	// pending and inFlight implement ordered, coalesced delivery of
	// editor-bound calls: at most one drain command runs at a time,
	// and keystrokes arriving meanwhile batch into one input call.
	pending  []outbound
	inFlight bool

	// rendered caches the styled grid lines for the surface
	// generation last seen; View reuses it until the next flush.
	rendered           []string
	renderedGeneration uint64
	ready              bool

	windowTitle string

	exitCode  int
	exited    bool
	exitErr   error
	fatalErr  error
	forceQuit bool
}

// New builds the host model around a running, attached session.
func New(cfg Config) Model {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	keys := cfg.Keys
	if keys == (KeyMap{}) {
		keys = DefaultKeyMap
	}
	theme := cfg.Theme
	if theme == (Theme{}) {
		theme = DefaultTheme
	}
	return Model{
		controller: cfg.Controller,
		screen:     screen.New(logger),
		logger:     logger,
		keys:       keys,
		theme:      theme,
		mouse:      cfg.Mouse,
		recording:  cfg.Recording,
		width:      cfg.Width,
		height:     cfg.Height,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return listenForNotification(m.controller.Notifications())
}

// listenForNotification returns a command that blocks until the next
// session notification and delivers it as a notificationMsg. The
// handler re-issues it after each delivery; after the channel closes
// it resolves to nil and the loop stops listening.
func listenForNotification(channel <-chan editor.Notification) tea.Cmd {
	return func() tea.Msg {
		notification, ok := <-channel
		if !ok {
			return nil
		}
		return notificationMsg{notification: notification}
	}
}

// Update implements tea.Model.
func (m Model) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch message := message.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(message, m.keys.ForceQuit):
			m.forceQuit = true
			return m, tea.Quit
		case key.Matches(message, m.keys.Detach):
			return m, tea.Quit
		}
		notation := keymap.Key(message)
		if notation == "" {
			return m, nil
		}
		m.enqueueInput(notation)
		return m, m.drain()

	case tea.MouseMsg:
		if !m.mouse {
			return m, nil
		}
		button, action, modifier, ok := keymap.Mouse(message)
		if !ok || button == "move" {
			// Hover motion would flood the wire for a feature
			// (mouse-move events) the embedded editor has off by
			// default.
			return m, nil
		}
		if message.Y >= m.gridHeight() {
			return m, nil
		}
		m.pending = append(m.pending, outbound{
			kind:     outboundMouse,
			button:   button,
			action:   action,
			modifier: modifier,
			row:      message.Y,
			col:      message.X,
		})
		return m, m.drain()

	case tea.WindowSizeMsg:
		m.width = message.Width
		m.height = message.Height
		m.pending = append(m.pending, outbound{
			kind:   outboundResize,
			width:  message.Width,
			height: m.gridHeight(),
		})
		return m, m.drain()

	case notificationMsg:
		return m.handleNotification(message.notification)

	case drainedMsg:
		m.inFlight = false
		if message.err != nil && !errors.Is(message.err, rpc.ErrClosed) {
			m.logger.Warn("editor call failed", "error", message.err)
		}
		return m, m.drain()
	}
	return m, nil
}

func (m Model) handleNotification(notification editor.Notification) (tea.Model, tea.Cmd) {
	switch notification := notification.(type) {
	case *editor.Redraw:
		if err := m.screen.ApplyBatch(notification.Events); err != nil {
			m.fatalErr = err
			return m, tea.Quit
		}
		commands := []tea.Cmd{listenForNotification(m.controller.Notifications())}
		if surface := m.screen.Surface(); surface != nil && surface.Generation != m.renderedGeneration {
			m.rendered = renderSurface(surface, m.theme)
			m.renderedGeneration = surface.Generation
			m.ready = true
			if surface.Title != m.windowTitle {
				m.windowTitle = surface.Title
				commands = append(commands, tea.SetWindowTitle(surface.Title))
			}
		}
		return m, tea.Batch(commands...)

	case *editor.Generic:
		m.logger.Debug("editor notification", "method", notification.Method)
		return m, listenForNotification(m.controller.Notifications())

	case *editor.Quit:
		m.exited = true
		m.exitCode = notification.ExitCode
		m.exitErr = notification.Err
		return m, tea.Quit
	}
	return m, listenForNotification(m.controller.Notifications())
}

// enqueueInput queues key notation, coalescing with a directly
// preceding input entry so a fast typist costs one call, not one per
// key.
func (m *Model) enqueueInput(notation string) {
	if n := len(m.pending); n > 0 && m.pending[n-1].kind == outboundInput {
		m.pending[n-1].keys += notation
		return
	}
	m.pending = append(m.pending, outbound{kind: outboundInput, keys: notation})
}

// drain issues the queued editor-bound calls as one command, unless a
// drain is already running. Running at most one at a time keeps the
// calls in order; bubbletea runs concurrent commands on separate
// goroutines with no ordering promise.
func (m *Model) drain() tea.Cmd {
	if m.inFlight || len(m.pending) == 0 {
		return nil
	}
	batch := m.pending
	m.pending = nil
	m.inFlight = true

	controller := m.controller
	return func() tea.Msg {
		ctx := context.Background()
		var errs []error
		for _, call := range batch {
			var err error
			switch call.kind {
			case outboundInput:
				_, err = controller.Input(ctx, call.keys)
			case outboundMouse:
				err = controller.InputMouse(ctx, call.button, call.action, call.modifier, 0, call.row, call.col)
			case outboundResize:
				err = controller.TryResize(ctx, call.width, call.height)
			}
			if err != nil {
				errs = append(errs, err)
			}
		}
		return drainedMsg{err: errors.Join(errs...)}
	}
}

// gridHeight is the terminal height minus the host status bar.
func (m Model) gridHeight() int {
	if m.height <= 1 {
		return 0
	}
	return m.height - 1
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "waiting for editor"
	}

	lines := make([]string, 0, m.height)
	lines = append(lines, m.rendered...)
	for len(lines) < m.gridHeight() {
		lines = append(lines, "")
	}
	if len(lines) > m.gridHeight() {
		lines = lines[:m.gridHeight()]
	}
	lines = append(lines, m.statusBar())
	return strings.Join(lines, "\n")
}

// ExitCode returns the editor's exit status. ok is false when the
// editor had not exited when the UI stopped (detach, force quit, or
// a rendering fault).
func (m Model) ExitCode() (code int, ok bool) {
	return m.exitCode, m.exited
}

// Err returns what ended the session beyond a plain editor exit: the
// session error carried by the final Quit notification, or the screen
// violation that made rendering unsafe.
func (m Model) Err() error {
	if m.fatalErr != nil {
		return m.fatalErr
	}
	return m.exitErr
}

// ForceQuit reports whether the user asked for immediate teardown.
func (m Model) ForceQuit() bool {
	return m.forceQuit
}
