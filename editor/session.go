// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package editor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"github.com/bureau-foundation/editview/lib/clock"
	"github.com/bureau-foundation/editview/lib/codec"
	"github.com/bureau-foundation/editview/lib/process"
	"github.com/bureau-foundation/editview/redraw"
	"github.com/bureau-foundation/editview/rpc"
	"github.com/bureau-foundation/editview/trace"
)

const (
	// embedFlag puts the editor in embedded mode: no terminal UI of
	// its own, the wire protocol on stdin/stdout.
	embedFlag = "--embed"

	defaultQueueSize = 64

	// shutdownGrace is how long Close waits between SIGTERM and
	// SIGKILL for an editor that ignores both EOF and the term
	// signal.
	shutdownGrace = 3 * time.Second

	// queueWarnInterval rate-limits the queue-full warning; a
	// stalled consumer would otherwise produce one log line per
	// arriving notification.
	queueWarnInterval = time.Second
)

// Config configures Spawn.
type Config struct {
	// Command is the editor argv: the binary followed by extra
	// arguments. The embedding flag is inserted after the binary.
	// Required.
	Command []string

	// Logger receives structured log output. If nil, slog.Default()
	// is used.
	Logger *slog.Logger

	// QueueSize bounds the notification queue. Zero means the
	// default of 64, sized for several redraw batches between
	// consumer ticks.
	QueueSize int

	// Recorder, if non-nil, records every inbound raw frame.
	// The session does not close it; the owner does, after the
	// notification channel closes.
	Recorder *trace.Writer

	// Clock paces shutdown escalation and log rate limiting. Nil
	// means the real clock.
	Clock clock.Clock
}

// processHandle abstracts the subprocess so session tests can run
// against an in-memory peer.
type processHandle interface {
	// wait blocks until the process exits and returns its exit
	// code. A negative code means the process died to a signal.
	wait() (int, error)

	// terminate forces the process down: graceful signal first,
	// escalation after grace. reaped is closed once wait has
	// returned; terminate returns no earlier.
	terminate(grace time.Duration, clk clock.Clock, reaped <-chan struct{})
}

type execHandle struct {
	command *exec.Cmd
}

func (h *execHandle) wait() (int, error) {
	if err := h.command.Wait(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.ExitCode(), nil
		}
		return -1, fmt.Errorf("editor: wait: %w", err)
	}
	return 0, nil
}

func (h *execHandle) terminate(grace time.Duration, clk clock.Clock, reaped <-chan struct{}) {
	process.TerminateGroup(h.command.Process.Pid, grace, clk, reaped)
}

// Session is one live editor subprocess and its protocol state. All
// methods are safe for concurrent use.
type Session struct {
	logger    *slog.Logger
	clk       clock.Clock
	transport *rpc.Transport
	handle    processHandle
	stdin     io.Closer
	stdout    io.Closer

	notifications chan Notification
	reaped        chan struct{}
	done          chan struct{}

	closeOnce sync.Once

	// lastQueueWarn is touched only by the single producer (the
	// reader goroutine, then the supervisor after it exits).
	lastQueueWarn time.Time

	// exitCode is written by the supervisor before done closes.
	exitCode int
}

// Spawn launches the editor subprocess and starts the session. The
// context covers the whole session: cancelling it kills the process
// group. The returned session has not attached a UI yet; call
// [Session.Attach] next.
func Spawn(ctx context.Context, cfg Config) (*Session, error) {
	if len(cfg.Command) == 0 {
		return nil, errors.New("editor: Config.Command is required")
	}

	arguments := append([]string{embedFlag}, cfg.Command[1:]...)
	command := exec.CommandContext(ctx, cfg.Command[0], arguments...)
	// Own process group, so teardown can signal the editor together
	// with anything it spawned.
	command.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	command.Cancel = func() error {
		return syscall.Kill(-command.Process.Pid, syscall.SIGKILL)
	}

	stdin, err := command.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("editor: stdin pipe: %w", err)
	}
	stdout, err := command.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("editor: stdout pipe: %w", err)
	}

	if err := command.Start(); err != nil {
		return nil, fmt.Errorf("editor: spawn %s: %w", cfg.Command[0], err)
	}

	session, err := newSession(cfg, &execHandle{command: command}, stdout, stdin)
	if err != nil {
		// The transport never started; reap directly.
		_ = command.Process.Kill()
		_ = command.Wait()
		return nil, err
	}
	session.logger.Debug("editor spawned", "command", cfg.Command[0], "pid", command.Process.Pid)
	return session, nil
}

// newSession wires a transport over the given streams and starts the
// background goroutines. reader and writer are owned by the session
// afterwards.
func newSession(cfg Config, handle processHandle, reader io.ReadCloser, writer io.WriteCloser) (*Session, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	clk := cfg.Clock
	if clk == nil {
		clk = clock.Real()
	}
	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}

	session := &Session{
		logger:        logger,
		clk:           clk,
		handle:        handle,
		stdin:         writer,
		stdout:        reader,
		notifications: make(chan Notification, queueSize),
		reaped:        make(chan struct{}),
		done:          make(chan struct{}),
	}

	var tap func([]byte)
	if cfg.Recorder != nil {
		recorder := cfg.Recorder
		tap = func(frame []byte) {
			if err := recorder.Record(frame); err != nil {
				logger.Warn("trace record failed", "error", err)
			}
		}
	}

	transport, err := rpc.NewTransport(rpc.Config{
		Reader:   reader,
		Writer:   writer,
		Notify:   session.route,
		FrameTap: tap,
		Logger:   logger,
	})
	if err != nil {
		return nil, err
	}
	session.transport = transport

	transport.Start()
	go session.supervise()
	return session, nil
}

// route runs on the transport's read-loop goroutine. It decodes
// redraw batches and enqueues; anything heavier belongs on the
// consumer side.
func (s *Session) route(method string, params []any) {
	if method == "redraw" {
		s.push(&Redraw{Events: redraw.DecodeBatch(params, s.logger)})
		return
	}
	s.push(&Generic{Method: method, Args: params})
}

// push delivers one notification, blocking when the queue is full.
// Only the producer side calls this: the reader goroutine during the
// session, the supervisor for the final Quit.
func (s *Session) push(n Notification) {
	select {
	case s.notifications <- n:
		return
	default:
	}

	if now := s.clk.Now(); now.Sub(s.lastQueueWarn) >= queueWarnInterval {
		s.lastQueueWarn = now
		s.logger.Warn("notification queue full, reader blocked",
			"capacity", cap(s.notifications))
	}
	s.notifications <- n
}

// supervise waits out the transport, reaps the subprocess, and
// finishes the notification stream with the Quit element.
func (s *Session) supervise() {
	<-s.transport.Done()
	transportErr := s.transport.Err()

	if transportErr != nil {
		// The protocol is broken but the subprocess may be alive
		// and will never be spoken to again. Take it down so the
		// reap below cannot block indefinitely.
		go s.handle.terminate(shutdownGrace, s.clk, s.reaped)
	}

	code, waitErr := s.handle.wait()
	close(s.reaped)

	// Unblocks a read loop still parked on the pipe after Close.
	_ = s.stdin.Close()
	_ = s.stdout.Close()

	err := transportErr
	if err == nil {
		err = waitErr
	}
	if err != nil {
		s.logger.Warn("session ended with error", "exit_code", code, "error", err)
	} else {
		s.logger.Debug("session ended", "exit_code", code)
	}

	s.exitCode = code
	s.push(&Quit{ExitCode: code, Err: err})
	close(s.notifications)
	close(s.done)
}

// Notifications returns the session's notification queue. The channel
// delivers [*Redraw] and [*Generic] elements in emission order,
// then exactly one [*Quit], then closes. The consumer must keep
// draining until close or the reader goroutine will stall by design.
func (s *Session) Notifications() <-chan Notification {
	return s.notifications
}

// ExitCode returns the subprocess's exit status. ok is false until
// the session has ended (the notification channel closed).
func (s *Session) ExitCode() (code int, ok bool) {
	select {
	case <-s.done:
		return s.exitCode, true
	default:
		return 0, false
	}
}

// Close tears the session down: pending callers are unblocked, the
// editor gets EOF and SIGTERM, and SIGKILL after a grace period if it
// lingers. Close returns once the process has been reaped; the
// notification channel still delivers the final Quit element after
// that. Safe to call more than once.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.transport.Close()
		// EOF on its stdin is the embedded editor's orderly quit
		// signal; the signals that follow cover editors stuck
		// mid-operation.
		_ = s.stdin.Close()
		s.handle.terminate(shutdownGrace, s.clk, s.reaped)
	})
	<-s.reaped
	return nil
}

// Call issues a raw RPC request. The typed command methods cover the
// session vocabulary; Call is the escape hatch for editor-specific
// methods beyond it.
func (s *Session) Call(ctx context.Context, method string, args ...any) (any, error) {
	return s.transport.Call(ctx, method, args...)
}

// Attach declares the UI to the editor: initial dimensions plus the
// protocol extensions from opts. The editor responds with a full
// repaint (grid_resize, grid_line stream, flush) on the notification
// channel.
func (s *Session) Attach(ctx context.Context, width, height int, opts AttachOptions) error {
	if err := opts.validate(); err != nil {
		return err
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("editor: attach with non-positive size %dx%d", width, height)
	}
	_, err := s.transport.Call(ctx, "ui_attach", width, height, opts.wire())
	return err
}

// TryResize asks the editor to adopt new UI dimensions. The actual
// resize arrives asynchronously as a grid_resize event.
func (s *Session) TryResize(ctx context.Context, width, height int) error {
	_, err := s.transport.Call(ctx, "ui_try_resize", width, height)
	return err
}

// Input sends keyboard input in wire notation ("ihello<Esc>") and
// returns how many bytes the editor consumed. A short count means the
// editor's typeahead buffer is full.
func (s *Session) Input(ctx context.Context, keys string) (int, error) {
	result, err := s.transport.Call(ctx, "input", keys)
	if err != nil {
		return 0, err
	}
	written, ok := codec.AsInt64(result)
	if !ok {
		return 0, fmt.Errorf("editor: input result is %T, want integer", result)
	}
	return int(written), nil
}

// InputMouse sends one mouse event. button is "left", "right",
// "middle", or "wheel"; action depends on the button ("press",
// "drag", "release", or a wheel direction); modifier is the held
// modifier keys in wire notation.
func (s *Session) InputMouse(ctx context.Context, button, action, modifier string, grid, row, col int) error {
	_, err := s.transport.Call(ctx, "input_mouse", button, action, modifier, grid, row, col)
	return err
}

// SetVar sets a global editor variable.
func (s *Session) SetVar(ctx context.Context, name string, value any) error {
	_, err := s.transport.Call(ctx, "set_var", name, value)
	return err
}

// Info queries the editor's capability and version map.
func (s *Session) Info(ctx context.Context) (map[string]any, error) {
	result, err := s.transport.Call(ctx, "get_info")
	if err != nil {
		return nil, err
	}
	info, ok := result.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("editor: info result is %T, want map", result)
	}
	return info, nil
}

// Subscribe registers for a broadcast event; matching notifications
// arrive as [*Generic] elements.
func (s *Session) Subscribe(ctx context.Context, event string) error {
	_, err := s.transport.Call(ctx, "subscribe", event)
	return err
}

// Unsubscribe removes a [Session.Subscribe] registration.
func (s *Session) Unsubscribe(ctx context.Context, event string) error {
	_, err := s.transport.Call(ctx, "unsubscribe", event)
	return err
}
