// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package rpc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/bureau-foundation/editview/lib/codec"
)

// Packet kinds, the first element of every frame. Protocol constants.
const (
	packetRequest      = 0
	packetResponse     = 1
	packetNotification = 2
)

// Config configures a Transport.
type Config struct {
	// Reader is the inbound frame stream, normally the editor
	// subprocess's stdout. Required.
	Reader io.Reader

	// Writer is the outbound frame stream, normally the editor
	// subprocess's stdin. Required.
	Writer io.Writer

	// Notify receives every inbound notification. It runs on the
	// read-loop goroutine, so it must hand the notification off and
	// return; blocking here stalls response delivery for all callers.
	// If nil, notifications are dropped at Debug level.
	Notify func(method string, params []any)

	// FrameTap, if non-nil, receives the raw encoded bytes of every
	// inbound frame before decoding. The trace recorder hooks in
	// here. Runs on the read-loop goroutine; the slice is only valid
	// for the duration of the call.
	FrameTap func(frame []byte)

	// Logger receives structured log output. If nil, slog.Default()
	// is used.
	Logger *slog.Logger
}

// callResult carries a resolved call back to its waiting caller.
type callResult struct {
	value any
	err   error
}

// pendingCall is one in-flight request. Registered in the pending
// table for the duration of the call; removed by whichever side
// resolves it first (the read loop on response, the call site on
// write failure or cancellation, teardown on terminal error).
type pendingCall struct {
	// result is buffered with capacity 1 so the resolver never
	// blocks, even when the caller has already abandoned the call.
	result chan callResult
}

// Transport frames and sends requests, matches responses by id, and
// fans out notifications from one editor subprocess. Create with
// [NewTransport], then [Transport.Start] the read loop.
type Transport struct {
	notify   func(method string, params []any)
	frameTap func(frame []byte)
	logger   *slog.Logger
	reader   io.Reader

	// writeMu serializes outbound frames: one call's request must
	// never interleave with another's on the pipe.
	writeMu sync.Mutex
	encoder *codec.Encoder

	// mu guards the pending table, id allocation, and terminal
	// state. It is the one lock both the read loop and callers take.
	mu      sync.Mutex
	pending map[uint32]*pendingCall
	nextID  uint32
	closed  bool
	termErr error

	done chan struct{}
}

// NewTransport validates cfg and returns a Transport. The read loop
// does not run until Start is called.
func NewTransport(cfg Config) (*Transport, error) {
	if cfg.Reader == nil {
		return nil, fmt.Errorf("rpc: Config.Reader is required")
	}
	if cfg.Writer == nil {
		return nil, fmt.Errorf("rpc: Config.Writer is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Transport{
		notify:   cfg.Notify,
		frameTap: cfg.FrameTap,
		logger:   logger,
		reader:   cfg.Reader,
		encoder:  codec.NewEncoder(cfg.Writer),
		pending:  make(map[uint32]*pendingCall),
		done:     make(chan struct{}),
	}, nil
}

// Start launches the background read loop. Call it exactly once.
func (t *Transport) Start() {
	go t.readLoop()
}

// Done closes when the read loop has exited: the peer closed its
// output, the pipe failed, or a frame violated the framing. After
// Done, Err reports the reason.
func (t *Transport) Done() <-chan struct{} {
	return t.done
}

// Err returns why the transport terminated: nil for a clean peer EOF
// or a local Close, a FramingError for protocol corruption, or the
// wrapped I/O error otherwise. Only meaningful once Done is closed or
// Close has been called.
func (t *Transport) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.termErr
}

// Call issues a request and blocks until its response arrives, the
// transport terminates, or ctx is done. There is no built-in timeout:
// with context.Background() a call blocks for as long as the peer
// takes, matching the protocol's expectation of a co-operating peer.
// Callers that want a deadline impose one through ctx; cancellation
// abandons the call and a late response is then discarded.
//
// A response whose error field is non-nil is returned as a
// *RemoteError. The result is the untyped decoded wire value.
func (t *Transport) Call(ctx context.Context, method string, args ...any) (any, error) {
	if args == nil {
		// The params element is a (possibly empty) array, never nil.
		args = []any{}
	}

	call := &pendingCall{result: make(chan callResult, 1)}

	t.mu.Lock()
	if t.closed {
		err := t.termErr
		t.mu.Unlock()
		return nil, closedError(err)
	}
	t.nextID++ // uint32 wraparound is fine: ids only correlate in-flight calls
	id := t.nextID
	t.pending[id] = call
	t.mu.Unlock()

	t.writeMu.Lock()
	err := t.encoder.Encode([]any{packetRequest, id, method, args})
	t.writeMu.Unlock()
	if err != nil {
		t.unregister(id)
		return nil, fmt.Errorf("rpc: writing request %q: %w", method, err)
	}

	select {
	case result := <-call.result:
		return result.value, result.err
	case <-ctx.Done():
		t.unregister(id)
		return nil, fmt.Errorf("rpc: call %q: %w", method, ctx.Err())
	}
}

// Close resolves every in-flight call with a terminal error and
// rejects new ones. It does not close the underlying streams — the
// owner does that (the session closes the subprocess's pipes, which
// is what actually unblocks the read loop). Idempotent.
func (t *Transport) Close() {
	t.terminate(nil)
}

// unregister removes an abandoned call from the pending table. A
// response arriving after this is logged and discarded like any other
// unmatched id.
func (t *Transport) unregister(id uint32) {
	t.mu.Lock()
	delete(t.pending, id)
	t.mu.Unlock()
}

// terminate marks the transport closed and wakes every pending caller
// with a terminal error. Only the first call records the reason;
// later calls are no-ops.
func (t *Transport) terminate(reason error) {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	t.closed = true
	t.termErr = reason
	abandoned := t.pending
	t.pending = make(map[uint32]*pendingCall)
	t.mu.Unlock()

	terminal := closedError(reason)
	for _, call := range abandoned {
		call.result <- callResult{err: terminal}
	}
}

// closedError wraps ErrClosed with the termination reason, keeping
// ErrClosed matchable via errors.Is.
func closedError(reason error) error {
	if reason == nil {
		return ErrClosed
	}
	return fmt.Errorf("%w: %v", ErrClosed, reason)
}

// readLoop decodes one frame per iteration for the lifetime of the
// session. It exits on EOF (peer quit), stream error, or a framing
// violation, resolving all pending calls on the way out.
func (t *Transport) readLoop() {
	defer close(t.done)
	decoder := codec.NewDecoder(t.reader)

	for {
		var raw codec.RawMessage
		if err := decoder.Decode(&raw); err != nil {
			if errors.Is(err, io.EOF) {
				t.logger.Debug("peer closed its output stream")
				t.terminate(nil)
			} else {
				t.logger.Warn("frame stream failed", "error", err)
				t.terminate(fmt.Errorf("rpc: reading frame: %w", err))
			}
			return
		}

		if t.frameTap != nil {
			t.frameTap(raw)
		}

		if err := t.dispatch(raw); err != nil {
			t.logger.Error("terminating on malformed frame", "error", err)
			t.terminate(err)
			return
		}
	}
}

// dispatch routes one decoded frame. A non-nil return is a framing
// violation and kills the loop; per-frame recoverable conditions
// (unmatched response id, inbound request) are logged and absorbed
// here.
func (t *Transport) dispatch(raw codec.RawMessage) error {
	var elements []any
	if err := codec.Unmarshal(raw, &elements); err != nil {
		return &FramingError{Detail: "frame is not an array: " + err.Error()}
	}
	if len(elements) < 1 {
		return &FramingError{Detail: "empty frame"}
	}
	kind, ok := codec.AsInt64(elements[0])
	if !ok {
		return &FramingError{Detail: fmt.Sprintf("packet kind is %T, want integer", elements[0])}
	}

	switch kind {
	case packetRequest:
		// Inbound requests are not part of this protocol's client
		// role. Dropping them is safe: the peer never awaits us.
		t.logger.Warn("dropping inbound request packet", "elements", len(elements))
		return nil

	case packetResponse:
		if len(elements) != 4 {
			return &FramingError{Detail: fmt.Sprintf("response has %d elements, want 4", len(elements))}
		}
		id, ok := codec.AsUint32(elements[1])
		if !ok {
			return &FramingError{Detail: fmt.Sprintf("response id is %T, want uint32", elements[1])}
		}
		t.deliver(id, elements[2], elements[3])
		return nil

	case packetNotification:
		if len(elements) != 3 {
			return &FramingError{Detail: fmt.Sprintf("notification has %d elements, want 3", len(elements))}
		}
		method, ok := elements[1].(string)
		if !ok {
			return &FramingError{Detail: fmt.Sprintf("notification method is %T, want string", elements[1])}
		}
		params, ok := elements[2].([]any)
		if !ok {
			return &FramingError{Detail: fmt.Sprintf("notification params is %T, want array", elements[2])}
		}
		if t.notify == nil {
			t.logger.Debug("dropping notification, no handler", "method", method)
			return nil
		}
		t.notify(method, params)
		return nil

	default:
		return &FramingError{Detail: fmt.Sprintf("unknown packet kind %d", kind)}
	}
}

// deliver resolves the pending call matching id. A response with no
// matching call is a peer bug but not worth dying for: log and
// discard, the loop continues.
func (t *Transport) deliver(id uint32, errorField, result any) {
	t.mu.Lock()
	call, ok := t.pending[id]
	if ok {
		delete(t.pending, id)
	}
	t.mu.Unlock()

	if !ok {
		t.logger.Warn("discarding response with no pending call", "id", id)
		return
	}

	if errorField != nil {
		call.result <- callResult{err: decodeRemoteError(errorField)}
		return
	}
	call.result <- callResult{value: result}
}

// decodeRemoteError turns a response's non-nil error field into a
// *RemoteError. The wire shape is a string or a [code, message]
// pair; anything else is stringified rather than rejected, since by
// this point the frame itself was well-formed.
func decodeRemoteError(v any) error {
	switch e := v.(type) {
	case string:
		return &RemoteError{Message: e}
	case []any:
		if len(e) == 2 {
			code, codeOK := codec.AsInt64(e[0])
			message, messageOK := e[1].(string)
			if codeOK && messageOK {
				return &RemoteError{Code: code, Message: message}
			}
		}
	}
	return &RemoteError{Message: fmt.Sprintf("%v", v)}
}
