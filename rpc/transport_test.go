// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package rpc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/bureau-foundation/editview/lib/codec"
	"github.com/bureau-foundation/editview/lib/testutil"
)

// fakePeer plays the editor side of the pipe pair: it decodes the
// client's requests and writes back whatever frames a test scripts.
type fakePeer struct {
	t        *testing.T
	decoder  *codec.Decoder
	encoder  *codec.Encoder
	toClient *io.PipeWriter
}

func newTestTransport(t *testing.T, notify func(method string, params []any), tap func([]byte)) (*Transport, *fakePeer) {
	t.Helper()

	clientReader, peerWriter := io.Pipe()
	peerReader, clientWriter := io.Pipe()

	transport, err := NewTransport(Config{
		Reader:   clientReader,
		Writer:   clientWriter,
		Notify:   notify,
		FrameTap: tap,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	if err != nil {
		t.Fatalf("NewTransport: %v", err)
	}
	transport.Start()

	t.Cleanup(func() {
		peerWriter.Close()
		clientWriter.Close()
	})

	return transport, &fakePeer{
		t:        t,
		decoder:  codec.NewDecoder(peerReader),
		encoder:  codec.NewEncoder(peerWriter),
		toClient: peerWriter,
	}
}

// readRequest decodes one [0, id, method, args] frame from the client.
func (p *fakePeer) readRequest() (id uint32, method string, args []any) {
	p.t.Helper()

	var frame []any
	if err := p.decoder.Decode(&frame); err != nil {
		p.t.Fatalf("peer: decoding request: %v", err)
	}
	if len(frame) != 4 {
		p.t.Fatalf("peer: request has %d elements, want 4", len(frame))
	}
	kind, _ := codec.AsInt64(frame[0])
	if kind != packetRequest {
		p.t.Fatalf("peer: packet kind %d, want %d", kind, packetRequest)
	}
	id, ok := codec.AsUint32(frame[1])
	if !ok {
		p.t.Fatalf("peer: request id is %T", frame[1])
	}
	method, ok = frame[2].(string)
	if !ok {
		p.t.Fatalf("peer: request method is %T", frame[2])
	}
	args, ok = frame[3].([]any)
	if !ok {
		p.t.Fatalf("peer: request args is %T", frame[3])
	}
	return id, method, args
}

func (p *fakePeer) send(frame any) {
	p.t.Helper()
	if err := p.encoder.Encode(frame); err != nil {
		p.t.Fatalf("peer: encoding frame: %v", err)
	}
}

func (p *fakePeer) respond(id uint32, result any) {
	p.send([]any{packetResponse, id, nil, result})
}

func (p *fakePeer) respondError(id uint32, code int64, message string) {
	p.send([]any{packetResponse, id, []any{code, message}, nil})
}

func (p *fakePeer) notify(method string, params ...any) {
	if params == nil {
		params = []any{}
	}
	p.send([]any{packetNotification, method, params})
}

// quit closes the peer's output stream, as the editor does on exit.
func (p *fakePeer) quit() {
	p.toClient.Close()
}

func TestNewTransportRequiresStreams(t *testing.T) {
	t.Parallel()

	if _, err := NewTransport(Config{Writer: io.Discard}); err == nil {
		t.Error("NewTransport accepted nil Reader")
	}
	reader, _ := io.Pipe()
	if _, err := NewTransport(Config{Reader: reader}); err == nil {
		t.Error("NewTransport accepted nil Writer")
	}
}

func TestCallRoundtrip(t *testing.T) {
	t.Parallel()

	transport, peer := newTestTransport(t, nil, nil)

	done := make(chan error, 1)
	var result any
	go func() {
		var err error
		result, err = transport.Call(context.Background(), "get_info")
		done <- err
	}()

	id, method, args := peer.readRequest()
	if method != "get_info" {
		t.Errorf("method: got %q, want %q", method, "get_info")
	}
	if len(args) != 0 {
		t.Errorf("args: got %d elements, want 0", len(args))
	}
	peer.respond(id, map[string]any{"name": "editview-test"})

	if err := testutil.RequireReceive(t, done, 5*time.Second, "call completion"); err != nil {
		t.Fatalf("Call: %v", err)
	}
	info, ok := result.(map[string]any)
	if !ok {
		t.Fatalf("result type: got %T, want map[string]any", result)
	}
	if info["name"] != "editview-test" {
		t.Errorf("result name: got %v, want editview-test", info["name"])
	}
}

// TestCallResponseBijection drives many concurrent callers and answers
// them all out of order. Every caller must receive exactly the
// response carrying its own id.
func TestCallResponseBijection(t *testing.T) {
	t.Parallel()

	transport, peer := newTestTransport(t, nil, nil)

	const callers = 24
	results := make(chan error, callers)
	for i := 0; i < callers; i++ {
		go func(n int64) {
			value, err := transport.Call(context.Background(), "echo", n)
			if err != nil {
				results <- fmt.Errorf("caller %d: %w", n, err)
				return
			}
			got, ok := codec.AsInt64(value)
			if !ok || got != n {
				results <- fmt.Errorf("caller %d received %v", n, value)
				return
			}
			results <- nil
		}(int64(i))
	}

	// Collect every request first, then answer newest-first so no
	// caller can succeed by accident of ordering.
	type request struct {
		id  uint32
		arg any
	}
	requests := make([]request, 0, callers)
	for i := 0; i < callers; i++ {
		id, method, args := peer.readRequest()
		if method != "echo" {
			t.Fatalf("method: got %q, want echo", method)
		}
		if len(args) != 1 {
			t.Fatalf("args: got %d elements, want 1", len(args))
		}
		requests = append(requests, request{id: id, arg: args[0]})
	}
	for i := len(requests) - 1; i >= 0; i-- {
		peer.respond(requests[i].id, requests[i].arg)
	}

	for i := 0; i < callers; i++ {
		if err := testutil.RequireReceive(t, results, 5*time.Second, "caller result"); err != nil {
			t.Error(err)
		}
	}
}

func TestCallRemoteError(t *testing.T) {
	t.Parallel()

	transport, peer := newTestTransport(t, nil, nil)

	done := make(chan error, 1)
	go func() {
		_, err := transport.Call(context.Background(), "set_var", "bogus", 1)
		done <- err
	}()

	id, _, _ := peer.readRequest()
	peer.respondError(id, 3, "unknown variable")

	err := testutil.RequireReceive(t, done, 5*time.Second, "call completion")
	remote, ok := IsRemoteError(err)
	if !ok {
		t.Fatalf("error type: got %v, want RemoteError", err)
	}
	if remote.Code != 3 || remote.Message != "unknown variable" {
		t.Errorf("remote error: got code=%d message=%q", remote.Code, remote.Message)
	}
}

func TestCallRemoteErrorStringForm(t *testing.T) {
	t.Parallel()

	transport, peer := newTestTransport(t, nil, nil)

	done := make(chan error, 1)
	go func() {
		_, err := transport.Call(context.Background(), "subscribe", "no-such-event")
		done <- err
	}()

	id, _, _ := peer.readRequest()
	peer.send([]any{packetResponse, id, "invalid event", nil})

	err := testutil.RequireReceive(t, done, 5*time.Second, "call completion")
	remote, ok := IsRemoteError(err)
	if !ok {
		t.Fatalf("error type: got %v, want RemoteError", err)
	}
	if remote.Code != 0 || remote.Message != "invalid event" {
		t.Errorf("remote error: got code=%d message=%q", remote.Code, remote.Message)
	}
}

// TestUnmatchedResponseDiscarded covers the defensive case: a response
// for an id nobody registered is logged and dropped, and the loop
// keeps serving.
func TestUnmatchedResponseDiscarded(t *testing.T) {
	t.Parallel()

	transport, peer := newTestTransport(t, nil, nil)

	peer.respond(7, "pong")

	// The loop must still be alive: a real call succeeds.
	done := make(chan error, 1)
	go func() {
		_, err := transport.Call(context.Background(), "get_info")
		done <- err
	}()
	id, _, _ := peer.readRequest()
	peer.respond(id, nil)

	if err := testutil.RequireReceive(t, done, 5*time.Second, "call after stray response"); err != nil {
		t.Fatalf("Call: %v", err)
	}
}

func TestNotificationDeliveryPreservesOrder(t *testing.T) {
	t.Parallel()

	type notification struct {
		method string
		params []any
	}
	received := make(chan notification, 8)
	_, peer := newTestTransport(t, func(method string, params []any) {
		received <- notification{method: method, params: params}
	}, nil)

	peer.notify("redraw", []any{"flush"})
	peer.notify("custom_event", "first")
	peer.notify("custom_event", "second")

	want := []string{"redraw", "custom_event", "custom_event"}
	for i, wantMethod := range want {
		got := testutil.RequireReceive(t, received, 5*time.Second, "notification %d", i)
		if got.method != wantMethod {
			t.Errorf("notification %d: got method %q, want %q", i, got.method, wantMethod)
		}
	}
}

func TestInboundRequestDropped(t *testing.T) {
	t.Parallel()

	received := make(chan string, 1)
	_, peer := newTestTransport(t, func(method string, params []any) {
		received <- method
	}, nil)

	peer.send([]any{packetRequest, 5, "ping", []any{}})
	peer.notify("still_alive")

	got := testutil.RequireReceive(t, received, 5*time.Second, "notification after dropped request")
	if got != "still_alive" {
		t.Errorf("notification method: got %q, want still_alive", got)
	}
}

func TestMalformedFrameTerminatesLoop(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		frame any
	}{
		{name: "unknown packet kind", frame: []any{9, "x"}},
		{name: "response arity", frame: []any{packetResponse, 1, nil}},
		{name: "notification arity", frame: []any{packetNotification, "redraw"}},
		{name: "non-array frame", frame: "hello"},
		{name: "non-integer kind", frame: []any{"response", 1, nil, nil}},
		{name: "non-string method", frame: []any{packetNotification, 12, []any{}}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			transport, peer := newTestTransport(t, nil, nil)

			// Park a call so termination has a waiter to unblock.
			done := make(chan error, 1)
			go func() {
				_, err := transport.Call(context.Background(), "get_info")
				done <- err
			}()
			peer.readRequest()

			peer.send(test.frame)

			testutil.RequireClosed(t, transport.Done(), 5*time.Second, "read loop exit")
			if _, ok := IsFramingError(transport.Err()); !ok {
				t.Errorf("Err: got %v, want FramingError", transport.Err())
			}

			err := testutil.RequireReceive(t, done, 5*time.Second, "pending call unblocked")
			if !errors.Is(err, ErrClosed) {
				t.Errorf("pending call error: got %v, want ErrClosed", err)
			}
		})
	}
}

func TestPeerEOFUnblocksPendingCall(t *testing.T) {
	t.Parallel()

	transport, peer := newTestTransport(t, nil, nil)

	done := make(chan error, 1)
	go func() {
		_, err := transport.Call(context.Background(), "get_info")
		done <- err
	}()
	peer.readRequest()
	peer.quit()

	testutil.RequireClosed(t, transport.Done(), 5*time.Second, "read loop exit")
	if err := transport.Err(); err != nil {
		t.Errorf("Err after clean EOF: got %v, want nil", err)
	}

	err := testutil.RequireReceive(t, done, 5*time.Second, "pending call unblocked")
	if !errors.Is(err, ErrClosed) {
		t.Errorf("pending call error: got %v, want ErrClosed", err)
	}
}

func TestContextCancellationAbandonsCall(t *testing.T) {
	t.Parallel()

	transport, peer := newTestTransport(t, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := transport.Call(ctx, "get_info")
		done <- err
	}()
	id, _, _ := peer.readRequest()

	cancel()
	err := testutil.RequireReceive(t, done, 5*time.Second, "cancelled call")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("cancelled call error: got %v, want context.Canceled", err)
	}

	// The late response hits the unmatched-id path; the loop keeps
	// serving new calls afterward.
	peer.respond(id, "late")

	done2 := make(chan error, 1)
	go func() {
		_, err := transport.Call(context.Background(), "get_info")
		done2 <- err
	}()
	id2, _, _ := peer.readRequest()
	peer.respond(id2, nil)

	if err := testutil.RequireReceive(t, done2, 5*time.Second, "call after late response"); err != nil {
		t.Fatalf("Call after cancellation: %v", err)
	}
}

func TestCallAfterCloseFails(t *testing.T) {
	t.Parallel()

	transport, _ := newTestTransport(t, nil, nil)
	transport.Close()

	_, err := transport.Call(context.Background(), "get_info")
	if !errors.Is(err, ErrClosed) {
		t.Errorf("Call after Close: got %v, want ErrClosed", err)
	}
}

func TestFrameTapSeesRawFrames(t *testing.T) {
	t.Parallel()

	frames := make(chan []byte, 4)
	_, peer := newTestTransport(t, func(string, []any) {}, func(frame []byte) {
		copied := make([]byte, len(frame))
		copy(copied, frame)
		frames <- copied
	})

	peer.notify("redraw", []any{"flush", []any{}})

	raw := testutil.RequireReceive(t, frames, 5*time.Second, "tapped frame")
	var elements []any
	if err := codec.Unmarshal(raw, &elements); err != nil {
		t.Fatalf("tapped frame does not decode: %v", err)
	}
	if len(elements) != 3 {
		t.Fatalf("tapped frame has %d elements, want 3", len(elements))
	}
	if elements[1] != "redraw" {
		t.Errorf("tapped method: got %v, want redraw", elements[1])
	}
}
