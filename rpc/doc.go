// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package rpc implements the editor's pipe RPC framing: synchronous
// calls with id correlation over the subprocess's stdin, and a
// background read loop draining its stdout.
//
// # Wire format
//
// Every frame is one CBOR array. The first element selects the packet
// kind:
//
//	[0, id:uint32, method:string, params:array]   request
//	[1, id:uint32, error, result]                 response
//	[2, method:string, params:array]              notification
//
// A response's error field is nil on success, and otherwise either a
// string or a [code:int, message:string] pair. The framing has no
// resynchronization marker: a frame that violates these shapes is
// fatal and terminates the read loop.
//
// # Concurrency
//
// Any number of goroutines may issue [Transport.Call] concurrently;
// outbound frames are serialized so they never interleave. Exactly one
// background goroutine owns the inbound stream for the transport's
// whole lifetime. Each response is delivered only to the caller whose
// id it carries; notifications are handed to the configured Notify
// function on the read-loop goroutine in arrival order, so Notify must
// be cheap (hand off and return, never block on the consumer).
//
// Teardown — peer exit, pipe failure, a framing violation, or
// [Transport.Close] — resolves every in-flight call with a terminal
// error wrapping [ErrClosed]. No caller is ever left blocked on a
// response that cannot arrive.
package rpc
