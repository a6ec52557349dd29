// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides editview's standard CBOR encoding configuration.
//
// Everything editview exchanges with the editor subprocess is CBOR: the
// RPC framing on the stdin/stdout pipes, the payloads inside redraw
// notifications, and the entries of recorded frame traces. This package
// provides the shared encoding and decoding modes so that every package
// encodes identically without duplicating configuration. The encoder
// uses Core Deterministic Encoding (RFC 8949 §4.2): sorted map keys,
// smallest integer encoding, no indefinite-length items. Same logical
// data always produces identical bytes, which keeps recorded traces
// byte-comparable across runs.
//
// For buffer-oriented operations (trace entries, tests):
//
//	data, err := codec.Marshal(value)
//	err = codec.Unmarshal(data, &value)
//
// For stream-oriented operations (the RPC pipes):
//
//	encoder := codec.NewEncoder(stdin)
//	decoder := codec.NewDecoder(stdout)
//
// # Untyped decoding
//
// The RPC layer decodes whole frames into untyped values ([]any) and
// leaves interpretation to the protocol decoder. Under this package's
// decode mode an untyped target yields: string for text strings, []any
// for arrays, map[string]any for maps, uint64 for non-negative
// integers, and int64 for negative integers. Code that consumes wire
// numbers must accept both integer widths; [AsInt64] and [AsUint32]
// are the shared coercions.
package codec
