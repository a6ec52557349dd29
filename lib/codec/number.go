// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import "math"

// AsInt64 coerces an untyped wire number to int64. Under this
// package's decode mode an integer arrives as uint64 (non-negative)
// or int64 (negative) depending on its CBOR major type; the editor
// emits both encodings for the same logical field (scroll deltas, for
// example, are signed quantities that usually arrive non-negative).
// Returns false for non-integers and for unsigned values that
// overflow int64.
func AsInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case uint64:
		if n > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	case int64:
		return n, true
	default:
		return 0, false
	}
}

// AsUint32 coerces an untyped wire number to uint32. Used for RPC
// message ids, which the protocol fixes at 32 bits. Returns false for
// non-integers, negative values, and values that overflow uint32.
func AsUint32(v any) (uint32, bool) {
	n, ok := AsInt64(v)
	if !ok || n < 0 || n > math.MaxUint32 {
		return 0, false
	}
	return uint32(n), true
}
