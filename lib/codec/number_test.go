// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"math"
	"testing"
)

func TestAsInt64(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input any
		want  int64
		ok    bool
	}{
		{name: "unsigned", input: uint64(42), want: 42, ok: true},
		{name: "signed negative", input: int64(-3), want: -3, ok: true},
		{name: "zero", input: uint64(0), want: 0, ok: true},
		{name: "max int64", input: uint64(math.MaxInt64), want: math.MaxInt64, ok: true},
		{name: "overflow", input: uint64(math.MaxInt64) + 1, ok: false},
		{name: "string", input: "7", ok: false},
		{name: "float", input: 7.0, ok: false},
		{name: "nil", input: nil, ok: false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			got, ok := AsInt64(test.input)
			if ok != test.ok {
				t.Fatalf("AsInt64(%v) ok: got %v, want %v", test.input, ok, test.ok)
			}
			if ok && got != test.want {
				t.Errorf("AsInt64(%v): got %d, want %d", test.input, got, test.want)
			}
		})
	}
}

func TestAsUint32(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input any
		want  uint32
		ok    bool
	}{
		{name: "small", input: uint64(7), want: 7, ok: true},
		{name: "max uint32", input: uint64(math.MaxUint32), want: math.MaxUint32, ok: true},
		{name: "overflow", input: uint64(math.MaxUint32) + 1, ok: false},
		{name: "negative", input: int64(-1), ok: false},
		{name: "non-integer", input: []any{}, ok: false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			got, ok := AsUint32(test.input)
			if ok != test.ok {
				t.Fatalf("AsUint32(%v) ok: got %v, want %v", test.input, ok, test.ok)
			}
			if ok && got != test.want {
				t.Errorf("AsUint32(%v): got %d, want %d", test.input, got, test.want)
			}
		})
	}
}
