// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"bytes"
	"testing"
)

// traceEntry is a representative internal type using cbor struct tags
// (the convention for purely-internal types).
type traceEntry struct {
	Offset  int64  `cbor:"offset"`
	Tag     uint8  `cbor:"tag"`
	Payload []byte `cbor:"payload,omitempty"`
}

func TestMarshalUnmarshalRoundtrip(t *testing.T) {
	t.Parallel()

	original := traceEntry{
		Offset:  1500,
		Tag:     2,
		Payload: []byte{0x83, 0x02, 0x66, 0x72},
	}

	data, err := Marshal(original)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("Marshal produced empty output")
	}

	var decoded traceEntry
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	if decoded.Offset != original.Offset || decoded.Tag != original.Tag ||
		!bytes.Equal(decoded.Payload, original.Payload) {
		t.Errorf("roundtrip mismatch: got %+v, want %+v", decoded, original)
	}
}

func TestMarshalDeterministic(t *testing.T) {
	t.Parallel()

	frame := []any{0, uint32(7), "input", []any{"ihello"}}

	first, err := Marshal(frame)
	if err != nil {
		t.Fatalf("first Marshal: %v", err)
	}
	second, err := Marshal(frame)
	if err != nil {
		t.Fatalf("second Marshal: %v", err)
	}

	if !bytes.Equal(first, second) {
		t.Errorf("deterministic encoding violated: %x != %x", first, second)
	}
}

func TestEncoderDecoderStreamRoundtrip(t *testing.T) {
	t.Parallel()

	frames := [][]any{
		{uint64(0), uint64(1), "ui_attach", []any{uint64(80), uint64(24)}},
		{uint64(1), uint64(1), nil, nil},
		{uint64(2), "redraw", []any{}},
	}

	var buffer bytes.Buffer
	encoder := NewEncoder(&buffer)
	for _, frame := range frames {
		if err := encoder.Encode(frame); err != nil {
			t.Fatalf("Encode: %v", err)
		}
	}

	decoder := NewDecoder(&buffer)
	for i := range frames {
		var got []any
		if err := decoder.Decode(&got); err != nil {
			t.Fatalf("Decode frame %d: %v", i, err)
		}
		if len(got) != len(frames[i]) {
			t.Errorf("frame %d: got %d elements, want %d", i, len(got), len(frames[i]))
		}
	}
}

// TestUntypedDecodeShapes pins the concrete Go types the decode mode
// produces for any-typed targets. The redraw decoder's type switches
// depend on exactly these shapes.
func TestUntypedDecodeShapes(t *testing.T) {
	t.Parallel()

	data, err := Marshal(map[string]any{
		"count":    uint64(3),
		"delta":    int64(-2),
		"name":     "grid_line",
		"children": []any{uint64(1), "x"},
	})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var decoded any
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	asMap, ok := decoded.(map[string]any)
	if !ok {
		t.Fatalf("decoded map type: got %T, want map[string]any", decoded)
	}
	if _, ok := asMap["count"].(uint64); !ok {
		t.Errorf("non-negative integer: got %T, want uint64", asMap["count"])
	}
	if _, ok := asMap["delta"].(int64); !ok {
		t.Errorf("negative integer: got %T, want int64", asMap["delta"])
	}
	if _, ok := asMap["name"].(string); !ok {
		t.Errorf("text string: got %T, want string", asMap["name"])
	}
	if _, ok := asMap["children"].([]any); !ok {
		t.Errorf("array: got %T, want []any", asMap["children"])
	}
}

func TestRawMessageDelaysDecoding(t *testing.T) {
	t.Parallel()

	frame := []any{uint64(2), "redraw", []any{[]any{"flush"}}}
	data, err := Marshal(frame)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var raw RawMessage
	if err := Unmarshal(data, &raw); err != nil {
		t.Fatalf("Unmarshal into RawMessage: %v", err)
	}
	if !bytes.Equal(raw, data) {
		t.Errorf("RawMessage altered bytes: got %x, want %x", raw, data)
	}

	var elements []any
	if err := Unmarshal(raw, &elements); err != nil {
		t.Fatalf("second-stage Unmarshal: %v", err)
	}
	if len(elements) != 3 {
		t.Errorf("frame elements: got %d, want 3", len(elements))
	}
}

func TestDiagnoseRendersFrame(t *testing.T) {
	t.Parallel()

	data, err := Marshal([]any{uint64(2), "redraw", []any{}})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	notation, err := Diagnose(data)
	if err != nil {
		t.Fatalf("Diagnose: %v", err)
	}
	if notation == "" {
		t.Fatal("Diagnose produced empty output")
	}
}
