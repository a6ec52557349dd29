// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package trace

import (
	"bytes"
	"context"
	"errors"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bureau-foundation/editview/lib/clock"
	"github.com/bureau-foundation/editview/lib/testutil"
)

const testTimeout = 5 * time.Second

// compressibleFrame is representative of real traffic: a redraw batch
// is highly repetitive structured data.
func compressibleFrame(n int) []byte {
	return bytes.Repeat([]byte(`["grid_line",[1,0,0,[[" ",0,80]]]]`), n)
}

func writeTestTrace(t *testing.T, frames [][]byte, cfg WriterConfig) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "session.trace")
	w, err := NewWriter(path, cfg)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	for i, frame := range frames {
		if err := w.Record(frame); err != nil {
			t.Fatalf("Record frame %d: %v", i, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	return path
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	frames := [][]byte{
		[]byte("tiny"),
		compressibleFrame(40),
		compressibleFrame(3),
		[]byte(strings.Repeat("x", minCompressSize)),
	}
	path := writeTestTrace(t, frames, WriterConfig{})

	reader, err := OpenReader(path)
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer reader.Close()

	if len(reader.ID()) != 26 {
		t.Errorf("trace id = %q, want a 26-character ULID", reader.ID())
	}

	var lastOffset time.Duration = -1
	for i, want := range frames {
		frame, err := reader.Next()
		if err != nil {
			t.Fatalf("Next frame %d: %v", i, err)
		}
		if !bytes.Equal(frame.Payload, want) {
			t.Errorf("frame %d payload = %q, want %q", i, frame.Payload, want)
		}
		if frame.Offset < lastOffset {
			t.Errorf("frame %d offset %v before previous %v", i, frame.Offset, lastOffset)
		}
		lastOffset = frame.Offset
	}
	if _, err := reader.Next(); !errors.Is(err, io.EOF) {
		t.Fatalf("Next past end = %v, want io.EOF", err)
	}
}

func TestCompressFrameFallsBackToRaw(t *testing.T) {
	t.Parallel()

	random := make([]byte, 4096)
	rand.New(rand.NewSource(1)).Read(random)

	tests := []struct {
		label     string
		payload   []byte
		preferred CompressionTag
		want      CompressionTag
	}{
		{"none passes through", compressibleFrame(10), CompressionNone, CompressionNone},
		{"tiny frames stay raw", []byte("ok"), CompressionZstd, CompressionNone},
		{"incompressible stays raw", random, CompressionZstd, CompressionNone},
		{"incompressible stays raw under lz4", random, CompressionLZ4, CompressionNone},
		{"repetitive zstd", compressibleFrame(10), CompressionZstd, CompressionZstd},
		{"repetitive lz4", compressibleFrame(10), CompressionLZ4, CompressionLZ4},
	}
	for _, test := range tests {
		stored, tag, err := compressFrame(test.payload, test.preferred)
		if err != nil {
			t.Fatalf("%s: compressFrame: %v", test.label, err)
		}
		if tag != test.want {
			t.Errorf("%s: tag = %v, want %v", test.label, tag, test.want)
		}

		restored, err := decompressFrame(stored, tag, len(test.payload))
		if err != nil {
			t.Fatalf("%s: decompressFrame: %v", test.label, err)
		}
		if !bytes.Equal(restored, test.payload) {
			t.Errorf("%s: round trip altered payload", test.label)
		}
	}
}

func TestParseCompressionTag(t *testing.T) {
	t.Parallel()

	for _, tag := range []CompressionTag{CompressionNone, CompressionLZ4, CompressionZstd} {
		parsed, err := ParseCompressionTag(tag.String())
		if err != nil {
			t.Fatalf("ParseCompressionTag(%q): %v", tag.String(), err)
		}
		if parsed != tag {
			t.Errorf("ParseCompressionTag(%q) = %v, want %v", tag.String(), parsed, tag)
		}
	}
	if _, err := ParseCompressionTag("gzip"); err == nil {
		t.Error("ParseCompressionTag(gzip) succeeded, want error")
	}
}

func TestSummaryAndVerify(t *testing.T) {
	t.Parallel()

	frames := [][]byte{compressibleFrame(20), compressibleFrame(5), []byte("end")}
	path := writeTestTrace(t, frames, WriterConfig{})

	summary, err := ReadSummary(path)
	if err != nil {
		t.Fatalf("ReadSummary: %v", err)
	}
	if summary.Frames != 3 {
		t.Errorf("summary frames = %d, want 3", summary.Frames)
	}
	var want int64
	for _, frame := range frames {
		want += int64(len(frame))
	}
	if summary.Bytes != want {
		t.Errorf("summary bytes = %d, want %d", summary.Bytes, want)
	}
	if summary.Compressed >= summary.Bytes {
		t.Errorf("compressed %d not smaller than raw %d for repetitive frames", summary.Compressed, summary.Bytes)
	}

	verified, err := Verify(path)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if verified.Digest != summary.Digest {
		t.Errorf("verified digest %q != summary digest %q", verified.Digest, summary.Digest)
	}
}

func TestVerifyDetectsTamperedSummary(t *testing.T) {
	t.Parallel()

	path := writeTestTrace(t, [][]byte{compressibleFrame(8)}, WriterConfig{})

	data, err := os.ReadFile(SummaryPath(path))
	if err != nil {
		t.Fatalf("read summary: %v", err)
	}
	summary, _ := ReadSummary(path)
	tampered := bytes.Replace(data, []byte(summary.Digest[:8]), []byte("00000000"), 1)
	if bytes.Equal(tampered, data) {
		t.Fatal("failed to tamper with summary digest")
	}
	if err := os.WriteFile(SummaryPath(path), tampered, 0o644); err != nil {
		t.Fatalf("write summary: %v", err)
	}

	if _, err := Verify(path); err == nil || !strings.Contains(err.Error(), "digest mismatch") {
		t.Fatalf("Verify = %v, want digest mismatch", err)
	}
}

func TestVerifyDetectsTruncatedTrace(t *testing.T) {
	t.Parallel()

	path := writeTestTrace(t, [][]byte{compressibleFrame(8), compressibleFrame(8)}, WriterConfig{})

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read trace: %v", err)
	}
	if err := os.WriteFile(path, data[:len(data)-10], 0o644); err != nil {
		t.Fatalf("truncate trace: %v", err)
	}

	if _, err := Verify(path); err == nil {
		t.Fatal("Verify succeeded on truncated trace")
	}
}

func TestOpenReaderRejectsForeignFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(path, []byte("not a trace"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if _, err := OpenReader(path); err == nil {
		t.Fatal("OpenReader succeeded on a non-trace file")
	}
}

func TestWriterRejectsUseAfterClose(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "session.trace")
	w, err := NewWriter(path, WriterConfig{})
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := w.Record([]byte("late")); err == nil {
		t.Error("Record after Close succeeded")
	}
	if err := w.Close(); err == nil {
		t.Error("second Close succeeded")
	}
}

func TestPaceReplaysAtRecordedCadence(t *testing.T) {
	t.Parallel()

	recordClock := clock.Fake(time.Unix(1000, 0))
	path := filepath.Join(t.TempDir(), "session.trace")
	w, err := NewWriter(path, WriterConfig{Compression: CompressionNone, Clock: recordClock})
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	mustRecord := func(frame string) {
		if err := w.Record([]byte(frame)); err != nil {
			t.Fatalf("Record(%q): %v", frame, err)
		}
	}
	mustRecord("frame-0")
	recordClock.Advance(50 * time.Millisecond)
	mustRecord("frame-1")
	recordClock.Advance(30 * time.Millisecond)
	mustRecord("frame-2")
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reader, err := OpenReader(path)
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer reader.Close()

	replayClock := clock.Fake(time.Unix(2000, 0))
	delivered := make(chan Frame, 3)
	done := make(chan error, 1)
	go func() {
		done <- reader.Pace(context.Background(), replayClock, func(frame Frame) error {
			delivered <- frame
			return nil
		})
	}()

	// frame-0 has no gap and arrives without any clock advance.
	first := testutil.RequireReceive(t, delivered, testTimeout, "frame-0")
	if string(first.Payload) != "frame-0" {
		t.Fatalf("first frame = %q", first.Payload)
	}

	// frame-1 waits out its 50ms recorded gap.
	replayClock.WaitForTimers(1)
	select {
	case frame := <-delivered:
		t.Fatalf("frame %q delivered before its gap elapsed", frame.Payload)
	default:
	}
	replayClock.Advance(50 * time.Millisecond)
	second := testutil.RequireReceive(t, delivered, testTimeout, "frame-1")
	if string(second.Payload) != "frame-1" {
		t.Fatalf("second frame = %q", second.Payload)
	}

	replayClock.WaitForTimers(1)
	replayClock.Advance(30 * time.Millisecond)
	third := testutil.RequireReceive(t, delivered, testTimeout, "frame-2")
	if string(third.Payload) != "frame-2" {
		t.Fatalf("third frame = %q", third.Payload)
	}

	if err := testutil.RequireReceive(t, done, testTimeout, "pace completion"); err != nil {
		t.Fatalf("Pace: %v", err)
	}
}

func TestPaceHonorsCancellation(t *testing.T) {
	t.Parallel()

	recordClock := clock.Fake(time.Unix(1000, 0))
	path := filepath.Join(t.TempDir(), "session.trace")
	w, err := NewWriter(path, WriterConfig{Compression: CompressionNone, Clock: recordClock})
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	w.Record([]byte("frame-0"))
	recordClock.Advance(time.Hour)
	w.Record([]byte("frame-1"))
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reader, err := OpenReader(path)
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer reader.Close()

	ctx, cancel := context.WithCancel(context.Background())
	replayClock := clock.Fake(time.Unix(2000, 0))
	done := make(chan error, 1)
	go func() {
		done <- reader.Pace(ctx, replayClock, func(Frame) error { return nil })
	}()

	// Cancel while Pace is parked in the hour-long gap.
	replayClock.WaitForTimers(1)
	cancel()
	if err := testutil.RequireReceive(t, done, testTimeout, "pace cancellation"); !errors.Is(err, context.Canceled) {
		t.Fatalf("Pace = %v, want context.Canceled", err)
	}
}
