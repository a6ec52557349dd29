// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package trace

import (
	"bufio"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/zeebo/blake3"

	"github.com/bureau-foundation/editview/lib/clock"
	"github.com/bureau-foundation/editview/lib/codec"
)

// WriterConfig configures trace recording. The zero value records
// with zstd compression and the real clock.
type WriterConfig struct {
	// Compression is the preferred per-frame algorithm. Frames it
	// cannot shrink are stored raw regardless.
	Compression CompressionTag

	// Clock supplies frame timestamps. Nil means the real clock.
	Clock clock.Clock
}

// Writer records raw frames to a trace file. Record is safe to call
// from the session's reader goroutine while another goroutine calls
// Close.
type Writer struct {
	path  string
	clk   clock.Clock
	tag   CompressionTag
	id    string
	start time.Time

	mu         sync.Mutex
	file       *os.File
	buffered   *bufio.Writer
	encoder    *codec.Encoder
	digest     *blake3.Hasher
	frames     int64
	bytes      int64
	compressed int64
	closed     bool
}

// NewWriter creates the trace file at path, truncating any previous
// trace there, and writes the header.
func NewWriter(path string, cfg WriterConfig) (*Writer, error) {
	clk := cfg.Clock
	if clk == nil {
		clk = clock.Real()
	}
	tag := cfg.Compression
	if tag == 0 {
		tag = CompressionZstd
	}

	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("trace: create %s: %w", path, err)
	}

	now := clk.Now()
	w := &Writer{
		path:     path,
		clk:      clk,
		tag:      tag,
		id:       newTraceID(now),
		start:    now,
		file:     file,
		buffered: bufio.NewWriter(file),
		digest:   newDigest(),
	}
	w.encoder = codec.NewEncoder(w.buffered)

	if err := w.encoder.Encode(header{
		Magic:   fileMagic,
		Version: formatVersion,
		ID:      w.id,
		Started: w.start,
	}); err != nil {
		file.Close()
		return nil, fmt.Errorf("trace: write header: %w", err)
	}
	return w, nil
}

// ID returns the trace's ULID.
func (w *Writer) ID() string {
	return w.id
}

// Record appends one frame. The frame is digested uncompressed, then
// stored with the writer's compression preference.
func (w *Writer) Record(frame []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return errors.New("trace: writer closed")
	}

	stored, tag, err := compressFrame(frame, w.tag)
	if err != nil {
		return err
	}
	w.digest.Write(frame)

	if err := w.encoder.Encode(entry{
		Offset:      w.clk.Now().Sub(w.start).Nanoseconds(),
		Size:        len(frame),
		Compression: tag,
		Payload:     stored,
	}); err != nil {
		return fmt.Errorf("trace: write entry: %w", err)
	}

	w.frames++
	w.bytes += int64(len(frame))
	w.compressed += int64(len(stored))
	return nil
}

// Close flushes the trace file and writes the YAML summary sidecar
// next to it. Closing twice is an error.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return errors.New("trace: writer closed")
	}
	w.closed = true

	flushErr := w.buffered.Flush()
	closeErr := w.file.Close()

	summary := Summary{
		ID:         w.id,
		Started:    w.start,
		Frames:     w.frames,
		Bytes:      w.bytes,
		Compressed: w.compressed,
		Digest:     hex.EncodeToString(w.digest.Sum(nil)),
	}
	summaryErr := writeSummary(SummaryPath(w.path), summary)

	return errors.Join(flushErr, closeErr, summaryErr)
}
