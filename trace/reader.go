// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package trace

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/bureau-foundation/editview/lib/clock"
	"github.com/bureau-foundation/editview/lib/codec"
)

// Frame is one replayed trace entry: the raw wire frame and its
// arrival offset from session start.
type Frame struct {
	Offset  time.Duration
	Payload []byte
}

// Reader iterates a trace file's frames in recorded order.
type Reader struct {
	file    *os.File
	decoder *codec.Decoder
	header  header
}

// OpenReader opens a trace file and validates its header.
func OpenReader(path string) (*Reader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("trace: open %s: %w", path, err)
	}

	r := &Reader{file: file, decoder: codec.NewDecoder(bufio.NewReader(file))}
	if err := r.decoder.Decode(&r.header); err != nil {
		file.Close()
		return nil, fmt.Errorf("trace: read header of %s: %w", path, err)
	}
	if r.header.Magic != fileMagic {
		file.Close()
		return nil, fmt.Errorf("trace: %s is not a trace file", path)
	}
	if r.header.Version != formatVersion {
		file.Close()
		return nil, fmt.Errorf("trace: %s has format version %d, this build reads %d", path, r.header.Version, formatVersion)
	}
	return r, nil
}

// ID returns the trace's ULID.
func (r *Reader) ID() string {
	return r.header.ID
}

// Started returns the wall time the recorded session began.
func (r *Reader) Started() time.Time {
	return r.header.Started
}

// Next returns the next frame, decompressed. It returns [io.EOF]
// after the last entry.
func (r *Reader) Next() (Frame, error) {
	var e entry
	if err := r.decoder.Decode(&e); err != nil {
		if errors.Is(err, io.EOF) {
			return Frame{}, io.EOF
		}
		return Frame{}, fmt.Errorf("trace: read entry: %w", err)
	}

	payload, err := decompressFrame(e.Payload, e.Compression, e.Size)
	if err != nil {
		return Frame{}, err
	}
	return Frame{Offset: time.Duration(e.Offset), Payload: payload}, nil
}

// Pace replays the remaining frames at their recorded cadence,
// waiting out each inter-frame gap on clk before handing the frame
// to fn. It returns nil at end of trace, ctx's error on cancellation,
// or the first error from the file or fn.
func (r *Reader) Pace(ctx context.Context, clk clock.Clock, fn func(Frame) error) error {
	var last time.Duration
	for {
		frame, err := r.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		if gap := frame.Offset - last; gap > 0 {
			select {
			case <-clk.After(gap):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		last = frame.Offset

		if err := fn(frame); err != nil {
			return err
		}
	}
}

// Close releases the underlying file.
func (r *Reader) Close() error {
	return r.file.Close()
}
