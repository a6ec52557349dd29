// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package trace

import (
	"errors"
	"fmt"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// CompressionTag identifies the algorithm a trace entry's payload was
// compressed with. Tags are stored in entries (1 byte each); the
// values are format constants and must not change.
type CompressionTag uint8

const (
	// CompressionNone stores the payload uncompressed. Chosen
	// automatically for tiny frames and for frames the configured
	// algorithm cannot shrink.
	CompressionNone CompressionTag = 0

	// CompressionLZ4 is LZ4 block compression. Fast with modest
	// ratios; the right choice when recording must never be the
	// bottleneck.
	CompressionLZ4 CompressionTag = 1

	// CompressionZstd is zstd at its default level. Redraw frames
	// are repetitive structured data and typically shrink well
	// under it; this is the default for new writers.
	CompressionZstd CompressionTag = 2
)

// String returns the tag's name as used in summaries and flags.
func (tag CompressionTag) String() string {
	switch tag {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZstd:
		return "zstd"
	default:
		return fmt.Sprintf("unknown(%d)", tag)
	}
}

// ParseCompressionTag parses a tag name as accepted on command lines
// and in configuration.
func ParseCompressionTag(name string) (CompressionTag, error) {
	switch name {
	case "none":
		return CompressionNone, nil
	case "lz4":
		return CompressionLZ4, nil
	case "zstd":
		return CompressionZstd, nil
	default:
		return 0, fmt.Errorf("trace: unknown compression tag %q", name)
	}
}

// errIncompressible signals that compressing did not shrink the
// payload; the caller stores it raw instead.
var errIncompressible = errors.New("trace: payload is incompressible")

// minCompressSize is the payload size below which compression is not
// attempted. Tiny frames (flush-only batches, single responses) cost
// more in algorithm overhead than they save.
const minCompressSize = 64

// compressFrame compresses payload with the preferred tag, falling
// back to CompressionNone when the result would not be smaller. It
// returns the stored bytes and the tag actually used.
func compressFrame(payload []byte, preferred CompressionTag) ([]byte, CompressionTag, error) {
	if preferred == CompressionNone || len(payload) < minCompressSize {
		return payload, CompressionNone, nil
	}

	var compressed []byte
	var err error
	switch preferred {
	case CompressionLZ4:
		compressed, err = compressLZ4(payload)
	case CompressionZstd:
		compressed, err = compressZstd(payload)
	default:
		return nil, 0, fmt.Errorf("trace: unsupported compression tag %d", preferred)
	}
	if errors.Is(err, errIncompressible) {
		return payload, CompressionNone, nil
	}
	if err != nil {
		return nil, 0, err
	}
	return compressed, preferred, nil
}

// decompressFrame restores an entry payload. uncompressedSize must
// match the original length exactly; a mismatch means the entry is
// corrupt.
func decompressFrame(stored []byte, tag CompressionTag, uncompressedSize int) ([]byte, error) {
	switch tag {
	case CompressionNone:
		if len(stored) != uncompressedSize {
			return nil, fmt.Errorf("trace: raw entry is %d bytes, expected %d", len(stored), uncompressedSize)
		}
		return stored, nil
	case CompressionLZ4:
		return decompressLZ4(stored, uncompressedSize)
	case CompressionZstd:
		return decompressZstd(stored, uncompressedSize)
	default:
		return nil, fmt.Errorf("trace: unsupported compression tag %d", tag)
	}
}

func compressLZ4(payload []byte) ([]byte, error) {
	destination := make([]byte, lz4.CompressBlockBound(len(payload)))
	written, err := lz4.CompressBlock(payload, destination, nil)
	if err != nil {
		return nil, fmt.Errorf("trace: lz4 compress: %w", err)
	}
	// CompressBlock returns 0 for incompressible input; a result no
	// smaller than the input is equally not worth storing.
	if written == 0 || written >= len(payload) {
		return nil, errIncompressible
	}
	return destination[:written], nil
}

func decompressLZ4(stored []byte, uncompressedSize int) ([]byte, error) {
	destination := make([]byte, uncompressedSize)
	read, err := lz4.UncompressBlock(stored, destination)
	if err != nil {
		return nil, fmt.Errorf("trace: lz4 decompress: %w", err)
	}
	if read != uncompressedSize {
		return nil, fmt.Errorf("trace: lz4 decompress: got %d bytes, expected %d", read, uncompressedSize)
	}
	return destination, nil
}

// zstdEncoder and zstdDecoder are shared across all writers and
// readers; both are safe for concurrent use.
var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic("trace: zstd encoder initialization failed: " + err.Error())
	}
	zstdDecoder, err = zstd.NewReader(nil)
	if err != nil {
		panic("trace: zstd decoder initialization failed: " + err.Error())
	}
}

func compressZstd(payload []byte) ([]byte, error) {
	compressed := zstdEncoder.EncodeAll(payload, nil)
	if len(compressed) >= len(payload) {
		return nil, errIncompressible
	}
	return compressed, nil
}

func decompressZstd(stored []byte, uncompressedSize int) ([]byte, error) {
	result, err := zstdDecoder.DecodeAll(stored, make([]byte, 0, uncompressedSize))
	if err != nil {
		return nil, fmt.Errorf("trace: zstd decompress: %w", err)
	}
	if len(result) != uncompressedSize {
		return nil, fmt.Errorf("trace: zstd decompress: got %d bytes, expected %d", len(result), uncompressedSize)
	}
	return result, nil
}
