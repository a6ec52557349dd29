// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package trace

import (
	mathrand "math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/zeebo/blake3"
)

const (
	// fileMagic opens every trace file. A reader seeing anything
	// else is looking at the wrong kind of file.
	fileMagic = "editview-trace"

	// formatVersion is bumped when header or entry shape changes.
	formatVersion = 1
)

// header is the first CBOR document in a trace file.
type header struct {
	Magic   string    `cbor:"magic"`
	Version int       `cbor:"version"`
	ID      string    `cbor:"id"`
	Started time.Time `cbor:"started"`
}

// entry is one recorded frame. Offset is nanoseconds since the
// session started; Size is the uncompressed payload length.
type entry struct {
	Offset      int64          `cbor:"offset"`
	Size        int            `cbor:"size"`
	Compression CompressionTag `cbor:"compression"`
	Payload     []byte         `cbor:"payload"`
}

// digestKey is the BLAKE3 key for the frame-stream digest. Keyed
// hashing domain-separates trace digests from any other BLAKE3 use;
// the bytes are the ASCII domain name zero-padded to 32.
var digestKey = [32]byte{
	'e', 'd', 'i', 't', 'v', 'i', 'e', 'w', '.', 't', 'r', 'a', 'c', 'e', '.',
	'f', 'r', 'a', 'm', 'e', 's', 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
}

func newDigest() *blake3.Hasher {
	hasher, err := blake3.NewKeyed(digestKey[:])
	if err != nil {
		panic("trace: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	return hasher
}

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(mathrand.New(mathrand.NewSource(time.Now().UnixNano())), 0)
)

// newTraceID returns a ULID for the given wall time. ULIDs sort by
// creation time, so a directory of traces lists chronologically.
func newTraceID(now time.Time) string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(now), entropy).String()
}

// NewID returns a fresh trace ULID for the current time. A [Writer]
// generates its own on creation; NewID serves callers that need an ID
// before the file exists, such as naming the file itself.
func NewID() string {
	return newTraceID(time.Now())
}
