// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package trace

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Summary is the YAML sidecar a [Writer] emits on Close. Compressed
// counts stored payload bytes; Bytes counts the frames as received.
type Summary struct {
	ID         string    `yaml:"id"`
	Started    time.Time `yaml:"started"`
	Frames     int64     `yaml:"frames"`
	Bytes      int64     `yaml:"bytes"`
	Compressed int64     `yaml:"compressed"`
	Digest     string    `yaml:"digest"`
}

// SummaryPath returns the sidecar path for a trace file.
func SummaryPath(tracePath string) string {
	return tracePath + ".summary.yaml"
}

func writeSummary(path string, summary Summary) error {
	data, err := yaml.Marshal(summary)
	if err != nil {
		return fmt.Errorf("trace: marshal summary: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("trace: write summary: %w", err)
	}
	return nil
}

// ReadSummary loads a trace's summary sidecar.
func ReadSummary(tracePath string) (Summary, error) {
	data, err := os.ReadFile(SummaryPath(tracePath))
	if err != nil {
		return Summary{}, fmt.Errorf("trace: read summary: %w", err)
	}
	var summary Summary
	if err := yaml.Unmarshal(data, &summary); err != nil {
		return Summary{}, fmt.Errorf("trace: parse summary: %w", err)
	}
	return summary, nil
}

// Verify walks every frame of a trace, recomputes the stream digest,
// and compares frame count, byte count, and digest against the
// summary sidecar. It returns the verified summary.
func Verify(tracePath string) (Summary, error) {
	summary, err := ReadSummary(tracePath)
	if err != nil {
		return Summary{}, err
	}

	reader, err := OpenReader(tracePath)
	if err != nil {
		return Summary{}, err
	}
	defer reader.Close()

	if reader.ID() != summary.ID {
		return Summary{}, fmt.Errorf("trace: id mismatch: file %s, summary %s", reader.ID(), summary.ID)
	}

	digest := newDigest()
	var frames, bytes int64
	for {
		frame, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Summary{}, err
		}
		digest.Write(frame.Payload)
		frames++
		bytes += int64(len(frame.Payload))
	}

	if frames != summary.Frames {
		return Summary{}, fmt.Errorf("trace: frame count mismatch: file has %d, summary says %d", frames, summary.Frames)
	}
	if bytes != summary.Bytes {
		return Summary{}, fmt.Errorf("trace: byte count mismatch: file has %d, summary says %d", bytes, summary.Bytes)
	}
	if got := hex.EncodeToString(digest.Sum(nil)); got != summary.Digest {
		return Summary{}, fmt.Errorf("trace: digest mismatch: file %s, summary %s", got, summary.Digest)
	}
	return summary, nil
}
