// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// editview-trace inspects session traces recorded with editview
// --record. "stat" prints the trace header, summary, and a per-frame
// table; "dump" decodes each frame and pretty-prints it; "verify"
// recomputes the stream digest and checks it against the summary
// sidecar.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/bureau-foundation/editview/lib/codec"
	"github.com/bureau-foundation/editview/lib/process"
	"github.com/bureau-foundation/editview/lib/version"
	"github.com/bureau-foundation/editview/trace"
)

func main() {
	if err := run(); err != nil {
		process.Fatal(err)
	}
}

func run() error {
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		version.Print("editview-trace")
		return nil
	}
	if len(os.Args) < 2 {
		printUsage()
		return errors.New("missing subcommand")
	}

	switch os.Args[1] {
	case "stat":
		return runStat(os.Args[2:])
	case "dump":
		return runDump(os.Args[2:])
	case "verify":
		return runVerify(os.Args[2:])
	case "help", "--help", "-h":
		printUsage()
		return nil
	default:
		printUsage()
		return fmt.Errorf("unknown subcommand %q", os.Args[1])
	}
}

func runStat(args []string) error {
	flagSet := pflag.NewFlagSet("editview-trace stat", pflag.ContinueOnError)
	flagSet.BoolP("help", "h", false, "show help")
	path, err := parseTracePath(flagSet, args)
	if err != nil || path == "" {
		return err
	}

	reader, err := trace.OpenReader(path)
	if err != nil {
		return err
	}
	defer reader.Close()

	fmt.Printf("id:       %s\n", reader.ID())
	fmt.Printf("started:  %s\n", reader.Started().Format(time.RFC3339))

	// The sidecar is written on clean close; a trace cut short by a
	// crash still has its frames.
	if summary, err := trace.ReadSummary(path); err == nil {
		ratio := 0.0
		if summary.Bytes > 0 {
			ratio = float64(summary.Compressed) / float64(summary.Bytes)
		}
		fmt.Printf("frames:   %d\n", summary.Frames)
		fmt.Printf("bytes:    %d (%d compressed, %.0f%%)\n", summary.Bytes, summary.Compressed, ratio*100)
		fmt.Printf("digest:   %s\n", summary.Digest)
	} else {
		fmt.Printf("summary:  none (%v)\n", err)
	}

	fmt.Printf("\n%6s  %12s  %8s  %s\n", "FRAME", "OFFSET", "BYTES", "KIND")
	for index := 0; ; index++ {
		frame, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
		fmt.Printf("%6d  %12s  %8d  %s\n",
			index, frame.Offset.Round(time.Microsecond), len(frame.Payload), frameKind(frame.Payload))
	}
	return nil
}

// frameKind names a frame for the stat table: the notification
// method, or the packet kind and id for responses.
func frameKind(payload []byte) string {
	var elements []any
	if err := codec.Unmarshal(payload, &elements); err != nil || len(elements) == 0 {
		return "invalid"
	}
	kind, ok := codec.AsInt64(elements[0])
	if !ok {
		return "invalid"
	}
	switch kind {
	case 0:
		return "request"
	case 1:
		if len(elements) > 1 {
			if id, ok := codec.AsInt64(elements[1]); ok {
				return fmt.Sprintf("response id=%d", id)
			}
		}
		return "response"
	case 2:
		if len(elements) > 1 {
			if method, ok := elements[1].(string); ok {
				return "notify " + method
			}
		}
		return "notify"
	default:
		return fmt.Sprintf("kind %d", kind)
	}
}

func runDump(args []string) error {
	var raw bool
	flagSet := pflag.NewFlagSet("editview-trace dump", pflag.ContinueOnError)
	flagSet.BoolVar(&raw, "raw", false, "print RFC 8949 diagnostic notation instead of JSON")
	flagSet.BoolP("help", "h", false, "show help")
	path, err := parseTracePath(flagSet, args)
	if err != nil || path == "" {
		return err
	}

	reader, err := trace.OpenReader(path)
	if err != nil {
		return err
	}
	defer reader.Close()

	highlight := term.IsTerminal(int(os.Stdout.Fd()))
	for index := 0; ; index++ {
		frame, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}

		fmt.Printf("--- frame %d @ %s (%d bytes)\n", index, frame.Offset.Round(time.Microsecond), len(frame.Payload))
		var text string
		if raw {
			text, err = codec.Diagnose(frame.Payload)
		} else {
			text, err = renderJSON(frame.Payload, highlight)
		}
		if err != nil {
			return fmt.Errorf("frame %d: %w", index, err)
		}
		fmt.Println(text)
	}
	return nil
}

// renderJSON decodes one frame and pretty-prints it as indented
// JSON, syntax highlighted when the output is a terminal.
func renderJSON(payload []byte, highlight bool) (string, error) {
	var value any
	if err := codec.Unmarshal(payload, &value); err != nil {
		return "", fmt.Errorf("decoding: %w", err)
	}
	text, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return "", fmt.Errorf("rendering: %w", err)
	}
	if !highlight {
		return string(text), nil
	}
	var buffer strings.Builder
	if err := quick.Highlight(&buffer, string(text), "json", "terminal256", "monokai"); err != nil {
		return string(text), nil
	}
	return buffer.String(), nil
}

func runVerify(args []string) error {
	flagSet := pflag.NewFlagSet("editview-trace verify", pflag.ContinueOnError)
	flagSet.BoolP("help", "h", false, "show help")
	path, err := parseTracePath(flagSet, args)
	if err != nil || path == "" {
		return err
	}

	summary, err := trace.Verify(path)
	if err != nil {
		return err
	}
	fmt.Printf("ok: %d frames, %d bytes, digest %s\n", summary.Frames, summary.Bytes, summary.Digest)
	return nil
}

// parseTracePath parses a subcommand's flags and extracts the single
// trace file argument. An empty path with a nil error means help was
// requested and printed.
func parseTracePath(flagSet *pflag.FlagSet, args []string) (string, error) {
	if err := flagSet.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			printUsage()
			return "", nil
		}
		return "", err
	}
	if help, _ := flagSet.GetBool("help"); help {
		printUsage()
		return "", nil
	}
	positional := flagSet.Args()
	if len(positional) != 1 {
		return "", fmt.Errorf("%s expects exactly one trace file argument", flagSet.Name())
	}
	return positional[0], nil
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `editview-trace inspects session traces recorded with editview --record.

Usage:
  editview-trace stat <file>          header, summary, per-frame table
  editview-trace dump [--raw] <file>  decoded frames as JSON (--raw: CBOR
                                      diagnostic notation)
  editview-trace verify <file>        recompute the digest, compare with
                                      the summary sidecar

Examples:
  editview-trace stat ~/.cache/editview/traces/01JFXA4Q2M.trace
  editview-trace dump --raw session.trace | less
  editview-trace verify session.trace
`)
}
