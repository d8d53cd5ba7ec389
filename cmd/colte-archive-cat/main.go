// Copyright 2026 The CoLTE Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"

	"github.com/spf13/pflag"

	"github.com/uw-ictd/colte-log-uploader/lib/archive"
	"github.com/uw-ictd/colte-log-uploader/lib/codec"
	"github.com/uw-ictd/colte-log-uploader/lib/logstore"
	"github.com/uw-ictd/colte-log-uploader/lib/process"
	"github.com/uw-ictd/colte-log-uploader/lib/record"
	"github.com/uw-ictd/colte-log-uploader/lib/version"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		process.Fatal(err)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	var (
		kind        string
		compression string
		validate    bool
		diag        bool
		showVersion bool
		help        bool
	)
	flagSet := pflag.NewFlagSet("colte-archive-cat", pflag.ContinueOnError)
	flagSet.SetOutput(io.Discard)
	flagSet.StringVar(&kind, "kind", string(logstore.KindFlow), "archive kind: flow or dns")
	flagSet.StringVar(&compression, "compression", "none", "archive compression: none, zstd or lz4")
	flagSet.BoolVar(&validate, "validate", false, "fail on records that break the archive's field rules")
	flagSet.BoolVar(&diag, "diag", false, "print each record in CBOR diagnostic notation instead of JSON (ignores --kind)")
	flagSet.BoolVar(&showVersion, "version", false, "print version and exit")
	flagSet.BoolVarP(&help, "help", "h", false, "show help")

	if err := flagSet.Parse(args); err != nil {
		return &process.UsageError{Err: err}
	}
	if help {
		fmt.Fprintf(stderr, "Usage:\n  colte-archive-cat [--kind flow|dns | --diag] [--compression none|zstd|lz4] ARCHIVE...\n\nFlags:\n")
		flagSet.SetOutput(stderr)
		flagSet.PrintDefaults()
		return nil
	}
	if showVersion {
		fmt.Fprintln(stdout, version.Line("colte-archive-cat"))
		return nil
	}
	if flagSet.NArg() == 0 {
		return process.Usagef("at least one archive path is required")
	}
	parsed, err := archive.ParseCompression(compression)
	if err != nil {
		return &process.UsageError{Err: err}
	}

	if diag && validate {
		return process.Usagef("--diag and --validate are mutually exclusive")
	}

	encoder := json.NewEncoder(stdout)
	for _, path := range flagSet.Args() {
		var count int
		switch {
		case diag:
			count, err = diagnose(stdout, archive.All[codec.RawMessage](path, parsed))
		case logstore.Kind(kind) == logstore.KindFlow:
			count, err = cat(encoder, archive.All[record.FlowEntry](path, parsed), validate)
		case logstore.Kind(kind) == logstore.KindDNS:
			count, err = cat(encoder, archive.All[record.DNSEntry](path, parsed), validate)
		default:
			return process.Usagef("unknown archive kind %q (want flow or dns)", kind)
		}
		if err != nil {
			if errors.Is(err, archive.ErrTruncated) {
				return fmt.Errorf("%s: truncated after %d records: %w", path, count, err)
			}
			return fmt.Errorf("%s: record %d: %w", path, count+1, err)
		}
	}
	return nil
}

type validator interface {
	Validate() error
}

// cat writes each record of entries as a JSON line and returns how many
// were written.
func cat[T any](encoder *json.Encoder, entries iter.Seq2[T, error], validate bool) (int, error) {
	var count int
	for entry, err := range entries {
		if err != nil {
			return count, err
		}
		if validate {
			if v, ok := any(&entry).(validator); ok {
				if err := v.Validate(); err != nil {
					return count, err
				}
			}
		}
		if err := encoder.Encode(entry); err != nil {
			return count, fmt.Errorf("writing record: %w", err)
		}
		count++
	}
	return count, nil
}

// diagnose writes each item of items in diagnostic notation, one per
// line, and returns how many were written.
func diagnose(w io.Writer, items iter.Seq2[codec.RawMessage, error]) (int, error) {
	var count int
	for item, err := range items {
		if err != nil {
			return count, err
		}
		notation, err := codec.Diagnose(item)
		if err != nil {
			return count, err
		}
		if _, err := fmt.Fprintln(w, notation); err != nil {
			return count, fmt.Errorf("writing record: %w", err)
		}
		count++
	}
	return count, nil
}
