// Copyright 2026 The CoLTE Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"

	"github.com/uw-ictd/colte-log-uploader/lib/process"
	"github.com/uw-ictd/colte-log-uploader/lib/pseudonym"
	"github.com/uw-ictd/colte-log-uploader/lib/secret"
	"github.com/uw-ictd/colte-log-uploader/lib/version"
)

// maxLine bounds a single input line.
const maxLine = 1 << 20

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		process.Fatal(err)
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	var (
		keyFile     string
		prefix      string
		algorithm   string
		showVersion bool
		help        bool
	)
	flagSet := pflag.NewFlagSet("colte-imsi-translate", pflag.ContinueOnError)
	flagSet.SetOutput(io.Discard)
	flagSet.StringVar(&keyFile, "key-file", "", "pseudonymization key file, read verbatim (required)")
	flagSet.StringVar(&prefix, "prefix", "", "home network MCC+MNC, e.g. 90154; only IMSIs with this prefix are replaced (empty: every 15-digit word)")
	flagSet.StringVar(&algorithm, "algorithm", string(pseudonym.SHA256), "pseudonym digest: sha256 or blake3")
	flagSet.BoolVar(&showVersion, "version", false, "print version and exit")
	flagSet.BoolVarP(&help, "help", "h", false, "show help")

	if err := flagSet.Parse(args); err != nil {
		return &process.UsageError{Err: err}
	}
	if help {
		fmt.Fprintf(stderr, "Usage:\n  colte-imsi-translate --key-file PATH [--prefix MCCMNC] [FILE...]\n\nFlags:\n")
		flagSet.SetOutput(stderr)
		flagSet.PrintDefaults()
		return nil
	}
	if showVersion {
		fmt.Fprintln(stdout, version.Line("colte-imsi-translate"))
		return nil
	}
	if keyFile == "" {
		return process.Usagef("--key-file is required")
	}
	digest, err := pseudonym.ParseDigest(algorithm)
	if err != nil {
		return &process.UsageError{Err: err}
	}

	key, err := secret.ReadKeyFile(keyFile)
	if err != nil {
		return err
	}
	defer key.Close()

	translator, err := pseudonym.NewTranslator(digest, key.Bytes(), prefix)
	if err != nil {
		return err
	}

	output := bufio.NewWriter(stdout)
	if flagSet.NArg() == 0 {
		if err := translate(translator, stdin, output); err != nil {
			return err
		}
		return output.Flush()
	}
	for _, path := range flagSet.Args() {
		file, err := os.Open(path)
		if err != nil {
			return err
		}
		err = translate(translator, file, output)
		file.Close()
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}
	return output.Flush()
}

func translate(translator *pseudonym.Translator, input io.Reader, output *bufio.Writer) error {
	scanner := bufio.NewScanner(input)
	scanner.Buffer(make([]byte, 0, 64<<10), maxLine)
	for scanner.Scan() {
		if _, err := output.WriteString(translator.Line(scanner.Text())); err != nil {
			return err
		}
		if err := output.WriteByte('\n'); err != nil {
			return err
		}
	}
	return scanner.Err()
}
