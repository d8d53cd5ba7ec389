// Copyright 2026 The CoLTE Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/pflag"

	"github.com/uw-ictd/colte-log-uploader/lib/config"
	"github.com/uw-ictd/colte-log-uploader/lib/process"
)

// options holds the parsed command line. String fields are empty when
// the flag was not given.
type options struct {
	configPath  string
	key         string
	keyFile     string
	keyGiven    bool
	storePath   string
	flowOut     string
	dnsOut      string
	compression string
	compress    bool
	skipPurge   bool
	verbose     bool
	showVersion bool
	help        bool
}

func newFlagSet(o *options) *pflag.FlagSet {
	flagSet := pflag.NewFlagSet("colte-log-export", pflag.ContinueOnError)
	flagSet.StringVar(&o.configPath, "config", "", "YAML config file (default: $"+config.EnvironmentVariable+", then built-in defaults)")
	flagSet.StringVar(&o.key, "key", "", "pseudonymization key (visible in the process list; prefer --key-file)")
	flagSet.StringVar(&o.keyFile, "key-file", "", "read the pseudonymization key from this file, or one line from stdin with -")
	flagSet.StringVar(&o.storePath, "store", "", "SQLite log store (overrides store.path)")
	flagSet.StringVar(&o.flowOut, "flow-out", "", "flow archive (overrides archive.flow_path)")
	flagSet.StringVar(&o.dnsOut, "dns-out", "", "DNS archive (overrides archive.dns_path)")
	flagSet.BoolVar(&o.compress, "compress", false, "compress archive output")
	flagSet.StringVar(&o.compression, "compression", "", "compression algorithm for --compress: zstd or lz4 (overrides archive.compression)")
	flagSet.BoolVar(&o.skipPurge, "skip-purge", false, "archive without deleting exported rows from the store")
	flagSet.BoolVarP(&o.verbose, "verbose", "v", false, "log at debug level")
	flagSet.BoolVar(&o.showVersion, "version", false, "print version and exit")
	flagSet.BoolVarP(&o.help, "help", "h", false, "show help")
	return flagSet
}

// parseFlags parses args. Errors are *process.UsageError.
func parseFlags(args []string) (options, *pflag.FlagSet, error) {
	var o options
	flagSet := newFlagSet(&o)
	flagSet.SetOutput(io.Discard)

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			o.help = true
			return o, flagSet, nil
		}
		return o, flagSet, &process.UsageError{Err: err}
	}
	if o.help || o.showVersion {
		return o, flagSet, nil
	}
	if flagSet.NArg() > 0 {
		return o, flagSet, process.Usagef("unexpected argument: %s", flagSet.Arg(0))
	}

	o.keyGiven = flagSet.Changed("key")
	keyFileGiven := flagSet.Changed("key-file")
	switch {
	case o.keyGiven && keyFileGiven:
		return o, flagSet, process.Usagef("--key and --key-file are mutually exclusive")
	case !o.keyGiven && !keyFileGiven:
		return o, flagSet, process.Usagef("a pseudonymization key is required (--key or --key-file)")
	case o.keyGiven && o.key == "":
		return o, flagSet, process.Usagef("--key must not be empty")
	case keyFileGiven && o.keyFile == "":
		return o, flagSet, process.Usagef("--key-file must not be empty (use - for stdin)")
	}
	return o, flagSet, nil
}

// apply layers the flags over cfg.
func (o options) apply(cfg *config.Config) {
	if o.storePath != "" {
		cfg.Store.Path = o.storePath
	}
	if o.flowOut != "" {
		cfg.Archive.FlowPath = o.flowOut
	}
	if o.dnsOut != "" {
		cfg.Archive.DNSPath = o.dnsOut
	}
	if o.compress {
		cfg.Archive.Compress = true
	}
	if o.compression != "" {
		cfg.Archive.Compression = o.compression
	}
}

// loadConfig loads the file named by --config or the environment and
// applies the flags. Invalid configuration is a usage error.
func loadConfig(o options) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if o.configPath != "" {
		cfg, err = config.LoadFile(o.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, &process.UsageError{Err: err}
	}
	o.apply(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, &process.UsageError{Err: fmt.Errorf("invalid configuration:\n%w", err)}
	}
	return cfg, nil
}

func printHelp(w io.Writer, flagSet *pflag.FlagSet) {
	fmt.Fprintf(w, `colte-log-export archives and purges the network monitor's flow and DNS logs.

Subscriber addresses are pseudonymized with a keyed digest of the
subscriber identity. The same key must be used for every run.

Usage:
  colte-log-export --key-file PATH [flags]

Examples:
  # Nightly export with a key file and zstd compression
  colte-log-export --key-file /etc/colte/export.key --compress

  # Prompt for the key and write the archives elsewhere
  colte-log-export --key-file - --flow-out /srv/archive/flows --dns-out /srv/archive/dns

Flags:
`)
	flagSet.SetOutput(w)
	flagSet.PrintDefaults()
}
