// Copyright 2026 The CoLTE Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"golang.org/x/term"

	"github.com/uw-ictd/colte-log-uploader/lib/config"
	"github.com/uw-ictd/colte-log-uploader/lib/export"
	"github.com/uw-ictd/colte-log-uploader/lib/logstore"
	"github.com/uw-ictd/colte-log-uploader/lib/metrics"
	"github.com/uw-ictd/colte-log-uploader/lib/process"
	"github.com/uw-ictd/colte-log-uploader/lib/runlock"
	"github.com/uw-ictd/colte-log-uploader/lib/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	if err != nil {
		process.Fatal(err)
	}
}

func run(ctx context.Context, args []string, stdin *os.File, stdout, stderr io.Writer) error {
	o, flagSet, err := parseFlags(args)
	if err != nil {
		return err
	}
	if o.help {
		printHelp(stderr, flagSet)
		return nil
	}
	if o.showVersion {
		if o.verbose {
			fmt.Fprintln(stdout, version.Full("colte-log-export"))
		} else {
			fmt.Fprintln(stdout, version.Line("colte-log-export"))
		}
		return nil
	}

	cfg, err := loadConfig(o)
	if err != nil {
		return err
	}

	logger := newLogger(stderr, o.verbose)
	runID := uuid.NewString()

	key, err := loadKey(o, stdin, stderr)
	if err != nil {
		return fmt.Errorf("loading pseudonymization key: %w", err)
	}
	defer key.Close()
	if !key.Locked() {
		logger.Warn("key memory could not be locked, it may be swapped to disk", "run_id", runID)
	}

	lock, err := runlock.Acquire(cfg.LockPath(), runID)
	if err != nil {
		return err
	}
	defer lock.Release()

	return runExport(ctx, cfg, o, key.Bytes(), runID, logger)
}

// runExport opens the store, runs the export and records metrics.
func runExport(ctx context.Context, cfg *config.Config, o options, seed []byte, runID string, logger *slog.Logger) (err error) {
	started := time.Now()
	compression, err := cfg.Compression()
	if err != nil {
		return &process.UsageError{Err: err}
	}
	digest, err := cfg.Digest()
	if err != nil {
		return &process.UsageError{Err: err}
	}

	store, err := logstore.Open(ctx, logstore.Config{
		Path:         cfg.Store.Path,
		BusyTimeout:  cfg.Store.BusyTimeout,
		CreateSchema: cfg.Store.CreateSchema,
		RunID:        runID,
		Logger:       logger,
	})
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	exporter, err := export.New(store, seed, export.Options{
		FlowPath:      cfg.Archive.FlowPath,
		DNSPath:       cfg.Archive.DNSPath,
		Compression:   compression,
		ProgressEvery: cfg.Archive.ProgressEvery,
		Digest:        digest,
		SkipPurge:     o.skipPurge,
		Logger:        logger,
	})
	if err != nil {
		return err
	}

	report, runErr := exporter.Run(ctx)
	category := export.Classify(runErr)
	if runErr != nil {
		logger.Error("export run failed",
			"run_id", runID,
			"category", string(category),
			"error", runErr,
		)
	}

	if cfg.Metrics.TextfilePath != "" {
		runMetrics := metrics.New()
		runMetrics.Assignments(report.Assignments)
		for _, kind := range []export.KindReport{report.Flow, report.DNS} {
			if kind.Kind != "" {
				runMetrics.Kind(string(kind.Kind), kind.Exported, kind.Purged, kind.Duration)
			}
		}
		runMetrics.Finish(time.Now(), time.Since(started), string(category))
		if err := runMetrics.WriteTextfile(cfg.Metrics.TextfilePath); err != nil {
			logger.Error("writing metrics failed", "run_id", runID, "error", err)
			if runErr == nil {
				return err
			}
		}
	}
	return runErr
}

// newLogger returns a text logger when w is a terminal and a JSON logger
// otherwise.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	options := &slog.HandlerOptions{Level: slog.LevelInfo}
	if verbose {
		options.Level = slog.LevelDebug
	}
	if file, ok := w.(*os.File); ok && term.IsTerminal(int(file.Fd())) {
		return slog.New(slog.NewTextHandler(w, options))
	}
	return slog.New(slog.NewJSONHandler(w, options))
}
