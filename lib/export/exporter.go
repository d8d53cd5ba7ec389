// Copyright 2026 The CoLTE Authors
// SPDX-License-Identifier: Apache-2.0

package export

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"time"

	"github.com/uw-ictd/colte-log-uploader/lib/archive"
	"github.com/uw-ictd/colte-log-uploader/lib/clock"
	"github.com/uw-ictd/colte-log-uploader/lib/logstore"
	"github.com/uw-ictd/colte-log-uploader/lib/pseudonym"
	"github.com/uw-ictd/colte-log-uploader/lib/record"
)

// Options configures an Exporter. FlowPath and DNSPath are required.
type Options struct {
	// FlowPath and DNSPath are the archives appended to.
	FlowPath string
	DNSPath  string

	// Compression and ProgressEvery are passed to both archive writers.
	Compression   archive.Compression
	ProgressEvery int

	// Digest is the pseudonym transform. Empty means pseudonym.SHA256.
	Digest pseudonym.Digest

	// SkipPurge archives without deleting anything from the live
	// store. The staging tables are left in place and replaced by the
	// next run.
	SkipPurge bool

	// Clock times the run. Nil uses the real clock.
	Clock clock.Clock

	// Logger receives run progress. Nil discards it.
	Logger *slog.Logger
}

// Exporter performs export runs against one Store.
type Exporter struct {
	store   *logstore.Store
	seed    []byte
	options Options
	clock   clock.Clock
	logger  *slog.Logger
}

// New returns an Exporter. The seed is read on each Run and must stay
// valid until the Exporter is no longer used.
func New(store *logstore.Store, seed []byte, options Options) (*Exporter, error) {
	if options.FlowPath == "" || options.DNSPath == "" {
		return nil, fmt.Errorf("export: FlowPath and DNSPath are required")
	}
	if options.Digest == "" {
		options.Digest = pseudonym.SHA256
	}
	runClock := options.Clock
	if runClock == nil {
		runClock = clock.Real()
	}
	logger := options.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Exporter{
		store:   store,
		seed:    seed,
		options: options,
		clock:   runClock,
		logger:  logger.With("run_id", store.RunID()),
	}, nil
}

// KindReport describes the export of one log kind.
type KindReport struct {
	Kind     logstore.Kind
	Path     string
	Epoch    int64
	Staged   int64
	Exported int64
	Purged   int64
	// PurgeSkipped is set when Options.SkipPurge left the rows live.
	PurgeSkipped bool
	Duration     time.Duration
}

// Report summarizes a run. On failure it holds whatever completed
// before the error.
type Report struct {
	RunID       string
	Assignments int
	Flow        KindReport
	DNS         KindReport
	Duration    time.Duration
}

// Run exports and purges flows, then DNS. It stops at the first error.
func (e *Exporter) Run(ctx context.Context) (report Report, err error) {
	started := e.clock.Now()
	report.RunID = e.store.RunID()
	defer func() { report.Duration = clock.Since(e.clock, started) }()

	pseudonyms, err := pseudonym.Build(e.store.Assignments(ctx), e.options.Digest, e.seed)
	if err != nil {
		return report, fmt.Errorf("export: building pseudonym map: %w", err)
	}
	report.Assignments = pseudonyms.Len()
	e.logger.Info("pseudonym map built",
		"assignments", pseudonyms.Len(),
		"digest", string(e.options.Digest),
	)

	report.Flow, err = exportKind(ctx, e, logstore.KindFlow, e.options.FlowPath,
		e.store.StageFlows,
		func(row logstore.FlowRow) (record.FlowEntry, error) {
			flow, err := record.DecodeFlow(row)
			if err != nil {
				return record.FlowEntry{}, err
			}
			return pseudonyms.Flow(flow), nil
		})
	if err != nil {
		return report, err
	}

	report.DNS, err = exportKind(ctx, e, logstore.KindDNS, e.options.DNSPath,
		e.store.StageDNS,
		func(row logstore.DNSRow) (record.DNSEntry, error) {
			dns, err := record.DecodeDNS(row)
			if err != nil {
				return record.DNSEntry{}, err
			}
			return pseudonyms.DNS(dns), nil
		})
	if err != nil {
		return report, err
	}

	e.logger.Info("export run complete",
		"flows", report.Flow.Exported,
		"dns_responses", report.DNS.Exported,
		"duration", clock.Since(e.clock, started),
	)
	return report, nil
}

// exportKind is stage, archive, purge for one kind. The archive is
// closed before Purge is attempted, and a failed close skips it.
func exportKind[Row, Entry any](
	ctx context.Context,
	e *Exporter,
	kind logstore.Kind,
	path string,
	stage func(context.Context) (*logstore.Snapshot[Row], error),
	convert func(Row) (Entry, error),
) (KindReport, error) {
	started := e.clock.Now()
	report := KindReport{Kind: kind, Path: path}

	snapshot, err := stage(ctx)
	if err != nil {
		return report, fmt.Errorf("export: staging %s: %w", kind, err)
	}
	report.Epoch = snapshot.Epoch()
	report.Staged = snapshot.RowCount()

	logger := e.logger.With("kind", kind, "epoch", snapshot.Epoch())
	logger.Info("exporting", "rows", snapshot.RowCount(), "path", path)

	report.Exported, err = archive.StreamToFile(path, entries(ctx, snapshot, convert), archive.Options{
		Compression:   e.options.Compression,
		ProgressEvery: e.options.ProgressEvery,
		Logger:        logger,
	})
	if err != nil {
		report.Duration = clock.Since(e.clock, started)
		return report, fmt.Errorf("export: archiving %s to %s after %d rows: %w", kind, path, report.Exported, err)
	}

	if e.options.SkipPurge {
		report.PurgeSkipped = true
		report.Duration = clock.Since(e.clock, started)
		logger.Warn("purge skipped, staged rows remain live", "rows", report.Exported)
		return report, nil
	}

	report.Purged, err = e.store.Purge(ctx, snapshot)
	report.Duration = clock.Since(e.clock, started)
	if err != nil {
		return report, fmt.Errorf("export: purging %s: %w", kind, err)
	}
	return report, nil
}

// entries maps the snapshot's rows through convert, stopping at the
// first error.
func entries[Row, Entry any](ctx context.Context, snapshot *logstore.Snapshot[Row], convert func(Row) (Entry, error)) iter.Seq2[Entry, error] {
	return func(yield func(Entry, error) bool) {
		var zero Entry
		for row, err := range snapshot.Rows(ctx) {
			if err != nil {
				yield(zero, err)
				return
			}
			entry, err := convert(row)
			if err != nil {
				yield(zero, err)
				return
			}
			if !yield(entry, nil) {
				return
			}
		}
	}
}
