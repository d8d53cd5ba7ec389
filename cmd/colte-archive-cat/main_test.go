// Copyright 2026 The CoLTE Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/uw-ictd/colte-log-uploader/lib/archive"
	"github.com/uw-ictd/colte-log-uploader/lib/process"
	"github.com/uw-ictd/colte-log-uploader/lib/record"
)

func writeArchive(t *testing.T, compression archive.Compression, entries ...any) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "archive")
	writer, err := archive.Create(path, archive.Options{Compression: compression})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	for _, entry := range entries {
		if err := writer.Append(entry); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	return path
}

func flow(port int) record.FlowEntry {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return record.FlowEntry{
		StartTime:         start,
		EndTime:           start.Add(time.Minute),
		ObfuscatedA:       strings.Repeat("ab", 32),
		AddressB:          "93.184.216.34",
		TransportProtocol: 6,
		PortA:             port,
		PortB:             443,
	}
}

func TestCatFlowArchive(t *testing.T) {
	path := writeArchive(t, archive.CompressionLZ4, flow(40000), flow(40001))

	var stdout bytes.Buffer
	if err := run([]string{"--compression", "lz4", path}, &stdout, &bytes.Buffer{}); err != nil {
		t.Fatalf("run: %v", err)
	}

	var ports []int
	scanner := bufio.NewScanner(&stdout)
	for scanner.Scan() {
		var entry map[string]any
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			t.Fatalf("line %q is not JSON: %v", scanner.Text(), err)
		}
		if _, ok := entry["address_a"]; ok {
			t.Errorf("line has address_a for a pseudonymized endpoint: %s", scanner.Text())
		}
		ports = append(ports, int(entry["port_a"].(float64)))
	}
	if len(ports) != 2 || ports[0] != 40000 || ports[1] != 40001 {
		t.Errorf("ports = %v, want [40000 40001]", ports)
	}
}

func TestCatDNSArchive(t *testing.T) {
	entry := record.DNSEntry{
		Timestamp:         time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		SrcIP:             "8.8.8.8",
		ObfuscatedDst:     strings.Repeat("cd", 32),
		Protocol:          17,
		SrcPort:           53,
		DstPort:           51000,
		Host:              "example.com",
		ResponseAddresses: []string{"93.184.216.34"},
		ResponseTTLs:      []uint32{300},
		AnswerIndex:       1,
	}
	path := writeArchive(t, archive.CompressionNone, entry)

	var stdout bytes.Buffer
	if err := run([]string{"--kind", "dns", "--validate", path}, &stdout, &bytes.Buffer{}); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(stdout.String(), `"host":"example.com"`) {
		t.Errorf("output = %s, want the host", stdout.String())
	}
}

func TestCatDiagnosticNotation(t *testing.T) {
	path := writeArchive(t, archive.CompressionZstd, flow(40000), flow(40001))

	var stdout bytes.Buffer
	if err := run([]string{"--diag", "--compression", "zstd", path}, &stdout, &bytes.Buffer{}); err != nil {
		t.Fatalf("run --diag: %v", err)
	}
	lines := strings.Split(strings.TrimSuffix(stdout.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("printed %d lines, want 2:\n%s", len(lines), stdout.String())
	}
	for _, want := range []string{`"port_a": 40000`, `"start_time": 0("2026-03-01T12:00:00Z")`} {
		if !strings.Contains(lines[0], want) {
			t.Errorf("first record = %s, want it to contain %s", lines[0], want)
		}
	}
	if strings.Contains(lines[0], "address_a") {
		t.Errorf("first record = %s, want address_a omitted", lines[0])
	}
}

func TestCatDiagnosticTruncated(t *testing.T) {
	path := writeArchive(t, archive.CompressionNone, flow(40000), flow(40001))
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Truncate(path, info.Size()-3); err != nil {
		t.Fatal(err)
	}

	var stdout bytes.Buffer
	err = run([]string{"--diag", path}, &stdout, &bytes.Buffer{})
	if !errors.Is(err, archive.ErrTruncated) {
		t.Fatalf("run --diag = %v, want ErrTruncated", err)
	}
	if lines := strings.Count(stdout.String(), "\n"); lines != 1 {
		t.Errorf("printed %d records before the truncation, want 1", lines)
	}
}

func TestCatValidateRejectsBadRecord(t *testing.T) {
	bad := flow(40000)
	bad.AddressA = "10.0.0.5"
	path := writeArchive(t, archive.CompressionNone, flow(39999), bad)

	err := run([]string{"--validate", path}, &bytes.Buffer{}, &bytes.Buffer{})
	if err == nil {
		t.Fatal("run --validate accepted a record with both address_a and obfuscated_a")
	}
	if !strings.Contains(err.Error(), "record 2") {
		t.Errorf("error = %v, want it to name record 2", err)
	}
}

func TestCatTruncatedArchive(t *testing.T) {
	path := writeArchive(t, archive.CompressionNone, flow(40000), flow(40001))
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Truncate(path, info.Size()-3); err != nil {
		t.Fatal(err)
	}

	var stdout bytes.Buffer
	err = run([]string{path}, &stdout, &bytes.Buffer{})
	if !errors.Is(err, archive.ErrTruncated) {
		t.Fatalf("run = %v, want ErrTruncated", err)
	}
	if lines := strings.Count(stdout.String(), "\n"); lines != 1 {
		t.Errorf("printed %d records before the truncation, want 1", lines)
	}
}

func TestCatUsageErrors(t *testing.T) {
	path := writeArchive(t, archive.CompressionNone, flow(40000))
	for _, args := range [][]string{
		nil,
		{"--kind", "http", path},
		{"--compression", "gzip", path},
		{"--diag", "--validate", path},
	} {
		err := run(args, &bytes.Buffer{}, &bytes.Buffer{})
		if code := process.ExitCode(err); code != process.ExitUsage {
			t.Errorf("run(%q) = %v (exit %d), want a usage error", args, err, code)
		}
	}
}
