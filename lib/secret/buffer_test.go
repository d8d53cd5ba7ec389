// Copyright 2026 The CoLTE Authors
// SPDX-License-Identifier: Apache-2.0

package secret

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFromBytes(t *testing.T) {
	source := []byte("super-secret-key")
	buffer, err := FromBytes(source)
	if err != nil {
		t.Fatalf("FromBytes: %v", err)
	}
	defer buffer.Close()

	if got := string(buffer.Bytes()); got != "super-secret-key" {
		t.Errorf("Bytes = %q, want %q", got, "super-secret-key")
	}
	if buffer.Len() != len("super-secret-key") {
		t.Errorf("Len = %d", buffer.Len())
	}
	for index, value := range source {
		if value != 0 {
			t.Fatalf("source byte %d was not zeroed: got %d", index, value)
		}
	}
}

func TestFromBytesEmpty(t *testing.T) {
	if _, err := FromBytes(nil); !errors.Is(err, ErrEmpty) {
		t.Fatalf("FromBytes(nil): %v, want ErrEmpty", err)
	}
}

func TestCloseZerosAndIsIdempotent(t *testing.T) {
	buffer, err := FromBytes([]byte("key"))
	if err != nil {
		t.Fatal(err)
	}
	if err := buffer.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := buffer.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}

	defer func() {
		if recover() == nil {
			t.Error("Bytes after Close did not panic")
		}
	}()
	buffer.Bytes()
}

func TestReadKeyFileIsVerbatim(t *testing.T) {
	path := filepath.Join(t.TempDir(), "key")
	if err := os.WriteFile(path, []byte(" k1\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	buffer, err := ReadKeyFile(path)
	if err != nil {
		t.Fatalf("ReadKeyFile: %v", err)
	}
	defer buffer.Close()
	if got := string(buffer.Bytes()); got != " k1\n" {
		t.Errorf("key = %q, want the file contents unchanged", got)
	}
}

func TestReadKeyFileErrors(t *testing.T) {
	directory := t.TempDir()
	empty := filepath.Join(directory, "empty")
	if err := os.WriteFile(empty, nil, 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadKeyFile(empty); !errors.Is(err, ErrEmpty) {
		t.Errorf("empty key file: %v, want ErrEmpty", err)
	}

	large := filepath.Join(directory, "large")
	if err := os.WriteFile(large, make([]byte, MaxKeySize+1), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadKeyFile(large); err == nil {
		t.Error("oversized key file accepted")
	}

	if _, err := ReadKeyFile(filepath.Join(directory, "missing")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing key file: %v, want ErrNotExist", err)
	}
}

func TestReadKeyLine(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{input: "k1\n", want: "k1"},
		{input: "k1\r\nignored\n", want: "k1"},
		{input: "spaced key ", want: "spaced key "},
	}
	for _, test := range tests {
		buffer, err := ReadKeyLine(strings.NewReader(test.input))
		if err != nil {
			t.Errorf("ReadKeyLine(%q): %v", test.input, err)
			continue
		}
		if got := string(buffer.Bytes()); got != test.want {
			t.Errorf("ReadKeyLine(%q) = %q, want %q", test.input, got, test.want)
		}
		buffer.Close()
	}

	for _, input := range []string{"", "\n"} {
		if _, err := ReadKeyLine(strings.NewReader(input)); !errors.Is(err, ErrEmpty) {
			t.Errorf("ReadKeyLine(%q): %v, want ErrEmpty", input, err)
		}
	}
}
