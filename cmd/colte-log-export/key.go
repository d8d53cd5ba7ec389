// Copyright 2026 The CoLTE Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/uw-ictd/colte-log-uploader/lib/secret"
)

// loadKey returns the pseudonymization key named by the flags. With
// --key-file - a terminal stdin is prompted with echo disabled; any
// other stdin supplies its first line.
func loadKey(o options, stdin *os.File, prompt io.Writer) (*secret.Buffer, error) {
	if o.keyGiven {
		return secret.FromBytes([]byte(o.key))
	}
	if o.keyFile != "-" {
		return secret.ReadKeyFile(o.keyFile)
	}

	descriptor := int(stdin.Fd())
	if !term.IsTerminal(descriptor) {
		return secret.ReadKeyLine(stdin)
	}

	fmt.Fprint(prompt, "Pseudonymization key: ")
	key, err := term.ReadPassword(descriptor)
	fmt.Fprintln(prompt)
	if err != nil {
		clear(key)
		return nil, fmt.Errorf("reading key: %w", err)
	}
	return secret.FromBytes(key)
}
