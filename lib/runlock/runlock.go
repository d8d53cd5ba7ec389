// Copyright 2026 The CoLTE Authors
// SPDX-License-Identifier: Apache-2.0

// Package runlock serializes export runs against one log store with an
// advisory flock(2) on a lock file.
//
// The lock is tied to the open file description, so it is released
// when the process exits for any reason, including SIGKILL. The file's
// contents (holder PID and run id) are informational only.
package runlock

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"
)

// ErrLocked means another run holds the lock.
var ErrLocked = errors.New("runlock: another export run holds the lock")

// Lock is a held run lock.
type Lock struct {
	path string
	file *os.File
}

// Acquire takes the lock at path without waiting, creating the file if
// needed. On contention it returns an error matching ErrLocked that
// names the current holder when the file says who it is.
func Acquire(path, runID string) (*Lock, error) {
	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("runlock: opening %s: %w", path, err)
	}

	if err := unix.Flock(int(file.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		holder := readHolder(file)
		file.Close()
		if errors.Is(err, unix.EWOULDBLOCK) {
			if holder != "" {
				return nil, fmt.Errorf("%w (%s): %s", ErrLocked, holder, path)
			}
			return nil, fmt.Errorf("%w: %s", ErrLocked, path)
		}
		return nil, fmt.Errorf("runlock: locking %s: %w", path, err)
	}

	if err := writeHolder(file, runID); err != nil {
		unix.Flock(int(file.Fd()), unix.LOCK_UN)
		file.Close()
		return nil, fmt.Errorf("runlock: recording holder in %s: %w", path, err)
	}
	return &Lock{path: path, file: file}, nil
}

// Path returns the lock file path.
func (l *Lock) Path() string { return l.path }

// Release drops the lock. The file is left in place.
func (l *Lock) Release() error {
	if l.file == nil {
		return nil
	}
	file := l.file
	l.file = nil
	unlockErr := unix.Flock(int(file.Fd()), unix.LOCK_UN)
	closeErr := file.Close()
	if err := errors.Join(unlockErr, closeErr); err != nil {
		return fmt.Errorf("runlock: releasing %s: %w", l.path, err)
	}
	return nil
}

func writeHolder(file *os.File, runID string) error {
	if err := file.Truncate(0); err != nil {
		return err
	}
	_, err := file.WriteAt([]byte("pid="+strconv.Itoa(os.Getpid())+" run_id="+runID+"\n"), 0)
	return err
}

func readHolder(file *os.File) string {
	buffer := make([]byte, 256)
	n, _ := file.ReadAt(buffer, 0)
	return strings.TrimSpace(string(buffer[:n]))
}
