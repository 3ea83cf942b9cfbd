package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
)

// pidFile guards against a second daemon on the same machine.
type pidFile struct {
	path string
}

// acquirePidFile creates path exclusively and writes our pid into it. With
// force an existing file is replaced.
func acquirePidFile(path string, force bool) (*pidFile, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if errors.Is(err, fs.ErrExist) {
		if !force {
			return nil, fmt.Errorf("pid file %s already exists (%s); use --force if no daemon is running",
				path, describeOwner(path))
		}
		if err := os.Remove(path); err != nil {
			return nil, fmt.Errorf("failed to remove stale pid file: %w", err)
		}
		f, err = os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create pid file: %w", err)
	}
	defer f.Close()

	if _, err := fmt.Fprintf(f, "%d\n", os.Getpid()); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("failed to write pid file: %w", err)
	}
	return &pidFile{path: path}, nil
}

// Release removes the pid file. Safe on a nil receiver.
func (p *pidFile) Release() error {
	if p == nil {
		return nil
	}
	if err := os.Remove(p.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func describeOwner(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return "unreadable"
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return "no pid"
	}
	return "pid " + strconv.Itoa(pid)
}

