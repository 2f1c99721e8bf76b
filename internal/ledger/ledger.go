// Package ledger records the last installed version of each addon in a flat
// name=version text file.
//
// The ledger has a single writer: the startup install flow. It does no locking.
package ledger

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Entry is one name=version line of the ledger.
type Entry struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Ledger reads and writes the version file at Path.
type Ledger struct {
	Path string
}

// New returns a Ledger backed by the file at path.
func New(path string) *Ledger {
	return &Ledger{Path: path}
}

// Get returns the recorded version for name. A missing file or a missing key
// both yield an empty string and no error.
func (l *Ledger) Get(name string) (string, error) {
	lines, err := l.readLines()
	if err != nil {
		return "", err
	}
	for _, line := range lines {
		if k, v, ok := splitEntry(line); ok && k == name {
			return v, nil
		}
	}
	return "", nil
}

// Set records value for name, replacing the existing line in place or
// appending a new one. Any duplicate lines for name are collapsed.
func (l *Ledger) Set(name, value string) error {
	if err := validate(name, value); err != nil {
		return err
	}
	lines, err := l.readLines()
	if err != nil {
		return err
	}

	entry := name + "=" + value
	out := make([]string, 0, len(lines)+1)
	found := false
	for _, line := range lines {
		if k, _, ok := splitEntry(line); ok && k == name {
			if found {
				continue
			}
			found = true
			out = append(out, entry)
			continue
		}
		out = append(out, line)
	}
	if !found {
		out = append(out, entry)
	}

	if err := os.MkdirAll(filepath.Dir(l.Path), 0755); err != nil {
		return fmt.Errorf("create ledger dir: %w", err)
	}
	var buf bytes.Buffer
	for _, line := range out {
		buf.WriteString(line)
		buf.WriteByte('\n')
	}
	if err := os.WriteFile(l.Path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("write ledger: %w", err)
	}
	return nil
}

// All returns every well-formed entry in file order.
func (l *Ledger) All() ([]Entry, error) {
	lines, err := l.readLines()
	if err != nil {
		return nil, err
	}
	var entries []Entry
	for _, line := range lines {
		if k, v, ok := splitEntry(line); ok {
			entries = append(entries, Entry{Name: k, Version: v})
		}
	}
	return entries, nil
}

func (l *Ledger) readLines() ([]string, error) {
	data, err := os.ReadFile(l.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read ledger: %w", err)
	}

	var lines []string
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan ledger: %w", err)
	}
	return lines, nil
}

func splitEntry(line string) (name, version string, ok bool) {
	name, version, ok = strings.Cut(line, "=")
	if !ok || name == "" {
		return "", "", false
	}
	return name, version, true
}

func validate(name, value string) error {
	if name == "" {
		return fmt.Errorf("ledger: empty addon name")
	}
	if strings.ContainsAny(name, "=\n\r") {
		return fmt.Errorf("ledger: invalid addon name %q", name)
	}
	if strings.ContainsAny(value, "=\n\r") {
		return fmt.Errorf("ledger: invalid version %q for %s", value, name)
	}
	return nil
}
