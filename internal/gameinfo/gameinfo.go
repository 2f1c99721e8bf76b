// Package gameinfo patches the game's search-path file so the Metamod loader
// is registered exactly once.
package gameinfo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	FileName = "gameinfo.gi"

	MetamodAnchor = "Game_LowViolence\tcsgo_lv"
	MetamodLine   = "Game\tcsgo/addons/metamod"
)

// ErrAnchorNotFound is returned when the file has no line to insert after.
var ErrAnchorNotFound = errors.New("anchor line not found")

// PatchMetamod registers the Metamod search path in gameDir/gameinfo.gi.
func PatchMetamod(gameDir string) (bool, error) {
	return EnsureLine(filepath.Join(gameDir, FileName), MetamodAnchor, MetamodLine)
}

// EnsureLine inserts line directly after the first line matching anchor,
// unless a line matching line is already present. Lines are compared with
// trailing comments and surrounding whitespace ignored. The inserted line
// takes the anchor's indentation. The file is replaced atomically.
func EnsureLine(path, anchor, line string) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return false, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return false, err
	}

	want := normalize(line)
	lines := strings.Split(string(data), "\n")
	anchorAt := -1
	for i, l := range lines {
		n := normalize(l)
		if n == want {
			return false, nil
		}
		if anchorAt < 0 && n == normalize(anchor) {
			anchorAt = i
		}
	}
	if anchorAt < 0 {
		return false, fmt.Errorf("%s: %w: %q", filepath.Base(path), ErrAnchorNotFound, anchor)
	}

	a := lines[anchorAt]
	inserted := leadingSpace(a) + strings.TrimSpace(line)
	if strings.HasSuffix(a, "\r") {
		inserted += "\r"
	}

	out := make([]string, 0, len(lines)+1)
	out = append(out, lines[:anchorAt+1]...)
	out = append(out, inserted)
	out = append(out, lines[anchorAt+1:]...)

	if err := writeAtomic(path, []byte(strings.Join(out, "\n")), info.Mode().Perm()); err != nil {
		return false, err
	}
	return true, nil
}

// normalize drops a trailing // comment and collapses whitespace, so tab- and
// space-separated forms of the same entry compare equal.
func normalize(s string) string {
	if i := strings.Index(s, "//"); i >= 0 {
		s = s[:i]
	}
	return strings.Join(strings.Fields(s), " ")
}

func leadingSpace(s string) string {
	return s[:len(s)-len(strings.TrimLeft(s, " \t"))]
}

func writeAtomic(path string, data []byte, perm os.FileMode) error {
	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	cleanup := func() { os.Remove(tmp) }

	if _, err := f.Write(data); err != nil {
		f.Close()
		cleanup()
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		cleanup()
		return err
	}
	if err := f.Close(); err != nil {
		cleanup()
		return err
	}
	if err := os.Chmod(tmp, perm); err != nil {
		cleanup()
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		cleanup()
		return err
	}
	return nil
}
