package ledger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_MissingFile(t *testing.T) {
	l := New(filepath.Join(t.TempDir(), "versions.txt"))

	v, err := l.Get("Metamod")
	require.NoError(t, err)
	assert.Empty(t, v)
}

func TestSetThenGet(t *testing.T) {
	l := New(filepath.Join(t.TempDir(), "egg", "versions.txt"))

	names := []string{"Metamod", "CounterStrikeSharp", "Other"}
	for i, name := range names {
		require.NoError(t, l.Set(name, "v"+strings.Repeat("1", i+1)))
	}
	for i, name := range names {
		got, err := l.Get(name)
		require.NoError(t, err)
		assert.Equal(t, "v"+strings.Repeat("1", i+1), got)
	}

	missing, err := l.Get("Absent")
	require.NoError(t, err)
	assert.Empty(t, missing)
}

func TestSet_ReplacesInPlace(t *testing.T) {
	path := filepath.Join(t.TempDir(), "versions.txt")
	require.NoError(t, os.WriteFile(path, []byte("A=1\nMetamod=git1000\nB=2\n"), 0644))
	l := New(path)

	require.NoError(t, l.Set("Metamod", "git1145"))
	require.NoError(t, l.Set("Metamod", "git1145"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "A=1\nMetamod=git1145\nB=2\n", string(data))
}

func TestSet_CollapsesDuplicates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "versions.txt")
	require.NoError(t, os.WriteFile(path, []byte("Metamod=a\nMetamod=b\n"), 0644))
	l := New(path)

	require.NoError(t, l.Set("Metamod", "c"))

	entries, err := l.All()
	require.NoError(t, err)
	assert.Equal(t, []Entry{{Name: "Metamod", Version: "c"}}, entries)
}

func TestSet_RejectsSeparator(t *testing.T) {
	l := New(filepath.Join(t.TempDir(), "versions.txt"))

	tests := []struct {
		name, value string
	}{
		{"", "1"},
		{"a=b", "1"},
		{"a", "1=2"},
		{"a", "1\n2"},
	}
	for _, tt := range tests {
		assert.Error(t, l.Set(tt.name, tt.value), "Set(%q, %q)", tt.name, tt.value)
	}
}

func TestAll_SkipsMalformedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "versions.txt")
	require.NoError(t, os.WriteFile(path, []byte("garbage\n\n=x\nCSS=v300\r\n"), 0644))

	entries, err := New(path).All()
	require.NoError(t, err)
	assert.Equal(t, []Entry{{Name: "CSS", Version: "v300"}}, entries)
}
