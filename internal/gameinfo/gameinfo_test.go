package gameinfo

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `"GameInfo"
{
	FileSystem
	{
		SearchPaths
		{
			Game_LowViolence	csgo_lv // Perfect World content override
			Game	csgo
			Game	csgo_imported
		}
	}
}
`

func writeSample(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0640))
	return path
}

func TestPatchMetamod_InsertsAfterAnchor(t *testing.T) {
	path := writeSample(t, sample)

	changed, err := PatchMetamod(filepath.Dir(path))
	require.NoError(t, err)
	assert.True(t, changed)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "\t\t\tGame_LowViolence\tcsgo_lv // Perfect World content override\n\t\t\tGame\tcsgo/addons/metamod\n\t\t\tGame\tcsgo\n")

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0640), info.Mode().Perm())
}

func TestEnsureLine_Idempotent(t *testing.T) {
	path := writeSample(t, sample)

	_, err := EnsureLine(path, MetamodAnchor, MetamodLine)
	require.NoError(t, err)
	once, err := os.ReadFile(path)
	require.NoError(t, err)

	changed, err := EnsureLine(path, MetamodAnchor, MetamodLine)
	require.NoError(t, err)
	assert.False(t, changed)
	twice, err := os.ReadFile(path)
	require.NoError(t, err)

	assert.Equal(t, string(once), string(twice))
	assert.Equal(t, 1, strings.Count(string(twice), "csgo/addons/metamod"))
}

func TestEnsureLine_AlreadyPresentWithSpaces(t *testing.T) {
	content := "SearchPaths\n{\n  Game  csgo/addons/metamod\n  Game_LowViolence csgo_lv\n}\n"
	path := writeSample(t, content)

	changed, err := EnsureLine(path, MetamodAnchor, MetamodLine)
	require.NoError(t, err)
	assert.False(t, changed)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, content, string(data))
}

func TestEnsureLine_MissingAnchor(t *testing.T) {
	path := writeSample(t, "SearchPaths\n{\n}\n")

	_, err := EnsureLine(path, MetamodAnchor, MetamodLine)
	require.ErrorIs(t, err, ErrAnchorNotFound)
}

func TestEnsureLine_CRLF(t *testing.T) {
	path := writeSample(t, "{\r\n\tGame_LowViolence\tcsgo_lv\r\n\tGame\tcsgo\r\n}\r\n")

	changed, err := EnsureLine(path, MetamodAnchor, MetamodLine)
	require.NoError(t, err)
	assert.True(t, changed)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{\r\n\tGame_LowViolence\tcsgo_lv\r\n\tGame\tcsgo/addons/metamod\r\n\tGame\tcsgo\r\n}\r\n", string(data))
}

func TestEnsureLine_NoTempLeftovers(t *testing.T) {
	path := writeSample(t, "\tGame_LowViolence\tcsgo_lv\n")

	_, err := EnsureLine(path, MetamodAnchor, MetamodLine)
	require.NoError(t, err)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
