package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate runs the test from an empty directory so no stray config file is
// picked up.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultGameDir, cfg.GameDir)
	assert.Equal(t, DefaultVersionFile, cfg.VersionFile)
	assert.False(t, cfg.MetamodAutoUpdate)
	assert.False(t, cfg.CSSAutoUpdate)
	assert.False(t, cfg.AutoRestart)
	assert.Equal(t, 300*time.Second, cfg.CheckInterval)
	assert.Equal(t, 300*time.Second, cfg.CountdownTime)
	assert.Empty(t, cfg.CountdownCommands)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 730, cfg.SteamCMD.AppID)
	assert.Empty(t, cfg.Warnings)
}

func TestLoad_Env(t *testing.T) {
	isolate(t)
	t.Setenv("METAMOD_AUTOUPDATE", "1")
	t.Setenv("CSS_AUTOUPDATE", "true")
	t.Setenv("UPDATE_AUTO_RESTART", "1")
	t.Setenv("UPDATE_CHECK_INTERVAL", "120")
	t.Setenv("UPDATE_COUNTDOWN_TIME", "60")
	t.Setenv("UPDATE_COMMANDS", `{"60": "say restarting in 60s", "10": "say 10s"}`)
	t.Setenv("PTERODACTYL_URL", "https://panel.example.com/")
	t.Setenv("GAME_DIR", "/srv/cs2/game/csgo")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.MetamodAutoUpdate)
	assert.True(t, cfg.CSSAutoUpdate)
	assert.True(t, cfg.AutoRestart)
	assert.Equal(t, 120*time.Second, cfg.CheckInterval)
	assert.Equal(t, 60*time.Second, cfg.CountdownTime)
	assert.Equal(t, map[int]string{60: "say restarting in 60s", 10: "say 10s"}, cfg.CountdownCommands)
	assert.Equal(t, "https://panel.example.com", cfg.PanelURL)
	assert.Equal(t, "/srv/cs2/game/csgo", cfg.GameDir)
}

func TestLoad_IntervalFloor(t *testing.T) {
	isolate(t)
	t.Setenv("UPDATE_CHECK_INTERVAL", "5")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, MinCheckInterval, cfg.CheckInterval)
	require.Len(t, cfg.Warnings, 1)
	assert.Contains(t, cfg.Warnings[0], "UPDATE_CHECK_INTERVAL")
}

func TestLoad_CommandBeyondCountdownWarns(t *testing.T) {
	isolate(t)
	t.Setenv("UPDATE_COUNTDOWN_TIME", "60")
	t.Setenv("UPDATE_COMMANDS", "300: say warn1\n30: say warn2\n")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Len(t, cfg.CountdownCommands, 2)
	require.Len(t, cfg.Warnings, 1)
	assert.Contains(t, cfg.Warnings[0], "300s")
}

func TestLoad_InvalidCommands(t *testing.T) {
	tests := map[string]string{
		"not a map":   "[1, 2]",
		"bad offset":  `{"soon": "say hi"}`,
		"negative":    `{"-5": "say hi"}`,
		"empty value": `{"30": ""}`,
	}
	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			isolate(t)
			t.Setenv("UPDATE_COMMANDS", raw)
			_, err := Load()
			require.Error(t, err)
		})
	}
}

func TestLoad_ServerID(t *testing.T) {
	tests := []struct {
		id    string
		valid bool
	}{
		{"1a7ce997", true},
		{"1a7ce997-259b-452e-8b4e-cecc464142ca", true},
		{"not-a-server", false},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			isolate(t)
			t.Setenv("P_SERVER_UUID", tt.id)
			_, err := Load()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestLoad_WebhookFormat(t *testing.T) {
	isolate(t)
	t.Setenv("WEBHOOK_FORMAT", "teams")
	_, err := Load()
	require.Error(t, err)

	t.Setenv("WEBHOOK_FORMAT", "custom")
	_, err = Load()
	require.ErrorContains(t, err, "WEBHOOK_TEMPLATE")

	t.Setenv("WEBHOOK_TEMPLATE", `{"content": "{{.Text}}"}`)
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "custom", cfg.WebhookFormat)
	assert.Equal(t, `{"content": "{{.Text}}"}`, cfg.WebhookTemplate)
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := isolate(t)
	content := `update_auto_restart: true
update_countdown_time: 120
update_commands:
  120: "say two minutes"
  30: "say thirty seconds"
css_autoupdate: true
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "gamekeeper.yaml"), []byte(content), 0o644))

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.AutoRestart)
	assert.True(t, cfg.CSSAutoUpdate)
	assert.Equal(t, 120*time.Second, cfg.CountdownTime)
	assert.Equal(t, map[int]string{120: "say two minutes", 30: "say thirty seconds"}, cfg.CountdownCommands)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "gamekeeper.yaml"), []byte("update_check_interval: 600\n"), 0o644))
	t.Setenv("UPDATE_CHECK_INTERVAL", "90")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, cfg.CheckInterval)
}

func TestRestartCredentials(t *testing.T) {
	cfg := Config{PanelURL: "https://panel", ServerID: "1a7ce997"}
	err := cfg.RestartCredentials()
	require.True(t, errors.Is(err, ErrMissingCredentials))
	assert.Contains(t, err.Error(), "PTERODACTYL_API_TOKEN")
	assert.Contains(t, err.Error(), "STEAM_API_KEY")
	assert.NotContains(t, err.Error(), "PTERODACTYL_URL")

	cfg.PanelToken = "ptlc_x"
	cfg.SteamAPIKey = "key"
	assert.NoError(t, cfg.RestartCredentials())
}

func TestLive_Reload(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "gamekeeper.yaml")
	require.NoError(t, os.WriteFile(path, []byte("update_auto_restart: true\n"), 0o644))

	v, err := New()
	require.NoError(t, err)
	live, err := NewLive(v)
	require.NoError(t, err)
	assert.True(t, live.AutoRestart())

	require.NoError(t, os.WriteFile(path, []byte("update_auto_restart: false\n"), 0o644))
	require.NoError(t, v.ReadInConfig())
	live.reload(path)
	assert.False(t, live.AutoRestart())

	require.NoError(t, os.WriteFile(path, []byte("update_commands: \"[oops\"\nupdate_auto_restart: true\n"), 0o644))
	require.NoError(t, v.ReadInConfig())
	live.reload(path)
	assert.False(t, live.AutoRestart(), "invalid edit keeps previous settings")
}
