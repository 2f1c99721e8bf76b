// Package config loads gamekeeper settings from the environment and an
// optional gamekeeper.yaml. Keys use the plain variable names the panel
// injects (METAMOD_AUTOUPDATE, UPDATE_CHECK_INTERVAL, ...); in the yaml file
// the same names are written in lower case.
package config

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	defaultConfigName = "gamekeeper"

	DefaultGameDir     = "/home/container/game/csgo"
	DefaultVersionFile = "/home/container/egg/versions.txt"
	DefaultSteamCMD    = "/home/container/steamcmd/steamcmd.sh"

	MinCheckInterval = 60 * time.Second
)

// ErrMissingCredentials is returned by RestartCredentials when the panel
// API cannot be reached with the configured values.
var ErrMissingCredentials = errors.New("missing restart credentials")

// short Pterodactyl server identifiers are the first block of the uuid.
var shortServerID = regexp.MustCompile(`^[0-9a-fA-F]{8}$`)

type Config struct {
	GameDir     string
	VersionFile string
	TempDir     string

	MetamodAutoUpdate bool
	CSSAutoUpdate     bool
	MetamodIndexURL   string
	CSSRepo           string
	GitHubAPIURL      string

	AutoRestart   bool
	CheckInterval time.Duration
	CountdownTime time.Duration
	// CountdownCommands maps seconds-before-restart to a console command.
	CountdownCommands map[int]string

	PanelURL    string
	PanelToken  string
	ServerID    string
	SteamAPIKey string
	SteamAppID  int

	WebhookURL    string
	WebhookFormat string
	// WebhookTemplate is a text/template producing the JSON body for the
	// custom webhook format.
	WebhookTemplate string
	NotifyHook      string

	LogLevel string
	LogFile  string

	CleanupSchedule string
	CleanupCommand  string

	// ConsoleFilter holds regular expressions for server console lines to
	// hide.
	ConsoleFilter []string

	SteamCMD SteamCMD

	// Warnings collects values that were adjusted while loading. They are
	// logged once logging is configured.
	Warnings []string
}

// SteamCMD holds the settings for the game install step that runs before
// the server starts.
type SteamCMD struct {
	Path       string
	AppID      int
	User       string
	Pass       string
	Auth       string
	Validate   bool
	Beta       string
	BetaPass   string
	InstallDir string
}

// New returns a viper instance with gamekeeper's defaults, env binding and
// config search paths. The config file is read but optional.
func New() (*viper.Viper, error) {
	v := viper.New()
	v.SetConfigName(defaultConfigName)
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/home/container")
	v.AutomaticEnv()

	v.SetDefault("game_dir", DefaultGameDir)
	v.SetDefault("version_file", DefaultVersionFile)
	v.SetDefault("temp_dir", "")

	v.SetDefault("metamod_autoupdate", false)
	v.SetDefault("css_autoupdate", false)
	v.SetDefault("metamod_index_url", "https://mms.alliedmods.net/mmsdrop/2.0/")
	v.SetDefault("css_repo", "roflmuffin/CounterStrikeSharp")
	v.SetDefault("github_api_url", "https://api.github.com")

	v.SetDefault("update_auto_restart", false)
	v.SetDefault("update_check_interval", 300)
	v.SetDefault("update_countdown_time", 300)
	v.SetDefault("update_commands", "")

	v.SetDefault("pterodactyl_url", "")
	v.SetDefault("pterodactyl_api_token", "")
	v.SetDefault("p_server_uuid", "")
	v.SetDefault("steam_api_key", "")
	v.SetDefault("steam_news_appid", 730)

	v.SetDefault("discord_webhook_url", "")
	v.SetDefault("webhook_format", "discord")
	v.SetDefault("webhook_template", "")
	v.SetDefault("notify_hook", "")

	v.SetDefault("log_level", "info")
	v.SetDefault("log_file", "console")

	v.SetDefault("cleanup_schedule", "")
	v.SetDefault("cleanup_command", "")
	v.SetDefault("console_filter", "")

	v.SetDefault("steamcmd_path", DefaultSteamCMD)
	v.SetDefault("srcds_appid", 730)
	v.SetDefault("steam_user", "anonymous")
	v.SetDefault("steam_pass", "")
	v.SetDefault("steam_auth", "")
	v.SetDefault("srcds_validate", false)
	v.SetDefault("srcds_beta", "")
	v.SetDefault("srcds_beta_pass", "")
	v.SetDefault("install_dir", "/home/container")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}
	return v, nil
}

// Load reads the environment and optional config file.
func Load() (Config, error) {
	v, err := New()
	if err != nil {
		return Config{}, err
	}
	return FromViper(v)
}

// FromViper builds and validates a Config from an already configured viper.
func FromViper(v *viper.Viper) (Config, error) {
	cfg := Config{
		GameDir:     strings.TrimSpace(v.GetString("game_dir")),
		VersionFile: strings.TrimSpace(v.GetString("version_file")),
		TempDir:     strings.TrimSpace(v.GetString("temp_dir")),

		MetamodAutoUpdate: v.GetBool("metamod_autoupdate"),
		CSSAutoUpdate:     v.GetBool("css_autoupdate"),
		MetamodIndexURL:   strings.TrimSpace(v.GetString("metamod_index_url")),
		CSSRepo:           strings.TrimSpace(v.GetString("css_repo")),
		GitHubAPIURL:      strings.TrimRight(strings.TrimSpace(v.GetString("github_api_url")), "/"),

		AutoRestart:   v.GetBool("update_auto_restart"),
		CheckInterval: time.Duration(v.GetInt("update_check_interval")) * time.Second,
		CountdownTime: time.Duration(v.GetInt("update_countdown_time")) * time.Second,

		PanelURL:    strings.TrimRight(strings.TrimSpace(v.GetString("pterodactyl_url")), "/"),
		PanelToken:  strings.TrimSpace(v.GetString("pterodactyl_api_token")),
		ServerID:    strings.TrimSpace(v.GetString("p_server_uuid")),
		SteamAPIKey: strings.TrimSpace(v.GetString("steam_api_key")),
		SteamAppID:  v.GetInt("steam_news_appid"),

		WebhookURL:      strings.TrimSpace(v.GetString("discord_webhook_url")),
		WebhookFormat:   strings.TrimSpace(v.GetString("webhook_format")),
		WebhookTemplate: v.GetString("webhook_template"),
		NotifyHook:      strings.TrimSpace(v.GetString("notify_hook")),

		LogLevel: strings.TrimSpace(v.GetString("log_level")),
		LogFile:  strings.TrimSpace(v.GetString("log_file")),

		CleanupSchedule: strings.TrimSpace(v.GetString("cleanup_schedule")),
		CleanupCommand:  strings.TrimSpace(v.GetString("cleanup_command")),

		SteamCMD: SteamCMD{
			Path:       strings.TrimSpace(v.GetString("steamcmd_path")),
			AppID:      v.GetInt("srcds_appid"),
			User:       strings.TrimSpace(v.GetString("steam_user")),
			Pass:       v.GetString("steam_pass"),
			Auth:       strings.TrimSpace(v.GetString("steam_auth")),
			Validate:   v.GetBool("srcds_validate"),
			Beta:       strings.TrimSpace(v.GetString("srcds_beta")),
			BetaPass:   v.GetString("srcds_beta_pass"),
			InstallDir: strings.TrimSpace(v.GetString("install_dir")),
		},
	}

	commands, err := decodeCommands(v.Get("update_commands"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid UPDATE_COMMANDS: %w", err)
	}
	cfg.CountdownCommands = commands
	cfg.ConsoleFilter = splitLines(v.Get("console_filter"))

	if cfg.CheckInterval < MinCheckInterval {
		cfg.Warnings = append(cfg.Warnings, fmt.Sprintf("UPDATE_CHECK_INTERVAL %v is below the minimum, using %v", cfg.CheckInterval, MinCheckInterval))
		cfg.CheckInterval = MinCheckInterval
	}
	if cfg.CountdownTime < 0 {
		cfg.Warnings = append(cfg.Warnings, fmt.Sprintf("UPDATE_COUNTDOWN_TIME %v is negative, restarting immediately", cfg.CountdownTime))
		cfg.CountdownTime = 0
	}
	for before := range cfg.CountdownCommands {
		if time.Duration(before)*time.Second > cfg.CountdownTime {
			cfg.Warnings = append(cfg.Warnings, fmt.Sprintf("UPDATE_COMMANDS entry at %ds exceeds the %v countdown and will be skipped", before, cfg.CountdownTime))
		}
	}
	sort.Strings(cfg.Warnings)

	if cfg.GameDir == "" {
		return Config{}, fmt.Errorf("GAME_DIR must not be empty")
	}
	if cfg.VersionFile == "" {
		return Config{}, fmt.Errorf("VERSION_FILE must not be empty")
	}
	switch cfg.WebhookFormat {
	case "", "discord", "slack":
	case "custom":
		if strings.TrimSpace(cfg.WebhookTemplate) == "" {
			return Config{}, fmt.Errorf("WEBHOOK_FORMAT custom requires WEBHOOK_TEMPLATE")
		}
	default:
		return Config{}, fmt.Errorf("invalid WEBHOOK_FORMAT %q", cfg.WebhookFormat)
	}
	if cfg.ServerID != "" && !validServerID(cfg.ServerID) {
		return Config{}, fmt.Errorf("invalid P_SERVER_UUID %q", cfg.ServerID)
	}
	return cfg, nil
}

// RestartCredentials reports which values the restart feature needs but
// does not have. The returned error wraps ErrMissingCredentials.
func (c Config) RestartCredentials() error {
	var missing []string
	if c.PanelURL == "" {
		missing = append(missing, "PTERODACTYL_URL")
	}
	if c.PanelToken == "" {
		missing = append(missing, "PTERODACTYL_API_TOKEN")
	}
	if c.ServerID == "" {
		missing = append(missing, "P_SERVER_UUID")
	}
	if c.SteamAPIKey == "" {
		missing = append(missing, "STEAM_API_KEY")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingCredentials, strings.Join(missing, ", "))
	}
	return nil
}

func validServerID(id string) bool {
	if shortServerID.MatchString(id) {
		return true
	}
	_, err := uuid.Parse(id)
	return err == nil
}

// decodeCommands accepts the schedule either as a yaml/json string (the env
// form) or as a map read from the config file.
func decodeCommands(raw any) (map[int]string, error) {
	out := map[int]string{}
	switch val := raw.(type) {
	case nil:
		return out, nil
	case string:
		if strings.TrimSpace(val) == "" {
			return out, nil
		}
		var parsed map[string]string
		if err := yaml.Unmarshal([]byte(val), &parsed); err != nil {
			return nil, err
		}
		for k, cmd := range parsed {
			if err := addCommand(out, k, cmd); err != nil {
				return nil, err
			}
		}
	case map[string]any:
		for k, cmd := range val {
			if err := addCommand(out, k, fmt.Sprint(cmd)); err != nil {
				return nil, err
			}
		}
	default:
		return nil, fmt.Errorf("unsupported type %T", raw)
	}
	return out, nil
}

// splitLines accepts a newline separated string or a yaml list.
func splitLines(raw any) []string {
	var items []string
	switch val := raw.(type) {
	case string:
		items = strings.Split(val, "\n")
	case []any:
		for _, item := range val {
			items = append(items, fmt.Sprint(item))
		}
	}
	out := items[:0]
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func addCommand(out map[int]string, key, cmd string) error {
	before, err := strconv.Atoi(strings.TrimSpace(key))
	if err != nil {
		return fmt.Errorf("offset %q is not a number of seconds", key)
	}
	if before < 0 {
		return fmt.Errorf("offset %d is negative", before)
	}
	cmd = strings.TrimSpace(cmd)
	if cmd == "" {
		return fmt.Errorf("empty command at offset %d", before)
	}
	out[before] = cmd
	return nil
}
