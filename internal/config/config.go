package config

import (
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/Nomadcxx/teamsort/internal/paths"
	"github.com/spf13/viper"
)

// Name policies for team and photo values that are not a single path segment.
const (
	NamePolicyReject   = "reject"
	NamePolicySanitize = "sanitize"
)

type Config struct {
	Columns     ColumnsConfig     `mapstructure:"columns"`
	Options     OptionsConfig     `mapstructure:"options"`
	Permissions PermissionsConfig `mapstructure:"permissions"`
	History     HistoryConfig     `mapstructure:"history"`
	Server      ServerConfig      `mapstructure:"server"`
	Watch       WatchConfig       `mapstructure:"watch"`
	Logging     LoggingConfig     `mapstructure:"logging"`
}

// ColumnsConfig holds the default column names and the presets offered by
// the interactive form. Any column name is accepted at run time.
type ColumnsConfig struct {
	Team         string   `mapstructure:"team"`
	Photo        string   `mapstructure:"photo"`
	TeamPresets  []string `mapstructure:"team_presets"`
	PhotoPresets []string `mapstructure:"photo_presets"`
}

type OptionsConfig struct {
	DryRun          bool `mapstructure:"dry_run"`
	ContinueOnError bool `mapstructure:"continue_on_error"`
	// CreateEmptyTeamDirs creates a team folder for every row, even when
	// its photo is not in the directory.
	CreateEmptyTeamDirs bool   `mapstructure:"create_empty_team_dirs"`
	NamePolicy          string `mapstructure:"name_policy"`
	Backend             string `mapstructure:"backend"`
}

type PermissionsConfig struct {
	// User can be a username (e.g., "photos") or numeric UID (e.g., "1000").
	User string `mapstructure:"user"`
	// Group can be a group name or numeric GID.
	Group string `mapstructure:"group"`
	// Modes are octal strings (e.g., "0644" or "644"). Empty leaves the OS default.
	FileMode string `mapstructure:"file_mode"`
	DirMode  string `mapstructure:"dir_mode"`
}

type HistoryConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

type ServerConfig struct {
	Addr  string `mapstructure:"addr"`
	Token string `mapstructure:"token"`
	// CORSOrigins lists browser origins allowed to call the API. Empty
	// disables CORS headers.
	CORSOrigins []string `mapstructure:"cors_origins"`
}

type WatchConfig struct {
	Debounce time.Duration `mapstructure:"debounce"`
}

type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
}

func (p *PermissionsConfig) WantsOwnership() bool {
	return strings.TrimSpace(p.User) != "" || strings.TrimSpace(p.Group) != ""
}

func (p *PermissionsConfig) WantsMode() bool {
	return strings.TrimSpace(p.FileMode) != "" || strings.TrimSpace(p.DirMode) != ""
}

func (p *PermissionsConfig) ResolveUID() (int, error) {
	if p.User == "" {
		return -1, nil
	}
	if uid, err := strconv.Atoi(p.User); err == nil {
		return uid, nil
	}
	usr, err := user.Lookup(p.User)
	if err != nil {
		return -1, err
	}
	return strconv.Atoi(usr.Uid)
}

func (p *PermissionsConfig) ResolveGID() (int, error) {
	if p.Group == "" {
		return -1, nil
	}
	if gid, err := strconv.Atoi(p.Group); err == nil {
		return gid, nil
	}
	grp, err := user.LookupGroup(p.Group)
	if err != nil {
		return -1, err
	}
	return strconv.Atoi(grp.Gid)
}

func (p *PermissionsConfig) ParseFileMode() (os.FileMode, error) {
	return parseMode(p.FileMode)
}

func (p *PermissionsConfig) ParseDirMode() (os.FileMode, error) {
	return parseMode(p.DirMode)
}

func parseMode(s string) (os.FileMode, error) {
	m := strings.TrimSpace(s)
	if m == "" {
		return 0, nil
	}
	if len(m) == 3 { // allow "644"
		m = "0" + m
	}
	v, err := strconv.ParseUint(m, 8, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid mode %q: %w", s, err)
	}
	return os.FileMode(v), nil
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		Columns: ColumnsConfig{
			Team:         "Team",
			Photo:        "Photo",
			TeamPresets:  []string{"Team", "Division", "Period"},
			PhotoPresets: []string{"Photo", "SPA"},
		},
		Options: OptionsConfig{
			DryRun:          false,
			ContinueOnError: false,
			NamePolicy:      NamePolicyReject,
			Backend:         "auto",
		},
		History: HistoryConfig{
			Enabled: true,
			Path:    "",
		},
		Server: ServerConfig{
			Addr: "127.0.0.1:8787",
		},
		Watch: WatchConfig{
			Debounce: 2 * time.Second,
		},
		Logging: LoggingConfig{
			Level:      "info",
			File:       "",
			MaxSizeMB:  10,
			MaxBackups: 5,
		},
	}
}

// Validate checks enumerated values and octal modes.
func (c *Config) Validate() error {
	switch c.Options.NamePolicy {
	case NamePolicyReject, NamePolicySanitize:
	default:
		return fmt.Errorf("options.name_policy must be %q or %q, got %q",
			NamePolicyReject, NamePolicySanitize, c.Options.NamePolicy)
	}
	switch c.Options.Backend {
	case "auto", "rename", "native":
	default:
		return fmt.Errorf("options.backend must be auto, rename or native, got %q", c.Options.Backend)
	}
	if _, err := c.Permissions.ParseFileMode(); err != nil {
		return fmt.Errorf("permissions.file_mode: %w", err)
	}
	if _, err := c.Permissions.ParseDirMode(); err != nil {
		return fmt.Errorf("permissions.dir_mode: %w", err)
	}
	if c.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative")
	}
	return nil
}

// Load reads the config file at path (or the default location when path is
// empty) on top of DefaultConfig. A missing default file is not an error; a
// missing explicit path is. TEAMSORT_<SECTION>_<KEY> environment variables
// override file values.
func Load(path string) (*Config, error) {
	v := viper.New()
	cfg := DefaultConfig()
	setDefaults(v, cfg)

	v.SetEnvPrefix("TEAMSORT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	explicit := path != ""
	if !explicit {
		p, err := paths.ConfigPath()
		if err != nil {
			return nil, fmt.Errorf("unable to get config path: %w", err)
		}
		path = p
	}
	v.SetConfigFile(path)
	v.SetConfigType("toml")

	if _, err := os.Stat(path); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("unable to read config file: %w", err)
		}
	} else if explicit {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unable to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// setDefaults registers every key so AutomaticEnv can override keys that the
// config file does not mention.
func setDefaults(v *viper.Viper, c *Config) {
	v.SetDefault("columns.team", c.Columns.Team)
	v.SetDefault("columns.photo", c.Columns.Photo)
	v.SetDefault("columns.team_presets", c.Columns.TeamPresets)
	v.SetDefault("columns.photo_presets", c.Columns.PhotoPresets)
	v.SetDefault("options.dry_run", c.Options.DryRun)
	v.SetDefault("options.continue_on_error", c.Options.ContinueOnError)
	v.SetDefault("options.create_empty_team_dirs", c.Options.CreateEmptyTeamDirs)
	v.SetDefault("options.name_policy", c.Options.NamePolicy)
	v.SetDefault("options.backend", c.Options.Backend)
	v.SetDefault("permissions.user", c.Permissions.User)
	v.SetDefault("permissions.group", c.Permissions.Group)
	v.SetDefault("permissions.file_mode", c.Permissions.FileMode)
	v.SetDefault("permissions.dir_mode", c.Permissions.DirMode)
	v.SetDefault("history.enabled", c.History.Enabled)
	v.SetDefault("history.path", c.History.Path)
	v.SetDefault("server.addr", c.Server.Addr)
	v.SetDefault("server.token", c.Server.Token)
	v.SetDefault("server.cors_origins", c.Server.CORSOrigins)
	v.SetDefault("watch.debounce", c.Watch.Debounce)
	v.SetDefault("logging.level", c.Logging.Level)
	v.SetDefault("logging.file", c.Logging.File)
	v.SetDefault("logging.max_size_mb", c.Logging.MaxSizeMB)
	v.SetDefault("logging.max_backups", c.Logging.MaxBackups)
}

// SaveTo writes the configuration as commented TOML to path.
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("unable to create config dir: %w", err)
	}
	return os.WriteFile(path, []byte(c.ToTOML()), 0600)
}

// Save writes the configuration to the default location.
func (c *Config) Save() error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

func ConfigPath() (string, error) {
	return paths.ConfigPath()
}

func ConfigExists() bool {
	path, err := ConfigPath()
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

// HistoryPath returns the configured history database path or the default.
func (c *Config) HistoryPath() (string, error) {
	if c.History.Path != "" {
		return c.History.Path, nil
	}
	return paths.HistoryPath()
}

func (c *Config) ToTOML() string {
	base := fmt.Sprintf(`# teamsort configuration
# Generated by: teamsort config init

# ============================================================================
# COLUMNS
# Default roster columns. team_presets and photo_presets are offered by
# 'teamsort tui'; any column name can still be typed in.
# ============================================================================
[columns]
team = %q
photo = %q
team_presets = %s
photo_presets = %s

# ============================================================================
# OPTIONS
# ============================================================================
[options]
# Preview mode - report what would move without touching files
dry_run = %v

# Keep going after a failed row and report every failure at the end
# (default stops at the first failure; earlier moves are kept)
continue_on_error = %v

# Create a team folder for every roster row, even when the photo is absent
create_empty_team_dirs = %v

# Team or photo values that are not a single path segment:
#   "reject"   - fail the row
#   "sanitize" - replace separators with '_'
name_policy = %q

# Move backend: auto (rename, copy across devices), rename, native
backend = %q

# ============================================================================
# HISTORY
# Every run is recorded in a local SQLite database ('teamsort history')
# ============================================================================
[history]
enabled = %v
path = %q

# ============================================================================
# SERVER ('teamsort serve')
# ============================================================================
[server]
addr = %q
# Bearer token required by the API. Empty disables authentication.
token = %q
# Browser origins allowed to call the API, e.g. ["http://localhost:3000"]
cors_origins = %s

# ============================================================================
# WATCH ('teamsort watch')
# ============================================================================
[watch]
# Quiet period after the last filesystem event before re-running
debounce = %q

# ============================================================================
# LOGGING
# ============================================================================
[logging]
level = %q
file = %q
max_size_mb = %d
max_backups = %d
`,
		c.Columns.Team,
		c.Columns.Photo,
		formatStringSlice(c.Columns.TeamPresets),
		formatStringSlice(c.Columns.PhotoPresets),
		c.Options.DryRun,
		c.Options.ContinueOnError,
		c.Options.CreateEmptyTeamDirs,
		c.Options.NamePolicy,
		c.Options.Backend,
		c.History.Enabled,
		c.History.Path,
		c.Server.Addr,
		c.Server.Token,
		formatStringSlice(c.Server.CORSOrigins),
		c.Watch.Debounce.String(),
		c.Logging.Level,
		c.Logging.File,
		c.Logging.MaxSizeMB,
		c.Logging.MaxBackups,
	)

	if c.Permissions.WantsOwnership() || c.Permissions.WantsMode() {
		perm := "\n# ============================================================================\n# PERMISSIONS\n# Ownership and modes applied to moved photos and created team folders\n# ============================================================================\n[permissions]\n"
		if c.Permissions.User != "" {
			perm += fmt.Sprintf("user = %q\n", c.Permissions.User)
		}
		if c.Permissions.Group != "" {
			perm += fmt.Sprintf("group = %q\n", c.Permissions.Group)
		}
		if c.Permissions.FileMode != "" {
			perm += fmt.Sprintf("file_mode = %q\n", c.Permissions.FileMode)
		}
		if c.Permissions.DirMode != "" {
			perm += fmt.Sprintf("dir_mode = %q\n", c.Permissions.DirMode)
		}
		base += perm
	}

	return base
}

func formatStringSlice(s []string) string {
	if len(s) == 0 {
		return "[]"
	}
	quoted := make([]string, len(s))
	for i, v := range s {
		quoted[i] = fmt.Sprintf("%q", v)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}
