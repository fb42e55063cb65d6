package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "Team", cfg.Columns.Team)
	assert.Equal(t, "Photo", cfg.Columns.Photo)
	assert.Equal(t, []string{"Team", "Division", "Period"}, cfg.Columns.TeamPresets)
	assert.Equal(t, []string{"Photo", "SPA"}, cfg.Columns.PhotoPresets)
	assert.Equal(t, NamePolicyReject, cfg.Options.NamePolicy)
	assert.False(t, cfg.Options.ContinueOnError)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_MissingDefaultFileUsesDefaults(t *testing.T) {
	t.Setenv("TEAMSORT_HOME", t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Columns, cfg.Columns)
}

func TestLoad_MissingExplicitFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := DefaultConfig()
	cfg.Columns.Team = "Division"
	cfg.Columns.PhotoPresets = []string{"SPA", "Image"}
	cfg.Options.ContinueOnError = true
	cfg.Options.NamePolicy = NamePolicySanitize
	cfg.Watch.Debounce = 5 * time.Second
	cfg.Permissions.FileMode = "644"
	cfg.Server.Token = "secret"
	require.NoError(t, cfg.SaveTo(path))

	loaded, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "Division", loaded.Columns.Team)
	assert.Equal(t, []string{"SPA", "Image"}, loaded.Columns.PhotoPresets)
	assert.True(t, loaded.Options.ContinueOnError)
	assert.Equal(t, NamePolicySanitize, loaded.Options.NamePolicy)
	assert.Equal(t, 5*time.Second, loaded.Watch.Debounce)
	assert.Equal(t, "644", loaded.Permissions.FileMode)
	assert.Equal(t, "secret", loaded.Server.Token)
}

func TestLoad_EnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, DefaultConfig().SaveTo(path))

	t.Setenv("TEAMSORT_COLUMNS_PHOTO", "SPA")
	t.Setenv("TEAMSORT_OPTIONS_DRY_RUN", "true")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "SPA", cfg.Columns.Photo)
	assert.True(t, cfg.Options.DryRun)
}

func TestLoad_InvalidPolicy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[options]\nname_policy = \"escape\"\n"), 0644))

	_, err := Load(path)
	assert.ErrorContains(t, err, "name_policy")
}

func TestPermissionsResolveNumeric(t *testing.T) {
	p := &PermissionsConfig{User: "0", Group: "0", FileMode: "0644", DirMode: "0755"}

	uid, err := p.ResolveUID()
	require.NoError(t, err)
	assert.Equal(t, 0, uid)

	gid, err := p.ResolveGID()
	require.NoError(t, err)
	assert.Equal(t, 0, gid)

	fm, err := p.ParseFileMode()
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0644), fm)

	dm, err := p.ParseDirMode()
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0755), dm)
}

func TestPermissionsParseShortMode(t *testing.T) {
	p := &PermissionsConfig{FileMode: "640", DirMode: "750"}

	fm, err := p.ParseFileMode()
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0640), fm)

	_, err = (&PermissionsConfig{FileMode: "9z9"}).ParseFileMode()
	assert.Error(t, err)
}

func TestGenerateAPIToken(t *testing.T) {
	a, err := GenerateAPIToken()
	require.NoError(t, err)
	b, err := GenerateAPIToken()
	require.NoError(t, err)

	assert.Len(t, a, 64)
	assert.NotEqual(t, a, b)
}
