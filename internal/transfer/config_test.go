package transfer

import (
	"os"
	"os/user"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nomadcxx/teamsort/internal/config"
)

func TestOptionsFromConfig_Defaults(t *testing.T) {
	opts, err := OptionsFromConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultOptions(), opts)

	opts, err = OptionsFromConfig(&config.Config{})
	require.NoError(t, err)
	assert.Equal(t, DefaultOptions(), opts)
}

func TestOptionsFromConfig_NumericOwner(t *testing.T) {
	cfg := &config.Config{
		Permissions: config.PermissionsConfig{User: "1000", Group: "1001"},
	}

	opts, err := OptionsFromConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, 1000, opts.TargetUID)
	assert.Equal(t, 1001, opts.TargetGID)
}

func TestOptionsFromConfig_NamedUser(t *testing.T) {
	current, err := user.Current()
	if err != nil {
		t.Skip("cannot resolve current user")
	}
	want, _ := strconv.Atoi(current.Uid)

	opts, err := OptionsFromConfig(&config.Config{
		Permissions: config.PermissionsConfig{User: current.Username},
	})
	require.NoError(t, err)
	assert.Equal(t, want, opts.TargetUID)
	assert.Equal(t, -1, opts.TargetGID)
}

func TestOptionsFromConfig_Modes(t *testing.T) {
	opts, err := OptionsFromConfig(&config.Config{
		Permissions: config.PermissionsConfig{FileMode: "0640", DirMode: "750"},
	})
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0640), opts.FileMode)
	assert.Equal(t, os.FileMode(0750), opts.DirMode)
}

func TestOptionsFromConfig_BadValuesReported(t *testing.T) {
	opts, err := OptionsFromConfig(&config.Config{
		Permissions: config.PermissionsConfig{
			User:     "no-such-user-teamsort",
			FileMode: "rwx",
			DirMode:  "0700",
		},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "permissions.user")
	assert.Contains(t, err.Error(), "permissions.file_mode")

	// the valid setting still applies
	assert.Equal(t, -1, opts.TargetUID)
	assert.Equal(t, os.FileMode(0), opts.FileMode)
	assert.Equal(t, os.FileMode(0700), opts.DirMode)
}
