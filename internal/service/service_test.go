package service

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Nomadcxx/teamsort/internal/config"
	"github.com/Nomadcxx/teamsort/internal/history"
	"github.com/Nomadcxx/teamsort/internal/paths"
	"github.com/Nomadcxx/teamsort/internal/reorganize"
	"github.com/Nomadcxx/teamsort/internal/roster"
	"github.com/gofrs/flock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	runner *Runner
	store  *history.Store
	table  string
	dir    string
}

func setup(t *testing.T, csv string, photos ...string) *fixture {
	t.Helper()
	t.Setenv("TEAMSORT_HOME", t.TempDir())

	root := t.TempDir()
	dir := filepath.Join(root, "photos")
	require.NoError(t, os.MkdirAll(dir, 0755))
	for _, p := range photos {
		require.NoError(t, os.WriteFile(filepath.Join(dir, p), []byte(p), 0644))
	}
	table := filepath.Join(root, "roster.csv")
	require.NoError(t, os.WriteFile(table, []byte(csv), 0644))

	store, err := history.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return &fixture{
		runner: NewRunner(config.DefaultConfig(), store, nil),
		store:  store,
		table:  table,
		dir:    dir,
	}
}

func TestRunner_RunRecordsHistory(t *testing.T) {
	f := setup(t, "Team,Photo\nRed,a.jpg\n", "a.jpg")

	res, err := f.runner.Run(history.TriggerCLI, reorganize.Request{Table: f.table, Dir: f.dir}, f.runner.Defaults())
	require.NoError(t, err)
	require.NotNil(t, res.Report)
	assert.Equal(t, 1, res.Report.Moved)
	require.NotEmpty(t, res.RunID)

	run, err := f.store.GetRun(res.RunID)
	require.NoError(t, err)
	assert.Equal(t, history.TriggerCLI, run.Trigger)
	assert.Equal(t, "Team", run.TeamColumn, "empty column names come from config")
	assert.Equal(t, 1, run.Moved)
	assert.FileExists(t, filepath.Join(f.dir, "Red", "a.jpg"))
}

func TestRunner_SchemaErrorIsRecorded(t *testing.T) {
	f := setup(t, "Division,Photo\nRed,a.jpg\n", "a.jpg")

	res, err := f.runner.Run(history.TriggerAPI, reorganize.Request{Table: f.table, Dir: f.dir}, f.runner.Defaults())
	require.Error(t, err)
	assert.True(t, errors.Is(err, roster.ErrSchema))
	require.NotNil(t, res)
	assert.Nil(t, res.Report)

	runs, err := f.store.RecentRuns(10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Contains(t, runs[0].Error, "Team")
}

func TestRunner_BusyWhenDirectoryLocked(t *testing.T) {
	f := setup(t, "Team,Photo\nRed,a.jpg\n", "a.jpg")

	lockPath, err := paths.LockPath(f.dir)
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Dir(lockPath), 0755))
	held := flock.New(lockPath)
	ok, err := held.TryLock()
	require.NoError(t, err)
	require.True(t, ok)

	_, err = f.runner.Run(history.TriggerWatch, reorganize.Request{Table: f.table, Dir: f.dir}, f.runner.Defaults())
	assert.True(t, errors.Is(err, ErrBusy))
	assert.FileExists(t, filepath.Join(f.dir, "a.jpg"))

	require.NoError(t, held.Unlock())
	_, err = f.runner.Run(history.TriggerWatch, reorganize.Request{Table: f.table, Dir: f.dir}, f.runner.Defaults())
	assert.NoError(t, err)
}

func TestRunner_LockIsReleased(t *testing.T) {
	f := setup(t, "Team,Photo\nRed,a.jpg\n", "a.jpg")
	req := reorganize.Request{Table: f.table, Dir: f.dir}

	_, err := f.runner.Run(history.TriggerCLI, req, f.runner.Defaults())
	require.NoError(t, err)
	_, err = f.runner.Run(history.TriggerCLI, req, f.runner.Defaults())
	require.NoError(t, err)
}

func TestRunner_OptionsApplied(t *testing.T) {
	f := setup(t, "Team,Photo\nRed/Blue,a.jpg\nGreen,b.jpg\n", "a.jpg")

	opts := f.runner.Defaults()
	opts.NamePolicy = "sanitize"
	opts.EagerDirs = true
	opts.Backend = "native"

	res, err := f.runner.Run(history.TriggerTUI, reorganize.Request{Table: f.table, Dir: f.dir}, opts)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Report.Moved)
	assert.FileExists(t, filepath.Join(f.dir, "Red_Blue", "a.jpg"))
	assert.DirExists(t, filepath.Join(f.dir, "Green"))
}

func TestRunner_DryRunFromConfig(t *testing.T) {
	f := setup(t, "Team,Photo\nRed,a.jpg\n", "a.jpg")
	f.runner.Config().Options.DryRun = true

	res, err := f.runner.Run(history.TriggerCLI, reorganize.Request{Table: f.table, Dir: f.dir}, f.runner.Defaults())
	require.NoError(t, err)
	assert.True(t, res.Report.DryRun)
	assert.FileExists(t, filepath.Join(f.dir, "a.jpg"))
}

func TestRunner_InvalidPolicy(t *testing.T) {
	f := setup(t, "Team,Photo\n")
	opts := f.runner.Defaults()
	opts.NamePolicy = "escape"

	_, err := f.runner.Run(history.TriggerCLI, reorganize.Request{Table: f.table, Dir: f.dir}, opts)
	assert.Error(t, err)
}

func TestRunner_UnknownBackend(t *testing.T) {
	f := setup(t, "Team,Photo\nRed,a.jpg\n", "a.jpg")
	opts := f.runner.Defaults()
	opts.Backend = "rsync"

	res, err := f.runner.Run(history.TriggerCLI, reorganize.Request{Table: f.table, Dir: f.dir}, opts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rsync")
	assert.Nil(t, res)
	assert.FileExists(t, filepath.Join(f.dir, "a.jpg"))
}

func TestRunner_WithoutHistory(t *testing.T) {
	f := setup(t, "Team,Photo\nRed,a.jpg\n", "a.jpg")
	runner := NewRunner(nil, nil, nil)

	res, err := runner.Run(history.TriggerCLI, reorganize.Request{Table: f.table, Dir: f.dir}, runner.Defaults())
	require.NoError(t, err)
	assert.Empty(t, res.RunID)
	assert.Nil(t, runner.History())
}
