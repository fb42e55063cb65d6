package paths

import (
	"os"
	"os/user"
	"path/filepath"
	"strings"
	"testing"
)

func TestUserHomeDir_NoSudo(t *testing.T) {
	t.Setenv("SUDO_USER", "")

	got, err := UserHomeDir()
	if err != nil {
		t.Fatalf("UserHomeDir() error = %v", err)
	}

	expected, _ := os.UserHomeDir()
	if got != expected {
		t.Errorf("UserHomeDir() = %q, want %q", got, expected)
	}
}

func TestUserHomeDir_WithSudoUser(t *testing.T) {
	currentUser, err := user.Current()
	if err != nil {
		t.Skip("Cannot get current user")
	}
	t.Setenv("SUDO_USER", currentUser.Username)

	got, err := UserHomeDir()
	if err != nil {
		t.Fatalf("UserHomeDir() error = %v", err)
	}
	if got != currentUser.HomeDir {
		t.Errorf("UserHomeDir() = %q, want %q", got, currentUser.HomeDir)
	}
}

func TestUserHomeDir_SudoUserRoot(t *testing.T) {
	t.Setenv("SUDO_USER", "root")

	got, err := UserHomeDir()
	if err != nil {
		t.Fatalf("UserHomeDir() error = %v", err)
	}
	expected, _ := os.UserHomeDir()
	if got != expected {
		t.Errorf("UserHomeDir() = %q, want %q", got, expected)
	}
}

func TestStateDir_Override(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("TEAMSORT_HOME", dir)

	got, err := StateDir()
	if err != nil {
		t.Fatalf("StateDir() error = %v", err)
	}
	if got != dir {
		t.Errorf("StateDir() = %q, want %q", got, dir)
	}

	cfg, _ := ConfigPath()
	if cfg != filepath.Join(dir, "config.toml") {
		t.Errorf("ConfigPath() = %q", cfg)
	}
	hist, _ := HistoryPath()
	if hist != filepath.Join(dir, "history.db") {
		t.Errorf("HistoryPath() = %q", hist)
	}
}

func TestLockPath_StableAndOutsidePhotoDir(t *testing.T) {
	state := t.TempDir()
	t.Setenv("TEAMSORT_HOME", state)
	photos := t.TempDir()

	a, err := LockPath(photos)
	if err != nil {
		t.Fatalf("LockPath() error = %v", err)
	}
	b, _ := LockPath(photos + string(filepath.Separator))
	if a != b {
		t.Errorf("LockPath not stable: %q vs %q", a, b)
	}
	if !strings.HasPrefix(a, filepath.Join(state, "locks")) {
		t.Errorf("lock %q should live under state dir", a)
	}
	if strings.HasPrefix(a, photos) {
		t.Errorf("lock %q must not live inside the photo dir", a)
	}
}
