// Package paths provides sudo-aware path resolution for teamsort.
//
// When running with sudo, these functions resolve to the original user's
// directories (via SUDO_USER) instead of root's.
package paths

import (
	"crypto/sha1"
	"encoding/hex"
	"os"
	"os/user"
	"path/filepath"
)

// UserHomeDir returns the home directory of the actual user.
// If running with sudo, returns the SUDO_USER's home directory, not root's.
func UserHomeDir() (string, error) {
	if sudoUser := os.Getenv("SUDO_USER"); sudoUser != "" && sudoUser != "root" {
		u, err := user.Lookup(sudoUser)
		if err == nil {
			return u.HomeDir, nil
		}
	}

	return os.UserHomeDir()
}

// UserConfigDir returns ~/.config for the actual user.
func UserConfigDir() (string, error) {
	homeDir, err := UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config"), nil
}

// StateDir returns ~/.config/teamsort for the actual user.
// TEAMSORT_HOME overrides it.
func StateDir() (string, error) {
	if dir := os.Getenv("TEAMSORT_HOME"); dir != "" {
		return dir, nil
	}
	configDir, err := UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "teamsort"), nil
}

// ConfigPath returns the path to config.toml inside StateDir.
func ConfigPath() (string, error) {
	dir, err := StateDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// HistoryPath returns the path to the run history database.
func HistoryPath() (string, error) {
	dir, err := StateDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "history.db"), nil
}

// LogPath returns the default log file path.
func LogPath() (string, error) {
	dir, err := StateDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "logs", "teamsort.log"), nil
}

// LockPath returns the lock file guarding runs against photoDir. Locks live
// under StateDir so nothing extra is written into the photo directory.
func LockPath(photoDir string) (string, error) {
	dir, err := StateDir()
	if err != nil {
		return "", err
	}
	abs, err := filepath.Abs(photoDir)
	if err != nil {
		return "", err
	}
	sum := sha1.Sum([]byte(filepath.Clean(abs)))
	return filepath.Join(dir, "locks", hex.EncodeToString(sum[:8])+".lock"), nil
}

// ActualUser returns the actual username (not root when using sudo).
func ActualUser() string {
	if sudoUser := os.Getenv("SUDO_USER"); sudoUser != "" && sudoUser != "root" {
		return sudoUser
	}
	if u, err := user.Current(); err == nil {
		return u.Username
	}
	return "unknown"
}
