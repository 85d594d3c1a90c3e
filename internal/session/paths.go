package session

import (
	"os"
	"path/filepath"
)

// BaseDir returns ~/.pawchat.
func BaseDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".pawchat")
}

// Dir returns the per-dialog session directory.
func Dir(dialogID string) string {
	return filepath.Join(BaseDir(), "dialogs", dialogID)
}

// LockPath returns the lock file path for a dialog session.
func LockPath(dialogID string) string {
	return filepath.Join(Dir(dialogID), "LOCK")
}

// HistoryDBPath returns the local message cache path for a dialog.
func HistoryDBPath(dialogID string) string {
	return filepath.Join(Dir(dialogID), "history.db")
}

// LogDir returns the log directory for a dialog session.
func LogDir(dialogID string) string {
	return filepath.Join(Dir(dialogID), "logs")
}

// LogPath returns the client log file path for a dialog session.
func LogPath(dialogID string) string {
	return filepath.Join(LogDir(dialogID), "pawchat.log")
}

// ConfigPath returns the global config file path.
func ConfigPath() string {
	return filepath.Join(BaseDir(), "config.toml")
}

// EnsureDir creates the dialog session directory tree with proper permissions.
func EnsureDir(dialogID string) error {
	dirs := []string{
		Dir(dialogID),
		LogDir(dialogID),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0700); err != nil {
			return err
		}
	}
	return nil
}
