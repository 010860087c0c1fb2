package parley

import (
	"os"
	"path/filepath"
)

// Home returns the parley home directory.
// It defaults to ~/.parley but can be overridden with the PARLEY_HOME environment variable.
func Home() string {
	if v := os.Getenv("PARLEY_HOME"); v != "" {
		return v
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".parley")
}

// DefaultDBPath returns the default SQLite database path (~/.parley/parley.db).
func DefaultDBPath() string {
	return filepath.Join(Home(), "parley.db")
}

// DefaultConfigPath returns the default config file path (~/.parley/config.yaml).
func DefaultConfigPath() string {
	return filepath.Join(Home(), "config.yaml")
}

// HistoryPath returns the REPL history file path.
func HistoryPath() string {
	return filepath.Join(Home(), "history")
}

// EnsureHome creates the parley home directory if it doesn't exist.
func EnsureHome() error {
	return os.MkdirAll(Home(), 0o755)
}
