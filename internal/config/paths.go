// # internal/config/paths.go
package config

import (
	"os"
	"path/filepath"
)

// defaultHistoryPath places the snapshot database under the XDG state
// directory, mirroring where log files go.
func defaultHistoryPath() string {
	if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
		return filepath.Join(xdg, "stacklens", "history.db")
	}

	home, err := os.UserHomeDir()
	if err == nil && home != "" {
		return filepath.Join(home, ".local", "state", "stacklens", "history.db")
	}

	return "stacklens-history.db"
}
