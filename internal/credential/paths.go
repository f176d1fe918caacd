package credential

import (
	"os"
	"path/filepath"
	"runtime"
)

const credentialFileName = "credential.bin"

// DefaultDir returns the platform-conventional directory for stored
// credentials: %APPDATA%\kpx, ~/Library/Application Support/kpx, or
// ~/.config/kpx. homeDir is injectable for tests; empty auto-detects.
func DefaultDir(homeDir string) string {
	if homeDir == "" {
		if hd, err := os.UserHomeDir(); err == nil {
			homeDir = hd
		}
	}
	switch runtime.GOOS {
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "kpx")
		}
		return filepath.Join(homeDir, "AppData", "Roaming", "kpx")
	case "darwin":
		return filepath.Join(homeDir, "Library", "Application Support", "kpx")
	default:
		return filepath.Join(homeDir, ".config", "kpx")
	}
}

// DefaultFilePath returns the default credential file location for the
// file backend.
func DefaultFilePath(homeDir string) string {
	return filepath.Join(DefaultDir(homeDir), credentialFileName)
}
