package core

import (
	"os"
	"path/filepath"
	"runtime"
)

// AppName is the application name used in data directory paths.
const AppName = "sdstudio"

// GetDataDirectory returns the platform-specific data directory for the
// studio. It does not create the directory; use EnsureDataDirectory.
//
//   - Windows: %APPDATA%\sdstudio
//   - Linux/macOS: ~/.sdstudio
func GetDataDirectory() string {
	switch runtime.GOOS {
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return AppName
			}
			return filepath.Join(home, "AppData", "Roaming", AppName)
		}
		return filepath.Join(appData, AppName)
	default:
		home, err := os.UserHomeDir()
		if err != nil {
			return "." + AppName
		}
		return filepath.Join(home, "."+AppName)
	}
}

// GetDataFilePath returns the full path for a file within the data
// directory.
func GetDataFilePath(filename string) string {
	return filepath.Join(GetDataDirectory(), filename)
}

// EnsureDataDirectory creates the data directory if it doesn't exist and
// returns its path.
func EnsureDataDirectory() (string, error) {
	dir := GetDataDirectory()
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}
	return dir, nil
}
