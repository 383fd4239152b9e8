package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// ConfigDirectory returns the directory holding droidxfer.conf.
//   - Windows: %APPDATA%\droidxfer
//   - Unix: ~/.config/droidxfer
func ConfigDirectory() (string, error) {
	if runtime.GOOS == "windows" {
		appData := os.Getenv("APPDATA")
		if appData == "" {
			userProfile := os.Getenv("USERPROFILE")
			if userProfile == "" {
				return "", errors.New("neither APPDATA nor USERPROFILE environment variable set")
			}
			appData = filepath.Join(userProfile, "AppData", "Roaming")
		}
		return filepath.Join(appData, "droidxfer"), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".config", "droidxfer"), nil
}

// DefaultConfigPath returns the default path of droidxfer.conf.
func DefaultConfigPath() (string, error) {
	dir, err := ConfigDirectory()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "droidxfer.conf"), nil
}

// PreviewDirectory returns the scratch directory previews are pulled into.
func PreviewDirectory() string {
	return filepath.Join(os.TempDir(), "droidxfer-preview")
}
