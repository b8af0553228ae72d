package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// AppName is the directory name used under the per-user config and data roots.
const AppName = "standup-bot"

// Paths holds the default locations for the config file and database
type Paths struct {
	ConfigDir string
	DataDir   string
}

// DetectPaths detects the default config and data directories based on the operating system
func DetectPaths() (Paths, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Paths{}, fmt.Errorf("failed to get home directory: %w", err)
	}

	switch runtime.GOOS {
	case "darwin":
		base := filepath.Join(home, "Library/Application Support", AppName)
		return Paths{ConfigDir: base, DataDir: base}, nil
	case "linux":
		configRoot := os.Getenv("XDG_CONFIG_HOME")
		if configRoot == "" {
			configRoot = filepath.Join(home, ".config")
		}
		dataRoot := os.Getenv("XDG_DATA_HOME")
		if dataRoot == "" {
			dataRoot = filepath.Join(home, ".local/share")
		}
		return Paths{
			ConfigDir: filepath.Join(configRoot, AppName),
			DataDir:   filepath.Join(dataRoot, AppName),
		}, nil
	default:
		return Paths{}, fmt.Errorf("unsupported OS: %s (only macOS and Linux are supported)", runtime.GOOS)
	}
}

// ConfigFile returns the default config file path
func (p Paths) ConfigFile() string {
	return filepath.Join(p.ConfigDir, "config.yaml")
}

// DatabaseFile returns the default SQLite database path
func (p Paths) DatabaseFile() string {
	return filepath.Join(p.DataDir, "standup.db")
}

// ResolveConfigPath picks the config file: explicit flag, then STANDUP_CONFIG, then the default location.
func ResolveConfigPath(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if env := os.Getenv("STANDUP_CONFIG"); env != "" {
		return env, nil
	}
	paths, err := DetectPaths()
	if err != nil {
		return "", err
	}
	return paths.ConfigFile(), nil
}
