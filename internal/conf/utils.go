package conf

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/tphakala/rave-go/internal/errors"
)

const osWindows = "windows"

// GetDefaultConfigPaths returns the candidate directories for config.yaml.
// If a config file already exists in one of them, only that directory is
// returned.
func GetDefaultConfigPaths() ([]string, error) {
	var configPaths []string

	exePath, err := os.Executable()
	if err != nil {
		return nil, errors.New(err).
			Category(errors.CategoryConfiguration).
			Context("operation", "get-executable-path").
			Build()
	}
	exeDir := filepath.Dir(exePath)

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, errors.New(err).
			Category(errors.CategoryConfiguration).
			Context("operation", "get-home-directory").
			Build()
	}

	switch runtime.GOOS {
	case osWindows:
		configPaths = []string{
			exeDir,
			filepath.Join(homeDir, "AppData", "Roaming", "rave-go"),
		}
	default:
		configPaths = []string{
			filepath.Join(homeDir, ".config", "rave-go"),
			"/etc/rave-go",
		}
	}

	// Prefer the directory that already holds a config file
	for _, path := range configPaths {
		configFile := filepath.Join(path, "config.yaml")
		if _, err := os.Stat(configFile); err == nil {
			return []string{path}, nil
		}
	}

	return configPaths, nil
}

// ModelDirectory resolves the directory model artifacts are stored in.
// An empty configured directory defaults to <config dir>/models.
func (s *ModelSettings) ModelDirectory() (string, error) {
	if s.Directory != "" {
		return ExpandPath(s.Directory)
	}

	configPaths, err := GetDefaultConfigPaths()
	if err != nil {
		return "", err
	}
	return filepath.Join(configPaths[0], "models"), nil
}

// ExpandPath expands environment variables and a leading ~ in a path.
func ExpandPath(path string) (string, error) {
	path = os.ExpandEnv(path)

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", errors.New(err).
				Category(errors.CategoryFileIO).
				Context("path", path).
				Build()
		}
		path = filepath.Join(homeDir, path[2:])
	}

	return path, nil
}
