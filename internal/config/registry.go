package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	appName    = "hostelctl"
	configFile = "config.yaml"
)

// Environment variables read by the CLI
const (
	EnvConfigDir = "HOSTELCTL_CONFIG_DIR"
	EnvAPIURL    = "HOSTELCTL_API_URL"
	EnvToken     = "HOSTELCTL_TOKEN"
	EnvProfile   = "HOSTELCTL_PROFILE"
)

var (
	// Global registry instance (loaded lazily)
	globalRegistry     *Registry
	globalRegistryOnce sync.Once
	globalRegistryErr  error

	// Mutex for thread-safe file operations
	fileMutex sync.Mutex
)

// GetConfigDir returns the OS-appropriate configuration directory for the application.
// HOSTELCTL_CONFIG_DIR takes precedence over platform conventions:
//   - Linux: $XDG_CONFIG_HOME/hostelctl or $HOME/.config/hostelctl
//   - macOS: $HOME/.config/hostelctl
//   - Windows: %LOCALAPPDATA%\hostelctl
func GetConfigDir() (string, error) {
	if dir := os.Getenv(EnvConfigDir); dir != "" {
		return dir, nil
	}

	switch runtime.GOOS {
	case "windows":
		localAppData := os.Getenv("LOCALAPPDATA")
		if localAppData != "" {
			return filepath.Join(localAppData, appName), nil
		}
		userProfile := os.Getenv("USERPROFILE")
		if userProfile == "" {
			return "", fmt.Errorf("cannot determine user profile directory (LOCALAPPDATA and USERPROFILE not set)")
		}
		return filepath.Join(userProfile, "AppData", "Local", appName), nil

	case "darwin":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine home directory: %w", err)
		}
		return filepath.Join(homeDir, ".config", appName), nil

	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, appName), nil
		}
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine home directory: %w", err)
		}
		return filepath.Join(homeDir, ".config", appName), nil
	}
}

// GetConfigPath returns the full path to the configuration file.
func GetConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, configFile), nil
}

// LoadDotEnv loads environment variables from the given .env files.
// Missing files are ignored; variables already set are not overridden.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// LoadRegistry loads the configuration registry from disk.
// If the file doesn't exist, returns a new default registry.
// Thread-safe - multiple calls will return the same instance.
func LoadRegistry() (*Registry, error) {
	globalRegistryOnce.Do(func() {
		var path string
		path, globalRegistryErr = GetConfigPath()
		if globalRegistryErr != nil {
			globalRegistryErr = fmt.Errorf("failed to get config path: %w", globalRegistryErr)
			return
		}
		globalRegistry, globalRegistryErr = LoadFile(path)
	})
	return globalRegistry, globalRegistryErr
}

// LoadFile reads a registry from path. A missing file yields the defaults.
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return NewRegistry(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var registry Registry
	if err := yaml.Unmarshal(data, &registry); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if registry.Profiles == nil {
		registry.Profiles = make(map[string]*Profile)
	}
	if registry.Preferences == nil {
		registry.Preferences = DefaultPreferences()
	}
	if registry.CurrentProfile == "" {
		registry.CurrentProfile = DefaultProfileName
	}
	if registry.CurrentProfile == DefaultProfileName {
		registry.EnsureProfile(DefaultProfileName)
	}

	if err := registry.Validate(); err != nil {
		return nil, err
	}
	return &registry, nil
}

// Save saves the registry to the default config path.
func (r *Registry) Save() error {
	if err := r.Validate(); err != nil {
		return err
	}

	configPath, err := GetConfigPath()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}
	return r.SaveTo(configPath)
}

// SaveTo writes the registry to path.
// Performs an atomic write to prevent corruption on crash.
func (r *Registry) SaveTo(configPath string) error {
	fileMutex.Lock()
	defer fileMutex.Unlock()

	if err := os.MkdirAll(filepath.Dir(configPath), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# hostelctl configuration file
# Stores API profiles and preferences.
#
# Session tokens are NEVER stored in this file. Use HOSTELCTL_TOKEN
# or log in again for each session.
#
# Location: ` + configPath + `

`)
	data = append(header, data...)

	tmpPath := configPath + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write temporary config file: %w", err)
	}

	if err := os.Rename(tmpPath, configPath); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to save config file: %w", err)
	}

	return nil
}

// ApplyEnv overlays environment overrides onto the registry in memory.
// HOSTELCTL_PROFILE selects the profile, HOSTELCTL_API_URL replaces its base URL.
// Overrides are never persisted by Save unless the caller saves explicitly.
func (r *Registry) ApplyEnv() error {
	if name := strings.TrimSpace(os.Getenv(EnvProfile)); name != "" {
		r.EnsureProfile(name)
		r.CurrentProfile = name
	}
	if u := strings.TrimSpace(os.Getenv(EnvAPIURL)); u != "" {
		r.ActiveProfile()
		if err := r.SetBaseURL(r.CurrentProfile, u); err != nil {
			return fmt.Errorf("%s: %w", EnvAPIURL, err)
		}
	}
	return nil
}

// TokenFromEnv returns the session token supplied through the environment
func TokenFromEnv() string {
	return strings.TrimSpace(os.Getenv(EnvToken))
}
