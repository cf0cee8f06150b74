// Package config provides user configuration management for hostelctl.
//
// This package manages a YAML-based configuration file holding named API
// profiles (base URL, timeouts, retry, rate limit and cache settings) and
// application preferences such as page sizes for the business browser.
// The configuration follows OS-specific conventions for storage location.
//
// # Configuration File Location
//
// The configuration file is stored in platform-appropriate locations:
//   - Linux: $XDG_CONFIG_HOME/hostelctl/config.yaml or $HOME/.config/hostelctl/config.yaml
//   - macOS: $HOME/.config/hostelctl/config.yaml
//   - Windows: %LOCALAPPDATA%\hostelctl\config.yaml
//
// HOSTELCTL_CONFIG_DIR overrides the directory on every platform.
//
// # Environment
//
// LoadDotEnv reads a .env file into the process environment. ApplyEnv then
// lets HOSTELCTL_PROFILE and HOSTELCTL_API_URL override the stored profile
// for the current run without touching the file.
//
// # Security
//
// IMPORTANT: Session tokens are NEVER stored. They come from HOSTELCTL_TOKEN
// or from an interactive login and live only in memory.
//
// # Usage Example
//
//	registry, err := config.LoadRegistry()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	if err := registry.SetBaseURL("staging", "https://staging.hostel.example"); err != nil {
//	    log.Fatal(err)
//	}
//	if err := registry.UseProfile("staging"); err != nil {
//	    log.Fatal(err)
//	}
//
//	// Save changes atomically
//	if err := registry.Save(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Thread Safety
//
// The global registry uses sync.Once for safe initialization across goroutines.
// File operations are protected by a mutex to ensure atomic writes.
package config
