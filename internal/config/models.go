package config

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	// DefaultProfileName is the profile created on first run
	DefaultProfileName = "default"

	// DefaultBaseURL is the API root used when nothing else is configured
	DefaultBaseURL = "http://localhost:8080"
)

// Registry represents the entire user configuration file.
// It stores named API profiles and application preferences.
// Session tokens are never written here.
type Registry struct {
	Version        int                 `yaml:"version"`
	CurrentProfile string              `yaml:"current_profile"`
	Profiles       map[string]*Profile `yaml:"profiles,omitempty"` // Keyed by profile name
	Preferences    *Preferences        `yaml:"preferences,omitempty"`
}

// Profile describes how to reach one API deployment.
type Profile struct {
	BaseURL           string    `yaml:"base_url" validate:"required,http_url"`
	TimeoutSeconds    int       `yaml:"timeout_seconds" validate:"gte=0,lte=300"`
	MaxRetries        int       `yaml:"max_retries" validate:"gte=0,lte=10"`
	RequestsPerSecond float64   `yaml:"requests_per_second" validate:"gte=0"` // 0 disables client-side rate limiting
	Burst             int       `yaml:"burst" validate:"gte=0"`
	CacheSeconds      int       `yaml:"cache_seconds" validate:"gte=0"` // 0 disables the lookup cache
	LastUsed          time.Time `yaml:"last_used,omitempty"`
}

// Preferences represents application-wide user preferences.
type Preferences struct {
	InitialPageSize    int    `yaml:"initial_page_size" validate:"gte=1,lte=100"`
	LoadMorePageSize   int    `yaml:"load_more_page_size" validate:"gte=1,lte=100"`
	DefaultCategoryID  string `yaml:"default_category_id,omitempty"`
	IncludeDescendants bool   `yaml:"include_descendants"`
	DiscoverTimeout    int    `yaml:"discover_timeout" validate:"gte=1,lte=60"` // mDNS discovery timeout in seconds
}

// NewProfile returns a profile with default connection settings
func NewProfile(baseURL string) *Profile {
	return &Profile{
		BaseURL:           strings.TrimRight(baseURL, "/"),
		TimeoutSeconds:    10,
		MaxRetries:        3,
		RequestsPerSecond: 10,
		Burst:             5,
		CacheSeconds:      30,
	}
}

// DefaultPreferences returns the preferences used when none are stored
func DefaultPreferences() *Preferences {
	return &Preferences{
		InitialPageSize:    10,
		LoadMorePageSize:   10,
		IncludeDescendants: true,
		DiscoverTimeout:    5,
	}
}

// NewRegistry creates a new Registry with default values.
func NewRegistry() *Registry {
	return &Registry{
		Version:        1,
		CurrentProfile: DefaultProfileName,
		Profiles: map[string]*Profile{
			DefaultProfileName: NewProfile(DefaultBaseURL),
		},
		Preferences: DefaultPreferences(),
	}
}

var validate = validator.New()

// Validate checks every profile and the preferences
func (r *Registry) Validate() error {
	if r.Version != 1 {
		return fmt.Errorf("unsupported config version: %d (expected 1)", r.Version)
	}
	if _, ok := r.Profiles[r.CurrentProfile]; !ok {
		return fmt.Errorf("current profile %q does not exist (known: %s)", r.CurrentProfile, strings.Join(r.ProfileNames(), ", "))
	}
	for _, name := range r.ProfileNames() {
		if err := validate.Struct(r.Profiles[name]); err != nil {
			return fmt.Errorf("profile %q: %w", name, err)
		}
	}
	if r.Preferences != nil {
		if err := validate.Struct(r.Preferences); err != nil {
			return fmt.Errorf("preferences: %w", err)
		}
	}
	return nil
}

// ProfileNames returns the profile names in sorted order
func (r *Registry) ProfileNames() []string {
	names := make([]string, 0, len(r.Profiles))
	for name := range r.Profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetProfile retrieves a profile by name.
// Returns nil if the profile doesn't exist in the registry.
func (r *Registry) GetProfile(name string) *Profile {
	return r.Profiles[name]
}

// EnsureProfile ensures a profile entry exists in the registry.
// If it doesn't exist, creates one with default settings.
func (r *Registry) EnsureProfile(name string) *Profile {
	if r.Profiles == nil {
		r.Profiles = make(map[string]*Profile)
	}

	if p, exists := r.Profiles[name]; exists {
		return p
	}

	p := NewProfile(DefaultBaseURL)
	r.Profiles[name] = p
	return p
}

// ActiveProfile returns the current profile, creating it if needed
func (r *Registry) ActiveProfile() *Profile {
	if r.CurrentProfile == "" {
		r.CurrentProfile = DefaultProfileName
	}
	return r.EnsureProfile(r.CurrentProfile)
}

// SetBaseURL sets the API root of a profile, creating the profile if needed
func (r *Registry) SetBaseURL(name, baseURL string) error {
	candidate := NewProfile(baseURL)
	if err := validate.Var(candidate.BaseURL, "required,http_url"); err != nil {
		return fmt.Errorf("invalid base url %q: %w", baseURL, err)
	}
	r.EnsureProfile(name).BaseURL = candidate.BaseURL
	return nil
}

// UseProfile makes an existing profile the current one
func (r *Registry) UseProfile(name string) error {
	p, ok := r.Profiles[name]
	if !ok {
		return fmt.Errorf("profile %q does not exist (known: %s)", name, strings.Join(r.ProfileNames(), ", "))
	}
	r.CurrentProfile = name
	p.LastUsed = time.Now()
	return nil
}
