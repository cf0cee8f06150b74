package discovery

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"
)

// Server represents a hostel API instance advertised on the network
type Server struct {
	// Instance is the advertised instance name (e.g., "Sunrise Hostel API")
	Instance string

	// Hostname is the mDNS hostname (e.g., "hostel-api.local.")
	Hostname string

	// IP is the preferred address, IPv4 when available
	IP string

	// Port is the HTTP port
	Port int

	// Path is the API base path from the TXT "path" key (empty for the root)
	Path string

	// Version is the API version from the TXT "version" key
	Version string

	// TLS is set when the TXT "tls" key is "1" or "true"
	TLS bool

	// Metadata contains every TXT record as key/value
	Metadata map[string]string

	// DiscoveredAt is when the server was discovered
	DiscoveredAt time.Time
}

// String returns a human-readable string representation of the server
func (s *Server) String() string {
	name := s.Instance
	if name == "" {
		name = s.Hostname
	}
	return fmt.Sprintf("%s at %s", name, s.BaseURL())
}

// BaseURL returns the API root of the server, usable as a profile base URL
func (s *Server) BaseURL() string {
	scheme := "http"
	if s.TLS {
		scheme = "https"
	}
	return scheme + "://" + net.JoinHostPort(s.IP, strconv.Itoa(s.Port)) + s.Path
}

// GetMetadata retrieves a metadata value by key, or returns empty string if not found
func (s *Server) GetMetadata(key string) string {
	if s.Metadata == nil {
		return ""
	}
	return s.Metadata[key]
}

// normalizePath turns a TXT path value into "" or "/segment" without a trailing slash
func normalizePath(p string) string {
	p = strings.Trim(strings.TrimSpace(p), "/")
	if p == "" {
		return ""
	}
	return "/" + p
}
