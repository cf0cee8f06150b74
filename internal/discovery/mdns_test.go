package discovery

import (
	"net"
	"testing"
	"time"

	"github.com/grandcat/zeroconf"
)

func TestParseServiceEntry(t *testing.T) {
	tests := []struct {
		name        string
		entry       *zeroconf.ServiceEntry
		wantNil     bool
		wantIP      string
		wantPort    int
		wantPath    string
		wantBaseURL string
	}{
		{
			name: "IPv4 with path",
			entry: &zeroconf.ServiceEntry{
				ServiceRecord: zeroconf.ServiceRecord{Instance: "Sunrise Hostel"},
				HostName:      "sunrise.local.",
				Port:          8080,
				AddrIPv4:      []net.IP{net.ParseIP("192.168.1.20")},
				Text:          []string{"path=/v1/", "version=2.3"},
			},
			wantIP:      "192.168.1.20",
			wantPort:    8080,
			wantPath:    "/v1",
			wantBaseURL: "http://192.168.1.20:8080/v1",
		},
		{
			name: "tls flag",
			entry: &zeroconf.ServiceEntry{
				HostName: "secure.local.",
				Port:     8443,
				AddrIPv4: []net.IP{net.ParseIP("10.0.0.5")},
				Text:     []string{"tls=1"},
			},
			wantIP:      "10.0.0.5",
			wantPort:    8443,
			wantBaseURL: "https://10.0.0.5:8443",
		},
		{
			name: "no port defaults to 80",
			entry: &zeroconf.ServiceEntry{
				HostName: "plain.local.",
				AddrIPv4: []net.IP{net.ParseIP("172.16.0.1")},
				Text:     []string{"path=/"},
			},
			wantIP:      "172.16.0.1",
			wantPort:    80,
			wantBaseURL: "http://172.16.0.1:80",
		},
		{
			name: "IPv6 fallback",
			entry: &zeroconf.ServiceEntry{
				HostName: "v6.local.",
				Port:     8080,
				AddrIPv6: []net.IP{net.ParseIP("fe80::1")},
			},
			wantIP:      "fe80::1",
			wantPort:    8080,
			wantBaseURL: "http://[fe80::1]:8080",
		},
		{
			name: "no address",
			entry: &zeroconf.ServiceEntry{
				HostName: "ghost.local.",
				Port:     8080,
			},
			wantNil: true,
		},
		{
			name:    "nil entry",
			entry:   nil,
			wantNil: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := parseServiceEntry(tt.entry)

			if tt.wantNil {
				if server != nil {
					t.Errorf("parseServiceEntry() = %+v, want nil", server)
				}
				return
			}
			if server == nil {
				t.Fatal("parseServiceEntry() = nil, want server")
			}
			if server.IP != tt.wantIP {
				t.Errorf("IP = %v, want %v", server.IP, tt.wantIP)
			}
			if server.Port != tt.wantPort {
				t.Errorf("Port = %v, want %v", server.Port, tt.wantPort)
			}
			if server.Path != tt.wantPath {
				t.Errorf("Path = %q, want %q", server.Path, tt.wantPath)
			}
			if got := server.BaseURL(); got != tt.wantBaseURL {
				t.Errorf("BaseURL() = %v, want %v", got, tt.wantBaseURL)
			}
			if server.DiscoveredAt.IsZero() {
				t.Error("DiscoveredAt should be set")
			}
		})
	}
}

func TestParseServiceEntryMetadata(t *testing.T) {
	entry := &zeroconf.ServiceEntry{
		HostName: "api.local.",
		Port:     80,
		AddrIPv4: []net.IP{net.ParseIP("192.168.1.2")},
		Text:     []string{"Version=1.4", "flag", "=orphan", "owner=ops=team"},
	}

	server := parseServiceEntry(entry)
	if server == nil {
		t.Fatal("parseServiceEntry() returned nil")
	}
	if server.Version != "1.4" {
		t.Errorf("Version = %q, want 1.4", server.Version)
	}
	if v, ok := server.Metadata["flag"]; !ok || v != "" {
		t.Errorf("flag = %q (present %v), want empty and present", v, ok)
	}
	if _, ok := server.Metadata[""]; ok {
		t.Error("empty keys should be dropped")
	}
	if server.GetMetadata("owner") != "ops=team" {
		t.Errorf("owner = %q, want ops=team", server.GetMetadata("owner"))
	}
	if server.GetMetadata("missing") != "" {
		t.Error("missing key should return empty string")
	}
}

func TestServerString(t *testing.T) {
	s := &Server{Instance: "Office", IP: "10.1.1.1", Port: 9000}
	if got := s.String(); got != "Office at http://10.1.1.1:9000" {
		t.Errorf("String() = %q", got)
	}

	s.Instance = ""
	s.Hostname = "office.local."
	if got := s.String(); got != "office.local. at http://10.1.1.1:9000" {
		t.Errorf("String() = %q", got)
	}

	var empty Server
	if empty.GetMetadata("x") != "" {
		t.Error("GetMetadata on nil map should return empty string")
	}
}

func TestNormalizePath(t *testing.T) {
	tests := map[string]string{
		"":        "",
		"/":       "",
		"api":     "/api",
		"/api/":   "/api",
		" /v1/x/": "/v1/x",
	}
	for in, want := range tests {
		if got := normalizePath(in); got != want {
			t.Errorf("normalizePath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNewScanner(t *testing.T) {
	s := NewScanner()
	if s.Timeout != DefaultScanTimeout {
		t.Errorf("Timeout = %v, want %v", s.Timeout, DefaultScanTimeout)
	}
	if DefaultScanTimeout != 5*time.Second {
		t.Errorf("DefaultScanTimeout = %v, want 5s", DefaultScanTimeout)
	}
}
