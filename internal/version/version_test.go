package version

import (
	"runtime/debug"
	"strings"
	"testing"
)

func withVars(t *testing.T, v, c string) {
	t.Helper()
	prevV, prevC := Version, Commit
	Version, Commit = v, c
	t.Cleanup(func() { Version, Commit = prevV, prevC })
}

func TestFromBuildInfo(t *testing.T) {
	tests := []struct {
		name        string
		info        *debug.BuildInfo
		ok          bool
		wantVersion string
		wantCommit  string
	}{
		{
			name:        "no build info",
			ok:          false,
			wantVersion: "",
			wantCommit:  "",
		},
		{
			name: "module version and clean checkout",
			info: &debug.BuildInfo{
				Main: debug.Module{Version: "v1.2.3"},
				Settings: []debug.BuildSetting{
					{Key: "vcs.revision", Value: "0123456789abcdef"},
					{Key: "vcs.modified", Value: "false"},
				},
			},
			ok:          true,
			wantVersion: "v1.2.3",
			wantCommit:  "0123456",
		},
		{
			name: "devel build with dirty tree",
			info: &debug.BuildInfo{
				Main: debug.Module{Version: "(devel)"},
				Settings: []debug.BuildSetting{
					{Key: "vcs.revision", Value: "abcdef0123"},
					{Key: "vcs.modified", Value: "true"},
					{Key: "vcs.time", Value: "2026-03-04T05:06:07Z"},
				},
			},
			ok:          true,
			wantVersion: "dev-20260304",
			wantCommit:  "abcdef0-dirty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withVars(t, "", "")
			fromBuildInfo(func() (*debug.BuildInfo, bool) { return tt.info, tt.ok })

			if Version != tt.wantVersion {
				t.Errorf("Version = %q, want %q", Version, tt.wantVersion)
			}
			if Commit != tt.wantCommit {
				t.Errorf("Commit = %q, want %q", Commit, tt.wantCommit)
			}
		})
	}
}

func TestFromBuildInfoKeepsLdflags(t *testing.T) {
	withVars(t, "v9.9.9", "feedbee")
	fromBuildInfo(func() (*debug.BuildInfo, bool) {
		return &debug.BuildInfo{
			Main:     debug.Module{Version: "v1.0.0"},
			Settings: []debug.BuildSetting{{Key: "vcs.revision", Value: "0000000000"}},
		}, true
	})
	if Version != "v9.9.9" || Commit != "feedbee" {
		t.Errorf("ldflags values were overwritten: %s %s", Version, Commit)
	}
}

func TestFullAndUserAgent(t *testing.T) {
	withVars(t, "v0.4.0", "abc1234")

	if got := Full(); got != "v0.4.0 (commit: abc1234)" {
		t.Errorf("Full() = %q", got)
	}
	if got := UserAgent(); !strings.HasPrefix(got, "hostelctl/v0.4.0") {
		t.Errorf("UserAgent() = %q", got)
	}
}
