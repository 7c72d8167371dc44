package polyglot

import (
	"runtime/debug"
	"strings"
	"testing"
)

func stubBuildInfo(t *testing.T, settings map[string]string) {
	t.Helper()
	orig := readBuildInfo
	readBuildInfo = func() (*debug.BuildInfo, bool) {
		bi := &debug.BuildInfo{}
		for k, v := range settings {
			bi.Settings = append(bi.Settings, debug.BuildSetting{Key: k, Value: v})
		}
		return bi, true
	}
	t.Cleanup(func() { readBuildInfo = orig })
}

func setRelease(t *testing.T, commit, date string) {
	t.Helper()
	origCommit, origDate := GitCommit, BuildDate
	GitCommit, BuildDate = commit, date
	t.Cleanup(func() { GitCommit, BuildDate = origCommit, origDate })
}

func TestFullVersion(t *testing.T) {
	tests := []struct {
		name     string
		commit   string
		settings map[string]string
		want     string
	}{
		{"no commit", "", nil, Version},
		{"ldflags commit", "1a2b3c4d5e6f", nil, Version + "+1a2b3c4"},
		{"vcs revision", "", map[string]string{"vcs.revision": "abcdef0123"}, Version + "+abcdef0"},
		{"dirty tree", "", map[string]string{"vcs.revision": "abcdef0123", "vcs.modified": "true"}, Version + "+abcdef0-dirty"},
		{"ldflags wins", "1234567", map[string]string{"vcs.revision": "abcdef0123"}, Version + "+1234567"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRelease(t, tt.commit, "")
			stubBuildInfo(t, tt.settings)

			if got := FullVersion(); got != tt.want {
				t.Errorf("FullVersion() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestInfo_BuildDateFallback(t *testing.T) {
	setRelease(t, "", "")
	stubBuildInfo(t, map[string]string{"vcs.time": "2024-03-13T08:30:00Z"})

	info := Info()
	if info.BuildDate != "2024-03-13T08:30:00Z" {
		t.Errorf("BuildDate = %q", info.BuildDate)
	}
	if !strings.HasPrefix(info.GoVersion, "go") {
		t.Errorf("GoVersion = %q", info.GoVersion)
	}
}

func TestUserAgent(t *testing.T) {
	setRelease(t, "", "")
	stubBuildInfo(t, nil)

	if got := UserAgent(); got != "polyglot/"+Version {
		t.Errorf("UserAgent() = %q", got)
	}
}
