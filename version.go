package polyglot

import (
	"runtime"
	"runtime/debug"
)

// Name identifies polyglot in version output and the User-Agent header.
const Name = "polyglot"

// Release metadata, set at build time:
//
//	go build -ldflags "-X github.com/ZaguanLabs/polyglot.Version=1.0.0 -X github.com/ZaguanLabs/polyglot.GitCommit=$(git rev-parse HEAD)"
var (
	Version   = "0.1.0"
	GitCommit = ""
	BuildDate = ""
)

// BuildInfo describes the running binary.
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit,omitempty"`
	BuildDate string `json:"buildDate,omitempty"`
	GoVersion string `json:"goVersion"`
	Modified  bool   `json:"modified,omitempty"` // built from a tree with local changes
}

var readBuildInfo = debug.ReadBuildInfo

// Info reports how the binary was built. Commit and build date fall back
// to the VCS stamps the toolchain embeds when ldflags did not set them.
func Info() BuildInfo {
	info := BuildInfo{
		Version:   Version,
		Commit:    GitCommit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
	}

	bi, ok := readBuildInfo()
	if !ok {
		return info
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if info.Commit == "" {
				info.Commit = s.Value
			}
		case "vcs.time":
			if info.BuildDate == "" {
				info.BuildDate = s.Value
			}
		case "vcs.modified":
			info.Modified = s.Value == "true"
		}
	}
	return info
}

// FullVersion returns Version with the short commit appended, e.g.
// "0.1.0+1a2b3c4" or "0.1.0+1a2b3c4-dirty".
func FullVersion() string {
	info := Info()
	if info.Commit == "" {
		return info.Version
	}
	v := info.Version + "+" + shortCommit(info.Commit)
	if info.Modified {
		v += "-dirty"
	}
	return v
}

func shortCommit(commit string) string {
	if len(commit) > 7 {
		return commit[:7]
	}
	return commit
}

// UserAgent returns the User-Agent sent to AI providers.
func UserAgent() string {
	return Name + "/" + FullVersion()
}
