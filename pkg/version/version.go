// Package version reports the build identity of topocheck.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Version, GitCommit, and BuildDate are set at build time via ldflags:
//
//	go build -ldflags "-X github.com/newtron-network/topocheck/pkg/version.Version=v1.0.0 \
//	  -X github.com/newtron-network/topocheck/pkg/version.GitCommit=abc1234 \
//	  -X github.com/newtron-network/topocheck/pkg/version.BuildDate=2026-01-01T00:00:00Z"
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Build describes the running binary.
type Build struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// Current returns the build identity. Values left unset by ldflags fall back
// to the module and VCS data embedded by `go install`.
func Current() Build {
	b := Build{
		Version:   Version,
		GitCommit: GitCommit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		b.fill(info)
	}
	return b
}

func (b *Build) fill(info *debug.BuildInfo) {
	if b.Version == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
		b.Version = info.Main.Version
	}
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			if b.GitCommit == "unknown" && len(s.Value) >= 7 {
				b.GitCommit = s.Value[:7]
			}
		case "vcs.time":
			if b.BuildDate == "unknown" {
				b.BuildDate = s.Value
			}
		}
	}
}

// String formats the build for `topocheck version`.
func (b Build) String() string {
	if b.Version == "dev" {
		return fmt.Sprintf("dev build (%s, %s)", b.GoVersion, b.Platform)
	}
	return fmt.Sprintf("%s (%s) built %s, %s %s", b.Version, b.GitCommit, b.BuildDate, b.GoVersion, b.Platform)
}

// Info returns a formatted version string for display.
func Info() string {
	return Current().String()
}
