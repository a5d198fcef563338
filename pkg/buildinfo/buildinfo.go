// Package buildinfo reports the version the binary was built from.
package buildinfo

import (
	"runtime"
	"runtime/debug"
)

// These vars are set at build time via ldflags:
// -X github.com/otherjamesbrown/tmsledger/pkg/buildinfo.Version=v1.2.0
// -X github.com/otherjamesbrown/tmsledger/pkg/buildinfo.Commit=b806fe7
// -X github.com/otherjamesbrown/tmsledger/pkg/buildinfo.BuildTime=2026-02-07T10:30:00Z
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// Program is the binary name reported by Get.
const Program = "tmsledger"

// Info holds build information.
type Info struct {
	Program   string `json:"program" yaml:"program"`
	Version   string `json:"version" yaml:"version"`
	Commit    string `json:"commit" yaml:"commit"`
	BuildTime string `json:"build_time" yaml:"build_time"`
	GoVersion string `json:"go_version" yaml:"go_version"`
	Platform  string `json:"platform" yaml:"platform"`
}

// readBuildInfo is replaced in tests.
var readBuildInfo = debug.ReadBuildInfo

// Get returns the build info. A binary installed with "go install" has no
// ldflags, so its module version and VCS revision stand in.
func Get() Info {
	info := Info{
		Program:   Program,
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}

	bi, ok := readBuildInfo()
	if !ok {
		return info
	}
	if info.Version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		info.Version = bi.Main.Version
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if info.Commit == "unknown" && len(s.Value) >= 7 {
				info.Commit = s.Value[:7]
			}
		case "vcs.time":
			if info.BuildTime == "unknown" {
				info.BuildTime = s.Value
			}
		}
	}
	return info
}

// String returns a human-readable one-liner like "v0.8.2 (b806fe7, 2026-02-07T10:30:00Z)"
func (i Info) String() string {
	return i.Version + " (" + i.Commit + ", " + i.BuildTime + ")"
}

// String returns Get().String().
func String() string {
	return Get().String()
}
