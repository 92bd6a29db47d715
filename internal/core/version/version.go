// Package version provides build information for the crosspost binaries
package version

import "runtime/debug"

// BuildInfo holds version information about the build
type BuildInfo struct {
	Service   string `json:"service"`
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Date      string `json:"date"`
	GoVersion string `json:"go_version,omitempty"`
}

// Info returns the build information for service
// version, commit and date are set at build time:
//
//	-ldflags "-X crosspost/internal/core/version.version=v0.1.0 -X crosspost/internal/core/version.commit=abcd"
func Info(service string) BuildInfo {
	bi := BuildInfo{
		Service: service,
		Version: version,
		Commit:  commit,
		Date:    date,
	}
	if b, ok := readBuildInfo(); ok && b != nil {
		bi.GoVersion = b.GoVersion
	}
	return bi
}

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"

	readBuildInfo = debug.ReadBuildInfo
)
