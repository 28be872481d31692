// Package version holds build information set via -ldflags.
package version

// Version is the release version of the service.
var Version = "0.1.0"

// GitCommit is the commit the binary was built from.
var GitCommit = "unknown"

// BuildDate is the UTC build timestamp.
var BuildDate = "unknown"

// Info is the body of GET /version.
type Info struct {
	Version   string `json:"version"`
	GitCommit string `json:"gitCommit"`
	BuildDate string `json:"buildDate"`
}

// Get returns the current build information.
func Get() Info {
	return Info{Version: Version, GitCommit: GitCommit, BuildDate: BuildDate}
}
