// Package version carries build identification, overridable at link
// time with -ldflags "-X hcp-calibrate/internal/version.Version=...".
package version

var (
	// Version is the semantic version of this build.
	Version = "1.0.0"

	// GitCommit is the source revision the binary was built from.
	GitCommit = "unknown"

	// BuildTime is the UTC build timestamp.
	BuildTime = "unknown"
)
