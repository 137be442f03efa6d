// Package version holds build metadata, overridden at link time with
// -ldflags "-X tinybasic/pkg/version.Version=...".
package version

var (
	Version   = "0.1.0-dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)
