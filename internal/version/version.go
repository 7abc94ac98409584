// Package version holds build metadata injected via ldflags:
//
//	-X github.com/kailas-cloud/paperdigest/internal/version.Version=v1.0.0
package version

import "fmt"

//nolint:revive // Set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// String formats the build info for `paperdigest version`.
func String() string {
	return fmt.Sprintf("paperdigest %s (commit %s, built %s)", Version, Commit, Date)
}

// UserAgent identifies outgoing HTTP requests, as the arXiv API terms ask clients to.
func UserAgent() string {
	return "paperdigest/" + Version
}
