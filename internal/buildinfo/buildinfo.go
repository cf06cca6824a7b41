// Package buildinfo holds version metadata stamped in at build time via
// -ldflags -X, surfaced by the --version flag.
package buildinfo

import "fmt"

// Version, Commit, and Date are overridden at build time, e.g.:
//
//	go build -ldflags "-X github.com/komari-monitor/komari-agent-go/internal/buildinfo.Version=1.2.3"
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// String renders the full build banner printed by --version.
func String() string {
	return fmt.Sprintf("komari-agent-go %s (commit %s, built %s)", Version, Commit, Date)
}
