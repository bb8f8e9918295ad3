package version

import "fmt"

// Version is set at build time:
// go build -ldflags "-X git.home.luguber.info/inful/yassg/internal/version.Version=v0.3.0".
var Version = "dev"

// Commit and BuildTime are optional ldflags companions of Version.
var (
	Commit    = "unknown"
	BuildTime = "unknown"
)

// String renders the one-line form printed by `yassg version`.
func String() string {
	return fmt.Sprintf("yassg %s (commit %s, built %s)", Version, Commit, BuildTime)
}
