// Package version carries build-time identification for the CLI.
package version

import "fmt"

// Set via -ldflags at release time.
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// Info returns the formatted version line.
func Info() string {
	return fmt.Sprintf("%s (%s, built %s)", Version, Commit, BuildDate)
}
