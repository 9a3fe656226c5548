// Package version records build metadata, overridable via ldflags.
package version

import (
	"fmt"
	"runtime"
)

var (
	Version   = "0.1.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func GetVersion() string {
	return Version
}

func GetBuildDate() string {
	return BuildDate
}

// String returns the full version line printed by the version command.
func String() string {
	return fmt.Sprintf("wikiparity %s (commit %s, built %s, %s/%s)",
		Version, GitCommit, BuildDate, runtime.GOOS, runtime.GOARCH)
}
