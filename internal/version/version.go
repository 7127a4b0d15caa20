// Package version exposes the build identity shown in the About dialog
// and in startup logging.
package version

// Stamped at build time via -ldflags, e.g.
// -X github.com/evnlme/RefLayer/internal/version.Version=1.2.0
var (
	// Version is the RefLayer release version.
	Version = "0.1.0"

	// BuildTime is the UTC timestamp of the build.
	BuildTime = "unknown"

	// GitCommit is the source commit the binary was built from.
	GitCommit = "unknown"
)
