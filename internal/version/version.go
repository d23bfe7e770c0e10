// Package version carries build identification, overridden at link
// time via -ldflags "-X ...".
package version

import "fmt"

var (
	// Version is the current depthcloud release.
	Version = "dev"
	// GitSHA is the git commit the binary was built from.
	GitSHA = "unknown"
	// BuildTime is the build timestamp.
	BuildTime = "unknown"
)

// String returns a single-line build description for startup logs.
func String() string {
	return fmt.Sprintf("depthcloud %s (%s, built %s)", Version, GitSHA, BuildTime)
}
