// SPDX-License-Identifier: MIT
//
// Package build provides functionality to manage and retrieve build information
// for a Go application. It allows embedding metadata such as the application
// name, build timestamp, Git commit hash, and semantic version into the binary
// at compile time using linker flags. This information can be useful for debugging,
// logging, and displaying version information to users.
package build

import "fmt"

type ldFlags struct {
	Name    string
	Time    string
	Commit  string
	Version string
}

// Package-level variables for build information. These are populated by -ldflags
// during compilation. Empty values fall back to development defaults.
var (
	buildName    string
	buildTime    string
	buildCommit  string
	buildVersion string
	buildFlags   = &ldFlags{
		Name:    "spectro",
		Time:    "unknown",
		Commit:  "unknown",
		Version: "dev",
	}
)

// Initialize copies build information from ldflags variables into the
// buildFlags struct. Flags left unset by the build keep their development
// defaults so `go run` works without any linker setup. Call early in
// program startup.
func Initialize() {
	if buildName != "" {
		buildFlags.Name = buildName
	}
	if buildTime != "" {
		buildFlags.Time = buildTime
	}
	if buildCommit != "" {
		buildFlags.Commit = buildCommit
	}
	if buildVersion != "" {
		buildFlags.Version = buildVersion
	}
}

// GetBuildFlags returns the current build information.
func GetBuildFlags() *ldFlags {
	return buildFlags
}

// String renders the build information on one line for version output.
func (f *ldFlags) String() string {
	return fmt.Sprintf("%s %s (commit %s, built %s)", f.Name, f.Version, f.Commit, f.Time)
}
