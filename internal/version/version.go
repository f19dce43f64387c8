// Package version holds build metadata injected via -ldflags.
package version

// Version is the semantic version of the build.
var Version = "dev"

// Commit is the git commit hash of the build.
var Commit = "unknown"
