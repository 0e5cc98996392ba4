// Package version holds the build version string.
package version

// Version is the current gemrelay release. Overridden at build time via
// -ldflags "-X github.com/gemrelay/gemrelay/internal/version.Version=...".
var Version = "0.3.0"
