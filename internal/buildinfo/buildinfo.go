// Package buildinfo carries release metadata injected at link time.
package buildinfo

// Set via -ldflags by the release pipeline; empty for local builds, where
// `facet version` falls back to debug.ReadBuildInfo.
var (
	Version = ""
	Commit  = ""
	Date    = ""
)
