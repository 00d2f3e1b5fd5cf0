// Package version holds the build-time metadata linked in via -ldflags,
// ported from the teacher's astris.Version/Commit/BuildDate variables.
package version

// These are linked in at build time via -ldflags "-X ...".
var (
	BuildDate string
	Commit    string
	Version   string
)
