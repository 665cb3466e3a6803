// Package version holds the version of record for snowforge.
package version

// Version is edited by hand for each release and never stamped at build
// time. Every consumer (CLI, HTTP status, changelog check, release tag)
// reads this symbol.
var Version = "v0.4.0"

// Commit is the short git hash, stamped by the release build with
// -ldflags "-X github.com/snowforge/snowforge/pkg/version.Commit=<hash>".
var Commit string

// String returns the version with the commit appended when known.
func String() string {
	if Commit == "" {
		return Version
	}
	return Version + " (" + Commit + ")"
}
