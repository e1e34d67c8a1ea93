// Package version exposes build metadata (semantic version, commit, build
// time) injected via ldflags, and attaches a cobra `version` subcommand that
// prints it.
package version
