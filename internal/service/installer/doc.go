// Package installer provisions pinned toolchain releases side by side.
//
// One invocation resolves the target architecture, downloads the release
// archive, regenerates the MAJOR.MINOR-scoped install directory from it,
// normalizes file permissions down to a single executable entry point,
// publishes the prefix-qualified and "current" symlinks, and verifies the
// result by running the entry point's version-reporting mode.
//
// Re-running with the same version is idempotent; re-running with a
// different patch release under the same prefix upgrades in place without
// touching other prefixes. Concurrent invocations targeting the same prefix
// are not supported and must be serialized by the caller.
package installer
