// Package inventory lists provisioned toolchain releases from install
// receipts and discovers versioned interpreter binaries that live outside
// the install root.
package inventory
