// Package platform resolves the running machine's hardware identifier to the
// architecture naming scheme used by release artifact providers
// (x86_64 -> x64, aarch64 -> arm64). The mapping is a closed table: any
// identifier outside it is a fatal error, never a silent default.
package platform
