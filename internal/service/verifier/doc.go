// Package verifier runs an installed entry point's version-reporting mode
// with a bounded timeout. The installer uses it as the final install step;
// the verify subcommand uses it to re-check previously installed toolchains.
package verifier
