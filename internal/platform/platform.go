package platform

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

// Token is an architecture name as the upstream artifact providers spell it.
type Token string

const (
	// TokenX64 is the vendor spelling for x86_64 machines.
	TokenX64 Token = "x64"
	// TokenARM64 is the vendor spelling for aarch64 machines.
	TokenARM64 Token = "arm64"
)

// ErrUnsupportedArchitecture is returned when the machine identifier is not
// in the known set. Callers must abort: guessing an architecture would
// download an artifact that cannot run here.
var ErrUnsupportedArchitecture = errors.New("unsupported architecture")

// archTokens is a closed table covering only architectures the upstream
// providers publish artifacts for. Adding a target is a table edit.
//
//nolint:gochecknoglobals // Lookup table, never mutated.
var archTokens = map[string]Token{
	"x86_64":  TokenX64,
	"aarch64": TokenARM64,
}

// Resolve maps a raw machine identifier (as reported by uname) to the vendor
// architecture token. Unknown identifiers fail with ErrUnsupportedArchitecture
// naming the raw value; there is no fallback.
func Resolve(raw string) (Token, error) {
	token, ok := archTokens[raw]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedArchitecture, raw)
	}

	return token, nil
}

// Detect reads the machine identifier from uname(2) and resolves it.
func Detect() (Token, error) {
	var uts unix.Utsname
	if err := unix.Uname(&uts); err != nil {
		return "", fmt.Errorf("read machine identifier: %w", err)
	}

	return Resolve(unix.ByteSliceToString(uts.Machine[:]))
}
