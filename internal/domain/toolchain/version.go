package toolchain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// ErrMalformedVersion is returned when a version string cannot be decomposed
// into at least MAJOR.MINOR numeric components.
var ErrMalformedVersion = errors.New("malformed version")

// Version is a dotted release identifier (e.g. "7.5.3").
// The MAJOR.MINOR prefix is the side-by-side installation key: releases
// sharing a prefix replace each other on disk, releases with different
// prefixes coexist.
type Version struct {
	raw string
	sem *semver.Version
}

// ParseVersion validates and decomposes a dotted version string.
// The string must contain at least two dot-separated numeric components.
func ParseVersion(raw string) (*Version, error) {
	trimmed := strings.TrimPrefix(strings.TrimSpace(raw), "v")
	if strings.Count(trimmed, ".") < 1 {
		return nil, fmt.Errorf("%w: %q", ErrMalformedVersion, raw)
	}

	sem, err := semver.NewVersion(trimmed)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrMalformedVersion, raw, err)
	}

	return &Version{raw: trimmed, sem: sem}, nil
}

// String returns the version as given, without a leading "v".
func (v *Version) String() string {
	return v.raw
}

// Prefix returns the MAJOR.MINOR installation key.
func (v *Version) Prefix() string {
	return fmt.Sprintf("%d.%d", v.sem.Major(), v.sem.Minor())
}

// Compare returns -1, 0 or 1 ordering this version against other.
func (v *Version) Compare(other *Version) int {
	return v.sem.Compare(other.sem)
}

// LessThan reports whether this version precedes other.
func (v *Version) LessThan(other *Version) bool {
	return v.sem.LessThan(other.sem)
}
