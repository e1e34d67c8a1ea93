package installer

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const (
	// DefaultDirPermissions is used for install and bin directories.
	DefaultDirPermissions os.FileMode = 0o755

	// regularFilePermissions is applied to every plain file extracted from an
	// archive; the archive's own permission bits are deliberately discarded.
	regularFilePermissions os.FileMode = 0o644

	// entrypointPermissions is re-applied to exactly the designated entry
	// point after the normalization pass.
	entrypointPermissions os.FileMode = 0o755
)

var (
	// ErrUnknownProduct is returned when the requested toolchain is not in the catalog.
	ErrUnknownProduct = errors.New("unknown product")

	// ErrDownloadFailed covers network errors, non-success HTTP outcomes and empty bodies.
	ErrDownloadFailed = errors.New("download failed")

	// ErrExtractionFailed covers unreadable archives and unwritable targets.
	ErrExtractionFailed = errors.New("extraction failed")

	// ErrPermissionNormalizationFailed is returned when the chmod pass is rejected.
	ErrPermissionNormalizationFailed = errors.New("permission normalization failed")

	// ErrVerificationFailed is returned when the installed entry point cannot
	// report its version.
	ErrVerificationFailed = errors.New("post-install verification failed")

	// errUnsafeArchivePath is returned for archive entries escaping the install directory.
	errUnsafeArchivePath = errors.New("unsafe path in archive")

	// errEmptyBody is returned when the release artifact download yields no data.
	errEmptyBody = errors.New("empty response body")
)

// artifactPath returns the temporary archive location for one install.
// The path is keyed by product and version prefix so invocations for
// different prefixes never collide, and lives under the install root so the
// final rename-free cleanup never crosses filesystems.
func artifactPath(installRoot, product, prefix string) string {
	return filepath.Join(installRoot, fmt.Sprintf(".download-%s-%s.tar.gz", product, prefix))
}
