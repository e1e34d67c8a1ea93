package installer

import (
	"archive/tar"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// extractArchive unpacks a gzip-compressed tar archive into destDir.
// The archive's recorded ownership and permission metadata is ignored:
// release artifacts are frequently packaged with bits unsuitable for a
// shared image (setuid, root-only ownership), so every plain file lands with
// regularFilePermissions and the normalization pass decides what is executable.
func extractArchive(archivePath, destDir string) error {
	archive, err := os.Open(filepath.Clean(archivePath))
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}

	defer func() {
		_ = archive.Close()
	}()

	gz, err := gzip.NewReader(archive)
	if err != nil {
		return fmt.Errorf("read gzip stream: %w", err)
	}

	defer func() {
		_ = gz.Close()
	}()

	reader := tar.NewReader(gz)

	for {
		header, readErr := reader.Next()
		if errors.Is(readErr, io.EOF) {
			break
		}

		if readErr != nil {
			return fmt.Errorf("read archive entry: %w", readErr)
		}

		target, pathErr := sanitizePath(destDir, header.Name)
		if pathErr != nil {
			return pathErr
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if err = os.MkdirAll(target, DefaultDirPermissions); err != nil {
				return fmt.Errorf("create directory: %w", err)
			}
		case tar.TypeReg:
			if err = writeRegularFile(target, reader); err != nil {
				return err
			}
		case tar.TypeSymlink:
			if err = writeSymlink(destDir, target, header.Linkname); err != nil {
				return err
			}
		default:
			// Device nodes, FIFOs and hard links have no place in a
			// toolchain install directory.
			continue
		}
	}

	return nil
}

// sanitizePath joins an archive entry name onto destDir and rejects entries
// that would escape it.
func sanitizePath(destDir, name string) (string, error) {
	target := filepath.Join(destDir, name)

	cleanDest := filepath.Clean(destDir)
	if target != cleanDest && !strings.HasPrefix(target, cleanDest+string(os.PathSeparator)) {
		return "", fmt.Errorf("%w: %q", errUnsafeArchivePath, name)
	}

	return target, nil
}

// writeRegularFile streams one archive entry to disk with normalized permissions.
func writeRegularFile(target string, contents io.Reader) error {
	if err := os.MkdirAll(filepath.Dir(target), DefaultDirPermissions); err != nil {
		return fmt.Errorf("create parent directory: %w", err)
	}

	//nolint:gosec // Target is sanitized against the destination directory.
	file, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, regularFilePermissions)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}

	if _, err = io.Copy(file, contents); err != nil { //nolint:gosec // Archive size is bounded by the release artifact.
		_ = file.Close()

		return fmt.Errorf("write file: %w", err)
	}

	if err = file.Close(); err != nil {
		return fmt.Errorf("close file: %w", err)
	}

	return nil
}

// writeSymlink recreates a relative symlink from the archive, rejecting
// targets that resolve outside the destination directory.
func writeSymlink(destDir, target, linkname string) error {
	resolved := linkname
	if !filepath.IsAbs(resolved) {
		resolved = filepath.Join(filepath.Dir(target), linkname)
	}

	cleanDest := filepath.Clean(destDir)
	if resolved != cleanDest && !strings.HasPrefix(resolved, cleanDest+string(os.PathSeparator)) {
		return fmt.Errorf("%w: symlink %q -> %q", errUnsafeArchivePath, target, linkname)
	}

	if err := os.MkdirAll(filepath.Dir(target), DefaultDirPermissions); err != nil {
		return fmt.Errorf("create parent directory: %w", err)
	}

	// Re-extraction over an existing install must win.
	_ = os.Remove(target)

	if err := os.Symlink(linkname, target); err != nil {
		return fmt.Errorf("create symlink: %w", err)
	}

	return nil
}
