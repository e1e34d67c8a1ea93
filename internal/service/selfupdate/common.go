package selfupdate

import (
	"context"
	"crypto"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/mitchellh/go-ps"

	"github.com/toolstand/toolstand/internal/logger"
	"github.com/toolstand/toolstand/internal/version"

	// Ensure SHA512 is available for checksum calculation.
	_ "crypto/sha512"
)

const (
	// ManifestFilename stores the release manifest published to the update folder.
	ManifestFilename = "toolstand-version.yaml"

	// MarkerFilename marks that a self-update is running right now to avoid
	// parallel execution.
	MarkerFilename = "toolstand-update-marker.bin"

	// DefaultFileMode is applied to the binary after a successful update.
	DefaultFileMode os.FileMode = 0o755

	// DefaultChecksumFunction is used to calculate update file hashes.
	DefaultChecksumFunction crypto.Hash = crypto.SHA512

	// baseExecutable is the binary name without a platform extension.
	baseExecutable = "toolstand"

	// markerLifetime is the period after which a stale update marker is ignored.
	markerLifetime = 30 * time.Second
)

var errHashUnavailable = errors.New("hash function unavailable")

// Manifest describes one published release of the provisioner binary.
type Manifest struct {
	// Version is the semantic version of this release.
	Version string `yaml:"version"`
	// Files maps artifact filenames to their base64-encoded SHA-512 checksums.
	Files map[string]string `yaml:"files"`
	// Executable is the binary clients replace when applying the release.
	Executable string `yaml:"executable"`
}

// NewManifest produces a Manifest stamped with this build's version.
func NewManifest() *Manifest {
	return &Manifest{
		Version:    version.Short(),
		Files:      make(map[string]string),
		Executable: ExecutableName(),
	}
}

// ExecutableName returns the platform-specific binary name.
func ExecutableName() string {
	return baseExecutable + executableExtension()
}

// executableExtension returns ".exe" on Windows and "" elsewhere.
func executableExtension() string {
	if strings.Contains(strings.ToLower(runtime.GOOS), "windows") {
		return ".exe"
	}

	return ""
}

// GetFileChecksum returns checksum bytes for a file using DefaultChecksumFunction.
func GetFileChecksum(path string) ([]byte, error) {
	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, err
	}

	if !DefaultChecksumFunction.Available() {
		return nil, fmt.Errorf("checksum calculation not possible: %w", errHashUnavailable)
	}

	hasher := DefaultChecksumFunction.New()
	if _, err = hasher.Write(contents); err != nil {
		return nil, fmt.Errorf("calculate checksum: %w", err)
	}

	return hasher.Sum(nil), nil
}

// DefaultMarkerPath returns the conventional marker location.
func DefaultMarkerPath() string {
	return filepath.Join(os.TempDir(), MarkerFilename)
}

// IsRunningNow checks presence of a marker file and attempts recovery when it
// looks stale.
func IsRunningNow(ctx context.Context, markerPath string) bool {
	fileInfo, err := os.Stat(markerPath)
	if err == nil {
		if time.Since(fileInfo.ModTime()) <= markerLifetime {
			return true
		}

		logger.Info(ctx, "The update marker is too old, attempting cleanup")

		if err = terminateProcessByName(ExecutableName()); err != nil {
			return true
		}

		if err = os.Remove(markerPath); err != nil {
			return true
		}

		return false
	}

	if errors.Is(err, os.ErrNotExist) {
		return false
	}

	logger.Infof(ctx, "Unable to read update marker: %v", err)

	return false
}

// terminateProcessByName tries to kill other processes with the provided
// executable name.
func terminateProcessByName(processName string) error {
	processList, err := ps.Processes()
	if err != nil {
		return err
	}

	thisProcessID := os.Getpid()

	for _, process := range processList {
		if process.Pid() == thisProcessID {
			continue
		}

		if process.Executable() != processName {
			continue
		}

		var runningProcess *os.Process

		runningProcess, err = os.FindProcess(process.Pid())
		if err != nil {
			return err
		}

		if err = runningProcess.Kill(); err != nil {
			return err
		}
	}

	return nil
}
