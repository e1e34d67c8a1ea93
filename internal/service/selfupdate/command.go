package selfupdate

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"

	goupdate "github.com/doitdistributed/go-update"
	"gopkg.in/yaml.v3"

	"github.com/toolstand/toolstand/internal/config"
	"github.com/toolstand/toolstand/internal/domain/toolchain"
	"github.com/toolstand/toolstand/internal/logger"
	"github.com/toolstand/toolstand/internal/version"
)

var (
	errAlreadyRunning = errors.New("a self-update is already running")
	errNoUpdateFolder = errors.New("update folder is not configured")
	errNoChecksum     = errors.New("checksum missing for file")
	errBadHTTPStatus  = errors.New("unexpected http status")
)

// Options are inputs accepted by the self-update entry point.
type Options struct {
	// ConfigPath is the optional path to settings YAML file.
	ConfigPath string

	// executablePath and markerPath override the live binary and marker
	// locations; tests use them to operate on scratch files.
	executablePath string
	markerPath     string
}

// runner holds the state for a single self-update execution.
type runner struct {
	cfg            *config.Config // Settings with the update folder URL.
	manifest       *Manifest      // Remote manifest describing the release.
	executablePath string         // Binary being replaced.
	markerPath     string         // Concurrent-run guard file.
}

// Run replaces the running binary with the published release when the
// manifest advertises a newer version or the binary's checksum drifted.
// It is the public entry point for the CLI.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "selfupdate")

	r, err := newRunner(ctx, opts)
	if err != nil {
		return err
	}

	defer r.cleanup()

	if err = r.run(ctx); err != nil {
		logger.ErrorKV(ctx, "Self-update failed", "error", err)

		return err
	}

	return nil
}

// newRunner validates inputs and writes the marker guarding parallel runs.
func newRunner(ctx context.Context, opts *Options) (*runner, error) {
	markerPath := opts.markerPath
	if markerPath == "" {
		markerPath = DefaultMarkerPath()
	}

	if IsRunningNow(ctx, markerPath) {
		return nil, errAlreadyRunning
	}

	marker, err := os.Create(markerPath)
	if err != nil {
		return nil, fmt.Errorf("create update marker: %w", err)
	}

	if err = marker.Close(); err != nil {
		return nil, err
	}

	r := &runner{markerPath: markerPath}

	if r.cfg, err = config.Load(opts.ConfigPath); err != nil {
		r.cleanup()

		return nil, fmt.Errorf("load configuration: %w", err)
	}

	if r.cfg.UpdateFolder == "" {
		r.cleanup()

		return nil, errNoUpdateFolder
	}

	if r.executablePath = opts.executablePath; r.executablePath == "" {
		if r.executablePath, err = os.Executable(); err != nil {
			r.cleanup()

			return nil, fmt.Errorf("locate own binary: %w", err)
		}
	}

	return r, nil
}

// run fetches the manifest, decides whether an update is due and applies it.
func (r *runner) run(ctx context.Context) error {
	if err := r.fetchManifest(ctx); err != nil {
		return fmt.Errorf("fetch manifest: %w", err)
	}

	needed, err := r.updateNeeded(ctx)
	if err != nil {
		return err
	}

	if !needed {
		logger.InfoKV(ctx, "Binary is current", "version", version.Short())

		return nil
	}

	if err = r.apply(ctx); err != nil {
		return fmt.Errorf("apply update: %w", err)
	}

	logger.InfoKV(ctx, "Binary updated",
		"from", version.Short(), "to", r.manifest.Version)

	return nil
}

// fetchManifest downloads and parses the remote release manifest.
func (r *runner) fetchManifest(ctx context.Context) error {
	data, err := r.fetchFromFolder(ctx, ManifestFilename)
	if err != nil {
		return err
	}

	var manifest Manifest
	if err = yaml.Unmarshal(data, &manifest); err != nil {
		return err
	}

	r.manifest = &manifest

	return nil
}

// updateNeeded reports whether the published release supersedes the running
// binary. Versions are compared semantically; if either side does not parse,
// plain inequality decides. Matching versions still trigger an update when
// the binary's checksum drifted from the manifest.
func (r *runner) updateNeeded(ctx context.Context) (bool, error) {
	local, localErr := toolchain.ParseVersion(version.Short())
	remote, remoteErr := toolchain.ParseVersion(r.manifest.Version)

	switch {
	case localErr != nil || remoteErr != nil:
		if version.Short() != r.manifest.Version {
			return true, nil
		}
	case local.LessThan(remote):
		logger.InfoKV(ctx, "Newer release published",
			"local", version.Short(), "remote", r.manifest.Version)

		return true, nil
	case remote.LessThan(local):
		logger.InfoKV(ctx, "Published release is older, skipping",
			"local", version.Short(), "remote", r.manifest.Version)

		return false, nil
	}

	drifted, err := r.checksumDrifted()
	if err != nil {
		return false, err
	}

	if drifted {
		logger.Info(ctx, "Binary checksum differs from manifest, repairing")
	}

	return drifted, nil
}

// checksumDrifted compares the running binary against the manifest checksum.
func (r *runner) checksumDrifted() (bool, error) {
	published, err := r.publishedChecksum()
	if err != nil {
		return false, err
	}

	local, err := GetFileChecksum(r.executablePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return true, nil
		}

		return false, err
	}

	return !bytes.Equal(published, local), nil
}

// publishedChecksum decodes the manifest checksum for the executable.
func (r *runner) publishedChecksum() ([]byte, error) {
	encoded, ok := r.manifest.Files[r.manifest.Executable]
	if !ok {
		return nil, fmt.Errorf("%w: %s", errNoChecksum, r.manifest.Executable)
	}

	return base64.StdEncoding.DecodeString(encoded)
}

// apply downloads the published binary and swaps it in place, validating the
// manifest checksum during the write.
func (r *runner) apply(ctx context.Context) error {
	checksum, err := r.publishedChecksum()
	if err != nil {
		return err
	}

	data, err := r.fetchFromFolder(ctx, r.manifest.Executable)
	if err != nil {
		return err
	}

	options := goupdate.Options{
		TargetPath: r.executablePath,
		TargetMode: DefaultFileMode,
		Checksum:   checksum,
		Hash:       DefaultChecksumFunction,
	}

	if err = goupdate.Apply(bytes.NewReader(data), options); err != nil {
		return err
	}

	// go-update leaves the previous binary next to the new one.
	_ = os.Remove(r.executablePath + ".old")

	return nil
}

// fetchFromFolder downloads one artifact from the configured update folder.
func (r *runner) fetchFromFolder(ctx context.Context, fileName string) ([]byte, error) {
	folderURL, err := url.Parse(r.cfg.UpdateFolder)
	if err != nil {
		return nil, err
	}

	// path.Join normalizes duplicate slashes when composing the URL path.
	folderURL.Path = path.Join(folderURL.Path, fileName)
	finalURL := folderURL.String()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, finalURL, http.NoBody)
	if err != nil {
		return nil, err
	}

	response, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}

	defer func() {
		_ = response.Body.Close()
	}()

	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s, %s: %w", finalURL, response.Status, errBadHTTPStatus)
	}

	return io.ReadAll(response.Body)
}

// cleanup removes the concurrent-run marker.
func (r *runner) cleanup() {
	_ = os.Remove(r.markerPath)
}
