package installer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/toolstand/toolstand/internal/config"
	"github.com/toolstand/toolstand/internal/domain/toolchain"
	"github.com/toolstand/toolstand/internal/logger"
	"github.com/toolstand/toolstand/internal/platform"
	"github.com/toolstand/toolstand/internal/repository/receipt"
	"github.com/toolstand/toolstand/internal/service/verifier"
)

// Options are inputs accepted by the installer entry point.
type Options struct {
	// ConfigPath is the optional path to settings YAML file.
	ConfigPath string
	// Product is the catalog name of the toolchain to install.
	Product string
	// Version is the dotted release identifier (e.g. "7.5.3").
	Version string
	// SkipVerify disables the post-install version check.
	SkipVerify bool

	// arch overrides auto-detection; tests use it to stay host-independent.
	arch platform.Token
}

// runner holds the resolved state for a single install invocation.
// It is intentionally unexported; call Run(ctx, Options) from callers.
type runner struct {
	cfg         *config.Config     // Layout and catalog settings.
	productName string             // Catalog key of the toolchain.
	product     config.Product     // Catalog entry being installed.
	version     *toolchain.Version // Parsed release identifier.
	arch        platform.Token     // Resolved architecture token.
	installDir  string             // Version-prefix-scoped install directory.
	entrypoint  string             // Absolute path of the designated executable.
	artifact    string             // Prefix-scoped temporary archive path.
	skipVerify  bool               // Whether to skip the version check.
}

// Run installs one pinned toolchain release and is the public entry point
// for the CLI. The invocation either fully succeeds or fully fails; there
// are no retries and no rollback — a subsequent identical run repairs any
// partial state by re-extracting over it.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "installer")

	r, err := newRunner(opts)
	if err != nil {
		return err
	}

	if err = r.run(ctx); err != nil {
		logger.ErrorKV(ctx, "Install failed",
			"product", r.productName, "version", r.version.String(), "error", err)

		return err
	}

	return nil
}

// newRunner validates inputs and computes target locations.
// The version is decomposed before anything else so malformed input fails
// without touching the network or the filesystem layout.
func newRunner(opts *Options) (*runner, error) {
	version, err := toolchain.ParseVersion(opts.Version)
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	product, ok := cfg.Products[opts.Product]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProduct, opts.Product)
	}

	arch := opts.arch
	if arch == "" {
		if arch, err = platform.Detect(); err != nil {
			return nil, err
		}
	}

	installDir := filepath.Join(cfg.InstallRoot, opts.Product, version.Prefix())

	return &runner{
		cfg:         cfg,
		productName: opts.Product,
		product:     product,
		version:     version,
		arch:        arch,
		installDir:  installDir,
		entrypoint:  filepath.Join(installDir, product.Entrypoint),
		artifact:    artifactPath(cfg.InstallRoot, opts.Product, version.Prefix()),
		skipVerify:  opts.SkipVerify,
	}, nil
}

// run executes the install steps in required order:
// fetch, extract, normalize permissions, publish symlinks, verify, record.
func (r *runner) run(ctx context.Context) error {
	url := toolchain.ReleaseURL(r.product.ReleaseURLTemplate, r.version.String(), r.arch)

	logger.InfoKV(ctx, "Installing toolchain",
		"product", r.productName,
		"version", r.version.String(),
		"prefix", r.version.Prefix(),
		"arch", string(r.arch),
		"url", url)

	if err := r.download(ctx, url); err != nil {
		return err
	}

	// The artifact is scoped to this invocation: remove it on every exit
	// path past the download, success or failure.
	defer func() {
		_ = os.Remove(r.artifact)
	}()

	if err := r.extract(ctx); err != nil {
		return err
	}

	if err := r.normalizePermissions(ctx); err != nil {
		return err
	}

	if err := r.publishSymlinks(ctx); err != nil {
		return err
	}

	if err := r.verify(ctx); err != nil {
		return err
	}

	r.writeReceipt(ctx)

	logger.InfoKV(ctx, "Toolchain installed",
		"product", r.productName,
		"version", r.version.String(),
		"install_dir", r.installDir)

	return nil
}

// download fetches the release artifact to the prefix-scoped temporary path.
// Redirects are followed; any transport error, non-success status or empty
// body fails the install, and no temporary file is left behind.
func (r *runner) download(ctx context.Context, url string) error {
	written, err := r.fetchToArtifact(ctx, url)
	if err != nil {
		_ = os.Remove(r.artifact)

		return fmt.Errorf("%w: %s: %v", ErrDownloadFailed, url, err)
	}

	logger.InfoKV(ctx, "Artifact downloaded", "path", r.artifact, "bytes", written)

	return nil
}

// fetchToArtifact performs the HTTP GET and streams the body to disk.
func (r *runner) fetchToArtifact(ctx context.Context, url string) (int64, error) {
	timeout := r.cfg.Timeout
	if timeout <= 0 {
		timeout = config.DefaultTimeout
	}

	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := os.MkdirAll(filepath.Dir(r.artifact), DefaultDirPermissions); err != nil {
		return 0, err
	}

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return 0, err
	}

	response, err := http.DefaultClient.Do(req)
	if err != nil {
		return 0, err
	}

	defer func() {
		_ = response.Body.Close()
	}()

	if response.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("unexpected status %s", response.Status)
	}

	file, err := os.Create(r.artifact)
	if err != nil {
		return 0, err
	}

	written, err := io.Copy(file, response.Body)
	if err != nil {
		_ = file.Close()

		return 0, err
	}

	if err = file.Close(); err != nil {
		return 0, err
	}

	if written == 0 {
		return 0, errEmptyBody
	}

	return written, nil
}

// extract regenerates the install directory from the downloaded archive.
// The directory is disposable state keyed by version prefix: it is removed
// and rebuilt rather than merged, so a re-run never accumulates stale files
// and always repairs a partial previous install.
func (r *runner) extract(ctx context.Context) error {
	if err := os.RemoveAll(r.installDir); err != nil {
		return fmt.Errorf("%w: clear install directory: %v", ErrExtractionFailed, err)
	}

	if err := os.MkdirAll(r.installDir, DefaultDirPermissions); err != nil {
		return fmt.Errorf("%w: create install directory: %v", ErrExtractionFailed, err)
	}

	if err := extractArchive(r.artifact, r.installDir); err != nil {
		return fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}

	if _, err := os.Stat(r.entrypoint); err != nil {
		return fmt.Errorf("%w: entry point %s missing after extraction", ErrExtractionFailed, r.product.Entrypoint)
	}

	logger.InfoKV(ctx, "Archive extracted", "install_dir", r.installDir)

	return nil
}

// normalizePermissions strips the executable bit from every plain file under
// the install directory, then re-applies it to exactly the entry point.
// The install asserts a single known executable surface instead of trusting
// whatever the archive was packaged with.
func (r *runner) normalizePermissions(ctx context.Context) error {
	err := filepath.WalkDir(r.installDir, func(path string, entry os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}

		if !entry.Type().IsRegular() {
			return nil
		}

		return os.Chmod(path, regularFilePermissions)
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPermissionNormalizationFailed, err)
	}

	if err = os.Chmod(r.entrypoint, entrypointPermissions); err != nil {
		return fmt.Errorf("%w: mark entry point executable: %v", ErrPermissionNormalizationFailed, err)
	}

	logger.DebugKV(ctx, "Permissions normalized", "entrypoint", r.entrypoint)

	return nil
}

// publishSymlinks exposes the install through two named bindings in the bin
// directory: a prefix-qualified link that is stable per MAJOR.MINOR, and the
// unqualified "current" link that the most recent install always wins.
// Both are replaced atomically via a temporary name and rename.
func (r *runner) publishSymlinks(ctx context.Context) error {
	if err := os.MkdirAll(r.cfg.BinDir, DefaultDirPermissions); err != nil {
		return fmt.Errorf("create bin directory: %w", err)
	}

	prefixed := filepath.Join(r.cfg.BinDir, r.product.SymlinkBase+r.version.Prefix())
	if err := forceSymlink(r.entrypoint, prefixed); err != nil {
		return fmt.Errorf("publish %s: %w", filepath.Base(prefixed), err)
	}

	current := filepath.Join(r.cfg.BinDir, r.product.SymlinkBase)
	if err := forceSymlink(r.entrypoint, current); err != nil {
		return fmt.Errorf("publish %s: %w", filepath.Base(current), err)
	}

	logger.InfoKV(ctx, "Entry points published",
		"versioned", prefixed, "current", current)

	return nil
}

// forceSymlink points link at target, replacing whatever was there.
// The symlink is created under a temporary name first and renamed over the
// final one so readers never observe a missing entry point.
func forceSymlink(target, link string) error {
	temporary := link + ".tmp"
	_ = os.Remove(temporary)

	if err := os.Symlink(target, temporary); err != nil {
		return err
	}

	if err := os.Rename(temporary, link); err != nil {
		_ = os.Remove(temporary)

		return err
	}

	return nil
}

// verify runs the entry point's version-reporting mode to catch corrupted
// extraction or architecture mismatches the earlier steps cannot detect.
func (r *runner) verify(ctx context.Context) error {
	if r.skipVerify {
		logger.Warn(ctx, "Post-install verification skipped")
		return nil
	}

	report, err := verifier.Report(ctx, r.entrypoint, r.product.VersionArgs, verifier.DefaultCommandTimeout)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrVerificationFailed, err)
	}

	logger.InfoKV(ctx, "Entry point verified", "report", report)

	return nil
}

// writeReceipt records the completed install. Receipts are advisory state
// for the inventory and verify commands; a write failure is logged but does
// not fail an otherwise successful install.
func (r *runner) writeReceipt(ctx context.Context) {
	repo := receipt.NewFileRepository(receipt.DefaultPath(r.cfg.InstallRoot))

	receipts, err := repo.Load(ctx)
	if err != nil && !errors.Is(err, receipt.ErrNotFound) {
		logger.WarnKV(ctx, "Could not read existing receipts", "error", err)
		return
	}

	receipts = receipts.Upsert(toolchain.Receipt{
		Product:      r.productName,
		Version:      r.version.String(),
		Prefix:       r.version.Prefix(),
		Architecture: string(r.arch),
		InstallDir:   r.installDir,
		Entrypoint:   r.entrypoint,
		InstalledAt:  time.Now().UTC(),
	})

	if err = repo.Save(ctx, receipts); err != nil {
		logger.WarnKV(ctx, "Could not record install receipt", "error", err)
	}
}
