package verifier

import (
	"context"
	"errors"
	"fmt"

	"github.com/toolstand/toolstand/internal/config"
	"github.com/toolstand/toolstand/internal/domain/toolchain"
	"github.com/toolstand/toolstand/internal/logger"
	"github.com/toolstand/toolstand/internal/repository/receipt"
)

// Options are inputs accepted by the verify entry point.
type Options struct {
	// ConfigPath is the optional path to settings YAML file.
	ConfigPath string
	// Product limits verification to one catalog entry; empty verifies everything.
	Product string
}

// errNothingInstalled indicates no receipts matched the requested product.
var errNothingInstalled = errors.New("nothing installed")

// Run re-verifies installed toolchains by invoking each recorded entry point
// and is the public entry point for the CLI.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "verifier")

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	repo := receipt.NewFileRepository(receipt.DefaultPath(cfg.InstallRoot))

	receipts, err := repo.Load(ctx)
	if err != nil && !errors.Is(err, receipt.ErrNotFound) {
		return fmt.Errorf("load receipts: %w", err)
	}

	if opts.Product != "" {
		receipts = receipts.ForProduct(opts.Product)
	}

	if len(receipts) == 0 {
		return fmt.Errorf("%w for %q", errNothingInstalled, opts.Product)
	}

	for _, r := range receipts.Sorted() {
		report, reportErr := Report(ctx, r.Entrypoint, versionArgs(cfg, r), 0)
		if reportErr != nil {
			return fmt.Errorf("verify %s %s: %w", r.Product, r.Version, reportErr)
		}

		logger.InfoKV(ctx, "Entry point verified",
			"product", r.Product, "version", r.Version, "report", report)
	}

	return nil
}

// versionArgs resolves the version-report arguments from the catalog entry
// the receipt was installed from.
func versionArgs(cfg *config.Config, r toolchain.Receipt) []string {
	if product, ok := cfg.Products[r.Product]; ok {
		return product.VersionArgs
	}

	return []string{"--version"}
}
