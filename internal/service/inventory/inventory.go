package inventory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"text/tabwriter"

	"github.com/toolstand/toolstand/internal/config"
	"github.com/toolstand/toolstand/internal/domain/toolchain"
	"github.com/toolstand/toolstand/internal/logger"
	"github.com/toolstand/toolstand/internal/repository/receipt"
)

// Options are inputs accepted by the inventory entry point.
type Options struct {
	// ConfigPath is the optional path to settings YAML file.
	ConfigPath string
	// Product limits the listing to one catalog entry; empty lists everything.
	Product string
	// Out receives the rendered listing; defaults to standard output.
	Out io.Writer
}

// Entry is one installed toolchain release in the listing.
type Entry struct {
	Product      string
	Version      string
	Prefix       string
	Architecture string
	InstallDir   string
	// Current reports whether this release owns the product's unqualified
	// symlink in the bin directory.
	Current bool
}

// Interpreter is a versioned interpreter binary found outside the install
// root, e.g. a distribution-provided python3.9 next to a provisioned 3.13.
type Interpreter struct {
	Name   string
	Prefix string
	Path   string
}

// interpreterPattern matches versioned interpreter binaries such as
// "python3.13"; the bare "python3" alias is deliberately excluded.
var interpreterPattern = regexp.MustCompile(`^python([0-9]+\.[0-9]+)$`)

// Run renders the installed-toolchain listing and is the public entry point
// for the CLI. An empty inventory is not an error.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "inventory")

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

	out := opts.Out
	if out == nil {
		out = os.Stdout
	}

	entries := List(cfg, receipts)
	if len(entries) == 0 {
		fmt.Fprintln(out, "no toolchains installed")
	} else {
		render(out, entries)
	}

	interpreters, err := DiscoverInterpreters(cfg.InterpreterDir)
	if err != nil {
		logger.WarnKV(ctx, "Interpreter discovery skipped", "error", err)

		return nil
	}

	for _, interp := range interpreters {
		logger.DebugKV(ctx, "Interpreter discovered",
			"name", interp.Name, "prefix", interp.Prefix, "path", interp.Path)
	}

	return nil
}

// List converts receipts into listing entries, marking the release whose
// entry point currently backs the product's unqualified symlink.
func List(cfg *config.Config, receipts toolchain.Receipts) []Entry {
	entries := make([]Entry, 0, len(receipts))

	for _, r := range receipts.Sorted() {
		entries = append(entries, Entry{
			Product:      r.Product,
			Version:      r.Version,
			Prefix:       r.Prefix,
			Architecture: r.Architecture,
			InstallDir:   r.InstallDir,
			Current:      isCurrent(cfg, r),
		})
	}

	return entries
}

// isCurrent resolves the product's unqualified symlink and compares it to
// the receipt's entry point. A missing or dangling link marks nothing.
func isCurrent(cfg *config.Config, r toolchain.Receipt) bool {
	product, ok := cfg.Products[r.Product]
	if !ok {
		return false
	}

	target, err := os.Readlink(filepath.Join(cfg.BinDir, product.SymlinkBase))
	if err != nil {
		return false
	}

	return target == r.Entrypoint
}

// DiscoverInterpreters scans a directory for versioned interpreter binaries
// and returns them ordered by version, oldest first. A missing directory
// yields an empty result.
func DiscoverInterpreters(dir string) ([]Interpreter, error) {
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}

		return nil, fmt.Errorf("scan %s: %w", dir, err)
	}

	var found []Interpreter

	for _, entry := range dirEntries {
		if entry.IsDir() {
			continue
		}

		match := interpreterPattern.FindStringSubmatch(entry.Name())
		if match == nil {
			continue
		}

		found = append(found, Interpreter{
			Name:   entry.Name(),
			Prefix: match[1],
			Path:   filepath.Join(dir, entry.Name()),
		})
	}

	sort.Slice(found, func(i, j int) bool {
		left, leftErr := toolchain.ParseVersion(found[i].Prefix)
		right, rightErr := toolchain.ParseVersion(found[j].Prefix)

		if leftErr != nil || rightErr != nil {
			return found[i].Name < found[j].Name
		}

		return left.LessThan(right)
	})

	return found, nil
}

// render writes the listing as an aligned table.
func render(out io.Writer, entries []Entry) {
	writer := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "PRODUCT\tVERSION\tPREFIX\tARCH\tCURRENT\tINSTALL DIR")

	for _, entry := range entries {
		current := ""
		if entry.Current {
			current = "*"
		}

		fmt.Fprintf(writer, "%s\t%s\t%s\t%s\t%s\t%s\n",
			entry.Product, entry.Version, entry.Prefix,
			entry.Architecture, current, entry.InstallDir)
	}

	_ = writer.Flush()
}
