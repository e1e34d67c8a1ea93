package inventory

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/toolstand/toolstand/internal/config"
	"github.com/toolstand/toolstand/internal/domain/toolchain"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()

	root := t.TempDir()

	cfg := config.Default()
	cfg.InstallRoot = filepath.Join(root, "toolchains")
	cfg.BinDir = filepath.Join(root, "bin")
	cfg.InterpreterDir = filepath.Join(root, "interpreters")

	require.NoError(t, os.MkdirAll(cfg.BinDir, 0o755))

	return cfg
}

func receiptFor(cfg *config.Config, version string) toolchain.Receipt {
	prefix := version[:len(version)-2]
	installDir := filepath.Join(cfg.InstallRoot, "powershell", prefix)

	return toolchain.Receipt{
		Product:      "powershell",
		Version:      version,
		Prefix:       prefix,
		Architecture: "x64",
		InstallDir:   installDir,
		Entrypoint:   filepath.Join(installDir, "pwsh"),
		InstalledAt:  time.Now().UTC(),
	}
}

func TestListMarksCurrent(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	newer := receiptFor(cfg, "7.5.3")
	older := receiptFor(cfg, "7.4.1")

	base := cfg.Products["powershell"].SymlinkBase
	require.NoError(t, os.Symlink(newer.Entrypoint, filepath.Join(cfg.BinDir, base)))

	entries := List(cfg, toolchain.Receipts{newer, older})
	require.Len(t, entries, 2)

	// Sorted ascending by version, so the older release comes first.
	require.Equal(t, "7.4.1", entries[0].Version)
	require.False(t, entries[0].Current)
	require.Equal(t, "7.5.3", entries[1].Version)
	require.True(t, entries[1].Current)
}

func TestListWithoutSymlink(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	entries := List(cfg, toolchain.Receipts{receiptFor(cfg, "7.5.3")})

	require.Len(t, entries, 1)
	require.False(t, entries[0].Current)
}

func TestDiscoverInterpreters(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	for _, name := range []string{"python3.13", "python3.9", "python3", "pythonx", "pip3.13"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("#!/bin/sh\n"), 0o755))
	}

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "python2.7"), 0o755))

	found, err := DiscoverInterpreters(dir)
	require.NoError(t, err)
	require.Len(t, found, 2)

	// Numeric ordering, not lexical: 3.9 precedes 3.13.
	require.Equal(t, "python3.9", found[0].Name)
	require.Equal(t, "3.9", found[0].Prefix)
	require.Equal(t, "python3.13", found[1].Name)
	require.Equal(t, "3.13", found[1].Prefix)
	require.Equal(t, filepath.Join(dir, "python3.13"), found[1].Path)
}

func TestDiscoverInterpretersMissingDir(t *testing.T) {
	t.Parallel()

	found, err := DiscoverInterpreters(filepath.Join(t.TempDir(), "absent"))
	require.NoError(t, err)
	require.Empty(t, found)
}
