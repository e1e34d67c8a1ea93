package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestDefault ensures the built-in catalog and layout are complete.
func TestDefault(t *testing.T) {
	t.Parallel()

	cfg := Default()
	require.Equal(t, DefaultInstallRoot, cfg.InstallRoot)
	require.Equal(t, DefaultBinDir, cfg.BinDir)
	require.Equal(t, DefaultTimeout, cfg.Timeout)

	product, ok := cfg.Products["powershell"]
	require.True(t, ok)
	require.Contains(t, product.ReleaseURLTemplate, "{version}")
	require.Contains(t, product.ReleaseURLTemplate, "{arch}")
	require.Equal(t, "pwsh", product.SymlinkBase)
	require.NoError(t, Validate(cfg))
}

// TestLoadMissingFile verifies that an absent settings file yields defaults.
func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
}

// TestLoadAppliesDefaults verifies omitted fields are filled on load.
func TestLoadAppliesDefaults(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), DefaultConfigFilename)
	contents := `
install_root: /srv/toolchains
products:
  powershell:
    release_url_template: https://example.com/v{version}/pwsh-{arch}.tar.gz
    entrypoint: pwsh
    symlink_base: pwsh
`
	require.NoError(t, os.WriteFile(path, []byte(contents), DefaultFilePermissions))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "/srv/toolchains", cfg.InstallRoot)
	require.Equal(t, DefaultBinDir, cfg.BinDir)
	require.Equal(t, DefaultTimeout, cfg.Timeout)
}

// TestValidate covers required product fields and URL checks.
func TestValidate(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Products["broken"] = Product{ReleaseURLTemplate: "https://example.com"}
	require.Error(t, Validate(cfg))

	cfg = Default()
	cfg.Products["noversion"] = Product{
		ReleaseURLTemplate: "https://example.com/latest.tar.gz",
		Entrypoint:         "tool",
		SymlinkBase:        "tool",
	}
	require.Error(t, Validate(cfg))

	cfg = Default()
	cfg.UpdateFolder = "not a url"
	require.Error(t, Validate(cfg))
}

// TestSaveAndReload round-trips settings through YAML.
func TestSaveAndReload(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), DefaultConfigFilename)
	cfg := Default()
	cfg.Timeout = 42 * time.Second
	cfg.UpdateFolder = "https://updates.example.com/toolstand"

	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg, loaded)
}
