package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Product describes one provisionable toolchain: where its release artifacts
// live and how its entry point is exposed on the PATH.
type Product struct {
	// ReleaseURLTemplate is the vendor's artifact URL with {version} and
	// {arch} placeholders, e.g.
	// https://github.com/PowerShell/PowerShell/releases/download/v{version}/powershell-{version}-linux-{arch}.tar.gz
	ReleaseURLTemplate string `yaml:"release_url_template"`
	// Entrypoint is the path of the executable inside the versioned install
	// directory, relative to the directory root.
	Entrypoint string `yaml:"entrypoint"`
	// SymlinkBase is the unqualified entry point name published in the bin
	// directory (e.g. "pwsh" yields "pwsh" and "pwsh7.5").
	SymlinkBase string `yaml:"symlink_base"`
	// VersionArgs are the arguments that make the entry point report its
	// version, used for post-install verification.
	VersionArgs []string `yaml:"version_args"`
}

// Config holds filesystem layout and catalog settings shared by the commands.
type Config struct {
	// InstallRoot is the directory receiving versioned install directories,
	// one per product and version prefix.
	InstallRoot string `yaml:"install_root"`
	// BinDir is the directory receiving entry point symlinks.
	BinDir string `yaml:"bin_dir"`
	// InterpreterDir is scanned for preinstalled interpreters (pythonM.N).
	InterpreterDir string `yaml:"interpreter_dir"`
	// UpdateFolder is the URL where toolstand's own update artifacts are hosted.
	UpdateFolder string `yaml:"update_folder"`
	// Timeout bounds a single artifact download.
	Timeout time.Duration `yaml:"timeout"`
	// Products is the catalog of provisionable toolchains keyed by name.
	Products map[string]Product `yaml:"products"`
}

const (
	// DefaultConfigFilename is the default filename for provisioner settings.
	DefaultConfigFilename = "toolstand-settings.yaml"

	// DefaultInstallRoot receives versioned install directories.
	DefaultInstallRoot = "/opt/toolchains"

	// DefaultBinDir receives entry point symlinks.
	DefaultBinDir = "/usr/local/bin"

	// DefaultInterpreterDir is where distro-packaged interpreters live.
	DefaultInterpreterDir = "/usr/bin"

	// DefaultTimeout bounds a single artifact download.
	DefaultTimeout = 5 * time.Minute

	// DefaultFilePermissions is the default file permission for config and state files.
	DefaultFilePermissions = 0o600
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errNoVersionPlaceholder is returned when a release URL template cannot
	// receive a version.
	errNoVersionPlaceholder = errors.New("release URL template must contain {version}")
	// errIncompleteProduct is returned when a catalog entry misses required fields.
	errIncompleteProduct = errors.New("product must declare release_url_template, entrypoint and symlink_base")
)

// Default returns the built-in configuration: the PowerShell catalog entry
// and the conventional container image layout.
func Default() *Config {
	cfg := &Config{
		Products: map[string]Product{
			"powershell": {
				ReleaseURLTemplate: "https://github.com/PowerShell/PowerShell/releases/download/" +
					"v{version}/powershell-{version}-linux-{arch}.tar.gz",
				Entrypoint:  "pwsh",
				SymlinkBase: "pwsh",
				VersionArgs: []string{"--version"},
			},
		},
	}
	applyDefaults(cfg)

	return cfg
}

// Load reads configuration from the provided path and validates essential fields.
// A missing file is not an error: the built-in defaults are returned so the
// provisioner works in a fresh image without any settings file.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}

		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if cfg.Products == nil {
		cfg.Products = Default().Products
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes settings to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks the provided settings for required fields and formatting,
// filling omitted fields with defaults.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	applyDefaults(cfg)

	for name, product := range cfg.Products {
		if product.ReleaseURLTemplate == "" || product.Entrypoint == "" || product.SymlinkBase == "" {
			return fmt.Errorf("product %s: %w", name, errIncompleteProduct)
		}

		if !strings.Contains(product.ReleaseURLTemplate, "{version}") {
			return fmt.Errorf("product %s: %w", name, errNoVersionPlaceholder)
		}
	}

	if cfg.UpdateFolder == "" {
		return nil
	}

	if _, err := url.ParseRequestURI(cfg.UpdateFolder); err != nil {
		return fmt.Errorf("invalid update folder URI: %w", err)
	}

	return nil
}

// applyDefaults fills omitted layout fields with built-in values.
func applyDefaults(cfg *Config) {
	if cfg.InstallRoot == "" {
		cfg.InstallRoot = DefaultInstallRoot
	}

	if cfg.BinDir == "" {
		cfg.BinDir = DefaultBinDir
	}

	if cfg.InterpreterDir == "" {
		cfg.InterpreterDir = DefaultInterpreterDir
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
}
