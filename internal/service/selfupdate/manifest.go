package selfupdate

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/toolstand/toolstand/internal/config"
	"github.com/toolstand/toolstand/internal/logger"
)

// PublishOptions are inputs accepted by the manifest publisher entry point.
type PublishOptions struct {
	// ConfigPath is the optional path to settings YAML file.
	ConfigPath string
	// UpdateFolder, when set, is persisted to the settings so clients and the
	// publisher agree on where artifacts live.
	UpdateFolder string
	// BinaryPath is the freshly built binary to describe; defaults to the
	// platform executable name in the working directory.
	BinaryPath string
	// OutputPath is where the manifest is written; defaults to
	// ManifestFilename in the working directory.
	OutputPath string

	// markerPath overrides the concurrent-run guard location for tests.
	markerPath string
}

// Publish generates the release manifest for the binary so it can be
// uploaded to the update folder together with the manifest. It is the
// public entry point for the CLI.
func Publish(ctx context.Context, opts *PublishOptions) error {
	ctx = logger.WithName(ctx, "publisher")

	markerPath := opts.markerPath
	if markerPath == "" {
		markerPath = DefaultMarkerPath()
	}

	if IsRunningNow(ctx, markerPath) {
		return errAlreadyRunning
	}

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	if opts.UpdateFolder != "" {
		cfg.UpdateFolder = opts.UpdateFolder
		if err = config.Save(opts.ConfigPath, cfg); err != nil {
			return fmt.Errorf("save settings: %w", err)
		}
	}

	manifest, err := BuildManifest(opts.BinaryPath)
	if err != nil {
		return err
	}

	outputPath := opts.OutputPath
	if outputPath == "" {
		outputPath = ManifestFilename
	}

	if err = writeManifest(outputPath, manifest); err != nil {
		return err
	}

	logger.InfoKV(ctx, "Manifest written",
		"path", outputPath, "version", manifest.Version)
	logger.Infof(ctx, "Upload %s and %s to %s to publish the release",
		manifest.Executable, filepath.Base(outputPath), cfg.UpdateFolder)

	return nil
}

// BuildManifest hashes the binary and produces the manifest describing it.
func BuildManifest(binaryPath string) (*Manifest, error) {
	if binaryPath == "" {
		binaryPath = ExecutableName()
	}

	if _, err := os.Stat(binaryPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("binary to publish: %w", err)
		}

		return nil, fmt.Errorf("stat %s: %w", binaryPath, err)
	}

	checksum, err := GetFileChecksum(binaryPath)
	if err != nil {
		return nil, err
	}

	manifest := NewManifest()
	manifest.Files[manifest.Executable] = base64.StdEncoding.EncodeToString(checksum)

	return manifest, nil
}

// writeManifest serializes the manifest to disk.
func writeManifest(path string, manifest *Manifest) error {
	contents, err := yaml.Marshal(manifest)
	if err != nil {
		return err
	}

	return os.WriteFile(path, contents, config.DefaultFilePermissions)
}
