package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/toolstand/toolstand/internal/config"
	"github.com/toolstand/toolstand/internal/domain/toolchain"
	"github.com/toolstand/toolstand/internal/logger"
	"github.com/toolstand/toolstand/internal/platform"
	"github.com/toolstand/toolstand/internal/service/installer"
	"github.com/toolstand/toolstand/internal/version"
)

// Exit codes per failure category, so scripted callers can branch without
// parsing log output.
const (
	exitFailure            = 1
	exitBadRequest         = 2
	exitUnsupportedArch    = 3
	exitDownloadFailed     = 4
	exitExtractionFailed   = 5
	exitPermissionsFailed  = 6
	exitVerificationFailed = 7
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// logLevel controls global logger verbosity.
	logLevel string

	// rootCmd represents the base command for the toolchain provisioner.
	rootCmd = &cobra.Command{
		Use:   "toolstand",
		Short: "Provision pinned toolchain releases into a container image.",
		Long: `Toolstand installs pinned toolchain releases (e.g. PowerShell) side by side
under a versioned install root and publishes their entry points as symlinks.

Installs are keyed by MAJOR.MINOR: a patch release replaces its prefix in
place, while other prefixes stay untouched. Every run is safe to repeat.`,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			level, ok := logger.ParseLogLevel(logLevel)
			if !ok {
				return fmt.Errorf("unknown log level %q", logLevel)
			}

			logger.SetLevel(level)

			return nil
		},
	}
)

// Execute runs the toolstand CLI and exits with a category-specific status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(exitCode(err))
	}
}

// exitCode maps the failure taxonomy to distinct exit statuses.
func exitCode(err error) int {
	switch {
	case errors.Is(err, toolchain.ErrMalformedVersion),
		errors.Is(err, installer.ErrUnknownProduct):
		return exitBadRequest
	case errors.Is(err, platform.ErrUnsupportedArchitecture):
		return exitUnsupportedArch
	case errors.Is(err, installer.ErrDownloadFailed):
		return exitDownloadFailed
	case errors.Is(err, installer.ErrExtractionFailed):
		return exitExtractionFailed
	case errors.Is(err, installer.ErrPermissionNormalizationFailed):
		return exitPermissionsFailed
	case errors.Is(err, installer.ErrVerificationFailed):
		return exitVerificationFailed
	default:
		return exitFailure
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.PersistentFlags().
		StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.PersistentFlags().
		StringVarP(&logLevel, "log-level", "l", "info", "log level (debug, info, warn, error)")
}
