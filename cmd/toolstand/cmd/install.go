package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/toolstand/toolstand/internal/service/installer"
)

var (
	// skipVerify disables the post-install version check.
	skipVerify bool

	// installCmd downloads and provisions one pinned toolchain release.
	installCmd = &cobra.Command{
		Use:   "install <product> <version>",
		Short: "Download and provision a pinned toolchain release",
		Long: `Downloads the release archive for the host architecture, extracts it into
the versioned install directory, normalizes permissions down to a single
executable entry point, publishes the symlinks and verifies the result.`,
		Args: cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			options := &installer.Options{
				ConfigPath: configPath,
				Product:    args[0],
				Version:    args[1],
				SkipVerify: skipVerify,
			}

			return installer.Run(ctx, options)
		},
	}
)

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	installCmd.Flags().BoolVar(&skipVerify, "skip-verify", false, "skip the post-install version check")
	rootCmd.AddCommand(installCmd)
}
