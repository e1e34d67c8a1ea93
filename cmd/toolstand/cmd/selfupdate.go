package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/toolstand/toolstand/internal/service/selfupdate"
)

// selfUpdateCmd replaces the running binary with the published release.
var selfUpdateCmd = &cobra.Command{
	Use:   "self-update",
	Short: "Update the toolstand binary from the configured update folder",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
		defer stop()

		options := &selfupdate.Options{
			ConfigPath: configPath,
		}

		return selfupdate.Run(ctx, options)
	},
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.AddCommand(selfUpdateCmd)
}
