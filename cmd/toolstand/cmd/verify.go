package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/toolstand/toolstand/internal/service/verifier"
)

// verifyCmd re-runs the version check against installed entry points.
var verifyCmd = &cobra.Command{
	Use:   "verify [product]",
	Short: "Re-verify installed toolchains by running their entry points",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
		defer stop()

		var product string
		if len(args) > 0 {
			product = args[0]
		}

		options := &verifier.Options{
			ConfigPath: configPath,
			Product:    product,
		}

		return verifier.Run(ctx, options)
	},
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.AddCommand(verifyCmd)
}
