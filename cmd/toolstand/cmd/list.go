package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/toolstand/toolstand/internal/service/inventory"
)

// listCmd renders the installed-toolchain inventory.
var listCmd = &cobra.Command{
	Use:   "list [product]",
	Short: "List installed toolchain releases",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
		defer stop()

		var product string
		if len(args) > 0 {
			product = args[0]
		}

		options := &inventory.Options{
			ConfigPath: configPath,
			Product:    product,
			Out:        os.Stdout,
		}

		return inventory.Run(ctx, options)
	},
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.AddCommand(listCmd)
}
