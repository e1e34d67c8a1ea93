package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/toolstand/toolstand/internal/service/selfupdate"
)

var (
	// updateFolder is persisted to settings when provided.
	updateFolder string
	// publishBinary is the freshly built binary to describe.
	publishBinary string
	// publishOutput is where the manifest is written.
	publishOutput string

	// publishCmd generates the release manifest for distribution.
	publishCmd = &cobra.Command{
		Use:   "publish-manifest",
		Short: "Generate the release manifest for the toolstand binary",
		Long: `Hashes the built binary and writes the YAML manifest that self-update
clients consume. Upload the binary and the manifest to the update folder to
publish the release.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			options := &selfupdate.PublishOptions{
				ConfigPath:   configPath,
				UpdateFolder: updateFolder,
				BinaryPath:   publishBinary,
				OutputPath:   publishOutput,
			}

			return selfupdate.Publish(ctx, options)
		},
	}
)

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	publishCmd.Flags().StringVarP(&updateFolder, "update-folder", "u", "", "URL where update artifacts are hosted")
	publishCmd.Flags().StringVarP(&publishBinary, "binary", "b", "", "path to the built binary (defaults to ./toolstand)")
	publishCmd.Flags().StringVarP(&publishOutput, "output", "o", "", "manifest output path")
	rootCmd.AddCommand(publishCmd)
}
