package cmd

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/lehigh-university-libraries/promptcaptioner/internal/dataset"
	"github.com/spf13/cobra"
)

func newExportCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export [DIR]",
		Short: "Export a captioned folder as a Parquet dataset",
		Long: `Collect every image and video in DIR together with its sidecar caption and write the
pairs to a Parquet file. Files without a caption are left out.`,
		Example: `  promptcaptioner export ./shots --output shots.parquet`,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, ok, err := pickDir(args, "Select folder to export")
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "No folder selected. Exiting.")
				return nil
			}

			records, err := dataset.Collect(dir)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				slog.Warn("No captioned files found", "dir", dir)
				return nil
			}

			if output == "" {
				output = filepath.Join(dir, "captions.parquet")
			}
			if err := dataset.Write(output, records); err != nil {
				return err
			}

			absPath, _ := filepath.Abs(output)
			slog.Info("Dataset exported", "records", len(records), "path", absPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&output, "output", "", "Parquet file to write (defaults to DIR/captions.parquet)")

	return cmd
}
