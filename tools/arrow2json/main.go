// Write the first rows of a stored dataset as JSON.
package main

import (
	"os"

	"github.com/HuyNg2024/ViQuae/dataset"
	"github.com/HuyNg2024/ViQuae/internal/logger"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "arrow2json",
		Short: "Convert a dataset saved on disk to a JSON array",
		Args:  cobra.NoArgs,
		RunE:  run,
	}
	cmd.Flags().String("dataset", "", "Dataset dict or split directory")
	cmd.Flags().String("output", "converted_dataset.json", "Output file")
	cmd.Flags().Int("limit", dataset.DefaultLimit, "Number of rows to write (0 for all)")
	cmd.Flags().String("split", "", "Split of a dataset dict (default the first one)")
	cmd.Flags().Bool("lines", false, "Write JSON lines instead of an array")
	cmd.Flags().BoolP("verbose", "v", false, "Verbose logging")
	cmd.MarkFlagRequired("dataset")
	return cmd
}

// run reports conversion errors without failing.
func run(cmd *cobra.Command, args []string) error {
	verbose, _ := cmd.Flags().GetBool("verbose")
	logger.Setup(verbose)

	path, _ := cmd.Flags().GetString("dataset")
	output, _ := cmd.Flags().GetString("output")
	limit, _ := cmd.Flags().GetInt("limit")
	split, _ := cmd.Flags().GetString("split")
	lines, _ := cmd.Flags().GetBool("lines")

	if err := dataset.ArrowToJSON(path, split, output, limit, lines); err != nil {
		log.Errorf("Error while processing dataset: %v", err)
	}
	return nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
