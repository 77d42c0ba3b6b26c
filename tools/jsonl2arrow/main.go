// Convert train, validation and test JSON lines files to a dataset
// dict saved on disk.
package main

import (
	"github.com/HuyNg2024/ViQuae/dataset"
	"github.com/HuyNg2024/ViQuae/internal/logger"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "jsonl2arrow",
		Short:         "Parse JSON lines to Arrow",
		Args:          cobra.NoArgs,
		RunE:          run,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.Flags().String("input_dir", "", "Directory with train.jsonl, validation.jsonl and test.jsonl")
	cmd.Flags().String("output_dir", "", "Output directory")
	cmd.Flags().BoolP("verbose", "v", false, "Verbose logging")
	cmd.MarkFlagRequired("input_dir")
	cmd.MarkFlagRequired("output_dir")
	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	verbose, _ := cmd.Flags().GetBool("verbose")
	logger.Setup(verbose)

	in, _ := cmd.Flags().GetString("input_dir")
	out, _ := cmd.Flags().GetString("output_dir")
	return dataset.JSONLToArrow(in, out)
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}
