// Attach the Commons images of a dump to the entities of a subset.
package main

import (
	"context"
	"os"
	"os/signal"

	wikidump "github.com/HuyNg2024/ViQuae"
	"github.com/HuyNg2024/ViQuae/internal/config"
	"github.com/HuyNg2024/ViQuae/internal/logger"
	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wikidump <subset>",
		Short: "Attach Commons images to the entities of a dataset subset",
		Long: `Reads <data-root>/meerqat_<subset>/entities.json, goes through the Commons
dump shards already in the dump directory, attaches every image whose categories
belong to an entity with questions, and writes the entities back.`,
		Args:          cobra.ExactArgs(1),
		RunE:          runAttach,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			verbose, _ := cmd.Flags().GetBool(config.FlagVerbose)
			logger.Setup(verbose)
		},
	}
	config.AddFlags(cmd.PersistentFlags())
	cmd.Flags().String("report", "", "Also write a markdown summary to this file")
	cmd.Flags().StringSlice("extensions", nil,
		"File types to keep (default png,jpg,jpeg,tiff,gif)")

	cmd.AddCommand(newFetchCmd())
	return cmd
}

func newFetchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Download the dump shards missing from the dump directory",
		Args:  cobra.NoArgs,
		RunE:  runFetch,
	}
	cmd.Flags().Int("limit", 0, "Download at most this many shards (0 for all)")
	return cmd
}

func runFetch(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromFlags(cmd.Flags())
	if err != nil {
		return err
	}
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}

	f := wikidump.NewFetcher(cfg.DumpPath(), cfg.MaxThreads)
	f.Limit = limit
	paths, err := f.Fetch(cmd.Context(), cfg.DumpURL)
	if err != nil {
		return err
	}
	log.Infof("%d dump files in %s", len(paths), cfg.DumpPath())
	return nil
}

func runAttach(cmd *cobra.Command, args []string) error {
	subset := args[0]
	cfg, err := config.FromFlags(cmd.Flags())
	if err != nil {
		return err
	}
	if exts, _ := cmd.Flags().GetStringSlice("extensions"); len(exts) > 0 {
		cfg.Extensions = exts
	}
	report, err := cmd.Flags().GetString("report")
	if err != nil {
		return err
	}

	path := cfg.EntitiesPath(subset)
	es, err := wikidump.LoadEntities(path)
	if err != nil {
		return errors.Wrap(err, "loading entities")
	}
	m := wikidump.NewMatcher(es, cfg.Extensions)
	log.Infof("Loaded %s entities, %s categories of interest",
		humanize.Comma(int64(len(es))),
		humanize.Comma(int64(len(wikidump.CategoriesOfInterest(es)))))

	shards, err := m.ProcessDump(cfg.DumpPath())
	if err != nil {
		return err
	}
	if len(shards) == 0 {
		log.Warnf("No dump shards in %s, try %s fetch", cfg.DumpPath(), cmd.Root().Name())
	}

	if err := es.Save(path); err != nil {
		return errors.Wrap(err, "saving entities")
	}
	log.Infof("Attached %s images to entities in %s",
		humanize.Comma(m.Stats.Attached), path)

	s := wikidump.Describe(es.ImageCounts())
	s.WriteTable(cmd.OutOrStdout(), "images")
	if report == "" {
		return nil
	}
	f, err := os.Create(report)
	if err != nil {
		return err
	}
	err = s.WriteMarkdown(f, "Commons images of "+subset, m.Stats, shards)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return errors.Wrapf(err, "writing %s", report)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		log.Fatalf("Error: %v", err)
	}
}
