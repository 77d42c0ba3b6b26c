// Load the images attached to the entities of a subset into a
// document database.
package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	wikidump "github.com/HuyNg2024/ViQuae"
	"github.com/HuyNg2024/ViQuae/internal/config"
	"github.com/HuyNg2024/ViQuae/internal/logger"
	"github.com/HuyNg2024/ViQuae/internal/sink"
	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

type opener func(cmd *cobra.Command, cfg *config.Config) (sink.Sink, error)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "imgload",
		Short:         "Load entity images into a document database",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			verbose, _ := cmd.Flags().GetBool(config.FlagVerbose)
			logger.Setup(verbose)
		},
	}
	config.AddFlags(cmd.PersistentFlags())

	couch := loadCmd("couch", "CouchDB", openCouch)
	couch.Flags().String("url", "http://localhost:5984/images", "Database URL")

	es := loadCmd("es", "ElasticSearch", openElastic)
	es.Flags().String("url", "http://localhost:9200", "Server URL")
	es.Flags().String("index", "images", "Index name")

	mongo := loadCmd("mongo", "MongoDB", openMongo)
	mongo.Flags().String("url", "localhost", "Server(s) to dial")
	mongo.Flags().String("db", "viquae", "Database name")
	mongo.Flags().String("collection", "images", "Collection name")

	cb := loadCmd("couchbase", "Couchbase", openCouchbase)
	cb.Flags().String("url", "http://localhost:8091/", "Couchbase URL")
	cb.Flags().String("pool", "default", "Pool name")
	cb.Flags().String("bucket", "default", "Bucket name")

	sqlite := loadCmd("sqlite", "SQLite", openSQLite)
	sqlite.Flags().String("db", "", "Database file (default <data-root>/images.db)")

	cmd.AddCommand(couch, es, mongo, cb, sqlite)
	return cmd
}

func loadCmd(name, what string, open opener) *cobra.Command {
	return &cobra.Command{
		Use:   name + " <subset>",
		Short: "Load the images of a subset into " + what,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return load(cmd, args[0], open)
		},
	}
}

func load(cmd *cobra.Command, subset string, open opener) error {
	cfg, err := config.FromFlags(cmd.Flags())
	if err != nil {
		return err
	}
	path := cfg.EntitiesPath(subset)
	es, err := wikidump.LoadEntities(path)
	if err != nil {
		return errors.Wrap(err, "loading entities")
	}
	docs := sink.Docs(es)
	log.Infof("Loading %s images of %s entities",
		humanize.Comma(int64(len(docs))), humanize.Comma(int64(len(es))))

	s, err := open(cmd, cfg)
	if err != nil {
		return err
	}
	start := time.Now()
	loaded, failed := sink.Load(cmd.Context(), s, docs, cfg.MaxThreads)
	if err := s.Close(); err != nil {
		return err
	}
	d := time.Since(start)
	log.Infof("Loaded %s documents in %v (%.2f/s), %s failed",
		humanize.Comma(loaded), d.Round(time.Millisecond),
		float64(loaded)/d.Seconds(), humanize.Comma(failed))
	return cmd.Context().Err()
}

func openCouch(cmd *cobra.Command, cfg *config.Config) (sink.Sink, error) {
	url, _ := cmd.Flags().GetString("url")
	return sink.NewCouch(url)
}

func openElastic(cmd *cobra.Command, cfg *config.Config) (sink.Sink, error) {
	url, _ := cmd.Flags().GetString("url")
	index, _ := cmd.Flags().GetString("index")
	return sink.NewElastic(url, index), nil
}

func openMongo(cmd *cobra.Command, cfg *config.Config) (sink.Sink, error) {
	url, _ := cmd.Flags().GetString("url")
	db, _ := cmd.Flags().GetString("db")
	coll, _ := cmd.Flags().GetString("collection")
	return sink.NewMongo(url, db, coll)
}

func openCouchbase(cmd *cobra.Command, cfg *config.Config) (sink.Sink, error) {
	url, _ := cmd.Flags().GetString("url")
	pool, _ := cmd.Flags().GetString("pool")
	bucket, _ := cmd.Flags().GetString("bucket")
	return sink.NewCouchbase(url, pool, bucket)
}

func openSQLite(cmd *cobra.Command, cfg *config.Config) (sink.Sink, error) {
	path, _ := cmd.Flags().GetString("db")
	if path == "" {
		path = filepath.Join(cfg.DataRoot, "images.db")
	}
	return sink.OpenSQLite(path)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		log.Fatalf("Error: %v", err)
	}
}
