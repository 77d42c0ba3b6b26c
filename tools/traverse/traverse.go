// Walk the Commons dump shards and count what they hold.
package main

import (
	"context"
	"encoding/gob"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"
	"sync"
	"time"

	wikidump "github.com/HuyNg2024/ViQuae"
	"github.com/HuyNg2024/ViQuae/internal/config"
	"github.com/HuyNg2024/ViQuae/internal/logger"
	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/table"
	"github.com/jedib0t/go-pretty/text"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var reportFreq = int64(100000)

type census struct {
	mu         sync.Mutex
	pages      int64
	namespaces map[int]int64
	extensions map[string]int64
	categories int64
	badCoords  int64
}

func newCensus() *census {
	return &census{namespaces: map[int]int64{}, extensions: map[string]int64{}}
}

func (c *census) count(p *wikidump.Page, cats int, badCoords bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pages++
	c.namespaces[p.NS]++
	if strings.HasPrefix(p.Title, wikidump.FilePrefix) {
		c.extensions[wikidump.Extension(p.Title)]++
	}
	c.categories += int64(cats)
	if badCoords {
		c.badCoords++
	}
}

func (c *census) write(w io.Writer) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.Style().Format.Header = text.FormatDefault
	t.AppendHeader(table.Row{"what", "count"})
	t.AppendRow(table.Row{"pages", humanize.Comma(c.pages)})
	t.AppendRow(table.Row{"category links", humanize.Comma(c.categories)})
	t.AppendRow(table.Row{"bad locations", humanize.Comma(c.badCoords)})

	var nss []int
	for ns := range c.namespaces {
		nss = append(nss, ns)
	}
	sort.Ints(nss)
	for _, ns := range nss {
		t.AppendRow(table.Row{fmt.Sprintf("namespace %d", ns), humanize.Comma(c.namespaces[ns])})
	}

	var exts []string
	for ext := range c.extensions {
		exts = append(exts, ext)
	}
	sort.Slice(exts, func(i, j int) bool {
		if c.extensions[exts[i]] != c.extensions[exts[j]] {
			return c.extensions[exts[i]] > c.extensions[exts[j]]
		}
		return exts[i] < exts[j]
	})
	for _, ext := range exts {
		t.AppendRow(table.Row{"." + ext, humanize.Comma(c.extensions[ext])})
	}
	t.Render()
}

type walker struct {
	workers        int
	parseLocations bool
	census         *census
}

func (w *walker) pageHandler(ch <-chan *wikidump.Page, cherr chan<- *wikidump.Page, wg *sync.WaitGroup) {
	defer wg.Done()
	for p := range ch {
		rev := p.Revision()
		if rev == nil {
			w.census.count(p, 0, false)
			continue
		}
		bad := false
		if w.parseLocations {
			_, err := wikidump.ParseLocation(rev.Text)
			if err != nil && err != wikidump.ErrNoLocation {
				log.Debugf("Error parsing location of %q: %v", p.Title, err)
				bad = true
				cherr <- p
			}
		}
		w.census.count(p, len(wikidump.FindCategories(rev.Text)), bad)
	}
}

func errorHandler(path string, ch <-chan *wikidump.Page, done chan<- error) {
	var g *gob.Encoder
	var f *os.File
	var err error
	for p := range ch {
		if err != nil {
			continue
		}
		if g == nil {
			if f, err = os.Create(path); err != nil {
				continue
			}
			g = gob.NewEncoder(f)
		}
		err = g.Encode(p)
	}
	if f != nil {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}
	done <- err
}

// walk feeds the pages of the shards to the workers.  Pages with an
// unparseable location are gob-encoded to errPath.
func (w *walker) walk(ctx context.Context, shards []string, errPath string) error {
	ch := make(chan *wikidump.Page, 1000)
	cherr := make(chan *wikidump.Page, 10)
	done := make(chan error, 1)
	wg := &sync.WaitGroup{}
	for i := 0; i < w.workers; i++ {
		wg.Add(1)
		go w.pageHandler(ch, cherr, wg)
	}
	go errorHandler(errPath, cherr, done)

	err := w.feed(ctx, shards, ch)
	close(ch)
	wg.Wait()
	close(cherr)
	if gerr := <-done; err == nil && gerr != nil {
		err = errors.Wrapf(gerr, "writing %s", errPath)
	}
	return err
}

func (w *walker) feed(ctx context.Context, shards []string, ch chan<- *wikidump.Page) error {
	pages := int64(0)
	start := time.Now()
	prev := start
	for _, shard := range shards {
		r, err := wikidump.OpenShard(shard)
		if err != nil {
			return err
		}
		p, err := wikidump.NewParser(r)
		for err == nil {
			var page *wikidump.Page
			page, err = p.Next()
			if err != nil {
				break
			}
			select {
			case ch <- page:
			case <-ctx.Done():
				err = ctx.Err()
			}

			pages++
			if pages%reportFreq == 0 {
				now := time.Now()
				d := now.Sub(prev)
				log.Infof("Processed %s pages total (%.2f/s)",
					humanize.Comma(pages), float64(reportFreq)/d.Seconds())
				prev = now
			}
		}
		r.Close()
		if err != io.EOF {
			return errors.Wrapf(err, "parsing %s", shard)
		}
	}
	d := time.Since(start)
	log.Infof("Walked %s pages in %v (%.2f p/s)",
		humanize.Comma(pages), d.Round(time.Millisecond), float64(pages)/d.Seconds())
	return nil
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "traverse [shard...]",
		Short:         "Count the pages, file types and categories of the dump shards",
		RunE:          run,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	config.AddFlags(cmd.Flags())
	cmd.Flags().Int("workers", 8, "Number of page workers")
	cmd.Flags().Bool("parse-locations", false, "Try to parse locations while traversing")
	cmd.Flags().String("errors", "errors.gob", "Where to save pages with bad locations")
	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	verbose, _ := cmd.Flags().GetBool(config.FlagVerbose)
	logger.Setup(verbose)

	cfg, err := config.FromFlags(cmd.Flags())
	if err != nil {
		return err
	}
	shards := args
	if len(shards) == 0 {
		if shards, err = wikidump.FindShards(cfg.DumpPath()); err != nil {
			return err
		}
	}
	w := &walker{census: newCensus()}
	w.workers, _ = cmd.Flags().GetInt("workers")
	w.parseLocations, _ = cmd.Flags().GetBool("parse-locations")
	errPath, _ := cmd.Flags().GetString("errors")
	if w.workers < 1 {
		w.workers = 1
	}

	if err := w.walk(cmd.Context(), shards, errPath); err != nil {
		return err
	}
	w.census.write(cmd.OutOrStdout())
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		log.Fatalf("Error: %v", err)
	}
}
