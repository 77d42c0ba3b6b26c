package wikidump

import (
	"io"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
)

// How many pages go by between progress reports.
var ReportFreq = int64(100000)

// ProcessArticle feeds every page of a parsed shard to the matcher.
func (m *Matcher) ProcessArticle(p *Parser) error {
	start := time.Now()
	prev := start
	pages := int64(0)
	for {
		page, err := p.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		m.ProcessPage(page)

		pages++
		if pages%ReportFreq == 0 {
			now := time.Now()
			d := now.Sub(prev)
			log.Debugf("Processed %s pages (%.2f/s), %s matched so far",
				humanize.Comma(pages), float64(ReportFreq)/d.Seconds(),
				humanize.Comma(m.Stats.Matched))
			prev = now
		}
	}
	return nil
}

// ProcessShard parses one shard file.  A malformed shard is an error.
func (m *Matcher) ProcessShard(path string) error {
	r, err := OpenShard(path)
	if err != nil {
		return err
	}
	defer r.Close()

	p, err := NewParser(r)
	if err == io.EOF {
		return nil
	}
	if err != nil {
		return errors.Wrapf(err, "parsing %s", path)
	}
	if err := m.ProcessArticle(p); err != nil {
		return errors.Wrapf(err, "parsing %s", path)
	}
	return nil
}

// ProcessDump processes every shard found in dir, in sequence, and
// returns the shards it went through.
func (m *Matcher) ProcessDump(dir string) ([]string, error) {
	shards, err := FindShards(dir)
	if err != nil {
		return nil, err
	}
	log.Infof("Processing %d shards from %s", len(shards), dir)

	start := time.Now()
	for i, shard := range shards {
		before := m.Stats
		if err := m.ProcessShard(shard); err != nil {
			return shards[:i], err
		}
		log.Infof("[%d/%d] %s: %s pages, %s files, %s matched",
			i+1, len(shards), filepath.Base(shard),
			humanize.Comma(m.Stats.Pages-before.Pages),
			humanize.Comma(m.Stats.Files-before.Files),
			humanize.Comma(m.Stats.Matched-before.Matched))
	}
	log.Infof("Processed %s pages in %v", humanize.Comma(m.Stats.Pages),
		time.Since(start).Round(time.Second))
	return shards, nil
}
