package wikidump

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/dustin/httputil"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/pkg/errors"
	"golang.org/x/net/html"
	"golang.org/x/sync/errgroup"
)

// DefaultDumpURL lists the latest Commons dump files.
const DefaultDumpURL = "https://dumps.wikimedia.org/commonswiki/latest/"

const partSuffix = ".part"

var shardLinkRE = regexp.MustCompile(`^commonswiki-latest-pages-articles[1-6]\.xml-.*\.bz2$`)

// A Fetcher downloads the dump shards linked from a listing page.
type Fetcher struct {
	Client *retryablehttp.Client
	// Dir receives the shards.
	Dir string
	// MaxThreads bounds the concurrent downloads.
	MaxThreads int
	// Limit keeps only the first Limit links when positive.
	Limit int
}

// NewFetcher gets a fetcher downloading into dir with at most
// maxThreads downloads in flight and no retries.
func NewFetcher(dir string, maxThreads int) *Fetcher {
	c := retryablehttp.NewClient()
	c.RetryMax = 0
	c.Logger = nil
	if maxThreads < 1 {
		maxThreads = 1
	}
	return &Fetcher{Client: c, Dir: dir, MaxThreads: maxThreads}
}

// FindShardLinks extracts the shard links of a dump listing page,
// resolved against base.
func FindShardLinks(base *url.URL, r io.Reader) ([]string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	var rv []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			for _, a := range n.Attr {
				if a.Key != "href" || !shardLinkRE.MatchString(a.Val) {
					continue
				}
				ref, err := url.Parse(a.Val)
				if err != nil {
					continue
				}
				rv = append(rv, base.ResolveReference(ref).String())
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return rv, nil
}

// ListShards fetches the listing page and returns the shard links on
// it.  A listing that cannot be fetched is logged and gives no links.
func (f *Fetcher) ListShards(ctx context.Context, listURL string) ([]string, error) {
	base, err := url.Parse(listURL)
	if err != nil {
		return nil, err
	}
	log.Infof("Accessing dump page: %s", listURL)

	req, err := retryablehttp.NewRequest("GET", listURL, nil)
	if err != nil {
		return nil, err
	}
	res, err := f.Client.Do(req.WithContext(ctx))
	if err != nil {
		log.Errorf("Cannot access dump page: %v", err)
		return nil, nil
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		log.Errorf("Cannot access dump page: %v",
			httputil.HTTPErrorf(res, "%S fetching %v", listURL))
		return nil, nil
	}

	links, err := FindShardLinks(base, res.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing %s", listURL)
	}
	if f.Limit > 0 && len(links) > f.Limit {
		links = links[:f.Limit]
	}
	log.Infof("Found %d dump files to download", len(links))
	return links, nil
}

// Fetch downloads every shard linked from listURL that is not already
// present in f.Dir, and returns the local paths of the shards present
// afterwards.  Failed downloads are logged and left out.
func (f *Fetcher) Fetch(ctx context.Context, listURL string) ([]string, error) {
	links, err := f.ListShards(ctx, listURL)
	if err != nil || len(links) == 0 {
		return nil, err
	}
	if err := os.MkdirAll(f.Dir, 0755); err != nil {
		return nil, err
	}

	paths := make([]string, len(links))
	g := errgroup.Group{}
	g.SetLimit(f.MaxThreads)
	for i, link := range links {
		i, link := i, link
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			p, err := f.Download(ctx, link)
			if err != nil {
				log.Errorf("Error downloading %s: %v", link, err)
				return nil
			}
			paths[i] = p
			return nil
		})
	}
	g.Wait()

	rv := paths[:0]
	for _, p := range paths {
		if p != "" {
			rv = append(rv, p)
		}
	}
	return rv, ctx.Err()
}

// Download fetches a single shard into f.Dir unless a file with the
// same name is already there.
func (f *Fetcher) Download(ctx context.Context, link string) (string, error) {
	u, err := url.Parse(link)
	if err != nil {
		return "", err
	}
	name := path.Base(u.Path)
	dest := filepath.Join(f.Dir, name)
	if _, err := os.Stat(dest); err == nil {
		log.Infof("%s already exists, skipping", name)
		return dest, nil
	}

	log.Infof("Downloading %s", name)
	req, err := retryablehttp.NewRequest("GET", link, nil)
	if err != nil {
		return "", err
	}
	res, err := f.Client.Do(req.WithContext(ctx))
	if err != nil {
		return "", err
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return "", httputil.HTTPErrorf(res, "%S fetching %v", link)
	}

	tmp := dest + partSuffix
	out, err := os.Create(tmp)
	if err != nil {
		return "", err
	}
	n, err := io.Copy(out, res.Body)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmp)
		return "", errors.Wrapf(err, "writing %s", tmp)
	}
	if err := os.Rename(tmp, dest); err != nil {
		os.Remove(tmp)
		return "", err
	}
	log.Infof("Downloaded %s (%s)", name, humanize.Bytes(uint64(n)))
	return dest, nil
}
