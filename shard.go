package wikidump

import (
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dsnet/compress/bzip2"
	"github.com/pkg/errors"
)

// ShardGlob matches the locally downloaded pages-articles shards.
const ShardGlob = "commonswiki-latest-pages-articles[0-9]*"

type shardFile struct {
	io.Reader
	f  *os.File
	bz *bzip2.Reader
}

func (s *shardFile) Close() error {
	if s.bz != nil {
		s.bz.Close()
	}
	return s.f.Close()
}

// OpenShard opens a dump shard for reading, transparently
// decompressing it when the name ends in ".bz2".
func OpenShard(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	if !strings.HasSuffix(path, ".bz2") {
		return &shardFile{Reader: f, f: f}, nil
	}
	bz, err := bzip2.NewReader(f, &bzip2.ReaderConfig{})
	if err != nil {
		f.Close()
		return nil, errors.Wrapf(err, "opening bzip2 stream of %s", path)
	}
	return &shardFile{Reader: bz, f: f, bz: bz}, nil
}

// FindShards lists the shards present in dir, in name order.
func FindShards(dir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, ShardGlob))
	if err != nil {
		return nil, err
	}
	rv := matches[:0]
	for _, m := range matches {
		// In-flight downloads are not shards yet.
		if strings.HasSuffix(m, partSuffix) {
			continue
		}
		rv = append(rv, m)
	}
	sort.Strings(rv)
	return rv, nil
}
