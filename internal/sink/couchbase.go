package sink

import (
	"context"

	"github.com/couchbase/go-couchbase"
	"github.com/pkg/errors"
)

// Couchbase sets documents in a Couchbase bucket.
type Couchbase struct {
	bucket *couchbase.Bucket
}

// NewCouchbase connects to a bucket of the pool at url.
func NewCouchbase(url, pool, bucket string) (*Couchbase, error) {
	b, err := couchbase.GetBucket(url, pool, bucket)
	if err != nil {
		return nil, errors.Wrap(err, "connecting to couchbase")
	}
	return &Couchbase{bucket: b}, nil
}

// Put sets d under its identifier, without expiry.
func (c *Couchbase) Put(ctx context.Context, d *Doc) error {
	return c.bucket.Set(d.ID, 0, d)
}

// Close closes the bucket.
func (c *Couchbase) Close() error {
	c.bucket.Close()
	return nil
}
