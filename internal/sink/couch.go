package sink

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-couch"
	"github.com/pkg/errors"
)

// Couch stores documents in a CouchDB database.
type Couch struct {
	db couch.Database
}

// NewCouch connects to the database at url.
func NewCouch(url string) (*Couch, error) {
	db, err := couch.Connect(url)
	if err != nil {
		return nil, errors.Wrap(err, "connecting to couchdb")
	}
	return &Couch{db: db}, nil
}

// Put inserts d.  When the document already exists, it is replaced if
// d comes from a newer revision of the file page.
func (c *Couch) Put(ctx context.Context, d *Doc) error {
	doc := *d
	doc.Rev = ""
	_, _, err := c.db.Insert(&doc)
	httpe, isHTTPError := err.(*couch.HTTPError)
	switch {
	case err == nil:
		return nil
	case isHTTPError && httpe.Status == 409:
		return c.resolveConflict(&doc)
	}
	return err
}

func (c *Couch) resolveConflict(d *Doc) error {
	log.Debugf("Resolving conflict on %s", d.ID)
	var prev Doc
	if err := c.db.Retrieve(EscapeID(d.ID), &prev); err != nil {
		return errors.Wrapf(err, "retrieving existing %s", d.ID)
	}
	if prev.Rev == "" {
		return errors.Errorf("got no rev from %s", d.ID)
	}
	if d.Timestamp <= prev.Timestamp {
		return nil
	}
	log.Debugf("%s is newer, replacing %s", d.ID, prev.Rev)
	_, err := c.db.EditWith(d, EscapeID(d.ID), prev.Rev)
	return errors.Wrapf(err, "updating %s", d.ID)
}

// Close is a no-op.
func (c *Couch) Close() error {
	return nil
}
