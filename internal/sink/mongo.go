package sink

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/pkg/errors"
	"gopkg.in/mgo.v2"
)

// One document per image of an entity.
var imageIndex = mgo.Index{
	Key:        []string{"entity", "title"},
	Unique:     true,
	Background: true,
}

// Mongo upserts documents into a MongoDB collection.
type Mongo struct {
	session    *mgo.Session
	db         string
	collection string
}

// NewMongo dials url and makes sure the collection is indexed.
func NewMongo(url, db, collection string) (*Mongo, error) {
	session, err := mgo.Dial(url)
	if err != nil {
		return nil, errors.Wrap(err, "connecting to mongodb")
	}
	if err := session.DB(db).C(collection).EnsureIndex(imageIndex); err != nil {
		session.Close()
		return nil, errors.Wrap(err, "creating image index")
	}
	return &Mongo{session: session, db: db, collection: collection}, nil
}

// Put replaces the document with d's identifier, or inserts d.
func (m *Mongo) Put(ctx context.Context, d *Doc) error {
	s := m.session.Copy()
	defer s.Close()
	_, err := s.DB(m.db).C(m.collection).UpsertId(d.ID, d)
	if err != nil && mgo.IsDup(err) {
		log.Debugf("Duplicate key error storing %s", d.ID)
		return nil
	}
	return err
}

// Close ends the session.
func (m *Mongo) Close() error {
	m.session.Close()
	return nil
}
