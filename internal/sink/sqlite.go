package sink

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS images (
	id TEXT PRIMARY KEY,
	entity TEXT NOT NULL,
	title TEXT NOT NULL,
	url TEXT NOT NULL,
	categories TEXT NOT NULL,
	timestamp TEXT NOT NULL,
	username TEXT NOT NULL,
	date TEXT,
	author TEXT,
	description TEXT,
	license TEXT,
	lat REAL,
	lon REAL
);
CREATE INDEX IF NOT EXISTS idx_images_entity ON images(entity);
`

// SQLite stores documents in the images table of a database file.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens or creates the database file at path.
func OpenSQLite(path string) (*SQLite, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path+"?mode=rwc")
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}
	// One writer at a time.
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(context.Background(), schema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "creating tables")
	}
	return &SQLite{db: db}, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// Put inserts d, replacing any document with the same identifier.
func (s *SQLite) Put(ctx context.Context, d *Doc) error {
	cats, err := json.Marshal(d.Categories)
	if err != nil {
		return err
	}
	var lat, lon sql.NullFloat64
	if d.Geo != nil && len(d.Geo.Geometry.Coordinates) == 2 {
		lon = sql.NullFloat64{Float64: d.Geo.Geometry.Coordinates[0], Valid: true}
		lat = sql.NullFloat64{Float64: d.Geo.Geometry.Coordinates[1], Valid: true}
	}
	_, err = s.db.ExecContext(ctx, `
	INSERT INTO images (id, entity, title, url, categories, timestamp, username,
		date, author, description, license, lat, lon)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		url = excluded.url,
		categories = excluded.categories,
		timestamp = excluded.timestamp,
		username = excluded.username,
		date = excluded.date,
		author = excluded.author,
		description = excluded.description,
		license = excluded.license,
		lat = excluded.lat,
		lon = excluded.lon
	`,
		d.ID, d.Entity, d.Title, d.URL, string(cats), d.Timestamp, d.Username,
		nullString(d.Date), nullString(d.Author), nullString(d.Description),
		nullString(d.License), lat, lon,
	)
	return errors.Wrapf(err, "inserting %s", d.ID)
}

// Get retrieves a document, or nil if there is none with that
// identifier.
func (s *SQLite) Get(ctx context.Context, id string) (*Doc, error) {
	d := &Doc{}
	var cats string
	var date, author, desc, license sql.NullString
	var lat, lon sql.NullFloat64
	err := s.db.QueryRowContext(ctx, `
	SELECT id, entity, title, url, categories, timestamp, username,
		date, author, description, license, lat, lon
	FROM images WHERE id = ?`, id).Scan(
		&d.ID, &d.Entity, &d.Title, &d.URL, &cats, &d.Timestamp, &d.Username,
		&date, &author, &desc, &license, &lat, &lon,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "retrieving %s", id)
	}
	if err := json.Unmarshal([]byte(cats), &d.Categories); err != nil {
		return nil, errors.Wrapf(err, "decoding categories of %s", id)
	}
	d.Date, d.Author, d.Description, d.License = date.String, author.String, desc.String, license.String
	if lat.Valid && lon.Valid {
		d.Geo = &Geo{Type: "Feature"}
		d.Geo.Geometry.Type = "Point"
		d.Geo.Geometry.Coordinates = []float64{lon.Float64, lat.Float64}
	}
	return d, nil
}

// Count gets the number of stored documents of an entity, or of all
// entities if entity is empty.
func (s *SQLite) Count(ctx context.Context, entity string) (int64, error) {
	var n int64
	var err error
	if entity == "" {
		err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM images`).Scan(&n)
	} else {
		err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM images WHERE entity = ?`, entity).Scan(&n)
	}
	return n, err
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}
