// Package sink stores the images attached to entities in document
// databases, one document per entity and image.
package sink

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	wikidump "github.com/HuyNg2024/ViQuae"
	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
)

// How many documents go by between progress reports.
var ReportFreq = int64(10000)

// Geo is a GeoJSON point feature.
type Geo struct {
	Geometry struct {
		Type        string    `json:"type"`
		Coordinates []float64 `json:"coordinates"`
	} `json:"geometry"`
	Type string `json:"type"`
}

// A Doc is an image of an entity.
type Doc struct {
	ID          string   `json:"_id" bson:"_id"`
	Rev         string   `json:"_rev,omitempty" bson:"-"`
	Entity      string   `json:"entity" bson:"entity"`
	Title       string   `json:"title" bson:"title"`
	URL         string   `json:"url" bson:"url"`
	Categories  []string `json:"categories" bson:"categories"`
	Timestamp   string   `json:"timestamp" bson:"timestamp"`
	Username    string   `json:"username" bson:"username"`
	Date        string   `json:"date,omitempty" bson:"date,omitempty"`
	Author      string   `json:"author,omitempty" bson:"author,omitempty"`
	Description string   `json:"description,omitempty" bson:"description,omitempty"`
	License     string   `json:"license,omitempty" bson:"license,omitempty"`
	Geo         *Geo     `json:"geo,omitempty" bson:"geo,omitempty"`
}

// A Sink stores documents.  Put may be called concurrently.
type Sink interface {
	Put(ctx context.Context, d *Doc) error
	Close() error
}

// DocID identifies the document of an entity's image.
func DocID(entity, title string) string {
	return entity + "/" + title
}

// EscapeID makes an identifier usable as a URL path segment.
func EscapeID(in string) string {
	return strings.Replace(strings.Replace(in, "/", "%2f", -1),
		"+", "%2b", -1)
}

// NewDoc builds the document of an image of an entity.
func NewDoc(entity, title string, img *wikidump.Image) *Doc {
	d := &Doc{
		ID:          DocID(entity, title),
		Entity:      entity,
		Title:       title,
		URL:         wikidump.URLForFile(wikidump.FileName(title)),
		Categories:  img.Categories,
		Timestamp:   img.Timestamp,
		Username:    img.Username,
		Date:        img.Date,
		Author:      img.Author,
		Description: img.Description,
		License:     img.License,
	}
	if img.Location != nil {
		d.Geo = &Geo{Type: "Feature"}
		d.Geo.Geometry.Type = "Point"
		d.Geo.Geometry.Coordinates = []float64{img.Location.Lon, img.Location.Lat}
	}
	return d
}

// Docs gets the documents of all the images of es, ordered by entity
// then title.
func Docs(es wikidump.Entities) []*Doc {
	var rv []*Doc
	for _, k := range es.Keys() {
		imgs := es[k].Images
		titles := make([]string, 0, len(imgs))
		for t := range imgs {
			titles = append(titles, t)
		}
		sort.Strings(titles)
		for _, t := range titles {
			rv = append(rv, NewDoc(k, t, imgs[t]))
		}
	}
	return rv
}

// fields gets the document as a generic map, without the CouchDB
// bookkeeping keys.
func (d *Doc) fields() map[string]interface{} {
	data, err := json.Marshal(d)
	if err != nil {
		return nil
	}
	m := map[string]interface{}{}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil
	}
	delete(m, "_id")
	delete(m, "_rev")
	return m
}

// Load stores docs with the given number of workers.  Documents that
// cannot be stored are logged and counted as failed.
func Load(ctx context.Context, s Sink, docs []*Doc, workers int) (loaded, failed int64) {
	if workers < 1 {
		workers = 1
	}
	var ok, bad atomic.Int64
	ch := make(chan *Doc, 1000)
	wg := sync.WaitGroup{}
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for d := range ch {
				if err := s.Put(ctx, d); err != nil {
					log.Errorf("Error storing %s: %v", d.ID, err)
					bad.Add(1)
					continue
				}
				if n := ok.Add(1); n%ReportFreq == 0 {
					log.Infof("Stored %s documents", humanize.Comma(n))
				}
			}
		}()
	}

feed:
	for _, d := range docs {
		select {
		case ch <- d:
		case <-ctx.Done():
			break feed
		}
	}
	close(ch)
	wg.Wait()
	return ok.Load(), bad.Load()
}
