package sink

import (
	"context"
	"sync"

	"github.com/dustin/go-elasticsearch"
)

// Elastic bulk-loads documents into an ElasticSearch index.
type Elastic struct {
	Index string
	Type  string
	// BatchSize documents are sent together.
	BatchSize int

	mu      sync.Mutex
	pending int
	update  func(*elasticsearch.UpdateInstruction)
	flush   func()
	quit    func()
}

// NewElastic gets a bulk loader for the index of the server at url.
func NewElastic(url, index string) *Elastic {
	es := &elasticsearch.ElasticSearch{URL: url}
	b := es.Bulk()
	return &Elastic{
		Index:     index,
		Type:      "image",
		BatchSize: 1000,
		update:    func(ui *elasticsearch.UpdateInstruction) { b.Update(ui) },
		flush:     func() { b.SendBatch() },
		quit:      func() { b.Quit() },
	}
}

// Put queues d, sending the queued batch when it is full.
func (e *Elastic) Put(ctx context.Context, d *Doc) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pending++
	if e.pending > e.BatchSize {
		e.flush()
		e.pending = 0
	}
	e.update(&elasticsearch.UpdateInstruction{
		Id:    d.ID,
		Index: e.Index,
		Type:  e.Type,
		Body:  d.fields(),
	})
	return nil
}

// Close sends what is left and stops the loader.
func (e *Elastic) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.quit()
	return nil
}
