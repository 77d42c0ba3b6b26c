package sink

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	wikidump "github.com/HuyNg2024/ViQuae"
	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
)

var eiffel = &wikidump.Image{
	Categories:  []string{"CEiffel_Tower"},
	Timestamp:   "2021-03-01T10:00:00Z",
	Username:    "alice",
	Date:        "1889",
	Description: "The tower",
	Location:    &wikidump.Coord{Lat: 48.8583, Lon: 2.2945},
}

func TestNewDoc(t *testing.T) {
	d := NewDoc("Q243", "File:Tour Eiffel.jpg", eiffel)
	if d.ID != "Q243/File:Tour Eiffel.jpg" || d.Entity != "Q243" || d.Title != "File:Tour Eiffel.jpg" {
		t.Fatalf("Unexpected identity: %#v", d)
	}
	if exp := wikidump.URLForFile("Tour Eiffel.jpg"); d.URL != exp {
		t.Errorf("Expected %v, got %v", exp, d.URL)
	}
	if d.Geo == nil || !cmp.Equal(d.Geo.Geometry.Coordinates, []float64{2.2945, 48.8583}) {
		t.Errorf("Expected lon/lat point, got %#v", d.Geo)
	}
	if d.Date != "1889" || d.Author != "" || d.Username != "alice" {
		t.Errorf("Unexpected fields: %#v", d)
	}

	if d := NewDoc("Q1", "File:x.png", &wikidump.Image{}); d.Geo != nil {
		t.Errorf("Expected no geo, got %#v", d.Geo)
	}
}

func TestEscapeID(t *testing.T) {
	if got := EscapeID("Q1/File:a+b.jpg"); got != "Q1%2fFile:a%2bb.jpg" {
		t.Fatalf("Unexpected escaping: %v", got)
	}
}

func TestDocs(t *testing.T) {
	es := wikidump.Entities{
		"Q2": &wikidump.Entity{Images: map[string]*wikidump.Image{
			"File:b.jpg": eiffel,
			"File:a.jpg": eiffel,
		}},
		"Q1": &wikidump.Entity{Images: map[string]*wikidump.Image{"File:c.jpg": eiffel}},
		"Q3": &wikidump.Entity{},
	}
	var ids []string
	for _, d := range Docs(es) {
		ids = append(ids, d.ID)
	}
	exp := []string{"Q1/File:c.jpg", "Q2/File:a.jpg", "Q2/File:b.jpg"}
	if diff := cmp.Diff(exp, ids); diff != "" {
		t.Fatalf("Unexpected documents (-want +got):\n%s", diff)
	}
}

func TestFields(t *testing.T) {
	d := NewDoc("Q243", "File:Tour Eiffel.jpg", eiffel)
	d.Rev = "1-abc"
	m := d.fields()
	if _, ok := m["_id"]; ok {
		t.Errorf("Expected no _id in %v", m)
	}
	if _, ok := m["_rev"]; ok {
		t.Errorf("Expected no _rev in %v", m)
	}
	if m["entity"] != "Q243" || m["date"] != "1889" {
		t.Errorf("Unexpected fields %v", m)
	}
}

type memSink struct {
	mu   sync.Mutex
	docs map[string]*Doc
	bad  string
}

func (m *memSink) Put(ctx context.Context, d *Doc) error {
	if d.Entity == m.bad {
		return errors.Errorf("refusing %s", d.ID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[d.ID] = d
	return nil
}

func (m *memSink) Close() error { return nil }

func TestLoad(t *testing.T) {
	var docs []*Doc
	for _, e := range []string{"Q1", "Q2", "Q3"} {
		for _, f := range []string{"File:a.jpg", "File:b.jpg"} {
			docs = append(docs, NewDoc(e, f, eiffel))
		}
	}
	s := &memSink{docs: map[string]*Doc{}, bad: "Q2"}
	loaded, failed := Load(context.Background(), s, docs, 3)
	if loaded != 4 || failed != 2 {
		t.Fatalf("Expected 4 loaded and 2 failed, got %v and %v", loaded, failed)
	}
	if len(s.docs) != 4 || s.docs["Q3/File:b.jpg"] == nil {
		t.Fatalf("Unexpected stored documents: %v", s.docs)
	}
}

func TestLoadCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	docs := make([]*Doc, 5000)
	for i := range docs {
		docs[i] = NewDoc("Q1", "File:a.jpg", eiffel)
	}
	s := &memSink{docs: map[string]*Doc{}}
	loaded, _ := Load(ctx, s, docs, 1)
	if loaded >= int64(len(docs)) {
		t.Fatalf("Expected loading to stop early, loaded %v", loaded)
	}
}

func TestSQLite(t *testing.T) {
	ctx := context.Background()
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "db", "images.db"))
	if err != nil {
		t.Fatalf("Error opening: %v", err)
	}
	defer s.Close()

	d := NewDoc("Q243", "File:Tour Eiffel.jpg", eiffel)
	if err := s.Put(ctx, d); err != nil {
		t.Fatalf("Error storing: %v", err)
	}
	got, err := s.Get(ctx, d.ID)
	if err != nil {
		t.Fatalf("Error retrieving: %v", err)
	}
	if diff := cmp.Diff(d, got); diff != "" {
		t.Fatalf("Unexpected document (-want +got):\n%s", diff)
	}

	// Storing again replaces.
	newer := *d
	newer.Timestamp = "2022-01-01T00:00:00Z"
	newer.Geo = nil
	if err := s.Put(ctx, &newer); err != nil {
		t.Fatalf("Error storing again: %v", err)
	}
	got, _ = s.Get(ctx, d.ID)
	if diff := cmp.Diff(&newer, got); diff != "" {
		t.Fatalf("Unexpected document (-want +got):\n%s", diff)
	}
	if err := s.Put(ctx, NewDoc("Q1", "File:x.png", &wikidump.Image{Categories: []string{"CX"}})); err != nil {
		t.Fatal(err)
	}

	for entity, exp := range map[string]int64{"": 2, "Q243": 1, "Q9": 0} {
		n, err := s.Count(ctx, entity)
		if err != nil || n != exp {
			t.Errorf("Expected %v documents for %q, got %v, %v", exp, entity, n, err)
		}
	}
	if got, err := s.Get(ctx, "nope"); got != nil || err != nil {
		t.Fatalf("Expected nothing, got %v, %v", got, err)
	}
}
