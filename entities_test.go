package wikidump

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestEntityRoundTrip(t *testing.T) {
	in := `{"n_questions": 3.0, "categories": {"CA": {"depth": 1}}, "wikipedia_title": "Paris", "aliases": ["City of Light"]}`
	var e Entity
	if err := json.Unmarshal([]byte(in), &e); err != nil {
		t.Fatalf("Error decoding: %v", err)
	}
	if e.NQuestions != 3 || !e.HasCategory("CA") || e.HasCategory("CB") {
		t.Fatalf("Unexpected entity: %#v", e)
	}

	out, err := json.Marshal(&e)
	if err != nil {
		t.Fatalf("Error encoding: %v", err)
	}
	var got, exp map[string]interface{}
	if err := json.Unmarshal(out, &got); err != nil {
		t.Fatal(err)
	}
	json.Unmarshal([]byte(in), &exp)
	if !reflect.DeepEqual(exp, got) {
		t.Fatalf("Expected %v, got %v", exp, got)
	}
}

func TestEntityAddImage(t *testing.T) {
	e := &Entity{}
	img := &Image{Categories: []string{"CA"}}
	e.AddImage("File:a.jpg", img)
	e.AddImage("File:a.jpg", img)
	if len(e.Images) != 1 || e.Images["File:a.jpg"] != img {
		t.Fatalf("Unexpected images: %v", e.Images)
	}
}

func TestSaveEntities(t *testing.T) {
	path := filepath.Join(t.TempDir(), "entities.json")
	if err := os.WriteFile(path, []byte(`{"Q2": null, "Q1": {"n_questions": 1}}`), 0600); err != nil {
		t.Fatal(err)
	}
	es, err := LoadEntities(path)
	if err != nil {
		t.Fatalf("Error loading: %v", err)
	}
	if !reflect.DeepEqual(es.Keys(), []string{"Q1", "Q2"}) {
		t.Fatalf("Unexpected keys: %v", es.Keys())
	}
	es["Q1"].AddImage("File:a.jpg", &Image{Categories: []string{"CA"}})
	if err := es.Save(path); err != nil {
		t.Fatalf("Error saving: %v", err)
	}

	st, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if st.Mode().Perm() != 0644 {
		t.Errorf("Expected mode 0644, got %v", st.Mode().Perm())
	}
	matches, _ := filepath.Glob(path + ".*")
	if len(matches) != 0 {
		t.Errorf("Expected no leftover files, got %v", matches)
	}

	es, err = LoadEntities(path)
	if err != nil {
		t.Fatalf("Error reloading: %v", err)
	}
	if !reflect.DeepEqual(es.ImageCounts(), []float64{1, 0}) {
		t.Fatalf("Unexpected image counts: %v", es.ImageCounts())
	}
}

func TestLoadEntitiesBroken(t *testing.T) {
	path := filepath.Join(t.TempDir(), "entities.json")
	os.WriteFile(path, []byte(`{"Q1": `), 0644)
	if _, err := LoadEntities(path); err == nil {
		t.Fatalf("Expected an error for a truncated file")
	}
}
