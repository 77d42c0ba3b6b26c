package wikidump

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"
)

// An Entity is a knowledge-base item, e.g. a person, that questions
// are asked about.
//
// Keys of the entity object other than the ones below are kept as-is
// so that rewriting the index does not lose them.
type Entity struct {
	NQuestions int
	Categories map[string]json.RawMessage
	Images     map[string]*Image

	extra map[string]json.RawMessage
}

// Entities maps entity identifiers (e.g. Wikidata QIDs) to entities.
type Entities map[string]*Entity

// HasCategory reports whether the entity belongs to the category.
func (e *Entity) HasCategory(id string) bool {
	_, ok := e.Categories[id]
	return ok
}

// AddImage records an image under its page title, replacing any
// previous image with that title.
func (e *Entity) AddImage(title string, img *Image) {
	if e.Images == nil {
		e.Images = map[string]*Image{}
	}
	e.Images[title] = img
}

func (e *Entity) UnmarshalJSON(data []byte) error {
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	*e = Entity{}
	if raw, ok := fields["n_questions"]; ok {
		var n float64
		if err := json.Unmarshal(raw, &n); err != nil {
			return errors.Wrap(err, "n_questions")
		}
		e.NQuestions = int(n)
		delete(fields, "n_questions")
	}
	if raw, ok := fields["categories"]; ok {
		if err := json.Unmarshal(raw, &e.Categories); err != nil {
			return errors.Wrap(err, "categories")
		}
		delete(fields, "categories")
	}
	if raw, ok := fields["images"]; ok {
		if err := json.Unmarshal(raw, &e.Images); err != nil {
			return errors.Wrap(err, "images")
		}
		delete(fields, "images")
	}
	if len(fields) > 0 {
		e.extra = fields
	}
	return nil
}

func (e *Entity) MarshalJSON() ([]byte, error) {
	fields := make(map[string]interface{}, len(e.extra)+3)
	for k, v := range e.extra {
		fields[k] = v
	}
	fields["n_questions"] = e.NQuestions
	if e.Categories != nil {
		fields["categories"] = e.Categories
	}
	if e.Images != nil {
		fields["images"] = e.Images
	}
	return json.Marshal(fields)
}

// LoadEntities reads an entity index file.
func LoadEntities(path string) (Entities, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var rv Entities
	if err := json.Unmarshal(data, &rv); err != nil {
		return nil, errors.Wrapf(err, "decoding %s", path)
	}
	if rv == nil {
		rv = Entities{}
	}
	for k, e := range rv {
		if e == nil {
			rv[k] = &Entity{}
		}
	}
	return rv, nil
}

// Save writes the whole index to path, replacing the previous file
// only once the new one is completely written.
func (es Entities) Save(path string) error {
	data, err := json.Marshal(es)
	if err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	if err := f.Chmod(0644); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if _, err := bytes.NewReader(data).WriteTo(f); err != nil {
		f.Close()
		os.Remove(tmp)
		return errors.Wrapf(err, "writing %s", tmp)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return errors.Wrapf(err, "replacing %s", path)
	}
	return nil
}

// Keys returns the entity identifiers in sorted order.
func (es Entities) Keys() []string {
	rv := make([]string, 0, len(es))
	for k := range es {
		rv = append(rv, k)
	}
	sort.Strings(rv)
	return rv
}

// ImageCounts gets the number of images of every entity, in Keys order.
func (es Entities) ImageCounts() []float64 {
	rv := make([]float64, 0, len(es))
	for _, k := range es.Keys() {
		rv = append(rv, float64(len(es[k].Images)))
	}
	return rv
}
