package dataset

import (
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/apache/arrow/go/v10/arrow"
	"github.com/apache/arrow/go/v10/arrow/ipc"
	"github.com/apache/arrow/go/v10/arrow/memory"
	"github.com/cespare/xxhash"
	"github.com/pkg/errors"
)

// Names of the files of a dataset on disk.
const (
	DictFile  = "dataset_dict.json"
	DataFile  = "data-00000-of-00001.arrow"
	InfoFile  = "dataset_info.json"
	StateFile = "state.json"
)

type dictFile struct {
	Splits []string `json:"splits"`
}

type info struct {
	Citation    string `json:"citation"`
	Description string `json:"description"`
	Features    Row    `json:"features"`
	Homepage    string `json:"homepage"`
	License     string `json:"license"`
}

type dataFile struct {
	Filename string `json:"filename"`
}

type state struct {
	DataFiles        []dataFile             `json:"_data_files"`
	Fingerprint      string                 `json:"_fingerprint"`
	FormatColumns    []string               `json:"_format_columns"`
	FormatKwargs     map[string]interface{} `json:"_format_kwargs"`
	FormatType       *string                `json:"_format_type"`
	OutputAllColumns bool                   `json:"_output_all_columns"`
	Split            string                 `json:"_split"`
}

// A Split is one named part of a dataset, e.g. train.
type Split struct {
	Name    string
	Schema  *arrow.Schema
	Records []arrow.Record
}

// NumRows counts the rows of all record batches.
func (s *Split) NumRows() int64 {
	var n int64
	for _, r := range s.Records {
		n += r.NumRows()
	}
	return n
}

// Rows converts the first limit rows, or all of them if limit is not
// positive.
func (s *Split) Rows(limit int) ([]Row, error) {
	rv := []Row{}
	for _, rec := range s.Records {
		want := 0
		if limit > 0 {
			want = limit - len(rv)
			if want <= 0 {
				break
			}
		}
		rows, err := Rows(rec, want)
		if err != nil {
			return nil, err
		}
		rv = append(rv, rows...)
	}
	return rv, nil
}

// Release releases the record batches.
func (s *Split) Release() {
	for _, r := range s.Records {
		r.Release()
	}
	s.Records = nil
}

func dtype(t arrow.DataType) string {
	switch t.ID() {
	case arrow.BOOL:
		return "bool"
	case arrow.INT32:
		return "int32"
	case arrow.INT64:
		return "int64"
	case arrow.FLOAT32:
		return "float32"
	case arrow.FLOAT64:
		return "float64"
	case arrow.LARGE_STRING:
		return "large_string"
	}
	return "string"
}

// feature describes a column type the way dataset_info.json does:
// lists are sequences and structs map field names to features.
func feature(t arrow.DataType) (json.RawMessage, error) {
	switch t := t.(type) {
	case *arrow.ListType:
		elem, err := feature(t.Elem())
		if err != nil {
			return nil, err
		}
		return json.Marshal(Row{{"feature", elem}, {"_type", json.RawMessage(`"Sequence"`)}})
	case *arrow.StructType:
		r := Row{}
		for _, f := range t.Fields() {
			v, err := feature(f.Type)
			if err != nil {
				return nil, err
			}
			r = append(r, Field{f.Name, v})
		}
		return json.Marshal(r)
	}
	return json.RawMessage(fmt.Sprintf(`{"dtype":%q,"_type":"Value"}`, dtype(t))), nil
}

func features(schema *arrow.Schema) (Row, error) {
	rv := Row{}
	for _, f := range schema.Fields() {
		v, err := feature(f.Type)
		if err != nil {
			return nil, errors.Wrapf(err, "describing %s", f.Name)
		}
		rv = append(rv, Field{f.Name, v})
	}
	return rv, nil
}

func writeJSONFile(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}

// SaveSplit writes rec as the named split in dir.
func SaveSplit(dir, name string, rec arrow.Record) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	path := filepath.Join(dir, DataFile)
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	h := xxhash.New()
	w := ipc.NewWriter(io.MultiWriter(f, h), ipc.WithSchema(rec.Schema()))
	if err := w.Write(rec); err != nil {
		w.Close()
		return errors.Wrapf(err, "writing %s", path)
	}
	if err := w.Close(); err != nil {
		return errors.Wrapf(err, "writing %s", path)
	}
	if err := f.Close(); err != nil {
		return err
	}

	feats, err := features(rec.Schema())
	if err != nil {
		return err
	}
	if err := writeJSONFile(filepath.Join(dir, InfoFile), info{Features: feats}); err != nil {
		return err
	}
	return writeJSONFile(filepath.Join(dir, StateFile), state{
		DataFiles:    []dataFile{{DataFile}},
		Fingerprint:  fmt.Sprintf("%016x", h.Sum64()),
		FormatKwargs: map[string]interface{}{},
		Split:        name,
	})
}

// SaveDict records the splits of a dataset dict rooted at dir.
func SaveDict(dir string, splits []string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	return writeJSONFile(filepath.Join(dir, DictFile), dictFile{splits})
}

// LoadDict gets the split names of the dataset dict rooted at dir.
func LoadDict(dir string) ([]string, error) {
	path := filepath.Join(dir, DictFile)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	d := dictFile{}
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, errors.Wrapf(err, "decoding %s", path)
	}
	return d.Splits, nil
}

// Open loads a split from path, which is either a dataset dict or a
// single split directory.  An empty split name picks the first split
// of a dict.
func Open(path, split string) (*Split, error) {
	splits, err := LoadDict(path)
	if errors.Is(err, fs.ErrNotExist) {
		return OpenSplit(path)
	}
	if err != nil {
		return nil, err
	}
	if split == "" {
		if len(splits) == 0 {
			return nil, errors.Errorf("%s has no splits", path)
		}
		split = splits[0]
	}
	for _, s := range splits {
		if s == split {
			return OpenSplit(filepath.Join(path, s))
		}
	}
	return nil, errors.Errorf("no split %q in %s, have %v", split, path, splits)
}

// OpenSplit loads all the record batches of a split directory.
func OpenSplit(dir string) (*Split, error) {
	st := state{DataFiles: []dataFile{{DataFile}}, Split: filepath.Base(dir)}
	data, err := os.ReadFile(filepath.Join(dir, StateFile))
	switch {
	case err == nil:
		if err := json.Unmarshal(data, &st); err != nil {
			return nil, errors.Wrapf(err, "decoding %s", StateFile)
		}
	case !errors.Is(err, fs.ErrNotExist):
		return nil, err
	}

	s := &Split{Name: st.Split}
	mem := memory.NewGoAllocator()
	for _, df := range st.DataFiles {
		if err := s.read(mem, filepath.Join(dir, df.Filename)); err != nil {
			s.Release()
			return nil, errors.Wrapf(err, "reading %s", df.Filename)
		}
	}
	return s, nil
}

func (s *Split) read(mem memory.Allocator, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	r, err := ipc.NewReader(f, ipc.WithAllocator(mem))
	if err != nil {
		return err
	}
	defer r.Release()
	if s.Schema == nil {
		s.Schema = r.Schema()
	}
	for r.Next() {
		rec := r.Record()
		rec.Retain()
		s.Records = append(s.Records, rec)
	}
	return r.Err()
}
