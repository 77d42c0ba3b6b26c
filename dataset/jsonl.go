// Package dataset converts between line-delimited JSON and datasets
// stored on disk as Arrow IPC streams in the layout written by
// Hugging Face's save_to_disk.
package dataset

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"os"

	"github.com/pkg/errors"
)

// A Field is one key of a row with its undecoded JSON value.
type Field struct {
	Key   string
	Value json.RawMessage
}

// A Row is a JSON object with its keys in document order.
type Row []Field

var null = json.RawMessage("null")

// Get returns the value of key, or nil if the row has no such key.
func (r Row) Get(key string) json.RawMessage {
	for _, f := range r {
		if f.Key == key {
			return f.Value
		}
	}
	return nil
}

func (r *Row) set(key string, v json.RawMessage) {
	for i := range *r {
		if (*r)[i].Key == key {
			(*r)[i].Value = v
			return
		}
	}
	*r = append(*r, Field{key, v})
}

func encodeString(buf *bytes.Buffer, s string) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return err
	}
	// Encode terminates with a newline.
	buf.Truncate(buf.Len() - 1)
	return nil
}

func (r Row) MarshalJSON() ([]byte, error) {
	buf := &bytes.Buffer{}
	buf.WriteByte('{')
	for i, f := range r {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := encodeString(buf, f.Key); err != nil {
			return nil, err
		}
		buf.WriteByte(':')
		if len(f.Value) == 0 {
			buf.Write(null)
		} else {
			buf.Write(f.Value)
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (r *Row) UnmarshalJSON(data []byte) error {
	row, err := decodeRow(json.NewDecoder(bytes.NewReader(data)))
	if err != nil {
		return err
	}
	*r = row
	return nil
}

func decodeRow(dec *json.Decoder) (Row, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, errors.Errorf("expected an object, got %v", tok)
	}
	row := Row{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, errors.Errorf("expected a key, got %v", tok)
		}
		var v json.RawMessage
		if err := dec.Decode(&v); err != nil {
			return nil, errors.Wrapf(err, "decoding %q", key)
		}
		row.set(key, json.RawMessage(bytes.TrimSpace(v)))
	}
	if _, err := dec.Token(); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}
	return row, nil
}

// ReadJSONL reads a stream of JSON objects, one per line.
func ReadJSONL(r io.Reader) ([]Row, error) {
	dec := json.NewDecoder(bufio.NewReader(r))
	rows := []Row{}
	for {
		row, err := decodeRow(dec)
		switch {
		case err == io.EOF:
			return rows, nil
		case err != nil:
			return nil, errors.Wrapf(err, "row %d", len(rows)+1)
		}
		rows = append(rows, row)
	}
}

// ReadJSONLFile reads the JSON lines file at path.
func ReadJSONLFile(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	rows, err := ReadJSONL(f)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	return rows, nil
}

// WriteJSONL writes one compact object per line.
func WriteJSONL(w io.Writer, rows []Row) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for _, r := range rows {
		if err := enc.Encode(r); err != nil {
			return err
		}
	}
	return nil
}

// WriteJSON writes the rows as an indented JSON array.
func WriteJSON(w io.Writer, rows []Row) error {
	if rows == nil {
		rows = []Row{}
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	return enc.Encode(rows)
}
