package dataset

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/apache/arrow/go/v10/arrow"
	"github.com/apache/arrow/go/v10/arrow/array"
	"github.com/apache/arrow/go/v10/arrow/memory"
	"github.com/pkg/errors"
)

// EncodingKey marks string columns whose values are JSON text.
const EncodingKey = "encoding"

type kind int

const (
	kindNull kind = iota
	kindBool
	kindInt
	kindFloat
	kindString
	kindJSON
)

func kindOf(v json.RawMessage) kind {
	if len(v) == 0 {
		return kindNull
	}
	switch v[0] {
	case 'n':
		return kindNull
	case 't', 'f':
		return kindBool
	case '"':
		return kindString
	case '{', '[':
		return kindJSON
	}
	if _, err := strconv.ParseInt(string(v), 10, 64); err == nil {
		return kindInt
	}
	return kindFloat
}

func (k kind) merge(o kind) kind {
	switch {
	case k == o || o == kindNull:
		return k
	case k == kindNull:
		return o
	case (k == kindInt && o == kindFloat) || (k == kindFloat && o == kindInt):
		return kindFloat
	}
	return kindJSON
}

func (k kind) field(name string) arrow.Field {
	f := arrow.Field{Name: name, Nullable: true}
	switch k {
	case kindBool:
		f.Type = arrow.FixedWidthTypes.Boolean
	case kindInt:
		f.Type = arrow.PrimitiveTypes.Int64
	case kindFloat:
		f.Type = arrow.PrimitiveTypes.Float64
	case kindJSON:
		f.Type = arrow.BinaryTypes.String
		f.Metadata = arrow.NewMetadata([]string{EncodingKey}, []string{"json"})
	default:
		f.Type = arrow.BinaryTypes.String
	}
	return f
}

func isJSON(f arrow.Field) bool {
	i := f.Metadata.FindKey(EncodingKey)
	return i >= 0 && f.Metadata.Values()[i] == "json"
}

// InferSchema derives a column per key, in order of first appearance,
// typed by the values seen under that key.  Columns mixing types
// other than integers and floats hold JSON text.
func InferSchema(rows []Row) *arrow.Schema {
	var names []string
	kinds := map[string]kind{}
	for _, r := range rows {
		for _, f := range r {
			k, seen := kinds[f.Key]
			if !seen {
				names = append(names, f.Key)
			}
			kinds[f.Key] = k.merge(kindOf(f.Value))
		}
	}
	fields := make([]arrow.Field, len(names))
	for i, n := range names {
		fields[i] = kinds[n].field(n)
	}
	return arrow.NewSchema(fields, nil)
}

// NewRecord builds a record of rows with an inferred schema.  The
// caller must release it.
func NewRecord(mem memory.Allocator, rows []Row) (arrow.Record, error) {
	schema := InferSchema(rows)
	b := array.NewRecordBuilder(mem, schema)
	defer b.Release()

	for i, r := range rows {
		for c, f := range schema.Fields() {
			if err := appendValue(b.Field(c), f, r.Get(f.Name)); err != nil {
				return nil, errors.Wrapf(err, "row %d, column %s", i+1, f.Name)
			}
		}
	}
	return b.NewRecord(), nil
}

func appendValue(b array.Builder, f arrow.Field, v json.RawMessage) error {
	if kindOf(v) == kindNull {
		b.AppendNull()
		return nil
	}
	switch b := b.(type) {
	case *array.BooleanBuilder:
		b.Append(v[0] == 't')
	case *array.Int64Builder:
		n, err := strconv.ParseInt(string(v), 10, 64)
		if err != nil {
			return err
		}
		b.Append(n)
	case *array.Float64Builder:
		n, err := strconv.ParseFloat(string(v), 64)
		if err != nil {
			return err
		}
		b.Append(n)
	case *array.StringBuilder:
		if isJSON(f) {
			buf := &bytes.Buffer{}
			if err := json.Compact(buf, v); err != nil {
				return err
			}
			b.Append(buf.String())
			return nil
		}
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return err
		}
		b.Append(s)
	default:
		return errors.Errorf("unsupported builder %T", b)
	}
	return nil
}

// Rows converts up to limit rows of rec, all of them when limit is not
// positive.  Null values, including missing keys, come back as null.
func Rows(rec arrow.Record, limit int) ([]Row, error) {
	n := int(rec.NumRows())
	if limit > 0 && limit < n {
		n = limit
	}
	schema := rec.Schema()
	rows := make([]Row, 0, n)
	for i := 0; i < n; i++ {
		r := make(Row, 0, rec.NumCols())
		for c, col := range rec.Columns() {
			f := schema.Field(c)
			v, err := value(col, f, i)
			if err != nil {
				return nil, errors.Wrapf(err, "row %d, column %s", i+1, f.Name)
			}
			r = append(r, Field{f.Name, v})
		}
		rows = append(rows, r)
	}
	return rows, nil
}

func value(col arrow.Array, f arrow.Field, i int) (json.RawMessage, error) {
	if col.IsNull(i) {
		return null, nil
	}
	switch a := col.(type) {
	case *array.Null:
		return null, nil
	case *array.Boolean:
		return json.RawMessage(strconv.FormatBool(a.Value(i))), nil
	case *array.Int64:
		return json.RawMessage(strconv.FormatInt(a.Value(i), 10)), nil
	case *array.Int32:
		return json.RawMessage(strconv.FormatInt(int64(a.Value(i)), 10)), nil
	case *array.Float64:
		return floatValue(a.Value(i), 64), nil
	case *array.Float32:
		return floatValue(float64(a.Value(i)), 32), nil
	case *array.String:
		return stringValue(a.Value(i), isJSON(f))
	}
	return marshalValue(col, i)
}

// marshalValue renders a value of a nested or less common column
// through arrow's JSON encoding of a one-element slice.
func marshalValue(col arrow.Array, i int) (json.RawMessage, error) {
	s := array.NewSlice(col, int64(i), int64(i+1))
	defer s.Release()
	m, ok := s.(json.Marshaler)
	if !ok {
		return nil, errors.Errorf("unsupported column type %s", col.DataType())
	}
	data, err := m.MarshalJSON()
	if err != nil {
		return nil, errors.Wrapf(err, "encoding %s", col.DataType())
	}
	var vs []json.RawMessage
	if err := json.Unmarshal(data, &vs); err != nil {
		return nil, errors.Wrapf(err, "decoding %s", col.DataType())
	}
	if len(vs) != 1 {
		return nil, errors.Errorf("expected one %s value, got %d", col.DataType(), len(vs))
	}
	return vs[0], nil
}

// floatValue keeps a decimal point on whole numbers so the column is
// read back as floats.
func floatValue(v float64, bits int) json.RawMessage {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return null
	}
	s := strconv.FormatFloat(v, 'g', -1, bits)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return json.RawMessage(s)
}

func stringValue(s string, raw bool) (json.RawMessage, error) {
	if raw {
		if !json.Valid([]byte(s)) {
			return nil, errors.Errorf("invalid JSON %q", s)
		}
		return json.RawMessage(s), nil
	}
	buf := &bytes.Buffer{}
	if err := encodeString(buf, s); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
