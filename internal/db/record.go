package db

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Key is a primary key: one integer per field of the collection's key path.
type Key []int64

// ID builds the key of a record in a collection keyed by "id".
func ID(id int64) Key { return Key{id} }

// Int64 returns the first key component, the id for single-field keys.
func (k Key) Int64() int64 {
	if len(k) == 0 {
		return 0
	}
	return k[0]
}

func (k Key) String() string {
	parts := make([]string, len(k))
	for i, v := range k {
		parts[i] = strconv.FormatInt(v, 10)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

// document is a record decoded for storage: the JSON fields plus the column
// values extracted from them.
type document struct {
	fields map[string]any
	key    Key // nil when the key is to be generated
}

// newDocument decodes record (a struct, map, json.RawMessage or []byte holding
// a JSON object) and extracts its key.
func newDocument(c *Collection, record any) (*document, error) {
	raw, err := toJSON(record)
	if err != nil {
		return nil, err
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var fields map[string]any
	if err := dec.Decode(&fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	if fields == nil {
		return nil, fmt.Errorf("%w: record must be a JSON object", ErrInvalidRecord)
	}

	d := &document{fields: fields}
	key := make(Key, 0, len(c.KeyPath))
	for _, field := range c.KeyPath {
		v, present := fields[field]
		if !present || v == nil || isZeroNumber(v) {
			if c.AutoIncrement {
				return d, nil
			}
			return nil, fmt.Errorf("%w: %s.%s is required", ErrInvalidKey, c.Name, field)
		}
		n, ok := asInt64(v)
		if !ok {
			return nil, fmt.Errorf("%w: %s.%s must be an integer, got %v", ErrInvalidKey, c.Name, field, v)
		}
		key = append(key, n)
	}
	d.key = key
	return d, nil
}

func toJSON(record any) ([]byte, error) {
	switch r := record.(type) {
	case json.RawMessage:
		return r, nil
	case []byte:
		return r, nil
	default:
		b, err := json.Marshal(record)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
		}
		return b, nil
	}
}

// setKey writes a generated key back into the record.
func (d *document) setKey(c *Collection, key Key) {
	for i, field := range c.KeyPath {
		d.fields[field] = json.Number(strconv.FormatInt(key[i], 10))
	}
	d.key = key
}

// column returns the value stored in the column for field. Values that
// cannot be index keys (objects, arrays, booleans, null) are stored as NULL
// so the record is left out of that index.
func (d *document) column(field string) any {
	switch v := d.fields[field].(type) {
	case json.Number:
		if n, ok := asInt64(v); ok {
			return n
		}
		f, err := v.Float64()
		if err != nil {
			return nil
		}
		return f
	case string:
		return v
	default:
		return nil
	}
}

func (d *document) data() (string, error) {
	b, err := json.Marshal(d.fields)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	return string(b), nil
}

func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, true
		}
		f, err := n.Float64()
		if err != nil || f != math.Trunc(f) || math.Abs(f) > 1<<53 {
			return 0, false
		}
		return int64(f), true
	case int64:
		return n, true
	default:
		return 0, false
	}
}

func isZeroNumber(v any) bool {
	n, ok := asInt64(v)
	return ok && n == 0
}

// indexValue normalizes a lookup value the same way column values are stored.
func indexValue(v any) any {
	switch n := v.(type) {
	case int:
		return int64(n)
	case int32:
		return int64(n)
	case int64, string, float64:
		return n
	case json.Number:
		if i, ok := asInt64(n); ok {
			return i
		}
		f, _ := n.Float64()
		return f
	case time.Time:
		return n.Format(time.RFC3339Nano)
	default:
		return v
	}
}

// Decode unmarshals one stored document into a T.
func Decode[T any](raw json.RawMessage) (T, error) {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, fmt.Errorf("failed to decode record: %w", err)
	}
	return v, nil
}

// DecodeAll unmarshals stored documents into pointers to T, preserving order.
func DecodeAll[T any](raws []json.RawMessage) ([]*T, error) {
	out := make([]*T, 0, len(raws))
	for _, raw := range raws {
		v, err := Decode[T](raw)
		if err != nil {
			return nil, err
		}
		out = append(out, &v)
	}
	return out, nil
}
