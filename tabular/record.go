package tabular

import (
	"bytes"
	"encoding/json"
	"errors"
)

// Record is a row keyed by column name that remembers insertion order.
type Record struct {
	keys   []string
	values map[string]Value
}

func NewRecord(capacity int) *Record {
	return &Record{
		keys:   make([]string, 0, capacity),
		values: make(map[string]Value, capacity),
	}
}

// RecordOf builds a record from alternating key/value pairs. Values go through FromAny.
func RecordOf(pairs ...any) *Record {
	r := NewRecord(len(pairs) / 2)
	for i := 0; i+1 < len(pairs); i += 2 {
		key, _ := pairs[i].(string)
		r.Set(key, FromAny(pairs[i+1]))
	}
	return r
}

// Set stores the value, appending the key when it is new.
func (r *Record) Set(key string, v Value) {
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.values[key] = v
}

// SetIfMissing stores the value only when the key is not present yet.
func (r *Record) SetIfMissing(key string, v Value) bool {
	if _, ok := r.values[key]; ok {
		return false
	}
	r.keys = append(r.keys, key)
	r.values[key] = v
	return true
}

func (r *Record) Get(key string) Value {
	if r == nil {
		return Absent()
	}
	return r.values[key]
}

func (r *Record) Lookup(key string) (Value, bool) {
	if r == nil {
		return Absent(), false
	}
	v, ok := r.values[key]
	return v, ok
}

func (r *Record) Keys() []string {
	if r == nil {
		return nil
	}
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

func (r *Record) Len() int {
	if r == nil {
		return 0
	}
	return len(r.keys)
}

func (r *Record) Clone() *Record {
	c := NewRecord(r.Len())
	for _, k := range r.keys {
		c.Set(k, r.values[k])
	}
	return c
}

// Strings flattens the record into a plain string map.
func (r *Record) Strings() map[string]string {
	out := make(map[string]string, r.Len())
	for _, k := range r.keys {
		out[k] = r.values[k].String()
	}
	return out
}

func (r *Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := r.values[k].MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON keeps the key order of the JSON object.
func (r *Record) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return errors.New("record must be a json object")
	}
	*r = *NewRecord(8)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := tok.(string)
		var raw any
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		r.Set(key, FromAny(raw))
	}
	_, err = dec.Token()
	return err
}
