package mindmap

import (
	"bytes"
	"encoding/json"
	"reflect"
	"strings"
	"sync"
)

// Fields is an open record for keys the backend stores without interpreting.
// Values are string, json.Number, bool, []any, map[string]any or nil, so
// numbers keep their original literal across a round trip.
type Fields map[string]any

// Get returns the value stored under key.
func (f Fields) Get(key string) (any, bool) {
	v, ok := f[key]
	return v, ok
}

// merge copies src into f. A nil value deletes the key.
func (f *Fields) merge(src Fields) {
	for k, v := range src {
		if v == nil {
			delete(*f, k)
			continue
		}
		if *f == nil {
			*f = Fields{}
		}
		(*f)[k] = v
	}
	if len(*f) == 0 {
		*f = nil
	}
}

func (f *Fields) UnmarshalJSON(data []byte) error {
	if string(bytes.TrimSpace(data)) == "null" {
		*f = nil
		return nil
	}
	var m map[string]any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&m); err != nil {
		return err
	}
	*f = m
	return nil
}

type keySet map[string]struct{}

var knownKeysCache sync.Map

// knownKeys lists the lower-cased JSON names of t's fields, descending into
// untagged embedded structs the way encoding/json does.
func knownKeys(t reflect.Type) keySet {
	if cached, ok := knownKeysCache.Load(t); ok {
		return cached.(keySet)
	}
	keys := keySet{}
	collectKeys(t, keys)
	knownKeysCache.Store(t, keys)
	return keys
}

func collectKeys(t reflect.Type, keys keySet) {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		tag := f.Tag.Get("json")
		if tag == "-" {
			continue
		}
		name := strings.SplitN(tag, ",", 2)[0]
		if f.Anonymous && name == "" && f.Type.Kind() == reflect.Struct {
			collectKeys(f.Type, keys)
			continue
		}
		if !f.IsExported() {
			continue
		}
		if name == "" {
			name = f.Name
		}
		keys[strings.ToLower(name)] = struct{}{}
	}
}

// decodeObject decodes data into v, a pointer to a struct without custom
// unmarshalling, and returns every key v has no field for.
func decodeObject(data []byte, v any) (Fields, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return nil, err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	known := knownKeys(reflect.TypeOf(v).Elem())
	var extra Fields
	for key, value := range raw {
		if _, ok := known[strings.ToLower(key)]; ok {
			continue
		}
		decoded, err := decodeValue(value)
		if err != nil {
			return nil, err
		}
		if extra == nil {
			extra = Fields{}
		}
		extra[key] = decoded
	}
	return extra, nil
}

func decodeValue(raw json.RawMessage) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

// encodeObject marshals v and folds extra into the same JSON object. Declared
// fields win over extra keys of the same name.
func encodeObject(v any, extra Fields) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil || len(extra) == 0 {
		return data, err
	}

	var merged map[string]json.RawMessage
	if err := json.Unmarshal(data, &merged); err != nil {
		return nil, err
	}
	known := knownKeys(reflect.TypeOf(v))
	for key, value := range extra {
		if _, ok := known[strings.ToLower(key)]; ok {
			continue
		}
		encoded, err := json.Marshal(value)
		if err != nil {
			return nil, err
		}
		merged[key] = encoded
	}
	return json.Marshal(merged)
}
