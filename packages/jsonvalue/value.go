// Package jsonvalue models JSON documents as ordered, dynamically typed values
// and compares them structurally.
//
// A decoded document is built only from these types:
//
//	nil, bool, string, Number, []any, *Object
//
// Objects keep their keys in document order so reports can show bodies the
// way the server sent them. Equality ignores key order.
package jsonvalue

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// ErrInvalidJSON is returned by Parse for input that is not a JSON document.
var ErrInvalidJSON = errors.New("invalid JSON")

// Number is a JSON number kept in its original textual form.
type Number string

func (n Number) String() string { return string(n) }

func (n Number) MarshalJSON() ([]byte, error) {
	if n == "" {
		return []byte("0"), nil
	}
	return []byte(n), nil
}

// Object is a JSON object with insertion-ordered keys.
type Object struct {
	keys   []string
	values map[string]any
}

func NewObject() *Object {
	return &Object{values: make(map[string]any)}
}

// Set stores v under key. A repeated key keeps its first position and takes
// the last value.
func (o *Object) Set(key string, v any) *Object {
	if o.values == nil {
		o.values = make(map[string]any)
	}
	if _, ok := o.values[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.values[key] = v
	return o
}

func (o *Object) Get(key string) (any, bool) {
	v, ok := o.values[key]
	return v, ok
}

// GetFold looks a key up case-insensitively, preferring an exact match.
func (o *Object) GetFold(key string) (string, any, bool) {
	if v, ok := o.values[key]; ok {
		return key, v, true
	}
	for _, k := range o.keys {
		if strings.EqualFold(k, key) {
			return k, o.values[k], true
		}
	}
	return "", nil, false
}

func (o *Object) Has(key string) bool {
	_, ok := o.values[key]
	return ok
}

func (o *Object) Keys() []string {
	out := make([]string, len(o.keys))
	copy(out, o.keys)
	return out
}

func (o *Object) Len() int {
	return len(o.keys)
}

func (o *Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(o.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Parse decodes a JSON document into the ordered model.
func Parse(data []byte) (any, error) {
	if !gjson.ValidBytes(data) {
		return nil, ErrInvalidJSON
	}
	return FromResult(gjson.ParseBytes(data)), nil
}

// FromResult converts a gjson result into the ordered model.
func FromResult(r gjson.Result) any {
	switch r.Type {
	case gjson.Null:
		return nil
	case gjson.False:
		return false
	case gjson.True:
		return true
	case gjson.Number:
		return Number(strings.TrimSpace(r.Raw))
	case gjson.String:
		return r.Str
	case gjson.JSON:
		if r.IsArray() {
			arr := make([]any, 0)
			r.ForEach(func(_, v gjson.Result) bool {
				arr = append(arr, FromResult(v))
				return true
			})
			return arr
		}
		obj := NewObject()
		r.ForEach(func(k, v gjson.Result) bool {
			obj.Set(k.Str, FromResult(v))
			return true
		})
		return obj
	}
	return nil
}

// From converts an arbitrary Go value into the ordered model by encoding it
// as JSON. Values already in the model are returned unchanged.
func From(v any) (any, error) {
	if isModel(v) {
		return v, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding value: %w", err)
	}
	return Parse(data)
}

// MustFrom is From for literals known to be encodable.
func MustFrom(v any) any {
	out, err := From(v)
	if err != nil {
		panic(err)
	}
	return out
}

// Encode renders v as compact JSON for messages.
func Encode(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}

// Lookup walks object keys from v and reports whether the full path exists.
func Lookup(v any, path ...string) (any, bool) {
	cur := v
	for _, key := range path {
		obj, ok := cur.(*Object)
		if !ok {
			return nil, false
		}
		cur, ok = obj.Get(key)
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// TypeName returns the JSON type name of a model value.
func TypeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case Number:
		return "number"
	case string:
		return "string"
	case []any:
		return "array"
	case *Object:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}

func isModel(v any) bool {
	switch val := v.(type) {
	case nil, bool, string, Number, *Object:
		return true
	case []any:
		for _, item := range val {
			if !isModel(item) {
				return false
			}
		}
		return true
	}
	return false
}
