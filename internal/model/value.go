// Package model defines the shared types of the benchmark comparison
// pipeline: the dynamic document tree produced by the harnesses and the
// normalized result, comparison, and report shapes consumed downstream.
package model

import (
	"encoding/json"
	"io"
	"strconv"

	"github.com/rotisserie/eris"
)

// Kind discriminates the variants of a Value.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindMapping
	KindSequence
)

// Value is a tagged recursive representation of an arbitrary JSON-like
// document. Harness output has no fixed schema, so the pipeline searches for
// shapes rather than unmarshaling into structs. Mapping keys preserve
// document order, which keeps traversal (and therefore the final report)
// deterministic for a given input.
type Value struct {
	kind   Kind
	num    float64
	str    string
	boolv  bool
	keys   []string
	fields map[string]Value
	items  []Value
}

// Null returns the null Value.
func Null() Value { return Value{kind: KindNull} }

// Bool returns a boolean Value.
func Bool(b bool) Value { return Value{kind: KindBool, boolv: b} }

// Number returns a numeric Value.
func Number(n float64) Value { return Value{kind: KindNumber, num: n} }

// String returns a string Value.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Mapping builds a mapping Value from alternating key/value pairs, keeping
// the given order. Intended for tests and fixtures.
func Mapping(pairs ...any) Value {
	v := Value{kind: KindMapping, fields: make(map[string]Value)}
	for i := 0; i+1 < len(pairs); i += 2 {
		key := pairs[i].(string)
		v.keys = append(v.keys, key)
		v.fields[key] = toValue(pairs[i+1])
	}
	return v
}

// Sequence builds a sequence Value.
func Sequence(items ...any) Value {
	v := Value{kind: KindSequence}
	for _, it := range items {
		v.items = append(v.items, toValue(it))
	}
	return v
}

func toValue(x any) Value {
	switch t := x.(type) {
	case Value:
		return t
	case nil:
		return Null()
	case bool:
		return Bool(t)
	case int:
		return Number(float64(t))
	case int64:
		return Number(float64(t))
	case float64:
		return Number(t)
	case string:
		return String(t)
	default:
		return Null()
	}
}

// Kind reports the variant of v.
func (v Value) Kind() Kind { return v.kind }

// IsMapping reports whether v is a mapping.
func (v Value) IsMapping() bool { return v.kind == KindMapping }

// IsSequence reports whether v is a sequence.
func (v Value) IsSequence() bool { return v.kind == KindSequence }

// Num returns the numeric payload and whether v is a number.
func (v Value) Num() (float64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	return v.num, true
}

// Str returns the string payload and whether v is a string.
func (v Value) Str() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.str, true
}

// Field returns the value under key and whether it exists. Non-mapping
// values have no fields.
func (v Value) Field(key string) (Value, bool) {
	if v.kind != KindMapping {
		return Value{}, false
	}
	f, ok := v.fields[key]
	return f, ok
}

// Keys returns the mapping keys in document order.
func (v Value) Keys() []string {
	if v.kind != KindMapping {
		return nil
	}
	return v.keys
}

// Items returns the sequence elements.
func (v Value) Items() []Value {
	if v.kind != KindSequence {
		return nil
	}
	return v.items
}

// Len returns the number of fields or items, depending on variant.
func (v Value) Len() int {
	switch v.kind {
	case KindMapping:
		return len(v.keys)
	case KindSequence:
		return len(v.items)
	default:
		return 0
	}
}

// DecodeValue reads one JSON document from r into a Value tree. Object key
// order is preserved as encountered.
func DecodeValue(r io.Reader) (Value, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	v, err := decodeNext(dec)
	if err != nil {
		return Value{}, eris.Wrap(err, "model: decode document")
	}
	return v, nil
}

func decodeNext(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return Value{}, err
	}
	return decodeToken(dec, tok)
}

func decodeToken(dec *json.Decoder, tok json.Token) (Value, error) {
	switch t := tok.(type) {
	case nil:
		return Null(), nil
	case bool:
		return Bool(t), nil
	case string:
		return String(t), nil
	case json.Number:
		f, err := strconv.ParseFloat(t.String(), 64)
		if err != nil {
			return Value{}, eris.Wrapf(err, "parse number %q", t.String())
		}
		return Number(f), nil
	case json.Delim:
		switch t {
		case '{':
			return decodeMapping(dec)
		case '[':
			return decodeSequence(dec)
		default:
			return Value{}, eris.Errorf("unexpected delimiter %q", t.String())
		}
	default:
		return Value{}, eris.Errorf("unexpected token %v", tok)
	}
}

func decodeMapping(dec *json.Decoder) (Value, error) {
	v := Value{kind: KindMapping, fields: make(map[string]Value)}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return Value{}, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return Value{}, eris.Errorf("object key is not a string: %v", keyTok)
		}
		child, err := decodeNext(dec)
		if err != nil {
			return Value{}, err
		}
		if _, dup := v.fields[key]; !dup {
			v.keys = append(v.keys, key)
		}
		v.fields[key] = child
	}
	// Consume the closing '}'.
	if _, err := dec.Token(); err != nil {
		return Value{}, err
	}
	return v, nil
}

func decodeSequence(dec *json.Decoder) (Value, error) {
	v := Value{kind: KindSequence}
	for dec.More() {
		child, err := decodeNext(dec)
		if err != nil {
			return Value{}, err
		}
		v.items = append(v.items, child)
	}
	if _, err := dec.Token(); err != nil {
		return Value{}, err
	}
	return v, nil
}
