package models

import (
	"bytes"
	"encoding/json"
)

// Optional distinguishes a JSON field that was omitted from one sent as null
// and from one carrying a value. The zero value means "omitted".
type Optional[T any] struct {
	Set   bool
	Null  bool
	Value T
}

// Some returns an Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Value: v}
}

// Null returns an Optional explicitly set to null.
func Null[T any]() Optional[T] {
	return Optional[T]{Set: true, Null: true}
}

// UnmarshalJSON is only invoked by encoding/json when the key is present.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Null = true
		var zero T
		o.Value = zero
		return nil
	}
	o.Null = false
	return json.Unmarshal(data, &o.Value)
}

// MarshalJSON renders null for an unset or null Optional.
func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.Set || o.Null {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}
