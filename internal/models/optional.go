package models

import (
	"bytes"
	"encoding/json"
)

// Optional distinguishes a JSON key that was absent, explicitly null, or set
// to a value. The zero value is absent.
type Optional[T any] struct {
	Present bool
	Null    bool
	Value   T
}

func Some[T any](value T) Optional[T] {
	return Optional[T]{Present: true, Value: value}
}

func Null[T any]() Optional[T] {
	return Optional[T]{Present: true, Null: true}
}

func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Present = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Null = true
		var zero T
		o.Value = zero
		return nil
	}
	o.Null = false
	return json.Unmarshal(data, &o.Value)
}

func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.Present || o.Null {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// HasValue reports whether a non-null value was supplied.
func (o Optional[T]) HasValue() bool {
	return o.Present && !o.Null
}

// Or returns the supplied value, or fallback when absent or null.
func (o Optional[T]) Or(fallback T) T {
	if o.HasValue() {
		return o.Value
	}
	return fallback
}

// Ptr maps the optional onto a nullable column: nil when absent or null.
func (o Optional[T]) Ptr() *T {
	if !o.HasValue() {
		return nil
	}
	v := o.Value
	return &v
}
