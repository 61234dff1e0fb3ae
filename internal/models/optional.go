package models

import (
	"bytes"
	"encoding/json"
)

// Optional distinguishes a value that was never supplied from one that was
// supplied, possibly as JSON null.
type Optional[T any] struct {
	value   T
	present bool
	null    bool
}

// Some returns a present Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{value: v, present: true}
}

// Get returns the value and whether it was supplied.
func (o Optional[T]) Get() (T, bool) {
	return o.value, o.present
}

// IsPresent reports whether the field was supplied.
func (o Optional[T]) IsPresent() bool {
	return o.present
}

// IsNull reports whether the field was supplied as JSON null.
func (o Optional[T]) IsNull() bool {
	return o.present && o.null
}

// UnmarshalJSON marks the field present. encoding/json only calls it for keys
// that appear in the document, null included.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.present = true
	var zero T
	o.value = zero
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.null = true
		return nil
	}
	o.null = false
	return json.Unmarshal(data, &o.value)
}

// MarshalJSON writes the value, or null when absent.
func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.present || o.null {
		return []byte("null"), nil
	}
	return json.Marshal(o.value)
}
