package optional

import (
	"bytes"
	"encoding/json"
)

// Value is a JSON field that distinguishes an absent key from an explicit
// null. Set is true whenever the key was present.
type Value[T any] struct {
	Set   bool
	Value *T
}

// Of returns a set value.
func Of[T any](v T) Value[T] {
	return Value[T]{Set: true, Value: &v}
}

// Null returns a value explicitly set to null.
func Null[T any]() Value[T] {
	return Value[T]{Set: true}
}

// UnmarshalJSON is only invoked for keys present in the payload.
func (v *Value[T]) UnmarshalJSON(data []byte) error {
	v.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		v.Value = nil
		return nil
	}
	var decoded T
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	v.Value = &decoded
	return nil
}

// MarshalJSON renders the value or null.
func (v Value[T]) MarshalJSON() ([]byte, error) {
	if v.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*v.Value)
}

// IsNull reports whether the key was present with a null value.
func (v Value[T]) IsNull() bool {
	return v.Set && v.Value == nil
}
