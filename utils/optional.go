package utils

import "encoding/json"

// Optional carries a JSON value together with whether its key was present.
// A present null sets Set and leaves Value at its zero value.
type Optional[T any] struct {
	Set   bool
	Value T
}

// Some returns a present Optional holding v
func Some[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Value: v}
}

func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		var zero T
		o.Value = zero
		return nil
	}
	return json.Unmarshal(data, &o.Value)
}

func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.Set {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// Pointer returns a pointer to the given value
func Pointer[T any](v T) *T {
	return &v
}
