package schedules

import (
	"bytes"
	"encoding/json"
)

// Field is a JSON field that distinguishes "absent" from "null" from a value.
// Set is true whenever the key appeared in the document; Value is nil when
// the key was explicitly null.
type Field[T any] struct {
	Set   bool
	Value *T
}

// UnmarshalJSON is only invoked for keys present in the input, null included.
func (f *Field[T]) UnmarshalJSON(data []byte) error {
	f.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		f.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	f.Value = &v
	return nil
}

// apply overwrites *dst with the field's value when the field was set
func (f Field[T]) apply(dst **T) {
	if f.Set {
		*dst = f.Value
	}
}
