// Package serialize encodes the records persisted by the task and artifact stores.
package serialize

import (
	"fmt"

	"github.com/goccy/go-json"
)

// Encode marshals a record for storage.
func Encode(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("cannot encode %T: %w", v, err)
	}
	return data, nil
}

// Decode unmarshals a stored record into a new T.
func Decode[T any](data []byte) (*T, error) {
	v := new(T)
	if err := json.Unmarshal(data, v); err != nil {
		return nil, fmt.Errorf("cannot decode %T: %w", v, err)
	}
	return v, nil
}
