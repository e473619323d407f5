// Package jsonx wraps goccy/go-json for the JSON documents stored in jsonb columns.
package jsonx

import (
	"bytes"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
)

// ParseObject parses a JSON object into a map. Empty input yields an empty map.
func ParseObject(data []byte) (map[string]any, error) {
	obj := map[string]any{}
	if len(bytes.TrimSpace(data)) == 0 {
		return obj, nil
	}

	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, errors.WithMessage(err, "failed to parse JSON object")
	}

	return obj, nil
}

// Encode marshals v. A nil value is encoded as an empty object.
func Encode(v any) ([]byte, error) {
	if v == nil {
		return []byte("{}"), nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		return nil, errors.WithMessage(err, "failed to encode JSON")
	}

	return data, nil
}
