package models

import (
	"encoding/json"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
)

// MaxExtraFields caps the caller-supplied attributes a record keeps next to its named fields.
const MaxExtraFields = 32

var ErrTooManyFields = errors.New("too many fields")

// marshalFlat encodes known and extra as a single JSON object. Named fields win on a key clash.
func marshalFlat(known any, extra bson.M) ([]byte, error) {
	b, err := json.Marshal(known)
	if err != nil || len(extra) == 0 {
		return b, err
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(b, &fields); err != nil {
		return nil, err
	}

	merged := make(map[string]any, len(extra)+len(fields))
	for k, v := range extra {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return json.Marshal(merged)
}

// unmarshalFlat decodes data into known and returns every key not listed in names.
func unmarshalFlat(data []byte, known any, names ...string) (bson.M, error) {
	if err := json.Unmarshal(data, known); err != nil {
		return nil, err
	}

	var all map[string]any
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, err
	}
	for _, n := range names {
		delete(all, n)
	}

	if len(all) == 0 {
		return nil, nil
	}
	if len(all) > MaxExtraFields {
		return nil, fmt.Errorf("%w: %d extra attributes, at most %d allowed", ErrTooManyFields, len(all), MaxExtraFields)
	}
	return bson.M(all), nil
}
