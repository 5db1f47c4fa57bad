// Package binstate implements the checkpoint state blob codec: a compact,
// schema-less binary format (msgpack) standing in for the original
// engine's bincode-derived SavedState/SavedWindow types.
package binstate

import (
	"github.com/vmihailenco/msgpack/v5"

	"github.com/streamql/streamql/errkind"
)

// Encode serializes v to a state blob.
func Encode(v any) ([]byte, error) {
	b, err := msgpack.Marshal(v)
	if err != nil {
		return nil, errkind.StateError.New(err.Error())
	}
	return b, nil
}

// Decode deserializes a state blob into v, returning StateError on a
// truncated or malformed blob.
func Decode(data []byte, v any) error {
	if err := msgpack.Unmarshal(data, v); err != nil {
		return errkind.StateError.New(err.Error())
	}
	return nil
}
