package codec

import "encoding/json"

// JSON is the default codec: human-readable, stable field names, timestamps
// as RFC 3339 with offset. Note encoding/json restricts map key types to
// strings, integers, and encoding.TextMarshaler implementations; use CBOR or
// Msgpack for other key types.
type JSON[T any] struct{}

func (JSON[T]) Encode(v T) ([]byte, error) { return json.Marshal(v) }
func (JSON[T]) Decode(b []byte) (T, error) {
	var v T
	err := json.Unmarshal(b, &v)
	return v, err
}
