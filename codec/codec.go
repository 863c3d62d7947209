package codec

// Codec encodes/decodes values T to []byte for storage.
// rewind uses it for the whole-state document, but T is unconstrained.
type Codec[T any] interface {
	Encode(T) ([]byte, error)
	Decode([]byte) (T, error)
}
