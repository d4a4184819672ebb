// Package codec defines how cached values are converted to and from the
// opaque byte form used for size accounting and durable storage.
package codec

import "encoding/json"

// Codec is the serialization capability a value type must satisfy to be
// cacheable. Implementations must be safe for concurrent use.
type Codec[V any] interface {
	Encode(v V) ([]byte, error)
	Decode(data []byte) (V, error)
}

// JSON serializes values with encoding/json. It is the default codec.
type JSON[V any] struct{}

func NewJSON[V any]() JSON[V] {
	return JSON[V]{}
}

func (JSON[V]) Encode(v V) ([]byte, error) {
	return json.Marshal(v)
}

func (JSON[V]) Decode(data []byte) (V, error) {
	var v V
	err := json.Unmarshal(data, &v)
	return v, err
}
