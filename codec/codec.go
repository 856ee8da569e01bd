// Package codec holds the JSON encoding helpers shared by the registry,
// the event stream and the snapshot store.
package codec

import (
	"io"

	"github.com/goccy/go-json"
	"github.com/rotisserie/eris"
)

func Decode[T any](bz []byte) (T, error) {
	val := new(T)
	err := json.Unmarshal(bz, val)
	if err != nil {
		return *val, eris.Wrap(err, "")
	}
	return *val, nil
}

func Encode(val any) ([]byte, error) {
	bz, err := json.Marshal(val)
	if err != nil {
		return nil, eris.Wrap(err, "")
	}
	return bz, nil
}

// DecodeFrom decodes a single JSON value from the reader.
func DecodeFrom[T any](r io.Reader) (T, error) {
	val := new(T)
	err := json.NewDecoder(r).Decode(val)
	if err != nil {
		return *val, eris.Wrap(err, "")
	}
	return *val, nil
}

// EncodeTo writes the value as JSON to the writer.
func EncodeTo(w io.Writer, val any) error {
	return eris.Wrap(json.NewEncoder(w).Encode(val), "")
}
