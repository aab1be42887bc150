package stream

import (
	"encoding/json"
	"io"

	"github.com/LimeMojito/trading-data-stream/internal/errs"
)

// jsonDecoder is a thin element-at-a-time wrapper over encoding/json's
// token API, used by jsonArrayStream to avoid buffering the whole array.
type jsonDecoder[T any] struct {
	dec *json.Decoder
}

func newJSONDecoder[T any](r io.Reader) (*jsonDecoder[T], error) {
	dec := json.NewDecoder(r)
	tok, err := dec.Token()
	if err != nil {
		if err == io.EOF {
			return &jsonDecoder[T]{dec: dec}, nil
		}
		return nil, errs.Wrap(errs.Io, err, "read opening JSON array token")
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '[' {
		return nil, errs.New(errs.Io, "expected JSON array, got %v", tok)
	}
	return &jsonDecoder[T]{dec: dec}, nil
}

// next decodes the next array element. ok is false once the array (or
// stream) is exhausted.
func (d *jsonDecoder[T]) next() (T, bool, error) {
	var zero T
	if !d.dec.More() {
		return zero, false, nil
	}
	var elem T
	if err := d.dec.Decode(&elem); err != nil {
		return zero, false, errs.Wrap(errs.Io, err, "decode JSON array element")
	}
	return elem, true, nil
}
