// Package jsonarray implements an element-at-a-time encoder/decoder over a
// JSON array of model objects (spec §4.L).
package jsonarray

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/LimeMojito/trading-data-stream/internal/errs"
)

// VisitFunc is invoked on each decoded element before it is returned.
type VisitFunc[T any] func(T)

// Decode streams a JSON array of T, invoking visit (if non-nil) on each
// decoded element, skipping whitespace, expecting '[', yielding one
// element per object, tolerating a trailing ']'.
func Decode[T any](data []byte, visit VisitFunc[T]) ([]T, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, errs.Wrap(errs.Io, err, "read opening JSON array token")
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '[' {
		return nil, errs.New(errs.Io, "expected JSON array, got %v", tok)
	}

	var out []T
	for dec.More() {
		var elem T
		if err := dec.Decode(&elem); err != nil {
			return nil, errs.Wrap(errs.Io, err, "decode JSON array element")
		}
		if visit != nil {
			visit(elem)
		}
		out = append(out, elem)
	}

	// Tolerate (but do not require) the closing ']' token.
	_, _ = dec.Token()

	return out, nil
}

// Encode writes '[', each element JSON-serialized and comma-separated,
// then ']'.
func Encode[T any](out io.Writer, elements []T) error {
	if _, err := out.Write([]byte{'['}); err != nil {
		return errs.Wrap(errs.Io, err, "write JSON array open bracket")
	}
	enc := json.NewEncoder(&trimNewlineWriter{w: out})
	for i, elem := range elements {
		if i > 0 {
			if _, err := out.Write([]byte{','}); err != nil {
				return errs.Wrap(errs.Io, err, "write JSON array separator")
			}
		}
		if err := enc.Encode(elem); err != nil {
			return errs.Wrap(errs.Io, err, "encode JSON array element %d", i)
		}
	}
	if _, err := out.Write([]byte{']'}); err != nil {
		return errs.Wrap(errs.Io, err, "write JSON array close bracket")
	}
	return nil
}

// trimNewlineWriter strips the trailing newline json.Encoder.Encode always
// appends, so consecutive elements are separated only by the explicit comma.
type trimNewlineWriter struct {
	w io.Writer
}

func (t *trimNewlineWriter) Write(p []byte) (int, error) {
	trimmed := bytes.TrimSuffix(p, []byte{'\n'})
	n, err := t.w.Write(trimmed)
	if err != nil {
		return n, err
	}
	return len(p), nil
}
