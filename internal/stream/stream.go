// Package stream implements the lazy, pull-based iterator composition
// layer (spec §4.I): single-threaded cooperative sequences with next/
// hasNext/close, combined across sub-streams, adapted to and from JSON
// arrays, and folded from ticks into bars.
package stream

import (
	"io"

	"github.com/LimeMojito/trading-data-stream/internal/errs"
	"github.com/LimeMojito/trading-data-stream/internal/jsonarray"
)

// VisitFunc is a side-effect callback invoked exactly once per emitted
// element, before it is returned to the caller.
type VisitFunc[T any] func(T)

// Stream is a pull-based, single-threaded cooperative iterator. Close is
// idempotent; resources are released on the first call.
type Stream[T any] interface {
	HasNext() bool
	Next() (T, error)
	Close() error
}

// list is the simplest Stream: iterates a fixed in-memory slice.
type list[T any] struct {
	items  []T
	index  int
	visit  VisitFunc[T]
	closed bool
}

// FromList wraps a slice as a finite Stream, invoking visit (if non-nil)
// on each element as it is emitted.
func FromList[T any](items []T, visit VisitFunc[T]) Stream[T] {
	return &list[T]{items: items, visit: visit}
}

func (l *list[T]) HasNext() bool {
	return !l.closed && l.index < len(l.items)
}

func (l *list[T]) Next() (T, error) {
	var zero T
	if !l.HasNext() {
		return zero, errs.New(errs.Exhausted, "stream exhausted")
	}
	item := l.items[l.index]
	l.index++
	if l.visit != nil {
		l.visit(item)
	}
	return item, nil
}

func (l *list[T]) Close() error {
	l.closed = true
	return nil
}

// OpenFunc lazily opens the next sub-stream in a combine(); it is not
// called until the current sub-stream is exhausted.
type OpenFunc[T any] func() (Stream[T], bool, error)

// FilterFunc decides whether a combined element is emitted. A nil filter
// admits every element.
type FilterFunc[T any] func(T) bool

// combined lazily concatenates a sequence of sub-streams, opening each
// only when the previous one is exhausted, and optionally filtering
// elements.
type combined[T any] struct {
	open   OpenFunc[T]
	filter FilterFunc[T]
	cur    Stream[T]
	done   bool
	closed bool
	next   T
	have   bool
	err    error
}

// Combine lazily concatenates the sequence of sub-streams produced by
// open, skipping elements for which filter returns false. open returns
// (stream, ok, err); ok == false signals no more sub-streams.
func Combine[T any](open OpenFunc[T], filter FilterFunc[T]) Stream[T] {
	return &combined[T]{open: open, filter: filter}
}

// advance pulls until an element is buffered, the sub-stream sequence is
// exhausted, or an error occurs. An error is latched in c.err rather than
// discarded: HasNext() reports true so the caller is obliged to call
// Next(), which is where the error actually surfaces.
func (c *combined[T]) advance() {
	if c.have || c.done || c.err != nil {
		return
	}
	for {
		if c.cur == nil {
			sub, ok, err := c.open()
			if err != nil {
				c.err = err
				return
			}
			if !ok {
				c.done = true
				return
			}
			c.cur = sub
		}
		for c.cur.HasNext() {
			item, err := c.cur.Next()
			if err != nil {
				c.err = err
				return
			}
			if c.filter == nil || c.filter(item) {
				c.next = item
				c.have = true
				return
			}
		}
		_ = c.cur.Close()
		c.cur = nil
	}
}

func (c *combined[T]) HasNext() bool {
	if c.closed {
		return false
	}
	c.advance()
	return c.have || c.err != nil
}

func (c *combined[T]) Next() (T, error) {
	var zero T
	if c.closed {
		return zero, errs.New(errs.Exhausted, "stream closed")
	}
	c.advance()
	if c.err != nil {
		return zero, c.err
	}
	if !c.have {
		return zero, errs.New(errs.Exhausted, "stream exhausted")
	}
	item := c.next
	c.have = false
	return item, nil
}

func (c *combined[T]) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	if c.cur != nil {
		return c.cur.Close()
	}
	return nil
}

// jsonArrayStream lazily decodes a JSON array one element at a time from
// the underlying reader, rather than buffering the full decoded slice.
type jsonArrayStream[T any] struct {
	dec    *jsonDecoder[T]
	visit  VisitFunc[T]
	closer io.Closer
	closed bool
	peeked *T
	done   bool
}

// FromJSONArray opens a lazy element-at-a-time decoder over a JSON array
// read from r, invoking visit (if non-nil) on each decoded element.
func FromJSONArray[T any](r io.Reader, visit VisitFunc[T]) (Stream[T], error) {
	dec, err := newJSONDecoder[T](r)
	if err != nil {
		return nil, err
	}
	closer, _ := r.(io.Closer)
	return &jsonArrayStream[T]{dec: dec, visit: visit, closer: closer}, nil
}

func (j *jsonArrayStream[T]) HasNext() bool {
	if j.closed || j.done {
		return false
	}
	if j.peeked != nil {
		return true
	}
	item, ok, err := j.dec.next()
	if err != nil || !ok {
		j.done = true
		return false
	}
	j.peeked = &item
	return true
}

func (j *jsonArrayStream[T]) Next() (T, error) {
	var zero T
	if !j.HasNext() {
		return zero, errs.New(errs.Exhausted, "stream exhausted")
	}
	item := *j.peeked
	j.peeked = nil
	if j.visit != nil {
		j.visit(item)
	}
	return item, nil
}

func (j *jsonArrayStream[T]) Close() error {
	if j.closed {
		return nil
	}
	j.closed = true
	if j.closer != nil {
		return j.closer.Close()
	}
	return nil
}

// ToJSONArray drains stream into a JSON array written to out, per
// internal/jsonarray's wire format.
func ToJSONArray[T any](out io.Writer, s Stream[T]) error {
	var elements []T
	for s.HasNext() {
		item, err := s.Next()
		if err != nil {
			return err
		}
		elements = append(elements, item)
	}
	return jsonarray.Encode(out, elements)
}
