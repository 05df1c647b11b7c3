// Copyright 2026 Pierre-Antoine Champin
//
// SPDX-License-Identifier: CECILL-B

package quadstream

import (
	"io"

	"github.com/geoknoesis/rdf-go/rdf"
)

// Item is one element of a quad stream: either a quad or an error.
//
// An error item does not necessarily terminate the stream; whether to keep
// pulling after an error is decided by the consuming sink.
type Item struct {
	Quad rdf.Statement
	Err  error
}

// Iter is a lazy, pull-based stream of quads.
//
// It is the transport type between pipeline stages. An Iter is exclusively
// owned by whichever stage is currently pulling from it; handing it to a
// Sink or Handler transfers that ownership.
type Iter struct {
	next func() (Item, bool)
}

// New wraps a pull function into an Iter.
//
// next returns the next item and true, or a zero Item and false once the
// stream is exhausted. New never calls next itself.
func New(next func() (Item, bool)) *Iter {
	return &Iter{next: next}
}

// Next pulls the next item from the stream.
func (it *Iter) Next() (Item, bool) {
	return it.next()
}

// FromQuads returns a stream over a fixed slice of quads.
func FromQuads(quads []rdf.Statement) *Iter {
	i := 0
	return New(func() (Item, bool) {
		if i >= len(quads) {
			return Item{}, false
		}
		q := quads[i]
		i++
		return Item{Quad: q}, true
	})
}

// FromReader adapts an rdf.Reader into a stream.
//
// io.EOF from the reader ends the stream; any other error is emitted as an
// error item and the stream ends after it (RDF decoders do not recover from
// parse errors).
func FromReader(r rdf.Reader) *Iter {
	done := false
	return New(func() (Item, bool) {
		if done {
			return Item{}, false
		}
		stmt, err := r.Next()
		if err == io.EOF {
			done = true
			_ = r.Close()
			return Item{}, false
		}
		if err != nil {
			done = true
			_ = r.Close()
			return Item{Err: err}, true
		}
		return Item{Quad: stmt}, true
	})
}

// FromChannel returns a stream draining a channel of quads, in arrival
// order, until the channel is closed.
func FromChannel(ch <-chan rdf.Statement) *Iter {
	return New(func() (Item, bool) {
		q, ok := <-ch
		if !ok {
			return Item{}, false
		}
		return Item{Quad: q}, true
	})
}

// Map returns a stream applying f to every quad. Error items pass through
// untouched.
func Map(it *Iter, f func(rdf.Statement) rdf.Statement) *Iter {
	return New(func() (Item, bool) {
		item, ok := it.Next()
		if !ok || item.Err != nil {
			return item, ok
		}
		return Item{Quad: f(item.Quad)}, true
	})
}

// Filter returns a stream keeping only quads for which keep returns true.
// Error items pass through untouched.
func Filter(it *Iter, keep func(rdf.Statement) bool) *Iter {
	return New(func() (Item, bool) {
		for {
			item, ok := it.Next()
			if !ok || item.Err != nil {
				return item, ok
			}
			if keep(item.Quad) {
				return item, true
			}
		}
	})
}

// Concat chains streams one after the other.
func Concat(its ...*Iter) *Iter {
	i := 0
	return New(func() (Item, bool) {
		for i < len(its) {
			item, ok := its[i].Next()
			if ok {
				return item, true
			}
			i++
		}
		return Item{}, false
	})
}

// Collect materializes the whole stream into a slice.
//
// The first error item aborts collection and is returned.
func Collect(it *Iter) ([]rdf.Statement, error) {
	var quads []rdf.Statement
	for {
		item, ok := it.Next()
		if !ok {
			return quads, nil
		}
		if item.Err != nil {
			return nil, item.Err
		}
		quads = append(quads, item.Quad)
	}
}
