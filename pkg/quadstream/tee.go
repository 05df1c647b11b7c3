// Copyright 2026 Pierre-Antoine Champin
//
// SPDX-License-Identifier: CECILL-B

package quadstream

import (
	"log/slog"
	"sync"

	"github.com/geoknoesis/rdf-go/rdf"
)

// Tee duplicates every successful item of quads to two destinations without
// buffering the whole stream.
//
// A background goroutine drives the background sink over a channel; the
// foreground handler consumes the original stream, with every successful
// item mirrored into the channel as it passes. When the foreground returns
// (stream exhausted or handler failure), the channel is closed so the
// background sink observes end-of-stream.
//
// Tee returns the foreground result. A background failure is only logged:
// the overall run must not depend on the secondary destination.
func Tee(quads *Iter, foreground Handler, background Sink, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	ch := make(chan rdf.Statement)
	bg := make(chan error, 1)
	go func() {
		err := background.HandleQuads(FromChannel(ch))
		for range ch {
			// keep draining so the foreground never blocks on a dead sink
		}
		bg <- err
	}()

	var closeOnce sync.Once
	closeCh := func() { closeOnce.Do(func() { close(ch) }) }

	mirrored := New(func() (Item, bool) {
		item, ok := quads.Next()
		if !ok {
			closeCh()
			return Item{}, false
		}
		if item.Err == nil {
			ch <- item.Quad
		}
		return item, true
	})

	err := foreground(mirrored)
	// the foreground handler may have stopped pulling before the end
	closeCh()
	if bgErr := <-bg; bgErr != nil {
		logger.Warn("tee.background.error", "err", bgErr)
	}
	return err
}
