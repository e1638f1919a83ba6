// Package output accumulates rendered lines per key and persists them in
// large chunks.
//
// The first physical flush of a key creates (or truncates) its destination;
// every later flush appends. A KeyedWriter is owned by a single goroutine
// and does no locking of its own.
package output

import (
	"bytes"
	"errors"
	"fmt"
	"sort"

	"uihlog/internal/metrics"
)

// DefaultThreshold is the per-key high-water mark that triggers a flush
// from inside Write.
const DefaultThreshold = 2 * 1024 * 1024

var ErrEmptyKey = errors.New("output: empty key")

// Persister is the storage capability the writer flushes into.
// appendMode is false exactly once per key: on its first flush.
type Persister interface {
	Persist(key string, data []byte, appendMode bool) error
}

type keyBuffer struct {
	data    bytes.Buffer
	created bool
}

type KeyedWriter struct {
	persist   Persister
	threshold int
	metrics   *metrics.Metrics
	bufs      map[string]*keyBuffer
}

// NewKeyedWriter returns a writer flushing into p. threshold <= 0 selects
// DefaultThreshold; m may be nil.
func NewKeyedWriter(p Persister, threshold int, m *metrics.Metrics) *KeyedWriter {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &KeyedWriter{
		persist:   p,
		threshold: threshold,
		metrics:   m,
		bufs:      make(map[string]*keyBuffer),
	}
}

// Write buffers text under key. Once the buffer grows past the threshold it
// is flushed synchronously before Write returns.
func (w *KeyedWriter) Write(key, text string) error {
	if key == "" {
		return ErrEmptyKey
	}

	b, ok := w.bufs[key]
	if !ok {
		b = &keyBuffer{}
		w.bufs[key] = b
	}
	b.data.WriteString(text)

	if b.data.Len() > w.threshold {
		return w.flushKey(key, b)
	}
	return nil
}

// Flush persists every key holding pending data. Keys are visited in
// sorted order so failures are reproducible. A second Flush without
// intervening writes does no I/O.
func (w *KeyedWriter) Flush() error {
	keys := make([]string, 0, len(w.bufs))
	for k, b := range w.bufs {
		if b.data.Len() > 0 {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	for _, k := range keys {
		if err := w.flushKey(k, w.bufs[k]); err != nil {
			return err
		}
	}
	return nil
}

// Keys returns the keys that have been persisted at least once, sorted.
func (w *KeyedWriter) Keys() []string {
	keys := make([]string, 0, len(w.bufs))
	for k, b := range w.bufs {
		if b.created {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// Pending returns the number of buffered bytes for key.
func (w *KeyedWriter) Pending(key string) int {
	if b, ok := w.bufs[key]; ok {
		return b.data.Len()
	}
	return 0
}

func (w *KeyedWriter) flushKey(key string, b *keyBuffer) error {
	n := b.data.Len()
	if err := w.persist.Persist(key, b.data.Bytes(), b.created); err != nil {
		return fmt.Errorf("flush %q: %w", key, err)
	}
	b.created = true
	b.data.Reset()

	if w.metrics != nil {
		w.metrics.AddFlush(n)
	}
	return nil
}
