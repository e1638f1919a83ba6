// internal/worker/manager.go
package worker

import (
	"sync/atomic"

	"uihlog/internal/decoder"
	"uihlog/internal/metrics"
	"uihlog/internal/model"

	"github.com/rs/zerolog"
)

// DefaultConcurrency is the number of files decoded ahead of the consumer.
// Measured on a 4-core machine, 2 or 3 beats anything larger; it is not
// scaled with GOMAXPROCS.
const DefaultConcurrency = 2

// KeyWriter is the sink the Manager dispatches decoded lines into.
// output.KeyedWriter is the production implementation.
type KeyWriter interface {
	Write(key, text string) error
	Flush() error
}

// Options controls a Manager run.
type Options struct {
	Concurrency int  // in-flight decode tasks; <= 0 selects DefaultConcurrency
	PidOutput   bool // also write every line under its process key
}

// Manager converts an ordered list of input files.
//
// Flow:
//   - up to Concurrency decode tasks run ahead, each on its own goroutine
//     with its own Decoder (the timestamp cache never crosses files)
//   - the consumer always waits for the OLDEST task, never the first one to
//     finish, so lines reach the writer in file order
//   - as soon as a task is taken off the window a replacement is launched,
//     then the finished batch is dispatched; decoding of the next files
//     overlaps the writer work
//
// The writer is touched only by the consumer goroutine. There is no
// cancellation: a launched task always runs to completion.
type Manager struct {
	opts    Options
	writer  KeyWriter
	log     zerolog.Logger
	metrics *metrics.Metrics

	// load reads and decodes one file; replaced in tests
	load func(model.FileEntry) model.Batch
}

func NewManager(opts Options, w KeyWriter, log zerolog.Logger, m *metrics.Metrics) *Manager {
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	if m == nil {
		m = metrics.New()
	}
	mgr := &Manager{
		opts:    opts,
		writer:  w,
		log:     log,
		metrics: m,
	}
	mgr.load = mgr.decodeFile
	return mgr
}

// Run processes files in order and performs the final flush. The only error
// it returns is a writer failure; unreadable inputs are skipped.
func (m *Manager) Run(files []model.FileEntry) error {
	next := 0
	inflight := make([]<-chan model.Batch, 0, m.opts.Concurrency)

	launch := func() {
		if next >= len(files) {
			return
		}
		entry := files[next]
		next++

		done := make(chan model.Batch, 1)
		atomic.AddInt64(&m.metrics.FilesQueued, 1)
		go func() {
			done <- m.load(entry)
		}()
		inflight = append(inflight, done)
	}

	// --- 1) fill the window ---
	for i := 0; i < m.opts.Concurrency; i++ {
		launch()
	}

	// --- 2) pop oldest, refill, dispatch ---
	for len(inflight) > 0 {
		batch := <-inflight[0]
		inflight = inflight[1:]

		launch()

		if err := m.dispatch(batch); err != nil {
			return err
		}
	}

	// --- 3) final flush ---
	return m.writer.Flush()
}

func (m *Manager) dispatch(batch model.Batch) error {
	if batch.Err != nil {
		atomic.AddInt64(&m.metrics.FilesSkipped, 1)
		m.log.Warn().
			Err(batch.Err).
			Str("path", batch.Entry.Path).
			Msg("failed to read input file")
		return nil
	}

	atomic.AddInt64(&m.metrics.FilesDecoded, 1)
	atomic.AddInt64(&m.metrics.RecordsDecoded, int64(len(batch.Lines)))
	atomic.AddInt64(&m.metrics.RecordsSkipped, int64(batch.Skipped))

	m.log.Debug().
		Str("path", batch.Entry.Path).
		Int("id", batch.Entry.ID).
		Int("records", len(batch.Lines)).
		Int("skipped", batch.Skipped).
		Msg("file decoded")

	var n int64
	for _, line := range batch.Lines {
		if m.opts.PidOutput {
			if err := m.writer.Write(line.Process, line.Text); err != nil {
				return err
			}
			n++
		}
		if err := m.writer.Write(line.Source, line.Text); err != nil {
			return err
		}
		n++
	}
	atomic.AddInt64(&m.metrics.LinesDispatched, n)
	return nil
}

// decodeFile runs on a task goroutine.
func (m *Manager) decodeFile(entry model.FileEntry) model.Batch {
	content, err := ReadFile(entry.Path)
	if err != nil {
		return model.Batch{Entry: entry, Err: err}
	}

	d := decoder.New(m.log.With().Str("file", entry.Path).Logger())
	lines := d.Decode(content)
	return model.Batch{Entry: entry, Lines: lines, Skipped: d.Skipped()}
}
