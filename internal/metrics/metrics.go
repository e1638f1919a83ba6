package metrics

import (
	"fmt"
	"strings"
	"sync/atomic"
)

// Metrics collects the counters of one conversion run.
//
// Decode tasks run on their own goroutines while the consumer flushes, so
// every field is updated atomically.
type Metrics struct {
	// ======================
	// Input
	// ======================

	// FilesQueued
	// - input files handed to a decode task
	FilesQueued int64

	// FilesDecoded
	// - input files read and decoded successfully
	FilesDecoded int64

	// FilesSkipped
	// - input files that could not be read; the run continues without them
	FilesSkipped int64

	// ======================
	// Records
	// ======================

	// RecordsDecoded
	// - valid records rendered to a line
	RecordsDecoded int64

	// RecordsSkipped
	// - malformed records dropped by the decoder (too few fields)
	RecordsSkipped int64

	// LinesDispatched
	// - writer calls made by the consumer; one line can count twice when
	//   process-keyed output is enabled
	LinesDispatched int64

	// ======================
	// Output
	// ======================

	// Flushes
	// - physical flushes (create or append) across all keys
	Flushes int64

	// BytesFlushed
	// - uncompressed bytes handed to the persister
	BytesFlushed int64

	// S3ObjectsUploaded / S3PutErrors
	// - optional export of finished outputs; errors count attempts, not files
	S3ObjectsUploaded int64
	S3PutErrors       int64
}

func New() *Metrics {
	return &Metrics{}
}

// AddFlush records one physical flush of n bytes.
func (m *Metrics) AddFlush(n int) {
	atomic.AddInt64(&m.Flushes, 1)
	atomic.AddInt64(&m.BytesFlushed, int64(n))
}

func (m *Metrics) String() string {
	var sb strings.Builder
	sb.Grow(256)

	fmt.Fprintf(&sb, "files_queued=%d\n", atomic.LoadInt64(&m.FilesQueued))
	fmt.Fprintf(&sb, "files_decoded=%d\n", atomic.LoadInt64(&m.FilesDecoded))
	fmt.Fprintf(&sb, "files_skipped=%d\n", atomic.LoadInt64(&m.FilesSkipped))

	fmt.Fprintf(&sb, "records_decoded=%d\n", atomic.LoadInt64(&m.RecordsDecoded))
	fmt.Fprintf(&sb, "records_skipped=%d\n", atomic.LoadInt64(&m.RecordsSkipped))
	fmt.Fprintf(&sb, "lines_dispatched=%d\n", atomic.LoadInt64(&m.LinesDispatched))

	fmt.Fprintf(&sb, "flushes=%d\n", atomic.LoadInt64(&m.Flushes))
	fmt.Fprintf(&sb, "bytes_flushed=%d\n", atomic.LoadInt64(&m.BytesFlushed))

	fmt.Fprintf(&sb, "s3_objects_uploaded=%d\n", atomic.LoadInt64(&m.S3ObjectsUploaded))
	fmt.Fprintf(&sb, "s3_put_errors=%d\n", atomic.LoadInt64(&m.S3PutErrors))

	return sb.String()
}
