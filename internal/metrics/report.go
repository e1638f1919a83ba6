package metrics

import (
	"fmt"
	"os"
	"sync/atomic"
	"time"

	json "github.com/goccy/go-json"
)

// Report is the JSON summary written at the end of a run.
type Report struct {
	RunID    string    `json:"run_id"`
	Target   string    `json:"target"`
	Started  time.Time `json:"started"`
	Elapsed  string    `json:"elapsed"`
	Outputs  []string  `json:"outputs"`
	Counters Counters  `json:"counters"`
}

// Counters is a point-in-time copy of Metrics.
type Counters struct {
	FilesQueued       int64 `json:"files_queued"`
	FilesDecoded      int64 `json:"files_decoded"`
	FilesSkipped      int64 `json:"files_skipped"`
	RecordsDecoded    int64 `json:"records_decoded"`
	RecordsSkipped    int64 `json:"records_skipped"`
	LinesDispatched   int64 `json:"lines_dispatched"`
	Flushes           int64 `json:"flushes"`
	BytesFlushed      int64 `json:"bytes_flushed"`
	S3ObjectsUploaded int64 `json:"s3_objects_uploaded"`
	S3PutErrors       int64 `json:"s3_put_errors"`
}

func (m *Metrics) Snapshot() Counters {
	return Counters{
		FilesQueued:       atomic.LoadInt64(&m.FilesQueued),
		FilesDecoded:      atomic.LoadInt64(&m.FilesDecoded),
		FilesSkipped:      atomic.LoadInt64(&m.FilesSkipped),
		RecordsDecoded:    atomic.LoadInt64(&m.RecordsDecoded),
		RecordsSkipped:    atomic.LoadInt64(&m.RecordsSkipped),
		LinesDispatched:   atomic.LoadInt64(&m.LinesDispatched),
		Flushes:           atomic.LoadInt64(&m.Flushes),
		BytesFlushed:      atomic.LoadInt64(&m.BytesFlushed),
		S3ObjectsUploaded: atomic.LoadInt64(&m.S3ObjectsUploaded),
		S3PutErrors:       atomic.LoadInt64(&m.S3PutErrors),
	}
}

// WriteReport encodes r as indented JSON into path.
func WriteReport(path string, r Report) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write report %s: %w", path, err)
	}
	return nil
}
