// internal/worker/process.go
package worker

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"

	"uihlog/internal/config"
	"uihlog/internal/decoder"
	"uihlog/internal/filelist"
	"uihlog/internal/metrics"
	"uihlog/internal/output"

	"github.com/rs/zerolog"
)

// ErrNotFound is returned by Process for a target that is neither a regular
// file nor a directory.
var ErrNotFound = errors.New("target is neither a file nor a directory")

// Converter wires file ordering, the Manager and the keyed writer together
// for the two entry points: one directory of numbered files, or one file.
// Outputs are written next to the inputs; a failed run leaves whatever was
// already flushed in place.
type Converter struct {
	cfg     config.Config
	log     zerolog.Logger
	metrics *metrics.Metrics
}

func NewConverter(cfg config.Config, log zerolog.Logger, m *metrics.Metrics) *Converter {
	if m == nil {
		m = metrics.New()
	}
	return &Converter{cfg: cfg, log: log, metrics: m}
}

// Process dispatches on the kind of target and returns the output files
// written.
func (c *Converter) Process(target string) ([]string, error) {
	info, err := os.Stat(target)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrNotFound, target, err)
	}
	switch {
	case info.IsDir():
		return c.ProcessDir(target)
	case info.Mode().IsRegular():
		return c.ProcessFile(target)
	default:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, target)
	}
}

// ProcessDir converts every numbered input file of dir into one
// "<source>.txt" per source (and "<pid>.txt" per process when enabled).
func (c *Converter) ProcessDir(dir string) ([]string, error) {
	files, err := filelist.List(dir, c.cfg.Extension, c.log)
	if err != nil {
		return nil, err
	}

	c.log.Info().
		Str("dir", dir).
		Int("files", len(files)).
		Bool("pid_output", c.cfg.PidOutput).
		Int("concurrency", c.cfg.Concurrency).
		Msg("converting directory")

	p := c.persister(dir)
	w := output.NewKeyedWriter(p, c.cfg.FlushThreshold, c.metrics)
	mgr := NewManager(Options{
		Concurrency: c.cfg.Concurrency,
		PidOutput:   c.cfg.PidOutput,
	}, w, c.log, c.metrics)

	if err := mgr.Run(files); err != nil {
		return nil, err
	}
	return outputPaths(p, w.Keys()), nil
}

// ProcessFile converts a single input into "<name>.txt" beside it. An
// unreadable input is reported and skipped, not treated as a failure.
func (c *Converter) ProcessFile(path string) ([]string, error) {
	atomic.AddInt64(&c.metrics.FilesQueued, 1)

	content, err := ReadFile(path)
	if err != nil {
		atomic.AddInt64(&c.metrics.FilesSkipped, 1)
		c.log.Warn().Err(err).Str("path", path).Msg("failed to read input file")
		return nil, nil
	}

	d := decoder.New(c.log.With().Str("file", path).Logger())
	lines := d.Decode(content)

	atomic.AddInt64(&c.metrics.FilesDecoded, 1)
	atomic.AddInt64(&c.metrics.RecordsDecoded, int64(len(lines)))
	atomic.AddInt64(&c.metrics.RecordsSkipped, int64(d.Skipped()))

	p := c.persister(filepath.Dir(path))
	w := output.NewKeyedWriter(p, c.cfg.FlushThreshold, c.metrics)
	key := filepath.Base(path)
	for _, line := range lines {
		if err := w.Write(key, line.Text); err != nil {
			return nil, err
		}
	}
	atomic.AddInt64(&c.metrics.LinesDispatched, int64(len(lines)))

	if err := w.Flush(); err != nil {
		return nil, err
	}
	return outputPaths(p, w.Keys()), nil
}

func (c *Converter) persister(dir string) *output.FilePersister {
	p := output.NewFilePersister(dir, c.cfg.Gzip)
	if c.cfg.OutputSuffix != "" {
		p.Suffix = c.cfg.OutputSuffix
	}
	return p
}

func outputPaths(p *output.FilePersister, keys []string) []string {
	paths := make([]string, 0, len(keys))
	for _, k := range keys {
		paths = append(paths, p.Path(k))
	}
	return paths
}
