// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/term"
)

var ErrInvalid = errors.New("invalid config")

// Config
//
// Everything one conversion run needs. Load() fills it from the
// environment with defaults; the CLI then overrides single fields from
// flags and calls Validate().
type Config struct {

	// ---------------------------
	// Run identity
	// ---------------------------

	RunID string // attached to every log line and the run report

	// ---------------------------
	// Ingestion
	// ---------------------------

	Concurrency    int    // in-flight decode tasks; 2-3 is the sweet spot
	FlushThreshold int    // per-key bytes buffered before a synchronous flush
	Extension      string // input extension without the dot
	PidOutput      bool   // also split output per process id

	// ---------------------------
	// Output
	// ---------------------------

	OutputSuffix string // appended to each key to build the file name
	Gzip         bool   // write gzip members instead of plain text
	ReportPath   string // optional JSON run report

	// ---------------------------
	// Logging
	// ---------------------------

	LogLevel  string
	LogPretty bool // console writer instead of JSON

	// ---------------------------
	// Optional S3 export of finished outputs
	// ---------------------------

	S3Bucket  string // empty disables the export
	S3Prefix  string
	AWSRegion string
	S3Timeout time.Duration // per PutObject attempt
	S3Retries int           // application level attempts; SDK retries stay 0
}

const (
	DefaultConcurrency    = 2
	DefaultFlushThreshold = 2 * 1024 * 1024
	DefaultExtension      = "uihlog"
	DefaultOutputSuffix   = ".txt"
)

// Load
//
// Reads the UIHLOG_* environment. Unset variables take their default; a
// variable that is set but malformed stops the process (fail-fast), as a
// half-configured run would silently produce the wrong output set.
func Load() Config {
	return Config{
		RunID: uuid.NewString(),

		Concurrency:    envInt("UIHLOG_CONCURRENCY", DefaultConcurrency),
		FlushThreshold: envInt("UIHLOG_FLUSH_THRESHOLD", DefaultFlushThreshold),
		Extension:      strings.TrimPrefix(env("UIHLOG_EXTENSION", DefaultExtension), "."),
		PidOutput:      envBool("UIHLOG_PID_OUTPUT", false),

		OutputSuffix: env("UIHLOG_OUTPUT_SUFFIX", DefaultOutputSuffix),
		Gzip:         envBool("UIHLOG_GZIP", false),
		ReportPath:   env("UIHLOG_REPORT", ""),

		LogLevel:  env("UIHLOG_LOG_LEVEL", "info"),
		LogPretty: envBool("UIHLOG_LOG_PRETTY", term.IsTerminal(int(os.Stderr.Fd()))),

		S3Bucket:  env("UIHLOG_S3_BUCKET", ""),
		S3Prefix:  strings.Trim(env("UIHLOG_S3_PREFIX", ""), "/"),
		AWSRegion: env("AWS_REGION", ""),
		S3Timeout: envDur("UIHLOG_S3_TIMEOUT", 5*time.Second),
		S3Retries: envInt("UIHLOG_S3_RETRIES", 3),
	}
}

// Validate rejects values no run can work with.
func (c Config) Validate() error {
	if c.Concurrency < 1 {
		return fmt.Errorf("%w: concurrency must be >= 1, got %d", ErrInvalid, c.Concurrency)
	}
	if c.FlushThreshold < 1 {
		return fmt.Errorf("%w: flush threshold must be >= 1, got %d", ErrInvalid, c.FlushThreshold)
	}
	if c.Extension == "" {
		return fmt.Errorf("%w: empty input extension", ErrInvalid)
	}
	if c.S3Bucket != "" && c.S3Retries < 1 {
		return fmt.Errorf("%w: s3 retries must be >= 1, got %d", ErrInvalid, c.S3Retries)
	}
	return nil
}

// S3Enabled reports whether finished outputs are exported.
func (c Config) S3Enabled() bool {
	return c.S3Bucket != ""
}

// env / envInt / envBool / envDur
//
// Optional variables with defaults. Malformed values are fatal.
func env(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	v := env(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Fatalf("invalid int env %s=%q: %v", key, v, err)
	}
	return n
}

func envBool(key string, def bool) bool {
	v := env(key, "")
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Fatalf("invalid bool env %s=%q: %v", key, v, err)
	}
	return b
}

func envDur(key string, def time.Duration) time.Duration {
	v := env(key, "")
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Fatalf("invalid duration env %s=%q: %v", key, v, err)
	}
	return d
}
