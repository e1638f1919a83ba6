package worker

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

// rec builds one raw record; seconds/millis go into both timestamps.
func rec(src, desc string, sec int64, msec int) string {
	ts := fmt.Sprintf("%d%03d", sec, msec)
	return strings.Join([]string{
		"LOG_DEV_INFO", ts, src, "file.cpp", "10", "Func", "0X1", desc, ts,
	}, "\x02")
}

func rawLog(records ...string) string {
	var b strings.Builder
	b.WriteString("Log header (UTC+00:00)\x03\x0a")
	for _, r := range records {
		b.WriteString(r)
		b.WriteString("\x01\x0a")
	}
	return b.String()
}

func writeLog(t *testing.T, dir, name string, records ...string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(rawLog(records...)), 0o644))
	return p
}

func readOut(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(b)
}

// testLogger is safe to use from decode goroutines.
func testLogger() (zerolog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return zerolog.New(zerolog.SyncWriter(&buf)), &buf
}
