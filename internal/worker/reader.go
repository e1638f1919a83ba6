// internal/worker/reader.go
package worker

import (
	"bytes"
	"fmt"
	"os"
	"unicode/utf8"

	"uihlog/internal/pool"
)

// ReadFile returns the whole content of path as a string. Invalid UTF-8
// sequences are replaced with U+FFFD instead of failing the read; log files
// written by foreign-locale tools regularly contain a few.
//
// The read goes through a pooled buffer; the returned string is an
// independent copy, so decoded lines may keep referencing it.
func ReadFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	buf := pool.ReadPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer pool.PutRead(buf)

	if _, err := buf.ReadFrom(f); err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}

	raw := buf.Bytes()
	if utf8.Valid(raw) {
		return string(raw), nil
	}
	return string(bytes.ToValidUTF8(raw, []byte(string(utf8.RuneError)))), nil
}
