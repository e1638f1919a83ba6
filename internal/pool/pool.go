package pool

import (
	"bytes"
	"sync"

	"github.com/klauspost/compress/gzip"
)

// ---------------------------------------------------------------
// Pools
//
// Every in-flight decode task reads a whole input file into memory
// and every gzip flush needs a compressor. Both are reused across
// files to keep GC pressure flat over long runs.
// ---------------------------------------------------------------

var (
	// ReadPool:
	//   - holds the raw bytes of one input file while it is converted
	//   - initial capacity 4MB (typical .uihlog files are up to 10MB)
	ReadPool = sync.Pool{
		New: func() any {
			return bytes.NewBuffer(make([]byte, 0, 4*1024*1024))
		},
	}

	// GzipPool:
	//   - gzip.Writer reuse for compressed output
	//   - BestSpeed: flushes sit on the consumer's hot path
	GzipPool = sync.Pool{
		New: func() any {
			w, _ := gzip.NewWriterLevel(nil, gzip.BestSpeed)
			return w
		},
	}
)

// MaxReadCap is the largest read buffer returned to the pool.
// Buffers grown by unusually large inputs are left to the GC.
const MaxReadCap = 32 * 1024 * 1024

// PutRead returns buf to ReadPool unless it grew beyond MaxReadCap.
func PutRead(buf *bytes.Buffer) {
	if buf.Cap() <= MaxReadCap {
		buf.Reset()
		ReadPool.Put(buf)
	}
}
