package output

import (
	"fmt"
	"os"
	"path/filepath"

	"uihlog/internal/pool"

	"github.com/klauspost/compress/gzip"
)

// DefaultSuffix is appended to a key to build its file name.
const DefaultSuffix = ".txt"

// FilePersister writes each key to "<Dir>/<key><Suffix>".
//
// With Gzip set every flush is written as its own gzip member and the file
// gets an extra ".gz". Concatenated members are a valid gzip stream, so the
// create/append contract holds for compressed output too.
type FilePersister struct {
	Dir    string
	Suffix string
	Gzip   bool
	Perm   os.FileMode
}

func NewFilePersister(dir string, gz bool) *FilePersister {
	return &FilePersister{Dir: dir, Suffix: DefaultSuffix, Gzip: gz, Perm: 0o644}
}

var _ Persister = (*FilePersister)(nil)

// Path returns the destination file for key.
func (p *FilePersister) Path(key string) string {
	name := key + p.Suffix
	if p.Gzip {
		name += ".gz"
	}
	return filepath.Join(p.Dir, name)
}

func (p *FilePersister) Persist(key string, data []byte, appendMode bool) error {
	flag := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if appendMode {
		flag = os.O_WRONLY | os.O_CREATE | os.O_APPEND
	}
	perm := p.Perm
	if perm == 0 {
		perm = 0o644
	}

	path := p.Path(key)
	f, err := os.OpenFile(path, flag, perm)
	if err != nil {
		return err
	}

	if p.Gzip {
		err = writeGzipMember(f, data)
	} else {
		_, err = f.Write(data)
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func writeGzipMember(f *os.File, data []byte) error {
	gz := pool.GzipPool.Get().(*gzip.Writer)
	defer pool.GzipPool.Put(gz)

	gz.Reset(f)
	if _, err := gz.Write(data); err != nil {
		_ = gz.Close()
		return err
	}
	return gz.Close()
}
