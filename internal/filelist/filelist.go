// Package filelist discovers the numbered input files of a run and puts them
// in processing order.
//
// A run is split across files named "<id>.<ext>" or "<id>.<anything>.<ext>".
// Order is by the integer id, so 2.uihlog comes before 10.uihlog.
package filelist

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"uihlog/internal/model"

	"github.com/rs/zerolog"
)

// DefaultExt is the canonical input extension, without the dot.
const DefaultExt = "uihlog"

// List enumerates the regular files of dir with extension ext and returns
// them ordered by id. Files whose id does not parse are dropped with a
// diagnostic.
func List(dir, ext string, log zerolog.Logger) ([]model.FileEntry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", dir, err)
	}

	paths := make([]string, 0, len(entries))
	for _, e := range entries {
		full := filepath.Join(dir, e.Name())
		if !isRegular(full, e) {
			continue
		}
		paths = append(paths, full)
	}
	return Order(paths, ext, log), nil
}

func isRegular(path string, e fs.DirEntry) bool {
	if e.Type()&fs.ModeSymlink != 0 {
		info, err := os.Stat(path)
		return err == nil && info.Mode().IsRegular()
	}
	return e.Type().IsRegular()
}

// Order keeps the paths with extension ext and a numeric id and sorts them
// by id ascending. Equal ids are ordered by file name.
func Order(paths []string, ext string, log zerolog.Logger) []model.FileEntry {
	suffix := "." + ext

	files := make([]model.FileEntry, 0, len(paths))
	for _, p := range paths {
		if filepath.Ext(p) != suffix {
			continue
		}
		id, ok := ID(p)
		if !ok {
			log.Warn().Str("path", p).Msg("invalid file name, skipped")
			continue
		}
		files = append(files, model.FileEntry{Path: p, ID: id})
	}

	sort.SliceStable(files, func(i, j int) bool {
		if files[i].ID != files[j].ID {
			return files[i].ID < files[j].ID
		}
		return filepath.Base(files[i].Path) < filepath.Base(files[j].Path)
	})
	return files
}

// ID parses the leading integer of a file name: the stem up to its first
// '.'. "7.uihlog" and "7.svc.uihlog" both have id 7.
func ID(path string) (int, bool) {
	name := filepath.Base(path)
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	if i := strings.IndexByte(stem, '.'); i >= 0 {
		stem = stem[:i]
	}

	id, err := strconv.ParseInt(stem, 10, 32)
	if err != nil {
		return 0, false
	}
	return int(id), true
}
