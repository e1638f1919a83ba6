package filelist

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"uihlog/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func paths(files []model.FileEntry) []string {
	out := make([]string, 0, len(files))
	for _, f := range files {
		out = append(out, filepath.Base(f.Path))
	}
	return out
}

func TestID(t *testing.T) {
	tests := []struct {
		path string
		id   int
		ok   bool
	}{
		{filepath.Join("logs", "1.uihlog"), 1, true},
		{filepath.Join("logs", "1.svc.uihlog"), 1, true},
		{"42.uihlog", 42, true},
		{"invalid.uihlog", 0, false},
		{".uihlog", 0, false},
		{"99999999999.uihlog", 0, false},
	}

	for _, tt := range tests {
		id, ok := ID(tt.path)
		require.Equal(t, tt.ok, ok, tt.path)
		require.Equal(t, tt.id, id, tt.path)
	}
}

func TestOrder_SameLength(t *testing.T) {
	files := Order([]string{"2.uihlog", "1.uihlog"}, DefaultExt, zerolog.Nop())
	require.Equal(t, []string{"1.uihlog", "2.uihlog"}, paths(files))
}

func TestOrder_NumericNotLexicographic(t *testing.T) {
	files := Order([]string{"10.uihlog", "2.uihlog", "1.uihlog", "100.uihlog"}, DefaultExt, zerolog.Nop())
	require.Equal(t, []string{"1.uihlog", "2.uihlog", "10.uihlog", "100.uihlog"}, paths(files))
	require.Equal(t, 10, files[2].ID)
}

func TestOrder_Empty(t *testing.T) {
	require.Empty(t, Order(nil, DefaultExt, zerolog.Nop()))
}

func TestOrder_InvalidFiles(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf)

	files := Order([]string{"thumbs.db", ".cargo-lock", "invalid.uihlog", "3.txt"}, DefaultExt, log)

	require.Empty(t, files)
	require.Contains(t, buf.String(), "invalid file name, skipped")
	require.Contains(t, buf.String(), "invalid.uihlog")
	require.NotContains(t, buf.String(), "thumbs.db")
}

func TestList(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"10.uihlog", "2.uihlog", "2.uihlog.txt", "abc.uihlog", "1.svc.uihlog"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "5.uihlog"), 0o755))

	files, err := List(dir, DefaultExt, zerolog.Nop())
	require.NoError(t, err)
	require.Equal(t, []string{"1.svc.uihlog", "2.uihlog", "10.uihlog"}, paths(files))
	require.Equal(t, filepath.Join(dir, "1.svc.uihlog"), files[0].Path)
}

func TestList_MissingDir(t *testing.T) {
	_, err := List(filepath.Join(t.TempDir(), "nope"), DefaultExt, zerolog.Nop())
	require.Error(t, err)
}
