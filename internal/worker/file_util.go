// internal/worker/file_util.go
package worker

import (
	"path"
	"path/filepath"
)

// ObjectKey
// ------------------------------------------------------------
// S3 layout of exported outputs:
//
//	<prefix>/<run id>/<file name>
//
// Each run gets its own folder so repeated conversions of the same
// directory never overwrite each other. An empty prefix is dropped.
func ObjectKey(prefix, runID, localPath string) string {
	name := filepath.Base(localPath)
	if prefix == "" {
		return path.Join(runID, name)
	}
	return path.Join(prefix, runID, name)
}
