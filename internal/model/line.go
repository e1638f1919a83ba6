// internal/model/line.go
package model

// Line
// ------------------------------------------------------------
// A single decoded record, the basic unit that flows from the
// decoder through the worker Manager into the keyed writer.
//
// Text is the fully rendered, newline-terminated output line. Go
// strings are immutable, so the same Text is handed to both the
// source-keyed and the process-keyed write without copying.
type Line struct {
	Source  string // output key: source identifier, path-safe
	Process string // output key: process identifier
	Text    string // rendered line including the trailing '\n'
}

// FileEntry
// ------------------------------------------------------------
// One input file discovered in a run directory. ID is the integer
// prefix of the file name (up to the first '.') and defines the
// processing order.
type FileEntry struct {
	Path string
	ID   int
}

// Batch
// ------------------------------------------------------------
// Result of decoding one input file inside a worker goroutine.
// Err is set when the file could not be read; Lines is then empty.
type Batch struct {
	Entry   FileEntry
	Lines   []Line
	Skipped int // malformed records dropped by the decoder
	Err     error
}
