// Package decoder turns the control-byte framed content of a .uihlog file
// into rendered text lines.
//
// # Framing
//
//	header ETX LF
//	record SOH LF
//	record SOH LF
//	...
//
// Fields inside a record are separated by STX. The header is free text and
// may carry a timezone hint such as "(UTC+08:00)".
//
// Descriptions may contain stray SOH LF pairs, so every record but the last
// is terminated by the first SOH LF that is immediately followed by "LOG"
// (the start of the next record's level field). The last record falls back
// to a bare SOH LF.
//
// A Decoder is not safe for concurrent use. Each worker goroutine builds its
// own, which also scopes the timestamp cache to one file.
package decoder

import (
	"strings"
	"time"

	"uihlog/internal/model"

	"github.com/rs/zerolog"
)

const (
	headerEnd    = "\x03\x0a"    // ETX + LF
	recordEnd    = "\x01\x0a"    // SOH + LF
	recordEndTag = "\x01\x0aLOG" // SOH + LF + next record's level prefix
	fieldSep     = "\x02"        // STX
)

// field positions inside a record
const (
	fieldLevel = iota
	fieldLocalTS
	fieldSrcPidTid
	fieldFileName
	fieldLineNo
	fieldFunction
	fieldTag
	fieldDescription
	fieldServerTS
	fieldCount
)

// typicalRecordLen sizes the result slice up front.
const typicalRecordLen = 200

type Decoder struct {
	log     zerolog.Logger
	loc     *time.Location
	ts      timeCache
	skipped int
}

// New returns a Decoder that reports diagnostics to log. Until a header
// provides a timezone hint, timestamps render in LocalFallback().
func New(log zerolog.Logger) *Decoder {
	loc := LocalFallback()
	return &Decoder{
		log: log,
		loc: loc,
		ts:  timeCache{loc: loc},
	}
}

// Location returns the zone timestamps are currently rendered in.
func (d *Decoder) Location() *time.Location {
	return d.loc
}

// Skipped returns how many malformed records were dropped so far.
func (d *Decoder) Skipped() int {
	return d.skipped
}

// Decode splits data into header and records and renders every valid
// record. Content without a header terminator yields no lines.
func (d *Decoder) Decode(data string) []model.Line {
	idx := strings.Index(data, headerEnd)
	if idx < 0 {
		return nil
	}
	d.parseHeader(data[:idx])

	lines := make([]model.Line, 0, len(data)/typicalRecordLen+1)
	rest := data[idx+len(headerEnd):]
	for {
		to := strings.Index(rest, recordEndTag)
		if to < 0 {
			break
		}
		lines = d.appendRecord(lines, rest[:to])
		// "LOG" belongs to the next record
		rest = rest[to+len(recordEnd):]
	}

	if to := strings.Index(rest, recordEnd); to >= 0 {
		lines = d.appendRecord(lines, rest[:to])
	}
	return lines
}

func (d *Decoder) appendRecord(lines []model.Line, rec string) []model.Line {
	line, ok := d.decodeRecord(rec)
	if !ok {
		return lines
	}
	return append(lines, line)
}

// decodeRecord renders
//
//	<LEVEL> <SERVER-TS> [<LOCAL-TS>] <SRC(PID:TID)> <DESC> [<FUNC> <FILE> <LINE>] [<TAG>]
func (d *Decoder) decodeRecord(rec string) (model.Line, bool) {
	fields := strings.Split(rec, fieldSep)
	if len(fields) < fieldCount {
		d.skipped++
		d.log.Warn().
			Int("fields", len(fields)).
			Int("want", fieldCount).
			Msg("invalid log record")
		return model.Line{}, false
	}

	// Surplus separators are assumed to sit inside the description, so the
	// server timestamp is always the trailing field.
	serverTS := fields[fieldServerTS]
	if len(fields) > fieldCount {
		serverTS = fields[len(fields)-1]
	}

	var b strings.Builder
	b.Grow(len(rec) + 48)

	writeLevel(&b, fields[fieldLevel])
	b.WriteByte(' ')
	d.ts.write(&b, serverTS)
	b.WriteString(" [")
	d.ts.write(&b, fields[fieldLocalTS])
	b.WriteString("] ")
	b.WriteString(fields[fieldSrcPidTid])
	b.WriteByte(' ')
	b.WriteString(flattenDescription(fields[fieldDescription]))
	b.WriteString(" [")
	b.WriteString(fields[fieldFunction])
	b.WriteByte(' ')
	b.WriteString(fields[fieldFileName])
	b.WriteByte(' ')
	b.WriteString(fields[fieldLineNo])
	b.WriteString("] [")
	b.WriteString(fields[fieldTag])
	b.WriteString("]\n")

	id := fields[fieldSrcPidTid]
	return model.Line{
		Source:  SourceKey(id),
		Process: ProcessKey(id),
		Text:    b.String(),
	}, true
}
