package decoder

import (
	"strconv"
	"strings"
	"time"
)

//
// timecache.go
// ------------------------------------------------------------
// Single-slot cache for rendered timestamps.
//
// Timestamp fields are "<unix seconds><3-digit millis>". Dense logs emit
// many records per second, so the seconds part is formatted once and the
// prefix reused while consecutive fields carry the same seconds string.
// Only the millisecond suffix differs between such records.
//
// The slot belongs to one Decoder; it is never shared across goroutines.
// ------------------------------------------------------------

const (
	tsLayout   = "060102 15:04:05"
	msecDigits = 3
)

type timeCache struct {
	loc *time.Location

	raw    string // seconds text of the last successful parse
	prefix string // raw rendered in loc, second resolution
	valid  bool

	conversions int // number of real time.Format calls, for tests
}

func (c *timeCache) reset(loc *time.Location) {
	*c = timeCache{loc: loc, conversions: c.conversions}
}

// write renders field into b as "<prefix>.<millis>" or invalidTS.
// A failed parse leaves the slot untouched.
func (c *timeCache) write(b *strings.Builder, field string) {
	if len(field) < msecDigits {
		b.WriteString(invalidTS)
		return
	}
	sec := field[:len(field)-msecDigits]
	msec := field[len(field)-msecDigits:]

	if !c.valid || sec != c.raw {
		n, err := strconv.ParseInt(sec, 10, 64)
		if err != nil {
			b.WriteString(invalidTS)
			return
		}
		c.raw = sec
		c.prefix = time.Unix(n, 0).In(c.loc).Format(tsLayout)
		c.valid = true
		c.conversions++
	}

	b.WriteString(c.prefix)
	b.WriteByte('.')
	b.WriteString(msec)
}

// FormatTimestamp renders a single timestamp field in loc without a cache.
func FormatTimestamp(field string, loc *time.Location) string {
	c := timeCache{loc: loc}
	var b strings.Builder
	c.write(&b, field)
	return b.String()
}
