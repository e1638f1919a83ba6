package decoder

import (
	"strings"
	"time"
)

const tzHintOpen = "(UTC"

// LocalFallback is the zone used when a header carries no usable hint: the
// local zone's offset at the Unix epoch, frozen as a fixed zone so a whole
// file renders with one offset.
func LocalFallback() *time.Location {
	name, offset := time.Unix(0, 0).In(time.Local).Zone()
	return time.FixedZone(name, offset)
}

// ParseTimezone parses a hint body of the form "±HH:MM". A '+' sign or an
// all-zero offset is east of UTC, anything else west.
func ParseTimezone(hint string) (*time.Location, bool) {
	if len(hint) < 6 || hint[3] != ':' {
		return nil, false
	}
	hh, ok := twoDigits(hint[1:3])
	if !ok {
		return nil, false
	}
	mm, ok := twoDigits(hint[4:6])
	if !ok {
		return nil, false
	}

	offset := hh*3600 + mm*60
	if hint[0] != '+' && offset != 0 {
		offset = -offset
	}
	return time.FixedZone("UTC"+hint[:6], offset), true
}

func twoDigits(s string) (int, bool) {
	if s[0] < '0' || s[0] > '9' || s[1] < '0' || s[1] > '9' {
		return 0, false
	}
	return int(s[0]-'0')*10 + int(s[1]-'0'), true
}

func (d *Decoder) parseHeader(header string) {
	start := strings.Index(header, tzHintOpen)
	if start < 0 {
		d.log.Warn().
			Str("zone", d.loc.String()).
			Msg("timezone hint missing")
		return
	}

	end := strings.IndexByte(header[start:], ')')
	if end < 0 {
		d.log.Warn().
			Str("zone", d.loc.String()).
			Msg("timezone hint malformed")
		return
	}

	hint := header[start+len(tzHintOpen) : start+end]
	loc, ok := ParseTimezone(hint)
	if !ok {
		loc = LocalFallback()
		d.log.Warn().
			Str("hint", hint).
			Str("zone", loc.String()).
			Msg("timezone hint malformed")
	}
	d.setLocation(loc)
}

func (d *Decoder) setLocation(loc *time.Location) {
	if loc.String() == d.loc.String() {
		return
	}
	d.loc = loc
	d.ts.reset(loc)
}
