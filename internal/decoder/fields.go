package decoder

import "strings"

// Markers written in place of values that cannot be derived.
const (
	invalidTS    = "INVALID_TS"
	invalidSrc   = "INVALID_SRC"
	invalidPID   = "INVALID_PID"
	unknownLevel = "UNKNOWN_LEVEL"
	invalidLevel = "INVALID_LEVEL"
)

// Level tokens look like "LOG_DEV_WARNING": the category letter sits at a
// fixed offset and the label starts after "LOG_".
const (
	levelCategoryAt = 8
	levelLabelFrom  = 4
	levelLabelShort = 12 // INFO / WARNING: 8 chars + trailing space
	levelLabelLong  = 13 // ERROR: 9 chars, no padding
)

var (
	pathUnsafe        = `/\?*:`
	pathSafeReplacer  = strings.NewReplacer("/", "_", `\`, "_", "?", "_", "*", "_", ":", "_")
	lineBreakReplacer = strings.NewReplacer("\n", " ", "\r", " ")
)

// writeLevel writes the fixed-width level label for tok.
//
//	LOG_DEV_INFO    -> "DEV_INFO "
//	LOG_DEV_WARNING -> "DEV_WARN "
//	LOG_SVC_ERROR   -> "SVC_ERROR"
func writeLevel(b *strings.Builder, tok string) {
	if len(tok) <= levelCategoryAt {
		b.WriteString(invalidLevel)
		return
	}

	switch tok[levelCategoryAt] {
	case 'I', 'W':
		if len(tok) < levelLabelShort {
			b.WriteString(invalidLevel)
			return
		}
		b.WriteString(tok[levelLabelFrom:levelLabelShort])
		b.WriteByte(' ')
	case 'E':
		// LOG_TRACE_* lands here as well ("TRACE_INF"); kept as is.
		if len(tok) < levelLabelLong {
			b.WriteString(invalidLevel)
			return
		}
		b.WriteString(tok[levelLabelFrom:levelLabelLong])
	default:
		b.WriteString(unknownLevel)
	}
}

// Level returns the rendered level label for tok.
func Level(tok string) string {
	var b strings.Builder
	writeLevel(&b, tok)
	return b.String()
}

// SourceKey extracts the source name from "SRC(PID:TID)" and makes it safe
// to use as a file name.
func SourceKey(id string) string {
	i := strings.IndexByte(id, '(')
	if i <= 0 {
		return invalidSrc
	}
	src := id[:i]
	if strings.ContainsAny(src, pathUnsafe) {
		return pathSafeReplacer.Replace(src)
	}
	return src
}

// ProcessKey extracts PID from "SRC(PID:TID)".
func ProcessKey(id string) string {
	i := strings.IndexByte(id, '(')
	if i < 0 {
		return invalidPID
	}
	j := strings.IndexByte(id[i:], ':')
	if j <= 1 {
		return invalidPID
	}
	return id[i+1 : i+j]
}

func flattenDescription(desc string) string {
	if strings.ContainsAny(desc, "\r\n") {
		return lineBreakReplacer.Replace(desc)
	}
	return desc
}
