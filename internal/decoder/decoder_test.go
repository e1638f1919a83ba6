package decoder

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func record(fields ...string) string {
	return strings.Join(fields, fieldSep)
}

func logFile(header string, records ...string) string {
	var b strings.Builder
	b.WriteString(header)
	b.WriteString(headerEnd)
	for _, r := range records {
		b.WriteString(r)
		b.WriteString(recordEnd)
	}
	return b.String()
}

func newTestDecoder() (*Decoder, *bytes.Buffer) {
	var buf bytes.Buffer
	return New(zerolog.New(&buf)), &buf
}

var (
	rec1 = record("LOG_DEV_INFO", "1346714491516", "SRC1(1:2)", "file1.cpp", "128", "FOO1", "0X2001", "DESC1", "1641013262865")
	rec2 = record("LOG_DEV_INFO", "1641013262865", "SRC2(3:4)", "file2.cpp", "256", "FOO2", "0X2002", "DESC2\rMORE\nEVEN MORE", "BAD_TIMESTAMP")
	rec3 = record("LOG_DEV_INFO", "1641013262865", "SRC3(5:6)", "file3.cpp", "512", "FOO3", "0X2003", "DESC3")
)

func TestDecode_RendersRecords(t *testing.T) {
	d, logs := newTestDecoder()

	lines := d.Decode(logFile("timezone: (UTC+08:00)", rec1, rec2, rec3))

	require.Len(t, lines, 2)

	require.Equal(t, "SRC1", lines[0].Source)
	require.Equal(t, "1", lines[0].Process)
	require.Equal(t, "DEV_INFO  220101 13:01:02.865 [120904 07:21:31.516] SRC1(1:2) DESC1 [FOO1 file1.cpp 128] [0X2001]\n", lines[0].Text)

	require.Equal(t, "SRC2", lines[1].Source)
	require.Equal(t, "3", lines[1].Process)
	require.Equal(t, "DEV_INFO  INVALID_TS [220101 13:01:02.865] SRC2(3:4) DESC2 MORE EVEN MORE [FOO2 file2.cpp 256] [0X2002]\n", lines[1].Text)

	// rec3 has only 8 fields
	require.Equal(t, 1, d.Skipped())
	require.Contains(t, logs.String(), "invalid log record")
	require.Equal(t, "UTC+08:00", d.Location().String())
}

func TestDecode_NoHeaderTerminator(t *testing.T) {
	d, _ := newTestDecoder()

	require.Empty(t, d.Decode(""))
	require.Empty(t, d.Decode("no framing at all"))
	require.Empty(t, d.Decode("header"+recordEnd+rec1+recordEnd))
}

func TestDecode_HeaderOnly(t *testing.T) {
	d, _ := newTestDecoder()

	require.Empty(t, d.Decode(logFile("(UTC+01:00)")))
	require.Equal(t, 0, d.Skipped())
}

func TestDecode_LastRecordWithoutTerminator(t *testing.T) {
	d, _ := newTestDecoder()

	data := "(UTC+00:00)" + headerEnd + rec1 + recordEnd + strings.Replace(rec1, "SRC1", "SRC9", 1)

	lines := d.Decode(data)
	require.Len(t, lines, 1)
	require.Equal(t, "SRC1", lines[0].Source)
}

func TestDecode_ShortRecordDoesNotStopDecoding(t *testing.T) {
	d, logs := newTestDecoder()

	short := record("LOG_DEV_INFO", "1641013262865", "SHORT(1:1)")
	lines := d.Decode(logFile("(UTC+00:00)", rec1, short, strings.Replace(rec1, "SRC1", "SRC4", 1)))

	require.Len(t, lines, 2)
	require.Equal(t, "SRC1", lines[0].Source)
	require.Equal(t, "SRC4", lines[1].Source)
	require.Equal(t, 1, d.Skipped())
	require.Equal(t, 1, strings.Count(logs.String(), "invalid log record"))
}

func TestDecode_SurplusFieldsUseLastAsServerTimestamp(t *testing.T) {
	d, _ := newTestDecoder()

	rec := record("LOG_SVC_ERROR", "1641013262100", "SVC(7:8)", "a.cpp", "1", "Run", "0X1", "part one", "part two", "1641013263200")
	lines := d.Decode(logFile("(UTC+00:00)", rec))

	require.Len(t, lines, 1)
	require.Equal(t, "SVC_ERROR 220101 05:01:03.200 [220101 05:01:02.100] SVC(7:8) part one [Run a.cpp 1] [0X1]\n", lines[0].Text)
}

func TestDecode_StrayTerminatorInsideDescription(t *testing.T) {
	d, _ := newTestDecoder()

	rec := record("LOG_DEV_WARNING", "1641013262000", "SRC(1:2)", "f.cpp", "9", "Fn", "0X9", "before"+recordEnd+"after", "1641013262001")
	lines := d.Decode(logFile("(UTC+00:00)", rec, rec1))

	require.Len(t, lines, 2)
	require.Equal(t, "DEV_WARN  220101 05:01:02.001 [220101 05:01:02.000] SRC(1:2) before\x01 after [Fn f.cpp 9] [0X9]\n", lines[0].Text)
}

func TestDecode_SharedSecondsReuseFormattedPrefix(t *testing.T) {
	d, _ := newTestDecoder()

	a := record("LOG_DEV_INFO", "1641013262001", "S(1:1)", "f", "1", "F", "T", "a", "1641013262002")
	b := record("LOG_DEV_INFO", "1641013262003", "S(1:1)", "f", "1", "F", "T", "b", "1641013262004")

	lines := d.Decode(logFile("(UTC+00:00)", a, b))

	require.Len(t, lines, 2)
	require.Equal(t, 1, d.ts.conversions)
	require.True(t, strings.HasPrefix(lines[0].Text, "DEV_INFO  220101 05:01:02.002 [220101 05:01:02.001]"))
	require.True(t, strings.HasPrefix(lines[1].Text, "DEV_INFO  220101 05:01:02.004 [220101 05:01:02.003]"))
}

func TestDecode_MissingTimezoneHintFallsBack(t *testing.T) {
	d, logs := newTestDecoder()

	lines := d.Decode(logFile("no zone here", rec1))

	require.Len(t, lines, 1)
	require.Contains(t, logs.String(), "timezone hint missing")

	want := FormatTimestamp("1641013262865", LocalFallback())
	require.Contains(t, lines[0].Text, " "+want+" [")
}

func TestDecode_MalformedTimezoneHintFallsBack(t *testing.T) {
	d, logs := newTestDecoder()

	d.Decode(logFile("(UTC+0800)", rec1))

	require.Contains(t, logs.String(), "timezone hint malformed")
	_, offset := time.Unix(0, 0).In(d.Location()).Zone()
	_, want := time.Unix(0, 0).In(LocalFallback()).Zone()
	require.Equal(t, want, offset)
}

func TestTimeCache_InvalidDoesNotUpdateSlot(t *testing.T) {
	c := timeCache{loc: time.UTC}
	var b strings.Builder

	c.write(&b, "1641013262865")
	c.write(&b, "BAD_TIMESTAMP")
	c.write(&b, "12")
	c.write(&b, "1641013262866")

	require.Equal(t, "220101 05:01:02.865INVALID_TSINVALID_TS220101 05:01:02.866", b.String())
	require.Equal(t, 1, c.conversions)
	require.Equal(t, "1641013262", c.raw)
}

func TestTimeCache_EmptySecondsNeverHitsColdSlot(t *testing.T) {
	c := timeCache{loc: time.UTC}
	var b strings.Builder

	c.write(&b, "123")
	require.Equal(t, invalidTS, b.String())
}
