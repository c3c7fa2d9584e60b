package ical

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseDateValue(t *testing.T) {
	v, verr := parseDateValue("20260301", true)
	require.Nil(t, verr)
	require.Equal(t, DateValue{Year: 2026, Month: 3, Day: 1}, v.Date)
}

func TestParseDateValueRejectsOutOfRangeMonth(t *testing.T) {
	_, verr := parseDateValue("20261301", true)
	require.NotNil(t, verr)
	require.Equal(t, ErrInvalidDate, verr.Code)
}

func TestParseTimeValueLeapSecondRollsOver(t *testing.T) {
	v, verr := parseTimeValue("235960", true)
	require.Nil(t, verr)
	require.Equal(t, TimeValue{Hour: 0, Minute: 0, Second: 0}, v.Time)
}

func TestParseTimeValueStrictRejectsOutOfRange(t *testing.T) {
	_, verr := parseTimeValue("256100", true)
	require.NotNil(t, verr)
	require.Equal(t, SeverityError, verr.Severity)
}

func TestParseTimeValueLenientAcceptsOutOfRange(t *testing.T) {
	v, verr := parseTimeValue("249900", false)
	require.NotNil(t, verr)
	require.Equal(t, SeverityWarning, verr.Severity)
	require.Equal(t, 24, v.Time.Hour)
}

func TestParseDateTimeValueUTC(t *testing.T) {
	v, verr := parseDateTimeValue("20260301T090000Z", nil, true)
	require.Nil(t, verr)
	require.True(t, v.DateTime.UTC)
	require.Equal(t, 9, v.DateTime.Time.Hour)
}

func TestParseDateTimeValueTZID(t *testing.T) {
	pl := newParameterList()
	pl.Set("TZID", "Australia/Melbourne")
	v, verr := parseDateTimeValue("20260301T090000", pl, true)
	require.Nil(t, verr)
	require.False(t, v.DateTime.UTC)
	require.Equal(t, "Australia/Melbourne", v.DateTime.TZID)
}

func TestParseDurationValueRoundTrip(t *testing.T) {
	cases := []string{"P1D", "PT1H30M", "P2W", "-PT15M", "PT0S"}
	for _, c := range cases {
		v, verr := parseDurationValue(c, true)
		require.Nil(t, verr, c)
		require.Equal(t, c, writeDurationValue(v.Duration), "round trip for %q", c)
	}
}

func TestParseDurationValueMalformed(t *testing.T) {
	_, verr := parseDurationValue("garbage", true)
	require.NotNil(t, verr)
	require.Equal(t, ErrInvalidDuration, verr.Code)
}

func TestParsePeriodValueExplicitEnd(t *testing.T) {
	v, verr := parsePeriodValue("20260301T090000Z/20260301T100000Z", nil, true)
	require.Nil(t, verr)
	require.False(t, v.Period.HasDuration)
	require.Equal(t, 10, v.Period.End.Time.Hour)
}

func TestParsePeriodValueDuration(t *testing.T) {
	v, verr := parsePeriodValue("20260301T090000Z/PT2H", nil, true)
	require.Nil(t, verr)
	require.True(t, v.Period.HasDuration)
	require.Equal(t, 2, v.Period.Duration.Hours)
}

func TestParseTextValueEscapes(t *testing.T) {
	v, verr := parseTextValue(`a\,b\;c\\d\ne`, true)
	require.Nil(t, verr)
	require.Equal(t, "a,b;c\\d\ne", v.Text)
}

func TestEscapeTextRoundTrip(t *testing.T) {
	raw := "a,b;c\\d\ne"
	escaped := escapeText(raw)
	v, verr := parseTextValue(escaped, true)
	require.Nil(t, verr)
	require.Equal(t, raw, v.Text)
}

func TestParseBinaryValueValid(t *testing.T) {
	v, verr := parseBinaryValue("aGVsbG8=", true)
	require.Nil(t, verr)
	require.Equal(t, []byte("hello"), v.Binary)
}

func TestParseBooleanValue(t *testing.T) {
	v, verr := parseBooleanValue("TRUE", true)
	require.Nil(t, verr)
	require.True(t, v.Boolean)
	_, verr2 := parseBooleanValue("maybe", true)
	require.NotNil(t, verr2)
}

func TestParseIntegerValue(t *testing.T) {
	v, verr := parseIntegerValue("-42", true)
	require.Nil(t, verr)
	require.EqualValues(t, -42, v.Integer)
}

func TestParseFloatValue(t *testing.T) {
	v, verr := parseFloatValue("3.14", true)
	require.Nil(t, verr)
	require.InDelta(t, 3.14, v.Float, 0.0001)
}

func TestParseURIValue(t *testing.T) {
	v, verr := parseURIValue("https://example.com/cal.ics", true)
	require.Nil(t, verr)
	require.Equal(t, "https://example.com/cal.ics", v.URI)
}

func TestParseCalAddressValue(t *testing.T) {
	v, verr := parseCalAddressValue("mailto:jane@example.com", true)
	require.Nil(t, verr)
	require.Equal(t, ValueCalAddress, v.Type)
}

func TestParseUTCOffsetValue(t *testing.T) {
	v, verr := parseUTCOffsetValue("+1030", true)
	require.Nil(t, verr)
	require.Equal(t, "+1030", writeUTCOffsetValue(v.Integer))
}

func TestParseUTCOffsetValueRejectsNegativeZero(t *testing.T) {
	_, verr := parseUTCOffsetValue("-0000", true)
	require.NotNil(t, verr)
}

func TestParseRecurValueDelegatesToRRule(t *testing.T) {
	v, verr := parseRecurValue("FREQ=WEEKLY;COUNT=5", true)
	require.Nil(t, verr)
	require.Equal(t, FreqWeekly, v.RRule.Freq)
	require.Equal(t, 5, v.RRule.Count)
}

func TestResolveValueTypeExplicitOverride(t *testing.T) {
	pl := newParameterList()
	pl.Set("VALUE", "DATE")
	require.Equal(t, ValueDate, resolveValueType("DTSTART", pl))
}

func TestResolveValueTypeDefault(t *testing.T) {
	require.Equal(t, ValueDateTime, resolveValueType("DTSTART", nil))
	require.Equal(t, ValueText, resolveValueType("X-CUSTOM", nil))
}
