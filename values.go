package ical

import (
	"encoding/base64"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ─────────────────────────────────────────────────────────────────────────────
// Typed value payloads (§4.3)
// ─────────────────────────────────────────────────────────────────────────────

// DateValue is a RFC 5545 DATE: a calendar day with no time-of-day.
type DateValue struct {
	Year, Month, Day int
}

// TimeValue is a RFC 5545 TIME: a wall-clock time, optionally UTC.
type TimeValue struct {
	Hour, Minute, Second int
	UTC                  bool
}

// DateTimeValue is a RFC 5545 DATE-TIME: a DateValue plus a TimeValue, with
// either a trailing 'Z' (UTC), a TZID parameter (local, external
// resolution), or neither (floating).
type DateTimeValue struct {
	Date DateValue
	Time TimeValue
	UTC  bool
	TZID string
}

// ToTime converts to a time.Time, resolving TZID against loc when the
// value is neither UTC nor floating. Timezone database lookup itself is
// an external collaborator (spec.md §1); callers supply loc.
func (d DateTimeValue) ToTime(loc *time.Location) time.Time {
	if d.UTC {
		loc = time.UTC
	} else if loc == nil {
		loc = time.UTC
	}
	return time.Date(d.Date.Year, time.Month(d.Date.Month), d.Date.Day,
		d.Time.Hour, d.Time.Minute, d.Time.Second, 0, loc)
}

// DurationValue is a RFC 5545 DURATION: signed weeks|days+hours+minutes+seconds.
type DurationValue struct {
	Negative bool
	Weeks    int
	Days     int
	Hours    int
	Minutes  int
	Seconds  int
}

// IsZero reports whether every component is zero.
func (d DurationValue) IsZero() bool {
	return d.Weeks == 0 && d.Days == 0 && d.Hours == 0 && d.Minutes == 0 && d.Seconds == 0
}

// AsTimeDuration converts to a time.Duration (weeks/days folded to hours).
func (d DurationValue) AsTimeDuration() time.Duration {
	total := time.Duration(d.Weeks)*7*24*time.Hour +
		time.Duration(d.Days)*24*time.Hour +
		time.Duration(d.Hours)*time.Hour +
		time.Duration(d.Minutes)*time.Minute +
		time.Duration(d.Seconds)*time.Second
	if d.Negative {
		return -total
	}
	return total
}

// PeriodValue is a RFC 5545 PERIOD: start/end or start/duration.
type PeriodValue struct {
	Start       DateTimeValue
	End         DateTimeValue
	Duration    DurationValue
	HasDuration bool
}

// ─────────────────────────────────────────────────────────────────────────────
// Default VALUE= type per property name (§4.3) — grounded on the teacher's
// propertyByName init()-time lookup table and on arran4/golang-ical's
// BaseProperty.GetValueType default switch.
// ─────────────────────────────────────────────────────────────────────────────

var defaultValueTypeByProperty = map[string]ValueType{
	"DTSTART": ValueDateTime, "DTEND": ValueDateTime, "DTSTAMP": ValueDateTime,
	"DUE": ValueDateTime, "COMPLETED": ValueDateTime, "CREATED": ValueDateTime,
	"LAST-MODIFIED": ValueDateTime, "RECURRENCE-ID": ValueDateTime,
	"EXDATE": ValueDateTime, "RDATE": ValueDateTime, "ACKNOWLEDGED": ValueDateTime,

	"DURATION": ValueDuration, "TRIGGER": ValueDuration,

	"FREEBUSY": ValuePeriod,

	"SEQUENCE": ValueInteger, "PRIORITY": ValueInteger, "REPEAT": ValueInteger,
	"PERCENT-COMPLETE": ValueInteger,

	"GEO": ValueFloat,

	"URL": ValueURI, "TZURL": ValueURI, "ATTACH": ValueURI, "SOURCE": ValueURI,

	"ATTENDEE": ValueCalAddress, "ORGANIZER": ValueCalAddress,

	"TZOFFSETFROM": ValueUTCOffset, "TZOFFSETTO": ValueUTCOffset,

	"RSVP": ValueBoolean,

	"RRULE": ValueRecur,
}

// defaultValueType resolves the implicit value type of name, per §4.3:
// unknown properties default to TEXT.
func defaultValueType(name string) ValueType {
	if vt, ok := defaultValueTypeByProperty[strings.ToUpper(name)]; ok {
		return vt
	}
	return ValueText
}

// resolveValueType applies an explicit VALUE= parameter when present,
// otherwise falls back to the property's default.
func resolveValueType(propertyName string, params *ParameterList) ValueType {
	if params != nil {
		if raw := params.GetValue("VALUE"); raw != "" {
			if vt, ok := parseValueType(raw); ok {
				return vt
			}
		}
	}
	return defaultValueType(propertyName)
}

// ─────────────────────────────────────────────────────────────────────────────
// ValueParserRegistry
// ─────────────────────────────────────────────────────────────────────────────

// parseValue dispatches raw to the typed parser selected by vt, honoring
// strict. It is the ValueParserRegistry of spec.md §2 item 3, collapsed to
// a single switch since Go's interface dispatch gains nothing over it here
// (fourteen known, closed-set types).
func parseValue(vt ValueType, raw string, params *ParameterList, strict bool) (Value, *ValidationError) {
	switch vt {
	case ValueDate:
		return parseDateValue(raw, strict)
	case ValueDateTime:
		return parseDateTimeValue(raw, params, strict)
	case ValueTime:
		return parseTimeValue(raw, strict)
	case ValueDuration:
		return parseDurationValue(raw, strict)
	case ValuePeriod:
		return parsePeriodValue(raw, params, strict)
	case ValueText:
		return parseTextValue(raw, strict)
	case ValueBinary:
		return parseBinaryValue(raw, strict)
	case ValueBoolean:
		return parseBooleanValue(raw, strict)
	case ValueInteger:
		return parseIntegerValue(raw, strict)
	case ValueFloat:
		return parseFloatValue(raw, strict)
	case ValueURI:
		return parseURIValue(raw, strict)
	case ValueCalAddress:
		return parseCalAddressValue(raw, strict)
	case ValueUTCOffset:
		return parseUTCOffsetValue(raw, strict)
	case ValueRecur:
		return parseRecurValue(raw, strict)
	default:
		return parseTextValue(raw, strict)
	}
}

func typeErr(code, raw string, format string, args ...interface{}) *ValidationError {
	return newValidationError(code, SeverityError, 0, "", "", "", "value %q: "+format, append([]interface{}{raw}, args...)...)
}

// ── DATE ─────────────────────────────────────────────────────────────────────

var dateRE = regexp.MustCompile(`^(\d{4})(\d{2})(\d{2})$`)
var dateHyphenRE = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})$`)

func parseDateValue(raw string, strict bool) (Value, *ValidationError) {
	m := dateRE.FindStringSubmatch(raw)
	var verr *ValidationError
	if m == nil {
		if !strict {
			if hm := dateHyphenRE.FindStringSubmatch(raw); hm != nil {
				m = hm
				verr = typeErr(ErrInvalidDate, raw, "hyphenated DATE accepted leniently")
				verr.Severity = SeverityWarning
			}
		}
		if m == nil {
			return Value{}, typeErr(ErrInvalidDate, raw, "expected YYYYMMDD")
		}
	}
	y, _ := strconv.Atoi(m[1])
	mo, _ := strconv.Atoi(m[2])
	d, _ := strconv.Atoi(m[3])
	if mo < 1 || mo > 12 || d < 1 || d > 31 {
		return Value{}, typeErr(ErrInvalidDate, raw, "month/day out of range")
	}
	return Value{Type: ValueDate, Raw: raw, Date: DateValue{Year: y, Month: mo, Day: d}}, verr
}

// ── TIME ─────────────────────────────────────────────────────────────────────

var timeRE = regexp.MustCompile(`^(\d{2})(\d{2})(\d{2})(Z)?$`)

func parseTimeValue(raw string, strict bool) (Value, *ValidationError) {
	m := timeRE.FindStringSubmatch(raw)
	if m == nil {
		return Value{}, typeErr(ErrInvalidTime, raw, "expected HHMMSS[Z]")
	}
	h, _ := strconv.Atoi(m[1])
	mi, _ := strconv.Atoi(m[2])
	s, _ := strconv.Atoi(m[3])
	var warn *ValidationError
	if s == 60 {
		// Leap second: normalize by rolling into the next minute (Open
		// Question 2 in DESIGN.md — deterministic, not platform-dependent).
		s = 0
		mi++
		if mi == 60 {
			mi = 0
			h = (h + 1) % 24
		}
	} else if s > 60 || h > 23 || mi > 59 {
		if strict {
			return Value{}, typeErr(ErrInvalidTime, raw, "hour/minute/second out of range")
		}
		warn = typeErr(ErrInvalidTime, raw, "hour/minute/second out of range, accepted leniently")
		warn.Severity = SeverityWarning
	}
	return Value{Type: ValueTime, Raw: raw, Time: TimeValue{Hour: h, Minute: mi, Second: s, UTC: m[4] == "Z"}}, warn
}

// ── DATE-TIME ────────────────────────────────────────────────────────────────

var dateTimeRE = regexp.MustCompile(`^(\d{4})(\d{2})(\d{2})T(\d{2})(\d{2})(\d{2})(Z)?$`)

func parseDateTimeValue(raw string, params *ParameterList, strict bool) (Value, *ValidationError) {
	m := dateTimeRE.FindStringSubmatch(raw)
	if m == nil {
		return Value{}, typeErr(ErrInvalidDateTime, raw, "expected YYYYMMDDTHHMMSS[Z]")
	}
	y, _ := strconv.Atoi(m[1])
	mo, _ := strconv.Atoi(m[2])
	d, _ := strconv.Atoi(m[3])
	h, _ := strconv.Atoi(m[4])
	mi, _ := strconv.Atoi(m[5])
	s, _ := strconv.Atoi(m[6])
	isUTC := m[7] == "Z"

	var warn *ValidationError
	if mo < 1 || mo > 12 || d < 1 || d > 31 || h > 23 || mi > 59 || s > 60 {
		if strict {
			return Value{}, typeErr(ErrInvalidDateTime, raw, "component out of range")
		}
		warn = typeErr(ErrInvalidDateTime, raw, "component out of range, accepted leniently")
		warn.Severity = SeverityWarning
	}
	if s == 60 {
		s = 0
		mi++
		if mi == 60 {
			mi = 0
			h = (h + 1) % 24
		}
	}

	dtv := DateTimeValue{
		Date: DateValue{Year: y, Month: mo, Day: d},
		Time: TimeValue{Hour: h, Minute: mi, Second: s, UTC: isUTC},
		UTC:  isUTC,
	}
	// TZID parameter ties a non-UTC DATE-TIME to a VTIMEZONE; resolution
	// of the named zone itself is external (spec.md §1).
	if !isUTC && params != nil {
		dtv.TZID = params.GetValue("TZID")
	}
	return Value{Type: ValueDateTime, Raw: raw, DateTime: dtv}, warn
}

// ── DURATION ─────────────────────────────────────────────────────────────────

var durationRE = regexp.MustCompile(`^([+-]?)P(?:(\d+)W)?(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?)?$`)

func parseDurationValue(raw string, strict bool) (Value, *ValidationError) {
	m := durationRE.FindStringSubmatch(raw)
	if m == nil || raw == "" || raw == "P" || raw == "+P" || raw == "-P" {
		// Note: per DESIGN.md Open Question 1, this parser emits
		// ICAL-TYPE-006, not the source's buggy ICAL-TYPE-020.
		return Value{}, typeErr(ErrInvalidDuration, raw, "malformed RFC 5545 duration")
	}
	atoi := func(s string) int {
		if s == "" {
			return 0
		}
		n, _ := strconv.Atoi(s)
		return n
	}
	dv := DurationValue{
		Negative: m[1] == "-",
		Weeks:    atoi(m[2]),
		Days:     atoi(m[3]),
		Hours:    atoi(m[4]),
		Minutes:  atoi(m[5]),
		Seconds:  atoi(m[6]),
	}
	return Value{Type: ValueDuration, Raw: raw, Duration: dv}, nil
}

// ── PERIOD ───────────────────────────────────────────────────────────────────

func parsePeriodValue(raw string, params *ParameterList, strict bool) (Value, *ValidationError) {
	parts := strings.SplitN(raw, "/", 2)
	if len(parts) != 2 {
		return Value{}, typeErr(ErrInvalidPeriod, raw, "expected start/end or start/duration")
	}
	startVal, err := parseDateTimeValue(parts[0], params, strict)
	if err != nil && err.Severity != SeverityWarning {
		return Value{}, typeErr(ErrInvalidPeriod, raw, "bad period start: %v", err.Message)
	}
	pv := PeriodValue{Start: startVal.DateTime}

	if strings.HasPrefix(parts[1], "P") || strings.HasPrefix(parts[1], "+P") || strings.HasPrefix(parts[1], "-P") {
		durVal, derr := parseDurationValue(parts[1], strict)
		if derr != nil {
			return Value{}, typeErr(ErrInvalidPeriod, raw, "bad period duration: %v", derr.Message)
		}
		pv.Duration = durVal.Duration
		pv.HasDuration = true
	} else {
		endVal, eerr := parseDateTimeValue(parts[1], params, strict)
		if eerr != nil && eerr.Severity != SeverityWarning {
			return Value{}, typeErr(ErrInvalidPeriod, raw, "bad period end: %v", eerr.Message)
		}
		pv.End = endVal.DateTime
	}
	return Value{Type: ValuePeriod, Raw: raw, Period: pv}, nil
}

// ── TEXT ─────────────────────────────────────────────────────────────────────

func parseTextValue(raw string, strict bool) (Value, *ValidationError) {
	var b strings.Builder
	b.Grow(len(raw))
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if c != '\\' {
			b.WriteByte(c)
			continue
		}
		if i+1 >= len(raw) {
			return Value{}, typeErr(ErrInvalidText, raw, "trailing unescaped backslash")
		}
		switch raw[i+1] {
		case '\\':
			b.WriteByte('\\')
		case ';':
			b.WriteByte(';')
		case ',':
			b.WriteByte(',')
		case 'n', 'N':
			b.WriteByte('\n')
		default:
			return Value{}, typeErr(ErrInvalidText, raw, "unknown escape sequence \\%c", raw[i+1])
		}
		i++
	}
	return Value{Type: ValueText, Raw: raw, Text: b.String()}, nil
}

// escapeText is the inverse of parseTextValue, used by the writer.
func escapeText(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case ';':
			b.WriteString(`\;`)
		case ',':
			b.WriteString(`\,`)
		case '\n':
			b.WriteString(`\n`)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ── BINARY ───────────────────────────────────────────────────────────────────

func parseBinaryValue(raw string, strict bool) (Value, *ValidationError) {
	if strict {
		if _, err := base64.StdEncoding.DecodeString(raw); err != nil {
			return Value{}, typeErr(ErrInvalidBinary, raw, "invalid base64: %v", err)
		}
	}
	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(raw))
	if err != nil {
		if !strict {
			return Value{Type: ValueBinary, Raw: raw, Binary: nil}, nil
		}
		return Value{}, typeErr(ErrInvalidBinary, raw, "invalid base64: %v", err)
	}
	return Value{Type: ValueBinary, Raw: raw, Binary: data}, nil
}

// ── BOOLEAN ──────────────────────────────────────────────────────────────────

func parseBooleanValue(raw string, strict bool) (Value, *ValidationError) {
	switch strings.ToUpper(raw) {
	case "TRUE":
		return Value{Type: ValueBoolean, Raw: raw, Boolean: true}, nil
	case "FALSE":
		return Value{Type: ValueBoolean, Raw: raw, Boolean: false}, nil
	default:
		return Value{}, typeErr(ErrInvalidBoolean, raw, "expected TRUE or FALSE")
	}
}

// ── INTEGER ──────────────────────────────────────────────────────────────────

func parseIntegerValue(raw string, strict bool) (Value, *ValidationError) {
	n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return Value{}, typeErr(ErrInvalidInteger, raw, "not a signed decimal integer")
	}
	return Value{Type: ValueInteger, Raw: raw, Integer: n}, nil
}

// ── FLOAT ────────────────────────────────────────────────────────────────────

var floatRE = regexp.MustCompile(`^[+-]?\d+(\.\d*)?$`)

func parseFloatValue(raw string, strict bool) (Value, *ValidationError) {
	if !floatRE.MatchString(raw) {
		return Value{}, typeErr(ErrInvalidFloat, raw, "malformed float")
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return Value{}, typeErr(ErrInvalidFloat, raw, "%v", err)
	}
	return Value{Type: ValueFloat, Raw: raw, Float: f}, nil
}

// ── URI ──────────────────────────────────────────────────────────────────────

func parseURIValue(raw string, strict bool) (Value, *ValidationError) {
	u, err := url.Parse(raw)
	if err != nil || (strict && u.Scheme == "" && !strings.HasPrefix(raw, "//")) {
		return Value{}, typeErr(ErrInvalidURI, raw, "not a valid RFC 3986 URI reference")
	}
	return Value{Type: ValueURI, Raw: raw, URI: raw}, nil
}

// ── CAL-ADDRESS ──────────────────────────────────────────────────────────────

func parseCalAddressValue(raw string, strict bool) (Value, *ValidationError) {
	v, err := parseURIValue(raw, strict)
	if err != nil {
		return Value{}, typeErr(ErrInvalidCalAddress, raw, "%v", err.Message)
	}
	v.Type = ValueCalAddress
	return v, nil
}

// ── UTC-OFFSET ───────────────────────────────────────────────────────────────

var utcOffsetRE = regexp.MustCompile(`^([+-])(\d{2})(\d{2})(\d{2})?$`)

func parseUTCOffsetValue(raw string, strict bool) (Value, *ValidationError) {
	m := utcOffsetRE.FindStringSubmatch(raw)
	if m == nil {
		return Value{}, typeErr(ErrInvalidUTCOffset, raw, "expected [+-]HHMM[SS]")
	}
	sign := m[1]
	h, _ := strconv.Atoi(m[2])
	mi, _ := strconv.Atoi(m[3])
	s := 0
	if m[4] != "" {
		s, _ = strconv.Atoi(m[4])
	}
	if h > 23 || mi > 59 || s > 59 {
		return Value{}, typeErr(ErrInvalidUTCOffset, raw, "hour 0-23, minute/second 0-59")
	}
	if sign == "-" && h == 0 && mi == 0 && s == 0 {
		return Value{}, typeErr(ErrInvalidUTCOffset, raw, "-0000 is not a valid UTC offset")
	}
	total := time.Duration(h)*time.Hour + time.Duration(mi)*time.Minute + time.Duration(s)*time.Second
	if sign == "-" {
		total = -total
	}
	return Value{Type: ValueUTCOffset, Raw: raw, Integer: int64(total)}, nil
}

// ── RECUR ────────────────────────────────────────────────────────────────────

func parseRecurValue(raw string, strict bool) (Value, *ValidationError) {
	rr, err := ParseRRule(raw, strict)
	if err != nil {
		return Value{}, typeErr(ErrInvalidRecur, raw, "%v", err)
	}
	return Value{Type: ValueRecur, Raw: raw, RRule: rr}, nil
}
