package ical

import (
	"fmt"
	"strconv"
	"strings"
)

// ─────────────────────────────────────────────────────────────────────────────
// RRule — immutable recurrence descriptor (§4.5)
// ─────────────────────────────────────────────────────────────────────────────

// ByDayEntry is one BYDAY element: an optional signed ordinal (0 means "no
// ordinal", e.g. plain "MO") plus the weekday.
type ByDayEntry struct {
	Ordinal int
	Day     Weekday
}

func (e ByDayEntry) String() string {
	if e.Ordinal == 0 {
		return e.Day.String()
	}
	return fmt.Sprintf("%d%s", e.Ordinal, e.Day)
}

// RRule is an immutable recurrence rule value object. Count and Until are
// mutually exclusive; HasCount/HasUntil report which (if either) is set.
type RRule struct {
	Freq     Frequency
	Interval int

	HasCount bool
	Count    int

	HasUntil    bool
	Until       DateTimeValue
	UntilIsDate bool

	BySecond   []int
	ByMinute   []int
	ByHour     []int
	ByDay      []ByDayEntry
	ByMonthDay []int
	ByYearDay  []int
	ByWeekNo   []int
	ByMonth    []int
	BySetPos   []int

	Wkst Weekday
}

// ParseRRule parses a RECUR value string (the part after "RRULE:" or the
// VALUE=RECUR value of any RECUR-typed property) into an immutable RRule.
// In strict mode every range in §4.5 is enforced and a violation is
// returned as an error. In lenient mode a malformed or out-of-range
// INTERVAL falls back to 1, and a malformed COUNT, UNTIL or WKST, an
// unknown part, or a BY* part with any malformed or out-of-range element
// is skipped as a whole; no diagnostic is recorded for any of these.
// A missing FREQ and a COUNT/UNTIL clash are errors in both modes.
func ParseRRule(raw string, strict bool) (*RRule, error) {
	rr := &RRule{Interval: 1, Wkst: WeekdayMo}
	if raw == "" {
		return nil, fmt.Errorf("%s: empty RRULE", ErrRRuleFreqRequired)
	}

	sawFreq := false
	for _, part := range strings.Split(raw, ";") {
		if part == "" {
			continue
		}
		kv := strings.SplitN(part, "=", 2)
		if len(kv) != 2 {
			return nil, fmt.Errorf("%s: malformed part %q", ErrRRuleInvalidFormat, part)
		}
		key := strings.ToUpper(strings.TrimSpace(kv[0]))
		val := strings.TrimSpace(kv[1])

		switch key {
		case "FREQ":
			f, ok := freqByName[strings.ToUpper(val)]
			if !ok {
				return nil, fmt.Errorf("%s: unknown FREQ %q", ErrRRuleInvalidFormat, val)
			}
			rr.Freq = f
			sawFreq = true

		case "INTERVAL":
			n, err := strconv.Atoi(val)
			if err != nil || n < 1 {
				if strict {
					return nil, fmt.Errorf("%s: INTERVAL must be a positive integer", ErrRRuleInvalidInterval)
				}
				n = 1
			}
			rr.Interval = n

		case "COUNT":
			if rr.HasUntil {
				return nil, fmt.Errorf("%s: COUNT and UNTIL are mutually exclusive", ErrRRuleUntilCountExcl)
			}
			n, err := strconv.Atoi(val)
			if err != nil || n < 1 {
				if strict {
					return nil, fmt.Errorf("%s: COUNT must be a positive integer", ErrRRuleInvalidFormat)
				}
				continue
			}
			rr.HasCount = true
			rr.Count = n

		case "UNTIL":
			if rr.HasCount {
				return nil, fmt.Errorf("%s: COUNT and UNTIL are mutually exclusive", ErrRRuleUntilCountExcl)
			}
			until, isDate, err := parseUntil(val)
			if err != nil {
				if strict {
					return nil, fmt.Errorf("%s: %v", ErrRRuleInvalidFormat, err)
				}
				continue
			}
			rr.HasUntil = true
			rr.Until = until
			rr.UntilIsDate = isDate

		case "WKST":
			wd, ok := weekdayByName[strings.ToUpper(val)]
			if !ok {
				if strict {
					return nil, fmt.Errorf("%s: unknown WKST %q", ErrRRuleInvalidWkst, val)
				}
				continue
			}
			rr.Wkst = wd

		case "BYSECOND":
			ns, err := parseIntList(val, 0, 60, false)
			if err != nil {
				if strict {
					return nil, fmt.Errorf("%s: BYSECOND %v", ErrRRuleInvalidByPart, err)
				}
				continue
			}
			rr.BySecond = ns

		case "BYMINUTE":
			ns, err := parseIntList(val, 0, 59, false)
			if err != nil {
				if strict {
					return nil, fmt.Errorf("%s: BYMINUTE %v", ErrRRuleInvalidByPart, err)
				}
				continue
			}
			rr.ByMinute = ns

		case "BYHOUR":
			ns, err := parseIntList(val, 0, 23, false)
			if err != nil {
				if strict {
					return nil, fmt.Errorf("%s: BYHOUR %v", ErrRRuleInvalidByPart, err)
				}
				continue
			}
			rr.ByHour = ns

		case "BYMONTHDAY":
			ns, err := parseIntList(val, 1, 31, true)
			if err != nil {
				if strict {
					return nil, fmt.Errorf("%s: BYMONTHDAY %v", ErrRRuleInvalidByPart, err)
				}
				continue
			}
			rr.ByMonthDay = ns

		case "BYYEARDAY":
			ns, err := parseIntList(val, 1, 366, true)
			if err != nil {
				if strict {
					return nil, fmt.Errorf("%s: BYYEARDAY %v", ErrRRuleInvalidByPart, err)
				}
				continue
			}
			rr.ByYearDay = ns

		case "BYWEEKNO":
			ns, err := parseIntList(val, 1, 53, true)
			if err != nil {
				if strict {
					return nil, fmt.Errorf("%s: BYWEEKNO %v", ErrRRuleInvalidByPart, err)
				}
				continue
			}
			rr.ByWeekNo = ns

		case "BYMONTH":
			ns, err := parseIntList(val, 1, 12, false)
			if err != nil {
				if strict {
					return nil, fmt.Errorf("%s: BYMONTH %v", ErrRRuleInvalidByPart, err)
				}
				continue
			}
			rr.ByMonth = ns

		case "BYSETPOS":
			ns, err := parseIntList(val, 1, 366, true)
			if err != nil {
				if strict {
					return nil, fmt.Errorf("%s: BYSETPOS %v", ErrRRuleInvalidByPart, err)
				}
				continue
			}
			rr.BySetPos = ns

		case "BYDAY":
			entries, err := parseByDayList(val)
			if err != nil {
				if strict {
					return nil, fmt.Errorf("%s: %v", ErrRRuleInvalidByDay, err)
				}
				continue
			}
			rr.ByDay = entries

		default:
			if strict {
				return nil, fmt.Errorf("%s: unknown RRULE part %q", ErrRRuleInvalidFormat, key)
			}
			// lenient: silently ignored per §4.5
		}
	}

	if !sawFreq {
		return nil, fmt.Errorf("%s: FREQ is required", ErrRRuleFreqRequired)
	}
	return rr, nil
}

func parseUntil(val string) (DateTimeValue, bool, error) {
	if dateTimeRE.MatchString(val) {
		v, verr := parseDateTimeValue(val, nil, true)
		if verr != nil {
			return DateTimeValue{}, false, fmt.Errorf("bad UNTIL date-time %q", val)
		}
		return v.DateTime, false, nil
	}
	if dateRE.MatchString(val) {
		v, verr := parseDateValue(val, true)
		if verr != nil {
			return DateTimeValue{}, false, fmt.Errorf("bad UNTIL date %q", val)
		}
		return DateTimeValue{Date: v.Date}, true, nil
	}
	return DateTimeValue{}, false, fmt.Errorf("bad UNTIL value %q", val)
}

func parseIntList(val string, min, max int, allowSignedNonzero bool) ([]int, error) {
	var out []int
	for _, tok := range strings.Split(val, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			return nil, fmt.Errorf("empty element")
		}
		n, err := strconv.Atoi(tok)
		if err != nil {
			return nil, fmt.Errorf("non-integer element %q", tok)
		}
		if allowSignedNonzero {
			if n == 0 {
				return nil, fmt.Errorf("%s: zero ordinal not allowed", ErrRRuleZeroOrdinal)
			}
			abs := n
			if abs < 0 {
				abs = -abs
			}
			if abs < min || abs > max {
				return nil, fmt.Errorf("element %d out of range [±%d,±%d]", n, min, max)
			}
		} else {
			if n < min || n > max {
				return nil, fmt.Errorf("element %d out of range [%d,%d]", n, min, max)
			}
		}
		out = append(out, n)
	}
	return out, nil
}

// splitByDayToken splits a single BYDAY element (e.g. "2MO", "-1FR", "SU")
// into its optional signed ordinal and its two-letter weekday code.
// hadOrdinal distinguishes a bare weekday ("MO", ordinal 0 meaning
// "unspecified") from an explicit zero ordinal ("0MO", which is invalid).
func splitByDayToken(tok string) (ordinal int, hadOrdinal bool, dayStr string, ok bool) {
	if len(tok) < 2 {
		return 0, false, "", false
	}
	dayStr = tok[len(tok)-2:]
	numPart := tok[:len(tok)-2]
	if numPart == "" {
		return 0, false, dayStr, true
	}
	n, err := strconv.Atoi(numPart)
	if err != nil {
		return 0, false, "", false
	}
	return n, true, dayStr, true
}

func parseByDayList(val string) ([]ByDayEntry, error) {
	var out []ByDayEntry
	for _, tok := range strings.Split(val, ",") {
		tok = strings.TrimSpace(strings.ToUpper(tok))
		ord, hadOrdinal, dayStr, ok := splitByDayToken(tok)
		if !ok {
			return nil, fmt.Errorf("malformed BYDAY element %q", tok)
		}
		day, ok := weekdayByName[dayStr]
		if !ok {
			return nil, fmt.Errorf("unknown weekday %q in %q", dayStr, tok)
		}
		if hadOrdinal && ord == 0 {
			return nil, fmt.Errorf("%s: zero ordinal not allowed in %q", ErrRRuleZeroOrdinal, tok)
		}
		out = append(out, ByDayEntry{Ordinal: ord, Day: day})
	}
	return out, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// String — canonical serialization (§4.5)
// ─────────────────────────────────────────────────────────────────────────────

// String renders the RRule in the fixed canonical part order: FREQ,
// INTERVAL (if != 1), COUNT, UNTIL, BYSECOND, BYMINUTE, BYHOUR, BYDAY,
// BYMONTHDAY, BYYEARDAY, BYWEEKNO, BYMONTH, BYSETPOS, WKST (if != MO).
func (r *RRule) String() string {
	var b strings.Builder
	b.WriteString("FREQ=")
	b.WriteString(r.Freq.String())

	if r.Interval != 1 {
		fmt.Fprintf(&b, ";INTERVAL=%d", r.Interval)
	}
	if r.HasCount {
		fmt.Fprintf(&b, ";COUNT=%d", r.Count)
	}
	if r.HasUntil {
		b.WriteString(";UNTIL=")
		b.WriteString(formatUntil(r.Until, r.UntilIsDate))
	}
	writeIntList(&b, "BYSECOND", r.BySecond)
	writeIntList(&b, "BYMINUTE", r.ByMinute)
	writeIntList(&b, "BYHOUR", r.ByHour)
	if len(r.ByDay) > 0 {
		b.WriteString(";BYDAY=")
		for i, e := range r.ByDay {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(e.String())
		}
	}
	writeIntList(&b, "BYMONTHDAY", r.ByMonthDay)
	writeIntList(&b, "BYYEARDAY", r.ByYearDay)
	writeIntList(&b, "BYWEEKNO", r.ByWeekNo)
	writeIntList(&b, "BYMONTH", r.ByMonth)
	writeIntList(&b, "BYSETPOS", r.BySetPos)
	if r.Wkst != WeekdayMo {
		b.WriteString(";WKST=")
		b.WriteString(r.Wkst.String())
	}
	return b.String()
}

func writeIntList(b *strings.Builder, key string, ns []int) {
	if len(ns) == 0 {
		return
	}
	b.WriteByte(';')
	b.WriteString(key)
	b.WriteByte('=')
	for i, n := range ns {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(b, "%d", n)
	}
}

func formatUntil(u DateTimeValue, isDate bool) string {
	if isDate {
		return fmt.Sprintf("%04d%02d%02d", u.Date.Year, u.Date.Month, u.Date.Day)
	}
	s := fmt.Sprintf("%04d%02d%02dT%02d%02d%02d", u.Date.Year, u.Date.Month, u.Date.Day,
		u.Time.Hour, u.Time.Minute, u.Time.Second)
	if u.UTC {
		s += "Z"
	}
	return s
}
