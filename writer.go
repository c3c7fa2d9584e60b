package ical

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
)

// ─────────────────────────────────────────────────────────────────────────────
// Typed value writers (§4.6) — the inverse of values.go's parsers
// ─────────────────────────────────────────────────────────────────────────────

func writeValue(v Value) (string, *ValidationError) {
	switch v.Type {
	case ValueDate:
		return writeDateValue(v.Date), nil
	case ValueDateTime:
		return writeDateTimeValue(v.DateTime), nil
	case ValueTime:
		return writeTimeValue(v.Time), nil
	case ValueDuration:
		return writeDurationValue(v.Duration), nil
	case ValuePeriod:
		return writePeriodValue(v.Period)
	case ValueText:
		return escapeText(v.Text), nil
	case ValueBinary:
		return writeBinaryValue(v.Binary), nil
	case ValueBoolean:
		if v.Boolean {
			return "TRUE", nil
		}
		return "FALSE", nil
	case ValueInteger:
		return strconv.FormatInt(v.Integer, 10), nil
	case ValueFloat:
		return strconv.FormatFloat(v.Float, 'f', -1, 64), nil
	case ValueURI:
		return v.URI, nil
	case ValueCalAddress:
		return v.URI, nil
	case ValueUTCOffset:
		return writeUTCOffsetValue(v.Integer), nil
	case ValueRecur:
		if v.RRule == nil {
			return "", newValidationError(ErrWriteBadRecur, SeverityError, 0, "", "", "", "nil RRule")
		}
		return v.RRule.String(), nil
	default:
		return "", newValidationError(ErrWriteUnknownValueType, SeverityError, 0, "", "", "", "unknown value type %d", v.Type)
	}
}

func writeDateValue(d DateValue) string {
	return fmt.Sprintf("%04d%02d%02d", d.Year, d.Month, d.Day)
}

func writeTimeValue(t TimeValue) string {
	s := fmt.Sprintf("%02d%02d%02d", t.Hour, t.Minute, t.Second)
	if t.UTC {
		s += "Z"
	}
	return s
}

func writeDateTimeValue(dt DateTimeValue) string {
	s := writeDateValue(dt.Date) + "T" + fmt.Sprintf("%02d%02d%02d", dt.Time.Hour, dt.Time.Minute, dt.Time.Second)
	if dt.UTC {
		s += "Z"
	}
	return s
}

func writeDurationValue(d DurationValue) string {
	var b strings.Builder
	if d.Negative && !d.IsZero() {
		b.WriteByte('-')
	}
	b.WriteByte('P')
	if d.Weeks > 0 {
		fmt.Fprintf(&b, "%dW", d.Weeks)
		return b.String()
	}
	if d.Days > 0 {
		fmt.Fprintf(&b, "%dD", d.Days)
	}
	if d.Hours > 0 || d.Minutes > 0 || d.Seconds > 0 {
		b.WriteByte('T')
		if d.Hours > 0 {
			fmt.Fprintf(&b, "%dH", d.Hours)
		}
		if d.Minutes > 0 {
			fmt.Fprintf(&b, "%dM", d.Minutes)
		}
		if d.Seconds > 0 {
			fmt.Fprintf(&b, "%dS", d.Seconds)
		}
	}
	if b.Len() == 1 {
		// Nothing but "P" was written: zero duration, emit PT0S.
		return "PT0S"
	}
	return b.String()
}

func writePeriodValue(p PeriodValue) (string, *ValidationError) {
	start := writeDateTimeValue(p.Start)
	if p.HasDuration {
		return start + "/" + writeDurationValue(p.Duration), nil
	}
	return start + "/" + writeDateTimeValue(p.End), nil
}

func writeBinaryValue(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}

func writeUTCOffsetValue(totalNanos int64) string {
	neg := totalNanos < 0
	if neg {
		totalNanos = -totalNanos
	}
	total := totalNanos / int64(1e9)
	h := total / 3600
	mi := (total % 3600) / 60
	s := total % 60
	sign := "+"
	if neg {
		sign = "-"
	}
	if s != 0 {
		return fmt.Sprintf("%s%02d%02d%02d", sign, h, mi, s)
	}
	return fmt.Sprintf("%s%02d%02d", sign, h, mi)
}

// ─────────────────────────────────────────────────────────────────────────────
// Parameter serialization (§4.6) — quoting rules + RFC 6868 encoding
// ─────────────────────────────────────────────────────────────────────────────

// mustQuote reports whether a parameter value needs the double-quoted form:
// any of COLON, SEMICOLON, COMMA, DQUOTE, SPACE, TAB, LF, CR, CARET or NUL
// forces quoting. The parser decodes RFC 6868 escapes only inside quotes,
// so every value that needs an escape is quoted.
func mustQuote(v string) bool {
	return strings.ContainsAny(v, ":;,\" \t\n\r^\x00")
}

func writeParamValue(v string) string {
	if mustQuote(v) {
		return `"` + encodeRFC6868(v) + `"`
	}
	return v
}

func writeParams(pl *ParameterList) string {
	if pl == nil || pl.Len() == 0 {
		return ""
	}
	var b strings.Builder
	for _, name := range pl.Names() {
		p, _ := pl.Get(name)
		b.WriteByte(';')
		b.WriteString(name)
		b.WriteByte('=')
		vals := make([]string, len(p.Values))
		for i, v := range p.Values {
			vals[i] = writeParamValue(v)
		}
		b.WriteString(strings.Join(vals, ","))
	}
	return b.String()
}

// ─────────────────────────────────────────────────────────────────────────────
// Property / component serialization (§4.6)
// ─────────────────────────────────────────────────────────────────────────────

func writeProperty(p *Property) (string, *ValidationError) {
	val, verr := writeValue(p.Value)
	if verr != nil {
		verr.Property = p.Name
		return "", verr
	}
	return p.Name + writeParams(p.Params) + ":" + val, nil
}

// writeComponent recurses depth-first, applying the same conflict
// resolution rule the assembler applies at parse time (§4.4.1) so a
// parse/write/parse round-trip is stable.
func writeComponent(c *Component, out *[]string) *ValidationError {
	*out = append(*out, "BEGIN:"+c.Name)
	for _, p := range resolveConflicts(c.Properties) {
		line, verr := writeProperty(p)
		if verr != nil {
			return verr
		}
		*out = append(*out, line)
	}
	for _, sub := range c.Components {
		if verr := writeComponent(sub, out); verr != nil {
			return verr
		}
	}
	*out = append(*out, "END:"+c.Name)
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Line folding (§4.6) — 75-octet soft limit, UTF-8-boundary-safe
// ─────────────────────────────────────────────────────────────────────────────

const defaultFoldLength = 75

// foldLine folds a single unfolded content line to maxLen-octet physical
// segments joined by CRLF+space, never splitting inside a UTF-8 encoded
// rune. Grounded on arran4/golang-ical's trimUTF8StringUpTo approach:
// walk forward counting octets and retreat to the last rune boundary
// whenever a split would land mid-sequence.
func foldLine(line string, maxLen int) string {
	if maxLen <= 0 {
		maxLen = defaultFoldLength
	}
	b := []byte(line)
	if len(b) <= maxLen {
		return line
	}
	var out strings.Builder
	start := 0
	first := true
	for start < len(b) {
		limit := maxLen
		if !first {
			limit = maxLen - 1 // account for the leading continuation space
		}
		end := start + limit
		if end >= len(b) {
			end = len(b)
		} else {
			end = retreatToRuneBoundary(b, end)
		}
		if !first {
			out.WriteString("\r\n ")
		}
		out.Write(b[start:end])
		start = end
		first = false
	}
	return out.String()
}

// retreatToRuneBoundary steps back from end until it no longer sits in the
// middle of a multi-byte UTF-8 sequence.
func retreatToRuneBoundary(b []byte, end int) int {
	for end > 0 && end < len(b) && isUTF8Continuation(b[end]) {
		end--
	}
	return end
}

func isUTF8Continuation(c byte) bool {
	return c&0xC0 == 0x80
}
