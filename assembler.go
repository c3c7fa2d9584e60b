package ical

import "strings"

// ─────────────────────────────────────────────────────────────────────────────
// ComponentAssembler (§4.4)
// ─────────────────────────────────────────────────────────────────────────────

const defaultMaxDepth = 64

var knownComponentNames = map[string]bool{
	"VCALENDAR": true, "VEVENT": true, "VTODO": true, "VJOURNAL": true,
	"VFREEBUSY": true, "VTIMEZONE": true, "VALARM": true,
	"VAVAILABILITY": true, "AVAILABLE": true, "STANDARD": true, "DAYLIGHT": true,
	"VLOCATION": true, "VRESOURCE": true, "PARTICIPANT": true,
}

var topLevelWhitelist = map[string]bool{
	"VERSION": true, "PRODID": true, "CALSCALE": true, "METHOD": true,
	"REFRESH-INTERVAL": true, "COLOR": true,
}

// assembler consumes a ContentLine token stream and produces a VCalendar
// tree, maintaining the BEGIN/END stack and per-level property buffers
// described in §4.4.
type assembler struct {
	strict    bool
	maxDepth  int
	root      *Component
	rootBegun bool
	stack     []*Component
	buffers   [][]*Property
	diags     *diagnostics
}

func newAssembler(strict bool, maxDepth int) *assembler {
	if maxDepth <= 0 {
		maxDepth = defaultMaxDepth
	}
	d := &diagnostics{}
	d.reset(strict)
	return &assembler{strict: strict, maxDepth: maxDepth, root: NewComponent("VCALENDAR"), diags: d}
}

// assemble drives the full token stream through the assembler and returns
// the finished tree.
func assemble(tokens []*ContentLine, strict bool, maxDepth int) (*VCalendar, []*ValidationError, *ParseException) {
	a := newAssembler(strict, maxDepth)
	for _, tok := range tokens {
		var pe *ParseException
		switch {
		case strings.EqualFold(tok.Name, "BEGIN"):
			pe = a.processBegin(strings.ToUpper(strings.TrimSpace(tok.Value)), tok.LineNumber)
		case strings.EqualFold(tok.Name, "END"):
			pe = a.processEnd(strings.ToUpper(strings.TrimSpace(tok.Value)), tok.LineNumber)
		default:
			pe = a.processProperty(tok)
		}
		if pe != nil {
			return nil, a.diags.warnings(), pe
		}
	}
	a.finish()
	return a.root, a.diags.warnings(), nil
}

func (a *assembler) processBegin(name string, lineNumber int) *ParseException {
	if len(a.stack)+1 > a.maxDepth {
		return newParseException(ErrSecDepthExceeded, lineNumber, "", nil)
	}

	var comp *Component
	if !a.rootBegun && len(a.stack) == 0 && name == "VCALENDAR" {
		comp = a.root
		a.rootBegun = true
	} else {
		comp = NewComponent(name)
		if !knownComponentNames[name] && !strings.HasPrefix(name, "X-") {
			if a.strict {
				return newParseException(ErrInvalidPropertyName, lineNumber, "", nil)
			}
			a.diags.items = append(a.diags.items, newValidationError(ErrComponentUnknownName, SeverityWarning,
				lineNumber, "", name, "", "unrecognized component %q treated as generic", name))
		}
	}
	a.stack = append(a.stack, comp)
	a.buffers = append(a.buffers, nil)
	return nil
}

func (a *assembler) processEnd(name string, lineNumber int) *ParseException {
	if len(a.stack) == 0 {
		a.diags.items = append(a.diags.items, newValidationError(ErrComponentOrphanEnd, SeverityWarning,
			lineNumber, "", name, "", "END with no matching BEGIN, ignored"))
		return nil
	}

	top := a.stack[len(a.stack)-1]
	buf := a.buffers[len(a.buffers)-1]

	if !strings.EqualFold(top.Name, name) {
		a.diags.items = append(a.diags.items, newValidationError(ErrMismatchedEnd, SeverityWarning,
			lineNumber, "", top.Name, "", "END:%s does not match open component %s; unwinding by structure", name, top.Name))
	}

	top.Properties = append(top.Properties, resolveConflicts(buf)...)
	a.stack = a.stack[:len(a.stack)-1]
	a.buffers = a.buffers[:len(a.buffers)-1]

	if len(a.stack) > 0 {
		parent := a.stack[len(a.stack)-1]
		parent.AddComponent(top)
	}
	return nil
}

// finish attaches any components left open at end-of-input directly to
// the root VCALENDAR, per the "trailing unclosed state" rule in §4.4.
func (a *assembler) finish() {
	for len(a.stack) > 0 {
		top := a.stack[len(a.stack)-1]
		buf := a.buffers[len(a.buffers)-1]
		top.Properties = append(top.Properties, resolveConflicts(buf)...)
		a.stack = a.stack[:len(a.stack)-1]
		a.buffers = a.buffers[:len(a.buffers)-1]
		if top != a.root {
			a.diags.items = append(a.diags.items, newValidationError(ErrComponentNotClosed, SeverityWarning,
				0, "", top.Name, "", "%s reached end of input without a matching END:%s; attached to VCALENDAR", top.Name, top.Name))
			a.root.AddComponent(top)
		}
	}
}

// isDateOrTimeOrSummary reports whether name falls under the special
// lenient-mode "never escalate" carve-out in §7.
func isDateOrTimeOrSummary(name string, vt ValueType) bool {
	if strings.EqualFold(name, "SUMMARY") {
		return true
	}
	return vt == ValueDate || vt == ValueDateTime || vt == ValueTime
}

func (a *assembler) processProperty(tok *ContentLine) *ParseException {
	if len(a.stack) == 0 {
		// Property encountered before any BEGIN:VCALENDAR: treat the root
		// as implicitly open rather than discarding real content.
		if pe := a.processBegin("VCALENDAR", tok.LineNumber); pe != nil {
			return pe
		}
	}

	params, paramDiags := parseParamSegment(tok.ParamsRaw, a.strict)
	for _, d := range paramDiags {
		if a.strict && d.Severity == SeverityError {
			return newParseException(d.Code, tok.LineNumber, tok.Raw, d)
		}
		d.LineNumber, d.Line = tok.LineNumber, tok.Raw
		a.diags.items = append(a.diags.items, d)
	}

	vt := resolveValueType(tok.Name, params)
	value, verr := parseValue(vt, tok.Value, params, a.strict)
	if verr != nil {
		verr.LineNumber, verr.Line, verr.Property = tok.LineNumber, tok.Raw, tok.Name
		if verr.Severity == SeverityWarning {
			// Value accepted leniently: keep the property, record the warning.
			a.diags.items = append(a.diags.items, verr)
		} else {
			if a.strict {
				return newParseException(verr.Code, tok.LineNumber, tok.Raw, verr)
			}
			if isDateOrTimeOrSummary(tok.Name, vt) {
				verr.Severity = SeverityWarning
			}
			a.diags.items = append(a.diags.items, verr)
			return nil // property dropped
		}
	}
	value.Type = vt

	prop := &Property{Name: tok.Name, Params: params, Value: value}

	top := a.stack[len(a.stack)-1]
	if top == a.root && top.Name == "VCALENDAR" {
		if !topLevelWhitelist[tok.Name] && !strings.HasPrefix(tok.Name, "X-") {
			if !a.strict {
				a.diags.items = append(a.diags.items, newValidationError(ErrComponentTopLevelDrop, SeverityWarning,
					tok.LineNumber, tok.Raw, "VCALENDAR", tok.Name, "non-whitelisted top-level property dropped"))
			}
			return nil
		}
	}

	idx := len(a.buffers) - 1
	a.buffers[idx] = append(a.buffers[idx], prop)
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Conflict resolution (§4.4.1) — DESCRIPTION vs STYLED-DESCRIPTION
// ─────────────────────────────────────────────────────────────────────────────

// resolveConflicts implements the RFC 9073 rule: if any STYLED-DESCRIPTION
// is present, every DESCRIPTION without DERIVED=TRUE is removed. Order of
// the surviving elements is preserved. Idempotent: a second application
// on its own output is a no-op.
func resolveConflicts(props []*Property) []*Property {
	hasStyled := false
	for _, p := range props {
		if p.IsName("STYLED-DESCRIPTION") {
			hasStyled = true
			break
		}
	}
	if !hasStyled {
		return props
	}
	out := make([]*Property, 0, len(props))
	for _, p := range props {
		if p.IsName("DESCRIPTION") && !p.Params.Has("DERIVED", "TRUE") {
			continue
		}
		out = append(out, p)
	}
	return out
}
