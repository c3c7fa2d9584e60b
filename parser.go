package ical

import (
	"io"
	"os"
	"regexp"
	"strings"
)

// ─────────────────────────────────────────────────────────────────────────────
// Parser (§2, §4, §7) — public entry point
// ─────────────────────────────────────────────────────────────────────────────

// Parser parses RFC 5545 iCalendar text into a VCalendar tree. Not safe
// for concurrent use; create one Parser per goroutine, per doc.go.
type Parser struct {
	strict   bool
	maxDepth int
	warnings []*ValidationError
}

// NewParser returns a Parser in lenient mode with the default depth bound.
func NewParser() *Parser {
	return &Parser{maxDepth: defaultMaxDepth}
}

// SetStrict toggles strict mode: malformed input raises a *ParseException
// instead of being recorded as a warning and recovered from.
func (p *Parser) SetStrict(strict bool) { p.strict = strict }

// SetMaxDepth overrides the nesting-depth bound enforced during assembly
// (§7, ICAL-SEC-001). n <= 0 restores the default.
func (p *Parser) SetMaxDepth(n int) { p.maxDepth = n }

// GetWarnings returns every diagnostic accumulated by the most recent
// Parse/ParseFile call, in the order they were raised.
func (p *Parser) GetWarnings() []*ValidationError { return p.warnings }

// GetErrors is an alias of GetWarnings: both return the full accumulated
// diagnostic list, filterable by Severity.
func (p *Parser) GetErrors() []*ValidationError { return p.warnings }

var schemeRE = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]*://`)

// rejectSchemePath and rejectEntityOrDoctype implement the §7 pre-parse
// security checks: a path
// argument that looks like a URI scheme is refused rather than silently
// handed to the filesystem, and embedded DTD declarations are refused
// outright since this parser has no XML/DTD layer to exploit via them but
// callers sometimes pipe untrusted files through unconditionally.
func rejectSchemePath(path string) *ParseException {
	if schemeRE.MatchString(path) {
		return newParseException(ErrSecSchemePath, 0, path, nil)
	}
	return nil
}

func rejectEntityOrDoctype(text string) *ParseException {
	if strings.Contains(text, "<!ENTITY") || strings.Contains(text, "<!DOCTYPE") {
		return newParseException(ErrSecEntityOrDoctype, 0, "", nil)
	}
	return nil
}

// Parse parses in-memory iCalendar text.
func (p *Parser) Parse(text string) (*VCalendar, error) {
	p.warnings = nil
	if pe := rejectEntityOrDoctype(text); pe != nil {
		return nil, pe
	}
	tokens, diags, pe := lexText(text, p.strict)
	p.warnings = diags
	if pe != nil {
		return nil, pe
	}
	cal, warnings, pe := assemble(tokens, p.strict, p.maxDepth)
	p.warnings = append(p.warnings, warnings...)
	if pe != nil {
		return nil, pe
	}
	return cal, nil
}

// ParseFile streams path through the constant-memory lexing path (§4.1)
// rather than reading the whole file into memory first.
func (p *Parser) ParseFile(path string) (*VCalendar, error) {
	p.warnings = nil
	if pe := rejectSchemePath(path); pe != nil {
		return nil, pe
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, newParseException(ErrIOOpenFailed, 0, path, err)
	}
	defer f.Close()
	return p.ParseReader(f)
}

// ParseReader streams r through the lexer and assembler without
// buffering the entire input.
func (p *Parser) ParseReader(r io.Reader) (*VCalendar, error) {
	tokens, diags, pe := lexReader(r, p.strict)
	p.warnings = diags
	if pe != nil {
		return nil, pe
	}
	cal, warnings, pe := assemble(tokens, p.strict, p.maxDepth)
	p.warnings = append(p.warnings, warnings...)
	if pe != nil {
		return nil, pe
	}
	return cal, nil
}
