package ical

import (
	"os"
	"strings"
)

// ─────────────────────────────────────────────────────────────────────────────
// Writer (§4.6) — public entry point
// ─────────────────────────────────────────────────────────────────────────────

// Writer serializes a VCalendar tree back to RFC 5545 text. Not safe for
// concurrent use, per doc.go.
type Writer struct {
	foldEnabled bool
	foldLength  int
}

// NewWriter returns a Writer with line folding enabled at the default
// 75-octet limit, matching the wire format most consumers expect.
func NewWriter() *Writer {
	return &Writer{foldEnabled: true, foldLength: defaultFoldLength}
}

// SetLineFolding toggles folding and, when enabled, overrides the
// soft-limit length. length <= 0 restores the default.
func (w *Writer) SetLineFolding(enabled bool, length int) {
	w.foldEnabled = enabled
	if length > 0 {
		w.foldLength = length
	} else {
		w.foldLength = defaultFoldLength
	}
}

// Write serializes cal to RFC 5545 text, CRLF-terminated.
func (w *Writer) Write(cal *VCalendar) (string, error) {
	if cal == nil {
		return "", newValidationError(ErrWriteNilCalendar, SeverityFatal, 0, "", "", "", "nil calendar")
	}
	var lines []string
	if verr := writeComponent(cal, &lines); verr != nil {
		return "", verr
	}
	var b strings.Builder
	for _, l := range lines {
		if w.foldEnabled {
			l = foldLine(l, w.foldLength)
		}
		b.WriteString(l)
		b.WriteString("\r\n")
	}
	return b.String(), nil
}

// WriteToFile serializes cal and writes it to path.
func (w *Writer) WriteToFile(cal *VCalendar, path string) error {
	text, err := w.Write(cal)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return newValidationError(ErrWriteIO, SeverityFatal, 0, "", "", "", "%v", err)
	}
	return nil
}
