package ical

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParserParseSimpleCalendar(t *testing.T) {
	text := "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:-//Test//EN\r\nBEGIN:VEVENT\r\nUID:1\r\nDTSTAMP:20260301T090000Z\r\nDTSTART:20260301T100000Z\r\nSUMMARY:Meeting\r\nEND:VEVENT\r\nEND:VCALENDAR\r\n"
	p := NewParser()
	cal, err := p.Parse(text)
	require.NoError(t, err)
	require.Equal(t, "2.0", cal.Prop("VERSION").Value.Text)
	require.Len(t, cal.Sub("VEVENT"), 1)
}

func TestParserStrictRejectsMissingColon(t *testing.T) {
	text := "BEGIN:VCALENDAR\r\nVERSION2.0\r\nEND:VCALENDAR\r\n"
	p := NewParser()
	p.SetStrict(true)
	_, err := p.Parse(text)
	require.Error(t, err)
}

func TestParserLenientRecoversFromMissingColon(t *testing.T) {
	text := "BEGIN:VCALENDAR\r\nVERSION2.0\r\nBEGIN:VEVENT\r\nUID:1\r\nEND:VEVENT\r\nEND:VCALENDAR\r\n"
	p := NewParser()
	cal, err := p.Parse(text)
	require.NoError(t, err)
	require.Len(t, cal.Components, 1)
	require.NotEmpty(t, p.GetWarnings())
}

func TestParserRejectsEmbeddedDoctype(t *testing.T) {
	text := "<!DOCTYPE x>\r\nBEGIN:VCALENDAR\r\nEND:VCALENDAR\r\n"
	p := NewParser()
	_, err := p.Parse(text)
	require.Error(t, err)
}

func TestParserRejectsSchemePath(t *testing.T) {
	p := NewParser()
	_, err := p.ParseFile("https://example.com/evil.ics")
	require.Error(t, err)
}

func TestParserMaxDepthEnforced(t *testing.T) {
	text := "BEGIN:VCALENDAR\r\nBEGIN:VEVENT\r\nBEGIN:VALARM\r\nEND:VALARM\r\nEND:VEVENT\r\nEND:VCALENDAR\r\n"
	p := NewParser()
	p.SetMaxDepth(2)
	_, err := p.Parse(text)
	require.Error(t, err)
}

func TestParserParseReaderMatchesParse(t *testing.T) {
	text := "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nEND:VCALENDAR\r\n"
	p1 := NewParser()
	cal1, err := p1.Parse(text)
	require.NoError(t, err)

	p2 := NewParser()
	cal2, err := p2.ParseReader(strings.NewReader(text))
	require.NoError(t, err)

	require.Equal(t, cal1.Prop("VERSION").Value.Text, cal2.Prop("VERSION").Value.Text)
}

func TestExportToTupleShape(t *testing.T) {
	text := "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nBEGIN:VEVENT\r\nUID:1\r\nEND:VEVENT\r\nEND:VCALENDAR\r\n"
	cal, err := NewParser().Parse(text)
	require.NoError(t, err)

	tuple := cal.ToTuple()
	require.Len(t, tuple, 3)
	require.Equal(t, "vcalendar", tuple[0])

	props, ok := tuple[1].([]interface{})
	require.True(t, ok)
	require.NotEmpty(t, props)

	subs, ok := tuple[2].([]interface{})
	require.True(t, ok)
	require.Len(t, subs, 1)
}
