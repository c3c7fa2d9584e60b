package ical

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRFC6868RoundTrip(t *testing.T) {
	cases := []string{
		`plain value`,
		"multi\nline",
		`has "quotes"`,
		"caret^value",
	}
	for _, c := range cases {
		encoded := encodeRFC6868(c)
		decoded, verr := decodeRFC6868(encoded, true)
		require.Nil(t, verr, "encode/decode round trip for %q", c)
		require.Equal(t, c, decoded)
	}
}

func TestDecodeRFC6868KnownEscapes(t *testing.T) {
	got, verr := decodeRFC6868(`a^nb^^c^'d`, true)
	require.Nil(t, verr)
	require.Equal(t, "a\nb^c\"d", got)
}

func TestDecodeRFC6868UnknownEscapeStrict(t *testing.T) {
	_, verr := decodeRFC6868(`a^xb`, true)
	require.NotNil(t, verr)
	require.Equal(t, ErrInvalidRFC6868Encoding, verr.Code)
}

func TestDecodeRFC6868UnknownEscapeLenient(t *testing.T) {
	got, verr := decodeRFC6868(`a^xb`, false)
	require.NotNil(t, verr)
	require.Equal(t, SeverityWarning, verr.Severity)
	require.Equal(t, `a^xb`, got)
}

func TestParseParamSegmentQuotedValueWithColon(t *testing.T) {
	pl, diags := parseParamSegment(`FMTTYPE="http://x:y";LANGUAGE=en`, true)
	require.Empty(t, diags)
	require.Equal(t, "http://x:y", pl.GetValue("FMTTYPE"))
	require.Equal(t, "en", pl.GetValue("LANGUAGE"))
}

func TestParseParamSegmentMultiValue(t *testing.T) {
	pl, diags := parseParamSegment(`MEMBER="mailto:a@x.com","mailto:b@x.com"`, true)
	require.Empty(t, diags)
	p, ok := pl.Get("MEMBER")
	require.True(t, ok)
	require.Equal(t, []string{"mailto:a@x.com", "mailto:b@x.com"}, p.Values)
}

func TestParseParamSegmentInvalidNameLenient(t *testing.T) {
	pl, diags := parseParamSegment(`1BAD=x;LANGUAGE=en`, false)
	require.NotEmpty(t, diags)
	require.Equal(t, "en", pl.GetValue("LANGUAGE"))
}

func TestSplitOutsideQuotesUnterminated(t *testing.T) {
	_, err := splitOutsideQuotes(`a="unterminated`, ';')
	require.ErrorIs(t, err, errUnterminatedQuote)
}
