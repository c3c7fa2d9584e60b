package calindex

import (
	"testing"
	"time"

	"github.com/Durelius/icalgo"
	"github.com/stretchr/testify/require"
)

func eventAt(t *testing.T, uid string, start time.Time) *ical.Component {
	t.Helper()
	c := ical.NewComponent("VEVENT")
	c.AddProperty(ical.NewProperty("UID", ical.Value{Type: ical.ValueText, Text: uid}))
	c.AddProperty(ical.NewProperty("DTSTART", ical.Value{
		Type: ical.ValueDateTime,
		DateTime: ical.DateTimeValue{
			Date: ical.DateValue{Year: start.Year(), Month: int(start.Month()), Day: start.Day()},
			Time: ical.TimeValue{Hour: start.Hour(), Minute: start.Minute(), Second: start.Second(), UTC: true},
			UTC:  true,
		},
	}))
	return c
}

func TestEventIndexOrdersByStart(t *testing.T) {
	idx := New(time.UTC)
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	root := ical.NewComponent("VCALENDAR")
	root.AddComponent(eventAt(t, "c", base.Add(2*time.Hour)))
	root.AddComponent(eventAt(t, "a", base))
	root.AddComponent(eventAt(t, "b", base.Add(time.Hour)))

	idx.Add(root)
	require.Equal(t, 3, idx.Len())

	all := idx.All()
	require.Len(t, all, 3)
	require.Equal(t, "a", all[0].Prop("UID").Value.Text)
	require.Equal(t, "b", all[1].Prop("UID").Value.Text)
	require.Equal(t, "c", all[2].Prop("UID").Value.Text)
}

func TestEventIndexOccurrencesRange(t *testing.T) {
	idx := New(time.UTC)
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	root := ical.NewComponent("VCALENDAR")
	for i, uid := range []string{"a", "b", "c", "d"} {
		root.AddComponent(eventAt(t, uid, base.Add(time.Duration(i)*time.Hour)))
	}
	idx.Add(root)

	got := idx.Occurrences(base.Add(time.Hour), base.Add(2*time.Hour))
	require.Len(t, got, 2)
	require.Equal(t, "b", got[0].Prop("UID").Value.Text)
	require.Equal(t, "c", got[1].Prop("UID").Value.Text)
}

func TestEventIndexSkipsComponentsWithoutDtstart(t *testing.T) {
	idx := New(time.UTC)
	root := ical.NewComponent("VCALENDAR")
	root.AddComponent(ical.NewComponent("VEVENT"))
	idx.Add(root)
	require.Equal(t, 0, idx.Len())
}

func TestEventIndexAtExactInstant(t *testing.T) {
	idx := New(time.UTC)
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	root := ical.NewComponent("VCALENDAR")
	root.AddComponent(eventAt(t, "only", base))
	idx.Add(root)

	found, ok := idx.At(base)
	require.True(t, ok)
	require.Len(t, found, 1)
	require.Equal(t, "only", found[0].Prop("UID").Value.Text)

	_, ok = idx.At(base.Add(time.Minute))
	require.False(t, ok)
}
