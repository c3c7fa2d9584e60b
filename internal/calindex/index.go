package calindex

import (
	"time"

	"github.com/Durelius/icalgo"
)

// EventIndex orders the VEVENT/VTODO/VJOURNAL components of one or more
// parsed calendars by occurrence start time, so a caller can ask for
// everything between two instants without re-walking every component
// tree in every parsed VCALENDAR.
type EventIndex struct {
	byStart *tree[int64, *ical.Component]
	loc     *time.Location
}

// New builds an empty index. loc resolves floating/TZID DTSTART values
// that carry no explicit offset; pass time.UTC when the source calendars
// are known to be UTC-anchored.
func New(loc *time.Location) *EventIndex {
	if loc == nil {
		loc = time.UTC
	}
	return &EventIndex{byStart: newTree[int64, *ical.Component](), loc: loc}
}

// startTime extracts DTSTART from a component as a time.Time, accepting
// either DATE or DATE-TIME typed values.
func startTime(c *ical.Component, loc *time.Location) (time.Time, bool) {
	p := c.Prop("DTSTART")
	if p == nil {
		return time.Time{}, false
	}
	switch p.Value.Type {
	case ical.ValueDateTime:
		return p.Value.DateTime.ToTime(loc), true
	case ical.ValueDate:
		d := p.Value.Date
		return time.Date(d.Year, time.Month(d.Month), d.Day, 0, 0, 0, 0, loc), true
	default:
		return time.Time{}, false
	}
}

// Add indexes every VEVENT, VTODO, and VJOURNAL found anywhere in cal's
// subtree (recursing into VCALENDAR and, harmlessly, into VTIMEZONE,
// which never carries these names) that carries a DTSTART.
func (idx *EventIndex) Add(cal *ical.VCalendar) {
	idx.addRecursive(cal)
}

func (idx *EventIndex) addRecursive(c *ical.Component) {
	switch c.Name {
	case "VEVENT", "VTODO", "VJOURNAL":
		if t, ok := startTime(c, idx.loc); ok {
			idx.byStart.Insert(t.Unix(), c)
		}
	}
	for _, sub := range c.Components {
		idx.addRecursive(sub)
	}
}

// Occurrences returns every indexed component whose DTSTART falls within
// [from, to], ascending by start time. A zero from or to leaves that
// bound open.
func (idx *EventIndex) Occurrences(from, to time.Time) []*ical.Component {
	return idx.byStart.Range(from.Unix(), to.Unix(), !from.IsZero(), !to.IsZero())
}

// All returns every indexed component, ascending by start time.
func (idx *EventIndex) All() []*ical.Component {
	return idx.byStart.All()
}

// Len reports the total number of indexed components.
func (idx *EventIndex) Len() int {
	return idx.byStart.Size()
}

// At returns every component indexed at exactly t.
func (idx *EventIndex) At(t time.Time) ([]*ical.Component, bool) {
	return idx.byStart.Find(t.Unix())
}
