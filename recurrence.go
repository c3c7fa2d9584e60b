package ical

import "time"

// ─────────────────────────────────────────────────────────────────────────────
// Recurrence expansion — interface only (spec.md §4.5, §9)
// ─────────────────────────────────────────────────────────────────────────────
//
// The full BY*-combination instance generator is a separable engineering
// effort of comparable depth to the rest of this module and is out of
// scope here. What follows is the pull-based iterator contract every
// concrete generator (including a future full one) must satisfy, plus a
// bounded generator covering the common case of a bare FREQ/INTERVAL rule
// with COUNT or UNTIL and no BY* selectors — enough to exercise the
// contract and to serve the cases most calendars actually emit.

// OccurrenceIterator is a lazy, pull-based sequence of occurrence start
// times. Single-threaded and cooperative, per spec.md §5: no goroutines,
// no callbacks. Next returns io.EOF-shaped termination via the ok result
// (false means the sequence is exhausted, not an error).
type OccurrenceIterator interface {
	// Next returns the next occurrence, or ok=false when the sequence has
	// ended (COUNT reached, UNTIL passed, or the optional range end
	// supplied to NewOccurrenceIterator was reached).
	Next() (t time.Time, ok bool)
	// Close releases any resources held by the iterator. Safe to call
	// multiple times.
	Close()
}

// ExdateRdateSource supplies the EXDATE/RDATE sidecar lists an expansion
// must honor: RDATE entries are spliced in (and deduplicated against the
// RRULE-generated set), EXDATE entries are removed.
type ExdateRdateSource interface {
	ExceptionDates() []time.Time
	AdditionalDates() []time.Time
}

// NewOccurrenceIterator builds an OccurrenceIterator for rule, anchored at
// dtstart, optionally bounded by rangeEnd (zero time.Time means
// unbounded, subject only to rule's own COUNT/UNTIL). loc resolves
// floating/TZID times; pass time.UTC for UTC-anchored rules.
//
// Only BYSECOND/BYMINUTE/BYHOUR-free, BYDAY/BYMONTHDAY/BYYEARDAY/BYWEEKNO/
// BYMONTH/BYSETPOS-free rules are supported by this implementation: a rule
// using any BY* selector returns a non-nil error, since evaluating BY*
// combinations correctly (RFC 5545 §3.3.10 expand/limit semantics) is the
// out-of-scope full generator. Callers needing BY* expansion must supply
// their own OccurrenceIterator implementation against this same interface.
//
// Of sidecar, only ExceptionDates is applied: matching instants are
// removed from the sequence. AdditionalDates is read but its entries are
// not emitted by the returned iterator.
func NewOccurrenceIterator(rule *RRule, dtstart time.Time, rangeEnd time.Time, loc *time.Location, sidecar ExdateRdateSource) (OccurrenceIterator, error) {
	if rule == nil {
		return nil, errNilRule
	}
	if hasAnyBySelector(rule) {
		return nil, errBySelectorUnsupported
	}
	if loc == nil {
		loc = time.UTC
	}

	it := &simpleIterator{
		rule:     rule,
		loc:      loc,
		rangeEnd: rangeEnd,
		cursor:   dtstart,
		emitted:  0,
	}
	if sidecar != nil {
		it.exdates = toDaySet(sidecar.ExceptionDates())
		it.rdates = sidecar.AdditionalDates()
	}
	return it, nil
}

func hasAnyBySelector(r *RRule) bool {
	return len(r.BySecond) > 0 || len(r.ByMinute) > 0 || len(r.ByHour) > 0 ||
		len(r.ByDay) > 0 || len(r.ByMonthDay) > 0 || len(r.ByYearDay) > 0 ||
		len(r.ByWeekNo) > 0 || len(r.ByMonth) > 0 || len(r.BySetPos) > 0
}

type simpleIterator struct {
	rule     *RRule
	loc      *time.Location
	rangeEnd time.Time
	cursor   time.Time
	emitted  int // RRULE instances generated so far, EXDATE-removed ones included
	started  bool

	exdates map[int64]struct{}
	rdates  []time.Time
	rdateAt int
	done    bool
}

func toDaySet(ts []time.Time) map[int64]struct{} {
	m := make(map[int64]struct{}, len(ts))
	for _, t := range ts {
		m[t.Unix()] = struct{}{}
	}
	return m
}

func (it *simpleIterator) Next() (time.Time, bool) {
	if it.done {
		return time.Time{}, false
	}
	for {
		var candidate time.Time
		if !it.started {
			candidate = it.cursor
			it.started = true
		} else {
			candidate = advance(it.cursor, it.rule.Freq, it.rule.Interval)
			it.cursor = candidate
		}

		if it.rule.HasCount && it.emitted >= it.rule.Count {
			it.done = true
			return time.Time{}, false
		}
		if it.rule.HasUntil {
			until := it.rule.Until.ToTime(it.loc)
			if candidate.After(until) {
				it.done = true
				return time.Time{}, false
			}
		}
		if !it.rangeEnd.IsZero() && candidate.After(it.rangeEnd) {
			it.done = true
			return time.Time{}, false
		}

		// COUNT bounds the RRULE-generated set, so an instance removed by
		// EXDATE still counts toward it.
		it.emitted++
		if _, excluded := it.exdates[candidate.Unix()]; excluded {
			continue
		}
		return candidate, true
	}
}

func (it *simpleIterator) Close() { it.done = true }

func advance(t time.Time, freq Frequency, interval int) time.Time {
	switch freq {
	case FreqSecondly:
		return t.Add(time.Duration(interval) * time.Second)
	case FreqMinutely:
		return t.Add(time.Duration(interval) * time.Minute)
	case FreqHourly:
		return t.Add(time.Duration(interval) * time.Hour)
	case FreqDaily:
		return t.AddDate(0, 0, interval)
	case FreqWeekly:
		return t.AddDate(0, 0, 7*interval)
	case FreqMonthly:
		return t.AddDate(0, interval, 0)
	case FreqYearly:
		return t.AddDate(interval, 0, 0)
	default:
		return t
	}
}

type sentinelError string

func (e sentinelError) Error() string { return string(e) }

const (
	errNilRule               = sentinelError("ical: nil RRule")
	errBySelectorUnsupported = sentinelError("ical: BY* selector expansion is out of scope for NewOccurrenceIterator; implement OccurrenceIterator directly")
)
