package ical

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestOccurrenceIteratorCount(t *testing.T) {
	rr, err := ParseRRule("FREQ=DAILY;COUNT=3", true)
	require.NoError(t, err)
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	it, err := NewOccurrenceIterator(rr, start, time.Time{}, time.UTC, nil)
	require.NoError(t, err)

	var got []time.Time
	for {
		tm, ok := it.Next()
		if !ok {
			break
		}
		got = append(got, tm)
	}
	require.Len(t, got, 3)
	require.Equal(t, start, got[0])
	require.Equal(t, start.AddDate(0, 0, 2), got[2])
}

func TestOccurrenceIteratorUntil(t *testing.T) {
	rr, err := ParseRRule("FREQ=WEEKLY;UNTIL=20260315T000000Z", true)
	require.NoError(t, err)
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	it, err := NewOccurrenceIterator(rr, start, time.Time{}, time.UTC, nil)
	require.NoError(t, err)

	var count int
	for {
		_, ok := it.Next()
		if !ok {
			break
		}
		count++
	}
	require.Equal(t, 2, count) // Mar 1, Mar 8 (Mar 15 09:00Z is after UNTIL, Mar 15 00:00Z)
}

func TestOccurrenceIteratorRejectsBySelectors(t *testing.T) {
	rr, err := ParseRRule("FREQ=MONTHLY;BYDAY=1MO", true)
	require.NoError(t, err)
	_, err = NewOccurrenceIterator(rr, time.Now(), time.Time{}, time.UTC, nil)
	require.ErrorIs(t, err, errBySelectorUnsupported)
}

type fixedSidecar struct {
	exceptions []time.Time
	additions  []time.Time
}

func (f fixedSidecar) ExceptionDates() []time.Time  { return f.exceptions }
func (f fixedSidecar) AdditionalDates() []time.Time { return f.additions }

func TestOccurrenceIteratorHonorsExdates(t *testing.T) {
	rr, err := ParseRRule("FREQ=DAILY;COUNT=3", true)
	require.NoError(t, err)
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	sidecar := fixedSidecar{exceptions: []time.Time{start.AddDate(0, 0, 1)}}
	it, err := NewOccurrenceIterator(rr, start, time.Time{}, time.UTC, sidecar)
	require.NoError(t, err)

	var got []time.Time
	for {
		tm, ok := it.Next()
		if !ok {
			break
		}
		got = append(got, tm)
	}
	require.Len(t, got, 2)
	require.Equal(t, start, got[0])
	require.Equal(t, start.AddDate(0, 0, 2), got[1])
}
