package pipeline

import (
	"time"

	"github.com/MdEnamulHaque007/UPTOP-sub000/record"
)

// dateFormats lists the layouts ParseDate tries, most common first.
var dateFormats = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"01/02/2006",
}

// ParseDate parses a record date in any of the accepted layouts.
func ParseDate(s string) (time.Time, bool) {
	for _, layout := range dateFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// window is a half-open interval [start, end). Either bound may be
// absent for an open-ended window.
type window struct {
	start, end       time.Time
	hasStart, hasEnd bool
}

func (w window) contains(t time.Time) bool {
	if w.hasStart && t.Before(w.start) {
		return false
	}
	if w.hasEnd && !t.Before(w.end) {
		return false
	}
	return true
}

// rangeWindow resolves a criteria date range against the given clock.
// The second return is false when no date filtering applies at all.
// Rolling ranges (week, month, quarter, year) look back from now and are
// open-ended toward the future.
func rangeWindow(c Criteria, now time.Time) (window, bool) {
	switch c.DateRange {
	case RangeToday:
		start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		return window{start: start, end: start.AddDate(0, 0, 1), hasStart: true, hasEnd: true}, true
	case RangeWeek:
		return window{start: now.AddDate(0, 0, -7), hasStart: true}, true
	case RangeMonth:
		return window{start: now.AddDate(0, -1, 0), hasStart: true}, true
	case RangeQuarter:
		return window{start: now.AddDate(0, -3, 0), hasStart: true}, true
	case RangeYear:
		return window{start: now.AddDate(-1, 0, 0), hasStart: true}, true
	case RangeCustom:
		var w window
		if t, ok := ParseDate(c.StartDate); ok {
			w.start = t
			w.hasStart = true
		}
		if t, ok := ParseDate(c.EndDate); ok {
			// End bound is inclusive of the named day.
			w.end = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location()).AddDate(0, 0, 1)
			w.hasEnd = true
		}
		if !w.hasStart && !w.hasEnd {
			return window{}, false
		}
		return w, true
	default:
		return window{}, false
	}
}

// matchesDate applies the window to a record's date field, honouring the
// criteria's policy for missing or unparsable dates.
func matchesDate(rec record.Record, w window, policy DatePolicy) bool {
	raw, ok := rec[record.FieldDate]
	if !ok {
		return policy == KeepUnparsedDates
	}
	t, ok := ParseDate(raw.Text())
	if !ok {
		return policy == KeepUnparsedDates
	}
	return w.contains(t)
}
