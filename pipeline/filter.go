package pipeline

import (
	"sort"
	"strings"
	"time"

	"github.com/MdEnamulHaque007/UPTOP-sub000/record"
)

// Apply runs the full chain against the wall clock: date window, status,
// supplier, search, then a stable sort. The input slice is not modified;
// the returned slice shares the input's record maps.
func Apply(records []record.Record, c Criteria) []record.Record {
	return ApplyAt(records, c, time.Now())
}

// ApplyAt is Apply with an explicit clock, for rolling date windows.
func ApplyAt(records []record.Record, c Criteria, now time.Time) []record.Record {
	w, dateActive := rangeWindow(c, now)
	needle := strings.ToLower(strings.TrimSpace(c.SearchTerm))

	out := make([]record.Record, 0, len(records))
	for _, rec := range records {
		if dateActive && !matchesDate(rec, w, c.DatePolicy) {
			continue
		}
		if !matchesCategory(rec, record.FieldStatus, c.Status) {
			continue
		}
		if !matchesCategory(rec, record.FieldSupplier, c.Supplier) {
			continue
		}
		if needle != "" && !matchesSearch(rec, needle) {
			continue
		}
		out = append(out, rec)
	}

	sortRecords(out, c.SortField, c.SortDirection)
	return out
}

// matchesCategory compares a field case-insensitively against a selected
// value. FilterAll and the empty string disable the filter; a record
// missing the field only matches when the filter is disabled.
func matchesCategory(rec record.Record, field, selected string) bool {
	if selected == "" || strings.EqualFold(selected, FilterAll) {
		return true
	}
	v, ok := rec[field]
	if !ok {
		return false
	}
	return strings.EqualFold(v.Text(), selected)
}

// matchesSearch reports whether any field value contains the needle,
// which must already be lower-cased.
func matchesSearch(rec record.Record, needle string) bool {
	for _, v := range rec {
		if strings.Contains(strings.ToLower(v.Text()), needle) {
			return true
		}
	}
	return false
}

// sortRecords stable-sorts in place. Records missing the sort field
// compare as the zero value, grouping them at one end rather than
// interleaving. An empty field name leaves the order untouched.
func sortRecords(records []record.Record, field string, dir SortDirection) {
	if field == "" {
		return
	}
	sort.SliceStable(records, func(i, j int) bool {
		cmp := record.Compare(records[i][field], records[j][field])
		if dir == SortDescending {
			return cmp > 0
		}
		return cmp < 0
	})
}

// Paginate returns the 1-based page'th window of pageSize records. A
// non-positive pageSize disables pagination and returns the whole slice.
// Pages past the end are empty, never an error.
func Paginate(records []record.Record, page, pageSize int) []record.Record {
	if pageSize <= 0 {
		return records
	}
	if page < 1 {
		page = 1
	}
	start := (page - 1) * pageSize
	if start >= len(records) {
		return []record.Record{}
	}
	end := start + pageSize
	if end > len(records) {
		end = len(records)
	}
	return records[start:end]
}

// Pages reports how many pages a result set spans. Zero records is one
// empty page so views always have something to render.
func Pages(total, pageSize int) int {
	if pageSize <= 0 || total <= 0 {
		return 1
	}
	return (total + pageSize - 1) / pageSize
}
