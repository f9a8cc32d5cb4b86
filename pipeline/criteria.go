package pipeline

import (
	"github.com/MdEnamulHaque007/UPTOP-sub000/record"
)

// DateRange selects which time window the date filter applies.
type DateRange string

const (
	RangeAll     DateRange = "all"
	RangeToday   DateRange = "today"
	RangeWeek    DateRange = "week"
	RangeMonth   DateRange = "month"
	RangeQuarter DateRange = "quarter"
	RangeYear    DateRange = "year"
	RangeCustom  DateRange = "custom"
)

// SortDirection orders the sorted output.
type SortDirection string

const (
	SortAscending  SortDirection = "asc"
	SortDescending SortDirection = "desc"
)

// DatePolicy decides what happens to records whose date field is missing
// or cannot be parsed when a date window is active.
type DatePolicy int

const (
	// KeepUnparsedDates retains such records. Default.
	KeepUnparsedDates DatePolicy = iota
	// DropUnparsedDates excludes them from the filtered set.
	DropUnparsedDates
)

// FilterAll is the sentinel value that disables a categorical filter.
const FilterAll = "all"

// Criteria is the complete, serializable description of one view over a
// record set. The zero value filters nothing and sorts nothing; use
// NewCriteria for the conventional defaults.
type Criteria struct {
	DateRange DateRange `json:"dateRange"`
	// StartDate and EndDate bound a RangeCustom window, inclusive.
	// Either may be empty for an open-ended bound.
	StartDate string `json:"startDate,omitempty"`
	EndDate   string `json:"endDate,omitempty"`

	Status   string `json:"status"`
	Supplier string `json:"supplier"`

	// SearchTerm matches case-insensitively against every field value.
	SearchTerm string `json:"searchTerm,omitempty"`

	SortField     string        `json:"sortField"`
	SortDirection SortDirection `json:"sortDirection"`

	Page     int `json:"page"`
	PageSize int `json:"pageSize"`

	DatePolicy DatePolicy `json:"-"`
}

// NewCriteria returns the default view: all dates, all statuses, all
// suppliers, no search, newest first, first page of ten.
func NewCriteria() Criteria {
	return Criteria{
		DateRange:     RangeAll,
		Status:        FilterAll,
		Supplier:      FilterAll,
		SortField:     record.FieldDate,
		SortDirection: SortDescending,
		Page:          1,
		PageSize:      10,
	}
}

// The mutators below return a modified copy. Changing any filter or sort
// criterion snaps the view back to the first page; changing only the page
// or page size does not touch the filter settings.

func (c Criteria) WithDateRange(r DateRange, start, end string) Criteria {
	c.DateRange = r
	c.StartDate = start
	c.EndDate = end
	c.Page = 1
	return c
}

func (c Criteria) WithStatus(status string) Criteria {
	c.Status = status
	c.Page = 1
	return c
}

func (c Criteria) WithSupplier(supplier string) Criteria {
	c.Supplier = supplier
	c.Page = 1
	return c
}

func (c Criteria) WithSearch(term string) Criteria {
	c.SearchTerm = term
	c.Page = 1
	return c
}

func (c Criteria) WithSort(field string, dir SortDirection) Criteria {
	c.SortField = field
	c.SortDirection = dir
	c.Page = 1
	return c
}

func (c Criteria) WithPage(page int) Criteria {
	if page < 1 {
		page = 1
	}
	c.Page = page
	return c
}

func (c Criteria) WithPageSize(size int) Criteria {
	c.PageSize = size
	c.Page = 1
	return c
}
