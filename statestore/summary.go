package statestore

import (
	"github.com/MdEnamulHaque007/UPTOP-sub000/record"
)

// Summary field names written by RecomputeSummary.
const (
	SummaryCount         = "count"
	SummaryTotalQuantity = "total_quantity"
	SummaryTotalValue    = "total_value"
	SummaryAverageValue  = "average_value"
)

// RecomputeSummary aggregates the records at filteredPath and writes the
// figures to summaryPath. This is a pull-based recomputation: the filter
// pipeline calls it after rewriting the filtered slice, nothing happens
// automatically. The write notifies subscribers of summaryPath as usual.
func (s *Store) RecomputeSummary(filteredPath, summaryPath string) {
	records, _ := s.Get(filteredPath).([]record.Record)

	var totalQuantity, totalValue float64
	for _, rec := range records {
		if q, ok := rec.Float(record.FieldQuantity); ok {
			totalQuantity += q
		}
		if v, ok := rec.Float(record.FieldTotalValue); ok {
			totalValue += v
		}
	}

	average := 0.0
	if len(records) > 0 {
		average = totalValue / float64(len(records))
	}

	s.Set(summaryPath, map[string]any{
		SummaryCount:         len(records),
		SummaryTotalQuantity: totalQuantity,
		SummaryTotalValue:    totalValue,
		SummaryAverageValue:  average,
	})
}
