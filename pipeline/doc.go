// Package pipeline transforms raw records into the projection a view
// renders: filter by date range, status, supplier, and search term, then
// stable-sort, in that fixed order. Pagination is a separate windowing
// step so a page-size change never re-runs the filter chain.
//
// Apply is pure: it never mutates its input and returns records from the
// input slice, which callers must treat as immutable snapshots.
//
// Records whose date field is missing or unparsable are retained by
// default (KeepUnparsedDates): hiding malformed-but-present data behind a
// date filter was judged worse than showing it. The policy is explicit on
// the criteria so callers that prefer dropping can say so.
package pipeline
