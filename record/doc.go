// Package record defines the canonical tabular record type shared by the
// data service, state store, and filter pipeline.
//
// A Record is a flat mapping from canonical field name to a scalar Value
// that is either a string or a number. A field that is absent from the map
// is absent from the record; empty strings are never stored. Every record
// in a dataset draws from the same candidate field set, but individual
// records may omit optional fields.
//
// Records are plain maps and therefore not safe for concurrent mutation.
// Callers that hand records across component boundaries should pass clones
// (see Record.Clone and CloneAll) and treat received records as immutable
// snapshots.
package record
