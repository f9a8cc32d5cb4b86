// Package normalize cleans raw rows from the remote source into canonical
// records.
//
// Normalization is pure and idempotent: field names are lower-cased with
// non-alphanumeric runs collapsed to underscores, values that look numeric
// (optionally carrying currency symbols or thousands separators) are coerced
// to numbers, everything else is trimmed to a string, and empty strings
// become absent fields. A derived total_value field is computed from
// quantity and unit_price when both are present and total_value is not.
//
// Row-level validation (required fields) is separate from cleaning so that
// the data service can drop invalid rows without aborting a whole fetch.
package normalize
