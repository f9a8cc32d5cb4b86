package record

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Canonical field names used by the inventory dataset. Field names are
// produced by normalize.FieldName, so they are always lower-case with
// underscore-joined words.
const (
	FieldDate       = "date"
	FieldStatus     = "status"
	FieldSupplier   = "supplier"
	FieldQuantity   = "quantity"
	FieldUnitPrice  = "unit_price"
	FieldTotalValue = "total_value"
)

// Kind identifies the scalar type held by a Value.
type Kind int

const (
	// KindString is a trimmed, non-empty string value.
	KindString Kind = iota
	// KindNumber is a numeric value stored as float64.
	KindNumber
)

// Value is a tagged scalar: either a string or a number. The zero Value is
// an empty string, which canonical records never contain (empty normalizes
// to absence), so the zero Value can be used as a "missing" placeholder.
type Value struct {
	kind Kind
	str  string
	num  float64
}

// String creates a string Value.
func String(s string) Value {
	return Value{kind: KindString, str: s}
}

// Number creates a numeric Value.
func Number(f float64) Value {
	return Value{kind: KindNumber, num: f}
}

// Kind returns the scalar kind of the value.
func (v Value) Kind() Kind { return v.kind }

// IsNumber reports whether the value holds a number.
func (v Value) IsNumber() bool { return v.kind == KindNumber }

// Float returns the numeric value and whether the value is numeric.
func (v Value) Float() (float64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	return v.num, true
}

// Text returns the display form of the value. Numbers render without a
// type suffix and without trailing zeros ("20", "19.5").
func (v Value) Text() string {
	if v.kind == KindNumber {
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	}
	return v.str
}

// Compare orders two values: numbers numerically, strings case-insensitively,
// and mixed kinds by their text form. Returns -1, 0, or 1.
func Compare(a, b Value) int {
	if a.kind == KindNumber && b.kind == KindNumber {
		switch {
		case a.num < b.num:
			return -1
		case a.num > b.num:
			return 1
		default:
			return 0
		}
	}
	return strings.Compare(strings.ToLower(a.Text()), strings.ToLower(b.Text()))
}

// MarshalJSON encodes numbers as JSON numbers and strings as JSON strings,
// matching the wire shape of the remote source.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.kind == KindNumber {
		return json.Marshal(v.num)
	}
	return json.Marshal(v.str)
}

// UnmarshalJSON accepts JSON numbers and strings. Other JSON types are
// rejected; records only ever hold scalars.
func (v *Value) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(strings.NewReader(string(data)))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	switch t := raw.(type) {
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return err
		}
		*v = Number(f)
	case string:
		*v = String(t)
	default:
		return fmt.Errorf("record: value must be a string or number, got %T", raw)
	}
	return nil
}

// Record is a canonical row: canonical field name to scalar value.
type Record map[string]Value

// Text returns the display form of a field, or "" when absent.
func (r Record) Text(field string) string {
	v, ok := r[field]
	if !ok {
		return ""
	}
	return v.Text()
}

// Float returns the numeric value of a field and whether the field is
// present and numeric.
func (r Record) Float(field string) (float64, bool) {
	v, ok := r[field]
	if !ok {
		return 0, false
	}
	return v.Float()
}

// Has reports whether the field is present.
func (r Record) Has(field string) bool {
	_, ok := r[field]
	return ok
}

// Clone returns an independent copy of the record.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Equal reports whether two records contain the same fields and values.
func (r Record) Equal(other Record) bool {
	if len(r) != len(other) {
		return false
	}
	for k, v := range r {
		ov, ok := other[k]
		if !ok || ov != v {
			return false
		}
	}
	return true
}

// CloneAll deep-copies a slice of records.
func CloneAll(records []Record) []Record {
	if records == nil {
		return nil
	}
	out := make([]Record, len(records))
	for i, r := range records {
		out[i] = r.Clone()
	}
	return out
}
