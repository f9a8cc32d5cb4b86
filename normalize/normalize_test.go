package normalize

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MdEnamulHaque007/UPTOP-sub000/record"
)

func TestFieldName(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"Unit Price", "unit_price"},
		{"unit_price", "unit_price"},
		{"  Total Value ($)  ", "total_value"},
		{"Supplier/Vendor Name", "supplier_vendor_name"},
		{"QTY", "qty"},
		{"Item #", "item"},
		{"--status--", "status"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got := FieldName(tt.raw)
			assert.Equal(t, tt.want, got)
			// Canonicalization must be stable under repeated application.
			assert.Equal(t, got, FieldName(got))
		})
	}
}

func TestCoerceValue(t *testing.T) {
	tests := []struct {
		name    string
		raw     any
		want    record.Value
		present bool
	}{
		{"plain number string", "42", record.Number(42), true},
		{"decimal", "19.50", record.Number(19.5), true},
		{"currency symbol", "$1,234.50", record.Number(1234.5), true},
		{"euro", "€99", record.Number(99), true},
		{"negative", "-5", record.Number(-5), true},
		{"json float", 7.0, record.Number(7), true},
		{"text", "  Acme Corp  ", record.String("Acme Corp"), true},
		{"sku keeps string", "AB-1234", record.String("AB-1234"), true},
		{"empty string absent", "", record.Value{}, false},
		{"whitespace absent", "   ", record.Value{}, false},
		{"nil absent", nil, record.Value{}, false},
		// ParseFloat spells out infinities and NaN; a cell holding one
		// of those is text, not a usable number.
		{"inf stays string", "inf", record.String("inf"), true},
		{"infinity stays string", "Infinity", record.String("Infinity"), true},
		{"negative inf stays string", "-Inf", record.String("-Inf"), true},
		{"nan stays string", "NaN", record.String("NaN"), true},
		{"overflow stays string", "1e999", record.String("1e999"), true},
		{"non-finite float stays string", math.Inf(1), record.String("+Inf"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, present := CoerceValue(tt.raw)
			assert.Equal(t, tt.present, present)
			if tt.present {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestRowDerivedTotalValue(t *testing.T) {
	rec := Row(map[string]any{
		"Date":       "2024-01-05",
		"Quantity":   "2",
		"Unit Price": "$10",
	})

	total, ok := rec.Float(record.FieldTotalValue)
	require.True(t, ok)
	assert.Equal(t, 20.0, total)
}

func TestRowKeepsExplicitTotalValue(t *testing.T) {
	rec := Row(map[string]any{
		"Quantity":    "2",
		"Unit Price":  "10",
		"Total Value": "55", // explicit value wins over the derived product
	})
	total, _ := rec.Float(record.FieldTotalValue)
	assert.Equal(t, 55.0, total)
}

func TestRowNoDerivationWithoutOperands(t *testing.T) {
	rec := Row(map[string]any{"Quantity": "2"})
	assert.False(t, rec.Has(record.FieldTotalValue))
}

func TestRowNonFiniteQuantityNoDerivedTotal(t *testing.T) {
	rec := Row(map[string]any{
		"Quantity":   "inf",
		"Unit Price": "10",
	})

	assert.False(t, rec.Has(record.FieldTotalValue))
	_, ok := rec.Float(record.FieldQuantity)
	assert.False(t, ok, "non-finite quantity must not coerce to a number")
}

func TestNormalizationIdempotence(t *testing.T) {
	rec := Row(map[string]any{
		"Date":       "2024-01-05",
		"Status":     " Pending ",
		"Supplier":   "Acme",
		"Quantity":   "3",
		"Unit Price": "$2,500.00",
	})

	again := Canonical(rec)
	assert.True(t, rec.Equal(again), "expected %v, got %v", rec, again)
}

func TestValidate(t *testing.T) {
	rec := record.Record{
		record.FieldDate:   record.String("2024-01-05"),
		record.FieldStatus: record.String("pending"),
	}

	assert.NoError(t, Validate(rec, []string{record.FieldDate, record.FieldStatus}))

	err := Validate(rec, []string{record.FieldDate, record.FieldSupplier, record.FieldQuantity})
	require.Error(t, err)
	assert.Contains(t, err.Error(), record.FieldSupplier)
	assert.Contains(t, err.Error(), record.FieldQuantity)
}
