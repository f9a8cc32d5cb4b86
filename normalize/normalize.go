package normalize

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/MdEnamulHaque007/UPTOP-sub000/record"
)

// currencyRunes are stripped before numeric detection. Thousands separators
// (commas) and surrounding whitespace are stripped as well.
var currencyRunes = map[rune]bool{
	'$': true,
	'€': true,
	'£': true,
	'¥': true,
}

// FieldName canonicalizes a raw column header: lower-case, non-alphanumeric
// runs collapsed to a single underscore, leading/trailing underscores
// trimmed. Applying FieldName to its own output is a no-op.
func FieldName(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	pendingSep := false
	for _, r := range strings.ToLower(strings.TrimSpace(raw)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
			continue
		}
		pendingSep = true
	}
	return b.String()
}

// CoerceValue converts one raw cell into a canonical Value. The second
// return is false when the cell normalizes to absence (nil, empty, or
// whitespace-only strings).
func CoerceValue(raw any) (record.Value, bool) {
	switch t := raw.(type) {
	case nil:
		return record.Value{}, false
	case float64:
		return finite(t), true
	case float32:
		return finite(float64(t)), true
	case int:
		return record.Number(float64(t)), true
	case int64:
		return record.Number(float64(t)), true
	case bool:
		// The sheet API renders booleans as TRUE/FALSE strings.
		if t {
			return record.String("true"), true
		}
		return record.String("false"), true
	case json.Number:
		if f, err := t.Float64(); err == nil {
			return record.Number(f), true
		}
		return coerceString(t.String())
	case string:
		return coerceString(t)
	default:
		return coerceString(fmt.Sprintf("%v", t))
	}
}

// finite wraps a float as a Number, falling back to its text form for
// the non-finite values JSON cannot carry.
func finite(f float64) record.Value {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return record.String(strconv.FormatFloat(f, 'g', -1, 64))
	}
	return record.Number(f)
}

func coerceString(raw string) (record.Value, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return record.Value{}, false
	}
	if f, ok := parseNumeric(trimmed); ok {
		return record.Number(f), true
	}
	return record.String(trimmed), true
}

// parseNumeric detects number-like strings, tolerating a leading currency
// symbol and comma thousands separators ("$1,234.50" → 1234.5).
// ParseFloat also accepts "inf" and "nan" spellings; those are not
// numbers a record can carry (they poison derived totals and have no
// JSON encoding), so they stay strings.
func parseNumeric(s string) (float64, bool) {
	cleaned := strings.Map(func(r rune) rune {
		if currencyRunes[r] || r == ',' || r == ' ' {
			return -1
		}
		return r
	}, s)
	if cleaned == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// Row cleans one raw row into a canonical record, deriving total_value when
// absent and both quantity and unit_price are present. Normalizing an
// already-normalized row yields an identical record.
func Row(raw map[string]any) record.Record {
	rec := make(record.Record, len(raw))
	for k, v := range raw {
		name := FieldName(k)
		if name == "" {
			continue
		}
		val, ok := CoerceValue(v)
		if !ok {
			continue
		}
		rec[name] = val
	}
	deriveTotalValue(rec)
	return rec
}

// Canonical re-normalizes an existing record. Used to verify idempotence
// and to clean records arriving from the durable cache.
func Canonical(rec record.Record) record.Record {
	raw := make(map[string]any, len(rec))
	for k, v := range rec {
		if f, ok := v.Float(); ok {
			raw[k] = f
		} else {
			raw[k] = v.Text()
		}
	}
	return Row(raw)
}

func deriveTotalValue(rec record.Record) {
	if rec.Has(record.FieldTotalValue) {
		return
	}
	qty, okQ := rec.Float(record.FieldQuantity)
	price, okP := rec.Float(record.FieldUnitPrice)
	if okQ && okP {
		rec[record.FieldTotalValue] = record.Number(qty * price)
	}
}

// Validate checks that every required field is present on the record. The
// returned error names the missing fields; callers treat it as a per-row
// condition, never fatal to a batch.
func Validate(rec record.Record, required []string) error {
	var missing []string
	for _, field := range required {
		if !rec.Has(field) {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required fields: %s", strings.Join(missing, ", "))
	}
	return nil
}
