package coerce

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// toDecimal converts a scalar row value. ok is false for nil, for infinities
// and NaN, and for values that do not read as a number.
func toDecimal(v any) (decimal.Decimal, bool) {
	switch n := v.(type) {
	case nil:
		return decimal.Zero, false
	case int:
		return decimal.NewFromInt(int64(n)), true
	case int32:
		return decimal.NewFromInt32(n), true
	case int64:
		return decimal.NewFromInt(n), true
	case float32:
		if !finite(float64(n)) {
			return decimal.Zero, false
		}
		return decimal.NewFromFloat32(n), true
	case float64:
		if !finite(n) {
			return decimal.Zero, false
		}
		return decimal.NewFromFloat(n), true
	case bool:
		if n {
			return decimal.NewFromInt(1), true
		}
		return decimal.Zero, true
	case []byte:
		return parseDecimal(string(n))
	case string:
		return parseDecimal(n)
	default:
		return parseDecimal(fmt.Sprint(n))
	}
}

func finite(f float64) bool {
	return !math.IsInf(f, 0) && !math.IsNaN(f)
}

func parseDecimal(s string) (decimal.Decimal, bool) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

func toInt(v any) int {
	d, ok := toDecimal(v)
	if !ok {
		return 0
	}
	return clampInt(d)
}

var (
	maxInt = decimal.NewFromInt(math.MaxInt)
	minInt = decimal.NewFromInt(math.MinInt)
)

// clampInt truncates d and saturates it to the int range.
func clampInt(d decimal.Decimal) int {
	d = d.Truncate(0)
	switch {
	case d.GreaterThan(maxInt):
		return math.MaxInt
	case d.LessThan(minInt):
		return math.MinInt
	default:
		return int(d.IntPart())
	}
}

func toFloat(v any) float64 {
	d, ok := toDecimal(v)
	if !ok {
		return 0
	}
	return round2(d)
}

func round2(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

func toString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case []byte:
		return string(s)
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	default:
		return fmt.Sprint(s)
	}
}

// convert applies a declared field type. Unknown types keep the value,
// except infinities and NaN which become nil.
func convert(v any, typ string) any {
	switch typ {
	case "int", "integer":
		return toInt(v)
	case "float", "number", "decimal":
		return toFloat(v)
	case "str", "string":
		return toString(v)
	default:
		switch n := v.(type) {
		case []byte:
			return string(n)
		case float64:
			if !finite(n) {
				return nil
			}
		case float32:
			if !finite(float64(n)) {
				return nil
			}
		}
		return v
	}
}
