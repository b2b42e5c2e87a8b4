package exporter

import (
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// TimestampLayout is used for every timestamp written to an export
const TimestampLayout = "2006-01-02 15:04:05"

// formatFloat writes the shortest representation that round-trips
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// formatMoney always writes two decimals, so 13.4 appears as 13.40
func formatMoney(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// formatCell renders a table value for CSV; nil is an empty cell. Amounts
// are written with two decimals and workbooks keep the full value.
func formatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case float64:
		return formatFloat(x)
	case decimal.Decimal:
		return formatMoney(x)
	case time.Time:
		return formatTime(x)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

// Pointer fields become nil cells when unset.

func optFloat(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}

func optInt(i *int) any {
	if i == nil {
		return nil
	}
	return *i
}

func optString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func optTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}
