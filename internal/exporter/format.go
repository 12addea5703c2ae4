package exporter

import (
	"fmt"
	"math"
	"strconv"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// NotAvailable is shown in place of a KPI that has no data
const NotAvailable = "N/A"

var printer = message.NewPrinter(language.English)

// FormatMoney formats an amount for people: currency prefix, thousands separators, 2 decimals
func FormatMoney(currency string, d decimal.Decimal) string {
	amount := printer.Sprintf("%.2f", d.Round(2).InexactFloat64())
	if currency == "" {
		return amount
	}
	return currency + " " + amount
}

// FormatUnits formats a unit count with thousands separators
func FormatUnits(n int64) string {
	return printer.Sprintf("%d", n)
}

// FormatAverage formats a mean with 2 decimals; an undefined mean is shown as NaN
func FormatAverage(f float64) string {
	if math.IsNaN(f) {
		return "NaN"
	}
	return formatFloat(f)
}

// formatDecimal formats money for CSV output with exactly 2 decimal places and no grouping
func formatDecimal(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// formatFloat formats a float64 value for CSV output with exactly 2 decimal places
func formatFloat(f float64) string {
	return fmt.Sprintf("%.2f", f)
}

// formatInt formats an int64 value for CSV output
func formatInt(i int64) string {
	return strconv.FormatInt(i, 10)
}

// DisplayKey names an empty grouping key for human-readable output
func DisplayKey(k string) string {
	if k == "" {
		return "(missing)"
	}
	return k
}
