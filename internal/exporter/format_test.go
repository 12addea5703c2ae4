package exporter

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		name     string
		currency string
		input    string
		expected string
	}{
		{name: "small amount", currency: "R", input: "44", expected: "R 44.00"},
		{name: "thousands separator", currency: "R", input: "1234.5", expected: "R 1,234.50"},
		{name: "millions", currency: "R", input: "1234567.891", expected: "R 1,234,567.89"},
		{name: "zero", currency: "R", input: "0", expected: "R 0.00"},
		{name: "no currency", currency: "", input: "10", expected: "10.00"},
		{name: "other currency", currency: "USD", input: "999.999", expected: "USD 1,000.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatMoney(tt.currency, decimal.RequireFromString(tt.input)))
		})
	}
}

func TestFormatAverage(t *testing.T) {
	assert.Equal(t, "6.00", FormatAverage(6))
	assert.Equal(t, "3.33", FormatAverage(10.0/3))
	assert.Equal(t, "NaN", FormatAverage(math.NaN()))
}

func TestFormatUnits(t *testing.T) {
	assert.Equal(t, "15", FormatUnits(15))
	assert.Equal(t, "12,345", FormatUnits(12345))
}

func TestCSVFormatting(t *testing.T) {
	assert.Equal(t, "34.00", formatDecimal(decimal.NewFromInt(34)))
	assert.Equal(t, "0.30", formatDecimal(decimal.RequireFromString("0.3")))
	assert.Equal(t, "13.40", formatFloat(13.4))
	assert.Equal(t, "-456", formatInt(-456))
	assert.Equal(t, "(missing)", DisplayKey(""))
	assert.Equal(t, "East", DisplayKey("East"))
}
