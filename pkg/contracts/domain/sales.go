package domain

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Column is the name of one expected column of the sales dataset
type Column string

// Expected sales dataset columns
const (
	ColOrderID   Column = "Order_ID"
	ColOrderDate Column = "Order_Date"
	ColRegion    Column = "Region"
	ColSalesRep  Column = "Sales_Rep"
	ColProduct   Column = "Product"
	ColUnitsSold Column = "Units_Sold"
	ColUnitPrice Column = "Unit_Price"
	ColRevenue   Column = "Revenue"
)

// Schema lists the expected columns in canonical order.
// Every stage reads record fields through this schema.
var Schema = []Column{
	ColOrderID,
	ColOrderDate,
	ColRegion,
	ColSalesRep,
	ColProduct,
	ColUnitsSold,
	ColUnitPrice,
	ColRevenue,
}

// IsNumeric reports whether the column holds numeric values
func (c Column) IsNumeric() bool {
	switch c {
	case ColUnitsSold, ColUnitPrice, ColRevenue:
		return true
	}
	return false
}

// IsCategorical reports whether the column holds category labels
func (c Column) IsCategorical() bool {
	switch c {
	case ColRegion, ColSalesRep, ColProduct:
		return true
	}
	return false
}

// SchemaBinding maps schema columns and extra columns to their positions in a header row
type SchemaBinding struct {
	Positions map[Column]int
	Extras    []ExtraColumn
}

// ExtraColumn is a non-schema column found in the input header
type ExtraColumn struct {
	Name  string
	Index int
}

// ResolveSchema binds a header row to the schema. It returns the columns
// that are absent from the header, in schema order.
func ResolveSchema(header []string) (SchemaBinding, []Column) {
	binding := SchemaBinding{Positions: make(map[Column]int, len(Schema))}
	known := make(map[string]Column, len(Schema))
	for _, col := range Schema {
		known[string(col)] = col
	}

	for i, raw := range header {
		name := strings.TrimSpace(raw)
		if col, ok := known[name]; ok {
			if _, dup := binding.Positions[col]; !dup {
				binding.Positions[col] = i
				continue
			}
		}
		binding.Extras = append(binding.Extras, ExtraColumn{Name: name, Index: i})
	}

	var missing []Column
	for _, col := range Schema {
		if _, ok := binding.Positions[col]; !ok {
			missing = append(missing, col)
		}
	}
	return binding, missing
}

// NullInt is an integer that may be absent
type NullInt struct {
	Int64 int64
	Valid bool
}

// NewNullInt returns a present NullInt
func NewNullInt(v int64) NullInt {
	return NullInt{Int64: v, Valid: true}
}

// Record is one order line of the sales dataset.
// Empty cells are represented as invalid Null values or empty strings.
type Record struct {
	Line         int                 `json:"line"`
	OrderID      string              `json:"order_id"`
	OrderDateRaw string              `json:"order_date_raw"`
	OrderDate    time.Time           `json:"order_date"`
	Region       string              `json:"region"`
	SalesRep     string              `json:"sales_rep"`
	Product      string              `json:"product"`
	UnitsSold    NullInt             `json:"units_sold" validate:"omitempty,gte=0"`
	UnitPrice    decimal.NullDecimal `json:"unit_price" validate:"omitempty,gte=0"`
	Revenue      decimal.NullDecimal `json:"revenue"`
	Extra        map[string]string   `json:"extra,omitempty"`

	// RevenueMismatch is set by cleaning when Revenue differs from Units_Sold x Unit_Price
	RevenueMismatch bool `json:"revenue_mismatch,omitempty"`
}

// Value returns the display value of a schema column and whether it is present
func (r *Record) Value(col Column) (string, bool) {
	switch col {
	case ColOrderID:
		return r.OrderID, r.OrderID != ""
	case ColOrderDate:
		if !r.OrderDate.IsZero() {
			if hasClock(r.OrderDate) {
				return r.OrderDate.Format(DateTimeLayout), true
			}
			return r.OrderDate.Format(DateLayout), true
		}
		return r.OrderDateRaw, r.OrderDateRaw != ""
	case ColRegion:
		return r.Region, r.Region != ""
	case ColSalesRep:
		return r.SalesRep, r.SalesRep != ""
	case ColProduct:
		return r.Product, r.Product != ""
	case ColUnitsSold:
		if !r.UnitsSold.Valid {
			return "", false
		}
		return strconv.FormatInt(r.UnitsSold.Int64, 10), true
	case ColUnitPrice:
		if !r.UnitPrice.Valid {
			return "", false
		}
		return r.UnitPrice.Decimal.String(), true
	case ColRevenue:
		if !r.Revenue.Valid {
			return "", false
		}
		return r.Revenue.Decimal.String(), true
	}
	return "", false
}

// Layouts used to display a parsed Order_Date
const (
	DateLayout     = "2006-01-02"
	DateTimeLayout = "2006-01-02 15:04:05.999999999"
)

func hasClock(t time.Time) bool {
	return t.Hour() != 0 || t.Minute() != 0 || t.Second() != 0 || t.Nanosecond() != 0
}

// HasMissing reports whether any schema field of the record is empty
func (r *Record) HasMissing() bool {
	for _, col := range Schema {
		if _, ok := r.Value(col); !ok {
			return true
		}
	}
	return false
}

// ComputedRevenue returns Units_Sold x Unit_Price, or false when either operand is missing
func (r *Record) ComputedRevenue() (decimal.Decimal, bool) {
	if !r.UnitsSold.Valid || !r.UnitPrice.Valid {
		return decimal.Zero, false
	}
	return r.UnitPrice.Decimal.Mul(decimal.NewFromInt(r.UnitsSold.Int64)), true
}

// Key returns a value-based identity of the full row, covering schema and extra columns.
// Numeric values are normalised so that 2.0 and 2.00 compare equal.
// A parsed Order_Date takes part at full precision, time of day and zone included.
func (r *Record) Key(extras []string) string {
	var b strings.Builder
	for _, col := range Schema {
		v, ok := r.Value(col)
		if col == ColOrderDate && !r.OrderDate.IsZero() {
			v = r.OrderDate.Format(time.RFC3339Nano)
		}
		if !ok {
			b.WriteString("\x00")
		} else {
			b.WriteString(v)
		}
		b.WriteByte('\x1f')
	}
	for _, name := range extras {
		b.WriteString(r.Extra[name])
		b.WriteByte('\x1f')
	}
	return b.String()
}

// Clone returns a deep copy of the record
func (r Record) Clone() Record {
	if r.Extra != nil {
		extra := make(map[string]string, len(r.Extra))
		for k, v := range r.Extra {
			extra[k] = v
		}
		r.Extra = extra
	}
	return r
}

// Dataset is the ordered collection of records at one pipeline stage
type Dataset struct {
	Source  string   `json:"source"`
	Columns []string `json:"columns"`
	Records []Record `json:"records"`
}

// Shape returns the row and column counts
func (d *Dataset) Shape() (int, int) {
	return len(d.Records), len(d.Columns)
}

// Len returns the number of records
func (d *Dataset) Len() int {
	return len(d.Records)
}

// HasColumn reports whether the dataset carries the named column
func (d *Dataset) HasColumn(name string) bool {
	for _, c := range d.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// ExtraColumns returns the non-schema columns in header order
func (d *Dataset) ExtraColumns() []string {
	known := make(map[string]bool, len(Schema))
	for _, col := range Schema {
		known[string(col)] = true
	}
	var extras []string
	for _, c := range d.Columns {
		if !known[c] {
			extras = append(extras, c)
		}
	}
	return extras
}

// Clone returns a deep copy so later stages never mutate an earlier stage's dataset
func (d *Dataset) Clone() *Dataset {
	out := &Dataset{
		Source:  d.Source,
		Columns: append([]string(nil), d.Columns...),
		Records: make([]Record, len(d.Records)),
	}
	for i, rec := range d.Records {
		out.Records[i] = rec.Clone()
	}
	return out
}
