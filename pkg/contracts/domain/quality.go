package domain

import "github.com/shopspring/decimal"

// MissingValue reports empty cells for one column
type MissingValue struct {
	Column  string  `json:"column"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

// DuplicateSummary reports full-row and Order_ID duplication, counted independently
type DuplicateSummary struct {
	Rows        int      `json:"rows"`
	OrderIDs    int      `json:"order_ids"`
	RepeatedIDs []string `json:"repeated_ids,omitempty"`
}

// RevenueMismatch is a row whose stored Revenue differs from Units_Sold x Unit_Price
type RevenueMismatch struct {
	Line      int             `json:"line"`
	OrderID   string          `json:"order_id"`
	UnitsSold int64           `json:"units_sold"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Stored    decimal.Decimal `json:"stored_revenue"`
	Computed  decimal.Decimal `json:"computed_revenue"`
}

// ConstraintViolation is a field value outside its declared domain, such as negative units
type ConstraintViolation struct {
	Line    int    `json:"line"`
	OrderID string `json:"order_id"`
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Value   string `json:"value"`
}

// QualityReport collects the advisory findings of the validation stage.
// Nothing in it is an error.
type QualityReport struct {
	Rows       int                   `json:"rows"`
	Missing    []MissingValue        `json:"missing"`
	Duplicates DuplicateSummary      `json:"duplicates"`
	Mismatches []RevenueMismatch     `json:"mismatches"`
	Violations []ConstraintViolation `json:"violations,omitempty"`

	// Uncomparable counts rows skipped by the consistency check because an operand was missing
	Uncomparable int `json:"uncomparable"`
}

// HasMissing reports whether any column has missing values
func (q *QualityReport) HasMissing() bool {
	return len(q.Missing) > 0
}

// MissingCells returns the total number of empty cells
func (q *QualityReport) MissingCells() int {
	total := 0
	for _, m := range q.Missing {
		total += m.Count
	}
	return total
}

// Consistent reports whether the revenue consistency check found no mismatches
func (q *QualityReport) Consistent() bool {
	return len(q.Mismatches) == 0
}
