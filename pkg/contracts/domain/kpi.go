package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RankedRevenue is one entry of a revenue ranking
type RankedRevenue struct {
	Key     string          `json:"key"`
	Revenue decimal.Decimal `json:"revenue"`
}

// RankedUnits is one entry of a units ranking
type RankedUnits struct {
	Key   string `json:"key"`
	Units int64  `json:"units"`
}

// MonthlyRevenue is revenue for one calendar month
type MonthlyRevenue struct {
	Year      int             `json:"year"`
	Month     time.Month      `json:"month"`
	MonthName string          `json:"month_name"`
	Revenue   decimal.Decimal `json:"revenue"`
}

// Period returns the month formatted as YYYY-MM
func (m MonthlyRevenue) Period() string {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC).Format("2006-01")
}

// KPIResults holds every KPI computed from a cleaned dataset
type KPIResults struct {
	Orders          int              `json:"orders"`
	TotalRevenue    decimal.Decimal  `json:"total_revenue"`
	AverageUnits    float64          `json:"average_units"` // NaN when there are no orders
	RevenueByRegion []RankedRevenue  `json:"revenue_by_region"`
	RevenueByRep    []RankedRevenue  `json:"revenue_by_rep"`
	TopReps         []RankedRevenue  `json:"top_reps"`
	UnitsByProduct  []RankedUnits    `json:"units_by_product"`
	TopProducts     []RankedUnits    `json:"top_products"`
	RevenueByMonth  []MonthlyRevenue `json:"revenue_by_month"`
}

// BestPerformer returns the rank-1 sales rep
func (k *KPIResults) BestPerformer() (RankedRevenue, bool) {
	if len(k.RevenueByRep) == 0 {
		return RankedRevenue{}, false
	}
	return k.RevenueByRep[0], true
}

// TopProduct returns the product with the most units sold
func (k *KPIResults) TopProduct() (RankedUnits, bool) {
	if len(k.UnitsByProduct) == 0 {
		return RankedUnits{}, false
	}
	return k.UnitsByProduct[0], true
}
