package dataprocessing

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salespulse/pkg/contracts/domain"
)

func aggregate(t *testing.T, content string) *domain.KPIResults {
	t.Helper()
	cleaned, _ := clean(t, loadCSV(t, content), DefaultCleanOptions())
	return NewAnalyzer(nil, AnalyzerOptions{}).Aggregate(context.Background(), cleaned)
}

func revenueMap(ranked []domain.RankedRevenue) map[string]string {
	out := make(map[string]string, len(ranked))
	for _, r := range ranked {
		out[r.Key] = r.Revenue.StringFixed(2)
	}
	return out
}

func TestAnalyzer_Aggregate_ThreeRowExample(t *testing.T) {
	kpis := aggregate(t, threeRowCSV)

	assert.Equal(t, 3, kpis.Orders)
	assert.Equal(t, "44.00", kpis.TotalRevenue.StringFixed(2), "stored revenue is summed, not recomputed")
	assert.InDelta(t, 6.0, kpis.AverageUnits, 1e-9)

	require.Len(t, kpis.RevenueByRegion, 2)
	assert.Equal(t, "East", kpis.RevenueByRegion[0].Key)
	assert.Equal(t, map[string]string{"East": "34.00", "West": "10.00"}, revenueMap(kpis.RevenueByRegion))

	best, ok := kpis.BestPerformer()
	require.True(t, ok)
	assert.Equal(t, "Alice", best.Key)
	assert.Equal(t, "34.00", best.Revenue.StringFixed(2))

	assert.Equal(t, []domain.RankedUnits{{Key: "Pen", Units: 15}, {Key: "Book", Units: 3}}, kpis.UnitsByProduct)
	assert.Equal(t, kpis.UnitsByProduct, kpis.TopProducts)

	require.Len(t, kpis.RevenueByMonth, 1)
	assert.Equal(t, "2024-01", kpis.RevenueByMonth[0].Period())
	assert.Equal(t, "January", kpis.RevenueByMonth[0].MonthName)
	assert.Equal(t, "44.00", kpis.RevenueByMonth[0].Revenue.StringFixed(2))
}

func TestAnalyzer_Aggregate_Empty(t *testing.T) {
	kpis := aggregate(t, header)

	assert.Zero(t, kpis.Orders)
	assert.True(t, kpis.TotalRevenue.IsZero())
	assert.True(t, math.IsNaN(kpis.AverageUnits))
	assert.Empty(t, kpis.RevenueByRegion)
	assert.Empty(t, kpis.RevenueByRep)
	assert.Empty(t, kpis.TopReps)
	assert.Empty(t, kpis.UnitsByProduct)
	assert.Empty(t, kpis.TopProducts)
	assert.Empty(t, kpis.RevenueByMonth)

	_, ok := kpis.BestPerformer()
	assert.False(t, ok)
	_, ok = kpis.TopProduct()
	assert.False(t, ok)
}

func TestAnalyzer_Aggregate_TiesKeepFirstSeenOrder(t *testing.T) {
	kpis := aggregate(t, header+
		"O1,2024-01-01,North,Cara,Ink,4,1.00,4.00\n"+
		"O2,2024-01-02,South,Abe,Pad,4,1.00,4.00\n"+
		"O3,2024-01-03,East,Bea,Pen,9,1.00,9.00\n"+
		"O4,2024-01-04,West,Dan,Cap,4,1.00,4.00\n")

	regions := make([]string, len(kpis.RevenueByRegion))
	for i, r := range kpis.RevenueByRegion {
		regions[i] = r.Key
	}
	assert.Equal(t, []string{"East", "North", "South", "West"}, regions)

	products := make([]string, len(kpis.UnitsByProduct))
	for i, p := range kpis.UnitsByProduct {
		products[i] = p.Key
	}
	assert.Equal(t, []string{"Pen", "Ink", "Pad", "Cap"}, products)
	assert.Len(t, kpis.TopProducts, 3)
	assert.Equal(t, []string{"Pen", "Ink", "Pad"}, []string{kpis.TopProducts[0].Key, kpis.TopProducts[1].Key, kpis.TopProducts[2].Key})
}

func TestAnalyzer_Aggregate_PartitionAndLimits(t *testing.T) {
	kpis := NewAnalyzer(nil, AnalyzerOptions{TopReps: 2, TopProducts: 1}).Aggregate(context.Background(),
		mustClean(t, header+
			"O1,2024-01-15,East,Ann,Pen,3,0.10,0.30\n"+
			"O2,2024-03-01,West,Ben,Ink,7,0.20,1.40\n"+
			"O3,2024-02-10,East,Cid,Pen,1,0.10,0.10\n"+
			"O4,2023-12-31,South,Ann,Pad,2,1.25,2.50\n"+
			"O5,2024-03-09,West,Dee,Pad,1,0.05,0.05\n"))

	regionTotal := decimal.Zero
	for _, r := range kpis.RevenueByRegion {
		regionTotal = regionTotal.Add(r.Revenue)
	}
	assert.True(t, regionTotal.Equal(kpis.TotalRevenue), "regions partition the total exactly")

	repTotal := decimal.Zero
	for _, r := range kpis.RevenueByRep {
		repTotal = repTotal.Add(r.Revenue)
	}
	assert.True(t, repTotal.Equal(kpis.TotalRevenue))

	var units int64
	for _, p := range kpis.UnitsByProduct {
		units += p.Units
	}
	assert.Equal(t, int64(14), units)

	require.Len(t, kpis.TopReps, 2)
	assert.Equal(t, "Ann", kpis.TopReps[0].Key)
	assert.Equal(t, "2.80", kpis.TopReps[0].Revenue.StringFixed(2))
	assert.Equal(t, "Ben", kpis.TopReps[1].Key)
	require.Len(t, kpis.TopProducts, 1)
	assert.Equal(t, "Ink", kpis.TopProducts[0].Key)

	periods := make([]string, len(kpis.RevenueByMonth))
	for i, m := range kpis.RevenueByMonth {
		periods[i] = m.Period()
	}
	assert.Equal(t, []string{"2023-12", "2024-01", "2024-02", "2024-03"}, periods)
	assert.Equal(t, "1.45", kpis.RevenueByMonth[3].Revenue.StringFixed(2))
	assert.Equal(t, time.March, kpis.RevenueByMonth[3].Month)
}

func mustClean(t *testing.T, content string) *domain.Dataset {
	t.Helper()
	out, _ := clean(t, loadCSV(t, content), DefaultCleanOptions())
	return out
}

func TestAnalyzer_TotalVersusComputedRevenue(t *testing.T) {
	tests := []struct {
		name       string
		content    string
		mismatches int
		equal      bool
	}{
		{"consistent", header +
			"O1,2024-01-01,East,Alice,Pen,10,2.00,20.00\n" +
			"O2,2024-01-02,West,Bob,Pen,5,2.00,10.00\n" +
			"O3,2024-01-02,East,Alice,Book,3,5.00,15.00\n", 0, true},
		{"one mismatch", threeRowCSV, 1, false},
		// row differences may cancel in the total
		{"offsetting mismatches", header +
			"O1,2024-01-01,East,Alice,Pen,10,2.00,21.00\n" +
			"O2,2024-01-02,West,Bob,Pen,5,2.00,9.00\n", 2, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds := loadCSV(t, tt.content)
			mismatches, _ := RevenueMismatches(ds)
			require.Len(t, mismatches, tt.mismatches)

			computed := decimal.Zero
			for i := range ds.Records {
				c, ok := ds.Records[i].ComputedRevenue()
				require.True(t, ok)
				computed = computed.Add(c)
			}
			kpis := NewAnalyzer(nil, AnalyzerOptions{}).Aggregate(context.Background(), ds)

			assert.Equal(t, tt.equal, kpis.TotalRevenue.Equal(computed))
		})
	}
}
