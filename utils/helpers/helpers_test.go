package helpers

import (
	"math"
	"reflect"
	"testing"

	"moatmap/types"
)

func TestAsFloat_StringWithCommas(t *testing.T) {
	got, ok := AsFloat("1,234.56")
	if !ok || got != 1234.56 {
		t.Errorf("Expected 1234.56, got %v (ok=%v)", got, ok)
	}
}

func TestAsFloat_NonNumericString(t *testing.T) {
	if _, ok := AsFloat("abc"); ok {
		t.Errorf("Expected not ok for non-numeric string")
	}
}

func TestAsFloat_NaN(t *testing.T) {
	if _, ok := AsFloat(math.NaN()); ok {
		t.Errorf("Expected not ok for NaN")
	}
}

func TestExtractLineItem_FirstAliasWins(t *testing.T) {
	period := types.Period{"totalRevenue": 500.0, "revenue": 900.0}
	got := ExtractLineItem(period, "total_revenue", 0)
	if got != 500.0 {
		t.Errorf("Expected 500, got %v", got)
	}
}

func TestExtractLineItem_ZeroFallsThroughForBalanceConcepts(t *testing.T) {
	period := types.Period{"Total Revenue": 0.0, "Total Revenues": 500.0}
	got := ExtractLineItem(period, "total_revenue", 0)
	if got != 500.0 {
		t.Errorf("Expected fallback alias value 500, got %v", got)
	}
}

func TestExtractLineItem_ZeroIsLegitimateForMarginConcepts(t *testing.T) {
	period := types.Period{"grossProfit": 0.0, "Gross Profit": 700.0}
	got := ExtractLineItem(period, "gross_profit", -1)
	if got != 0.0 {
		t.Errorf("Expected literal zero, got %v", got)
	}
}

func TestExtractLineItem_AllZeroAliasesResolveToZero(t *testing.T) {
	period := types.Period{"totalDebt": 0.0, "longTermDebt": 0.0}
	got := ExtractLineItem(period, "total_debt", 42)
	if got != 0.0 {
		t.Errorf("Expected 0 when every alias is zero, got %v", got)
	}
}

func TestExtractLineItem_AbsentUsesDefault(t *testing.T) {
	got := ExtractLineItem(types.Period{}, "net_income", 7)
	if got != 7.0 {
		t.Errorf("Expected default 7, got %v", got)
	}
}

func TestSafeDiv(t *testing.T) {
	if got := SafeDiv(10, 4); got != 2.5 {
		t.Errorf("Expected 2.5, got %v", got)
	}
	if got := SafeDiv(10, 0); got != 0.0 {
		t.Errorf("Expected 0 for zero denominator, got %v", got)
	}
	if got := SafeDiv(10, -5); got != 0.0 {
		t.Errorf("Expected 0 for negative denominator, got %v", got)
	}
}

func TestCleanValue(t *testing.T) {
	if got := CleanValue(math.NaN()); got != 0.0 {
		t.Errorf("Expected 0 for NaN, got %v", got)
	}
	if got := CleanValue(math.Inf(1)); got != 0.0 {
		t.Errorf("Expected 0 for Inf, got %v", got)
	}
	if got := CleanValue(1.5); got != 1.5 {
		t.Errorf("Expected 1.5, got %v", got)
	}
}

func TestCAGR(t *testing.T) {
	series := []float64{1000, 1100, 1210, 1331, 1464.1}
	got := CAGR(series)
	if math.Abs(got-10) > 1e-9 {
		t.Errorf("Expected 10%% CAGR, got %v", got)
	}
}

func TestCAGR_ShortOrNonPositiveSeries(t *testing.T) {
	if got := CAGR([]float64{100, 121}); got != 0.0 {
		t.Errorf("Expected 0 for short series, got %v", got)
	}
	if got := CAGR([]float64{-5, 10, 20, 30}); got != 0.0 {
		t.Errorf("Expected 0 for negative start, got %v", got)
	}
}

func TestPercentileRanks_Ascending(t *testing.T) {
	got := PercentileRanks([]float64{80, 50, 10}, true)
	want := []float64{100, 50, 0}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestPercentileRanks_LowerIsBetter(t *testing.T) {
	got := PercentileRanks([]float64{1, 2, 3}, false)
	want := []float64{100, 50, 0}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestPercentileRanks_TiesGetAverageRank(t *testing.T) {
	got := PercentileRanks([]float64{5, 5, 10}, true)
	if got[0] != got[1] {
		t.Errorf("Tied values must share a percentile, got %v and %v", got[0], got[1])
	}
	if got[2] != 100 {
		t.Errorf("Expected 100 for the top value, got %v", got[2])
	}
	if got[0] != 25 {
		t.Errorf("Expected average-rank percentile 25 for the tie, got %v", got[0])
	}
}

func TestPercentileRanks_SingleMember(t *testing.T) {
	got := PercentileRanks([]float64{3.14}, true)
	if got[0] != 50 {
		t.Errorf("Expected 50 for a single-member group, got %v", got[0])
	}
}

func TestMinMaxScale(t *testing.T) {
	got := MinMaxScale([][]float64{{0, 10}, {5, 20}, {10, 30}})
	want := [][]float64{{0, 0}, {0.5, 0.5}, {1, 1}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestMinMaxScale_ConstantColumnCollapsesToZero(t *testing.T) {
	got := MinMaxScale([][]float64{{7, 1}, {7, 2}})
	if got[0][0] != 0 || got[1][0] != 0 {
		t.Errorf("Expected constant column to scale to 0, got %v", got)
	}
}

func TestCosineSimilarity(t *testing.T) {
	if got := CosineSimilarity([]float64{1, 2, 3}, []float64{1, 2, 3}); math.Abs(got-1) > 1e-12 {
		t.Errorf("Expected 1 for identical vectors, got %v", got)
	}
	if got := CosineSimilarity([]float64{1, 0}, []float64{0, 1}); got != 0.0 {
		t.Errorf("Expected 0 for orthogonal vectors, got %v", got)
	}
	if got := CosineSimilarity([]float64{0, 0}, []float64{1, 1}); got != 0.0 {
		t.Errorf("Expected 0 for a zero-norm vector, got %v", got)
	}
}

func TestPeriodLabel(t *testing.T) {
	if got := PeriodLabel(types.Period{"calendarYear": "2023"}); got != "2023" {
		t.Errorf("Expected 2023, got %v", got)
	}
	if got := PeriodLabel(types.Period{"date": "2022-09-30"}); got != "2022" {
		t.Errorf("Expected 2022, got %v", got)
	}
	if got := PeriodLabel(types.Period{}); got != "" {
		t.Errorf("Expected empty label, got %v", got)
	}
}

func TestSeriesRange(t *testing.T) {
	points := []types.HistoryPoint{{Value: 40}, {Value: 45}, {Value: 42}}
	if got := SeriesRange(points); got != 5.0 {
		t.Errorf("Expected 5, got %v", got)
	}
}

func TestGetEnv(t *testing.T) {
	t.Setenv("MOATMAP_TEST_KEY", "value")
	if got := GetEnv("MOATMAP_TEST_KEY", "fallback"); got != "value" {
		t.Errorf("Expected value, got %v", got)
	}
	if got := GetEnv("MOATMAP_TEST_MISSING", "fallback"); got != "fallback" {
		t.Errorf("Expected fallback, got %v", got)
	}
}
