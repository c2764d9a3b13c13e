package services

import (
	"math"

	"moatmap/types"
	"moatmap/utils/constants"
	"moatmap/utils/helpers"
)

type MetricsServiceI interface {
	Compute(bundle *types.StatementBundle) map[string]float64
	History(bundle *types.StatementBundle) map[string][]types.HistoryPoint
}

type metricsService struct{}

var MetricsService MetricsServiceI = &metricsService{}

// Compute derives the fixed ratio set from the most recent period of each
// statement. Every denominator is guarded and every stored value is finite.
func (m *metricsService) Compute(bundle *types.StatementBundle) map[string]float64 {
	inc := latestPeriod(bundle.Income)
	bal := latestPeriod(bundle.Balance)
	cf := latestPeriod(bundle.CashFlow)

	revenue := helpers.ExtractLineItem(inc, "total_revenue", 0)
	grossProfit := helpers.ExtractLineItem(inc, "gross_profit", 0)
	netIncome := helpers.ExtractLineItem(inc, "net_income", 0)
	operatingIncome := helpers.ExtractLineItem(inc, "operating_income", 0)
	sga := helpers.ExtractLineItem(inc, "sga", 0)
	interest := helpers.ExtractLineItem(inc, "interest_expense", 0)

	equity := helpers.ExtractLineItem(bal, "stockholders_equity", 0)
	totalAssets := helpers.ExtractLineItem(bal, "total_assets", 0)
	totalDebt := helpers.ExtractLineItem(bal, "total_debt", 0)
	currentAssets := helpers.ExtractLineItem(bal, "current_assets", 0)
	currentLiabilities := helpers.ExtractLineItem(bal, "current_liabilities", 0)

	fcf := helpers.ExtractLineItem(cf, "free_cash_flow", bundle.Profile.FreeCashflow)
	capex := math.Abs(helpers.ExtractLineItem(cf, "capex", 0))

	metrics := map[string]float64{
		// Kept in raw form: the insolvency cap needs the sign of net
		// income even when revenue is zero and the margin is not
		// computable.
		"net_income":       helpers.CleanValue(netIncome),
		"gross_margin":     helpers.SafeDiv(grossProfit, revenue) * 100,
		"net_margin":       helpers.SafeDiv(netIncome, revenue) * 100,
		"operating_margin": helpers.SafeDiv(operatingIncome, revenue) * 100,
		"sga_ratio":        helpers.SafeDiv(sga, grossProfit) * 100,
		"roe":              helpers.SafeDiv(netIncome, equity) * 100,
		"roa":              helpers.SafeDiv(netIncome, totalAssets) * 100,
		"roic":             helpers.SafeDiv(operatingIncome, equity+totalDebt) * 100,
		"debt_to_equity":   helpers.SafeDiv(totalDebt, equity),
		"current_ratio":    helpers.SafeDiv(currentAssets, currentLiabilities),
		"fcf_margin":       helpers.SafeDiv(fcf, revenue) * 100,
		"capex_ratio":      helpers.SafeDiv(capex, revenue) * 100,
		"pe_ratio":         bundle.Profile.TrailingPE,
		"price_to_book":    bundle.Profile.PriceToBook,
	}

	// Absence of interest expense means no debt service burden, not
	// zero coverage, so it defaults to a large safe constant.
	if interest == 0 {
		metrics["interest_coverage"] = constants.SafeInterestCoverage
	} else {
		metrics["interest_coverage"] = helpers.CleanValue(operatingIncome / math.Abs(interest))
	}

	metrics["revenue_cagr"] = helpers.CAGR(conceptSeries(bundle.Income, "total_revenue"))

	for k, v := range metrics {
		metrics[k] = helpers.Round(helpers.CleanValue(v), 4)
	}
	return metrics
}

// History builds the per-year ratio series for the tracked metrics, oldest
// first. Periods whose denominator is zero or negative are skipped, so a
// series may be shorter than the statement window or empty.
func (m *metricsService) History(bundle *types.StatementBundle) map[string][]types.HistoryPoint {
	history := make(map[string][]types.HistoryPoint, len(constants.HistoryMetrics))
	for _, hm := range constants.HistoryMetrics {
		numPeriods := statementPeriods(bundle, constants.ConceptStatement[hm.Numerator])
		denPeriods := statementPeriods(bundle, constants.ConceptStatement[hm.Denominator])

		years := len(numPeriods)
		if len(denPeriods) < years {
			years = len(denPeriods)
		}
		if years > constants.MaxHistoryYears {
			years = constants.MaxHistoryYears
		}

		points := make([]types.HistoryPoint, 0, years)
		// Statements arrive newest-first; walk backwards for
		// chronological order.
		for i := years - 1; i >= 0; i-- {
			den := helpers.ExtractLineItem(denPeriods[i], hm.Denominator, 0)
			if den <= 0 {
				continue
			}
			num := helpers.ExtractLineItem(numPeriods[i], hm.Numerator, 0)
			points = append(points, types.HistoryPoint{
				Period: helpers.PeriodLabel(numPeriods[i]),
				Value:  helpers.Round(helpers.SafeDiv(num, den)*hm.Scale, 2),
			})
		}
		history[hm.Name] = points
	}
	return history
}

func latestPeriod(periods []types.Period) types.Period {
	if len(periods) == 0 {
		return types.Period{}
	}
	return periods[0]
}

func statementPeriods(bundle *types.StatementBundle, statement string) []types.Period {
	switch statement {
	case constants.StatementBalance:
		return bundle.Balance
	case constants.StatementCashFlow:
		return bundle.CashFlow
	default:
		return bundle.Income
	}
}

// conceptSeries extracts one concept across the most recent periods,
// reversed to oldest-first for growth math.
func conceptSeries(periods []types.Period, concept string) []float64 {
	years := len(periods)
	if years > constants.MaxHistoryYears {
		years = constants.MaxHistoryYears
	}
	series := make([]float64, 0, years)
	for i := years - 1; i >= 0; i-- {
		series = append(series, helpers.ExtractLineItem(periods[i], concept, 0))
	}
	return series
}
