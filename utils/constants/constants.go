package constants

// Statement identifiers used by the accessor and the history builder.
const (
	StatementIncome   = "income"
	StatementBalance  = "balance"
	StatementCashFlow = "cashflow"
)

// ConceptAliases maps a canonical financial concept to the ordered list of
// vendor field names that may carry it. The first present numeric value wins;
// see helpers.ExtractLineItem for the exact-zero fallback rule.
var ConceptAliases = map[string][]string{
	"total_revenue":       {"totalRevenue", "revenue", "Total Revenue", "Total Revenues"},
	"gross_profit":        {"grossProfit", "Gross Profit"},
	"net_income":          {"netIncome", "Net Income"},
	"operating_income":    {"operatingIncome", "Operating Income"},
	"sga":                 {"sellingGeneralAndAdministrativeExpenses", "Selling General Administrative", "Selling And Marketing Expenses"},
	"interest_expense":    {"interestExpense", "Interest Expense"},
	"stockholders_equity": {"totalStockholdersEquity", "Stockholders Equity", "Total Stockholder Equity"},
	"total_assets":        {"totalAssets", "Total Assets"},
	"total_debt":          {"totalDebt", "Total Debt", "longTermDebt", "Long Term Debt"},
	"current_assets":      {"totalCurrentAssets", "Current Assets"},
	"current_liabilities": {"totalCurrentLiabilities", "Current Liabilities"},
	"free_cash_flow":      {"freeCashFlow", "Free Cash Flow"},
	"capex":               {"capitalExpenditure", "Capital Expenditure", "Capital Expenditures"},
	"operating_cash_flow": {"operatingCashFlow", "netCashProvidedByOperatingActivities", "Operating Cash Flow"},
}

// ZeroFallbackConcepts lists the concepts for which an exact-zero value is
// treated as "probably missing" and the next alias is tried. Margins and
// rates are excluded on purpose: zero is a legitimate value there.
var ZeroFallbackConcepts = map[string]bool{
	"total_revenue":       true,
	"stockholders_equity": true,
	"total_debt":          true,
}

// ConceptStatement says which statement a concept is read from.
var ConceptStatement = map[string]string{
	"total_revenue":       StatementIncome,
	"gross_profit":        StatementIncome,
	"net_income":          StatementIncome,
	"operating_income":    StatementIncome,
	"sga":                 StatementIncome,
	"interest_expense":    StatementIncome,
	"stockholders_equity": StatementBalance,
	"total_assets":        StatementBalance,
	"total_debt":          StatementBalance,
	"current_assets":      StatementBalance,
	"current_liabilities": StatementBalance,
	"free_cash_flow":      StatementCashFlow,
	"capex":               StatementCashFlow,
	"operating_cash_flow": StatementCashFlow,
}

// ScoredMetrics is the fixed, ordered set of raw metrics that enter the
// percentile ranking. Order matters for deterministic output. pe_ratio
// and price_to_book are display-only: a missing valuation field lands as
// 0 and would rank as best-in-class under lower-is-better, so they stay
// out of the ranking entirely.
var ScoredMetrics = []string{
	"gross_margin",
	"net_margin",
	"operating_margin",
	"sga_ratio",
	"roe",
	"roa",
	"roic",
	"debt_to_equity",
	"interest_coverage",
	"current_ratio",
	"fcf_margin",
	"capex_ratio",
	"revenue_cagr",
}

// HigherIsBetter gives the ranking direction per metric. Metrics where a
// lower raw value is preferable are ranked so that the lowest value earns
// the highest percentile.
var HigherIsBetter = map[string]bool{
	"gross_margin":      true,
	"net_margin":        true,
	"operating_margin":  true,
	"sga_ratio":         false,
	"roe":               true,
	"roa":               true,
	"roic":              true,
	"debt_to_equity":    false,
	"interest_coverage": true,
	"current_ratio":     true,
	"fcf_margin":        true,
	"capex_ratio":       false,
	"revenue_cagr":      true,
}

// PillarWeight is one component of the composite moat score.
type PillarWeight struct {
	Metric string
	Weight float64
}

// PillarWeights is the documented composite blend. Weights sum to 1.0.
var PillarWeights = []PillarWeight{
	{Metric: "roic", Weight: 0.25},
	{Metric: "gross_margin", Weight: 0.20},
	{Metric: "fcf_margin", Weight: 0.15},
	{Metric: "debt_to_equity", Weight: 0.15},
	{Metric: "revenue_cagr", Weight: 0.15},
	{Metric: "roe", Weight: 0.10},
}

// SubScoreGroups maps each radar-chart pillar to the metric whose
// sector-relative percentile backs it.
var SubScoreGroups = map[string]string{
	"pricing":    "gross_margin",
	"efficiency": "roic",
	"health":     "debt_to_equity",
	"growth":     "revenue_cagr",
	"cash":       "fcf_margin",
}

// GroupOrder fixes the ordering of the sub-score pillars, which doubles as
// the feature-vector layout for the similarity graph.
var GroupOrder = []string{"pricing", "efficiency", "health", "growth", "cash"}

// HistoryMetric describes one ratio series tracked per company.
type HistoryMetric struct {
	Name        string
	Numerator   string
	Denominator string
	Scale       float64
}

// HistoryMetrics is the fixed set of per-year series built for sparklines
// and the stability bonus.
var HistoryMetrics = []HistoryMetric{
	{Name: "gross_margin", Numerator: "gross_profit", Denominator: "total_revenue", Scale: 100},
	{Name: "net_margin", Numerator: "net_income", Denominator: "total_revenue", Scale: 100},
	{Name: "roe", Numerator: "net_income", Denominator: "stockholders_equity", Scale: 100},
	{Name: "debt_to_equity", Numerator: "total_debt", Denominator: "stockholders_equity", Scale: 1},
}

// Scoring and graph tunables. Threshold and top-k are overridable via env,
// these are the defaults.
const (
	MaxHistoryYears      = 5
	MinSectorSize        = 3
	SafeInterestCoverage = 100.0
	CoverageKillSwitch   = 1.5
	InsolvencyCeiling    = 45
	SimilarityThreshold  = 0.80
	SimilarityTopK       = 3
	SimilarityPrecision  = 3
)

// DefaultUniverse is the fallback watchlist used when no tickers are
// injected via env, Mongo or an uploaded file.
var DefaultUniverse = []string{
	"AAPL", "MSFT", "GOOGL", "AMZN", "META", "TSLA", "NVDA",
	"BRK-B", "JPM", "V", "JNJ", "WMT", "PG", "XOM", "MA",
	"UNH", "HD", "CVX", "MRK", "KO", "PEP", "ABBV", "COST",
	"ADBE", "MCD", "CSCO", "CRM", "ACN", "NFLX", "AMD",
}
