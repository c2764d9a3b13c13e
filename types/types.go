package types

// Period is a single reporting period of a financial statement, keyed by
// vendor line-item name. Vendors disagree on field names, so lookups go
// through the concept alias tables in utils/constants.
type Period map[string]interface{}

// CompanyProfile holds the descriptive and trailing-valuation fields of a
// ticker. Any field may be absent upstream and defaults to its zero value.
type CompanyProfile struct {
	Ticker            string  `json:"symbol"`
	ShortName         string  `json:"shortName"`
	Sector            string  `json:"sector"`
	Industry          string  `json:"industry"`
	MarketCap         float64 `json:"marketCap"`
	SharesOutstanding float64 `json:"sharesOutstanding"`
	TrailingPE        float64 `json:"trailingPE"`
	PriceToBook       float64 `json:"priceToBook"`
	FreeCashflow      float64 `json:"freeCashflow"`
	CurrentPrice      float64 `json:"currentPrice"`
}

// StatementBundle is everything the pipeline needs for one ticker: the three
// annual statements (periods ordered newest-first, as delivered) plus the
// profile record.
type StatementBundle struct {
	Ticker   string         `json:"ticker"`
	Income   []Period       `json:"income"`
	Balance  []Period       `json:"balance"`
	CashFlow []Period       `json:"cashFlow"`
	Profile  CompanyProfile `json:"profile"`
}

// HistoryPoint is one year of a ratio series.
type HistoryPoint struct {
	Period string  `json:"period" bson:"period"`
	Value  float64 `json:"value" bson:"value"`
}

// CompanyRecord is one scored node of the output graph.
type CompanyRecord struct {
	ID         string                    `json:"id" bson:"id"`
	Name       string                    `json:"name" bson:"name"`
	Sector     string                    `json:"sector" bson:"sector"`
	Industry   string                    `json:"industry" bson:"industry"`
	MarketCap  float64                   `json:"market_cap" bson:"market_cap"`
	RawMetrics map[string]float64        `json:"raw_metrics" bson:"raw_metrics"`
	History    map[string][]HistoryPoint `json:"history" bson:"history"`
	Score      int                       `json:"score" bson:"score"`
	SubScores  map[string]int            `json:"sub_scores" bson:"sub_scores"`
}

// Edge is a directed similarity link between two companies. A->B being
// retained does not imply B->A was, since top-k selection is per node.
type Edge struct {
	Source     string  `json:"source" bson:"source"`
	Target     string  `json:"target" bson:"target"`
	Similarity float64 `json:"similarity" bson:"similarity"`
}

// Metadata describes one pipeline run.
type Metadata struct {
	GeneratedAt   string   `json:"generated_at" bson:"generated_at"`
	TotalStocks   int      `json:"total_stocks" bson:"total_stocks"`
	FailedTickers []string `json:"failed_tickers" bson:"failed_tickers"`
	RunID         string   `json:"run_id" bson:"run_id"`
}

// GraphDocument is the full output artifact of a pipeline run.
type GraphDocument struct {
	Nodes          []CompanyRecord               `json:"nodes" bson:"nodes"`
	Links          []Edge                        `json:"links" bson:"links"`
	SectorAverages map[string]map[string]float64 `json:"sector_averages" bson:"sector_averages"`
	Metadata       Metadata                      `json:"metadata" bson:"metadata"`
}

// MoatmapEvent is published to Kafka after a successful pipeline run.
type MoatmapEvent struct {
	RunID       string `json:"runId"`
	TotalStocks int    `json:"totalStocks"`
	TotalLinks  int    `json:"totalLinks"`
	FailedCount int    `json:"failedCount"`
	GeneratedAt string `json:"generatedAt"`
}

// TickerFailure is published to the RabbitMQ alert queue for every ticker
// the pipeline had to skip.
type TickerFailure struct {
	RunID  string `json:"runId"`
	Ticker string `json:"ticker"`
	Reason string `json:"reason"`
}
