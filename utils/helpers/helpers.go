package helpers

import (
	"encoding/json"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"moatmap/types"
	"moatmap/utils/constants"

	"go.uber.org/zap"
)

// GetEnv retrieves the environment variable with a default value if not set.
func GetEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// GetEnvFloat retrieves a float env var, falling back on parse failure.
func GetEnvFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		zap.L().Error("Error parsing env var as float", zap.String("key", key), zap.Error(err))
		return defaultValue
	}
	return f
}

// GetEnvInt retrieves an int env var, falling back on parse failure.
func GetEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		zap.L().Error("Error parsing env var as int", zap.String("key", key), zap.Error(err))
		return defaultValue
	}
	return n
}

// AsFloat coerces a raw statement value to float64. JSON decoding delivers
// numbers as float64, but vendors also ship numeric strings with commas.
// Non-finite values report not-ok so callers fall back to their default.
func AsFloat(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, false
		}
		return v, true
	case float32:
		return AsFloat(float64(v))
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, false
		}
		return AsFloat(f)
	case string:
		cleaned := strings.ReplaceAll(strings.TrimSpace(v), ",", "")
		if cleaned == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			return 0, false
		}
		return AsFloat(f)
	default:
		return 0, false
	}
}

// ExtractLineItem resolves a financial concept against one statement period
// using the ordered alias table. For balance-style concepts an exact zero is
// treated as "probably missing" and the next alias is tried; for margins and
// rates zero is returned as-is. A concept absent under every alias resolves
// to the caller's default.
func ExtractLineItem(period types.Period, concept string, defaultValue float64) float64 {
	aliases, ok := constants.ConceptAliases[concept]
	if !ok {
		zap.L().Warn("Unknown financial concept", zap.String("concept", concept))
		return defaultValue
	}
	zeroFallsThrough := constants.ZeroFallbackConcepts[concept]
	sawZero := false
	for _, alias := range aliases {
		raw, present := period[alias]
		if !present {
			continue
		}
		v, numeric := AsFloat(raw)
		if !numeric {
			continue
		}
		if v == 0 && zeroFallsThrough {
			sawZero = true
			continue
		}
		return v
	}
	if sawZero {
		return 0
	}
	return defaultValue
}

// PeriodLabel returns the reporting year of a statement period.
func PeriodLabel(period types.Period) string {
	if v, ok := period["calendarYear"]; ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
		if f, ok := AsFloat(v); ok {
			return strconv.Itoa(int(f))
		}
	}
	for _, key := range []string{"date", "fiscalDateEnding"} {
		if v, ok := period[key].(string); ok && len(v) >= 4 {
			return v[:4]
		}
	}
	return ""
}

// SafeDiv divides with the pipeline's guard rails: a zero or non-positive
// denominator yields 0, and non-finite results are normalized to 0.
func SafeDiv(numerator, denominator float64) float64 {
	if denominator <= 0 {
		return 0
	}
	return CleanValue(numerator / denominator)
}

// CleanValue replaces NaN and Inf with 0 so nothing non-finite reaches the
// stored metrics or the JSON artifact.
func CleanValue(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// Round rounds to the given number of decimal places.
func Round(v float64, places int) float64 {
	factor := math.Pow(10, float64(places))
	return math.Round(v*factor) / factor
}

// CAGR computes the compound annual growth rate of an oldest-first series,
// in percent. Series that are too short or cross zero return 0.
func CAGR(series []float64) float64 {
	if len(series) < 4 {
		return 0
	}
	first, last := series[0], series[len(series)-1]
	if first <= 0 || last <= 0 {
		return 0
	}
	years := float64(len(series) - 1)
	return CleanValue((math.Pow(last/first, 1/years) - 1) * 100)
}

// PercentileRanks converts raw values into tie-aware percentile scores on
// [0, 100]. Ties receive the average of the ranks they occupy; with
// higherIsBetter false the direction is inverted so that the lowest raw
// value earns 100. A single-member group scores 50.
func PercentileRanks(values []float64, higherIsBetter bool) []float64 {
	n := len(values)
	ranks := make([]float64, n)
	if n == 0 {
		return ranks
	}
	if n == 1 {
		ranks[0] = 50
		return ranks
	}
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return values[order[a]] < values[order[b]]
	})
	// Walk runs of equal values and assign each member the average rank.
	for start := 0; start < n; {
		end := start
		for end+1 < n && values[order[end+1]] == values[order[start]] {
			end++
		}
		avgRank := float64(start+end)/2 + 1
		pct := (avgRank - 1) / float64(n-1) * 100
		if !higherIsBetter {
			pct = 100 - pct
		}
		for i := start; i <= end; i++ {
			ranks[order[i]] = pct
		}
		start = end + 1
	}
	return ranks
}

// MinMaxScale normalizes each column of a feature matrix to [0, 1]. Columns
// with no spread collapse to 0. Rows must share a length.
func MinMaxScale(matrix [][]float64) [][]float64 {
	if len(matrix) == 0 {
		return nil
	}
	cols := len(matrix[0])
	mins := make([]float64, cols)
	maxs := make([]float64, cols)
	for c := 0; c < cols; c++ {
		mins[c] = math.Inf(1)
		maxs[c] = math.Inf(-1)
	}
	for _, row := range matrix {
		for c, v := range row {
			if v < mins[c] {
				mins[c] = v
			}
			if v > maxs[c] {
				maxs[c] = v
			}
		}
	}
	scaled := make([][]float64, len(matrix))
	for r, row := range matrix {
		scaled[r] = make([]float64, cols)
		for c, v := range row {
			spread := maxs[c] - mins[c]
			if spread > 0 {
				scaled[r][c] = (v - mins[c]) / spread
			}
		}
	}
	return scaled
}

// CosineSimilarity computes the cosine of the angle between two vectors.
// A zero-norm vector has no direction and yields 0.
func CosineSimilarity(a, b []float64) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return CleanValue(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}

// SeriesRange returns max-min of a history series' values.
func SeriesRange(points []types.HistoryPoint) float64 {
	if len(points) == 0 {
		return 0
	}
	min, max := points[0].Value, points[0].Value
	for _, p := range points[1:] {
		if p.Value < min {
			min = p.Value
		}
		if p.Value > max {
			max = p.Value
		}
	}
	return max - min
}
