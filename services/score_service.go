package services

import (
	"math"
	"sort"

	"moatmap/types"
	"moatmap/utils/constants"
	"moatmap/utils/helpers"

	"go.uber.org/zap"
)

type ScoreServiceI interface {
	ScoreBatch(records []*types.CompanyRecord)
}

type scoreService struct{}

var ScoreService ScoreServiceI = &scoreService{}

// ScoreBatch assigns sector-relative percentile sub-scores and the composite
// moat score to every record. Sector percentiles need the whole batch, so
// this runs once after all tickers are collected.
//
// Policy selection: SCORING_POLICY=checklist switches the composite to the
// fixed-threshold checklist; sub-scores stay percentile-based either way
// because the similarity graph embeds them.
func (s *scoreService) ScoreBatch(records []*types.CompanyRecord) {
	if len(records) == 0 {
		return
	}

	percentiles := sectorPercentiles(records)
	policy := helpers.GetEnv("SCORING_POLICY", "sector")

	for i, rec := range records {
		rec.SubScores = make(map[string]int, len(constants.GroupOrder))
		for _, group := range constants.GroupOrder {
			metric := constants.SubScoreGroups[group]
			rec.SubScores[group] = clampScore(int(math.Floor(percentiles[metric][i])))
		}

		var composite int
		if policy == "checklist" {
			composite = checklistScore(rec.RawMetrics, rec.History)
		} else {
			weighted := 0.0
			for _, pw := range constants.PillarWeights {
				weighted += percentiles[pw.Metric][i] * pw.Weight
			}
			composite = int(math.Floor(weighted))
		}
		composite = clampScore(composite)

		// Kill switch: insolvency risk dominates everything else.
		// Net income is checked directly rather than via net_margin,
		// whose guarded division hides the loss when revenue is zero.
		if rec.RawMetrics["interest_coverage"] < constants.CoverageKillSwitch || rec.RawMetrics["net_income"] < 0 {
			if composite > constants.InsolvencyCeiling {
				zap.L().Info("Capping score on insolvency risk",
					zap.String("ticker", rec.ID),
					zap.Int("uncapped", composite))
				composite = constants.InsolvencyCeiling
			}
		}
		rec.Score = composite
	}
}

// sectorPercentiles ranks every scored metric within each sector. Sectors
// with fewer members than the minimum fall back to the global ranking so a
// lone company is not trivially "best in sector".
func sectorPercentiles(records []*types.CompanyRecord) map[string][]float64 {
	n := len(records)

	sectorMembers := make(map[string][]int)
	for i, rec := range records {
		sectorMembers[rec.Sector] = append(sectorMembers[rec.Sector], i)
	}
	sectors := make([]string, 0, len(sectorMembers))
	for sector := range sectorMembers {
		sectors = append(sectors, sector)
	}
	sort.Strings(sectors)

	result := make(map[string][]float64, len(constants.ScoredMetrics))
	for _, metric := range constants.ScoredMetrics {
		direction := constants.HigherIsBetter[metric]

		values := make([]float64, n)
		for i, rec := range records {
			values[i] = rec.RawMetrics[metric]
		}
		global := helpers.PercentileRanks(values, direction)

		scores := make([]float64, n)
		copy(scores, global)
		for _, sector := range sectors {
			members := sectorMembers[sector]
			if len(members) < constants.MinSectorSize {
				continue
			}
			sectorValues := make([]float64, len(members))
			for j, idx := range members {
				sectorValues[j] = values[idx]
			}
			sectorRanks := helpers.PercentileRanks(sectorValues, direction)
			for j, idx := range members {
				scores[idx] = sectorRanks[j]
			}
		}
		result[metric] = scores
	}
	return result
}

// checklistScore is the fixed-threshold baseline policy: points for crossing
// hardcoded quality bars, plus a stability bonus when margin history is
// tight. Comparable across the batch but harsh on low-margin industries.
func checklistScore(metrics map[string]float64, history map[string][]types.HistoryPoint) int {
	score := 0

	// Margins (30 points)
	if metrics["gross_margin"] > 40 {
		score += 10
	}
	if metrics["net_margin"] > 15 {
		score += 10
	}
	if metrics["sga_ratio"] > 0 && metrics["sga_ratio"] < 30 {
		score += 10
	}

	// Returns (25 points)
	if metrics["roe"] > 15 {
		score += 10
	}
	if metrics["roic"] > 12 {
		score += 10
	}
	if metrics["roa"] > 7 {
		score += 5
	}

	// Debt (20 points)
	if metrics["debt_to_equity"] < 0.5 {
		score += 15
	} else if metrics["debt_to_equity"] < 1.0 {
		score += 10
	}
	if metrics["current_ratio"] > 1.5 {
		score += 5
	}

	// Cash flow (15 points)
	if metrics["fcf_margin"] > 15 {
		score += 10
	}
	if metrics["capex_ratio"] > 0 && metrics["capex_ratio"] < 5 {
		score += 5
	}

	// Consistency (10 points)
	if gm := history["gross_margin"]; len(gm) >= 3 && helpers.SeriesRange(gm) < 10 {
		score += 5
	}
	if roe := history["roe"]; len(roe) >= 3 {
		allPositive := true
		for _, p := range roe {
			if p.Value <= 0 {
				allPositive = false
				break
			}
		}
		if allPositive {
			score += 5
		}
	}

	return score
}

func clampScore(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
