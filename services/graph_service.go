package services

import (
	"sort"

	"moatmap/types"
	"moatmap/utils/constants"
	"moatmap/utils/helpers"

	"go.uber.org/zap"
)

type GraphServiceI interface {
	BuildLinks(records []*types.CompanyRecord) []types.Edge
}

type graphService struct{}

var GraphService GraphServiceI = &graphService{}

// BuildLinks embeds every company as its sub-score pillar vector, min-max
// scales each dimension across the batch, and connects each company to its
// top-k most similar peers by cosine similarity, keeping only pairs above
// the configured threshold. Edges are directional; the graph is a
// near-neighbor graph, not guaranteed symmetric.
func (g *graphService) BuildLinks(records []*types.CompanyRecord) []types.Edge {
	if len(records) < 2 {
		return []types.Edge{}
	}

	threshold := helpers.GetEnvFloat("SIMILARITY_THRESHOLD", constants.SimilarityThreshold)
	topK := helpers.GetEnvInt("SIMILARITY_TOP_K", constants.SimilarityTopK)

	features := make([][]float64, len(records))
	for i, rec := range records {
		vec := make([]float64, len(constants.GroupOrder))
		for d, group := range constants.GroupOrder {
			vec[d] = float64(rec.SubScores[group])
		}
		features[i] = vec
	}
	scaled := helpers.MinMaxScale(features)

	links := make([]types.Edge, 0, len(records)*topK)
	for i := range records {
		type candidate struct {
			index int
			sim   float64
		}
		candidates := make([]candidate, 0, len(records)-1)
		for j := range records {
			if i == j {
				continue
			}
			candidates = append(candidates, candidate{
				index: j,
				sim:   helpers.CosineSimilarity(scaled[i], scaled[j]),
			})
		}
		// Deterministic ordering: similarity desc, then ticker asc.
		sort.SliceStable(candidates, func(a, b int) bool {
			if candidates[a].sim != candidates[b].sim {
				return candidates[a].sim > candidates[b].sim
			}
			return records[candidates[a].index].ID < records[candidates[b].index].ID
		})

		kept := 0
		for _, c := range candidates {
			if kept >= topK {
				break
			}
			if c.sim <= threshold {
				break
			}
			links = append(links, types.Edge{
				Source:     records[i].ID,
				Target:     records[c.index].ID,
				Similarity: helpers.Round(c.sim, constants.SimilarityPrecision),
			})
			kept++
		}
	}

	zap.L().Info("Similarity graph built",
		zap.Int("nodes", len(records)),
		zap.Int("links", len(links)),
		zap.Float64("threshold", threshold))
	return links
}
