package services

import (
	"moatmap/types"
	"moatmap/utils/helpers"
)

// Sanitize recursively replaces non-finite numeric leaves in a generic
// document tree with 0. NaN and Infinity are illegal in JSON, so this runs
// as a mandatory final pass regardless of which stage produced the value.
func Sanitize(value interface{}) interface{} {
	switch v := value.(type) {
	case float64:
		return helpers.CleanValue(v)
	case float32:
		return helpers.CleanValue(float64(v))
	case map[string]interface{}:
		for k, elem := range v {
			v[k] = Sanitize(elem)
		}
		return v
	case []interface{}:
		for i, elem := range v {
			v[i] = Sanitize(elem)
		}
		return v
	default:
		return v
	}
}

// SanitizeGraph applies the finiteness pass to every float field of the
// typed output artifact, including nested history arrays and metric maps.
func SanitizeGraph(doc *types.GraphDocument) {
	for i := range doc.Nodes {
		node := &doc.Nodes[i]
		node.MarketCap = helpers.CleanValue(node.MarketCap)
		for k, v := range node.RawMetrics {
			node.RawMetrics[k] = helpers.CleanValue(v)
		}
		for _, points := range node.History {
			for j := range points {
				points[j].Value = helpers.CleanValue(points[j].Value)
			}
		}
	}
	for i := range doc.Links {
		doc.Links[i].Similarity = helpers.CleanValue(doc.Links[i].Similarity)
	}
	for _, metrics := range doc.SectorAverages {
		for k, v := range metrics {
			metrics[k] = helpers.CleanValue(v)
		}
	}
}
