package controllers

import (
	"encoding/json"
	"os"

	mongo_client "moatmap/clients/mongo"
	"moatmap/types"
	"moatmap/utils/helpers"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gopkg.in/mgo.v2/bson"
)

type GraphControllerI interface {
	GetGraph(ctx *gin.Context)
	GetSectorAverages(ctx *gin.Context)
}

type graphController struct{}

var GraphController GraphControllerI = &graphController{}

// GetGraph serves the latest pipeline artifact: Mongo first, local file as
// fallback when persistence is not configured.
func (g *graphController) GetGraph(ctx *gin.Context) {
	doc, ok := latestGraph(ctx)
	if !ok {
		ctx.JSON(404, gin.H{"error": "No graph artifact available, run the pipeline first"})
		return
	}
	ctx.JSON(200, doc)
}

func (g *graphController) GetSectorAverages(ctx *gin.Context) {
	doc, ok := latestGraph(ctx)
	if !ok {
		ctx.JSON(404, gin.H{"error": "No graph artifact available, run the pipeline first"})
		return
	}
	ctx.JSON(200, gin.H{
		"sector_averages": doc.SectorAverages,
		"generated_at":    doc.Metadata.GeneratedAt,
	})
}

func latestGraph(ctx *gin.Context) (*types.GraphDocument, bool) {
	if mongo_client.Client != nil {
		collection := mongo_client.Client.Database(os.Getenv("DATABASE")).Collection(helpers.GetEnv("GRAPH_COLLECTION", "graphs"))
		var wrapper struct {
			Document types.GraphDocument `bson:"document"`
		}
		err := collection.FindOne(ctx, bson.M{"latest": true}).Decode(&wrapper)
		if err == nil {
			return &wrapper.Document, true
		}
		zap.L().Warn("No graph document in Mongo, falling back to file", zap.Error(err))
	}

	outputPath := helpers.GetEnv("OUTPUT_PATH", "data/graph_data.json")
	data, err := os.ReadFile(outputPath)
	if err != nil {
		return nil, false
	}
	var doc types.GraphDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		zap.L().Error("Error unmarshalling graph artifact", zap.String("path", outputPath), zap.Error(err))
		return nil, false
	}
	return &doc, true
}
