package controllers

import (
	"encoding/json"
	"os"
	"strconv"

	mongo_client "moatmap/clients/mongo"
	"moatmap/types"
	"moatmap/utils/helpers"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
	"gopkg.in/mgo.v2/bson"
)

type StockControllerI interface {
	GetStocks(ctx *gin.Context)
}

type stockController struct{}

var StockController StockControllerI = &stockController{}

// GetStocks streams scored company records as newline-delimited JSON,
// paginated and sorted by ticker for stable pages. Optional ?sector= filter.
func (s *stockController) GetStocks(ctx *gin.Context) {
	pageNumberStr := ctx.DefaultQuery("pageNumber", "1")
	pageNumber, err := strconv.Atoi(pageNumberStr)
	if err != nil || pageNumber < 1 {
		ctx.JSON(400, gin.H{"error": "Invalid page number"})
		return
	}

	if mongo_client.Client == nil {
		ctx.JSON(503, gin.H{"error": "Persistence not configured"})
		return
	}
	collection := mongo_client.Client.Database(os.Getenv("DATABASE")).Collection(helpers.GetEnv("COMPANY_COLLECTION", "companies"))

	filter := bson.M{}
	if sector := ctx.Query("sector"); sector != "" {
		filter["sector"] = sector
	}

	findOptions := options.Find()
	findOptions.SetLimit(20)
	findOptions.SetSkip(int64(20 * (pageNumber - 1)))
	findOptions.SetSort(bson.M{"id": 1})

	cursor, err := collection.Find(ctx, filter, findOptions)
	if err != nil {
		zap.L().Error("Error while fetching documents", zap.Error(err))
		ctx.JSON(500, gin.H{"error": "Error while fetching stocks"})
		return
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var record types.CompanyRecord
		if err := cursor.Decode(&record); err != nil {
			zap.L().Error("Error while decoding stock record", zap.Error(err))
			ctx.JSON(500, gin.H{"error": "Error while decoding stocks"})
			return
		}

		recordMarshal, err := json.Marshal(record)
		if err != nil {
			zap.L().Error("Error marshalling data", zap.Error(err))
			continue
		}

		_, err = ctx.Writer.Write(append(recordMarshal, '\n')) // Send each record as JSON with a newline separator
		if err != nil {
			zap.L().Error("Error writing data", zap.Error(err))
			break
		}
		ctx.Writer.Flush() // Flush each chunk immediately to the client
	}
}
