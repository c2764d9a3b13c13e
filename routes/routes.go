package routes

import (
	"moatmap/controllers"

	"github.com/gin-gonic/gin"
)

func Routes(r *gin.Engine) {

	v1 := r.Group("/api")

	{
		v1.GET("/graph", controllers.GraphController.GetGraph)
		v1.GET("/sectors", controllers.GraphController.GetSectorAverages)
		v1.GET("/fetchStocks", controllers.StockController.GetStocks)
		v1.POST("/refresh", controllers.PipelineController.Refresh)
		v1.POST("/uploadWatchlist", controllers.WatchlistController.UploadWatchlist)
		v1.GET("/keepServerRunning", controllers.HealthController.IsRunning)
	}
}
