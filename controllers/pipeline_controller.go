package controllers

import (
	"context"

	"moatmap/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type PipelineControllerI interface {
	Refresh(ctx *gin.Context)
}

type pipelineController struct{}

var PipelineController PipelineControllerI = &pipelineController{}

// Refresh triggers an async pipeline run. The request returns immediately;
// progress lands in the logs and the artifact replaces the previous one on
// success.
func (p *pipelineController) Refresh(ctx *gin.Context) {
	zap.L().Info("Manual pipeline refresh triggered via API")

	go func() {
		if err := services.PipelineService.Run(context.Background()); err != nil {
			zap.L().Error("Pipeline run failed", zap.Error(err))
		}
	}()

	ctx.JSON(202, gin.H{
		"message": "Pipeline run started",
		"status":  "running",
	})
}
