package controllers

import (
	"io"
	"os"
	"path/filepath"

	"moatmap/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type WatchlistControllerI interface {
	UploadWatchlist(ctx *gin.Context)
}

type watchlistController struct{}

var WatchlistController WatchlistControllerI = &watchlistController{}

// UploadWatchlist accepts an XLSX watchlist upload, extracts the ticker
// column, and saves it as the universe for subsequent pipeline runs.
func (w *watchlistController) UploadWatchlist(ctx *gin.Context) {
	form, err := ctx.MultipartForm()
	if err != nil {
		ctx.JSON(400, gin.H{"error": "Error parsing form data"})
		return
	}

	files := form.File["files"]
	if len(files) == 0 {
		ctx.JSON(400, gin.H{"error": "No files found"})
		return
	}

	uploadDir := "./uploads"
	if err := os.MkdirAll(uploadDir, os.ModePerm); err != nil {
		ctx.JSON(500, gin.H{"error": "Error creating upload directory"})
		return
	}

	var tickers []string
	for _, file := range files {
		src, err := file.Open()
		if err != nil {
			ctx.JSON(500, gin.H{"error": "Error opening file"})
			return
		}

		savePath := filepath.Join(uploadDir, filepath.Base(file.Filename))
		dst, err := os.Create(savePath)
		if err != nil {
			src.Close()
			ctx.JSON(500, gin.H{"error": "Error creating file on server"})
			return
		}
		if _, err := io.Copy(dst, src); err != nil {
			src.Close()
			dst.Close()
			ctx.JSON(500, gin.H{"error": "Error saving file"})
			return
		}
		src.Close()
		dst.Close()

		fileTickers, err := services.UniverseService.LoadWatchlistXLSX(savePath)
		if err != nil {
			zap.L().Error("Error parsing watchlist file", zap.String("file", savePath), zap.Error(err))
			ctx.JSON(400, gin.H{"error": err.Error()})
			return
		}
		tickers = append(tickers, fileTickers...)

		if err := os.Remove(savePath); err != nil {
			zap.L().Error("Error removing file", zap.String("filePath", savePath), zap.Error(err))
		}
	}

	if err := services.UniverseService.SaveWatchlist(ctx, tickers); err != nil {
		zap.L().Error("Error saving watchlist", zap.Error(err))
		ctx.JSON(500, gin.H{"error": "Error saving watchlist"})
		return
	}

	ctx.JSON(200, gin.H{
		"message": "Watchlist updated",
		"tickers": len(tickers),
	})
}
