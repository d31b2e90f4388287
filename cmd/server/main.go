package main

import (
	"errors"
	"net/http"

	"kvartal/internal/config"
	"kvartal/internal/db"
	"kvartal/internal/logger"
	"kvartal/internal/router"
	"kvartal/internal/services"
	"kvartal/internal/storage"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, dotenv, err := config.Load()
	if err != nil {
		panic(err)
	}

	if err := logger.Initialize(cfg.LogLevel, cfg.LogFile); err != nil {
		panic(err)
	}
	defer logger.Close()
	if !dotenv {
		logger.Log.Info("No .env file found, using environment variables")
	}

	// Initialize Database
	if err := db.Init(cfg.DatabaseURL); err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	services.Media = storage.NewImageStore(cfg.MediaDir, cfg.MaxUploadBytes)

	gin.SetMode(cfg.GinMode)
	r := router.New(cfg)

	logger.Log.Info("Kvartal server starting", zap.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Log.Fatal("Server stopped", zap.Error(err))
	}
}
