package main

import (
	"hr-backoffice/internal/app"
	"hr-backoffice/internal/config"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	cfg := config.Load()
	if err := app.RunWorker(cfg); err != nil {
		logger.Fatal("worker failed", zap.Error(err))
	}
}
