package main

import (
	"tavolo/config"
	"tavolo/di"
	"tavolo/shared/logger"
)

func main() {
	cfg := config.Get()

	logger.InitLogger()

	logger.SetLogLevel(cfg)

	http := di.InitializeService()
	http.Serve()
}
