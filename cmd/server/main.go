package main

import (
	"flag"
	"log"

	"chatrelay/internal/clients"
	"chatrelay/internal/config"
	"chatrelay/internal/invoker"
	"chatrelay/internal/logger"
	"chatrelay/internal/metrics"
	"chatrelay/internal/server"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to the configuration file")
	flag.Parse()

	// Load configuration from file with environment overrides
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatal(err)
	}

	logger.InitLogger(logger.ParseLevel(cfg.LogLevel), "chatrelay")
	logg := logger.GetLogger()

	m := metrics.New()

	client := clients.NewOpenAIClient(clients.ModelClientConfig{
		APIBase: cfg.Backend.APIBase,
		APIKey:  cfg.Backend.APIKey,
	})
	inv := invoker.New(client, cfg, m)

	srv := server.New(cfg, inv, m)

	logg.Info("listening on %s, backend model %s", cfg.ListenAddr, cfg.Backend.Model)
	if err := srv.Router().Run(cfg.ListenAddr); err != nil {
		log.Fatal(err)
	}
}
