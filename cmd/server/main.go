package main

import (
	"log"

	"triplog/internal/api"
	"triplog/internal/config"
	"triplog/internal/database"
	"triplog/internal/handler"
	"triplog/internal/repository"
	"triplog/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration: ", err)
	}

	db, err := database.Open(database.Config{Path: cfg.DBPath})
	if err != nil {
		log.Fatal("Failed to initialize database: ", err)
	}
	defer db.Close()

	ledgerService := service.NewLedgerService(repository.NewLedgerRepository(db), cfg)
	router := api.SetupRouter(cfg, handler.NewLedgerHandler(ledgerService))

	log.Printf("Server starting on port %s", cfg.Port)
	if err := router.Run(cfg.Port); err != nil {
		log.Fatal("Failed to start server: ", err)
	}
}
