package main

import (
	"context"
	"log"

	"triplog/internal/config"
	"triplog/internal/database"
	"triplog/internal/geocode"
	"triplog/internal/pipeline"
	"triplog/internal/repository"
	"triplog/internal/sheets"
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

	resolver := geocode.NewResolver(
		geocode.NewHTTPClient(cfg.MapsAPIKey),
		repository.NewPlaceRepository(db),
		cfg.GeocodeRetries,
		cfg.GeocodeBackoff,
	)

	var writer sheets.Writer
	ctx := context.Background()
	if cfg.SpreadsheetID != "" {
		writer, err = sheets.NewGoogleWriter(ctx, cfg.CredentialsPath, cfg.SpreadsheetID, cfg.SheetName)
		if err != nil {
			log.Fatal("Failed to create sheet writer: ", err)
		}
	} else {
		writer = sheets.NewCSVWriter(cfg.CSVPath)
	}

	p := pipeline.New(cfg, resolver, repository.NewLedgerRepository(db), writer)
	if err := p.Run(ctx); err != nil {
		log.Fatal("Pipeline failed: ", err)
	}
}
