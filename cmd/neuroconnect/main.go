package main

import (
	"flag"
	"log"
	"net/http"

	"neuroconnect/internal/models"
	"neuroconnect/internal/store"
	"neuroconnect/internal/web"
	"neuroconnect/pkg/config"
	"neuroconnect/pkg/extractor"
	"neuroconnect/pkg/nifti"
)

func main() {
	configPath := flag.String("config", "neuroconnect.yaml", "Path to the YAML configuration file")
	listen := flag.String("listen", "", "Listen address (overrides config)")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *listen != "" {
		cfg.Server.Listen = *listen
	}

	// The coordinate table is loaded exactly once and shared read-only
	// across all render requests.
	table, err := extractor.LoadTableFile(cfg.CoordinatesPath())
	if err != nil {
		log.Fatalf("Failed to load coordinate table %s (run extract-coords first): %v",
			cfg.CoordinatesPath(), err)
	}
	log.Printf("loaded %d tract coordinates from %s", len(table.Records), cfg.CoordinatesPath())

	// The atlas volume only backs the slice preview endpoints; the
	// server runs without it.
	var atlas *models.LabeledVolume
	if path, err := nifti.LocateAtlas(cfg.Data.Dir); err == nil {
		vol, err := nifti.LoadLabelVolume(path)
		if err != nil {
			log.Printf("atlas %s unreadable, slice previews disabled: %v", path, err)
		} else {
			atlas = vol
			log.Printf("loaded atlas %s (%dx%dx%d)", path, vol.Nx, vol.Ny, vol.Nz)
		}
	} else {
		log.Printf("no atlas found, slice previews disabled")
	}

	db, err := store.Open(cfg.DatabasePath())
	if err != nil {
		log.Fatalf("Failed to open dataset store %s: %v", cfg.DatabasePath(), err)
	}
	defer db.Close()

	srv := web.NewServer(cfg, table, db, atlas)
	log.Printf("neuroconnect listening on %s", cfg.Server.Listen)
	if err := http.ListenAndServe(cfg.Server.Listen, srv.ServeMux()); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
