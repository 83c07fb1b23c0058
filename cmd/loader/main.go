package main

import (
	"context"
	"log"
	"time"

	"animehub/internal/catalog"
	"animehub/internal/snapshot"
	"animehub/internal/upstream"
	"animehub/pkg/database"
	"animehub/pkg/utils"
)

// Offline catalog populate: runs one full load against the upstream API and
// writes the deduplicated result into the sqlite snapshot the server warms
// its cache from.
func main() {
	cfg := utils.LoadConfig()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	db := database.MustOpen(database.DefaultConfig())
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	client := upstream.NewClient(cfg.APIBase, cfg.MaxRetries, cfg.RetryDelay)
	fetcher := catalog.NewFetcher(client)
	loader := catalog.NewLoader(fetcher, []string{"latest"}, cfg.CacheMaxPages, cfg.LoadConcurrency, cfg.EmptyPageStop, cfg.RequestDelay)

	entries := loader.LoadAll(ctx)
	if len(entries) == 0 {
		log.Fatal("load produced no entries, keeping previous snapshot")
	}
	log.Printf("loaded %d unique entries", len(entries))

	store := snapshot.NewStore(db)
	if err := store.Save(ctx, entries); err != nil {
		log.Fatalf("snapshot save failed: %v", err)
	}

	attempted, failed := client.Stats()
	log.Printf("snapshot written (%d upstream requests, %d failed)", attempted, failed)
}
