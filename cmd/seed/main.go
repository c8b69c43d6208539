// Command seed loads a schedule file into the game store ahead of the first
// server start. The server seeds itself on an empty store anyway; this tool
// exists for re-seeding after a schedule update without wiping the database.
package main

import (
	"context"
	"flag"
	"log"

	"github.com/joho/godotenv"

	"ballpark-tracker/internal/config"
	"ballpark-tracker/internal/games"
	"ballpark-tracker/internal/logger"
	"ballpark-tracker/internal/models"
	"ballpark-tracker/internal/seed"
	"ballpark-tracker/internal/storage"
)

func main() {
	var (
		file  = flag.String("file", "", "schedule file to load (defaults to SEED_GAMES_FILE)")
		merge = flag.Bool("merge", true, "keep existing records; only add games with new ids")
	)
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.Load()
	appLogger := logger.NewLogger()
	defer appLogger.Close()

	path := *file
	if path == "" {
		path = cfg.Seed.GamesFile
	}

	raws, err := seed.LoadFile(path)
	if err != nil {
		log.Fatalf("failed to read schedule file: %v", err)
	}
	incoming := seed.Convert(raws)

	ctx := context.Background()
	kv, err := storage.OpenSQLite(cfg.Storage.SQLitePath)
	if err != nil {
		log.Fatalf("failed to open store: %v", err)
	}
	defer kv.Close()

	store := games.NewStore(kv, appLogger)
	existing, found, err := store.Load(ctx)
	if err != nil {
		log.Fatalf("failed to load game store: %v", err)
	}

	var out []models.Game
	if *merge && found {
		seen := make(map[string]bool, len(existing))
		out = existing
		for _, game := range existing {
			seen[game.ID] = true
		}
		added := 0
		for _, game := range incoming {
			if !seen[game.ID] {
				out = append(out, game)
				added++
			}
		}
		log.Printf("merged schedule: %d existing, %d added", len(existing), added)
	} else {
		out = incoming
		log.Printf("replaced game store with %d games", len(out))
	}

	if err := store.Save(ctx, out); err != nil {
		log.Fatalf("failed to save game store: %v", err)
	}
}
