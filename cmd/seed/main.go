package main

import (
	"context"
	"flag"
	"os"

	"github.com/rs/zerolog/log"

	"kotobuki_stay/internal/adapters/observability"
	redisad "kotobuki_stay/internal/adapters/redis"
	"kotobuki_stay/internal/app"
	"kotobuki_stay/internal/domain"
	"kotobuki_stay/internal/shared"
	"kotobuki_stay/internal/storage"
)

func main() {
	file := flag.String("file", "seed/kotobuki.json", "seed document (lodgings, services, profiles, owner_lodgings)")
	flag.Parse()

	ctx := context.Background()
	cfg := shared.Load()

	// initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	if cfg.StoreDriver == "memory" {
		log.Fatal().Msg("seeding the memory store is done by the web process via SEED_FILE")
	}

	log.Info().
		Str("file", *file).
		Str("store", cfg.StoreDriver).
		Int("workers", cfg.SeedWorkers).
		Msg("seeder starting")

	f, err := os.Open(*file)
	if err != nil {
		log.Fatal().Err(err).Msg("open seed file")
	}
	defer f.Close()
	doc, err := app.DecodeSeed(f)
	if err != nil {
		log.Fatal().Err(err).Msg("read seed file")
	}

	store, closer, err := storage.Open(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("open store failed")
	}
	defer closer.Close()

	var cache domain.Cache
	if cfg.RedisAddr != "" {
		rc := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		defer rc.Close()
		cache = rc
	}

	rep, err := app.NewSeedService(store, cache, cfg.SeedWorkers).Run(ctx, doc)
	log.Info().
		Int("lodgings", rep.Lodgings).
		Int("services", rep.Services).
		Int("profiles", rep.Profiles).
		Int("owners", rep.Owners).
		Int("failed", rep.Failed).
		Msg("seed finished")
	if err != nil {
		log.Fatal().Err(err).Msg("seed incomplete")
	}
}
