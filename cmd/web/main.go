package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	server "kotobuki_stay/internal/adapters/http_server"
	"kotobuki_stay/internal/adapters/observability"
	redisad "kotobuki_stay/internal/adapters/redis"
	"kotobuki_stay/internal/app"
	"kotobuki_stay/internal/domain"
	"kotobuki_stay/internal/shared"
	"kotobuki_stay/internal/storage"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	reg := observability.InitRegistry()
	observability.Serve(cfg.MetricsAddr, reg)

	store, closer, err := storage.Open(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.StoreDriver).Msg("open store failed")
	}
	defer closer.Close()

	var cache domain.Cache
	if cfg.RedisAddr != "" {
		rc := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		if err := rc.Ping(ctx); err != nil {
			log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unreachable; cache errors will be ignored")
		}
		defer rc.Close()
		cache = rc
	}

	if cfg.SeedFile != "" {
		if err := seedFrom(ctx, cfg, store, cache); err != nil {
			log.Fatal().Err(err).Str("file", cfg.SeedFile).Msg("seed failed")
		}
	}

	// deps
	authz := app.NewAuthorizer(store, store)
	sessions, err := server.NewSessions(cfg.SessionKey, cfg.SessionSecure, authz)
	if err != nil {
		log.Fatal().Err(err).Msg("session store")
	}
	q := app.NewQueryService(store, store, cache, cfg.CacheTTL)
	site, err := server.NewSite(server.SiteDeps{
		Queries:    q,
		Dashboard:  app.NewDashboardService(authz),
		Commands:   app.NewLodgingCommands(store, authz, cache),
		Authz:      authz,
		Auth:       app.NewAuthenticator(store, authz),
		Sessions:   sessions,
		ContactRPS: cfg.ContactRPS,
		LoginRPS:   cfg.LoginRPS,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("templates")
	}

	// http
	srv := server.New()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{Q: q})
	srv.MountSite(site)

	httpSrv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           srv.Mux(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Str("store", cfg.StoreDriver).Msg("site listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(sctx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}

func seedFrom(ctx context.Context, cfg shared.Config, store domain.Store, cache domain.Cache) error {
	f, err := os.Open(cfg.SeedFile)
	if err != nil {
		return err
	}
	defer f.Close()
	doc, err := app.DecodeSeed(f)
	if err != nil {
		return err
	}
	rep, err := app.NewSeedService(store, cache, cfg.SeedWorkers).Run(ctx, doc)
	if err != nil {
		return err
	}
	log.Info().Interface("report", rep).Msg("seed loaded")
	return nil
}
