package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"animehub/internal/auth"
	"animehub/internal/browse"
	"animehub/internal/catalog"
	"animehub/internal/ops"
	"animehub/internal/resolve"
	"animehub/internal/snapshot"
	"animehub/internal/upstream"
	"animehub/pkg/database"
	"animehub/pkg/models"
	"animehub/pkg/utils"
)

// cacheEndpoints are the upstream listing endpoints bulk-loaded into the
// catalog cache. Only latest is reliably populated upstream; the other
// categories repeat its entries and the dedup pass would discard them.
var cacheEndpoints = []string{"latest"}

func main() {
	cfg := utils.LoadConfig()

	dbCfg := database.DefaultConfig()
	db := database.MustOpen(dbCfg)
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}
	store := snapshot.NewStore(db)

	client := upstream.NewClient(cfg.APIBase, cfg.MaxRetries, cfg.RetryDelay)
	fetcher := catalog.NewFetcher(client)
	loader := catalog.NewLoader(fetcher, cacheEndpoints, cfg.CacheMaxPages, cfg.LoadConcurrency, cfg.EmptyPageStop, cfg.RequestDelay)

	hub := ops.NewHub()
	loader.Notifier = hub

	cache := catalog.NewCache(loader)
	cache.OnLoaded = func(entries []models.AnimeEntry) {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := store.Save(ctx, entries); err != nil {
			log.Printf("[snapshot] save failed: %v", err)
			return
		}
		log.Printf("[snapshot] saved %d entries", len(entries))
	}

	warmAndLoad(cache, store)

	slugs := resolve.NewSlugResolver(cache, client)
	episodes := resolve.NewEpisodeResolver(client)

	router := gin.Default()
	_ = router.SetTrustedProxies([]string{"127.0.0.1"})
	router.Use(ops.RequestID())

	// Browse surface (public)
	browseHandler := browse.NewHandler(fetcher, client, slugs, episodes, cfg.MaxPages)
	browseHandler.RegisterRoutes(router.Group("/api"))

	// Ops surface
	opsHandler := ops.NewHandler(cache, client, hub, cfg)
	opsHandler.RegisterRoutes(router)

	// Auth + protected reload trigger
	authCfg := utils.LoadAuthConfig()
	tokenSvc := auth.TokenService{
		Secret:   []byte(authCfg.JWTSecret),
		Issuer:   authCfg.JWTIssuer,
		Duration: authCfg.JWTDuration,
	}
	authHandler := auth.NewHandler(tokenSvc, authCfg.AdminHash)
	authHandler.RegisterRoutes(router.Group("/auth"))

	protected := router.Group("/")
	if authCfg.AdminHash != "" {
		protected.Use(auth.AuthMiddleware(tokenSvc))
	} else {
		log.Println("[ops] ANIMEHUB_ADMIN_HASH not set, cache reload is unprotected")
	}
	opsHandler.RegisterReload(protected)

	httpSrv := &http.Server{
		Addr:    ":" + strconv.Itoa(cfg.Port),
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("HTTP API server listening on %s", httpSrv.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Printf("shutdown signal received: %s", sig)
	case err := <-errCh:
		log.Printf("server error: %v", err)
	}

	log.Println("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Printf("http shutdown error: %v", err)
	}
	log.Println("server stopped")
}

// warmAndLoad seeds the cache from the sqlite snapshot when one exists and
// kicks off the startup background load. Requests arriving before the load
// finishes see the warmed snapshot instead of blocking.
func warmAndLoad(cache *catalog.Cache, store *snapshot.Store) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	entries, err := store.Load(ctx)
	if err != nil {
		log.Printf("[snapshot] load failed: %v", err)
	} else {
		cache.Warm(entries)
	}

	log.Println("[catalog] starting background cache load")
	cache.Reload()
}
