package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"time"

	_ "github.com/lib/pq"

	"docshost/internal/platform/config"
	"docshost/internal/platform/httpserver"
	"docshost/internal/platform/logger"
	platformmetrics "docshost/internal/platform/metrics"
	platformredis "docshost/internal/platform/redis"
	projecthandler "docshost/internal/project/handler"
	projectmetrics "docshost/internal/project/metrics"
	projectservice "docshost/internal/project/service"
	"docshost/internal/project/store"
	"docshost/internal/project/store/memory"
	"docshost/internal/project/store/postgres"
	"docshost/internal/resolver"
	"docshost/internal/resolver/cache"
	resolverhandler "docshost/internal/resolver/handler"
	resolvermetrics "docshost/internal/resolver/metrics"
	resolverservice "docshost/internal/resolver/service"
	httptransport "docshost/internal/transport/http"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	var projects store.ProjectStore = memory.New()
	if cfg.Postgres.URL != "" {
		db, err := sql.Open("postgres", cfg.Postgres.URL)
		if err != nil {
			log.Error("opening postgres failed", "error", err.Error())
			os.Exit(1)
		}
		defer db.Close()
		if err := db.Ping(); err != nil {
			log.Error("postgres ping failed", "error", err.Error())
			os.Exit(1)
		}
		projects = postgres.New(db)
	}

	var urlCache *cache.Cache
	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("connecting to redis failed", "error", err.Error())
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		urlCache = cache.New(redisClient.Client, cfg.Redis.CacheTTL)
	}

	// The default resolver; alternate implementations can be substituted
	// here without touching the service or handlers.
	urlResolver := resolver.New(resolver.Config{
		UseSubdomain:          cfg.Resolver.UseSubdomain,
		PublicDomain:          cfg.Resolver.PublicDomain,
		ProductionDomain:      cfg.Resolver.ProductionDomain,
		ExternalVersionDomain: cfg.Resolver.ExternalVersionDomain,
		PublicDomainUsesHTTPS: cfg.Resolver.PublicDomainUsesHTTPS,
	})

	resolveService := resolverservice.New(projects, urlResolver, log,
		resolverservice.WithCache(urlCache),
		resolverservice.WithMetrics(resolvermetrics.New()),
	)
	projectService := projectservice.New(projects,
		projectservice.WithMetrics(projectmetrics.New()),
	)

	router := httptransport.NewRouter(
		resolverhandler.New(resolveService, log),
		projecthandler.New(projectService, log),
		platformmetrics.New(),
	)

	srv := httpserver.New(cfg.Server.Addr, router)

	log.Info("starting docshost resolver", "addr", cfg.Server.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err.Error())
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err.Error())
		os.Exit(1)
	}
}
