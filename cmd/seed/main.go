package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/webyarden/webyarden-backend/internal/catalog"
	"github.com/webyarden/webyarden-backend/internal/discounts"
	"github.com/webyarden/webyarden-backend/internal/packs"
	"github.com/webyarden/webyarden-backend/internal/projects"
	"github.com/webyarden/webyarden-backend/internal/seed"
	"github.com/webyarden/webyarden-backend/internal/services"
	"github.com/webyarden/webyarden-backend/internal/users"
	"github.com/webyarden/webyarden-backend/pkg/cache"
	"github.com/webyarden/webyarden-backend/pkg/config"
	"github.com/webyarden/webyarden-backend/pkg/db"
	"github.com/webyarden/webyarden-backend/pkg/logger"
	"github.com/webyarden/webyarden-backend/pkg/migrate"
	"github.com/webyarden/webyarden-backend/pkg/redis"
	"github.com/webyarden/webyarden-backend/pkg/richtext"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "seed"})

	_ = godotenv.Load()

	file := flag.String("file", "seed/catalog.yaml", "catalog YAML file")
	flag.Parse()

	cfg, err := config.Load()
	requireResource(logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "seed",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"file": *file,
	})

	cat, err := seed.LoadFile(*file)
	requireResource(logg, "catalog file", err)
	if cat.Admin != nil {
		if pw := os.Getenv("WEBYARDEN_SEED_ADMIN_PASSWORD"); pw != "" {
			cat.Admin.Password = pw
		}
	}

	dbClient, err := db.New(ctx, cfg.DB, logg)
	requireResource(logg, "database", err)
	defer dbClient.Close()

	requireResource(logg, "dev migrations", migrate.MaybeRunDev(ctx, cfg, logg, dbClient))

	// Redis is optional here; without it the API's read cache expires on its own TTL.
	var readCache *cache.Cache
	if redisClient, err := redis.New(ctx, cfg.Redis, logg); err != nil {
		logg.Warn(ctx, "redis unavailable, skipping cache invalidation")
	} else {
		defer redisClient.Close()
		readCache, err = cache.New(redisClient, cfg.Cache.TTL, logg)
		requireResource(logg, "cache", err)
	}

	serviceSvc, err := services.NewService(services.ServiceParams{DB: dbClient, Markdown: richtext.New(), Cache: readCache, Logger: logg})
	requireResource(logg, "services", err)
	packSvc, err := packs.NewService(packs.ServiceParams{DB: dbClient, Cache: readCache, Logger: logg})
	requireResource(logg, "packs", err)
	projectSvc, err := projects.NewService(projects.ServiceParams{DB: dbClient, Cache: readCache, Logger: logg})
	requireResource(logg, "projects", err)
	discountSvc, err := discounts.NewService(discounts.ServiceParams{
		DB:      dbClient,
		Catalog: catalog.NewLookup(dbClient.DB()),
		Cache:   readCache,
		Logger:  logg,
	})
	requireResource(logg, "discounts", err)

	seeder, err := seed.NewSeeder(seed.Params{
		Services:  serviceSvc,
		Packs:     packSvc,
		Projects:  projectSvc,
		Discounts: discountSvc,
		Users:     users.NewRepository(dbClient.DB()),
		Password:  cfg.Password,
		Logger:    logg,
	})
	requireResource(logg, "seeder", err)

	sum, err := seeder.Apply(ctx, cat)
	if err != nil {
		logg.Error(ctx, "seed failed", err)
		os.Exit(1)
	}
	fmt.Printf("seed complete: %d created, %d updated\n", sum.Created, sum.Updated)
}

func requireResource(logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	ctx := logg.WithField(context.Background(), "resource", resource)
	logg.Error(ctx, "seed dependency unavailable", err)
	os.Exit(1)
}
