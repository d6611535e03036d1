package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"trip_hotels/internal/adapters/observability"
	redisad "trip_hotels/internal/adapters/redis"
	"trip_hotels/internal/adapters/trip"
	"trip_hotels/internal/app"
	"trip_hotels/internal/domain"
	"trip_hotels/internal/shared"
	"trip_hotels/internal/storage/localfs"
	mysqlrepo "trip_hotels/internal/storage/mysql"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	cfg := shared.Load()

	// 1) initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogFile)
	observability.Serve(cfg.MetricsAddr)

	log.Info().
		Str("seed", cfg.SeedURL).
		Int("workers", cfg.ImageWorkers).
		Str("images", cfg.ImagesDir).
		Msg("scraper starting")

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("db ping ok")
	repo := mysqlrepo.New(db)

	// redis is optional for a single scraper; without it there is no
	// cross-process schema lock and no API cache invalidation
	var (
		cache  domain.Cache
		locker domain.Locker
	)
	rc := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	if err := rc.Client().Ping(ctx).Err(); err != nil {
		log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unavailable, running without lock and cache")
	} else {
		cache = rc
		locker = redisad.NewLocker(rc.Client(), cfg.SchemaLockTTL)
	}

	store, err := localfs.New(cfg.ImagesDir)
	if err != nil {
		log.Fatal().Err(err).Msg("image store")
	}

	ing := app.NewIngestionService(
		app.NewMarkerLocator("", ""),
		app.NewSchemaRegistry(repo, locker),
		app.NewImageFetcher(&http.Client{}, store, cfg.ImageTimeout),
		repo,
		cache,
		cfg.ImageWorkers,
	)
	client := trip.New(cfg.FetchRPS, cfg.FetchTimeout)

	// 2) seed page → random city
	seed := mustFetch(ctx, client, cfg.SeedURL)
	cityID, ok := trip.PickCity(trip.CityIDs(string(seed)))
	if !ok {
		log.Fatal().Str("url", cfg.SeedURL).Msg("no city ids on seed page")
	}
	listURL, err := trip.ListingURL(cfg.ListingBaseURL, cityID, time.Now())
	if err != nil {
		log.Fatal().Err(err).Msg("listing url")
	}
	log.Info().Str("city_id", cityID).Str("url", listURL).Msg("city picked")

	// 3) listing page → pipeline
	page := mustFetch(ctx, client, listURL)
	res, err := ing.IngestPage(ctx, string(page))
	if err != nil {
		log.Fatal().Err(err).Str("url", listURL).Msg("ingest failed")
	}
	for _, s := range res.Skipped {
		log.Debug().Int("index", s.Index).Str("reason", s.Reason).Str("detail", s.Detail).Msg("skipped record")
	}
	log.Info().
		Str("partition", res.Partition).
		Str("schema", string(res.Schema)).
		Int("attempted", res.Attempted).
		Int("persisted", res.Persisted).
		Int("skipped", len(res.Skipped)).
		Msg("scrape completed")
}

func mustFetch(ctx context.Context, f domain.PageFetcher, url string) []byte {
	body, status, err := f.Fetch(ctx, url)
	if err != nil {
		log.Fatal().Err(err).Str("url", url).Msg("fetch failed")
	}
	if status < 200 || status > 299 {
		log.Fatal().Int("status", status).Str("url", url).Msg("unexpected status")
	}
	return body
}
