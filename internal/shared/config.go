package shared

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv         string
	LogFile        string
	HTTPAddr       string
	MetricsAddr    string
	MySQLDSN       string
	RedisAddr      string
	RedisDB        int
	RedisPass      string
	SeedURL        string
	ListingBaseURL string
	ImagesDir      string
	ImageWorkers   int
	ImageTimeout   time.Duration
	FetchRPS       int
	FetchTimeout   time.Duration
	CacheTTL       time.Duration
	SchemaLockTTL  time.Duration
}

// Load reads the environment, after merging a .env file from the working
// directory if one exists. Real environment variables win over .env.
func Load() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Msg(".env could not be parsed")
	}

	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
			log.Warn().Str("key", k).Str("value", v).Msg("not an integer, using default")
		}
		return def
	}
	secs := func(k string, def int) time.Duration { return time.Duration(atoi(k, def)) * time.Second }

	c := Config{
		AppEnv:         env("APP_ENV", "prod"),
		LogFile:        env("LOG_FILE", ""),
		HTTPAddr:       env("HTTP_ADDR", ":8080"),
		MetricsAddr:    env("METRICS_ADDR", ":9100"),
		MySQLDSN:       env("MYSQL_DSN", "root:root@tcp(localhost:3306)/trip?parseTime=true&charset=utf8mb4,utf8&loc=UTC"),
		RedisAddr:      env("REDIS_ADDR", "localhost:6379"),
		RedisDB:        atoi("REDIS_DB", 0),
		RedisPass:      env("REDIS_PASSWORD", ""),
		SeedURL:        env("SEED_URL", "https://uk.trip.com/hotels/?locale=en-GB&curr=GBP"),
		ListingBaseURL: env("LISTING_BASE_URL", "https://uk.trip.com/hotels/list"),
		ImagesDir:      env("IMAGES_DIR", "images"),
		ImageWorkers:   atoi("IMAGE_WORKERS", 4),
		ImageTimeout:   secs("IMAGE_TIMEOUT_SECONDS", 15),
		FetchRPS:       atoi("FETCH_RPS", 2),
		FetchTimeout:   secs("FETCH_TIMEOUT_SECONDS", 30),
		CacheTTL:       secs("CACHE_TTL_SECONDS", 900),
		SchemaLockTTL:  secs("SCHEMA_LOCK_TTL_SECONDS", 30),
	}
	if c.ImageWorkers <= 0 {
		log.Warn().Int("workers", c.ImageWorkers).Msg("IMAGE_WORKERS must be positive, using 4")
		c.ImageWorkers = 4
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
