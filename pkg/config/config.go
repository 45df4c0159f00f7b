package config

import (
	"EmberWatch/pkg/cache"
	"EmberWatch/pkg/logger"
	"EmberWatch/pkg/util"
	"log"
	"os"
	"time"
)

// config/config.go
type Config struct {
	Addr      string `env:"ADDR"`
	Mode      string `env:"MODE"`
	APIPrefix string `env:"API_PREFIX"`
	DBDriver  string `env:"DB_DRIVER"`
	DSN       string `env:"DSN"`
	Log       logger.LogConfig
	Cache     cache.Config

	GoogleMapsAPIKey string        `env:"GOOGLE_MAPS_API_KEY"`
	GeocodeTimeout   time.Duration `env:"GEOCODE_TIMEOUT_SECONDS"`
	GeocodeCacheTTL  time.Duration `env:"GEOCODE_CACHE_TTL_MINUTES"`

	RateLimit            string        `env:"RATE_LIMIT"`
	DirectoryRefreshCron string        `env:"DIRECTORY_REFRESH_CRON"`
	DirectoryCacheTTL    time.Duration `env:"DIRECTORY_CACHE_TTL_SECONDS"`
}

var GlobalConfig *Config

func Load() error {
	// 1. Load the .env file for the current environment.
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}
	err := util.LoadEnv(env)
	if err != nil {
		log.Printf("Failed to load .env file: %v", err)
	}

	// 2. Build the global config from the environment.
	GlobalConfig = &Config{
		Addr:      util.GetEnvDefault("ADDR", ":5000"),
		Mode:      util.GetEnvDefault("MODE", "debug"),
		APIPrefix: util.GetEnvDefault("API_PREFIX", "/api"),
		DBDriver:  util.GetEnvDefault("DB_DRIVER", "sqlite"),
		DSN:       util.GetEnvDefault("DSN", "emberwatch.db"),
		Log: logger.LogConfig{
			Level:      util.GetEnv("LOG_LEVEL"),
			Filename:   util.GetEnv("LOG_FILENAME"),
			MaxSize:    int(util.GetIntEnv("LOG_MAX_SIZE")),
			MaxAge:     int(util.GetIntEnv("LOG_MAX_AGE")),
			MaxBackups: int(util.GetIntEnv("LOG_MAX_BACKUPS")),
		},
		Cache: cache.Config{
			Type: util.GetEnvDefault("CACHE_TYPE", "gocache"),
			Redis: cache.RedisConfig{
				Addr:     util.GetEnvDefault("REDIS_ADDR", "localhost:6379"),
				Password: util.GetEnv("REDIS_PASSWORD"),
				DB:       int(util.GetIntEnv("REDIS_DB")),
				PoolSize: int(util.GetIntEnv("REDIS_POOL_SIZE")),
			},
			Local: cache.LocalConfig{
				DefaultExpiration: 5 * time.Minute,
				CleanupInterval:   10 * time.Minute,
			},
		},
		GoogleMapsAPIKey:     util.GetEnv("GOOGLE_MAPS_API_KEY"),
		GeocodeTimeout:       durationEnv("GEOCODE_TIMEOUT_SECONDS", time.Second, 5*time.Second),
		GeocodeCacheTTL:      durationEnv("GEOCODE_CACHE_TTL_MINUTES", time.Minute, 30*time.Minute),
		RateLimit:            util.GetEnvDefault("RATE_LIMIT", "100-M"),
		DirectoryRefreshCron: util.GetEnvDefault("DIRECTORY_REFRESH_CRON", "@every 1m"),
		DirectoryCacheTTL:    durationEnv("DIRECTORY_CACHE_TTL_SECONDS", time.Second, 60*time.Second),
	}
	return nil
}

func durationEnv(key string, unit, def time.Duration) time.Duration {
	if n := util.GetIntEnv(key); n > 0 {
		return time.Duration(n) * unit
	}
	return def
}
