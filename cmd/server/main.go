package main

import (
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"schedule-optimizer-service/internal/adapters/cache"
	"schedule-optimizer-service/internal/adapters/geo"
	"schedule-optimizer-service/internal/adapters/repositories"
	"schedule-optimizer-service/internal/api"
	"schedule-optimizer-service/internal/config"
	"schedule-optimizer-service/internal/platform/db"
	"schedule-optimizer-service/internal/ports"
	"schedule-optimizer-service/internal/services"
)

// main is the application composition root.
// It wires concrete adapters (SQLite, Redis, ORS) behind ports and starts
// the HTTP server.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Info().Msg("no .env file found, using environment variables")
	}

	cfgPath := os.Getenv("SCHEDOPT_CONFIG")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatal().Err(err).Msg("loading configuration failed")
	}

	setupLogging(cfg.Logging)

	if cfg.Geo.APIKey == "" {
		log.Fatal().Msg("geo.api_key is required (SCHEDOPT_GEO__API_KEY)")
	}

	sqliteDB, err := db.OpenSQLite(cfg.Database.SQLitePath)
	if err != nil {
		log.Fatal().Err(err).Msg("opening sqlite database failed")
	}
	defer sqliteDB.Close()

	if err := repositories.InitSchema(sqliteDB); err != nil {
		log.Fatal().Err(err).Msg("initializing schema failed")
	}
	if cfg.Seed.Path != "" {
		if _, err := os.Stat(cfg.Seed.Path); err == nil {
			if err := repositories.SeedFromJSON(sqliteDB, cfg.Seed.Path); err != nil {
				log.Fatal().Err(err).Msg("seeding database failed")
			}
		}
	}
	if err := repositories.EnsureDefaultPreferences(sqliteDB, "4710 Kingsway, Burnaby, BC"); err != nil {
		log.Fatal().Err(err).Msg("ensuring default preferences failed")
	}

	// The geocode cache is Redis when configured, SQLite otherwise.
	var geocodeCache ports.GeocodeCache = cache.NewSqliteGeocodeCache(sqliteDB)
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		geocodeCache = cache.NewRedisGeocodeCache(client)
		log.Info().Str("addr", cfg.Redis.Addr).Msg("using redis geocode cache")
	}

	// Distance matrices can live in a shared Postgres so parallel
	// instances reuse each other's provider calls.
	var matrixStore ports.MatrixStore = cache.NewSqliteMatrixStore(sqliteDB)
	if cfg.Database.MatrixURL != "" {
		pg, err := db.OpenPostgres(cfg.Database.MatrixURL)
		if err != nil {
			log.Fatal().Err(err).Msg("opening matrix database failed")
		}
		defer pg.Close()
		matrixStore = cache.NewSQLMatrixStore(pg)
		log.Info().Msg("using postgres matrix store")
	}

	provider, err := geo.NewORSProvider(cfg.Geo.APIKey, geocodeCache, log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("constructing geo provider failed")
	}
	provider.SetEndpoint(cfg.Geo.BaseURL, cfg.Geo.Profile, cfg.Geo.Country)

	deps := services.Deps{
		Jobs:        repositories.NewSqliteJobRepository(sqliteDB),
		Preferences: repositories.NewSqlitePreferenceRepository(sqliteDB),
		Clusters:    repositories.NewSqliteClusterRepository(sqliteDB),
		Schedules:   repositories.NewSqliteScheduleRepository(sqliteDB),
		Patterns:    repositories.NewSqlitePatternStore(sqliteDB),
		Geo:         provider,
		MatrixStore: matrixStore,
		Log:         log.Logger,
	}

	router := api.NewRouter(deps)

	// Timeouts are tuned for cold-cache optimization runs (external API latency).
	log.Info().Str("addr", cfg.Server.Addr).Msg("server listening")
	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	log.Fatal().Err(srv.ListenAndServe()).Msg("server stopped")
}

func setupLogging(cfg config.LoggingConfig) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs

	if cfg.Pretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}
