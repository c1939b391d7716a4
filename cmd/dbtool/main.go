package main

import (
	"database/sql"
	"fmt"
	"os"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"schedule-optimizer-service/internal/adapters/repositories"
	"schedule-optimizer-service/internal/platform/db"
)

// dbtool prepares databases outside the server process: it initializes and
// seeds the local SQLite store, and creates the shared Postgres matrix
// schema used when several optimizer instances point database.matrix_url
// at the same server.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Info().Msg("no .env file found, using environment variables")
	}

	sqlitePath := os.Getenv("SCHEDOPT_DATABASE__SQLITE_PATH")
	if sqlitePath == "" {
		sqlitePath = "schedopt.db"
	}
	seedPath := os.Getenv("SCHEDOPT_SEED__PATH")
	depot := os.Getenv("SCHEDOPT_DEPOT_ADDRESS")
	if depot == "" {
		depot = "4710 Kingsway, Burnaby, BC"
	}

	sqliteDB, err := db.OpenSQLite(sqlitePath)
	if err != nil {
		log.Fatal().Err(err).Msg("opening sqlite database failed")
	}
	defer sqliteDB.Close()

	log.Info().Str("path", sqlitePath).Msg("initializing sqlite schema")
	if err := repositories.InitSchema(sqliteDB); err != nil {
		log.Fatal().Err(err).Msg("schema initialization failed")
	}

	if seedPath != "" {
		log.Info().Str("path", seedPath).Msg("seeding jobs and schedule history")
		if err := repositories.SeedFromJSON(sqliteDB, seedPath); err != nil {
			log.Fatal().Err(err).Msg("seeding failed")
		}
	}
	if err := repositories.EnsureDefaultPreferences(sqliteDB, depot); err != nil {
		log.Fatal().Err(err).Msg("ensuring default preferences failed")
	}
	log.Info().Msg("sqlite store ready")

	matrixURL := os.Getenv("SCHEDOPT_DATABASE__MATRIX_URL")
	if strings.TrimSpace(matrixURL) == "" {
		return
	}

	pg, err := db.OpenPostgres(matrixURL)
	if err != nil {
		log.Fatal().Err(err).Msg("opening matrix database failed")
	}
	defer pg.Close()

	log.Info().Msg("initializing matrix schema")
	if err := initMatrixSchema(pg); err != nil {
		log.Fatal().Err(err).Msg("matrix schema initialization failed")
	}
	log.Info().Msg("matrix schema ready")
}

func initMatrixSchema(pg *sql.DB) error {
	statements := []string{
		`
		CREATE TABLE IF NOT EXISTS optimization_matrix (
			run_id TEXT PRIMARY KEY,
			set_key TEXT NOT NULL,
			locations JSONB NOT NULL,
			coords JSONB NOT NULL,
			durations JSONB NOT NULL,
			distances JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		`,
		`
		CREATE INDEX IF NOT EXISTS idx_optimization_matrix_set_key
		ON optimization_matrix (set_key, created_at DESC);
		`,
	}

	for i, stmt := range statements {
		if _, err := pg.Exec(stmt); err != nil {
			return fmt.Errorf("init matrix schema: exec statement #%d: %w", i+1, err)
		}
	}

	return nil
}
