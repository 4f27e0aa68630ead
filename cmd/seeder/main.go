package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/gokatarajesh/trivia-api/internal/config"
	"github.com/gokatarajesh/trivia-api/internal/db/repository"
	"github.com/gokatarajesh/trivia-api/internal/db/sqlite"
	"github.com/gokatarajesh/trivia-api/internal/seed"
)

// pgStore joins the Postgres repositories into one seed.Store.
type pgStore struct {
	*repository.QuestionRepository
	*repository.CategoryRepository
}

func main() {
	file := flag.String("file", "db/seed/trivia.yaml", "Path to the YAML seed file")
	flag.Parse()

	log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()

	if os.Getenv("APP_ENV") != "production" {
		if err := godotenv.Load("configs/.env"); err != nil {
			log.Warn().Err(err).Msg("could not load .env file")
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	cfg, err := config.Load(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	fixture, err := seed.LoadFile(*file)
	if err != nil {
		log.Fatal().Err(err).Str("file", *file).Msg("failed to load seed file")
	}

	var store seed.Store
	switch cfg.Store.Driver {
	case config.DriverSQLite:
		s, err := sqlite.Open(ctx, cfg.Store.SQLitePath)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.Store.SQLitePath).Msg("failed to open sqlite store")
		}
		defer s.Close()
		store = s
	default:
		pool, err := pgxpool.New(ctx, cfg.Postgres.PoolConnString())
		if err != nil {
			log.Fatal().Err(err).Str("host", cfg.Postgres.Host).Msg("failed to connect to database")
		}
		defer pool.Close()
		store = pgStore{
			QuestionRepository: repository.NewQuestionRepository(pool),
			CategoryRepository: repository.NewCategoryRepository(pool),
		}
	}

	res, err := seed.Apply(ctx, store, fixture, log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("seeding failed")
	}
	log.Info().
		Str("store", cfg.Store.Driver).
		Int("categories", res.Categories).
		Int("inserted", res.Inserted).
		Int("skipped", res.Skipped).
		Msg("seed completed")
}
