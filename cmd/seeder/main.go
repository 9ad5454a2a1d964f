//cmd/seeder/main.go
package main

import (
	"context"
	"flag"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"github.com/unclebandit/kickstarter-backend/internal/config"
	"github.com/unclebandit/kickstarter-backend/internal/db"
	"github.com/unclebandit/kickstarter-backend/internal/logger"
)

func main() {
	dir := flag.String("dir", "seed", "directory holding the SQL files")
	schemaOnly := flag.Bool("schema-only", false, "create tables without inserting seed data")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		boot := logger.New(config.DefaultLogLevel, "development", "seeder")
		boot.Fatal().Err(err).Msg("failed to load config")
	}
	log := logger.New(cfg.LogLevel, cfg.AppEnv, "seeder")

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	conn, err := db.Init(ctx, cfg.DSN(), log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer conn.Close()

	seedFiles := []string{"schema.sql"}
	if !*schemaOnly {
		seedFiles = append(seedFiles, "users.sql", "campaigns.sql")
	}

	for _, name := range seedFiles {
		file := filepath.Join(*dir, name)
		content, err := os.ReadFile(file)
		if err != nil {
			log.Fatal().Err(err).Str("file", file).Msg("failed to read seed file")
		}

		if _, err := conn.ExecContext(ctx, string(content)); err != nil {
			log.Fatal().Err(err).Str("file", file).Msg("failed to execute seed file")
		}
		log.Info().Str("file", file).Msg("seeded")
	}

	log.Info().Msg("database seeding completed successfully")
}
