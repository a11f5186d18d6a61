// Copyright (c) 2026 PMR Atlas. All rights reserved.

// Command seed loads reference documents from a YAML fixture file into
// PostgreSQL. Documents that already exist are skipped.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"github.com/carolinavmo/pmr-atlas/internal/core/document"
	"github.com/carolinavmo/pmr-atlas/internal/core/translation"
	"github.com/carolinavmo/pmr-atlas/internal/platform/constants"
	"github.com/carolinavmo/pmr-atlas/internal/platform/migration"
	pgstore "github.com/carolinavmo/pmr-atlas/internal/platform/postgres"
	"github.com/carolinavmo/pmr-atlas/internal/seed"
)

type command struct {
	File          string        `help:"Fixture file." type:"existingfile" default:"data/seed/documents.yaml"`
	DatabaseURL   string        `help:"PostgreSQL connection string." env:"DATABASE_URL" required:""`
	Migrate       bool          `help:"Apply migrations before seeding."`
	MigrationPath string        `help:"Migrations directory." env:"MIGRATION_PATH" default:"./data/migrations"`
	Timeout       time.Duration `help:"Overall deadline." default:"2m"`
	Debug         bool          `help:"Enable debug logging." env:"DEBUG"`
}

func (cmd *command) Run(logger *slog.Logger) error {
	context, cancel := context.WithTimeout(context.Background(), cmd.Timeout)
	defer cancel()

	file, err := os.Open(cmd.File)
	if err != nil {
		return err
	}
	defer file.Close()

	documents, err := seed.Load(file)
	if err != nil {
		return err
	}

	if cmd.Migrate {
		if err := migration.RunUp(cmd.DatabaseURL, cmd.MigrationPath, cmd.Debug, logger); err != nil {
			return err
		}
	}

	pool, err := pgstore.NewPool(context, cmd.DatabaseURL, logger)
	if err != nil {
		return err
	}
	defer pool.Close()

	// Seeding never translates.
	service := document.NewService(document.NewPostgresRepository(pool), translation.NewOrchestrator(translation.Unavailable{}, nil, 1, logger), logger)

	result, err := seed.Run(context, service, documents, logger)
	if err != nil {
		return err
	}

	logger.Info("seed_completed",
		slog.String("file", cmd.File),
		slog.Int("created", result.Created),
		slog.Int("skipped", result.Skipped),
	)
	return nil
}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintln(os.Stderr, "seed: read .env:", err)
		os.Exit(1)
	}

	var cli command
	ctx := kong.Parse(&cli,
		kong.Name("seed"),
		kong.Description("Load reference documents from a YAML fixture file."),
		kong.UsageOnError(),
	)

	level := slog.LevelInfo
	if cli.Debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})).
		With(slog.String("app", constants.AppName+"-seed"))

	ctx.FatalIfErrorf(ctx.Run(logger))
}
