package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"path"
	"runtime"

	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/dustin/go-humanize"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/joho/godotenv/autoload"

	"bookfixtures/internal/config"
	"bookfixtures/internal/emitter"
	"bookfixtures/internal/fixtures"
	"bookfixtures/internal/logger"
	"bookfixtures/internal/storage/runs"
)

var (
	logLevel  = config.GetEnvOrDefault("LOG_LEVEL", "info")
	logFormat = config.GetEnvOrDefault("LOG_FORMAT", "text")
	dbConnStr = os.Getenv("DATABASE_URL")
)

func main() {
	_, thisFile, _, _ := runtime.Caller(0)

	lvl, err := logger.ParseLevel(logLevel)
	if err != nil {
		lvl = slog.LevelInfo
	}
	logger.SetupSLog(lvl, logFormat, path.Dir(path.Dir(path.Dir(thisFile))), nil)

	if err != nil {
		slog.Error("Invalid log level specified in LOG_LEVEL, one of debug, info, warn or error expected")
		os.Exit(1)
	}

	cfg, err := config.FromEnv()
	if err != nil {
		slog.Error("Invalid environment: " + err.Error())
		os.Exit(1)
	}

	flag.StringVar(&cfg.Locale, "locale", cfg.Locale, "locale of generated names and titles (en, ja)")
	flag.IntVar(&cfg.AuthorCount, "authors", cfg.AuthorCount, "size of the author pool")
	flag.Int64Var(&cfg.BookCount, "books", cfg.BookCount, "number of books to write per file")
	flag.IntVar(&cfg.ChunkSize, "chunk", cfg.ChunkSize, "books serialized and written per chunk")
	flag.IntVar(&cfg.ReleasedFrom, "from", cfg.ReleasedFrom, "earliest release year")
	flag.IntVar(&cfg.ReleasedTo, "to", cfg.ReleasedTo, "latest release year")
	flag.StringVar(&cfg.OutputPath, "output", cfg.OutputPath, "output file")
	flag.Uint64Var(&cfg.Seed, "seed", cfg.Seed, "random seed, 0 picks one")
	flag.IntVar(&cfg.Files, "files", cfg.Files, "number of files to write")
	flag.Parse()

	if err := cfg.Validate(); err != nil {
		slog.Error("Invalid configuration: " + err.Error())
		os.Exit(1)
	}

	os.Exit(generate(context.Background(), cfg))
}

// generate runs cfg and returns the process exit code. Deferred cleanup such as
// closing the ledger pool runs before main exits.
func generate(ctx context.Context, cfg config.Generation) int {
	var ledger runs.Repository = runs.NewMemoryRepository(slog.Default(), cfg.Files)
	if dbConnStr != "" {
		pgCfg, err := pgxpool.ParseConfig(dbConnStr)
		if err != nil {
			slog.Error("Failed to parse DATABASE_URL: " + err.Error())
			return 1
		}

		pgCfg.ConnConfig.Tracer = logger.NewPGXTracer()

		pg, err := pgxpool.NewWithConfig(ctx, pgCfg)
		if err != nil {
			slog.Error("failed to create postgres pool: " + err.Error())
			return 1
		}
		defer pg.Close()

		repo := runs.NewPGXRepository(pg, slog.Default())
		if err := repo.EnsureSchema(ctx); err != nil {
			slog.Error("Failed to prepare run ledger: " + err.Error())
			return 1
		}
		ledger = repo
	}

	runner := fixtures.NewRunner(ledger, slog.Default())

	done, err := runner.RunToFile(ctx, cfg)
	if err != nil {
		attrs := []any{slog.Int("files_done", len(done))}
		if ix, ok := failingRecord(err); ok {
			attrs = append(attrs, slog.Int64("record", ix))
		}
		slog.Error("Generation failed: "+err.Error(), attrs...)
		return 1
	}

	var records, bytes int64
	for _, run := range done {
		records += run.RecordsWritten
		bytes += run.BytesWritten
	}

	slog.Info("Generated " + humanize.Comma(records) + " books in " + humanize.Comma(int64(len(done))) +
		" file(s), " + humanize.Bytes(uint64(bytes)))

	return 0
}

func failingRecord(err error) (int64, bool) {
	var recErr *emitter.RecordError
	if errors.As(err, &recErr) {
		return recErr.Index, true
	}

	var ioErr *emitter.IOError
	if errors.As(err, &ioErr) && ioErr.Index >= 0 {
		return ioErr.Index, true
	}

	return 0, false
}
