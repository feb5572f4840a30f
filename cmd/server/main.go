package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"path"
	"runtime"
	"strconv"

	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/joho/godotenv/autoload"

	"bookfixtures/internal/config"
	"bookfixtures/internal/fixtures"
	"bookfixtures/internal/logger"
	"bookfixtures/internal/response"
	"bookfixtures/internal/server"
	"bookfixtures/internal/storage/runs"
)

var (
	logLevel  = config.GetEnvOrDefault("LOG_LEVEL", "debug")
	logFormat = config.GetEnvOrDefault("LOG_FORMAT", "text")
	dbConnStr = os.Getenv("DATABASE_URL")
	bindAddr  = config.GetEnvOrDefault("BIND_ADDR", ":8080")
	debugMode = config.GetBoolEnv("DEBUG_MODE")
	maxBooks   = config.GetEnvOrDefault("FIXTURE_MAX_BOOKS", strconv.Itoa(config.MaxBooks))
	maxAuthors = config.GetEnvOrDefault("FIXTURE_MAX_AUTHORS", "100000")
)

func main() {
	_, thisFile, _, _ := runtime.Caller(0)

	lvl, err := logger.ParseLevel(logLevel)
	if err != nil {
		lvl = slog.LevelDebug
	}
	logger.SetupSLog(lvl, logFormat, path.Dir(path.Dir(path.Dir(thisFile))), middleware.RequestIDKey)

	if err != nil {
		slog.Error("Invalid log level specified in LOG_LEVEL, one of debug, info, warn or error expected")
		os.Exit(1)
	}

	limit, err := strconv.ParseInt(maxBooks, 10, 64)
	if err != nil || limit < 1 || limit > config.MaxBooks {
		slog.Error("FIXTURE_MAX_BOOKS must be within 1.." + strconv.Itoa(config.MaxBooks))
		os.Exit(1)
	}

	authorLimit, err := strconv.Atoi(maxAuthors)
	if err != nil || authorLimit < 1 || authorLimit > config.MaxAuthors {
		slog.Error("FIXTURE_MAX_AUTHORS must be within 1.." + strconv.Itoa(config.MaxAuthors))
		os.Exit(1)
	}

	var ledger runs.Repository = runs.NewMemoryRepository(slog.Default(), 0)
	if dbConnStr != "" {
		cfg, err := pgxpool.ParseConfig(dbConnStr)
		if err != nil {
			slog.Error("Failed to parse DATABASE_URL: " + err.Error())
			os.Exit(1)
		}

		cfg.ConnConfig.Tracer = logger.NewPGXTracer()

		pg, err := pgxpool.NewWithConfig(context.Background(), cfg)
		if err != nil {
			slog.Error("failed to create postgres pool: " + err.Error())
			os.Exit(1)
		}

		repo := runs.NewPGXRepository(pg, slog.Default())
		if err := repo.EnsureSchema(context.Background()); err != nil {
			slog.Error("Failed to prepare run ledger: " + err.Error())
			os.Exit(1)
		}
		ledger = repo
	}

	runner := fixtures.NewRunner(ledger, slog.Default())
	// Per-request fixtures are small, chunk debug lines are enough.
	runner.ProgressEvery = 0

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Mount("/api", server.Handler(runner, ledger, server.Limits{Books: limit, Authors: authorLimit}, &response.Responder{DebugMode: debugMode}))

	slog.Info("Serving fixtures on " + bindAddr)
	slog.Error("aborting: " + http.ListenAndServe(bindAddr, r).Error())
	os.Exit(1)
}
