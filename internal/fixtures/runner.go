package fixtures

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"bookfixtures/internal/config"
	"bookfixtures/internal/emitter"
	"bookfixtures/internal/generator"
	"bookfixtures/internal/logger"
	"bookfixtures/internal/source"
	"bookfixtures/internal/storage/runs"
)

type Runner struct {
	Ledger runs.Repository
	Logger *slog.Logger
	// ProgressEvery logs an info line each time that many more records were
	// written. Zero disables it; chunks are always logged at debug level.
	ProgressEvery int64
}

func NewRunner(ledger runs.Repository, l *slog.Logger) *Runner {
	if ledger == nil {
		ledger = runs.NewMemoryRepository(l, 0)
	}

	return &Runner{Ledger: ledger, Logger: l, ProgressEvery: 100_000}
}

// NewBookGenerator builds the field source, author pool and book sequence
// for one run of cfg.
func NewBookGenerator(cfg config.Generation) (*generator.BookGenerator, error) {
	src, err := source.New(cfg.Locale, cfg.Seed)
	if err != nil {
		return nil, err
	}

	pool := generator.NewAuthorPool(generator.GenerateAuthors(src, cfg.AuthorCount), src)

	return generator.NewBookGenerator(pool, src, generator.BookOptions{
		Limit:    cfg.BookCount,
		Released: cfg.Released(),
	})
}

// Run generates cfg.BookCount books into sink. target names the sink in the ledger.
// The caller keeps ownership of sink.
func (r *Runner) Run(ctx context.Context, cfg config.Generation, sink io.Writer, target string) (*runs.Run, error) {
	return r.execute(ctx, cfg, target, func() (io.Writer, func() error, error) {
		return sink, func() error { return nil }, nil
	})
}

// RunToFile writes one file per entry of cfg.OutputPaths. With a fixed seed
// every file gets its own seed derived from it, so files differ but stay
// reproducible. It stops at the first failing file.
func (r *Runner) RunToFile(ctx context.Context, cfg config.Generation) ([]*runs.Run, error) {
	paths := cfg.OutputPaths()
	done := make([]*runs.Run, 0, len(paths))

	for ix, path := range paths {
		fileCfg := cfg
		fileCfg.OutputPath = path
		if cfg.Seed != 0 {
			fileCfg.Seed = cfg.Seed + uint64(ix)
		}

		run, err := r.execute(ctx, fileCfg, path, func() (io.Writer, func() error, error) {
			return openFile(path)
		})
		if run != nil {
			done = append(done, run)
		}
		if err != nil {
			return done, fmt.Errorf("generating %s: %w", path, err)
		}
	}

	return done, nil
}

type opener func() (io.Writer, func() error, error)

func (r *Runner) execute(ctx context.Context, cfg config.Generation, target string, open opener) (run *runs.Run, err error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	run = &runs.Run{
		Id:          uuid.NewString(),
		Status:      runs.StatusInProgress,
		Locale:      cfg.Locale,
		AuthorCount: cfg.AuthorCount,
		BookCount:   cfg.BookCount,
		ChunkSize:   cfg.ChunkSize,
		Seed:        cfg.Seed,
		Target:      target,
		StartedAt:   time.Now(),
	}
	ctx = logger.WithRunId(ctx, run.Id)

	if err := r.Ledger.Start(ctx, run); err != nil {
		return run, fmt.Errorf("recording run start: %w", err)
	}

	defer func() {
		now := time.Now()
		run.FinishedAt = &now
		if err != nil {
			run.Status = runs.StatusFailed
			run.Error = err.Error()
		} else {
			run.Status = runs.StatusComplete
		}

		if finishErr := r.Ledger.Finish(ctx, run); finishErr != nil {
			r.Logger.ErrorContext(ctx, "Failed to record run finish: "+finishErr.Error())
		}
	}()

	books, err := NewBookGenerator(cfg)
	if err != nil {
		return run, err
	}

	sink, closeSink, err := open()
	if err != nil {
		return run, err
	}
	defer func() {
		if closeErr := closeSink(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	em := emitter.Emitter{
		ChunkSize: cfg.ChunkSize,
		OnChunk:   r.progress(ctx),
	}

	stats, err := em.Emit(books, cfg.BookCount, sink)
	run.RecordsWritten = stats.Records
	run.BytesWritten = stats.Bytes

	return run, err
}

func (r *Runner) progress(ctx context.Context) func(emitter.Chunk) {
	return func(c emitter.Chunk) {
		r.Logger.DebugContext(ctx, "Wrote chunk "+humanize.Comma(int64(c.Number)),
			slog.Int("size", c.Size))

		if r.ProgressEvery <= 0 {
			return
		}

		before := c.Written - int64(c.Size)
		if c.Written/r.ProgressEvery != before/r.ProgressEvery {
			r.Logger.InfoContext(ctx, humanize.Comma(c.Written)+" rows processed ("+
				humanize.Bytes(uint64(c.Bytes))+")")
		}
	}
}
