package runs

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const table = "generation_run"

const schema = `CREATE TABLE IF NOT EXISTS generation_run (
	id              uuid PRIMARY KEY,
	status          text        NOT NULL,
	locale          text        NOT NULL,
	author_count    integer     NOT NULL,
	book_count      bigint      NOT NULL,
	chunk_size      integer     NOT NULL,
	seed            text        NOT NULL,
	target          text        NOT NULL,
	records_written bigint      NOT NULL DEFAULT 0,
	bytes_written   bigint      NOT NULL DEFAULT 0,
	error           text        NOT NULL DEFAULT '',
	started_at      timestamptz NOT NULL,
	finished_at     timestamptz
)`

func NewPGXRepository(pg *pgxpool.Pool, l *slog.Logger) *PGXRepository {
	return &PGXRepository{pg: pg, g: goqu.Dialect("postgres"), l: l}
}

type PGXRepository struct {
	pg *pgxpool.Pool
	g  goqu.DialectWrapper
	l  *slog.Logger
}

type pgxRun struct {
	Id             string     `db:"id"`
	Status         string     `db:"status"`
	Locale         string     `db:"locale"`
	AuthorCount    int        `db:"author_count"`
	BookCount      int64      `db:"book_count"`
	ChunkSize      int        `db:"chunk_size"`
	Seed           string     `db:"seed"`
	Target         string     `db:"target"`
	RecordsWritten int64      `db:"records_written"`
	BytesWritten   int64      `db:"bytes_written"`
	Error          string     `db:"error"`
	StartedAt      time.Time  `db:"started_at"`
	FinishedAt     *time.Time `db:"finished_at"`
}

func (r *pgxRun) intoCommon(l *slog.Logger, ctx context.Context) *Run {
	seed, err := strconv.ParseUint(r.Seed, 10, 64)
	if err != nil {
		l.ErrorContext(ctx, "Failed to parse seed stored in DB ("+r.Seed+"): "+err.Error())
		seed = 0
	}

	return &Run{
		Id:             r.Id,
		Status:         Status(r.Status),
		Locale:         r.Locale,
		AuthorCount:    r.AuthorCount,
		BookCount:      r.BookCount,
		ChunkSize:      r.ChunkSize,
		Seed:           seed,
		Target:         r.Target,
		RecordsWritten: r.RecordsWritten,
		BytesWritten:   r.BytesWritten,
		Error:          r.Error,
		StartedAt:      r.StartedAt,
		FinishedAt:     r.FinishedAt,
	}
}

// EnsureSchema creates the ledger table when it does not exist yet.
func (p *PGXRepository) EnsureSchema(ctx context.Context) error {
	_, err := p.pg.Exec(ctx, schema)
	return err
}

func (p *PGXRepository) Start(ctx context.Context, run *Run) error {
	sql, params, err := p.startSQL(run)
	if err != nil {
		return err
	}

	_, err = p.pg.Exec(ctx, sql, params...)
	return err
}

func (p *PGXRepository) startSQL(run *Run) (string, []any, error) {
	return p.g.Insert(table).
		Rows(pgxRun{
			Id:          run.Id,
			Status:      string(run.Status),
			Locale:      run.Locale,
			AuthorCount: run.AuthorCount,
			BookCount:   run.BookCount,
			ChunkSize:   run.ChunkSize,
			Seed:        strconv.FormatUint(run.Seed, 10),
			Target:      run.Target,
			StartedAt:   run.StartedAt,
		}).
		ToSQL()
}

func (p *PGXRepository) Finish(ctx context.Context, run *Run) error {
	sql, params, err := p.finishSQL(run)
	if err != nil {
		return err
	}

	_, err = p.pg.Exec(ctx, sql, params...)
	return err
}

func (p *PGXRepository) finishSQL(run *Run) (string, []any, error) {
	return p.g.Update(table).
		Set(goqu.Record{
			"status":          string(run.Status),
			"records_written": run.RecordsWritten,
			"bytes_written":   run.BytesWritten,
			"error":           run.Error,
			"finished_at":     run.FinishedAt,
		}).
		Where(goqu.C("id").Eq(run.Id)).
		ToSQL()
}

// GetById returns nil without querying when id is not a uuid, as no run can have it.
func (p *PGXRepository) GetById(ctx context.Context, id string) (*Run, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, nil
	}

	sql, params, err := p.getByIdSQL(parsed)
	if err != nil {
		return nil, err
	}

	var row pgxRun

	err = pgxscan.Get(ctx, p.pg, &row, sql, params...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = nil
		}
		return nil, err
	}

	return row.intoCommon(p.l, ctx), nil
}

func (p *PGXRepository) getByIdSQL(id uuid.UUID) (string, []any, error) {
	return p.g.From(table).
		Where(goqu.C("id").Eq(id.String())).
		ToSQL()
}

func (p *PGXRepository) List(ctx context.Context, limit uint) ([]*Run, error) {
	sql, params, err := p.listSQL(limit)
	if err != nil {
		return nil, err
	}

	var rows []pgxRun

	err = pgxscan.Select(ctx, p.pg, &rows, sql, params...)
	if err != nil {
		return nil, err
	}

	ret := make([]*Run, 0, len(rows))
	for _, row := range rows {
		ret = append(ret, row.intoCommon(p.l, ctx))
	}

	return ret, nil
}

func (p *PGXRepository) listSQL(limit uint) (string, []any, error) {
	return p.g.From(table).
		Order(goqu.C("started_at").Desc()).
		Limit(limit).
		ToSQL()
}
