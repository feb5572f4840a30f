package runs

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const runId = "7b1e7f4e-5d3c-4a8e-9f0b-2c6d1e8a9b10"

func newPGXRepository() *PGXRepository {
	return NewPGXRepository(nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func Test_PGXRepository_StartSQL(t *testing.T) {
	sql, params, err := newPGXRepository().startSQL(&Run{
		Id:          runId,
		Status:      StatusInProgress,
		Locale:      "ja",
		AuthorCount: 10,
		BookCount:   25,
		ChunkSize:   5,
		Seed:        18446744073709551615,
		Target:      "out/books.json",
		StartedAt:   time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Empty(t, params)

	assert.Contains(t, sql, `INSERT INTO "generation_run" (`)
	for _, col := range []string{
		`"id"`, `"status"`, `"locale"`, `"author_count"`, `"book_count"`, `"chunk_size"`,
		`"seed"`, `"target"`, `"records_written"`, `"bytes_written"`, `"error"`,
		`"started_at"`, `"finished_at"`,
	} {
		assert.Contains(t, sql, col)
	}
	assert.Contains(t, sql, "'"+runId+"'")
	assert.Contains(t, sql, "'in_progress'")
	assert.Contains(t, sql, "'out/books.json'")
	// Seeds are stored as text so the full uint64 range survives.
	assert.Contains(t, sql, "'18446744073709551615'")
}

func Test_PGXRepository_FinishSQL(t *testing.T) {
	finished := time.Date(2024, 5, 1, 10, 5, 0, 0, time.UTC)

	sql, params, err := newPGXRepository().finishSQL(&Run{
		Id:             runId,
		Status:         StatusFailed,
		RecordsWritten: 20,
		BytesWritten:   4096,
		Error:          "disk full",
		FinishedAt:     &finished,
	})
	require.NoError(t, err)
	assert.Empty(t, params)

	assert.Contains(t, sql, `UPDATE "generation_run" SET `)
	assert.Contains(t, sql, `"status"='failed'`)
	assert.Contains(t, sql, `"records_written"=20`)
	assert.Contains(t, sql, `"bytes_written"=4096`)
	assert.Contains(t, sql, `"error"='disk full'`)
	assert.Contains(t, sql, `"finished_at"=`)
	assert.Contains(t, sql, `WHERE ("id" = '`+runId+`')`)
}

func Test_PGXRepository_GetByIdSQL(t *testing.T) {
	sql, params, err := newPGXRepository().getByIdSQL(uuid.MustParse(runId))
	require.NoError(t, err)
	assert.Empty(t, params)

	assert.Equal(t, `SELECT * FROM "generation_run" WHERE ("id" = '`+runId+`')`, sql)
}

func Test_PGXRepository_GetByIdSQL_NormalizesId(t *testing.T) {
	sql, _, err := newPGXRepository().getByIdSQL(uuid.MustParse("{7B1E7F4E-5D3C-4A8E-9F0B-2C6D1E8A9B10}"))
	require.NoError(t, err)

	assert.Contains(t, sql, "'"+runId+"'")
}

func Test_PGXRepository_ListSQL(t *testing.T) {
	sql, params, err := newPGXRepository().listSQL(5)
	require.NoError(t, err)
	assert.Empty(t, params)

	assert.Equal(t, `SELECT * FROM "generation_run" ORDER BY "started_at" DESC LIMIT 5`, sql)
}

func Test_PGXRepository_GetById_NotAUuid(t *testing.T) {
	// No pool is set up: an id that cannot exist must not reach the database.
	for _, id := range []string{"unknown", "", "1234", runId + "0"} {
		run, err := newPGXRepository().GetById(context.Background(), id)

		assert.NoError(t, err, id)
		assert.Nil(t, run, id)
	}
}
