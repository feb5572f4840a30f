package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookfixtures/internal/config"
	"bookfixtures/internal/emitter"
)

func testConfig(t *testing.T) config.Generation {
	t.Helper()

	cfg := config.Default()
	cfg.AuthorCount = 4
	cfg.BookCount = 12
	cfg.ChunkSize = 5
	cfg.Seed = 3
	cfg.OutputPath = filepath.Join(t.TempDir(), "books.json")

	return cfg
}

func withDatabaseURL(t *testing.T, url string) {
	t.Helper()

	prev := dbConnStr
	dbConnStr = url
	t.Cleanup(func() { dbConnStr = prev })
}

func Test_Generate_Succeeds(t *testing.T) {
	withDatabaseURL(t, "")
	cfg := testConfig(t)

	assert.Equal(t, 0, generate(context.Background(), cfg))

	data, err := os.ReadFile(cfg.OutputPath)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}

func Test_Generate_FailureReturnsExitCode(t *testing.T) {
	withDatabaseURL(t, "")
	cfg := testConfig(t)
	cfg.AuthorCount = 0

	assert.Equal(t, 1, generate(context.Background(), cfg))

	_, err := os.Stat(cfg.OutputPath)
	assert.True(t, os.IsNotExist(err))
}

func Test_Generate_BadDatabaseURLReturnsExitCode(t *testing.T) {
	withDatabaseURL(t, "postgres://%zz")

	assert.Equal(t, 1, generate(context.Background(), testConfig(t)))
}

func Test_FailingRecord(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		index int64
		ok    bool
	}{
		{name: "record", err: &emitter.RecordError{Index: 4, Err: errors.New("bad")}, index: 4, ok: true},
		{name: "write", err: &emitter.IOError{Op: "write", Index: 21, Err: errors.New("full")}, index: 21, ok: true},
		{name: "close", err: &emitter.IOError{Op: "close", Index: -1, Err: errors.New("full")}},
		{name: "other", err: errors.New("boom")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			index, ok := failingRecord(tt.err)

			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.index, index)
		})
	}
}
