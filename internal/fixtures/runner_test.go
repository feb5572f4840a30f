package fixtures_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"bookfixtures/internal/config"
	"bookfixtures/internal/emitter"
	"bookfixtures/internal/fixtures"
	"bookfixtures/internal/generator"
	"bookfixtures/internal/storage/runs"
)

type mockLedger struct {
	mock.Mock
}

func (m *mockLedger) Start(ctx context.Context, run *runs.Run) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

func (m *mockLedger) Finish(ctx context.Context, run *runs.Run) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

func (m *mockLedger) GetById(ctx context.Context, id string) (*runs.Run, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*runs.Run), args.Error(1)
}

func (m *mockLedger) List(ctx context.Context, limit uint) ([]*runs.Run, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]*runs.Run), args.Error(1)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type bookLine struct {
	Id     int64 `json:"id"`
	Author struct {
		Id int64 `json:"id"`
	} `json:"author"`
}

func readBooks(t *testing.T, r io.Reader) []bookLine {
	t.Helper()

	var ret []bookLine
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		var b bookLine
		require.NoError(t, json.Unmarshal(sc.Bytes(), &b))
		ret = append(ret, b)
	}
	require.NoError(t, sc.Err())

	return ret
}

func smallConfig(dir string) config.Generation {
	cfg := config.Default()
	cfg.Locale = "en"
	cfg.AuthorCount = 10
	cfg.BookCount = 25
	cfg.ChunkSize = 10
	cfg.Seed = 2024
	cfg.OutputPath = filepath.Join(dir, "nested", "books.json")
	return cfg
}

func Test_Runner_RunToFile_EndToEnd(t *testing.T) {
	ctx := context.Background()
	cfg := smallConfig(t.TempDir())

	ledger := new(mockLedger)
	ledger.On("Start", mock.Anything, mock.MatchedBy(func(run *runs.Run) bool {
		return run.Status == runs.StatusInProgress && run.BookCount == 25 && run.Target == cfg.OutputPath
	})).Return(nil).Once()
	ledger.On("Finish", mock.Anything, mock.MatchedBy(func(run *runs.Run) bool {
		return run.Status == runs.StatusComplete && run.RecordsWritten == 25 && run.FinishedAt != nil && run.Error == ""
	})).Return(nil).Once()

	runner := fixtures.NewRunner(ledger, quietLogger())

	done, err := runner.RunToFile(ctx, cfg)
	require.NoError(t, err)
	require.Len(t, done, 1)
	ledger.AssertExpectations(t)

	f, err := os.Open(cfg.OutputPath)
	require.NoError(t, err)
	defer f.Close()

	books := readBooks(t, f)
	require.Len(t, books, 25)

	for ix, b := range books {
		assert.Equal(t, int64(ix+1), b.Id)
		assert.GreaterOrEqual(t, b.Author.Id, int64(1))
		assert.LessOrEqual(t, b.Author.Id, int64(10))
	}

	info, err := f.Stat()
	require.NoError(t, err)
	assert.Equal(t, info.Size(), done[0].BytesWritten)
}

func Test_Runner_EmptyPool(t *testing.T) {
	ctx := context.Background()
	cfg := smallConfig(t.TempDir())
	cfg.AuthorCount = 0

	ledger := new(mockLedger)
	ledger.On("Start", mock.Anything, mock.Anything).Return(nil)
	ledger.On("Finish", mock.Anything, mock.MatchedBy(func(run *runs.Run) bool {
		return run.Status == runs.StatusFailed && run.RecordsWritten == 0 && run.Error != ""
	})).Return(nil).Once()

	_, err := fixtures.NewRunner(ledger, quietLogger()).RunToFile(ctx, cfg)

	var emptyPool *generator.EmptyPoolError
	require.ErrorAs(t, err, &emptyPool)
	ledger.AssertExpectations(t)

	_, statErr := os.Stat(cfg.OutputPath)
	assert.True(t, os.IsNotExist(statErr), "no output file is created")
}

func Test_Runner_ChunkProgress(t *testing.T) {
	var logs bytes.Buffer
	l := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	runner := fixtures.NewRunner(nil, l)
	runner.ProgressEvery = 20

	var out bytes.Buffer
	run, err := runner.Run(context.Background(), smallConfig(t.TempDir()), &out, "buffer")
	require.NoError(t, err)

	assert.Equal(t, runs.StatusComplete, run.Status)
	assert.Len(t, readBooks(t, &out), 25)
	assert.Contains(t, logs.String(), "Wrote chunk 3")
	assert.Contains(t, logs.String(), "size=5")
	assert.Contains(t, logs.String(), "20 rows processed")
	assert.NotContains(t, logs.String(), "Wrote chunk 4")
}

func Test_Runner_SameSeedSameOutput(t *testing.T) {
	runner := fixtures.NewRunner(nil, quietLogger())
	cfg := smallConfig(t.TempDir())

	var a, b bytes.Buffer
	_, err := runner.Run(context.Background(), cfg, &a, "a")
	require.NoError(t, err)

	cfg.ChunkSize = 3
	_, err = runner.Run(context.Background(), cfg, &b, "b")
	require.NoError(t, err)

	assert.Equal(t, a.String(), b.String())
}

func Test_Runner_MultipleFiles(t *testing.T) {
	cfg := smallConfig(t.TempDir())
	cfg.Files = 2

	done, err := fixtures.NewRunner(nil, quietLogger()).RunToFile(context.Background(), cfg)
	require.NoError(t, err)
	require.Len(t, done, 2)

	first, err := os.ReadFile(done[0].Target)
	require.NoError(t, err)
	second, err := os.ReadFile(done[1].Target)
	require.NoError(t, err)

	assert.NotEqual(t, string(first), string(second), "files get distinct seeds")
	assert.Equal(t, cfg.Seed+1, done[1].Seed)
}

func Test_Runner_InvalidConfig(t *testing.T) {
	ledger := new(mockLedger)
	cfg := smallConfig(t.TempDir())
	cfg.Locale = "xx"

	_, err := fixtures.NewRunner(ledger, quietLogger()).Run(context.Background(), cfg, io.Discard, "discard")
	assert.Error(t, err)
	ledger.AssertNotCalled(t, "Start", mock.Anything, mock.Anything)
}

func Test_Runner_UnwritableOutput(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	cfg := smallConfig(dir)
	cfg.OutputPath = filepath.Join(blocker, "books.json")

	_, err := fixtures.NewRunner(nil, quietLogger()).RunToFile(context.Background(), cfg)

	var ioErr *emitter.IOError
	require.ErrorAs(t, err, &ioErr)
	assert.Equal(t, "open", ioErr.Op)
}
