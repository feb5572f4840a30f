package runs

import (
	"context"
	"log/slog"
	"sync"

	"github.com/dustin/go-humanize"
)

// MemoryRepository logs every transition and remembers the latest runs of
// this process only.
type MemoryRepository struct {
	Logger *slog.Logger

	mu   sync.Mutex
	keep int
	runs []*Run // oldest first
}

func NewMemoryRepository(l *slog.Logger, keep int) *MemoryRepository {
	if keep <= 0 {
		keep = 100
	}

	return &MemoryRepository{Logger: l, keep: keep}
}

func (m *MemoryRepository) Start(ctx context.Context, run *Run) error {
	m.Logger.InfoContext(ctx, "Started run writing "+humanize.Comma(run.BookCount)+" books to "+run.Target,
		slog.String("locale", run.Locale),
		slog.Int("authors", run.AuthorCount),
		slog.Int("chunk_size", run.ChunkSize))

	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *run
	m.runs = append(m.runs, &cp)
	if len(m.runs) > m.keep {
		m.runs = m.runs[len(m.runs)-m.keep:]
	}

	return nil
}

func (m *MemoryRepository) Finish(ctx context.Context, run *Run) error {
	if run.Status == StatusFailed {
		m.Logger.ErrorContext(ctx, "Run failed after "+humanize.Comma(run.RecordsWritten)+" records: "+run.Error)
	} else {
		m.Logger.InfoContext(ctx, "Run "+string(run.Status)+": "+humanize.Comma(run.RecordsWritten)+" records, "+
			humanize.Bytes(uint64(run.BytesWritten)))
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for ix, r := range m.runs {
		if r.Id == run.Id {
			cp := *run
			m.runs[ix] = &cp
			break
		}
	}

	return nil
}

func (m *MemoryRepository) GetById(_ context.Context, id string) (*Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, r := range m.runs {
		if r.Id == id {
			cp := *r
			return &cp, nil
		}
	}

	return nil, nil
}

func (m *MemoryRepository) List(_ context.Context, limit uint) ([]*Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ret := make([]*Run, 0, min(int(limit), len(m.runs)))
	for ix := len(m.runs) - 1; ix >= 0 && uint(len(ret)) < limit; ix-- {
		cp := *m.runs[ix]
		ret = append(ret, &cp)
	}

	return ret, nil
}
