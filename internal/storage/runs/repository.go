package runs

import (
	"context"
	"time"
)

type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusComplete   Status = "complete"
	StatusFailed     Status = "failed"
)

// Run is the ledger entry of one generation run.
type Run struct {
	Id             string     `json:"id"`
	Status         Status     `json:"status"`
	Locale         string     `json:"locale"`
	AuthorCount    int        `json:"author_count"`
	BookCount      int64      `json:"book_count"`
	ChunkSize      int        `json:"chunk_size"`
	Seed           uint64     `json:"seed"`
	Target         string     `json:"target"`
	RecordsWritten int64      `json:"records_written"`
	BytesWritten   int64      `json:"bytes_written"`
	Error          string     `json:"error,omitempty"`
	StartedAt      time.Time  `json:"started_at"`
	FinishedAt     *time.Time `json:"finished_at,omitempty"`
}

type Repository interface {
	// Start records run as in progress.
	Start(ctx context.Context, run *Run) error
	// Finish stores the final status, counters and error of run.
	Finish(ctx context.Context, run *Run) error

	// GetById returns nil without error for unknown ids.
	GetById(ctx context.Context, id string) (*Run, error)
	// List returns the latest runs first.
	List(ctx context.Context, limit uint) ([]*Run, error)
}
