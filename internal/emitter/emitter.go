package emitter

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"bookfixtures/internal/record"
	"bookfixtures/internal/types"
)

const DefaultChunkSize = 10_000

type BookSource interface {
	Next() (*types.Book, bool)
}

type Chunk struct {
	Number  int   // 1-based
	Size    int   // records in this chunk
	Written int64 // records written so far, this chunk included
	Bytes   int64 // bytes written so far, this chunk included
}

type Stats struct {
	Records int64
	Chunks  int
	Bytes   int64
}

// Emitter serializes books into a sink one chunk at a time. At most one
// chunk of books and its encoded bytes are held in memory.
type Emitter struct {
	ChunkSize int
	// OnChunk, if set, is called after each chunk reached the sink.
	OnChunk func(Chunk)
}

func (e *Emitter) chunkSize() int {
	if e.ChunkSize <= 0 {
		return DefaultChunkSize
	}

	return e.ChunkSize
}

// Emit writes exactly total books pulled from books into sink. Whatever was
// written before a failure stays in the sink.
func (e *Emitter) Emit(books BookSource, total int64, sink io.Writer) (Stats, error) {
	var stats Stats
	if total < 0 {
		return stats, fmt.Errorf("%w, got %d", ErrNegativeTotal, total)
	}

	size := e.chunkSize()
	if total < int64(size) {
		size = int(total)
	}

	chunk := make([]*types.Book, 0, size)
	var buf bytes.Buffer
	enc := record.NewEncoder(&buf)

	for stats.Records < total {
		take := size
		if left := total - stats.Records; left < int64(take) {
			take = int(left)
		}

		chunk = chunk[:0]
		for range take {
			b, ok := books.Next()
			if !ok {
				return stats, ErrSourceExhausted
			}
			chunk = append(chunk, b)
		}

		buf.Reset()
		for ix, b := range chunk {
			if err := enc.Encode(record.Book(b)); err != nil {
				return stats, &RecordError{Index: stats.Records + int64(ix) + 1, Err: err}
			}
		}

		n, err := sink.Write(buf.Bytes())
		stats.Bytes += int64(n)
		if err == nil && n < buf.Len() {
			err = io.ErrShortWrite
		}
		if err != nil {
			return stats, &IOError{Op: "write", Index: stats.Records + 1, Err: err}
		}

		stats.Records += int64(take)
		stats.Chunks++

		if e.OnChunk != nil {
			e.OnChunk(Chunk{
				Number:  stats.Chunks,
				Size:    take,
				Written: stats.Records,
				Bytes:   stats.Bytes,
			})
		}
	}

	return stats, nil
}

// IsIO reports whether err came from the output sink.
func IsIO(err error) bool {
	var ioErr *IOError
	return errors.As(err, &ioErr)
}
