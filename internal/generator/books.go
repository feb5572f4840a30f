package generator

import (
	"fmt"

	"bookfixtures/internal/source"
	"bookfixtures/internal/types"
)

type EmptyPoolError struct{}

func (e *EmptyPoolError) Error() string {
	return "author pool is empty, books cannot be assigned an author"
}

type DateRange struct {
	From types.Date
	To   types.Date
}

// YearRange spans Jan 1 of from through Dec 31 of to.
func YearRange(from, to int) DateRange {
	return DateRange{
		From: types.Date{Year: from, Month: 1, Day: 1},
		To:   types.Date{Year: to, Month: 12, Day: 31},
	}
}

type BookOptions struct {
	// Limit bounds the sequence; zero means unbounded.
	Limit    int64
	Released DateRange
}

// BookGenerator yields books with ids 1, 2, 3, ... Each call to
// NewBookGenerator starts a fresh sequence.
type BookGenerator struct {
	pool    *AuthorPool
	src     source.FieldSource
	opts    BookOptions
	nextId  int64
	emitted int64
}

func NewBookGenerator(pool *AuthorPool, src source.FieldSource, opts BookOptions) (*BookGenerator, error) {
	if pool == nil || pool.Len() == 0 {
		return nil, &EmptyPoolError{}
	}

	if opts.Released.To.Time().Before(opts.Released.From.Time()) {
		return nil, fmt.Errorf("release range %v..%v is inverted", opts.Released.From, opts.Released.To)
	}

	return &BookGenerator{pool: pool, src: src, opts: opts, nextId: 1}, nil
}

// Next returns false once Limit books have been produced.
func (g *BookGenerator) Next() (*types.Book, bool) {
	if g.opts.Limit > 0 && g.emitted >= g.opts.Limit {
		return nil, false
	}

	author, ok := g.pool.Next()
	if !ok {
		return nil, false
	}

	book := &types.Book{
		Id:        g.nextId,
		Title:     g.src.Title(),
		Author:    author,
		Isbn:      g.src.Isbn(),
		ReleaseAt: g.src.Date(g.opts.Released.From, g.opts.Released.To),
	}
	g.nextId++
	g.emitted++

	return book, true
}
