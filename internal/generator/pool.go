package generator

import (
	"bookfixtures/internal/types"
)

type Shuffler interface {
	ShuffleInts(a []int)
}

// AuthorPool hands out its authors in shuffled passes: every author is
// returned once before any is returned again, and each pass gets a fresh order.
type AuthorPool struct {
	authors  []*types.Author
	shuffler Shuffler
	order    []int
	cursor   int
}

func NewAuthorPool(authors []*types.Author, shuffler Shuffler) *AuthorPool {
	owned := make([]*types.Author, len(authors))
	copy(owned, authors)

	order := make([]int, len(owned))
	for ix := range order {
		order[ix] = ix
	}

	return &AuthorPool{
		authors:  owned,
		shuffler: shuffler,
		order:    order,
		cursor:   len(order), // forces a shuffle on the first Next
	}
}

func (p *AuthorPool) Len() int {
	return len(p.authors)
}

// Next returns false only for an empty pool.
func (p *AuthorPool) Next() (*types.Author, bool) {
	if len(p.authors) == 0 {
		return nil, false
	}

	if p.cursor == len(p.order) {
		p.shuffler.ShuffleInts(p.order)
		p.cursor = 0
	}

	author := p.authors[p.order[p.cursor]]
	p.cursor++

	return author, true
}

func (p *AuthorPool) Contains(author *types.Author) bool {
	for _, a := range p.authors {
		if a == author {
			return true
		}
	}

	return false
}

// Authors returns a copy of the members in id order.
func (p *AuthorPool) Authors() []*types.Author {
	ret := make([]*types.Author, len(p.authors))
	copy(ret, p.authors)

	return ret
}
