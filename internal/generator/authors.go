package generator

import (
	"bookfixtures/internal/source"
	"bookfixtures/internal/types"
)

// AuthorGenerator yields authors with ids 1, 2, 3, ... without bound.
type AuthorGenerator struct {
	src    source.FieldSource
	nextId int64
}

func NewAuthorGenerator(src source.FieldSource) *AuthorGenerator {
	return &AuthorGenerator{src: src, nextId: 1}
}

func (g *AuthorGenerator) Next() *types.Author {
	author := &types.Author{
		Id:        g.nextId,
		FirstName: g.src.FirstName(),
		LastName:  g.src.LastName(),
	}
	g.nextId++

	return author
}

// GenerateAuthors materializes exactly count authors with ids 1..count.
func GenerateAuthors(src source.FieldSource, count int) []*types.Author {
	if count <= 0 {
		return nil
	}

	g := NewAuthorGenerator(src)
	authors := make([]*types.Author, 0, count)
	for range count {
		authors = append(authors, g.Next())
	}

	return authors
}
