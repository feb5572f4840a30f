package record

import (
	"bookfixtures/internal/types"
)

// Value is the closed set of things the serializer understands.
type Value interface {
	value()
}

type AuthorValue struct{ Author *types.Author }

type BookValue struct{ Book *types.Book }

type DateValue struct{ Date types.Date }

func (AuthorValue) value() {}
func (BookValue) value()   {}
func (DateValue) value()   {}

func Author(a *types.Author) Value { return AuthorValue{Author: a} }
func Book(b *types.Book) Value     { return BookValue{Book: b} }
func Date(d types.Date) Value      { return DateValue{Date: d} }
