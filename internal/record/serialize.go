package record

import (
	"fmt"

	"bookfixtures/internal/types"
)

type UnsupportedTypeError struct {
	Value any
	// Field is set when the offending value is nested inside a book.
	Field string
}

func (e *UnsupportedTypeError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("unsupported data type in field %s: %T", e.Field, e.Value)
	}

	return fmt.Sprintf("unsupported data type: %T", e.Value)
}

type authorJSON struct {
	Id        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type bookJSON struct {
	Id        int64      `json:"id"`
	Title     string     `json:"title"`
	Author    authorJSON `json:"author"`
	Isbn      string     `json:"isbn"`
	ReleaseAt string     `json:"release_at"`
}

// Serialize converts v into a value encoding/json compatible encoders can
// write as-is. Books embed their author as a nested object.
func Serialize(v Value) (any, error) {
	switch v := v.(type) {
	case AuthorValue:
		if v.Author == nil {
			return nil, &UnsupportedTypeError{Value: v.Author}
		}
		return serializeAuthor(v.Author), nil
	case BookValue:
		return serializeBook(v.Book)
	case DateValue:
		return formatDate(v.Date)
	default:
		return nil, &UnsupportedTypeError{Value: v}
	}
}

func serializeAuthor(a *types.Author) authorJSON {
	return authorJSON{
		Id:        a.Id,
		FirstName: a.FirstName,
		LastName:  a.LastName,
	}
}

func serializeBook(b *types.Book) (bookJSON, error) {
	if b == nil {
		return bookJSON{}, &UnsupportedTypeError{Value: b}
	}

	if b.Author == nil {
		return bookJSON{}, &UnsupportedTypeError{Value: b.Author, Field: "author"}
	}

	releaseAt, err := formatDate(b.ReleaseAt)
	if err != nil {
		return bookJSON{}, &UnsupportedTypeError{Value: b.ReleaseAt, Field: "release_at"}
	}

	return bookJSON{
		Id:        b.Id,
		Title:     b.Title,
		Author:    serializeAuthor(b.Author),
		Isbn:      b.Isbn,
		ReleaseAt: releaseAt,
	}, nil
}

func formatDate(d types.Date) (string, error) {
	if d.IsZero() {
		return "", &UnsupportedTypeError{Value: d}
	}

	return d.String(), nil
}
