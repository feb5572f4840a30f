package source

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"golang.org/x/text/language"

	"bookfixtures/internal/types"
)

var ErrUnsupportedLocale = errors.New("unsupported locale")

// FieldSource supplies random but plausible field values in one locale.
// Implementations are not safe for concurrent use.
type FieldSource interface {
	Locale() language.Tag
	FirstName() string
	LastName() string
	Title() string
	Isbn() string
	// Date returns a date in [from, to], both inclusive.
	Date(from, to types.Date) types.Date
	ShuffleInts(a []int)
}

// Faker is the gofakeit backed FieldSource.
type Faker struct {
	f     *gofakeit.Faker
	vocab *vocabulary
}

// New builds a source for the given BCP 47 tag. A zero seed picks a random one.
func New(locale string, seed uint64) (*Faker, error) {
	vocab, err := lookup(locale)
	if err != nil {
		return nil, err
	}

	return &Faker{f: gofakeit.New(seed), vocab: vocab}, nil
}

func (s *Faker) Locale() language.Tag {
	return s.vocab.tag
}

func (s *Faker) FirstName() string {
	return s.vocab.firstName(s.f)
}

func (s *Faker) LastName() string {
	return s.vocab.lastName(s.f)
}

func (s *Faker) Title() string {
	return s.vocab.title(s.f)
}

// Isbn returns a hyphenated ISBN-13 with a valid check digit, using the
// registration group of the locale.
func (s *Faker) Isbn() string {
	group := s.f.RandomString(s.vocab.isbnGroups)
	registrant := s.f.Numerify("####")
	publication := s.f.Numerify(strings.Repeat("#", 5-len(group)))

	digits := "978" + group + registrant + publication
	return "978-" + group + "-" + registrant + "-" + publication + "-" + strconv.Itoa(isbn13Check(digits))
}

func (s *Faker) Date(from, to types.Date) types.Date {
	return types.DateOf(s.f.DateRange(from.Time(), to.Time().Add(24*time.Hour-time.Nanosecond)))
}

func (s *Faker) ShuffleInts(a []int) {
	s.f.ShuffleInts(a)
}

// isbn13Check computes the check digit for the first twelve digits of an ISBN-13.
func isbn13Check(digits string) int {
	sum := 0
	for ix, c := range digits[:12] {
		d := int(c - '0')
		if ix%2 == 1 {
			d *= 3
		}
		sum += d
	}

	return (10 - sum%10) % 10
}

func lookup(locale string) (*vocabulary, error) {
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrUnsupportedLocale, locale, err)
	}

	_, ix, conf := matcher.Match(tag)
	if conf == language.No {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedLocale, locale)
	}

	return vocabularies[ix], nil
}
