package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"bookfixtures/internal/generator"
	"bookfixtures/internal/source"
)

const (
	MaxBooks   = 10_000_000
	MaxAuthors = 1_000_000
)

// Release dates are drawn on a nanosecond clock, which limits the usable years.
const (
	MinYear = 1700
	MaxYear = 2200
)

// Generation holds the options of one generation run.
type Generation struct {
	Locale       string
	AuthorCount  int
	BookCount    int64
	ChunkSize    int
	ReleasedFrom int // year
	ReleasedTo   int // year
	OutputPath   string
	Seed         uint64
	// Files > 1 writes that many independent files, numbered from 0.
	Files int
}

func Default() Generation {
	return Generation{
		Locale:       "en",
		AuthorCount:  10_000,
		BookCount:    1_000_000,
		ChunkSize:    10_000,
		ReleasedFrom: 1970,
		ReleasedTo:   time.Now().Year(),
		OutputPath:   filepath.Join("sample", "sample-books.json"),
		Files:        1,
	}
}

func GetEnvOrDefault(key, default_ string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}

	return default_
}

func GetBoolEnv(key string) bool {
	if val := strings.ToLower(os.Getenv(key)); val == "yes" || val == "on" || val == "true" {
		return true
	}

	return false
}

// FromEnv overlays FIXTURE_* environment variables on Default.
func FromEnv() (Generation, error) {
	g := Default()

	var errs []error
	intVar := func(key string, dst *int) {
		if val := GetEnvOrDefault(key, ""); val != "" {
			n, err := strconv.Atoi(val)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = n
		}
	}

	g.Locale = GetEnvOrDefault("FIXTURE_LOCALE", g.Locale)
	g.OutputPath = GetEnvOrDefault("FIXTURE_OUTPUT", g.OutputPath)
	intVar("FIXTURE_AUTHORS", &g.AuthorCount)
	intVar("FIXTURE_CHUNK_SIZE", &g.ChunkSize)
	intVar("FIXTURE_RELEASED_FROM", &g.ReleasedFrom)
	intVar("FIXTURE_RELEASED_TO", &g.ReleasedTo)
	intVar("FIXTURE_FILES", &g.Files)

	if val := GetEnvOrDefault("FIXTURE_BOOKS", ""); val != "" {
		n, err := strconv.ParseInt(val, 10, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("FIXTURE_BOOKS: %w", err))
		} else {
			g.BookCount = n
		}
	}

	if val := GetEnvOrDefault("FIXTURE_SEED", ""); val != "" {
		n, err := strconv.ParseUint(val, 10, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("FIXTURE_SEED: %w", err))
		} else {
			g.Seed = n
		}
	}

	return g, errors.Join(errs...)
}

// Validate checks option ranges. An AuthorCount of zero passes here and is
// rejected by the book generator instead.
func (g Generation) Validate() error {
	var errs []error

	if err := source.CheckLocale(g.Locale); err != nil {
		errs = append(errs, err)
	}
	if g.AuthorCount < 0 || g.AuthorCount > MaxAuthors {
		errs = append(errs, fmt.Errorf("author count must be within 0..%d, got %d", MaxAuthors, g.AuthorCount))
	}
	if g.BookCount < 0 || g.BookCount > MaxBooks {
		errs = append(errs, fmt.Errorf("book count must be within 0..%d, got %d", MaxBooks, g.BookCount))
	}
	if g.ChunkSize < 1 {
		errs = append(errs, fmt.Errorf("chunk size must be positive, got %d", g.ChunkSize))
	}
	if g.ReleasedFrom < MinYear || g.ReleasedTo > MaxYear || g.ReleasedFrom > g.ReleasedTo {
		errs = append(errs, fmt.Errorf("release years must be an ascending range within %d..%d, got %d..%d",
			MinYear, MaxYear, g.ReleasedFrom, g.ReleasedTo))
	}
	if strings.TrimSpace(g.OutputPath) == "" {
		errs = append(errs, errors.New("output path must not be empty"))
	}
	if g.Files < 1 {
		errs = append(errs, fmt.Errorf("file count must be positive, got %d", g.Files))
	}

	return errors.Join(errs...)
}

func (g Generation) Released() generator.DateRange {
	return generator.YearRange(g.ReleasedFrom, g.ReleasedTo)
}

// OutputPaths returns the file names of the run, inserting the file number
// before the extension when more than one file is written.
func (g Generation) OutputPaths() []string {
	if g.Files <= 1 {
		return []string{g.OutputPath}
	}

	ext := filepath.Ext(g.OutputPath)
	base := strings.TrimSuffix(g.OutputPath, ext)

	paths := make([]string, 0, g.Files)
	for ix := range g.Files {
		paths = append(paths, base+"-"+strconv.Itoa(ix)+ext)
	}

	return paths
}
