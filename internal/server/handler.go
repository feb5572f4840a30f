package server

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"bookfixtures/internal/config"
	"bookfixtures/internal/fixtures"
	"bookfixtures/internal/generator"
	"bookfixtures/internal/response"
	"bookfixtures/internal/storage/runs"
)

const (
	defaultBooks   = 1_000
	defaultAuthors = 100
	defaultChunk   = 1_000
	ndjsonType     = "application/x-ndjson"
)

// Limits caps the size of a single fixture request.
type Limits struct {
	Books   int64
	Authors int
}

// Handler serves freshly generated fixtures and the run ledger.
func Handler(runner *fixtures.Runner, ledger runs.Repository, limits Limits, rr *response.Responder) http.Handler {
	r := chi.NewRouter()

	r.Get("/books", func(w http.ResponseWriter, r *http.Request) {
		cfg, err := generationFromQuery(r.URL.Query())
		if err == nil && cfg.BookCount > limits.Books {
			err = fmt.Errorf("count must not exceed %d", limits.Books)
		}
		if err == nil && cfg.AuthorCount > limits.Authors {
			err = fmt.Errorf("authors must not exceed %d", limits.Authors)
		}
		if err == nil {
			err = cfg.Validate()
		}
		if err != nil {
			rr.RespondAndLogCustom(w, r.Context(), err, slog.LevelInfo, http.StatusBadRequest)
			return
		}

		sw := &streamWriter{w: w}
		w.Header().Set("Content-Type", ndjsonType)

		_, err = runner.Run(r.Context(), cfg, sw, "http:"+middleware.GetReqID(r.Context()))
		if err == nil {
			return
		}

		if sw.started {
			// Headers are gone, the client sees a truncated stream.
			slog.ErrorContext(r.Context(), "Fixture stream aborted: "+err.Error())
			return
		}

		var emptyPool *generator.EmptyPoolError
		if errors.As(err, &emptyPool) {
			rr.RespondAndLogCustom(w, r.Context(), err, slog.LevelInfo, http.StatusUnprocessableEntity)
			return
		}

		rr.RespondAndLogError(w, r.Context(), err)
	})

	r.Get("/runs", func(w http.ResponseWriter, r *http.Request) {
		limit, err := getInt("limit", r.URL.Query(), 20)
		if err != nil || limit < 1 {
			rr.RespondAndLogCustom(w, r.Context(), errors.New("limit must be a positive integer"),
				slog.LevelInfo, http.StatusBadRequest)
			return
		}

		rows, err := ledger.List(r.Context(), uint(limit))
		if err != nil {
			rr.RespondAndLogError(w, r.Context(), err)
			return
		}

		if rows == nil {
			rows = make([]*runs.Run, 0)
		}

		rr.SendJson(w, r.Context(), struct {
			Runs []*runs.Run `json:"runs"`
		}{Runs: rows})
	})

	r.Get("/runs/{id}", func(w http.ResponseWriter, r *http.Request) {
		run, err := ledger.GetById(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			rr.RespondAndLogError(w, r.Context(), err)
			return
		}

		if run == nil {
			rr.NotFound(w, r.Context(), "run")
			return
		}

		rr.SendJson(w, r.Context(), run)
	})

	return r
}

func generationFromQuery(q url.Values) (config.Generation, error) {
	cfg := config.Default()
	cfg.BookCount = defaultBooks
	cfg.AuthorCount = defaultAuthors
	cfg.ChunkSize = defaultChunk

	if locale := strings.TrimSpace(q.Get("locale")); locale != "" {
		cfg.Locale = locale
	}

	var errs []error
	setInt := func(key string, dst *int) {
		v, err := getInt(key, q, int64(*dst))
		if err != nil {
			errs = append(errs, err)
			return
		}
		*dst = int(v)
	}

	setInt("authors", &cfg.AuthorCount)
	setInt("chunk", &cfg.ChunkSize)
	setInt("from", &cfg.ReleasedFrom)
	setInt("to", &cfg.ReleasedTo)

	count, err := getInt("count", q, cfg.BookCount)
	if err != nil {
		errs = append(errs, err)
	}
	cfg.BookCount = count

	if s := q.Get("seed"); s != "" {
		seed, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("seed must be an unsigned integer, got %q", s))
		}
		cfg.Seed = seed
	}

	return cfg, errors.Join(errs...)
}

func getInt(key string, q url.Values, default_ int64) (int64, error) {
	s := strings.TrimSpace(q.Get(key))
	if s == "" {
		return default_, nil
	}

	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", key, s)
	}

	return v, nil
}

// streamWriter flushes every chunk to the client and remembers whether the
// response has been started.
type streamWriter struct {
	w       http.ResponseWriter
	started bool
}

func (s *streamWriter) Write(p []byte) (int, error) {
	s.started = true

	n, err := s.w.Write(p)
	if f, ok := s.w.(http.Flusher); ok {
		f.Flush()
	}

	return n, err
}
