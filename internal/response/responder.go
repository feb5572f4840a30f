package response

import (
	"context"
	"log/slog"
	"net/http"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"

	"bookfixtures/internal/logger"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const hiddenError = "Unknown error occurred while processing your request. Error ID: "

type Responder struct {
	// DebugMode exposes the messages of 5xx errors to clients.
	DebugMode bool
}

type errorBody struct {
	Error string `json:"error"`
	ErrId string `json:"err_id,omitempty"`
}

// RespondAndLogError will respond with generic error code (500) and log with slog.LevelError level
func (rr *Responder) RespondAndLogError(w http.ResponseWriter, ctx context.Context, err error) {
	rr.fail(w, ctx, err, slog.LevelError, http.StatusInternalServerError)
}

// RespondAndLogCustom logs err with lvl and responds with status. Messages of
// 4xx responses are always shown to the client.
func (rr *Responder) RespondAndLogCustom(w http.ResponseWriter, ctx context.Context, err error, lvl slog.Level, status int) {
	rr.fail(w, ctx, err, lvl, status)
}

func (rr *Responder) NotFound(w http.ResponseWriter, ctx context.Context, what string) {
	rr.write(w, ctx, http.StatusNotFound, errorBody{Error: capitalize(what + " not found")})
}

func (rr *Responder) SendJson(w http.ResponseWriter, ctx context.Context, data any) {
	bs, err := json.Marshal(data)
	if err != nil {
		rr.RespondAndLogError(w, ctx, err)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_, _ = w.Write(bs)
}

func (rr *Responder) fail(w http.ResponseWriter, ctx context.Context, err error, lvl slog.Level, status int) {
	errId := uuid.NewString()
	// fail, the exported Respond method, then the handler
	logger.LogSkip(ctx, 2, lvl, err.Error(), slog.String("err_id", errId), slog.Int("status", status))

	body := errorBody{Error: hiddenError + errId, ErrId: errId}
	if rr.DebugMode || status < http.StatusInternalServerError {
		body.Error = capitalize(err.Error())
	}

	rr.write(w, ctx, status, body)
}

func (rr *Responder) write(w http.ResponseWriter, ctx context.Context, status int, body errorBody) {
	bs, err := json.Marshal(body)
	if err == nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
	} else {
		logger.LogSkip(ctx, 1, slog.LevelError, "cannot marshall error response body: "+err.Error())
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		bs = []byte("unknown error")
	}

	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_, _ = w.Write(bs)
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}

	return string(unicode.ToUpper(r)) + s[size:]
}
