package logger

import (
	"context"
	"log/slog"
	"runtime"
	"time"
)

// LogSkip logs through the default logger like slog.Log, but attributes the
// record to the caller skip frames above the function calling LogSkip.
func LogSkip(ctx context.Context, skip int, level slog.Level, msg string, attrs ...slog.Attr) {
	l := slog.Default()
	if !l.Enabled(ctx, level) {
		return
	}

	var pcs [1]uintptr
	// runtime.Callers, LogSkip, then the caller of LogSkip
	runtime.Callers(skip+2, pcs[:])

	r := slog.NewRecord(time.Now(), level, msg, pcs[0])
	r.AddAttrs(attrs...)
	_ = l.Handler().Handle(ctx, r)
}
