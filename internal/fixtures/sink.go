package fixtures

import (
	"bufio"
	"errors"
	"io"
	"os"
	"path/filepath"

	"bookfixtures/internal/emitter"
)

const sinkBufferSize = 64 << 10

// openFile creates path (and its directory) and returns a buffered writer on
// it with a close function that flushes and closes exactly once.
func openFile(path string) (io.Writer, func() error, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, &emitter.IOError{Op: "open", Index: -1, Err: err}
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, nil, &emitter.IOError{Op: "open", Index: -1, Err: err}
	}

	bw := bufio.NewWriterSize(f, sinkBufferSize)

	closed := false
	closeFn := func() error {
		if closed {
			return nil
		}
		closed = true

		var errs []error
		if err := bw.Flush(); err != nil {
			errs = append(errs, &emitter.IOError{Op: "flush", Index: -1, Err: err})
		}
		if err := f.Close(); err != nil {
			errs = append(errs, &emitter.IOError{Op: "close", Index: -1, Err: err})
		}

		return errors.Join(errs...)
	}

	return bw, closeFn, nil
}
