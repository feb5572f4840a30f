package emitter

import (
	"errors"
	"fmt"
)

var (
	ErrSourceExhausted = errors.New("book source ended before the requested count")
	ErrNegativeTotal   = errors.New("record count must not be negative")
)

// IOError reports a failure of the output sink. Index is the id position of
// the first record that could not be persisted, or -1 when no record is involved.
type IOError struct {
	Op    string
	Index int64
	Err   error
}

func (e *IOError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("%s output: %v", e.Op, e.Err)
	}

	return fmt.Sprintf("%s output at record %d: %v", e.Op, e.Index, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// RecordError reports a record that could not be serialized.
type RecordError struct {
	Index int64
	Err   error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("serializing record %d: %v", e.Index, e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}
