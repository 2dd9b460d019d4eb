package execlog

import (
	"context"
	"fmt"
	"time"
)

// Call describes the operation being measured.
type Call struct {
	Database   string
	Operation  Operation
	Statement  string
	Parameters []Param
}

// Measure runs work and logs one entry for it. work returns its result together
// with the outcome metric recorded in Entry.Count; on error no count is recorded.
// Logging problems are reported to the logger's error hook and never change
// the result or error of work.
func Measure[T any](ctx context.Context, logger Logger, call Call, work func(ctx context.Context) (T, string, error)) (T, error) {
	start := time.Now()
	result, count, err := work(ctx)

	entry := NewEntry(call).WithDuration(time.Since(start))
	if err != nil {
		entry.WithError(err)
	} else {
		entry.WithCount(count)
	}
	record(ctx, logger, entry)

	return result, err
}

// Trace is Measure for operations that have no outcome metric, such as
// returning a lazily consumed cursor.
func Trace[T any](ctx context.Context, logger Logger, call Call, work func(ctx context.Context) (T, error)) (T, error) {
	start := time.Now()
	result, err := work(ctx)

	entry := NewEntry(call).WithDuration(time.Since(start)).WithError(err)
	record(ctx, logger, entry)

	return result, err
}

func record(ctx context.Context, logger Logger, entry *Entry) {
	if logger == nil {
		return
	}
	err := logger.Log(context.WithoutCancel(ctx), entry)
	if err == nil {
		return
	}
	if r, ok := logger.(ErrorReporter); ok {
		r.ReportError(fmt.Errorf("log %s %s: %w", entry.Database, entry.Operation, err))
	}
}
