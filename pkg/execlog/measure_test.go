package execlog

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestMeasure_Success(t *testing.T) {
	memory := NewMemoryAppender()
	logger := NewLogger(SyncConfig(), memory)
	defer logger.Close()

	got, err := Measure(context.Background(), logger, testCall(), func(ctx context.Context) (int64, string, error) {
		return 5, "5", nil
	})
	if err != nil || got != 5 {
		t.Fatalf("Measure returned %d, %v", got, err)
	}

	entries := memory.Entries()
	if len(entries) != 1 {
		t.Fatalf("Expected 1 entry, got %d", len(entries))
	}
	e := entries[0]
	if e.Status != StatusSuccess || e.Count != "5" || !e.Counted {
		t.Errorf("Unexpected entry: %s", e)
	}
	if e.Operation != OpExecuteNonQuery || e.StatementHash != HashStatement(testCall().Statement) {
		t.Errorf("Call not copied into entry: %s", e)
	}
}

func TestMeasure_Failure(t *testing.T) {
	memory := NewMemoryAppender()
	logger := NewLogger(SyncConfig(), memory)
	defer logger.Close()

	boom := errors.New("syntax error")
	_, err := Measure(context.Background(), logger, testCall(), func(ctx context.Context) (int64, string, error) {
		return 0, "0", boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Expected work error, got %v", err)
	}

	e := memory.Entries()[0]
	if e.Status != StatusFailure || e.Counted || e.ErrorMessage != "syntax error" {
		t.Errorf("Failure entry must carry the error and no count: %s", e)
	}
}

func TestMeasure_LoggerErrorReported(t *testing.T) {
	var reported []error
	logger := NewLogger(LoggerConfig{OnError: func(err error) { reported = append(reported, err) }}, failingAppender{})
	defer logger.Close()

	got, err := Measure(context.Background(), logger, testCall(), func(ctx context.Context) (string, string, error) {
		return "ok", "1", nil
	})
	if err != nil || got != "ok" {
		t.Errorf("Logging failure leaked into result: %q, %v", got, err)
	}
	if len(reported) != 1 {
		t.Fatalf("Expected 1 reported error, got %d", len(reported))
	}
	if !strings.Contains(reported[0].Error(), "disk full") {
		t.Errorf("Reported error lost its cause: %v", reported[0])
	}
}

func TestMeasure_ClosedLoggerReported(t *testing.T) {
	var reported []error
	logger := NewLogger(LoggerConfig{OnError: func(err error) { reported = append(reported, err) }})
	logger.Close()

	Trace(context.Background(), logger, testCall(), func(ctx context.Context) (int, error) {
		return 1, nil
	})
	if len(reported) != 1 || !errors.Is(reported[0], ErrClosed) {
		t.Errorf("Expected ErrClosed to be reported, got %v", reported)
	}
}

func TestMeasure_CanceledContextStillLogged(t *testing.T) {
	memory := NewMemoryAppender()
	logger := NewLogger(SyncConfig(), memory)
	defer logger.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	Measure(ctx, logger, testCall(), func(ctx context.Context) (int, string, error) {
		return 0, "", ctx.Err()
	})
	if len(memory.Entries()) != 1 {
		t.Error("Entry for canceled operation was not recorded")
	}
}

func TestTrace(t *testing.T) {
	memory := NewMemoryAppender()
	logger := NewLogger(SyncConfig(), memory)
	defer logger.Close()

	call := testCall()
	call.Operation = OpExecuteReader
	if _, err := Trace(context.Background(), logger, call, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, nil
	}); err != nil {
		t.Fatal(err)
	}

	e := memory.Entries()[0]
	if e.Counted || e.Status != StatusSuccess {
		t.Errorf("Trace must not record a count: %s", e)
	}

	// nil logger допустим
	if _, err := Trace(context.Background(), nil, call, func(ctx context.Context) (int, error) {
		return 1, nil
	}); err != nil {
		t.Errorf("Trace with nil logger failed: %v", err)
	}
}
