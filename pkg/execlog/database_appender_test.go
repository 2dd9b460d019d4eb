package execlog

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

func openLogDB(t *testing.T) *sqlx.DB {
	t.Helper()

	db, err := sqlx.Open("sqlite", filepath.Join(t.TempDir(), "exec.db"))
	if err != nil {
		t.Fatalf("Failed to open SQLite database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestDatabaseAppender_SQLite(t *testing.T) {
	ctx := context.Background()
	db := openLogDB(t)

	appender, err := NewDatabaseAppender(DatabaseAppenderConfig{
		DB:              db,
		TableName:       "exec_log",
		Level:           LevelFull,
		AutoCreateTable: true,
	})
	if err != nil {
		t.Fatalf("Failed to create database appender: %v", err)
	}
	defer appender.Close()

	ok := NewEntry(testCall()).WithCount("2").WithDuration(1500 * time.Millisecond)
	if err := appender.Append(ctx, ok); err != nil {
		t.Fatalf("Failed to append entry: %v", err)
	}

	failedCall := testCall()
	failedCall.Operation = OpExecuteScalar
	failedCall.Statement = "SELEC 1"
	failed := NewEntry(failedCall).WithError(errContext("near SELEC: syntax error"))
	if err := appender.Append(ctx, failed); err != nil {
		t.Fatalf("Failed to append entry: %v", err)
	}

	entries, err := appender.Query(ctx, QueryFilter{Operation: OpExecuteNonQuery, Limit: 10})
	if err != nil {
		t.Fatalf("Failed to query entries: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("Expected 1 entry, got %d", len(entries))
	}

	got := entries[0]
	if got.ID != ok.ID || got.Count != "2" || !got.Counted {
		t.Errorf("Unexpected entry: %s", got)
	}
	if got.Duration != 1500*time.Millisecond {
		t.Errorf("Expected duration 1.5s, got %v", got.Duration)
	}
	if len(got.Parameters) != 2 || got.Parameters[0].Value != "shipped" {
		t.Errorf("Parameters not restored: %+v", got.Parameters)
	}

	failures, err := appender.Count(ctx, QueryFilter{Status: StatusFailure})
	if err != nil {
		t.Fatalf("Failed to count: %v", err)
	}
	if failures != 1 {
		t.Errorf("Expected 1 failure, got %d", failures)
	}

	byHash, err := appender.Count(ctx, QueryFilter{StatementHash: HashStatement("SELEC 1")})
	if err != nil {
		t.Fatalf("Failed to count: %v", err)
	}
	if byHash != 1 {
		t.Errorf("Expected 1 entry for hash, got %d", byHash)
	}
}

type errContext string

func (e errContext) Error() string { return string(e) }

func TestDatabaseAppender_Batch(t *testing.T) {
	ctx := context.Background()
	db := openLogDB(t)

	appender, err := NewDatabaseAppender(DatabaseAppenderConfig{
		DB:              db,
		Level:           LevelStandard,
		BatchSize:       5,
		AutoCreateTable: true,
	})
	if err != nil {
		t.Fatalf("Failed to create database appender: %v", err)
	}

	for i := 0; i < 7; i++ {
		if err := appender.Append(ctx, NewEntry(testCall())); err != nil {
			t.Fatalf("Failed to append: %v", err)
		}
	}

	// 5 записаны batch'ем, 2 ждут flush
	count, err := appender.Count(ctx, QueryFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if count != 5 {
		t.Errorf("Expected 5 entries before flush, got %d", count)
	}

	if err := appender.Flush(); err != nil {
		t.Fatalf("Failed to flush: %v", err)
	}
	count, _ = appender.Count(ctx, QueryFilter{})
	if count != 7 {
		t.Errorf("Expected 7 entries after flush, got %d", count)
	}

	// Standard: значения параметров не сохраняются
	entries, err := appender.Query(ctx, QueryFilter{Limit: 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Parameters[0].Value != nil {
		t.Errorf("Standard level stored parameter values: %+v", entries)
	}

	appender.Close()
}

func TestDatabaseAppender_FlushIntervalWithBatch(t *testing.T) {
	ctx := context.Background()
	db := openLogDB(t)

	appender, err := NewDatabaseAppender(DatabaseAppenderConfig{
		DB:              db,
		Level:           LevelMinimal,
		BatchSize:       5,
		AutoCreateTable: true,
	})
	if err != nil {
		t.Fatalf("Failed to create database appender: %v", err)
	}

	// autoFlush сбрасывает batch из своей goroutine параллельно с Append
	logger := NewLogger(LoggerConfig{FlushInterval: time.Millisecond}, appender)

	const total = 800
	for i := 0; i < total; i++ {
		if err := logger.Log(ctx, NewEntry(testCall())); err != nil {
			t.Fatalf("Failed to log entry %d: %v", i, err)
		}
	}

	if err := logger.Close(); err != nil {
		t.Fatalf("Failed to close logger: %v", err)
	}

	count, err := appender.Count(ctx, QueryFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if count != total {
		t.Errorf("Expected %d stored entries, got %d", total, count)
	}
}

func TestDatabaseAppender_DeleteOld(t *testing.T) {
	ctx := context.Background()
	db := openLogDB(t)

	appender, err := NewDatabaseAppender(DatabaseAppenderConfig{DB: db, AutoCreateTable: true})
	if err != nil {
		t.Fatalf("Failed to create database appender: %v", err)
	}
	defer appender.Close()

	for i := 0; i < 3; i++ {
		appender.Append(ctx, NewEntry(testCall()))
	}

	deleted, err := appender.DeleteOlderThan(ctx, time.Now().Add(24*time.Hour))
	if err != nil {
		t.Fatalf("Failed to delete: %v", err)
	}
	if deleted != 3 {
		t.Errorf("Expected 3 deleted, got %d", deleted)
	}
}

func TestDatabaseAppender_RequiresDB(t *testing.T) {
	if _, err := NewDatabaseAppender(DatabaseAppenderConfig{}); err == nil {
		t.Error("Expected error without DB")
	}
}

func TestPlaceholderFormat(t *testing.T) {
	tests := map[string]string{
		"sqlite":    "?",
		"sqlite3":   "?",
		"mysql":     "?",
		"pgx":       "$1",
		"postgres":  "$1",
		"sqlserver": "@p1",
	}
	for driver, want := range tests {
		got, err := placeholderFormat(driver).ReplacePlaceholders("?")
		if err != nil {
			t.Fatal(err)
		}
		if got != want {
			t.Errorf("%s: got %q, want %q", driver, got, want)
		}
	}
}
