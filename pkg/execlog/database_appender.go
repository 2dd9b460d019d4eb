package execlog

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

var entryColumns = []string{
	"id", "timestamp", "database_type", "operation", "status", "statement",
	"statement_hash", "parameters", "outcome", "counted", "duration_ms", "error_message",
}

// DatabaseAppender - запись в SQL таблицу
type DatabaseAppender struct {
	db         *sqlx.DB
	tableName  string
	level      Level
	batchSize  int
	batchQueue []*Entry
	mu         sync.Mutex
	builder    sq.StatementBuilderType
	closeDB    bool
}

// DatabaseAppenderConfig - конфигурация database appender
type DatabaseAppenderConfig struct {
	// DB - подключение к базе данных
	DB *sqlx.DB

	// TableName - имя таблицы, по умолчанию "exec_log"
	TableName string

	// Level - уровень логирования
	Level Level

	// BatchSize - размер batch для группового insert (0 = без batching)
	BatchSize int

	// AutoCreateTable - автоматически создать таблицу если не существует
	AutoCreateTable bool

	// CloseDB - закрыть DB вместе с appender
	CloseDB bool
}

// NewDatabaseAppender - создать database appender
func NewDatabaseAppender(config DatabaseAppenderConfig) (*DatabaseAppender, error) {
	if config.DB == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	if config.TableName == "" {
		config.TableName = "exec_log"
	}

	da := &DatabaseAppender{
		db:         config.DB,
		tableName:  config.TableName,
		level:      config.Level,
		batchSize:  config.BatchSize,
		batchQueue: make([]*Entry, 0, config.BatchSize),
		builder:    sq.StatementBuilder.PlaceholderFormat(placeholderFormat(config.DB.DriverName())),
		closeDB:    config.CloseDB,
	}

	if config.AutoCreateTable {
		if err := da.createTable(); err != nil {
			return nil, fmt.Errorf("failed to create log table: %w", err)
		}
	}

	return da, nil
}

// placeholderFormat maps the driver's bind style onto squirrel.
func placeholderFormat(driverName string) sq.PlaceholderFormat {
	switch sqlx.BindType(driverName) {
	case sqlx.DOLLAR:
		return sq.Dollar
	case sqlx.AT:
		return sq.AtP
	case sqlx.NAMED:
		return sq.Colon
	default:
		return sq.Question
	}
}

// createTable - создать таблицу для лога
func (da *DatabaseAppender) createTable() error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id VARCHAR(64) PRIMARY KEY,
			timestamp TIMESTAMP NOT NULL,
			database_type VARCHAR(20) NOT NULL,
			operation VARCHAR(50) NOT NULL,
			status VARCHAR(20) NOT NULL,
			statement TEXT,
			statement_hash VARCHAR(16),
			parameters TEXT,
			outcome VARCHAR(64),
			counted BOOLEAN DEFAULT FALSE,
			duration_ms BIGINT DEFAULT 0,
			error_message TEXT
		)
	`, da.tableName)

	if _, err := da.db.Exec(query); err != nil {
		return err
	}

	indexes := []string{
		fmt.Sprintf("CREATE INDEX IF NOT EXISTS idx_%s_timestamp ON %s(timestamp)", da.tableName, da.tableName),
		fmt.Sprintf("CREATE INDEX IF NOT EXISTS idx_%s_operation ON %s(operation)", da.tableName, da.tableName),
		fmt.Sprintf("CREATE INDEX IF NOT EXISTS idx_%s_hash ON %s(statement_hash)", da.tableName, da.tableName),
	}

	for _, indexQuery := range indexes {
		if _, err := da.db.Exec(indexQuery); err != nil {
			// Индексы могут не поддерживаться (IF NOT EXISTS)
			continue
		}
	}

	return nil
}

// Append - записать entry в базу данных
func (da *DatabaseAppender) Append(ctx context.Context, entry *Entry) error {
	filtered := entry.FilterByLevel(da.level)

	if da.batchSize > 0 {
		da.mu.Lock()
		defer da.mu.Unlock()

		da.batchQueue = append(da.batchQueue, filtered)
		if len(da.batchQueue) >= da.batchSize {
			return da.flushBatch(ctx)
		}
		return nil
	}

	return da.insert(ctx, filtered)
}

func (da *DatabaseAppender) insert(ctx context.Context, entries ...*Entry) error {
	ins := da.builder.Insert(da.tableName).Columns(entryColumns...)
	for _, e := range entries {
		params := "[]"
		if len(e.Parameters) > 0 {
			if data, err := json.Marshal(e.Parameters); err == nil {
				params = string(data)
			}
		}
		ins = ins.Values(
			e.ID,
			e.Timestamp,
			e.Database,
			string(e.Operation),
			string(e.Status),
			e.Statement,
			e.StatementHash,
			params,
			e.Count,
			e.Counted,
			e.Duration.Milliseconds(),
			e.ErrorMessage,
		)
	}

	query, args, err := ins.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert: %w", err)
	}

	_, err = da.db.ExecContext(ctx, query, args...)
	return err
}

// flushBatch - записать batch entries одним insert, вызывается под da.mu
func (da *DatabaseAppender) flushBatch(ctx context.Context) error {
	if len(da.batchQueue) == 0 {
		return nil
	}

	if err := da.insert(ctx, da.batchQueue...); err != nil {
		return fmt.Errorf("failed to insert batch: %w", err)
	}

	da.batchQueue = da.batchQueue[:0]
	return nil
}

// Flush - сбросить batch queue
func (da *DatabaseAppender) Flush() error {
	da.mu.Lock()
	defer da.mu.Unlock()

	return da.flushBatch(context.Background())
}

// Close - сбросить оставшиеся entries
func (da *DatabaseAppender) Close() error {
	err := da.Flush()
	if da.closeDB {
		if cerr := da.db.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// QueryFilter - фильтр для запроса entries
type QueryFilter struct {
	Database      string
	Operation     Operation
	Status        Status
	StatementHash string
	StartTime     time.Time
	EndTime       time.Time
	Limit         uint64
}

func (f QueryFilter) where() sq.And {
	cond := sq.And{}
	if f.Database != "" {
		cond = append(cond, sq.Eq{"database_type": f.Database})
	}
	if f.Operation != "" {
		cond = append(cond, sq.Eq{"operation": string(f.Operation)})
	}
	if f.Status != "" {
		cond = append(cond, sq.Eq{"status": string(f.Status)})
	}
	if f.StatementHash != "" {
		cond = append(cond, sq.Eq{"statement_hash": f.StatementHash})
	}
	if !f.StartTime.IsZero() {
		cond = append(cond, sq.GtOrEq{"timestamp": f.StartTime})
	}
	if !f.EndTime.IsZero() {
		cond = append(cond, sq.LtOrEq{"timestamp": f.EndTime})
	}
	return cond
}

type entryRow struct {
	ID            string    `db:"id"`
	Timestamp     time.Time `db:"timestamp"`
	Database      string    `db:"database_type"`
	Operation     string    `db:"operation"`
	Status        string    `db:"status"`
	Statement     string    `db:"statement"`
	StatementHash string    `db:"statement_hash"`
	Parameters    string    `db:"parameters"`
	Outcome       string    `db:"outcome"`
	Counted       bool      `db:"counted"`
	DurationMs    int64     `db:"duration_ms"`
	ErrorMessage  string    `db:"error_message"`
}

// Query - запросить entries из базы, новые первыми
func (da *DatabaseAppender) Query(ctx context.Context, filter QueryFilter) ([]*Entry, error) {
	sel := da.builder.Select(entryColumns...).
		From(da.tableName).
		Where(filter.where()).
		OrderBy("timestamp DESC")
	if filter.Limit > 0 {
		sel = sel.Limit(filter.Limit)
	}

	query, args, err := sel.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	var rows []entryRow
	if err := da.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to query log: %w", err)
	}

	entries := make([]*Entry, 0, len(rows))
	for _, r := range rows {
		e := &Entry{
			ID:            r.ID,
			Timestamp:     r.Timestamp,
			Database:      r.Database,
			Operation:     Operation(r.Operation),
			Status:        Status(r.Status),
			Statement:     r.Statement,
			StatementHash: r.StatementHash,
			Count:         r.Outcome,
			Counted:       r.Counted,
			Duration:      time.Duration(r.DurationMs) * time.Millisecond,
			ErrorMessage:  r.ErrorMessage,
		}
		if r.Parameters != "" && r.Parameters != "[]" {
			json.Unmarshal([]byte(r.Parameters), &e.Parameters)
		}
		entries = append(entries, e)
	}

	return entries, nil
}

// Count - подсчитать количество entries
func (da *DatabaseAppender) Count(ctx context.Context, filter QueryFilter) (int64, error) {
	query, args, err := da.builder.Select("COUNT(*)").
		From(da.tableName).
		Where(filter.where()).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build query: %w", err)
	}

	var count int64
	if err := da.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("failed to count log entries: %w", err)
	}

	return count, nil
}

// DeleteOlderThan - удалить старые entries
func (da *DatabaseAppender) DeleteOlderThan(ctx context.Context, before time.Time) (int64, error) {
	query, args, err := da.builder.Delete(da.tableName).
		Where(sq.Lt{"timestamp": before}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build delete: %w", err)
	}

	result, err := da.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old entries: %w", err)
	}

	return result.RowsAffected()
}
