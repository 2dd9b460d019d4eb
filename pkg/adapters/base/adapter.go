package base

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/jmoiron/sqlx"

	"github.com/ruslano69/dataaccess/pkg/adapters"
	"github.com/ruslano69/dataaccess/pkg/dataset"
	"github.com/ruslano69/dataaccess/pkg/execlog"
)

// Compile-time check: Adapter реализует adapters.DataAccess
var _ adapters.DataAccess = (*Adapter)(nil)

// Adapter - общая реализация adapters.DataAccess поверх database/sql.
// Backend packages embed it and supply a Dialect.
type Adapter struct {
	dialect Dialect
	db      *sqlx.DB
	conn    *sqlx.Conn
	tx      *sqlx.Tx
	logger  execlog.Logger
}

// New opens a connection handle for dialect. No network I/O happens until Open.
func New(dialect Dialect, dsn string, opts ...adapters.Option) (*Adapter, error) {
	db, err := sqlx.Open(dialect.DriverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return NewWithDB(dialect, db, opts...), nil
}

// NewWithDB wraps an existing handle.
func NewWithDB(dialect Dialect, db *sqlx.DB, opts ...adapters.Option) *Adapter {
	o := adapters.BuildOptions(opts...)
	return &Adapter{
		dialect: dialect,
		db:      db,
		logger:  o.Logger,
	}
}

// DatabaseType returns the dialect's backend identifier.
func (a *Adapter) DatabaseType() adapters.DatabaseType {
	return a.dialect.Type()
}

// Dialect returns the binding rules in use.
func (a *Adapter) Dialect() Dialect {
	return a.dialect
}

// DB returns the underlying connection handle.
func (a *Adapter) DB() *sqlx.DB {
	return a.db
}

// Session returns the open session, or nil when closed.
func (a *Adapter) Session() *sqlx.Conn {
	return a.conn
}

// Logger returns the execution logger.
func (a *Adapter) Logger() execlog.Logger {
	return a.logger
}

// ========== Lifecycle ==========

// Open acquires a dedicated session and pings it.
func (a *Adapter) Open(ctx context.Context) error {
	if a.conn != nil {
		return adapters.ErrConnectionOpen
	}

	conn, err := a.db.Connx(ctx)
	if err != nil {
		return fmt.Errorf("failed to open connection: %w", err)
	}

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	a.conn = conn
	return nil
}

// Close rolls back an unfinished transaction and releases the session.
// Closing a closed adapter is a no-op.
func (a *Adapter) Close() error {
	if a.conn == nil {
		return nil
	}

	var firstErr error
	if a.tx != nil {
		if err := a.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			firstErr = err
		}
		a.tx = nil
	}

	if err := a.conn.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	a.conn = nil
	return firstErr
}

// Dispose closes the session and the connection handle.
func (a *Adapter) Dispose() error {
	err := a.Close()
	if a.db != nil {
		if cerr := a.db.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// State reports whether a session is held.
func (a *Adapter) State() adapters.ConnectionState {
	if a.conn != nil {
		return adapters.StateOpen
	}
	return adapters.StateClosed
}

// ========== Transactions ==========

// BeginTransaction starts a transaction on the adapter's session.
func (a *Adapter) BeginTransaction(ctx context.Context, opts *sql.TxOptions) error {
	if a.conn == nil {
		return adapters.ErrConnectionClosed
	}
	if a.tx != nil {
		return adapters.ErrTransactionActive
	}

	tx, err := a.conn.BeginTxx(ctx, opts)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	a.tx = tx
	return nil
}

// Commit commits and detaches the current transaction.
func (a *Adapter) Commit() error {
	if a.tx == nil {
		return adapters.ErrNoTransaction
	}
	tx := a.tx
	a.tx = nil
	return tx.Commit()
}

// Rollback rolls back and detaches the current transaction.
func (a *Adapter) Rollback() error {
	if a.tx == nil {
		return adapters.ErrNoTransaction
	}
	tx := a.tx
	a.tx = nil
	return tx.Rollback()
}

// Transaction returns the attached transaction, or nil.
func (a *Adapter) Transaction() *sqlx.Tx {
	return a.tx
}

// SetTransaction attaches tx to subsequent commands. nil detaches.
func (a *Adapter) SetTransaction(tx *sqlx.Tx) {
	a.tx = tx
}

// ========== Command preparation ==========

// PrepareCommand binds the session, text, current transaction, the default
// timeout and the dialect to cmd, then appends one bound parameter per entry of
// params in order. A nil conn selects the adapter's session.
func (a *Adapter) PrepareCommand(cmd *adapters.Command, conn adapters.Connection, text string, params adapters.Parameters) {
	switch {
	case conn != nil:
		cmd.Connection = conn
	case a.conn != nil:
		cmd.Connection = a.conn
	default:
		cmd.Connection = nil
	}

	cmd.Text = text
	cmd.Transaction = a.tx
	cmd.Timeout = adapters.CommandTimeout
	cmd.Type = adapters.CommandText
	cmd.Binder = a.dialect

	for _, p := range params {
		cmd.AddParameter(adapters.NewBoundParameter(p))
	}
}

func (a *Adapter) newCommand(text string, params adapters.Parameters, typ adapters.CommandType) *adapters.Command {
	cmd := &adapters.Command{}
	a.PrepareCommand(cmd, nil, text, params)
	cmd.Type = typ
	return cmd
}

func (a *Adapter) call(op execlog.Operation, cmd *adapters.Command) execlog.Call {
	params := make([]execlog.Param, 0, len(cmd.Parameters))
	for _, p := range cmd.Parameters {
		params = append(params, execlog.Param{
			Name:      p.Name,
			Direction: p.Direction.String(),
			Type:      p.Type.String(),
			Value:     p.Value,
		})
	}
	return execlog.Call{
		Database:   string(a.dialect.Type()),
		Operation:  op,
		Statement:  cmd.Text,
		Parameters: params,
	}
}

// ========== Execution ==========

// ExecuteNonQuery runs sqlText and returns the affected row count.
func (a *Adapter) ExecuteNonQuery(ctx context.Context, sqlText string, params adapters.Parameters) (int64, error) {
	cmd := a.newCommand(sqlText, params, adapters.CommandText)

	return execlog.Measure(ctx, a.logger, a.call(execlog.OpExecuteNonQuery, cmd),
		func(ctx context.Context) (int64, string, error) {
			n, err := cmd.ExecuteNonQuery(ctx)
			if err != nil {
				return 0, "", err
			}
			return n, strconv.FormatInt(n, 10), nil
		})
}

type scalar struct {
	value any
	ok    bool
}

// ExecuteScalar returns the first column of the first row; ok is false when
// there is no row or the value is NULL.
func (a *Adapter) ExecuteScalar(ctx context.Context, sqlText string, params adapters.Parameters) (any, bool, error) {
	cmd := a.newCommand(sqlText, params, adapters.CommandText)

	res, err := execlog.Measure(ctx, a.logger, a.call(execlog.OpExecuteScalar, cmd),
		func(ctx context.Context) (scalar, string, error) {
			v, ok, err := cmd.ExecuteScalar(ctx)
			if err != nil {
				return scalar{}, "", err
			}
			if !ok {
				return scalar{}, "0", nil
			}
			return scalar{value: v, ok: true}, "1", nil
		})
	return res.value, res.ok, err
}

// ExecuteReader returns a cursor over sqlText. The caller closes it.
func (a *Adapter) ExecuteReader(ctx context.Context, sqlText string, params adapters.Parameters) (*adapters.Reader, error) {
	cmd := a.newCommand(sqlText, params, adapters.CommandText)

	return execlog.Trace(ctx, a.logger, a.call(execlog.OpExecuteReader, cmd),
		func(ctx context.Context) (*adapters.Reader, error) {
			return cmd.ExecuteReader(ctx, nil)
		})
}

// ExecuteDataSet materializes every result set of sqlText. The first table is
// named dataset.DefaultName.
func (a *Adapter) ExecuteDataSet(ctx context.Context, sqlText string, params adapters.Parameters) (*dataset.DataSet, error) {
	cmd := a.newCommand(sqlText, params, adapters.CommandText)

	return execlog.Measure(ctx, a.logger, a.call(execlog.OpExecuteDataSet, cmd),
		func(ctx context.Context) (*dataset.DataSet, string, error) {
			return fill(ctx, cmd, dataset.DefaultName)
		})
}

// RunProcedure calls procedure name and returns its rows. Closing the reader
// also closes the adapter's session.
func (a *Adapter) RunProcedure(ctx context.Context, name string, params adapters.Parameters) (*adapters.Reader, error) {
	cmd := a.newCommand(name, params, adapters.CommandStoredProcedure)

	return execlog.Trace(ctx, a.logger, a.call(execlog.OpRunProcedure, cmd),
		func(ctx context.Context) (*adapters.Reader, error) {
			return cmd.ExecuteReader(ctx, a.Close)
		})
}

// RunProcedureTable calls procedure name and materializes its rows under tableName.
func (a *Adapter) RunProcedureTable(ctx context.Context, name string, params adapters.Parameters, tableName string) (*dataset.DataSet, error) {
	cmd := a.newCommand(name, params, adapters.CommandStoredProcedure)

	return execlog.Measure(ctx, a.logger, a.call(execlog.OpRunProcedureTable, cmd),
		func(ctx context.Context) (*dataset.DataSet, string, error) {
			return fill(ctx, cmd, tableName)
		})
}

type procedureResult struct {
	returnValue  int
	rowsAffected int64
}

// RunProcedureReturn calls procedure name with an extra return value parameter
// and returns that value and the affected row count.
func (a *Adapter) RunProcedureReturn(ctx context.Context, name string, params adapters.Parameters) (int, int64, error) {
	cmd := a.newCommand(name, params, adapters.CommandStoredProcedure)
	cmd.AddParameter(adapters.NewBoundParameter(adapters.Parameter{
		Name:      adapters.ReturnValueName,
		Direction: adapters.DirectionReturnValue,
		Type:      adapters.DbTypeInt32,
		Size:      4,
	}))

	res, err := execlog.Measure(ctx, a.logger, a.call(execlog.OpRunProcedureReturn, cmd),
		func(ctx context.Context) (procedureResult, string, error) {
			n, err := cmd.ExecuteNonQuery(ctx)
			if err != nil {
				return procedureResult{}, "", err
			}
			rv, err := cmd.ReturnParameter().Int()
			if err != nil {
				return procedureResult{}, "", err
			}
			return procedureResult{returnValue: rv, rowsAffected: n}, strconv.Itoa(rv), nil
		})
	return res.returnValue, res.rowsAffected, err
}

func fill(ctx context.Context, cmd *adapters.Command, tableName string) (*dataset.DataSet, string, error) {
	rows, cancel, err := cmd.Query(ctx)
	if err != nil {
		return nil, "", err
	}
	defer cancel()

	ds := dataset.New()
	if _, err := dataset.Fill(ds, rows, tableName); err != nil {
		return nil, "", err
	}
	return ds, strconv.Itoa(ds.FirstRowCount()), nil
}
