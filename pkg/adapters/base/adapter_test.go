package base_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ruslano69/dataaccess/pkg/adapters"
	"github.com/ruslano69/dataaccess/pkg/adapters/base"
	"github.com/ruslano69/dataaccess/pkg/execlog"
)

// testDialect: positional "?", procedures as CALL, return values as a row.
type testDialect struct{}

func (testDialect) Type() adapters.DatabaseType { return "mock" }
func (testDialect) DriverName() string          { return "sqlmock" }

func (testDialect) CommandText(cmd *adapters.Command) (string, error) {
	if cmd.Type != adapters.CommandStoredProcedure {
		return cmd.Text, nil
	}
	if cmd.ReturnParameter() != nil {
		return base.ProcedureCall(cmd, "SELECT ", "", base.QuestionMark), nil
	}
	return base.ProcedureCall(cmd, "CALL ", "", base.QuestionMark), nil
}

func (testDialect) BindArgs(cmd *adapters.Command) ([]any, error) {
	return base.PositionalArgs(cmd)
}

func (testDialect) ReturnsAsRow() bool { return true }

func newMockAdapter(t *testing.T) (*base.Adapter, sqlmock.Sqlmock, *execlog.MemoryAppender) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	memory := execlog.NewMemoryAppender()
	logger := execlog.NewLogger(execlog.SyncConfig(), memory)

	a := base.NewWithDB(testDialect{}, sqlx.NewDb(db, "sqlmock"), adapters.WithLogger(logger))
	require.NoError(t, a.Open(context.Background()))

	t.Cleanup(func() {
		a.Dispose()
		logger.Close()
	})
	return a, mock, memory
}

// columns builds rows with column definitions, needed by ColumnTypes.
func columns(mock sqlmock.Sqlmock, names ...string) *sqlmock.Rows {
	defs := make([]*sqlmock.Column, len(names))
	for i, name := range names {
		defs[i] = sqlmock.NewColumn(name).OfType("VARCHAR", "").Nullable(true)
	}
	return mock.NewRowsWithColumnDefinition(defs...)
}

func q(sql string) string {
	return regexp.QuoteMeta(sql)
}

func lastEntry(t *testing.T, memory *execlog.MemoryAppender) *execlog.Entry {
	t.Helper()
	entries := memory.Entries()
	require.NotEmpty(t, entries)
	return entries[len(entries)-1]
}

func TestPrepareCommand_BindsEverything(t *testing.T) {
	a, _, _ := newMockAdapter(t)

	params := adapters.NewParameters(
		adapters.In("region", "EU"),
		adapters.Typed("since", nil, adapters.DbTypeDateTime),
		adapters.In("limit", 10),
	)

	cmd := &adapters.Command{}
	a.PrepareCommand(cmd, nil, "SELECT * FROM orders WHERE region = ?", params)

	assert.Equal(t, a.Session(), cmd.Connection)
	assert.Nil(t, cmd.Transaction)
	assert.Equal(t, "SELECT * FROM orders WHERE region = ?", cmd.Text)
	assert.Equal(t, 600*time.Second, cmd.Timeout)
	assert.Equal(t, adapters.CommandText, cmd.Type)

	require.Len(t, cmd.Parameters, 3)
	for i, p := range params {
		assert.Equal(t, p.Name, cmd.Parameters[i].Name)
		assert.Equal(t, p.Value, cmd.Parameters[i].Value)
	}

	// Параметры вызывающего не меняются при связывании
	cmd.Parameters[0].Value = "US"
	assert.Equal(t, "EU", params[0].Value)
}

func TestPrepareCommand_EmptyParameters(t *testing.T) {
	a, _, _ := newMockAdapter(t)

	for _, params := range []adapters.Parameters{nil, adapters.NewParameters()} {
		cmd := &adapters.Command{}
		a.PrepareCommand(cmd, nil, "SELECT 1", params)
		assert.Empty(t, cmd.Parameters)
		assert.Equal(t, adapters.CommandTimeout, cmd.Timeout)
	}
}

func TestPrepareCommand_AttachesTransaction(t *testing.T) {
	a, mock, _ := newMockAdapter(t)

	mock.ExpectBegin()
	require.NoError(t, a.BeginTransaction(context.Background(), nil))

	cmd := &adapters.Command{}
	a.PrepareCommand(cmd, nil, "DELETE FROM t", nil)
	require.NotNil(t, cmd.Transaction)
	assert.Same(t, a.Transaction(), cmd.Transaction)

	mock.ExpectRollback()
	require.NoError(t, a.Rollback())
	assert.Nil(t, a.Transaction())
}

func TestPrepareCommand_ExplicitConnection(t *testing.T) {
	a, mock, _ := newMockAdapter(t)

	mock.ExpectBegin()
	tx, err := a.DB().Beginx()
	require.NoError(t, err)
	defer tx.Rollback()

	cmd := &adapters.Command{}
	a.PrepareCommand(cmd, tx, "SELECT 1", nil)
	assert.Equal(t, tx, cmd.Connection)
}

func TestExecuteNonQuery_ReturnsAffectedRows(t *testing.T) {
	a, mock, memory := newMockAdapter(t)

	mock.ExpectExec(q("UPDATE orders SET state = ? WHERE id = ?")).
		WithArgs("shipped", 42).
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := a.ExecuteNonQuery(context.Background(), "UPDATE orders SET state = ? WHERE id = ?",
		adapters.NewParameters(adapters.In("state", "shipped"), adapters.In("id", 42)))
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	entry := lastEntry(t, memory)
	assert.Equal(t, execlog.OpExecuteNonQuery, entry.Operation)
	assert.Equal(t, execlog.StatusSuccess, entry.Status)
	assert.Equal(t, "3", entry.Count)
	assert.Equal(t, "mock", entry.Database)
	require.Len(t, entry.Parameters, 2)
	assert.Equal(t, "state", entry.Parameters[0].Name)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecuteScalar(t *testing.T) {
	tests := []struct {
		name      string
		rows      *sqlmock.Rows
		wantValue any
		wantOK    bool
		wantCount string
	}{
		{
			name:      "no rows",
			rows:      sqlmock.NewRows([]string{"v"}),
			wantValue: nil,
			wantOK:    false,
			wantCount: "0",
		},
		{
			name:      "null",
			rows:      sqlmock.NewRows([]string{"v"}).AddRow(nil),
			wantValue: nil,
			wantOK:    false,
			wantCount: "0",
		},
		{
			name:      "value",
			rows:      sqlmock.NewRows([]string{"v", "w"}).AddRow(int64(7), "ignored").AddRow(int64(8), "x"),
			wantValue: int64(7),
			wantOK:    true,
			wantCount: "1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, mock, memory := newMockAdapter(t)

			mock.ExpectQuery(q("SELECT v FROM t")).WillReturnRows(tt.rows).RowsWillBeClosed()

			v, ok, err := a.ExecuteScalar(context.Background(), "SELECT v FROM t", nil)
			require.NoError(t, err)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantValue, v)
			assert.Equal(t, tt.wantCount, lastEntry(t, memory).Count)

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestExecuteReader_LeavesRowsOpenUntilClose(t *testing.T) {
	a, mock, memory := newMockAdapter(t)

	mock.ExpectQuery(q("SELECT id FROM t")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1).AddRow(2)).RowsWillBeClosed()

	r, err := a.ExecuteReader(context.Background(), "SELECT id FROM t", nil)
	require.NoError(t, err)

	var ids []int
	for r.Next() {
		var id int
		require.NoError(t, r.Scan(&id))
		ids = append(ids, id)
	}
	require.NoError(t, r.Close())
	assert.True(t, r.IsClosed())
	assert.Equal(t, []int{1, 2}, ids)

	// Курсор без метрики
	entry := lastEntry(t, memory)
	assert.False(t, entry.Counted)
	assert.Equal(t, adapters.StateOpen, a.State())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecuteDataSet_RecordsFirstTableRowCount(t *testing.T) {
	a, mock, memory := newMockAdapter(t)

	first := columns(mock, "id", "name").AddRow(1, "a").AddRow(2, "b")
	second := columns(mock, "total").AddRow(2)
	mock.ExpectQuery(q("SELECT")).WillReturnRows(first, second)

	ds, err := a.ExecuteDataSet(context.Background(), "SELECT", nil)
	require.NoError(t, err)
	require.Len(t, ds.Tables, 2)
	assert.Equal(t, "DataSet", ds.Tables[0].Name)
	assert.Equal(t, "DataSet1", ds.Tables[1].Name)
	assert.Equal(t, 2, ds.FirstRowCount())
	assert.Equal(t, "2", lastEntry(t, memory).Count)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecuteDataSet_EmptyResultRecordsZero(t *testing.T) {
	a, mock, memory := newMockAdapter(t)

	mock.ExpectQuery(q("SELECT id FROM t WHERE 0 = 1")).WillReturnRows(columns(mock, "id"))

	ds, err := a.ExecuteDataSet(context.Background(), "SELECT id FROM t WHERE 0 = 1", nil)
	require.NoError(t, err)
	assert.Equal(t, 0, ds.FirstRowCount())
	assert.Equal(t, "0", lastEntry(t, memory).Count)
}

func TestRunProcedure_ReaderCloseClosesSession(t *testing.T) {
	a, mock, memory := newMockAdapter(t)

	mock.ExpectQuery(q("CALL list_orders(?)")).
		WithArgs("EU").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1)).RowsWillBeClosed()

	r, err := a.RunProcedure(context.Background(), "list_orders",
		adapters.NewParameters(adapters.In("region", "EU")))
	require.NoError(t, err)
	assert.Equal(t, adapters.StateOpen, a.State())

	require.True(t, r.Next())
	require.NoError(t, r.Close())
	assert.Equal(t, adapters.StateClosed, a.State())

	assert.Equal(t, execlog.OpRunProcedure, lastEntry(t, memory).Operation)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunProcedureTable_UsesTableName(t *testing.T) {
	a, mock, memory := newMockAdapter(t)

	mock.ExpectQuery(q("CALL list_orders()")).
		WillReturnRows(columns(mock, "id").AddRow(1).AddRow(2).AddRow(3))

	ds, err := a.RunProcedureTable(context.Background(), "list_orders", nil, "Orders")
	require.NoError(t, err)
	require.NotNil(t, ds.Table("Orders"))
	assert.Equal(t, 3, ds.Table("Orders").RowCount())
	assert.Equal(t, "3", lastEntry(t, memory).Count)

	// Сессия остается открытой
	assert.Equal(t, adapters.StateOpen, a.State())
}

func TestRunProcedureReturn_ReturnValue(t *testing.T) {
	a, mock, memory := newMockAdapter(t)

	mock.ExpectQuery(q("SELECT get_count(?)")).
		WithArgs("EU").
		WillReturnRows(sqlmock.NewRows([]string{"get_count"}).AddRow(int64(42)))

	params := adapters.NewParameters(adapters.In("region", "EU"))
	rv, affected, err := a.RunProcedureReturn(context.Background(), "get_count", params)
	require.NoError(t, err)
	assert.Equal(t, 42, rv)
	assert.Equal(t, int64(0), affected)

	entry := lastEntry(t, memory)
	assert.Equal(t, "42", entry.Count)
	require.Len(t, entry.Parameters, 2)
	assert.Equal(t, adapters.ReturnValueName, entry.Parameters[1].Name)

	// Коллекция вызывающего не получила ReturnValue
	assert.Len(t, params, 1)
}

func TestMalformedSQL_ReturnsDriverErrorWithoutLeaks(t *testing.T) {
	a, mock, memory := newMockAdapter(t)

	syntaxErr := errors.New("syntax error at or near \"SELEC\"")
	mock.ExpectQuery(q("SELEC 1")).WillReturnError(syntaxErr)

	_, _, err := a.ExecuteScalar(context.Background(), "SELEC 1", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, syntaxErr)

	entry := lastEntry(t, memory)
	assert.Equal(t, execlog.StatusFailure, entry.Status)
	assert.False(t, entry.Counted)
	assert.Contains(t, entry.ErrorMessage, "syntax error")

	// Сессия пригодна для следующей команды
	mock.ExpectExec(q("DELETE FROM t")).WillReturnResult(sqlmock.NewResult(0, 0))
	_, err = a.ExecuteNonQuery(context.Background(), "DELETE FROM t", nil)
	require.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClosedAdapter(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)

	a := base.NewWithDB(testDialect{}, sqlx.NewDb(db, "sqlmock"))
	defer a.Dispose()

	assert.Equal(t, adapters.StateClosed, a.State())

	_, err = a.ExecuteNonQuery(context.Background(), "DELETE FROM t", nil)
	assert.ErrorIs(t, err, adapters.ErrConnectionClosed)

	err = a.BeginTransaction(context.Background(), nil)
	assert.ErrorIs(t, err, adapters.ErrConnectionClosed)

	assert.NoError(t, a.Close())
}

func TestLifecycleErrors(t *testing.T) {
	a, mock, _ := newMockAdapter(t)
	ctx := context.Background()

	assert.ErrorIs(t, a.Open(ctx), adapters.ErrConnectionOpen)
	assert.ErrorIs(t, a.Commit(), adapters.ErrNoTransaction)
	assert.ErrorIs(t, a.Rollback(), adapters.ErrNoTransaction)

	mock.ExpectBegin()
	require.NoError(t, a.BeginTransaction(ctx, nil))
	assert.ErrorIs(t, a.BeginTransaction(ctx, nil), adapters.ErrTransactionActive)

	mock.ExpectExec(q("INSERT INTO t VALUES (?)")).WithArgs(1).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	_, err := a.ExecuteNonQuery(ctx, "INSERT INTO t VALUES (?)", adapters.NewParameters(adapters.In("v", 1)))
	require.NoError(t, err)
	require.NoError(t, a.Commit())

	// Незавершенная транзакция откатывается при Close
	mock.ExpectBegin()
	mock.ExpectRollback()
	require.NoError(t, a.BeginTransaction(ctx, nil))
	require.NoError(t, a.Close())
	assert.Nil(t, a.Transaction())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPositionalDialect_RejectsOutputParameters(t *testing.T) {
	a, mock, _ := newMockAdapter(t)

	_, err := a.ExecuteNonQuery(context.Background(), "UPDATE t SET v = 1",
		adapters.NewParameters(adapters.Out("result", adapters.DbTypeInt32, 4)))
	assert.ErrorIs(t, err, adapters.ErrDirectionUnsupported)

	assert.NoError(t, mock.ExpectationsWereMet())
}
