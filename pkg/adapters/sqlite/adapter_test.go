package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ruslano69/dataaccess/pkg/adapters"
	"github.com/ruslano69/dataaccess/pkg/execlog"
)

func openMemory(t *testing.T) (adapters.DataAccess, *execlog.MemoryAppender) {
	t.Helper()

	memory := execlog.NewMemoryAppender()
	logger := execlog.NewLogger(execlog.SyncConfig(), memory)

	db, err := New(adapters.Config{Type: adapters.TypeSQLite, DSN: ":memory:"}, adapters.WithLogger(logger))
	require.NoError(t, err)
	require.NoError(t, db.Open(context.Background()))

	t.Cleanup(func() {
		db.Dispose()
		logger.Close()
	})
	return db, memory
}

func seed(t *testing.T, db adapters.DataAccess) {
	t.Helper()
	ctx := context.Background()

	_, err := db.ExecuteNonQuery(ctx, `CREATE TABLE orders (
		id     INTEGER PRIMARY KEY,
		region TEXT NOT NULL,
		amount REAL,
		note   TEXT
	)`, nil)
	require.NoError(t, err)

	for i, region := range []string{"EU", "EU", "US"} {
		_, err := db.ExecuteNonQuery(ctx, "INSERT INTO orders (id, region, amount) VALUES (?, ?, ?)",
			adapters.NewParameters(
				adapters.In("id", i+1),
				adapters.In("region", region),
				adapters.In("amount", float64(10*(i+1))),
			))
		require.NoError(t, err)
	}
}

func TestSelectOne(t *testing.T) {
	db, memory := openMemory(t)

	v, ok, err := db.ExecuteScalar(context.Background(), "SELECT 1", nil)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(1), v)

	entries := memory.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "1", entries[0].Count)
	assert.Equal(t, "sqlite", entries[0].Database)
}

func TestUpdateNothing(t *testing.T) {
	db, memory := openMemory(t)
	seed(t, db)

	n, err := db.ExecuteNonQuery(context.Background(), "UPDATE orders SET amount = 1 WHERE 0 = 1", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	entries := memory.Entries()
	assert.Equal(t, "0", entries[len(entries)-1].Count)
}

func TestExecuteScalar_Absent(t *testing.T) {
	db, _ := openMemory(t)
	seed(t, db)
	ctx := context.Background()

	_, ok, err := db.ExecuteScalar(ctx, "SELECT amount FROM orders WHERE id = ?",
		adapters.NewParameters(adapters.In("id", 999)))
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = db.ExecuteScalar(ctx, "SELECT note FROM orders WHERE id = 1", nil)
	require.NoError(t, err)
	assert.False(t, ok, "NULL is absent")
}

func TestNamedParameters(t *testing.T) {
	db, _ := openMemory(t)
	seed(t, db)

	v, ok, err := db.ExecuteScalar(context.Background(),
		"SELECT COUNT(*) FROM orders WHERE region = :region AND amount > :min",
		adapters.NewParameters(adapters.In(":min", 5.0), adapters.In("region", "EU")))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(2), v)
}

func TestTypedNullParameter(t *testing.T) {
	db, _ := openMemory(t)
	seed(t, db)
	ctx := context.Background()

	n, err := db.ExecuteNonQuery(ctx, "UPDATE orders SET note = ? WHERE id = 1",
		adapters.NewParameters(adapters.Typed("note", nil, adapters.DbTypeString)))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, ok, err := db.ExecuteScalar(ctx, "SELECT note FROM orders WHERE id = 1", nil)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestExecuteReader(t *testing.T) {
	db, _ := openMemory(t)
	seed(t, db)

	r, err := db.ExecuteReader(context.Background(), "SELECT id, region FROM orders ORDER BY id", nil)
	require.NoError(t, err)
	defer r.Close()

	var regions []string
	for r.Next() {
		var id int
		var region string
		require.NoError(t, r.Scan(&id, &region))
		regions = append(regions, region)
	}
	require.NoError(t, r.Err())
	assert.Equal(t, []string{"EU", "EU", "US"}, regions)
}

func TestExecuteDataSet(t *testing.T) {
	db, memory := openMemory(t)
	seed(t, db)

	ds, err := db.ExecuteDataSet(context.Background(), "SELECT id, region FROM orders WHERE region = ?",
		adapters.NewParameters(adapters.In("region", "EU")))
	require.NoError(t, err)

	table := ds.Table("DataSet")
	require.NotNil(t, table)
	assert.Equal(t, 2, table.RowCount())
	assert.Equal(t, 1, table.ColumnIndex("region"))

	entries := memory.Entries()
	assert.Equal(t, "2", entries[len(entries)-1].Count)
}

func TestProceduresUnsupported(t *testing.T) {
	db, _ := openMemory(t)
	ctx := context.Background()

	_, err := db.RunProcedure(ctx, "list_orders", nil)
	assert.ErrorIs(t, err, adapters.ErrProceduresUnsupported)

	_, err = db.RunProcedureTable(ctx, "list_orders", nil, "Orders")
	assert.ErrorIs(t, err, adapters.ErrProceduresUnsupported)

	_, _, err = db.RunProcedureReturn(ctx, "get_count", nil)
	assert.ErrorIs(t, err, adapters.ErrProceduresUnsupported)

	// Ошибка не закрывает сессию
	assert.Equal(t, adapters.StateOpen, db.State())
}

func TestTransactionRollback(t *testing.T) {
	db, _ := openMemory(t)
	seed(t, db)
	ctx := context.Background()

	require.NoError(t, db.BeginTransaction(ctx, nil))
	n, err := db.ExecuteNonQuery(ctx, "DELETE FROM orders", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	require.NoError(t, db.Rollback())

	v, _, err := db.ExecuteScalar(ctx, "SELECT COUNT(*) FROM orders", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(3), v)
}

func TestMalformedSQL(t *testing.T) {
	db, memory := openMemory(t)
	ctx := context.Background()

	_, err := db.ExecuteDataSet(ctx, "SELEC 1", nil)
	require.Error(t, err)

	entries := memory.Entries()
	assert.Equal(t, execlog.StatusFailure, entries[len(entries)-1].Status)

	// Сессия не занята незакрытыми строками
	v, ok, err := db.ExecuteScalar(ctx, "SELECT 2", nil)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(2), v)
}

func TestOutputParametersRejected(t *testing.T) {
	db, _ := openMemory(t)

	_, err := db.ExecuteNonQuery(context.Background(), "SELECT 1",
		adapters.NewParameters(adapters.Out("x", adapters.DbTypeInt32, 4)))
	assert.ErrorIs(t, err, adapters.ErrDirectionUnsupported)
}

func TestNew_RejectsUnknownDriver(t *testing.T) {
	_, err := New(adapters.Config{Type: adapters.TypeSQLite, DSN: ":memory:", Driver: "duckdb"})
	assert.Error(t, err)
}
