// Package dataset materializes query results into in-memory tables that no
// longer depend on the connection that produced them.
package dataset

import (
	"fmt"

	"github.com/jmoiron/sqlx"
)

// DefaultName is the table name used when a caller does not choose one.
const DefaultName = "DataSet"

// Column describes one result column.
type Column struct {
	Name         string
	DatabaseType string
	Nullable     bool
}

// DataTable is one fully read result set.
type DataTable struct {
	Name    string
	Columns []Column
	Rows    [][]any
}

// RowCount returns the number of rows in the table.
func (t *DataTable) RowCount() int {
	return len(t.Rows)
}

// ColumnIndex returns the position of the named column or -1.
func (t *DataTable) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// Value returns the cell at row for the named column.
func (t *DataTable) Value(row int, column string) (any, bool) {
	idx := t.ColumnIndex(column)
	if idx < 0 || row < 0 || row >= len(t.Rows) {
		return nil, false
	}
	return t.Rows[row][idx], true
}

// DataSet is an ordered set of named tables.
type DataSet struct {
	Tables []*DataTable
}

// New returns an empty DataSet.
func New() *DataSet {
	return &DataSet{}
}

// Table returns the table called name, or nil.
func (ds *DataSet) Table(name string) *DataTable {
	for _, t := range ds.Tables {
		if t.Name == name {
			return t
		}
	}
	return nil
}

// First returns the first table, or nil when none was produced.
func (ds *DataSet) First() *DataTable {
	if len(ds.Tables) == 0 {
		return nil
	}
	return ds.Tables[0]
}

// FirstRowCount returns the row count of the first table, 0 without tables.
func (ds *DataSet) FirstRowCount() int {
	if t := ds.First(); t != nil {
		return t.RowCount()
	}
	return 0
}

// Fill reads every result set from rows into ds. The first table is called
// tableName, the following ones tableName1, tableName2 and so on. Result sets
// without columns produce no table. Fill returns the number of rows read and
// always closes rows.
func Fill(ds *DataSet, rows *sqlx.Rows, tableName string) (int, error) {
	defer rows.Close()

	if tableName == "" {
		tableName = DefaultName
	}

	total := 0
	produced := 0
	for {
		types, err := rows.ColumnTypes()
		if err != nil {
			return total, fmt.Errorf("failed to read columns: %w", err)
		}

		if len(types) > 0 {
			name := tableName
			if produced > 0 {
				name = fmt.Sprintf("%s%d", tableName, produced)
			}

			table := &DataTable{Name: name, Columns: make([]Column, len(types))}
			for i, ct := range types {
				nullable, _ := ct.Nullable()
				table.Columns[i] = Column{
					Name:         ct.Name(),
					DatabaseType: ct.DatabaseTypeName(),
					Nullable:     nullable,
				}
			}

			for rows.Next() {
				values, err := rows.SliceScan()
				if err != nil {
					return total, err
				}
				table.Rows = append(table.Rows, values)
			}
			if err := rows.Err(); err != nil {
				return total, err
			}

			ds.Tables = append(ds.Tables, table)
			total += table.RowCount()
			produced++
		}

		if !rows.NextResultSet() {
			break
		}
	}

	return total, rows.Err()
}
