package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/ruslano69/dataaccess/pkg/adapters"
	"github.com/ruslano69/dataaccess/pkg/adapters/base"
	"github.com/ruslano69/dataaccess/pkg/dataset"
)

// printer renders results as aligned text tables.
type printer struct {
	w         io.Writer
	dbType    adapters.DatabaseType
	maxRows   int
	showTypes bool
}

func newPrinter(w io.Writer, dbType adapters.DatabaseType, maxRows int, showTypes bool) *printer {
	return &printer{w: w, dbType: dbType, maxRows: maxRows, showTypes: showTypes}
}

func (p *printer) Printf(format string, args ...any) {
	fmt.Fprintf(p.w, format, args...)
}

// Scalar prints the value or (null) when absent.
func (p *printer) Scalar(v any, ok bool) {
	if !ok {
		fmt.Fprintln(p.w, "(null)")
		return
	}
	fmt.Fprintln(p.w, base.FormatValue(v, "", p.dbType))
}

// Reader prints every row of r and closes it.
func (p *printer) Reader(r *adapters.Reader) error {
	defer r.Close()

	types, err := r.ColumnTypes()
	if err != nil {
		return err
	}
	columns := make([]dataset.Column, len(types))
	for i, ct := range types {
		columns[i] = dataset.Column{Name: ct.Name(), DatabaseType: ct.DatabaseTypeName()}
	}

	tw := tabwriter.NewWriter(p.w, 0, 0, 2, ' ', 0)
	p.header(tw, columns)

	count := 0
	for r.Next() {
		values, err := r.SliceScan()
		if err != nil {
			return err
		}
		count++
		if p.maxRows > 0 && count > p.maxRows {
			continue
		}
		p.row(tw, columns, values)
	}
	if err := r.Err(); err != nil {
		return err
	}
	tw.Flush()

	fmt.Fprintf(p.w, "(%d row(s))\n", count)
	return r.Close()
}

// DataSet prints each table under its name.
func (p *printer) DataSet(ds *dataset.DataSet) {
	if len(ds.Tables) == 0 {
		fmt.Fprintln(p.w, "(no result sets)")
		return
	}
	for i, t := range ds.Tables {
		if i > 0 {
			fmt.Fprintln(p.w)
		}
		fmt.Fprintf(p.w, "== %s ==\n", t.Name)

		tw := tabwriter.NewWriter(p.w, 0, 0, 2, ' ', 0)
		p.header(tw, t.Columns)
		for r, values := range t.Rows {
			if p.maxRows > 0 && r >= p.maxRows {
				break
			}
			p.row(tw, t.Columns, values)
		}
		tw.Flush()
		fmt.Fprintf(p.w, "(%d row(s))\n", t.RowCount())
	}
}

func (p *printer) header(w io.Writer, columns []dataset.Column) {
	names := make([]string, len(columns))
	for i, c := range columns {
		names[i] = c.Name
		if p.showTypes && c.DatabaseType != "" {
			names[i] = fmt.Sprintf("%s (%s)", c.Name, c.DatabaseType)
		}
	}
	fmt.Fprintln(w, strings.Join(names, "\t"))
}

func (p *printer) row(w io.Writer, columns []dataset.Column, values []any) {
	cells := make([]string, len(values))
	for i, v := range values {
		columnType := ""
		if i < len(columns) {
			columnType = columns[i].DatabaseType
		}
		if v == nil {
			cells[i] = "NULL"
			continue
		}
		cells[i] = base.FormatValue(v, columnType, p.dbType)
	}
	fmt.Fprintln(w, strings.Join(cells, "\t"))
}
