package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/ruslano69/dataaccess/pkg/adapters"
	"github.com/ruslano69/dataaccess/pkg/dataset"
)

// Modes
const (
	modeNonQuery   = "nonquery"
	modeScalar     = "scalar"
	modeReader     = "reader"
	modeDataSet    = "dataset"
	modeProc       = "proc"
	modeProcTable  = "proc-table"
	modeProcReturn = "proc-return"
)

// commandText returns the statement or procedure name the mode needs.
func commandText(flags *Flags) (string, error) {
	switch *flags.Mode {
	case modeNonQuery, modeScalar, modeReader, modeDataSet:
		if *flags.SQL == "" {
			return "", fmt.Errorf("mode %s requires --sql", *flags.Mode)
		}
		return *flags.SQL, nil
	case modeProc, modeProcTable, modeProcReturn:
		if *flags.Proc == "" {
			return "", fmt.Errorf("mode %s requires --proc", *flags.Mode)
		}
		if *flags.Mode == modeProc && *flags.Tx {
			return "", errors.New("mode proc closes the session with its reader and cannot run with --tx")
		}
		return *flags.Proc, nil
	default:
		return "", fmt.Errorf("unknown mode: %s", *flags.Mode)
	}
}

func execute(ctx context.Context, db adapters.DataAccess, out *printer, flags *Flags, params adapters.Parameters) error {
	text, err := commandText(flags)
	if err != nil {
		return err
	}

	switch *flags.Mode {
	case modeNonQuery:
		n, err := db.ExecuteNonQuery(ctx, text, params)
		if err != nil {
			return err
		}
		out.Printf("%d row(s) affected\n", n)

	case modeScalar:
		v, ok, err := db.ExecuteScalar(ctx, text, params)
		if err != nil {
			return err
		}
		out.Scalar(v, ok)

	case modeReader:
		r, err := db.ExecuteReader(ctx, text, params)
		if err != nil {
			return err
		}
		return out.Reader(r)

	case modeProc:
		r, err := db.RunProcedure(ctx, text, params)
		if err != nil {
			return err
		}
		return out.Reader(r)

	case modeDataSet:
		ds, err := db.ExecuteDataSet(ctx, text, params)
		if err != nil {
			return err
		}
		return writeDataSet(out, ds, *flags.XLSX)

	case modeProcTable:
		ds, err := db.RunProcedureTable(ctx, text, params, *flags.Table)
		if err != nil {
			return err
		}
		return writeDataSet(out, ds, *flags.XLSX)

	case modeProcReturn:
		rv, n, err := db.RunProcedureReturn(ctx, text, params)
		if err != nil {
			return err
		}
		out.Printf("return value: %d (%d row(s) affected)\n", rv, n)
	}

	return nil
}

func writeDataSet(out *printer, ds *dataset.DataSet, xlsxPath string) error {
	out.DataSet(ds)
	if xlsxPath == "" {
		return nil
	}
	if err := dataset.WriteXLSX(ds, xlsxPath); err != nil {
		return err
	}
	out.Printf("✓ Saved %d table(s) to %s\n", len(ds.Tables), xlsxPath)
	return nil
}
