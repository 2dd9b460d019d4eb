package main

import (
	"github.com/spf13/pflag"
)

// Flags holds all command-line flags
type Flags struct {
	// Command
	Mode      *string
	SQL       *string
	Proc      *string
	Params    *[]string
	Table     *string
	Tx        *bool
	XLSX      *string
	MaxRows   *int
	ShowTypes *bool

	// Options
	Config   *string
	DBType   *string
	DSN      *string
	Driver   *string
	LogLevel *string

	// Config Creation
	CreateConfig *string

	// Misc
	Version *bool
	Help    *bool
}

// ParseFlags defines and parses all command-line flags
func ParseFlags(args []string) (*Flags, error) {
	fs := pflag.NewFlagSet("dacli", pflag.ContinueOnError)
	fs.Usage = PrintHelp
	f := &Flags{}

	// Command
	f.Mode = fs.StringP("mode", "m", "", "Operation: nonquery, scalar, reader, dataset, proc, proc-table, proc-return")
	f.SQL = fs.StringP("sql", "s", "", "SQL statement text")
	f.Proc = fs.String("proc", "", "Stored procedure name")
	f.Params = fs.StringArrayP("param", "p", nil, "Parameter name=value[:type], repeatable")
	f.Table = fs.String("table", "", "Result table name for dataset modes")
	f.Tx = fs.Bool("tx", false, "Run inside a transaction, commit on success")
	f.XLSX = fs.String("xlsx", "", "Write dataset results to an XLSX file")
	f.MaxRows = fs.Int("max-rows", 0, "Print at most N rows per table (0 = all)")
	f.ShowTypes = fs.Bool("types", false, "Show database column types in headers")

	// Options
	f.Config = fs.StringP("config", "c", "config.yaml", "Configuration file path")
	f.DBType = fs.String("type", "", "Database type, overrides config (oracle, mssql, mysql, postgres, sqlite)")
	f.DSN = fs.String("dsn", "", "Connection string, overrides config")
	f.Driver = fs.String("driver", "", "Alternative driver: pgx|pq for postgres, sqlite|sqlite3 for sqlite")
	f.LogLevel = fs.String("log-level", "", "Execution log level: minimal, standard, full")

	// Config Creation
	f.CreateConfig = fs.String("create-config", "", "Create sample config.yaml for a database type")

	// Misc
	f.Version = fs.BoolP("version", "v", false, "Show version information")
	f.Help = fs.BoolP("help", "h", false, "Show help")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return f, nil
}
