package main

import "fmt"

const version = "1.0.0"

// PrintVersion prints version information
func PrintVersion() {
	fmt.Printf("dacli version %s\n", version)
}

// PrintHelp prints help information
func PrintHelp() {
	fmt.Println("dacli - run SQL statements and stored procedures through the data access layer")
	fmt.Printf("Version: %s\n\n", version)

	fmt.Println("USAGE:")
	fmt.Println("  dacli --mode <mode> (--sql <text> | --proc <name>) [options]")
	fmt.Println()

	fmt.Println("MODES:")
	fmt.Println("    nonquery                   Execute statement, print affected rows")
	fmt.Println("    scalar                     Print first column of first row")
	fmt.Println("    reader                     Stream rows to stdout")
	fmt.Println("    dataset                    Load all result sets, print them")
	fmt.Println("    proc                       Call procedure, stream its rows")
	fmt.Println("    proc-table                 Call procedure, load rows into a table")
	fmt.Println("    proc-return                Call procedure, print its return value")
	fmt.Println()

	fmt.Println("OPTIONS:")
	fmt.Println()

	fmt.Println("  General:")
	fmt.Println("    -c, --config <file>        Configuration file (default: config.yaml)")
	fmt.Println("    --type <db>                Database type, overrides config")
	fmt.Println("    --dsn <string>             Connection string, overrides config")
	fmt.Println("    --driver <name>            Alternative driver (pgx|pq, sqlite|sqlite3)")
	fmt.Println("    --log-level <level>        Execution log level: minimal, standard, full")
	fmt.Println()

	fmt.Println("  Command:")
	fmt.Println("    -s, --sql <text>           SQL statement")
	fmt.Println("    --proc <name>              Stored procedure name")
	fmt.Println("    -p, --param name=value[:type]")
	fmt.Println("                               Parameter, repeatable. Types: string, int16, int32,")
	fmt.Println("                               int64, decimal, double, boolean, datetime, binary")
	fmt.Println("                               An empty value with a type binds a typed NULL")
	fmt.Println("    --table <name>             Result table name (dataset modes)")
	fmt.Println("    --tx                       Run inside a transaction")
	fmt.Println("    --xlsx <file>              Save dataset results as XLSX")
	fmt.Println("    --max-rows <n>             Limit printed rows per table")
	fmt.Println("    --types                    Show column database types")
	fmt.Println()

	fmt.Println("  Config:")
	fmt.Println("    --create-config <type>     Write sample config.yaml (oracle, mssql, mysql, postgres, sqlite)")
	fmt.Println()

	fmt.Println("  Misc:")
	fmt.Println("    -v, --version              Show version information")
	fmt.Println("    -h, --help                 Show this help")
	fmt.Println()

	fmt.Println("EXAMPLES:")
	fmt.Println("  dacli --create-config sqlite")
	fmt.Println("  dacli -m scalar -s \"SELECT COUNT(*) FROM orders WHERE region = ?\" -p region=EU")
	fmt.Println("  dacli -m nonquery --tx -s \"UPDATE orders SET state = 'closed' WHERE id = ?\" -p id=42:int64")
	fmt.Println("  dacli -m dataset -s \"SELECT * FROM orders\" --xlsx orders.xlsx")
	fmt.Println("  dacli -m proc-return --proc get_count -p region=EU")
}
