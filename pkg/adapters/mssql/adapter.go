package mssql

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	mssql "github.com/denisenkom/go-mssqldb" // MS SQL Server driver

	"github.com/ruslano69/dataaccess/pkg/adapters"
	"github.com/ruslano69/dataaccess/pkg/adapters/base"
)

// AdapterType is the factory key for this adapter.
const AdapterType = adapters.TypeMSSQL

// driverName selects go-mssqldb's native @name parameter syntax.
const driverName = "sqlserver"

// Compile-time check: Adapter реализует adapters.DataAccess
var _ adapters.DataAccess = (*Adapter)(nil)

func init() {
	// Register MS SQL Server adapter in factory
	adapters.Register(AdapterType, New)
}

// Dialect - SQL Server: named parameters (@name), output parameters through
// sql.Out, procedures executed as RPC calls and their return value delivered
// through mssql.ReturnStatus.
type Dialect struct{}

func (Dialect) Type() adapters.DatabaseType { return AdapterType }

func (Dialect) DriverName() string { return driverName }

// CommandText returns the statement or procedure name unchanged; the driver
// sends a bare procedure name as an RPC request.
func (Dialect) CommandText(cmd *adapters.Command) (string, error) {
	return cmd.Text, nil
}

func (Dialect) BindArgs(cmd *adapters.Command) ([]any, error) {
	args := base.NamedArgs(cmd)
	if rp := cmd.ReturnParameter(); rp != nil {
		status := new(mssql.ReturnStatus)
		rp.SetDest(status)
		args = append(args, status)
	}
	return args, nil
}

func (Dialect) ReturnsAsRow() bool { return false }

// Adapter implements adapters.DataAccess for Microsoft SQL Server.
type Adapter struct {
	*base.Adapter
}

// New creates an adapter for a sqlserver:// URL or an ADO-style connection string.
func New(cfg adapters.Config, opts ...adapters.Option) (adapters.DataAccess, error) {
	b, err := base.New(Dialect{}, cfg.DSN, opts...)
	if err != nil {
		return nil, err
	}
	return &Adapter{Adapter: b}, nil
}

// ServerVersion returns the product version reported by the server, e.g. "15.0.2000.5".
func (a *Adapter) ServerVersion(ctx context.Context) (string, error) {
	v, ok, err := a.ExecuteScalar(ctx, "SELECT CAST(SERVERPROPERTY('ProductVersion') AS NVARCHAR(128))", nil)
	if err != nil {
		return "", fmt.Errorf("failed to get server version: %w", err)
	}
	if !ok {
		return "", fmt.Errorf("failed to get server version: empty result")
	}
	return base.FormatValue(v, "", AdapterType), nil
}

// parseServerVersion parses SQL Server version string to major version number.
// Examples:
//   - "11.0.2100.60" → 11 (SQL Server 2012)
//   - "15.0.2000.5"  → 15 (SQL Server 2019)
func parseServerVersion(version string) int {
	major, _, _ := strings.Cut(version, ".")
	n, err := strconv.Atoi(major)
	if err != nil {
		return 0
	}
	return n
}

// VersionName returns human-readable server version name.
func VersionName(version string) string {
	major := parseServerVersion(version)
	switch major {
	case 11:
		return "SQL Server 2012"
	case 12:
		return "SQL Server 2014"
	case 13:
		return "SQL Server 2016"
	case 14:
		return "SQL Server 2017"
	case 15:
		return "SQL Server 2019"
	case 16:
		return "SQL Server 2022"
	default:
		return fmt.Sprintf("SQL Server (version %d)", major)
	}
}
