package postgres

import (
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx database/sql driver ("pgx")
	_ "github.com/lib/pq"              // lib/pq driver ("postgres")

	"github.com/ruslano69/dataaccess/pkg/adapters"
	"github.com/ruslano69/dataaccess/pkg/adapters/base"
)

const (
	driverPgx = "pgx"
	driverPq  = "postgres"
)

// Compile-time check: Adapter должен реализовывать интерфейс adapters.DataAccess
var _ adapters.DataAccess = (*Adapter)(nil)

// Регистрация адаптера в глобальной фабрике
func init() {
	adapters.Register(adapters.TypePostgres, New)
}

// Dialect - PostgreSQL: параметры $1, $2, ...; процедуры вызываются как
// функции, возвращающие набор строк.
type Dialect struct {
	Driver string
}

func (d Dialect) Type() adapters.DatabaseType { return adapters.TypePostgres }

func (d Dialect) DriverName() string {
	if d.Driver == "" {
		return driverPgx
	}
	return d.Driver
}

// CommandText renders SELECT * FROM name($1, ...) for procedures and
// SELECT name($1, ...) when a return value is expected.
func (d Dialect) CommandText(cmd *adapters.Command) (string, error) {
	if cmd.Type != adapters.CommandStoredProcedure {
		return cmd.Text, nil
	}
	if cmd.ReturnParameter() != nil {
		return base.ProcedureCall(cmd, "SELECT ", "", base.DollarMark), nil
	}
	return base.ProcedureCall(cmd, "SELECT * FROM ", "", base.DollarMark), nil
}

func (d Dialect) BindArgs(cmd *adapters.Command) ([]any, error) {
	return base.PositionalArgs(cmd)
}

func (d Dialect) ReturnsAsRow() bool { return true }

// Adapter представляет адаптер для работы с PostgreSQL
type Adapter struct {
	*base.Adapter
}

// New создает адаптер. cfg.Driver: "pgx" (по умолчанию) или "pq".
func New(cfg adapters.Config, opts ...adapters.Option) (adapters.DataAccess, error) {
	driver := driverPgx
	switch cfg.Driver {
	case "", driverPgx:
	case "pq", driverPq:
		driver = driverPq
	default:
		return nil, fmt.Errorf("unsupported postgres driver: %s", cfg.Driver)
	}

	b, err := base.New(Dialect{Driver: driver}, cfg.DSN, opts...)
	if err != nil {
		return nil, err
	}
	return &Adapter{Adapter: b}, nil
}
