package mysql

import (
	_ "github.com/go-sql-driver/mysql" // MySQL driver

	"github.com/ruslano69/dataaccess/pkg/adapters"
	"github.com/ruslano69/dataaccess/pkg/adapters/base"
)

// AdapterType идентификатор MySQL адаптера
const AdapterType = adapters.TypeMySQL

func init() {
	// Регистрируем MySQL адаптер в фабрике
	adapters.Register(AdapterType, New)
}

// Dialect - MySQL: позиционные "?", процедуры через CALL, функции через SELECT
type Dialect struct{}

func (Dialect) Type() adapters.DatabaseType { return AdapterType }

func (Dialect) DriverName() string { return "mysql" }

// CommandText renders CALL name(?, ...) for procedures. A procedure with a
// return value is invoked as a stored function: SELECT name(?, ...).
func (Dialect) CommandText(cmd *adapters.Command) (string, error) {
	if cmd.Type != adapters.CommandStoredProcedure {
		return cmd.Text, nil
	}
	if cmd.ReturnParameter() != nil {
		return base.ProcedureCall(cmd, "SELECT ", "", base.QuestionMark), nil
	}
	return base.ProcedureCall(cmd, "CALL ", "", base.QuestionMark), nil
}

func (Dialect) BindArgs(cmd *adapters.Command) ([]any, error) {
	return base.PositionalArgs(cmd)
}

func (Dialect) ReturnsAsRow() bool { return true }

// Adapter реализует adapters.DataAccess для MySQL
type Adapter struct {
	*base.Adapter
}

// New создает адаптер. DSN в формате go-sql-driver: "user:pass@tcp(host:3306)/db?parseTime=true".
// multiStatements=true нужен для процедур, возвращающих несколько наборов строк.
func New(cfg adapters.Config, opts ...adapters.Option) (adapters.DataAccess, error) {
	b, err := base.New(Dialect{}, cfg.DSN, opts...)
	if err != nil {
		return nil, err
	}
	return &Adapter{Adapter: b}, nil
}
