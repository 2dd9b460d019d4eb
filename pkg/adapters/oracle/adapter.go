package oracle

import (
	"github.com/ruslano69/dataaccess/pkg/adapters"
	"github.com/ruslano69/dataaccess/pkg/adapters/base"
)

// AdapterType идентификатор Oracle адаптера
const AdapterType = adapters.TypeOracle

// Compile-time check: Adapter реализует adapters.DataAccess
var _ adapters.DataAccess = (*Adapter)(nil)

func init() {
	adapters.Register(AdapterType, New)
}

// Dialect - Oracle через ODBC: позиционные "?", вызов процедур в escape-синтаксисе
// ODBC, возвращаемое значение функции читается из DUAL.
type Dialect struct{}

func (Dialect) Type() adapters.DatabaseType { return AdapterType }

func (Dialect) DriverName() string { return "odbc" }

// CommandText renders {CALL name(?, ...)} for procedures and
// SELECT name(?, ...) FROM DUAL when a return value is expected.
func (Dialect) CommandText(cmd *adapters.Command) (string, error) {
	if cmd.Type != adapters.CommandStoredProcedure {
		return cmd.Text, nil
	}
	if cmd.ReturnParameter() != nil {
		return base.ProcedureCall(cmd, "SELECT ", " FROM DUAL", base.QuestionMark), nil
	}
	return base.ProcedureCall(cmd, "{CALL ", "}", base.QuestionMark), nil
}

func (Dialect) BindArgs(cmd *adapters.Command) ([]any, error) {
	return base.PositionalArgs(cmd)
}

func (Dialect) ReturnsAsRow() bool { return true }

// Adapter реализует adapters.DataAccess для Oracle
type Adapter struct {
	*base.Adapter
}

// New создает адаптер. DSN - строка подключения ODBC:
//
//	DRIVER={Oracle in OraClient19Home1};DBQ=dbhost:1521/ORCL;UID=scott;PWD=tiger
//
// или имя источника данных: DSN=ORCL;UID=scott;PWD=tiger
func New(cfg adapters.Config, opts ...adapters.Option) (adapters.DataAccess, error) {
	b, err := base.New(Dialect{}, cfg.DSN, opts...)
	if err != nil {
		return nil, err
	}
	return &Adapter{Adapter: b}, nil
}
