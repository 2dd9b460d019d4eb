package sqlite

import (
	"context"
	"fmt"

	_ "github.com/mattn/go-sqlite3" // cgo SQLite driver ("sqlite3")
	_ "modernc.org/sqlite"          // pure Go SQLite driver ("sqlite")

	"github.com/ruslano69/dataaccess/pkg/adapters"
	"github.com/ruslano69/dataaccess/pkg/adapters/base"
)

const (
	driverSqlite  = "sqlite"
	driverSqlite3 = "sqlite3"
)

// Compile-time check: Adapter должен реализовывать интерфейс adapters.DataAccess
var _ adapters.DataAccess = (*Adapter)(nil)

// Регистрация адаптера в глобальной фабрике
func init() {
	adapters.Register(adapters.TypeSQLite, New)
}

// Dialect - SQLite: именованные параметры (:name, @name, $name) или "?" по порядку.
// Stored procedures do not exist in SQLite.
type Dialect struct {
	Driver string
}

func (d Dialect) Type() adapters.DatabaseType { return adapters.TypeSQLite }

func (d Dialect) DriverName() string {
	if d.Driver == "" {
		return driverSqlite
	}
	return d.Driver
}

func (d Dialect) CommandText(cmd *adapters.Command) (string, error) {
	if cmd.Type == adapters.CommandStoredProcedure {
		return "", fmt.Errorf("%w: %s", adapters.ErrProceduresUnsupported, cmd.Text)
	}
	return cmd.Text, nil
}

func (d Dialect) BindArgs(cmd *adapters.Command) ([]any, error) {
	for _, p := range cmd.Parameters {
		if p.Direction != adapters.DirectionInput {
			return nil, fmt.Errorf("%w: %s parameter %s", adapters.ErrDirectionUnsupported, p.Direction, p.Name)
		}
	}
	return base.NamedArgs(cmd), nil
}

func (d Dialect) ReturnsAsRow() bool { return false }

// Adapter представляет адаптер для работы с SQLite
type Adapter struct {
	*base.Adapter
}

// New creates an adapter for cfg.DSN (file path or "file::memory:").
// cfg.Driver selects "sqlite" (modernc, default) or "sqlite3" (mattn, cgo).
func New(cfg adapters.Config, opts ...adapters.Option) (adapters.DataAccess, error) {
	switch cfg.Driver {
	case "", driverSqlite, driverSqlite3:
	default:
		return nil, fmt.Errorf("unsupported sqlite driver: %s", cfg.Driver)
	}

	b, err := base.New(Dialect{Driver: cfg.Driver}, cfg.DSN, opts...)
	if err != nil {
		return nil, err
	}
	return &Adapter{Adapter: b}, nil
}

// Open открывает сессию и применяет PRAGMA настройки
func (a *Adapter) Open(ctx context.Context) error {
	if err := a.Adapter.Open(ctx); err != nil {
		return err
	}

	if err := a.applyPragmas(ctx); err != nil {
		a.Adapter.Close()
		return fmt.Errorf("failed to apply PRAGMA settings: %w", err)
	}
	return nil
}

// applyPragmas - настройки сессии, не попадающие в лог выполнения
func (a *Adapter) applyPragmas(ctx context.Context) error {
	pragmas := []string{
		// Ждем освобождения блокировки вместо немедленной ошибки SQLITE_BUSY
		"PRAGMA busy_timeout = 5000",

		"PRAGMA foreign_keys = ON",
	}

	session := a.Session()
	for _, pragma := range pragmas {
		if _, err := session.ExecContext(ctx, pragma); err != nil {
			return fmt.Errorf("%s: %w", pragma, err)
		}
	}
	return nil
}
