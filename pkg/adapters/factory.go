package adapters

import (
	"fmt"
	"sort"
	"sync"

	"github.com/ruslano69/dataaccess/pkg/execlog"
)

// Options - параметры, общие для всех адаптеров
type Options struct {
	// Logger receives one entry per executed operation.
	Logger execlog.Logger
}

// Option настраивает Options
type Option func(*Options)

// WithLogger sets the execution logger.
func WithLogger(logger execlog.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

// BuildOptions applies opts over the defaults.
func BuildOptions(opts ...Option) Options {
	o := Options{Logger: execlog.NewNullLogger()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.Logger == nil {
		o.Logger = execlog.NewNullLogger()
	}
	return o
}

// Constructor - функция-конструктор адаптера
// Возвращает новый экземпляр адаптера с закрытой сессией
type Constructor func(cfg Config, opts ...Option) (DataAccess, error)

// Factory - фабрика для создания адаптеров
// Управляет регистрацией и созданием адаптеров различных типов
type Factory struct {
	registry map[DatabaseType]Constructor
	mu       sync.RWMutex
}

// NewFactory создает новую фабрику адаптеров
func NewFactory() *Factory {
	return &Factory{
		registry: make(map[DatabaseType]Constructor),
	}
}

// Register регистрирует конструктор адаптера для определенного типа БД
//
// Пример:
//
//	factory.Register(adapters.TypeOracle, oracle.New)
func (f *Factory) Register(dbType DatabaseType, constructor Constructor) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.registry[dbType] = constructor
}

// Unregister удаляет конструктор адаптера
func (f *Factory) Unregister(dbType DatabaseType) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.registry, dbType)
}

// IsRegistered проверяет, зарегистрирован ли адаптер для данного типа БД
func (f *Factory) IsRegistered(dbType DatabaseType) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	_, ok := f.registry[dbType]
	return ok
}

// RegisteredTypes возвращает отсортированный список зарегистрированных типов БД
func (f *Factory) RegisteredTypes() []DatabaseType {
	f.mu.RLock()
	defer f.mu.RUnlock()

	types := make([]DatabaseType, 0, len(f.registry))
	for dbType := range f.registry {
		types = append(types, dbType)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

// Create создает адаптер по конфигурации.
// The session is not opened; call Open before executing commands.
//
// Пример:
//
//	da, err := factory.Create(adapters.Config{
//	    Type: adapters.TypeOracle,
//	    DSN:  "DSN=orcl;UID=scott;PWD=tiger",
//	})
func (f *Factory) Create(cfg Config, opts ...Option) (DataAccess, error) {
	f.mu.RLock()
	constructor, ok := f.registry[cfg.Type]
	f.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s (available types: %v)",
			ErrUnknownDatabaseType, cfg.Type, f.RegisteredTypes())
	}

	da, err := constructor(cfg, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s adapter: %w", cfg.Type, err)
	}
	return da, nil
}

// ========== Global Factory ==========

var globalFactory = NewFactory()

// Register регистрирует адаптер в глобальной фабрике
// Эта функция обычно вызывается в init() функциях адаптеров
//
// Пример (в pkg/adapters/oracle/adapter.go):
//
//	func init() {
//	    adapters.Register(adapters.TypeOracle, New)
//	}
func Register(dbType DatabaseType, constructor Constructor) {
	globalFactory.Register(dbType, constructor)
}

// Unregister удаляет адаптер из глобальной фабрики
func Unregister(dbType DatabaseType) {
	globalFactory.Unregister(dbType)
}

// IsRegistered проверяет регистрацию в глобальной фабрике
func IsRegistered(dbType DatabaseType) bool {
	return globalFactory.IsRegistered(dbType)
}

// RegisteredTypes возвращает типы из глобальной фабрики
func RegisteredTypes() []DatabaseType {
	return globalFactory.RegisteredTypes()
}

// New создает адаптер через глобальную фабрику
// Это основной способ создания адаптеров в приложении
//
// Пример:
//
//	da, err := adapters.New(adapters.Config{
//	    Type: adapters.TypeSQLite,
//	    DSN:  "file:app.db",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer da.Dispose()
//	if err := da.Open(ctx); err != nil {
//	    log.Fatal(err)
//	}
func New(cfg Config, opts ...Option) (DataAccess, error) {
	return globalFactory.Create(cfg, opts...)
}

// MustNew создает адаптер или паникует при ошибке
// Использовать только в init() или main() где паника допустима
func MustNew(cfg Config, opts ...Option) DataAccess {
	da, err := New(cfg, opts...)
	if err != nil {
		panic(fmt.Sprintf("failed to create adapter: %v", err))
	}
	return da
}
