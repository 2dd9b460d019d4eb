// Package base предоставляет общую реализацию adapters.DataAccess для всех СУБД.
//
// Все операции (ExecuteNonQuery, ExecuteScalar, ExecuteReader, ExecuteDataSet,
// RunProcedure, RunProcedureTable, RunProcedureReturn) построены одинаково:
//
//  1. PrepareCommand связывает сессию, текст, текущую транзакцию, таймаут и параметры
//  2. Dialect превращает команду в текст и аргументы драйвера
//  3. execlog.Measure (или execlog.Trace для курсоров) выполняет команду и пишет запись в лог
//
// # Использование
//
// Адаптер конкретной СУБД встраивает *base.Adapter и передает свой Dialect:
//
//	type Adapter struct {
//	    *base.Adapter
//	}
//
//	func New(cfg adapters.Config, opts ...adapters.Option) (adapters.DataAccess, error) {
//	    b, err := base.New(Dialect{}, cfg.DSN, opts...)
//	    if err != nil {
//	        return nil, err
//	    }
//	    return &Adapter{Adapter: b}, nil
//	}
//
// Dialect helpers:
//   - PositionalArgs / NamedArgs - списки аргументов драйвера
//   - ProcedureCall - текст вызова процедуры с маркерами параметров
//   - FormatValue - строковое представление значений для вывода
package base
