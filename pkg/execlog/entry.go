package execlog

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/zeebo/xxh3"
)

// Level - уровень детализации записи
type Level int

const (
	// LevelMinimal - без параметров
	LevelMinimal Level = iota

	// LevelStandard - имена и направления параметров, без значений
	LevelStandard

	// LevelFull - включая значения параметров
	LevelFull
)

// String - строковое представление уровня
func (l Level) String() string {
	switch l {
	case LevelMinimal:
		return "minimal"
	case LevelStandard:
		return "standard"
	case LevelFull:
		return "full"
	default:
		return fmt.Sprintf("unknown(%d)", l)
	}
}

// ParseLevel parses a level name; an empty name means LevelStandard.
func ParseLevel(s string) (Level, error) {
	switch s {
	case "minimal":
		return LevelMinimal, nil
	case "", "standard":
		return LevelStandard, nil
	case "full":
		return LevelFull, nil
	default:
		return LevelStandard, fmt.Errorf("unknown log level: %s", s)
	}
}

// Operation - вид выполненной операции
type Operation string

const (
	OpExecuteNonQuery    Operation = "execute_non_query"
	OpExecuteScalar      Operation = "execute_scalar"
	OpExecuteReader      Operation = "execute_reader"
	OpExecuteDataSet     Operation = "execute_dataset"
	OpRunProcedure       Operation = "run_procedure"
	OpRunProcedureTable  Operation = "run_procedure_table"
	OpRunProcedureReturn Operation = "run_procedure_return"
)

// Status - статус выполнения операции
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailure Status = "failure"
)

// Param - параметр команды в том виде, в каком он попадает в лог
type Param struct {
	Name      string `json:"name"`
	Direction string `json:"direction,omitempty"`
	Type      string `json:"type,omitempty"`
	Value     any    `json:"value,omitempty"`
}

// Entry - запись о выполнении одной операции
type Entry struct {
	ID            string        `json:"id"`
	Timestamp     time.Time     `json:"timestamp"`
	Database      string        `json:"database"`
	Operation     Operation     `json:"operation"`
	Status        Status        `json:"status"`
	Statement     string        `json:"statement"`
	StatementHash string        `json:"statement_hash"`
	Parameters    []Param       `json:"parameters,omitempty"`
	Count         string        `json:"count,omitempty"`
	Counted       bool          `json:"counted"`
	Duration      time.Duration `json:"duration"`
	ErrorMessage  string        `json:"error_message,omitempty"`
}

// NewEntry creates a successful entry for call.
func NewEntry(call Call) *Entry {
	return &Entry{
		ID:            uuid.NewString(),
		Timestamp:     time.Now(),
		Database:      call.Database,
		Operation:     call.Operation,
		Status:        StatusSuccess,
		Statement:     call.Statement,
		StatementHash: HashStatement(call.Statement),
		Parameters:    call.Parameters,
	}
}

// HashStatement returns the xxh3 fingerprint of a statement as 16 hex digits.
// Identical statement text always hashes the same, independent of parameters.
func HashStatement(statement string) string {
	return fmt.Sprintf("%016x", xxh3.HashString(statement))
}

// WithCount - записать метрику результата
func (e *Entry) WithCount(count string) *Entry {
	e.Count = count
	e.Counted = true
	return e
}

// WithDuration - установить длительность
func (e *Entry) WithDuration(d time.Duration) *Entry {
	e.Duration = d
	return e
}

// WithError - установить ошибку
func (e *Entry) WithError(err error) *Entry {
	if err != nil {
		e.ErrorMessage = err.Error()
		e.Status = StatusFailure
	}
	return e
}

// CountInt parses Count. ok is false when no count was recorded or it is not numeric.
func (e *Entry) CountInt() (int64, bool) {
	if !e.Counted {
		return 0, false
	}
	n, err := strconv.ParseInt(e.Count, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// ToJSON - преобразовать в JSON
func (e *Entry) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// String - строковое представление
func (e *Entry) String() string {
	count := "-"
	if e.Counted {
		count = e.Count
	}
	s := fmt.Sprintf("[%s] %s %s %s (hash=%s, count=%s, duration=%v): %s",
		e.Timestamp.Format(time.RFC3339),
		e.Database,
		e.Operation,
		e.Status,
		e.StatementHash,
		count,
		e.Duration,
		e.Statement,
	)
	if e.ErrorMessage != "" {
		s += " error=" + e.ErrorMessage
	}
	return s
}

// Clone - создать копию записи
func (e *Entry) Clone() *Entry {
	clone := *e
	if e.Parameters != nil {
		clone.Parameters = make([]Param, len(e.Parameters))
		copy(clone.Parameters, e.Parameters)
	}
	return &clone
}

// FilterByLevel - фильтрация данных по уровню
func (e *Entry) FilterByLevel(level Level) *Entry {
	filtered := e.Clone()

	switch level {
	case LevelMinimal:
		filtered.Parameters = nil

	case LevelStandard:
		for i := range filtered.Parameters {
			filtered.Parameters[i].Value = nil
		}

	case LevelFull:
		// Вся информация
	}

	return filtered
}
