package adapters

import (
	"database/sql"
	"fmt"
	"time"
)

// Direction - направление параметра команды
type Direction int

const (
	DirectionInput Direction = iota
	DirectionOutput
	DirectionInputOutput
	DirectionReturnValue
)

// String implements fmt.Stringer.
func (d Direction) String() string {
	switch d {
	case DirectionInput:
		return "in"
	case DirectionOutput:
		return "out"
	case DirectionInputOutput:
		return "inout"
	case DirectionReturnValue:
		return "return"
	default:
		return fmt.Sprintf("unknown(%d)", int(d))
	}
}

// IsOutput reports whether the driver writes a value back for this direction.
func (d Direction) IsOutput() bool {
	return d != DirectionInput
}

// DbType - объявленный скалярный тип параметра
type DbType int

const (
	// DbTypeObject leaves type inference to the driver.
	DbTypeObject DbType = iota
	DbTypeString
	DbTypeInt16
	DbTypeInt32
	DbTypeInt64
	DbTypeDecimal
	DbTypeDouble
	DbTypeBoolean
	DbTypeDateTime
	DbTypeBinary
)

var dbTypeNames = map[DbType]string{
	DbTypeObject:   "object",
	DbTypeString:   "string",
	DbTypeInt16:    "int16",
	DbTypeInt32:    "int32",
	DbTypeInt64:    "int64",
	DbTypeDecimal:  "decimal",
	DbTypeDouble:   "double",
	DbTypeBoolean:  "boolean",
	DbTypeDateTime: "datetime",
	DbTypeBinary:   "binary",
}

// String implements fmt.Stringer.
func (t DbType) String() string {
	if name, ok := dbTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("unknown(%d)", int(t))
}

// ParseDbType resolves a type name as printed by String.
func ParseDbType(name string) (DbType, error) {
	for t, n := range dbTypeNames {
		if n == name {
			return t, nil
		}
	}
	return DbTypeObject, fmt.Errorf("unknown parameter type: %s", name)
}

// Null returns the typed SQL null bound in place of a nil value.
func (t DbType) Null() any {
	switch t {
	case DbTypeString, DbTypeDecimal:
		return sql.NullString{}
	case DbTypeInt16:
		return sql.NullInt16{}
	case DbTypeInt32:
		return sql.NullInt32{}
	case DbTypeInt64:
		return sql.NullInt64{}
	case DbTypeDouble:
		return sql.NullFloat64{}
	case DbTypeBoolean:
		return sql.NullBool{}
	case DbTypeDateTime:
		return sql.NullTime{}
	case DbTypeBinary:
		return []byte(nil)
	default:
		return nil
	}
}

// Dest allocates a pointer the driver can write an output value into.
func (t DbType) Dest() any {
	switch t {
	case DbTypeString, DbTypeDecimal:
		return new(string)
	case DbTypeInt16, DbTypeInt32, DbTypeInt64:
		return new(int64)
	case DbTypeDouble:
		return new(float64)
	case DbTypeBoolean:
		return new(bool)
	case DbTypeDateTime:
		return new(time.Time)
	case DbTypeBinary:
		return new([]byte)
	default:
		return new(any)
	}
}

// Parameter - описание параметра команды
type Parameter struct {
	Name      string
	Value     any
	Direction Direction
	Size      int
	Type      DbType
}

// In creates an input parameter with driver-inferred type.
func In(name string, value any) Parameter {
	return Parameter{Name: name, Value: value, Direction: DirectionInput}
}

// Typed creates an input parameter with a declared type.
func Typed(name string, value any, t DbType) Parameter {
	return Parameter{Name: name, Value: value, Direction: DirectionInput, Type: t}
}

// Out creates an output parameter.
func Out(name string, t DbType, size int) Parameter {
	return Parameter{Name: name, Direction: DirectionOutput, Type: t, Size: size}
}

// Parameters - упорядоченная коллекция параметров. Порядок сохраняется при связывании.
type Parameters []Parameter

// NewParameters builds a collection from ps.
func NewParameters(ps ...Parameter) Parameters {
	return append(Parameters(nil), ps...)
}

// Add returns a new collection with p appended; ps itself is never shared
// with the result.
func (ps Parameters) Add(p Parameter) Parameters {
	return append(ps[:len(ps):len(ps)], p)
}

// Get returns the parameter named name.
func (ps Parameters) Get(name string) (Parameter, bool) {
	for _, p := range ps {
		if p.Name == name {
			return p, true
		}
	}
	return Parameter{}, false
}
