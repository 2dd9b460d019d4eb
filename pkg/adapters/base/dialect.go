package base

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/ruslano69/dataaccess/pkg/adapters"
)

// Dialect - правила связывания команд для конкретной СУБД
type Dialect interface {
	adapters.Binder

	// Type returns the backend identifier reported by the adapter.
	Type() adapters.DatabaseType

	// DriverName is the database/sql driver the adapter opens.
	DriverName() string
}

// Placeholder renders the i-th (1-based) positional marker.
type Placeholder func(i int) string

// QuestionMark - "?" (ODBC, MySQL, SQLite)
func QuestionMark(int) string { return "?" }

// DollarMark - "$1", "$2", ... (PostgreSQL)
func DollarMark(i int) string { return "$" + strconv.Itoa(i) }

// Placeholders joins n markers with ", ".
func Placeholders(n int, mark Placeholder) string {
	if n <= 0 {
		return ""
	}
	parts := make([]string, n)
	for i := range parts {
		parts[i] = mark(i + 1)
	}
	return strings.Join(parts, ", ")
}

// InputParameters returns the parameters transmitted as call arguments, in order.
// The return value parameter is never an argument.
func InputParameters(cmd *adapters.Command) []*adapters.BoundParameter {
	out := make([]*adapters.BoundParameter, 0, len(cmd.Parameters))
	for _, p := range cmd.Parameters {
		if p.Direction != adapters.DirectionReturnValue {
			out = append(out, p)
		}
	}
	return out
}

// PositionalArgs binds parameters by position. Output and in-out parameters
// cannot be expressed this way.
func PositionalArgs(cmd *adapters.Command) ([]any, error) {
	params := InputParameters(cmd)
	args := make([]any, 0, len(params))
	for _, p := range params {
		if p.Direction != adapters.DirectionInput {
			return nil, fmt.Errorf("%w: %s parameter %s", adapters.ErrDirectionUnsupported, p.Direction, p.Name)
		}
		args = append(args, p.Arg())
	}
	return args, nil
}

// NamedArgs binds parameters as sql.NamedArg. Output and in-out parameters
// become sql.Out writing into the parameter's destination. Parameters without a
// name are passed positionally.
func NamedArgs(cmd *adapters.Command) []any {
	params := InputParameters(cmd)
	args := make([]any, 0, len(params))
	for _, p := range params {
		var v any
		switch p.Direction {
		case adapters.DirectionOutput:
			v = sql.Out{Dest: p.Dest()}
		case adapters.DirectionInputOutput:
			v = sql.Out{Dest: p.Dest(), In: true}
		default:
			v = p.Arg()
		}

		name := ParameterName(p.Name)
		if name == "" {
			args = append(args, v)
			continue
		}
		args = append(args, sql.Named(name, v))
	}
	return args
}

// ParameterName strips a leading marker (@, :, $ or ?) from a parameter name.
func ParameterName(name string) string {
	return strings.TrimLeft(name, "@:$?")
}

// ProcedureCall renders "<prefix> name(<markers>)<suffix>" for the command's
// input parameters.
func ProcedureCall(cmd *adapters.Command, prefix, suffix string, mark Placeholder) string {
	n := len(InputParameters(cmd))
	return fmt.Sprintf("%s%s(%s)%s", prefix, cmd.Text, Placeholders(n, mark), suffix)
}
