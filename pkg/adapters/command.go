package adapters

import (
	"context"
	"fmt"
	"reflect"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"
)

// ReturnValueName is the reserved parameter a procedure return value is bound to.
const ReturnValueName = "ReturnValue"

// CommandType - вид команды
type CommandType int

const (
	CommandText CommandType = iota
	CommandStoredProcedure
)

// String implements fmt.Stringer.
func (t CommandType) String() string {
	if t == CommandStoredProcedure {
		return "stored_procedure"
	}
	return "text"
}

// Binder renders a prepared command into what the driver understands.
// Each backend dialect implements it.
type Binder interface {
	// CommandText returns the statement sent to the driver.
	CommandText(cmd *Command) (string, error)

	// BindArgs returns the driver argument list, one entry per bound parameter
	// the dialect transmits.
	BindArgs(cmd *Command) ([]any, error)

	// ReturnsAsRow reports whether a procedure return value comes back as a
	// single-row result instead of an output binding.
	ReturnsAsRow() bool
}

// BoundParameter is a Parameter attached to a command. Output values written by
// the driver are read back with Output.
type BoundParameter struct {
	Name      string
	Value     any
	Direction Direction
	Size      int
	Type      DbType

	dest any
}

// NewBoundParameter copies p into a command-owned parameter.
func NewBoundParameter(p Parameter) *BoundParameter {
	return &BoundParameter{
		Name:      p.Name,
		Value:     p.Value,
		Direction: p.Direction,
		Size:      p.Size,
		Type:      p.Type,
	}
}

// Arg returns the value transmitted for an input parameter.
// A nil value with a declared type becomes the matching typed null.
func (p *BoundParameter) Arg() any {
	if p.Value == nil {
		return p.Type.Null()
	}
	return p.Value
}

// Dest returns the pointer the driver writes an output value into.
// For in-out parameters it is pre-filled with the input value.
func (p *BoundParameter) Dest() any {
	if p.dest != nil {
		return p.dest
	}
	if p.Direction == DirectionInputOutput && p.Value != nil {
		v := reflect.New(reflect.TypeOf(p.Value))
		v.Elem().Set(reflect.ValueOf(p.Value))
		p.dest = v.Interface()
		return p.dest
	}
	p.dest = p.Type.Dest()
	return p.dest
}

// SetDest installs a driver-specific destination.
func (p *BoundParameter) SetDest(dest any) {
	p.dest = dest
}

// Output returns the value the driver wrote, or nil before execution.
func (p *BoundParameter) Output() any {
	if p.dest == nil {
		return nil
	}
	v := reflect.ValueOf(p.dest)
	if v.Kind() != reflect.Pointer || v.IsNil() {
		return p.dest
	}
	return v.Elem().Interface()
}

// Int converts the output value to int.
func (p *BoundParameter) Int() (int, error) {
	out := p.Output()
	if out == nil {
		return 0, fmt.Errorf("%w: %s", ErrReturnValueMissing, p.Name)
	}

	v := reflect.ValueOf(out)
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return int(v.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int(v.Uint()), nil
	case reflect.Float32, reflect.Float64:
		return int(v.Float()), nil
	case reflect.String:
		return strconv.Atoi(v.String())
	case reflect.Slice:
		if b, ok := out.([]byte); ok {
			return strconv.Atoi(string(b))
		}
	}
	return 0, fmt.Errorf("parameter %s: cannot convert %T to int", p.Name, out)
}

// Command - подготовленная команда: текст, сессия, транзакция, таймаут и параметры.
// Commands are built by DataAccess.PrepareCommand and are single-use.
type Command struct {
	Connection  Connection
	Transaction *sqlx.Tx
	Text        string
	Type        CommandType
	Timeout     time.Duration
	Binder      Binder
	Parameters  []*BoundParameter
}

// AddParameter appends p to the command.
func (c *Command) AddParameter(p *BoundParameter) {
	c.Parameters = append(c.Parameters, p)
}

// Parameter returns the bound parameter named name, or nil.
func (c *Command) Parameter(name string) *BoundParameter {
	for _, p := range c.Parameters {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// ReturnParameter returns the parameter with DirectionReturnValue, or nil.
func (c *Command) ReturnParameter() *BoundParameter {
	for _, p := range c.Parameters {
		if p.Direction == DirectionReturnValue {
			return p
		}
	}
	return nil
}

// ExecuteNonQuery runs the command and returns the affected row count.
func (c *Command) ExecuteNonQuery(ctx context.Context) (int64, error) {
	conn, text, args, err := c.render()
	if err != nil {
		return 0, err
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	if rp := c.ReturnParameter(); rp != nil && c.Binder != nil && c.Binder.ReturnsAsRow() {
		var v any
		if err := conn.QueryRowxContext(ctx, text, args...).Scan(&v); err != nil {
			return 0, err
		}
		rp.SetDest(&v)
		return 0, nil
	}

	res, err := conn.ExecContext(ctx, text, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ExecuteScalar returns the first column of the first row.
// ok is false for an empty result or a NULL value.
func (c *Command) ExecuteScalar(ctx context.Context) (value any, ok bool, err error) {
	conn, text, args, err := c.render()
	if err != nil {
		return nil, false, err
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	rows, err := conn.QueryxContext(ctx, text, args...)
	if err != nil {
		return nil, false, err
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, false, rows.Err()
	}

	values, err := rows.SliceScan()
	if err != nil {
		return nil, false, err
	}
	if len(values) == 0 || values[0] == nil {
		return nil, false, nil
	}
	return values[0], true, nil
}

// ExecuteReader runs the command and hands its rows to a Reader. The command's
// timeout stays in effect until the reader is closed; onClose, if set, runs
// after the rows are released.
func (c *Command) ExecuteReader(ctx context.Context, onClose func() error) (*Reader, error) {
	conn, text, args, err := c.render()
	if err != nil {
		return nil, err
	}

	ctx, cancel := c.withTimeout(ctx)
	rows, err := conn.QueryxContext(ctx, text, args...)
	if err != nil {
		cancel()
		return nil, err
	}
	return NewReader(rows, cancel, onClose), nil
}

// Query runs the command and returns the raw rows with the release function
// for the command's timeout. Used by callers that consume the rows fully.
func (c *Command) Query(ctx context.Context) (*sqlx.Rows, context.CancelFunc, error) {
	conn, text, args, err := c.render()
	if err != nil {
		return nil, nil, err
	}

	ctx, cancel := c.withTimeout(ctx)
	rows, err := conn.QueryxContext(ctx, text, args...)
	if err != nil {
		cancel()
		return nil, nil, err
	}
	return rows, cancel, nil
}

// session picks the transaction when one is attached.
func (c *Command) session() (Connection, error) {
	if c.Transaction != nil {
		return c.Transaction, nil
	}
	if c.Connection == nil {
		return nil, ErrConnectionClosed
	}
	return c.Connection, nil
}

func (c *Command) render() (Connection, string, []any, error) {
	conn, err := c.session()
	if err != nil {
		return nil, "", nil, err
	}

	if c.Binder == nil {
		if c.Type == CommandStoredProcedure {
			return nil, "", nil, ErrProceduresUnsupported
		}
		args := make([]any, 0, len(c.Parameters))
		for _, p := range c.Parameters {
			args = append(args, p.Arg())
		}
		return conn, c.Text, args, nil
	}

	text, err := c.Binder.CommandText(c)
	if err != nil {
		return nil, "", nil, err
	}
	args, err := c.Binder.BindArgs(c)
	if err != nil {
		return nil, "", nil, err
	}
	return conn, text, args, nil
}

func (c *Command) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.Timeout > 0 {
		return context.WithTimeout(ctx, c.Timeout)
	}
	return context.WithCancel(ctx)
}
