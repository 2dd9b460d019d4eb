package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ruslano69/dataaccess/pkg/adapters"
)

// parseParams converts name=value[:type] arguments into parameters.
func parseParams(args []string) (adapters.Parameters, error) {
	params := adapters.NewParameters()
	for _, arg := range args {
		p, err := parseParam(arg)
		if err != nil {
			return nil, err
		}
		params = params.Add(p)
	}
	return params, nil
}

// parseParam reads one argument. The ":type" suffix is only taken as a type
// when it names a known DbType, so values like "12:30" stay intact.
func parseParam(arg string) (adapters.Parameter, error) {
	name, raw, ok := strings.Cut(arg, "=")
	if !ok || name == "" {
		return adapters.Parameter{}, fmt.Errorf("invalid parameter %q, expected name=value[:type]", arg)
	}

	dbType := adapters.DbTypeObject
	if i := strings.LastIndex(raw, ":"); i >= 0 {
		if t, err := adapters.ParseDbType(raw[i+1:]); err == nil {
			dbType = t
			raw = raw[:i]
		}
	}

	if dbType == adapters.DbTypeObject {
		return adapters.In(name, raw), nil
	}
	if raw == "" && dbType != adapters.DbTypeString {
		return adapters.Typed(name, nil, dbType), nil
	}

	value, err := convertValue(raw, dbType)
	if err != nil {
		return adapters.Parameter{}, fmt.Errorf("parameter %s: %w", name, err)
	}
	return adapters.Typed(name, value, dbType), nil
}

func convertValue(raw string, t adapters.DbType) (any, error) {
	switch t {
	case adapters.DbTypeInt16:
		n, err := strconv.ParseInt(raw, 10, 16)
		return int16(n), err
	case adapters.DbTypeInt32:
		n, err := strconv.ParseInt(raw, 10, 32)
		return int32(n), err
	case adapters.DbTypeInt64:
		return strconv.ParseInt(raw, 10, 64)
	case adapters.DbTypeDouble:
		return strconv.ParseFloat(raw, 64)
	case adapters.DbTypeBoolean:
		return strconv.ParseBool(raw)
	case adapters.DbTypeDateTime:
		for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
			if ts, err := time.Parse(layout, raw); err == nil {
				return ts, nil
			}
		}
		return nil, fmt.Errorf("invalid datetime %q", raw)
	case adapters.DbTypeBinary:
		return []byte(raw), nil
	default:
		// string, decimal
		return raw, nil
	}
}
