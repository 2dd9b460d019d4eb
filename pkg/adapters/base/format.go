package base

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/ruslano69/dataaccess/pkg/adapters"
)

// FormatValue конвертирует значение, прочитанное из БД, в строку для вывода.
// columnType is the driver's DatabaseTypeName for the column and may be empty.
func FormatValue(value any, columnType string, dbType adapters.DatabaseType) string {
	if value == nil {
		return ""
	}

	columnType = strings.ToUpper(columnType)

	switch dbType {
	case adapters.TypePostgres:
		return pgValueToString(value, columnType)
	case adapters.TypeMSSQL:
		return mssqlValueToString(value, columnType)
	default:
		return genericValueToString(value)
	}
}

// pgValueToString - PostgreSQL-специфичные типы: UUID, JSONB, NUMERIC
func pgValueToString(val any, columnType string) string {
	switch v := val.(type) {
	case []byte:
		if columnType == "UUID" && len(v) == 16 {
			if id, err := uuid.FromBytes(v); err == nil {
				return id.String()
			}
		}
		return string(v)

	case [16]byte:
		return uuid.UUID(v).String()

	case map[string]any, []any:
		jsonBytes, _ := json.Marshal(v)
		return string(jsonBytes)

	case pgtype.Numeric:
		if !v.Valid {
			return ""
		}
		if v.NaN {
			return "NaN"
		}
		if v.InfinityModifier != 0 {
			if v.InfinityModifier > 0 {
				return "Infinity"
			}
			return "-Infinity"
		}
		f64, err := v.Float64Value()
		if err == nil && f64.Valid {
			return fmt.Sprintf("%v", f64.Float64)
		}
		return v.Int.String()

	default:
		return genericValueToString(val)
	}
}

// mssqlValueToString - MS SQL-специфичные типы: UNIQUEIDENTIFIER, TIMESTAMP/ROWVERSION
func mssqlValueToString(val any, columnType string) string {
	v, ok := val.([]byte)
	if !ok {
		return genericValueToString(val)
	}

	switch columnType {
	case "UNIQUEIDENTIFIER":
		if len(v) == 16 {
			return mssqlUUID(v)
		}
	case "TIMESTAMP", "ROWVERSION":
		return bytesToHexWithoutLeadingZeros(v)
	case "BINARY", "VARBINARY", "IMAGE":
		return fmt.Sprintf("%X", v)
	}
	return string(v)
}

// mssqlUUID переставляет байты: SQL Server хранит первые три группы в little-endian.
func mssqlUUID(b []byte) string {
	var u uuid.UUID
	copy(u[:], b)
	u[0], u[1], u[2], u[3] = b[3], b[2], b[1], b[0]
	u[4], u[5] = b[5], b[4]
	u[6], u[7] = b[7], b[6]
	return strings.ToUpper(u.String())
}

func genericValueToString(val any) string {
	switch v := val.(type) {
	case []byte:
		return string(v)

	case string:
		return v

	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", v)

	case float32, float64:
		return fmt.Sprintf("%v", v)

	case bool:
		if v {
			return "1"
		}
		return "0"

	case time.Time:
		return v.Format("2006-01-02 15:04:05")

	default:
		if s, ok := val.(fmt.Stringer); ok {
			return s.String()
		}
		return fmt.Sprintf("%v", v)
	}
}

// bytesToHexWithoutLeadingZeros: 0x00000000187F825E → "187F825E"
func bytesToHexWithoutLeadingZeros(b []byte) string {
	if len(b) == 0 {
		return ""
	}

	firstNonZero := len(b) - 1
	for i, v := range b {
		if v != 0 {
			firstNonZero = i
			break
		}
	}

	if b[firstNonZero] == 0 {
		return "0"
	}

	return fmt.Sprintf("%X", b[firstNonZero:])
}
