package schema

import (
	"strconv"
	"strings"

	"github.com/zoobzio/dynq/internal/types"
)

// KindFromSQL classifies a declared column type such as "varchar(50)",
// "NUMBER(10, 2)" or "timestamp with time zone". For character types size is
// the declared length, 0 when unbounded.
func KindFromSQL(sqlType string) (kind types.ScalarKind, size int) {
	base, args := splitType(strings.ToLower(strings.TrimSpace(sqlType)))
	switch base {
	case "bool", "boolean", "bit":
		return types.KindBool, 0
	case "tinyint", "int1":
		return types.KindInt8, 0
	case "smallint", "int2", "smallserial":
		return types.KindInt16, 0
	case "int", "integer", "int4", "mediumint", "serial":
		return types.KindInt32, 0
	case "bigint", "int8", "bigserial":
		return types.KindInt64, 0
	case "real", "float4", "binary_float":
		return types.KindFloat32, 0
	case "float", "float8", "double", "double precision", "binary_double":
		return types.KindFloat64, 0
	case "decimal", "numeric", "number", "money", "smallmoney":
		return types.KindDecimal, 0
	case "date", "datetime", "datetime2", "smalldatetime", "datetimeoffset", "time",
		"timestamp", "timestamptz", "timestamp with time zone", "timestamp without time zone":
		return types.KindDateTime, 0
	case "uuid", "uniqueidentifier":
		return types.KindGUID, 0
	case "char", "nchar", "character":
		if len(args) == 0 || args[0] == 1 {
			return types.KindChar, 1
		}
		return types.KindString, args[0]
	case "varchar", "nvarchar", "varchar2", "nvarchar2", "character varying",
		"text", "ntext", "tinytext", "mediumtext", "longtext", "clob", "nclob", "string":
		if len(args) > 0 {
			return types.KindString, args[0]
		}
		return types.KindString, 0
	default:
		return types.KindUnknown, 0
	}
}

// splitType separates "name(a, b)" into its name and integer arguments.
// Non-numeric arguments such as MAX are dropped.
func splitType(s string) (string, []int) {
	open := strings.IndexByte(s, '(')
	if open < 0 {
		return s, nil
	}
	name := strings.TrimSpace(s[:open])
	end := strings.IndexByte(s[open:], ')')
	if end < 0 {
		return name, nil
	}
	var args []int
	for _, part := range strings.Split(s[open+1:open+end], ",") {
		if n, err := strconv.Atoi(strings.TrimSpace(part)); err == nil {
			args = append(args, n)
		}
	}
	return name, args
}
