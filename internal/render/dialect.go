package render

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/zoobzio/dynq/internal/types"
)

// Dialect supplies the per-database fragments the Engine stitches together.
// Dialect packages embed Base and override what differs.
type Dialect interface {
	Name() string
	QuoteIdentifier(name string) string
	// Placeholder returns the text for a parameter; ordinal is 1-based.
	Placeholder(name string, ordinal int) string
	NamedParameters() bool

	Concat(left, right string) string
	Modulo(left, right string) string
	Divide(left, right string) string
	Literal(v types.Value) (string, error)

	// Function returns the opening and closing text wrapped around an
	// expression for one sub-operator. Coalesce is handled by the Engine.
	Function(s types.SubOperator) (open, close string, err error)
	Contains(column, param string) (string, error)
	JoinKeyword(kind types.JoinKind) (string, error)
	SetOperator(kind types.SetOpKind) (string, error)
	Rollup(items string) (string, error)

	// Top places a simple row limit: after SELECT, inside WHERE, or at the end.
	Top(n int) (prefix, where, suffix string)
	SkipTake(skip, take *int, ordered bool) (string, error)
	WindowPaging() bool
	// WindowOrder is the ROW_NUMBER ordering used when the query has none.
	WindowOrder() string
}

// Base holds ANSI defaults.
type Base struct {
	Dialect string
}

// Name returns the dialect name.
func (b Base) Name() string { return b.Dialect }

// QuoteIdentifier wraps name in double quotes.
func (b Base) QuoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// Placeholder returns "?".
func (b Base) Placeholder(string, int) string { return "?" }

// NamedParameters returns false.
func (b Base) NamedParameters() bool { return false }

// Concat uses the || operator.
func (b Base) Concat(left, right string) string {
	return "(" + left + " || " + right + ")"
}

// Modulo uses the % operator.
func (b Base) Modulo(left, right string) string {
	return "(" + left + " % " + right + ")"
}

// Divide rounds the quotient to six decimal places.
func (b Base) Divide(left, right string) string {
	return "ROUND(" + left + " / " + right + ", 6)"
}

// Literal formats a value inline.
func (b Base) Literal(v types.Value) (string, error) {
	switch x := v.V.(type) {
	case string:
		return QuoteString(x), nil
	case types.Char:
		return QuoteString(string(rune(x))), nil
	case bool:
		if x {
			return "TRUE", nil
		}
		return "FALSE", nil
	case time.Time:
		return "TIMESTAMP '" + x.Format(TimestampLayout) + "'", nil
	case uuid.UUID:
		return "'" + x.String() + "'", nil
	case *big.Rat:
		return types.DecimalString(x), nil
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32), nil
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), nil
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprint(x), nil
	case nil:
		return "", NewUnsupportedSyntaxError(b.Dialect, "NULL literal in a value list", "use IsNull")
	default:
		return "", types.Errorf(types.ErrInvalidOperand, "literal", "unsupported value type %T", v.V)
	}
}

// TimestampLayout formats date-time literals.
const TimestampLayout = "2006-01-02 15:04:05.999999999"

// QuoteString single-quotes s, doubling embedded quotes.
func QuoteString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// Function renders the ANSI spelling of a sub-operator.
func (b Base) Function(s types.SubOperator) (string, string, error) {
	switch s.Op {
	case types.OpToUpper, types.OpToLower, types.OpLTrim, types.OpRTrim, types.OpTrim,
		types.OpSum, types.OpAvg, types.OpMax, types.OpMin, types.OpCount, types.OpLength:
		return string(s.Op) + "(", ")", nil
	case types.OpSubstring:
		return b.Substring("SUBSTRING", s)
	case types.OpRound:
		return "ROUND(", fmt.Sprintf(", %d)", s.Digits), nil
	case types.OpDate:
		return "CAST(", " AS DATE)", nil
	case types.OpDatePart:
		switch s.Part {
		case types.PartYear, types.PartMonth, types.PartDay, types.PartHour, types.PartMinute, types.PartSecond:
			return "EXTRACT(" + string(s.Part) + " FROM ", ")", nil
		}
		return "", "", NewUnsupportedSyntaxError(b.Dialect, "date part "+string(s.Part))
	case types.OpStdDev:
		return "STDDEV(", ")", nil
	case types.OpVar:
		return "VARIANCE(", ")", nil
	case types.OpCast:
		t, err := b.CastType(s)
		if err != nil {
			return "", "", err
		}
		return "CAST(", " AS " + t + ")", nil
	default:
		return "", "", types.Errorf(types.ErrMalformedGraph, "function", "unknown sub-operator %q", s.Op)
	}
}

// Substring renders name(x, start, length).
func (b Base) Substring(name string, s types.SubOperator) (string, string, error) {
	if s.Length <= 0 {
		return "", "", types.Errorf(types.ErrInvalidOperand, "substring", "length must be positive, got %d", s.Length)
	}
	start := 1
	if s.HasStart {
		start = s.Start
	}
	return name + "(", fmt.Sprintf(", %d, %d)", start, s.Length), nil
}

// CastType maps a cast target to ANSI type names.
func (b Base) CastType(s types.SubOperator) (string, error) {
	switch s.Cast {
	case types.CastBoolean:
		return "BOOLEAN", nil
	case types.CastByte, types.CastInt16:
		return "SMALLINT", nil
	case types.CastChar:
		return "CHAR(1)", nil
	case types.CastDateTime:
		return "TIMESTAMP", nil
	case types.CastDecimal:
		return DecimalType("DECIMAL", s), nil
	case types.CastDouble:
		return "DOUBLE PRECISION", nil
	case types.CastGuid:
		return "CHAR(36)", nil
	case types.CastInt32:
		return "INTEGER", nil
	case types.CastInt64:
		return "BIGINT", nil
	case types.CastSingle:
		return "REAL", nil
	case types.CastString:
		return SizedType("VARCHAR", s.Length, "VARCHAR(255)"), nil
	default:
		return "", types.Errorf(types.ErrInvalidOperand, "cast", "unknown cast type %q", s.Cast)
	}
}

// DecimalType renders name or name(p, s).
func DecimalType(name string, s types.SubOperator) string {
	if s.Precision > 0 {
		return fmt.Sprintf("%s(%d, %d)", name, s.Precision, s.Scale)
	}
	return name
}

// SizedType renders name(n), or fallback when n is not positive.
func SizedType(name string, n int, fallback string) string {
	if n > 0 {
		return fmt.Sprintf("%s(%d)", name, n)
	}
	return fallback
}

// Contains is not part of ANSI SQL.
func (b Base) Contains(string, string) (string, error) {
	return "", NewUnsupportedSyntaxError(b.Dialect, "CONTAINS")
}

// JoinKeyword returns the ANSI keyword.
func (b Base) JoinKeyword(kind types.JoinKind) (string, error) {
	switch kind {
	case types.InnerJoin, types.LeftJoin, types.RightJoin, types.FullJoin, types.CrossJoin:
		return string(kind), nil
	default:
		return "", types.Errorf(types.ErrMalformedGraph, "join", "unknown join kind %q", kind)
	}
}

// SetOperator returns the ANSI keyword.
func (b Base) SetOperator(kind types.SetOpKind) (string, error) {
	switch kind {
	case types.Union, types.UnionAll, types.Intersect, types.Except:
		return string(kind), nil
	default:
		return "", types.Errorf(types.ErrMalformedGraph, "set operation", "unknown set operation %q", kind)
	}
}

// Rollup wraps the grouping list in ROLLUP().
func (b Base) Rollup(items string) (string, error) {
	return "ROLLUP(" + items + ")", nil
}

// Top appends LIMIT n.
func (b Base) Top(n int) (string, string, string) {
	return "", "", " LIMIT " + strconv.Itoa(n)
}

// SkipTake renders LIMIT/OFFSET.
func (b Base) SkipTake(skip, take *int, _ bool) (string, error) {
	var sql strings.Builder
	if take != nil {
		sql.WriteString(" LIMIT ")
		sql.WriteString(strconv.Itoa(*take))
	}
	if skip != nil {
		sql.WriteString(" OFFSET ")
		sql.WriteString(strconv.Itoa(*skip))
	}
	return sql.String(), nil
}

// OffsetFetch renders OFFSET n ROWS [FETCH NEXT m ROWS ONLY].
func OffsetFetch(skip, take *int) string {
	n := 0
	if skip != nil {
		n = *skip
	}
	s := " OFFSET " + strconv.Itoa(n) + " ROWS"
	if take != nil {
		s += " FETCH NEXT " + strconv.Itoa(*take) + " ROWS ONLY"
	}
	return s
}

// WindowPaging returns true.
func (b Base) WindowPaging() bool { return true }

// WindowOrder returns NULL.
func (b Base) WindowOrder() string { return "NULL" }
