package types

import (
	"fmt"
	"math/big"
	"reflect"
	"time"

	"github.com/google/uuid"
)

// ScalarKind is the closed set of value kinds a column or literal can carry.
type ScalarKind int

const (
	KindUnknown ScalarKind = iota
	KindBool
	KindInt8
	KindInt16
	KindInt32
	KindInt64
	KindUint8
	KindUint16
	KindUint32
	KindUint64
	KindFloat32
	KindFloat64
	KindDecimal
	KindDateTime
	KindGUID
	KindString
	KindChar
)

var kindNames = [...]string{
	KindUnknown:  "unknown",
	KindBool:     "bool",
	KindInt8:     "int8",
	KindInt16:    "int16",
	KindInt32:    "int32",
	KindInt64:    "int64",
	KindUint8:    "uint8",
	KindUint16:   "uint16",
	KindUint32:   "uint32",
	KindUint64:   "uint64",
	KindFloat32:  "float32",
	KindFloat64:  "float64",
	KindDecimal:  "decimal",
	KindDateTime: "datetime",
	KindGUID:     "guid",
	KindString:   "string",
	KindChar:     "char",
}

func (k ScalarKind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("ScalarKind(%d)", int(k))
	}
	return kindNames[k]
}

// Textual reports whether values of the kind concatenate rather than add.
func (k ScalarKind) Textual() bool {
	return k == KindString || k == KindChar
}

// Numeric reports whether the kind is an integer, float or decimal.
func (k ScalarKind) Numeric() bool {
	return k >= KindInt8 && k <= KindDecimal
}

// Integer reports whether the kind is a signed or unsigned integer.
func (k ScalarKind) Integer() bool {
	return k >= KindInt8 && k <= KindUint64
}

// Char is a single character value. It is distinct from rune so that it
// classifies as KindChar instead of KindInt32.
type Char rune

// Value is a literal bound into a query.
type Value struct {
	Kind ScalarKind
	V    any
}

// KindOf classifies a value by its runtime type.
func KindOf(v any) (ScalarKind, bool) {
	switch v.(type) {
	case bool:
		return KindBool, true
	case int8:
		return KindInt8, true
	case int16:
		return KindInt16, true
	case int32:
		return KindInt32, true
	case int64, int:
		return KindInt64, true
	case uint8:
		return KindUint8, true
	case uint16:
		return KindUint16, true
	case uint32:
		return KindUint32, true
	case uint64, uint:
		return KindUint64, true
	case float32:
		return KindFloat32, true
	case float64:
		return KindFloat64, true
	case *big.Rat:
		return KindDecimal, true
	case time.Time:
		return KindDateTime, true
	case uuid.UUID:
		return KindGUID, true
	case string:
		return KindString, true
	case Char:
		return KindChar, true
	default:
		return KindUnknown, false
	}
}

// NewValue classifies v and wraps it.
func NewValue(v any) (Value, error) {
	if v == nil {
		return Value{}, Errorf(ErrUnsupportedSyntax, "value", "nil is not a comparable value; use IsNull")
	}
	kind, ok := KindOf(v)
	if !ok {
		return Value{}, Errorf(ErrInvalidOperand, "value", "unsupported value type %T", v)
	}
	return Value{Kind: kind, V: v}, nil
}

// Flatten expands slices and arrays element-wise. Strings and other
// recognized scalars (including uuid.UUID, a byte array) stay whole.
func Flatten(values []any) []any {
	out := make([]any, 0, len(values))
	for _, v := range values {
		out = appendFlat(out, v)
	}
	return out
}

func appendFlat(out []any, v any) []any {
	if v == nil {
		return append(out, v)
	}
	if _, ok := KindOf(v); ok {
		return append(out, v)
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			out = appendFlat(out, rv.Index(i).Interface())
		}
		return out
	default:
		return append(out, v)
	}
}

// DriverValue converts a literal to a value database/sql drivers accept.
func (v Value) DriverValue() any {
	switch x := v.V.(type) {
	case Char:
		return string(rune(x))
	case *big.Rat:
		return DecimalString(x)
	default:
		return v.V
	}
}

// DecimalString formats r without a trailing run of zeros.
func DecimalString(r *big.Rat) string {
	if r.IsInt() {
		return r.RatString()
	}
	s := r.FloatString(18)
	for len(s) > 0 && s[len(s)-1] == '0' {
		s = s[:len(s)-1]
	}
	return s
}
