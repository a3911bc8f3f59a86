package types

// SubOp is a scalar or aggregate transform applied to an expression.
type SubOp string

const (
	OpToUpper   SubOp = "UPPER"
	OpToLower   SubOp = "LOWER"
	OpLTrim     SubOp = "LTRIM"
	OpRTrim     SubOp = "RTRIM"
	OpTrim      SubOp = "TRIM"
	OpSubstring SubOp = "SUBSTRING"
	OpCoalesce  SubOp = "COALESCE"
	OpDate      SubOp = "DATE"
	OpLength    SubOp = "LENGTH"
	OpRound     SubOp = "ROUND"
	OpDatePart  SubOp = "DATEPART"
	OpSum       SubOp = "SUM"
	OpAvg       SubOp = "AVG"
	OpMax       SubOp = "MAX"
	OpMin       SubOp = "MIN"
	OpStdDev    SubOp = "STDDEV"
	OpVar       SubOp = "VAR"
	OpCount     SubOp = "COUNT"
	OpCast      SubOp = "CAST"
)

// Aggregate reports whether the operator is an aggregate function.
func (op SubOp) Aggregate() bool {
	switch op {
	case OpSum, OpAvg, OpMax, OpMin, OpStdDev, OpVar, OpCount:
		return true
	}
	return false
}

// SubOperator is one entry of a chain. Only the fields relevant to Op are set.
type SubOperator struct {
	Op SubOp

	// Substring. Start is 1-based and defaults to 1 when HasStart is false.
	Start    int
	HasStart bool
	Length   int

	// Coalesce fallback.
	Arg *Operand

	// Round.
	Digits int

	// DatePart.
	Part DatePart

	// Cast. Length applies to character types, Precision and Scale to decimals.
	Cast      CastType
	Precision int
	Scale     int
}

// ResultKind is the kind the operator produces, or KindUnknown when it
// preserves its input kind.
func (s SubOperator) ResultKind() ScalarKind {
	switch s.Op {
	case OpToUpper, OpToLower, OpLTrim, OpRTrim, OpTrim, OpSubstring:
		return KindString
	case OpLength, OpDatePart:
		return KindInt32
	case OpCount:
		return KindInt64
	case OpDate:
		return KindDateTime
	case OpAvg, OpStdDev, OpVar:
		return KindFloat64
	case OpCast:
		return s.Cast.Kind()
	default:
		return KindUnknown
	}
}

// CastType is the target of a CAST sub-operator.
type CastType string

const (
	CastNone     CastType = ""
	CastBoolean  CastType = "BOOLEAN"
	CastByte     CastType = "BYTE"
	CastChar     CastType = "CHAR"
	CastDateTime CastType = "DATETIME"
	CastDecimal  CastType = "DECIMAL"
	CastDouble   CastType = "DOUBLE"
	CastGuid     CastType = "GUID"
	CastInt16    CastType = "INT16"
	CastInt32    CastType = "INT32"
	CastInt64    CastType = "INT64"
	CastSingle   CastType = "SINGLE"
	CastString   CastType = "STRING"
)

// Kind maps the cast target to its scalar kind.
func (c CastType) Kind() ScalarKind {
	switch c {
	case CastBoolean:
		return KindBool
	case CastByte:
		return KindUint8
	case CastChar:
		return KindChar
	case CastDateTime:
		return KindDateTime
	case CastDecimal:
		return KindDecimal
	case CastDouble:
		return KindFloat64
	case CastGuid:
		return KindGUID
	case CastInt16:
		return KindInt16
	case CastInt32:
		return KindInt32
	case CastInt64:
		return KindInt64
	case CastSingle:
		return KindFloat32
	case CastString:
		return KindString
	default:
		return KindUnknown
	}
}

// DatePart selects a component of a date/time value.
type DatePart string

const (
	PartYear        DatePart = "YEAR"
	PartQuarter     DatePart = "QUARTER"
	PartMonth       DatePart = "MONTH"
	PartDayOfYear   DatePart = "DAYOFYEAR"
	PartDay         DatePart = "DAY"
	PartWeek        DatePart = "WEEK"
	PartWeekDay     DatePart = "WEEKDAY"
	PartHour        DatePart = "HOUR"
	PartMinute      DatePart = "MINUTE"
	PartSecond      DatePart = "SECOND"
	PartMillisecond DatePart = "MILLISECOND"
)
