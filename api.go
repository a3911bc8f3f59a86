// Package dynq builds SQL SELECT statements as a graph of typed query nodes
// and compiles them into parameterized SQL for a specific database.
//
// A Graph is an arena of query nodes. Queries created from the same Graph can
// reference one another as sub-selects, derived tables, join partners and
// set-operation operands. Every nested query is registered with the query it
// is attached to at the moment it is attached.
//
// # Basic Usage
//
//	import "github.com/zoobzio/dynq/oracle"
//
//	emp := dynq.New("Employees")
//	emp.Where(emp.Col("LastName").Like("D%")).
//		OrderBy(emp.Col("LastName").Asc())
//
//	result, err := emp.Render(oracle.New())
//	// result.SQL: SELECT * FROM "Employees" WHERE "LastName" LIKE :LastName1 ORDER BY "LastName" ASC
//	// result.Params: [{Name: LastName1, Value: "D%"}]
//
// # Dialects
//
// The package renders through the Renderer interface. Available dialects:
// oracle, mssql, postgres, mysql, sqlite. Named dialects (oracle, mssql)
// return sql.NamedArg values from QueryResult.Args; positional dialects
// return plain values in placeholder order.
//
// # Grouping
//
// Successive predicates passed to Where and Having are joined with the
// query's default conjunction (AND unless changed). And and Or build
// parenthesized groups:
//
//	q.Where(a, dynq.Or(b, c)) // a AND (b OR c)
//
// Explicit tokens (Open, Close, AndTok, OrTok, AndNotTok, OrNotTok) give
// full control over the stream.
//
// # Errors
//
// Builder errors are detected at the call that causes them and held on the
// Query; Render reports them before producing any SQL. Every error matches
// one of ErrInvalidJoin, ErrUnsupportedSyntax, ErrInvalidOperand,
// ErrConcurrencyConflict or ErrMalformedGraph with errors.Is.
package dynq

import (
	"github.com/zoobzio/dynq/internal/render"
	"github.com/zoobzio/dynq/internal/types"
)

// QueryResult contains the rendered SQL and its parameters.
type QueryResult = types.QueryResult

// Param is one bound parameter of a QueryResult.
type Param = types.Param

// Capabilities describes the SQL features a dialect supports.
type Capabilities = render.Capabilities

// NodeID addresses a query node within its Graph.
type NodeID = types.NodeID

// Node is the raw state of one query node.
type Node = types.Node

// MetadataProvider resolves column metadata for a table.
type MetadataProvider = types.MetadataProvider

// ColumnMeta describes one physical column.
type ColumnMeta = types.ColumnMeta

// ParamTemplate is cloned into every parameter bound against a column.
type ParamTemplate = types.ParamTemplate

// ScalarKind classifies literal values and columns.
type ScalarKind = types.ScalarKind

// Re-export scalar kinds for public API.
const (
	KindUnknown  = types.KindUnknown
	KindBool     = types.KindBool
	KindInt8     = types.KindInt8
	KindInt16    = types.KindInt16
	KindInt32    = types.KindInt32
	KindInt64    = types.KindInt64
	KindUint8    = types.KindUint8
	KindUint16   = types.KindUint16
	KindUint32   = types.KindUint32
	KindUint64   = types.KindUint64
	KindFloat32  = types.KindFloat32
	KindFloat64  = types.KindFloat64
	KindDecimal  = types.KindDecimal
	KindDateTime = types.KindDateTime
	KindGUID     = types.KindGUID
	KindString   = types.KindString
	KindChar     = types.KindChar
)

// Char is a single character value.
type Char = types.Char

// Comparison represents a predicate operator.
type Comparison = types.Comparison

// Re-export comparison constants for public API.
const (
	Equal              = types.Equal
	NotEqual           = types.NotEqual
	GreaterThan        = types.GreaterThan
	GreaterThanOrEqual = types.GreaterThanOrEqual
	LessThan           = types.LessThan
	LessThanOrEqual    = types.LessThanOrEqual
	Like               = types.Like
	NotLike            = types.NotLike
	Between            = types.Between
	In                 = types.In
	NotIn              = types.NotIn
	IsNull             = types.IsNull
	IsNotNull          = types.IsNotNull
	Contains           = types.Contains
)

// Conjunction joins predicates in a WHERE, HAVING or ON clause.
type Conjunction = types.Conjunction

// Re-export conjunction constants for public API.
const (
	AND    = types.And
	OR     = types.Or
	ANDNOT = types.AndNot
	ORNOT  = types.OrNot
)

// Direction represents sort direction.
type Direction = types.Direction

// Re-export direction constants for public API.
const (
	ASC  = types.ASC
	DESC = types.DESC
)

// ArithOp is a binary arithmetic operator.
type ArithOp = types.ArithOp

// Re-export arithmetic operators for public API.
const (
	OpAdd      = types.Add
	OpSubtract = types.Subtract
	OpMultiply = types.Multiply
	OpDivide   = types.Divide
	OpModulo   = types.Modulo
)

// CastType is the target type of Expr.Cast.
type CastType = types.CastType

// Re-export cast types for public API.
const (
	CastBoolean  = types.CastBoolean
	CastByte     = types.CastByte
	CastChar     = types.CastChar
	CastDateTime = types.CastDateTime
	CastDecimal  = types.CastDecimal
	CastDouble   = types.CastDouble
	CastGuid     = types.CastGuid
	CastInt16    = types.CastInt16
	CastInt32    = types.CastInt32
	CastInt64    = types.CastInt64
	CastSingle   = types.CastSingle
	CastString   = types.CastString
)

// DatePart selects a component of a date/time value.
type DatePart = types.DatePart

// Re-export date parts for public API.
const (
	Year        = types.PartYear
	Quarter     = types.PartQuarter
	Month       = types.PartMonth
	DayOfYear   = types.PartDayOfYear
	Day         = types.PartDay
	Week        = types.PartWeek
	WeekDay     = types.PartWeekDay
	Hour        = types.PartHour
	Minute      = types.PartMinute
	Second      = types.PartSecond
	Millisecond = types.PartMillisecond
)

// Re-export error kinds for public API.
var (
	ErrInvalidJoin         = types.ErrInvalidJoin
	ErrUnsupportedSyntax   = types.ErrUnsupportedSyntax
	ErrInvalidOperand      = types.ErrInvalidOperand
	ErrConcurrencyConflict = types.ErrConcurrencyConflict
	ErrMalformedGraph      = types.ErrMalformedGraph
)
