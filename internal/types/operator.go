package types

// Comparison represents a predicate operator.
type Comparison string

const (
	// Basic comparison operators.
	Equal              Comparison = "="
	NotEqual           Comparison = "<>"
	GreaterThan        Comparison = ">"
	GreaterThanOrEqual Comparison = ">="
	LessThan           Comparison = "<"
	LessThanOrEqual    Comparison = "<="

	// Extended operators.
	Like      Comparison = "LIKE"
	NotLike   Comparison = "NOT LIKE"
	Between   Comparison = "BETWEEN"
	In        Comparison = "IN"
	NotIn     Comparison = "NOT IN"
	IsNull    Comparison = "IS NULL"
	IsNotNull Comparison = "IS NOT NULL"
	Contains  Comparison = "CONTAINS"
	Exists    Comparison = "EXISTS"
	NotExists Comparison = "NOT EXISTS"
)

// Arity returns how many values the comparison binds. -1 means one or more.
func (c Comparison) Arity() int {
	switch c {
	case IsNull, IsNotNull, Exists, NotExists:
		return 0
	case Between:
		return 2
	case In, NotIn:
		return -1
	default:
		return 1
	}
}

// Conjunction joins two predicates in a token stream.
type Conjunction string

const (
	And    Conjunction = "AND"
	Or     Conjunction = "OR"
	AndNot Conjunction = "AND NOT"
	OrNot  Conjunction = "OR NOT"
)

// ArithOp is a binary arithmetic operator.
type ArithOp string

const (
	Add      ArithOp = "+"
	Subtract ArithOp = "-"
	Multiply ArithOp = "*"
	Divide   ArithOp = "/"
	Modulo   ArithOp = "%"
)

// JoinKind is the SQL join keyword.
type JoinKind string

const (
	InnerJoin JoinKind = "INNER JOIN"
	LeftJoin  JoinKind = "LEFT JOIN"
	RightJoin JoinKind = "RIGHT JOIN"
	FullJoin  JoinKind = "FULL JOIN"
	CrossJoin JoinKind = "CROSS JOIN"
)

// SetOpKind combines two query results.
type SetOpKind string

const (
	Union     SetOpKind = "UNION"
	UnionAll  SetOpKind = "UNION ALL"
	Intersect SetOpKind = "INTERSECT"
	Except    SetOpKind = "EXCEPT"
)

// Direction represents sort direction.
type Direction string

const (
	ASC  Direction = "ASC"
	DESC Direction = "DESC"
)

// SearchCondition prefixes a sub-query used as the right side of a comparison.
type SearchCondition string

const (
	SearchNone SearchCondition = ""
	SearchAny  SearchCondition = "ANY"
	SearchAll  SearchCondition = "ALL"
	SearchSome SearchCondition = "SOME"
)
