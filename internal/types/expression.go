package types

// ColumnRef names a physical column of a query node.
type ColumnRef struct {
	Name     string
	Query    NodeID
	Distinct bool
	Kind     ScalarKind
}

// Operand is either an expression or a bound literal.
type Operand struct {
	Expr  *Expression
	Value *Value
}

// Arithmetic combines an item with a second operand. ItemFirst records
// whether Left appeared before Right in source order.
type Arithmetic struct {
	Op        ArithOp
	Left      Expression
	Right     Operand
	ItemFirst bool
}

// Expression is a discriminated node: exactly one of Column, Arith, Case,
// Query or a raw literal is populated.
type Expression struct {
	Column    *ColumnRef
	Arith     *Arithmetic
	Case      *CaseExpr
	Query     NodeID
	Raw       string
	IsLiteral bool

	Chain []SubOperator
	Alias string
	Cast  CastType
}

// ExprVariant identifies which variant of an Expression is populated.
type ExprVariant int

const (
	VariantNone ExprVariant = iota
	VariantColumn
	VariantArith
	VariantCase
	VariantQuery
	VariantRaw
	VariantInvalid
)

// Variant reports the populated variant, or VariantInvalid if more than one is set.
func (e *Expression) Variant() ExprVariant {
	v, n := VariantNone, 0
	if e.Column != nil {
		v, n = VariantColumn, n+1
	}
	if e.Arith != nil {
		v, n = VariantArith, n+1
	}
	if e.Case != nil {
		v, n = VariantCase, n+1
	}
	if e.Query != NoNode {
		v, n = VariantQuery, n+1
	}
	if e.IsLiteral {
		v, n = VariantRaw, n+1
	}
	if n > 1 {
		return VariantInvalid
	}
	return v
}

// Name returns the base column name, or "" when the expression is not rooted
// at a column.
func (e *Expression) Name() string {
	switch {
	case e.Column != nil:
		return e.Column.Name
	case e.Arith != nil:
		return e.Arith.Left.Name()
	default:
		return ""
	}
}

// Kind infers the scalar kind the expression produces.
func (e *Expression) Kind() ScalarKind {
	for i := len(e.Chain) - 1; i >= 0; i-- {
		if k := e.Chain[i].ResultKind(); k != KindUnknown {
			return k
		}
	}
	switch {
	case e.Column != nil:
		return e.Column.Kind
	case e.Arith != nil:
		if k := e.Arith.Left.Kind(); k != KindUnknown {
			return k
		}
		return e.Arith.Right.Kind()
	case e.Case != nil && len(e.Case.Clauses) > 0:
		return e.Case.Clauses[0].Then.Kind()
	default:
		return KindUnknown
	}
}

// Kind infers the operand's scalar kind.
func (o Operand) Kind() ScalarKind {
	switch {
	case o.Value != nil:
		return o.Value.Kind
	case o.Expr != nil:
		return o.Expr.Kind()
	default:
		return KindUnknown
	}
}

// CaseExpr is an ordered list of WHEN/THEN clauses with an optional ELSE.
type CaseExpr struct {
	Clauses []WhenClause
	Else    *Operand
}

// WhenClause holds either a predicate stream or an expression as its condition.
type WhenClause struct {
	Cond     []PredicateToken
	CondExpr *Expression
	Then     Operand
}

// OrderItem is one ORDER BY entry.
type OrderItem struct {
	Expr      Expression
	Direction Direction
}
