package types

// ExprQueries appends every query referenced by e, in source order.
func ExprQueries(dst []NodeID, e *Expression) []NodeID {
	if e == nil {
		return dst
	}
	if e.Query != NoNode {
		dst = append(dst, e.Query)
	}
	if e.Arith != nil {
		dst = ExprQueries(dst, &e.Arith.Left)
		dst = operandQueries(dst, e.Arith.Right)
	}
	if e.Case != nil {
		for i := range e.Case.Clauses {
			c := &e.Case.Clauses[i]
			dst = TokenQueries(dst, c.Cond)
			dst = ExprQueries(dst, c.CondExpr)
			dst = operandQueries(dst, c.Then)
		}
		if e.Case.Else != nil {
			dst = operandQueries(dst, *e.Case.Else)
		}
	}
	return chainQueries(dst, e.Chain)
}

// TokenQueries appends every query referenced by a predicate stream.
func TokenQueries(dst []NodeID, ts []PredicateToken) []NodeID {
	for _, t := range ts {
		if t.Kind != TokenPredicate || t.Pred == nil {
			continue
		}
		p := t.Pred
		dst = ExprQueries(dst, &p.Left)
		dst = ExprQueries(dst, p.Column)
		if p.Query != NoNode {
			dst = append(dst, p.Query)
		}
		for _, b := range []Bound{p.Low, p.High} {
			dst = ExprQueries(dst, b.Column)
			if b.Query != NoNode {
				dst = append(dst, b.Query)
			}
		}
		dst = chainQueries(dst, p.Chain)
	}
	return dst
}

func operandQueries(dst []NodeID, o Operand) []NodeID {
	return ExprQueries(dst, o.Expr)
}

func chainQueries(dst []NodeID, chain []SubOperator) []NodeID {
	for _, s := range chain {
		if s.Arg != nil {
			dst = operandQueries(dst, *s.Arg)
		}
	}
	return dst
}
