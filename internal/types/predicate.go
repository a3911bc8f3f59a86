package types

// TokenKind discriminates predicate stream tokens.
type TokenKind int

const (
	TokenOpen TokenKind = iota + 1
	TokenClose
	TokenConjunction
	TokenPredicate
)

// PredicateToken is one element of a flat, explicitly parenthesized
// WHERE/HAVING/ON stream.
type PredicateToken struct {
	Kind TokenKind
	Conj Conjunction
	Pred *Predicate
}

// RightKind identifies the populated right side of a predicate.
type RightKind int

const (
	RightNone RightKind = iota
	RightValue
	RightColumn
	RightList
	RightQuery
	RightBounds
)

// Bound is one side of a BETWEEN: a literal, a column, or (unsupported) a query.
type Bound struct {
	Value  *Value
	Column *Expression
	Query  NodeID
}

// Predicate is the payload of a TokenPredicate.
type Predicate struct {
	Op     Comparison
	Left   Expression
	Right  RightKind
	Value  *Value
	Column *Expression
	List   []Value
	Query  NodeID
	Low    Bound
	High   Bound
	Escape rune

	// ItemFirst is false when the value or second column preceded Left in
	// source order.
	ItemFirst bool
	Chain     []SubOperator

	Raw       string
	IsLiteral bool
}

// OpenToken returns a "(" token.
func OpenToken() PredicateToken { return PredicateToken{Kind: TokenOpen} }

// CloseToken returns a ")" token.
func CloseToken() PredicateToken { return PredicateToken{Kind: TokenClose} }

// ConjToken returns a conjunction token.
func ConjToken(c Conjunction) PredicateToken {
	return PredicateToken{Kind: TokenConjunction, Conj: c}
}

// PredToken wraps a predicate.
func PredToken(p *Predicate) PredicateToken {
	return PredicateToken{Kind: TokenPredicate, Pred: p}
}

// NeedsConjunction reports whether a predicate or "(" appended after the
// stream needs a conjunction in front of it.
func NeedsConjunction(ts []PredicateToken) bool {
	if len(ts) == 0 {
		return false
	}
	switch ts[len(ts)-1].Kind {
	case TokenPredicate, TokenClose:
		return true
	default:
		return false
	}
}

// ValidateTokens checks that a stream is well formed: balanced parentheses,
// no empty groups, and conjunctions only between operands.
func ValidateTokens(ts []PredicateToken) error {
	const op = "predicate stream"
	depth := 0
	// operand is true when the previous token ended an operand.
	operand := false
	for i, t := range ts {
		switch t.Kind {
		case TokenOpen:
			if operand {
				return Errorf(ErrMalformedGraph, op, "missing conjunction before ( at token %d", i)
			}
			depth++
		case TokenClose:
			if !operand {
				return Errorf(ErrMalformedGraph, op, "empty group or dangling conjunction before ) at token %d", i)
			}
			depth--
			if depth < 0 {
				return Errorf(ErrMalformedGraph, op, "unbalanced ) at token %d", i)
			}
		case TokenConjunction:
			if !operand {
				return Errorf(ErrMalformedGraph, op, "conjunction %s has no preceding predicate at token %d", t.Conj, i)
			}
			switch t.Conj {
			case And, Or, AndNot, OrNot:
			default:
				return Errorf(ErrMalformedGraph, op, "unknown conjunction %q", t.Conj)
			}
			operand = false
		case TokenPredicate:
			if operand {
				return Errorf(ErrMalformedGraph, op, "missing conjunction before predicate at token %d", i)
			}
			if t.Pred == nil {
				return Errorf(ErrMalformedGraph, op, "empty predicate at token %d", i)
			}
			operand = true
		default:
			return Errorf(ErrMalformedGraph, op, "unknown token kind %d", t.Kind)
		}
		if t.Kind == TokenClose {
			operand = true
		}
	}
	if depth != 0 {
		return Errorf(ErrMalformedGraph, op, "%d unclosed (", depth)
	}
	if len(ts) > 0 && !operand {
		return Errorf(ErrMalformedGraph, op, "stream ends with a conjunction")
	}
	return nil
}

// HasTopLevelOr reports whether an OR conjunction appears outside any group.
func HasTopLevelOr(ts []PredicateToken) bool {
	depth := 0
	for _, t := range ts {
		switch t.Kind {
		case TokenOpen:
			depth++
		case TokenClose:
			depth--
		case TokenConjunction:
			if depth == 0 && (t.Conj == Or || t.Conj == OrNot) {
				return true
			}
		}
	}
	return false
}
