package types

// Node is a query node: one SELECT statement and everything it owns.
// Nested queries are referenced by NodeID.
type Node struct {
	Catalog string
	Schema  string
	Source  string

	// Alias is the join alias; "" means no alias.
	Alias string
	// SubQueryAlias names the node when it is rendered as a derived table or
	// a scalar sub-select.
	SubQueryAlias string

	Select        []Expression
	Distinct      bool
	CountAll      bool
	CountAllAlias string

	From    NodeID
	Joins   []Join
	Where   []PredicateToken
	Having  []PredicateToken
	OrderBy []OrderItem
	GroupBy []Expression
	Rollup  bool
	SetOps  []SetOperation

	// Paging. At most one of skip/take, page number/size or top is set.
	Skip       *int
	Take       *int
	PageNumber int
	PageSize   int
	Top        int

	Conjunction Conjunction
	Search      SearchCondition

	Registry []NodeID
	Aliases  map[string]NodeID
	Owner    NodeID
}

// Join is one JOIN clause.
type Join struct {
	Kind  JoinKind
	Query NodeID
	On    []PredicateToken
}

// SetOperation combines the node with a right-hand query.
type SetOperation struct {
	Kind  SetOpKind
	Query NodeID
}

// Paging identifies the active paging mode of a node.
type Paging int

const (
	PagingNone Paging = iota
	PagingSkipTake
	PagingPage
	PagingTop
)

// Paging reports the active paging mode.
func (n *Node) Paging() Paging {
	switch {
	case n.PageNumber > 0 || n.PageSize > 0:
		return PagingPage
	case n.Skip != nil || n.Take != nil:
		return PagingSkipTake
	case n.Top > 0:
		return PagingTop
	default:
		return PagingNone
	}
}

// PageBounds returns the 1-based inclusive row range of the requested page.
func (n *Node) PageBounds() (begin, end int) {
	begin = (n.PageNumber-1)*n.PageSize + 1
	end = begin + n.PageSize - 1
	return begin, end
}

// OuterAlias is the name the node is referenced by from outside its own body.
func (n *Node) OuterAlias() string {
	if n.SubQueryAlias != "" {
		return n.SubQueryAlias
	}
	return n.Alias
}

// Derived reports whether the node must render as a parenthesized statement
// when used as a FROM or JOIN source, rather than as a bare table name.
func (n *Node) Derived() bool {
	return n.Source == "" || n.From != NoNode || len(n.Select) > 0 || n.Distinct ||
		n.CountAll || len(n.Joins) > 0 || len(n.Where) > 0 || len(n.Having) > 0 ||
		len(n.GroupBy) > 0 || len(n.OrderBy) > 0 || len(n.SetOps) > 0 ||
		n.Paging() != PagingNone
}

// DefaultConjunction returns the conjunction inserted between bare items.
func (n *Node) DefaultConjunction() Conjunction {
	if n.Conjunction == "" {
		return And
	}
	return n.Conjunction
}

// Registered reports whether id is in the node's registry.
func (n *Node) Registered(id NodeID) bool {
	for _, r := range n.Registry {
		if r == id {
			return true
		}
	}
	return false
}
