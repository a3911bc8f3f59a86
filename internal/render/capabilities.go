package render

// Capabilities describes the SQL features supported by a dialect.
type Capabilities struct {
	NamedParameters       bool // :Name / @Name placeholders
	WindowPaging          bool // ROW_NUMBER() pagination wrapper
	OffsetFetch           bool // OFFSET n ROWS FETCH NEXT m ROWS ONLY
	RightJoin             bool
	FullJoin              bool
	Rollup                bool
	FullTextSearch        bool // CONTAINS predicate
	StatisticalAggregates bool // STDDEV / VARIANCE
	Intersect             bool
	Except                bool
}
