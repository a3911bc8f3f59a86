package dynq

import (
	"github.com/zoobzio/dynq/internal/types"
)

// Graph owns the query nodes built for one statement and everything nested
// in it. A Graph is not safe for concurrent mutation; once building is done
// its queries may be rendered from several goroutines.
type Graph struct {
	arena   *types.Graph
	queries map[types.NodeID]*Query
}

// Option configures a Graph.
type Option func(*Graph)

// WithMetadata attaches a metadata provider used to type columns and to
// clone parameter templates when values are bound.
func WithMetadata(p MetadataProvider) Option {
	return func(g *Graph) {
		g.arena.Metadata = p
	}
}

// NewGraph creates an empty graph.
func NewGraph(opts ...Option) *Graph {
	g := &Graph{
		arena:   &types.Graph{},
		queries: make(map[types.NodeID]*Query),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// New creates a query over source in a fresh graph. The optional alias is
// the query's join alias.
func New(source string, alias ...string) *Query {
	return NewGraph().Query(source, alias...)
}

// Query adds a query over source to the graph.
func (g *Graph) Query(source string, alias ...string) *Query {
	n := types.Node{Source: source}
	if len(alias) > 0 {
		n.Alias = alias[0]
	}
	id := g.arena.Add(n)
	q := &Query{graph: g, id: id}
	g.queries[id] = q
	return q
}

// Arena exposes the raw node arena. Every attribute of every node is an
// exported field so that a graph can be transported and rebuilt.
func (g *Graph) Arena() *types.Graph {
	return g.arena
}

// Lookup resolves an alias registered under owner.
func (g *Graph) Lookup(owner *Query, alias string) (*Query, bool) {
	if owner == nil || owner.graph != g {
		return nil, false
	}
	id, ok := g.arena.Lookup(owner.id, alias)
	if !ok {
		return nil, false
	}
	return g.queries[id], true
}

// metadata returns the column metadata for a column of the query's source.
func (g *Graph) metadata(id types.NodeID, column string) (types.ColumnMeta, bool) {
	if g.arena.Metadata == nil {
		return types.ColumnMeta{}, false
	}
	n := g.arena.Node(id)
	if n == nil || n.Source == "" {
		return types.ColumnMeta{}, false
	}
	return g.arena.Metadata.Column(n.Source, column)
}

// sameGraph merges the graphs two parts of an expression belong to. Parts
// with no query reference have a nil graph.
func sameGraph(a, b *Graph) (*Graph, error) {
	switch {
	case a == nil:
		return b, nil
	case b == nil || a == b:
		return a, nil
	default:
		return nil, types.Errorf(types.ErrMalformedGraph, "attach", "expression combines queries from different graphs")
	}
}
