// Package render compiles a query graph into SQL for one dialect.
package render

import (
	"strings"

	"github.com/zoobzio/dynq/internal/types"
)

// Engine walks a query graph and emits SQL through its Dialect hooks.
type Engine struct {
	Dialect
}

// renderContext tracks rendering state for one top-level Render call.
type renderContext struct {
	graph  *types.Graph
	params []types.Param
	// active holds the nodes whose bodies are being rendered. Columns of an
	// active node qualify by its join alias.
	active map[types.NodeID]bool
	names  ParamNames
	depth  int
}

func newRenderContext(g *types.Graph) *renderContext {
	return &renderContext{
		graph:  g,
		active: make(map[types.NodeID]bool),
		names:  make(ParamNames),
	}
}

// enter marks id active for the duration of its body render. The returned
// release func must be deferred.
func (ctx *renderContext) enter(id types.NodeID) (*types.Node, func(), error) {
	n := ctx.graph.Node(id)
	if n == nil {
		return nil, nil, types.Errorf(types.ErrMalformedGraph, "render", "dangling node id %d", id)
	}
	if ctx.active[id] {
		return nil, nil, types.Errorf(types.ErrMalformedGraph, "render", "query %d references itself", id)
	}
	if ctx.depth >= types.MaxSubqueryDepth {
		return nil, nil, types.Errorf(types.ErrMalformedGraph, "render", "maximum subquery depth (%d) exceeded", types.MaxSubqueryDepth)
	}
	ctx.active[id] = true
	ctx.depth++
	return n, func() {
		delete(ctx.active, id)
		ctx.depth--
	}, nil
}

func (ctx *renderContext) node(id types.NodeID) (*types.Node, error) {
	n := ctx.graph.Node(id)
	if n == nil {
		return nil, types.Errorf(types.ErrMalformedGraph, "render", "dangling node id %d", id)
	}
	return n, nil
}

// Render converts the query rooted at root to SQL and parameters. It never
// mutates the graph, so a graph that is no longer being built may be
// rendered from several goroutines.
func (e Engine) Render(g *types.Graph, root types.NodeID) (*types.QueryResult, error) {
	if g == nil {
		return nil, types.Errorf(types.ErrMalformedGraph, "render", "nil graph")
	}
	ctx := newRenderContext(g)
	sql, err := e.renderStatement(root, ctx)
	if err != nil {
		return nil, err
	}
	return &types.QueryResult{
		SQL:    sql,
		Params: ctx.params,
		Named:  e.NamedParameters(),
	}, nil
}

// bind creates the next parameter for v, named after the column the value
// is compared with.
func (e Engine) bind(ctx *renderContext, left *types.Expression, v types.Value) string {
	ordinal := len(ctx.params) + 1
	column := ""
	var tmpl types.ParamTemplate
	if left != nil {
		column = left.Name()
		tmpl = e.template(ctx, left)
	}
	name := ctx.names.Next(column, ordinal)
	p := tmpl.NewParam(name, v)
	p.Placeholder = e.Placeholder(name, ordinal)
	ctx.params = append(ctx.params, p)
	return p.Placeholder
}

// template looks up the cached parameter template of the column an
// expression is rooted at.
func (e Engine) template(ctx *renderContext, left *types.Expression) types.ParamTemplate {
	if ctx.graph.Metadata == nil {
		return types.ParamTemplate{}
	}
	col := left.Column
	if col == nil && left.Arith != nil {
		col = left.Arith.Left.Column
	}
	if col == nil {
		return types.ParamTemplate{}
	}
	owner := ctx.graph.Node(col.Query)
	if owner == nil {
		return types.ParamTemplate{}
	}
	meta, ok := ctx.graph.Metadata.Column(owner.Source, col.Name)
	if !ok {
		return types.ParamTemplate{}
	}
	tmpl := meta.Template
	if tmpl.Kind == types.KindUnknown {
		tmpl.Kind = meta.Kind
	}
	if tmpl.Size == 0 {
		tmpl.Size = meta.MaxLength
	}
	return tmpl
}

// qualifiedName quotes and dot-joins catalog, schema and source.
func (e Engine) qualifiedName(n *types.Node) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{n.Catalog, n.Schema, n.Source} {
		if p != "" {
			parts = append(parts, e.QuoteIdentifier(p))
		}
	}
	return strings.Join(parts, ".")
}

// allColumns renders alias.* for a node, falling back to its table name.
func (e Engine) allColumns(n *types.Node) string {
	switch {
	case n.Alias != "":
		return e.QuoteIdentifier(n.Alias) + ".*"
	case n.Source != "":
		return e.qualifiedName(n) + ".*"
	default:
		return "*"
	}
}

func (e Engine) unsupported(feature string, hint ...string) error {
	return NewUnsupportedSyntaxError(e.Name(), feature, hint...)
}
