package dynq

import "github.com/zoobzio/dynq/internal/types"

// Renderer defines the interface for SQL dialect-specific rendering.
// Implementations compile the query rooted at a node into SQL and bound
// parameters without modifying the graph.
type Renderer interface {
	// Render converts the query rooted at root to dialect-specific SQL.
	Render(g *types.Graph, root types.NodeID) (*types.QueryResult, error)

	// Name returns the dialect name.
	Name() string

	// Capabilities reports the SQL features the dialect supports.
	Capabilities() Capabilities
}
