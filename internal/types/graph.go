package types

// MaxSubqueryDepth is the maximum nesting depth a renderer will follow.
const MaxSubqueryDepth = 32

// NodeID addresses a Node inside a Graph. IDs are 1-based.
type NodeID int

// NoNode is the zero NodeID.
const NoNode NodeID = 0

// Graph is an arena of query nodes. Nodes never hold pointers to one
// another; every nested query is a NodeID into the same arena.
type Graph struct {
	Nodes    []Node
	Metadata MetadataProvider
}

// Add appends a node and returns its id. Pointers previously returned by
// Node may be invalidated.
func (g *Graph) Add(n Node) NodeID {
	g.Nodes = append(g.Nodes, n)
	return NodeID(len(g.Nodes))
}

// Valid reports whether id addresses a node of g.
func (g *Graph) Valid(id NodeID) bool {
	return id > NoNode && int(id) <= len(g.Nodes)
}

// Node returns the node for id, or nil when id is not valid.
func (g *Graph) Node(id NodeID) *Node {
	if !g.Valid(id) {
		return nil
	}
	return &g.Nodes[id-1]
}

// Register records nested in owner's alias registry, together with every
// query already registered in nested. A node is registered at most once.
// Registering the owner itself, or a query that already reaches the owner,
// fails with ErrMalformedGraph, as does an alias already bound to a
// different node.
func (g *Graph) Register(owner, nested NodeID) error {
	const op = "register"
	o, n := g.Node(owner), g.Node(nested)
	if o == nil || n == nil {
		return Errorf(ErrMalformedGraph, op, "unknown node %d", nested)
	}
	if owner == nested {
		return Errorf(ErrMalformedGraph, op, "query %q cannot be attached to itself", label(n))
	}
	if g.Reaches(nested, owner) {
		return Errorf(ErrMalformedGraph, op, "attaching %q to %q would create a cycle", label(n), label(o))
	}
	if alias := n.OuterAlias(); alias != "" {
		if prev, ok := o.Aliases[alias]; ok && prev != nested {
			return Errorf(ErrMalformedGraph, op, "alias %q is already bound in %q", alias, label(o))
		}
	}

	ids := append([]NodeID{nested}, n.Registry...)
	if n.Owner == NoNode {
		n.Owner = owner
	}
	for i, id := range ids {
		if o.Registered(id) {
			continue
		}
		o.Registry = append(o.Registry, id)
		// Only direct attachments claim an alias; queries reached through
		// them keep the alias scope of their own owner.
		if i == 0 {
			if alias := g.Node(id).OuterAlias(); alias != "" {
				if o.Aliases == nil {
					o.Aliases = make(map[string]NodeID)
				}
				o.Aliases[alias] = id
			}
		}
	}
	return nil
}

// Reaches reports whether target is from or is registered, directly or
// transitively, under from.
func (g *Graph) Reaches(from, target NodeID) bool {
	seen := make(map[NodeID]bool)
	var walk func(id NodeID) bool
	walk = func(id NodeID) bool {
		if id == target {
			return true
		}
		if seen[id] {
			return false
		}
		seen[id] = true
		n := g.Node(id)
		if n == nil {
			return false
		}
		for _, r := range n.Registry {
			if walk(r) {
				return true
			}
		}
		return false
	}
	return walk(from)
}

// Lookup resolves an alias registered under owner, including owner's own alias.
func (g *Graph) Lookup(owner NodeID, alias string) (NodeID, bool) {
	o := g.Node(owner)
	if o == nil {
		return NoNode, false
	}
	if o.Alias == alias {
		return owner, true
	}
	id, ok := o.Aliases[alias]
	return id, ok
}

func label(n *Node) string {
	if a := n.OuterAlias(); a != "" {
		return a
	}
	return n.Source
}
