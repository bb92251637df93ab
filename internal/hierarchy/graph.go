package hierarchy

type nodeKey struct {
	level Level
	code  string
}

// Graph is the in-memory hierarchy for one load. Nodes are keyed by
// (level, code); insertion order is preserved so traversals are
// deterministic across runs of the same input.
type Graph struct {
	nodes map[nodeKey]*Node
	order []*Node
	roots []*Node
}

func NewGraph() *Graph {
	return &Graph{nodes: make(map[nodeKey]*Node)}
}

// GetOrAdd returns the node for (level, code), creating it if absent. A new
// node is attached under parent, or linked as a root when parent is nil. An
// existing node is re-parented only if it has no parent yet; the first seen
// parent wins and later conflicting parents are ignored.
func (g *Graph) GetOrAdd(level Level, code, name string, parent *Node) *Node {
	key := nodeKey{level: level, code: code}
	if node, ok := g.nodes[key]; ok {
		if parent != nil && node.Parent == nil {
			parent.attachChild(node)
		}
		return node
	}

	node := &Node{
		Level:            level,
		Code:             code,
		Name:             name,
		OrganizationCode: code,
	}
	g.nodes[key] = node
	g.order = append(g.order, node)

	if parent != nil {
		parent.attachChild(node)
		return node
	}
	if last := g.lastRoot(); last != nil {
		last.NextSibling = node
		node.PreviousSibling = last
	}
	g.roots = append(g.roots, node)
	return node
}

// Lookup returns the node for (level, code) without creating it.
func (g *Graph) Lookup(level Level, code string) (*Node, bool) {
	node, ok := g.nodes[nodeKey{level: level, code: code}]
	return node, ok
}

func (g *Graph) lastRoot() *Node {
	if len(g.roots) == 0 {
		return nil
	}
	return g.roots[len(g.roots)-1]
}

// Len is the total node count across all levels.
func (g *Graph) Len() int { return len(g.order) }

// Roots returns the top-level nodes in first-encounter order.
func (g *Graph) Roots() []*Node {
	out := make([]*Node, len(g.roots))
	copy(out, g.roots)
	return out
}

// NodesInLevelOrder returns every node level by level, root level first, and
// in first-encounter order within each level.
func (g *Graph) NodesInLevelOrder() []*Node {
	out := make([]*Node, 0, len(g.order))
	for _, level := range levelOrder {
		for _, node := range g.order {
			if node.Level == level {
				out = append(out, node)
			}
		}
	}
	return out
}

// ComputeSiblingLinks refreshes every node's identifier snapshot from the
// in-memory pointers. A linked neighbor without an identifier contributes
// nil, which flattens to the wire sentinel. A parent that exists but is not
// resolved leaves the previously computed parent identifier in place.
func (g *Graph) ComputeSiblingLinks() {
	for _, node := range g.order {
		if node.PreviousSibling != nil {
			node.PreviousSiblingID = copyID(node.PreviousSibling.ID)
		} else {
			node.PreviousSiblingID = nil
		}
		if node.NextSibling != nil {
			node.NextSiblingID = copyID(node.NextSibling.ID)
		} else {
			node.NextSiblingID = nil
		}
		switch {
		case node.Parent == nil:
			node.ParentID = nil
		case node.Parent.ID != nil:
			node.ParentID = copyID(node.Parent.ID)
		}
	}
}
