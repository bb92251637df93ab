package hierarchy

import "strings"

// Cell is one level's code and display name within a row.
type Cell struct {
	Code string
	Name string
}

// Row carries one Cell per level, root to leaf. Decoders produce rows; the
// builder folds them into a Graph.
type Row [NumLevels]Cell

// Blank reports whether the cell carries neither code nor name.
func (c Cell) Blank() bool {
	return strings.TrimSpace(c.Code) == "" && strings.TrimSpace(c.Name) == ""
}

// Build folds rows into a fresh graph. See AppendRows for the per-row rules.
func Build(rows []Row) *Graph {
	g := NewGraph()
	AppendRows(g, rows)
	return g
}

// AppendRows walks each row root to leaf, chaining nodes under the nearest
// non-blank ancestor cell of the same row. A blank cell is skipped and does
// not break the chain for deeper levels. Codes and names are trimmed before
// use, and re-running the same rows leaves the graph unchanged.
func AppendRows(g *Graph, rows []Row) {
	for _, row := range rows {
		var parent *Node
		for i, level := range levelOrder {
			cell := row[i]
			if cell.Blank() {
				continue
			}
			code := strings.TrimSpace(cell.Code)
			name := strings.TrimSpace(cell.Name)
			parent = g.GetOrAdd(level, code, name, parent)
		}
	}
}
