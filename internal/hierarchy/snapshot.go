package hierarchy

// NodeRecord is the flattened view of one node with wire sentinels applied,
// as returned in structure listings.
type NodeRecord struct {
	ParentID          int64  `json:"parent_id"`
	PreviousSiblingID int64  `json:"previous_sibling_id"`
	Name              string `json:"name"`
	OrganizationCode  string `json:"organization_code"`
	ID                *int64 `json:"id"`
	NextSiblingID     int64  `json:"next_sibling_id"`
	Level             Level  `json:"level"`
	Code              string `json:"code"`
}

// Snapshot flattens the graph in level order. Unresolved identifiers surface
// as null; missing links surface as the wire sentinels.
func (g *Graph) Snapshot() []NodeRecord {
	nodes := g.NodesInLevelOrder()
	out := make([]NodeRecord, 0, len(nodes))
	for _, node := range nodes {
		out = append(out, NodeRecord{
			ParentID:          node.WireParentID(),
			PreviousSiblingID: node.WirePreviousSiblingID(),
			Name:              node.Name,
			OrganizationCode:  node.OrganizationCode,
			ID:                copyID(node.ID),
			NextSiblingID:     node.WireNextSiblingID(),
			Level:             node.Level,
			Code:              node.Code,
		})
	}
	return out
}
