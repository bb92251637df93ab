package hierarchy

// Sentinel values understood by the remote organization API. Internally a
// node keeps optional references; these appear only in request payloads and
// flattened snapshots.
const (
	// TopParentID marks a root organization on the wire.
	TopParentID int64 = 1
	// NoSiblingID marks a missing previous or next sibling on the wire.
	NoSiblingID int64 = -10
)

// syntheticIDStart is the first identifier handed out for simulated creates.
// The band grows downward so it can never collide with real identifiers,
// which are positive, or with the wire sentinels.
const syntheticIDStart int64 = -1_000_000

// IsSyntheticID reports whether id was minted locally by a simulated create
// rather than returned by the remote service.
func IsSyntheticID(id int64) bool { return id <= syntheticIDStart }

// SyntheticIDs hands out locally minted identifiers for simulated creates.
// Values are unique and stable within a run. Not safe for concurrent use; a
// run resolves nodes sequentially.
type SyntheticIDs struct {
	next int64
}

func NewSyntheticIDs() *SyntheticIDs {
	return &SyntheticIDs{next: syntheticIDStart}
}

// Next returns the next identifier in the band.
func (s *SyntheticIDs) Next() int64 {
	id := s.next
	s.next--
	return id
}

// Node is one organizational unit at one level. Within a run it is uniquely
// identified by (Level, Code). Children are owned and kept in first-encounter
// order; Parent, PreviousSibling and NextSibling are navigation pointers into
// the same graph.
type Node struct {
	Level            Level
	Code             string
	Name             string
	OrganizationCode string

	// ID is the remote identifier, nil until the node has been resolved
	// against the remote service (or assigned a synthetic value in
	// simulation).
	ID *int64

	Parent          *Node
	Children        []*Node
	PreviousSibling *Node
	NextSibling     *Node

	// Identifier snapshot of the links above, recomputed from the in-memory
	// pointers once identifiers are known. Nil means the corresponding wire
	// sentinel.
	ParentID          *int64
	PreviousSiblingID *int64
	NextSiblingID     *int64
}

// attachChild appends child to n's children, linking it to the current last
// child as its previous sibling. Child order is first-encounter order and is
// never rewritten.
func (n *Node) attachChild(child *Node) {
	if last := n.lastChild(); last != nil {
		last.NextSibling = child
		child.PreviousSibling = last
	}
	n.Children = append(n.Children, child)
	child.Parent = n
	if n.ID != nil {
		child.ParentID = copyID(n.ID)
	}
}

func (n *Node) lastChild() *Node {
	if len(n.Children) == 0 {
		return nil
	}
	return n.Children[len(n.Children)-1]
}

// SetID records the node's remote identifier and refreshes the parent link
// snapshot of its children.
func (n *Node) SetID(id int64) {
	n.ID = &id
	for _, child := range n.Children {
		child.ParentID = copyID(n.ID)
	}
}

// Resolved reports whether the node has a remote identifier.
func (n *Node) Resolved() bool { return n.ID != nil }

// RefreshParentID re-derives the parent identifier snapshot from the parent
// pointer. Roots clear the snapshot; an unresolved parent leaves the previous
// value in place.
func (n *Node) RefreshParentID() {
	if n.Parent == nil {
		n.ParentID = nil
		return
	}
	if n.Parent.ID != nil {
		n.ParentID = copyID(n.Parent.ID)
	}
}

func copyID(id *int64) *int64 {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}

// wireValue flattens an optional identifier to its wire form.
func wireValue(id *int64, sentinel int64) int64 {
	if id == nil {
		return sentinel
	}
	return *id
}

// WireParentID returns the parent identifier as the remote API expects it:
// the parent's identifier, or TopParentID for a root.
func (n *Node) WireParentID() int64 { return wireValue(n.ParentID, TopParentID) }

// WirePreviousSiblingID returns the previous sibling identifier in wire form.
func (n *Node) WirePreviousSiblingID() int64 { return wireValue(n.PreviousSiblingID, NoSiblingID) }

// WireNextSiblingID returns the next sibling identifier in wire form.
func (n *Node) WireNextSiblingID() int64 { return wireValue(n.NextSiblingID, NoSiblingID) }
