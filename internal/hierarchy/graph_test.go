package hierarchy

import "testing"

func rowAllLevels(div, fac, dep, bu, bsu string) Row {
	cells := [NumLevels]string{div, fac, dep, bu, bsu}
	var row Row
	for i, code := range cells {
		if code == "" {
			continue
		}
		row[i] = Cell{Code: code, Name: "Name " + code}
	}
	return row
}

func TestBuildSharedAncestors(t *testing.T) {
	t.Parallel()

	rows := []Row{
		rowAllLevels("D1", "F1", "DEP1", "BU1", "BSU1"),
		rowAllLevels("D1", "F2", "DEP2", "BU2", "BSU2"),
	}
	g := Build(rows)

	if got := g.Len(); got != 9 {
		t.Fatalf("node count: want=9 got=%d", got)
	}

	div, ok := g.Lookup(LevelDivision, "D1")
	if !ok {
		t.Fatalf("division D1 not found")
	}
	if len(div.Children) != 2 {
		t.Fatalf("division children: want=2 got=%d", len(div.Children))
	}

	f1, _ := g.Lookup(LevelFacility, "F1")
	f2, _ := g.Lookup(LevelFacility, "F2")
	if f1.NextSibling != f2 {
		t.Fatalf("F1 next sibling: want=F2 got=%+v", f1.NextSibling)
	}
	if f2.PreviousSibling != f1 {
		t.Fatalf("F2 previous sibling: want=F1 got=%+v", f2.PreviousSibling)
	}
	if f2.NextSibling != nil {
		t.Fatalf("F2 next sibling: want=nil got=%+v", f2.NextSibling)
	}

	roots := g.Roots()
	if len(roots) != 1 || roots[0] != div {
		t.Fatalf("roots: want=[D1] got=%d", len(roots))
	}
}

func TestBuildIsIdempotent(t *testing.T) {
	t.Parallel()

	rows := []Row{
		rowAllLevels("D1", "F1", "DEP1", "BU1", "BSU1"),
		rowAllLevels("D1", "F2", "DEP2", "BU2", "BSU2"),
	}
	g := Build(rows)
	want := g.Len()

	AppendRows(g, rows)

	if got := g.Len(); got != want {
		t.Fatalf("node count after replay: want=%d got=%d", want, got)
	}
	div, _ := g.Lookup(LevelDivision, "D1")
	if len(div.Children) != 2 {
		t.Fatalf("division children after replay: want=2 got=%d", len(div.Children))
	}
	f1, _ := g.Lookup(LevelFacility, "F1")
	if len(f1.Children) != 1 {
		t.Fatalf("facility children after replay: want=1 got=%d", len(f1.Children))
	}
}

func TestGetOrAddKeepsFirstNameAndParent(t *testing.T) {
	t.Parallel()

	g := NewGraph()
	p1 := g.GetOrAdd(LevelDivision, "D1", "Division One", nil)
	p2 := g.GetOrAdd(LevelDivision, "D2", "Division Two", nil)

	first := g.GetOrAdd(LevelFacility, "F1", "First Name", p1)
	again := g.GetOrAdd(LevelFacility, "F1", "Second Name", p2)

	if first != again {
		t.Fatalf("same (level, code): want same node")
	}
	if again.Name != "First Name" {
		t.Fatalf("name: want=%q got=%q", "First Name", again.Name)
	}
	if again.Parent != p1 {
		t.Fatalf("parent: want=D1 got=%v", again.Parent)
	}
	if len(p2.Children) != 0 {
		t.Fatalf("conflicting parent children: want=0 got=%d", len(p2.Children))
	}
}

func TestGetOrAddAdoptsOrphan(t *testing.T) {
	t.Parallel()

	g := NewGraph()
	orphan := g.GetOrAdd(LevelFacility, "F1", "Facility One", nil)
	if orphan.Parent != nil {
		t.Fatalf("orphan parent: want=nil got=%v", orphan.Parent)
	}
	if len(g.Roots()) != 1 {
		t.Fatalf("roots before adoption: want=1 got=%d", len(g.Roots()))
	}

	div := g.GetOrAdd(LevelDivision, "D1", "Division One", nil)
	adopted := g.GetOrAdd(LevelFacility, "F1", "Facility One", div)

	if adopted != orphan {
		t.Fatalf("adoption returned a different node")
	}
	if adopted.Parent != div {
		t.Fatalf("adopted parent: want=D1 got=%v", adopted.Parent)
	}
	if len(div.Children) != 1 || div.Children[0] != orphan {
		t.Fatalf("division children: want=[F1] got=%d", len(div.Children))
	}
}

func TestRootsAreSiblingLinked(t *testing.T) {
	t.Parallel()

	g := NewGraph()
	d1 := g.GetOrAdd(LevelDivision, "D1", "One", nil)
	d2 := g.GetOrAdd(LevelDivision, "D2", "Two", nil)
	d3 := g.GetOrAdd(LevelDivision, "D3", "Three", nil)

	if d1.NextSibling != d2 || d2.NextSibling != d3 {
		t.Fatalf("forward root links broken")
	}
	if d3.PreviousSibling != d2 || d2.PreviousSibling != d1 {
		t.Fatalf("backward root links broken")
	}
	if d1.PreviousSibling != nil || d3.NextSibling != nil {
		t.Fatalf("chain ends: want nil neighbors")
	}
}

func TestNodesInLevelOrder(t *testing.T) {
	t.Parallel()

	rows := []Row{
		rowAllLevels("D1", "F1", "DEP1", "BU1", "BSU1"),
		rowAllLevels("D1", "F2", "DEP2", "BU2", "BSU2"),
	}
	g := Build(rows)

	want := []string{"D1", "F1", "F2", "DEP1", "DEP2", "BU1", "BU2", "BSU1", "BSU2"}
	nodes := g.NodesInLevelOrder()
	if len(nodes) != len(want) {
		t.Fatalf("ordered node count: want=%d got=%d", len(want), len(nodes))
	}
	for i, node := range nodes {
		if node.Code != want[i] {
			t.Fatalf("position %d: want=%s got=%s", i, want[i], node.Code)
		}
	}
	prev := -1
	for _, node := range nodes {
		if idx := node.Level.Index(); idx < prev {
			t.Fatalf("level order regressed at %s", node.Code)
		} else {
			prev = idx
		}
	}
}

func TestComputeSiblingLinks(t *testing.T) {
	t.Parallel()

	rows := []Row{
		rowAllLevels("D1", "F1", "", "", ""),
		rowAllLevels("D1", "F2", "", "", ""),
		rowAllLevels("D1", "F3", "", "", ""),
	}
	g := Build(rows)

	div, _ := g.Lookup(LevelDivision, "D1")
	f1, _ := g.Lookup(LevelFacility, "F1")
	f2, _ := g.Lookup(LevelFacility, "F2")
	div.SetID(1)
	f1.SetID(101)
	f2.SetID(102)
	// F3 stays unresolved.

	g.ComputeSiblingLinks()

	if got := f2.WirePreviousSiblingID(); got != 101 {
		t.Fatalf("F2 previous sibling id: want=101 got=%d", got)
	}
	if got := f2.WireNextSiblingID(); got != NoSiblingID {
		t.Fatalf("F2 next sibling id with unresolved neighbor: want=%d got=%d", NoSiblingID, got)
	}
	if got := f1.WireParentID(); got != 1 {
		t.Fatalf("F1 parent id: want=1 got=%d", got)
	}
	if got := div.WireParentID(); got != TopParentID {
		t.Fatalf("root parent id: want=%d got=%d", TopParentID, got)
	}
	if got := f1.WirePreviousSiblingID(); got != NoSiblingID {
		t.Fatalf("F1 previous sibling id: want=%d got=%d", NoSiblingID, got)
	}
}

func TestSnapshotFlattensSentinels(t *testing.T) {
	t.Parallel()

	rows := []Row{rowAllLevels("D1", "F1", "", "", "")}
	g := Build(rows)
	div, _ := g.Lookup(LevelDivision, "D1")
	div.SetID(7)
	g.ComputeSiblingLinks()

	records := g.Snapshot()
	if len(records) != 2 {
		t.Fatalf("record count: want=2 got=%d", len(records))
	}

	root := records[0]
	if root.Code != "D1" || root.Level != LevelDivision {
		t.Fatalf("first record: want division D1 got %s %s", root.Level, root.Code)
	}
	if root.ParentID != TopParentID {
		t.Fatalf("root parent id: want=%d got=%d", TopParentID, root.ParentID)
	}
	if root.ID == nil || *root.ID != 7 {
		t.Fatalf("root id: want=7 got=%v", root.ID)
	}

	leaf := records[1]
	if leaf.ID != nil {
		t.Fatalf("unresolved id: want=nil got=%d", *leaf.ID)
	}
	if leaf.ParentID != 7 {
		t.Fatalf("leaf parent id: want=7 got=%d", leaf.ParentID)
	}
	if leaf.PreviousSiblingID != NoSiblingID || leaf.NextSiblingID != NoSiblingID {
		t.Fatalf("leaf sibling ids: want sentinels got prev=%d next=%d", leaf.PreviousSiblingID, leaf.NextSiblingID)
	}
	if leaf.OrganizationCode != "F1" {
		t.Fatalf("organization code: want=F1 got=%s", leaf.OrganizationCode)
	}
}

func TestBlankCellSkipsLevel(t *testing.T) {
	t.Parallel()

	var row Row
	row[0] = Cell{Code: "D1", Name: "Division"}
	row[2] = Cell{Code: "DEP1", Name: "Department"}
	g := Build([]Row{row})

	if got := g.Len(); got != 2 {
		t.Fatalf("node count: want=2 got=%d", got)
	}
	dep, ok := g.Lookup(LevelDepartment, "DEP1")
	if !ok {
		t.Fatalf("department DEP1 not found")
	}
	div, _ := g.Lookup(LevelDivision, "D1")
	if dep.Parent != div {
		t.Fatalf("department parent: want division got=%v", dep.Parent)
	}
	if _, ok := g.Lookup(LevelFacility, ""); ok {
		t.Fatalf("blank facility was created")
	}
}

func TestBuilderTrimsWhitespace(t *testing.T) {
	t.Parallel()

	var row Row
	row[0] = Cell{Code: "  D1  ", Name: "  Division One  "}
	row[1] = Cell{Code: "   ", Name: " "}
	g := Build([]Row{row})

	if got := g.Len(); got != 1 {
		t.Fatalf("node count: want=1 got=%d", got)
	}
	div, ok := g.Lookup(LevelDivision, "D1")
	if !ok {
		t.Fatalf("trimmed code lookup failed")
	}
	if div.Name != "Division One" {
		t.Fatalf("trimmed name: want=%q got=%q", "Division One", div.Name)
	}
}

func TestLevelIndex(t *testing.T) {
	t.Parallel()

	for i, level := range Levels() {
		if got := level.Index(); got != i {
			t.Fatalf("%s index: want=%d got=%d", level, i, got)
		}
		if !level.Valid() {
			t.Fatalf("%s: want valid", level)
		}
	}
	if Level("region").Valid() {
		t.Fatalf("unknown level reported valid")
	}
	if NumLevels != 5 {
		t.Fatalf("level count: want=5 got=%d", NumLevels)
	}
}

func TestIsSyntheticID(t *testing.T) {
	t.Parallel()

	if !IsSyntheticID(syntheticIDStart) {
		t.Fatalf("band start not synthetic")
	}
	if !IsSyntheticID(syntheticIDStart - 50) {
		t.Fatalf("band interior not synthetic")
	}
	for _, id := range []int64{1, 42, TopParentID, NoSiblingID, 0} {
		if IsSyntheticID(id) {
			t.Fatalf("id %d wrongly synthetic", id)
		}
	}

	ids := NewSyntheticIDs()
	first := ids.Next()
	second := ids.Next()
	if first != syntheticIDStart {
		t.Fatalf("first synthetic id: want=%d got=%d", syntheticIDStart, first)
	}
	if second >= first {
		t.Fatalf("synthetic ids not strictly decreasing: %d then %d", first, second)
	}
	if !IsSyntheticID(second) {
		t.Fatalf("allocated id %d not recognized as synthetic", second)
	}
}
