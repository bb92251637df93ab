package services

import (
	"context"
	"errors"
	"testing"

	"github.com/yungbote/orgsync-backend/internal/hierarchy"
)

func buildResolved(t *testing.T, remote *fakeRemote, rows ...hierarchy.Row) *hierarchy.Graph {
	t.Helper()
	g := hierarchy.Build(rows)
	resolver := NewIdentityResolver(newTestLogger(t), remote)
	if _, err := resolver.Resolve(context.Background(), g, false); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	remote.calls = nil
	return g
}

func twoDivisionRows() []hierarchy.Row {
	return []hierarchy.Row{
		row("D1", "Div One", "F1", "Fac One"),
		row("D1", "Div One", "F2", "Fac Two"),
		row("D2", "Div Two"),
	}
}

func twoDivisionLookups() map[string]int64 {
	return map[string]int64{
		"Div One": 11,
		"Div Two": 12,
		"Fac One": 21,
		"Fac Two": 22,
	}
}

func TestEnforceLeafFirstOrder(t *testing.T) {
	t.Parallel()

	remote := &fakeRemote{lookups: twoDivisionLookups()}
	g := buildResolved(t, remote, twoDivisionRows()...)
	enforcer := NewOrderEnforcer(newTestLogger(t), remote, DirectionLeafFirst)

	processed, err := enforcer.Enforce(context.Background(), g, false)
	if err != nil {
		t.Fatalf("enforce: %v", err)
	}
	if processed != 4 {
		t.Fatalf("processed: want=4 got=%d", processed)
	}

	patches := remote.callsOf("patch")
	want := []remoteCall{
		{verb: "patch", id: 22, patch: OrgPatch{ParentID: 11, Name: "Fac Two", NextSiblingID: hierarchy.NoSiblingID, Code: "F2"}},
		{verb: "patch", id: 21, patch: OrgPatch{ParentID: 11, Name: "Fac One", NextSiblingID: 22, Code: "F1"}},
		{verb: "patch", id: 12, patch: OrgPatch{ParentID: hierarchy.TopParentID, Name: "Div Two", NextSiblingID: hierarchy.NoSiblingID, Code: "D2"}},
		{verb: "patch", id: 11, patch: OrgPatch{ParentID: hierarchy.TopParentID, Name: "Div One", NextSiblingID: 12, Code: "D1"}},
	}
	if len(patches) != len(want) {
		t.Fatalf("patch calls: want=%d got=%d", len(want), len(patches))
	}
	for i, call := range patches {
		if call != want[i] {
			t.Fatalf("patch %d: want=%+v got=%+v", i, want[i], call)
		}
	}
}

func TestEnforceRootFirstOrder(t *testing.T) {
	t.Parallel()

	remote := &fakeRemote{lookups: twoDivisionLookups()}
	g := buildResolved(t, remote, twoDivisionRows()...)
	enforcer := NewOrderEnforcer(newTestLogger(t), remote, DirectionRootFirst)

	processed, err := enforcer.Enforce(context.Background(), g, false)
	if err != nil {
		t.Fatalf("enforce: %v", err)
	}
	if processed != 4 {
		t.Fatalf("processed: want=4 got=%d", processed)
	}

	wantIDs := []int64{11, 12, 21, 22}
	patches := remote.callsOf("patch")
	if len(patches) != len(wantIDs) {
		t.Fatalf("patch calls: want=%d got=%d", len(wantIDs), len(patches))
	}
	for i, call := range patches {
		if call.id != wantIDs[i] {
			t.Fatalf("patch %d id: want=%d got=%d", i, wantIDs[i], call.id)
		}
	}
}

func TestEnforceSkipsUnresolved(t *testing.T) {
	t.Parallel()

	g := hierarchy.Build([]hierarchy.Row{row("D1", "Div One", "F1", "Fac One")})
	mustLookup(t, g, hierarchy.LevelDivision, "D1").SetID(11)
	g.ComputeSiblingLinks()

	remote := &fakeRemote{}
	enforcer := NewOrderEnforcer(newTestLogger(t), remote, DirectionLeafFirst)

	processed, err := enforcer.Enforce(context.Background(), g, false)
	if err != nil {
		t.Fatalf("enforce: %v", err)
	}
	if processed != 1 {
		t.Fatalf("processed: want=1 got=%d", processed)
	}
	patches := remote.callsOf("patch")
	if len(patches) != 1 || patches[0].id != 11 {
		t.Fatalf("patch calls: want one for id=11 got=%+v", patches)
	}
}

func TestEnforceSimulationCountsWithoutCalls(t *testing.T) {
	t.Parallel()

	remote := &fakeRemote{lookups: twoDivisionLookups()}
	g := buildResolved(t, remote, twoDivisionRows()...)
	enforcer := NewOrderEnforcer(newTestLogger(t), remote, DirectionLeafFirst)

	processed, err := enforcer.Enforce(context.Background(), g, true)
	if err != nil {
		t.Fatalf("enforce: %v", err)
	}
	if processed != g.Len() {
		t.Fatalf("processed: want=%d got=%d", g.Len(), processed)
	}
	if got := len(remote.callsOf("patch")); got != 0 {
		t.Fatalf("simulation must not patch, got %d calls", got)
	}
}

func TestEnforceSkipsPlaceholdersOutsideSimulation(t *testing.T) {
	t.Parallel()

	g := hierarchy.Build([]hierarchy.Row{row("D1", "Div One", "F1", "Fac One")})
	remote := &fakeRemote{lookups: map[string]int64{"Div One": 11}}
	resolver := NewIdentityResolver(newTestLogger(t), remote)
	if _, err := resolver.Resolve(context.Background(), g, true); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	remote.calls = nil

	enforcer := NewOrderEnforcer(newTestLogger(t), remote, DirectionLeafFirst)
	processed, err := enforcer.Enforce(context.Background(), g, false)
	if err != nil {
		t.Fatalf("enforce: %v", err)
	}
	if processed != 1 {
		t.Fatalf("processed: want=1 got=%d", processed)
	}
	patches := remote.callsOf("patch")
	if len(patches) != 1 || patches[0].id != 11 {
		t.Fatalf("only the adopted node may be patched, got %+v", patches)
	}
}

func TestEnforcePatchFailureAborts(t *testing.T) {
	t.Parallel()

	remote := &fakeRemote{lookups: twoDivisionLookups()}
	g := buildResolved(t, remote, twoDivisionRows()...)
	remote.patchErr = errors.New("patch rejected")
	enforcer := NewOrderEnforcer(newTestLogger(t), remote, DirectionLeafFirst)

	processed, err := enforcer.Enforce(context.Background(), g, false)
	if err == nil {
		t.Fatalf("want error, got none")
	}
	if processed != 0 {
		t.Fatalf("failed pass must not report progress, got %d", processed)
	}
}

func TestEnforceCanceledContextAborts(t *testing.T) {
	t.Parallel()

	remote := &fakeRemote{lookups: twoDivisionLookups()}
	g := buildResolved(t, remote, twoDivisionRows()...)
	enforcer := NewOrderEnforcer(newTestLogger(t), remote, DirectionLeafFirst)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := enforcer.Enforce(ctx, g, false); !errors.Is(err, context.Canceled) {
		t.Fatalf("want context.Canceled, got %v", err)
	}
	if got := len(remote.callsOf("patch")); got != 0 {
		t.Fatalf("no patches after cancellation, got %d", got)
	}
}

func TestParseDirection(t *testing.T) {
	t.Parallel()

	cases := []struct {
		raw     string
		want    Direction
		wantErr bool
	}{
		{raw: "", want: DirectionLeafFirst},
		{raw: "leaf_first", want: DirectionLeafFirst},
		{raw: "LEAF_FIRST", want: DirectionLeafFirst},
		{raw: "  root_first  ", want: DirectionRootFirst},
		{raw: "sideways", wantErr: true},
	}
	for _, tc := range cases {
		got, err := ParseDirection(tc.raw)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("ParseDirection(%q): want error, got %v", tc.raw, got)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseDirection(%q): %v", tc.raw, err)
		}
		if got != tc.want {
			t.Fatalf("ParseDirection(%q): want=%s got=%s", tc.raw, tc.want, got)
		}
	}
}
