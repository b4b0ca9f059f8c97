package logicsim_test

import (
	"testing"

	ls "github.com/db47h/logicsim"
	hl "github.com/db47h/logicsim/hwlib"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestSnapshot_roundTrip(t *testing.T) {
	src := newEngine(t)
	a, b, out := andCircuit(t, src)
	var and ls.ID
	for _, id := range src.Components() {
		if id != a && id != b && id != out {
			and = id
		}
	}
	if err := src.IncrementInputCount(and); err != nil {
		t.Fatal(err)
	}
	if err := src.SetOutputSlotState(a, 0, H); err != nil {
		t.Fatal(err)
	}
	if err := src.SetOutputSlotState(b, 0, H); err != nil {
		t.Fatal(err)
	}
	waitStable(t, src)
	snap := src.Snapshot()
	if len(snap.Components) != 4 {
		t.Fatalf("%d components in snapshot", len(snap.Components))
	}

	cat := ls.NewCatalog()
	if err := hl.Register(cat); err != nil {
		t.Fatal(err)
	}
	dst := ls.NewEngine(t.Context(), cat)
	defer dst.Dispose()
	if skipped := dst.Restore(t.Context(), snap); skipped != 0 {
		t.Fatalf("%d components skipped", skipped)
	}
	waitStable(t, dst)

	if diff := cmp.Diff(src.Components(), dst.Components()); diff != "" {
		t.Fatalf("components mismatch (-want +got):\n%s", diff)
	}
	byID := cmpopts.SortSlices(func(a, b ls.ID) bool { return a < b })
	if diff := cmp.Diff(src.Nets(), dst.Nets(), byID); diff != "" {
		t.Fatalf("nets mismatch (-want +got):\n%s", diff)
	}
	for _, id := range src.Components() {
		for _, typ := range []ls.SlotType{ls.InputSlot, ls.OutputSlot} {
			want, _ := src.Connections(id, typ)
			got, _ := dst.Connections(id, typ)
			if diff := cmp.Diff(want, got); diff != "" {
				t.Fatalf("%v %s connections mismatch (-want +got):\n%s", id, typ, diff)
			}
		}
	}
	if def, _ := dst.ComponentDefinition(and); def.Inputs.Count != 3 {
		t.Fatalf("restored AND has %d inputs", def.Inputs.Count)
	}
	// the third input of the AND gate is unconnected and Low.
	if s, _ := dst.DigitalSlotState(out, ls.InputSlot, 0); s.State != L {
		t.Fatalf("restored output = %v", s.State)
	}
	if s, _ := dst.DigitalSlotState(a, ls.OutputSlot, 0); s.State != H {
		t.Fatalf("restored input state = %v", s.State)
	}
	if dst.SimulationTime() < snap.Time {
		t.Fatalf("simulation time %v before snapshot time %v", dst.SimulationTime(), snap.Time)
	}

	// new ids do not collide with restored ones
	id := add(t, dst, hl.Not)
	for _, c := range snap.Components {
		if c.ID == id || c.NetID == id {
			t.Fatalf("new component reuses id %v", id)
		}
	}
}

func TestSnapshot_unknownDefinition(t *testing.T) {
	src := newEngine(t)
	in := add(t, src, hl.Input)
	custom := add(t, src, &ls.Definition{
		Name:        "custom",
		Inputs:      ls.SlotsInfo{Count: 1},
		Expressions: []string{"!A"},
	})
	probe := add(t, src, hl.Output)
	connect(t, src, in, 0, custom, 0)
	connect(t, src, custom, 0, probe, 0)
	waitStable(t, src)
	snap := src.Snapshot()

	cat := ls.NewCatalog()
	if err := hl.Register(cat); err != nil {
		t.Fatal(err)
	}
	dst := ls.NewEngine(t.Context(), cat)
	defer dst.Dispose()
	if skipped := dst.Restore(t.Context(), snap); skipped != 1 {
		t.Fatalf("%d components skipped, expected 1", skipped)
	}
	waitStable(t, dst)
	if diff := cmp.Diff([]ls.ID{in, probe}, dst.Components()); diff != "" {
		t.Fatalf("components mismatch (-want +got):\n%s", diff)
	}
	for _, id := range []ls.ID{in, probe} {
		st, _ := dst.ComponentState(id)
		for _, c := range append(st.InputConnected, st.OutputConnected...) {
			if c {
				t.Fatalf("%v has a dangling connection", id)
			}
		}
	}
	ni, _ := dst.NetOf(in)
	np, _ := dst.NetOf(probe)
	if ni == np {
		t.Fatal("components joined by a skipped component share a net")
	}
}
