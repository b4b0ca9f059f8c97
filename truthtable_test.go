package logicsim_test

import (
	"context"
	"strings"
	"testing"

	ls "github.com/db47h/logicsim"
	hl "github.com/db47h/logicsim/hwlib"
	"github.com/db47h/logicsim/logic"
	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
)

func andCircuit(t *testing.T, e *ls.Engine) (a, b, out ls.ID) {
	t.Helper()
	n := ls.NewNetlist(e)
	for _, c := range []struct {
		name string
		def  *ls.Definition
	}{
		{"a", hl.Input}, {"b", hl.Input}, {"and", hl.And}, {"out", hl.Output},
	} {
		if _, err := n.Add(c.name, c.def); err != nil {
			t.Fatal(err)
		}
	}
	if err := n.Wire("a.out[0] -> and.in[0]", "b.out[0] -> and.in[1]", "and.out[0] -> out.in[0]"); err != nil {
		t.Fatal(err)
	}
	a, _ = n.ID("a")
	b, _ = n.ID("b")
	out, _ = n.ID("out")
	return a, b, out
}

func TestTruthTableOfNet(t *testing.T) {
	e := newEngine(t)
	a, b, out := andCircuit(t, e)
	if err := e.SetOutputSlotState(b, 0, H); err != nil {
		t.Fatal(err)
	}
	waitStable(t, e)
	net, _ := e.NetOf(a)

	ctx, cancel := context.WithTimeout(t.Context(), timeout)
	defer cancel()
	tt, err := e.TruthTableOfNet(ctx, net)
	if err != nil {
		t.Fatal(err)
	}
	want := []ls.TruthTableRow{
		{Inputs: []logic.State{L, L}, Outputs: []logic.State{L}},
		{Inputs: []logic.State{L, H}, Outputs: []logic.State{L}},
		{Inputs: []logic.State{H, L}, Outputs: []logic.State{L}},
		{Inputs: []logic.State{H, H}, Outputs: []logic.State{H}},
	}
	if diff := cmp.Diff(want, tt.Rows); diff != "" {
		t.Fatalf("rows mismatch (-want +got):\n%s", diff)
	}
	wantLabels := []string{"Input" + a.String() + ".out0", "Input" + b.String() + ".out0"}
	if diff := cmp.Diff(wantLabels, tt.Inputs); diff != "" {
		t.Fatalf("input labels mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Output" + out.String() + ".in0"}, tt.Outputs); diff != "" {
		t.Fatalf("output labels mismatch (-want +got):\n%s", diff)
	}
	if s := tt.String(); strings.Count(s, "\n") != 4 {
		t.Fatalf("unexpected table layout:\n%s", s)
	}

	// inputs are restored
	waitStable(t, e)
	if s, _ := e.DigitalSlotState(b, ls.OutputSlot, 0); s.State != H {
		t.Fatalf("input b not restored: %v", s.State)
	}
	if s, _ := e.DigitalSlotState(a, ls.OutputSlot, 0); s.State != L {
		t.Fatalf("input a not restored: %v", s.State)
	}
}

func TestTruthTableOfNet_errors(t *testing.T) {
	e := newEngine(t)
	a, _, _ := andCircuit(t, e)
	lone := add(t, e, hl.Input)
	waitStable(t, e)
	net, _ := e.NetOf(a)
	loneNet, _ := e.NetOf(lone)

	ctx := t.Context()
	if _, err := e.TruthTableOfNet(ctx, 9999); !errors.Is(err, ls.ErrNetNotFound) {
		t.Fatalf("missing net returned %v", err)
	}
	if _, err := e.TruthTableOfNet(ctx, loneNet); !errors.Is(err, ls.ErrNoTruthTable) {
		t.Fatalf("net without outputs returned %v", err)
	}
	e.SetSimulationState(ls.Paused)
	if _, err := e.TruthTableOfNet(ctx, net); !errors.Is(err, ls.ErrSimulationPaused) {
		t.Fatalf("paused engine returned %v", err)
	}
	e.SetSimulationState(ls.Running)

	// 17 inputs
	if err := e.IncrementInputCount(lone); err == nil {
		t.Fatal("Input accepted an input slot")
	}
	for i := 0; i < ls.MaxTruthTableInputs; i++ {
		if err := e.IncrementOutputCount(lone); err != nil {
			t.Fatal(err)
		}
	}
	probe := add(t, e, hl.Output)
	connect(t, e, lone, 0, probe, 0)
	loneNet, _ = e.NetOf(lone)
	if _, err := e.TruthTableOfNet(ctx, loneNet); !errors.Is(err, ls.ErrTooManyInputs) {
		t.Fatalf("17 inputs returned %v", err)
	}
}
