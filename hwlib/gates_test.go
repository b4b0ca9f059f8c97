package hwlib_test

import (
	"testing"
	"testing/quick"

	"github.com/db47h/logicsim"
	hl "github.com/db47h/logicsim/hwlib"
	"github.com/db47h/logicsim/hwtest"
	"github.com/db47h/logicsim/logic"
)

// testGate drives all input combinations of gate, the first input being the
// msb of the combination number, and checks the outputs against result.
//
func testGate(t *testing.T, gate *logicsim.Definition, result [][]logic.State) {
	t.Helper()
	h := hwtest.NewHarness(t, gate)
	inputs := make([]logic.State, len(h.Inputs))
	tot := 1 << uint(len(inputs))
	for i := 0; i < tot; i++ {
		for bit := range inputs {
			inputs[len(inputs)-bit-1] = logic.FromBool(i&(1<<uint(bit)) != 0)
		}
		h.Set(t, inputs...)
		for o, out := range h.Outputs(t) {
			if exp := result[o][i]; exp != out {
				t.Errorf("%s %v = %v, got %v", gate.Name, inputs, exp, out)
			}
		}
	}
}

const (
	L = logic.Low
	H = logic.High
	X = logic.Unknown
	Z = logic.HighZ
)

func Test_gate_builtin(t *testing.T) {
	td := []struct {
		name   string
		gate   *logicsim.Definition
		result [][]logic.State // a=0 && b=0, a=0 && b=1, a=1 && b=0, a=1 && b=1
	}{
		{"NOT", hl.Not, [][]logic.State{{H, L}}},
		{"BUFFER", hl.Buffer, [][]logic.State{{L, H}}},
		{"AND", hl.And, [][]logic.State{{L, L, L, H}}},
		{"NAND", hl.Nand, [][]logic.State{{H, H, H, L}}},
		{"OR", hl.Or, [][]logic.State{{L, H, H, H}}},
		{"NOR", hl.Nor, [][]logic.State{{H, L, L, L}}},
		{"XOR", hl.Xor, [][]logic.State{{L, H, H, L}}},
		{"XNOR", hl.Xnor, [][]logic.State{{H, L, L, H}}},
		{"TRISTATE", hl.TriState, [][]logic.State{{Z, L, Z, H}}},
		{"MUX", hl.Mux, [][]logic.State{{L, L, L, H, H, L, H, H}}},
		{"DMUX", hl.DMux, [][]logic.State{{L, L, H, L}, {L, L, L, H}}},
		{"HalfAdder", hl.HalfAdder, [][]logic.State{{L, H, H, L}, {L, L, L, H}}},
		{"Inverter", hl.Inverter, [][]logic.State{{H, L}}},
		{"Parity", hl.Parity, [][]logic.State{{L, H, H, L}}},
	}
	for _, d := range td {
		t.Run(d.name, func(t *testing.T) {
			testGate(t, d.gate, d.result)
		})
	}
}

func Test_gate_unknown(t *testing.T) {
	td := []struct {
		gate *logicsim.Definition
		in   []logic.State
		out  logic.State
	}{
		{hl.And, []logic.State{L, X}, L},
		{hl.And, []logic.State{H, X}, X},
		{hl.Or, []logic.State{H, X}, H},
		{hl.Or, []logic.State{L, X}, X},
		{hl.Xor, []logic.State{H, X}, X},
		{hl.TriState, []logic.State{H, X}, X},
		{hl.Buffer, []logic.State{X}, X},
	}
	for _, d := range td {
		h := hwtest.NewHarness(t, d.gate)
		h.Set(t, d.in...)
		if out := h.Outputs(t)[0]; out != d.out {
			t.Errorf("%s %v = %v, got %v", d.gate.Name, d.in, d.out, out)
		}
	}
}

func TestAndNWays(t *testing.T) {
	h := hwtest.NewHarness(t, hl.And)
	for i := 0; i < 2; i++ {
		if err := h.Engine.IncrementInputCount(h.Component); err != nil {
			t.Fatal(err)
		}
	}
	def, _ := h.Engine.ComponentDefinition(h.Component)
	if def.Inputs.Count != 4 {
		t.Fatalf("expected 4 inputs, got %d", def.Inputs.Count)
	}
	h.Inputs = append(h.Inputs, wireInput(t, h, 2), wireInput(t, h, 3))

	f := func(a, b, c, d bool) bool {
		h.Set(t, logic.FromBool(a), logic.FromBool(b), logic.FromBool(c), logic.FromBool(d))
		return h.Outputs(t)[0] == logic.FromBool(a && b && c && d)
	}
	if err := quick.Check(f, &quick.Config{MaxCount: 32}); err != nil {
		t.Fatal(err)
	}
}

func wireInput(t *testing.T, h *hwtest.Harness, slot int) logicsim.ID {
	t.Helper()
	id, err := h.Engine.AddComponent(hl.Input)
	if err != nil {
		t.Fatal(err)
	}
	if err = h.Engine.ConnectComponent(id, 0, logicsim.OutputSlot, h.Component, slot, logicsim.InputSlot, false); err != nil {
		t.Fatal(err)
	}
	return id
}

func TestNotBank(t *testing.T) {
	h := hwtest.NewHarness(t, hl.Not)
	if err := h.Engine.IncrementOutputCount(h.Component); err != nil {
		t.Fatal(err)
	}
	def, _ := h.Engine.ComponentDefinition(h.Component)
	if def.Inputs.Count != 2 || def.Outputs.Count != 2 {
		t.Fatalf("expected 2 inputs and 2 outputs, got %d and %d", def.Inputs.Count, def.Outputs.Count)
	}
	if err := h.Engine.DecrementInputCount(h.Component); err != nil {
		t.Fatal(err)
	}
	def, _ = h.Engine.ComponentDefinition(h.Component)
	if def.Inputs.Count != 1 || def.Outputs.Count != 1 {
		t.Fatalf("expected 1 input and 1 output, got %d and %d", def.Inputs.Count, def.Outputs.Count)
	}
	if err := h.Engine.DecrementInputCount(h.Component); err == nil {
		t.Fatal("decrement below 1 accepted")
	}
}

func TestTriStateBus(t *testing.T) {
	// two tri-state buffers driving the same probe.
	cat := logicsim.NewCatalog()
	e := logicsim.NewEngine(t.Context(), cat)
	defer e.Dispose()
	n := logicsim.NewNetlist(e)
	for _, c := range []struct {
		name string
		def  *logicsim.Definition
	}{
		{"a", hl.Input}, {"ea", hl.Input}, {"b", hl.Input}, {"eb", hl.Input},
		{"ta", hl.TriState}, {"tb", hl.TriState}, {"probe", hl.Output},
	} {
		if _, err := n.Add(c.name, c.def); err != nil {
			t.Fatal(err)
		}
	}
	err := n.Wire(
		"a.out[0] -> ta.in", "ea.out[0] -> ta.en",
		"b.out[0] -> tb.in", "eb.out[0] -> tb.en",
		"ta.out -> probe.in[0]", "tb.out -> probe.in[0]",
	)
	if err != nil {
		t.Fatal(err)
	}
	set := func(name string, s logic.State) {
		id, _ := n.ID(name)
		if err := e.SetOutputSlotState(id, 0, s); err != nil {
			t.Fatal(err)
		}
	}
	probe, _ := n.ID("probe")
	td := []struct {
		a, ea, b, eb logic.State
		out          logic.State
	}{
		{H, H, L, L, H},
		{L, H, H, L, L},
		{L, L, H, H, H},
		{L, L, L, L, L}, // all Z
		{L, H, H, H, H}, // wired-OR
	}
	for _, d := range td {
		set("a", d.a)
		set("ea", d.ea)
		set("b", d.b)
		set("eb", d.eb)
		hwtest.WaitStable(t, e)
		s, _ := e.DigitalSlotState(probe, logicsim.InputSlot, 0)
		if s.State != d.out {
			t.Errorf("a=%v ea=%v b=%v eb=%v: expected %v, got %v", d.a, d.ea, d.b, d.eb, d.out, s.State)
		}
	}
}
