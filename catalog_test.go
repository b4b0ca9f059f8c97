package logicsim_test

import (
	"context"
	"sync"
	"testing"
	"time"

	ls "github.com/db47h/logicsim"
	hl "github.com/db47h/logicsim/hwlib"
	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
)

func TestCatalog_Register(t *testing.T) {
	cat := ls.NewCatalog()
	h1, err := cat.Register(hl.And)
	if err != nil {
		t.Fatal(err)
	}
	// same content, different instance
	and2 := &ls.Definition{
		Name:     hl.And.Name,
		Category: hl.And.Category,
		Inputs:   hl.And.Inputs,
		Outputs:  hl.And.Outputs,
		Delay:    hl.And.Delay,
		Simulate: hl.And.Simulate,
	}
	h2, err := cat.Register(and2)
	if err != nil {
		t.Fatal(err)
	}
	if h1 != h2 {
		t.Fatalf("identical definitions registered with different hashes: %v, %v", h1, h2)
	}
	if cat.Len() != 1 {
		t.Fatalf("Len() = %d, expected 1", cat.Len())
	}
	d, _ := cat.Definition(h1)
	if d == hl.And || d.Name != hl.And.Name || d.Hash() != hl.And.Hash() {
		t.Fatal("the catalog does not own a copy of the first registered instance")
	}
	if _, err := cat.Register(hl.Or); err != nil {
		t.Fatal(err)
	}
	if cat.Len() != 2 || !cat.IsRegistered(hl.Or.Hash()) {
		t.Fatal("OR not registered")
	}
}

// TestCatalog_sharedDefinitions registers the same package level definitions
// from several engines at once. Run with -race.
//
func TestCatalog_sharedDefinitions(t *testing.T) {
	var wg sync.WaitGroup
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 20; i++ {
				e := ls.NewEngine(context.Background(), ls.NewCatalog())
				id, err := e.AddComponent(hl.Inverter)
				if err == nil {
					err = e.IncrementInputCount(id)
				}
				e.Dispose()
				if err != nil {
					t.Error(err)
					return
				}
			}
		}()
	}
	wg.Wait()

	if hl.Inverter.Outputs.Count != 0 || hl.Inverter.Inputs.Names != nil || hl.Inverter.Inputs.Count != 1 {
		t.Fatalf("registration modified the definition: %+v %+v", hl.Inverter.Inputs, hl.Inverter.Outputs)
	}
	cat := ls.NewCatalog()
	h, err := cat.Register(hl.Inverter)
	if err != nil {
		t.Fatal(err)
	}
	if h != hl.Inverter.Hash() {
		t.Fatalf("catalog hash %v, definition hash %v", h, hl.Inverter.Hash())
	}
	d, _ := cat.Definition(h)
	if d.Outputs.Count != 1 || d.Inputs.Names[0] != "A" {
		t.Fatalf("catalog copy not compiled: %+v %+v", d.Inputs, d.Outputs)
	}
}

func TestCatalog_invalid(t *testing.T) {
	td := []struct {
		name string
		def  *ls.Definition
	}{
		{"nil", nil},
		{"no name", &ls.Definition{Expressions: []string{"A"}, Inputs: ls.SlotsInfo{Count: 1}}},
		{"no sim", &ls.Definition{Name: "nosim", Inputs: ls.SlotsInfo{Count: 1}}},
		{"bad expression", &ls.Definition{Name: "bad", Inputs: ls.SlotsInfo{Count: 2}, Expressions: []string{"A &"}}},
		{"missing input", &ls.Definition{Name: "missing", Inputs: ls.SlotsInfo{Count: 1}, Expressions: []string{"A & B"}}},
		{"negative", &ls.Definition{Name: "neg", Inputs: ls.SlotsInfo{Count: -1}, Simulate: hl.And.Simulate}},
	}
	cat := ls.NewCatalog()
	for _, d := range td {
		t.Run(d.name, func(t *testing.T) {
			if _, err := cat.Register(d.def); err == nil {
				t.Fatal("invalid definition accepted")
			}
		})
	}
	if cat.Len() != 0 {
		t.Fatalf("Len() = %d after failed registrations", cat.Len())
	}
}

func TestCatalog_Tree(t *testing.T) {
	cat := ls.NewCatalog()
	if err := hl.Register(cat); err != nil {
		t.Fatal(err)
	}
	if cat.Len() != len(hl.All()) {
		t.Fatalf("Len() = %d, expected %d", cat.Len(), len(hl.All()))
	}
	want := []string{hl.CategoryArith, hl.CategoryGates, hl.CategoryIO, hl.CategoryMemory, hl.CategoryPlex}
	if diff := cmp.Diff(want, cat.Categories()); diff != "" {
		t.Fatalf("categories mismatch (-want +got):\n%s", diff)
	}
	tree := cat.Tree()
	var n int
	for c, defs := range tree {
		n += len(defs)
		for i, d := range defs {
			if d.Category != c {
				t.Errorf("%s listed in category %q", d.Name, c)
			}
			if i > 0 && defs[i-1].Name > d.Name {
				t.Errorf("category %q not sorted: %s before %s", c, defs[i-1].Name, d.Name)
			}
		}
	}
	if n != cat.Len() {
		t.Fatalf("tree has %d definitions, catalog %d", n, cat.Len())
	}
}

func TestDefinition_Hash(t *testing.T) {
	mk := func(delay time.Duration, exprs ...string) *ls.Definition {
		return &ls.Definition{Name: "h", Inputs: ls.SlotsInfo{Count: 2}, Delay: delay, Expressions: exprs}
	}
	a, b, c := mk(0, "A&B"), mk(0, "A&B"), mk(time.Nanosecond, "A&B")
	d := mk(0, "A|B")
	if a.Hash() != b.Hash() {
		t.Fatal("same content, different hash")
	}
	if a.Hash() == c.Hash() || a.Hash() == d.Hash() {
		t.Fatal("different content, same hash")
	}
	clk1, clk2 := hl.NewClock(1, ls.KHz, 0.5), hl.NewClock(2, ls.KHz, 0.5)
	if clk1.Hash() == clk2.Hash() {
		t.Fatal("trait content not part of the hash")
	}
}

func TestDefinition_Clone(t *testing.T) {
	cat := ls.NewCatalog()
	e := ls.NewEngine(t.Context(), cat)
	defer e.Dispose()
	clk := hl.NewClock(1, ls.KHz, 0.5)
	id, err := e.AddComponent(clk)
	if err != nil {
		t.Fatal(err)
	}
	def, _ := e.ComponentDefinition(id)
	if def == clk || def.Trait == clk.Trait {
		t.Fatal("component shares its definition or trait with the template")
	}
	if def.Hash() != clk.Hash() {
		t.Fatal("clone hash differs from the template")
	}
	def.Outputs.Names[0] = "foo"
	if clk.Outputs.Names[0] != "clk" {
		t.Fatal("clone shares slot names with the template")
	}
}

func TestDefinition_resizePolicy(t *testing.T) {
	e := newEngine(t)
	td := []struct {
		def     *ls.Definition
		t       ls.SlotType
		inc     bool
		dec     bool
		name    string
		outputs int // outputs after the increment
	}{
		{hl.And, ls.InputSlot, true, true, "AND inputs", 1},
		{hl.And, ls.OutputSlot, false, false, "AND outputs", 1},
		{hl.DFF, ls.InputSlot, false, false, "DFF inputs", 2},
		{hl.Parity, ls.InputSlot, true, true, "Parity inputs", 1},
		{hl.Parity, ls.OutputSlot, false, false, "Parity outputs", 1},
		{hl.Inverter, ls.InputSlot, true, true, "Inverter inputs", 2},
		{hl.HalfAdder, ls.InputSlot, false, false, "HalfAdder inputs", 2},
	}
	for _, d := range td {
		t.Run(d.name, func(t *testing.T) {
			id := add(t, e, d.def)
			inc, dec := e.IncrementInputCount, e.DecrementInputCount
			if d.t == ls.OutputSlot {
				inc, dec = e.IncrementOutputCount, e.DecrementOutputCount
			}
			if err := inc(id); (err == nil) != d.inc {
				t.Fatalf("increment: %v", err)
			} else if err != nil && !errors.Is(err, ls.ErrResizeRejected) {
				t.Fatalf("increment: unexpected error %v", err)
			}
			def, _ := e.ComponentDefinition(id)
			if def.Outputs.Count != d.outputs {
				t.Fatalf("%d outputs, expected %d", def.Outputs.Count, d.outputs)
			}
			if st, _ := e.ComponentState(id); len(st.OutputStates) != d.outputs {
				t.Fatalf("%d output states, expected %d", len(st.OutputStates), d.outputs)
			}
			if err := dec(id); (err == nil) != d.dec {
				t.Fatalf("decrement: %v", err)
			}
		})
	}
}

// TestComponent_growthIdempotence checks that N increments followed by N
// decrements restore the original slot counts.
//
func TestComponent_growthIdempotence(t *testing.T) {
	e := newEngine(t)
	for _, n := range []int{1, 3, 10} {
		id := add(t, e, hl.And)
		sibling := add(t, e, hl.And)
		for i := 0; i < n; i++ {
			if err := e.IncrementInputCount(id); err != nil {
				t.Fatal(err)
			}
		}
		def, _ := e.ComponentDefinition(id)
		if def.Inputs.Count != 2+n || len(def.Inputs.Names) != 2+n {
			t.Fatalf("%d inputs after %d increments", def.Inputs.Count, n)
		}
		if sd, _ := e.ComponentDefinition(sibling); sd.Inputs.Count != 2 {
			t.Fatal("resize leaked into a sibling instance")
		}
		if hl.And.Inputs.Count != 2 {
			t.Fatal("resize leaked into the catalog template")
		}
		for i := 0; i < n; i++ {
			if err := e.DecrementInputCount(id); err != nil {
				t.Fatal(err)
			}
		}
		def, _ = e.ComponentDefinition(id)
		st, _ := e.ComponentState(id)
		conns, _ := e.Connections(id, ls.InputSlot)
		if def.Inputs.Count != 2 || def.Outputs.Count != 1 {
			t.Fatalf("slot counts %d/%d after %d increments and decrements", def.Inputs.Count, def.Outputs.Count, n)
		}
		if len(st.InputStates) != 2 || len(st.InputConnected) != 2 || len(conns) != 2 || len(def.Inputs.Names) != 2 {
			t.Fatalf("vector lengths not restored: %d states, %d flags, %d connections, %d names",
				len(st.InputStates), len(st.InputConnected), len(conns), len(def.Inputs.Names))
		}
	}
	waitStable(t, e)
}

func TestComponent_shrinkDropsWires(t *testing.T) {
	e := newEngine(t)
	in := add(t, e, hl.Input)
	and := add(t, e, hl.And)
	if err := e.IncrementInputCount(and); err != nil {
		t.Fatal(err)
	}
	connect(t, e, in, 0, and, 2)
	if err := e.DecrementInputCount(and); err != nil {
		t.Fatal(err)
	}
	if conns, _ := e.Connections(in, ls.OutputSlot); len(conns[0]) != 0 {
		t.Fatalf("wire to a removed slot still present: %v", conns)
	}
	na, _ := e.NetOf(and)
	ni, _ := e.NetOf(in)
	if na == ni {
		t.Fatal("components still share a net")
	}
}
