// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package hwtest provides utility functions for testing component definitions.
//
package hwtest

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/db47h/logicsim"
	"github.com/db47h/logicsim/hwlib"
	"github.com/db47h/logicsim/logic"
	"github.com/google/go-cmp/cmp"
)

// Timeout bounds every wait for stability.
//
var Timeout = 5 * time.Second

// Harness wires a component between Input components, one per input slot, and
// Output components, one per output slot.
//
type Harness struct {
	Engine    *logicsim.Engine
	Component logicsim.ID
	Inputs    []logicsim.ID
	Outputs   []logicsim.ID
}

// NewHarness returns a running harness for def. The engine is disposed of when
// the test ends.
//
func NewHarness(t testing.TB, def *logicsim.Definition) *Harness {
	t.Helper()
	cat := logicsim.NewCatalog()
	if err := hwlib.Register(cat); err != nil {
		t.Fatal(err)
	}
	e := logicsim.NewEngine(context.Background(), cat)
	t.Cleanup(e.Dispose)
	h := &Harness{Engine: e}
	var err error
	if h.Component, err = e.AddComponent(def); err != nil {
		t.Fatal(err)
	}
	d, _ := e.ComponentDefinition(h.Component)
	h.Inputs = h.drive(t, d.Inputs.Count)
	h.Outputs = h.probe(t, h.Component, d.Outputs.Count)
	return h
}

func (h *Harness) drive(t testing.TB, n int) []logicsim.ID {
	t.Helper()
	ids := make([]logicsim.ID, n)
	for i := range ids {
		id, err := h.Engine.AddComponent(hwlib.Input)
		if err != nil {
			t.Fatal(err)
		}
		if err = h.Engine.ConnectComponent(id, 0, logicsim.OutputSlot, h.Component, i, logicsim.InputSlot, false); err != nil {
			t.Fatal(err)
		}
		ids[i] = id
	}
	return ids
}

func (h *Harness) probe(t testing.TB, c logicsim.ID, n int) []logicsim.ID {
	t.Helper()
	ids := make([]logicsim.ID, n)
	for i := range ids {
		id, err := h.Engine.AddComponent(hwlib.Output)
		if err != nil {
			t.Fatal(err)
		}
		if err = h.Engine.ConnectComponent(c, i, logicsim.OutputSlot, id, 0, logicsim.InputSlot, false); err != nil {
			t.Fatal(err)
		}
		ids[i] = id
	}
	return ids
}

// Set drives the inputs and waits for the outputs to settle.
//
func (h *Harness) Set(t testing.TB, in ...logic.State) {
	t.Helper()
	if len(in) != len(h.Inputs) {
		t.Fatalf("got %d input values, want %d", len(in), len(h.Inputs))
	}
	for i, id := range h.Inputs {
		if err := h.Engine.SetOutputSlotState(id, 0, in[i]); err != nil {
			t.Fatal(err)
		}
	}
	WaitStable(t, h.Engine)
}

// Outputs returns the settled outputs of the component.
//
func (h *Harness) Outputs(t testing.TB) []logic.State {
	t.Helper()
	out := make([]logic.State, len(h.Outputs))
	for i, id := range h.Outputs {
		s, ok := h.Engine.DigitalSlotState(id, logicsim.InputSlot, 0)
		if !ok {
			t.Fatalf("output %d: component %v not found", i, id)
		}
		out[i] = s.State
	}
	return out
}

// TruthTable returns the truth table of the harnessed component.
//
func (h *Harness) TruthTable(t testing.TB) logicsim.TruthTable {
	t.Helper()
	WaitStable(t, h.Engine)
	net, _ := h.Engine.NetOf(h.Component)
	ctx, cancel := context.WithTimeout(context.Background(), Timeout)
	defer cancel()
	tt, err := h.Engine.TruthTableOfNet(ctx, net)
	if err != nil {
		t.Fatal(err)
	}
	return tt
}

// WaitStable waits for e to become stable and fails the test after Timeout.
//
func WaitStable(t testing.TB, e *logicsim.Engine) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), Timeout)
	defer cancel()
	if err := e.WaitStable(ctx); err != nil {
		t.Fatal(err)
	}
}

// CompareDefinitions takes two definitions and compares their outputs given
// the same inputs. Both definitions must have the same slot counts. Both
// components are driven by the same Input components and every input
// combination is tested.
//
func CompareDefinitions(t testing.TB, def1, def2 *logicsim.Definition) {
	t.Helper()
	h := NewHarness(t, def1)
	d1, _ := h.Engine.ComponentDefinition(h.Component)
	c2, err := h.Engine.AddComponent(def2)
	if err != nil {
		t.Fatal(err)
	}
	d2, _ := h.Engine.ComponentDefinition(c2)
	if d1.Inputs.Count != d2.Inputs.Count || d1.Outputs.Count != d2.Outputs.Count {
		t.Fatalf("%s has %d inputs and %d outputs, %s has %d inputs and %d outputs",
			d1.Name, d1.Inputs.Count, d1.Outputs.Count, d2.Name, d2.Inputs.Count, d2.Outputs.Count)
	}
	for i, id := range h.Inputs {
		if err = h.Engine.ConnectComponent(id, 0, logicsim.OutputSlot, c2, i, logicsim.InputSlot, false); err != nil {
			t.Fatal(err)
		}
	}
	outs2 := h.probe(t, c2, d2.Outputs.Count)

	tt := h.TruthTable(t)
	n := d1.Outputs.Count
	if len(outs2) != n || len(tt.Outputs) != 2*n {
		t.Fatalf("got %d truth table outputs, want %d", len(tt.Outputs), 2*n)
	}
	for _, r := range tt.Rows {
		if diff := cmp.Diff(r.Outputs[:n], r.Outputs[n:]); diff != "" {
			t.Errorf("%s and %s differ for inputs %s (-%s +%s):\n%s",
				d1.Name, d2.Name, rowString(r.Inputs), d1.Name, d2.Name, diff)
		}
	}
	t.Logf("%s and %s: %d combinations compared", d1.Name, d2.Name, len(tt.Rows))
}

func rowString(in []logic.State) string {
	var b strings.Builder
	for i, s := range in {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "in%d=%v", i, s)
	}
	return b.String()
}
