package logicsim_test

import (
	"context"
	"fmt"
	"time"

	ls "github.com/db47h/logicsim"
	hl "github.com/db47h/logicsim/hwlib"
	"github.com/db47h/logicsim/logic"
)

// mux4 is a custom 4 bits mux.
//
var mux4 = &ls.Definition{
	Name: "MUX4",
	Inputs: ls.SlotsInfo{Count: 9, Names: []string{
		"a0", "a1", "a2", "a3", "b0", "b1", "b2", "b3", "sel",
	}},
	Outputs: ls.SlotsInfo{Count: 4},
	Delay:   hl.GateDelay,
	Simulate: func(inputs []ls.SlotState, now time.Duration, prev ls.ComponentState) (ls.ComponentState, error) {
		return ls.Evaluate(inputs, now, prev, func(in []logic.State) []logic.State {
			if in[8] == logic.High {
				return in[4:8]
			}
			return in[:4]
		}), nil
	},
}

func ExampleNetlist() {
	e := ls.NewEngine(context.Background(), ls.NewCatalog())
	defer e.Dispose()

	n := ls.NewNetlist(e)
	a, _ := n.Add("a", hl.Input)
	b, _ := n.Add("b", hl.Input)
	sel, _ := n.Add("sel", hl.Input)
	out, _ := n.Add("out", hl.Output)
	n.Add("mux", mux4)
	for i := 0; i < 3; i++ {
		e.IncrementOutputCount(a)
		e.IncrementOutputCount(b)
		e.IncrementInputCount(out)
	}
	err := n.Wire(
		"a.out[0..3] -> mux.in[0..3]",
		"b.out[0..3] -> mux.in[4..7]",
		"sel.out[0] -> mux.sel",
		"mux.out[0..3] -> out.in[0..3]",
	)
	if err != nil {
		panic(err)
	}

	set := func(id ls.ID, v int64) {
		for i, s := range hl.States(v, 4) {
			e.SetOutputSlotState(id, i, s)
		}
	}
	get := func() int64 {
		e.WaitStable(context.Background())
		s, _ := e.ComponentState(out)
		v, _ := hl.Int64(s.Inputs())
		return v
	}

	set(a, 1)
	set(b, 15)
	fmt.Printf("a=1, b=15, sel=false => out=%d\n", get())
	e.SetOutputSlotState(sel, 0, logic.High)
	fmt.Printf("a=1, b=15, sel=true => out=%d\n", get())

	// Output:
	// a=1, b=15, sel=false => out=1
	// a=1, b=15, sel=true => out=15
}
