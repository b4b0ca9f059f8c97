// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwlib

import (
	"time"

	"github.com/db47h/logicsim"
	"github.com/db47h/logicsim/logic"
)

// DFF is a data flip flop triggered on the raising edge of clk.
//
//	Inputs: d, clk
//	Outputs: q, nq
//	Function: on raising edge of clk: q = d, nq = !d
//
var DFF = &logicsim.Definition{
	Name:     "DFF",
	Category: CategoryMemory,
	Inputs:   logicsim.SlotsInfo{Count: 2, Names: []string{"d", "clk"}},
	Outputs:  logicsim.SlotsInfo{Count: 2, Names: []string{"q", "nq"}},
	Delay:    GateDelay,
	Simulate: func(inputs []logicsim.SlotState, now time.Duration, prev logicsim.ComponentState) (logicsim.ComponentState, error) {
		// raising edge?
		edge := prev.InputStates[1].State == logic.Low && inputs[1].State == logic.High
		return logicsim.Evaluate(inputs, now, prev, func(in []logic.State) []logic.State {
			if !edge {
				return prev.Outputs()
			}
			d := in[0]
			if !d.IsDefined() {
				d = logic.Unknown
			}
			return []logic.State{d, logic.Not(d)}
		}), nil
	},
}
