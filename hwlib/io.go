// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwlib

import (
	"time"

	"github.com/db47h/logicsim"
	"github.com/db47h/logicsim/logic"
)

// Int64 returns the given states as an int64. states[0] is the lsb. ok is false
// if any of the states is not a defined logic level.
//
func Int64(states []logic.State) (v int64, ok bool) {
	for bit, s := range states {
		if !s.IsDefined() {
			return 0, false
		}
		if s == logic.High {
			v |= 1 << uint(bit)
		}
	}
	return v, true
}

// States returns the bits lower bits of v as logic states, lsb first.
//
func States(v int64, bits int) []logic.State {
	r := make([]logic.State, bits)
	for bit := range r {
		r[bit] = logic.FromBool(v&(1<<uint(bit)) != 0)
	}
	return r
}

// Input is an input pin or bus. Its outputs are driven with
// Engine.SetOutputSlotState and it never changes them by itself.
//
//	Outputs: out0, ...
//
var Input = &logicsim.Definition{
	Name:     "Input",
	Category: CategoryIO,
	Behavior: logicsim.InputBehavior,
	Outputs:  logicsim.SlotsInfo{Count: 1, Resizeable: true},
	Simulate: func(_ []logicsim.SlotState, _ time.Duration, prev logicsim.ComponentState) (logicsim.ComponentState, error) {
		prev.IsChanged = false
		return prev, nil
	},
}

// Output is an output pin, bus or probe. It records its inputs.
//
//	Inputs: in0, ...
//
var Output = &logicsim.Definition{
	Name:     "Output",
	Category: CategoryIO,
	Behavior: logicsim.OutputBehavior,
	Inputs:   logicsim.SlotsInfo{Count: 1, Resizeable: true},
	Simulate: func(inputs []logicsim.SlotState, now time.Duration, prev logicsim.ComponentState) (logicsim.ComponentState, error) {
		return logicsim.Evaluate(inputs, now, prev, func([]logic.State) []logic.State { return nil }), nil
	},
}

// Constants drive a fixed level on their single output.
//
var (
	High = constant("HIGH", logic.High)
	Low  = constant("LOW", logic.Low)
)

func constant(name string, v logic.State) *logicsim.Definition {
	return &logicsim.Definition{
		Name:     name,
		Category: CategoryIO,
		Outputs:  logicsim.SlotsInfo{Count: 1},
		Simulate: func(inputs []logicsim.SlotState, now time.Duration, prev logicsim.ComponentState) (logicsim.ComponentState, error) {
			return logicsim.Evaluate(inputs, now, prev, func([]logic.State) []logic.State {
				return []logic.State{v}
			}), nil
		},
	}
}
