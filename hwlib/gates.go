// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package hwlib provides a library of built-in component definitions for
// logicsim.
//
// Copyright 2018 Denis Bernard <db047h@gmail.com>
//
// This package is licensed under the MIT license. See license text in the LICENSE file.
//
package hwlib

import (
	"time"

	"github.com/db47h/logicsim"
	"github.com/db47h/logicsim/logic"
)

// Component categories.
//
const (
	CategoryIO     = "IO"
	CategoryGates  = "Gates"
	CategoryMemory = "Memory"
	CategoryArith  = "Arithmetic"
	CategoryPlex   = "Plexers"
)

// GateDelay is the propagation delay of built-in gates.
//
const GateDelay = time.Nanosecond

func newGate(name string, fn func(...logic.State) logic.State) *logicsim.Definition {
	return &logicsim.Definition{
		Name:     name,
		Category: CategoryGates,
		Inputs:   logicsim.SlotsInfo{Count: 2, Resizeable: true},
		Outputs:  logicsim.SlotsInfo{Count: 1},
		Delay:    GateDelay,
		Simulate: func(inputs []logicsim.SlotState, now time.Duration, prev logicsim.ComponentState) (logicsim.ComponentState, error) {
			return logicsim.Evaluate(inputs, now, prev, func(in []logic.State) []logic.State {
				return []logic.State{fn(in...)}
			}), nil
		},
	}
}

func negate(fn func(...logic.State) logic.State) func(...logic.State) logic.State {
	return func(in ...logic.State) logic.State { return logic.Not(fn(in...)) }
}

// Two inputs gates. The input count can be increased.
//
//	Inputs: in0, in1, ...
//	Outputs: out0
//
var (
	And  = newGate("AND", logic.And)
	Nand = newGate("NAND", negate(logic.And))
	Or   = newGate("OR", logic.Or)
	Nor  = newGate("NOR", negate(logic.Or))
	Xor  = newGate("XOR", logic.Xor)
	Xnor = newGate("XNOR", negate(logic.Xor))
)

func newBank(name string, fn func(logic.State) logic.State) *logicsim.Definition {
	return &logicsim.Definition{
		Name:     name,
		Category: CategoryGates,
		Inputs:   logicsim.SlotsInfo{Count: 1, Resizeable: true},
		Outputs:  logicsim.SlotsInfo{Count: 1, Resizeable: true},
		Growth:   logicsim.Equal,
		Delay:    GateDelay,
		Simulate: func(inputs []logicsim.SlotState, now time.Duration, prev logicsim.ComponentState) (logicsim.ComponentState, error) {
			return logicsim.Evaluate(inputs, now, prev, func(in []logic.State) []logic.State {
				out := make([]logic.State, len(in))
				for i := range in {
					out[i] = fn(in[i])
				}
				return out
			}), nil
		},
	}
}

// Not is a bank of inverters. Input and output counts grow together.
//
//	Inputs: in0, ...
//	Outputs: out0, ...
//	Function: out[i] = !in[i]
//
var Not = newBank("NOT", logic.Not)

// Buffer is a bank of buffers. HighZ and Unknown inputs yield Unknown.
//
//	Inputs: in0, ...
//	Outputs: out0, ...
//	Function: out[i] = in[i]
//
var Buffer = newBank("BUFFER", func(s logic.State) logic.State {
	if s.IsDefined() {
		return s
	}
	return logic.Unknown
})

// TriState is a tri-state buffer.
//
//	Inputs: in, en
//	Outputs: out
//	Function: out = in if en is high, HighZ if en is low, Unknown otherwise.
//
var TriState = &logicsim.Definition{
	Name:     "TRISTATE",
	Category: CategoryGates,
	Inputs:   logicsim.SlotsInfo{Count: 2, Names: []string{"in", "en"}},
	Outputs:  logicsim.SlotsInfo{Count: 1, Names: []string{"out"}},
	Delay:    GateDelay,
	Simulate: func(inputs []logicsim.SlotState, now time.Duration, prev logicsim.ComponentState) (logicsim.ComponentState, error) {
		return logicsim.Evaluate(inputs, now, prev, func(in []logic.State) []logic.State {
			switch in[1] {
			case logic.High:
				if in[0].IsDefined() {
					return []logic.State{in[0]}
				}
				return []logic.State{logic.Unknown}
			case logic.Low:
				return []logic.State{logic.HighZ}
			}
			return []logic.State{logic.Unknown}
		}), nil
	},
}
