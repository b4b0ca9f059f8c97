// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwlib

import "github.com/db47h/logicsim"

// Mux is a multiplexer.
//
//	Inputs: a, b, sel
//	Outputs: out
//	Function: if sel == 0 { out = a } else { out = b }
//
var Mux = &logicsim.Definition{
	Name:        "MUX",
	Category:    CategoryPlex,
	Inputs:      logicsim.SlotsInfo{Count: 3, Names: []string{"a", "b", "sel"}},
	Outputs:     logicsim.SlotsInfo{Names: []string{"out"}},
	Delay:       GateDelay,
	Expressions: []string{"!sel & a | sel & b"},
}

// DMux is a demultiplexer.
//
//	Inputs: in, sel
//	Outputs: a, b
//	Function: if sel == 0 { a = in; b = 0 } else { a = 0; b = in }
//
var DMux = &logicsim.Definition{
	Name:        "DMUX",
	Category:    CategoryPlex,
	Inputs:      logicsim.SlotsInfo{Count: 2, Names: []string{"in", "sel"}},
	Outputs:     logicsim.SlotsInfo{Names: []string{"a", "b"}},
	Delay:       GateDelay,
	Expressions: []string{"in & !sel", "in & sel"},
}

// Inverter is an expression based inverter bank: it has one output per input.
//
//	Inputs: A, ...
//	Outputs: out0, ...
//	Function: out[i] = !in[i]
//
var Inverter = &logicsim.Definition{
	Name:        "Inverter",
	Category:    CategoryGates,
	Inputs:      logicsim.SlotsInfo{Count: 1, Resizeable: true},
	Delay:       GateDelay,
	Expressions: []string{"!$"},
}
