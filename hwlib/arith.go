// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwlib

import "github.com/db47h/logicsim"

// HalfAdder returns the sum and carry of two bits.
//
//	Inputs: A, B
//	Outputs: S, C
//	Function: S = lsb(A + B)
//	          C = msb(A + B)
//
var HalfAdder = &logicsim.Definition{
	Name:        "HalfAdder",
	Category:    CategoryArith,
	Inputs:      logicsim.SlotsInfo{Count: 2},
	Outputs:     logicsim.SlotsInfo{Names: []string{"S", "C"}},
	Delay:       GateDelay,
	Expressions: []string{"A ^ B", "A & B"},
}

// FullAdder is a 3 bits adder.
//
//	Inputs: A, B, Cin
//	Outputs: S, Cout
//	Function: S = lsb(A + B + Cin)
//	          Cout = msb(A + B + Cin)
//
var FullAdder = &logicsim.Definition{
	Name:        "FullAdder",
	Category:    CategoryArith,
	Inputs:      logicsim.SlotsInfo{Count: 3, Names: []string{"A", "B", "Cin"}},
	Outputs:     logicsim.SlotsInfo{Names: []string{"S", "Cout"}},
	Delay:       GateDelay,
	Expressions: []string{"A ^ B ^ Cin", "A & B | Cin & (A ^ B)"},
}

// Parity computes the parity of its inputs. The input count can be increased.
//
//	Inputs: A, B, ...
//	Outputs: P
//	Function: P = A ^ B ^ ...
//
var Parity = &logicsim.Definition{
	Name:        "Parity",
	Category:    CategoryArith,
	Inputs:      logicsim.SlotsInfo{Count: 2, Resizeable: true},
	Outputs:     logicsim.SlotsInfo{Names: []string{"P"}},
	Delay:       GateDelay,
	Expressions: []string{"^*"},
}
