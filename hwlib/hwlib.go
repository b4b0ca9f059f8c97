// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwlib

import (
	"github.com/db47h/logicsim"
	"github.com/pkg/errors"
)

// All returns all the built-in definitions.
//
func All() []*logicsim.Definition {
	return []*logicsim.Definition{
		Input, Output, High, Low, Clock,
		Not, Buffer, TriState, And, Nand, Or, Nor, Xor, Xnor, Inverter,
		DFF,
		HalfAdder, FullAdder, Parity,
		Mux, DMux,
	}
}

// Register registers all the built-in definitions in cat.
//
func Register(cat *logicsim.Catalog) error {
	for _, d := range All() {
		if _, err := cat.Register(d); err != nil {
			return errors.Wrap(err, "hwlib")
		}
	}
	return nil
}
