// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwlib

import (
	"time"

	"github.com/db47h/logicsim"
	"github.com/db47h/logicsim/logic"
)

// NewClock returns the definition of a free running clock. Its output toggles
// every time it is evaluated; the engine evaluates it again after the high or
// low phase of the period. Clocks with different parameters have different
// hashes.
//
//	Outputs: clk
//
func NewClock(frequency float64, unit logicsim.FrequencyUnit, dutyCycle float64) *logicsim.Definition {
	return &logicsim.Definition{
		Name:     "Clock",
		Category: CategoryIO,
		Outputs:  logicsim.SlotsInfo{Count: 1, Names: []string{"clk"}},
		Trait:    &logicsim.ClockTrait{Frequency: frequency, Unit: unit, DutyCycle: dutyCycle},
		Simulate: func(inputs []logicsim.SlotState, now time.Duration, prev logicsim.ComponentState) (logicsim.ComponentState, error) {
			return logicsim.Evaluate(inputs, now, prev, func([]logic.State) []logic.State {
				return []logic.State{logic.FromBool(prev.OutputStates[0].State != logic.High)}
			}), nil
		},
	}
}

// Clock is a 1 kHz clock with a 50% duty cycle.
//
var Clock = NewClock(1, logicsim.KHz, 0.5)
