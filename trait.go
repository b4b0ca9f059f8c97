// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package logicsim

import (
	"encoding/binary"
	"hash"
	"time"

	"github.com/db47h/logicsim/logic"
)

// FrequencyUnit scales a clock frequency to Hertz.
//
type FrequencyUnit float64

// Frequency units.
//
const (
	Hz  FrequencyUnit = 1
	KHz FrequencyUnit = 1e3
	MHz FrequencyUnit = 1e6
	GHz FrequencyUnit = 1e9
)

// ClockTrait is the trait of free running clocks. The clock output stays high
// for Period()*DutyCycle and low for the remainder of the period.
//
type ClockTrait struct {
	Frequency float64
	Unit      FrequencyUnit
	DutyCycle float64
	// Current phase, updated on every output change.
	High bool
}

// CloneTrait implements Trait.
//
func (c *ClockTrait) CloneTrait() Trait {
	cc := *c
	return &cc
}

// Period returns the clock period. It is at least one nanosecond.
//
func (c *ClockTrait) Period() time.Duration {
	unit := c.Unit
	if unit == 0 {
		unit = Hz
	}
	f := c.Frequency * float64(unit)
	if f <= 0 {
		return time.Nanosecond
	}
	p := time.Duration(float64(time.Second) / f)
	if p < time.Nanosecond {
		p = time.Nanosecond
	}
	return p
}

// RescheduleTime implements Rescheduler.
//
func (c *ClockTrait) RescheduleTime(now time.Duration) time.Duration {
	p := float64(c.Period())
	var phase time.Duration
	if c.High {
		phase = time.Duration(p * c.DutyCycle)
	} else {
		phase = time.Duration(p * (1 - c.DutyCycle))
	}
	if phase < time.Nanosecond {
		phase = time.Nanosecond
	}
	return now + phase
}

// OnStateChange implements StateObserver.
//
func (c *ClockTrait) OnStateChange(_, new *ComponentState) {
	if len(new.OutputStates) > 0 {
		c.High = new.OutputStates[0].State == logic.High
	}
}

// ContentAddress implements ContentAddresser. The current phase is not part of
// the content.
//
func (c *ClockTrait) ContentAddress(h hash.Hash) error {
	return binary.Write(h, binary.BigEndian, [3]float64{c.Frequency, float64(c.Unit), c.DutyCycle})
}
