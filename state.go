// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package logicsim

import (
	"time"

	"github.com/db47h/logicsim/logic"
)

// SlotType tells input slots from output slots.
//
type SlotType uint8

// Slot types.
//
const (
	InputSlot SlotType = iota
	OutputSlot
)

func (t SlotType) String() string {
	if t == InputSlot {
		return "in"
	}
	return "out"
}

// SlotState is the state of a slot together with the simulation time of its
// last change.
//
type SlotState struct {
	State      logic.State
	LastChange time.Duration
}

// SlotRef designates a slot of a peer component.
//
type SlotRef struct {
	Component ID
	Slot      int
}

// Connections holds, for each slot of a component, the list of peer slots it
// is connected to.
//
type Connections [][]SlotRef

func (c Connections) clone() Connections {
	if c == nil {
		return nil
	}
	r := make(Connections, len(c))
	for i, cs := range c {
		if len(cs) > 0 {
			r[i] = append([]SlotRef(nil), cs...)
		} else {
			r[i] = []SlotRef{}
		}
	}
	return r
}

// remove removes ref from slot i and reports whether it was found.
//
func (c Connections) remove(i int, ref SlotRef) bool {
	cs := c[i]
	for j := range cs {
		if cs[j] == ref {
			c[i] = append(cs[:j:j], cs[j+1:]...)
			return true
		}
	}
	return false
}

func (c Connections) contains(i int, ref SlotRef) bool {
	for _, r := range c[i] {
		if r == ref {
			return true
		}
	}
	return false
}

// Wire is a single connection between an output slot and an input slot.
//
type Wire struct {
	Output SlotRef
	Input  SlotRef
}

// ComponentState is the live state of a component.
//
// IsChanged is set by simulation functions when the outputs have changed and
// peers need to be re-evaluated. SimError and ErrorMessage are sticky: once a
// simulation function has faulted, they remain set until cleared with
// Engine.ClearSimError.
//
type ComponentState struct {
	InputStates     []SlotState
	OutputStates    []SlotState
	InputConnected  []bool
	OutputConnected []bool
	IsChanged       bool
	SimError        bool
	ErrorMessage    string
}

func newComponentState(inputs, outputs int) ComponentState {
	return ComponentState{
		InputStates:     make([]SlotState, inputs),
		OutputStates:    make([]SlotState, outputs),
		InputConnected:  make([]bool, inputs),
		OutputConnected: make([]bool, outputs),
	}
}

// Clone returns a deep copy of s.
//
func (s ComponentState) Clone() ComponentState {
	s.InputStates = append([]SlotState(nil), s.InputStates...)
	s.OutputStates = append([]SlotState(nil), s.OutputStates...)
	s.InputConnected = append([]bool(nil), s.InputConnected...)
	s.OutputConnected = append([]bool(nil), s.OutputConnected...)
	return s
}

// Inputs returns the logic levels of the input slots.
//
func (s *ComponentState) Inputs() []logic.State { return levels(s.InputStates) }

// Outputs returns the logic levels of the output slots.
//
func (s *ComponentState) Outputs() []logic.State { return levels(s.OutputStates) }

func levels(ss []SlotState) []logic.State {
	r := make([]logic.State, len(ss))
	for i := range ss {
		r[i] = ss[i].State
	}
	return r
}

// AggregateDrivers computes the effective value of an input slot from the
// output states of all its drivers:
//
//	- HighZ drivers are ignored.
//	- if any driver is High, the result is High, timestamped with the latest
//	  change among High drivers.
//	- else if any driver is Unknown, the result is Unknown.
//	- else the result is Low.
//
// An empty driver set yields Low at time 0.
//
func AggregateDrivers(drivers []SlotState) SlotState {
	var (
		high, unknown bool
		hiT, lastT    time.Duration
	)
	driven := false
	for _, d := range drivers {
		switch d.State {
		case logic.HighZ:
			continue
		case logic.High:
			if !high || d.LastChange > hiT {
				hiT = d.LastChange
			}
			high = true
		case logic.Unknown:
			unknown = true
		}
		if !driven || d.LastChange > lastT {
			lastT = d.LastChange
		}
		driven = true
	}
	switch {
	case high:
		return SlotState{logic.High, hiT}
	case unknown:
		return SlotState{logic.Unknown, lastT}
	case driven:
		return SlotState{logic.Low, lastT}
	}
	return SlotState{}
}
