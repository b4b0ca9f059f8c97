// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package logicsim

// Component is an instance of a definition in a circuit. It owns a clone of
// its definition which can be resized independently of the catalog template.
//
// The slot counts of Definition, the length of State.*States,
// State.*Connected and *Connections always match.
//
type Component struct {
	ID                ID
	NetID             ID
	Definition        *Definition
	State             ComponentState
	InputConnections  Connections
	OutputConnections Connections
}

// NewComponent creates a new component from a clone of def.
//
func NewComponent(id ID, def *Definition) *Component {
	d := def.Clone()
	c := &Component{
		ID:                id,
		Definition:        d,
		State:             newComponentState(d.Inputs.Count, d.Outputs.Count),
		InputConnections:  make(Connections, d.Inputs.Count),
		OutputConnections: make(Connections, d.Outputs.Count),
	}
	for i := range c.InputConnections {
		c.InputConnections[i] = []SlotRef{}
	}
	for i := range c.OutputConnections {
		c.OutputConnections[i] = []SlotRef{}
	}
	return c
}

// Resize reports the outcome of a slot count change.
//
type Resize struct {
	Inputs  bool // input count changed
	Outputs bool // output count changed
	// Wires attached to removed slots. The component side has already been
	// removed; the peer side must be fixed by the caller.
	Dropped []Wire
}

// IncrementInputCount adds one input slot.
//
func (c *Component) IncrementInputCount() (Resize, bool) { return c.resize(InputSlot, 1) }

// DecrementInputCount removes the last input slot.
//
func (c *Component) DecrementInputCount() (Resize, bool) { return c.resize(InputSlot, -1) }

// IncrementOutputCount adds one output slot.
//
func (c *Component) IncrementOutputCount() (Resize, bool) { return c.resize(OutputSlot, 1) }

// DecrementOutputCount removes the last output slot.
//
func (c *Component) DecrementOutputCount() (Resize, bool) { return c.resize(OutputSlot, -1) }

// SlotCount returns the number of slots of type t.
//
func (c *Component) SlotCount(t SlotType) int {
	return c.Definition.slots(t).Count
}

// Connections returns the connections of the slots of type t.
//
func (c *Component) Connections(t SlotType) Connections {
	if t == InputSlot {
		return c.InputConnections
	}
	return c.OutputConnections
}

func (c *Component) connected(t SlotType) []bool {
	if t == InputSlot {
		return c.State.InputConnected
	}
	return c.State.OutputConnected
}

// Peers returns the set of components connected to c, in slot order.
//
func (c *Component) Peers() []ID {
	var ids []ID
	seen := map[ID]bool{c.ID: true}
	for _, cs := range [2]Connections{c.InputConnections, c.OutputConnections} {
		for _, refs := range cs {
			for _, ref := range refs {
				if !seen[ref.Component] {
					seen[ref.Component] = true
					ids = append(ids, ref.Component)
				}
			}
		}
	}
	return ids
}

// Wires returns all the wires attached to c.
//
func (c *Component) Wires() []Wire {
	var ws []Wire
	for i, refs := range c.InputConnections {
		for _, ref := range refs {
			ws = append(ws, Wire{Output: ref, Input: SlotRef{c.ID, i}})
		}
	}
	for i, refs := range c.OutputConnections {
		for _, ref := range refs {
			ws = append(ws, Wire{Output: SlotRef{c.ID, i}, Input: ref})
		}
	}
	return ws
}

func opposite(t SlotType) SlotType {
	if t == InputSlot {
		return OutputSlot
	}
	return InputSlot
}

func (c *Component) resize(t SlotType, delta int) (Resize, bool) {
	n := c.SlotCount(t) + delta
	if n < 1 || !c.Definition.OnSlotsResizeReq(t, n) {
		return Resize{}, false
	}
	other := opposite(t)
	otherN := c.SlotCount(other) + delta
	if c.Definition.Growth == Equal && otherN < 0 {
		return Resize{}, false
	}
	var r Resize
	c.setCount(t, n, &r)
	if c.Definition.Growth == Equal {
		c.setCount(other, otherN, &r)
	}
	if t == InputSlot {
		if outs, ok := c.Definition.derivedOutputs(n); ok {
			c.setCount(OutputSlot, outs, &r)
		}
	}
	return r, true
}

func (c *Component) setCount(t SlotType, n int, r *Resize) {
	info := c.Definition.slots(t)
	old := info.Count
	if n == old {
		return
	}
	var (
		states    = &c.State.InputStates
		connected = &c.State.InputConnected
		conns     = &c.InputConnections
		prefix    = "in"
	)
	if t == OutputSlot {
		states, connected, conns, prefix = &c.State.OutputStates, &c.State.OutputConnected, &c.OutputConnections, "out"
		r.Outputs = true
	} else {
		r.Inputs = true
	}
	if n > old {
		for i := old; i < n; i++ {
			names := info.Names[:i:i]
			info.Names = append(names, nextSlotName(names, prefix))
			*states = append(*states, SlotState{})
			*connected = append(*connected, false)
			*conns = append(*conns, []SlotRef{})
		}
	} else {
		for i := n; i < old; i++ {
			for _, ref := range (*conns)[i] {
				w := Wire{Output: ref, Input: SlotRef{c.ID, i}}
				if t == OutputSlot {
					w = Wire{Output: SlotRef{c.ID, i}, Input: ref}
				}
				r.Dropped = append(r.Dropped, w)
			}
		}
		info.Names = info.Names[:n:n]
		*states = (*states)[:n:n]
		*connected = (*connected)[:n:n]
		*conns = (*conns)[:n:n]
	}
	info.Count = n
}
