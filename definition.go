// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package logicsim

import (
	"crypto/sha1"
	"encoding/binary"
	"hash"
	"strconv"
	"time"

	"github.com/db47h/logicsim/internal/expr"
	"github.com/db47h/logicsim/logic"
	"github.com/pkg/errors"
)

// BehaviorType tells the engine how a component interacts with the outside
// world. Input and Output components are the terminals of truth tables.
//
type BehaviorType uint8

// Behavior types.
//
const (
	GenericBehavior BehaviorType = iota
	InputBehavior
	OutputBehavior
)

// GrowthPolicy controls how input and output slot counts change together.
//
type GrowthPolicy uint8

// Growth policies. With Equal, any change to the input count is mirrored onto
// the output count and vice versa.
//
const (
	Independent GrowthPolicy = iota
	Equal
)

// SlotsInfo describes a group of slots.
//
type SlotsInfo struct {
	Count      int
	Resizeable bool
	// Slot names. Missing names are generated when the definition is
	// registered.
	Names []string
}

func (s SlotsInfo) clone() SlotsInfo {
	s.Names = append([]string(nil), s.Names...)
	return s
}

// SimFunc is the simulation function of a component. It is given the
// aggregated input states, the current simulation time and the previous state
// of the component, and returns the new state. It must set IsChanged in the
// returned state if outputs changed.
//
// Simulation functions must not have side effects. A returned error or a panic
// marks the component in error; its outputs are left untouched.
//
type SimFunc func(inputs []SlotState, now time.Duration, prev ComponentState) (ComponentState, error)

// DefinitionHash is the content address of a definition.
//
type DefinitionHash uint64

func (h DefinitionHash) String() string {
	return strconv.FormatUint(uint64(h), 16)
}

// A Definition is a component blueprint.
//
// Definitions are registered in a Catalog and must not be modified afterwards.
// Each component owns a Clone of its definition.
//
type Definition struct {
	Name     string
	Category string
	Behavior BehaviorType
	Inputs   SlotsInfo
	Outputs  SlotsInfo
	// Propagation delay.
	Delay  time.Duration
	Growth GrowthPolicy
	// Simulation function. May be nil if Expressions is set.
	Simulate SimFunc
	// Output expressions (see package doc for the syntax). If set, the output
	// count is derived from the expressions and the input count.
	Expressions []string
	// Optional per-kind payload. A trait may implement any of StateObserver,
	// Rescheduler, ResizePolicy or ContentAddresser.
	Trait Trait

	hash  DefinitionHash
	exprs []*expr.Expr
}

// Trait is a per-definition payload. Traits are cloned together with their
// definition.
//
type Trait interface {
	CloneTrait() Trait
}

// StateObserver is implemented by traits that track the state of their
// component.
//
type StateObserver interface {
	OnStateChange(old, new *ComponentState)
}

// Rescheduler is implemented by traits of self-scheduling components. The
// engine schedules such components again at RescheduleTime(now) every time they
// are evaluated.
//
type Rescheduler interface {
	RescheduleTime(now time.Duration) time.Duration
}

// ResizePolicy is implemented by traits that decide on slot resize requests.
//
type ResizePolicy interface {
	OnSlotsResizeReq(t SlotType, newSize int) bool
}

// ContentAddresser is implemented by traits that contribute to the
// definition hash.
//
type ContentAddresser interface {
	ContentAddress(h hash.Hash) error
}

// compile validates d and fills in derived fields.
//
func (d *Definition) compile() error {
	if d.Name == "" {
		return errors.New("definition has no name")
	}
	if d.Inputs.Count < 0 || d.Outputs.Count < 0 {
		return errors.New(d.Name + ": negative slot count")
	}
	if len(d.Expressions) > 0 && d.exprs == nil {
		d.Inputs.Names = slotNames(d.Inputs.Names, d.Inputs.Count, "A")
		for _, src := range d.Expressions {
			e, err := expr.Parse(src, d.Inputs.Names)
			if err != nil {
				return errors.Wrap(err, d.Name)
			}
			if e.MaxInput() >= d.Inputs.Count {
				return errors.Errorf("%s: expression %q uses input %d out of %d", d.Name, src, e.MaxInput(), d.Inputs.Count)
			}
			d.exprs = append(d.exprs, e)
		}
		d.Outputs.Count = expr.Outputs(d.exprs, d.Inputs.Count)
		if d.Simulate == nil {
			d.Simulate = expressionSim(d.exprs)
		}
	}
	if d.Simulate == nil {
		return errors.New(d.Name + ": no simulation function")
	}
	d.Inputs.Names = slotNames(d.Inputs.Names, d.Inputs.Count, "in")
	d.Outputs.Names = slotNames(d.Outputs.Names, d.Outputs.Count, "out")
	return nil
}

func expressionSim(es []*expr.Expr) SimFunc {
	return func(inputs []SlotState, now time.Duration, prev ComponentState) (ComponentState, error) {
		return Evaluate(inputs, now, prev, func(in []logic.State) []logic.State {
			return expr.EvalAll(es, in)
		}), nil
	}
}

// Evaluate is a helper for combinational simulation functions. It records the
// inputs into a copy of prev, computes the outputs with fn and updates the
// output slots that changed, setting IsChanged accordingly. Missing outputs
// are set to Unknown.
//
func Evaluate(inputs []SlotState, now time.Duration, prev ComponentState, fn func(in []logic.State) []logic.State) ComponentState {
	s := prev.Clone()
	s.IsChanged = false
	copy(s.InputStates, inputs)
	out := fn(levels(inputs))
	for i := range s.OutputStates {
		v := logic.Unknown
		if i < len(out) {
			v = out[i]
		}
		if s.OutputStates[i].State != v {
			s.OutputStates[i] = SlotState{v, now}
			s.IsChanged = true
		}
	}
	return s
}

// Hash returns the content address of d. Clones share the hash of the
// definition they were cloned from, regardless of later slot count changes.
// The hash of a definition that was never registered is the one a catalog
// would give it; d is left untouched.
//
// Simulation functions cannot be hashed: definitions with a different behavior
// must have a different name.
//
func (d *Definition) Hash() DefinitionHash {
	if d.hash != 0 {
		return d.hash
	}
	c := d.clone()
	if err := c.compile(); err != nil {
		c = d
	}
	h, err := c.contentHash()
	if err != nil {
		panic(errors.Wrap(err, "hash "+d.Name))
	}
	return h
}

func (d *Definition) contentHash() (DefinitionHash, error) {
	digest := sha1.New()
	str := func(s string) {
		var buf [binary.MaxVarintLen64]byte
		n := binary.PutUvarint(buf[:], uint64(len(s)))
		digest.Write(buf[:n])
		digest.Write([]byte(s))
	}
	num := func(v int64) {
		var buf [binary.MaxVarintLen64]byte
		n := binary.PutVarint(buf[:], v)
		digest.Write(buf[:n])
	}
	slots := func(s SlotsInfo) {
		num(int64(s.Count))
		if s.Resizeable {
			num(1)
		} else {
			num(0)
		}
		num(int64(len(s.Names)))
		for _, n := range s.Names {
			str(n)
		}
	}
	str(d.Name)
	str(d.Category)
	num(int64(d.Behavior))
	slots(d.Inputs)
	slots(d.Outputs)
	num(int64(d.Delay))
	num(int64(d.Growth))
	num(int64(len(d.Expressions)))
	for _, e := range d.Expressions {
		str(e)
	}
	if x, ok := d.Trait.(ContentAddresser); ok {
		if err := x.ContentAddress(digest); err != nil {
			return 0, errors.Wrap(err, "trait")
		}
	}
	sum := digest.Sum(nil)
	h := DefinitionHash(binary.BigEndian.Uint64(sum[:8]))
	if h == 0 {
		h = 1
	}
	return h, nil
}

// Clone returns a deep copy of d, including its trait.
//
func (d *Definition) Clone() *Definition {
	c := d.clone()
	c.hash = d.Hash()
	return c
}

func (d *Definition) clone() *Definition {
	c := *d
	c.Inputs = d.Inputs.clone()
	c.Outputs = d.Outputs.clone()
	c.Expressions = append([]string(nil), d.Expressions...)
	if d.Trait != nil {
		c.Trait = d.Trait.CloneTrait()
	}
	return &c
}

// OnSlotsResizeReq reports whether the slot group of type t may be resized to
// newSize. The default policy accepts resizing of resizeable groups to a size
// of at least 1. Expression based definitions never accept output resizing
// and refuse to drop inputs referenced by their expressions.
//
func (d *Definition) OnSlotsResizeReq(t SlotType, newSize int) bool {
	if p, ok := d.Trait.(ResizePolicy); ok {
		return p.OnSlotsResizeReq(t, newSize)
	}
	if newSize < 1 {
		return false
	}
	if t == OutputSlot {
		return d.Outputs.Resizeable && len(d.exprs) == 0
	}
	for _, e := range d.exprs {
		if e.MaxInput() >= newSize {
			return false
		}
	}
	return d.Inputs.Resizeable
}

// AutoReschedule returns true if components of this definition schedule
// themselves.
//
func (d *Definition) AutoReschedule() bool {
	_, ok := d.Trait.(Rescheduler)
	return ok
}

// RescheduleTime returns the time at which a self-scheduling component must be
// evaluated again.
//
func (d *Definition) RescheduleTime(now time.Duration) time.Duration {
	if r, ok := d.Trait.(Rescheduler); ok {
		return r.RescheduleTime(now)
	}
	return now
}

// OnStateChange forwards state changes of a component to its trait.
//
func (d *Definition) OnStateChange(old, new *ComponentState) {
	if o, ok := d.Trait.(StateObserver); ok {
		o.OnStateChange(old, new)
	}
}

// derivedOutputs returns the output count derived from expressions for the
// given input count.
//
func (d *Definition) derivedOutputs(inputs int) (int, bool) {
	if len(d.exprs) == 0 {
		return 0, false
	}
	return expr.Outputs(d.exprs, inputs), true
}

func (d *Definition) slots(t SlotType) *SlotsInfo {
	if t == InputSlot {
		return &d.Inputs
	}
	return &d.Outputs
}

// SlotName returns the name of slot i of type t.
//
func (d *Definition) SlotName(t SlotType, i int) string {
	s := d.slots(t)
	if i < 0 || i >= len(s.Names) {
		return ""
	}
	return s.Names[i]
}

// slotNames extends names to count entries with sequential names: single
// letters continue the alphabet, other names get an index appended to prefix.
//
func slotNames(names []string, count int, prefix string) []string {
	if len(names) >= count {
		return names[:count:count]
	}
	out := make([]string, count)
	copy(out, names)
	for i := len(names); i < count; i++ {
		out[i] = nextSlotName(out[:i], prefix)
	}
	return out
}

func nextSlotName(prev []string, prefix string) string {
	i := len(prev)
	letters := i < 26
	for _, n := range prev {
		if len(n) != 1 || n[0] < 'A' || n[0] > 'Z' {
			letters = false
			break
		}
	}
	if letters && (i > 0 || prefix == "A") {
		return string(rune('A' + i))
	}
	return prefix + strconv.Itoa(i)
}
