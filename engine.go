// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package logicsim

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/danielorbach/go-component"
	"github.com/db47h/logicsim/logic"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
)

// SimState is the run state of an engine.
//
type SimState uint8

// Run states.
//
const (
	Running SimState = iota
	Paused
)

func (s SimState) String() string {
	if s == Running {
		return "running"
	}
	return "paused"
}

// An Option configures an Engine.
//
type Option func(e *Engine)

// WithNotifier sets the receiver of engine notifications.
//
func WithNotifier(n Notifier) Option {
	return func(e *Engine) { e.notifier = n }
}

// WithStartPaused creates the engine in the Paused state.
//
func WithStartPaused(paused bool) Option {
	return func(e *Engine) {
		if paused {
			e.simState = Paused
		}
	}
}

// Engine is a discrete-event logic simulation engine.
//
// Commands are executed synchronously on the caller's goroutine: they update
// the component graph immediately and schedule the re-evaluation of affected
// components. A single worker goroutine processes scheduled events in time
// order. All methods are safe for concurrent use.
//
// Locks are always acquired in this order: stateMu, queueMu, runMu.
//
// Callers must call Dispose once the engine is no longer needed in order to
// stop the worker goroutine.
//
type Engine struct {
	ctx      context.Context
	logger   *slog.Logger
	id       uuid.UUID
	attrs    attribute.Set
	catalog  *Catalog
	notifier Notifier
	ids      *idGen

	stateMu sync.RWMutex
	state   *EngineState

	queueMu sync.Mutex
	queue   eventQueue
	busy    bool          // a batch is being processed
	stable  chan struct{} // closed while the queue is empty and !busy
	isIdle  bool
	wake    chan struct{}

	runMu    sync.Mutex
	simState SimState
	steps    int
	gate     chan struct{} // closed on resume or step

	simTime     atomic.Int64
	netsUpdated atomic.Bool

	done     chan struct{}
	stopped  chan struct{}
	disposed sync.Once
}

// NewEngine creates a new engine using definitions from catalog and starts its
// worker goroutine. The logger is taken from ctx (see component.InjectLogger).
//
func NewEngine(ctx context.Context, catalog *Catalog, opts ...Option) *Engine {
	e := &Engine{
		id:      uuid.New(),
		catalog: catalog,
		ids:     newIDGen(),
		state:   newEngineState(),
		stable:  make(chan struct{}),
		isIdle:  true,
		wake:    make(chan struct{}, 1),
		gate:    make(chan struct{}),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	close(e.stable)
	for _, o := range opts {
		o(e)
	}
	e.attrs = attribute.NewSet(attribute.String(engineInstance, e.id.String()))
	e.logger = component.Logger(ctx).With(slog.String("engine", e.id.String()))
	e.ctx = component.InjectLogger(context.WithoutCancel(ctx), e.logger)
	e.logger.Debug("Starting simulation engine", slog.String("state", e.simState.String()))
	go e.run()
	return e
}

// Dispose stops the worker goroutine. The engine must not be used afterwards.
//
func (e *Engine) Dispose() {
	e.disposed.Do(func() {
		close(e.done)
		<-e.stopped
		e.logger.Debug("Simulation engine stopped")
	})
}

// InstanceID returns the unique id of this engine instance.
//
func (e *Engine) InstanceID() uuid.UUID { return e.id }

// Catalog returns the catalog of the engine.
//
func (e *Engine) Catalog() *Catalog { return e.catalog }

func (e *Engine) now() time.Duration { return time.Duration(e.simTime.Load()) }

func (e *Engine) emit(ns []Notification) {
	if e.notifier == nil {
		return
	}
	for _, n := range ns {
		e.notifier.Notify(e.ctx, n)
	}
}

// schedule queues an event for component id at time t. Must be called with
// stateMu held.
//
func (e *Engine) schedule(t time.Duration, id, scheduler ID) {
	e.queueMu.Lock()
	e.queue.schedule(t, id, scheduler)
	e.setIdle(false)
	e.queueMu.Unlock()
	e.signal()
}

// scheduleComponent schedules c after its delay.
//
func (e *Engine) scheduleComponent(c *Component, scheduler ID) {
	e.schedule(e.now()+c.Definition.Delay, c.ID, scheduler)
}

func (e *Engine) signal() {
	select {
	case e.wake <- struct{}{}:
	default:
	}
}

// setIdle updates the stable channel. Must be called with queueMu held.
//
func (e *Engine) setIdle(idle bool) {
	if idle == e.isIdle {
		return
	}
	e.isIdle = idle
	if idle {
		close(e.stable)
	} else {
		e.stable = make(chan struct{})
	}
}

func (e *Engine) lookup(id ID) (*Component, error) {
	if id == NullID || id == MasterID {
		return nil, errors.Wrap(ErrComponentNotFound, id.String())
	}
	c, ok := e.state.Components[id]
	if !ok {
		return nil, errors.Wrap(ErrComponentNotFound, id.String())
	}
	return c, nil
}

func checkSlot(c *Component, t SlotType, slot int) error {
	if slot < 0 || slot >= c.SlotCount(t) {
		return errors.Wrapf(ErrSlotOutOfRange, "%v %s[%d]", c.ID, t, slot)
	}
	return nil
}

// AddComponent creates a new component from def, registering def in the
// catalog if needed. The component is placed in a new net and scheduled for
// evaluation after its delay.
//
func (e *Engine) AddComponent(def *Definition) (ID, error) {
	tmpl, err := e.catalog.template(def)
	if err != nil {
		return NullID, errors.Wrap(err, "add component")
	}
	return e.add(tmpl), nil
}

// AddComponentByHash creates a new component from the catalog definition with
// hash h.
//
func (e *Engine) AddComponentByHash(h DefinitionHash) (ID, error) {
	tmpl, ok := e.catalog.Definition(h)
	if !ok {
		return NullID, errors.Wrap(ErrUnknownDefinition, h.String())
	}
	return e.add(tmpl), nil
}

func (e *Engine) add(tmpl *Definition) ID {
	c := NewComponent(e.ids.generate(), tmpl)
	e.stateMu.Lock()
	e.state.add(c, e.ids.generate())
	e.netsUpdated.Store(true)
	e.scheduleComponent(c, MasterID)
	e.stateMu.Unlock()
	e.emit([]Notification{ComponentAdded{c.ID, c.Definition.Hash()}})
	return c.ID
}

// orient returns the output and input side of a wire given as two slots of
// arbitrary type.
//
func orient(a ID, ia int, ta SlotType, b ID, ib int, tb SlotType) (out, in SlotRef, err error) {
	if ta == tb {
		return out, in, errors.Wrapf(ErrSameSlotType, "%v %s[%d] and %v %s[%d]", a, ta, ia, b, tb, ib)
	}
	if ta == OutputSlot {
		return SlotRef{a, ia}, SlotRef{b, ib}, nil
	}
	return SlotRef{b, ib}, SlotRef{a, ia}, nil
}

func (e *Engine) checkConnect(src ID, srcSlot int, srcType SlotType, dst ID, dstSlot int, dstType SlotType, override bool) (oc, ic *Component, out, in SlotRef, err error) {
	if src == NullID || dst == NullID {
		return nil, nil, out, in, errors.Wrap(ErrComponentNotFound, "null id")
	}
	if src == dst {
		return nil, nil, out, in, errors.Wrap(ErrSelfConnection, src.String())
	}
	out, in, err = orient(src, srcSlot, srcType, dst, dstSlot, dstType)
	if err != nil {
		return nil, nil, out, in, err
	}
	if oc, err = e.lookup(out.Component); err != nil {
		return nil, nil, out, in, err
	}
	if ic, err = e.lookup(in.Component); err != nil {
		return nil, nil, out, in, err
	}
	if err = checkSlot(oc, OutputSlot, out.Slot); err != nil {
		return nil, nil, out, in, err
	}
	if err = checkSlot(ic, InputSlot, in.Slot); err != nil {
		return nil, nil, out, in, err
	}
	if !override && oc.OutputConnections.contains(out.Slot, in) {
		return nil, nil, out, in, errors.Wrapf(ErrDuplicateConnection, "%v out[%d] -> %v in[%d]", out.Component, out.Slot, in.Component, in.Slot)
	}
	return oc, ic, out, in, nil
}

// CanConnectComponents returns nil if ConnectComponent would succeed with the
// same arguments, or the reason why it would not.
//
func (e *Engine) CanConnectComponents(src ID, srcSlot int, srcType SlotType, dst ID, dstSlot int, dstType SlotType, override bool) error {
	e.stateMu.RLock()
	defer e.stateMu.RUnlock()
	_, _, _, _, err := e.checkConnect(src, srcSlot, srcType, dst, dstSlot, dstType, override)
	return err
}

// ConnectComponent wires slot srcSlot of src to slot dstSlot of dst. One side
// must be an output slot, the other an input slot. If override is true, the
// input slot is disconnected from all its current drivers first.
//
// The nets of both components are merged and the input side is scheduled for
// evaluation after its delay.
//
func (e *Engine) ConnectComponent(src ID, srcSlot int, srcType SlotType, dst ID, dstSlot int, dstType SlotType, override bool) error {
	var ns []Notification
	e.stateMu.Lock()
	oc, ic, out, in, err := e.checkConnect(src, srcSlot, srcType, dst, dstSlot, dstType, override)
	if err != nil {
		e.stateMu.Unlock()
		return err
	}
	var seeds []ID
	if override {
		for _, drv := range append([]SlotRef(nil), ic.InputConnections[in.Slot]...) {
			w := Wire{Output: drv, Input: in}
			e.unwire(w)
			ns = append(ns, ConnectionRemoved{w})
			seeds = append(seeds, drv.Component)
		}
	}
	oc.OutputConnections[out.Slot] = append(oc.OutputConnections[out.Slot], in)
	oc.State.OutputConnected[out.Slot] = true
	ic.InputConnections[in.Slot] = append(ic.InputConnections[in.Slot], out)
	ic.State.InputConnected[in.Slot] = true
	if len(seeds) > 0 {
		e.state.recompute(append(seeds, oc.ID, ic.ID), e.ids.generate)
		e.netsUpdated.Store(true)
	} else if e.state.merge(oc, ic) {
		e.netsUpdated.Store(true)
	}
	e.scheduleComponent(ic, MasterID)
	e.stateMu.Unlock()
	e.emit(ns)
	return nil
}

// unwire removes both ends of w and updates the connected flags. An input slot
// left without drivers is reset to Low at time 0. Must be called with stateMu
// held.
//
func (e *Engine) unwire(w Wire) bool {
	found := false
	if oc, ok := e.state.Components[w.Output.Component]; ok && w.Output.Slot < oc.SlotCount(OutputSlot) {
		found = oc.OutputConnections.remove(w.Output.Slot, w.Input) || found
		oc.State.OutputConnected[w.Output.Slot] = len(oc.OutputConnections[w.Output.Slot]) > 0
	}
	if ic, ok := e.state.Components[w.Input.Component]; ok && w.Input.Slot < ic.SlotCount(InputSlot) {
		found = ic.InputConnections.remove(w.Input.Slot, w.Output) || found
		if len(ic.InputConnections[w.Input.Slot]) == 0 {
			ic.State.InputConnected[w.Input.Slot] = false
			ic.State.InputStates[w.Input.Slot] = SlotState{}
		}
	}
	return found
}

// DeleteComponent removes component id from the graph. All wires to and from it
// are removed, pending events for it are cancelled, the nets of its former
// peers are recomputed and the components it was driving are scheduled for
// evaluation.
//
func (e *Engine) DeleteComponent(id ID) error {
	var ns []Notification
	e.stateMu.Lock()
	c, err := e.lookup(id)
	if err != nil {
		e.stateMu.Unlock()
		return err
	}
	peers := c.Peers()
	var downstream []ID
	for _, w := range c.Wires() {
		e.unwire(w)
		ns = append(ns, ConnectionRemoved{w})
		if w.Output.Component == id {
			downstream = append(downstream, w.Input.Component)
		}
	}
	e.queueMu.Lock()
	e.queue.cancel(id)
	if e.queue.len() == 0 && !e.busy {
		e.setIdle(true)
	}
	e.queueMu.Unlock()
	e.state.remove(c)
	e.state.recompute(peers, e.ids.generate)
	e.netsUpdated.Store(true)
	e.scheduleAll(downstream)
	e.stateMu.Unlock()
	e.emit(ns)
	return nil
}

// scheduleAll schedules the given components once each. Must be called with
// stateMu held.
//
func (e *Engine) scheduleAll(ids []ID) {
	seen := make(map[ID]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if c, ok := e.state.Components[id]; ok {
			e.scheduleComponent(c, MasterID)
		}
	}
}

// DeleteConnection removes the wire between slot ia of a and slot ib of b. The
// nets of a and b are recomputed and the input side is scheduled for
// evaluation.
//
func (e *Engine) DeleteConnection(a ID, ta SlotType, ia int, b ID, tb SlotType, ib int) error {
	out, in, err := orient(a, ia, ta, b, ib, tb)
	if err != nil {
		return err
	}
	w := Wire{Output: out, Input: in}
	e.stateMu.Lock()
	oc, err := e.lookup(out.Component)
	if err == nil {
		_, err = e.lookup(in.Component)
	}
	if err == nil {
		err = checkSlot(oc, OutputSlot, out.Slot)
	}
	if err == nil && !oc.OutputConnections.contains(out.Slot, in) {
		err = errors.Wrapf(ErrConnectionNotFound, "%v out[%d] -> %v in[%d]", out.Component, out.Slot, in.Component, in.Slot)
	}
	if err != nil {
		e.stateMu.Unlock()
		return err
	}
	e.unwire(w)
	if e.state.recompute([]ID{out.Component, in.Component}, e.ids.generate) {
		e.netsUpdated.Store(true)
	}
	e.scheduleAll([]ID{in.Component})
	e.stateMu.Unlock()
	e.emit([]Notification{ConnectionRemoved{w}})
	return nil
}

// SetInputSlotState forces the state of an input slot and schedules the
// component for evaluation. On connected inputs the forced value only lasts
// until the drivers are aggregated again.
//
func (e *Engine) SetInputSlotState(id ID, slot int, s logic.State) error {
	e.stateMu.Lock()
	defer e.stateMu.Unlock()
	c, err := e.lookup(id)
	if err != nil {
		return err
	}
	if err = checkSlot(c, InputSlot, slot); err != nil {
		return err
	}
	c.State.InputStates[slot] = SlotState{s, e.now()}
	e.scheduleComponent(c, MasterID)
	return nil
}

// InvertInputSlotState inverts the state of an input slot and schedules the
// component for evaluation.
//
func (e *Engine) InvertInputSlotState(id ID, slot int) error {
	e.stateMu.Lock()
	defer e.stateMu.Unlock()
	c, err := e.lookup(id)
	if err != nil {
		return err
	}
	if err = checkSlot(c, InputSlot, slot); err != nil {
		return err
	}
	c.State.InputStates[slot] = SlotState{logic.Not(c.State.InputStates[slot].State), e.now()}
	e.scheduleComponent(c, MasterID)
	return nil
}

// SetOutputSlotState forces the state of an output slot and schedules the
// components it drives. This is how Input components are driven.
//
func (e *Engine) SetOutputSlotState(id ID, slot int, s logic.State) error {
	e.stateMu.Lock()
	defer e.stateMu.Unlock()
	c, err := e.lookup(id)
	if err != nil {
		return err
	}
	if err = checkSlot(c, OutputSlot, slot); err != nil {
		return err
	}
	now := e.now()
	old := c.State.Clone()
	c.State.OutputStates[slot] = SlotState{s, now}
	c.Definition.OnStateChange(&old, &c.State)
	e.fanOut(c, slot, now)
	return nil
}

// fanOut schedules the components driven by output slot of c, or by all its
// outputs if slot < 0. Must be called with stateMu held.
//
func (e *Engine) fanOut(c *Component, slot int, now time.Duration) {
	seen := make(map[ID]bool)
	for i, refs := range c.OutputConnections {
		if slot >= 0 && i != slot {
			continue
		}
		for _, ref := range refs {
			if seen[ref.Component] {
				continue
			}
			seen[ref.Component] = true
			if p, ok := e.state.Components[ref.Component]; ok {
				e.schedule(now+p.Definition.Delay, p.ID, c.ID)
			}
		}
	}
}

// IncrementInputCount adds an input slot to component id.
//
func (e *Engine) IncrementInputCount(id ID) error {
	return e.resize(id, (*Component).IncrementInputCount)
}

// DecrementInputCount removes the last input slot of component id. Wires
// attached to it are removed.
//
func (e *Engine) DecrementInputCount(id ID) error {
	return e.resize(id, (*Component).DecrementInputCount)
}

// IncrementOutputCount adds an output slot to component id.
//
func (e *Engine) IncrementOutputCount(id ID) error {
	return e.resize(id, (*Component).IncrementOutputCount)
}

// DecrementOutputCount removes the last output slot of component id. Wires
// attached to it are removed.
//
func (e *Engine) DecrementOutputCount(id ID) error {
	return e.resize(id, (*Component).DecrementOutputCount)
}

func (e *Engine) resize(id ID, fn func(c *Component) (Resize, bool)) error {
	var ns []Notification
	e.stateMu.Lock()
	c, err := e.lookup(id)
	if err != nil {
		e.stateMu.Unlock()
		return err
	}
	r, ok := fn(c)
	if !ok {
		e.stateMu.Unlock()
		return errors.Wrap(ErrResizeRejected, id.String())
	}
	var seeds, downstream []ID
	for _, w := range r.Dropped {
		e.unwire(w)
		ns = append(ns, ConnectionRemoved{w})
		seeds = append(seeds, w.Output.Component, w.Input.Component)
		if w.Output.Component == id {
			downstream = append(downstream, w.Input.Component)
		}
	}
	if len(seeds) > 0 && e.state.recompute(seeds, e.ids.generate) {
		e.netsUpdated.Store(true)
	}
	if r.Inputs {
		ns = append(ns, InputsResized{id, c.SlotCount(InputSlot)})
	}
	if r.Outputs {
		ns = append(ns, OutputsResized{id, c.SlotCount(OutputSlot)})
	}
	e.scheduleAll(append([]ID{id}, downstream...))
	e.stateMu.Unlock()
	e.emit(ns)
	return nil
}

// ClearSimError clears the sticky simulation error of component id.
//
func (e *Engine) ClearSimError(id ID) error {
	e.stateMu.Lock()
	defer e.stateMu.Unlock()
	c, err := e.lookup(id)
	if err != nil {
		return err
	}
	c.State.SimError = false
	c.State.ErrorMessage = ""
	e.scheduleComponent(c, MasterID)
	return nil
}

// SimulationState returns the current run state.
//
func (e *Engine) SimulationState() SimState {
	e.runMu.Lock()
	defer e.runMu.Unlock()
	return e.simState
}

// SetSimulationState sets the run state. Pausing takes effect before the next
// batch; the batch being processed, if any, completes.
//
func (e *Engine) SetSimulationState(s SimState) {
	e.runMu.Lock()
	defer e.runMu.Unlock()
	if s == e.simState {
		return
	}
	e.simState = s
	e.logger.Debug("Simulation state changed", slog.String("state", s.String()))
	if s == Running {
		e.steps = 0
		e.release()
	}
}

// ToggleSimState switches between Running and Paused and returns the new
// state.
//
func (e *Engine) ToggleSimState() SimState {
	e.runMu.Lock()
	s := Paused
	if e.simState == Paused {
		s = Running
	}
	e.runMu.Unlock()
	e.SetSimulationState(s)
	return s
}

// StepSimulation lets the worker process exactly one batch while paused. It
// does nothing while running or when no event is pending. Steps do not
// accumulate: stepping again before the worker picked up the previous step has
// no effect.
//
func (e *Engine) StepSimulation() {
	e.queueMu.Lock()
	defer e.queueMu.Unlock()
	e.runMu.Lock()
	defer e.runMu.Unlock()
	if e.simState != Paused || e.queue.len() == 0 {
		return
	}
	e.steps = 1
	e.release()
}

// release wakes up the worker if it is blocked in waitRunnable. Must be called
// with runMu held.
//
func (e *Engine) release() {
	close(e.gate)
	e.gate = make(chan struct{})
}

// SimulationTime returns the current simulation time.
//
func (e *Engine) SimulationTime() time.Duration { return e.now() }

// IsStable returns true if no events are pending and no batch is being
// processed.
//
func (e *Engine) IsStable() bool {
	e.queueMu.Lock()
	defer e.queueMu.Unlock()
	return e.queue.len() == 0 && !e.busy
}

// WaitStable blocks until the engine is stable or ctx is done. While paused,
// it returns ErrSimulationPaused unless the engine is already stable.
//
func (e *Engine) WaitStable(ctx context.Context) error {
	for {
		e.queueMu.Lock()
		if e.queue.len() == 0 && !e.busy {
			e.queueMu.Unlock()
			return nil
		}
		ch := e.stable
		e.queueMu.Unlock()
		if e.SimulationState() == Paused {
			return ErrSimulationPaused
		}
		select {
		case <-ch:
		case <-ctx.Done():
			return ctx.Err()
		case <-e.done:
			return ErrDisposed
		}
	}
}

// ComponentState returns a copy of the state of component id.
//
func (e *Engine) ComponentState(id ID) (ComponentState, bool) {
	e.stateMu.RLock()
	defer e.stateMu.RUnlock()
	c, ok := e.state.Components[id]
	if !ok {
		return ComponentState{}, false
	}
	return c.State.Clone(), true
}

// ComponentDefinition returns a copy of the definition owned by component id.
//
func (e *Engine) ComponentDefinition(id ID) (*Definition, bool) {
	e.stateMu.RLock()
	defer e.stateMu.RUnlock()
	c, ok := e.state.Components[id]
	if !ok {
		return nil, false
	}
	return c.Definition.Clone(), true
}

// DigitalSlotState returns the state of a slot of component id.
//
func (e *Engine) DigitalSlotState(id ID, t SlotType, slot int) (SlotState, bool) {
	e.stateMu.RLock()
	defer e.stateMu.RUnlock()
	c, ok := e.state.Components[id]
	if !ok || slot < 0 || slot >= c.SlotCount(t) {
		return SlotState{}, false
	}
	if t == InputSlot {
		return c.State.InputStates[slot], true
	}
	return c.State.OutputStates[slot], true
}

// Connections returns a copy of the connections of the slots of type t of
// component id.
//
func (e *Engine) Connections(id ID, t SlotType) (Connections, bool) {
	e.stateMu.RLock()
	defer e.stateMu.RUnlock()
	c, ok := e.state.Components[id]
	if !ok {
		return nil, false
	}
	return c.Connections(t).clone(), true
}

// Components returns the ids of all components in ascending order.
//
func (e *Engine) Components() []ID {
	e.stateMu.RLock()
	ids := make([]ID, 0, len(e.state.Components))
	for id := range e.state.Components {
		ids = append(ids, id)
	}
	e.stateMu.RUnlock()
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// NetOf returns the id of the net component id belongs to.
//
func (e *Engine) NetOf(id ID) (ID, bool) {
	e.stateMu.RLock()
	defer e.stateMu.RUnlock()
	c, ok := e.state.Components[id]
	if !ok {
		return NullID, false
	}
	return c.NetID, true
}

// Nets returns the member lists of all nets, indexed by net id.
//
func (e *Engine) Nets() map[ID][]ID {
	e.stateMu.RLock()
	defer e.stateMu.RUnlock()
	m := make(map[ID][]ID, len(e.state.Nets))
	for id, n := range e.state.Nets {
		m[id] = n.Components()
	}
	return m
}

// IsNetUpdated returns true if net membership changed since the last call.
//
func (e *Engine) IsNetUpdated() bool {
	return e.netsUpdated.Swap(false)
}
