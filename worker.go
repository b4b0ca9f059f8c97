// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package logicsim

import (
	"log/slog"
	"time"

	"github.com/pkg/errors"
)

func (e *Engine) run() {
	defer close(e.stopped)
	for {
		if !e.waitEvent() || !e.waitRunnable() {
			return
		}
		e.processBatch()
	}
}

// waitEvent blocks until the queue is not empty. It returns false if the
// engine has been disposed.
//
func (e *Engine) waitEvent() bool {
	for {
		e.queueMu.Lock()
		n := e.queue.len()
		e.queueMu.Unlock()
		if n > 0 {
			return true
		}
		select {
		case <-e.wake:
		case <-e.done:
			return false
		}
	}
}

// waitRunnable blocks while the simulation is paused and no step is pending.
//
func (e *Engine) waitRunnable() bool {
	for {
		e.runMu.Lock()
		if e.simState == Running {
			e.runMu.Unlock()
			return true
		}
		if e.steps > 0 {
			e.steps--
			e.runMu.Unlock()
			return true
		}
		gate := e.gate
		e.runMu.Unlock()
		select {
		case <-gate:
		case <-e.done:
			return false
		}
	}
}

// job is the evaluation of one component within a batch.
//
type job struct {
	c      *Component
	inputs []SlotState
	prev   ComponentState
	next   ComponentState
	err    error
}

// processBatch evaluates the next batch of events. Simulation functions are
// called against the graph as it was when the batch was popped, with no lock
// held. Results are then committed in event order.
//
func (e *Engine) processBatch() {
	e.queueMu.Lock()
	batch := e.queue.popBatch()
	e.busy = len(batch) > 0
	e.queueMu.Unlock()
	if len(batch) == 0 {
		e.endBatch()
		return
	}

	start := time.Now()
	now := batch[0].time
	if cur := e.now(); cur > now {
		now = cur
	}
	e.simTime.Store(int64(now))

	e.stateMu.RLock()
	jobs := make([]job, 0, len(batch))
	for _, ev := range batch {
		c, ok := e.state.Components[ev.component]
		if !ok {
			continue
		}
		jobs = append(jobs, job{c: c, inputs: e.aggregateInputs(c), prev: c.State.Clone()})
	}
	e.stateMu.RUnlock()

	faults := 0
	for i := range jobs {
		j := &jobs[i]
		j.next, j.err = simulate(j.c.Definition.Simulate, j.inputs, now, j.prev)
		if j.err == nil {
			j.err = checkShape(&j.prev, &j.next)
		}
		if j.err != nil {
			faults++
		}
	}

	e.stateMu.Lock()
	for i := range jobs {
		e.commit(&jobs[i], now)
	}
	e.stateMu.Unlock()

	measureBatch(e.ctx, e.attrs, len(jobs), faults, time.Since(start))
	e.endBatch()
}

func (e *Engine) endBatch() {
	e.queueMu.Lock()
	e.busy = false
	if e.queue.len() == 0 {
		e.setIdle(true)
	}
	e.queueMu.Unlock()
}

// aggregateInputs returns the effective values of the inputs of c. Unconnected
// inputs keep their stored state. Must be called with stateMu held.
//
func (e *Engine) aggregateInputs(c *Component) []SlotState {
	in := make([]SlotState, len(c.InputConnections))
	var drivers []SlotState
	for i, refs := range c.InputConnections {
		if len(refs) == 0 {
			in[i] = c.State.InputStates[i]
			continue
		}
		drivers = drivers[:0]
		for _, ref := range refs {
			if p, ok := e.state.Components[ref.Component]; ok && ref.Slot < len(p.State.OutputStates) {
				drivers = append(drivers, p.State.OutputStates[ref.Slot])
			}
		}
		in[i] = AggregateDrivers(drivers)
	}
	return in
}

func simulate(fn SimFunc, inputs []SlotState, now time.Duration, prev ComponentState) (s ComponentState, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("panic: %v", r)
		}
	}()
	return fn(inputs, now, prev)
}

func checkShape(prev, next *ComponentState) error {
	if len(next.InputStates) != len(prev.InputStates) || len(next.OutputStates) != len(prev.OutputStates) {
		return errors.Errorf("simulation returned %d inputs and %d outputs, expected %d and %d",
			len(next.InputStates), len(next.OutputStates), len(prev.InputStates), len(prev.OutputStates))
	}
	return nil
}

// merge copies next into live for every slot still holding its value from
// prev.
//
func merge(live, prev, next []SlotState) {
	for i := range live {
		if live[i] == prev[i] {
			live[i] = next[i]
		}
	}
}

// commit applies the result of j. Must be called with stateMu held.
//
func (e *Engine) commit(j *job, now time.Duration) {
	c, ok := e.state.Components[j.c.ID]
	if !ok || c != j.c {
		return
	}
	def := c.Definition
	switch {
	case j.err != nil:
		c.State.SimError = true
		c.State.ErrorMessage = j.err.Error()
		e.logger.Warn("Simulation function failed",
			slog.String("component", c.ID.String()),
			slog.String("definition", def.Name),
			slog.Any("error", j.err),
		)
	case len(c.State.InputStates) != len(j.prev.InputStates) || len(c.State.OutputStates) != len(j.prev.OutputStates):
		// resized while being evaluated
		e.schedule(now, c.ID, MasterID)
	default:
		// Slots set by a command while the simulation function was running
		// keep the command's value. The command scheduled a new evaluation.
		var old ComponentState
		if j.next.IsChanged {
			old = c.State.Clone()
		}
		merge(c.State.InputStates, j.prev.InputStates, j.next.InputStates)
		c.State.IsChanged = j.next.IsChanged
		if j.next.IsChanged {
			merge(c.State.OutputStates, j.prev.OutputStates, j.next.OutputStates)
			def.OnStateChange(&old, &c.State)
			e.fanOut(c, -1, now)
		}
	}
	if def.AutoReschedule() {
		e.queueMu.Lock()
		e.queue.reschedule(def.RescheduleTime(now), c.ID)
		e.setIdle(false)
		e.queueMu.Unlock()
	}
}
