// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package logicsim

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/danielorbach/go-component"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Snapshot is a serializable image of the component graph. Definitions are
// referenced by hash and must be registered in the catalog of the engine the
// snapshot is restored into.
//
type Snapshot struct {
	Time       time.Duration
	Components []ComponentRecord
	Nets       []NetRecord
}

// ComponentRecord is the image of a component in a Snapshot.
//
type ComponentRecord struct {
	ID                ID
	NetID             ID
	Definition        DefinitionHash
	Inputs            int
	Outputs           int
	State             ComponentState
	InputConnections  Connections
	OutputConnections Connections
}

// NetRecord is the image of a net in a Snapshot.
//
type NetRecord struct {
	ID         ID
	Components []ID
}

// Snapshot returns an image of the component graph, components and nets
// sorted by id.
//
func (e *Engine) Snapshot() Snapshot {
	e.stateMu.RLock()
	defer e.stateMu.RUnlock()
	s := Snapshot{Time: e.now()}
	for _, c := range e.state.Components {
		s.Components = append(s.Components, ComponentRecord{
			ID:                c.ID,
			NetID:             c.NetID,
			Definition:        c.Definition.Hash(),
			Inputs:            c.SlotCount(InputSlot),
			Outputs:           c.SlotCount(OutputSlot),
			State:             c.State.Clone(),
			InputConnections:  c.InputConnections.clone(),
			OutputConnections: c.OutputConnections.clone(),
		})
	}
	for _, n := range e.state.Nets {
		s.Nets = append(s.Nets, NetRecord{n.ID, n.Components()})
	}
	sort.Slice(s.Components, func(i, j int) bool { return s.Components[i].ID < s.Components[j].ID })
	sort.Slice(s.Nets, func(i, j int) bool { return s.Nets[i].ID < s.Nets[j].ID })
	return s
}

// Restore replaces the component graph with the content of s. Definitions are
// looked up by hash in the catalog and resized to the recorded slot counts.
// Components with an unknown definition are skipped and logged, as are the
// connections referring to them. Nets are recomputed from the connections and
// every component is scheduled for evaluation.
//
// Restore returns the number of skipped components.
//
func (e *Engine) Restore(ctx context.Context, s Snapshot) int {
	ctx, span := tracer.Start(ctx, "Engine.Restore", trace.WithAttributes(
		attribute.String(engineInstance, e.id.String()),
		attribute.Int("components", len(s.Components)),
	))
	defer span.End()
	logger := component.Logger(ctx).With(slog.String("engine", e.id.String()))

	var (
		ns      []Notification
		skipped int
		maxID   ID
	)
	recs := make(map[ID]*ComponentRecord, len(s.Components))
	for i := range s.Components {
		rec := &s.Components[i]
		if _, ok := e.catalog.Definition(rec.Definition); !ok || rec.ID <= MasterID || recs[rec.ID] != nil {
			logger.Warn("Skipping component",
				slog.String("component", rec.ID.String()),
				slog.String("definition", rec.Definition.String()),
				slog.Bool("registered", ok),
			)
			skipped++
			continue
		}
		recs[rec.ID] = rec
		maxID = max(maxID, rec.ID, rec.NetID)
	}
	e.ids.skip(maxID)

	st := newEngineState()
	for i := range s.Components {
		rec := &s.Components[i]
		if recs[rec.ID] != rec {
			continue
		}
		tmpl, _ := e.catalog.Definition(rec.Definition)
		c := NewComponent(rec.ID, tmpl)
		var r Resize
		if rec.Inputs > 0 {
			c.setCount(InputSlot, rec.Inputs, &r)
		}
		if outs, ok := c.Definition.derivedOutputs(c.SlotCount(InputSlot)); ok {
			c.setCount(OutputSlot, outs, &r)
		} else if rec.Outputs > 0 {
			c.setCount(OutputSlot, rec.Outputs, &r)
		}
		if len(rec.State.InputStates) == c.SlotCount(InputSlot) && len(rec.State.OutputStates) == c.SlotCount(OutputSlot) {
			cs := rec.State.Clone()
			cs.InputConnected = make([]bool, len(cs.InputStates))
			cs.OutputConnected = make([]bool, len(cs.OutputStates))
			c.State = cs
		}
		netID := rec.NetID
		if netID <= MasterID || recs[netID] != nil {
			netID = e.ids.generate()
		}
		if n, ok := st.Nets[netID]; ok {
			c.NetID = netID
			n.AddComponent(c.ID)
			st.Components[c.ID] = c
		} else {
			st.add(c, netID)
		}
		ns = append(ns, ComponentAdded{c.ID, c.Definition.Hash()})
	}

	// rebuild connections from the output side, dropping dangling ones.
	for i := range s.Components {
		rec := &s.Components[i]
		if recs[rec.ID] != rec {
			continue
		}
		id := rec.ID
		oc := st.Components[id]
		for i, refs := range rec.OutputConnections {
			if i >= oc.SlotCount(OutputSlot) {
				break
			}
			for _, ref := range refs {
				ic, ok := st.Components[ref.Component]
				if !ok || ref.Component == id || ref.Slot < 0 || ref.Slot >= ic.SlotCount(InputSlot) || oc.OutputConnections.contains(i, ref) {
					continue
				}
				oc.OutputConnections[i] = append(oc.OutputConnections[i], ref)
				oc.State.OutputConnected[i] = true
				ic.InputConnections[ref.Slot] = append(ic.InputConnections[ref.Slot], SlotRef{id, i})
				ic.State.InputConnected[ref.Slot] = true
			}
		}
	}

	ids := make([]ID, 0, len(st.Components))
	for id := range st.Components {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	e.stateMu.Lock()
	e.state = st
	e.state.recompute(ids, e.ids.generate)
	e.netsUpdated.Store(true)
	e.simTime.Store(int64(s.Time))
	e.queueMu.Lock()
	e.queue = eventQueue{seq: e.queue.seq}
	e.queueMu.Unlock()
	for _, id := range ids {
		e.scheduleComponent(st.Components[id], MasterID)
	}
	if len(ids) == 0 {
		e.queueMu.Lock()
		if !e.busy {
			e.setIdle(true)
		}
		e.queueMu.Unlock()
	}
	e.stateMu.Unlock()

	logger.Debug("Snapshot restored", slog.Int("components", len(ids)), slog.Int("skipped", skipped))
	sort.Slice(ns, func(i, j int) bool { return ns[i].(ComponentAdded).Component < ns[j].(ComponentAdded).Component })
	e.emit(ns)
	return skipped
}
