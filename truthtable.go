// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package logicsim

import (
	"context"
	"sort"
	"strings"

	"github.com/db47h/logicsim/logic"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// MaxTruthTableInputs is the maximum number of input slots enumerated by
// TruthTableOfNet.
//
const MaxTruthTableInputs = 16

// TruthTable is the result of TruthTableOfNet. Inputs and Outputs label the
// columns as "Name#id.slot".
//
type TruthTable struct {
	Inputs  []string
	Outputs []string
	Rows    []TruthTableRow
}

// TruthTableRow is a single input combination and the settled outputs.
//
type TruthTableRow struct {
	Inputs  []logic.State
	Outputs []logic.State
}

func (t TruthTable) String() string {
	var sb strings.Builder
	sb.WriteString(strings.Join(t.Inputs, " "))
	sb.WriteString(" | ")
	sb.WriteString(strings.Join(t.Outputs, " "))
	for _, r := range t.Rows {
		sb.WriteByte('\n')
		for i, s := range r.Inputs {
			if i > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(s.String())
		}
		sb.WriteString(" | ")
		for i, s := range r.Outputs {
			if i > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(s.String())
		}
	}
	return sb.String()
}

type probe struct {
	SlotRef
	label string
}

// TruthTableOfNet enumerates all combinations of the output slots of the Input
// components of net netID and records the settled input slots of its Output
// components. Components are taken in ascending id order and the first input
// is the most significant bit of the row number.
//
// After each combination, TruthTableOfNet waits for the engine to become
// stable. Nets with free running clocks or oscillating feedback loops never
// settle: use ctx to bound the wait. The simulation must be running. The
// original states of the inputs are restored before returning.
//
func (e *Engine) TruthTableOfNet(ctx context.Context, netID ID) (tt TruthTable, err error) {
	ctx, span := tracer.Start(ctx, "Engine.TruthTableOfNet", trace.WithAttributes(
		attribute.String(engineInstance, e.id.String()),
		attribute.Int64("net.id", int64(netID)),
	))
	defer func() {
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	if e.SimulationState() == Paused {
		return tt, ErrSimulationPaused
	}
	ins, outs, err := e.truthTableProbes(netID)
	if err != nil {
		return tt, err
	}
	saved := make([]logic.State, len(ins))
	for i, p := range ins {
		s, _ := e.DigitalSlotState(p.Component, OutputSlot, p.Slot)
		saved[i] = s.State
	}
	defer func() {
		for i, p := range ins {
			// the component may have been deleted concurrently.
			_ = e.SetOutputSlotState(p.Component, p.Slot, saved[i])
		}
	}()

	for _, p := range ins {
		tt.Inputs = append(tt.Inputs, p.label)
	}
	for _, p := range outs {
		tt.Outputs = append(tt.Outputs, p.label)
	}
	n := len(ins)
	for r := 0; r < 1<<uint(n); r++ {
		row := TruthTableRow{Inputs: make([]logic.State, n), Outputs: make([]logic.State, len(outs))}
		for i, p := range ins {
			v := logic.FromBool(r>>uint(n-1-i)&1 != 0)
			row.Inputs[i] = v
			if err = e.SetOutputSlotState(p.Component, p.Slot, v); err != nil {
				return tt, errors.Wrap(err, "truth table")
			}
		}
		if err = e.WaitStable(ctx); err != nil {
			return tt, errors.Wrapf(err, "truth table row %d", r)
		}
		for i, p := range outs {
			s, ok := e.DigitalSlotState(p.Component, InputSlot, p.Slot)
			if !ok {
				return tt, errors.Wrap(ErrComponentNotFound, p.label)
			}
			row.Outputs[i] = s.State
		}
		tt.Rows = append(tt.Rows, row)
	}
	return tt, nil
}

func (e *Engine) truthTableProbes(netID ID) (ins, outs []probe, err error) {
	e.stateMu.RLock()
	defer e.stateMu.RUnlock()
	n, ok := e.state.Nets[netID]
	if !ok {
		return nil, nil, errors.Wrap(ErrNetNotFound, netID.String())
	}
	ids := n.Components()
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		c := e.state.Components[id]
		switch c.Definition.Behavior {
		case InputBehavior:
			for i := 0; i < c.SlotCount(OutputSlot); i++ {
				ins = append(ins, probe{SlotRef{id, i}, c.Definition.Name + id.String() + "." + c.Definition.SlotName(OutputSlot, i)})
			}
		case OutputBehavior:
			for i := 0; i < c.SlotCount(InputSlot); i++ {
				outs = append(outs, probe{SlotRef{id, i}, c.Definition.Name + id.String() + "." + c.Definition.SlotName(InputSlot, i)})
			}
		}
	}
	if len(ins) == 0 || len(outs) == 0 {
		return nil, nil, errors.Wrap(ErrNoTruthTable, netID.String())
	}
	if len(ins) > MaxTruthTableInputs {
		return nil, nil, errors.Wrapf(ErrTooManyInputs, "%d inputs", len(ins))
	}
	return ins, outs, nil
}
