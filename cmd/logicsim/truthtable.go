// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/db47h/logicsim"
	"github.com/db47h/logicsim/hwlib"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newTruthTableCmd(a *app) *cobra.Command {
	var inputs int
	cmd := &cobra.Command{
		Use:   "truthtable <definition>",
		Short: "Print the truth table of a built-in definition",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := a.catalog()
			if err != nil {
				return err
			}
			def, err := lookup(cat, args[0])
			if err != nil {
				return err
			}
			e := logicsim.NewEngine(cmd.Context(), cat, a.engineOptions()...)
			defer e.Dispose()
			e.SetSimulationState(logicsim.Running)

			tt, err := truthTable(cmd.Context(), e, def, inputs, a.cfg.TruthTableTimeout)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tt)
			return nil
		},
	}
	cmd.Flags().IntVar(&inputs, "inputs", 0, "number of inputs of resizeable definitions")
	return cmd
}

// truthTable wires an instance of def between Input and Output components and
// returns the truth table of the resulting net, labelled with the slot names
// of def.
//
func truthTable(ctx context.Context, e *logicsim.Engine, def *logicsim.Definition, inputs int, timeout time.Duration) (logicsim.TruthTable, error) {
	var tt logicsim.TruthTable
	id, err := e.AddComponent(def)
	if err != nil {
		return tt, err
	}
	if inputs > 0 {
		for n := def.Inputs.Count; n < inputs; n++ {
			if err = e.IncrementInputCount(id); err != nil {
				return tt, errors.Wrapf(err, "%s inputs", def.Name)
			}
		}
		for n := def.Inputs.Count; n > inputs; n-- {
			if err = e.DecrementInputCount(id); err != nil {
				return tt, errors.Wrapf(err, "%s inputs", def.Name)
			}
		}
	}
	d, _ := e.ComponentDefinition(id)
	for i := 0; i < d.Inputs.Count; i++ {
		in, err := e.AddComponent(hwlib.Input)
		if err != nil {
			return tt, err
		}
		if err = e.ConnectComponent(in, 0, logicsim.OutputSlot, id, i, logicsim.InputSlot, false); err != nil {
			return tt, err
		}
	}
	for i := 0; i < d.Outputs.Count; i++ {
		out, err := e.AddComponent(hwlib.Output)
		if err != nil {
			return tt, err
		}
		if err = e.ConnectComponent(id, i, logicsim.OutputSlot, out, 0, logicsim.InputSlot, false); err != nil {
			return tt, err
		}
	}
	net, _ := e.NetOf(id)

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err = e.WaitStable(ctx); err != nil {
		return tt, errors.Wrap(err, "initial evaluation")
	}
	if tt, err = e.TruthTableOfNet(ctx, net); err != nil {
		return tt, err
	}
	if len(tt.Inputs) == d.Inputs.Count && len(tt.Outputs) == d.Outputs.Count {
		tt.Inputs, tt.Outputs = d.Inputs.Names, d.Outputs.Names
	}
	return tt, nil
}
