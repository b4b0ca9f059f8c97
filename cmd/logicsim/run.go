// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/danielorbach/go-component"
	"github.com/db47h/logicsim"
	"github.com/db47h/logicsim/hwlib"
	"github.com/db47h/logicsim/logic"
	"github.com/db47h/logicsim/notify"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gocloud.dev/pubsub/mempubsub"
	"golang.org/x/sync/errgroup"
)

func newRunCmd(a *app) *cobra.Command {
	var d time.Duration
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a clock driving an inverter and report engine notifications",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd.Context(), cmd.OutOrStdout(), d)
		},
	}
	cmd.Flags().DurationVar(&d, "for", 100*time.Millisecond, "wall clock run time")
	return cmd
}

// run builds clock -> NOT -> probe, lets it run for d and streams the engine
// notifications to w.
//
func (a *app) run(ctx context.Context, w io.Writer, d time.Duration) error {
	logger := component.Logger(ctx)
	topic := mempubsub.NewTopic()
	defer topic.Shutdown(context.Background())
	sub := mempubsub.NewSubscription(topic, time.Minute)
	defer sub.Shutdown(context.Background())

	cat, err := a.catalog()
	if err != nil {
		return err
	}
	opts := append(a.engineOptions(), logicsim.WithNotifier(notify.NewPublisher(topic)))
	e := logicsim.NewEngine(ctx, cat, opts...)
	defer e.Dispose()

	n := logicsim.NewNetlist(e)
	clk := hwlib.NewClock(a.cfg.ClockFrequency, a.cfg.ClockUnit, a.cfg.ClockDutyCycle)
	if _, err = n.Add("clk", clk); err != nil {
		return err
	}
	if _, err = n.Add("not", hwlib.Not); err != nil {
		return err
	}
	probe, err := n.Add("probe", hwlib.Output)
	if err != nil {
		return err
	}
	if err = n.Wire("clk.clk -> not.in[0]", "not.out[0] -> probe.in[0]"); err != nil {
		return errors.Wrap(err, "wire demo circuit")
	}
	names := n.Names()
	e.SetSimulationState(logicsim.Running)
	logger.Debug("Demo circuit running", slog.Duration("for", d))

	ctx, cancel := context.WithTimeout(ctx, d)
	defer cancel()
	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		for {
			msg, err := notify.Receive(ctx, sub)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return err
			}
			mu.Lock()
			fmt.Fprintf(w, "%s %s (%v)\n", notify.Kind(msg), names[notify.Subject(msg)], notify.Subject(msg))
			mu.Unlock()
		}
	})
	g.Go(func() error {
		ticker := time.NewTicker(time.Millisecond)
		defer ticker.Stop()
		var (
			changes int
			last    = logic.Unknown
		)
		for {
			select {
			case <-ctx.Done():
				mu.Lock()
				fmt.Fprintf(w, "simulated %v, %d probe changes sampled\n", e.SimulationTime(), changes)
				mu.Unlock()
				return nil
			case <-ticker.C:
				if s, ok := e.DigitalSlotState(probe, logicsim.InputSlot, 0); ok && s.State != last {
					last = s.State
					changes++
				}
			}
		}
	})
	return g.Wait()
}
