// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package logicsim

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var tracer = otel.Tracer("github.com/db47h/logicsim")
var meter = otel.Meter("github.com/db47h/logicsim")

// engineInstance is the attribute key identifying the engine a record belongs
// to.
const engineInstance = "logicsim.engine"

var (
	// eventsProcessed counts component evaluations.
	eventsProcessed metric.Int64Counter
	// batchesProcessed counts worker loop iterations that evaluated at least one
	// component.
	batchesProcessed metric.Int64Counter
	// simulationFaults counts simulation functions that returned an error or
	// panicked.
	simulationFaults metric.Int64Counter
	// batchDuration measures the wall time spent evaluating and committing a
	// batch.
	batchDuration metric.Float64Histogram
)

func init() {
	var err error
	eventsProcessed, err = meter.Int64Counter(
		"logicsim.events.processed",
		metric.WithDescription("The number of component evaluations."),
	)
	if err != nil {
		panic("logicsim: failed to init 'logicsim.events.processed' instrument")
	}
	batchesProcessed, err = meter.Int64Counter(
		"logicsim.batches",
		metric.WithDescription("The number of event batches processed."),
	)
	if err != nil {
		panic("logicsim: failed to init 'logicsim.batches' instrument")
	}
	simulationFaults, err = meter.Int64Counter(
		"logicsim.simulation.faults",
		metric.WithDescription("The number of faulted simulation function calls."),
	)
	if err != nil {
		panic("logicsim: failed to init 'logicsim.simulation.faults' instrument")
	}
	batchDuration, err = meter.Float64Histogram(
		"logicsim.batch.duration",
		metric.WithDescription("The wall time spent processing a single event batch."),
		metric.WithUnit("ms"),
	)
	if err != nil {
		panic("logicsim: failed to init 'logicsim.batch.duration' instrument")
	}
}

func measureBatch(ctx context.Context, attrs attribute.Set, events, faults int, d time.Duration) {
	opt := metric.WithAttributeSet(attrs)
	batchesProcessed.Add(ctx, 1, opt)
	eventsProcessed.Add(ctx, int64(events), opt)
	if faults > 0 {
		simulationFaults.Add(ctx, int64(faults), opt)
	}
	batchDuration.Record(ctx, float64(d)/float64(time.Millisecond), opt)
}
