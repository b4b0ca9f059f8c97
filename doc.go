/*
Package logicsim is the discrete-event simulation kernel of a schematic capture
tool.

Components are instances of immutable definitions registered in a Catalog.
Each instance owns a clone of its definition, so that per-instance slot counts
can change without affecting the template. Components are wired together
through input and output slots. Electrically joined components form a Net.

An Engine owns the component graph and a single worker goroutine that drains a
time-ordered event queue. Commands (AddComponent, ConnectComponent,
DeleteComponent, ...) are executed synchronously on the caller's goroutine and
schedule future re-evaluation events. The worker evaluates the simulation
function of each component due at the earliest time, then schedules the
components driven by its outputs after their own delay.

	cat := logicsim.NewCatalog()
	if err := hwlib.Register(cat); err != nil {
		// ...
	}
	e := logicsim.NewEngine(context.Background(), cat)
	defer e.Dispose()

	in, _ := e.AddComponent(hwlib.Input)
	not, _ := e.AddComponent(hwlib.Not)
	err := e.ConnectComponent(in, 0, logicsim.OutputSlot, not, 0, logicsim.InputSlot, false)

Simulation time is a logical clock: it only advances to the time of the events
being processed, never with wall time.

*/
package logicsim
