// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package logicsim

import "context"

// A Notification reports a change of the component graph that views built on
// top of the engine need to track: ComponentAdded, InputsResized,
// OutputsResized or ConnectionRemoved.
//
type Notification interface {
	notification()
}

// ComponentAdded is sent when a component is created.
//
type ComponentAdded struct {
	Component  ID
	Definition DefinitionHash
}

// InputsResized is sent when the input count of a component changes.
//
type InputsResized struct {
	Component ID
	Count     int
}

// OutputsResized is sent when the output count of a component changes.
//
type OutputsResized struct {
	Component ID
	Count     int
}

// ConnectionRemoved is sent for every wire removed from the graph, be it
// explicitly, by deleting a component or by shrinking a slot group.
//
type ConnectionRemoved struct {
	Wire
}

func (ComponentAdded) notification()    {}
func (InputsResized) notification()     {}
func (OutputsResized) notification()    {}
func (ConnectionRemoved) notification() {}

// A Notifier receives engine notifications. Notify is called on the goroutine
// that executed the command, after all engine locks have been released.
//
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// NotifierFunc adapts a function to the Notifier interface.
//
type NotifierFunc func(ctx context.Context, n Notification)

// Notify implements Notifier.
//
func (f NotifierFunc) Notify(ctx context.Context, n Notification) { f(ctx, n) }
