// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package logicsim

import "github.com/pkg/errors"

// Errors returned by Engine commands. They are wrapped with context; use
// errors.Cause or errors.Is to test for them.
//
var (
	ErrComponentNotFound   = errors.New("component not found")
	ErrSelfConnection      = errors.New("cannot connect a component to itself")
	ErrSameSlotType        = errors.New("cannot connect slots of the same type")
	ErrSlotOutOfRange      = errors.New("slot index out of range")
	ErrDuplicateConnection = errors.New("connection already exists")
	ErrConnectionNotFound  = errors.New("connection not found")
	ErrNetNotFound         = errors.New("net not found")
	ErrResizeRejected      = errors.New("slot resize rejected")
	ErrUnknownDefinition   = errors.New("definition not registered")
	ErrSimulationPaused    = errors.New("simulation is paused")
	ErrNoTruthTable        = errors.New("net has no input or no output component")
	ErrTooManyInputs       = errors.New("too many truth table inputs")
	ErrDisposed            = errors.New("engine disposed")
)
