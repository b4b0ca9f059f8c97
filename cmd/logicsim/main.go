// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Command logicsim exercises the simulation engine from the command line: it
// lists the built-in catalog, prints truth tables of built-in definitions and
// runs a small clocked circuit.
//
package main

import (
	"context"
	"fmt"
	"os"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "logicsim:", err)
		os.Exit(exitUserError)
	}
	os.Exit(exitSuccess)
}
