// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package logicsim

import (
	"strconv"
	"sync/atomic"
)

// ID identifies components and nets.
//
type ID uint64

// Reserved IDs. MasterID is used as the scheduler of events that do not
// originate from a component (user commands).
//
const (
	NullID   ID = 0
	MasterID ID = 1
)

func (id ID) String() string {
	switch id {
	case NullID:
		return "null"
	case MasterID:
		return "master"
	}
	return "#" + strconv.FormatUint(uint64(id), 10)
}

// idGen generates sequential IDs, the first one being MasterID+1.
//
type idGen struct {
	next uint64
}

func newIDGen() *idGen { return &idGen{next: uint64(MasterID)} }

func (g *idGen) generate() ID {
	return ID(atomic.AddUint64(&g.next, 1))
}

// skip makes sure that the next generated ID is greater than id.
//
func (g *idGen) skip(id ID) {
	for {
		cur := atomic.LoadUint64(&g.next)
		if cur >= uint64(id) || atomic.CompareAndSwapUint64(&g.next, cur, uint64(id)) {
			return
		}
	}
}
