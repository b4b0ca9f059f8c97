// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package logicsim

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// A Netlist builds circuits in an engine using component names instead of ids.
//
// Wires are described as "src -> dst" where each side is a component name
// followed by a pin: either a slot name ("not.A"), or a slot type and index
// ("and.in[1]", "clk.out[0]"). Bus ranges expand to several wires:
//
//	"a.out[0..3] -> b.in[0..3]"	// four wires, pin to pin
//	"a.out[0] -> b.in[0..3]"	// one to many
//	"a.out[0..3] -> b.in[0]"	// many to one (wired-OR)
//
type Netlist struct {
	e     *Engine
	names map[string]ID
}

// NewNetlist returns an empty netlist operating on e.
//
func NewNetlist(e *Engine) *Netlist {
	return &Netlist{e: e, names: make(map[string]ID)}
}

// Add adds a new component named name.
//
func (n *Netlist) Add(name string, def *Definition) (ID, error) {
	if name == "" || strings.ContainsAny(name, ".[] ") {
		return NullID, errors.Errorf("invalid component name %q", name)
	}
	if _, ok := n.names[name]; ok {
		return NullID, errors.Errorf("duplicate component name %q", name)
	}
	id, err := n.e.AddComponent(def)
	if err != nil {
		return NullID, errors.Wrap(err, name)
	}
	n.names[name] = id
	return id, nil
}

// ID returns the id of the component named name.
//
func (n *Netlist) ID(name string) (ID, bool) {
	id, ok := n.names[name]
	return id, ok
}

// Names returns the component names, indexed by id.
//
func (n *Netlist) Names() map[ID]string {
	m := make(map[ID]string, len(n.names))
	for name, id := range n.names {
		m[id] = name
	}
	return m
}

// Wire connects components according to the given wire descriptions. It stops
// at the first error.
//
func (n *Netlist) Wire(wires ...string) error {
	for _, w := range wires {
		ws, err := n.expand(w)
		if err != nil {
			return errors.Wrap(err, w)
		}
		for _, p := range ws {
			if err := n.e.ConnectComponent(p[0].id, p[0].slot, p[0].typ, p[1].id, p[1].slot, p[1].typ, false); err != nil {
				return errors.Wrap(err, w)
			}
		}
	}
	return nil
}

type pin struct {
	id   ID
	typ  SlotType
	slot int
}

func (n *Netlist) expand(w string) ([][2]pin, error) {
	i := strings.Index(w, "->")
	if i < 0 {
		return nil, errors.New("missing ->")
	}
	src, err := n.pins(strings.TrimSpace(w[:i]))
	if err != nil {
		return nil, err
	}
	dst, err := n.pins(strings.TrimSpace(w[i+2:]))
	if err != nil {
		return nil, err
	}
	var r [][2]pin
	switch {
	case len(src) == len(dst):
		// many to many
		for i := range src {
			r = append(r, [2]pin{src[i], dst[i]})
		}
	case len(src) == 1:
		for _, d := range dst {
			r = append(r, [2]pin{src[0], d})
		}
	case len(dst) == 1:
		for _, s := range src {
			r = append(r, [2]pin{s, dst[0]})
		}
	default:
		return nil, errors.Errorf("pin count mismatch: %d -> %d", len(src), len(dst))
	}
	return r, nil
}

func (n *Netlist) pins(s string) ([]pin, error) {
	i := strings.IndexByte(s, '.')
	if i < 0 {
		return nil, errors.Errorf("invalid pin %q", s)
	}
	name, p := s[:i], s[i+1:]
	id, ok := n.names[name]
	if !ok {
		return nil, errors.Wrap(ErrComponentNotFound, name)
	}
	var typ SlotType
	switch {
	case strings.HasPrefix(p, "in["):
		typ, p = InputSlot, p[2:]
	case strings.HasPrefix(p, "out["):
		typ, p = OutputSlot, p[3:]
	default:
		def, ok := n.e.ComponentDefinition(id)
		if !ok {
			return nil, errors.Wrap(ErrComponentNotFound, name)
		}
		for _, t := range [2]SlotType{InputSlot, OutputSlot} {
			for i, sn := range def.slots(t).Names {
				if sn == p {
					return []pin{{id, t, i}}, nil
				}
			}
		}
		return nil, errors.Errorf("%s has no pin named %q", def.Name, p)
	}
	start, end, err := expandRange(p)
	if err != nil {
		return nil, errors.Wrap(err, s)
	}
	r := make([]pin, 0, end-start+1)
	for i := start; i <= end; i++ {
		r = append(r, pin{id, typ, i})
	}
	return r, nil
}

// expandRange parses "[i]" or "[i..j]".
//
func expandRange(s string) (start, end int, err error) {
	if len(s) < 3 || s[0] != '[' || s[len(s)-1] != ']' {
		return 0, 0, errors.Errorf("invalid slot index %q", s)
	}
	s = s[1 : len(s)-1]
	i := strings.Index(s, "..")
	if i < 0 {
		start, err = strconv.Atoi(s)
		return start, start, err
	}
	if start, err = strconv.Atoi(s[:i]); err != nil {
		return 0, 0, err
	}
	if end, err = strconv.Atoi(s[i+2:]); err != nil {
		return 0, 0, err
	}
	if end < start {
		return 0, 0, errors.Errorf("invalid bus range [%d..%d]", start, end)
	}
	return start, end, nil
}
