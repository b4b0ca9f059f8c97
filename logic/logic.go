// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package logic implements the four-valued logic used on component slots.
//
// HighZ is the state of a non-driving (tri-state) output. When read as a gate
// input, HighZ behaves like Unknown.
//
package logic

// State is the logic level of a single slot.
//
type State uint8

// Logic levels.
//
const (
	Low State = iota
	High
	Unknown
	HighZ
)

var names = [...]string{"0", "1", "X", "Z"}

func (s State) String() string {
	if int(s) < len(names) {
		return names[s]
	}
	return "?"
}

// FromBool returns High for true, Low otherwise.
//
func FromBool(b bool) State {
	if b {
		return High
	}
	return Low
}

// Bool returns true if s is High.
//
func (s State) Bool() bool { return s == High }

// IsDefined returns true for Low and High.
//
func (s State) IsDefined() bool { return s == Low || s == High }

// Not returns the complement of s. Unknown and HighZ yield Unknown.
//
func Not(s State) State {
	switch s {
	case Low:
		return High
	case High:
		return Low
	}
	return Unknown
}

// And returns the conjunction of all values. Any Low forces Low. An empty
// argument list yields High.
//
func And(vs ...State) State {
	r := High
	for _, v := range vs {
		switch v {
		case Low:
			return Low
		case High:
		default:
			r = Unknown
		}
	}
	return r
}

// Or returns the disjunction of all values. Any High forces High. An empty
// argument list yields Low.
//
func Or(vs ...State) State {
	r := Low
	for _, v := range vs {
		switch v {
		case High:
			return High
		case Low:
		default:
			r = Unknown
		}
	}
	return r
}

// Xor returns the parity of all values, or Unknown if any value is not
// defined.
//
func Xor(vs ...State) State {
	r := Low
	for _, v := range vs {
		switch v {
		case High:
			r = Not(r)
		case Low:
		default:
			return Unknown
		}
	}
	return r
}
