// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package logic_test

import (
	"testing"
	"testing/quick"

	"github.com/db47h/logicsim/logic"
)

const (
	L = logic.Low
	H = logic.High
	X = logic.Unknown
	Z = logic.HighZ
)

func TestOps(t *testing.T) {
	td := []struct {
		name string
		fn   func(...logic.State) logic.State
		in   []logic.State
		out  logic.State
	}{
		{"and_empty", logic.And, nil, H},
		{"and_low_wins", logic.And, []logic.State{X, L, Z}, L},
		{"and_high", logic.And, []logic.State{H, H}, H},
		{"and_unknown", logic.And, []logic.State{H, X}, X},
		{"and_highz", logic.And, []logic.State{H, Z}, X},
		{"or_empty", logic.Or, nil, L},
		{"or_high_wins", logic.Or, []logic.State{X, H, Z}, H},
		{"or_low", logic.Or, []logic.State{L, L}, L},
		{"or_unknown", logic.Or, []logic.State{L, Z}, X},
		{"xor_parity", logic.Xor, []logic.State{H, H, H}, H},
		{"xor_even", logic.Xor, []logic.State{H, L, H}, L},
		{"xor_unknown", logic.Xor, []logic.State{H, X}, X},
	}
	for _, d := range td {
		t.Run(d.name, func(t *testing.T) {
			if got := d.fn(d.in...); got != d.out {
				t.Errorf("%v = %v, got %v", d.in, d.out, got)
			}
		})
	}
}

func TestNot(t *testing.T) {
	for in, out := range map[logic.State]logic.State{L: H, H: L, X: X, Z: X} {
		if got := logic.Not(in); got != out {
			t.Errorf("Not(%v) = %v, got %v", in, out, got)
		}
	}
}

func TestBoolOps(t *testing.T) {
	f := func(a, b bool) bool {
		sa, sb := logic.FromBool(a), logic.FromBool(b)
		return logic.And(sa, sb).Bool() == (a && b) &&
			logic.Or(sa, sb).Bool() == (a || b) &&
			logic.Xor(sa, sb).Bool() == (a != b) &&
			logic.Not(sa).Bool() == !a
	}
	if err := quick.Check(f, nil); err != nil {
		t.Fatal(err)
	}
}

func TestString(t *testing.T) {
	if s := L.String() + H.String() + X.String() + Z.String(); s != "01XZ" {
		t.Errorf("expected 01XZ, got %s", s)
	}
}
