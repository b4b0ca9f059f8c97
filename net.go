// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package logicsim

// A Net is a group of electrically joined components. It is a plain container:
// callers are responsible for keeping it consistent with the wiring.
//
type Net struct {
	ID         ID
	components []ID
}

// NewNet returns an empty net.
//
func NewNet(id ID) *Net {
	return &Net{ID: id}
}

// Join moves all members of other into n. other is left empty.
//
func (n *Net) Join(other *Net) {
	n.components = append(n.components, other.components...)
	other.Clear()
}

// AddComponent appends id to the members of n.
//
func (n *Net) AddComponent(id ID) {
	n.components = append(n.components, id)
}

// AddComponents appends ids to the members of n.
//
func (n *Net) AddComponents(ids ...ID) {
	n.components = append(n.components, ids...)
}

// RemoveComponent removes id from n.
//
func (n *Net) RemoveComponent(id ID) {
	for i, c := range n.components {
		if c == id {
			n.components = append(n.components[:i:i], n.components[i+1:]...)
			return
		}
	}
}

// RemoveComponents removes all ids from n.
//
func (n *Net) RemoveComponents(ids ...ID) {
	rm := make(map[ID]bool, len(ids))
	for _, id := range ids {
		rm[id] = true
	}
	kept := make([]ID, 0, len(n.components))
	for _, c := range n.components {
		if !rm[c] {
			kept = append(kept, c)
		}
	}
	n.components = kept
}

// SetComponents replaces the members of n.
//
func (n *Net) SetComponents(ids []ID) {
	n.components = append([]ID(nil), ids...)
}

// Clear removes all members.
//
func (n *Net) Clear() { n.components = nil }

// Size returns the member count.
//
func (n *Net) Size() int { return len(n.components) }

// Components returns a copy of the member list.
//
func (n *Net) Components() []ID {
	return append([]ID(nil), n.components...)
}

// Contains returns true if id is a member of n.
//
func (n *Net) Contains(id ID) bool {
	for _, c := range n.components {
		if c == id {
			return true
		}
	}
	return false
}
