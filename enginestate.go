// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package logicsim

import "sort"

// EngineState is the authoritative component graph of an engine: components
// and nets indexed by id.
//
// Every component belongs to exactly one net in Nets, and two components share
// a net if and only if they are joined by a path of wires.
//
type EngineState struct {
	Components map[ID]*Component
	Nets       map[ID]*Net
}

func newEngineState() *EngineState {
	return &EngineState{
		Components: make(map[ID]*Component),
		Nets:       make(map[ID]*Net),
	}
}

// add inserts c into a new singleton net netID.
//
func (s *EngineState) add(c *Component, netID ID) {
	n := NewNet(netID)
	n.AddComponent(c.ID)
	c.NetID = netID
	s.Components[c.ID] = c
	s.Nets[netID] = n
}

// remove erases c from the component map and its net. The net is deleted if it
// becomes empty.
//
func (s *EngineState) remove(c *Component) {
	delete(s.Components, c.ID)
	if n, ok := s.Nets[c.NetID]; ok {
		n.RemoveComponent(c.ID)
		if n.Size() == 0 {
			delete(s.Nets, n.ID)
		}
	}
}

// merge joins the nets of a and b, the smaller being absorbed into the larger.
// It returns false if they were already in the same net.
//
func (s *EngineState) merge(a, b *Component) bool {
	if a.NetID == b.NetID {
		return false
	}
	na, nb := s.Nets[a.NetID], s.Nets[b.NetID]
	if na.Size() < nb.Size() {
		na, nb = nb, na
	}
	for _, id := range nb.components {
		s.Components[id].NetID = na.ID
	}
	na.Join(nb)
	delete(s.Nets, nb.ID)
	return true
}

// recompute rebuilds the nets containing the given components by walking the
// wiring from each of their members. A net can split into several: the first
// group found keeps the lowest of the previous net ids, further groups reuse
// the remaining ids then get fresh ones from newID.
//
// It returns true if net membership changed.
//
func (s *EngineState) recompute(seeds []ID, newID func() ID) bool {
	var (
		oldIDs  []ID
		members []ID
		seen    = make(map[ID]bool)
		before  = make(map[ID]ID)
	)
	for _, id := range seeds {
		c, ok := s.Components[id]
		if !ok || seen[c.NetID] {
			continue
		}
		seen[c.NetID] = true
		n, ok := s.Nets[c.NetID]
		if !ok {
			continue
		}
		oldIDs = append(oldIDs, n.ID)
		members = append(members, n.components...)
	}
	sort.Slice(oldIDs, func(i, j int) bool { return oldIDs[i] < oldIDs[j] })
	for _, id := range members {
		before[id] = s.Components[id].NetID
	}

	var groups [][]ID
	visited := make(map[ID]bool, len(members))
	for _, id := range members {
		if visited[id] {
			continue
		}
		visited[id] = true
		group := []ID{id}
		for i := 0; i < len(group); i++ {
			for _, p := range s.Components[group[i]].Peers() {
				if !visited[p] {
					if _, ok := s.Components[p]; ok {
						visited[p] = true
						group = append(group, p)
					}
				}
			}
		}
		groups = append(groups, group)
	}

	for _, id := range oldIDs {
		delete(s.Nets, id)
	}
	changed := len(groups) != len(oldIDs)
	for i, g := range groups {
		var nid ID
		if i < len(oldIDs) {
			nid = oldIDs[i]
		} else {
			nid = newID()
		}
		n := NewNet(nid)
		n.SetComponents(g)
		s.Nets[nid] = n
		for _, id := range g {
			if before[id] != nid {
				changed = true
			}
			s.Components[id].NetID = nid
		}
	}
	return changed
}
