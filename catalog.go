// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package logicsim

import (
	"sort"
	"sync"

	"github.com/pkg/errors"
)

// Catalog is a registry of component definitions, deduplicated by content
// hash. Registered definitions are templates: they must not be modified.
//
// A Catalog is safe for concurrent use.
//
type Catalog struct {
	mu   sync.RWMutex
	defs map[DefinitionHash]*Definition
}

// NewCatalog returns an empty catalog.
//
func NewCatalog() *Catalog {
	return &Catalog{defs: make(map[DefinitionHash]*Definition)}
}

// Register validates def and adds a compiled copy of it to the catalog. def
// itself is never modified, so package level definitions may be registered
// by several catalogs concurrently. Registering a definition whose content is
// already known is a no-op returning the existing hash.
//
func (c *Catalog) Register(def *Definition) (DefinitionHash, error) {
	if def == nil {
		return 0, errors.New("nil definition")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if def.hash != 0 {
		if _, ok := c.defs[def.hash]; ok {
			return def.hash, nil
		}
	}
	tmpl := def.clone()
	tmpl.hash = 0
	if err := tmpl.compile(); err != nil {
		return 0, errors.Wrap(err, "register")
	}
	h, err := tmpl.contentHash()
	if err != nil {
		return 0, errors.Wrap(err, "register "+def.Name)
	}
	tmpl.hash = h
	if _, ok := c.defs[h]; !ok {
		c.defs[h] = tmpl
	}
	return h, nil
}

// template returns the registered definition for def, registering it if
// needed.
//
func (c *Catalog) template(def *Definition) (*Definition, error) {
	h, err := c.Register(def)
	if err != nil {
		return nil, err
	}
	d, _ := c.Definition(h)
	return d, nil
}

// Definition returns the definition registered with hash h.
//
func (c *Catalog) Definition(h DefinitionHash) (*Definition, bool) {
	c.mu.RLock()
	d, ok := c.defs[h]
	c.mu.RUnlock()
	return d, ok
}

// IsRegistered returns true if a definition with hash h is registered.
//
func (c *Catalog) IsRegistered(h DefinitionHash) bool {
	_, ok := c.Definition(h)
	return ok
}

// Len returns the number of registered definitions.
//
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.defs)
}

// Tree returns the registered definitions grouped by category. Definitions are
// sorted by name within each category.
//
func (c *Catalog) Tree() map[string][]*Definition {
	c.mu.RLock()
	t := make(map[string][]*Definition)
	for _, d := range c.defs {
		t[d.Category] = append(t[d.Category], d)
	}
	c.mu.RUnlock()
	for _, ds := range t {
		sort.Slice(ds, func(i, j int) bool {
			if ds[i].Name != ds[j].Name {
				return ds[i].Name < ds[j].Name
			}
			return ds[i].hash < ds[j].hash
		})
	}
	return t
}

// Categories returns the sorted list of categories.
//
func (c *Catalog) Categories() []string {
	c.mu.RLock()
	seen := make(map[string]bool)
	var cs []string
	for _, d := range c.defs {
		if !seen[d.Category] {
			seen[d.Category] = true
			cs = append(cs, d.Category)
		}
	}
	c.mu.RUnlock()
	sort.Strings(cs)
	return cs
}
