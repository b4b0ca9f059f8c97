// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/db47h/logicsim"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newCatalogCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "List the built-in component definitions by category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := a.catalog()
			if err != nil {
				return err
			}
			tree := cat.Tree()
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, c := range cat.Categories() {
				fmt.Fprintf(w, "%s\n", c)
				for _, d := range tree[c] {
					fmt.Fprintf(w, "  %s\t%s\t%s\t%s\n", d.Name, slots(d.Inputs), slots(d.Outputs), d.Hash())
				}
			}
			return errors.Wrap(w.Flush(), "write catalog")
		},
	}
}

func slots(s logicsim.SlotsInfo) string {
	r := "(" + strings.Join(s.Names, ", ") + ")"
	if s.Resizeable {
		r += "..."
	}
	return r
}

// lookup returns the catalog definition named name, case insensitively.
//
func lookup(cat *logicsim.Catalog, name string) (*logicsim.Definition, error) {
	for _, ds := range cat.Tree() {
		for _, d := range ds {
			if strings.EqualFold(d.Name, name) {
				return d, nil
			}
		}
	}
	return nil, errors.Errorf("no definition named %q", name)
}
