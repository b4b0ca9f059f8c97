// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package main

import (
	"fmt"
	"log/slog"

	"github.com/danielorbach/go-component"
	"github.com/db47h/logicsim"
	"github.com/db47h/logicsim/hwlib"
	"github.com/spf13/cobra"
)

// Version is the logicsim version.
const Version = "0.1.0"

// app carries the state shared by all subcommands.
//
type app struct {
	configDir string
	cfg       config
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "logicsim",
		Short:         "logicsim is a discrete-event digital logic simulator",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(a.configDir)
			if err != nil {
				return err
			}
			a.cfg = cfg
			logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: cfg.LogLevel}))
			cmd.SetContext(component.InjectLogger(cmd.Context(), logger))
			return nil
		},
	}
	root.PersistentFlags().StringVar(&a.configDir, "config-dir", "", "directory holding logicsim.yaml")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newCatalogCmd(a))
	root.AddCommand(newTruthTableCmd(a))
	root.AddCommand(newRunCmd(a))
	return root
}

// catalog returns a catalog holding the built-in definitions.
//
func (a *app) catalog() (*logicsim.Catalog, error) {
	cat := logicsim.NewCatalog()
	if err := hwlib.Register(cat); err != nil {
		return nil, err
	}
	return cat, nil
}

func (a *app) engineOptions() []logicsim.Option {
	return []logicsim.Option{logicsim.WithStartPaused(a.cfg.StartPaused)}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the logicsim version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "logicsim", Version)
		},
	}
}
