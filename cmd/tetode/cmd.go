/*
Copyright © 2026 the tetode authors.
This file is part of tetode.

tetode is free software: you can redistribute it and/or modify it
under the terms of the MIT license: a short, permissive license
granting free use, copying, modification, and distribution, provided
this copyright notice is preserved. tetode is distributed WITHOUT ANY
WARRANTY, express or implied.
*/

package main

import (
	"fmt"
	"os"

	"tetode/errs"
	"tetode/tetode"

	"github.com/lnashier/viper"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// cfg holds configuration information, in the manner of inmaputil.Cfg.
var cfg *viper.Viper

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	options = []struct {
		name, usage, shorthand string
		defaultVal             interface{}
		flagsets               []*pflag.FlagSet
	}{
		{
			name:       "config",
			usage:      "config specifies the configuration file location.",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{root.PersistentFlags()},
		},
		{
			name:       "scenario",
			usage:      "scenario specifies the path to the scenario JSON file describing the model and mesh.",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name:       "runto",
			usage:      "runto specifies the simulation time, in seconds, to run to.",
			defaultVal: 1.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name:       "checkpointOut",
			usage:      "checkpointOut, if set, writes a checkpoint file to this path after the run completes.",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name:       "checkpointIn",
			usage:      "checkpointIn, if set, restores from this checkpoint file before running.",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name:       "atol",
			usage:      "atol overrides the absolute tolerance: its first value is applied uniformly to every state-vector entry.",
			defaultVal: []float64{},
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
	}

	cfg = viper.New()
	cfg.SetEnvPrefix("TETODE")
	cfg.AutomaticEnv()

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 {
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch v := option.defaultVal.(type) {
			case string:
				set.String(option.name, v, option.usage)
			case float64:
				set.Float64(option.name, v, option.usage)
			case bool:
				set.Bool(option.name, v, option.usage)
			case []float64:
				set.Float64Slice(option.name, v, option.usage)
			default:
				panic("tetode: invalid option default type")
			}
			cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}

	root.AddCommand(versionCmd)
	root.AddCommand(runCmd)
}

// setConfig finds and reads in the configuration file, if there is one.
func setConfig() error {
	if cfgpath := cfg.GetString("config"); cfgpath != "" {
		cfg.SetConfigFile(cfgpath)
		if err := cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("tetode: problem reading configuration file: %w", err)
		}
	}
	return nil
}

// root is the main command.
var root = &cobra.Command{
	Use:   "tetode",
	Short: "A deterministic reaction-diffusion simulation engine on tetrahedral meshes.",
	Long: `tetode drives a tetode.Engine from a JSON scenario file describing a
model catalogue and mesh geometry.

Configuration can be changed by using a configuration file (--config), by
using command-line arguments, or by setting environment variables in the
format 'TETODE_var'.`,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:               "version",
	Short:             "Print the version number",
	DisableAutoGenTag: true,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Println("tetode v0.1.0")
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a scenario to completion.",
	Long: `run loads the scenario described by --scenario, optionally restores
a checkpoint, advances the engine to --runto, reports the resulting state,
and optionally writes a checkpoint.`,
	DisableAutoGenTag: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		atol, err := cast.ToFloat64SliceE(cfg.Get("atol"))
		if err != nil {
			return fmt.Errorf("tetode: reading 'atol': %w", err)
		}
		return runScenario(
			cmd,
			cfg.GetString("scenario"),
			cfg.GetFloat64("runto"),
			cfg.GetString("checkpointIn"),
			cfg.GetString("checkpointOut"),
			atol,
		)
	},
}

func runScenario(cmd *cobra.Command, scenarioPath string, runTo float64, checkpointIn, checkpointOut string, atolOverride []float64) error {
	if scenarioPath == "" {
		return fmt.Errorf("tetode: --scenario is required")
	}
	sc, err := loadScenario(scenarioPath)
	if err != nil {
		return err
	}
	cat, mesh, err := sc.build()
	if err != nil {
		return err
	}

	e := tetode.New(tetode.WriteLog(cmd.OutOrStdout()))
	if err := e.Setup(cat, mesh); err != nil {
		return err
	}
	if sc.RTol > 0 || len(atolOverride) > 0 {
		atol := make([]float64, e.Len())
		perEq := sc.RTol
		if len(atolOverride) > 0 {
			perEq = atolOverride[0]
		}
		for i := range atol {
			atol[i] = perEq
		}
		if err := e.SetTolerances(sc.RTol, atol); err != nil {
			return err
		}
	}
	if sc.MaxSteps > 0 {
		if err := e.SetMaxSteps(sc.MaxSteps); err != nil {
			return err
		}
	}

	if checkpointIn != "" {
		if err := e.Restore(checkpointIn); err != nil {
			return err
		}
	} else {
		if err := applyInitialCounts(e, sc.InitialCounts); err != nil {
			return err
		}
	}

	if err := e.Run(runTo); err != nil {
		if errs.KindOf(err) == errs.IntegrationFailure {
			cmd.PrintErrf("tetode: integration failed before reaching t=%g: %v\n", runTo, err)
		}
		return err
	}

	cmd.Printf("reached t=%g\n", e.Time())

	if checkpointOut != "" {
		if err := e.Checkpoint(checkpointOut); err != nil {
			return err
		}
		cmd.Printf("wrote checkpoint to %s\n", checkpointOut)
	}
	return nil
}

func applyInitialCounts(e *tetode.Engine, counts []initialCountConfig) error {
	for _, c := range counts {
		switch {
		case c.Comp != nil:
			if err := e.SetCompCount(*c.Comp, c.Species, c.Count); err != nil {
				return err
			}
		case c.Patch != nil:
			if err := e.SetPatchCount(*c.Patch, c.Species, c.Count); err != nil {
				return err
			}
		case c.Tet != nil:
			if err := e.SetTetCount(*c.Tet, c.Species, c.Count); err != nil {
				return err
			}
		case c.Tri != nil:
			if err := e.SetTriCount(*c.Tri, c.Species, c.Count); err != nil {
				return err
			}
		default:
			return fmt.Errorf("tetode: initial count for species %q specifies neither comp, patch, tet, nor tri", c.Species)
		}
	}
	return nil
}

// execute runs the root command and reports errors to stderr.
func execute() {
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
