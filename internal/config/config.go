/*
 * config.go, part of dockeval.
 *
 *
 * Copyright 2024 Raul Mera <rmera{at}chemDOThelsinkiDOTfi>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 *
 */

// Package config provides configuration loading, defaults, and validation for
// an evaluation run.
package config

import (
	"time"

	"github.com/cockroachdb/errors"
	"github.com/rmera/dockeval/internal/logging"
	"github.com/samber/lo"
)

// Evaluation modes.
const (
	ModePerGen = "per_gen"
	ModeSimRef = "sim_ref"
	ModeVina   = "vina"
	ModePerGT  = "per_gt"
)

// Molecule directory layouts.
const (
	LayoutFlat     = "flat"     // SDF/<filename>, one per manifest row
	LayoutBaseline = "baseline" // SDF/<pocket>/<filename>
)

var knownModes = []string{ModePerGen, ModeSimRef, ModeVina, ModePerGT}

// Config is the configuration of one evaluation run.
type Config struct {
	ResultRoot     string   `mapstructure:"result_root" yaml:"result_root"`
	ExpName        string   `mapstructure:"exp_name" yaml:"exp_name"`
	ProteinRoot    string   `mapstructure:"protein_root" yaml:"protein_root"`
	RefRoot        string   `mapstructure:"ref_root" yaml:"ref_root"`
	Exhaustiveness int      `mapstructure:"exhaustiveness" yaml:"exhaustiveness"`
	Workers        int      `mapstructure:"workers" yaml:"workers"`
	Modes          []string `mapstructure:"modes" yaml:"modes"`
	Layout         string   `mapstructure:"layout" yaml:"layout"`
	// Manifest is the name of the manifest file inside the generation directory.
	Manifest   string `mapstructure:"manifest" yaml:"manifest"`
	MaxMatches int    `mapstructure:"max_matches" yaml:"max_matches"`

	Dock    DockConfig     `mapstructure:"dock" yaml:"dock"`
	Dataset DatasetConfig  `mapstructure:"dataset" yaml:"dataset"`
	Log     logging.Config `mapstructure:"log" yaml:"log"`
}

// DockConfig holds the settings of the external docking programs.
type DockConfig struct {
	VinaCommand   string `mapstructure:"vina_command" yaml:"vina_command"`
	ObabelCommand string `mapstructure:"obabel_command" yaml:"obabel_command"`
	// Timeout for each external program run. 0 means no timeout.
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
	// SizeFactor scales the ligand extent to get the box size. 0 means a fixed 20 A box.
	SizeFactor  float64 `mapstructure:"size_factor" yaml:"size_factor"`
	Buffer      float64 `mapstructure:"buffer" yaml:"buffer"`
	Seed        int64   `mapstructure:"seed" yaml:"seed"`
	CPU         int     `mapstructure:"cpu" yaml:"cpu"`
	TmpDir      string  `mapstructure:"tmp_dir" yaml:"tmp_dir"`
	KeepWorkDir bool    `mapstructure:"keep_work_dir" yaml:"keep_work_dir"`
}

// DatasetConfig locates the test split used by the per_gt mode.
type DatasetConfig struct {
	// Root contains the <data_id>_mol.sdf files.
	Root string `mapstructure:"root" yaml:"root"`
	// SplitFile is a CSV file with a data_id column listing the test split.
	SplitFile string `mapstructure:"split_file" yaml:"split_file"`
}

// Default values.
const (
	DefaultResultRoot     = "outputs_paper/growing_csd"
	DefaultExpName        = "msel_base"
	DefaultProteinRoot    = "data/csd/files/proteins"
	DefaultRefRoot        = "data/csd/files/mols"
	DefaultExhaustiveness = 16
	DefaultWorkers        = 64
	DefaultManifest       = "gen_info.csv"
	DefaultMaxMatches     = 30000
	DefaultVinaCommand    = "vina"
	DefaultObabelCommand  = "obabel"
	DefaultSizeFactor     = 1.0
	DefaultBuffer         = 5.0
	DefaultDockCPU        = 1
)

// DefaultModes returns the modes run when none are configured.
func DefaultModes() []string {
	return []string{ModePerGen, ModeSimRef, ModeVina}
}

// ApplyDefaults fills the empty fields of cfg that have no meaningful zero.
// Numeric settings where 0 is a user error (exhaustiveness, workers) are
// left alone, so Validate rejects them.
func ApplyDefaults(cfg *Config) {
	if len(cfg.Modes) == 0 {
		cfg.Modes = DefaultModes()
	}
	if cfg.Layout == "" {
		cfg.Layout = LayoutFlat
	}
	if cfg.Manifest == "" {
		cfg.Manifest = DefaultManifest
	}
	if cfg.MaxMatches == 0 {
		cfg.MaxMatches = DefaultMaxMatches
	}
	if cfg.Dock.VinaCommand == "" {
		cfg.Dock.VinaCommand = DefaultVinaCommand
	}
	if cfg.Dock.ObabelCommand == "" {
		cfg.Dock.ObabelCommand = DefaultObabelCommand
	}
	if cfg.Dock.CPU == 0 {
		cfg.Dock.CPU = DefaultDockCPU
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}

// Validate checks that cfg describes a runnable evaluation.
func (c *Config) Validate() error {
	if c.Exhaustiveness < 1 {
		return errors.Newf("exhaustiveness must be at least 1, got %d", c.Exhaustiveness)
	}
	if c.Workers < 1 {
		return errors.Newf("workers must be at least 1, got %d", c.Workers)
	}
	if c.MaxMatches < 1 {
		return errors.Newf("max_matches must be at least 1, got %d", c.MaxMatches)
	}
	if unknown, _ := lo.Difference(c.Modes, knownModes); len(unknown) > 0 {
		return errors.Newf("unknown modes %v, valid modes are %v", unknown, knownModes)
	}
	if c.Layout != LayoutFlat && c.Layout != LayoutBaseline {
		return errors.Newf("layout must be %q or %q, got %q", LayoutFlat, LayoutBaseline, c.Layout)
	}
	if c.ResultRoot == "" {
		return errors.New("result_root is required")
	}
	if c.HasMode(ModeVina) && c.ProteinRoot == "" {
		return errors.New("protein_root is required by the vina mode")
	}
	if c.HasMode(ModeSimRef) && c.RefRoot == "" {
		return errors.New("ref_root is required by the sim_ref mode")
	}
	if c.HasMode(ModePerGT) && (c.Dataset.Root == "" || c.Dataset.SplitFile == "") {
		return errors.New("dataset.root and dataset.split_file are required by the per_gt mode")
	}
	if c.Dock.SizeFactor < 0 || c.Dock.Buffer < 0 {
		return errors.Newf("dock.size_factor and dock.buffer can't be negative (%g, %g)", c.Dock.SizeFactor, c.Dock.Buffer)
	}
	if c.Dock.Timeout < 0 {
		return errors.Newf("dock.timeout can't be negative, got %s", c.Dock.Timeout)
	}
	return nil
}

// HasMode returns true if mode is among the configured modes.
func (c *Config) HasMode(mode string) bool {
	return lo.Contains(c.Modes, mode)
}
