/*
 * root.go, part of dockeval.
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

// Package cli implements the evalgen command.
package cli

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/rmera/dockeval/internal/config"
	"github.com/rmera/dockeval/internal/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Version is set at build time.
var Version = "dev"

// rootOptions holds the flags that are not configuration keys.
type rootOptions struct {
	configPath string
}

// app carries what PersistentPreRunE initialized to the command.
type app struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewRootCommand returns the evalgen command. It evaluates the generation
// directory selected by --result_root and --exp_name with the configured modes.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}
	a := &app{}
	cmd := &cobra.Command{
		Use:   "evalgen",
		Short: "Evaluate a set of generated molecules against their pockets",
		Long: "evalgen computes per-molecule metrics, the similarity of each generated molecule to\n" +
			"the reference ligand of its pocket and its vina docking scores, and writes them\n" +
			"as CSV tables in the generation directory.",
		Version:       Version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(opts.configPath, cmd.Flags())
			if err != nil {
				return err
			}
			logger, err := logging.New(cfg.Log)
			if err != nil {
				return errors.Wrap(err, "initializing logger")
			}
			a.cfg, a.logger = cfg, logger
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			defer a.logger.Sync() //nolint:errcheck
			return Run(cmd.Context(), a.cfg, a.logger, cmd.ErrOrStderr())
		},
	}
	f := cmd.Flags()
	f.StringVarP(&opts.configPath, "config", "c", "", "YAML configuration file")
	f.String("result_root", config.DefaultResultRoot, "directory holding the generation directories")
	f.String("exp_name", config.DefaultExpName, "prefix of the generation directory to evaluate")
	f.String("protein_root", config.DefaultProteinRoot, "directory of the <data_id>_pro.pdb receptors")
	f.String("ref_root", config.DefaultRefRoot, "directory of the <data_id>_mol.sdf reference ligands")
	f.Int("exhaustiveness", config.DefaultExhaustiveness, "vina search exhaustiveness")
	f.Int("workers", config.DefaultWorkers, "number of molecules evaluated at the same time")
	f.String("layout", config.LayoutFlat, "layout of the SDF directory: flat or baseline")
	f.String("log_level", "info", "log level: debug, info, warn or error")
	f.Duration("timeout", 0, "time limit of each vina run, none if 0")
	return cmd
}

// Execute runs the evalgen command with the process arguments.
func Execute(ctx context.Context) error {
	return NewRootCommand().ExecuteContext(ctx)
}
