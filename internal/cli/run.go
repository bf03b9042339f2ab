/*
 * run.go, part of dockeval.
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

package cli

import (
	"context"
	"io"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/rmera/dockeval/dock"
	"github.com/rmera/dockeval/internal/batch"
	"github.com/rmera/dockeval/internal/config"
	"github.com/rmera/dockeval/internal/evaluate"
	"github.com/rmera/dockeval/internal/loader"
	"github.com/rmera/dockeval/internal/manifest"
	"github.com/rmera/dockeval/internal/report"
	"go.uber.org/zap"
)

// Output tables, written in the generation directory.
const (
	PerGenTable = "per_gen.csv"
	RefTable    = "ref.csv"
	VinaTable   = "vina.csv"
	PerGTTable  = "per_gt.csv"
)

// pipeline holds the state shared by the modes of one run.
type pipeline struct {
	cfg      *config.Config
	logger   *zap.Logger
	progress io.Writer
	genPath  string
	manifest *manifest.Manifest
	entries  []loader.Entry
	inputs   []evaluate.DockInput
}

// Run evaluates the generation directory selected by cfg, running each
// configured mode and writing its table. Per-molecule failures only show as
// empty cells. Errors reading the inputs or writing a table are returned.
// progress receives the progress bars, it may be nil.
func Run(ctx context.Context, cfg *config.Config, logger *zap.Logger, progress io.Writer) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	genPath, err := loader.ResolveGenPath(cfg.ResultRoot, cfg.ExpName)
	if err != nil {
		return err
	}
	logger.Info("evaluating", zap.String("gen_path", genPath), zap.Strings("modes", cfg.Modes))
	P := &pipeline{cfg: cfg, logger: logger, progress: progress, genPath: genPath}
	steps := []struct {
		mode string
		run  func(context.Context) error
	}{
		{config.ModePerGen, P.perGen},
		{config.ModeSimRef, P.simRef},
		{config.ModeVina, P.vina},
		{config.ModePerGT, P.perGT},
	}
	for _, s := range steps {
		if !cfg.HasMode(s.mode) {
			continue
		}
		if err := s.run(ctx); err != nil {
			return errors.Wrapf(err, "mode %s", s.mode)
		}
	}
	return nil
}

func (P *pipeline) batchOptions(desc string) *batch.Options {
	return &batch.Options{Workers: P.cfg.Workers, Progress: P.progress, Description: desc, Logger: P.logger}
}

func (P *pipeline) loadManifest() (*manifest.Manifest, error) {
	if P.manifest != nil {
		return P.manifest, nil
	}
	M, err := manifest.ReadGenInfo(filepath.Join(P.genPath, P.cfg.Manifest))
	if err != nil {
		return nil, err
	}
	groups := M.GroupByDataID()
	P.logger.Info("manifest loaded", zap.Int("records", M.Len()), zap.Int("pockets", len(groups)))
	for _, id := range M.DataIDs() {
		P.logger.Debug("pocket", zap.String("data_id", id), zap.Int("molecules", len(groups[id])))
	}
	P.manifest = M
	return M, nil
}

// loadEntries reads the generated structures once for all the modes.
func (P *pipeline) loadEntries(ctx context.Context) ([]loader.Entry, error) {
	if P.entries != nil {
		return P.entries, nil
	}
	var src loader.Source
	switch P.cfg.Layout {
	case config.LayoutBaseline:
		src = &loader.BaselineSource{GenPath: P.genPath, Workers: P.cfg.Workers, Logger: P.logger}
	default:
		M, err := P.loadManifest()
		if err != nil {
			return nil, err
		}
		src = &loader.ManifestSource{GenPath: P.genPath, Manifest: M, Workers: P.cfg.Workers, Logger: P.logger}
	}
	entries, err := src.Load(ctx)
	if err != nil {
		return nil, err
	}
	P.logger.Info("loaded molecules", zap.String("from", src.Name()), zap.Int("molecules", len(entries)),
		zap.Int("unparseable", loader.Failed(entries)))
	P.entries = entries
	return entries, nil
}

func (P *pipeline) loadInputs(ctx context.Context) ([]evaluate.DockInput, error) {
	if P.inputs != nil {
		return P.inputs, nil
	}
	entries, err := P.loadEntries(ctx)
	if err != nil {
		return nil, err
	}
	M, err := P.loadManifest()
	if err != nil {
		return nil, err
	}
	inputs, err := evaluate.BuildInputs(entries, M)
	if err != nil {
		return nil, err
	}
	P.inputs = inputs
	return inputs, nil
}

func writeTable[R report.Row](P *pipeline, name string, header []string, rows []R) error {
	path := filepath.Join(P.genPath, name)
	if err := report.WriteTable(path, header, rows); err != nil {
		return err
	}
	P.logger.Info("table written", zap.String("path", path), zap.Int("rows", len(rows)))
	report.Log(P.logger, name, report.Summarize(header, rows))
	return nil
}

func (P *pipeline) metrics(ctx context.Context, entries []loader.Entry, table string) error {
	M := &evaluate.MetricsEvaluator{Logger: P.logger}
	rows, err := batch.Run(ctx, entries, M.Evaluate, P.batchOptions(table))
	if err != nil {
		return err
	}
	return writeTable(P, table, evaluate.MetricsHeader, rows)
}

func (P *pipeline) perGen(ctx context.Context) error {
	entries, err := P.loadEntries(ctx)
	if err != nil {
		return err
	}
	return P.metrics(ctx, entries, PerGenTable)
}

func (P *pipeline) perGT(ctx context.Context) error {
	src := &loader.DatasetSource{Root: P.cfg.Dataset.Root, SplitFile: P.cfg.Dataset.SplitFile, Workers: P.cfg.Workers, Logger: P.logger}
	entries, err := src.Load(ctx)
	if err != nil {
		return err
	}
	return P.metrics(ctx, entries, PerGTTable)
}

func (P *pipeline) simRef(ctx context.Context) error {
	inputs, err := P.loadInputs(ctx)
	if err != nil {
		return err
	}
	S := &evaluate.SimilarityEvaluator{
		GenPath:    P.genPath,
		RefRoot:    P.cfg.RefRoot,
		MaxMatches: P.cfg.MaxMatches,
		Logger:     P.logger,
	}
	rows, err := batch.Run(ctx, inputs, S.Evaluate, P.batchOptions(RefTable))
	if err != nil {
		return err
	}
	return writeTable(P, RefTable, evaluate.RefHeader, rows)
}

func (P *pipeline) vina(ctx context.Context) error {
	inputs, err := P.loadInputs(ctx)
	if err != nil {
		return err
	}
	dc := P.cfg.Dock
	D := &evaluate.DockingEvaluator{
		ProteinRoot:    P.cfg.ProteinRoot,
		Exhaustiveness: P.cfg.Exhaustiveness,
		Options: &dock.Options{
			VinaCommand:   dc.VinaCommand,
			ObabelCommand: dc.ObabelCommand,
			SizeFactor:    dc.SizeFactor,
			Buffer:        dc.Buffer,
			Seed:          dc.Seed,
			CPU:           dc.CPU,
			TmpDir:        dc.TmpDir,
			KeepWorkDir:   dc.KeepWorkDir,
			Timeout:       dc.Timeout,
			Logger:        P.logger.Named("dock"),
		},
		Logger: P.logger,
	}
	rows, err := batch.Run(ctx, inputs, D.Evaluate, P.batchOptions(VinaTable))
	if err != nil {
		return err
	}
	failed := 0
	for _, r := range rows {
		if r.Failed() {
			failed++
		}
	}
	P.logger.Info("docking done", zap.Int("molecules", len(rows)), zap.Int("failed", failed))
	return writeTable(P, VinaTable, evaluate.VinaHeader, rows)
}
