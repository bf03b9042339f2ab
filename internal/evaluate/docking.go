/*
 * docking.go, part of dockeval.
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

package evaluate

import (
	"context"
	"math"

	"github.com/cockroachdb/errors"
	chem "github.com/rmera/dockeval"
	"github.com/rmera/dockeval/dock"
	"go.uber.org/zap"
)

// VinaHeader is the header of the vina.csv table.
var VinaHeader = []string{"filename", "vina_score", "vina_min", "vina_pose_min", "vina_dock", "vina_pose_dock"}

// VinaResult holds the best result of each docking mode for one molecule.
// Affinities are in kcal/mol, NaN if the molecule could not be docked,
// in which case the poses are empty.
type VinaResult struct {
	Filename     string
	VinaScore    float64
	VinaMin      float64
	VinaPoseMin  string
	VinaDock     float64
	VinaPoseDock string
}

// Values returns the row of r in VinaHeader order.
func (r VinaResult) Values() []any {
	return []any{r.Filename, r.VinaScore, r.VinaMin, r.VinaPoseMin, r.VinaDock, r.VinaPoseDock}
}

// Failed returns true if r is the result of a failed evaluation.
func (r VinaResult) Failed() bool {
	return math.IsNaN(r.VinaScore)
}

func vinaSentinel(filename string) VinaResult {
	return VinaResult{Filename: filename, VinaScore: nan(), VinaMin: nan(), VinaDock: nan()}
}

// DockingTask runs the docking engine for one ligand-receptor pair.
type DockingTask interface {
	Run(ctx context.Context, mode dock.Mode, exhaustiveness int) ([]dock.Pose, error)
	Close() error
}

// TaskFactory builds the docking task of a molecule.
type TaskFactory func(mol *chem.Molecule, proteinFilename, proteinRoot string, o *dock.Options) (DockingTask, error)

// NewVinaTask is the TaskFactory running vina through dock.Task.
func NewVinaTask(mol *chem.Molecule, proteinFilename, proteinRoot string, o *dock.Options) (DockingTask, error) {
	t, err := dock.NewTaskFromGeneratedMol(mol, proteinFilename, proteinRoot, o)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// DockingEvaluator docks generated molecules into the receptors in ProteinRoot.
type DockingEvaluator struct {
	ProteinRoot    string
	Exhaustiveness int
	Options        *dock.Options
	NewTask        TaskFactory // NewVinaTask if nil
	Logger         *zap.Logger
}

func (D *DockingEvaluator) logger() *zap.Logger {
	if D.Logger == nil {
		return zap.NewNop()
	}
	return D.Logger
}

// Evaluate scores the given pose of in.Mol, minimizes it and docks it, keeping
// the first, best, result of each. Molecules that can't be parsed or contain a
// forbidden element are not docked. Any failure is logged with the filename and
// gives a result with NaN affinities and empty poses.
func (D *DockingEvaluator) Evaluate(ctx context.Context, in DockInput) (res VinaResult) {
	defer func() {
		if x := recover(); x != nil {
			D.logger().Warn("docking failed", zap.String("filename", in.Filename), zap.Error(panicErr(x)))
			res = vinaSentinel(in.Filename)
		}
	}()
	res, err := D.evaluate(ctx, in)
	if err != nil {
		D.logger().Warn("docking failed", zap.String("filename", in.Filename), zap.Error(err))
		return vinaSentinel(in.Filename)
	}
	return res
}

func (D *DockingEvaluator) evaluate(ctx context.Context, in DockInput) (VinaResult, error) {
	if err := validate(in.Filename, in.Mol); err != nil {
		return VinaResult{}, err
	}
	newTask := D.NewTask
	if newTask == nil {
		newTask = NewVinaTask
	}
	task, err := newTask(in.Mol, in.ProteinFilename, D.ProteinRoot, D.Options)
	if err != nil {
		return VinaResult{}, errors.Wrap(err, "creating docking task")
	}
	defer func() {
		if err := task.Close(); err != nil {
			D.logger().Debug("closing docking task", zap.String("filename", in.Filename), zap.Error(err))
		}
	}()
	var best [3]dock.Pose
	for i, mode := range []dock.Mode{dock.ScoreOnly, dock.Minimize, dock.Dock} {
		poses, err := task.Run(ctx, mode, D.Exhaustiveness)
		if err != nil {
			return VinaResult{}, errors.Wrapf(err, "%s", mode)
		}
		if len(poses) == 0 {
			return VinaResult{}, errors.Wrapf(dock.ErrNoResult, "%s", mode)
		}
		best[i] = poses[0]
	}
	return VinaResult{
		Filename:     in.Filename,
		VinaScore:    best[0].Affinity,
		VinaMin:      best[1].Affinity,
		VinaPoseMin:  best[1].Pose,
		VinaDock:     best[2].Affinity,
		VinaPoseDock: best[2].Pose,
	}, nil
}
