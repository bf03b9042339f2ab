/*
 * task.go, part of dockeval.
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

package dock

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	chem "github.com/rmera/dockeval"
	"go.uber.org/zap"
)

//Options contains the settings shared by all the docking tasks of a run.
type Options struct {
	VinaCommand   string
	ObabelCommand string
	//The box edge along each axis is the ligand extent times SizeFactor plus Buffer.
	//If SizeFactor is 0, a 20 A cube is used.
	SizeFactor  float64
	Buffer      float64
	Seed        int64
	CPU         int
	TmpDir      string //parent of the per-task working directories, the system default if empty
	KeepWorkDir bool
	Timeout     time.Duration //per vina or obabel run, no limit if 0
	Logger      *zap.Logger
}

//DefaultOptions returns the options used if none are given.
func DefaultOptions() *Options {
	return &Options{
		VinaCommand:   "vina",
		ObabelCommand: "obabel",
		SizeFactor:    1.0,
		Buffer:        5.0,
		CPU:           1,
		Logger:        zap.NewNop(),
	}
}

const defaultBoxSize = 20.0

//Task docks one ligand into one receptor. The ligand and receptor
//are prepared on the first Run, and reused for the following ones.
type Task struct {
	mol      *chem.Molecule
	receptor string
	box      Box
	wrkdir   string
	o        *Options
	vina     *VinaHandle
	prepOnce sync.Once
	prepErr  error
}

//NewTaskFromGeneratedMol builds a docking task for the generated molecule mol, against the
//receptor proteinRoot/proteinFilename. The search box is centered on the ligand.
//The caller must Close the task to remove its working directory.
func NewTaskFromGeneratedMol(mol *chem.Molecule, proteinFilename, proteinRoot string, o *Options) (*Task, error) {
	errid := "NewTaskFromGeneratedMol"
	if o == nil {
		o = DefaultOptions()
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	if mol == nil || mol.Coords == nil || mol.Len() == 0 {
		return nil, errors.Newf("%s: empty molecule", errid)
	}
	receptor, err := filepath.Abs(filepath.Join(proteinRoot, proteinFilename))
	if err != nil {
		return nil, errors.Wrap(err, errid)
	}
	if _, err := os.Stat(receptor); err != nil {
		return nil, errors.Wrapf(err, "%s: receptor", errid)
	}
	wrkdir, err := os.MkdirTemp(o.TmpDir, "dock-")
	if err != nil {
		return nil, errors.Wrapf(err, "%s: can't create working directory", errid)
	}
	T := &Task{mol: mol, receptor: receptor, wrkdir: wrkdir, o: o, box: BoxAround(mol, o.SizeFactor, o.Buffer)}
	T.vina = NewVinaHandle()
	T.vina.SetCommand(o.VinaCommand)
	T.vina.SetWorkDir(wrkdir)
	T.vina.SetnCPU(o.CPU)
	T.vina.SetSeed(o.Seed)
	T.vina.SetLogger(o.Logger)
	return T, nil
}

//BoxAround returns a box centered on the centroid of mol. The edges are the extent
//of the molecule along each axis times sizeFactor plus buffer, or 20 A if sizeFactor is 0.
func BoxAround(mol *chem.Molecule, sizeFactor, buffer float64) Box {
	var b Box
	cen := chem.Centroid(mol.Coords)
	min, max := chem.Extent(mol.Coords)
	for i := 0; i < 3; i++ {
		b.Center[i] = cen.At(0, i)
		if sizeFactor > 0 {
			b.Size[i] = (max.At(0, i)-min.At(0, i))*sizeFactor + buffer
		} else {
			b.Size[i] = defaultBoxSize
		}
	}
	return b
}

func (T *Task) WorkDir() string {
	return T.wrkdir
}

func (T *Task) context(ctx context.Context) (context.Context, context.CancelFunc) {
	if T.o.Timeout > 0 {
		return context.WithTimeout(ctx, T.o.Timeout)
	}
	return context.WithCancel(ctx)
}

func (T *Task) prepare(ctx context.Context) error {
	errid := "Task/prepare"
	if err := chem.MolFileWrite(filepath.Join(T.wrkdir, "ligand.sdf"), T.mol); err != nil {
		return errors.Wrap(err, errid)
	}
	ob := NewObabelHandle()
	ob.SetCommand(T.o.ObabelCommand)
	ob.SetWorkDir(T.wrkdir)
	ob.SetLogger(T.o.Logger)
	cctx, cancel := T.context(ctx)
	err := ob.PrepareLigand(cctx, "ligand.sdf", "ligand.pdbqt")
	cancel()
	if err != nil {
		return errors.Wrap(err, errid)
	}
	cctx, cancel = T.context(ctx)
	err = ob.PrepareReceptor(cctx, T.receptor, "receptor.pdbqt")
	cancel()
	if err != nil {
		return errors.Wrap(err, errid)
	}
	return errors.Wrap(T.vina.BuildInput("receptor.pdbqt", "ligand.pdbqt", T.box), errid)
}

//Run runs vina in the given mode and returns the poses, best first.
//The Options' Timeout, if set, applies to each external program run separately.
func (T *Task) Run(ctx context.Context, mode Mode, exhaustiveness int) ([]Pose, error) {
	T.prepOnce.Do(func() { T.prepErr = T.prepare(ctx) })
	if T.prepErr != nil {
		return nil, T.prepErr
	}
	cctx, cancel := T.context(ctx)
	defer cancel()
	return T.vina.Run(cctx, mode, exhaustiveness)
}

//Close removes the working directory of the task, unless the options ask to keep it.
func (T *Task) Close() error {
	if T.o.KeepWorkDir {
		T.o.Logger.Info("keeping docking working directory", zap.String("dir", T.WorkDir()))
		return nil
	}
	return os.RemoveAll(T.WorkDir())
}
