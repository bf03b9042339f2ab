/*
 * obabel.go, part of dockeval.
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
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

//ObabelHandle converts ligand and receptor files to the PDBQT format
//using Open Babel.
type ObabelHandle struct {
	command string
	wrkdir  string
	logger  *zap.Logger
}

//NewObabelHandle returns an Open Babel handle with values set to their defaults.
func NewObabelHandle() *ObabelHandle {
	run := new(ObabelHandle)
	run.SetDefaults()
	return run
}

func (O *ObabelHandle) SetDefaults() {
	O.command = "obabel"
	O.logger = zap.NewNop()
}

//Command returns the path and name for the obabel excecutable
func (O *ObabelHandle) Command() string {
	return O.command
}

//SetCommand sets the path and name for the obabel excecutable
func (O *ObabelHandle) SetCommand(name string) {
	O.command = name
}

//SetWorkDir sets the name of the working directory. File names given
//to the handle are relative to it.
func (O *ObabelHandle) SetWorkDir(d string) {
	O.wrkdir = d
}

func (O *ObabelHandle) SetLogger(l *zap.Logger) {
	O.logger = l
}

//PrepareLigand converts the SDF file in to the PDBQT file out, adding hydrogens.
func (O *ObabelHandle) PrepareLigand(ctx context.Context, in, out string) error {
	return O.convert(ctx, "ObabelHandle/PrepareLigand", fmt.Sprintf(" -isdf %s -opdbqt -O %s -h", shellQuote(in), shellQuote(out)), out)
}

//PrepareReceptor converts the PDB file in to the PDBQT file out, as a rigid receptor.
func (O *ObabelHandle) PrepareReceptor(ctx context.Context, in, out string) error {
	return O.convert(ctx, "ObabelHandle/PrepareReceptor", fmt.Sprintf(" -ipdb %s -opdbqt -O %s -xr", shellQuote(in), shellQuote(out)), out)
}

func (O *ObabelHandle) convert(ctx context.Context, errid, com, out string) error {
	logname := out + ".obabel.log"
	com = com + " > " + shellQuote(logname) + " 2>&1"
	O.logger.Debug("running obabel", zap.String("dir", O.wrkdir), zap.String("command", O.command+com))
	command := exec.CommandContext(ctx, "sh", "-c", "exec "+O.command+com)
	command.Dir = O.wrkdir
	if err := command.Run(); err != nil {
		if ctx.Err() != nil {
			return errors.Wrapf(ctx.Err(), "%s: interrupted", errid)
		}
		return errors.Mark(errors.Wrapf(err, "%s: %s", errid, lastLines(filepath.Join(O.wrkdir, logname), 3)), ErrNotRunning)
	}
	//obabel exits with 0 even when it can't read its input.
	fi, err := os.Stat(filepath.Join(O.wrkdir, out))
	if err != nil || fi.Size() == 0 {
		return errors.Mark(errors.Newf("%s: no output produced: %s", errid, lastLines(filepath.Join(O.wrkdir, logname), 3)), ErrNotRunning)
	}
	return nil
}

//shellQuote quotes s for sh.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
