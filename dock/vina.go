/*
 * vina.go, part of dockeval.
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
	"bufio"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

var (
	//ErrNoResult is returned when a vina run finished but no affinity could be read from its output.
	ErrNoResult = errors.New("no docking result")
	//ErrNotRunning is returned when an external program fails to run or exits with an error.
	ErrNotRunning = errors.New("external program failed")
)

//Mode is the kind of vina calculation.
type Mode int

const (
	ScoreOnly Mode = iota //score the given pose
	Minimize              //local optimization from the given pose
	Dock                  //full search
)

func (m Mode) String() string {
	switch m {
	case ScoreOnly:
		return "score_only"
	case Minimize:
		return "minimize"
	case Dock:
		return "dock"
	}
	return "unknown"
}

//Box is the search space, in A.
type Box struct {
	Center [3]float64
	Size   [3]float64
}

//Pose is one result of a vina calculation. Pose is the PDBQT text of the ligand.
type Pose struct {
	Affinity float64 //kcal/mol
	Pose     string
}

//VinaHandle represents a vina calculation.
//Note that the defaults are NOT considered part of the API, so they can always change.
type VinaHandle struct {
	command   string
	inputname string
	nCPU      int
	seed      int64
	wrkdir    string
	options   []string
	ligand    string
	logger    *zap.Logger
}

//NewVinaHandle initializes and returns a vina handle
//with values set to their defaults.
func NewVinaHandle() *VinaHandle {
	run := new(VinaHandle)
	run.SetDefaults()
	return run
}

//VinaHandle methods

//SetnCPU sets the number of CPU to be used by each vina run
func (O *VinaHandle) SetnCPU(cpu int) {
	O.nCPU = cpu
}

//SetSeed sets the random seed for the search. 0 lets vina choose one.
func (O *VinaHandle) SetSeed(seed int64) {
	O.seed = seed
}

//Command returns the path and name for the vina excecutable
func (O *VinaHandle) Command() string {
	return O.command
}

//SetCommand sets the path and name for the vina excecutable
func (O *VinaHandle) SetCommand(name string) {
	O.command = name
}

//SetWorkDir sets the name of the working directory for the calculations
func (O *VinaHandle) SetWorkDir(d string) {
	O.wrkdir = d
}

//SetLogger sets the logger where the command lines are reported, at debug level.
func (O *VinaHandle) SetLogger(l *zap.Logger) {
	O.logger = l
}

//SetDefaults sets calculations parameters to their defaults.
func (O *VinaHandle) SetDefaults() {
	O.command = "vina"
	O.inputname = "ligand"
	O.nCPU = 1
	O.seed = 0
	O.logger = zap.NewNop()
}

func (O *VinaHandle) path(name string) string {
	return filepath.Join(O.wrkdir, name)
}

//BuildInput writes the vina configuration file for the given receptor and ligand
//PDBQT files and search box. File names are relative to the working directory.
func (O *VinaHandle) BuildInput(receptor, ligand string, box Box) error {
	errid := "VinaHandle/BuildInput"
	for _, f := range []string{receptor, ligand} {
		if _, err := os.Stat(O.path(f)); err != nil {
			return errors.Wrapf(err, "%s: missing input file", errid)
		}
	}
	for i, s := range box.Size {
		if s <= 0 {
			return errors.Newf("%s: invalid box size %.3f along axis %d", errid, s, i)
		}
	}
	conf, err := os.Create(O.path(O.inputname + ".conf"))
	if err != nil {
		return errors.Wrap(err, errid)
	}
	defer conf.Close()
	axes := []string{"x", "y", "z"}
	fmt.Fprintf(conf, "receptor = %s\nligand = %s\n", receptor, ligand)
	for i, a := range axes {
		fmt.Fprintf(conf, "center_%s = %.3f\n", a, box.Center[i])
	}
	for i, a := range axes {
		fmt.Fprintf(conf, "size_%s = %.3f\n", a, box.Size[i])
	}
	O.ligand = ligand
	O.options = make([]string, 0, 4)
	O.options = append(O.options, "--config "+O.inputname+".conf")
	if O.nCPU > 0 {
		O.options = append(O.options, fmt.Sprintf("--cpu %d", O.nCPU))
	}
	if O.seed != 0 {
		O.options = append(O.options, fmt.Sprintf("--seed %d", O.seed))
	}
	return nil
}

func (O *VinaHandle) outName(mode Mode) string {
	return fmt.Sprintf("%s_%s", O.inputname, mode)
}

//Run runs vina in the given mode, waits for it to finish and returns the resulting poses,
//best first. exhaustiveness is only used by the Dock mode.
//The run is killed if ctx is done before it finishes.
func (O *VinaHandle) Run(ctx context.Context, mode Mode, exhaustiveness int) ([]Pose, error) {
	errid := "VinaHandle/Run"
	if len(O.options) == 0 {
		return nil, errors.Newf("%s: BuildInput must be called before Run", errid)
	}
	out := O.outName(mode)
	opts := strings.Join(O.options, " ")
	switch mode {
	case ScoreOnly:
		opts += " --score_only"
	case Minimize:
		opts += " --minimize --out " + out + ".pdbqt"
	case Dock:
		if exhaustiveness < 1 {
			return nil, errors.Newf("%s: exhaustiveness must be at least 1, got %d", errid, exhaustiveness)
		}
		opts += fmt.Sprintf(" --exhaustiveness %d --out %s.pdbqt", exhaustiveness, out)
	default:
		return nil, errors.Newf("%s: unknown mode %d", errid, mode)
	}
	com := fmt.Sprintf(" %s > %s.log 2>&1", opts, out)
	O.logger.Debug("running vina", zap.String("dir", O.wrkdir), zap.String("command", O.command+com))
	//exec so the context cancellation reaches vina itself, not just the shell.
	command := exec.CommandContext(ctx, "sh", "-c", "exec "+O.command+com)
	command.Dir = O.wrkdir
	if err := command.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, errors.Wrapf(ctx.Err(), "%s: %s run interrupted", errid, mode)
		}
		tail := lastLines(O.path(out+".log"), 5)
		return nil, errors.Mark(errors.Wrapf(err, "%s: vina %s failed: %s", errid, mode, tail), ErrNotRunning)
	}
	switch mode {
	case ScoreOnly:
		aff, err := logAffinity(O.path(out + ".log"))
		if err != nil {
			return nil, errors.Wrap(err, errid)
		}
		lig, err := os.ReadFile(O.path(O.ligand))
		if err != nil {
			return nil, errors.Wrap(err, errid)
		}
		return []Pose{{Affinity: aff, Pose: string(lig)}}, nil
	case Minimize:
		pose, err := os.ReadFile(O.path(out + ".pdbqt"))
		if err != nil {
			return nil, errors.Mark(errors.Wrapf(err, "%s: no minimized pose", errid), ErrNoResult)
		}
		aff, err := logAffinity(O.path(out + ".log"))
		if err != nil {
			//some versions only report it in the output file.
			poses, perr := parsePDBQTModels(string(pose))
			if perr != nil {
				return nil, errors.Wrap(err, errid)
			}
			aff = poses[0].Affinity
		}
		return []Pose{{Affinity: aff, Pose: string(pose)}}, nil
	}
	data, err := os.ReadFile(O.path(out + ".pdbqt"))
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "%s: no docked poses", errid), ErrNoResult)
	}
	poses, err := parsePDBQTModels(string(data))
	if err != nil {
		return nil, errors.Wrap(err, errid)
	}
	return poses, nil
}

//logAffinity reads the affinity reported in a vina log. Both the
//"Affinity:" (vina 1.1) and the "Estimated Free Energy of Binding" (vina 1.2) lines are understood.
func logAffinity(logname string) (float64, error) {
	f, err := os.Open(logname)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	scan := bufio.NewScanner(f)
	for scan.Scan() {
		l := scan.Text()
		if !strings.HasPrefix(strings.TrimSpace(l), "Affinity:") && !strings.Contains(l, "Estimated Free Energy of Binding") {
			continue
		}
		i := strings.Index(l, ":")
		fields := strings.Fields(l[i+1:])
		if len(fields) == 0 {
			continue
		}
		aff, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			continue
		}
		return aff, nil
	}
	if err := scan.Err(); err != nil {
		return 0, err
	}
	return 0, errors.Mark(errors.Newf("no affinity found in %s", filepath.Base(logname)), ErrNoResult)
}

//parsePDBQTModels splits a multi-model PDBQT into poses. The affinity is taken
//from the "REMARK VINA RESULT" line of each model. A file without MODEL
//records is taken as a single pose.
func parsePDBQTModels(data string) ([]Pose, error) {
	var poses []Pose
	var cur strings.Builder
	aff := 0.0
	found := false
	inModel := false
	flush := func() {
		if found {
			poses = append(poses, Pose{Affinity: aff, Pose: cur.String()})
		}
		cur.Reset()
		found = false
	}
	for _, l := range strings.SplitAfter(data, "\n") {
		t := strings.TrimSpace(l)
		if strings.HasPrefix(t, "MODEL") {
			flush()
			inModel = true
		}
		cur.WriteString(l)
		if strings.HasPrefix(t, "REMARK VINA RESULT:") && !found {
			f := strings.Fields(strings.TrimPrefix(t, "REMARK VINA RESULT:"))
			if len(f) > 0 {
				if v, err := strconv.ParseFloat(f[0], 64); err == nil {
					aff = v
					found = true
				}
			}
		}
		if strings.HasPrefix(t, "ENDMDL") && inModel {
			flush()
			inModel = false
		}
	}
	flush()
	if len(poses) == 0 {
		return nil, errors.Mark(errors.New("no VINA RESULT records in PDBQT output"), ErrNoResult)
	}
	return poses, nil
}

//lastLines returns up to n of the last non-empty lines of the file, joined by "; ".
func lastLines(name string, n int) string {
	data, err := os.ReadFile(name)
	if err != nil {
		return ""
	}
	var ret []string
	for _, l := range strings.Split(string(data), "\n") {
		if strings.TrimSpace(l) != "" {
			ret = append(ret, strings.TrimSpace(l))
		}
	}
	if len(ret) > n {
		ret = ret[len(ret)-n:]
	}
	return strings.Join(ret, "; ")
}
