/*
 * dock_test.go, part of dockeval.
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
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	chem "github.com/rmera/dockeval"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fakeObabel = `#!/bin/sh
out=""
while [ $# -gt 0 ]; do
  if [ "$1" = "-O" ]; then out="$2"; fi
  shift
done
echo "REMARK converted by fake obabel" > "$out"
echo "1 molecule converted"
`

const fakeVina = `#!/bin/sh
mode=dock
out=""
conf=""
while [ $# -gt 0 ]; do
  case "$1" in
    --score_only) mode=score ;;
    --minimize) mode=min ;;
    --out) out="$2"; shift ;;
    --config) conf="$2"; shift ;;
  esac
  shift
done
test -f "$conf" || { echo "no config"; exit 1; }
case $mode in
  score) echo "Estimated Free Energy of Binding   : -5.100 (kcal/mol) [=(1)+(2)+(3)+(4)]" ;;
  min) echo "Estimated Free Energy of Binding   : -5.600 (kcal/mol)"
       printf 'REMARK VINA RESULT:    -5.600      0.000      0.000\nATOM minimized\n' > "$out" ;;
  dock) printf 'MODEL 1\nREMARK VINA RESULT:    -7.300      0.000      0.000\nATOM best\nENDMDL\nMODEL 2\nREMARK VINA RESULT:    -6.900      1.200      2.300\nATOM second\nENDMDL\n' > "$out" ;;
esac
`

func writeScript(Te *testing.T, dir, name, body string) string {
	p := filepath.Join(dir, name)
	require.NoError(Te, os.WriteFile(p, []byte(body), 0o755))
	return p
}

func testOptions(Te *testing.T, vina string) *Options {
	dir := Te.TempDir()
	o := DefaultOptions()
	o.ObabelCommand = writeScript(Te, dir, "obabel", fakeObabel)
	o.VinaCommand = writeScript(Te, dir, "vina", vina)
	o.TmpDir = Te.TempDir()
	return o
}

func readMol(Te *testing.T, name string) *chem.Molecule {
	mol, err := chem.MolFileRead("../test/" + name)
	require.NoError(Te, err)
	return mol
}

func TestBoxAround(Te *testing.T) {
	mol := readMol(Te, "ethanol.sdf")
	b := BoxAround(mol, 1.0, 5.0)
	assert.InDelta(Te, 2.38+5, b.Size[0], 1e-9)
	assert.InDelta(Te, 1.78+5, b.Size[2], 1e-9)
	assert.InDelta(Te, 0, b.Center[2], 1e-9)
	b = BoxAround(mol, 0, 5.0)
	assert.Equal(Te, [3]float64{20, 20, 20}, b.Size)
}

func TestTaskAllModes(Te *testing.T) {
	o := testOptions(Te, fakeVina)
	mol := readMol(Te, "ethanol.sdf")
	task, err := NewTaskFromGeneratedMol(mol, "pocketA_pro.pdb", "../test", o)
	require.NoError(Te, err)
	ctx := context.Background()
	score, err := task.Run(ctx, ScoreOnly, 16)
	require.NoError(Te, err)
	require.Len(Te, score, 1)
	assert.Equal(Te, -5.1, score[0].Affinity)
	assert.Contains(Te, score[0].Pose, "fake obabel")

	min, err := task.Run(ctx, Minimize, 16)
	require.NoError(Te, err)
	assert.Equal(Te, -5.6, min[0].Affinity)
	assert.Contains(Te, min[0].Pose, "ATOM minimized")

	docked, err := task.Run(ctx, Dock, 16)
	require.NoError(Te, err)
	require.Len(Te, docked, 2)
	assert.Equal(Te, -7.3, docked[0].Affinity)
	assert.Contains(Te, docked[0].Pose, "ATOM best")
	assert.NotContains(Te, docked[0].Pose, "ATOM second")

	conf, err := os.ReadFile(filepath.Join(task.WorkDir(), "ligand.conf"))
	require.NoError(Te, err)
	assert.Contains(Te, string(conf), "receptor = receptor.pdbqt")
	assert.Contains(Te, string(conf), "size_x = 7.380")

	_, err = task.Run(ctx, Dock, 0)
	assert.Error(Te, err)
	require.NoError(Te, task.Close())
	_, err = os.Stat(task.WorkDir())
	assert.True(Te, os.IsNotExist(err))
}

func TestTaskMissingReceptor(Te *testing.T) {
	o := testOptions(Te, fakeVina)
	_, err := NewTaskFromGeneratedMol(readMol(Te, "ethanol.sdf"), "nope_pro.pdb", "../test", o)
	assert.Error(Te, err)
	_, err = NewTaskFromGeneratedMol(nil, "pocketA_pro.pdb", "../test", o)
	assert.Error(Te, err)
}

func TestTaskEngineFailure(Te *testing.T) {
	o := testOptions(Te, "#!/bin/sh\necho 'Parse error on line 3'\nexit 1\n")
	task, err := NewTaskFromGeneratedMol(readMol(Te, "ethanol.sdf"), "pocketA_pro.pdb", "../test", o)
	require.NoError(Te, err)
	defer task.Close()
	_, err = task.Run(context.Background(), ScoreOnly, 1)
	require.Error(Te, err)
	assert.True(Te, errors.Is(err, ErrNotRunning))
	assert.Contains(Te, err.Error(), "Parse error on line 3")
}

func TestTaskNoAffinity(Te *testing.T) {
	o := testOptions(Te, "#!/bin/sh\necho 'nothing useful'\n")
	task, err := NewTaskFromGeneratedMol(readMol(Te, "ethanol.sdf"), "pocketA_pro.pdb", "../test", o)
	require.NoError(Te, err)
	defer task.Close()
	_, err = task.Run(context.Background(), ScoreOnly, 1)
	assert.True(Te, errors.Is(err, ErrNoResult))
}

func TestTaskTimeout(Te *testing.T) {
	o := testOptions(Te, "#!/bin/sh\nexec sleep 30\n")
	o.Timeout = 200 * time.Millisecond
	task, err := NewTaskFromGeneratedMol(readMol(Te, "ethanol.sdf"), "pocketA_pro.pdb", "../test", o)
	require.NoError(Te, err)
	defer task.Close()
	start := time.Now()
	_, err = task.Run(context.Background(), Dock, 8)
	require.Error(Te, err)
	assert.True(Te, errors.Is(err, context.DeadlineExceeded))
	assert.Less(Te, time.Since(start), 10*time.Second)
}

func TestParsePDBQTModels(Te *testing.T) {
	_, err := parsePDBQTModels("ATOM nothing\n")
	assert.True(Te, errors.Is(err, ErrNoResult))
	poses, err := parsePDBQTModels("REMARK VINA RESULT:    -4.2      0.000      0.000\nATOM x\n")
	require.NoError(Te, err)
	assert.Equal(Te, -4.2, poses[0].Affinity)
}

func TestModeString(Te *testing.T) {
	assert.Equal(Te, "score_only", ScoreOnly.String())
	assert.Equal(Te, "minimize", Minimize.String())
	assert.Equal(Te, "dock", Dock.String())
}
