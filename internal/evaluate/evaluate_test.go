/*
 * evaluate_test.go, part of dockeval.
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
	"os"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/errors"
	chem "github.com/rmera/dockeval"
	"github.com/rmera/dockeval/internal/loader"
	"github.com/rmera/dockeval/internal/logging"
	"github.com/rmera/dockeval/internal/manifest"
	v3 "github.com/rmera/dockeval/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func readMol(Te *testing.T, name string) *chem.Molecule {
	mol, err := chem.MolFileRead("../../test/" + name)
	require.NoError(Te, err)
	return mol
}

func copyFixture(Te *testing.T, name, dst string) {
	data, err := os.ReadFile(filepath.Join("../../test", name))
	require.NoError(Te, err)
	require.NoError(Te, os.MkdirAll(filepath.Dir(dst), 0o755))
	require.NoError(Te, os.WriteFile(dst, data, 0o644))
}

// layout holds a generation directory, a reference root and a protein root
// for the single pocket "pocketA".
type layout struct {
	gen, refs, proteins string
}

func newLayout(Te *testing.T) layout {
	root := Te.TempDir()
	l := layout{
		gen:      filepath.Join(root, "gen"),
		refs:     filepath.Join(root, "mols"),
		proteins: filepath.Join(root, "proteins"),
	}
	copyFixture(Te, "ethanol.sdf", filepath.Join(l.refs, "pocketA_mol.sdf"))
	copyFixture(Te, "pocketA_pro.pdb", filepath.Join(l.proteins, "pocketA_pro.pdb"))
	return l
}

func (l layout) addGen(Te *testing.T, fixture, filename string) {
	copyFixture(Te, fixture, filepath.Join(l.gen, loader.SDFDir, filename))
}

func TestBuildInputs(Te *testing.T) {
	M, err := manifest.New([]manifest.Record{{Filename: "mol1.sdf", DataID: "pocketA"}, {Filename: "mol2", DataID: "pocketB"}})
	require.NoError(Te, err)
	eth := readMol(Te, "ethanol.sdf")
	inputs, err := BuildInputs([]loader.Entry{{Filename: "mol1", Mol: eth}, {Filename: "mol2.sdf"}}, M)
	require.NoError(Te, err)
	require.Len(Te, inputs, 2)
	assert.Equal(Te, DockInput{Filename: "mol1", Mol: eth, ProteinFilename: "pocketA_pro.pdb", RefFilename: "pocketA_mol.sdf"}, inputs[0])
	assert.Equal(Te, "pocketB_pro.pdb", inputs[1].ProteinFilename)
	assert.Nil(Te, inputs[1].Mol)

	_, err = BuildInputs([]loader.Entry{{Filename: "mol1"}, {Filename: "mol9"}}, M)
	require.Error(Te, err)
	assert.True(Te, errors.Is(err, manifest.ErrNotFound))
}

func TestSimilarityEvaluator(Te *testing.T) {
	l := newLayout(Te)
	l.addGen(Te, "ethanol_perm.sdf", "same.sdf")
	l.addGen(Te, "benzene.sdf", "other.sdf")
	l.addGen(Te, "broken.sdf", "broken.sdf")
	l.addGen(Te, "twofrag.sdf", "twofrag.sdf")
	logger, logs := logging.NewObserved(zapcore.WarnLevel)
	S := &SimilarityEvaluator{GenPath: l.gen, RefRoot: l.refs, MaxMatches: 30000, Logger: logger}
	ctx := context.Background()
	in := func(name string) DockInput {
		return DockInput{Filename: name, RefFilename: "pocketA_mol.sdf"}
	}

	r := S.Evaluate(ctx, in("same.sdf"))
	assert.Equal(Te, "same.sdf", r.Filename)
	assert.Equal(Te, "pocketA_mol.sdf", r.RefName)
	assert.Equal(Te, 1.0, r.SimRef)
	assert.InDelta(Te, 0.1, r.RMSD, 1e-6)

	//the extension is optional
	r = S.Evaluate(ctx, in("same"))
	assert.InDelta(Te, 0.1, r.RMSD, 1e-6)

	r = S.Evaluate(ctx, in("other.sdf"))
	assert.Less(Te, r.SimRef, 1.0)
	assert.True(Te, math.IsNaN(r.RMSD))

	r = S.Evaluate(ctx, in("broken.sdf"))
	assert.True(Te, math.IsNaN(r.SimRef))
	assert.True(Te, math.IsNaN(r.RMSD))
	r = S.Evaluate(ctx, in("missing.sdf"))
	assert.True(Te, math.IsNaN(r.SimRef))
	assert.Zero(Te, logs.Len(), "unparseable candidates are not warnings")

	//same fingerprint, but the extra fragment makes the RMSD impossible
	r = S.Evaluate(ctx, in("twofrag.sdf"))
	assert.Equal(Te, 1.0, r.SimRef)
	assert.True(Te, math.IsNaN(r.RMSD))
	require.Equal(Te, 1, logs.FilterField(zap.String("filename", "twofrag.sdf")).Len())

	r = S.Evaluate(ctx, DockInput{Filename: "same.sdf", RefFilename: "pocketZ_mol.sdf"})
	assert.True(Te, math.IsNaN(r.SimRef))
	assert.Equal(Te, "pocketZ_mol.sdf", r.RefName)
}

func TestCompare(Te *testing.T) {
	bz := readMol(Te, "benzene.sdf")
	sim, rmsd, err := Compare(bz, bz, 0)
	require.NoError(Te, err)
	assert.Equal(Te, 1.0, sim)
	assert.InDelta(Te, 0.0, rmsd, 1e-12)
	eth := readMol(Te, "ethanol.sdf")
	sim, rmsd, err = Compare(eth, bz, 1)
	require.NoError(Te, err)
	assert.Less(Te, sim, 1.0)
	assert.True(Te, math.IsNaN(rmsd))

	//different Kekulé structures of one molecule at the same coordinates.
	for _, pair := range [][2]string{
		{"toluene_kekA.sdf", "toluene_kekB.sdf"},
		{"oxylene_kekA.sdf", "oxylene_kekB.sdf"},
		{"naphthalene_kekA.sdf", "naphthalene_kekB.sdf"},
	} {
		sim, rmsd, err = Compare(readMol(Te, pair[0]), readMol(Te, pair[1]), 0)
		require.NoError(Te, err, pair[0])
		assert.Equal(Te, 1.0, sim, pair[0])
		assert.InDelta(Te, 0.0, rmsd, 1e-9, pair[0])
	}
	//toluene is not benzene, whatever its bond orders.
	sim, _, err = Compare(readMol(Te, "toluene_kekA.sdf"), bz, 0)
	require.NoError(Te, err)
	assert.Less(Te, sim, 1.0)
}

func TestMetricsEvaluator(Te *testing.T) {
	M := &MetricsEvaluator{}
	ctx := context.Background()
	m := M.Evaluate(ctx, loader.Entry{Filename: "eth", Mol: readMol(Te, "ethanol.sdf")})
	assert.True(Te, m.Validity)
	assert.True(Te, m.Connected)
	assert.Equal(Te, 9.0, m.NumAtoms)
	assert.Equal(Te, 3.0, m.NumHeavyAtoms)
	assert.Equal(Te, 1.0, m.NumFragments)
	assert.Equal(Te, 0.0, m.NumRings)
	assert.InDelta(Te, 46.07, m.MolWeight, 0.01)
	assert.False(Te, m.HasBoron)

	m = M.Evaluate(ctx, loader.Entry{Filename: "two", Mol: readMol(Te, "twofrag.sdf")})
	assert.False(Te, m.Connected)
	assert.Equal(Te, 2.0, m.NumFragments)

	m = M.Evaluate(ctx, loader.Entry{Filename: "bz", Mol: readMol(Te, "benzene.sdf")})
	assert.Equal(Te, 1.0, m.NumRings)
	assert.Equal(Te, 1.0, m.NumAromaticRings)
	assert.InDelta(Te, 78.11, m.MolWeight, 0.01)

	m = M.Evaluate(ctx, loader.Entry{Filename: "b", Mol: readMol(Te, "methylboronic.sdf")})
	assert.True(Te, m.HasBoron)

	m = M.Evaluate(ctx, loader.Entry{Filename: "nap", Mol: readMol(Te, "naphthalene_kekB.sdf")})
	assert.Equal(Te, 2.0, m.NumRings)
	assert.Equal(Te, 2.0, m.NumAromaticRings)
	assert.Equal(Te, 0.0, m.NumRotBonds)

	m = M.Evaluate(ctx, loader.Entry{Filename: "none"})
	assert.False(Te, m.Validity)
	assert.True(Te, math.IsNaN(m.NumAtoms))
	assert.True(Te, math.IsNaN(m.MolWeight))
	assert.True(Te, math.IsNaN(m.NumHBD))
	assert.True(Te, math.IsNaN(m.FormalCharge))
	assert.Len(Te, m.Values(), len(MetricsHeader))
}

// buildMol returns a molecule with all its atoms at the origin.
func buildMol(Te *testing.T, symbols []string, bonds [][3]int) *chem.Molecule {
	ats := make([]*chem.Atom, len(symbols))
	for i, s := range symbols {
		ats[i] = &chem.Atom{Name: s, Symbol: s, Mass: chem.Mass(s)}
	}
	bs := make([]*chem.Bond, len(bonds))
	for i, b := range bonds {
		bs[i] = &chem.Bond{At1: ats[b[0]], At2: ats[b[1]], Order: float64(b[2])}
	}
	top, err := chem.NewTopology(ats, bs)
	require.NoError(Te, err)
	mol, err := chem.NewMolecule(v3.Zeros(len(ats)), top)
	require.NoError(Te, err)
	return mol
}

func TestLipinskiCounts(Te *testing.T) {
	M := &MetricsEvaluator{}
	ctx := context.Background()
	m := M.Evaluate(ctx, loader.Entry{Filename: "eth", Mol: readMol(Te, "ethanol.sdf")})
	assert.Equal(Te, 1.0, m.NumHBD)
	assert.Equal(Te, 1.0, m.NumHBA)
	assert.Equal(Te, 0.0, m.NumRotBonds)
	assert.Equal(Te, 0.0, m.NumAromaticRings)
	assert.Equal(Te, 0.0, m.FormalCharge)

	//the carboxylate oxygens accept but don't donate.
	m = M.Evaluate(ctx, loader.Entry{Filename: "acet", Mol: readMol(Te, "acetate.sdf")})
	assert.Equal(Te, 0.0, m.NumHBD)
	assert.Equal(Te, 2.0, m.NumHBA)
	assert.Equal(Te, -1.0, m.FormalCharge)

	butane := buildMol(Te, []string{"C", "C", "C", "C"}, [][3]int{{0, 1, 1}, {1, 2, 1}, {2, 3, 1}})
	m = M.Evaluate(ctx, loader.Entry{Filename: "butane", Mol: butane})
	assert.Equal(Te, 1.0, m.NumRotBonds)

	butyne := buildMol(Te, []string{"C", "C", "C", "C"}, [][3]int{{0, 1, 1}, {1, 2, 3}, {2, 3, 1}})
	m = M.Evaluate(ctx, loader.Entry{Filename: "butyne", Mol: butyne})
	assert.Equal(Te, 0.0, m.NumRotBonds)

	//ring bonds don't rotate, the ethyl group does.
	ethylcyclohexane := buildMol(Te, []string{"C", "C", "C", "C", "C", "C", "C", "C"}, [][3]int{
		{0, 1, 1}, {1, 2, 1}, {2, 3, 1}, {3, 4, 1}, {4, 5, 1}, {5, 0, 1}, {0, 6, 1}, {6, 7, 1}})
	m = M.Evaluate(ctx, loader.Entry{Filename: "ech", Mol: ethylcyclohexane})
	assert.Equal(Te, 1.0, m.NumRotBonds)
	assert.Equal(Te, 0.0, m.NumAromaticRings)

	//ethylamine, with explicit hydrogens only on the nitrogen.
	amine := buildMol(Te, []string{"C", "C", "N", "H", "H"}, [][3]int{{0, 1, 1}, {1, 2, 1}, {2, 3, 1}, {2, 4, 1}})
	m = M.Evaluate(ctx, loader.Entry{Filename: "amine", Mol: amine})
	assert.Equal(Te, 1.0, m.NumHBD)
	assert.Equal(Te, 1.0, m.NumHBA)
	assert.Equal(Te, 0.0, m.NumRotBonds)
}
