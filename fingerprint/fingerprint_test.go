/*
 * fingerprint_test.go, part of dockeval.
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

package fingerprint

import (
	"testing"

	chem "github.com/rmera/dockeval"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readMol(Te *testing.T, name string) *chem.Molecule {
	mol, err := chem.MolFileRead("../test/" + name)
	require.NoError(Te, err)
	return mol
}

func TestFingerprintBits(Te *testing.T) {
	fp := NewEmpty(100)
	assert.Equal(Te, 100, fp.Len())
	fp.Set(0)
	fp.Set(99)
	fp.Set(99)
	assert.True(Te, fp.IsSet(99))
	assert.False(Te, fp.IsSet(50))
	assert.Equal(Te, 2, fp.Count())
}

func TestTanimoto(Te *testing.T) {
	a, b := NewEmpty(128), NewEmpty(128)
	s, err := Tanimoto(a, b)
	require.NoError(Te, err)
	assert.Equal(Te, 0.0, s)
	for _, i := range []int{1, 2, 3, 4} {
		a.Set(i)
	}
	for _, i := range []int{3, 4, 5, 6} {
		b.Set(i)
	}
	s, _ = Tanimoto(a, b)
	assert.InDelta(Te, 2.0/6.0, s, 1e-12)
	_, err = Tanimoto(a, NewEmpty(64))
	assert.Error(Te, err)
}

func TestSimilarity(Te *testing.T) {
	eth := readMol(Te, "ethanol.sdf")
	perm := readMol(Te, "ethanol_perm.sdf")
	s, err := Similarity(eth, perm)
	require.NoError(Te, err)
	assert.Equal(Te, 1.0, s)
	fp := New(eth, nil)
	//C-C, C-O, C-C-O, 2 bits each at most
	assert.True(Te, fp.Count() > 0 && fp.Count() <= 6)
	acet := readMol(Te, "acetate.sdf")
	s, err = Similarity(eth, acet)
	require.NoError(Te, err)
	assert.Less(Te, s, 1.0)
	bz := readMol(Te, "benzene.sdf")
	s, _ = Similarity(bz, bz)
	assert.Equal(Te, 1.0, s)
	_, err = Similarity(nil, bz)
	assert.Error(Te, err)
}

func TestHydrogensIgnored(Te *testing.T) {
	eth := readMol(Te, "ethanol.sdf")
	heavy := eth.Heavy()
	s, err := Similarity(eth, heavy)
	require.NoError(Te, err)
	assert.Equal(Te, 1.0, s)
	withH := New(eth, &Options{MinPath: 1, MaxPath: 7, Bits: 2048, BitsPerPath: 2, KeepHydrogens: true})
	assert.Greater(Te, withH.Count(), New(heavy, nil).Count())
}

func TestKekuleForms(Te *testing.T) {
	linear := DefaultOptions()
	linear.Branched = false
	for _, pair := range [][2]string{
		{"toluene_kekA.sdf", "toluene_kekB.sdf"},
		{"oxylene_kekA.sdf", "oxylene_kekB.sdf"},
		{"naphthalene_kekA.sdf", "naphthalene_kekB.sdf"},
	} {
		A := readMol(Te, pair[0])
		B := readMol(Te, pair[1])
		s, err := Similarity(A, B)
		require.NoError(Te, err)
		assert.Equal(Te, 1.0, s, pair[0])
		s, err = Tanimoto(New(A, linear), New(B, linear))
		require.NoError(Te, err)
		assert.Equal(Te, 1.0, s, pair[0])
	}
	//the input molecule keeps its bond orders.
	tol := readMol(Te, "toluene_kekA.sdf")
	New(tol, nil)
	assert.Equal(Te, chem.DoubleBond, tol.Bonds[0].Order)
	//a Kekulé toluene shares its ring subgraphs with a declared aromatic benzene.
	s, err := Similarity(tol, readMol(Te, "benzene.sdf"))
	require.NoError(Te, err)
	assert.Less(Te, s, 1.0)
	assert.Greater(Te, s, 0.0)
}

func TestBranched(Te *testing.T) {
	acet := readMol(Te, "acetate.sdf")
	linear := DefaultOptions()
	linear.Branched = false
	//the 3 bonds around the carboxylate carbon are only a subgraph, not a path.
	br := New(acet, nil)
	ln := New(acet, linear)
	assert.LessOrEqual(Te, ln.Count(), 12)
	assert.LessOrEqual(Te, br.Count(), 14)
	s, err := Tanimoto(br, ln)
	require.NoError(Te, err)
	assert.Less(Te, s, 1.0)
	s, err = Similarity(acet, readMol(Te, "ethanol.sdf"))
	require.NoError(Te, err)
	assert.Less(Te, s, 1.0)
}
