/*
 * chem_test.go, part of dockeval.
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

package chem

import (
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	v3 "github.com/rmera/dockeval/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMolRead(Te *testing.T) {
	mol, err := MolFileRead("test/ethanol.sdf")
	require.NoError(Te, err)
	assert.Equal(Te, "ethanol", mol.Name)
	assert.Equal(Te, 9, mol.Len())
	assert.Len(Te, mol.Bonds, 8)
	assert.Equal(Te, "pocketA", mol.Props["data_id"])
	assert.Equal(Te, []int{0, 1, 2}, mol.HeavyAtoms())
	assert.InDelta(Te, 46.07, mol.Weight(), 0.01)
	assert.Equal(Te, 2.02, mol.Coords.At(2, 0))
	assert.Equal(Te, 4, len(mol.Atom(0).Bonds))
	assert.Equal(Te, mol.Atom(2), mol.Bonds[1].Cross(mol.Atom(1)))
	assert.False(Te, mol.HasElement("B"))
	assert.Empty(Te, mol.OverValent())
}

func TestMolReadCharges(Te *testing.T) {
	mol, err := MolFileRead("test/acetate.sdf")
	require.NoError(Te, err)
	assert.Equal(Te, -1.0, mol.Atom(3).Charge)
	assert.Equal(Te, -1, mol.Charge())
	assert.Equal(Te, DoubleBond, mol.Bonds[1].Order)
	//CH3COO-, with the hydrogens implicit.
	assert.Equal(Te, 3, mol.Hydrogens(0))
	assert.Equal(Te, 0, mol.Hydrogens(1))
	assert.Equal(Te, 0, mol.Hydrogens(3))
	assert.InDelta(Te, 59.04, mol.Weight(), 0.01)
}

func TestImplicitHydrogens(Te *testing.T) {
	mol, err := MolFileRead("test/ethanol.sdf")
	require.NoError(Te, err)
	for i := range mol.Atoms {
		assert.Equal(Te, 0, mol.Atom(i).ImplicitHydrogens())
	}
	assert.Equal(Te, 3, mol.Hydrogens(0))
	assert.Equal(Te, 1, mol.Hydrogens(2))
	h := mol.Heavy()
	assert.Equal(Te, 1, h.Hydrogens(2))
	assert.InDelta(Te, mol.Weight(), h.Weight(), 1e-9)
	bz, err := MolFileRead("test/benzene.sdf")
	require.NoError(Te, err)
	assert.Equal(Te, 1, bz.Hydrogens(0))
	assert.InDelta(Te, 78.11, bz.Weight(), 0.01)
	tol, err := MolFileRead("test/toluene_kekA.sdf")
	require.NoError(Te, err)
	assert.Equal(Te, 0, tol.Hydrogens(0))
	assert.Equal(Te, 1, tol.Hydrogens(1))
	assert.Equal(Te, 3, tol.Hydrogens(6))
	//charged atoms
	nh4 := &Atom{Symbol: "N", Charge: 1}
	assert.Equal(Te, 4, nh4.ImplicitHydrogens())
	bh4 := &Atom{Symbol: "B", Charge: -1}
	assert.Equal(Te, 4, bh4.ImplicitHydrogens())
	ch3 := &Atom{Symbol: "C", Charge: -1}
	assert.Equal(Te, 3, ch3.ImplicitHydrogens())
	assert.Equal(Te, 0, (&Atom{Symbol: "Fe"}).ImplicitHydrogens())
}

func TestMolReadBoron(Te *testing.T) {
	mol, err := MolFileRead("test/methylboronic.sdf")
	require.NoError(Te, err)
	assert.True(Te, mol.HasElement("B"))
	assert.True(Te, mol.HasElement("b"))
}

func TestMolReadMalformed(Te *testing.T) {
	_, err := MolFileRead("test/broken.sdf")
	require.Error(Te, err)
	assert.True(Te, errors.Is(err, ErrParse))
	_, err = MolRead(strings.NewReader("x\n\n\n  a  b  0  0  0  0  0  0  0  0999 V2000\n"))
	assert.True(Te, errors.Is(err, ErrParse))
	_, err = MolRead(strings.NewReader("x\n\n\n  1  0  0  0  0  0  0  0  0  0999 V3000\n"))
	assert.True(Te, errors.Is(err, ErrParse))
	_, err = MolFileRead("test/does_not_exist.sdf")
	require.Error(Te, err)
	assert.False(Te, errors.Is(err, ErrParse))
}

func TestMolReadLoose(Te *testing.T) {
	loose := "loose\n\n\n  2  1  0  0  0  0  0  0  0  0999 V2000\n0.0 0.0 0.0 C\n1.5 0.0 0.0 O 0 0\n  1  2  2  0\nM  END\n"
	mol, err := MolRead(strings.NewReader(loose))
	require.NoError(Te, err)
	assert.Equal(Te, "O", mol.Atom(1).Symbol)
	assert.Equal(Te, 1.5, mol.Coords.At(1, 0))
}

func TestMolWriteRoundTrip(Te *testing.T) {
	mol, err := MolFileRead("test/acetate.sdf")
	require.NoError(Te, err)
	mol.Props["score"] = "-7.5"
	dir := Te.TempDir()
	for _, name := range []string{"a.sdf", "a.sdf.gz", "a.sdf.zst"} {
		p := filepath.Join(dir, name)
		require.NoError(Te, MolFileWrite(p, mol))
		mol2, err := MolFileRead(p)
		require.NoError(Te, err, name)
		assert.Equal(Te, mol.Len(), mol2.Len())
		assert.Equal(Te, len(mol.Bonds), len(mol2.Bonds))
		assert.Equal(Te, -1.0, mol2.Atom(3).Charge)
		assert.Equal(Te, "-7.5", mol2.Props["score"])
		rmsd, err := RMSD(mol.Coords, mol2.Coords)
		require.NoError(Te, err)
		assert.InDelta(Te, 0, rmsd, 1e-4)
	}
	var sb strings.Builder
	require.NoError(Te, MolWrite(&sb, mol))
	s := sb.String()
	assert.True(Te, strings.HasSuffix(s, "$$$$\n"))
	assert.Contains(Te, s, "M  CHG  1   4  -1")
}

func TestHeavy(Te *testing.T) {
	mol, err := MolFileRead("test/ethanol.sdf")
	require.NoError(Te, err)
	h := mol.Heavy()
	assert.Equal(Te, 3, h.Len())
	assert.Len(Te, h.Bonds, 2)
	assert.Equal(Te, 1.52, h.Coords.At(1, 0))
	assert.Equal(Te, 9, mol.Len())
	c := mol.Copy()
	c.Coords.Set(0, 0, 10)
	assert.Equal(Te, 0.0, mol.Coords.At(0, 0))
	assert.Len(Te, c.Atom(0).Bonds, 4)
}

func TestGeometry(Te *testing.T) {
	mol, err := MolFileRead("test/benzene.sdf")
	require.NoError(Te, err)
	cen := Centroid(mol.Coords)
	for j := 0; j < 3; j++ {
		assert.InDelta(Te, 0, cen.At(0, j), 1e-4)
	}
	min, max := Extent(mol.Coords)
	assert.InDelta(Te, -1.39, min.At(0, 0), 1e-4)
	assert.InDelta(Te, 1.39, max.At(0, 0), 1e-4)
	assert.InDelta(Te, 0, max.At(0, 2)-min.At(0, 2), 1e-9)
	shifted := mol.Coords.Clone()
	for i := 0; i < shifted.NVecs(); i++ {
		shifted.Set(i, 2, shifted.At(i, 2)+1)
	}
	rmsd, err := RMSD(shifted, mol.Coords)
	require.NoError(Te, err)
	assert.InDelta(Te, 1.0, rmsd, 1e-9)
	_, err = RMSD(v3.Zeros(1), mol.Coords)
	assert.Error(Te, err)
	_, err = RMSD(nil, mol.Coords)
	assert.Error(Te, err)
	assert.False(Te, math.IsNaN(rmsd))
}
