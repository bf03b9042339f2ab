/*
 * graph_test.go, part of dockeval.
 *
 *
 * Copyright 2022 Raul Mera <rmera{at}chemDOThelsinkiDOTfi>
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

package chemgraph

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

func TestGraphBasics(Te *testing.T) {
	g := FromMolecule(readMol(Te, "ethanol.sdf"))
	assert.Equal(Te, 9, g.Len())
	assert.Equal(Te, 8, g.NumBonds())
	assert.Equal(Te, []int{1, 3, 4, 5}, g.Neighbors(0))
	assert.Equal(Te, 4, g.Degree(1))
	o, ok := g.BondOrder(1, 2)
	assert.True(Te, ok)
	assert.Equal(Te, 1.0, o)
	_, ok = g.BondOrder(0, 2)
	assert.False(Te, ok)
	assert.Len(Te, g.Fragments(), 1)
	assert.Equal(Te, 0, g.NumRings())
}

func TestRingsAndFragments(Te *testing.T) {
	bz := FromMolecule(readMol(Te, "benzene.sdf"))
	assert.Equal(Te, 1, bz.NumRings())
	o, _ := bz.BondOrder(0, 1)
	assert.Equal(Te, chem.AromaticBond, o)
	two := FromMolecule(readMol(Te, "twofrag.sdf"))
	assert.Equal(Te, [][]int{{0, 1, 2}, {3}}, two.Fragments())
	assert.Equal(Te, 0, two.NumRings())
}

func TestPaths(Te *testing.T) {
	two := FromMolecule(readMol(Te, "twofrag.sdf"))
	assert.ElementsMatch(Te, [][]int{{0, 1}, {1, 2}, {0, 1, 2}}, two.Paths(7))
	assert.ElementsMatch(Te, [][]int{{0, 1}, {1, 2}}, two.Paths(1))
	assert.Empty(Te, two.Paths(0))
	//a 6-ring has 6 paths of each length from 1 to 5 bonds.
	bz := FromMolecule(readMol(Te, "benzene.sdf"))
	assert.Len(Te, bz.Paths(7), 30)
}

func TestSubgraphs(Te *testing.T) {
	two := FromMolecule(readMol(Te, "twofrag.sdf"))
	assert.Equal(Te, [][2]int{{0, 1}, {1, 2}}, two.Bonds())
	assert.ElementsMatch(Te, [][]int{{0}, {1}, {0, 1}}, two.Subgraphs(7))
	assert.Empty(Te, two.Subgraphs(0))
	//6 sets of each size from 1 to 5 bonds, plus the whole ring.
	bz := FromMolecule(readMol(Te, "benzene.sdf"))
	assert.Len(Te, bz.Subgraphs(7), 31)
	assert.Len(Te, bz.Subgraphs(2), 12)
	//a branched center: the 3 bonds together are not a path.
	star := FromTopology(topology(Te, []string{"C", "C", "C", "C"}, []bondSpec{{0, 1, 1}, {0, 2, 1}, {0, 3, 1}}))
	assert.Len(Te, star.Paths(7), 6)
	assert.Len(Te, star.Subgraphs(7), 7)
	assert.Len(Te, star.Subgraphs(2), 6)
	for _, s := range bz.Subgraphs(7) {
		seen := make(map[int]bool)
		for _, b := range s {
			assert.False(Te, seen[b])
			seen[b] = true
		}
	}
}
