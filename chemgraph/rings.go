/*
 * rings.go, part of dockeval.
 *
 *
 * Copyright 2021 Raul Mera <rmera{at}chemDOThelsinkiDOTfi>
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
	chem "github.com/rmera/dockeval"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/traverse"
)

// Rings returns every simple cycle of 3 to maxSize atoms, as sequences of
// atom indexes where consecutive atoms (and the last and first) are bonded.
// Each ring starts at its lowest index and is returned in one direction only.
func (G *Graph) Rings(maxSize int) [][]int {
	var ret [][]int
	if maxSize < 3 {
		return ret
	}
	visited := make([]bool, G.Len())
	path := make([]int, 0, maxSize)
	var walk func(start, at int)
	walk = func(start, at int) {
		visited[at] = true
		path = append(path, at)
		for _, n := range G.Neighbors(at) {
			if n == start && len(path) >= 3 && path[1] < at {
				r := make([]int, len(path))
				copy(r, path)
				ret = append(ret, r)
			}
			if n > start && !visited[n] && len(path) < maxSize {
				walk(start, n)
			}
		}
		path = path[:len(path)-1]
		visited[at] = false
	}
	for i := 0; i < G.Len(); i++ {
		walk(i, i)
	}
	return ret
}

// InRing returns true if atoms i and j are bonded and the bond between them
// belongs to a ring, i.e. i and j stay connected when the bond is removed.
func (G *Graph) InRing(i, j int) bool {
	if _, ok := G.BondOrder(i, j); !ok {
		return false
	}
	a, b := int64(i), int64(j)
	bfs := traverse.BreadthFirst{
		Traverse: func(e graph.Edge) bool {
			f, t := e.From().ID(), e.To().ID()
			return !(f == a && t == b) && !(f == b && t == a)
		},
	}
	found := bfs.Walk(G.g, G.g.Node(a), func(n graph.Node, _ int) bool {
		return n.ID() == b
	})
	return found != nil
}

type bondKey [2]int

func newBondKey(i, j int) bondKey {
	if i > j {
		i, j = j, i
	}
	return bondKey{i, j}
}

// Aromatize finds the aromatic 5 and 6-membered rings of T and sets the
// order of all their bonds to chem.AromaticBond. A ring is aromatic if all
// its bonds were already declared aromatic, or if it holds 6 pi electrons, where
// each atom with a double bond inside the ring (or inside a fused aromatic ring)
// gives one and, in 5-membered rings, one N, O, S or Se with no double bond gives two.
// Rings fused to aromatic rings are checked again until nothing changes, so
// any Kekulé structure of a molecule yields the same aromatic bonds.
// It returns the number of aromatic rings found.
func Aromatize(T *chem.Topology) int {
	G := FromTopology(T)
	var rings [][]int
	for _, r := range G.Rings(6) {
		if len(r) >= 5 {
			rings = append(rings, r)
		}
	}
	arom := make(map[bondKey]bool)
	done := make([]bool, len(rings))
	count := 0
	for changed := true; changed; {
		changed = false
		for k, r := range rings {
			if done[k] || !G.aromaticRing(r, arom) {
				continue
			}
			done[k] = true
			changed = true
			count++
			for i, a := range r {
				arom[newBondKey(a, r[(i+1)%len(r)])] = true
			}
		}
	}
	if count == 0 {
		return 0
	}
	for _, b := range T.Bonds {
		if arom[newBondKey(b.At1.Index, b.At2.Index)] {
			b.Order = chem.AromaticBond
		}
	}
	return count
}

func lonePairDonor(symbol string) bool {
	switch symbol {
	case "N", "O", "S", "Se":
		return true
	}
	return false
}

// aromaticRing uses the bond orders the graph was built with, so bonds
// already in arom still count as the double bonds they were.
func (G *Graph) aromaticRing(r []int, arom map[bondKey]bool) bool {
	n := len(r)
	inRing := make(map[int]bool, n)
	for _, a := range r {
		inRing[a] = true
	}
	declared := true
	for i, a := range r {
		o, _ := G.BondOrder(a, r[(i+1)%n])
		switch o {
		case chem.AromaticBond:
		case chem.SingleBond, chem.DoubleBond:
			declared = false
		default:
			return false
		}
	}
	if declared {
		return true
	}
	electrons, donors := 0, 0
	for i, a := range r {
		prev, next := r[(i+n-1)%n], r[(i+1)%n]
		op, _ := G.BondOrder(a, prev)
		on, _ := G.BondOrder(a, next)
		if op == chem.AromaticBond || on == chem.AromaticBond {
			electrons++
			continue
		}
		var doubles []int
		for _, nb := range G.Neighbors(a) {
			o, _ := G.BondOrder(a, nb)
			if o == chem.TripleBond {
				return false
			}
			if o == chem.DoubleBond {
				doubles = append(doubles, nb)
			}
		}
		switch {
		case len(doubles) > 1:
			return false
		case len(doubles) == 1:
			if !inRing[doubles[0]] && !arom[newBondKey(a, doubles[0])] {
				return false
			}
			electrons++
		case n == 5 && donors == 0 && lonePairDonor(G.top.Atom(a).Symbol):
			donors++
			electrons += 2
		default:
			return false
		}
	}
	return electrons == 6
}
