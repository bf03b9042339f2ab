/*
 * graph.go, part of dockeval.
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

//Package chemgraph builds gonum graphs from the bonds of a molecule.
package chemgraph

import (
	"sort"

	chem "github.com/rmera/dockeval"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// Graph is an undirected graph where each atom is a node, with
// ID equal to the atom's index, and each bond an edge
// weighted by the bond order.
type Graph struct {
	g   *simple.WeightedUndirectedGraph
	top *chem.Topology
}

// FromTopology builds the graph for the given topology.
// Atoms without bonds are still nodes of the graph.
func FromTopology(T *chem.Topology) *Graph {
	g := simple.NewWeightedUndirectedGraph(0, 0)
	for i := 0; i < T.Len(); i++ {
		g.AddNode(simple.Node(int64(i)))
	}
	for _, b := range T.Bonds {
		i1, i2 := int64(b.At1.Index), int64(b.At2.Index)
		if g.HasEdgeBetween(i1, i2) {
			continue
		}
		g.SetWeightedEdge(g.NewWeightedEdge(simple.Node(i1), simple.Node(i2), b.Order))
	}
	return &Graph{g: g, top: T}
}

// FromMolecule is a shortcut for FromTopology(mol.Topology)
func FromMolecule(mol *chem.Molecule) *Graph {
	return FromTopology(mol.Topology)
}

// Undirected returns the underlying gonum graph.
func (G *Graph) Undirected() graph.WeightedUndirected {
	return G.g
}

func (G *Graph) Topology() *chem.Topology {
	return G.top
}

func (G *Graph) Len() int {
	return G.top.Len()
}

func (G *Graph) NumBonds() int {
	return G.g.Edges().Len()
}

// Neighbors returns the sorted indexes of the atoms bonded to atom i.
func (G *Graph) Neighbors(i int) []int {
	nodes := G.g.From(int64(i))
	ret := make([]int, 0, nodes.Len())
	for nodes.Next() {
		ret = append(ret, int(nodes.Node().ID()))
	}
	sort.Ints(ret)
	return ret
}

func (G *Graph) Degree(i int) int {
	return G.g.From(int64(i)).Len()
}

// BondOrder returns the order of the bond between i and j, and
// false if there is no such bond.
func (G *Graph) BondOrder(i, j int) (float64, bool) {
	if i == j {
		return 0, false
	}
	return G.g.Weight(int64(i), int64(j))
}

// Fragments returns the connected components of the graph, each one
// as a sorted slice of atom indexes. The fragments are sorted by their first atom.
func (G *Graph) Fragments() [][]int {
	cc := topo.ConnectedComponents(G.g)
	ret := make([][]int, 0, len(cc))
	for _, c := range cc {
		frag := make([]int, 0, len(c))
		for _, n := range c {
			frag = append(frag, int(n.ID()))
		}
		sort.Ints(frag)
		ret = append(ret, frag)
	}
	sort.Slice(ret, func(i, j int) bool { return ret[i][0] < ret[j][0] })
	return ret
}

// NumRings returns the cyclomatic number of the graph, which is the
// size of the smallest set of smallest rings.
func (G *Graph) NumRings() int {
	return G.NumBonds() - G.Len() + len(topo.ConnectedComponents(G.g))
}

// Paths returns all the linear paths of 1 to maxBonds bonds in the graph,
// as sequences of atom indexes. Each path is returned once, in the
// direction where the first atom has the lowest index of the two ends.
func (G *Graph) Paths(maxBonds int) [][]int {
	var ret [][]int
	if maxBonds < 1 {
		return ret
	}
	visited := make([]bool, G.Len())
	path := make([]int, 0, maxBonds+1)
	var walk func(at int)
	walk = func(at int) {
		visited[at] = true
		path = append(path, at)
		if len(path) > 1 && path[0] < at {
			p := make([]int, len(path))
			copy(p, path)
			ret = append(ret, p)
		}
		if len(path) <= maxBonds {
			for _, n := range G.Neighbors(at) {
				if !visited[n] {
					walk(n)
				}
			}
		}
		path = path[:len(path)-1]
		visited[at] = false
	}
	for i := 0; i < G.Len(); i++ {
		walk(i)
	}
	return ret
}

// Bonds returns the bonds of the graph as pairs of atom indexes, with the
// lowest index first, sorted.
func (G *Graph) Bonds() [][2]int {
	edges := G.g.Edges()
	ret := make([][2]int, 0, edges.Len())
	for edges.Next() {
		e := edges.Edge()
		i, j := int(e.From().ID()), int(e.To().ID())
		if i > j {
			i, j = j, i
		}
		ret = append(ret, [2]int{i, j})
	}
	sort.Slice(ret, func(a, b int) bool {
		if ret[a][0] != ret[b][0] {
			return ret[a][0] < ret[b][0]
		}
		return ret[a][1] < ret[b][1]
	})
	return ret
}

// Subgraphs returns every connected set of 1 to maxBonds bonds, branched
// or linear, each as a slice of indexes into Bonds(). Each set is
// returned exactly once.
func (G *Graph) Subgraphs(maxBonds int) [][]int {
	var ret [][]int
	if maxBonds < 1 {
		return ret
	}
	bonds := G.Bonds()
	byAtom := make(map[int][]int)
	for i, b := range bonds {
		byAtom[b[0]] = append(byAtom[b[0]], i)
		byAtom[b[1]] = append(byAtom[b[1]], i)
	}
	//two bonds are adjacent if they share an atom.
	adj := make([][]int, len(bonds))
	for i, b := range bonds {
		for _, a := range b {
			for _, j := range byAtom[a] {
				if j != i {
					adj[i] = append(adj[i], j)
				}
			}
		}
	}
	//u is in sub or next to it.
	touches := func(u int, sub []int) bool {
		for _, s := range sub {
			if s == u {
				return true
			}
			for _, x := range adj[s] {
				if x == u {
					return true
				}
			}
		}
		return false
	}
	//extension sets only take bonds with a higher index than the root, and not
	//adjacent to the current set, so no set is built twice.
	var extend func(root int, sub, ext []int)
	extend = func(root int, sub, ext []int) {
		ret = append(ret, sub)
		if len(sub) == maxBonds {
			return
		}
		for len(ext) > 0 {
			w := ext[len(ext)-1]
			ext = ext[:len(ext)-1]
			next := append([]int(nil), ext...)
			for _, u := range adj[w] {
				if u > root && !touches(u, sub) {
					next = append(next, u)
				}
			}
			grown := append(sub[:len(sub):len(sub)], w)
			extend(root, grown, next)
		}
	}
	for v := range bonds {
		var ext []int
		for _, u := range adj[v] {
			if u > v {
				ext = append(ext, u)
			}
		}
		extend(v, []int{v}, ext)
	}
	return ret
}
