/*
 * rmsd.go, part of dockeval.
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

package align

import (
	"math"

	"github.com/cockroachdb/errors"
	chem "github.com/rmera/dockeval"
	"github.com/rmera/dockeval/chemgraph"
	v3 "github.com/rmera/dockeval/v3"
)

//ErrNoMatch is returned when the two molecules can't be mapped onto each other.
var ErrNoMatch = errors.New("no atom mapping between molecules")

var errStop = errors.New("match limit reached")

//Result contains the outcome of a BestRMSD search.
type Result struct {
	RMSD float64
	//Mapping[i] is the index of the test atom matched to the ith reference atom.
	//Indexes refer to the molecules after hydrogen removal, if that was requested.
	Mapping []int
	Matches int //number of complete mappings examined
}

//BestRMSD enumerates the mappings of the atoms of test onto those of ref that
//preserve elements, bonds and bond orders (at most o.MaxMatches() of them) and returns the lowest RMSD
//among them. The coordinates are compared in place, without any superposition.
//Both molecules are copied and their aromatic rings perceived before the search, so
//different Kekulé structures of the same molecule match each other.
//If o is nil, DefaultOptions() is used.
func BestRMSD(test, ref *chem.Molecule, o *Options) (*Result, error) {
	errid := "BestRMSD"
	if o == nil {
		o = DefaultOptions()
	}
	if test == nil || ref == nil {
		return nil, errors.Newf("%s: nil molecule", errid)
	}
	if o.IgnoreHydrogens() {
		test = test.Heavy()
		ref = ref.Heavy()
	} else {
		test = test.Copy()
		ref = ref.Copy()
	}
	if test.Len() != ref.Len() {
		return nil, errors.Mark(errors.Newf("%s: different number of atoms: %d (test) vs %d (reference)", errid, test.Len(), ref.Len()), ErrNoMatch)
	}
	if ref.Len() == 0 {
		return nil, errors.Newf("%s: molecules have no atoms", errid)
	}
	chemgraph.Aromatize(test.Topology)
	chemgraph.Aromatize(ref.Topology)
	m := &matcher{
		test: test,
		ref:  ref,
		tg:   chemgraph.FromMolecule(test),
		rg:   chemgraph.FromMolecule(ref),
		buf:  v3.Zeros(ref.Len()),
		max:  o.MaxMatches(),
		best: math.Inf(1),
	}
	if m.tg.NumBonds() != m.rg.NumBonds() {
		return nil, errors.Mark(errors.Newf("%s: different number of bonds: %d (test) vs %d (reference)", errid, m.tg.NumBonds(), m.rg.NumBonds()), ErrNoMatch)
	}
	m.prepare()
	if err := m.search(0); err != nil && !errors.Is(err, errStop) {
		return nil, errors.Wrap(err, errid)
	}
	if m.matches == 0 {
		return nil, errors.Mark(errors.Newf("%s: molecules %q and %q are not isomorphic", errid, test.Name, ref.Name), ErrNoMatch)
	}
	return &Result{RMSD: m.best, Mapping: m.bestMap, Matches: m.matches}, nil
}

type matcher struct {
	test, ref *chem.Molecule
	tg, rg    *chemgraph.Graph
	order     []int   //reference atoms in the order they are mapped
	back      [][]int //for each position in order, the neighbors mapped before
	mapping   []int
	used      []bool
	buf       *v3.Matrix //test coordinates in reference order
	max       int
	matches   int
	best      float64
	bestMap   []int
}

//prepare sets a breadth-first order over the reference atoms, so each
//atom (except the first of each fragment) has a mapped neighbor when its turn comes.
func (m *matcher) prepare() {
	n := m.ref.Len()
	m.mapping = make([]int, n)
	m.used = make([]bool, n)
	for i := range m.mapping {
		m.mapping[i] = -1
	}
	pos := make([]int, n)
	for i := range pos {
		pos[i] = -1
	}
	for _, frag := range m.rg.Fragments() {
		//start from the most connected atom, for less branching.
		start := frag[0]
		for _, a := range frag {
			if m.rg.Degree(a) > m.rg.Degree(start) {
				start = a
			}
		}
		queue := []int{start}
		pos[start] = len(m.order)
		m.order = append(m.order, start)
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			for _, nb := range m.rg.Neighbors(cur) {
				if pos[nb] >= 0 {
					continue
				}
				pos[nb] = len(m.order)
				m.order = append(m.order, nb)
				queue = append(queue, nb)
			}
		}
	}
	m.back = make([][]int, n)
	for k, a := range m.order {
		for _, nb := range m.rg.Neighbors(a) {
			if pos[nb] < k {
				m.back[k] = append(m.back[k], nb)
			}
		}
	}
}

func (m *matcher) compatible(k, p int) bool {
	r := m.order[k]
	if m.used[p] || m.test.Atom(p).Symbol != m.ref.Atom(r).Symbol {
		return false
	}
	if m.tg.Degree(p) != m.rg.Degree(r) {
		return false
	}
	for _, rn := range m.back[k] {
		o1, _ := m.rg.BondOrder(r, rn)
		o2, ok := m.tg.BondOrder(p, m.mapping[rn])
		if !ok || o1 != o2 {
			return false
		}
	}
	return true
}

//search returns errStop when the match limit is reached.
func (m *matcher) search(k int) error {
	if k == len(m.order) {
		m.matches++
		if err := m.evaluate(); err != nil {
			return err
		}
		if m.matches >= m.max {
			return errStop
		}
		return nil
	}
	var candidates []int
	if len(m.back[k]) > 0 {
		candidates = m.tg.Neighbors(m.mapping[m.back[k][0]])
	} else {
		candidates = make([]int, m.test.Len())
		for i := range candidates {
			candidates[i] = i
		}
	}
	r := m.order[k]
	for _, p := range candidates {
		if !m.compatible(k, p) {
			continue
		}
		m.mapping[r] = p
		m.used[p] = true
		err := m.search(k + 1)
		m.used[p] = false
		m.mapping[r] = -1
		if err != nil {
			return err
		}
	}
	return nil
}

func (m *matcher) evaluate() error {
	m.buf.SomeVecs(m.test.Coords, m.mapping)
	rmsd, err := chem.RMSD(m.buf, m.ref.Coords)
	if err != nil {
		return err
	}
	if rmsd < m.best {
		m.best = rmsd
		m.bestMap = append(m.bestMap[:0], m.mapping...)
	}
	return nil
}
