/*
 * fingerprint.go, part of dockeval.
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

//Package fingerprint implements topological path fingerprints for molecules,
//and the Tanimoto similarity between them.
package fingerprint

import (
	"math/bits"
	"sort"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/cockroachdb/errors"
	chem "github.com/rmera/dockeval"
	"github.com/rmera/dockeval/chemgraph"
)

//Options for the fingerprint generation.
//With Branched set, every connected subgraph of MinPath to MaxPath bonds
//sets bits, as RDKit's RDKFingerprint does. Otherwise only linear paths do.
//The hashing differs from RDKit's, so the bits (and thus similarities other
//than 0 and 1) are not comparable with RDKit values.
type Options struct {
	MinPath     int //in bonds
	MaxPath     int
	Bits        int
	BitsPerPath int
	Branched    bool
	//If false, hydrogens are removed before generating the fingerprint.
	KeepHydrogens bool
}

//DefaultOptions returns 2048-bit fingerprints, with 2 bits set per
//subgraph of 1 to 7 bonds, branched or linear, over the heavy atoms of the molecule.
func DefaultOptions() *Options {
	return &Options{MinPath: 1, MaxPath: 7, Bits: 2048, BitsPerPath: 2, Branched: true}
}

//Fingerprint is a fixed-size bit vector.
type Fingerprint struct {
	words []uint64
	n     int
}

//NewEmpty returns a fingerprint of n bits, all unset.
func NewEmpty(n int) *Fingerprint {
	return &Fingerprint{words: make([]uint64, (n+63)/64), n: n}
}

//Len returns the size in bits of the fingerprint.
func (F *Fingerprint) Len() int {
	return F.n
}

func (F *Fingerprint) Set(i int) {
	F.words[i/64] |= 1 << uint(i%64)
}

func (F *Fingerprint) IsSet(i int) bool {
	return F.words[i/64]&(1<<uint(i%64)) != 0
}

//Count returns the number of bits set.
func (F *Fingerprint) Count() int {
	c := 0
	for _, w := range F.words {
		c += bits.OnesCount64(w)
	}
	return c
}

//New returns the topological fingerprint of mol. Aromatic rings are perceived
//on a copy of the molecule first, so all Kekulé forms give the same fingerprint.
//If o is nil, DefaultOptions() are used.
func New(mol *chem.Molecule, o *Options) *Fingerprint {
	if o == nil {
		o = DefaultOptions()
	}
	if o.KeepHydrogens {
		mol = mol.Copy()
	} else {
		mol = mol.Heavy()
	}
	chemgraph.Aromatize(mol.Topology)
	fp := NewEmpty(o.Bits)
	g := chemgraph.FromMolecule(mol)
	inv := atomInvariants(g)
	if o.Branched {
		bonds := g.Bonds()
		for _, s := range g.Subgraphs(o.MaxPath) {
			if len(s) >= o.MinPath {
				fp.setKey(subgraphKey(g, inv, bonds, s), o.BitsPerPath)
			}
		}
		return fp
	}
	for _, p := range g.Paths(o.MaxPath) {
		if len(p)-1 >= o.MinPath {
			fp.setKey(pathKey(g, inv, p), o.BitsPerPath)
		}
	}
	return fp
}

func (F *Fingerprint) setKey(key string, nbits int) {
	for k := 0; k < nbits; k++ {
		h := xxhash.Sum64String(strconv.Itoa(k) + key)
		F.Set(int(h % uint64(F.n)))
	}
}

//the invariant of an atom is its element and whether it is aromatic.
func atomInvariants(g *chemgraph.Graph) []string {
	T := g.Topology()
	ret := make([]string, T.Len())
	for i, at := range T.Atoms {
		arom := false
		for _, b := range at.Bonds {
			if b.Aromatic() {
				arom = true
				break
			}
		}
		if arom {
			ret[i] = strings.ToLower(at.Symbol)
		} else {
			ret[i] = at.Symbol
		}
	}
	return ret
}

//pathKey returns a string that identifies the path regardless of the direction
//in which it is walked.
func pathKey(g *chemgraph.Graph, inv []string, p []int) string {
	fw := pathString(g, inv, p, false)
	bw := pathString(g, inv, p, true)
	if bw < fw {
		return bw
	}
	return fw
}

func pathString(g *chemgraph.Graph, inv []string, p []int, reverse bool) string {
	var sb strings.Builder
	l := len(p)
	at := func(i int) int {
		if reverse {
			return p[l-1-i]
		}
		return p[i]
	}
	for i := 0; i < l; i++ {
		sb.WriteString(inv[at(i)])
		if i < l-1 {
			o, _ := g.BondOrder(at(i), at(i+1))
			sb.WriteString(bondSymbol(o))
		}
	}
	return sb.String()
}

//subgraphKey describes each bond by its order and the invariant and subgraph
//degree of both its atoms. The sorted bond descriptions make up the key.
func subgraphKey(g *chemgraph.Graph, inv []string, bonds [][2]int, s []int) string {
	deg := make(map[int]int, len(s)+1)
	for _, i := range s {
		deg[bonds[i][0]]++
		deg[bonds[i][1]]++
	}
	parts := make([]string, len(s))
	for k, i := range s {
		a, b := bonds[i][0], bonds[i][1]
		sa := inv[a] + strconv.Itoa(deg[a])
		sb := inv[b] + strconv.Itoa(deg[b])
		if sb < sa {
			sa, sb = sb, sa
		}
		o, _ := g.BondOrder(a, b)
		parts[k] = sa + bondSymbol(o) + sb
	}
	sort.Strings(parts)
	return strings.Join(parts, ".")
}

func bondSymbol(order float64) string {
	switch order {
	case chem.DoubleBond:
		return "="
	case chem.TripleBond:
		return "#"
	case chem.AromaticBond:
		return ":"
	}
	return "-"
}

//Tanimoto returns the Tanimoto coefficient between a and b, i.e.
//|a AND b| / |a OR b|. Two empty fingerprints have a coefficient of 0.
func Tanimoto(a, b *Fingerprint) (float64, error) {
	if a.Len() != b.Len() {
		return 0, errors.Newf("Tanimoto: fingerprint length mismatch: %d vs %d", a.Len(), b.Len())
	}
	var and, or int
	for i := range a.words {
		and += bits.OnesCount64(a.words[i] & b.words[i])
		or += bits.OnesCount64(a.words[i] | b.words[i])
	}
	if or == 0 {
		return 0, nil
	}
	return float64(and) / float64(or), nil
}

//Similarity returns the Tanimoto coefficient between the default fingerprints of
//m1 and m2.
func Similarity(m1, m2 *chem.Molecule) (float64, error) {
	if m1 == nil || m2 == nil {
		return 0, errors.New("Similarity: nil molecule")
	}
	o := DefaultOptions()
	return Tanimoto(New(m1, o), New(m2, o))
}
