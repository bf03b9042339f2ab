/*
 * chem.go, part of dockeval.
 *
 *
 * Copyright 2012 Raul Mera <rmera{at}chemDOThelsinkiDOTfi>
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
/***Dedicated to the long life of the Ven. Khenpo Phuntzok Tenzin Rinpoche***/

package chem

import (
	"strings"

	"github.com/cockroachdb/errors"
	v3 "github.com/rmera/dockeval/v3"
)

//Atom contains the atoms read except for the coordinates, which will be in a matrix.
type Atom struct {
	Name   string
	ID     int //the serial number in the file, 1-based
	Index  int //the position in the Topology, 0-based
	Symbol string
	Charge float64 //formal charge
	Mass   float64
	Bonds  []*Bond
}

//Copy returns a copy of the Atom object. Bonds are not copied.
func (A *Atom) Copy() *Atom {
	if A == nil {
		panic("Attempted to copy a nil atom")
	}
	r := *A
	r.Bonds = nil
	return &r
}

//IsHydrogen returns true if the atom is a hydrogen (or an isotope of it).
func (A *Atom) IsHydrogen() bool {
	return A.Symbol == "H" || A.Symbol == "D" || A.Symbol == "T"
}

/*****Topology type***/

//Topology contains information about a molecule which is not expected to change in time (i.e. everything except for coordinates)
type Topology struct {
	Atoms []*Atom
	Bonds []*Bond
}

//NewTopology builds a topology from the given atoms and bonds, setting
//the Index of each atom and bond to its position in the slices, and
//registering every bond in the Bonds slice of both its atoms.
func NewTopology(ats []*Atom, bonds []*Bond) (*Topology, error) {
	errid := "NewTopology"
	if ats == nil {
		return nil, errors.Newf("%s: Supplied a nil atom slice", errid)
	}
	T := &Topology{Atoms: ats, Bonds: bonds}
	for i, at := range ats {
		at.Index = i
		at.Bonds = at.Bonds[:0]
	}
	for i, b := range bonds {
		if b.At1 == nil || b.At2 == nil {
			return nil, errors.Newf("%s: bond %d has a nil atom", errid, i)
		}
		if b.At1 == b.At2 {
			return nil, errors.Newf("%s: bond %d connects atom %d to itself", errid, i, b.At1.ID)
		}
		b.Index = i
		b.At1.Bonds = append(b.At1.Bonds, b)
		b.At2.Bonds = append(b.At2.Bonds, b)
	}
	return T, nil
}

//Len returns the number of atoms in the topology.
func (T *Topology) Len() int {
	return len(T.Atoms)
}

//Atom returns the Atom corresponding to the index i
//of the Atom slice in the Topology. Panics if
//out of range.
func (T *Topology) Atom(i int) *Atom {
	if i >= T.Len() || i < 0 {
		panic("Topology: Requested Atom out of bounds")
	}
	return T.Atoms[i]
}

//Charge returns the total formal charge of the topology.
func (T *Topology) Charge() int {
	var c float64
	for _, at := range T.Atoms {
		c += at.Charge
	}
	return int(c)
}

//HasElement returns true if at least one atom of the topology
//has the given element symbol. The comparison is case-insensitive.
func (T *Topology) HasElement(symbol string) bool {
	for _, at := range T.Atoms {
		if strings.EqualFold(at.Symbol, symbol) {
			return true
		}
	}
	return false
}

//HeavyAtoms returns the indexes of all the non-hydrogen atoms.
func (T *Topology) HeavyAtoms() []int {
	ret := make([]int, 0, T.Len())
	for i, at := range T.Atoms {
		if !at.IsHydrogen() {
			ret = append(ret, i)
		}
	}
	return ret
}

//Weight returns the molecular weight of the topology, including
//implicit hydrogens. Atoms with an unknown mass contribute nothing.
func (T *Topology) Weight() float64 {
	var w float64
	h := Mass("H")
	for _, at := range T.Atoms {
		w += at.Mass + float64(at.ImplicitHydrogens())*h
	}
	return w
}

//Hydrogens returns the number of hydrogens on atom i, explicit or implicit.
func (T *Topology) Hydrogens(i int) int {
	at := T.Atom(i)
	n := at.ImplicitHydrogens()
	for _, b := range at.Bonds {
		if b.Cross(at).IsHydrogen() {
			n++
		}
	}
	return n
}

/**Type Molecule**/

//Molecule contains all the info for a molecule in one conformation.
type Molecule struct {
	*Topology
	Coords *v3.Matrix
	Name   string
	Props  map[string]string //SDF data items
}

//NewMolecule makes a molecule with the given topology and coordinates and returns it.
//It returns an error if the number of atoms and of coordinates differ.
func NewMolecule(coords *v3.Matrix, top *Topology) (*Molecule, error) {
	errid := "NewMolecule"
	if top == nil || coords == nil {
		return nil, errors.Newf("%s: Supplied a nil Topology or coordinate matrix", errid)
	}
	if coords.NVecs() != top.Len() {
		return nil, errors.Newf("%s: Mismatched number of atoms (%d) and coordinates (%d)", errid, top.Len(), coords.NVecs())
	}
	return &Molecule{Topology: top, Coords: coords, Props: make(map[string]string)}, nil
}

//Copy returns a deep copy of the molecule.
func (M *Molecule) Copy() *Molecule {
	ats := make([]*Atom, M.Len())
	for i, at := range M.Atoms {
		ats[i] = at.Copy()
	}
	bonds := make([]*Bond, len(M.Bonds))
	for i, b := range M.Bonds {
		bonds[i] = &Bond{At1: ats[b.At1.Index], At2: ats[b.At2.Index], Order: b.Order}
	}
	top, err := NewTopology(ats, bonds)
	if err != nil {
		panic("Molecule/Copy: " + err.Error()) //can't happen for a well-formed molecule
	}
	r := &Molecule{Topology: top, Coords: M.Coords.Clone(), Name: M.Name, Props: make(map[string]string, len(M.Props))}
	for k, v := range M.Props {
		r.Props[k] = v
	}
	return r
}

//Heavy returns a copy of the molecule with all the hydrogens removed.
func (M *Molecule) Heavy() *Molecule {
	heavy := M.HeavyAtoms()
	if len(heavy) == M.Len() {
		return M.Copy()
	}
	old2new := make(map[int]int, len(heavy))
	ats := make([]*Atom, len(heavy))
	for i, idx := range heavy {
		ats[i] = M.Atoms[idx].Copy()
		old2new[idx] = i
	}
	bonds := make([]*Bond, 0, len(M.Bonds))
	for _, b := range M.Bonds {
		i1, ok1 := old2new[b.At1.Index]
		i2, ok2 := old2new[b.At2.Index]
		if ok1 && ok2 {
			bonds = append(bonds, &Bond{At1: ats[i1], At2: ats[i2], Order: b.Order})
		}
	}
	top, _ := NewTopology(ats, bonds)
	var coords *v3.Matrix
	if len(heavy) > 0 {
		coords = v3.Zeros(len(heavy))
		coords.SomeVecs(M.Coords, heavy)
	}
	r := &Molecule{Topology: top, Coords: coords, Name: M.Name, Props: make(map[string]string)}
	return r
}
