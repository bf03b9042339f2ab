/*
 * bonds.go, part of dockeval.
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

package chem

import "math"

//Bond orders as read from the bond block of a molfile. Aromatic bonds
//get order 1.5.
const (
	SingleBond   = 1.0
	DoubleBond   = 2.0
	TripleBond   = 3.0
	AromaticBond = 1.5
)

//Bond is a chemical bond between two atoms.
type Bond struct {
	Index int
	At1   *Atom
	At2   *Atom
	Order float64 //Order 0 means undetermined
}

//Cross returns the atom bonded to origin through the bond.
func (B *Bond) Cross(origin *Atom) *Atom {
	if origin.Index == B.At1.Index {
		return B.At2
	}
	if origin.Index == B.At2.Index {
		return B.At1
	}
	panic("Trying to cross a bond: The origin atom given is not present in the bond!") //I think this got to be a programming error, so a panic is warranted.
}

//Aromatic returns true if the bond was declared aromatic.
func (B *Bond) Aromatic() bool {
	return B.Order == AromaticBond
}

//Valence returns the sum of the orders of the bonds of the atom, and
//whether any of them is aromatic.
func (A *Atom) Valence() (float64, bool) {
	var v float64
	var arom bool
	for _, b := range A.Bonds {
		v += b.Order
		if b.Aromatic() {
			arom = true
		}
	}
	return v, arom
}

//OverValent returns the indexes of the atoms whose explicit valence exceeds
//the maximum allowed for their element, plus the absolute value of their formal
//charge. Atoms in aromatic bonds are not checked, since that would require a kekulization.
func (T *Topology) OverValent() []int {
	var ret []int
	for i, at := range T.Atoms {
		max := symbolMaxValence[at.Symbol]
		if max == 0 {
			continue
		}
		v, arom := at.Valence()
		if arom {
			continue
		}
		if v > float64(max)+math.Abs(at.Charge)+1e-6 {
			ret = append(ret, i)
		}
	}
	return ret
}

//ImplicitHydrogens returns the number of hydrogens needed to bring the
//atom to the default valence of its element, corrected by its formal
//charge. Elements without a default valence get none. Aromatic bonds
//count as 1.5, so an aromatic NH with no explicit hydrogen gets none.
func (A *Atom) ImplicitHydrogens() int {
	val, ok := symbolDefaultValence[A.Symbol]
	if !ok {
		return 0
	}
	q := int(A.Charge)
	switch A.Symbol {
	case "C":
		if q < 0 {
			q = -q
		}
		val -= q
	case "B":
		val -= q
	default:
		val += q
	}
	v, _ := A.Valence()
	n := val - int(math.Floor(v+1e-6))
	if n < 0 {
		return 0
	}
	return n
}
