/*
 * atomicdata.go, part of dockeval.
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

//A map for assigning mass to elements.
//Note that just common "bio-elements" and
//the halogens and metals seen in drug-like molecules are present
var symbolMass = map[string]float64{
	"H":  1.008,
	"D":  2.014,
	"B":  10.81,
	"C":  12.01,
	"O":  16.00,
	"N":  14.01,
	"P":  30.97,
	"S":  32.06,
	"Se": 78.96,
	"K":  39.1,
	"Ca": 40.08,
	"Mg": 24.30,
	"Cl": 35.45,
	"Na": 22.99,
	"Cu": 63.55,
	"Zn": 65.38,
	"Co": 58.93,
	"Fe": 55.84,
	"Mn": 54.94,
	"Cr": 51.996,
	"Si": 28.08,
	"Be": 9.012,
	"F":  18.998,
	"Br": 79.904,
	"I":  126.90,
}

//A map for checking that atoms don't
//have too large a valence. A value of 0 means
//undefined, i.e. that this atom shouldn't
//be checked. P and S are hypervalent often enough
//that we don't check them either.
var symbolMaxValence = map[string]int{
	"H":  1,
	"B":  3,
	"C":  4,
	"O":  2,
	"N":  3,
	"P":  0,
	"S":  0,
	"Se": 0,
	"Be": 0,
	"F":  1,
	"Cl": 1,
	"Br": 1,
	"I":  1,
}

//The usual valence of the elements that can carry
//implicit hydrogens in a molfile.
var symbolDefaultValence = map[string]int{
	"B":  3,
	"C":  4,
	"N":  3,
	"O":  2,
	"P":  3,
	"S":  2,
	"F":  1,
	"Cl": 1,
	"Br": 1,
	"I":  1,
}

//Mass returns the standard atomic mass for the element symbol,
//or 0 if the element is not known.
func Mass(symbol string) float64 {
	return symbolMass[symbol]
}
