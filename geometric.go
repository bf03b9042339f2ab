/*
 * geometric.go, part of dockeval.
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
	"math"

	"github.com/cockroachdb/errors"
	v3 "github.com/rmera/dockeval/v3"
	"gonum.org/v1/gonum/floats"
)

//RMSD returns the root mean square deviation between the vectors of test
//and template, taken in the given order. No superposition is performed.
func RMSD(test, template *v3.Matrix) (float64, error) {
	if test == nil || template == nil {
		return 0, errors.New("RMSD: nil coordinates")
	}
	if test.NVecs() != template.NVecs() {
		return 0, errors.Newf("RMSD: Ill formed matrices for RMSD calculation (%d vs %d vectors)", test.NVecs(), template.NVecs())
	}
	ctempla := template.Clone()
	ctempla.Sub(ctempla.Dense, test.Dense)
	//Frobenius norm
	n := ctempla.Norm(2)
	return math.Sqrt(n * n / float64(template.NVecs())), nil
}

//Centroid returns a 1x3 matrix with the geometric center of the vectors in coords.
func Centroid(coords *v3.Matrix) *v3.Matrix {
	n := coords.NVecs()
	ret := v3.Zeros(1)
	col := make([]float64, n)
	for j := 0; j < 3; j++ {
		for i := 0; i < n; i++ {
			col[i] = coords.At(i, j)
		}
		ret.Set(0, j, floats.Sum(col)/float64(n))
	}
	return ret
}

//Extent returns two 1x3 matrices with the minimum and maximum value
//of each cartesian coordinate in coords.
func Extent(coords *v3.Matrix) (min, max *v3.Matrix) {
	n := coords.NVecs()
	min = v3.Zeros(1)
	max = v3.Zeros(1)
	col := make([]float64, n)
	for j := 0; j < 3; j++ {
		for i := 0; i < n; i++ {
			col[i] = coords.At(i, j)
		}
		min.Set(0, j, floats.Min(col))
		max.Set(0, j, floats.Max(col))
	}
	return min, max
}
