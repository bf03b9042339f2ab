/*
 * options.go, part of dockeval.
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

//Options contains the options for the BestRMSD function
type Options struct {
	maxMatches      int
	ignoreHydrogens bool
}

//DefaultOptions returns options that examine up to 30000
//mappings, considering only heavy atoms.
func DefaultOptions() *Options {
	r := new(Options)
	r.maxMatches = 30000
	r.ignoreHydrogens = true
	return r
}

//Returns the maximum number of mappings to be examined,
//and sets it to a new value, if given.
func (O *Options) MaxMatches(n ...int) int {
	if len(n) > 0 && n[0] > 0 {
		O.maxMatches = n[0]
	}
	return O.maxMatches
}

//Returns whether hydrogens are removed before matching,
//and sets it to a new value, if given.
func (O *Options) IgnoreHydrogens(b ...bool) bool {
	if len(b) > 0 {
		O.ignoreHydrogens = b[0]
	}
	return O.ignoreHydrogens
}
