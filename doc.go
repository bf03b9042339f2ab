/*
 * doc.go, part of dockeval.
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
 * Gochem is developed at the laboratory for instruction in Swedish, Department of Chemistry,
 * University of Helsinki, Finland.
 *
 */

/*Package chem provides the atom, topology and molecule structures used to evaluate
generated ligands, a reader and writer for MDL molfiles (V2000, the first record of
SDF files), and a few geometric functions.


	**Capabilities**


    Reads molfiles and SDF records, with their data items, from plain, gzip
	or zstd compressed files. Writes V2000 molfiles.

    Keeps bonds and bond orders, which the chemgraph, fingerprint and align
	packages build on.

    Calculates RMSD between sets of coordinates, centroids and extents.

The related packages are:

    v3: the N x 3 coordinate matrix, based on gonum's mat.Dense.

    chemgraph: molecules as gonum graphs.

    fingerprint: path fingerprints and Tanimoto similarity.

    align: symmetry-aware RMSD between two conformations of the same molecule.

    dock: ligand preparation and docking with external programs (Open Babel, AutoDock Vina).

Each row of a v3.Matrix represents one point in space.*/
package chem
