/*
 * metrics.go, part of dockeval.
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

package evaluate

import (
	"context"

	chem "github.com/rmera/dockeval"
	"github.com/rmera/dockeval/chemgraph"
	"github.com/rmera/dockeval/internal/loader"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// MetricsHeader is the header of the per_gen.csv and per_gt.csv tables.
var MetricsHeader = []string{"filename", "validity", "connected", "num_atoms", "num_heavy_atoms",
	"num_fragments", "num_rings", "mol_weight", "has_boron", "over_valent",
	"num_hbd", "num_hba", "num_rot_bonds", "num_aromatic_rings", "formal_charge"}

// MolMetrics are the intrinsic metrics of one molecule. The numeric fields
// are NaN for molecules that could not be parsed.
type MolMetrics struct {
	Filename      string
	Validity      bool
	Connected     bool
	NumAtoms      float64
	NumHeavyAtoms float64
	NumFragments  float64
	NumRings      float64
	MolWeight     float64
	HasBoron      bool
	OverValent    float64 //atoms bonded beyond their usual valence
	//Lipinski counts: N and O atoms with hydrogens, and all N and O atoms.
	NumHBD           float64
	NumHBA           float64
	NumRotBonds      float64
	NumAromaticRings float64
	FormalCharge     float64
}

// Values returns the row of m in MetricsHeader order.
func (m MolMetrics) Values() []any {
	return []any{m.Filename, m.Validity, m.Connected, m.NumAtoms, m.NumHeavyAtoms,
		m.NumFragments, m.NumRings, m.MolWeight, m.HasBoron, m.OverValent,
		m.NumHBD, m.NumHBA, m.NumRotBonds, m.NumAromaticRings, m.FormalCharge}
}

func unparsed(filename string) MolMetrics {
	return MolMetrics{Filename: filename, NumAtoms: nan(), NumHeavyAtoms: nan(),
		NumFragments: nan(), NumRings: nan(), MolWeight: nan(), OverValent: nan(),
		NumHBD: nan(), NumHBA: nan(), NumRotBonds: nan(), NumAromaticRings: nan(), FormalCharge: nan()}
}

// MetricsEvaluator computes the intrinsic metrics of loaded molecules.
type MetricsEvaluator struct {
	Logger *zap.Logger
}

// Evaluate returns the metrics of e. A molecule is valid if it was parsed
// and no atom exceeds its valence.
func (M *MetricsEvaluator) Evaluate(_ context.Context, e loader.Entry) (res MolMetrics) {
	res = unparsed(e.Filename)
	if e.Mol == nil {
		return res
	}
	defer func() {
		if x := recover(); x != nil {
			if M.Logger != nil {
				M.Logger.Warn("metrics failed", zap.String("filename", e.Filename), zap.Error(panicErr(x)))
			}
			res = unparsed(e.Filename)
		}
	}()
	mol := e.Mol
	g := chemgraph.FromMolecule(mol)
	frags := len(g.Fragments())
	over := len(mol.OverValent())
	res.Validity = over == 0
	res.Connected = frags == 1
	res.NumAtoms = float64(mol.Len())
	res.NumHeavyAtoms = float64(len(mol.HeavyAtoms()))
	res.NumFragments = float64(frags)
	res.NumRings = float64(g.NumRings())
	res.MolWeight = mol.Weight()
	res.HasBoron = mol.HasElement("B")
	res.OverValent = float64(over)
	for i, at := range mol.Atoms {
		if at.Symbol != "N" && at.Symbol != "O" {
			continue
		}
		res.NumHBA++
		if mol.Hydrogens(i) > 0 {
			res.NumHBD++
		}
	}
	res.NumRotBonds = float64(rotatableBonds(g))
	res.NumAromaticRings = float64(chemgraph.Aromatize(mol.Copy().Topology))
	res.FormalCharge = float64(mol.Charge())
	return res
}

// rotatableBonds counts the acyclic single bonds between two atoms with
// at least one other heavy neighbor each, where neither atom is in a triple bond.
func rotatableBonds(g *chemgraph.Graph) int {
	T := g.Topology()
	heavyDegree := func(at *chem.Atom) int {
		n := 0
		for _, b := range at.Bonds {
			if !b.Cross(at).IsHydrogen() {
				n++
			}
		}
		return n
	}
	triple := func(at *chem.Atom) bool {
		return lo.SomeBy(at.Bonds, func(b *chem.Bond) bool { return b.Order == chem.TripleBond })
	}
	n := 0
	for _, b := range T.Bonds {
		a1, a2 := b.At1, b.At2
		if b.Order != chem.SingleBond || a1.IsHydrogen() || a2.IsHydrogen() {
			continue
		}
		if heavyDegree(a1) < 2 || heavyDegree(a2) < 2 || triple(a1) || triple(a2) {
			continue
		}
		if !g.InRing(a1.Index, a2.Index) {
			n++
		}
	}
	return n
}
