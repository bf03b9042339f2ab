/*
 * similarity.go, part of dockeval.
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
	"path/filepath"

	"github.com/cockroachdb/errors"
	chem "github.com/rmera/dockeval"
	"github.com/rmera/dockeval/align"
	"github.com/rmera/dockeval/fingerprint"
	"github.com/rmera/dockeval/internal/loader"
	"go.uber.org/zap"
)

// RefHeader is the header of the ref.csv table.
var RefHeader = []string{"filename", "ref_name", "sim_ref", "rmsd"}

// RefResult compares a generated molecule with the reference ligand of its pocket.
// SimRef and RMSD are NaN when they could not be computed. RMSD is also NaN
// when the fingerprints of the two molecules differ.
type RefResult struct {
	Filename string
	RefName  string
	SimRef   float64
	RMSD     float64
}

// Values returns the row of r in RefHeader order.
func (r RefResult) Values() []any {
	return []any{r.Filename, r.RefName, r.SimRef, r.RMSD}
}

// SimilarityEvaluator compares generated structures, read from
// GenPath/SDF, to the reference ligands in RefRoot.
type SimilarityEvaluator struct {
	GenPath    string
	RefRoot    string
	MaxMatches int // cap on the atom mappings examined for the RMSD
	Logger     *zap.Logger
}

func (S *SimilarityEvaluator) logger() *zap.Logger {
	if S.Logger == nil {
		return zap.NewNop()
	}
	return S.Logger
}

// Evaluate returns the similarity between in and its reference ligand. The
// generated structure is read again from disk, in.Mol is not used. Failures are
// logged and give NaN fields.
func (S *SimilarityEvaluator) Evaluate(ctx context.Context, in DockInput) (res RefResult) {
	res = RefResult{Filename: in.Filename, RefName: in.RefFilename, SimRef: nan(), RMSD: nan()}
	defer func() {
		if x := recover(); x != nil {
			S.logger().Warn("similarity failed", zap.String("filename", in.Filename), zap.Error(panicErr(x)))
			res.SimRef, res.RMSD = nan(), nan()
		}
	}()
	if err := ctx.Err(); err != nil {
		S.logger().Warn("similarity skipped", zap.String("filename", in.Filename), zap.Error(err))
		return res
	}
	gen, err := chem.MolFileRead(loader.StructurePath(S.GenPath, in.Filename))
	if err != nil {
		S.logger().Debug("unreadable structure", zap.String("filename", in.Filename), zap.Error(err))
		return res
	}
	ref, err := chem.MolFileRead(filepath.Join(S.RefRoot, in.RefFilename))
	if err != nil {
		S.logger().Warn("unreadable reference", zap.String("filename", in.Filename), zap.String("ref_name", in.RefFilename), zap.Error(err))
		return res
	}
	sim, rmsd, err := Compare(gen, ref, S.MaxMatches)
	res.SimRef, res.RMSD = sim, rmsd
	if err != nil {
		S.logger().Warn("similarity failed", zap.String("filename", in.Filename), zap.Error(err))
	}
	return res
}

// Compare returns the fingerprint similarity of gen and ref and, if the
// fingerprints are identical, the lowest RMSD among at most maxMatches atom
// mappings. Otherwise, or if the RMSD can't be computed, the RMSD is NaN.
func Compare(gen, ref *chem.Molecule, maxMatches int) (sim, rmsd float64, err error) {
	sim, err = fingerprint.Similarity(ref, gen)
	if err != nil {
		return nan(), nan(), err
	}
	if sim != 1.0 {
		return sim, nan(), nil
	}
	o := align.DefaultOptions()
	if maxMatches > 0 {
		o.MaxMatches(maxMatches)
	}
	r, err := align.BestRMSD(gen, ref, o)
	if err != nil {
		return sim, nan(), errors.Wrap(err, "rmsd")
	}
	return sim, r.RMSD, nil
}
