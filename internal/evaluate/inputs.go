/*
 * inputs.go, part of dockeval.
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

// Package evaluate contains the per-molecule evaluations of a generated set:
// intrinsic metrics, similarity to the reference ligand and docking scores.
// Every evaluation turns its failures into a result with NaN fields, so a
// batch of them never stops because of one molecule.
package evaluate

import (
	"math"

	"github.com/cockroachdb/errors"
	chem "github.com/rmera/dockeval"
	"github.com/rmera/dockeval/internal/loader"
	"github.com/rmera/dockeval/internal/manifest"
	"github.com/samber/lo"
)

var (
	// ErrNilMolecule marks evaluations of structures that could not be parsed.
	ErrNilMolecule = errors.New("molecule is None")
	// ErrForbiddenElement marks molecules with an element the docking engine can't handle.
	ErrForbiddenElement = errors.New("forbidden element")
)

// ForbiddenElements are the elements a molecule must not contain to be docked.
var ForbiddenElements = []string{"B"}

// DockInput is one generated molecule joined with the files of its dataset record.
type DockInput struct {
	Filename        string
	Mol             *chem.Molecule
	ProteinFilename string
	RefFilename     string
}

// BuildInputs joins the loaded entries with the manifest. Every entry must have a
// manifest record, otherwise an error wrapping manifest.ErrNotFound is returned.
func BuildInputs(entries []loader.Entry, M *manifest.Manifest) ([]DockInput, error) {
	var lookupErr error
	inputs := lo.Map(entries, func(e loader.Entry, _ int) DockInput {
		id, err := M.DataID(e.Filename)
		if err != nil {
			lookupErr = errors.CombineErrors(lookupErr, err)
			return DockInput{Filename: e.Filename, Mol: e.Mol}
		}
		return DockInput{
			Filename:        e.Filename,
			Mol:             e.Mol,
			ProteinFilename: manifest.ProteinFilename(id),
			RefFilename:     manifest.RefFilename(id),
		}
	})
	if lookupErr != nil {
		return nil, errors.Wrap(lookupErr, "building inputs")
	}
	return inputs, nil
}

func nilMolErr(filename string) error {
	return errors.Mark(errors.Newf("%s is None", filename), ErrNilMolecule)
}

func validate(filename string, mol *chem.Molecule) error {
	if mol == nil {
		return nilMolErr(filename)
	}
	for _, sym := range ForbiddenElements {
		if mol.HasElement(sym) {
			return errors.Mark(errors.Newf("%s contains element %s", filename, sym), ErrForbiddenElement)
		}
	}
	return nil
}

func nan() float64 {
	return math.NaN()
}

// panicErr turns a recovered value into an error.
func panicErr(x any) error {
	if err, ok := x.(error); ok {
		return errors.Wrap(err, "panic")
	}
	return errors.Newf("panic: %v", x)
}
