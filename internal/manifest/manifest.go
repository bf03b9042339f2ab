/*
 * manifest.go, part of dockeval.
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

// Package manifest maps the generated structure files to the dataset
// records they were generated for.
package manifest

import (
	"encoding/csv"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
)

// ErrNotFound is returned when a filename has no entry in the manifest.
var ErrNotFound = errors.New("filename not in manifest")

// Required columns.
const (
	ColFilename = "filename"
	ColDataID   = "data_id"
)

// Naming convention of the dataset files.
const (
	ProteinSuffix = "_pro.pdb"
	RefSuffix     = "_mol.sdf"
	structExt     = ".sdf"
)

// Record is one row of the manifest.
type Record struct {
	Filename string
	DataID   string
}

// Manifest is the lookup from generated filename to data_id.
type Manifest struct {
	records []Record
	index   map[string]string
}

// StripExt removes a trailing ".sdf" from name.
func StripExt(name string) string {
	return strings.TrimSuffix(name, structExt)
}

// ProteinFilename returns the name of the receptor file of a data_id.
func ProteinFilename(dataID string) string {
	return dataID + ProteinSuffix
}

// RefFilename returns the name of the reference ligand file of a data_id.
func RefFilename(dataID string) string {
	return dataID + RefSuffix
}

// New builds a manifest from the given records. Filenames are indexed
// with the ".sdf" extension stripped. Two records for the same filename are
// only accepted if they agree on the data_id.
func New(records []Record) (*Manifest, error) {
	M := &Manifest{records: records, index: make(map[string]string, len(records))}
	for i, r := range records {
		if r.Filename == "" || r.DataID == "" {
			return nil, errors.Newf("manifest: record %d has an empty filename or data_id", i)
		}
		key := StripExt(r.Filename)
		if prev, ok := M.index[key]; ok && prev != r.DataID {
			return nil, errors.Newf("manifest: filename %q maps to both %q and %q", r.Filename, prev, r.DataID)
		}
		M.index[key] = r.DataID
	}
	return M, nil
}

// ReadGenInfo reads a manifest CSV file, which must have at least the
// filename and data_id columns.
func ReadGenInfo(path string) (*Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "manifest: open")
	}
	defer f.Close()
	M, err := Read(f)
	if err != nil {
		return nil, errors.Wrapf(err, "manifest: %s", path)
	}
	return M, nil
}

// Read reads a manifest in CSV format from r.
func Read(r io.Reader) (*Manifest, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if err != nil {
		return nil, errors.Wrap(err, "reading header")
	}
	fcol, dcol := -1, -1
	for i, h := range header {
		switch strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")) {
		case ColFilename:
			fcol = i
		case ColDataID:
			dcol = i
		}
	}
	if fcol < 0 || dcol < 0 {
		return nil, errors.Newf("missing %q or %q column in header %v", ColFilename, ColDataID, header)
	}
	var records []Record
	line := 1
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", line)
		}
		if len(row) <= fcol || len(row) <= dcol {
			return nil, errors.Newf("line %d: expected at least %d fields, got %d", line, lo.Max([]int{fcol, dcol})+1, len(row))
		}
		records = append(records, Record{Filename: strings.TrimSpace(row[fcol]), DataID: strings.TrimSpace(row[dcol])})
	}
	return New(records)
}

// Len returns the number of records.
func (M *Manifest) Len() int {
	return len(M.records)
}

// Records returns the records in file order.
func (M *Manifest) Records() []Record {
	return M.records
}

// DataID returns the data_id of filename. The ".sdf" extension, if
// present, is ignored. It returns an error wrapping ErrNotFound if filename is unknown.
func (M *Manifest) DataID(filename string) (string, error) {
	id, ok := M.index[StripExt(filename)]
	if !ok {
		return "", errors.Wrapf(ErrNotFound, "%q", filename)
	}
	return id, nil
}

// GroupByDataID returns the manifest filenames grouped by data_id, each group sorted.
func (M *Manifest) GroupByDataID() map[string][]string {
	groups := lo.GroupBy(M.records, func(r Record) string { return r.DataID })
	ret := make(map[string][]string, len(groups))
	for id, recs := range groups {
		names := lo.Uniq(lo.Map(recs, func(r Record, _ int) string { return r.Filename }))
		sort.Strings(names)
		ret[id] = names
	}
	return ret
}

// DataIDs returns the sorted distinct data_ids of the manifest.
func (M *Manifest) DataIDs() []string {
	ids := lo.Uniq(lo.Values(M.index))
	sort.Strings(ids)
	return ids
}
