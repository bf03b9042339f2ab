/*
 * sources.go, part of dockeval.
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

package loader

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/rmera/dockeval/internal/manifest"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// ManifestSource loads one structure per manifest row from the flat
// layout, genPath/SDF/<filename>. Entries are keyed by the manifest filename.
type ManifestSource struct {
	GenPath  string
	Manifest *manifest.Manifest
	Workers  int
	Logger   *zap.Logger
}

func (S *ManifestSource) Name() string {
	return filepath.Join(S.GenPath, SDFDir)
}

func (S *ManifestSource) Load(ctx context.Context) ([]Entry, error) {
	jobs := lo.Map(S.Manifest.Records(), func(r manifest.Record, _ int) job {
		return job{key: r.Filename, path: StructurePath(S.GenPath, r.Filename)}
	})
	return parseAll(ctx, jobs, S.Workers, S.Logger)
}

// BaselineSource loads the genPath/SDF/<pocket>/<file> tree. Entries are keyed
// by "<pocket>/<file>" and sorted.
type BaselineSource struct {
	GenPath string
	Workers int
	Logger  *zap.Logger
}

func (S *BaselineSource) Name() string {
	return filepath.Join(S.GenPath, SDFDir)
}

func (S *BaselineSource) Load(ctx context.Context) ([]Entry, error) {
	errid := "BaselineSource/Load"
	root := filepath.Join(S.GenPath, SDFDir)
	pockets, err := os.ReadDir(root)
	if err != nil {
		return nil, errors.Wrap(err, errid)
	}
	var jobs []job
	for _, p := range pockets {
		if !p.IsDir() {
			continue
		}
		files, err := os.ReadDir(filepath.Join(root, p.Name()))
		if err != nil {
			return nil, errors.Wrap(err, errid)
		}
		for _, f := range files {
			if f.IsDir() {
				continue
			}
			jobs = append(jobs, job{key: path.Join(p.Name(), f.Name()), path: filepath.Join(root, p.Name(), f.Name())})
		}
	}
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].key < jobs[j].key })
	return parseAll(ctx, jobs, S.Workers, S.Logger)
}

// DatasetSource loads the reference ligands, Root/<data_id>_mol.sdf, of
// the data_ids listed in the data_id column of the CSV SplitFile. Entries are
// keyed by data_id, in file order.
type DatasetSource struct {
	Root      string
	SplitFile string
	Workers   int
	Logger    *zap.Logger
}

func (S *DatasetSource) Name() string {
	return S.SplitFile
}

func (S *DatasetSource) Load(ctx context.Context) ([]Entry, error) {
	errid := "DatasetSource/Load"
	ids, err := readSplit(S.SplitFile)
	if err != nil {
		return nil, errors.Wrap(err, errid)
	}
	jobs := lo.Map(ids, func(id string, _ int) job {
		return job{key: id, path: filepath.Join(S.Root, manifest.RefFilename(id))}
	})
	return parseAll(ctx, jobs, S.Workers, S.Logger)
}

// readSplit returns the distinct data_ids of the split file, in file order.
func readSplit(name string) ([]string, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	cr := csv.NewReader(f)
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if err != nil {
		return nil, errors.Wrapf(err, "reading header of %s", name)
	}
	col := lo.IndexOf(lo.Map(header, func(h string, _ int) string { return strings.TrimSpace(h) }), manifest.ColDataID)
	if col < 0 {
		return nil, errors.Newf("no %q column in %s", manifest.ColDataID, name)
	}
	var ids []string
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "reading %s", name)
		}
		if col < len(row) && strings.TrimSpace(row[col]) != "" {
			ids = append(ids, strings.TrimSpace(row[col]))
		}
	}
	return lo.Uniq(ids), nil
}
