/*
 * loader.go, part of dockeval.
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

// Package loader reads the molecules to be evaluated into memory.
package loader

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	chem "github.com/rmera/dockeval"
	"go.uber.org/atomic"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// SDFDir is the directory, inside a generation directory, holding the structures.
const SDFDir = "SDF"

// Entry is one loaded molecule. Mol is nil if the file could not be parsed.
type Entry struct {
	Filename string
	Mol      *chem.Molecule
}

// Source produces the molecules of one collection. Parse failures don't
// make Load fail: they become entries with a nil Mol. Load only fails when the
// collection itself can't be listed.
type Source interface {
	Name() string
	Load(ctx context.Context) ([]Entry, error)
}

// Failed returns the number of entries that could not be parsed.
func Failed(entries []Entry) int {
	n := 0
	for _, e := range entries {
		if e.Mol == nil {
			n++
		}
	}
	return n
}

// StructurePath returns the path of a generated structure file. Filenames given without
// extension get ".sdf" appended if only the file with the extension exists.
func StructurePath(genPath, filename string) string {
	p := filepath.Join(genPath, SDFDir, filepath.FromSlash(filename))
	if _, err := os.Stat(p); err == nil || strings.HasSuffix(p, ".sdf") {
		return p
	}
	if _, err := os.Stat(p + ".sdf"); err == nil {
		return p + ".sdf"
	}
	return p
}

type job struct {
	key  string
	path string
}

// parseAll parses the files concurrently, with at most workers files
// at a time. The entries keep the order of jobs.
func parseAll(ctx context.Context, jobs []job, workers int, logger *zap.Logger) ([]Entry, error) {
	if workers < 1 {
		workers = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	entries := make([]Entry, len(jobs))
	failed := atomic.NewInt64(0)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, j := range jobs {
		i, j := i, j
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			entries[i].Filename = j.key
			mol, err := chem.MolFileRead(j.path)
			if err != nil {
				failed.Inc()
				logger.Warn("failed to read structure", zap.String("filename", j.key), zap.Error(err))
				return nil
			}
			entries[i].Mol = mol
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if n := failed.Load(); n > 0 {
		logger.Info("unparseable structures", zap.Int64("failed", n), zap.Int("total", len(jobs)))
	}
	return entries, nil
}

// ResolveGenPath returns the directory of resultRoot whose name starts with expName.
// A directory named exactly expName is preferred, otherwise exactly one directory
// must match.
func ResolveGenPath(resultRoot, expName string) (string, error) {
	errid := "ResolveGenPath"
	des, err := os.ReadDir(resultRoot)
	if err != nil {
		return "", errors.Wrap(err, errid)
	}
	var matches []string
	for _, de := range des {
		if !de.IsDir() || !strings.HasPrefix(de.Name(), expName) {
			continue
		}
		if de.Name() == expName {
			return filepath.Join(resultRoot, expName), nil
		}
		matches = append(matches, de.Name())
	}
	switch len(matches) {
	case 0:
		return "", errors.Newf("%s: no directory in %s starts with %q", errid, resultRoot, expName)
	case 1:
		return filepath.Join(resultRoot, matches[0]), nil
	}
	sort.Strings(matches)
	return "", errors.Newf("%s: %d directories in %s start with %q: %v", errid, len(matches), resultRoot, expName, matches)
}
