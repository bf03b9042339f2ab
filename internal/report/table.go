/*
 * table.go, part of dockeval.
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

// Package report writes the result tables of an evaluation and summarizes them.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/cockroachdb/errors"
)

// Row is a result record. Values returns the cells of the row, in the
// order of the table header.
type Row interface {
	Values() []any
}

// Write writes header and rows to w in CSV format, rows in the given order.
// NaN values become empty cells.
func Write[R Row](w io.Writer, header []string, rows []R) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return errors.Wrap(err, "writing header")
	}
	rec := make([]string, len(header))
	for i, r := range rows {
		vals := r.Values()
		if len(vals) != len(header) {
			return errors.Newf("row %d has %d values, the header has %d columns", i, len(vals), len(header))
		}
		for j, v := range vals {
			rec[j] = Cell(v)
		}
		if err := cw.Write(rec); err != nil {
			return errors.Wrapf(err, "writing row %d", i)
		}
	}
	cw.Flush()
	return errors.Wrap(cw.Error(), "flushing table")
}

// WriteTable writes the table to path, replacing any previous file. The
// table is written to a temporary file in the same directory first, so an
// interrupted run never leaves a truncated table behind.
func WriteTable[R Row](path string, header []string, rows []R) error {
	errid := "WriteTable"
	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+"-*")
	if err != nil {
		return errors.Wrap(err, errid)
	}
	tmp := f.Name()
	defer os.Remove(tmp)
	if err := Write(f, header, rows); err != nil {
		f.Close()
		return errors.Wrapf(err, "%s: %s", errid, path)
	}
	if err := f.Close(); err != nil {
		return errors.Wrapf(err, "%s: %s", errid, path)
	}
	if err := os.Chmod(tmp, 0o644); err != nil {
		return errors.Wrap(err, errid)
	}
	return errors.Wrapf(os.Rename(tmp, path), "%s: %s", errid, path)
}

// Cell formats a value as a table cell.
func Cell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		if math.IsNaN(x) {
			return ""
		}
		return strconv.FormatFloat(x, 'g', -1, 64)
	case float32:
		return Cell(float64(x))
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case bool:
		return strconv.FormatBool(x)
	case fmt.Stringer:
		return x.String()
	}
	return fmt.Sprint(v)
}
