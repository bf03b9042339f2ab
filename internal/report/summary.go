/*
 * summary.go, part of dockeval.
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

package report

import (
	"math"
	"sort"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary describes the defined values of a numeric column.
type Summary struct {
	Column  string
	N       int //defined values
	Missing int //NaN values
	Mean    float64
	StdDev  float64
	Min     float64
	Median  float64
	Max     float64
}

// Summarize returns the statistics of each numeric column of rows. A
// column is numeric if its values are float64. Statistics of columns with
// no defined value are NaN.
func Summarize[R Row](header []string, rows []R) []Summary {
	cols := make([][]float64, len(header))
	missing := make([]int, len(header))
	numeric := make([]bool, len(header))
	for _, r := range rows {
		for j, v := range r.Values() {
			if j >= len(header) {
				break
			}
			x, ok := v.(float64)
			if !ok {
				continue
			}
			numeric[j] = true
			if math.IsNaN(x) {
				missing[j]++
				continue
			}
			cols[j] = append(cols[j], x)
		}
	}
	var ret []Summary
	for j, name := range header {
		if !numeric[j] {
			continue
		}
		s := Summary{Column: name, N: len(cols[j]), Missing: missing[j]}
		s.Mean, s.StdDev, s.Min, s.Median, s.Max = math.NaN(), math.NaN(), math.NaN(), math.NaN(), math.NaN()
		if s.N > 0 {
			d := cols[j]
			sort.Float64s(d)
			s.Mean = stat.Mean(d, nil)
			if s.N > 1 {
				s.StdDev = stat.StdDev(d, nil)
			}
			s.Min = floats.Min(d)
			s.Max = floats.Max(d)
			s.Median = stat.Quantile(0.5, stat.Empirical, d, nil)
		}
		ret = append(ret, s)
	}
	return ret
}

// Log writes the summaries to logger, one line per column, at info level.
func Log(logger *zap.Logger, table string, sums []Summary) {
	for _, s := range sums {
		logger.Info("column summary",
			zap.String("table", table),
			zap.String("column", s.Column),
			zap.Int("n", s.N),
			zap.Int("missing", s.Missing),
			zap.Float64("mean", s.Mean),
			zap.Float64("std", s.StdDev),
			zap.Float64("min", s.Min),
			zap.Float64("median", s.Median),
			zap.Float64("max", s.Max),
		)
	}
}
