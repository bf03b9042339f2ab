/*
 * report_test.go, part of dockeval.
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
	"bytes"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/rmera/dockeval/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

type row struct {
	name  string
	score float64
	pose  string
	ok    bool
}

func (r row) Values() []any {
	return []any{r.name, r.score, r.pose, r.ok}
}

var header = []string{"filename", "score", "pose", "ok"}

func TestWrite(Te *testing.T) {
	var buf bytes.Buffer
	rows := []row{
		{"b", -7.25, "MODEL 1\nATOM\nENDMDL\n", true},
		{"a", math.NaN(), "", false},
	}
	require.NoError(Te, Write(&buf, header, rows))
	want := "filename,score,pose,ok\n" +
		"b,-7.25,\"MODEL 1\nATOM\nENDMDL\n\",true\n" +
		"a,,,false\n"
	assert.Equal(Te, want, buf.String())

	err := Write(&buf, []string{"filename"}, rows)
	assert.Error(Te, err)
}

func TestWriteTableOverwrites(Te *testing.T) {
	dir := Te.TempDir()
	p := filepath.Join(dir, "vina.csv")
	require.NoError(Te, os.WriteFile(p, []byte("old content that is longer than the new table\n"), 0o600))
	require.NoError(Te, WriteTable(p, header, []row{{"x", 1, "", true}}))
	data, err := os.ReadFile(p)
	require.NoError(Te, err)
	assert.Equal(Te, "filename,score,pose,ok\nx,1,,true\n", string(data))
	des, err := os.ReadDir(dir)
	require.NoError(Te, err)
	assert.Len(Te, des, 1, "no temporary file is left")

	assert.Error(Te, WriteTable(filepath.Join(dir, "nodir", "vina.csv"), header, []row{}))
}

func TestCell(Te *testing.T) {
	assert.Equal(Te, "", Cell(math.NaN()))
	assert.Equal(Te, "0.1", Cell(0.1))
	assert.Equal(Te, "3", Cell(3))
	assert.Equal(Te, "", Cell(nil))
	assert.Equal(Te, "false", Cell(false))
}

func TestSummarize(Te *testing.T) {
	rows := []row{
		{"a", -5, "", true},
		{"b", math.NaN(), "", false},
		{"c", -7, "", true},
		{"d", -6, "", true},
	}
	sums := Summarize(header, rows)
	require.Len(Te, sums, 1)
	s := sums[0]
	assert.Equal(Te, "score", s.Column)
	assert.Equal(Te, 3, s.N)
	assert.Equal(Te, 1, s.Missing)
	assert.InDelta(Te, -6, s.Mean, 1e-12)
	assert.InDelta(Te, 1, s.StdDev, 1e-12)
	assert.Equal(Te, -7.0, s.Min)
	assert.Equal(Te, -6.0, s.Median)
	assert.Equal(Te, -5.0, s.Max)

	sums = Summarize(header, []row{{"a", math.NaN(), "", false}})
	require.Len(Te, sums, 1)
	assert.True(Te, math.IsNaN(sums[0].Mean))
	assert.Equal(Te, 1, sums[0].Missing)

	logger, logs := logging.NewObserved(zapcore.InfoLevel)
	Log(logger, "vina.csv", Summarize(header, rows))
	require.Equal(Te, 1, logs.Len())
	assert.Equal(Te, "score", logs.All()[0].ContextMap()["column"])
}
