/*
 * sdf.go, part of dockeval.
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

package chem

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	v3 "github.com/rmera/dockeval/v3"
)

//ErrParse marks every error produced because of a malformed structure file.
var ErrParse = errors.New("malformed structure file")

func parseErr(errid string, line int, format string, args ...interface{}) error {
	err := errors.Newf("%s: line %d: %s", errid, line, fmt.Sprintf(format, args...))
	return errors.Mark(err, ErrParse)
}

//zstd.Decoder doesn't implement io.ReadCloser, as its Close returns nothing.
type zstdCloser struct {
	*zstd.Decoder
}

func (z zstdCloser) Close() error {
	z.Decoder.Close()
	return nil
}

//openMaybeCompressed opens the file. Files ending in .gz or .zst
//are decompressed on the fly.
func openMaybeCompressed(name string) (io.ReadCloser, func() error, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, nil, err
	}
	lname := strings.ToLower(name)
	var r io.ReadCloser
	switch {
	case strings.HasSuffix(lname, ".gz"):
		r, err = gzip.NewReader(bufio.NewReader(f))
	case strings.HasSuffix(lname, ".zst"):
		var d *zstd.Decoder
		d, err = zstd.NewReader(bufio.NewReader(f))
		if err == nil {
			r = zstdCloser{d}
		}
	default:
		return f, f.Close, nil
	}
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	closer := func() error {
		r.Close()
		return f.Close()
	}
	return r, closer, nil
}

//MolFileRead reads the first molecule of the MDL molfile or SDF file given
//and returns it. Only the V2000 format is supported.
func MolFileRead(molname string) (*Molecule, error) {
	r, closer, err := openMaybeCompressed(molname)
	if err != nil {
		return nil, errors.Wrapf(err, "MolFileRead: can't open %s", molname)
	}
	defer closer()
	mol, err := MolRead(r)
	if err != nil {
		return nil, errors.Wrapf(err, "MolFileRead: %s", molname)
	}
	return mol, nil
}

//MolRead reads the first record of a V2000 molfile/SDF stream.
//Charges from "M  CHG" lines replace those in the atom block, as
//the format demands. SDF data items are stored in the Props map of the molecule.
func MolRead(r io.Reader) (*Molecule, error) {
	errid := "MolRead"
	scan := bufio.NewScanner(r)
	scan.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineno := 0
	next := func() (string, bool) {
		if !scan.Scan() {
			return "", false
		}
		lineno++
		return strings.TrimRight(scan.Text(), "\r"), true
	}
	header := make([]string, 3)
	for i := range header {
		l, ok := next()
		if !ok {
			return nil, parseErr(errid, lineno, "truncated header")
		}
		header[i] = l
	}
	counts, ok := next()
	if !ok {
		return nil, parseErr(errid, lineno, "missing counts line")
	}
	if strings.Contains(counts, "V3000") {
		return nil, parseErr(errid, lineno, "V3000 molfiles are not supported")
	}
	if len(counts) < 6 {
		return nil, parseErr(errid, lineno, "counts line too short: %q", counts)
	}
	natoms, err1 := strconv.Atoi(strings.TrimSpace(counts[0:3]))
	nbonds, err2 := strconv.Atoi(strings.TrimSpace(counts[3:6]))
	if err1 != nil || err2 != nil || natoms <= 0 || nbonds < 0 {
		return nil, parseErr(errid, lineno, "invalid counts line: %q", counts)
	}
	ats := make([]*Atom, natoms)
	coords := make([]float64, 0, 3*natoms)
	for i := 0; i < natoms; i++ {
		l, ok := next()
		if !ok {
			return nil, parseErr(errid, lineno, "expected %d atoms, found %d", natoms, i)
		}
		at, xyz, err := parseAtomLine(l)
		if err != nil {
			return nil, parseErr(errid, lineno, "%s", err.Error())
		}
		at.ID = i + 1
		ats[i] = at
		coords = append(coords, xyz[:]...)
	}
	bonds := make([]*Bond, nbonds)
	for i := 0; i < nbonds; i++ {
		l, ok := next()
		if !ok {
			return nil, parseErr(errid, lineno, "expected %d bonds, found %d", nbonds, i)
		}
		if len(l) < 9 {
			return nil, parseErr(errid, lineno, "bond line too short: %q", l)
		}
		a1, e1 := strconv.Atoi(strings.TrimSpace(l[0:3]))
		a2, e2 := strconv.Atoi(strings.TrimSpace(l[3:6]))
		t, e3 := strconv.Atoi(strings.TrimSpace(l[6:9]))
		if e1 != nil || e2 != nil || e3 != nil {
			return nil, parseErr(errid, lineno, "invalid bond line: %q", l)
		}
		if a1 < 1 || a1 > natoms || a2 < 1 || a2 > natoms || a1 == a2 {
			return nil, parseErr(errid, lineno, "bond refers to invalid atoms %d-%d", a1, a2)
		}
		order, err := bondOrder(t)
		if err != nil {
			return nil, parseErr(errid, lineno, "%s", err.Error())
		}
		bonds[i] = &Bond{At1: ats[a1-1], At2: ats[a2-1], Order: order}
	}
	props := make(map[string]string)
	chgseen := false
	ended := false
	for !ended {
		l, ok := next()
		if !ok {
			break
		}
		switch {
		case strings.HasPrefix(l, "M  END"):
			ended = true
		case strings.HasPrefix(l, "M  CHG"):
			if !chgseen {
				for _, at := range ats {
					at.Charge = 0
				}
				chgseen = true
			}
			if err := parseChargeLine(l, ats); err != nil {
				return nil, parseErr(errid, lineno, "%s", err.Error())
			}
		case strings.HasPrefix(l, "$$$$"):
			return nil, parseErr(errid, lineno, "record ended before M  END")
		}
	}
	if !ended {
		if err := scan.Err(); err != nil {
			return nil, errors.Wrap(err, errid)
		}
		return nil, parseErr(errid, lineno, "missing M  END")
	}
	//data items, until the end of the record.
	var key string
	var val []string
	flush := func() {
		if key != "" {
			props[key] = strings.Join(val, "\n")
		}
		key, val = "", nil
	}
	for {
		l, ok := next()
		if !ok || strings.HasPrefix(l, "$$$$") {
			break
		}
		if strings.HasPrefix(l, ">") {
			flush()
			if s, e := strings.Index(l, "<"), strings.LastIndex(l, ">"); s >= 0 && e > s {
				key = l[s+1 : e]
			}
			continue
		}
		if key == "" {
			continue
		}
		if strings.TrimSpace(l) == "" {
			flush()
			continue
		}
		val = append(val, l)
	}
	flush()
	if err := scan.Err(); err != nil {
		return nil, errors.Wrap(err, errid)
	}
	top, err := NewTopology(ats, bonds)
	if err != nil {
		return nil, errors.Mark(errors.Wrap(err, errid), ErrParse)
	}
	cmat, err := v3.NewMatrix(coords)
	if err != nil {
		return nil, errors.Mark(errors.Wrap(err, errid), ErrParse)
	}
	mol, err := NewMolecule(cmat, top)
	if err != nil {
		return nil, errors.Mark(errors.Wrap(err, errid), ErrParse)
	}
	mol.Name = strings.TrimSpace(header[0])
	mol.Props = props
	return mol, nil
}

//parseAtomLine parses an atom line of the atom block. Lines that don't fit
//the fixed-width format are read as whitespace-separated "x y z symbol" fields.
func parseAtomLine(l string) (*Atom, [3]float64, error) {
	if len(l) >= 34 {
		chg := ""
		if len(l) >= 39 {
			chg = l[36:39]
		}
		at, xyz, err := atomFromFields([]string{l[0:10], l[10:20], l[20:30], l[31:34]}, chg)
		if err == nil {
			return at, xyz, nil
		}
	}
	fields := strings.Fields(l)
	if len(fields) < 4 {
		return nil, [3]float64{}, errors.Newf("atom line too short: %q", l)
	}
	chg := ""
	if len(fields) >= 6 {
		chg = fields[5]
	}
	at, xyz, err := atomFromFields(fields[:4], chg)
	if err != nil {
		return nil, xyz, errors.Wrapf(err, "atom line %q", l)
	}
	return at, xyz, nil
}

func atomFromFields(fields []string, chgfield string) (*Atom, [3]float64, error) {
	var xyz [3]float64
	for i := 0; i < 3; i++ {
		f, err := strconv.ParseFloat(strings.TrimSpace(fields[i]), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, xyz, errors.Newf("invalid coordinate %q", fields[i])
		}
		xyz[i] = f
	}
	sym := strings.TrimSpace(fields[3])
	if sym == "" || strings.ContainsAny(sym, "0123456789.-+") {
		return nil, xyz, errors.Newf("invalid element symbol %q", sym)
	}
	at := &Atom{Name: sym, Symbol: sym, Mass: Mass(sym)}
	chgfield = strings.TrimSpace(chgfield)
	if chgfield != "" {
		code, err := strconv.Atoi(chgfield)
		if err != nil {
			return nil, xyz, errors.Newf("invalid charge field %q", chgfield)
		}
		//0 is uncharged, 4 is a doublet radical.
		if code >= 1 && code <= 7 && code != 4 {
			at.Charge = float64(4 - code)
		}
	}
	return at, xyz, nil
}

func bondOrder(t int) (float64, error) {
	switch t {
	case 1:
		return SingleBond, nil
	case 2:
		return DoubleBond, nil
	case 3:
		return TripleBond, nil
	case 4:
		return AromaticBond, nil
	case 5, 6, 7, 8:
		//query bond types. We keep them as single bonds.
		return SingleBond, nil
	}
	return 0, errors.Newf("unknown bond type %d", t)
}

func bondType(order float64) int {
	switch order {
	case DoubleBond:
		return 2
	case TripleBond:
		return 3
	case AromaticBond:
		return 4
	}
	return 1
}

//M  CHGnn8 aaa vvv ...
func parseChargeLine(l string, ats []*Atom) error {
	f := strings.Fields(l)
	if len(f) < 3 {
		return errors.Newf("short M  CHG line: %q", l)
	}
	n, err := strconv.Atoi(f[2])
	if err != nil || len(f) < 3+2*n {
		return errors.Newf("invalid M  CHG line: %q", l)
	}
	for i := 0; i < n; i++ {
		a, e1 := strconv.Atoi(f[3+2*i])
		c, e2 := strconv.Atoi(f[4+2*i])
		if e1 != nil || e2 != nil || a < 1 || a > len(ats) {
			return errors.Newf("invalid M  CHG entry in line: %q", l)
		}
		ats[a-1].Charge = float64(c)
	}
	return nil
}

//MolWrite writes mol to w as a V2000 SDF record, including the
//"$$$$" terminator. Data items are written in alphabetical order.
func MolWrite(w io.Writer, mol *Molecule) error {
	errid := "MolWrite"
	if mol == nil || mol.Coords == nil {
		return errors.Newf("%s: nil molecule or coordinates", errid)
	}
	if mol.Len() > 999 || len(mol.Bonds) > 999 {
		return errors.Newf("%s: too many atoms (%d) or bonds (%d) for the V2000 format", errid, mol.Len(), len(mol.Bonds))
	}
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%s\n     dockeval          3D\n\n", mol.Name)
	fmt.Fprintf(bw, "%3d%3d  0  0  0  0  0  0  0  0999 V2000\n", mol.Len(), len(mol.Bonds))
	var charged []*Atom
	for i, at := range mol.Atoms {
		code := 0
		if at.Charge != 0 {
			charged = append(charged, at)
			if c := int(at.Charge); c >= -3 && c <= 3 {
				code = 4 - c
			}
		}
		fmt.Fprintf(bw, "%10.4f%10.4f%10.4f %-3s 0%3d  0  0  0  0  0  0  0  0  0  0\n",
			mol.Coords.At(i, 0), mol.Coords.At(i, 1), mol.Coords.At(i, 2), at.Symbol, code)
	}
	for _, b := range mol.Bonds {
		fmt.Fprintf(bw, "%3d%3d%3d  0\n", b.At1.Index+1, b.At2.Index+1, bondType(b.Order))
	}
	//at most 8 entries per M  CHG line
	for len(charged) > 0 {
		n := len(charged)
		if n > 8 {
			n = 8
		}
		fmt.Fprintf(bw, "M  CHG%3d", n)
		for _, at := range charged[:n] {
			fmt.Fprintf(bw, " %3d %3d", at.Index+1, int(at.Charge))
		}
		fmt.Fprint(bw, "\n")
		charged = charged[n:]
	}
	fmt.Fprint(bw, "M  END\n")
	keys := make([]string, 0, len(mol.Props))
	for k := range mol.Props {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(bw, ">  <%s>\n%s\n\n", k, mol.Props[k])
	}
	fmt.Fprint(bw, "$$$$\n")
	if err := bw.Flush(); err != nil {
		return errors.Wrap(err, errid)
	}
	return nil
}

//MolFileWrite writes mol to the file name, compressing it if the
//name ends in .gz or .zst.
func MolFileWrite(name string, mol *Molecule) (err error) {
	errid := "MolFileWrite"
	f, err := os.Create(name)
	if err != nil {
		return errors.Wrapf(err, "%s: can't create %s", errid, name)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = errors.Wrap(cerr, errid)
		}
	}()
	var w io.WriteCloser
	lname := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lname, ".gz"):
		w = gzip.NewWriter(f)
	case strings.HasSuffix(lname, ".zst"):
		w, err = zstd.NewWriter(f)
		if err != nil {
			return errors.Wrap(err, errid)
		}
	default:
		return MolWrite(f, mol)
	}
	if err = MolWrite(w, mol); err != nil {
		w.Close()
		return err
	}
	return errors.Wrap(w.Close(), errid)
}
