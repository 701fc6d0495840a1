// Copyright 2024 The go-lab Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package xcnv provides tools to convert scaled waveform data to/from
// CSV files.
package xcnv // import "github.com/go-lab/wrzi/internal/xcnv"

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-lab/wrzi/wfm"
	"go-hep.org/x/hep/csvutil"
)

// WFM2CSV stores a scaled waveform into the CSV file fname: a comment
// line holding the preamble, a column header and one (time, volts) row
// per sample.
func WFM2CSV(fname string, data *wfm.Data) error {
	if len(data.Volts) != len(data.Times) {
		return fmt.Errorf("xcnv: inconsistent waveform (volts=%d, times=%d)",
			len(data.Volts), len(data.Times),
		)
	}

	tbl, err := csvutil.Create(fname)
	if err != nil {
		return fmt.Errorf("xcnv: could not create %q: %w", fname, err)
	}
	defer tbl.Close()
	tbl.Writer.Comma = ';'

	pre := data.Pre
	err = tbl.WriteHeader(fmt.Sprintf(
		"# source=%s sparsing=%d rate=%v vdiv=%v voff=%v tdiv=%v\n# time;volts\n",
		pre.Source, pre.Sparsing, pre.Rate,
		pre.VertScale, pre.VertOffset, pre.HorizScale,
	))
	if err != nil {
		return fmt.Errorf("xcnv: could not write CSV header: %w", err)
	}

	for i := range data.Volts {
		err = tbl.WriteRow(data.Times[i], data.Volts[i])
		if err != nil {
			return fmt.Errorf("xcnv: could not write CSV row %d: %w", i, err)
		}
	}

	err = tbl.Close()
	if err != nil {
		return fmt.Errorf("xcnv: could not close %q: %w", fname, err)
	}
	return nil
}

// CSV2WFM loads a scaled waveform from the CSV file fname.
func CSV2WFM(fname string) (*wfm.Data, error) {
	pre, err := readPreamble(fname)
	if err != nil {
		return nil, err
	}

	tbl, err := csvutil.Open(fname)
	if err != nil {
		return nil, fmt.Errorf("xcnv: could not open %q: %w", fname, err)
	}
	defer tbl.Close()
	tbl.Reader.Comma = ';'
	tbl.Reader.Comment = '#'

	rows, err := tbl.ReadRows(0, -1)
	if err != nil {
		return nil, fmt.Errorf("xcnv: could not read rows of %q: %w", fname, err)
	}
	defer rows.Close()

	data := &wfm.Data{Pre: pre}
	for i := 0; rows.Next(); i++ {
		var t, v float64
		err = rows.Scan(&t, &v)
		if err != nil {
			return nil, fmt.Errorf("xcnv: could not scan CSV row %d: %w", i, err)
		}
		data.Times = append(data.Times, t)
		data.Volts = append(data.Volts, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("xcnv: could not read %q: %w", fname, err)
	}

	return data, nil
}

// readPreamble parses the key=value comment line written by WFM2CSV.
func readPreamble(fname string) (wfm.Preamble, error) {
	var pre wfm.Preamble

	f, err := os.Open(fname)
	if err != nil {
		return pre, fmt.Errorf("xcnv: could not open %q: %w", fname, err)
	}
	defer f.Close()

	line, err := bufio.NewReader(f).ReadString('\n')
	if err != nil {
		return pre, fmt.Errorf("xcnv: could not read header of %q: %w", fname, err)
	}
	line = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "#"))

	for _, tok := range strings.Fields(line) {
		kv := strings.SplitN(tok, "=", 2)
		if len(kv) != 2 {
			continue
		}
		var err error
		switch kv[0] {
		case "source":
			pre.Source, err = wfm.ParseSource(kv[1])
		case "sparsing":
			pre.Sparsing, err = strconv.Atoi(kv[1])
		case "rate":
			pre.Rate, err = strconv.ParseFloat(kv[1], 64)
		case "vdiv":
			pre.VertScale, err = strconv.ParseFloat(kv[1], 64)
		case "voff":
			pre.VertOffset, err = strconv.ParseFloat(kv[1], 64)
		case "tdiv":
			pre.HorizScale, err = strconv.ParseFloat(kv[1], 64)
		}
		if err != nil {
			return pre, fmt.Errorf("xcnv: invalid header field %q: %w", tok, err)
		}
	}
	return pre, nil
}
