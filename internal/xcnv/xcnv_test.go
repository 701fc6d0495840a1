// Copyright 2024 The go-lab Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package xcnv

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/go-lab/wrzi/wfm"
)

func TestWFM2CSV(t *testing.T) {
	data := &wfm.Data{
		Pre: wfm.Preamble{
			Source:     wfm.C1,
			VertScale:  0.5,
			VertOffset: 0.1,
			HorizScale: 1e-3,
			Rate:       1e9,
			Sparsing:   4,
		},
		Volts: []float64{-0.1, 0.02, 0.5, -0.02},
		Times: []float64{-7e-3, -7e-3 + 4e-9, -7e-3 + 8e-9, -7e-3 + 12e-9},
	}

	fname := filepath.Join(t.TempDir(), "c1.csv")
	err := WFM2CSV(fname, data)
	if err != nil {
		t.Fatalf("could not write CSV: %+v", err)
	}

	got, err := CSV2WFM(fname)
	if err != nil {
		t.Fatalf("could not read CSV: %+v", err)
	}

	if got.Pre.Source != data.Pre.Source {
		t.Fatalf("invalid source: got=%v, want=%v", got.Pre.Source, data.Pre.Source)
	}
	if got.Pre.Sparsing != data.Pre.Sparsing {
		t.Fatalf("invalid sparsing: got=%d, want=%d", got.Pre.Sparsing, data.Pre.Sparsing)
	}
	if got.Pre.Rate != data.Pre.Rate {
		t.Fatalf("invalid rate: got=%v, want=%v", got.Pre.Rate, data.Pre.Rate)
	}
	if got.Pre.VertScale != data.Pre.VertScale {
		t.Fatalf("invalid vdiv: got=%v, want=%v", got.Pre.VertScale, data.Pre.VertScale)
	}

	if len(got.Volts) != len(data.Volts) {
		t.Fatalf("invalid sample count: got=%d, want=%d", len(got.Volts), len(data.Volts))
	}
	for i := range data.Volts {
		if dv := math.Abs(got.Volts[i] - data.Volts[i]); dv > 1e-12 {
			t.Errorf("volts[%d]: got=%v, want=%v", i, got.Volts[i], data.Volts[i])
		}
		if dt := math.Abs(got.Times[i] - data.Times[i]); dt > 1e-12 {
			t.Errorf("times[%d]: got=%v, want=%v", i, got.Times[i], data.Times[i])
		}
	}
}

func TestWFM2CSVInconsistent(t *testing.T) {
	data := &wfm.Data{
		Volts: []float64{1, 2},
		Times: []float64{0},
	}
	err := WFM2CSV(filepath.Join(t.TempDir(), "bad.csv"), data)
	if err == nil {
		t.Fatalf("expected an error")
	}
	want := "xcnv: inconsistent waveform (volts=2, times=1)"
	if got := err.Error(); got != want {
		t.Fatalf("invalid error:\ngot: %v\nwant:%v\n", got, want)
	}
}
