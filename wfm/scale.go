// Copyright 2024 The go-lab Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wfm

import (
	"math/big"

	"golang.org/x/xerrors"
)

// GridDivs is the number of horizontal graticule divisions of the
// WaveRunner-606Zi display.
const GridDivs = 14

// codesPerDiv is the number of raw sample codes per vertical division.
const codesPerDiv = 25

// timePrec is the mantissa precision used for the time axis.
// The half-screen offset and the per-sample increments are of
// comparable magnitude over long acquisitions, so the subtraction is
// carried out with extended precision before rounding to float64.
const timePrec = 128

// Scale converts the raw sample codes of wf into physical voltages and
// time offsets, using the preamble captured with the data.
//
// Analog channels are encoded as signed bytes; math traces are encoded
// unsigned with a different offset normalization. Both decodings match
// the instrument convention and must not be unified.
func Scale(wf *Waveform) (*Data, error) {
	pre := wf.Pre
	if !pre.Source.valid() {
		return nil, xerrors.Errorf("wfm: invalid waveform source %q", pre.Source)
	}
	if pre.Sparsing < 1 {
		return nil, xerrors.Errorf("wfm: invalid sparsing factor %d", pre.Sparsing)
	}
	if pre.Rate <= 0 {
		return nil, xerrors.Errorf("wfm: invalid sampling rate %v", pre.Rate)
	}

	data := &Data{
		Pre:   pre,
		Volts: scaleVolts(pre.Source, wf.Raw, pre.VertScale, pre.VertOffset),
		Times: scaleTimes(len(wf.Raw), pre),
	}
	return data, nil
}

func scaleVolts(src Source, raw []byte, vdiv, voff float64) []float64 {
	volts := make([]float64, len(raw))
	switch {
	case src.IsMath():
		// Math traces come out unsigned, centered on (offset+255)/50
		// in divisions.
		off := vdiv * (voff + 255) / 50
		for i, v := range raw {
			volts[i] = float64(v)*(vdiv/codesPerDiv) - off
		}
	default:
		for i, v := range raw {
			volts[i] = float64(int8(v))*(vdiv/codesPerDiv) - voff
		}
	}
	return volts
}

func scaleTimes(n int, pre Preamble) []float64 {
	var (
		times = make([]float64, n)

		t0   = new(big.Float).SetPrec(timePrec).SetFloat64(pre.HorizScale)
		rate = new(big.Float).SetPrec(timePrec).SetFloat64(pre.Rate)
		ti   = new(big.Float).SetPrec(timePrec)
	)
	t0.Mul(t0, big.NewFloat(-GridDivs/2.0))

	for i := range times {
		ti.SetInt64(int64(i) * int64(pre.Sparsing))
		ti.Quo(ti, rate)
		ti.Add(ti, t0)
		times[i], _ = ti.Float64()
	}
	return times
}
