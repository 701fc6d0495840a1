// Copyright 2024 The go-lab Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package wfm holds functions to manipulate waveform data from
// WaveRunner-606Zi oscilloscopes.
package wfm // import "github.com/go-lab/wrzi/wfm"

import (
	"strings"

	"golang.org/x/xerrors"
)

// NumChans is the number of analog input channels of the instrument.
const NumChans = 4

// NumFuncs is the number of math function traces of the instrument.
const NumFuncs = 8

// Source identifies the origin of a waveform: one of the four analog
// channels (C1..C4) or one of the eight math function traces (F1..F8).
type Source string

const (
	C1 Source = "C1"
	C2 Source = "C2"
	C3 Source = "C3"
	C4 Source = "C4"

	F1 Source = "F1"
	F2 Source = "F2"
	F3 Source = "F3"
	F4 Source = "F4"
	F5 Source = "F5"
	F6 Source = "F6"
	F7 Source = "F7"
	F8 Source = "F8"
)

// ParseSource normalizes and validates an instrument trace name.
func ParseSource(name string) (Source, error) {
	src := Source(strings.ToUpper(strings.TrimSpace(name)))
	if !src.valid() {
		return "", xerrors.Errorf("wfm: invalid waveform source %q", name)
	}
	return src, nil
}

func (src Source) valid() bool {
	if len(src) != 2 {
		return false
	}
	switch src[0] {
	case 'C':
		return src[1] >= '1' && src[1] <= '0'+NumChans
	case 'F':
		return src[1] >= '1' && src[1] <= '0'+NumFuncs
	}
	return false
}

// IsMath reports whether src names a math function trace.
func (src Source) IsMath() bool { return len(src) == 2 && src[0] == 'F' }

// ID returns the 1-based channel (or function) number of src.
func (src Source) ID() int { return int(src[1] - '0') }

func (src Source) String() string { return string(src) }

// Preamble describes how to interpret the raw samples of a waveform.
// It is a snapshot of the instrument calibration state, captured once
// all block transfers of an acquisition have completed.
type Preamble struct {
	Source Source

	VertScale  float64 // vertical scale (V/div)
	VertOffset float64 // vertical center offset (V)

	HorizScale  float64 // horizontal scale (s/div)
	HorizOffset float64 // trigger-to-reference offset (s)

	Rate     float64 // sampling rate (samples/s)
	Sparsing int     // keep every Nth sample
	First    int     // index of the first transmitted sample

	Requested int // samples requested by the caller (0: all available)
	Sampled   int // samples available on the instrument
	Sent      int // samples actually transmitted

	MemDepth string // memory-depth setting (MSIZ)
}

// Waveform is a reassembled raw sample sequence together with the
// preamble captured alongside it.
type Waveform struct {
	Pre Preamble
	Raw []byte // one byte per sample
}

// Data is a scaled waveform: parallel sequences of physical voltages
// and time offsets, index-aligned with the raw samples they came from.
type Data struct {
	Pre   Preamble
	Volts []float64
	Times []float64
}
