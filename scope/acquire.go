// Copyright 2024 The go-lab Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package scope

import (
	"fmt"
	"strings"

	"github.com/go-lab/wrzi/wfm"
)

// AcquireWaveform downloads the raw samples of src in bounded-size
// block transfers and reassembles them, together with the scaling
// preamble captured once all transfers have completed.
//
// points limits the number of returned samples; 0 downloads everything
// available. sparsing keeps every Nth acquired sample (1 keeps all).
// Invalid arguments are rejected before any instrument traffic.
func (sc *Scope) AcquireWaveform(src wfm.Source, points, sparsing int) (*wfm.Waveform, error) {
	src, err := wfm.ParseSource(string(src))
	if err != nil {
		return nil, fmt.Errorf("scope: could not acquire waveform: %w", err)
	}
	if points < 0 {
		return nil, fmt.Errorf("scope: invalid sample count %d", points)
	}
	if sparsing < 1 {
		return nil, fmt.Errorf("scope: invalid sparsing factor %d", sparsing)
	}

	chunk := sc.cfg.xfer - wfm.HeaderSize - wfm.FooterSize
	if chunk < 1 {
		return nil, fmt.Errorf("scope: maximum transfer size %d too small for block framing",
			sc.cfg.xfer,
		)
	}

	avail, err := sc.sampleCount(src)
	if err != nil {
		return nil, err
	}

	total := avail / sparsing
	if points > 0 && points < total {
		total = points
	}
	if total < 1 {
		return nil, fmt.Errorf("scope: no samples available on %s (got=%d, sparsing=%d)",
			src, avail, sparsing,
		)
	}

	raw := make([]byte, 0, total)
	for len(raw) < total {
		n := total - len(raw)
		if n > chunk {
			n = chunk
		}
		first := len(raw) * sparsing

		err = sc.t.Write(fmt.Sprintf("WFSU SP,%d,NP,%d,FP,%d", sparsing, n, first))
		if err != nil {
			return nil, fmt.Errorf("scope: could not set up %s block transfer: %w", src, err)
		}

		out, err := sc.t.QueryBinary(
			fmt.Sprintf("%s:WF? DAT2", src),
			wfm.HeaderSize+n+wfm.FooterSize,
		)
		if err != nil {
			return nil, fmt.Errorf("scope: could not transfer %s block at sample %d: %w",
				src, first, err,
			)
		}

		blk, err := wfm.ParseBlock(src, out)
		if err != nil {
			return nil, err
		}
		if blk.Count != n {
			return nil, fmt.Errorf("scope: %s block at sample %d holds %d samples, want %d",
				src, first, blk.Count, n,
			)
		}
		raw = append(raw, blk.Data...)
	}

	pre, err := sc.preamble(src)
	if err != nil {
		return nil, err
	}
	pre.Sparsing = sparsing
	pre.Requested = points
	pre.Sampled = avail
	pre.Sent = total

	return &wfm.Waveform{Pre: pre, Raw: raw}, nil
}

// ReadWaveform acquires the raw samples of src and scales them into
// physical voltages and times.
func (sc *Scope) ReadWaveform(src wfm.Source, points, sparsing int) (*wfm.Data, error) {
	wf, err := sc.AcquireWaveform(src, points, sparsing)
	if err != nil {
		return nil, err
	}
	return wfm.Scale(wf)
}

// sampleCount returns the number of samples available for a source.
// Math traces hold as many samples as the shortest of their operand
// channels.
func (sc *Scope) sampleCount(src wfm.Source) (int, error) {
	if !src.IsMath() {
		return sc.chans[src.ID()-1].SampleCount()
	}

	src1, _, src2, err := sc.fns[src.ID()-1].Define()
	if err != nil {
		return 0, err
	}

	n := 0
	for _, op := range []string{src1, src2} {
		ch, err := wfm.ParseSource(op)
		if err != nil {
			return 0, fmt.Errorf("scope: invalid %s operand: %w", src, err)
		}
		v, err := sc.chans[ch.ID()-1].SampleCount()
		if err != nil {
			return 0, err
		}
		if n == 0 || v < n {
			n = v
		}
	}
	return n, nil
}

// preamble captures the scaling state of src. It runs after the block
// transfers so that the recorded calibration matches the data.
func (sc *Scope) preamble(src wfm.Source) (wfm.Preamble, error) {
	pre := wfm.Preamble{Source: src}

	for _, read := range []func() error{
		func() (err error) {
			pre.VertScale, err = sc.getFloat(prop{
				name:  fmt.Sprintf("%s vertical scale", src),
				query: fmt.Sprintf("%s:VDIV?", src),
			})
			return err
		},
		func() (err error) {
			pre.VertOffset, err = sc.getFloat(prop{
				name:  fmt.Sprintf("%s vertical offset", src),
				query: fmt.Sprintf("%s:OFST?", src),
			})
			return err
		},
		func() (err error) { pre.HorizScale, err = sc.TimebaseScale(); return err },
		func() (err error) {
			pre.HorizOffset, err = sc.getFloat(prop{
				name:  "trigger delay",
				query: "TRDL?",
			})
			return err
		},
		func() (err error) { pre.Rate, err = sc.SamplingRate(); return err },
		func() (err error) {
			v, err := sc.t.Query("MSIZ?")
			if err != nil {
				return fmt.Errorf("scope: could not query memory depth: %w", err)
			}
			pre.MemDepth = strings.TrimSpace(v)
			return nil
		},
	} {
		err := read()
		if err != nil {
			return pre, err
		}
	}
	return pre, nil
}
