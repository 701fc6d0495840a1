// Copyright 2024 The go-lab Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package scope

import (
	"fmt"
	"sort"
	"strings"
)

var tdivProp = prop{
	name:  "timebase scale",
	query: "TDIV?",
	write: "TDIV %g",
}

// TimebaseScale returns the horizontal scale (s/div).
func (sc *Scope) TimebaseScale() (float64, error) { return sc.getFloat(tdivProp) }

// SetTimebaseScale sets the horizontal scale (s/div).
func (sc *Scope) SetTimebaseScale(v float64) error { return sc.setFloat(tdivProp, v) }

var horOffsetProp = prop{
	name:  "horizontal offset",
	query: "VBS? 'return=app.Acquisition.Horizontal.HorOffset'",
	write: "VBS 'app.Acquisition.Horizontal.HorOffset=%g'",
}

// HorizontalOffset returns the interval (s) between the trigger event
// and the horizontal reference point.
func (sc *Scope) HorizontalOffset() (float64, error) { return sc.getFloat(horOffsetProp) }

// SetHorizontalOffset sets the trigger-to-reference interval (s).
func (sc *Scope) SetHorizontalOffset(v float64) error { return sc.setFloat(horOffsetProp, v) }

var horOriginProp = prop{
	name:    "horizontal offset origin",
	query:   "VBS? 'return=app.Acquisition.Horizontal.HorOffsetOrigin'",
	write:   "VBS 'app.Acquisition.Horizontal.HorOffsetOrigin=%g'",
	min:     0,
	max:     10,
	bounded: true,
}

// HorizontalOffsetOrigin returns the graticule division used as the
// horizontal reference point (0: left edge, 10: right edge).
func (sc *Scope) HorizontalOffsetOrigin() (float64, error) { return sc.getFloat(horOriginProp) }

// SetHorizontalOffsetOrigin sets the horizontal reference division.
func (sc *Scope) SetHorizontalOffsetOrigin(v float64) error { return sc.setFloat(horOriginProp, v) }

var samplingModeProp = prop{
	name:  "sampling mode",
	query: "VBS? 'return=app.Acquisition.Horizontal.SampleMode'",
	write: "VBS 'app.Acquisition.Horizontal.SampleMode=%q'",
	check: discrete("RealTime", "Sequence", "RIS", "Roll"),
}

// SamplingMode returns the acquisition sampling mode.
func (sc *Scope) SamplingMode() (string, error) { return sc.getProp(samplingModeProp) }

// SetSamplingMode sets the acquisition sampling mode (RealTime,
// Sequence, RIS or Roll).
func (sc *Scope) SetSamplingMode(v string) error { return sc.setProp(samplingModeProp, v) }

var numSegmentsProp = prop{
	name:    "number of segments",
	query:   "VBS? 'return=app.Acquisition.Horizontal.NumSegments'",
	write:   "VBS 'app.Acquisition.Horizontal.NumSegments=%d'",
	min:     2,
	max:     10000,
	bounded: true,
}

// NumSegments returns the number of segments of a sequence-mode
// acquisition.
func (sc *Scope) NumSegments() (int, error) { return sc.getInt(numSegmentsProp) }

// SetNumSegments sets the number of segments used in sequence mode.
func (sc *Scope) SetNumSegments(n int) error { return sc.setInt(numSegmentsProp, n) }

// SamplingRate returns the current acquisition sampling rate
// (samples/s).
func (sc *Scope) SamplingRate() (float64, error) {
	return sc.getFloat(prop{
		name:  "sampling rate",
		query: "VBS? 'return=app.Acquisition.Horizontal.SamplingRate'",
	})
}

// memDepths maps sample counts to their MSIZ instrument arguments.
var memDepths = map[float64]string{
	500:  "0.5K",
	1e3:  "1K",
	25e2: "2.5K",
	5e3:  "5K",
	1e4:  "10K",
	25e3: "25K",
	5e4:  "50K",
	1e5:  "100K",
	25e4: "250K",
	5e5:  "500K",
	1e6:  "1M",
	25e5: "2.5M",
	5e6:  "5M",
	1e7:  "10M",
	16e6: "16M",
}

// MemoryDepth returns the acquisition memory depth in samples.
func (sc *Scope) MemoryDepth() (float64, error) {
	v, err := sc.t.Query("MSIZ?")
	if err != nil {
		return 0, fmt.Errorf("scope: could not query memory depth: %w", err)
	}
	v = strings.TrimSpace(v)
	for n, arg := range memDepths {
		if arg == v {
			return n, nil
		}
	}
	// non-mapped replies come back as plain sample counts.
	n, err := parseNum(v)
	if err != nil {
		return 0, fmt.Errorf("scope: could not parse memory depth reply %q: %w", v, err)
	}
	return n, nil
}

// SetMemoryDepth sets the acquisition memory depth, truncated down to
// the nearest supported size.
func (sc *Scope) SetMemoryDepth(samples float64) error {
	depths := make([]float64, 0, len(memDepths))
	for n := range memDepths {
		depths = append(depths, n)
	}
	sort.Float64s(depths)

	if samples < depths[0] {
		return fmt.Errorf("scope: could not set memory depth: %v below minimum %v",
			samples, depths[0],
		)
	}
	sel := depths[0]
	for _, n := range depths {
		if n > samples {
			break
		}
		sel = n
	}

	err := sc.t.Write(fmt.Sprintf("MSIZ %s", memDepths[sel]))
	if err != nil {
		return fmt.Errorf("scope: could not set memory depth: %w", err)
	}
	return nil
}

// TimebaseConfig is a snapshot of the horizontal setup.
type TimebaseConfig struct {
	Scale        float64 `json:"timebase_scale"`
	Offset       float64 `json:"timebase_offset"`
	OffsetOrigin float64 `json:"timebase_offset_origin"`
	SamplingMode string  `json:"sampling_mode"`
}

// TimebaseConfiguration reads back the horizontal setup.
func (sc *Scope) TimebaseConfiguration() (TimebaseConfig, error) {
	var (
		cfg TimebaseConfig
		err error
	)
	for _, read := range []func() error{
		func() (err error) { cfg.Scale, err = sc.TimebaseScale(); return err },
		func() (err error) { cfg.Offset, err = sc.HorizontalOffset(); return err },
		func() (err error) { cfg.OffsetOrigin, err = sc.HorizontalOffsetOrigin(); return err },
		func() (err error) { cfg.SamplingMode, err = sc.SamplingMode(); return err },
	} {
		err = read()
		if err != nil {
			return cfg, err
		}
	}
	return cfg, nil
}

// TimebaseSetup applies a horizontal setup. A zero Scale is skipped.
func (sc *Scope) TimebaseSetup(cfg TimebaseConfig) error {
	if cfg.Scale != 0 {
		err := sc.SetTimebaseScale(cfg.Scale)
		if err != nil {
			return err
		}
	}
	err := sc.SetHorizontalOffset(cfg.Offset)
	if err != nil {
		return err
	}
	if cfg.SamplingMode != "" {
		err = sc.SetSamplingMode(cfg.SamplingMode)
		if err != nil {
			return err
		}
	}
	return nil
}
