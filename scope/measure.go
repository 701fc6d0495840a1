// Copyright 2024 The go-lab Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package scope

import (
	"fmt"
	"strings"
)

var measModeProp = prop{
	name:  "measurement mode",
	query: "VBS? 'return=app.Measure.MeasureMode'",
	write: "VBS 'app.Measure.MeasureMode=%q'",
	check: discrete("MyMeasure", "StdVertical", "StdHorizontal"),
}

// MeasurementMode returns the measurement subsystem mode.
func (sc *Scope) MeasurementMode() (string, error) { return sc.getProp(measModeProp) }

// SetMeasurementMode sets the measurement subsystem mode (MyMeasure,
// StdVertical or StdHorizontal).
func (sc *Scope) SetMeasurementMode(v string) error { return sc.setProp(measModeProp, v) }

// trigger source names accepted as measurement sources.
var measSources = map[string]string{
	"channel1": "C1",
	"channel2": "C2",
	"channel3": "C3",
	"channel4": "C4",
	"external": "EXT",
	"line":     "LINE",
}

// ConfigureMeasurement installs the engine measurement of source1
// (and source2 for two-source engines) on parameter slot (1..8) and
// displays it.
func (sc *Scope) ConfigureMeasurement(slot int, source1, source2, engine string) error {
	if slot < 1 || slot > 8 {
		return fmt.Errorf("scope: invalid measurement slot %d", slot)
	}
	src1, ok := measSources[source1]
	if !ok {
		return fmt.Errorf("scope: invalid measurement source %q", source1)
	}
	src2, ok := measSources[source2]
	if !ok {
		return fmt.Errorf("scope: invalid measurement source %q", source2)
	}
	err := discrete(measurableParams...)(engine)
	if err != nil {
		return fmt.Errorf("scope: could not configure measurement %d: %w", slot, err)
	}

	for _, cmd := range []string{
		fmt.Sprintf("VBS 'app.Measure.P%d.View=True'", slot),
		"VBS 'app.Measure.ShowMeasure=True'",
		fmt.Sprintf("VBS 'app.Measure.P%d.Source1=%q'", slot, src1),
		fmt.Sprintf("VBS 'app.Measure.P%d.Source2=%q'", slot, src2),
		fmt.Sprintf("VBS 'app.Measure.P%d.ParamEngine=%q'", slot, engine),
	} {
		err = sc.t.Write(cmd)
		if err != nil {
			return fmt.Errorf("scope: could not configure measurement %d: %w", slot, err)
		}
	}
	return sc.CheckSetErrors()
}

func (sc *Scope) measResult(slot int, stat string) (float64, error) {
	if slot < 1 || slot > 8 {
		return 0, fmt.Errorf("scope: invalid measurement slot %d", slot)
	}
	return sc.getFloat(prop{
		name:  fmt.Sprintf("P%d %s result", slot, stat),
		query: fmt.Sprintf("VBS? 'return=app.Measure.P%d.%s.Result.Value'", slot, stat),
	})
}

// MeasurementValue returns the value measured on slot during the
// current acquisition.
func (sc *Scope) MeasurementValue(slot int) (float64, error) {
	return sc.measResult(slot, "last")
}

// MeasurementMean returns the mean of the slot measurement over all
// accumulated acquisitions.
func (sc *Scope) MeasurementMean(slot int) (float64, error) {
	return sc.measResult(slot, "mean")
}

// MeasurementMax returns the maximum of the slot measurement over all
// accumulated acquisitions.
func (sc *Scope) MeasurementMax(slot int) (float64, error) {
	return sc.measResult(slot, "max")
}

// MeasurementMin returns the minimum of the slot measurement over all
// accumulated acquisitions.
func (sc *Scope) MeasurementMin(slot int) (float64, error) {
	return sc.measResult(slot, "min")
}

// MeasurementSdev returns the standard deviation of the slot
// measurement over all accumulated acquisitions.
func (sc *Scope) MeasurementSdev(slot int) (float64, error) {
	return sc.measResult(slot, "sdev")
}

// MeasurementPopulation returns the number of accumulated measurement
// acquisitions of the slot.
func (sc *Scope) MeasurementPopulation(slot int) (int, error) {
	v, err := sc.measResult(slot, "num")
	if err != nil {
		return 0, err
	}
	return int(v), nil
}

// MeasurementStatus returns the status description of the slot
// measurement.
func (sc *Scope) MeasurementStatus(slot int) (string, error) {
	if slot < 1 || slot > 8 {
		return "", fmt.Errorf("scope: invalid measurement slot %d", slot)
	}
	v, err := sc.t.Query(fmt.Sprintf(
		"VBS? 'return=app.Measure.P%d.Out.Result.StatusDescription'", slot,
	))
	if err != nil {
		return "", fmt.Errorf("scope: could not query P%d status: %w", slot, err)
	}
	return strings.TrimSpace(v), nil
}

// ClearMeasurements resets all parameter setups, turning each slot
// view off and its engine back to Null.
func (sc *Scope) ClearMeasurements() error {
	err := sc.t.Write("VBS 'app.Measure.ClearAll'")
	if err != nil {
		return fmt.Errorf("scope: could not clear measurements: %w", err)
	}
	return nil
}

// MathClearSweeps restarts the accumulation of all history functions
// (average, histogram, trend).
func (sc *Scope) MathClearSweeps() error {
	err := sc.t.Write("VBS 'app.Math.ClearSweeps'")
	if err != nil {
		return fmt.Errorf("scope: could not clear math sweeps: %w", err)
	}
	return nil
}

// MathResetAll restores the math subsystem default state. All selected
// math operators are lost.
func (sc *Scope) MathResetAll() error {
	err := sc.t.Write("VBS 'app.Math.ResetAll'")
	if err != nil {
		return fmt.Errorf("scope: could not reset math subsystem: %w", err)
	}
	return nil
}
