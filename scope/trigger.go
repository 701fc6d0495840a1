// Copyright 2024 The go-lab Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package scope

import (
	"fmt"
	"strings"
)

var trigSourceProp = prop{
	name:  "trigger source",
	query: "VBS? 'return=app.Acquisition.Trigger.Source'",
	write: "VBS 'app.Acquisition.Trigger.Source=%q'",
	vmap: map[string]string{
		"channel1": "C1",
		"channel2": "C2",
		"channel3": "C3",
		"channel4": "C4",
		"external": "EXT",
		"line":     "LINE",
	},
}

// TriggerSource returns the trigger source (channel1..channel4,
// external or line).
func (sc *Scope) TriggerSource() (string, error) { return sc.getProp(trigSourceProp) }

// SetTriggerSource selects the trigger source.
func (sc *Scope) SetTriggerSource(v string) error { return sc.setProp(trigSourceProp, v) }

var trigTypeProp = prop{
	name:  "trigger type",
	query: "VBS? 'return=app.Acquisition.Trigger.Type'",
	write: "VBS 'app.Acquisition.Trigger.Type=%q'",
	vmap: map[string]string{
		"edge":     "EDGE",
		"pulse":    "WIDTH",
		"interval": "INTERVAL",
		"runt":     "RUNT",
		"slewrate": "SLEWRATE",
		"glitch":   "GLITCH",
		"pattern":  "PATTERN",
		"dropout":  "DROPOUT",
		"tv":       "TV",
	},
}

// TriggerType returns the trigger type.
func (sc *Scope) TriggerType() (string, error) { return sc.getProp(trigTypeProp) }

// SetTriggerType selects the trigger type (edge, pulse, interval,
// runt, slewrate, glitch, pattern, dropout or tv).
func (sc *Scope) SetTriggerType(v string) error { return sc.setProp(trigTypeProp, v) }

var (
	trigSelectTypes   = []string{"DROP", "EDGE", "GLIT", "INTV", "STD", "SNG", "SQ", "TEQ"}
	trigSelectSources = []string{"C1", "C2", "C3", "C4", "LINE", "EX", "EX10", "ETM10"}
	trigSelectHolds   = []string{"TI", "OFF", "PL", "PS", "PE", "IS", "IL", "IE"}
)

// TriggerSelect returns the condensed TRSE readback: trigger condition,
// source and hold parameters.
func (sc *Scope) TriggerSelect() (string, error) {
	v, err := sc.t.Query("TRSE?")
	if err != nil {
		return "", fmt.Errorf("scope: could not query trigger select: %w", err)
	}
	return v, nil
}

// SetTriggerSelect programs the trigger condition: a trigger type, a
// source, a hold type and up to two hold values,
// e.g. SetTriggerSelect("GLIT", "C1", "PS", 1e-9).
func (sc *Scope) SetTriggerSelect(typ, src, hold string, vals ...float64) error {
	typ = strings.ToUpper(typ)
	src = strings.ToUpper(src)
	hold = strings.ToUpper(hold)
	switch {
	case !has(trigSelectTypes, typ):
		return fmt.Errorf("scope: could not set trigger select: invalid trigger type %q", typ)
	case !has(trigSelectSources, src):
		return fmt.Errorf("scope: could not set trigger select: invalid trigger source %q", src)
	case !has(trigSelectHolds, hold):
		return fmt.Errorf("scope: could not set trigger select: invalid hold type %q", hold)
	case len(vals) > 2:
		return fmt.Errorf("scope: could not set trigger select: too many hold values (got=%d, want<=2)", len(vals))
	}

	cmd := fmt.Sprintf("TRSE %s,SR,%s,HT,%s", typ, src, hold)
	for i, v := range vals {
		switch i {
		case 0:
			cmd += fmt.Sprintf(",HV,%g", v)
		case 1:
			cmd += fmt.Sprintf(",HV2,%g", v)
		}
	}
	err := sc.t.Write(cmd)
	if err != nil {
		return fmt.Errorf("scope: could not set trigger select: %w", err)
	}
	return nil
}

// CenterTrigger moves the trigger point to the center of the displayed
// trigger source waveform.
func (sc *Scope) CenterTrigger() error {
	err := sc.SetHorizontalOffset(0)
	if err != nil {
		return err
	}
	return sc.SetHorizontalOffsetOrigin(5)
}
