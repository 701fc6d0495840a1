// Copyright 2024 The go-lab Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package scope

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Channel drives one analog input channel (C1..C4).
type Channel struct {
	sc *Scope
	id int
}

// ID returns the 1-based channel number.
func (ch *Channel) ID() int { return ch.id }

func (ch *Channel) vbs(path string) (query, write string) {
	query = fmt.Sprintf("VBS? 'return=app.Acquisition.C%d.%s'", ch.id, path)
	write = fmt.Sprintf("VBS 'app.Acquisition.C%d.%s=%%s'", ch.id, path)
	return query, write
}

func (ch *Channel) vbsQuoted(path string) (query, write string) {
	query = fmt.Sprintf("VBS? 'return=app.Acquisition.C%d.%s'", ch.id, path)
	write = fmt.Sprintf("VBS 'app.Acquisition.C%d.%s=%%q'", ch.id, path)
	return query, write
}

func (ch *Channel) scaleProp() prop {
	return prop{
		name:  fmt.Sprintf("C%d vertical scale", ch.id),
		query: fmt.Sprintf("C%d:VDIV?", ch.id),
		write: fmt.Sprintf("C%d:VDIV %%g", ch.id),
	}
}

// Scale returns the vertical sensitivity (V/div).
func (ch *Channel) Scale() (float64, error) { return ch.sc.getFloat(ch.scaleProp()) }

// SetScale sets the vertical sensitivity (V/div).
func (ch *Channel) SetScale(v float64) error { return ch.sc.setFloat(ch.scaleProp(), v) }

func (ch *Channel) offsetProp() prop {
	return prop{
		name:  fmt.Sprintf("C%d vertical offset", ch.id),
		query: fmt.Sprintf("C%d:OFST?", ch.id),
		write: fmt.Sprintf("C%d:OFST %%g", ch.id),
	}
}

// Offset returns the vertical offset (V).
func (ch *Channel) Offset() (float64, error) { return ch.sc.getFloat(ch.offsetProp()) }

// SetOffset sets the vertical offset (V).
func (ch *Channel) SetOffset(v float64) error { return ch.sc.setFloat(ch.offsetProp(), v) }

func (ch *Channel) displayProp() prop {
	return prop{
		name:  fmt.Sprintf("C%d display", ch.id),
		query: fmt.Sprintf("C%d:TRA?", ch.id),
		write: fmt.Sprintf("C%d:TRA %%s", ch.id),
		vmap:  map[string]string{"true": "ON", "false": "OFF"},
	}
}

// Display reports whether the channel trace is displayed.
func (ch *Channel) Display() (bool, error) {
	v, err := ch.sc.getProp(ch.displayProp())
	if err != nil {
		return false, err
	}
	return v == "true", nil
}

// SetDisplay turns the channel trace display on or off.
func (ch *Channel) SetDisplay(on bool) error {
	return ch.sc.setProp(ch.displayProp(), strconv.FormatBool(on))
}

func (ch *Channel) couplingProp() prop {
	query, write := ch.vbsQuoted("Coupling")
	return prop{
		name:  fmt.Sprintf("C%d coupling", ch.id),
		query: query,
		write: write,
		vmap: map[string]string{
			"ac":     "AC1M",
			"dc":     "DC1M",
			"dc50":   "DC50",
			"ground": "Gnd",
		},
	}
}

// Coupling returns the input coupling (ac, dc, dc50 or ground).
func (ch *Channel) Coupling() (string, error) { return ch.sc.getProp(ch.couplingProp()) }

// SetCoupling sets the input coupling (ac, dc, dc50 or ground).
func (ch *Channel) SetCoupling(v string) error { return ch.sc.setProp(ch.couplingProp(), v) }

func (ch *Channel) bwLimitProp() prop {
	query, write := ch.vbsQuoted("BandwidthLimit")
	return prop{
		name:  fmt.Sprintf("C%d bandwidth limit", ch.id),
		query: query,
		write: write,
		vmap: map[string]string{
			"20MHz":  "20MHz",
			"200MHz": "200MHz",
			"1GHz":   "Full",
		},
	}
}

// BandwidthLimit returns the channel bandwidth limit (20MHz, 200MHz or
// 1GHz for the full bandwidth).
func (ch *Channel) BandwidthLimit() (string, error) { return ch.sc.getProp(ch.bwLimitProp()) }

// SetBandwidthLimit sets the channel bandwidth limit.
func (ch *Channel) SetBandwidthLimit(v string) error { return ch.sc.setProp(ch.bwLimitProp(), v) }

func (ch *Channel) invertProp() prop {
	query, write := ch.vbs("Invert")
	return prop{
		name:  fmt.Sprintf("C%d invert", ch.id),
		query: query,
		write: write,
	}
}

// Invert reports whether the channel trace is inverted.
func (ch *Channel) Invert() (bool, error) { return ch.sc.getBool(ch.invertProp()) }

// SetInvert inverts (or restores) the channel trace.
func (ch *Channel) SetInvert(on bool) error { return ch.sc.setBool(ch.invertProp(), on) }

func (ch *Channel) labelProp() prop {
	query, write := ch.vbsQuoted("LabelsText")
	return prop{
		name:  fmt.Sprintf("C%d label", ch.id),
		query: query,
		write: write,
	}
}

// Label returns the user-defined channel label.
func (ch *Channel) Label() (string, error) { return ch.sc.getProp(ch.labelProp()) }

// SetLabel sets the user-defined channel label.
func (ch *Channel) SetLabel(v string) error { return ch.sc.setProp(ch.labelProp(), v) }

func (ch *Channel) viewLabelProp() prop {
	query, write := ch.vbs("ViewLabels")
	return prop{
		name:  fmt.Sprintf("C%d label visibility", ch.id),
		query: query,
		write: write,
	}
}

// ViewLabel reports whether the channel label is displayed.
func (ch *Channel) ViewLabel() (bool, error) { return ch.sc.getBool(ch.viewLabelProp()) }

// SetViewLabel displays (or hides) the channel label.
func (ch *Channel) SetViewLabel(on bool) error { return ch.sc.setBool(ch.viewLabelProp(), on) }

func (ch *Channel) attnProp() prop {
	return prop{
		name:  fmt.Sprintf("C%d probe attenuation", ch.id),
		query: fmt.Sprintf("C%d:ATTN?", ch.id),
		write: fmt.Sprintf("C%d:ATTN %%g", ch.id),
	}
}

// ProbeAttenuation returns the probe attenuation factor.
func (ch *Channel) ProbeAttenuation() (float64, error) { return ch.sc.getFloat(ch.attnProp()) }

// SetProbeAttenuation sets the probe attenuation factor.
func (ch *Channel) SetProbeAttenuation(v float64) error { return ch.sc.setFloat(ch.attnProp(), v) }

func (ch *Channel) trigCouplingProp() prop {
	return prop{
		name:  fmt.Sprintf("C%d trigger coupling", ch.id),
		query: fmt.Sprintf("C%d:TRCP?", ch.id),
		write: fmt.Sprintf("C%d:TRCP %%s", ch.id),
		vmap: map[string]string{
			"ac":       "AC",
			"dc":       "DC",
			"highpass": "HFREJ",
			"lowpass":  "LFREJ",
		},
	}
}

// TriggerCoupling returns the trigger coupling of the channel (ac, dc,
// highpass or lowpass).
func (ch *Channel) TriggerCoupling() (string, error) { return ch.sc.getProp(ch.trigCouplingProp()) }

// SetTriggerCoupling sets the trigger coupling of the channel.
func (ch *Channel) SetTriggerCoupling(v string) error {
	return ch.sc.setProp(ch.trigCouplingProp(), v)
}

func (ch *Channel) trigSlopeProp() prop {
	return prop{
		name:  fmt.Sprintf("C%d trigger slope", ch.id),
		query: fmt.Sprintf("C%d:TRSL?", ch.id),
		write: fmt.Sprintf("C%d:TRSL %%s", ch.id),
		vmap: map[string]string{
			"negative": "NEG",
			"positive": "POS",
			"either":   "EIT",
		},
	}
}

// TriggerSlope returns the trigger slope of the channel (negative,
// positive or either).
func (ch *Channel) TriggerSlope() (string, error) { return ch.sc.getProp(ch.trigSlopeProp()) }

// SetTriggerSlope sets the trigger slope of the channel.
func (ch *Channel) SetTriggerSlope(v string) error { return ch.sc.setProp(ch.trigSlopeProp(), v) }

func (ch *Channel) trigLevelProp(path string) prop {
	return prop{
		name:  fmt.Sprintf("C%d trigger %s", ch.id, strings.ToLower(path)),
		query: fmt.Sprintf("VBS? 'return=app.Acquisition.Trigger.C%d.%s'", ch.id, path),
		write: fmt.Sprintf("VBS 'app.Acquisition.Trigger.C%d.%s=%%g'", ch.id, path),
	}
}

// TriggerLevel returns the trigger level (V) of the channel.
func (ch *Channel) TriggerLevel() (float64, error) {
	return ch.sc.getFloat(ch.trigLevelProp("Level"))
}

// SetTriggerLevel sets the trigger level (V) of the channel.
func (ch *Channel) SetTriggerLevel(v float64) error {
	return ch.sc.setFloat(ch.trigLevelProp("Level"), v)
}

// TriggerLevel2 returns the second trigger level (V) used by runt and
// slew rate triggers.
func (ch *Channel) TriggerLevel2() (float64, error) {
	return ch.sc.getFloat(ch.trigLevelProp("Level2"))
}

// SetTriggerLevel2 sets the second trigger level (V).
func (ch *Channel) SetTriggerLevel2(v float64) error {
	return ch.sc.setFloat(ch.trigLevelProp("Level2"), v)
}

func (ch *Channel) sweepsProp() prop {
	return prop{
		name:    fmt.Sprintf("C%d average sweeps", ch.id),
		query:   fmt.Sprintf("VBS? 'return=app.Acquisition.C%d.AverageSweeps'", ch.id),
		write:   fmt.Sprintf("VBS 'app.Acquisition.C%d.AverageSweeps=%%d'", ch.id),
		min:     1,
		max:     1000000,
		bounded: true,
	}
}

// AverageSweeps returns the number of averaging sweeps of the channel.
func (ch *Channel) AverageSweeps() (int, error) { return ch.sc.getInt(ch.sweepsProp()) }

// SetAverageSweeps sets the number of averaging sweeps (1 means no
// averaging).
func (ch *Channel) SetAverageSweeps(n int) error { return ch.sc.setInt(ch.sweepsProp(), n) }

// SampleCount returns the number of samples acquired on the channel
// during the last acquisition.
func (ch *Channel) SampleCount() (int, error) {
	return ch.sc.getInt(prop{
		name:  fmt.Sprintf("C%d sample count", ch.id),
		query: fmt.Sprintf("VBS? 'return=app.Acquisition.C%d.Out.Result.Samples'", ch.id),
	})
}

// Config is a snapshot of the channel setup.
type Config struct {
	Channel         int     `json:"channel"`
	Attenuation     float64 `json:"attenuation"`
	BandwidthLimit  string  `json:"bandwidth_limit"`
	Coupling        string  `json:"coupling"`
	Offset          float64 `json:"offset"`
	Display         bool    `json:"display"`
	VoltsDiv        float64 `json:"volts_div"`
	Inverted        bool    `json:"inverted"`
	TriggerCoupling string  `json:"trigger_coupling"`
	TriggerLevel    float64 `json:"trigger_level"`
	TriggerSlope    string  `json:"trigger_slope"`
}

// Configuration reads back the complete channel setup.
func (ch *Channel) Configuration() (Config, error) {
	var (
		cfg = Config{Channel: ch.id}
		err error
	)
	for _, read := range []func() error{
		func() (err error) { cfg.Attenuation, err = ch.ProbeAttenuation(); return err },
		func() (err error) { cfg.BandwidthLimit, err = ch.BandwidthLimit(); return err },
		func() (err error) { cfg.Coupling, err = ch.Coupling(); return err },
		func() (err error) { cfg.Offset, err = ch.Offset(); return err },
		func() (err error) { cfg.Display, err = ch.Display(); return err },
		func() (err error) { cfg.VoltsDiv, err = ch.Scale(); return err },
		func() (err error) { cfg.Inverted, err = ch.Invert(); return err },
		func() (err error) { cfg.TriggerCoupling, err = ch.TriggerCoupling(); return err },
		func() (err error) { cfg.TriggerLevel, err = ch.TriggerLevel(); return err },
		func() (err error) { cfg.TriggerSlope, err = ch.TriggerSlope(); return err },
	} {
		err = read()
		if err != nil {
			return cfg, err
		}
	}
	return cfg, nil
}

// Setup applies a channel configuration. Zero-valued string fields are
// skipped.
func (ch *Channel) Setup(cfg Config) error {
	type step struct {
		skip bool
		set  func() error
	}
	for _, st := range []step{
		{set: func() error { return ch.SetScale(cfg.VoltsDiv) }, skip: cfg.VoltsDiv == 0},
		{set: func() error { return ch.SetOffset(cfg.Offset) }},
		{set: func() error { return ch.SetCoupling(cfg.Coupling) }, skip: cfg.Coupling == ""},
		{set: func() error { return ch.SetBandwidthLimit(cfg.BandwidthLimit) }, skip: cfg.BandwidthLimit == ""},
		{set: func() error { return ch.SetProbeAttenuation(cfg.Attenuation) }, skip: cfg.Attenuation == 0},
		{set: func() error { return ch.SetDisplay(cfg.Display) }},
		{set: func() error { return ch.SetInvert(cfg.Inverted) }},
		{set: func() error { return ch.SetTriggerCoupling(cfg.TriggerCoupling) }, skip: cfg.TriggerCoupling == ""},
		{set: func() error { return ch.SetTriggerLevel(cfg.TriggerLevel) }},
		{set: func() error { return ch.SetTriggerSlope(cfg.TriggerSlope) }, skip: cfg.TriggerSlope == ""},
	} {
		if st.skip {
			continue
		}
		err := st.set()
		if err != nil {
			return err
		}
	}
	return nil
}

// Waveform processing parameters accepted by DisplayParameter and the
// measurement slots.
var measurableParams = []string{
	"PKPK", "MAX", "MIN", "AMPL", "TOP", "BASE", "CMEAN", "MEAN", "RMS",
	"CRMS", "OVSN", "FPRE", "OVSP", "RPRE", "PER", "FREQ", "PWID",
	"NWID", "RISE", "FALL", "WID", "DUTY", "NDUTY", "ALL",
}

// DisplayParameter selects the waveform processing of the channel for
// parameter slot (1..8) and displays the result on the front panel.
func (ch *Channel) DisplayParameter(slot int, param string) error {
	if slot < 1 || slot > 8 {
		return fmt.Errorf("scope: invalid parameter slot %d", slot)
	}
	err := discrete(measurableParams...)(param)
	if err != nil {
		return fmt.Errorf("scope: could not set C%d display parameter: %w", ch.id, err)
	}
	err = ch.sc.t.Write(fmt.Sprintf("PACU %d,%s,C%d", slot, param, ch.id))
	if err != nil {
		return fmt.Errorf("scope: could not set C%d display parameter: %w", ch.id, err)
	}
	return nil
}

// "CUST1,3.14E-01V,OK" or "CUST2,UNDEF,IV"
var pavaRE = regexp.MustCompile(`^(?:C\d:PAVA\s+)?CUST(?P<parameter>\d),\s*(?P<value>[-+.Ee\d]+)\s*(?P<unit>[^,\s]+)?(,\s*(?P<state>\w+))?$`)

// MeasureParameter triggers the waveform processing installed on slot
// (1..8) and returns the measured value.
func (ch *Channel) MeasureParameter(slot int) (float64, error) {
	if slot < 1 || slot > 8 {
		return 0, fmt.Errorf("scope: invalid parameter slot %d", slot)
	}
	out, err := ch.sc.t.Query(fmt.Sprintf("PAVA? CUST%d", slot))
	if err != nil {
		return 0, fmt.Errorf("scope: could not measure C%d parameter %d: %w", ch.id, slot, err)
	}

	m := pavaRE.FindStringSubmatch(strings.TrimSpace(out))
	if m == nil {
		return 0, fmt.Errorf("scope: could not parse measurement reply %q", out)
	}
	var (
		param = m[pavaRE.SubexpIndex("parameter")]
		value = m[pavaRE.SubexpIndex("value")]
		state = m[pavaRE.SubexpIndex("state")]
	)
	if param != strconv.Itoa(slot) {
		return 0, fmt.Errorf("scope: measurement reply for slot %s, want %d", param, slot)
	}
	if state == "IV" {
		return 0, fmt.Errorf("scope: measurement state for slot %d is invalid", slot)
	}
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("scope: could not parse measurement value %q: %w", value, err)
	}
	return v, nil
}
