// Copyright 2024 The go-lab Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package scope provides a driver for the LeCroy WaveRunner 606Zi
// oscilloscope: instrument setup, chunked waveform acquisition and
// status handling over a raw TCP session.
package scope

import (
	"fmt"
	"log"
	"os"

	"github.com/go-lab/wrzi/wfm"
)

// Scope drives one WaveRunner 606Zi instrument session.
//
// A Scope is not safe for concurrent use: the instrument holds a
// single command session and the caller serializes access to it.
type Scope struct {
	t   Transport
	msg *log.Logger
	cfg config

	chans [wfm.NumChans]Channel
	fns   [wfm.NumFuncs]MathFn
}

// Dial connects to the instrument remote-control port (usually
// addr:1861 for VICP or a raw-socket port) and prepares the session.
func Dial(addr string, opts ...Option) (*Scope, error) {
	cfg := newConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	t, err := dialTCP(addr, cfg)
	if err != nil {
		return nil, err
	}

	sc, err := newScope(t, cfg)
	if err != nil {
		_ = t.Close()
		return nil, err
	}
	return sc, nil
}

// New prepares an instrument session over the provided transport.
func New(t Transport, opts ...Option) (*Scope, error) {
	cfg := newConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return newScope(t, cfg)
}

func newScope(t Transport, cfg config) (*Scope, error) {
	sc := &Scope{
		t:   t,
		msg: log.New(os.Stdout, "scope: ", 0),
		cfg: cfg,
	}
	for i := range sc.chans {
		sc.chans[i] = Channel{sc: sc, id: i + 1}
	}
	for i := range sc.fns {
		sc.fns[i] = MathFn{sc: sc, id: i + 1}
	}

	// Replies must come back without command headers so that numeric
	// readbacks parse uniformly.
	err := sc.t.Write("CHDR OFF")
	if err != nil {
		return nil, fmt.Errorf("scope: could not disable command headers: %w", err)
	}
	return sc, nil
}

// Channel returns the analog input channel id (1-based).
func (sc *Scope) Channel(id int) (*Channel, error) {
	if id < 1 || id > wfm.NumChans {
		return nil, fmt.Errorf("scope: invalid channel number %d", id)
	}
	return &sc.chans[id-1], nil
}

// Fn returns the math function trace id (1-based).
func (sc *Scope) Fn(id int) (*MathFn, error) {
	if id < 1 || id > wfm.NumFuncs {
		return nil, fmt.Errorf("scope: invalid math function number %d", id)
	}
	return &sc.fns[id-1], nil
}

// IDN returns the instrument identification string.
func (sc *Scope) IDN() (string, error) {
	v, err := sc.t.Query("*IDN?")
	if err != nil {
		return "", fmt.Errorf("scope: could not query identification: %w", err)
	}
	return v, nil
}

// Write sends a raw command to the instrument.
func (sc *Scope) Write(cmd string) error {
	return sc.t.Write(cmd)
}

// Query sends a raw query to the instrument and returns the reply
// with trailing line terminators stripped.
func (sc *Scope) Query(cmd string) (string, error) {
	return sc.t.Query(cmd)
}

// Reset restores the instrument default setup.
func (sc *Scope) Reset() error {
	err := sc.t.Write("*RST")
	if err != nil {
		return fmt.Errorf("scope: could not reset instrument: %w", err)
	}
	return nil
}

// Autoscale runs the instrument auto-setup on the active inputs.
func (sc *Scope) Autoscale() error {
	err := sc.t.Write("ASET")
	if err != nil {
		return fmt.Errorf("scope: could not run auto-setup: %w", err)
	}
	return nil
}

var trigModeProp = prop{
	name:  "trigger mode",
	query: "TRMD?",
	write: "TRMD %s",
	check: discrete("AUTO", "NORM", "SINGLE", "STOP"),
}

// TriggerMode returns the current trigger sweep mode (AUTO, NORM,
// SINGLE or STOP).
func (sc *Scope) TriggerMode() (string, error) { return sc.getProp(trigModeProp) }

// SetTriggerMode selects the trigger sweep mode.
func (sc *Scope) SetTriggerMode(mode string) error { return sc.setProp(trigModeProp, mode) }

// Run arms the instrument for continuous acquisition.
func (sc *Scope) Run() error { return sc.setProp(trigModeProp, "AUTO") }

// Stop freezes the current acquisition.
func (sc *Scope) Stop() error { return sc.setProp(trigModeProp, "STOP") }

// Single arms the instrument for a single acquisition.
func (sc *Scope) Single() error { return sc.setProp(trigModeProp, "SINGLE") }

// Close releases the instrument session.
func (sc *Scope) Close() error {
	return sc.t.Close()
}
