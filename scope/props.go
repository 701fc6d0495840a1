// Copyright 2024 The go-lab Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package scope

import (
	"fmt"
	"strconv"
	"strings"
)

// prop describes one instrument setting: a query command, a write
// command template, an optional validator on the driver-side value and
// an optional driver-value to instrument-value map.
type prop struct {
	name  string
	query string
	write string

	check validator
	vmap  map[string]string

	min, max float64 // numeric bounds, used when bounded is set
	bounded  bool
}

type validator func(v string) error

// discrete restricts a property to a closed set of driver-side values.
func discrete(vals ...string) validator {
	return func(v string) error {
		for _, val := range vals {
			if v == val {
				return nil
			}
		}
		return fmt.Errorf("invalid value %q (want one of %v)", v, vals)
	}
}

// getProp queries the property and maps the reply back to a
// driver-side value.
func (sc *Scope) getProp(p prop) (string, error) {
	v, err := sc.t.Query(p.query)
	if err != nil {
		return "", fmt.Errorf("scope: could not query %s: %w", p.name, err)
	}
	v = strings.TrimSpace(v)
	if p.vmap == nil {
		return v, nil
	}
	for k, ins := range p.vmap {
		if strings.EqualFold(ins, v) {
			return k, nil
		}
	}
	return "", fmt.Errorf("scope: unexpected %s reply %q", p.name, v)
}

// setProp validates the driver-side value, maps it to its instrument
// form and writes it. Invalid values perform no I/O.
func (sc *Scope) setProp(p prop, v string) error {
	if p.check != nil {
		err := p.check(v)
		if err != nil {
			return fmt.Errorf("scope: could not set %s: %w", p.name, err)
		}
	}
	if p.vmap != nil {
		ins, ok := p.vmap[v]
		if !ok {
			return fmt.Errorf("scope: could not set %s: invalid value %q", p.name, v)
		}
		v = ins
	}
	err := sc.t.Write(fmt.Sprintf(p.write, v))
	if err != nil {
		return fmt.Errorf("scope: could not set %s: %w", p.name, err)
	}
	return nil
}

func (sc *Scope) getFloat(p prop) (float64, error) {
	v, err := sc.t.Query(p.query)
	if err != nil {
		return 0, fmt.Errorf("scope: could not query %s: %w", p.name, err)
	}
	f, err := parseNum(v)
	if err != nil {
		return 0, fmt.Errorf("scope: could not parse %s reply %q: %w", p.name, v, err)
	}
	return f, nil
}

func (sc *Scope) setFloat(p prop, v float64) error {
	if p.bounded && (v < p.min || v > p.max) {
		return fmt.Errorf("scope: could not set %s: value %v out of range [%v, %v]",
			p.name, v, p.min, p.max,
		)
	}
	err := sc.t.Write(fmt.Sprintf(p.write, v))
	if err != nil {
		return fmt.Errorf("scope: could not set %s: %w", p.name, err)
	}
	return nil
}

func (sc *Scope) getInt(p prop) (int, error) {
	f, err := sc.getFloat(p)
	if err != nil {
		return 0, err
	}
	return int(f), nil
}

func (sc *Scope) setInt(p prop, v int) error {
	if p.bounded && (float64(v) < p.min || float64(v) > p.max) {
		return fmt.Errorf("scope: could not set %s: value %d out of range [%v, %v]",
			p.name, v, p.min, p.max,
		)
	}
	err := sc.t.Write(fmt.Sprintf(p.write, v))
	if err != nil {
		return fmt.Errorf("scope: could not set %s: %w", p.name, err)
	}
	return nil
}

func (sc *Scope) getBool(p prop) (bool, error) {
	v, err := sc.t.Query(p.query)
	if err != nil {
		return false, fmt.Errorf("scope: could not query %s: %w", p.name, err)
	}
	switch strings.ToUpper(strings.TrimSpace(v)) {
	case "0", "OFF", "FALSE":
		return false, nil
	default:
		return true, nil
	}
}

func (sc *Scope) setBool(p prop, v bool) error {
	arg := map[bool]string{true: "-1", false: "0"}[v]
	err := sc.t.Write(fmt.Sprintf(p.write, arg))
	if err != nil {
		return fmt.Errorf("scope: could not set %s: %w", p.name, err)
	}
	return nil
}

// parseNum extracts a number from an instrument reply, skipping a
// command-header prefix and a trailing unit, if any. The unit is
// stripped first so a space before it ("0.5 V") is not mistaken for
// the header separator.
func parseNum(s string) (float64, error) {
	s = strings.TrimSpace(s)
	for len(s) > 0 && !isNumByte(s[len(s)-1]) {
		s = s[:len(s)-1]
	}
	if i := strings.LastIndexByte(s, ' '); i >= 0 {
		s = s[i+1:]
	}
	return strconv.ParseFloat(s, 64)
}

func isNumByte(c byte) bool {
	return (c >= '0' && c <= '9') || c == '.'
}
