// Copyright 2024 The go-lab Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package scope

import "time"

type config struct {
	interval time.Duration // minimum delay between consecutive commands
	timeout  time.Duration // per-call I/O deadline
	xfer     int           // maximum bytes per waveform block transfer
}

func newConfig() config {
	return config{
		interval: 20 * time.Millisecond,
		timeout:  5 * time.Second,
		xfer:     1 << 20,
	}
}

// Option configures a Scope device.
type Option func(*config)

// WithWriteInterval sets the minimum delay between two consecutive
// commands sent to the instrument.
func WithWriteInterval(d time.Duration) Option {
	return func(cfg *config) {
		cfg.interval = d
	}
}

// WithTimeout sets the I/O deadline applied to each command.
func WithTimeout(d time.Duration) Option {
	return func(cfg *config) {
		cfg.timeout = d
	}
}

// WithMaxTransfer sets the maximum size (in bytes, framing included)
// of a single waveform block transfer.
func WithMaxTransfer(n int) Option {
	return func(cfg *config) {
		cfg.xfer = n
	}
}
