// Copyright 2024 The go-lab Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package labdb

// Setup is a saved vertical setup of one oscilloscope channel.
type Setup struct {
	ID       uint64
	Channel  int
	VoltsDiv float64
	Offset   float64
	Coupling string
	BWLimit  string
}

// Acquisition is the bookkeeping record of one acquired waveform.
type Acquisition struct {
	ID       uint64
	Run      uint64
	Source   string
	Samples  int
	Sparsing int

	VertScale  float64
	VertOffset float64
	HorizScale float64
	Rate       float64

	MemDepth string
}
