// Copyright 2024 The go-lab Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command wrzi-daq starts a TDAQ server publishing waveforms acquired
// from a WaveRunner oscilloscope.
package main // import "github.com/go-lab/wrzi/cmd/wrzi-daq"

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/go-daq/tdaq"
	"github.com/go-daq/tdaq/flags"
	"github.com/go-lab/wrzi/daq"
)

func main() {
	var (
		source   = flag.String("source", "C1", "trace to acquire (C1..C4, F1..F8)")
		points   = flag.Int("points", 0, "samples per acquisition (0: all available)")
		sparsing = flag.Int("sparsing", 1, "acquire every Nth sample")
		period   = flag.Duration("period", 1*time.Second, "delay between two acquisitions")
	)

	cmd := flags.New()
	if len(cmd.Args) != 1 {
		log.Fatalf("missing oscilloscope address argument")
	}

	dev := daq.New(daq.Config{
		Addr:     cmd.Args[0],
		Source:   *source,
		Points:   *points,
		Sparsing: *sparsing,
		Period:   *period,
	})

	srv := tdaq.New(cmd, os.Stdout)
	srv.CmdHandle("/config", dev.OnConfig)
	srv.CmdHandle("/init", dev.OnInit)
	srv.CmdHandle("/reset", dev.OnReset)
	srv.CmdHandle("/start", dev.OnStart)
	srv.CmdHandle("/stop", dev.OnStop)
	srv.CmdHandle("/quit", dev.OnQuit)

	srv.OutputHandle("/wfm", dev.Waveform)

	srv.RunHandle(dev.Run)

	err := srv.Run(context.Background())
	if err != nil {
		log.Panicf("error: %+v", err)
	}
}
