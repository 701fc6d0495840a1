// Copyright 2024 The go-lab Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command wrzi-acq acquires waveforms from a WaveRunner oscilloscope
// and stores them as CSV files.
package main // import "github.com/go-lab/wrzi/cmd/wrzi-acq"

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-lab/wrzi/internal/xcnv"
	"github.com/go-lab/wrzi/labdb"
	"github.com/go-lab/wrzi/scope"
	"github.com/go-lab/wrzi/wfm"
	"golang.org/x/sync/errgroup"
)

var (
	msg = log.New(os.Stdout, "wrzi-acq: ", 0)
)

func main() {
	var (
		addr     = flag.String("addr", "", "address of the oscilloscope (host:port)")
		odir     = flag.String("o", ".", "path to output directory for CSV files")
		points   = flag.Int("points", 0, "samples per acquisition (0: all available)")
		sparsing = flag.Int("sparsing", 1, "acquire every Nth sample")
		timeout  = flag.Duration("timeout", 5*time.Second, "read timeout")
		dbname   = flag.String("db", "", "name of the lab bookkeeping database (optional)")
	)

	flag.Usage = func() {
		fmt.Printf(`Usage: wrzi-acq [OPTIONS] SRC1 [SRC2 [SRC3 ...]]

ex:
 $> wrzi-acq -addr=192.168.1.42:1861 -sparsing=4 C1 C2 F1

options:
`)
		flag.PrintDefaults()
	}

	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		msg.Fatalf("missing trace argument (C1..C4, F1..F8)")
	}

	if *addr == "" {
		flag.Usage()
		msg.Fatalf("missing oscilloscope address")
	}

	err := process(*addr, *odir, *dbname, *points, *sparsing, *timeout, flag.Args())
	if err != nil {
		msg.Fatalf("could not acquire waveforms: %+v", err)
	}
}

func process(addr, odir, dbname string, points, sparsing int, timeout time.Duration, traces []string) error {
	srcs := make([]wfm.Source, len(traces))
	for i, trace := range traces {
		src, err := wfm.ParseSource(trace)
		if err != nil {
			return fmt.Errorf("could not parse trace %q: %w", trace, err)
		}
		srcs[i] = src
	}

	sc, err := scope.Dial(addr, scope.WithTimeout(timeout))
	if err != nil {
		return fmt.Errorf("could not dial oscilloscope %q: %w", addr, err)
	}
	defer sc.Close()

	var (
		db  *labdb.DB
		run uint64
	)
	if dbname != "" {
		db, err = labdb.Open(dbname)
		if err != nil {
			return fmt.Errorf("could not open db %q: %w", dbname, err)
		}
		defer db.Close()

		run, err = db.NextRunID(context.Background())
		if err != nil {
			return fmt.Errorf("could not get next run number: %w", err)
		}
		msg.Printf("recording acquisitions under run=%d", run)
	}

	// the instrument holds a single command session: acquisitions are
	// sequential, only the file writes fan out.
	waves := make([]*wfm.Data, len(srcs))
	for i, src := range srcs {
		waves[i], err = sc.ReadWaveform(src, points, sparsing)
		if err != nil {
			return fmt.Errorf("could not read %s waveform: %w", src, err)
		}
	}

	var grp errgroup.Group
	for i := range waves {
		data := waves[i]
		oname := filepath.Join(odir, strings.ToLower(data.Pre.Source.String())+".csv")
		grp.Go(func() error {
			err := xcnv.WFM2CSV(oname, data)
			if err != nil {
				return fmt.Errorf("could not write %s: %w", oname, err)
			}
			msg.Printf("%s: %d samples -> %s", data.Pre.Source, len(data.Volts), oname)
			return nil
		})
	}
	err = grp.Wait()
	if err != nil {
		return err
	}

	if db == nil {
		return nil
	}
	for _, data := range waves {
		src := data.Pre.Source
		err = db.InsertAcquisition(context.Background(), labdb.Acquisition{
			Run:        run,
			Source:     src.String(),
			Samples:    len(data.Volts),
			Sparsing:   data.Pre.Sparsing,
			VertScale:  data.Pre.VertScale,
			VertOffset: data.Pre.VertOffset,
			HorizScale: data.Pre.HorizScale,
			Rate:       data.Pre.Rate,
			MemDepth:   data.Pre.MemDepth,
		})
		if err != nil {
			return fmt.Errorf("could not record %s acquisition: %w", src, err)
		}
	}

	return nil
}
