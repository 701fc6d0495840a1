// Copyright 2024 The go-lab Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command wrzi-plot renders waveform CSV files to a PNG plot.
package main // import "github.com/go-lab/wrzi/cmd/wrzi-plot"

import (
	"flag"
	"fmt"
	"image/color"
	"log"
	"os"

	"github.com/go-lab/wrzi/internal/xcnv"
	"github.com/go-lab/wrzi/wfm"
	"golang.org/x/image/colornames"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
)

var (
	msg = log.New(os.Stdout, "wrzi-plot: ", 0)

	colors = []color.RGBA{
		colornames.Blue,
		colornames.Red,
		colornames.Green,
		colornames.Orange,
		colornames.Purple,
		colornames.Brown,
		colornames.Teal,
		colornames.Magenta,
	}
)

func main() {
	var (
		oname = flag.String("o", "out.png", "path to output PNG file")
		title = flag.String("title", "waveforms", "plot title")
	)

	flag.Usage = func() {
		fmt.Printf(`Usage: wrzi-plot [OPTIONS] FILE1.csv [FILE2.csv [...]]

ex:
 $> wrzi-plot -o waves.png ./c1.csv ./c2.csv

options:
`)
		flag.PrintDefaults()
	}

	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		msg.Fatalf("missing input CSV file")
	}

	err := process(*oname, *title, flag.Args())
	if err != nil {
		msg.Fatalf("could not plot waveforms: %+v", err)
	}
}

func process(oname, title string, fnames []string) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "time (s)"
	p.Y.Label.Text = "voltage (V)"
	p.Add(plotter.NewGrid())

	for i, fname := range fnames {
		data, err := xcnv.CSV2WFM(fname)
		if err != nil {
			return fmt.Errorf("could not read %s: %w", fname, err)
		}

		line, err := plotter.NewLine(points(data))
		if err != nil {
			return fmt.Errorf("could not create line for %s: %w", fname, err)
		}
		line.Color = colors[i%len(colors)]

		p.Add(line)
		p.Legend.Add(data.Pre.Source.String(), line)
	}

	out, err := os.Create(oname)
	if err != nil {
		return fmt.Errorf("could not create %s: %w", oname, err)
	}
	defer out.Close()

	wrt, err := p.WriterTo(800, 600, "png")
	if err != nil {
		return fmt.Errorf("could not render plot: %w", err)
	}
	_, err = wrt.WriteTo(out)
	if err != nil {
		return fmt.Errorf("could not write %s: %w", oname, err)
	}

	err = out.Close()
	if err != nil {
		return fmt.Errorf("could not close %s: %w", oname, err)
	}
	return nil
}

func points(data *wfm.Data) plotter.XYs {
	pts := make(plotter.XYs, len(data.Volts))
	for i := range pts {
		pts[i].X = data.Times[i]
		pts[i].Y = data.Volts[i]
	}
	return pts
}
