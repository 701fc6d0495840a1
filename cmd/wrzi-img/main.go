// Copyright 2024 The go-lab Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command wrzi-img grabs a screen capture from a WaveRunner
// oscilloscope and stores it as a BMP file.
package main // import "github.com/go-lab/wrzi/cmd/wrzi-img"

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/go-lab/wrzi/scope"
)

var (
	msg = log.New(os.Stdout, "wrzi-img: ", 0)
)

func main() {
	var (
		addr    = flag.String("addr", "", "address of the oscilloscope (host:port)")
		oname   = flag.String("o", "screen.bmp", "path to output BMP file")
		timeout = flag.Duration("timeout", 10*time.Second, "read timeout")
	)

	flag.Usage = func() {
		fmt.Printf(`Usage: wrzi-img [OPTIONS]

ex:
 $> wrzi-img -addr=192.168.1.42:1861 -o screen.bmp

options:
`)
		flag.PrintDefaults()
	}

	flag.Parse()

	if *addr == "" {
		flag.Usage()
		msg.Fatalf("missing oscilloscope address")
	}

	err := process(*addr, *oname, *timeout)
	if err != nil {
		msg.Fatalf("could not grab screen: %+v", err)
	}
}

func process(addr, oname string, timeout time.Duration) error {
	sc, err := scope.Dial(addr, scope.WithTimeout(timeout))
	if err != nil {
		return fmt.Errorf("could not dial oscilloscope %q: %w", addr, err)
	}
	defer sc.Close()

	raw, err := sc.DownloadImage()
	if err != nil {
		return fmt.Errorf("could not download screen image: %w", err)
	}

	err = os.WriteFile(oname, raw, 0644)
	if err != nil {
		return fmt.Errorf("could not write %s: %w", oname, err)
	}
	msg.Printf("wrote %d bytes to %s", len(raw), oname)

	return nil
}
