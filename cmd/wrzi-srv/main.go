// Copyright 2024 The go-lab Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command wrzi-srv exposes a WaveRunner oscilloscope over a JSON
// command service.
package main // import "github.com/go-lab/wrzi/cmd/wrzi-srv"

import (
	"flag"
	"log"
	"time"

	"github.com/go-lab/wrzi/scope"
)

func main() {
	var (
		addr    = flag.String("addr", ":9999", "listening [addr]:port")
		scpAddr = flag.String("scope", "", "address of the oscilloscope (host:port)")
		timeout = flag.Duration("timeout", 5*time.Second, "instrument read timeout")
	)

	log.SetPrefix("wrzi-srv: ")
	log.SetFlags(0)

	flag.Parse()

	if *scpAddr == "" {
		log.Fatalf("missing oscilloscope address")
	}

	err := scope.Serve(*addr, *scpAddr, scope.WithTimeout(*timeout))
	if err != nil {
		log.Fatalf("could not create wrzi service: %+v", err)
	}
}
