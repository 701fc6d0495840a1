// Copyright 2024 The go-lab Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command wrzi-shell provides an interactive command shell to a
// WaveRunner oscilloscope.
//
// Lines ending with '?' are sent as queries and the reply displayed;
// other lines are sent as plain commands.
package main // import "github.com/go-lab/wrzi/cmd/wrzi-shell"

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-lab/wrzi/scope"
	"github.com/peterh/liner"
)

var (
	msg = log.New(os.Stdout, "wrzi-shell: ", 0)
)

func main() {
	var (
		addr    = flag.String("addr", "", "address of the oscilloscope (host:port)")
		timeout = flag.Duration("timeout", 5*time.Second, "read timeout")
	)

	flag.Usage = func() {
		fmt.Printf(`Usage: wrzi-shell [OPTIONS]

ex:
 $> wrzi-shell -addr=192.168.1.42:1861
 wrzi> *IDN?
 LECROY,WR606ZI,LCRY0401N12345,7.7.1
 wrzi> TRMD SINGLE
 wrzi> quit

options:
`)
		flag.PrintDefaults()
	}

	flag.Parse()

	if *addr == "" {
		flag.Usage()
		msg.Fatalf("missing oscilloscope address")
	}

	sc, err := scope.Dial(*addr, scope.WithTimeout(*timeout))
	if err != nil {
		msg.Fatalf("could not dial oscilloscope %q: %+v", *addr, err)
	}
	defer sc.Close()

	err = repl(sc)
	if err != nil {
		msg.Fatalf("could not run shell: %+v", err)
	}
}

func repl(sc *scope.Scope) error {
	term := liner.NewLiner()
	defer term.Close()

	term.SetCtrlCAborts(true)

	history := filepath.Join(os.TempDir(), ".wrzi_history")
	if f, err := os.Open(history); err == nil {
		_, _ = term.ReadHistory(f)
		f.Close()
	}
	defer func() {
		f, err := os.Create(history)
		if err != nil {
			msg.Printf("could not save history: %+v", err)
			return
		}
		defer f.Close()
		_, _ = term.WriteHistory(f)
	}()

	for {
		line, err := term.Prompt("wrzi> ")
		switch err {
		case nil:
			// ok
		case io.EOF, liner.ErrPromptAborted:
			fmt.Println("")
			return nil
		default:
			return fmt.Errorf("could not read line: %w", err)
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		term.AppendHistory(line)

		if line == "quit" || line == "exit" {
			return nil
		}

		switch {
		case strings.HasSuffix(line, "?"), strings.HasPrefix(strings.ToUpper(line), "VBS? "):
			v, err := sc.Query(line)
			if err != nil {
				msg.Printf("could not query %q: %+v", line, err)
				continue
			}
			fmt.Println(v)
		default:
			err := sc.Write(line)
			if err != nil {
				msg.Printf("could not send %q: %+v", line, err)
			}
		}
	}
}
