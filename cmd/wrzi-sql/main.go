// Copyright 2024 The go-lab Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command wrzi-sql inspects the lab bookkeeping database.
package main // import "github.com/go-lab/wrzi/cmd/wrzi-sql"

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/go-lab/wrzi/labdb"
	_ "github.com/go-sql-driver/mysql"
)

const (
	dbname = "wrzisrv"
)

func main() {
	log.SetPrefix("wrzi-sql: ")
	log.SetFlags(0)

	var (
		channel = flag.Int("ch", 1, "channel setup to inspect")
		run     = flag.Uint64("run", 0, "run number to inspect (0: latest)")
	)

	flag.Parse()

	db, err := labdb.Open(dbname)
	if err != nil {
		log.Fatalf("could not open lab db: %+v", err)
	}
	defer db.Close()

	err = doQuery(db, *channel, *run)
	if err != nil {
		log.Fatalf("could not do query: %+v", err)
	}
}

func doQuery(db *labdb.DB, ch int, run uint64) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	setup, err := db.LastChannelSetup(ctx, ch)
	if err != nil {
		return fmt.Errorf("could not get last setup for channel %d: %w", ch, err)
	}
	log.Printf("setup: %#v", setup)

	if run == 0 {
		next, err := db.NextRunID(ctx)
		if err != nil {
			return fmt.Errorf("could not get next run number: %w", err)
		}
		if next < 2 {
			log.Printf("no recorded acquisitions")
			return nil
		}
		run = next - 1
		log.Printf("run: %d", run)
	}

	rows, err := db.QueryContext(ctx,
		"SELECT source, samples, sparsing, rate FROM acquisitions WHERE run=? ORDER BY id",
		run,
	)
	if err != nil {
		return fmt.Errorf("could not get acquisitions for run %d: %w", run, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			source   string
			samples  int
			sparsing int
			rate     float64
		)
		err = rows.Scan(&source, &samples, &sparsing, &rate)
		if err != nil {
			return fmt.Errorf("could not scan acquisition: %w", err)
		}
		log.Printf(">>> src=%s, samples=%d, sparsing=%d, rate=%v", source, samples, sparsing, rate)
	}
	err = rows.Err()
	if err != nil {
		return fmt.Errorf("could not iterate acquisitions: %w", err)
	}

	return nil
}
