// Copyright 2024 The go-lab Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package labdb holds types to describe the lab bookkeeping database:
// saved oscilloscope setups and the acquisitions recorded with them.
package labdb // import "github.com/go-lab/wrzi/labdb"

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

const (
	host = "localhost"
)

var (
	usr = "username"
	pwd = "s3cr3t"

	drvName = "mysql"
)

// DB exposes convenience methods to easily retrieve saved instrument
// setups and record acquisitions in the lab database.
type DB struct {
	db   *sql.DB
	name string // name of the lab database
}

// Open opens a connection to the lab database dbname.
func Open(dbname string) (*DB, error) {
	db, err := sql.Open(drvName, dsn(dbname))
	if err != nil {
		return nil, fmt.Errorf("labdb: could not open %q db: %w", dbname, err)
	}

	err = ping(db, dbname)
	if err != nil {
		return nil, fmt.Errorf("labdb: could not ping %q db: %w", dbname, err)
	}

	return &DB{db: db, name: dbname}, nil
}

func dsn(db string) string {
	return fmt.Sprintf("%s:%s@tcp(%s)/%s", usr, pwd, host, db)
}

func ping(db *sql.DB, dbname string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := db.PingContext(ctx)
	if err != nil {
		return fmt.Errorf("labdb: could not ping %q db: %w", dbname, err)
	}

	return nil
}

func (db *DB) Close() error {
	return db.db.Close()
}

func (db *DB) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return db.db.QueryContext(ctx, query, args...)
}

// LastChannelSetup returns the most recently saved setup of channel ch.
func (db *DB) LastChannelSetup(ctx context.Context, ch int) (Setup, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var setup Setup
	rows, err := db.db.QueryContext(
		ctx,
		`
SELECT id, channel, volts_div, offset, coupling, bwlimit FROM setups
WHERE channel=?
ORDER BY datetime DESC LIMIT 1
`,
		ch,
	)
	if err != nil {
		return setup, fmt.Errorf("labdb: could not query C%d setup: %w", ch, err)
	}
	defer rows.Close()

	for rows.Next() {
		err = rows.Scan(
			&setup.ID, &setup.Channel,
			&setup.VoltsDiv, &setup.Offset,
			&setup.Coupling, &setup.BWLimit,
		)
		if err != nil {
			return setup, fmt.Errorf("labdb: could not get C%d setup value: %w", ch, err)
		}
	}

	if err := rows.Err(); err != nil {
		return setup, fmt.Errorf("labdb: could not scan db for C%d setup: %w", ch, err)
	}

	if err := ctx.Err(); err != nil {
		return setup, fmt.Errorf("labdb: context error while retrieving C%d setup: %w", ch, err)
	}

	return setup, nil
}

// NextRunID returns the identifier to use for the next acquisition
// run.
func (db *DB) NextRunID(ctx context.Context) (uint64, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var run uint64
	rows, err := db.db.QueryContext(
		ctx,
		"SELECT IFNULL(MAX(run),0)+1 FROM acquisitions",
	)
	if err != nil {
		return run, fmt.Errorf("labdb: could not query next run-id: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		err = rows.Scan(&run)
		if err != nil {
			return run, fmt.Errorf("labdb: could not get next run-id value: %w", err)
		}
	}

	if err := rows.Err(); err != nil {
		return run, fmt.Errorf("labdb: could not scan db for next run-id: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return run, fmt.Errorf("labdb: context error while retrieving next run-id: %w", err)
	}

	return run, nil
}

// InsertAcquisition records the preamble of one acquired waveform.
func (db *DB) InsertAcquisition(ctx context.Context, acq Acquisition) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := db.db.ExecContext(
		ctx,
		`
INSERT INTO acquisitions
(run, source, samples, sparsing, vert_scale, vert_offset, horiz_scale, rate, mem_depth)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
`,
		acq.Run, acq.Source, acq.Samples, acq.Sparsing,
		acq.VertScale, acq.VertOffset, acq.HorizScale, acq.Rate,
		acq.MemDepth,
	)
	if err != nil {
		return fmt.Errorf("labdb: could not insert acquisition (run=%d, src=%s): %w",
			acq.Run, acq.Source, err,
		)
	}

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("labdb: context error while inserting acquisition: %w", err)
	}

	return nil
}
