// Copyright 2024 The go-lab Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package daq exposes a WaveRunner oscilloscope as a TDAQ data source:
// once started, the server repeatedly acquires the configured trace
// and publishes the scaled waveforms on its output end-point.
package daq

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-daq/tdaq"
	"github.com/go-lab/wrzi/scope"
	"github.com/go-lab/wrzi/wfm"
)

// device is the instrument surface the DAQ server drives.
type device interface {
	ReadWaveform(src wfm.Source, points, sparsing int) (*wfm.Data, error)
	Run() error
	Stop() error

	Close() error
}

// Config describes the acquisition loop of a DAQ server.
type Config struct {
	Addr     string        // instrument address
	Source   string        // trace to acquire (C1..C4, F1..F8)
	Points   int           // samples per acquisition (0: all available)
	Sparsing int           // keep every Nth sample
	Period   time.Duration // delay between two acquisitions
}

// Server adapts one oscilloscope to the TDAQ command and data flow.
type Server struct {
	cfg Config
	src wfm.Source

	newDevice func(addr string) (device, error)
	dev       device

	n    int // waveforms acquired since /init
	data chan []byte
}

// New creates a DAQ server for the instrument described by cfg.
func New(cfg Config) *Server {
	if cfg.Sparsing < 1 {
		cfg.Sparsing = 1
	}
	if cfg.Period <= 0 {
		cfg.Period = 1 * time.Second
	}
	return &Server{
		cfg: cfg,
		newDevice: func(addr string) (device, error) {
			return scope.Dial(addr)
		},
	}
}

func (srv *Server) OnConfig(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	ctx.Msg.Debugf("received /config command...")

	src, err := wfm.ParseSource(srv.cfg.Source)
	if err != nil {
		ctx.Msg.Errorf("could not parse source %q: %+v", srv.cfg.Source, err)
		return fmt.Errorf("could not parse source %q: %w", srv.cfg.Source, err)
	}
	srv.src = src

	if srv.dev != nil {
		_ = srv.dev.Close()
		srv.dev = nil
	}
	dev, err := srv.newDevice(srv.cfg.Addr)
	if err != nil {
		ctx.Msg.Errorf("could not dial instrument %q: %+v", srv.cfg.Addr, err)
		return fmt.Errorf("could not dial instrument %q: %w", srv.cfg.Addr, err)
	}
	srv.dev = dev
	ctx.Msg.Infof("configured instrument %q, source %s", srv.cfg.Addr, srv.src)

	return nil
}

func (srv *Server) OnInit(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	ctx.Msg.Debugf("received /init command...")
	srv.data = make(chan []byte, 16)
	srv.n = 0
	return nil
}

func (srv *Server) OnReset(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	ctx.Msg.Debugf("received /reset command...")
	srv.data = make(chan []byte, 16)
	srv.n = 0
	return nil
}

func (srv *Server) OnStart(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	ctx.Msg.Debugf("received /start command...")
	if srv.dev == nil {
		return fmt.Errorf("instrument not configured")
	}
	err := srv.dev.Run()
	if err != nil {
		return fmt.Errorf("could not start instrument: %w", err)
	}
	return nil
}

func (srv *Server) OnStop(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	ctx.Msg.Debugf("received /stop command... -> n=%d", srv.n)
	if srv.dev == nil {
		return fmt.Errorf("instrument not configured")
	}
	err := srv.dev.Stop()
	if err != nil {
		return fmt.Errorf("could not stop instrument: %w", err)
	}
	return nil
}

func (srv *Server) OnQuit(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	ctx.Msg.Debugf("received /quit command...")
	if srv.dev != nil {
		err := srv.dev.Close()
		srv.dev = nil
		if err != nil {
			return fmt.Errorf("could not close instrument: %w", err)
		}
	}
	return nil
}

// Waveform publishes the next acquired waveform, JSON-encoded, on the
// /wfm end-point.
func (srv *Server) Waveform(ctx tdaq.Context, dst *tdaq.Frame) error {
	select {
	case <-ctx.Ctx.Done():
		dst.Body = nil
		return nil
	case data := <-srv.data:
		dst.Body = data
	}
	return nil
}

// Run acquires waveforms until the run stops.
func (srv *Server) Run(ctx tdaq.Context) error {
	for {
		select {
		case <-ctx.Ctx.Done():
			return nil
		default:
			if srv.dev == nil {
				time.Sleep(srv.cfg.Period)
				continue
			}

			data, err := srv.dev.ReadWaveform(srv.src, srv.cfg.Points, srv.cfg.Sparsing)
			if err != nil {
				ctx.Msg.Errorf("could not acquire %s waveform: %+v", srv.src, err)
				time.Sleep(srv.cfg.Period)
				continue
			}

			raw, err := json.Marshal(data)
			if err != nil {
				ctx.Msg.Errorf("could not encode %s waveform: %+v", srv.src, err)
				continue
			}

			select {
			case srv.data <- raw:
				srv.n++
			default:
			}
		}
		time.Sleep(srv.cfg.Period)
	}
}
