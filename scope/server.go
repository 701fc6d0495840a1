// Copyright 2024 The go-lab Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package scope

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"strings"

	"github.com/go-lab/wrzi/wfm"
)

// device is the instrument surface exercised by the control server.
type device interface {
	IDN() (string, error)
	SetupChannel(cfg Config) error
	TimebaseSetup(cfg TimebaseConfig) error
	ReadWaveform(src wfm.Source, points, sparsing int) (*wfm.Data, error)

	Close() error
}

var _ device = (*Scope)(nil)

// SetupChannel applies a channel configuration, addressing the channel
// by its Channel field.
func (sc *Scope) SetupChannel(cfg Config) error {
	ch, err := sc.Channel(cfg.Channel)
	if err != nil {
		return err
	}
	return ch.Setup(cfg)
}

// server exposes one oscilloscope to the network as a JSON command
// endpoint.
type server struct {
	ctl net.Listener

	msg  *log.Logger
	addr string // instrument address

	newDevice func(addr string, opts ...Option) (device, error)

	opts []Option
	dev  device
}

// Serve listens on addr and drives the instrument at scopeAddr on
// behalf of connecting clients, one at a time.
func Serve(addr, scopeAddr string, opts ...Option) error {
	srv, err := newServer(addr, scopeAddr, opts...)
	if err != nil {
		return fmt.Errorf("could not create scope server: %w", err)
	}
	return srv.serve()
}

func newServer(addr, scopeAddr string, opts ...Option) (*server, error) {
	ctl, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("could not create scope-ctl server on %q: %w", addr, err)
	}

	srv := &server{
		ctl: ctl,

		msg:  log.New(os.Stdout, "scope-svc: ", 0),
		addr: scopeAddr,

		newDevice: func(addr string, opts ...Option) (device, error) {
			return Dial(addr, opts...)
		},

		opts: opts,
	}
	return srv, nil
}

func (srv *server) serve() error {
	defer srv.close()

	for {
		conn, err := srv.ctl.Accept()
		if err != nil {
			return fmt.Errorf("could not accept connection: %w", err)
		}

		err = srv.handle(conn)
		if err != nil {
			srv.msg.Printf("could not drive instrument: %+v", err)
			continue
		}
	}
}

func (srv *server) handle(conn net.Conn) error {
	defer conn.Close()
	srv.msg.Printf("serving %v...", conn.RemoteAddr())
	defer srv.msg.Printf("serving %v... [done]", conn.RemoteAddr())

	srv.dev = nil
	dev, err := srv.newDevice(srv.addr, srv.opts...)
	if err != nil {
		return fmt.Errorf("could not dial instrument %q: %w", srv.addr, err)
	}
	defer dev.Close()
	srv.dev = dev

loop:
	for {
		var req struct {
			Name string           `json:"name"`
			Args *json.RawMessage `json:"args"`
		}

		err = json.NewDecoder(conn).Decode(&req)
		if err != nil {
			srv.msg.Printf("could not decode command request: %+v", err)
			srv.reply(conn, err)
			if errors.Is(err, io.EOF) {
				break loop
			}
			continue
		}
		srv.msg.Printf("received request: name=%q", req.Name)

		if req.Args == nil {
			req.Args = new(json.RawMessage)
			*req.Args = json.RawMessage("null")
		}

		switch strings.ToLower(req.Name) {
		case "idn":
			idn, err := dev.IDN()
			if err != nil {
				srv.msg.Printf("could not query identification: %+v", err)
				srv.reply(conn, err)
				continue
			}
			srv.replyData(conn, idn)

		case "setup":
			var args []Config
			err = json.Unmarshal(*req.Args, &args)
			if err != nil {
				srv.msg.Printf("could not decode %q payload: %+v", req.Name, err)
				srv.reply(conn, err)
				continue
			}

			for _, arg := range args {
				srv.msg.Printf("configuring channel C%d", arg.Channel)
				err := dev.SetupChannel(arg)
				if err != nil {
					srv.msg.Printf("could not configure channel C%d: %+v",
						arg.Channel, err,
					)
					srv.reply(conn, err)
					continue loop
				}
			}
			srv.reply(conn, nil)

		case "timebase":
			var args TimebaseConfig
			err = json.Unmarshal(*req.Args, &args)
			if err != nil {
				srv.msg.Printf("could not decode %q payload: %+v", req.Name, err)
				srv.reply(conn, err)
				continue
			}

			err = dev.TimebaseSetup(args)
			srv.reply(conn, err)
			if err != nil {
				srv.msg.Printf("could not configure timebase: %+v", err)
				continue
			}

		case "acquire":
			var args struct {
				Source   string `json:"source"`
				Points   int    `json:"points"`
				Sparsing int    `json:"sparsing"`
			}
			err = json.Unmarshal(*req.Args, &args)
			if err != nil {
				srv.msg.Printf("could not decode %q payload: %+v", req.Name, err)
				srv.reply(conn, err)
				continue
			}
			if args.Sparsing == 0 {
				args.Sparsing = 1
			}

			src, err := wfm.ParseSource(args.Source)
			if err != nil {
				srv.msg.Printf("could not parse source %q: %+v", args.Source, err)
				srv.reply(conn, err)
				continue
			}

			data, err := dev.ReadWaveform(src, args.Points, args.Sparsing)
			if err != nil {
				srv.msg.Printf("could not acquire %s waveform: %+v", src, err)
				srv.reply(conn, err)
				continue
			}
			srv.replyData(conn, data)

		case "quit":
			srv.reply(conn, nil)
			break loop

		default:
			srv.msg.Printf("unknown command name=%q, args=%s", req.Name, *req.Args)
			err = fmt.Errorf("unknown command %q", req.Name)
			srv.reply(conn, err)
			continue
		}
	}

	return nil
}

func (srv *server) reply(conn net.Conn, err error) {
	rep := struct {
		Msg string `json:"msg"`
	}{"ok"}
	if err != nil {
		rep.Msg = fmt.Sprintf("%+v", err)
	}

	_ = json.NewEncoder(conn).Encode(rep)
}

func (srv *server) replyData(conn net.Conn, data interface{}) {
	rep := struct {
		Msg  string      `json:"msg"`
		Data interface{} `json:"data,omitempty"`
	}{"ok", data}

	_ = json.NewEncoder(conn).Encode(rep)
}

func (srv *server) close() {
	_ = srv.ctl.Close()
}
