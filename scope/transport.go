// Copyright 2024 The go-lab Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package scope

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"time"
)

// Transport carries commands and replies between the driver and one
// instrument session. Implementations need not be safe for concurrent
// use: the driver serializes all traffic of one acquisition.
type Transport interface {
	// Write sends a command that produces no reply.
	Write(cmd string) error
	// Query sends a command and returns its single-line reply,
	// stripped of line terminators.
	Query(cmd string) (string, error)
	// QueryBinary sends a command and reads exactly n bytes of raw
	// reply. A negative n reads until the instrument goes idle.
	QueryBinary(cmd string, n int) ([]byte, error)

	Close() error
}

// tcpConn implements Transport over a raw TCP session to the
// instrument VICP/LXI port, pacing consecutive commands by a minimum
// write interval.
type tcpConn struct {
	conn net.Conn
	r    *bufio.Reader

	interval time.Duration
	timeout  time.Duration
	last     time.Time
}

var _ Transport = (*tcpConn)(nil)

func dialTCP(addr string, cfg config) (*tcpConn, error) {
	conn, err := net.DialTimeout("tcp", addr, cfg.timeout)
	if err != nil {
		return nil, fmt.Errorf("scope: could not dial %q: %w", addr, err)
	}
	return &tcpConn{
		conn:     conn,
		r:        bufio.NewReader(conn),
		interval: cfg.interval,
		timeout:  cfg.timeout,
	}, nil
}

func (t *tcpConn) send(cmd string) error {
	if dt := time.Since(t.last); dt < t.interval {
		time.Sleep(t.interval - dt)
	}
	defer func() { t.last = time.Now() }()

	if t.timeout > 0 {
		_ = t.conn.SetDeadline(time.Now().Add(t.timeout))
	}
	_, err := io.WriteString(t.conn, cmd+"\n")
	return err
}

func (t *tcpConn) Write(cmd string) error {
	err := t.send(cmd)
	if err != nil {
		return fmt.Errorf("scope: could not send command %q: %w", cmd, err)
	}
	return nil
}

func (t *tcpConn) Query(cmd string) (string, error) {
	err := t.send(cmd)
	if err != nil {
		return "", fmt.Errorf("scope: could not send query %q: %w", cmd, err)
	}

	line, err := t.r.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("scope: could not read reply to %q: %w", cmd, err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (t *tcpConn) QueryBinary(cmd string, n int) ([]byte, error) {
	err := t.send(cmd)
	if err != nil {
		return nil, fmt.Errorf("scope: could not send query %q: %w", cmd, err)
	}

	if n >= 0 {
		buf := make([]byte, n)
		_, err = io.ReadFull(t.r, buf)
		if err != nil {
			return nil, fmt.Errorf("scope: could not read %d-byte reply to %q: %w",
				n, cmd, err,
			)
		}
		return buf, nil
	}

	// Unknown reply size (screen dumps): read until the instrument
	// stays idle for one deadline interval.
	var (
		buf bytes.Buffer
		tmp = make([]byte, 32*1024)
	)
	for {
		_ = t.conn.SetReadDeadline(time.Now().Add(t.timeout))
		m, err := t.r.Read(tmp)
		buf.Write(tmp[:m])
		if err == nil {
			continue
		}
		var nerr net.Error
		switch {
		case errors.Is(err, io.EOF),
			errors.As(err, &nerr) && nerr.Timeout() && buf.Len() > 0:
			return buf.Bytes(), nil
		default:
			return nil, fmt.Errorf("scope: could not read reply to %q: %w", cmd, err)
		}
	}
}

func (t *tcpConn) Close() error {
	return t.conn.Close()
}
