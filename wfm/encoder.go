// Copyright 2024 The go-lab Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wfm

import (
	"fmt"
	"io"
)

// Encoder writes waveform block transfers to an output stream, using
// the same framing the instrument produces. It is mainly useful to
// build fake instruments for tests and to persist raw acquisitions.
type Encoder struct {
	w   io.Writer
	err error
}

// NewEncoder returns a new Encoder that writes to w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

// Encode writes one framed block transfer to the stream.
func (enc *Encoder) Encode(blk *Block) error {
	if blk == nil {
		return nil
	}

	if blk.Count != len(blk.Data) {
		return fmt.Errorf("wfm: inconsistent block (declared=%d samples, got=%d)",
			blk.Count, len(blk.Data),
		)
	}

	enc.write([]byte(fmt.Sprintf("%s%0*d", HeaderPrefix, CountWidth, blk.Count)))
	if enc.err != nil {
		return fmt.Errorf("wfm: could not write block header: %w", enc.err)
	}

	enc.write(blk.Data)
	if enc.err != nil {
		return fmt.Errorf("wfm: could not write block payload: %w", enc.err)
	}

	enc.write([]byte{Terminator})
	if enc.err != nil {
		return fmt.Errorf("wfm: could not write block terminator: %w", enc.err)
	}

	return enc.err
}

func (enc *Encoder) write(p []byte) {
	if enc.err != nil {
		return
	}
	_, enc.err = enc.w.Write(p)
}
