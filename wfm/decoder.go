// Copyright 2024 The go-lab Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wfm

import (
	"bytes"
	"io"
	"strconv"

	"golang.org/x/xerrors"
)

// Block-transfer framing, as produced by the instrument in reply to a
// "<src>:WF? DAT2" query: a fixed ASCII prefix, a zero-padded decimal
// sample count on 9 digits (the IEEE-488.2 '#9' definite-length block
// convention), one byte per sample, and a single terminator byte.
const (
	HeaderPrefix = "DAT2,#9"
	CountWidth   = 9
	HeaderSize   = len(HeaderPrefix) + CountWidth

	Terminator = '\n'
	FooterSize = 1
)

// Block is one block transfer worth of raw waveform samples.
type Block struct {
	Count int    // sample count declared in the block header
	Data  []byte // raw samples, one byte per sample
}

// Decoder reads (and validates) waveform block transfers from an
// underlying data source.
type Decoder struct {
	r io.Reader

	src Source // current waveform source
	buf []byte
	err error
}

// NewDecoder creates a decoder that reads and validates block
// transfers of src from r.
func NewDecoder(src Source, r io.Reader) *Decoder {
	return &Decoder{
		r:   r,
		src: src,
		buf: make([]byte, HeaderSize),
	}
}

// Decode reads one block transfer, validates its framing and stores
// the payload samples into blk.
func (dec *Decoder) Decode(blk *Block) error {
	hdr := dec.buf[:HeaderSize]
	dec.read(hdr)
	if dec.err != nil {
		return xerrors.Errorf("wfm: %s could not read block header: %w", dec.src, dec.err)
	}

	if got, want := string(hdr[:len(HeaderPrefix)]), HeaderPrefix; got != want {
		return xerrors.Errorf("wfm: %s invalid block header prefix (got=%q, want=%q)",
			dec.src, got, want,
		)
	}

	n, err := strconv.Atoi(string(hdr[len(HeaderPrefix):HeaderSize]))
	if err != nil {
		return xerrors.Errorf("wfm: %s invalid block sample count %q",
			dec.src, string(hdr[len(HeaderPrefix):HeaderSize]),
		)
	}

	data := make([]byte, n)
	dec.read(data)
	if dec.err != nil {
		if xerrors.Is(dec.err, io.EOF) {
			dec.err = io.ErrUnexpectedEOF
		}
		return xerrors.Errorf("wfm: %s could not read block payload (want=%d samples): %w",
			dec.src, n, dec.err,
		)
	}

	v := dec.readU8()
	if dec.err != nil {
		if xerrors.Is(dec.err, io.EOF) {
			dec.err = io.ErrUnexpectedEOF
		}
		return xerrors.Errorf("wfm: %s could not read block terminator: %w", dec.src, dec.err)
	}
	if v != Terminator {
		return xerrors.Errorf("wfm: %s invalid block terminator (got=0x%x, want=0x%x)",
			dec.src, v, Terminator,
		)
	}

	blk.Count = n
	blk.Data = data
	return dec.err
}

// ParseBlock validates one complete block transfer held in p and
// returns its payload. The declared sample count must account exactly
// for the bytes between header and terminator.
func ParseBlock(src Source, p []byte) (Block, error) {
	var blk Block

	dec := NewDecoder(src, bytes.NewReader(p))
	err := dec.Decode(&blk)
	if err != nil {
		return blk, err
	}

	if got, want := len(p), HeaderSize+blk.Count+FooterSize; got != want {
		return Block{}, xerrors.Errorf(
			"wfm: %s inconsistent block length (declared=%d samples, got=%d bytes, want=%d bytes)",
			src, blk.Count, got, want,
		)
	}

	return blk, nil
}

func (dec *Decoder) read(p []byte) {
	if dec.err != nil {
		return
	}
	_, dec.err = io.ReadFull(dec.r, p)
}

func (dec *Decoder) readU8() uint8 {
	if dec.err != nil {
		return 0
	}
	_, dec.err = io.ReadFull(dec.r, dec.buf[:1])
	return dec.buf[0]
}
