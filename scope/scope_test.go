// Copyright 2024 The go-lab Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package scope

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/go-lab/wrzi/wfm"
)

// fakeTransport replays scripted instrument replies and records every
// command it receives.
type fakeTransport struct {
	t *testing.T

	cmds []string            // commands received, in order
	rsp  map[string]string   // scripted query replies
	bin  map[string][][]byte // scripted binary replies, consumed in order
	errs map[string]error    // commands failing with a transport fault

	closed bool
}

func newFakeTransport(t *testing.T) *fakeTransport {
	return &fakeTransport{
		t:    t,
		rsp:  make(map[string]string),
		bin:  make(map[string][][]byte),
		errs: make(map[string]error),
	}
}

func (ft *fakeTransport) Write(cmd string) error {
	if err, ok := ft.errs[cmd]; ok {
		return err
	}
	ft.cmds = append(ft.cmds, cmd)
	return nil
}

func (ft *fakeTransport) Query(cmd string) (string, error) {
	if err, ok := ft.errs[cmd]; ok {
		return "", err
	}
	ft.cmds = append(ft.cmds, cmd)
	v, ok := ft.rsp[cmd]
	if !ok {
		ft.t.Fatalf("unexpected query %q", cmd)
	}
	return v, nil
}

func (ft *fakeTransport) QueryBinary(cmd string, n int) ([]byte, error) {
	if err, ok := ft.errs[cmd]; ok {
		return nil, err
	}
	ft.cmds = append(ft.cmds, cmd)
	q := ft.bin[cmd]
	if len(q) == 0 {
		ft.t.Fatalf("unexpected binary query %q", cmd)
	}
	out := q[0]
	ft.bin[cmd] = q[1:]
	if n >= 0 && len(out) != n {
		ft.t.Fatalf("binary query %q: scripted %d bytes, driver wants %d",
			cmd, len(out), n,
		)
	}
	return out, nil
}

func (ft *fakeTransport) Close() error {
	ft.closed = true
	return nil
}

// scriptPreamble installs the calibration replies captured after a
// transfer of src.
func (ft *fakeTransport) scriptPreamble(src wfm.Source) {
	ft.rsp[fmt.Sprintf("%s:VDIV?", src)] = "5.0E-01"
	ft.rsp[fmt.Sprintf("%s:OFST?", src)] = "1.0E-01"
	ft.rsp["TDIV?"] = "1.0E-03"
	ft.rsp["TRDL?"] = "0.0E+00"
	ft.rsp["VBS? 'return=app.Acquisition.Horizontal.SamplingRate'"] = "1.0E+09"
	ft.rsp["MSIZ?"] = "10K"
}

func block(t *testing.T, n int) []byte {
	t.Helper()
	blk := wfm.Block{Count: n, Data: make([]byte, n)}
	for i := range blk.Data {
		blk.Data[i] = byte(i)
	}
	buf := new(bytes.Buffer)
	err := wfm.NewEncoder(buf).Encode(&blk)
	if err != nil {
		t.Fatalf("could not encode block: %+v", err)
	}
	return buf.Bytes()
}

func TestAcquireWaveformChunked(t *testing.T) {
	ft := newFakeTransport(t)
	ft.rsp["VBS? 'return=app.Acquisition.C1.Out.Result.Samples'"] = "10000"
	ft.bin["C1:WF? DAT2"] = [][]byte{
		block(t, 4000),
		block(t, 4000),
		block(t, 2000),
	}
	ft.scriptPreamble(wfm.C1)

	sc, err := New(ft, WithMaxTransfer(4000+wfm.HeaderSize+wfm.FooterSize))
	if err != nil {
		t.Fatalf("could not create scope: %+v", err)
	}

	wf, err := sc.AcquireWaveform(wfm.C1, 0, 1)
	if err != nil {
		t.Fatalf("could not acquire waveform: %+v", err)
	}

	if got, want := len(wf.Raw), 10000; got != want {
		t.Fatalf("invalid sample count: got=%d, want=%d", got, want)
	}

	var wfsu []string
	for _, cmd := range ft.cmds {
		if strings.HasPrefix(cmd, "WFSU ") {
			wfsu = append(wfsu, cmd)
		}
	}
	want := []string{
		"WFSU SP,1,NP,4000,FP,0",
		"WFSU SP,1,NP,4000,FP,4000",
		"WFSU SP,1,NP,2000,FP,8000",
	}
	if got := wfsu; !equal(got, want) {
		t.Fatalf("invalid transfer setup:\ngot= %v\nwant=%v\n", got, want)
	}

	pre := wf.Pre
	for _, tc := range []struct {
		name      string
		got, want interface{}
	}{
		{"source", pre.Source, wfm.C1},
		{"vert-scale", pre.VertScale, 0.5},
		{"vert-offset", pre.VertOffset, 0.1},
		{"horiz-scale", pre.HorizScale, 1e-3},
		{"rate", pre.Rate, 1e9},
		{"sparsing", pre.Sparsing, 1},
		{"requested", pre.Requested, 0},
		{"sampled", pre.Sampled, 10000},
		{"sent", pre.Sent, 10000},
		{"mem-depth", pre.MemDepth, "10K"},
	} {
		if tc.got != tc.want {
			t.Errorf("invalid %s: got=%v, want=%v", tc.name, tc.got, tc.want)
		}
	}

	// calibration capture must follow the last transfer.
	last := strings.Join(ft.cmds, "\n")
	if strings.Index(last, "C1:VDIV?") < strings.Index(last, "WFSU SP,1,NP,2000,FP,8000") {
		t.Fatalf("preamble captured before the last block transfer:\n%s", last)
	}
}

func TestAcquireWaveformSparsing(t *testing.T) {
	ft := newFakeTransport(t)
	ft.rsp["VBS? 'return=app.Acquisition.C2.Out.Result.Samples'"] = "10000"
	ft.bin["C2:WF? DAT2"] = [][]byte{
		block(t, 2000),
		block(t, 500),
	}
	ft.scriptPreamble(wfm.C2)

	sc, err := New(ft, WithMaxTransfer(2000+wfm.HeaderSize+wfm.FooterSize))
	if err != nil {
		t.Fatalf("could not create scope: %+v", err)
	}

	wf, err := sc.AcquireWaveform(wfm.C2, 0, 4)
	if err != nil {
		t.Fatalf("could not acquire waveform: %+v", err)
	}

	// 10000 available samples, keep every 4th: 2500 transmitted.
	if got, want := len(wf.Raw), 2500; got != want {
		t.Fatalf("invalid sample count: got=%d, want=%d", got, want)
	}

	var wfsu []string
	for _, cmd := range ft.cmds {
		if strings.HasPrefix(cmd, "WFSU ") {
			wfsu = append(wfsu, cmd)
		}
	}
	want := []string{
		"WFSU SP,4,NP,2000,FP,0",
		"WFSU SP,4,NP,500,FP,8000",
	}
	if got := wfsu; !equal(got, want) {
		t.Fatalf("invalid transfer setup:\ngot= %v\nwant=%v\n", got, want)
	}
}

func TestAcquireWaveformPoints(t *testing.T) {
	ft := newFakeTransport(t)
	ft.rsp["VBS? 'return=app.Acquisition.C1.Out.Result.Samples'"] = "10000"
	ft.bin["C1:WF? DAT2"] = [][]byte{block(t, 2000)}
	ft.scriptPreamble(wfm.C1)

	sc, err := New(ft)
	if err != nil {
		t.Fatalf("could not create scope: %+v", err)
	}

	wf, err := sc.AcquireWaveform(wfm.C1, 2000, 1)
	if err != nil {
		t.Fatalf("could not acquire waveform: %+v", err)
	}
	if got, want := len(wf.Raw), 2000; got != want {
		t.Fatalf("invalid sample count: got=%d, want=%d", got, want)
	}
	if got, want := wf.Pre.Requested, 2000; got != want {
		t.Fatalf("invalid requested count: got=%d, want=%d", got, want)
	}
}

func TestAcquireWaveformMathCount(t *testing.T) {
	ft := newFakeTransport(t)
	ft.rsp["F1:DEF?"] = "EQN,'C1*C2'"
	ft.rsp["VBS? 'return=app.Acquisition.C1.Out.Result.Samples'"] = "5000"
	ft.rsp["VBS? 'return=app.Acquisition.C2.Out.Result.Samples'"] = "8000"
	ft.bin["F1:WF? DAT2"] = [][]byte{block(t, 5000)}
	ft.scriptPreamble(wfm.F1)

	sc, err := New(ft)
	if err != nil {
		t.Fatalf("could not create scope: %+v", err)
	}

	wf, err := sc.AcquireWaveform(wfm.F1, 0, 1)
	if err != nil {
		t.Fatalf("could not acquire waveform: %+v", err)
	}

	// the math trace holds min(5000, 8000) samples.
	if got, want := len(wf.Raw), 5000; got != want {
		t.Fatalf("invalid sample count: got=%d, want=%d", got, want)
	}
	if got, want := wf.Pre.Sampled, 5000; got != want {
		t.Fatalf("invalid sampled count: got=%d, want=%d", got, want)
	}
}

func TestAcquireWaveformMalformed(t *testing.T) {
	for _, tc := range []struct {
		name string
		raw  []byte
		want string
	}{
		{
			name: "bad-terminator",
			raw: func() []byte {
				raw := block(t, 100)
				raw[len(raw)-1] = 0
				return raw
			}(),
			want: "wfm: C1 invalid block terminator (got=0x0, want=0xa)",
		},
		{
			name: "bad-prefix",
			raw: func() []byte {
				raw := block(t, 100)
				copy(raw, "DAT1")
				return raw
			}(),
			want: `wfm: C1 invalid block header prefix (got="DAT1,#9", want="DAT2,#9")`,
		},
		{
			// a short declared count leaves the real terminator
			// beyond the parsed frame.
			name: "bad-count",
			raw: func() []byte {
				raw := block(t, 100)
				copy(raw[len(wfm.HeaderPrefix):], "000000099")
				return raw
			}(),
			want: "wfm: C1 invalid block terminator (got=0x63, want=0xa)",
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			ft := newFakeTransport(t)
			ft.rsp["VBS? 'return=app.Acquisition.C1.Out.Result.Samples'"] = "100"
			ft.bin["C1:WF? DAT2"] = [][]byte{tc.raw}

			sc, err := New(ft)
			if err != nil {
				t.Fatalf("could not create scope: %+v", err)
			}

			_, err = sc.AcquireWaveform(wfm.C1, 0, 1)
			if err == nil {
				t.Fatalf("expected an error")
			}
			if got, want := err.Error(), tc.want; got != want {
				t.Fatalf("invalid error:\ngot: %v\nwant:%v\n", got, want)
			}
		})
	}
}

func TestAcquireWaveformInvalidArgs(t *testing.T) {
	for _, tc := range []struct {
		name     string
		src      wfm.Source
		points   int
		sparsing int
		want     string
	}{
		{
			name:     "bad-source",
			src:      wfm.Source("C9"),
			sparsing: 1,
			want:     `scope: could not acquire waveform: wfm: invalid waveform source "C9"`,
		},
		{
			name:     "bad-points",
			src:      wfm.C1,
			points:   -1,
			sparsing: 1,
			want:     "scope: invalid sample count -1",
		},
		{
			name: "bad-sparsing",
			src:  wfm.C1,
			want: "scope: invalid sparsing factor 0",
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			ft := newFakeTransport(t)
			sc, err := New(ft)
			if err != nil {
				t.Fatalf("could not create scope: %+v", err)
			}
			n := len(ft.cmds)

			_, err = sc.AcquireWaveform(tc.src, tc.points, tc.sparsing)
			if err == nil {
				t.Fatalf("expected an error")
			}
			if got, want := err.Error(), tc.want; got != want {
				t.Fatalf("invalid error:\ngot: %v\nwant:%v\n", got, want)
			}
			// invalid arguments must not reach the instrument.
			if got := len(ft.cmds); got != n {
				t.Fatalf("unexpected instrument traffic: %v", ft.cmds[n:])
			}
		})
	}
}

func TestChannelProps(t *testing.T) {
	ft := newFakeTransport(t)
	ft.rsp["VBS? 'return=app.Acquisition.C1.Coupling'"] = "DC1M"
	ft.rsp["VBS? 'return=app.Acquisition.C1.BandwidthLimit'"] = "Full"
	ft.rsp["C1:VDIV?"] = "5.0E-01"
	ft.rsp["C1:TRA?"] = "ON"
	ft.rsp["VBS? 'return=app.Acquisition.C1.Invert'"] = "0"

	sc, err := New(ft)
	if err != nil {
		t.Fatalf("could not create scope: %+v", err)
	}
	ch, err := sc.Channel(1)
	if err != nil {
		t.Fatalf("could not get channel: %+v", err)
	}

	if v, err := ch.Coupling(); err != nil || v != "dc" {
		t.Fatalf("invalid coupling: got=(%q, %v), want=(%q, nil)", v, err, "dc")
	}
	if v, err := ch.BandwidthLimit(); err != nil || v != "1GHz" {
		t.Fatalf("invalid bandwidth limit: got=(%q, %v), want=(%q, nil)", v, err, "1GHz")
	}
	if v, err := ch.Scale(); err != nil || v != 0.5 {
		t.Fatalf("invalid scale: got=(%v, %v), want=(0.5, nil)", v, err)
	}
	if v, err := ch.Display(); err != nil || !v {
		t.Fatalf("invalid display: got=(%v, %v), want=(true, nil)", v, err)
	}
	if v, err := ch.Invert(); err != nil || v {
		t.Fatalf("invalid invert: got=(%v, %v), want=(false, nil)", v, err)
	}

	err = ch.SetCoupling("dc50")
	if err != nil {
		t.Fatalf("could not set coupling: %+v", err)
	}
	err = ch.SetScale(0.2)
	if err != nil {
		t.Fatalf("could not set scale: %+v", err)
	}
	n := len(ft.cmds)
	err = ch.SetCoupling("xyz")
	if err == nil {
		t.Fatalf("expected an error")
	}
	if got, want := err.Error(), `scope: could not set C1 coupling: invalid value "xyz"`; got != want {
		t.Fatalf("invalid error:\ngot: %v\nwant:%v\n", got, want)
	}
	if got := len(ft.cmds); got != n {
		t.Fatalf("unexpected instrument traffic: %v", ft.cmds[n:])
	}

	want := []string{
		"CHDR OFF",
		"VBS? 'return=app.Acquisition.C1.Coupling'",
		"VBS? 'return=app.Acquisition.C1.BandwidthLimit'",
		"C1:VDIV?",
		"C1:TRA?",
		"VBS? 'return=app.Acquisition.C1.Invert'",
		`VBS 'app.Acquisition.C1.Coupling="DC50"'`,
		"C1:VDIV 0.2",
	}
	if got := ft.cmds; !equal(got, want) {
		t.Fatalf("invalid command trace:\ngot= %v\nwant=%v\n", got, want)
	}
}

func TestMathDefine(t *testing.T) {
	ft := newFakeTransport(t)
	ft.rsp["F2:DEF?"] = "F2:DEF EQN,'C3-C4'"

	sc, err := New(ft)
	if err != nil {
		t.Fatalf("could not create scope: %+v", err)
	}
	fn, err := sc.Fn(2)
	if err != nil {
		t.Fatalf("could not get math function: %+v", err)
	}

	src1, op, src2, err := fn.Define()
	if err != nil {
		t.Fatalf("could not query definition: %+v", err)
	}
	if src1 != "C3" || op != "-" || src2 != "C4" {
		t.Fatalf("invalid definition: got=(%q, %q, %q)", src1, op, src2)
	}

	err = fn.SetDefine("C1", "*", "C2")
	if err != nil {
		t.Fatalf("could not define: %+v", err)
	}
	if got, want := ft.cmds[len(ft.cmds)-1], "F2:DEF EQN,'C1*C2'"; got != want {
		t.Fatalf("invalid command: got=%q, want=%q", got, want)
	}

	n := len(ft.cmds)
	err = fn.SetDefine("C1", "%", "C2")
	if err == nil {
		t.Fatalf("expected an error")
	}
	if got := len(ft.cmds); got != n {
		t.Fatalf("unexpected instrument traffic: %v", ft.cmds[n:])
	}
}

func TestTriggerSelect(t *testing.T) {
	for _, tc := range []struct {
		name string
		typ  string
		src  string
		hold string
		vals []float64
		cmd  string
		err  error
	}{
		{
			name: "edge",
			typ:  "edge",
			src:  "c1",
			hold: "off",
			cmd:  "TRSE EDGE,SR,C1,HT,OFF",
		},
		{
			name: "glitch",
			typ:  "GLIT",
			src:  "C2",
			hold: "PS",
			vals: []float64{1e-9},
			cmd:  "TRSE GLIT,SR,C2,HT,PS,HV,1e-09",
		},
		{
			name: "interval",
			typ:  "INTV",
			src:  "EX",
			hold: "IS",
			vals: []float64{1e-9, 2e-6},
			cmd:  "TRSE INTV,SR,EX,HT,IS,HV,1e-09,HV2,2e-06",
		},
		{
			name: "bad-type",
			typ:  "XXX",
			src:  "C1",
			hold: "OFF",
			err:  fmt.Errorf(`scope: could not set trigger select: invalid trigger type "XXX"`),
		},
		{
			name: "bad-source",
			typ:  "EDGE",
			src:  "C9",
			hold: "OFF",
			err:  fmt.Errorf(`scope: could not set trigger select: invalid trigger source "C9"`),
		},
		{
			name: "bad-hold",
			typ:  "EDGE",
			src:  "C1",
			hold: "XX",
			err:  fmt.Errorf(`scope: could not set trigger select: invalid hold type "XX"`),
		},
		{
			name: "too-many-values",
			typ:  "EDGE",
			src:  "C1",
			hold: "TI",
			vals: []float64{1, 2, 3},
			err:  fmt.Errorf("scope: could not set trigger select: too many hold values (got=3, want<=2)"),
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			ft := newFakeTransport(t)
			sc, err := New(ft)
			if err != nil {
				t.Fatalf("could not create scope: %+v", err)
			}
			n := len(ft.cmds)

			err = sc.SetTriggerSelect(tc.typ, tc.src, tc.hold, tc.vals...)
			switch {
			case err != nil && tc.err != nil:
				if got, want := err.Error(), tc.err.Error(); got != want {
					t.Fatalf("invalid error:\ngot: %v\nwant:%v\n", got, want)
				}
				if got := len(ft.cmds); got != n {
					t.Fatalf("unexpected instrument traffic: %v", ft.cmds[n:])
				}
			case err != nil && tc.err == nil:
				t.Fatalf("could not set trigger select: %+v", err)
			case err == nil && tc.err != nil:
				t.Fatalf("expected an error (%v)", tc.err)
			default:
				if got, want := ft.cmds[len(ft.cmds)-1], tc.cmd; got != want {
					t.Fatalf("invalid command: got=%q, want=%q", got, want)
				}
			}
		})
	}
}

func TestCheckSetErrors(t *testing.T) {
	for _, tc := range []struct {
		name string
		esr  string
		rsp  map[string]string
		want string
	}{
		{
			name: "ok",
			esr:  "0",
		},
		{
			name: "execution-error",
			esr:  "16",
			rsp:  map[string]string{"EXR?": "25"},
			want: "scope: execution error: parameter error",
		},
		{
			name: "device-error",
			esr:  "8",
			rsp:  map[string]string{"DDR?": "3"},
			want: "scope: device error: channel 1 overload|channel 2 overload",
		},
		{
			name: "command-error",
			esr:  "32",
			rsp:  map[string]string{"CMR?": "1"},
			want: "scope: command error: unrecognized command/query header",
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			ft := newFakeTransport(t)
			ft.rsp["*ESR?"] = tc.esr
			for k, v := range tc.rsp {
				ft.rsp[k] = v
			}

			sc, err := New(ft)
			if err != nil {
				t.Fatalf("could not create scope: %+v", err)
			}

			err = sc.CheckSetErrors()
			switch {
			case err != nil && tc.want != "":
				if got, want := err.Error(), tc.want; got != want {
					t.Fatalf("invalid error:\ngot: %v\nwant:%v\n", got, want)
				}
			case err != nil && tc.want == "":
				t.Fatalf("unexpected error: %+v", err)
			case err == nil && tc.want != "":
				t.Fatalf("expected an error: %v", tc.want)
			}
		})
	}
}

func TestMeasureParameter(t *testing.T) {
	for _, tc := range []struct {
		name string
		slot int
		rsp  string
		val  float64
		want string
	}{
		{
			name: "ok",
			slot: 2,
			rsp:  "CUST2,3.14E-01V,OK",
			val:  0.314,
		},
		{
			name: "with-header",
			slot: 1,
			rsp:  "C1:PAVA CUST1,2.5E+00V",
			val:  2.5,
		},
		{
			name: "invalid-state",
			slot: 3,
			rsp:  "CUST3,0.0E+00V,IV",
			want: "scope: measurement state for slot 3 is invalid",
		},
		{
			name: "wrong-slot",
			slot: 4,
			rsp:  "CUST1,1.0E+00V,OK",
			want: "scope: measurement reply for slot 1, want 4",
		},
		{
			name: "garbage",
			slot: 5,
			rsp:  "no clue",
			want: `scope: could not parse measurement reply "no clue"`,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			ft := newFakeTransport(t)
			ft.rsp[fmt.Sprintf("PAVA? CUST%d", tc.slot)] = tc.rsp

			sc, err := New(ft)
			if err != nil {
				t.Fatalf("could not create scope: %+v", err)
			}
			ch, err := sc.Channel(1)
			if err != nil {
				t.Fatalf("could not get channel: %+v", err)
			}

			v, err := ch.MeasureParameter(tc.slot)
			switch {
			case err != nil && tc.want != "":
				if got, want := err.Error(), tc.want; got != want {
					t.Fatalf("invalid error:\ngot: %v\nwant:%v\n", got, want)
				}
			case err != nil && tc.want == "":
				t.Fatalf("could not measure: %+v", err)
			case err == nil && tc.want != "":
				t.Fatalf("expected an error: %v", tc.want)
			case err == nil && tc.want == "":
				if v != tc.val {
					t.Fatalf("invalid value: got=%v, want=%v", v, tc.val)
				}
			}
		})
	}
}

func TestMemoryDepth(t *testing.T) {
	ft := newFakeTransport(t)
	ft.rsp["MSIZ?"] = "10K"

	sc, err := New(ft)
	if err != nil {
		t.Fatalf("could not create scope: %+v", err)
	}

	v, err := sc.MemoryDepth()
	if err != nil {
		t.Fatalf("could not query memory depth: %+v", err)
	}
	if got, want := v, 1e4; got != want {
		t.Fatalf("invalid memory depth: got=%v, want=%v", got, want)
	}

	// replies may carry the instrument's line padding.
	ft.rsp["MSIZ?"] = " 2.5M\n"
	v, err = sc.MemoryDepth()
	if err != nil {
		t.Fatalf("could not query memory depth: %+v", err)
	}
	if got, want := v, 25e5; got != want {
		t.Fatalf("invalid memory depth: got=%v, want=%v", got, want)
	}

	err = sc.SetMemoryDepth(3000)
	if err != nil {
		t.Fatalf("could not set memory depth: %+v", err)
	}
	if got, want := ft.cmds[len(ft.cmds)-1], "MSIZ 2.5K"; got != want {
		t.Fatalf("invalid command: got=%q, want=%q", got, want)
	}

	err = sc.SetMemoryDepth(100)
	if err == nil {
		t.Fatalf("expected an error")
	}
}

func TestScopeChannelBounds(t *testing.T) {
	ft := newFakeTransport(t)
	sc, err := New(ft)
	if err != nil {
		t.Fatalf("could not create scope: %+v", err)
	}

	for _, id := range []int{0, 5} {
		if _, err := sc.Channel(id); err == nil {
			t.Errorf("expected an error for channel %d", id)
		}
	}
	for _, id := range []int{0, 9} {
		if _, err := sc.Fn(id); err == nil {
			t.Errorf("expected an error for math function %d", id)
		}
	}
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
