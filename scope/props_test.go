// Copyright 2024 The go-lab Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package scope

import (
	"testing"
)

func TestParseNum(t *testing.T) {
	for _, tc := range []struct {
		reply string
		want  float64
		err   bool
	}{
		{reply: "1.25", want: 1.25},
		{reply: "200E-3\n", want: 0.2},
		{reply: "200E-3V", want: 0.2},
		{reply: "0.5 V", want: 0.5},
		{reply: "2.5K", want: 2.5},
		{reply: "C1:VDIV 200E-3V", want: 0.2},
		{reply: "TDIV 2.00E-08 S", want: 2e-8},
		{reply: "-5.0E-2", want: -0.05},
		{reply: "spam", err: true},
		{reply: "", err: true},
	} {
		t.Run(tc.reply, func(t *testing.T) {
			got, err := parseNum(tc.reply)
			switch {
			case tc.err:
				if err == nil {
					t.Fatalf("expected an error for reply %q", tc.reply)
				}
			default:
				if err != nil {
					t.Fatalf("could not parse reply %q: %+v", tc.reply, err)
				}
				if got != tc.want {
					t.Fatalf("invalid value: got=%v, want=%v", got, tc.want)
				}
			}
		})
	}
}
