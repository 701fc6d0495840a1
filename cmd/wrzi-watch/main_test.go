// Copyright 2024 The go-lab Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestAlertSMS(t *testing.T) {
	for _, tc := range []struct {
		name string
		sms  bool
		want int
	}{
		{
			name: "sms-on",
			sms:  true,
			want: 1,
		},
		{
			name: "sms-off",
			sms:  false,
			want: 0,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			var (
				nreq int
				body struct {
					Action string `json:"action"`
					Data   struct {
						All bool   `json:"all"`
						Msg string `json:"message"`
					}
				}
			)
			srv := httptest.NewServer(http.HandlerFunc(
				func(w http.ResponseWriter, r *http.Request) {
					nreq++
					err := json.NewDecoder(r.Body).Decode(&body)
					if err != nil {
						t.Errorf("could not decode sms request: %+v", err)
					}
					fmt.Fprintf(w, `{"status": "success"}`)
				},
			))
			defer srv.Close()

			endpoint := alertSMSEndPoint
			alertSMSEndPoint = srv.URL
			defer func() { alertSMSEndPoint = endpoint }()

			w := &watcher{
				freq:   30 * time.Second,
				sms:    tc.sms,
				alerts: make(map[string]int),
			}
			w.alert("run42-c1.csv", 1024)

			if got, want := nreq, tc.want; got != want {
				t.Fatalf("invalid number of sms requests: got=%d, want=%d", got, want)
			}
			if !tc.sms {
				return
			}

			if got, want := body.Action, "send"; got != want {
				t.Fatalf("invalid sms action: got=%q, want=%q", got, want)
			}
			if !body.Data.All {
				t.Fatalf("invalid sms broadcast flag: got=%v, want=%v", body.Data.All, true)
			}
			want := `[wrzi-watch]: alert file="run42-c1.csv" size=1024 freq=30s`
			if got := body.Data.Msg; got != want {
				t.Fatalf("invalid sms message:\ngot: %q\nwant:%q\n", got, want)
			}
		})
	}
}
