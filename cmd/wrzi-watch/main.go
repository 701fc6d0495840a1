// Copyright 2024 The go-lab Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command wrzi-watch monitors a waveform output directory and raises
// alerts when acquisition files stop growing.
package main // import "github.com/go-lab/wrzi/cmd/wrzi-watch"

import (
	"bytes"
	"crypto/tls"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	mail "gopkg.in/gomail.v2"
)

func main() {
	var (
		dir  = flag.String("dir", ".", "directory to monitor")
		glob = flag.String("glob", "*.csv", "file pattern to monitor")
		freq = flag.Duration("freq", 30*time.Second, "probing interval")
		sms  = flag.Bool("sms", false, "also raise alerts over SMS")
	)

	flag.Parse()

	log.SetPrefix("wrzi-watch: ")
	log.SetFlags(0)

	w := &watcher{
		dir:    *dir,
		glob:   *glob,
		freq:   *freq,
		sms:    *sms,
		alerts: make(map[string]int),
	}
	log.Printf("monitoring %q every %v...", filepath.Join(*dir, *glob), *freq)
	w.monitor()
}

type watcher struct {
	dir    string
	glob   string
	freq   time.Duration
	sms    bool
	alerts map[string]int // number of alerts raised per file
}

func (w *watcher) monitor() {
	var (
		tick  = time.NewTicker(w.freq)
		table = make(map[string]int64)
	)

	defer tick.Stop()

	for range tick.C {
		cur, err := w.list()
		if err != nil {
			log.Printf("could not list files: %+v", err)
			continue
		}
		w.compare(table, cur)
		table = cur
	}
}

func (w *watcher) list() (map[string]int64, error) {
	table := make(map[string]int64)
	glob := filepath.Join(w.dir, w.glob)
	files, err := filepath.Glob(glob)
	if err != nil {
		return nil, fmt.Errorf("could not glob %q: %w", glob, err)
	}
	for _, fname := range files {
		fi, err := os.Stat(fname)
		if err != nil {
			return nil, fmt.Errorf("could not stat %q: %w", fname, err)
		}
		table[fname] = fi.Size()
	}
	return table, nil
}

func (w *watcher) compare(ref, chk map[string]int64) {
	for fname := range chk {
		if _, ok := ref[fname]; !ok {
			// file just appeared.
			// nothing to compare against.
			continue
		}
		refsz := ref[fname]
		chksz := chk[fname]
		if refsz == chksz {
			// file didn't grow!
			w.alert(fname, refsz)
		}
	}
}

func (w *watcher) alert(fname string, size int64) {
	log.Printf("file %q didn't change in the last %v (size=%d bytes)",
		fname, w.freq, size,
	)
	w.alerts[fname]++

	const maxAlerts = 5
	if w.alerts[fname] < maxAlerts {
		w.alertMail(fname, size)
		if w.sms {
			w.alertSMS(fname, size)
		}
	}
}

var (
	alertMailUsr  = os.Getenv("MAIL_USERNAME")
	alertMailPwd  = os.Getenv("MAIL_PASSWORD")
	alertMailSrv  = os.Getenv("MAIL_SERVER")
	alertMailPort = atoi(os.Getenv("MAIL_PORT"))
	alertMailTgts = strings.Split(os.Getenv("MAIL_TGTS"), ",")
)

func (w *watcher) alertMail(fname string, size int64) {
	if alertMailUsr == "" || alertMailPwd == "" ||
		alertMailSrv == "" || alertMailPort == 0 ||
		len(alertMailTgts) == 0 {
		log.Printf("could not send mail alert: missing credentials")
		return
	}

	msg := mail.NewMessage()
	msg.SetHeader("From", alertMailUsr)
	msg.SetHeader("Bcc", alertMailTgts...)
	msg.SetHeader("Subject", fmt.Sprintf("[wrzi-watch] file alert: %q", fname))
	msg.SetBody("text/plain", fmt.Sprintf("file: %q\nsize: %d bytes\nfreq: %v",
		fname, size, w.freq,
	))

	dial := mail.NewDialer(alertMailSrv, alertMailPort, alertMailUsr, alertMailPwd)
	dial.TLSConfig = &tls.Config{
		InsecureSkipVerify: true,
	}
	err := dial.DialAndSend(msg)
	if err != nil {
		log.Printf("could not send mail alert: %+v", err)
	}
}

var (
	alertSMSEndPoint = os.Getenv("SMS_ENDPOINT")
)

func (w *watcher) alertSMS(fname string, size int64) {
	if alertSMSEndPoint == "" {
		log.Printf("could not send sms alert: no end-point")
		return
	}

	var msg struct {
		Action string `json:"action"`
		Data   struct {
			All bool   `json:"all"`
			Msg string `json:"message"`
		}
	}
	msg.Action = "send"
	msg.Data.All = true
	msg.Data.Msg = fmt.Sprintf("[wrzi-watch]: alert file=%q size=%d freq=%v",
		fname, size, w.freq,
	)

	data := new(bytes.Buffer)
	err := json.NewEncoder(data).Encode(msg)
	if err != nil {
		log.Printf("could not encode sms to json: %+v", err)
		return
	}
	resp, err := http.Post(alertSMSEndPoint, "application/json", data)
	if err != nil {
		log.Printf("could not POST sms alert: %+v", err)
		return
	}
	defer resp.Body.Close()

	var status struct {
		Msg string `json:"status"`
	}
	err = json.NewDecoder(resp.Body).Decode(&status)
	if err != nil {
		log.Printf("could not decode sms reply: %+v", err)
		return
	}
	if status.Msg != "success" {
		log.Printf("could not send sms: status=%q", status.Msg)
		return
	}
}

func atoi(s string) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return v
}
