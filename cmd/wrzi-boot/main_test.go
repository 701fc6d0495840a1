// Copyright 2024 The go-lab Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"os"
	"os/exec"
	"path/filepath"
	"reflect"
	"strconv"
	"testing"
	"time"
)

func TestCommands(t *testing.T) {
	for _, tc := range []struct {
		name string
		args []string
		want [][]string
	}{
		{
			name: "default",
			want: [][]string{{"wrzi-srv"}, {"wrzi-watch"}},
		},
		{
			name: "custom",
			args: []string{
				"wrzi-srv -scope=192.168.1.42:1861",
				"wrzi-watch -dir=/data -freq=1m",
			},
			want: [][]string{
				{"wrzi-srv", "-scope=192.168.1.42:1861"},
				{"wrzi-watch", "-dir=/data", "-freq=1m"},
			},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			cmds := commands(tc.args)
			if got, want := len(cmds), len(tc.want); got != want {
				t.Fatalf("invalid number of commands: got=%d, want=%d", got, want)
			}
			for i, cmd := range cmds {
				if got, want := cmd.Args, tc.want[i]; !reflect.DeepEqual(got, want) {
					t.Fatalf("invalid command %d: got=%v, want=%v", i, got, want)
				}
			}
		})
	}
}

func TestRun(t *testing.T) {
	sleep, err := exec.LookPath("sleep")
	if err != nil {
		t.Skipf("could not find sleep command: %+v", err)
	}
	raw, err := os.ReadFile(sleep)
	if err != nil {
		t.Fatalf("could not read sleep command: %+v", err)
	}

	dir, err := os.MkdirTemp("", "wrzi-boot-")
	if err != nil {
		t.Fatalf("could not create tmpdir: %+v", err)
	}
	defer os.RemoveAll(dir)

	cmds := make([]string, 3)
	for i := range cmds {
		name := filepath.Join(dir, "wrzi-sleeper-"+strconv.Itoa(i))
		err = os.WriteFile(name, raw, 0755)
		if err != nil {
			t.Fatalf("could not create test program: %+v", err)
		}
		cmds[i] = name
	}

	for _, tc := range []struct {
		name string
		cmds []*exec.Cmd
		mon  bool
		stop bool
	}{
		{
			name: "simple",
			cmds: []*exec.Cmd{
				exec.Command(cmds[0], "1"),
				exec.Command(cmds[1], "1"),
				exec.Command(cmds[2], "1"),
			},
		},
		{
			name: "simple-pmon",
			cmds: []*exec.Cmd{
				exec.Command(cmds[0], "1"),
				exec.Command(cmds[1], "1"),
				exec.Command(cmds[2], "1"),
			},
			mon: true,
		},
		{
			name: "simple-stop",
			cmds: []*exec.Cmd{
				exec.Command(cmds[0], "30"),
				exec.Command(cmds[1], "30"),
				exec.Command(cmds[2], "30"),
			},
			stop: true,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			dir, err := os.MkdirTemp("", "wrzi-boot-")
			if err != nil {
				t.Fatalf("could not create tmpdir: %+v", err)
			}
			defer os.RemoveAll(dir)

			stop := make(chan os.Signal, 1)
			if tc.stop {
				go func() {
					time.Sleep(2 * time.Second)
					stop <- os.Interrupt
				}()
			}
			err = run(tc.mon, 500*time.Millisecond, tc.cmds, dir, stop)
			if err != nil {
				t.Fatalf("could not run processes: %+v", err)
			}
		})
	}
}
