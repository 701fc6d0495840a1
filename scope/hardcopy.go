// Copyright 2024 The go-lab Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package scope

import (
	"fmt"
	"strings"
)

// HardcopyConfig selects the format and destination of instrument
// screen dumps. Zero-valued fields keep the current instrument
// setting.
type HardcopyConfig struct {
	Device      string // image format (BMP, JPEG, PNG, TIFF)
	Format      string // page format (PORTRAIT, LANDSCAPE)
	Background  string // BLACK, WHITE or BW
	Destination string // PRINTER, CLIPBOARD, EMAIL, FILE or REMOTE
	Area        string // GRIDAREAONLY, DSOWINDOW or FULLSCREEN
	Directory   string // file destination directory
	FileName    string // file destination name
	PrinterName string
	PortName    string // GPIB, NET
}

// HardcopySetup configures the hardcopy subsystem.
func (sc *Scope) HardcopySetup(cfg HardcopyConfig) error {
	var args []string
	for _, kv := range []struct{ key, val string }{
		{"DEV", cfg.Device},
		{"FORMAT", cfg.Format},
		{"BCKG", cfg.Background},
		{"DEST", cfg.Destination},
		{"AREA", cfg.Area},
		{"DIR", cfg.Directory},
		{"FILE", cfg.FileName},
		{"PRINTER", cfg.PrinterName},
		{"PORT", cfg.PortName},
	} {
		if kv.val == "" {
			continue
		}
		args = append(args, kv.key+","+kv.val)
	}
	if len(args) == 0 {
		return fmt.Errorf("scope: empty hardcopy setup")
	}

	err := sc.t.Write("HCSU " + strings.Join(args, ","))
	if err != nil {
		return fmt.Errorf("scope: could not configure hardcopy: %w", err)
	}
	return nil
}

// DownloadImage configures a full-screen BMP remote hardcopy and
// returns the raw screen dump.
func (sc *Scope) DownloadImage() ([]byte, error) {
	err := sc.HardcopySetup(HardcopyConfig{
		Device:      "BMP",
		Format:      "LANDSCAPE",
		Background:  "BW",
		Destination: "REMOTE",
		Area:        "FULLSCREEN",
		PortName:    "NET",
	})
	if err != nil {
		return nil, err
	}

	img, err := sc.t.QueryBinary("SCDP", -1)
	if err != nil {
		return nil, fmt.Errorf("scope: could not download screen dump: %w", err)
	}
	return img, nil
}
