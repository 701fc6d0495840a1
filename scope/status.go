// Copyright 2024 The go-lab Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package scope

import (
	"fmt"
	"strings"
)

// EXR is the content of the instrument execution error register.
type EXR int

const (
	ExrPermissionError         EXR = 21
	ExrEnvironmentError        EXR = 22
	ExrOptionError             EXR = 23
	ExrUnresolvedParsingError  EXR = 24
	ExrParameterError          EXR = 25
	ExrNonImplementedCommand   EXR = 26
	ExrParameterMissing        EXR = 27
	ExrHexDataError            EXR = 30
	ExrWaveformError           EXR = 31
	ExrWaveformDescriptorError EXR = 32
	ExrWaveformTextError       EXR = 33
	ExrWaveformTimeError       EXR = 34
	ExrWaveformDataError       EXR = 35
	ExrPanelSetupError         EXR = 36
	ExrNoMassStorage           EXR = 50
	ExrMassStorageNotFormatted EXR = 51
	ExrMassStorageProtected    EXR = 53
	ExrBadMassStorage          EXR = 54
	ExrMassStorageRootDirFull  EXR = 55
	ExrMassStorageFull         EXR = 56
	ExrMassStorageSeqExhausted EXR = 57
	ExrMassStorageFileNotFound EXR = 58
	ExrDirectoryNotFound       EXR = 59
	ExrIllegalFileName         EXR = 61
	ExrFileNameAlreadyExists   EXR = 62
)

var exrNames = map[EXR]string{
	0:                          "no error",
	ExrPermissionError:         "permission error",
	ExrEnvironmentError:        "environment error",
	ExrOptionError:             "option error",
	ExrUnresolvedParsingError:  "unresolved parsing error",
	ExrParameterError:          "parameter error",
	ExrNonImplementedCommand:   "non-implemented command",
	ExrParameterMissing:        "parameter missing",
	ExrHexDataError:            "hex data error",
	ExrWaveformError:           "waveform error",
	ExrWaveformDescriptorError: "waveform descriptor error",
	ExrWaveformTextError:       "waveform text error",
	ExrWaveformTimeError:       "waveform time error",
	ExrWaveformDataError:       "waveform data error",
	ExrPanelSetupError:         "panel setup error",
	ExrNoMassStorage:           "no mass storage present",
	ExrMassStorageNotFormatted: "mass storage not formatted",
	ExrMassStorageProtected:    "mass storage write protected",
	ExrBadMassStorage:          "bad mass storage detected during formatting",
	ExrMassStorageRootDirFull:  "mass storage root directory full",
	ExrMassStorageFull:         "mass storage full",
	ExrMassStorageSeqExhausted: "mass storage file sequence numbers exhausted",
	ExrMassStorageFileNotFound: "mass storage file not found",
	ExrDirectoryNotFound:       "requested directory not found",
	ExrIllegalFileName:         "illegal mass storage file name",
	ExrFileNameAlreadyExists:   "mass storage file name already exists",
}

func (exr EXR) String() string {
	v, ok := exrNames[exr]
	if !ok {
		return fmt.Sprintf("EXR(%d)", int(exr))
	}
	return v
}

// DDR is the content of the instrument device specific error register,
// a set of hardware failure and overload flags.
type DDR uint16

const (
	DdrChan1Overload DDR = 1 << 0
	DdrChan2Overload DDR = 1 << 1
	DdrChan3Overload DDR = 1 << 2
	DdrChan4Overload DDR = 1 << 3
	DdrExtOverload   DDR = 1 << 7
	DdrChan1Failure  DDR = 1 << 8
	DdrChan2Failure  DDR = 1 << 9
	DdrChan3Failure  DDR = 1 << 10
	DdrChan4Failure  DDR = 1 << 11
	DdrTrigFailure   DDR = 1 << 12
	DdrTimeFailure   DDR = 1 << 13
)

var ddrNames = []struct {
	flag DDR
	name string
}{
	{DdrChan1Overload, "channel 1 overload"},
	{DdrChan2Overload, "channel 2 overload"},
	{DdrChan3Overload, "channel 3 overload"},
	{DdrChan4Overload, "channel 4 overload"},
	{DdrExtOverload, "external input overload"},
	{DdrChan1Failure, "channel 1 hardware failure"},
	{DdrChan2Failure, "channel 2 hardware failure"},
	{DdrChan3Failure, "channel 3 hardware failure"},
	{DdrChan4Failure, "channel 4 hardware failure"},
	{DdrTrigFailure, "trigger hardware failure"},
	{DdrTimeFailure, "timebase hardware failure"},
}

func (ddr DDR) String() string {
	if ddr == 0 {
		return "no error"
	}
	var o []string
	for _, v := range ddrNames {
		if ddr&v.flag != 0 {
			o = append(o, v.name)
		}
	}
	if len(o) == 0 {
		return fmt.Sprintf("DDR(0x%x)", uint16(ddr))
	}
	return strings.Join(o, "|")
}

// CMR is the content of the instrument command error register.
type CMR int

const (
	CmrOK              CMR = 0
	CmrBadHeader       CMR = 1
	CmrBadHeaderPath   CMR = 2
	CmrBadNumber       CMR = 3
	CmrBadNumberSuffix CMR = 4
	CmrBadKeyword      CMR = 5
	CmrStringError     CMR = 6
	CmrEmbeddedGET     CMR = 7
	CmrBlockExpected   CMR = 10
	CmrBlockBadCount   CMR = 11
	CmrBlockEarlyEOI   CMR = 12
	CmrBlockExtraBytes CMR = 13
)

var cmrNames = map[CMR]string{
	CmrOK:              "command succeeded",
	CmrBadHeader:       "unrecognized command/query header",
	CmrBadHeaderPath:   "illegal header path",
	CmrBadNumber:       "illegal number",
	CmrBadNumberSuffix: "illegal number suffix",
	CmrBadKeyword:      "unrecognized keyword",
	CmrStringError:     "string error",
	CmrEmbeddedGET:     "GET embedded in another message",
	CmrBlockExpected:   "arbitrary data block expected",
	CmrBlockBadCount:   "non-digit character in data block byte count",
	CmrBlockEarlyEOI:   "EOI detected during data block transfer",
	CmrBlockExtraBytes: "extra bytes detected during data block transfer",
}

func (cmr CMR) String() string {
	v, ok := cmrNames[cmr]
	if !ok {
		return fmt.Sprintf("CMR(%d)", int(cmr))
	}
	return v
}

// ExecutionError reads (and clears) the execution error register.
func (sc *Scope) ExecutionError() (EXR, error) {
	v, err := sc.getInt(prop{name: "execution error register", query: "EXR?"})
	if err != nil {
		return 0, err
	}
	return EXR(v), nil
}

// DeviceError reads (and clears) the device specific error register.
func (sc *Scope) DeviceError() (DDR, error) {
	v, err := sc.getInt(prop{name: "device error register", query: "DDR?"})
	if err != nil {
		return 0, err
	}
	return DDR(v), nil
}

// CommandError reads (and clears) the command error register.
func (sc *Scope) CommandError() (CMR, error) {
	v, err := sc.getInt(prop{name: "command error register", query: "CMR?"})
	if err != nil {
		return 0, err
	}
	return CMR(v), nil
}

// ESR reads (and clears) the standard event status register.
func (sc *Scope) ESR() (int, error) {
	return sc.getInt(prop{name: "event status register", query: "*ESR?"})
}

var (
	eseProp = prop{
		name:    "event status enable register",
		query:   "*ESE?",
		write:   "*ESE %d",
		min:     0,
		max:     255,
		bounded: true,
	}
	sreProp = prop{
		name:    "service request enable register",
		query:   "*SRE?",
		write:   "*SRE %d",
		min:     0,
		max:     255,
		bounded: true,
	}
)

// ESE returns the standard event status enable register bits.
func (sc *Scope) ESE() (int, error) { return sc.getInt(eseProp) }

// SetESE sets the standard event status enable register bits.
func (sc *Scope) SetESE(v int) error { return sc.setInt(eseProp, v) }

// SRE returns the service request enable register bits.
func (sc *Scope) SRE() (int, error) { return sc.getInt(sreProp) }

// SetSRE sets the service request enable register bits. Setting 0
// performs a register reset.
func (sc *Scope) SetSRE(v int) error { return sc.setInt(sreProp, v) }

// Standard event status register bits signalling pending errors.
const (
	esrDeviceError    = 1 << 3
	esrExecutionError = 1 << 4
	esrCommandError   = 1 << 5
)

// CheckSetErrors reads the standard event status register and, when an
// error bit is set, resolves it to the matching error register content.
func (sc *Scope) CheckSetErrors() error {
	esr, err := sc.ESR()
	if err != nil {
		return err
	}
	switch {
	case esr&esrExecutionError != 0:
		exr, err := sc.ExecutionError()
		if err != nil {
			return err
		}
		return fmt.Errorf("scope: execution error: %v", exr)
	case esr&esrDeviceError != 0:
		ddr, err := sc.DeviceError()
		if err != nil {
			return err
		}
		return fmt.Errorf("scope: device error: %v", ddr)
	case esr&esrCommandError != 0:
		cmr, err := sc.CommandError()
		if err != nil {
			return err
		}
		return fmt.Errorf("scope: command error: %v", cmr)
	}
	return nil
}
