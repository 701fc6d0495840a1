// Copyright 2024 The go-lab Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package scope

import (
	"fmt"
	"strings"
)

// MathFn drives one math function trace (F1..F8).
type MathFn struct {
	sc *Scope
	id int
}

// ID returns the 1-based math function number.
func (fn *MathFn) ID() int { return fn.id }

func (fn *MathFn) vbs(path string) (query, write string) {
	query = fmt.Sprintf("VBS? 'return=app.Math.F%d.%s'", fn.id, path)
	write = fmt.Sprintf("VBS 'app.Math.F%d.%s=%%s'", fn.id, path)
	return query, write
}

func (fn *MathFn) vbsQuoted(path string) (query, write string) {
	query = fmt.Sprintf("VBS? 'return=app.Math.F%d.%s'", fn.id, path)
	write = fmt.Sprintf("VBS 'app.Math.F%d.%s=%%q'", fn.id, path)
	return query, write
}

func (fn *MathFn) vbsFloat(path string) (query, write string) {
	query = fmt.Sprintf("VBS? 'return=app.Math.F%d.%s'", fn.id, path)
	write = fmt.Sprintf("VBS 'app.Math.F%d.%s=%%g'", fn.id, path)
	return query, write
}

var (
	mathSources   = []string{"C1", "C2", "C3", "C4"}
	mathEqnOps    = []string{"*", "/", "+", "-"}
	mathOperators = []string{
		"AbsoluteValue", "Average", "Boxcar", "Copy", "Correlation", "Demodulate",
		"Derivative", "Deskew", "Difference", "EnhancedResolution", "Envelope",
		"ExcelMath", "Exp", "Exp10", "FastWavePort", "FFT", "Filter", "Floor",
		"Histogram", "Htie2BER", "I2SToWform", "Integral", "Interpolate", "Invert",
		"ISIPatt", "Ln", "Log10", "LowPassIIR", "MathcadMath", "MATLABWaveform",
		"Null", "PersistenceHistogram", "PersistenceTraceMean",
		"PersistenceTraceRange", "PersistenceTraceSigma", "Product", "Ratio",
		"Reciprocal", "Reframe", "Rescale", "Roof", "SegmentSelect", "SeqBuilder",
		"SequenceAverage", "SinXOverX", "Sparse", "Square", "SquareRoot", "Sum",
		"Track", "Trend", "Trk", "WaveScript", "Zoom",
	}
)

// SetDefine installs the two-operand equation src1 op src2 on the math
// trace, e.g. ("C1", "*", "C2").
func (fn *MathFn) SetDefine(src1, op, src2 string) error {
	for _, arg := range []struct {
		v    string
		vals []string
	}{
		{src1, mathSources},
		{op, mathEqnOps},
		{src2, mathSources},
	} {
		err := discrete(arg.vals...)(arg.v)
		if err != nil {
			return fmt.Errorf("scope: could not define F%d: %w", fn.id, err)
		}
	}
	err := fn.sc.t.Write(fmt.Sprintf("F%d:DEF EQN,'%s%s%s'", fn.id, src1, op, src2))
	if err != nil {
		return fmt.Errorf("scope: could not define F%d: %w", fn.id, err)
	}
	return nil
}

// Define returns the two operand sources and the operator of the math
// trace equation.
func (fn *MathFn) Define() (src1, op, src2 string, err error) {
	out, err := fn.sc.t.Query(fmt.Sprintf("F%d:DEF?", fn.id))
	if err != nil {
		return "", "", "", fmt.Errorf("scope: could not query F%d definition: %w", fn.id, err)
	}
	return fn.parseDefine(out)
}

// parseDefine extracts the operands of an equation reply such as
// "F1:DEF EQN,'C1*C2'" or "EQN,'C1*C2'".
func (fn *MathFn) parseDefine(out string) (src1, op, src2 string, err error) {
	eqn := strings.TrimSpace(out)
	if i := strings.IndexByte(eqn, '\''); i >= 0 {
		eqn = eqn[i+1:]
	}
	eqn = strings.TrimSuffix(eqn, "'")
	eqn = strings.TrimSpace(eqn)

	for _, o := range mathEqnOps {
		i := strings.Index(eqn, o)
		if i <= 0 {
			continue
		}
		src1, op, src2 = eqn[:i], o, eqn[i+len(o):]
		if has(mathSources, src1) && has(mathSources, src2) {
			return src1, op, src2, nil
		}
	}
	return "", "", "", fmt.Errorf("scope: could not parse F%d definition %q", fn.id, out)
}

func has(vals []string, v string) bool {
	for _, val := range vals {
		if val == v {
			return true
		}
	}
	return false
}

func (fn *MathFn) viewProp() prop {
	query, write := fn.vbs("View")
	return prop{name: fmt.Sprintf("F%d view", fn.id), query: query, write: write}
}

// View reports whether the math trace is displayed.
func (fn *MathFn) View() (bool, error) { return fn.sc.getBool(fn.viewProp()) }

// SetView displays (or hides) the math trace.
func (fn *MathFn) SetView(on bool) error {
	arg := map[bool]string{true: "1", false: "0"}[on]
	return fn.sc.setProp(fn.viewProp(), arg)
}

func (fn *MathFn) modeProp() prop {
	query, write := fn.vbsQuoted("MathMode")
	return prop{
		name:  fmt.Sprintf("F%d math mode", fn.id),
		query: query,
		write: write,
		check: discrete("Graphing", "OneOperator", "TwoOperators", "WebEdit"),
	}
}

// MathMode returns the math mode of the trace.
func (fn *MathFn) MathMode() (string, error) { return fn.sc.getProp(fn.modeProp()) }

// SetMathMode sets the math mode of the trace (Graphing, OneOperator,
// TwoOperators or WebEdit).
func (fn *MathFn) SetMathMode(v string) error { return fn.sc.setProp(fn.modeProp(), v) }

func (fn *MathFn) sourceProp(n int) prop {
	query, write := fn.vbsQuoted(fmt.Sprintf("Source%d", n))
	return prop{
		name:  fmt.Sprintf("F%d source %d", fn.id, n),
		query: query,
		write: write,
		check: discrete(mathSources...),
	}
}

// Source returns operand source n (1 or 2) of the math trace.
func (fn *MathFn) Source(n int) (string, error) { return fn.sc.getProp(fn.sourceProp(n)) }

// SetSource sets operand source n (1 or 2) of the math trace.
func (fn *MathFn) SetSource(n int, v string) error { return fn.sc.setProp(fn.sourceProp(n), v) }

func (fn *MathFn) operatorProp(n int) prop {
	query, write := fn.vbsQuoted(fmt.Sprintf("Operator%d", n))
	return prop{
		name:  fmt.Sprintf("F%d operator %d", fn.id, n),
		query: query,
		write: write,
		check: discrete(mathOperators...),
	}
}

// Operator returns math operator n (1 or 2) of the trace.
func (fn *MathFn) Operator(n int) (string, error) { return fn.sc.getProp(fn.operatorProp(n)) }

// SetOperator sets math operator n (1 or 2) of the trace.
func (fn *MathFn) SetOperator(n int, v string) error { return fn.sc.setProp(fn.operatorProp(n), v) }

// Zoom accessors of the math trace display.

func (fn *MathFn) zoomProp(path string) prop {
	query, write := fn.vbsFloat("Zoom." + path)
	return prop{
		name:  fmt.Sprintf("F%d zoom %s", fn.id, strings.ToLower(path)),
		query: query,
		write: write,
	}
}

func (fn *MathFn) ZoomHorPos() (float64, error)  { return fn.sc.getFloat(fn.zoomProp("HorPos")) }
func (fn *MathFn) SetZoomHorPos(v float64) error { return fn.sc.setFloat(fn.zoomProp("HorPos"), v) }

func (fn *MathFn) ZoomHorScale() (float64, error) { return fn.sc.getFloat(fn.zoomProp("HorZoom")) }
func (fn *MathFn) SetZoomHorScale(v float64) error {
	return fn.sc.setFloat(fn.zoomProp("HorZoom"), v)
}

func (fn *MathFn) ZoomVerPos() (float64, error)  { return fn.sc.getFloat(fn.zoomProp("VerPos")) }
func (fn *MathFn) SetZoomVerPos(v float64) error { return fn.sc.setFloat(fn.zoomProp("VerPos"), v) }

func (fn *MathFn) ZoomVerScale() (float64, error) { return fn.sc.getFloat(fn.zoomProp("VerZoom")) }
func (fn *MathFn) SetZoomVerScale(v float64) error {
	return fn.sc.setFloat(fn.zoomProp("VerZoom"), v)
}

func (fn *MathFn) zoomVarProp(path string) prop {
	query, write := fn.vbs("Zoom." + path)
	return prop{
		name:  fmt.Sprintf("F%d zoom %s", fn.id, strings.ToLower(path)),
		query: query,
		write: write,
	}
}

// VariableHorZoom reports whether continuous horizontal zooming is
// enabled.
func (fn *MathFn) VariableHorZoom() (bool, error) {
	return fn.sc.getBool(fn.zoomVarProp("VariableHorZoom"))
}

// SetVariableHorZoom enables continuous (as opposed to 1-2-5-stepped)
// horizontal zooming.
func (fn *MathFn) SetVariableHorZoom(on bool) error {
	return fn.sc.setBool(fn.zoomVarProp("VariableHorZoom"), on)
}

// VariableVerZoom reports whether continuous vertical zooming is
// enabled.
func (fn *MathFn) VariableVerZoom() (bool, error) {
	return fn.sc.getBool(fn.zoomVarProp("VariableVerZoom"))
}

// SetVariableVerZoom enables continuous vertical zooming.
func (fn *MathFn) SetVariableVerZoom(on bool) error {
	return fn.sc.setBool(fn.zoomVarProp("VariableVerZoom"), on)
}

// Averaging setup of the two math operators.

func (fn *MathFn) avgTypeProp(n int) prop {
	query, write := fn.vbsQuoted(fmt.Sprintf("Operator%dSetup.AverageType", n))
	return prop{
		name:  fmt.Sprintf("F%d operator %d average type", fn.id, n),
		query: query,
		write: write,
		check: discrete("Summed", "Continuous"),
	}
}

// AverageType returns the averaging mode of operator n (1 or 2).
func (fn *MathFn) AverageType(n int) (string, error) { return fn.sc.getProp(fn.avgTypeProp(n)) }

// SetAverageType sets the averaging mode of operator n (Summed or
// Continuous).
func (fn *MathFn) SetAverageType(n int, v string) error {
	return fn.sc.setProp(fn.avgTypeProp(n), v)
}

func (fn *MathFn) sweepsProp(n int) prop {
	return prop{
		name:    fmt.Sprintf("F%d operator %d sweeps", fn.id, n),
		query:   fmt.Sprintf("VBS? 'return=app.Math.F%d.Operator%dSetup.Sweeps'", fn.id, n),
		write:   fmt.Sprintf("VBS 'app.Math.F%d.Operator%dSetup.Sweeps=%%d'", fn.id, n),
		min:     1,
		max:     1000000,
		bounded: true,
	}
}

// Sweeps returns the number of averaging sweeps of operator n.
func (fn *MathFn) Sweeps(n int) (int, error) { return fn.sc.getInt(fn.sweepsProp(n)) }

// SetSweeps sets the number of averaging sweeps of operator n.
func (fn *MathFn) SetSweeps(n, v int) error { return fn.sc.setInt(fn.sweepsProp(n), v) }

// ClearSweeps restarts the accumulation of operator n (average,
// histogram, trend).
func (fn *MathFn) ClearSweeps(n int) error {
	err := fn.sc.t.Write(fmt.Sprintf("VBS 'app.Math.F%d.Operator%dSetup.ClearSweeps'", fn.id, n))
	if err != nil {
		return fmt.Errorf("scope: could not clear F%d operator %d sweeps: %w", fn.id, n, err)
	}
	return nil
}

// FFT setup of operator 1.

func (fn *MathFn) fftProp(path string, vals ...string) prop {
	query, write := fn.vbsQuoted("Operator1Setup." + path)
	return prop{
		name:  fmt.Sprintf("F%d FFT %s", fn.id, strings.ToLower(path)),
		query: query,
		write: write,
		check: discrete(vals...),
	}
}

// FFTAlgorithm returns the FFT algorithm (LeastPrime or Power2).
func (fn *MathFn) FFTAlgorithm() (string, error) {
	return fn.sc.getProp(fn.fftProp("Algorithm", "LeastPrime", "Power2"))
}

// SetFFTAlgorithm sets the FFT algorithm.
func (fn *MathFn) SetFFTAlgorithm(v string) error {
	return fn.sc.setProp(fn.fftProp("Algorithm", "LeastPrime", "Power2"), v)
}

// FFTFillType returns the FFT record fill strategy.
func (fn *MathFn) FFTFillType() (string, error) {
	return fn.sc.getProp(fn.fftProp("FillType", "LeastPrime", "Power2"))
}

// SetFFTFillType sets the FFT record fill strategy.
func (fn *MathFn) SetFFTFillType(v string) error {
	return fn.sc.setProp(fn.fftProp("FillType", "LeastPrime", "Power2"), v)
}

func (fn *MathFn) fftSuppressDCProp() prop {
	query, write := fn.vbs("Operator1Setup.SuppressDC")
	return prop{name: fmt.Sprintf("F%d FFT suppress DC", fn.id), query: query, write: write}
}

// FFTSuppressDC reports whether the DC bin is suppressed in the FFT
// output.
func (fn *MathFn) FFTSuppressDC() (bool, error) { return fn.sc.getBool(fn.fftSuppressDCProp()) }

// SetFFTSuppressDC suppresses (or restores) the DC bin of the FFT
// output.
func (fn *MathFn) SetFFTSuppressDC(on bool) error {
	arg := map[bool]string{true: "1", false: "0"}[on]
	return fn.sc.setProp(fn.fftSuppressDCProp(), arg)
}

// FFTType returns the FFT output type (Magnitude, Phase or
// PowerSpectrum).
func (fn *MathFn) FFTType() (string, error) {
	return fn.sc.getProp(fn.fftProp("Type", "Magnitude", "Phase", "PowerSpectrum"))
}

// SetFFTType sets the FFT output type.
func (fn *MathFn) SetFFTType(v string) error {
	return fn.sc.setProp(fn.fftProp("Type", "Magnitude", "Phase", "PowerSpectrum"), v)
}

var fftWindows = []string{"BlackmanHarris", "FlatTop", "Hamming", "Rectangular", "VonHann"}

// FFTWindow returns the FFT window function.
func (fn *MathFn) FFTWindow() (string, error) {
	return fn.sc.getProp(fn.fftProp("Window", fftWindows...))
}

// SetFFTWindow sets the FFT window function.
func (fn *MathFn) SetFFTWindow(v string) error {
	return fn.sc.setProp(fn.fftProp("Window", fftWindows...), v)
}
