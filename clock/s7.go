// Copyright 2022 The go-hdl Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package clock

import (
	"fmt"
	"io"
	"math"
)

// Legal parameter ranges of the 7-series PLLE2 block.
const (
	s7ClkinMin = 19e6
	s7ClkinMax = 800e6

	s7MultMin = 2
	s7MultMax = 64

	s7DivMin = 1
	s7DivMax = 56

	s7ClkoutDivMin = 1
	s7ClkoutDivMax = 128

	s7NClkoutsMax = 6
)

// s7VCORanges maps a speedgrade to the legal VCO frequency range (Hz).
var s7VCORanges = map[int][2]float64{
	-1: {800e6, 1600e6},
	-2: {800e6, 1866e6},
	-3: {800e6, 2133e6},
}

// S7PLL models a Xilinx 7-series PLL hard block: one reference input,
// up to six output clocks derived through a shared VCO.
type S7PLL struct {
	speedgrade int
	clkin      clkin
	clkouts    []Clkout
}

// NewS7PLL returns a PLL model for the given speedgrade (-1, -2 or -3).
func NewS7PLL(speedgrade int) (*S7PLL, error) {
	if _, ok := s7VCORanges[speedgrade]; !ok {
		return nil, fmt.Errorf("clock: invalid S7 speedgrade %d", speedgrade)
	}
	return &S7PLL{speedgrade: speedgrade}, nil
}

// RegisterClkin binds the PLL reference input clock.
func (pll *S7PLL) RegisterClkin(name string, freq float64) error {
	if pll.clkin.name != "" {
		return fmt.Errorf("clock: clkin already registered (%q)", pll.clkin.name)
	}
	if freq < s7ClkinMin || freq > s7ClkinMax {
		return fmt.Errorf(
			"clock: clkin %q frequency %s out of range [%s, %s]",
			name, fmtMHz(freq), fmtMHz(s7ClkinMin), fmtMHz(s7ClkinMax),
		)
	}
	pll.clkin = clkin{name: name, freq: freq}
	return nil
}

// CreateClkout requests an output clock at the given frequency for the
// given clock domain.
func (pll *S7PLL) CreateClkout(cd ClockDomain, freq float64, opts ...ClkoutOption) error {
	if len(pll.clkouts) >= s7NClkoutsMax {
		return fmt.Errorf("clock: too many output clocks (max=%d)", s7NClkoutsMax)
	}
	out, err := newClkout(cd, freq, opts...)
	if err != nil {
		return err
	}
	pll.clkouts = append(pll.clkouts, out)
	return nil
}

// S7Config is the solved configuration of an S7PLL.
type S7Config struct {
	ClkinName string
	ClkinFreq float64
	Mult      int
	Div       int
	VCOFreq   float64
	Clkouts   []ClkoutConfig
}

// Dump writes a human-readable summary of the configuration to w.
func (cfg S7Config) Dump(w io.Writer) {
	fmt.Fprintf(w, "clkin:   %s (%s)\n", cfg.ClkinName, fmtMHz(cfg.ClkinFreq))
	fmt.Fprintf(w, "mult:    %d\n", cfg.Mult)
	fmt.Fprintf(w, "div:     %d\n", cfg.Div)
	fmt.Fprintf(w, "vco:     %s\n", fmtMHz(cfg.VCOFreq))
	for _, out := range cfg.Clkouts {
		fmt.Fprintf(w, "clkout:  %-12s /%-3d %s phase=%v\n",
			out.Name, out.Divide, fmtMHz(out.Freq), out.Phase,
		)
	}
}

// Compute solves for a legal PLL configuration producing all requested
// output clocks at once. It returns an error wrapping ErrNoConfig when
// the request is legal but infeasible; any other error signals invalid
// use of the block.
func (pll *S7PLL) Compute() (S7Config, error) {
	if pll.clkin.name == "" {
		return S7Config{}, fmt.Errorf("clock: no clkin registered")
	}
	if len(pll.clkouts) == 0 {
		return S7Config{}, fmt.Errorf("clock: no output clock requested")
	}

	vco := s7VCORanges[pll.speedgrade]

	var (
		best  S7Config
		found bool
	)
	for div := s7DivMin; div <= s7DivMax; div++ {
		for mult := s7MultMin; mult <= s7MultMax; mult++ {
			vcoFreq := pll.clkin.freq * float64(mult) / float64(div)
			if vcoFreq < vco[0] || vcoFreq > vco[1] {
				continue
			}
			outs, ok := solveClkouts(vcoFreq, pll.clkouts, s7ClkoutDivMin, s7ClkoutDivMax)
			if !ok {
				continue
			}
			if found && vcoFreq <= best.VCOFreq {
				continue
			}
			best = S7Config{
				ClkinName: pll.clkin.name,
				ClkinFreq: pll.clkin.freq,
				Mult:      mult,
				Div:       div,
				VCOFreq:   vcoFreq,
				Clkouts:   outs,
			}
			found = true
		}
	}
	if !found {
		return S7Config{}, fmt.Errorf(
			"clock: S7PLL clkin=%s: %w",
			fmtMHz(pll.clkin.freq), ErrNoConfig,
		)
	}
	return best, nil
}

// solveClkouts assigns one integer divisor per requested output so that
// vco/div lands within the per-output margin. The divisor minimizing
// the frequency error wins.
func solveClkouts(vcoFreq float64, clkouts []Clkout, divMin, divMax int) ([]ClkoutConfig, bool) {
	outs := make([]ClkoutConfig, 0, len(clkouts))
	for _, out := range clkouts {
		var (
			bestDiv int
			bestErr = math.Inf(+1)
		)
		for div := divMin; div <= divMax; div++ {
			freq := vcoFreq / float64(div)
			ferr := math.Abs(freq - out.Freq)
			if ferr < bestErr {
				bestErr = ferr
				bestDiv = div
			}
		}
		if bestErr > out.Freq*out.Margin {
			return nil, false
		}
		outs = append(outs, ClkoutConfig{
			Name:   out.Domain.Name,
			Divide: bestDiv,
			Freq:   vcoFreq / float64(bestDiv),
			Phase:  out.Phase,
		})
	}
	return outs, true
}
