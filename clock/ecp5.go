// Copyright 2022 The go-hdl Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package clock

import (
	"fmt"
	"io"
)

// Legal parameter ranges of the Lattice ECP5 EHXPLLL block.
const (
	ecp5ClkinMin = 8e6
	ecp5ClkinMax = 400e6

	ecp5ClkiDivMin = 1
	ecp5ClkiDivMax = 128

	ecp5ClkfbDivMin = 1
	ecp5ClkfbDivMax = 80

	ecp5ClkoDivMin = 1
	ecp5ClkoDivMax = 128

	ecp5ClkoutMin = 3.125e6
	ecp5ClkoutMax = 400e6

	ecp5VCOMin = 400e6
	ecp5VCOMax = 800e6

	ecp5NClkoutsMax = 4
)

// ECP5PLL models a Lattice ECP5 PLL hard block: one reference input,
// up to four output clocks derived through a shared VCO.
type ECP5PLL struct {
	clkin   clkin
	clkouts []Clkout
}

// NewECP5PLL returns an ECP5 PLL model.
func NewECP5PLL() *ECP5PLL {
	return &ECP5PLL{}
}

// RegisterClkin binds the PLL reference input clock.
func (pll *ECP5PLL) RegisterClkin(name string, freq float64) error {
	if pll.clkin.name != "" {
		return fmt.Errorf("clock: clkin already registered (%q)", pll.clkin.name)
	}
	if freq < ecp5ClkinMin || freq > ecp5ClkinMax {
		return fmt.Errorf(
			"clock: clkin %q frequency %s out of range [%s, %s]",
			name, fmtMHz(freq), fmtMHz(ecp5ClkinMin), fmtMHz(ecp5ClkinMax),
		)
	}
	pll.clkin = clkin{name: name, freq: freq}
	return nil
}

// CreateClkout requests an output clock at the given frequency for the
// given clock domain.
func (pll *ECP5PLL) CreateClkout(cd ClockDomain, freq float64, opts ...ClkoutOption) error {
	if len(pll.clkouts) >= ecp5NClkoutsMax {
		return fmt.Errorf("clock: too many output clocks (max=%d)", ecp5NClkoutsMax)
	}
	if freq < ecp5ClkoutMin || freq > ecp5ClkoutMax {
		return fmt.Errorf(
			"clock: clkout %q frequency %s out of range [%s, %s]",
			cd.Name, fmtMHz(freq), fmtMHz(ecp5ClkoutMin), fmtMHz(ecp5ClkoutMax),
		)
	}
	out, err := newClkout(cd, freq, opts...)
	if err != nil {
		return err
	}
	pll.clkouts = append(pll.clkouts, out)
	return nil
}

// ECP5Config is the solved configuration of an ECP5PLL.
type ECP5Config struct {
	ClkinName string
	ClkinFreq float64
	ClkiDiv   int
	ClkfbDiv  int
	VCOFreq   float64
	Clkouts   []ClkoutConfig
}

// Dump writes a human-readable summary of the configuration to w.
func (cfg ECP5Config) Dump(w io.Writer) {
	fmt.Fprintf(w, "clkin:     %s (%s)\n", cfg.ClkinName, fmtMHz(cfg.ClkinFreq))
	fmt.Fprintf(w, "clki-div:  %d\n", cfg.ClkiDiv)
	fmt.Fprintf(w, "clkfb-div: %d\n", cfg.ClkfbDiv)
	fmt.Fprintf(w, "vco:       %s\n", fmtMHz(cfg.VCOFreq))
	for _, out := range cfg.Clkouts {
		fmt.Fprintf(w, "clkout:    %-12s /%-3d %s phase=%v\n",
			out.Name, out.Divide, fmtMHz(out.Freq), out.Phase,
		)
	}
}

// Compute solves for a legal PLL configuration producing all requested
// output clocks at once. It returns an error wrapping ErrNoConfig when
// the request is legal but infeasible; any other error signals invalid
// use of the block.
func (pll *ECP5PLL) Compute() (ECP5Config, error) {
	if pll.clkin.name == "" {
		return ECP5Config{}, fmt.Errorf("clock: no clkin registered")
	}
	if len(pll.clkouts) == 0 {
		return ECP5Config{}, fmt.Errorf("clock: no output clock requested")
	}

	var (
		best  ECP5Config
		found bool
	)
	for idiv := ecp5ClkiDivMin; idiv <= ecp5ClkiDivMax; idiv++ {
		for fbdiv := ecp5ClkfbDivMin; fbdiv <= ecp5ClkfbDivMax; fbdiv++ {
			vcoFreq := pll.clkin.freq / float64(idiv) * float64(fbdiv)
			if vcoFreq < ecp5VCOMin || vcoFreq > ecp5VCOMax {
				continue
			}
			outs, ok := solveClkouts(vcoFreq, pll.clkouts, ecp5ClkoDivMin, ecp5ClkoDivMax)
			if !ok {
				continue
			}
			if found && vcoFreq <= best.VCOFreq {
				continue
			}
			best = ECP5Config{
				ClkinName: pll.clkin.name,
				ClkinFreq: pll.clkin.freq,
				ClkiDiv:   idiv,
				ClkfbDiv:  fbdiv,
				VCOFreq:   vcoFreq,
				Clkouts:   outs,
			}
			found = true
		}
	}
	if !found {
		return ECP5Config{}, fmt.Errorf(
			"clock: ECP5PLL clkin=%s: %w",
			fmtMHz(pll.clkin.freq), ErrNoConfig,
		)
	}
	return best, nil
}
