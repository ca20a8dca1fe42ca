// Copyright 2022 The go-hdl Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package clock provides clock-domain generation for FPGA targets:
// PLL configuration solvers for the supported hard blocks and a
// frequency scanner to probe the legal system-clock range of a target.
package clock // import "github.com/go-hdl/boards/clock"

import (
	"errors"
	"fmt"
)

// ErrNoConfig is reported by a PLL solver when no legal combination of
// dividers and multipliers produces the requested output clocks.
// It is the only error a frequency scan treats as non-fatal.
var ErrNoConfig = errors.New("clock: no PLL config found")

// ClockDomain names a clock signal and its associated reset.
type ClockDomain struct {
	Name      string
	ResetLess bool
}

// Clkout is a requested PLL output clock.
type Clkout struct {
	Domain ClockDomain
	Freq   float64 // Hz
	Phase  float64 // degrees
	Margin float64 // relative frequency tolerance
}

// ClkoutConfig is the solved configuration of one PLL output.
type ClkoutConfig struct {
	Name   string
	Divide int
	Freq   float64 // achieved frequency (Hz)
	Phase  float64 // degrees
}

// ClkoutOption customizes a requested output clock.
type ClkoutOption func(*Clkout)

// WithPhase requests a phase offset, in degrees, on the output clock.
func WithPhase(deg float64) ClkoutOption {
	return func(out *Clkout) {
		out.Phase = deg
	}
}

// WithMargin sets the relative tolerance on the achieved output
// frequency. The default is 1%.
func WithMargin(margin float64) ClkoutOption {
	return func(out *Clkout) {
		out.Margin = margin
	}
}

const defaultMargin = 1e-2

func newClkout(cd ClockDomain, freq float64, opts ...ClkoutOption) (Clkout, error) {
	if freq <= 0 {
		return Clkout{}, fmt.Errorf("clock: invalid frequency %v Hz for clock domain %q", freq, cd.Name)
	}
	out := Clkout{
		Domain: cd,
		Freq:   freq,
		Margin: defaultMargin,
	}
	for _, opt := range opts {
		opt(&out)
	}
	if out.Margin < 0 {
		return Clkout{}, fmt.Errorf("clock: invalid margin %v for clock domain %q", out.Margin, cd.Name)
	}
	return out, nil
}

// clkin is a registered PLL reference input clock.
type clkin struct {
	name string
	freq float64
}

func fmtMHz(freq float64) string {
	return fmt.Sprintf("%6.2f MHz", freq/1e6)
}
