// Copyright 2022 The go-hdl Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package lpddr4tb describes the Antmicro LPDDR4 test board.
package lpddr4tb // import "github.com/go-hdl/boards/bsp/lpddr4tb"

import (
	"fmt"

	"github.com/go-hdl/boards/bsp"
)

// Device is the FPGA part of the board.
const Device = "xc7k70tfbg484-1"

// ClkFreq is the frequency of the board reference oscillator (Hz).
const ClkFreq = 100e6

var ios = []bsp.Resource{
	{Name: "clk100", Pins: []string{"L19"}, IOStandard: "LVCMOS33"},

	{Name: "user_led", Index: 0, Pins: []string{"F8"}, IOStandard: "LVCMOS33"},
	{Name: "user_led", Index: 1, Pins: []string{"C8"}, IOStandard: "LVCMOS33"},
	{Name: "user_led", Index: 2, Pins: []string{"A8"}, IOStandard: "LVCMOS33"},
	{Name: "user_led", Index: 3, Pins: []string{"D9"}, IOStandard: "LVCMOS33"},
	{Name: "user_led", Index: 4, Pins: []string{"F9"}, IOStandard: "LVCMOS33"},

	{Name: "user_btn", Index: 0, Pins: []string{"E8"}, IOStandard: "LVCMOS33"},
	{Name: "user_btn", Index: 1, Pins: []string{"B9"}, IOStandard: "LVCMOS33"},
	{Name: "user_btn", Index: 2, Pins: []string{"C9"}, IOStandard: "LVCMOS33"},
	{Name: "user_btn", Index: 3, Pins: []string{"E9"}, IOStandard: "LVCMOS33"},

	{Name: "serial", Index: 0, IOStandard: "LVCMOS33", Subsignals: []bsp.Subsignal{
		{Name: "tx", Pins: []string{"AB18"}},
		{Name: "rx", Pins: []string{"AA18"}},
	}},
	{Name: "serial", Index: 1, IOStandard: "LVCMOS33", Subsignals: []bsp.Subsignal{
		{Name: "tx", Pins: []string{"AA20"}},
		{Name: "rx", Pins: []string{"AB20"}},
	}},

	// LPDDR4 (actually at 1.1V not 1.2V)
	{Name: "lpddr4", Misc: []bsp.Misc{"SLEW=FAST"}, Subsignals: []bsp.Subsignal{
		{Name: "clk_p", Pins: []string{"Y3"}, IOStandard: "DIFF_SSTL12"},
		{Name: "clk_n", Pins: []string{"Y2"}, IOStandard: "DIFF_SSTL12"},
		{Name: "cke", Pins: []string{"N4"}, IOStandard: "SSTL12"},
		{Name: "cs", Pins: []string{"N3"}, IOStandard: "SSTL12"},
		{Name: "ca", Pins: []string{"L3", "L4", "AA4", "AA3", "AB3", "AB2"}, IOStandard: "SSTL12"},
		{Name: "dq", Pins: []string{
			"L1", "K2", "K1", "K3", "R1", "P2", "P1", "N2",
			"W2", "Y1", "AA1", "AB1", "R2", "T1", "T3", "U1",
		}, IOStandard: "SSTL12", Misc: []bsp.Misc{"IN_TERM=UNTUNED_SPLIT_40"}},
		{Name: "dqs_p", Pins: []string{"M2", "U2"}, IOStandard: "DIFF_SSTL12",
			Misc: []bsp.Misc{"IN_TERM=UNTUNED_SPLIT_40"}},
		{Name: "dqs_n", Pins: []string{"M1", "V2"}, IOStandard: "DIFF_SSTL12",
			Misc: []bsp.Misc{"IN_TERM=UNTUNED_SPLIT_40"}},
		{Name: "dmi", Pins: []string{"M3", "W1"}, IOStandard: "SSTL12"},
	}},

	// Ethernet
	{Name: "eth_ref_clk", Pins: []string{"C12"}, IOStandard: "LVCMOS33"},
	{Name: "eth_clocks", IOStandard: "LVCMOS33", Subsignals: []bsp.Subsignal{
		{Name: "tx", Pins: []string{"E17"}},
		{Name: "rx", Pins: []string{"C17"}},
	}},
	{Name: "eth", IOStandard: "LVCMOS33", Subsignals: []bsp.Subsignal{
		{Name: "rst_n", Pins: []string{"C15"}},
		{Name: "mdio", Pins: []string{"C13"}},
		{Name: "mdc", Pins: []string{"C14"}},
		{Name: "rx_dv", Pins: []string{"B13"}},
		{Name: "rx_er", Pins: []string{"A14"}},
		{Name: "rx_data", Pins: []string{"A15", "B16", "A16", "B17"}},
		{Name: "tx_en", Pins: []string{"A18"}},
		{Name: "tx_data", Pins: []string{"A19", "B20", "A20", "B21"}},
		{Name: "col", Pins: []string{"B15"}},
		{Name: "crs", Pins: []string{"A13"}},
	}},

	// HyperRAM
	{Name: "hyperram", IOStandard: "LVCMOS33", Subsignals: []bsp.Subsignal{
		{Name: "clk", Pins: []string{"AB15"}},
		{Name: "rst_n", Pins: []string{"V17"}},
		{Name: "dq", Pins: []string{"W15", "AA15", "AA14", "W14", "Y14", "V15", "Y16", "W17"}},
		{Name: "cs_n", Pins: []string{"AA16"}},
		{Name: "rwds", Pins: []string{"Y17"}},
	}},
}

// New returns the board platform with its default clock constrained.
func New() (*bsp.Platform, error) {
	p, err := bsp.New(Device, "vivado", ios)
	if err != nil {
		return nil, fmt.Errorf("lpddr4tb: could not create platform: %w", err)
	}
	p.DefaultClkName = "clk100"
	p.DefaultClkPeriod = 1e9 / ClkFreq
	err = p.AddPeriodConstraint("clk100", 1e9/ClkFreq)
	if err != nil {
		return nil, fmt.Errorf("lpddr4tb: could not constrain clk100: %w", err)
	}
	return p, nil
}
