// Copyright 2022 The go-hdl Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ecp5dcscm describes the ECP5 DC-SCM board.
package ecp5dcscm // import "github.com/go-hdl/boards/bsp/ecp5dcscm"

import (
	"fmt"

	"github.com/go-hdl/boards/bsp"
)

// Device is the FPGA part of the board.
const Device = "LFE5UM5G-85F-8BG756C"

// ClkFreq is the frequency of the board reference oscillator (Hz).
const ClkFreq = 100e6

// EthRxClkFreq is the frequency of the RGMII receive clock (Hz).
const EthRxClkFreq = 125e6

var ios = []bsp.Resource{
	{Name: "clk100", Pins: []string{"C5"}, IOStandard: "LVCMOS33"},

	{Name: "serial", IOStandard: "LVCMOS33", Subsignals: []bsp.Subsignal{
		{Name: "rx", Pins: []string{"C4"}},
		{Name: "tx", Pins: []string{"D5"}},
	}},

	// DDR3
	{Name: "ddram", IOStandard: "SSTL135_I", Misc: []bsp.Misc{"SLEWRATE=FAST"}, Subsignals: []bsp.Subsignal{
		{Name: "a", Pins: []string{
			"AD3", "AC4", "AB4", "AC6", "AB6", "AF6", "AE6", "AD6",
			"AF5", "AE5", "AD5", "AF4", "AE4", "AF3", "AE3",
		}},
		{Name: "ba", Pins: []string{"AC7", "V6", "W5"}},
		{Name: "ras_n", Pins: []string{"AB3"}},
		{Name: "cas_n", Pins: []string{"W2"}},
		{Name: "we_n", Pins: []string{"AC5"}},
		{Name: "cs_n", Pins: []string{"R1"}},
		{Name: "dm", Pins: []string{"AD7", "AC2"}},
		{Name: "dq", Pins: []string{
			"AD8", "AE8", "AF8", "AE7", "AF7", "AD9", "AE9", "AF9",
			"AB1", "AC1", "AD1", "AE1", "AF1", "AB2", "AD2", "AE2",
		}, Misc: []bsp.Misc{"TERMINATION=75"}},
		{Name: "dqs_p", Pins: []string{"AB5", "AC3"}, IOStandard: "SSTL135D_I",
			Misc: []bsp.Misc{"TERMINATION=OFF", "DIFFRESISTOR=100"}},
		{Name: "clk_p", Pins: []string{"P5"}, IOStandard: "SSTL135D_I"},
		{Name: "cke", Pins: []string{"Y1"}},
		{Name: "odt", Pins: []string{"AD4"}},
		{Name: "reset_n", Pins: []string{"T2"}},
	}},

	// Ethernet (RGMII)
	{Name: "eth_clocks", IOStandard: "LVCMOS33", Subsignals: []bsp.Subsignal{
		{Name: "tx", Pins: []string{"C17"}},
		{Name: "rx", Pins: []string{"A17"}},
		{Name: "ref", Pins: []string{"B17"}},
	}},
	{Name: "eth", IOStandard: "LVCMOS33", Subsignals: []bsp.Subsignal{
		{Name: "rst_n", Pins: []string{"D18"}},
		{Name: "int_n", Pins: []string{"A19"}},
		{Name: "mdio", Pins: []string{"D17"}},
		{Name: "mdc", Pins: []string{"B16"}},
		{Name: "rx_ctl", Pins: []string{"C16"}},
		{Name: "rx_data", Pins: []string{"A16", "D16", "E16", "C8"}},
		{Name: "tx_ctl", Pins: []string{"D15"}},
		{Name: "tx_data", Pins: []string{"A14", "A8", "B8", "D8"}},
	}},

	// PCIe
	{Name: "pcie_x1", Subsignals: []bsp.Subsignal{
		{Name: "clk_p", Pins: []string{"AM14"}},
		{Name: "clk_n", Pins: []string{"AM15"}},
		{Name: "rx_p", Pins: []string{"AM8"}},
		{Name: "rx_n", Pins: []string{"AM9"}},
		{Name: "tx_p", Pins: []string{"AK9"}},
		{Name: "tx_n", Pins: []string{"AK10"}},
	}},

	// USB ULPI
	{Name: "ulpi_clock", Index: 0, Pins: []string{"P28"}, IOStandard: "LVCMOS33"},
	{Name: "ulpi", Index: 0, IOStandard: "LVCMOS33", Subsignals: []bsp.Subsignal{
		{Name: "stp", Pins: []string{"P32"}},
		{Name: "dir", Pins: []string{"P31"}},
		{Name: "nxt", Pins: []string{"N32"}},
		{Name: "reset", Pins: []string{"P30"}},
		{Name: "data", Pins: []string{"W31", "W32", "V32", "U31", "U32", "T31", "T32", "R32"}},
	}},
	{Name: "ulpi_clock", Index: 1, Pins: []string{"N26"}, IOStandard: "LVCMOS33"},
	{Name: "ulpi", Index: 1, IOStandard: "LVCMOS33", Subsignals: []bsp.Subsignal{
		{Name: "stp", Pins: []string{"Y28"}},
		{Name: "dir", Pins: []string{"Y29"}},
		{Name: "nxt", Pins: []string{"Y30"}},
		{Name: "reset", Pins: []string{"Y32"}},
		{Name: "data", Pins: []string{"AE32", "AE31", "AD32", "AC31", "AC32", "AB31", "AB32", "AB30"}},
	}},
}

// New returns the board platform with its default clocks constrained.
func New(toolchain string) (*bsp.Platform, error) {
	switch toolchain {
	case "trellis", "diamond":
		// ok
	default:
		return nil, fmt.Errorf("ecp5dcscm: invalid toolchain %q", toolchain)
	}
	p, err := bsp.New(Device, toolchain, ios)
	if err != nil {
		return nil, fmt.Errorf("ecp5dcscm: could not create platform: %w", err)
	}
	p.DefaultClkName = "clk100"
	p.DefaultClkPeriod = 1e9 / ClkFreq
	err = p.AddPeriodConstraint("clk100", 1e9/ClkFreq)
	if err != nil {
		return nil, fmt.Errorf("ecp5dcscm: could not constrain clk100: %w", err)
	}
	err = p.AddPeriodConstraint("eth_clocks_rx", 1e9/EthRxClkFreq)
	if err != nil {
		return nil, fmt.Errorf("ecp5dcscm: could not constrain eth_clocks:rx: %w", err)
	}
	return p, nil
}
