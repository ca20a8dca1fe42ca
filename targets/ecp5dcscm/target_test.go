// Copyright 2022 The go-hdl Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ecp5dcscm

import (
	"math"
	"strings"
	"testing"

	board "github.com/go-hdl/boards/bsp/ecp5dcscm"
	"github.com/go-hdl/boards/soc"
)

func TestNewCRG(t *testing.T) {
	p, err := board.New("trellis")
	if err != nil {
		t.Fatalf("could not create platform: %+v", err)
	}
	crg, err := NewCRG(p, DefaultSysClkFreq)
	if err != nil {
		t.Fatalf("could not create CRG: %+v", err)
	}

	var names []string
	for _, cd := range crg.ClockDomains() {
		names = append(names, cd.Name)
	}
	want := "init,por,sys,sys2x,sys2x_i,ulpi0,ulpi1"
	if got := strings.Join(names, ","); got != want {
		t.Fatalf("invalid clock domains: got=%q, want=%q", got, want)
	}

	for _, tc := range []struct {
		name string
		freq float64
	}{
		{"sys2x_i", 2 * DefaultSysClkFreq},
		{"init", initClkFreq},
	} {
		var freq float64
		for _, clkout := range crg.cfg.Clkouts {
			if clkout.Name == tc.name {
				freq = clkout.Freq
			}
		}
		if freq == 0 {
			t.Fatalf("missing clkout %q", tc.name)
		}
		if math.Abs(freq-tc.freq) > 1e-2*tc.freq {
			t.Fatalf("invalid freq for %s: got=%v, want=%v", tc.name, freq, tc.freq)
		}
	}
}

func TestBaseSoC(t *testing.T) {
	cfg := soc.Config{
		SysClkFreq: DefaultSysClkFreq,
		L2Size:     8192,
	}
	sc, err := BaseSoC(cfg, "trellis")
	if err != nil {
		t.Fatalf("could not compose soc: %+v", err)
	}

	if sc.DRAM == nil {
		t.Fatalf("missing dram")
	}
	if got, want := sc.DRAM.Module.Name, "AS4C256M16D3A"; got != want {
		t.Fatalf("invalid dram module: got=%q, want=%q", got, want)
	}
	if got, want := sc.DRAM.PHY.DFIRatio, "1:2"; got != want {
		t.Fatalf("invalid dfi ratio: got=%q, want=%q", got, want)
	}
	if !sc.DRAM.L2.Reverse {
		t.Fatalf("l2 cache must be reversed")
	}
	if sc.Ethernet == nil {
		t.Fatalf("missing ethernet block")
	}
	if got, want := sc.Ethernet.PHY, "rgmii"; got != want {
		t.Fatalf("invalid ethernet phy: got=%q, want=%q", got, want)
	}
	if sc.PCIePHY == nil || sc.PCIePHY.Lanes != 1 {
		t.Fatalf("invalid pcie phy: %#v", sc.PCIePHY)
	}
	if got, want := sc.UART.Baudrate, 115200; got != want {
		t.Fatalf("invalid uart baudrate: got=%d, want=%d", got, want)
	}
	region, ok := sc.Region("rom")
	if !ok {
		t.Fatalf("missing rom region")
	}
	if got, want := region.Mode, "r"; got != want {
		t.Fatalf("invalid rom mode: got=%q, want=%q", got, want)
	}
}

func TestBaseSoCInvalidToolchain(t *testing.T) {
	_, err := BaseSoC(soc.Config{SysClkFreq: DefaultSysClkFreq}, "vivado")
	if err == nil {
		t.Fatalf("expected an error")
	}
}

func TestScanPLL(t *testing.T) {
	out := new(strings.Builder)
	err := ScanPLL(out, 70e6, 80e6, 5e6, "trellis")
	if err != nil {
		t.Fatalf("could not scan: %+v", err)
	}
	want := `..
Found PLL configs for:
---
  sys_clk_freq =  70.00 MHz -  75.00 MHz
`
	if got := out.String(); got != want {
		t.Fatalf("invalid report:\ngot:\n%s\nwant:\n%s", got, want)
	}
}
