// Copyright 2022 The go-hdl Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lpddr4tb

import (
	"fmt"
	"math"
	"strings"
	"testing"

	board "github.com/go-hdl/boards/bsp/lpddr4tb"
	"github.com/go-hdl/boards/soc"
)

func TestNewCRG(t *testing.T) {
	p, err := board.New()
	if err != nil {
		t.Fatalf("could not create platform: %+v", err)
	}
	crg, err := NewCRG(p, DefaultSysClkFreq, DefaultIODelayClkFreq)
	if err != nil {
		t.Fatalf("could not create CRG: %+v", err)
	}

	var names []string
	for _, cd := range crg.ClockDomains() {
		names = append(names, cd.Name)
	}
	if got, want := strings.Join(names, ","), "sys,sys2x,sys8x,idelay"; got != want {
		t.Fatalf("invalid clock domains: got=%q, want=%q", got, want)
	}
	for _, cd := range crg.ClockDomains() {
		resetLess := cd.Name == "sys2x" || cd.Name == "sys8x"
		if got, want := cd.ResetLess, resetLess; got != want {
			t.Fatalf("invalid reset-less flag for %s: got=%v, want=%v",
				cd.Name, got, want,
			)
		}
	}

	for _, tc := range []struct {
		name string
		freq float64
	}{
		{"sys", DefaultSysClkFreq},
		{"sys2x", 2 * DefaultSysClkFreq},
		{"sys8x", 8 * DefaultSysClkFreq},
		{"idelay", DefaultIODelayClkFreq},
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
		SysClkFreq:   DefaultSysClkFreq,
		WithEthernet: true,
		EthIP:        "192.168.1.50",
		WithHyperRAM: true,
		WithSDCard:   true,
		WithJTAGBone: true,
		WithUARTBone: true,
		MaskedWrite:  true,
		L2Size:       8192,
	}
	sc, err := BaseSoC(cfg)
	if err != nil {
		t.Fatalf("could not compose soc: %+v", err)
	}

	if sc.DRAM == nil {
		t.Fatalf("missing dram")
	}
	if got, want := sc.DRAM.Module.Name, "MT53E256M16D1"; got != want {
		t.Fatalf("invalid dram module: got=%q, want=%q", got, want)
	}
	if got, want := sc.DRAM.PHY.DFIRatio, "1:8"; got != want {
		t.Fatalf("invalid dfi ratio: got=%q, want=%q", got, want)
	}
	if got, want := sc.DRAM.L2.MinDataWidth, 256; got != want {
		t.Fatalf("invalid l2 min-data-width: got=%d, want=%d", got, want)
	}

	if sc.Ethernet == nil || sc.Ethernet.Etherbone {
		t.Fatalf("invalid ethernet block: %#v", sc.Ethernet)
	}
	if sc.HyperRAM == nil || sc.SDCard == nil || sc.JTAGBone == nil {
		t.Fatalf("missing optional blocks")
	}
	if got, want := sc.UART.Baudrate, 115200; got != want {
		t.Fatalf("invalid uart baudrate: got=%d, want=%d", got, want)
	}
	if got, want := sc.UARTBone.Baudrate, 1000000; got != want {
		t.Fatalf("invalid uartbone baudrate: got=%d, want=%d", got, want)
	}
	// the console uart owns serial:0, the uartbone serial:1.
	var serials []int
	for _, res := range sc.Platform.Requested() {
		if res.Name == "serial" {
			serials = append(serials, res.Index)
		}
	}
	if got, want := fmt.Sprint(serials), "[0 1]"; got != want {
		t.Fatalf("invalid serial indices: got=%v, want=%v", got, want)
	}
	if !strings.HasPrefix(sc.Ident, "SoC on LPDDR4 Test Board") {
		t.Fatalf("invalid ident: %q", sc.Ident)
	}
	if got, want := sc.Leds.NLeds, 5; got != want {
		t.Fatalf("invalid number of leds: got=%d, want=%d", got, want)
	}

	region, ok := sc.Region("main_ram")
	if !ok {
		t.Fatalf("missing main_ram region")
	}
	if got, want := region.Origin, uint64(soc.MainRAMBase); got != want {
		t.Fatalf("invalid main_ram origin: got=0x%08x, want=0x%08x", got, want)
	}
}

func TestBaseSoCRWBiosMem(t *testing.T) {
	for _, tc := range []struct {
		name string
		rw   bool
		want string
	}{
		{name: "read-only", rw: false, want: "r"},
		{name: "read-write", rw: true, want: "rw"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			sc, err := BaseSoC(soc.Config{
				SysClkFreq: DefaultSysClkFreq,
				RWBiosMem:  tc.rw,
			})
			if err != nil {
				t.Fatalf("could not compose soc: %+v", err)
			}
			region, ok := sc.Region("rom")
			if !ok {
				t.Fatalf("missing rom region")
			}
			if got, want := region.Mode, tc.want; got != want {
				t.Fatalf("invalid rom mode: got=%q, want=%q", got, want)
			}
		})
	}
}

func TestBaseSoCNoIdentVersion(t *testing.T) {
	sc, err := BaseSoC(soc.Config{
		SysClkFreq:     DefaultSysClkFreq,
		NoIdentVersion: true,
	})
	if err != nil {
		t.Fatalf("could not compose soc: %+v", err)
	}
	if got, want := sc.Version, ""; got != want {
		t.Fatalf("invalid version: got=%q, want=%q", got, want)
	}
}

func TestBaseSoCInvalidConfig(t *testing.T) {
	_, err := BaseSoC(soc.Config{
		SysClkFreq:    DefaultSysClkFreq,
		WithEthernet:  true,
		WithEtherbone: true,
	})
	if err == nil {
		t.Fatalf("expected an error")
	}
	want := "soc: ethernet and etherbone are mutually exclusive"
	if got := err.Error(); got != want {
		t.Fatalf("invalid error:\ngot= %v\nwant=%v", got, want)
	}
}

func TestScanPLL(t *testing.T) {
	out := new(strings.Builder)
	err := ScanPLL(out, 40e6, 60e6, 10e6, DefaultIODelayClkFreq)
	if err != nil {
		t.Fatalf("could not scan: %+v", err)
	}
	want := `..
Found PLL configs for:
---
  sys_clk_freq =  40.00 MHz -  50.00 MHz
`
	if got := out.String(); got != want {
		t.Fatalf("invalid report:\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestScanPLLInvalidRange(t *testing.T) {
	out := new(strings.Builder)
	err := ScanPLL(out, 60e6, 40e6, 10e6, DefaultIODelayClkFreq)
	if err == nil {
		t.Fatalf("expected an error")
	}
}
