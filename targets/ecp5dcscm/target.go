// Copyright 2022 The go-hdl Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ecp5dcscm composes the SoC for the ECP5 DC-SCM board, a
// Lattice based datacenter secure control module.
package ecp5dcscm // import "github.com/go-hdl/boards/targets/ecp5dcscm"

import (
	"fmt"
	"io"

	"github.com/go-hdl/boards/bsp"
	board "github.com/go-hdl/boards/bsp/ecp5dcscm"
	"github.com/go-hdl/boards/clock"
	"github.com/go-hdl/boards/soc"
)

// DefaultSysClkFreq is the default system clock frequency (Hz).
const DefaultSysClkFreq = 75e6

// initClkFreq clocks the DDR PHY initialization logic.
const initClkFreq = 25e6

// CRG is the clock-reset generator of the board: an ECP5 PLL fed by
// the 100 MHz oscillator. It generates the 2x system clock and the
// init clock. The sys and sys2x domains are derived from sys2x_i with
// edge-clock bridge and divider primitives, and the ulpi domains are
// clocked straight from the ULPI PHYs.
type CRG struct {
	domains []clock.ClockDomain
	cfg     clock.ECP5Config
}

// NewCRG solves the PLL configuration for the requested system clock
// frequency. It claims the clk100 and ulpi_clock pins on the platform.
func NewCRG(p *bsp.Platform, sysClkFreq float64) (*CRG, error) {
	for _, name := range []string{"clk100", "ulpi_clock", "ulpi_clock"} {
		_, err := p.Request(name)
		if err != nil {
			return nil, fmt.Errorf("ecp5dcscm: could not request %s: %w", name, err)
		}
	}

	var (
		cdInit   = clock.ClockDomain{Name: "init"}
		cdPor    = clock.ClockDomain{Name: "por", ResetLess: true}
		cdSys    = clock.ClockDomain{Name: "sys"}
		cdSys2x  = clock.ClockDomain{Name: "sys2x"}
		cdSys2xI = clock.ClockDomain{Name: "sys2x_i", ResetLess: true}
		cdUlpi0  = clock.ClockDomain{Name: "ulpi0"}
		cdUlpi1  = clock.ClockDomain{Name: "ulpi1"}
	)

	pll := clock.NewECP5PLL()
	err := pll.RegisterClkin("clk100", board.ClkFreq)
	if err != nil {
		return nil, fmt.Errorf("ecp5dcscm: could not register clkin: %w", err)
	}
	err = pll.CreateClkout(cdSys2xI, 2*sysClkFreq)
	if err != nil {
		return nil, fmt.Errorf("ecp5dcscm: could not create clkout sys2x_i: %w", err)
	}
	err = pll.CreateClkout(cdInit, initClkFreq)
	if err != nil {
		return nil, fmt.Errorf("ecp5dcscm: could not create clkout init: %w", err)
	}

	cfg, err := pll.Compute()
	if err != nil {
		return nil, err
	}
	return &CRG{
		domains: []clock.ClockDomain{
			cdInit, cdPor, cdSys, cdSys2x, cdSys2xI, cdUlpi0, cdUlpi1,
		},
		cfg: cfg,
	}, nil
}

// ClockDomains implements soc.CRG.
func (crg *CRG) ClockDomains() []clock.ClockDomain { return crg.domains }

// DumpConfig implements soc.CRG.
func (crg *CRG) DumpConfig(w io.Writer) { crg.cfg.Dump(w) }

// BaseSoC composes the SoC for the board from the given configuration.
func BaseSoC(cfg soc.Config, toolchain string) (*soc.SoC, error) {
	err := cfg.Validate()
	if err != nil {
		return nil, err
	}

	p, err := board.New(toolchain)
	if err != nil {
		return nil, err
	}
	crg, err := NewCRG(p, cfg.SysClkFreq)
	if err != nil {
		return nil, err
	}
	sc, err := soc.New("SoC on ECP5 DC-SCM", p, crg)
	if err != nil {
		return nil, err
	}
	if cfg.NoIdentVersion {
		sc.Version = ""
	}
	if cfg.RWBiosMem {
		err = sc.SetROMWritable()
		if err != nil {
			return nil, err
		}
	}

	err = sc.AttachUART(115200)
	if err != nil {
		return nil, err
	}

	err = sc.AttachDRAM("ddram", soc.AS4C256M16D3A,
		soc.PHYSettings{
			Memtype:    "DDR3",
			DFIRatio:   "1:2",
			DataWidth:  soc.AS4C256M16D3A.DataWidth,
			SysClkFreq: cfg.SysClkFreq,
		},
		soc.ControllerSettings{WithRefresh: true},
		soc.L2Settings{
			Size:         cfg.L2Size,
			MinDataWidth: 128,
			Reverse:      true,
		},
	)
	if err != nil {
		return nil, err
	}

	// the board always carries its RGMII PHY.
	err = sc.AttachEthernet("rgmii", 0, false, cfg.EthIP, cfg.EthDynamicIP)
	if err != nil {
		return nil, err
	}
	err = sc.AttachPCIePHY(1)
	if err != nil {
		return nil, err
	}
	return sc, nil
}

// ScanPLL sweeps [fmin, fmax) by fstep, trying to solve the board CRG
// at each candidate system clock frequency, and writes the scan report
// to w.
func ScanPLL(w io.Writer, fmin, fmax, fstep float64, toolchain string) error {
	results, err := clock.Scan(fmin, fmax, fstep, func(freq float64) error {
		p, err := board.New(toolchain)
		if err != nil {
			return err
		}
		_, err = NewCRG(p, freq)
		return err
	})
	if err != nil {
		return err
	}
	return clock.WriteReport(w, results, fstep)
}
