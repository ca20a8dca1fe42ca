// Copyright 2022 The go-hdl Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package lpddr4tb composes the SoC for the LPDDR4 test board, a
// Kintex-7 based memory test platform.
package lpddr4tb // import "github.com/go-hdl/boards/targets/lpddr4tb"

import (
	"fmt"
	"io"

	"github.com/go-hdl/boards/bsp"
	board "github.com/go-hdl/boards/bsp/lpddr4tb"
	"github.com/go-hdl/boards/clock"
	"github.com/go-hdl/boards/soc"
)

// DefaultSysClkFreq is the default system clock frequency (Hz).
const DefaultSysClkFreq = 50e6

// DefaultIODelayClkFreq is the default IODELAYCTRL reference
// frequency (Hz).
const DefaultIODelayClkFreq = 200e6

// ethRxDelay compensates the PHY internal 1.2ns RX clock delay to
// reach the 2ns the RGMII interface expects.
const ethRxDelay = 0.8e-9

// CRG is the clock-reset generator of the board: a 7-series PLL fed by
// the 100 MHz oscillator, producing the sys, sys2x, sys8x and idelay
// domains.
type CRG struct {
	domains []clock.ClockDomain
	cfg     clock.S7Config
}

// NewCRG solves the PLL configuration for the requested system clock
// frequency. It claims the clk100 pins on the platform.
func NewCRG(p *bsp.Platform, sysClkFreq, iodelayClkFreq float64) (*CRG, error) {
	_, err := p.Request("clk100")
	if err != nil {
		return nil, fmt.Errorf("lpddr4tb: could not request clk100: %w", err)
	}

	var (
		cdSys    = clock.ClockDomain{Name: "sys"}
		cdSys2x  = clock.ClockDomain{Name: "sys2x", ResetLess: true}
		cdSys8x  = clock.ClockDomain{Name: "sys8x", ResetLess: true}
		cdIdelay = clock.ClockDomain{Name: "idelay"}
	)

	pll, err := clock.NewS7PLL(-1)
	if err != nil {
		return nil, fmt.Errorf("lpddr4tb: could not create PLL: %w", err)
	}
	err = pll.RegisterClkin("clk100", board.ClkFreq)
	if err != nil {
		return nil, fmt.Errorf("lpddr4tb: could not register clkin: %w", err)
	}
	for _, clkout := range []struct {
		cd   clock.ClockDomain
		freq float64
	}{
		{cdSys, sysClkFreq},
		{cdSys2x, 2 * sysClkFreq},
		{cdSys8x, 8 * sysClkFreq},
		{cdIdelay, iodelayClkFreq},
	} {
		err = pll.CreateClkout(clkout.cd, clkout.freq)
		if err != nil {
			return nil, fmt.Errorf("lpddr4tb: could not create clkout %s: %w",
				clkout.cd.Name, err,
			)
		}
	}

	cfg, err := pll.Compute()
	if err != nil {
		return nil, err
	}
	return &CRG{
		domains: []clock.ClockDomain{cdSys, cdSys2x, cdSys8x, cdIdelay},
		cfg:     cfg,
	}, nil
}

// ClockDomains implements soc.CRG.
func (crg *CRG) ClockDomains() []clock.ClockDomain { return crg.domains }

// DumpConfig implements soc.CRG.
func (crg *CRG) DumpConfig(w io.Writer) { crg.cfg.Dump(w) }

// BaseSoC composes the SoC for the board from the given configuration.
func BaseSoC(cfg soc.Config) (*soc.SoC, error) {
	err := cfg.Validate()
	if err != nil {
		return nil, err
	}
	if cfg.IODelayClkFreq == 0 {
		cfg.IODelayClkFreq = DefaultIODelayClkFreq
	}

	p, err := board.New()
	if err != nil {
		return nil, err
	}
	crg, err := NewCRG(p, cfg.SysClkFreq, cfg.IODelayClkFreq)
	if err != nil {
		return nil, err
	}
	sc, err := soc.New("SoC on LPDDR4 Test Board", p, crg)
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

	// the console uart claims the first serial, a uartbone the next.
	err = sc.AttachUART(115200)
	if err != nil {
		return nil, err
	}

	err = sc.AttachDRAM("lpddr4", soc.MT53E256M16D1,
		soc.PHYSettings{
			Memtype:    "LPDDR4",
			DFIRatio:   "1:8",
			DataWidth:  soc.MT53E256M16D1.DataWidth,
			SysClkFreq: cfg.SysClkFreq,
			IODelay:    cfg.IODelayClkFreq,
		},
		soc.ControllerSettings{
			WithRefresh: true,
			MaskedWrite: cfg.MaskedWrite,
		},
		soc.L2Settings{
			Size:         cfg.L2Size,
			MinDataWidth: 256,
		},
	)
	if err != nil {
		return nil, err
	}

	if cfg.WithHyperRAM {
		err = sc.AttachHyperRAM(8 << 20)
		if err != nil {
			return nil, err
		}
	}
	if cfg.WithSDCard {
		err = sc.AttachSDCard()
		if err != nil {
			return nil, err
		}
	}
	if cfg.WithEthernet || cfg.WithEtherbone {
		err = sc.AttachEthernet("rgmii", ethRxDelay,
			cfg.WithEtherbone, cfg.EthIP, cfg.EthDynamicIP,
		)
		if err != nil {
			return nil, err
		}
	}
	if cfg.WithJTAGBone {
		err = sc.AttachJTAGBone()
		if err != nil {
			return nil, err
		}
	}
	if cfg.WithUARTBone {
		err = sc.AttachUARTBone(1000000)
		if err != nil {
			return nil, err
		}
	}
	err = sc.AttachLeds()
	if err != nil {
		return nil, err
	}
	return sc, nil
}

// ScanPLL sweeps [fmin, fmax) by fstep, trying to solve the board CRG
// at each candidate system clock frequency, and writes the scan report
// to w.
func ScanPLL(w io.Writer, fmin, fmax, fstep, iodelayClkFreq float64) error {
	if iodelayClkFreq == 0 {
		iodelayClkFreq = DefaultIODelayClkFreq
	}
	results, err := clock.Scan(fmin, fmax, fstep, func(freq float64) error {
		p, err := board.New()
		if err != nil {
			return err
		}
		_, err = NewCRG(p, freq, iodelayClkFreq)
		return err
	})
	if err != nil {
		return err
	}
	return clock.WriteReport(w, results, fstep)
}
