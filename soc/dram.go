// Copyright 2022 The go-hdl Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package soc

import (
	"fmt"
	"io"
)

// GeomSettings is the addressing geometry of a DRAM module.
type GeomSettings struct {
	BankBits int
	RowBits  int
	ColBits  int
}

// TimingSettings are the DRAM module timings, in nanoseconds.
type TimingSettings struct {
	TRP   float64
	TRCD  float64
	TWR   float64
	TRFC  float64
	TREFI float64
}

// DRAMModule is one supported DRAM part.
type DRAMModule struct {
	Name      string
	Memtype   string // "DDR3", "LPDDR4"
	DataWidth int
	Geom      GeomSettings
	Timings   TimingSettings
}

// Supported DRAM parts.
var (
	// MT53E256M16D1 is a 4Gb LPDDR4 die (256M x16).
	MT53E256M16D1 = DRAMModule{
		Name:      "MT53E256M16D1",
		Memtype:   "LPDDR4",
		DataWidth: 16,
		Geom:      GeomSettings{BankBits: 3, RowBits: 15, ColBits: 10},
		Timings:   TimingSettings{TRP: 21, TRCD: 18, TWR: 18, TRFC: 180, TREFI: 3900},
	}

	// AS4C256M16D3A is a 4Gb DDR3 die (256M x16).
	AS4C256M16D3A = DRAMModule{
		Name:      "AS4C256M16D3A",
		Memtype:   "DDR3",
		DataWidth: 16,
		Geom:      GeomSettings{BankBits: 3, RowBits: 15, ColBits: 10},
		Timings:   TimingSettings{TRP: 13.75, TRCD: 13.75, TWR: 15, TRFC: 260, TREFI: 7800},
	}
)

// Size returns the module capacity in bytes.
func (mod DRAMModule) Size() uint64 {
	cells := uint64(1) << uint(mod.Geom.BankBits+mod.Geom.RowBits+mod.Geom.ColBits)
	return cells * uint64(mod.DataWidth/8)
}

// PHYSettings is the explicit summary of a DRAM PHY configuration.
type PHYSettings struct {
	Memtype    string
	DFIRatio   string // e.g. "1:8"
	DataWidth  int
	SysClkFreq float64
	IODelay    float64 // IODELAYCTRL reference frequency (Hz), 7-series only
}

// ControllerSettings is the explicit summary of the DRAM controller
// knobs exposed at runtime.
type ControllerSettings struct {
	WithRefresh       bool
	WithAutoPrecharge bool
	MaskedWrite       bool
}

// L2Settings sizes the L2 cache in front of the DRAM controller.
type L2Settings struct {
	Size         int
	MinDataWidth int
	Reverse      bool
}

// DRAM is a wired DRAM subsystem: module, PHY, controller and L2.
type DRAM struct {
	Module     DRAMModule
	PHY        PHYSettings
	Controller ControllerSettings
	L2         L2Settings
}

// Dump writes a human-readable summary of the DRAM settings to w.
func (dram *DRAM) Dump(w io.Writer) {
	fmt.Fprintf(w, "dram: %s (%s x%d)\n",
		dram.Module.Name, dram.Module.Memtype, dram.Module.DataWidth,
	)
	fmt.Fprintf(w, "  geom:       banks=%d rows=%d cols=%d\n",
		1<<uint(dram.Module.Geom.BankBits),
		1<<uint(dram.Module.Geom.RowBits),
		1<<uint(dram.Module.Geom.ColBits),
	)
	fmt.Fprintf(w, "  timings:    tRP=%gns tRCD=%gns tWR=%gns tRFC=%gns tREFI=%gns\n",
		dram.Module.Timings.TRP,
		dram.Module.Timings.TRCD,
		dram.Module.Timings.TWR,
		dram.Module.Timings.TRFC,
		dram.Module.Timings.TREFI,
	)
	fmt.Fprintf(w, "  phy:        dfi-ratio=%s sys-clk=%s\n",
		dram.PHY.DFIRatio, fmtMHz(dram.PHY.SysClkFreq),
	)
	fmt.Fprintf(w, "  controller: refresh=%v auto-precharge=%v masked-write=%v\n",
		dram.Controller.WithRefresh,
		dram.Controller.WithAutoPrecharge,
		dram.Controller.MaskedWrite,
	)
	fmt.Fprintf(w, "  l2:         size=%d min-data-width=%d\n",
		dram.L2.Size, dram.L2.MinDataWidth,
	)
}

func fmtMHz(freq float64) string {
	return fmt.Sprintf("%6.2f MHz", freq/1e6)
}

// AttachDRAM wires the DRAM subsystem: it claims the memory pins,
// maps main_ram and records the typed settings summary.
func (soc *SoC) AttachDRAM(pads string, mod DRAMModule, phy PHYSettings, ctrl ControllerSettings, l2 L2Settings) error {
	if soc.DRAM != nil {
		return fmt.Errorf("soc: dram already attached")
	}
	if phy.Memtype != mod.Memtype {
		return fmt.Errorf(
			"soc: PHY memtype %q does not match module %s (%s)",
			phy.Memtype, mod.Name, mod.Memtype,
		)
	}
	_, err := soc.Platform.Request(pads)
	if err != nil {
		return fmt.Errorf("soc: could not request dram pads: %w", err)
	}
	err = soc.AddRegion("main_ram", MainRAMBase, mod.Size())
	if err != nil {
		return err
	}
	soc.DRAM = &DRAM{
		Module:     mod,
		PHY:        phy,
		Controller: ctrl,
		L2:         l2,
	}
	return nil
}
