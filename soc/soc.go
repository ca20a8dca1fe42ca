// Copyright 2022 The go-hdl Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package soc composes systems-on-chip for FPGA targets: a board
// platform, a clock-reset generator and a closed set of optional IP
// blocks wired in from an explicit build configuration.
package soc // import "github.com/go-hdl/boards/soc"

import (
	"fmt"
	"io"

	"github.com/go-hdl/boards"
	"github.com/go-hdl/boards/bsp"
	"github.com/go-hdl/boards/clock"
)

// Config is the build configuration of a target. The set of optional
// blocks is closed: each flag maps to exactly one typed block.
type Config struct {
	SysClkFreq     float64
	IODelayClkFreq float64

	WithEthernet  bool
	WithEtherbone bool
	EthIP         string
	EthDynamicIP  bool

	WithHyperRAM bool
	WithSDCard   bool
	WithJTAGBone bool
	WithUARTBone bool

	RWBiosMem      bool
	MaskedWrite    bool
	L2Size         int
	NoIdentVersion bool
}

// Validate checks the configuration for inconsistent flag combinations.
func (cfg *Config) Validate() error {
	if cfg.SysClkFreq <= 0 {
		return fmt.Errorf("soc: invalid sys-clk-freq %v", cfg.SysClkFreq)
	}
	if cfg.WithEthernet && cfg.WithEtherbone {
		return fmt.Errorf("soc: ethernet and etherbone are mutually exclusive")
	}
	if cfg.WithEtherbone && cfg.EthDynamicIP {
		return fmt.Errorf("soc: etherbone needs a static IP address")
	}
	if cfg.L2Size < 0 {
		return fmt.Errorf("soc: invalid l2-size %d", cfg.L2Size)
	}
	return nil
}

// CRG is a clock-reset generator: the set of clock domains of the SoC
// and the solved PLL configuration that produces them.
type CRG interface {
	ClockDomains() []clock.ClockDomain
	DumpConfig(w io.Writer)
}

// Region is a named slice of the SoC address space. Mode is the CPU
// access mode of the region, "r" or "rw".
type Region struct {
	Name   string
	Origin uint64
	Size   uint64
	Mode   string
}

// Default memory map origins.
const (
	ROMBase      = 0x0000_0000
	SRAMBase     = 0x1000_0000
	HyperRAMBase = 0x2000_0000
	MainRAMBase  = 0x4000_0000
	CSRBase      = 0x8200_0000
)

// Ethernet is a wired Ethernet PHY block.
type Ethernet struct {
	PHY       string // "mii", "rgmii"
	RxDelay   float64
	Etherbone bool
	IP        string
	DynamicIP bool
}

// HyperRAM is a wired HyperRAM block.
type HyperRAM struct {
	Base uint64
	Size uint64
}

// SDCard is a wired SD-card block.
type SDCard struct{}

// JTAGBone is a wired JTAG debug bridge.
type JTAGBone struct{}

// UART is the console UART block.
type UART struct {
	Baudrate int
}

// UARTBone is a wired UART debug bridge.
type UARTBone struct {
	Baudrate int
}

// LedChaser is a wired LED chaser block.
type LedChaser struct {
	NLeds int
}

// PCIePHY is a wired PCIe SERDES block.
type PCIePHY struct {
	Lanes int
}

// SoC is a composed system-on-chip.
type SoC struct {
	Ident    string
	Version  string
	Platform *bsp.Platform
	CRG      CRG

	regions []Region

	DRAM     *DRAM
	Ethernet *Ethernet
	HyperRAM *HyperRAM
	SDCard   *SDCard
	JTAGBone *JTAGBone
	UART     *UART
	UARTBone *UARTBone
	Leds     *LedChaser
	PCIePHY  *PCIePHY
}

// New composes the SoC skeleton: platform, CRG and the base memory map.
// The integrated ROM holding the BIOS image is read-only unless
// remapped with SetROMWritable.
func New(ident string, p *bsp.Platform, crg CRG) (*SoC, error) {
	vers, _ := boards.Version()
	soc := &SoC{
		Ident:    ident,
		Version:  vers,
		Platform: p,
		CRG:      crg,
	}
	for _, region := range []Region{
		{Name: "rom", Origin: ROMBase, Size: 0x1_0000, Mode: "r"},
		{Name: "sram", Origin: SRAMBase, Size: 0x2000, Mode: "rw"},
		{Name: "csr", Origin: CSRBase, Size: 0x1_0000, Mode: "rw"},
	} {
		err := soc.addRegion(region)
		if err != nil {
			return nil, err
		}
	}
	return soc, nil
}

// AddRegion registers a read-write memory region, rejecting overlaps
// and duplicate names.
func (soc *SoC) AddRegion(name string, origin, size uint64) error {
	return soc.addRegion(Region{Name: name, Origin: origin, Size: size, Mode: "rw"})
}

func (soc *SoC) addRegion(reg Region) error {
	if reg.Size == 0 {
		return fmt.Errorf("soc: invalid size for region %q", reg.Name)
	}
	for _, region := range soc.regions {
		if region.Name == reg.Name {
			return fmt.Errorf("soc: region %q already defined", reg.Name)
		}
		if reg.Origin < region.Origin+region.Size && region.Origin < reg.Origin+reg.Size {
			return fmt.Errorf(
				"soc: region %q [0x%08x, 0x%08x) overlaps region %q [0x%08x, 0x%08x)",
				reg.Name, reg.Origin, reg.Origin+reg.Size,
				region.Name, region.Origin, region.Origin+region.Size,
			)
		}
	}
	soc.regions = append(soc.regions, reg)
	return nil
}

// SetROMWritable remaps the integrated ROM read-write, so the BIOS
// image can be reloaded at runtime without rebuilding the bitstream.
func (soc *SoC) SetROMWritable() error {
	for i, region := range soc.regions {
		if region.Name == "rom" {
			soc.regions[i].Mode = "rw"
			return nil
		}
	}
	return fmt.Errorf("soc: no rom region")
}

// Region returns the memory region with the given name.
func (soc *SoC) Region(name string) (Region, bool) {
	for _, region := range soc.regions {
		if region.Name == name {
			return region, true
		}
	}
	return Region{}, false
}

// Regions returns the memory map, in registration order.
func (soc *SoC) Regions() []Region {
	return soc.regions
}

// AttachEthernet wires an Ethernet PHY: it claims the clock and data
// pins and records the PHY settings.
func (soc *SoC) AttachEthernet(phy string, rxDelay float64, etherbone bool, ip string, dynamicIP bool) error {
	if soc.Ethernet != nil {
		return fmt.Errorf("soc: ethernet already attached")
	}
	_, err := soc.Platform.Request("eth_clocks")
	if err != nil {
		return fmt.Errorf("soc: could not request ethernet clock pads: %w", err)
	}
	_, err = soc.Platform.Request("eth")
	if err != nil {
		return fmt.Errorf("soc: could not request ethernet pads: %w", err)
	}
	soc.Ethernet = &Ethernet{
		PHY:       phy,
		RxDelay:   rxDelay,
		Etherbone: etherbone,
		IP:        ip,
		DynamicIP: dynamicIP,
	}
	return nil
}

// AttachHyperRAM wires a HyperRAM block and maps it.
func (soc *SoC) AttachHyperRAM(size uint64) error {
	if soc.HyperRAM != nil {
		return fmt.Errorf("soc: hyperram already attached")
	}
	_, err := soc.Platform.Request("hyperram")
	if err != nil {
		return fmt.Errorf("soc: could not request hyperram pads: %w", err)
	}
	err = soc.AddRegion("hyperram", HyperRAMBase, size)
	if err != nil {
		return err
	}
	soc.HyperRAM = &HyperRAM{Base: HyperRAMBase, Size: size}
	return nil
}

// AttachSDCard wires an SD-card block.
func (soc *SoC) AttachSDCard() error {
	if soc.SDCard != nil {
		return fmt.Errorf("soc: sdcard already attached")
	}
	soc.SDCard = &SDCard{}
	return nil
}

// AttachJTAGBone wires the JTAG debug bridge.
func (soc *SoC) AttachJTAGBone() error {
	if soc.JTAGBone != nil {
		return fmt.Errorf("soc: jtagbone already attached")
	}
	soc.JTAGBone = &JTAGBone{}
	return nil
}

// AttachUART wires the console UART on the next free serial port.
// It is attached before any UARTBone, so the console owns the first
// serial and the debug bridge the next one.
func (soc *SoC) AttachUART(baudrate int) error {
	if soc.UART != nil {
		return fmt.Errorf("soc: uart already attached")
	}
	_, err := soc.Platform.Request("serial")
	if err != nil {
		return fmt.Errorf("soc: could not request uart serial pads: %w", err)
	}
	soc.UART = &UART{Baudrate: baudrate}
	return nil
}

// AttachUARTBone wires the UART debug bridge on the next free serial
// port.
func (soc *SoC) AttachUARTBone(baudrate int) error {
	if soc.UARTBone != nil {
		return fmt.Errorf("soc: uartbone already attached")
	}
	_, err := soc.Platform.Request("serial")
	if err != nil {
		return fmt.Errorf("soc: could not request uartbone serial pads: %w", err)
	}
	soc.UARTBone = &UARTBone{Baudrate: baudrate}
	return nil
}

// AttachLeds wires an LED chaser on all user leds.
func (soc *SoC) AttachLeds() error {
	if soc.Leds != nil {
		return fmt.Errorf("soc: leds already attached")
	}
	leds, err := soc.Platform.RequestAll("user_led")
	if err != nil {
		return fmt.Errorf("soc: could not request leds: %w", err)
	}
	soc.Leds = &LedChaser{NLeds: len(leds)}
	return nil
}

// AttachPCIePHY wires the PCIe SERDES pins.
func (soc *SoC) AttachPCIePHY(lanes int) error {
	if soc.PCIePHY != nil {
		return fmt.Errorf("soc: pcie phy already attached")
	}
	_, err := soc.Platform.Request(fmt.Sprintf("pcie_x%d", lanes))
	if err != nil {
		return fmt.Errorf("soc: could not request pcie pads: %w", err)
	}
	soc.PCIePHY = &PCIePHY{Lanes: lanes}
	return nil
}

// Dump writes a human-readable summary of the composed SoC to w.
func (soc *SoC) Dump(w io.Writer) {
	ident := soc.Ident
	if soc.Version != "" {
		ident += " " + soc.Version
	}
	fmt.Fprintf(w, "ident: %s\n", ident)
	fmt.Fprintf(w, "device: %s (%s)\n", soc.Platform.Device, soc.Platform.Toolchain)
	for _, cd := range soc.CRG.ClockDomains() {
		fmt.Fprintf(w, "clock-domain: %-12s reset-less=%v\n", cd.Name, cd.ResetLess)
	}
	soc.CRG.DumpConfig(w)
	for _, region := range soc.regions {
		fmt.Fprintf(w, "mem-region: %-10s origin=0x%08x size=0x%08x mode=%s\n",
			region.Name, region.Origin, region.Size, region.Mode,
		)
	}
	if soc.DRAM != nil {
		soc.DRAM.Dump(w)
	}
	if soc.Ethernet != nil {
		fmt.Fprintf(w, "ethernet: phy=%s etherbone=%v\n", soc.Ethernet.PHY, soc.Ethernet.Etherbone)
	}
	if soc.HyperRAM != nil {
		fmt.Fprintf(w, "hyperram: base=0x%08x size=0x%08x\n", soc.HyperRAM.Base, soc.HyperRAM.Size)
	}
	if soc.UART != nil {
		fmt.Fprintf(w, "uart: baudrate=%d\n", soc.UART.Baudrate)
	}
	if soc.UARTBone != nil {
		fmt.Fprintf(w, "uartbone: baudrate=%d\n", soc.UARTBone.Baudrate)
	}
}
