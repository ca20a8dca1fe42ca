// Copyright 2022 The go-hdl Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command lpddr4-tb composes, builds and loads the SoC for the LPDDR4
// test board.
package main // import "github.com/go-hdl/boards/cmd/lpddr4-tb"

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/go-hdl/boards/build"
	"github.com/go-hdl/boards/soc"
	"github.com/go-hdl/boards/targets/lpddr4tb"
)

func main() {
	log.SetPrefix("lpddr4-tb: ")
	log.SetFlags(0)

	var (
		doBuild = flag.Bool("build", false, "build the bitstream")
		doLoad  = flag.Bool("load", false, "load the bitstream")
		dir     = flag.String("build-dir", "build", "build output directory")
		cfgFile = flag.String("config", "", "path to a YAML builder options file")
		prog    = flag.String("prog", "openFPGALoader", "bitstream programmer")

		sysClkFreq     = flag.Float64("sys-clk-freq", lpddr4tb.DefaultSysClkFreq, "system clock frequency (Hz)")
		iodelayClkFreq = flag.Float64("iodelay-clk-freq", lpddr4tb.DefaultIODelayClkFreq, "IODELAYCTRL frequency (Hz)")
		scanPLL        = flag.String("scan-pll", "", "scan for available PLL configs in sysclk frequency range (fmin,fmax,fstep)")

		withEthernet  = flag.Bool("with-ethernet", false, "add Ethernet")
		withEtherbone = flag.Bool("with-etherbone", false, "add EtherBone")
		ethIP         = flag.String("eth-ip", "192.168.1.50", "Ethernet/EtherBone IP address")
		ethDynamicIP  = flag.Bool("eth-dynamic-ip", false, "enable dynamic Ethernet IP addresses setting")
		withHyperRAM  = flag.Bool("with-hyperram", false, "add HyperRAM")
		withSDCard    = flag.Bool("with-sdcard", false, "add SDCard")
		withJTAGBone  = flag.Bool("with-jtagbone", true, "add JTAGBone")
		withUARTBone  = flag.Bool("with-uartbone", false, "add UartBone on 2nd serial")

		rwBiosMem     = flag.Bool("rw-bios-mem", false, "make BIOS memory writable")
		noMaskedWrite = flag.Bool("no-masked-write", false, "use LPDDR4 WRITE instead of MASKED-WRITE")
		l2Size        = flag.Int("l2-size", 8192, "L2 cache size (bytes)")
		noIdentVers   = flag.Bool("no-ident-version", false, "disable version output in the SoC identifier")
	)
	flag.Parse()

	if *scanPLL != "" {
		err := scan(os.Stdout, *scanPLL, *iodelayClkFreq)
		if err != nil {
			log.Fatalf("%+v", err)
		}
		return
	}

	cfg := soc.Config{
		SysClkFreq:     *sysClkFreq,
		IODelayClkFreq: *iodelayClkFreq,
		WithEthernet:   *withEthernet,
		WithEtherbone:  *withEtherbone,
		EthIP:          *ethIP,
		EthDynamicIP:   *ethDynamicIP,
		WithHyperRAM:   *withHyperRAM,
		WithSDCard:     *withSDCard,
		WithJTAGBone:   *withJTAGBone,
		WithUARTBone:   *withUARTBone,
		RWBiosMem:      *rwBiosMem,
		MaskedWrite:    !*noMaskedWrite,
		L2Size:         *l2Size,
		NoIdentVersion: *noIdentVers,
	}

	err := run(os.Stdout, cfg, *dir, *cfgFile, *prog, *doBuild, *doLoad)
	if err != nil {
		log.Fatalf("%+v", err)
	}
}

func scan(w io.Writer, arg string, iodelayClkFreq float64) error {
	fmin, fmax, fstep, err := parseScanRange(arg)
	if err != nil {
		return err
	}
	return lpddr4tb.ScanPLL(w, fmin, fmax, fstep, iodelayClkFreq)
}

func parseScanRange(arg string) (fmin, fmax, fstep float64, err error) {
	toks := strings.Split(arg, ",")
	if len(toks) != 3 {
		return 0, 0, 0, fmt.Errorf("invalid scan range %q (want \"fmin,fmax,fstep\")", arg)
	}
	for i, dst := range []*float64{&fmin, &fmax, &fstep} {
		v, err := strconv.ParseFloat(strings.TrimSpace(toks[i]), 64)
		if err != nil {
			return 0, 0, 0, fmt.Errorf("invalid scan range %q: %w", arg, err)
		}
		*dst = v
	}
	return fmin, fmax, fstep, nil
}

func run(w io.Writer, cfg soc.Config, dir, cfgFile, prog string, doBuild, doLoad bool) error {
	sc, err := lpddr4tb.BaseSoC(cfg)
	if err != nil {
		return err
	}
	sc.Dump(w)

	var opts build.Options
	if cfgFile != "" {
		opts, err = build.LoadOptions(cfgFile)
		if err != nil {
			return err
		}
	}
	b := build.New(sc, dir, opts)

	ctx := context.Background()
	switch {
	case doBuild:
		err = b.Build(ctx)
		if err != nil {
			return err
		}
	default:
		_, err = b.Generate()
		if err != nil {
			return err
		}
	}

	if doLoad {
		err = b.Load(ctx, prog, b.Name()+".bit")
		if err != nil {
			return err
		}
	}
	return nil
}
