// Copyright 2022 The go-hdl Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package build

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-hdl/boards/soc"
	"github.com/go-hdl/boards/targets/ecp5dcscm"
	"github.com/go-hdl/boards/targets/lpddr4tb"
)

func TestLoadOptions(t *testing.T) {
	fname := filepath.Join(t.TempDir(), "build.yaml")
	err := os.WriteFile(fname, []byte(`
gateware:
  bin: vivado
  args: [-mode, batch, -source, top.tcl]
software:
  bin: make
  args: [-C, software]
jobs: 8
monitor: true
monitor-freq: 2s
`), 0644)
	if err != nil {
		t.Fatalf("could not write options file: %+v", err)
	}

	opts, err := LoadOptions(fname)
	if err != nil {
		t.Fatalf("could not load options: %+v", err)
	}
	if got, want := opts.Gateware.Bin, "vivado"; got != want {
		t.Fatalf("invalid gateware bin: got=%q, want=%q", got, want)
	}
	if got, want := strings.Join(opts.Gateware.Args, " "), "-mode batch -source top.tcl"; got != want {
		t.Fatalf("invalid gateware args: got=%q, want=%q", got, want)
	}
	if got, want := opts.Software.Bin, "make"; got != want {
		t.Fatalf("invalid software bin: got=%q, want=%q", got, want)
	}
	if got, want := opts.Jobs, 8; got != want {
		t.Fatalf("invalid jobs: got=%d, want=%d", got, want)
	}
	if !opts.Monitor {
		t.Fatalf("monitoring must be enabled")
	}
	if got, want := opts.Freq, 2*time.Second; got != want {
		t.Fatalf("invalid monitor freq: got=%v, want=%v", got, want)
	}
}

func TestLoadOptionsDefaults(t *testing.T) {
	fname := filepath.Join(t.TempDir(), "build.yaml")
	err := os.WriteFile(fname, []byte("gateware:\n  bin: vivado\n"), 0644)
	if err != nil {
		t.Fatalf("could not write options file: %+v", err)
	}

	opts, err := LoadOptions(fname)
	if err != nil {
		t.Fatalf("could not load options: %+v", err)
	}
	if got, want := opts.Jobs, 4; got != want {
		t.Fatalf("invalid default jobs: got=%d, want=%d", got, want)
	}
	if got, want := opts.Freq, 1*time.Second; got != want {
		t.Fatalf("invalid default monitor freq: got=%v, want=%v", got, want)
	}
}

func TestLoadOptionsInvalid(t *testing.T) {
	fname := filepath.Join(t.TempDir(), "build.yaml")
	err := os.WriteFile(fname, []byte(":\n not yaml"), 0644)
	if err != nil {
		t.Fatalf("could not write options file: %+v", err)
	}

	_, err = LoadOptions(fname)
	if err == nil {
		t.Fatalf("expected an error")
	}

	_, err = LoadOptions(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err == nil {
		t.Fatalf("expected an error")
	}
}

func newVivadoSoC(t *testing.T) *soc.SoC {
	t.Helper()
	sc, err := lpddr4tb.BaseSoC(soc.Config{
		SysClkFreq: lpddr4tb.DefaultSysClkFreq,
		L2Size:     8192,
	})
	if err != nil {
		t.Fatalf("could not compose soc: %+v", err)
	}
	return sc
}

func TestBuilderName(t *testing.T) {
	b := New(newVivadoSoC(t), t.TempDir(), Options{})
	if got, want := b.Name(), "soc_on_lpddr4_test_board"; got != want {
		t.Fatalf("invalid build name: got=%q, want=%q", got, want)
	}
}

func TestGenerateVivado(t *testing.T) {
	dir := t.TempDir()
	b := New(newVivadoSoC(t), dir, Options{Jobs: 8})

	script, err := b.Generate()
	if err != nil {
		t.Fatalf("could not generate build files: %+v", err)
	}
	if got, want := script, filepath.Join(dir, "soc_on_lpddr4_test_board.tcl"); got != want {
		t.Fatalf("invalid script path: got=%q, want=%q", got, want)
	}

	tcl, err := os.ReadFile(script)
	if err != nil {
		t.Fatalf("could not read script: %+v", err)
	}
	for _, want := range []string{
		"create_project soc_on_lpddr4_test_board -force -part xc7k70tfbg484-1",
		"read_xdc {soc_on_lpddr4_test_board.xdc}",
		"launch_runs synth_1 -jobs 8",
		"launch_runs impl_1 -to_step write_bitstream -jobs 8",
	} {
		if !strings.Contains(string(tcl), want) {
			t.Fatalf("missing %q in script:\n%s", want, tcl)
		}
	}

	xdc, err := os.ReadFile(filepath.Join(dir, "soc_on_lpddr4_test_board.xdc"))
	if err != nil {
		t.Fatalf("could not read constraints: %+v", err)
	}
	if !strings.Contains(string(xdc), "create_clock -name clk100") {
		t.Fatalf("missing clock constraint in:\n%s", xdc)
	}
}

func TestGenerateTrellis(t *testing.T) {
	sc, err := ecp5dcscm.BaseSoC(soc.Config{
		SysClkFreq: ecp5dcscm.DefaultSysClkFreq,
		L2Size:     8192,
	}, "trellis")
	if err != nil {
		t.Fatalf("could not compose soc: %+v", err)
	}

	dir := t.TempDir()
	b := New(sc, dir, Options{})

	script, err := b.Generate()
	if err != nil {
		t.Fatalf("could not generate build files: %+v", err)
	}

	sh, err := os.ReadFile(script)
	if err != nil {
		t.Fatalf("could not read script: %+v", err)
	}
	name := "soc_on_ecp5_dc_scm"
	for _, want := range []string{
		`yosys -p "synth_ecp5 -top ` + name + " -json " + name + `.json"`,
		"nextpnr-ecp5 --json " + name + ".json",
		"--lpf " + name + ".lpf",
		"ecppack " + name + ".config",
	} {
		if !strings.Contains(string(sh), want) {
			t.Fatalf("missing %q in script:\n%s", want, sh)
		}
	}

	if _, err := os.Stat(filepath.Join(dir, name+".lpf")); err != nil {
		t.Fatalf("missing constraints file: %+v", err)
	}
}

func TestBuild(t *testing.T) {
	dir := t.TempDir()
	b := New(newVivadoSoC(t), dir, Options{
		Gateware: Step{Bin: "sh", Args: []string{"-c", "echo gateware-ok"}},
		Software: Step{Bin: "sh", Args: []string{"-c", "echo software-ok"}},
	})

	err := b.Build(context.Background())
	if err != nil {
		t.Fatalf("could not build: %+v", err)
	}

	for _, tc := range []struct {
		log  string
		want string
	}{
		{"gateware.log", "gateware-ok"},
		{"software.log", "software-ok"},
	} {
		out, err := os.ReadFile(filepath.Join(dir, tc.log))
		if err != nil {
			t.Fatalf("could not read %s: %+v", tc.log, err)
		}
		if !strings.Contains(string(out), tc.want) {
			t.Fatalf("missing %q in %s:\n%s", tc.want, tc.log, out)
		}
	}
}

func TestBuildFailure(t *testing.T) {
	b := New(newVivadoSoC(t), t.TempDir(), Options{
		Gateware: Step{Bin: "sh", Args: []string{"-c", "exit 1"}},
	})

	err := b.Build(context.Background())
	if err == nil {
		t.Fatalf("expected an error")
	}
	if !strings.Contains(err.Error(), `could not build "soc_on_lpddr4_test_board"`) {
		t.Fatalf("invalid error: %v", err)
	}
}

func TestLoadNoProgrammer(t *testing.T) {
	b := New(newVivadoSoC(t), t.TempDir(), Options{})
	err := b.Load(context.Background(), "")
	if err == nil {
		t.Fatalf("expected an error")
	}
}
