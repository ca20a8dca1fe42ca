// Copyright 2022 The go-hdl Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-hdl/boards/soc"
	"github.com/go-hdl/boards/targets/lpddr4tb"
)

func TestParseScanRange(t *testing.T) {
	for _, tc := range []struct {
		arg  string
		want [3]float64
		err  string
	}{
		{
			arg:  "40e6,60e6,5e6",
			want: [3]float64{40e6, 60e6, 5e6},
		},
		{
			arg:  "40e6, 60e6, 5e6",
			want: [3]float64{40e6, 60e6, 5e6},
		},
		{
			arg: "40e6,60e6",
			err: `invalid scan range "40e6,60e6" (want "fmin,fmax,fstep")`,
		},
		{
			arg: "a,b,c",
			err: `invalid scan range "a,b,c": strconv.ParseFloat: parsing "a": invalid syntax`,
		},
	} {
		t.Run(tc.arg, func(t *testing.T) {
			fmin, fmax, fstep, err := parseScanRange(tc.arg)
			if tc.err != "" {
				if err == nil {
					t.Fatalf("expected an error (%s)", tc.err)
				}
				if got, want := err.Error(), tc.err; got != want {
					t.Fatalf("invalid error:\ngot= %v\nwant=%v", got, want)
				}
				return
			}
			if err != nil {
				t.Fatalf("could not parse %q: %+v", tc.arg, err)
			}
			if got := [3]float64{fmin, fmax, fstep}; got != tc.want {
				t.Fatalf("invalid range: got=%v, want=%v", got, tc.want)
			}
		})
	}
}

func TestScan(t *testing.T) {
	out := new(strings.Builder)
	err := scan(out, "40e6,60e6,10e6", lpddr4tb.DefaultIODelayClkFreq)
	if err != nil {
		t.Fatalf("could not scan: %+v", err)
	}
	if !strings.Contains(out.String(), "Found PLL configs for:") {
		t.Fatalf("invalid report:\n%s", out.String())
	}
}

func TestRun(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "build")
	out := new(strings.Builder)
	cfg := soc.Config{
		SysClkFreq:   lpddr4tb.DefaultSysClkFreq,
		WithJTAGBone: true,
		MaskedWrite:  true,
		L2Size:       8192,
	}

	err := run(out, cfg, dir, "", "openFPGALoader", false, false)
	if err != nil {
		t.Fatalf("could not run: %+v", err)
	}
	if !strings.Contains(out.String(), "ident: SoC on LPDDR4 Test Board") {
		t.Fatalf("invalid dump:\n%s", out.String())
	}
	if _, err := os.Stat(filepath.Join(dir, "soc_on_lpddr4_test_board.tcl")); err != nil {
		t.Fatalf("missing generated script: %+v", err)
	}
}

func TestRunInvalidConfig(t *testing.T) {
	err := run(new(strings.Builder), soc.Config{}, t.TempDir(), "", "", false, false)
	if err == nil {
		t.Fatalf("expected an error")
	}
}
