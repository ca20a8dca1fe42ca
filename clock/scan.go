// Copyright 2022 The go-hdl Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package clock

import (
	"errors"
	"fmt"
	"io"
	"math"
)

// Result records the outcome of one scanned candidate frequency.
type Result struct {
	Freq float64 // Hz
	OK   bool
}

// Scan sweeps candidate frequencies fmin + i*fstep for
// i = 0 .. floor((fmax-fmin)/fstep)-1 and calls try for each of them.
// try builds a fresh clock-domain set at the candidate frequency and
// finalizes it: a nil return records a success; an error wrapping
// ErrNoConfig records a failure and the scan continues; any other
// error aborts the scan, since it signals a defect in the domain
// setup rather than an infeasible frequency.
func Scan(fmin, fmax, fstep float64, try func(freq float64) error) ([]Result, error) {
	switch {
	case fmin <= 0 || fmax <= 0 || fstep <= 0:
		return nil, fmt.Errorf(
			"clock: invalid scan parameters (fmin=%v, fmax=%v, fstep=%v)",
			fmin, fmax, fstep,
		)
	case fmin >= fmax:
		return nil, fmt.Errorf(
			"clock: invalid scan range [%s, %s]",
			fmtMHz(fmin), fmtMHz(fmax),
		)
	}

	n := int(math.Floor((fmax - fmin) / fstep))
	results := make([]Result, 0, n)
	for i := 0; i < n; i++ {
		freq := fmin + float64(i)*fstep
		err := try(freq)
		switch {
		case err == nil:
			results = append(results, Result{Freq: freq, OK: true})
		case errors.Is(err, ErrNoConfig):
			results = append(results, Result{Freq: freq, OK: false})
		default:
			return results, fmt.Errorf(
				"clock: could not scan f=%s: %w",
				fmtMHz(freq), err,
			)
		}
	}
	return results, nil
}

// Bands partitions the successful frequencies of a scan into maximal
// runs of contiguous candidates. Two successful frequencies belong to
// the same band when they are at most one step apart, with a small
// tolerance to absorb floating-point drift in the candidate ladder.
func Bands(results []Result, fstep float64) [][2]float64 {
	var (
		bands [][2]float64
		prev  = math.Inf(-1)
	)
	for _, res := range results {
		if !res.OK {
			continue
		}
		if res.Freq-prev > fstep*1.001 {
			bands = append(bands, [2]float64{res.Freq, res.Freq})
		} else {
			bands[len(bands)-1][1] = res.Freq
		}
		prev = res.Freq
	}
	return bands
}

// WriteReport writes the scan outcome to w: one progress rune per
// candidate ('.' success, 'X' failure) followed by the successful
// frequencies grouped into contiguous bands.
func WriteReport(w io.Writer, results []Result, fstep float64) error {
	var err error
	printf := func(format string, args ...interface{}) {
		if err != nil {
			return
		}
		_, err = fmt.Fprintf(w, format, args...)
	}

	for _, res := range results {
		switch {
		case res.OK:
			printf(".")
		default:
			printf("X")
		}
	}
	printf("\nFound PLL configs for:\n")
	for _, band := range Bands(results, fstep) {
		printf("---\n")
		printf("  sys_clk_freq = %s - %s\n", fmtMHz(band[0]), fmtMHz(band[1]))
	}
	if err != nil {
		return fmt.Errorf("clock: could not write scan report: %w", err)
	}
	return nil
}
