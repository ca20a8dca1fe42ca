// Copyright 2022 The go-hdl Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package build

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Step is one external toolchain invocation.
type Step struct {
	Bin  string   `yaml:"bin"`
	Args []string `yaml:"args"`
}

// Options configure the toolchain invocations of a Builder.
type Options struct {
	Gateware Step          `yaml:"gateware"`
	Software Step          `yaml:"software"`
	Jobs     int           `yaml:"jobs"`
	Monitor  bool          `yaml:"monitor"`
	Freq     time.Duration `yaml:"monitor-freq"`
}

// LoadOptions reads builder options from a YAML file.
func LoadOptions(fname string) (Options, error) {
	var opts Options
	raw, err := os.ReadFile(fname)
	if err != nil {
		return opts, fmt.Errorf("build: could not read options file: %w", err)
	}
	err = yaml.Unmarshal(raw, &opts)
	if err != nil {
		return opts, fmt.Errorf("build: could not parse options file %q: %w", fname, err)
	}
	return opts.withDefaults(), nil
}

func (opts Options) withDefaults() Options {
	if opts.Jobs <= 0 {
		opts.Jobs = 4
	}
	if opts.Freq <= 0 {
		opts.Freq = 1 * time.Second
	}
	return opts
}
