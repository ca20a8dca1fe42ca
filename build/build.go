// Copyright 2022 The go-hdl Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package build drives the FPGA toolchain for a composed SoC: it
// generates constraint files and build scripts, and runs the gateware
// and software builds as external processes.
package build // import "github.com/go-hdl/boards/build"

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/sbinet/pmon"
	"golang.org/x/sync/errgroup"

	"github.com/go-hdl/boards/soc"
)

// Builder generates the toolchain inputs for a SoC and runs the build.
type Builder struct {
	soc  *soc.SoC
	dir  string
	opts Options

	msg *log.Logger
}

// New creates a builder for the given SoC, writing its outputs under
// dir.
func New(sc *soc.SoC, dir string, opts Options) *Builder {
	return &Builder{
		soc:  sc,
		dir:  dir,
		opts: opts.withDefaults(),
		msg:  log.New(os.Stdout, "build: ", 0),
	}
}

// Build generates the toolchain inputs and runs the gateware build,
// together with the software build when one is configured.
func (b *Builder) Build(ctx context.Context) error {
	script, err := b.Generate()
	if err != nil {
		return err
	}

	gw := b.opts.Gateware
	if gw.Bin == "" {
		gw = defaultGateware(b.soc.Platform.Toolchain, filepath.Base(script))
	}

	var grp errgroup.Group
	grp.Go(func() error {
		return b.runStep(ctx, "gateware", gw)
	})
	if b.opts.Software.Bin != "" {
		sw := b.opts.Software
		grp.Go(func() error {
			return b.runStep(ctx, "software", sw)
		})
	}

	err = grp.Wait()
	if err != nil {
		return fmt.Errorf("build: could not build %q: %w", b.Name(), err)
	}
	return nil
}

// Load programs the bitstream onto the board with the given external
// programmer.
func (b *Builder) Load(ctx context.Context, prog string, args ...string) error {
	if prog == "" {
		return fmt.Errorf("build: no programmer configured")
	}
	return b.runStep(ctx, "load", Step{Bin: prog, Args: args})
}

func defaultGateware(toolchain, script string) Step {
	switch toolchain {
	case "vivado":
		return Step{Bin: "vivado", Args: []string{"-mode", "batch", "-source", script}}
	default:
		return Step{Bin: "sh", Args: []string{script}}
	}
}

func (b *Builder) runStep(ctx context.Context, name string, step Step) error {
	cmd := exec.CommandContext(ctx, step.Bin, step.Args...)
	cmd.Dir = b.dir

	out, err := os.Create(filepath.Join(b.dir, name+".log"))
	if err != nil {
		return fmt.Errorf("could not create output log file for %q: %w", name, err)
	}
	defer out.Close()

	cmd.Stdout = out
	cmd.Stderr = out

	b.msg.Printf("running %q step: %s...", name, step.Bin)
	err = cmd.Start()
	if err != nil {
		return fmt.Errorf("could not start %q: %w", name, err)
	}

	if b.opts.Monitor {
		p, err := pmon.Monitor(cmd.Process.Pid)
		if err != nil {
			return fmt.Errorf("could not start monitoring %q (pid=%d): %w", name, cmd.Process.Pid, err)
		}
		f, err := os.Create(filepath.Join(b.dir, name+"-pmon.log"))
		if err != nil {
			return fmt.Errorf("could not create pmon log file for %q: %w", name, err)
		}
		defer f.Close()
		p.W = f
		p.Freq = b.opts.Freq

		go func() {
			err := p.Run()
			if err != nil {
				b.msg.Printf("could not monitor %q: %+v", name, err)
			}
		}()

		defer func() {
			err := p.Kill()
			if err != nil {
				b.msg.Printf("could not stop monitoring %q: %+v", name, err)
			}
		}()
	}

	err = cmd.Wait()
	if err != nil {
		return fmt.Errorf("could not run %q: %w", name, err)
	}
	return nil
}
