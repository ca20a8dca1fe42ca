// Copyright 2022 The go-hdl Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package build

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/template"
)

var (
	// vivadoTpl drives the whole Vivado flow, from project creation to
	// bitstream, in one batch script.
	vivadoTpl = template.Must(template.New("vivado").Parse(
		`# GENERATED FILE, DO NOT EDIT
# Project TCL file
# Project name: "{{.Name}}"
# Part:         "{{.Part}}"

create_project {{.Name}} -force -part {{.Part}}

# Constraints files
# Ordering is important here.
{{- range .Constraints}}
read_xdc {{"{"}}{{.}}{{"}"}}
{{- end}}

set_property top {{.Top}} [current_fileset]

launch_runs synth_1 -jobs {{.Jobs}}
wait_on_run synth_1
exit [regexp -nocase -- {synth_design (error|failed)} [get_property STATUS [get_runs synth_1]] match]

launch_runs impl_1 -to_step write_bitstream -jobs {{.Jobs}}
wait_on_run impl_1

# end
`))

	// trellisTpl chains the open-source ECP5 flow.
	trellisTpl = template.Must(template.New("trellis").Parse(
		`# GENERATED FILE, DO NOT EDIT
# Project build script
# Project name: "{{.Name}}"
# Part:         "{{.Part}}"

yosys -p "synth_ecp5 -top {{.Top}} -json {{.Name}}.json" {{.Top}}.v
nextpnr-ecp5 --json {{.Name}}.json --textcfg {{.Name}}.config --um5g-85k --package CABGA756
{{- range .Constraints}} --lpf {{.}}{{- end}}
ecppack {{.Name}}.config --svf {{.Name}}.svf --bit {{.Name}}.bit

# end
`))
)

type binding struct {
	Name        string
	Part        string
	Top         string
	Constraints []string
	Jobs        int
}

// Name returns the file-system name of the build, derived from the SoC
// identifier.
func (b *Builder) Name() string {
	name := strings.ToLower(b.soc.Ident)
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		default:
			return '_'
		}
	}, name)
	return name
}

// Generate writes the constraint file and the toolchain build script
// into the build directory. It returns the path of the build script.
func (b *Builder) Generate() (string, error) {
	err := os.MkdirAll(b.dir, 0755)
	if err != nil {
		return "", fmt.Errorf("build: could not create build directory: %w", err)
	}

	var (
		name = b.Name()
		p    = b.soc.Platform
	)

	bind := binding{
		Name: name,
		Part: p.Device,
		Top:  name,
		Jobs: b.opts.Jobs,
	}

	switch p.Toolchain {
	case "vivado":
		cst := name + ".xdc"
		err = writeFile(filepath.Join(b.dir, cst), p.WriteXDC)
		if err != nil {
			return "", err
		}
		bind.Constraints = []string{cst}

		script := filepath.Join(b.dir, name+".tcl")
		err = writeTemplate(script, vivadoTpl, bind)
		if err != nil {
			return "", err
		}
		return script, nil

	case "trellis", "diamond":
		cst := name + ".lpf"
		err = writeFile(filepath.Join(b.dir, cst), p.WriteLPF)
		if err != nil {
			return "", err
		}
		bind.Constraints = []string{cst}

		script := filepath.Join(b.dir, name+".sh")
		err = writeTemplate(script, trellisTpl, bind)
		if err != nil {
			return "", err
		}
		return script, nil

	default:
		return "", fmt.Errorf("build: unknown toolchain %q", p.Toolchain)
	}
}

func writeFile(fname string, write func(w io.Writer) error) error {
	f, err := os.Create(fname)
	if err != nil {
		return fmt.Errorf("build: could not create %q: %w", fname, err)
	}
	defer f.Close()

	err = write(f)
	if err != nil {
		return fmt.Errorf("build: could not write %q: %w", fname, err)
	}
	err = f.Close()
	if err != nil {
		return fmt.Errorf("build: could not close %q: %w", fname, err)
	}
	return nil
}

func writeTemplate(fname string, tpl *template.Template, bind binding) error {
	f, err := os.Create(fname)
	if err != nil {
		return fmt.Errorf("build: could not create %q: %w", fname, err)
	}
	defer f.Close()

	err = tpl.Execute(f, bind)
	if err != nil {
		return fmt.Errorf("build: could not generate %q: %w", fname, err)
	}
	err = f.Close()
	if err != nil {
		return fmt.Errorf("build: could not close %q: %w", fname, err)
	}
	return nil
}
