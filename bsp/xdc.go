// Copyright 2022 The go-hdl Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bsp

import (
	"bufio"
	"fmt"
	"io"
	"sort"
)

// WriteXDC writes the Vivado constraints for the requested resources
// of the platform to w.
func (p *Platform) WriteXDC(w io.Writer) error {
	var (
		buf    = bufio.NewWriter(w)
		err    error
		printf = func(format string, args ...interface{}) {
			if err != nil {
				return
			}
			_, err = fmt.Fprintf(buf, format, args...)
		}
	)

	printf("# Generated constraints. Do not edit.\n")
	for _, res := range p.requested {
		printf("\n# %s\n", res.PortName())
		xdcPins(printf, res.PortName(), res.Pins, res.IOStandard, res.Misc)
		for _, sub := range res.Subsignals {
			iostd := sub.IOStandard
			if iostd == "" {
				iostd = res.IOStandard
			}
			misc := append(append([]Misc{}, res.Misc...), sub.Misc...)
			xdcPins(printf, res.PortName()+"_"+sub.Name, sub.Pins, iostd, misc)
		}
	}

	ports := make([]string, 0, len(p.periods))
	for port := range p.periods {
		ports = append(ports, port)
	}
	sort.Strings(ports)
	if len(ports) > 0 {
		printf("\n# clocks\n")
	}
	for _, port := range ports {
		printf("create_clock -name %[1]s -period %.3f [get_ports {%[1]s}]\n",
			port, p.periods[port],
		)
	}

	if err != nil {
		return fmt.Errorf("bsp: could not write XDC constraints: %w", err)
	}
	err = buf.Flush()
	if err != nil {
		return fmt.Errorf("bsp: could not write XDC constraints: %w", err)
	}
	return nil
}

func xdcPins(printf func(format string, args ...interface{}), port string, pins []string, iostd IOStandard, misc []Misc) {
	for i, pin := range pins {
		name := port
		if len(pins) > 1 {
			name = fmt.Sprintf("%s[%d]", port, i)
		}
		if pin != "" {
			printf("set_property LOC %s [get_ports {%s}]\n", pin, name)
		}
		if iostd != "" {
			printf("set_property IOSTANDARD %s [get_ports {%s}]\n", iostd, name)
		}
		for _, m := range misc {
			key, value := splitMisc(m)
			if value == "" {
				value = "TRUE"
			}
			printf("set_property %s %s [get_ports {%s}]\n", key, value, name)
		}
	}
}
