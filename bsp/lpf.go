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

// WriteLPF writes the Lattice (Trellis/Diamond) constraints for the
// requested resources of the platform to w.
func (p *Platform) WriteLPF(w io.Writer) error {
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
	printf("BLOCK RESETPATHS;\n")
	printf("BLOCK ASYNCPATHS;\n")
	for _, res := range p.requested {
		printf("\n# %s\n", res.PortName())
		lpfPins(printf, res.PortName(), res.Pins, res.IOStandard, res.Misc)
		for _, sub := range res.Subsignals {
			iostd := sub.IOStandard
			if iostd == "" {
				iostd = res.IOStandard
			}
			misc := append(append([]Misc{}, res.Misc...), sub.Misc...)
			lpfPins(printf, res.PortName()+"_"+sub.Name, sub.Pins, iostd, misc)
		}
	}

	ports := make([]string, 0, len(p.periods))
	for port := range p.periods {
		ports = append(ports, port)
	}
	sort.Strings(ports)
	for _, port := range ports {
		printf("\nFREQUENCY PORT \"%s\" %g MHZ;\n", port, 1e3/p.periods[port])
	}

	if err != nil {
		return fmt.Errorf("bsp: could not write LPF constraints: %w", err)
	}
	err = buf.Flush()
	if err != nil {
		return fmt.Errorf("bsp: could not write LPF constraints: %w", err)
	}
	return nil
}

func lpfPins(printf func(format string, args ...interface{}), port string, pins []string, iostd IOStandard, misc []Misc) {
	for i, pin := range pins {
		name := port
		if len(pins) > 1 {
			name = fmt.Sprintf("%s[%d]", port, i)
		}
		if pin != "" {
			printf("LOCATE COMP \"%s\" SITE \"%s\";\n", name, pin)
		}
		attrs := fmt.Sprintf("IO_TYPE=%s", iostd)
		for _, m := range misc {
			attrs += " " + string(m)
		}
		if iostd != "" {
			printf("IOBUF PORT \"%s\" %s;\n", name, attrs)
		}
	}
}
