// Copyright 2022 The go-hdl Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package bsp describes FPGA board support packages: the declarative
// pin/IO resources of a board and the platform they attach to.
// Requested resources can be rendered to toolchain constraint files
// (XDC for Vivado, LPF for Trellis/Diamond).
package bsp // import "github.com/go-hdl/boards/bsp"

import (
	"fmt"
	"sort"
)

// IOStandard is the electrical standard of a pin group (e.g. LVCMOS33).
type IOStandard string

// Misc is an extra KEY=VALUE attribute on a pin group
// (e.g. "SLEW=FAST", "IN_TERM=UNTUNED_SPLIT_40").
type Misc string

// Subsignal is a named signal inside a composite resource.
type Subsignal struct {
	Name       string
	Pins       []string
	IOStandard IOStandard
	Misc       []Misc
}

// Resource is one board IO resource: either a flat pin group or a set
// of subsignals (e.g. a DRAM or Ethernet interface).
type Resource struct {
	Name       string
	Index      int
	Pins       []string
	IOStandard IOStandard
	Misc       []Misc
	Subsignals []Subsignal
}

// PortName returns the toolchain port name of the resource.
func (res *Resource) PortName() string {
	if res.Index == 0 {
		return res.Name
	}
	return fmt.Sprintf("%s%d", res.Name, res.Index)
}

type resKey struct {
	name string
	idx  int
}

// Platform is a board: an FPGA device and its IO resources.
// Resources must be requested before they appear in the emitted
// constraints; a resource may be requested only once.
type Platform struct {
	Device    string
	Toolchain string

	DefaultClkName   string
	DefaultClkPeriod float64 // ns

	resources map[resKey]*Resource
	requested []*Resource
	periods   map[string]float64 // port -> period (ns)
}

// New creates a platform for the given device with the given resources.
func New(device, toolchain string, resources []Resource) (*Platform, error) {
	p := &Platform{
		Device:    device,
		Toolchain: toolchain,
		resources: make(map[resKey]*Resource, len(resources)),
		periods:   make(map[string]float64),
	}
	for i := range resources {
		res := resources[i]
		key := resKey{name: res.Name, idx: res.Index}
		if _, dup := p.resources[key]; dup {
			return nil, fmt.Errorf("bsp: duplicate resource %q (index=%d)", res.Name, res.Index)
		}
		p.resources[key] = &res
	}
	return p, nil
}

// Request claims the lowest-indexed unrequested resource with the
// given name.
func (p *Platform) Request(name string) (*Resource, error) {
	var idxs []int
	for key := range p.resources {
		if key.name == name {
			idxs = append(idxs, key.idx)
		}
	}
	if len(idxs) == 0 {
		return nil, fmt.Errorf("bsp: unknown resource %q", name)
	}
	sort.Ints(idxs)
	for _, idx := range idxs {
		res, err := p.RequestIndexed(name, idx)
		if err != nil {
			continue
		}
		return res, nil
	}
	return nil, fmt.Errorf("bsp: resource %q already requested", name)
}

// RequestIndexed claims the resource with the given name and index.
func (p *Platform) RequestIndexed(name string, idx int) (*Resource, error) {
	res, ok := p.resources[resKey{name: name, idx: idx}]
	if !ok {
		return nil, fmt.Errorf("bsp: unknown resource %q (index=%d)", name, idx)
	}
	for _, req := range p.requested {
		if req == res {
			return nil, fmt.Errorf("bsp: resource %q (index=%d) already requested", name, idx)
		}
	}
	p.requested = append(p.requested, res)
	return res, nil
}

// RequestAll claims every unrequested resource with the given name, in
// index order.
func (p *Platform) RequestAll(name string) ([]*Resource, error) {
	var out []*Resource
	for {
		res, err := p.Request(name)
		if err != nil {
			break
		}
		out = append(out, res)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("bsp: no resource %q left to request", name)
	}
	return out, nil
}

// Requested returns the requested resources, in request order.
func (p *Platform) Requested() []*Resource {
	return p.requested
}

// AddPeriodConstraint constrains the clock period (ns) of a port.
func (p *Platform) AddPeriodConstraint(port string, periodNs float64) error {
	if periodNs <= 0 {
		return fmt.Errorf("bsp: invalid period %v ns for port %q", periodNs, port)
	}
	if _, dup := p.periods[port]; dup {
		return fmt.Errorf("bsp: period constraint for port %q already set", port)
	}
	p.periods[port] = periodNs
	return nil
}

// splitMisc splits a KEY=VALUE attribute. Attributes without a value
// return an empty value.
func splitMisc(m Misc) (key, value string) {
	s := string(m)
	for i := 0; i < len(s); i++ {
		if s[i] == '=' {
			return s[:i], s[i+1:]
		}
	}
	return s, ""
}
