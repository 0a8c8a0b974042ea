// Package model defines the immutable entity types of a BACnet network
// document. References between entities are ids looked up in the same
// document and are always optional.
package model

import (
	"fmt"
	"sync"
)

// Document is one parsed network description. It is built once by a loader
// and never modified afterwards; share it by pointer.
type Document struct {
	Name     string
	Devices  []Device
	Networks []Network
	Subnets  []Subnet
	Routers  []Router
	Relays   []BroadcastRelay

	once     sync.Once
	networks map[string]int
	subnets  map[string]int
}

func (d *Document) buildIndex() {
	d.once.Do(func() {
		d.networks = make(map[string]int, len(d.Networks))
		for i, n := range d.Networks {
			if _, dup := d.networks[n.ID]; !dup {
				d.networks[n.ID] = i
			}
		}
		d.subnets = make(map[string]int, len(d.Subnets))
		for i, s := range d.Subnets {
			if _, dup := d.subnets[s.ID]; !dup {
				d.subnets[s.ID] = i
			}
		}
	})
}

// Network looks up a network by id.
func (d *Document) Network(id string) (Network, bool) {
	d.buildIndex()
	i, ok := d.networks[id]
	if !ok {
		return Network{}, false
	}
	return d.Networks[i], true
}

// Subnet looks up a subnet by id.
func (d *Document) Subnet(id string) (Subnet, bool) {
	d.buildIndex()
	i, ok := d.subnets[id]
	if !ok {
		return Subnet{}, false
	}
	return d.Subnets[i], true
}

// HasNode reports whether id names a network or subnet of this document.
func (d *Document) HasNode(id string) bool {
	if _, ok := d.Network(id); ok {
		return true
	}
	_, ok := d.Subnet(id)
	return ok
}

// DeviceNetwork resolves the network a device sits on: its direct network
// reference, else the parent network of its subnet.
func (d *Document) DeviceNetwork(dev Device) (Network, bool) {
	if dev.Network != "" {
		if n, ok := d.Network(dev.Network); ok {
			return n, true
		}
	}
	if dev.Subnet != "" {
		if s, ok := d.Subnet(dev.Subnet); ok && s.Network != "" {
			return d.Network(s.Network)
		}
	}
	return Network{}, false
}

// Summary returns entity counts for logging.
func (d *Document) Summary() string {
	return fmt.Sprintf("%d devices, %d networks, %d subnets, %d routers, %d bbmds",
		len(d.Devices), len(d.Networks), len(d.Subnets), len(d.Routers), len(d.Relays))
}
