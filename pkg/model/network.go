package model

import "strconv"

// Network is one logical BACnet network segment.
type Network struct {
	ID     string
	Number int // BACnet network number; 0 means unnumbered
	Label  string
	Type   string // media type as declared, e.g. "mstp", "bacnet/ip"
}

// IsNumbered reports whether the network carries a network number.
func (n Network) IsNumbered() bool {
	return n.Number > 0
}

// DisplayName returns the label, then "network <number>", then the id.
func (n Network) DisplayName() string {
	if n.Label != "" {
		return n.Label
	}
	if n.IsNumbered() {
		return "network " + strconv.Itoa(n.Number)
	}
	return n.ID
}

// Subnet is an IP address range, optionally inside a Network.
type Subnet struct {
	ID      string
	Address string // CIDR text
	Network string // optional parent Network.ID
}

// Router joins two or more networks (or subnets) by id.
type Router struct {
	ID       string
	Networks []string

	// Unidirectional routers only forward from Networks[0] to the others.
	Unidirectional bool
}

// BroadcastRelay is a BBMD: it forwards broadcasts from its subnet to the
// peers in its Broadcast Distribution Table.
type BroadcastRelay struct {
	ID      string
	Subnet  string   // Subnet.ID
	Address string   // optional
	BDT     []string // peer relay ids or addresses
}

// HasBDT reports whether the relay has any BDT entries.
func (r BroadcastRelay) HasBDT() bool {
	return len(r.BDT) > 0
}
