package util

import (
	"net/netip"
	"strconv"
	"strings"
)

// ParseHostAddr extracts the IP address from a device address of the form
// "ip", "ip:port" or "[ipv6]:port".
func ParseHostAddr(addr string) (netip.Addr, bool) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return netip.Addr{}, false
	}
	if ip, err := netip.ParseAddr(addr); err == nil {
		return ip.Unmap(), true
	}
	if ap, err := netip.ParseAddrPort(addr); err == nil {
		return ap.Addr().Unmap(), true
	}
	return netip.Addr{}, false
}

// ParseSubnet parses CIDR notation. Host bits are cleared, so "10.0.0.5/24"
// yields 10.0.0.0/24.
func ParseSubnet(cidr string) (netip.Prefix, bool) {
	p, err := netip.ParsePrefix(strings.TrimSpace(cidr))
	if err != nil {
		return netip.Prefix{}, false
	}
	return p.Masked(), true
}

// AddrInSubnet reports whether the device address lies inside the subnet.
// ok is false when either value cannot be parsed.
func AddrInSubnet(addr, cidr string) (inside, ok bool) {
	ip, okIP := ParseHostAddr(addr)
	prefix, okPrefix := ParseSubnet(cidr)
	if !okIP || !okPrefix {
		return false, false
	}
	return prefix.Contains(ip), true
}

// IsIPv4Addr reports whether addr is an IPv4 device address, with or without port.
func IsIPv4Addr(addr string) bool {
	ip, ok := ParseHostAddr(addr)
	return ok && ip.Is4()
}

// IsMSTPAddr reports whether addr is a plain MS/TP master MAC address (1..127).
func IsMSTPAddr(addr string) bool {
	n, err := strconv.Atoi(strings.TrimSpace(addr))
	return err == nil && n >= 1 && n <= 127
}
