package util

import "testing"

func TestParseHostAddr(t *testing.T) {
	tests := []struct {
		name   string
		addr   string
		want   string
		wantOK bool
	}{
		{"plain ipv4", "192.168.1.10", "192.168.1.10", true},
		{"ipv4 with port", "192.168.1.10:47808", "192.168.1.10", true},
		{"ipv6 with port", "[fe80::1]:47808", "fe80::1", true},
		{"surrounding space", " 10.0.0.1 ", "10.0.0.1", true},
		{"mstp mac", "12", "", false},
		{"empty", "", "", false},
		{"garbage", "not-an-ip", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseHostAddr(tt.addr)
			if ok != tt.wantOK {
				t.Fatalf("ParseHostAddr(%q) ok = %v, want %v", tt.addr, ok, tt.wantOK)
			}
			if ok && got.String() != tt.want {
				t.Errorf("ParseHostAddr(%q) = %s, want %s", tt.addr, got, tt.want)
			}
		})
	}
}

func TestAddrInSubnet(t *testing.T) {
	tests := []struct {
		name       string
		addr       string
		cidr       string
		wantInside bool
		wantOK     bool
	}{
		{"inside", "192.168.1.10", "192.168.1.0/24", true, true},
		{"inside with port", "192.168.1.10:47808", "192.168.1.0/24", true, true},
		{"host bits in cidr", "192.168.1.10", "192.168.1.1/24", true, true},
		{"outside", "192.168.2.10", "192.168.1.0/24", false, true},
		{"bad address", "abc", "192.168.1.0/24", false, false},
		{"bad cidr", "192.168.1.10", "192.168.1.0", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inside, ok := AddrInSubnet(tt.addr, tt.cidr)
			if inside != tt.wantInside || ok != tt.wantOK {
				t.Errorf("AddrInSubnet(%q, %q) = (%v, %v), want (%v, %v)",
					tt.addr, tt.cidr, inside, ok, tt.wantInside, tt.wantOK)
			}
		})
	}
}

func TestIsMSTPAddr(t *testing.T) {
	tests := []struct {
		addr string
		want bool
	}{
		{"1", true},
		{"127", true},
		{"0", false},
		{"128", false},
		{"10.0.0.1", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := IsMSTPAddr(tt.addr); got != tt.want {
			t.Errorf("IsMSTPAddr(%q) = %v, want %v", tt.addr, got, tt.want)
		}
	}
}

func TestIsIPv4Addr(t *testing.T) {
	if !IsIPv4Addr("10.1.2.3:47808") {
		t.Error("IsIPv4Addr should accept ip:port")
	}
	if IsIPv4Addr("fe80::1") {
		t.Error("IsIPv4Addr should reject ipv6")
	}
}
