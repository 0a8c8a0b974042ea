package model

import (
	"fmt"
	"strconv"
	"strings"
)

// BACnet device instance numbers are 22 bits wide.
const (
	MinDeviceInstance = 0
	MaxDeviceInstance = 4194303
)

// Device is one BACnet device as described by a network document.
//
// Instance and VendorID keep the raw scalar text from the source so that
// absent, non-numeric and out-of-range values stay distinguishable; an empty
// string means the property was absent.
type Device struct {
	ID       string // document-local identity
	Instance string // BACnet device instance number, raw
	VendorID string // ASHRAE vendor identifier, raw
	Address  string // MAC or IP[:port]; format not validated here

	// Optional references into the same document
	Network string // Network.ID
	Subnet  string // Subnet.ID

	Label            string
	ModelName        string
	DeviceName       string
	FirmwareRevision string
}

// InstanceNumber parses the instance number. It fails when the instance is
// absent or not an integer; the range is not checked.
func (d Device) InstanceNumber() (int, error) {
	return parseInt("device instance", d.Instance)
}

// VendorNumber parses the vendor identifier. It fails when absent or non-numeric.
func (d Device) VendorNumber() (int, error) {
	return parseInt("vendor id", d.VendorID)
}

// HasInstance reports whether an instance value is present at all.
func (d Device) HasInstance() bool {
	return strings.TrimSpace(d.Instance) != ""
}

// IsOrphaned reports whether the device has neither a network nor a subnet.
func (d Device) IsOrphaned() bool {
	return d.Network == "" && d.Subnet == ""
}

// DisplayName returns the label, falling back to the id.
func (d Device) DisplayName() string {
	if d.Label != "" {
		return d.Label
	}
	if d.DeviceName != "" {
		return d.DeviceName
	}
	return d.ID
}

func parseInt(what, raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fmt.Errorf("%s is absent", what)
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s %q is not an integer", what, raw)
	}
	return n, nil
}
