package check

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/newtron-network/topocheck/pkg/issue"
	"github.com/newtron-network/topocheck/pkg/model"
)

func TestSubnetMismatches(t *testing.T) {
	doc := &model.Document{
		Subnets: []model.Subnet{{ID: "s1", Address: "192.168.1.0/24"}, {ID: "bad", Address: "garbage"}},
		Devices: []model.Device{
			{ID: "in", Address: "192.168.1.20", Subnet: "s1"},
			{ID: "port", Address: "192.168.1.21:47808", Subnet: "s1"},
			{ID: "out", Address: "192.168.2.20:47808", Subnet: "s1"},
			{ID: "mac", Address: "12", Subnet: "s1"},
			{ID: "unparsed", Address: "10.0.0.1", Subnet: "bad"},
			{ID: "dangling", Address: "10.0.0.1", Subnet: "nope"},
		},
	}

	issues := run(SubnetMismatches, doc)

	require.Len(t, issues, 1)
	assert.Equal(t, []string{"out"}, issues[0].AffectedEntityIDs)
	assert.Equal(t, issue.Warning, issues[0].Severity)
}

func TestMissingProperties(t *testing.T) {
	complete := model.Device{
		ID: "d", Instance: "1", Address: "1", VendorID: "5",
		ModelName: "m", DeviceName: "n", FirmwareRevision: "f", Network: "n1",
	}

	tests := []struct {
		name      string
		mutate    func(*model.Device)
		wantSev   issue.Severity
		wantLevel string
	}{
		{"complete", func(*model.Device) {}, "", ""},
		{"one optional", func(d *model.Device) { d.ModelName = "" }, issue.Info, "info"},
		{"two optional", func(d *model.Device) { d.ModelName, d.DeviceName = "", "" }, issue.Warning, "minor"},
		{"four optional", func(d *model.Device) {
			d.ModelName, d.DeviceName, d.FirmwareRevision, d.Network = "", "", "", ""
		}, issue.Warning, "major"},
		{"critical", func(d *model.Device) { d.VendorID = "" }, issue.Error, "critical"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := complete
			tt.mutate(&d)
			issues := run(MissingProperties, &model.Document{Devices: []model.Device{d}})
			if tt.wantSev == "" {
				assert.Empty(t, issues)
				return
			}
			require.Len(t, issues, 1)
			assert.Equal(t, tt.wantSev, issues[0].Severity)
			assert.Equal(t, tt.wantLevel, issues[0].Extra["level"])
		})
	}
}

func TestNetworkKind(t *testing.T) {
	tests := []struct {
		name  string
		net   model.Network
		addrs []string
		want  string
	}{
		{"declared mstp", model.Network{Type: "MS/TP"}, nil, KindMSTP},
		{"declared bacnet/ip", model.Network{Type: "BACnet/IP"}, nil, KindIP},
		{"declared arcnet", model.Network{Type: "ARCNET"}, nil, KindARCNET},
		{"label point-to-point", model.Network{Label: "Point-to-Point dialup"}, nil, KindPTP},
		{"label ethernet", model.Network{Label: "Ethernet backbone"}, nil, KindEthernet},
		{"id hint", model.Network{ID: "net-ip-3"}, nil, KindIP},
		{"no false ip match", model.Network{Label: "Pipe room"}, nil, KindOther},
		{"ip addresses", model.Network{ID: "n"}, []string{"10.0.0.1", "10.0.0.2:47808", "5"}, KindIP},
		{"mac addresses", model.Network{ID: "n"}, []string{"1", "2", "10.0.0.1"}, KindMSTP},
		{"unknown", model.Network{ID: "n"}, []string{"ab:cd"}, KindOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NetworkKind(tt.net, tt.addrs))
		})
	}
}

func TestOversizedNetworks(t *testing.T) {
	devicesOn := func(network string, n int) []model.Device {
		out := make([]model.Device, n)
		for i := range out {
			out[i] = model.Device{ID: fmt.Sprintf("%s-d%02d", network, i), Network: network}
		}
		return out
	}

	tests := []struct {
		name    string
		kind    string
		count   int
		wantSev issue.Severity
	}{
		{"mstp below", "mstp", 14, ""},
		{"mstp warning", "mstp", 15, issue.Warning},
		{"mstp critical", "mstp", 30, issue.Error},
		{"ptp warning", "ptp", 2, issue.Warning},
		{"ip below", "bacnet/ip", 49, ""},
		{"other warning", "", 25, issue.Warning},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := &model.Document{
				Networks: []model.Network{{ID: "n1", Number: 1, Type: tt.kind}},
				Devices:  devicesOn("n1", tt.count),
			}
			issues := run(OversizedNetworks, doc)
			if tt.wantSev == "" {
				assert.Empty(t, issues)
				return
			}
			require.Len(t, issues, 1)
			assert.Equal(t, tt.wantSev, issues[0].Severity)
			assert.Equal(t, tt.count, issues[0].Extra["device_count"])
		})
	}
}
