package check

import (
	"fmt"
	"sort"
	"strings"

	"github.com/newtron-network/topocheck/pkg/issue"
	"github.com/newtron-network/topocheck/pkg/model"
	"github.com/newtron-network/topocheck/pkg/util"
)

func checkSubnetMismatches(in *Input) []issue.Issue {
	var out []issue.Issue
	for _, d := range in.Doc.Devices {
		if d.Subnet == "" || d.Address == "" {
			continue
		}
		s, ok := in.Doc.Subnet(d.Subnet)
		if !ok {
			continue
		}
		inside, ok := util.AddrInSubnet(d.Address, s.Address)
		if !ok || inside {
			continue
		}
		out = append(out, issue.New(string(SubnetMismatches), issue.Warning,
			fmt.Sprintf("device %s address %s is outside subnet %s (%s)", d.DisplayName(), d.Address, s.ID, s.Address),
			[]string{d.ID}, map[string]any{"address": d.Address, "subnet": s.ID, "subnet_address": s.Address}))
	}
	return out
}

type property struct {
	name     string
	critical bool
	present  func(model.Device) bool
}

func hasText(s string) bool { return strings.TrimSpace(s) != "" }

var essentialProperties = []property{
	{"device-instance", true, func(d model.Device) bool { return hasText(d.Instance) }},
	{"address", true, func(d model.Device) bool { return hasText(d.Address) }},
	{"vendor-id", true, func(d model.Device) bool { return hasText(d.VendorID) }},
	{"model-name", false, func(d model.Device) bool { return hasText(d.ModelName) }},
	{"device-name", false, func(d model.Device) bool { return hasText(d.DeviceName) }},
	{"firmware-revision", false, func(d model.Device) bool { return hasText(d.FirmwareRevision) }},
	{"device-on-network", false, func(d model.Device) bool { return !d.IsOrphaned() }},
}

func checkMissingProperties(in *Input) []issue.Issue {
	var out []issue.Issue
	for _, d := range in.Doc.Devices {
		missing := []string{}
		critical := []string{}
		for _, p := range essentialProperties {
			if p.present(d) {
				continue
			}
			missing = append(missing, p.name)
			if p.critical {
				critical = append(critical, p.name)
			}
		}
		if len(missing) == 0 {
			continue
		}

		var sev issue.Severity
		var level string
		switch {
		case len(critical) > 0:
			sev, level = issue.Error, "critical"
		case len(missing) >= 4:
			sev, level = issue.Warning, "major"
		case len(missing) >= 2:
			sev, level = issue.Warning, "minor"
		default:
			sev, level = issue.Info, "info"
		}
		out = append(out, issue.New(string(MissingProperties), sev,
			fmt.Sprintf("device %s is missing %d of %d essential properties: %s",
				d.DisplayName(), len(missing), len(essentialProperties), strings.Join(missing, ", ")),
			[]string{d.ID}, map[string]any{"missing": missing, "critical": critical, "level": level}))
	}
	return out
}

// Network media kinds, used to pick size thresholds.
const (
	KindMSTP     = "mstp"
	KindIP       = "ip"
	KindEthernet = "ethernet"
	KindARCNET   = "arcnet"
	KindPTP      = "ptp"
	KindOther    = "other"
)

type sizeLimits struct{ warning, critical int }

var mediaLimits = map[string]sizeLimits{
	KindMSTP:     {15, 30},
	KindIP:       {50, 100},
	KindEthernet: {50, 100},
	KindARCNET:   {15, 25},
	KindPTP:      {2, 3},
	KindOther:    {25, 50},
}

// kindFromText classifies a free-form type, label or id.
func kindFromText(s string) string {
	tokens := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '/')
	})
	text := strings.Join(tokens, " ")
	switch {
	case util.ContainsFold(text, "mstp", "ms/tp", "master slave", "token"):
		return KindMSTP
	case util.ContainsFold(text, "arcnet"):
		return KindARCNET
	case util.ContainsFold(text, "ptp", "point to point"):
		return KindPTP
	case util.ContainsFold(text, "ethernet"):
		return KindEthernet
	}
	for _, tok := range tokens {
		switch tok {
		case "ip", "bip", "tcp", "udp", "bacnet/ip", "ipv4", "ipv6":
			return KindIP
		}
	}
	return ""
}

// NetworkKind detects a network's media: declared type, then label, then
// id, then the shape of up to ten device addresses on it.
func NetworkKind(n model.Network, addresses []string) string {
	for _, s := range []string{n.Type, n.Label, n.ID} {
		if k := kindFromText(s); k != "" {
			return k
		}
	}

	ip, mstp := 0, 0
	for i, a := range addresses {
		if i == 10 {
			break
		}
		switch {
		case util.IsIPv4Addr(a):
			ip++
		case util.IsMSTPAddr(a):
			mstp++
		}
	}
	switch {
	case ip > mstp:
		return KindIP
	case mstp > 0:
		return KindMSTP
	}
	return KindOther
}

func checkOversizedNetworks(in *Input) []issue.Issue {
	members := map[string][]model.Device{}
	for _, d := range in.Doc.Devices {
		if n, ok := in.Doc.DeviceNetwork(d); ok {
			members[n.ID] = append(members[n.ID], d)
		}
	}

	var out []issue.Issue
	for _, n := range in.Doc.Networks {
		devices := members[n.ID]
		if len(devices) == 0 {
			continue
		}
		sort.Slice(devices, func(i, j int) bool { return devices[i].ID < devices[j].ID })
		addrs := make([]string, 0, len(devices))
		for _, d := range devices {
			if hasText(d.Address) {
				addrs = append(addrs, d.Address)
			}
		}

		kind := NetworkKind(n, addrs)
		limits := mediaLimits[kind]
		count := len(devices)

		var sev issue.Severity
		var threshold int
		switch {
		case count >= limits.critical:
			sev, threshold = issue.Error, limits.critical
		case count >= limits.warning:
			sev, threshold = issue.Warning, limits.warning
		default:
			continue
		}
		out = append(out, issue.New(string(OversizedNetworks), sev,
			fmt.Sprintf("%s network %s has %d devices (limit %d for %s)",
				strings.ToUpper(kind), n.DisplayName(), count, threshold, kind),
			[]string{n.ID}, map[string]any{
				"network_type":       kind,
				"device_count":       count,
				"warning_threshold":  limits.warning,
				"critical_threshold": limits.critical,
			}))
	}
	return out
}
