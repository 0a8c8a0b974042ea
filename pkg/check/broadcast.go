package check

import (
	"fmt"
	"net/netip"
	"sort"
	"strings"

	"github.com/newtron-network/topocheck/pkg/issue"
	"github.com/newtron-network/topocheck/pkg/model"
	"github.com/newtron-network/topocheck/pkg/util"
)

// Broadcast domain size thresholds.
const (
	domainWarnSubnets     = 5
	domainWarnDevices     = 200
	domainCriticalSubnets = 10
	domainCriticalDevices = 500

	// A domain larger than this needs a BBMD even on one subnet.
	bbmdDeviceThreshold = 100
	bbmdSubnetThreshold = 2
)

// domain is the broadcast reach of one network: its subnets, the devices on
// it directly or through those subnets, and the BBMDs serving those subnets.
type domain struct {
	network model.Network
	subnets []string
	devices []string
	relays  []string
	ranges  []string // /24 prefixes of IPv4 device addresses
}

// scope classifies how far the domain's IPv4 addresses spread.
func (d domain) scope() string {
	switch n := len(d.ranges); {
	case n == 0:
		return "local"
	case n == 1:
		return "subnet"
	case n <= 3:
		return "moderate"
	default:
		return "wide"
	}
}

func (d domain) isIP() bool {
	return len(d.subnets) > 0 || len(d.ranges) > 0
}

func (d domain) needsBBMD() bool {
	if !d.isIP() {
		return false
	}
	return len(d.subnets) > bbmdSubnetThreshold ||
		len(d.devices) > bbmdDeviceThreshold ||
		len(d.ranges) > 1
}

// range24 returns the /24 holding an IPv4 device address.
func range24(addr string) (string, bool) {
	ip, ok := util.ParseHostAddr(addr)
	if !ok || !ip.Is4() {
		return "", false
	}
	return netip.PrefixFrom(ip, 24).Masked().String(), true
}

func broadcastDomains(doc *model.Document) []domain {
	byNetwork := map[string]*domain{}
	out := make([]*domain, 0, len(doc.Networks))
	for _, n := range doc.Networks {
		if _, dup := byNetwork[n.ID]; dup {
			continue
		}
		d := &domain{network: n, subnets: []string{}, devices: []string{}, relays: []string{}, ranges: []string{}}
		byNetwork[n.ID] = d
		out = append(out, d)
	}

	subnetNetwork := map[string]string{}
	for _, s := range doc.Subnets {
		if d, ok := byNetwork[s.Network]; ok {
			d.subnets = append(d.subnets, s.ID)
			subnetNetwork[s.ID] = s.Network
		}
	}
	for _, r := range doc.Relays {
		if d, ok := byNetwork[subnetNetwork[r.Subnet]]; ok {
			d.relays = append(d.relays, r.ID)
		}
	}

	ranges := map[string]map[string]bool{}
	for _, dev := range doc.Devices {
		n, ok := doc.DeviceNetwork(dev)
		if !ok {
			continue
		}
		d := byNetwork[n.ID]
		d.devices = append(d.devices, dev.ID)
		if r, ok := range24(dev.Address); ok {
			if ranges[n.ID] == nil {
				ranges[n.ID] = map[string]bool{}
			}
			ranges[n.ID][r] = true
		}
	}

	domains := make([]domain, len(out))
	for i, d := range out {
		for r := range ranges[d.network.ID] {
			d.ranges = append(d.ranges, r)
		}
		sort.Strings(d.subnets)
		sort.Strings(d.devices)
		sort.Strings(d.relays)
		sort.Strings(d.ranges)
		domains[i] = *d
	}
	return domains
}

func checkBroadcastDomains(in *Input) []issue.Issue {
	domains := broadcastDomains(in.Doc)

	var out []issue.Issue
	for _, d := range domains {
		id, name := d.network.ID, d.network.DisplayName()
		subnets, devices := len(d.subnets), len(d.devices)

		var sev issue.Severity
		switch {
		case subnets >= domainCriticalSubnets || devices >= domainCriticalDevices:
			sev = issue.Error
		case subnets >= domainWarnSubnets || devices >= domainWarnDevices:
			sev = issue.Warning
		}
		if sev != "" {
			out = append(out, issue.New(string(BroadcastDomains), sev,
				fmt.Sprintf("broadcast domain of %s spans %d subnet(s) and %d device(s)", name, subnets, devices),
				[]string{id}, map[string]any{
					"kind":             "large-domain",
					"subnet_count":     subnets,
					"device_count":     devices,
					"broadcast_scope":  d.scope(),
					"affected_subnets": d.subnets,
					"ip_ranges":        d.ranges,
				}))
		}

		if d.needsBBMD() && len(d.relays) == 0 {
			out = append(out, issue.New(string(BroadcastDomains), issue.Warning,
				fmt.Sprintf("broadcast domain of %s spans %d subnet(s) and %d IP range(s) with no BBMD",
					name, subnets, len(d.ranges)),
				append([]string{id}, d.subnets...), map[string]any{
					"kind":            "missing-bbmd-coverage",
					"subnet_count":    subnets,
					"device_count":    devices,
					"broadcast_scope": d.scope(),
					"ip_ranges":       d.ranges,
				}))
		}
	}

	owners := map[string][]string{}
	for _, d := range domains {
		for _, r := range d.ranges {
			owners[r] = append(owners[r], d.network.ID)
		}
	}
	for r, ids := range owners {
		if len(ids) < 2 {
			continue
		}
		sort.Strings(ids)
		out = append(out, issue.New(string(BroadcastDomains), issue.Warning,
			fmt.Sprintf("IP range %s appears in the broadcast domains of %d networks: %s",
				r, len(ids), strings.Join(ids, ", ")),
			ids, map[string]any{
				"kind":     "overlap",
				"ip_range": r,
				"networks": ids,
			}))
	}
	return out
}
