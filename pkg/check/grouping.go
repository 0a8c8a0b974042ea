package check

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/newtron-network/topocheck/pkg/issue"
	"github.com/newtron-network/topocheck/pkg/model"
)

// group partitions items by key, skipping items whose key is not ok, and
// returns the partitions holding more than one item with their ids sorted.
func group[T any](items []T, id func(T) string, key func(T) (string, bool)) map[string][]string {
	all := map[string][]string{}
	for _, it := range items {
		k, ok := key(it)
		if !ok {
			continue
		}
		all[k] = append(all[k], id(it))
	}
	dups := map[string][]string{}
	for k, ids := range all {
		if len(ids) > 1 {
			sort.Strings(ids)
			dups[k] = ids
		}
	}
	return dups
}

func deviceID(d model.Device) string { return d.ID }

func networkID(n model.Network) string { return n.ID }

func checkDuplicateDeviceIDs(in *Input) []issue.Issue {
	groups := group(in.Doc.Devices, deviceID, func(d model.Device) (string, bool) {
		n, err := d.InstanceNumber()
		if err != nil {
			return "", false
		}
		return strconv.Itoa(n), true
	})

	var out []issue.Issue
	for instance, ids := range groups {
		n, _ := strconv.Atoi(instance)
		out = append(out, issue.New(string(DuplicateDeviceID), issue.Error,
			fmt.Sprintf("device instance %s is used by %d devices: %s", instance, len(ids), strings.Join(ids, ", ")),
			ids, map[string]any{"instance": n, "count": len(ids)}))
	}
	return out
}

func checkDuplicateNetworks(in *Input) []issue.Issue {
	groups := group(in.Doc.Networks, networkID, func(n model.Network) (string, bool) {
		return strconv.Itoa(n.Number), n.IsNumbered()
	})

	var out []issue.Issue
	for number, ids := range groups {
		n, _ := strconv.Atoi(number)
		out = append(out, issue.New(string(DuplicateNetwork), issue.Error,
			fmt.Sprintf("network number %s is used by %d networks: %s", number, len(ids), strings.Join(ids, ", ")),
			ids, map[string]any{"network_number": n, "count": len(ids)}))
	}
	return out
}

// checkDuplicateRouters reports routers on one subnet that each route to
// the same network number.
func checkDuplicateRouters(in *Input) []issue.Issue {
	type link struct {
		subnet string
		number int
	}
	routers := map[link]map[string]bool{}
	for _, r := range in.Doc.Routers {
		var subnets []string
		var numbers []int
		for _, id := range r.Networks {
			id = strings.TrimSpace(id)
			if s, ok := in.Doc.Subnet(id); ok {
				subnets = append(subnets, s.ID)
			} else if n, ok := in.Doc.Network(id); ok && n.IsNumbered() {
				numbers = append(numbers, n.Number)
			}
		}
		for _, s := range subnets {
			for _, n := range numbers {
				k := link{s, n}
				if routers[k] == nil {
					routers[k] = map[string]bool{}
				}
				routers[k][r.ID] = true
			}
		}
	}

	var out []issue.Issue
	for k, set := range routers {
		if len(set) < 2 {
			continue
		}
		ids := make([]string, 0, len(set))
		for id := range set {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		out = append(out, issue.New(string(DuplicateRouter), issue.Error,
			fmt.Sprintf("network number %d is routed by %d routers on subnet %s: %s",
				k.number, len(ids), k.subnet, strings.Join(ids, ", ")),
			ids, map[string]any{"network_number": k.number, "subnet": k.subnet, "count": len(ids)}))
	}
	return out
}

func checkDeviceAddressConflicts(in *Input) []issue.Issue {
	var out []issue.Issue
	scopes := []struct {
		name string
		ref  func(model.Device) string
	}{
		{"network", func(d model.Device) string { return d.Network }},
		{"subnet", func(d model.Device) string { return d.Subnet }},
	}

	for _, scope := range scopes {
		groups := group(in.Doc.Devices, deviceID, func(d model.Device) (string, bool) {
			ref, addr := scope.ref(d), strings.TrimSpace(d.Address)
			if ref == "" || addr == "" {
				return "", false
			}
			return ref + "\x00" + addr, true
		})
		for key, ids := range groups {
			ref, addr, _ := strings.Cut(key, "\x00")
			out = append(out, issue.New(string(DeviceAddressConflicts), issue.Error,
				fmt.Sprintf("address %s is used by %d devices on %s %s: %s",
					addr, len(ids), scope.name, ref, strings.Join(ids, ", ")),
				ids, map[string]any{"address": addr, "scope": scope.name, scope.name: ref, "count": len(ids)}))
		}
	}
	return out
}

func checkDuplicateBBMDs(in *Input) []issue.Issue {
	bySubnet := map[string][]model.BroadcastRelay{}
	for _, r := range in.Doc.Relays {
		if r.Subnet != "" {
			bySubnet[r.Subnet] = append(bySubnet[r.Subnet], r)
		}
	}

	var out []issue.Issue
	for subnet, relays := range bySubnet {
		if len(relays) < 2 {
			continue
		}
		withBDT, withoutBDT := []string{}, []string{}
		for _, r := range relays {
			if r.HasBDT() {
				withBDT = append(withBDT, r.ID)
			} else {
				withoutBDT = append(withoutBDT, r.ID)
			}
		}
		if len(withBDT) == 0 {
			continue
		}
		sort.Strings(withBDT)
		sort.Strings(withoutBDT)
		ids := append(append([]string{}, withBDT...), withoutBDT...)
		sort.Strings(ids)

		sev := issue.Error
		msg := fmt.Sprintf("subnet %s has %d BBMDs with conflicting broadcast distribution tables: %s",
			subnet, len(ids), strings.Join(ids, ", "))
		if len(withoutBDT) > 0 {
			sev = issue.Warning
			msg = fmt.Sprintf("subnet %s has %d BBMDs with inconsistent configuration: %s have a BDT, %s do not",
				subnet, len(ids), strings.Join(withBDT, ", "), strings.Join(withoutBDT, ", "))
		}
		out = append(out, issue.New(string(DuplicateBBMD), sev, msg, ids, map[string]any{
			"subnet":      subnet,
			"with_bdt":    withBDT,
			"without_bdt": withoutBDT,
		}))
	}
	return out
}

func checkOrphanedDevices(in *Input) []issue.Issue {
	var out []issue.Issue
	for _, d := range in.Doc.Devices {
		if d.IsOrphaned() {
			out = append(out, issue.New(string(OrphanedDevices), issue.Warning,
				fmt.Sprintf("device %s is not attached to any network or subnet", d.DisplayName()),
				[]string{d.ID}, map[string]any{"reason": "no-reference"}))
			continue
		}

		_, netOK := in.Doc.Network(d.Network)
		_, subOK := in.Doc.Subnet(d.Subnet)
		if !netOK && !subOK {
			refs := []string{}
			if d.Network != "" {
				refs = append(refs, "network "+d.Network)
			}
			if d.Subnet != "" {
				refs = append(refs, "subnet "+d.Subnet)
			}
			out = append(out, issue.New(string(OrphanedDevices), issue.Warning,
				fmt.Sprintf("device %s refers to undefined %s", d.DisplayName(), strings.Join(refs, " and ")),
				[]string{d.ID}, map[string]any{"reason": "unresolved-reference", "network": d.Network, "subnet": d.Subnet}))
		}
	}
	return out
}

func checkInvalidDeviceRanges(in *Input) []issue.Issue {
	var out []issue.Issue
	for _, d := range in.Doc.Devices {
		raw := strings.TrimSpace(d.Instance)
		var reason, msg string
		switch n, err := d.InstanceNumber(); {
		case raw == "":
			reason = "missing"
			msg = fmt.Sprintf("device %s has no device instance", d.DisplayName())
		case err != nil:
			reason = "non-numeric"
			msg = fmt.Sprintf("device %s has non-numeric device instance %q", d.DisplayName(), raw)
		case n < model.MinDeviceInstance || n > model.MaxDeviceInstance:
			reason = "out-of-range"
			msg = fmt.Sprintf("device %s has instance %d outside %d-%d",
				d.DisplayName(), n, model.MinDeviceInstance, model.MaxDeviceInstance)
		default:
			continue
		}
		out = append(out, issue.New(string(InvalidDeviceRanges), issue.Error, msg, []string{d.ID},
			map[string]any{"reason": reason, "instance": raw}))
	}
	return out
}

func checkMissingVendorIDs(in *Input) []issue.Issue {
	var out []issue.Issue
	for _, d := range in.Doc.Devices {
		raw := strings.TrimSpace(d.VendorID)
		var reason, msg string
		switch n, err := d.VendorNumber(); {
		case raw == "":
			reason = "missing"
			msg = fmt.Sprintf("device %s has no vendor id", d.DisplayName())
		case err != nil:
			reason = "non-numeric"
			msg = fmt.Sprintf("device %s has non-numeric vendor id %q", d.DisplayName(), raw)
		case n < 0:
			reason = "negative"
			msg = fmt.Sprintf("device %s has negative vendor id %d", d.DisplayName(), n)
		case n == 0:
			reason = "reserved"
			msg = fmt.Sprintf("device %s has reserved vendor id 0", d.DisplayName())
		default:
			continue
		}
		out = append(out, issue.New(string(MissingVendorIDs), issue.Warning, msg, []string{d.ID},
			map[string]any{"reason": reason, "vendor_id": raw}))
	}
	return out
}
