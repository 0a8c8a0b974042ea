package model

import (
	"slices"

	"github.com/newtron-network/topocheck/pkg/util"
)

// Merge unions the entities of several documents into a new one. Entities
// are matched by id; the first occurrence wins and a differing later
// duplicate is logged, never silently combined.
func Merge(name string, docs ...*Document) *Document {
	out := &Document{Name: name}
	log := util.WithDocument(name)

	devices := map[string]int{}
	networks := map[string]int{}
	subnets := map[string]int{}
	routers := map[string]int{}
	relays := map[string]int{}

	for _, doc := range docs {
		for _, dev := range doc.Devices {
			if i, ok := devices[dev.ID]; ok {
				if out.Devices[i] != dev {
					log.Warnf("device %s from %s differs from an earlier definition; keeping the first", dev.ID, doc.Name)
				}
				continue
			}
			devices[dev.ID] = len(out.Devices)
			out.Devices = append(out.Devices, dev)
		}
		for _, n := range doc.Networks {
			if i, ok := networks[n.ID]; ok {
				if out.Networks[i] != n {
					log.Warnf("network %s from %s differs from an earlier definition; keeping the first", n.ID, doc.Name)
				}
				continue
			}
			networks[n.ID] = len(out.Networks)
			out.Networks = append(out.Networks, n)
		}
		for _, s := range doc.Subnets {
			if i, ok := subnets[s.ID]; ok {
				if out.Subnets[i] != s {
					log.Warnf("subnet %s from %s differs from an earlier definition; keeping the first", s.ID, doc.Name)
				}
				continue
			}
			subnets[s.ID] = len(out.Subnets)
			out.Subnets = append(out.Subnets, s)
		}
		for _, r := range doc.Routers {
			if i, ok := routers[r.ID]; ok {
				prev := out.Routers[i]
				if prev.Unidirectional != r.Unidirectional || !slices.Equal(prev.Networks, r.Networks) {
					log.Warnf("router %s from %s differs from an earlier definition; keeping the first", r.ID, doc.Name)
				}
				continue
			}
			routers[r.ID] = len(out.Routers)
			out.Routers = append(out.Routers, cloneRouter(r))
		}
		for _, r := range doc.Relays {
			if i, ok := relays[r.ID]; ok {
				prev := out.Relays[i]
				if prev.Subnet != r.Subnet || prev.Address != r.Address || !slices.Equal(prev.BDT, r.BDT) {
					log.Warnf("bbmd %s from %s differs from an earlier definition; keeping the first", r.ID, doc.Name)
				}
				continue
			}
			relays[r.ID] = len(out.Relays)
			out.Relays = append(out.Relays, cloneRelay(r))
		}
	}

	log.Debugf("merged %d documents: %s", len(docs), out.Summary())
	return out
}

func cloneRouter(r Router) Router {
	r.Networks = slices.Clone(r.Networks)
	return r
}

func cloneRelay(r BroadcastRelay) BroadcastRelay {
	r.BDT = slices.Clone(r.BDT)
	return r
}
