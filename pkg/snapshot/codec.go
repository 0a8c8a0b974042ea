package snapshot

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/newtron-network/topocheck/pkg/model"
	"github.com/newtron-network/topocheck/pkg/util"
)

// Store tables, one hash per entity.
const (
	TableDevice  = "BACNET_DEVICE"
	TableNetwork = "BACNET_NETWORK"
	TableSubnet  = "BACNET_SUBNET"
	TableRouter  = "BACNET_ROUTER"
	TableBBMD    = "BACNET_BBMD"
)

// seqField keeps the entity's position in its collection so that a loaded
// snapshot lists entities in the order they were saved.
const seqField = "seq"

// Entry is one stored hash: the fields of a single entity.
type Entry struct {
	Table  string
	Key    string
	Fields map[string]string
}

// Encode flattens a document into store entries. Empty fields are omitted
// and list fields are JSON arrays, so ids may contain any character.
func Encode(doc *model.Document) []Entry {
	var out []Entry
	add := func(table, key string, seq int, kv ...string) {
		fields := map[string]string{seqField: strconv.Itoa(seq)}
		for i := 0; i+1 < len(kv); i += 2 {
			if kv[i+1] != "" {
				fields[kv[i]] = kv[i+1]
			}
		}
		out = append(out, Entry{Table: table, Key: key, Fields: fields})
	}

	for i, d := range doc.Devices {
		add(TableDevice, d.ID, i,
			"instance", d.Instance,
			"vendor_id", d.VendorID,
			"address", d.Address,
			"network", d.Network,
			"subnet", d.Subnet,
			"label", d.Label,
			"model_name", d.ModelName,
			"device_name", d.DeviceName,
			"firmware_revision", d.FirmwareRevision)
	}
	for i, n := range doc.Networks {
		number := ""
		if n.Number != 0 {
			number = strconv.Itoa(n.Number)
		}
		add(TableNetwork, n.ID, i, "number", number, "label", n.Label, "type", n.Type)
	}
	for i, s := range doc.Subnets {
		add(TableSubnet, s.ID, i, "address", s.Address, "network", s.Network)
	}
	for i, r := range doc.Routers {
		unidirectional := ""
		if r.Unidirectional {
			unidirectional = "true"
		}
		add(TableRouter, r.ID, i,
			"networks", encodeList(r.Networks),
			"unidirectional", unidirectional)
	}
	for i, r := range doc.Relays {
		add(TableBBMD, r.ID, i,
			"subnet", r.Subnet,
			"address", r.Address,
			"bdt", encodeList(r.BDT))
	}
	return out
}

// Decode rebuilds a document from store entries. Entries of unknown tables
// are ignored; entities are ordered by their saved position, then key.
func Decode(name string, entries []Entry) (*model.Document, error) {
	byTable := map[string][]Entry{}
	for _, e := range entries {
		byTable[e.Table] = append(byTable[e.Table], e)
	}
	for _, es := range byTable {
		sort.SliceStable(es, func(i, j int) bool {
			si, sj := seq(es[i]), seq(es[j])
			if si != sj {
				return si < sj
			}
			return es[i].Key < es[j].Key
		})
	}

	doc := &model.Document{Name: name}
	for _, e := range byTable[TableDevice] {
		f := e.Fields
		doc.Devices = append(doc.Devices, model.Device{
			ID:               e.Key,
			Instance:         f["instance"],
			VendorID:         f["vendor_id"],
			Address:          f["address"],
			Network:          f["network"],
			Subnet:           f["subnet"],
			Label:            f["label"],
			ModelName:        f["model_name"],
			DeviceName:       f["device_name"],
			FirmwareRevision: f["firmware_revision"],
		})
	}
	for _, e := range byTable[TableNetwork] {
		n := model.Network{ID: e.Key, Label: e.Fields["label"], Type: e.Fields["type"]}
		if raw := e.Fields["number"]; raw != "" {
			num, err := strconv.Atoi(raw)
			if err != nil {
				return nil, fmt.Errorf("snapshot %s: network %s has bad number %q", name, e.Key, raw)
			}
			n.Number = num
		}
		doc.Networks = append(doc.Networks, n)
	}
	for _, e := range byTable[TableSubnet] {
		doc.Subnets = append(doc.Subnets, model.Subnet{
			ID:      e.Key,
			Address: e.Fields["address"],
			Network: e.Fields["network"],
		})
	}
	for _, e := range byTable[TableRouter] {
		networks, err := decodeList(e.Fields["networks"])
		if err != nil {
			return nil, fmt.Errorf("snapshot %s: router %s has bad networks: %w", name, e.Key, err)
		}
		doc.Routers = append(doc.Routers, model.Router{
			ID:             e.Key,
			Networks:       networks,
			Unidirectional: e.Fields["unidirectional"] == "true",
		})
	}
	for _, e := range byTable[TableBBMD] {
		bdt, err := decodeList(e.Fields["bdt"])
		if err != nil {
			return nil, fmt.Errorf("snapshot %s: bbmd %s has bad bdt: %w", name, e.Key, err)
		}
		doc.Relays = append(doc.Relays, model.BroadcastRelay{
			ID:      e.Key,
			Subnet:  e.Fields["subnet"],
			Address: e.Fields["address"],
			BDT:     bdt,
		})
	}
	return doc, nil
}

// encodeList renders a list field as a JSON array; an empty list is "".
func encodeList(values []string) string {
	if len(values) == 0 {
		return ""
	}
	b, _ := json.Marshal(values)
	return string(b)
}

// decodeList reads a list field written by encodeList. Snapshots saved
// before lists were JSON hold comma separated text, which is still read.
func decodeList(raw string) ([]string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if !strings.HasPrefix(raw, "[") {
		return util.SplitCommaSeparated(raw), nil
	}
	var out []string
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func seq(e Entry) int {
	n, err := strconv.Atoi(e.Fields[seqField])
	if err != nil {
		return int(^uint(0) >> 1)
	}
	return n
}

// entryKey builds "<prefix>|<snapshot>|<table>|<id>".
func entryKey(prefix, snapshot, table, id string) string {
	return strings.Join([]string{prefix, snapshot, table, id}, "|")
}

// parseKey splits a store key built by entryKey. Ids may contain "|".
func parseKey(key string) (snapshot, table, id string, ok bool) {
	parts := strings.SplitN(key, "|", 4)
	if len(parts) < 4 {
		return "", "", "", false
	}
	return parts[1], parts[2], parts[3], true
}

// snapshotPattern matches every entity key of one snapshot.
func snapshotPattern(prefix, snapshot string) string {
	return prefix + "|" + snapshot + "|*"
}
