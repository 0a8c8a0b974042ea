// Package correlate compares devices across several network documents,
// keyed by BACnet device instance number, and reports drift between them.
package correlate

import (
	"fmt"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/newtron-network/topocheck/pkg/issue"
	"github.com/newtron-network/topocheck/pkg/model"
)

// Issue types produced by this package.
const (
	ConsistencyViolations = "consistency-violations"
	CrossGraphConflicts   = "cross-graph-conflicts"
)

// Observation is one sighting of a device instance in one document.
type Observation struct {
	DocIndex int
	Document string
	Device   model.Device

	// NetworkNumber is the device's resolved network number, 0 when the
	// network is unknown or unnumbered.
	NetworkNumber int
}

// Index maps each instance number (decimal text) to its observations in
// input order. Devices without a numeric instance cannot be correlated and
// are left out.
func Index(docs []*model.Document) map[string][]Observation {
	idx := map[string][]Observation{}
	for i, doc := range docs {
		for _, dev := range doc.Devices {
			n, err := dev.InstanceNumber()
			if err != nil {
				continue
			}
			obs := Observation{DocIndex: i, Document: doc.Name, Device: dev}
			if net, ok := doc.DeviceNetwork(dev); ok {
				obs.NetworkNumber = net.Number
			}
			key := strconv.Itoa(n)
			idx[key] = append(idx[key], obs)
		}
	}
	return idx
}

// field extracts one comparable attribute; "" means unknown.
type field struct {
	name  string
	value func(Observation) string
}

var consistencyFields = []field{
	{"address", func(o Observation) string { return strings.TrimSpace(o.Device.Address) }},
	{"network", func(o Observation) string { return o.Device.Network }},
	{"subnet", func(o Observation) string { return o.Device.Subnet }},
	{"vendor_id", func(o Observation) string { return strings.TrimSpace(o.Device.VendorID) }},
}

var networkNumberField = field{"network_number", func(o Observation) string {
	if o.NetworkNumber == 0 {
		return ""
	}
	return strconv.Itoa(o.NetworkNumber)
}}

// divergence is the outcome of comparing one field across documents.
type divergence struct {
	docs   map[int]bool      // documents in at least one disagreeing pair
	values map[string]string // document name -> value(s)
}

// compare reports whether two different documents disagree on the field:
// their value sets share no value. Variation inside one document is not
// drift. Unknown values are never compared.
func compare(obs []Observation, f field) (divergence, bool) {
	d := divergence{docs: map[int]bool{}, values: map[string]string{}}
	perDoc := map[int][]string{}
	names := map[int]string{}
	var order []int
	for _, o := range obs {
		v := f.value(o)
		if v == "" {
			continue
		}
		if _, seen := perDoc[o.DocIndex]; !seen {
			order = append(order, o.DocIndex)
			names[o.DocIndex] = o.Document
		}
		if !slices.Contains(perDoc[o.DocIndex], v) {
			perDoc[o.DocIndex] = append(perDoc[o.DocIndex], v)
		}
	}

	for i, a := range order {
		for _, b := range order[i+1:] {
			if disjoint(perDoc[a], perDoc[b]) {
				d.docs[a], d.docs[b] = true, true
			}
		}
	}
	for i := range d.docs {
		vs := perDoc[i]
		sort.Strings(vs)
		d.values[names[i]] = strings.Join(vs, ",")
	}
	return d, len(d.docs) > 0
}

func disjoint(a, b []string) bool {
	for _, v := range a {
		if slices.Contains(b, v) {
			return false
		}
	}
	return true
}

// Consistency reports devices whose address, vendor id, or network/subnet
// reference differ between documents. One issue per instance number.
func Consistency(docs []*model.Document) []issue.Issue {
	return correlate(docs, ConsistencyViolations, issue.Warning, consistencyFields,
		func(instance string, fields, docNames []string) string {
			return fmt.Sprintf("device instance %s differs in %s across documents %s",
				instance, strings.Join(fields, ", "), strings.Join(docNames, ", "))
		})
}

// CrossGraph reports device instances attached to different network numbers
// in different documents, i.e. a device that moved or is duplicated across
// sites.
func CrossGraph(docs []*model.Document) []issue.Issue {
	return correlate(docs, CrossGraphConflicts, issue.Error, []field{networkNumberField},
		func(instance string, _, docNames []string) string {
			return fmt.Sprintf("device instance %s is on different networks in documents %s",
				instance, strings.Join(docNames, ", "))
		})
}

func correlate(docs []*model.Document, issueType string, sev issue.Severity, fields []field,
	message func(instance string, fields, docNames []string) string) []issue.Issue {

	var out []issue.Issue
	for instance, obs := range Index(docs) {
		if !spansDocuments(obs) {
			continue
		}

		involved := map[int]bool{}
		var differing []string
		values := map[string]any{}
		for _, f := range fields {
			d, differs := compare(obs, f)
			if !differs {
				continue
			}
			differing = append(differing, f.name)
			values[f.name] = d.values
			for i := range d.docs {
				involved[i] = true
			}
		}
		if len(differing) == 0 {
			continue
		}
		sort.Strings(differing)

		// documents keep input order; everything else is sorted so that
		// permuting the input only changes which document is cited first
		var cited []string
		for i, doc := range docs {
			if involved[i] {
				cited = append(cited, doc.Name)
			}
		}
		sortedNames := append([]string(nil), cited...)
		sort.Strings(sortedNames)

		var ids []string
		for _, o := range obs {
			if involved[o.DocIndex] && !slices.Contains(ids, o.Device.ID) {
				ids = append(ids, o.Device.ID)
			}
		}
		sort.Strings(ids)

		n, _ := strconv.Atoi(instance)
		out = append(out, issue.New(issueType, sev, message(instance, differing, sortedNames), ids, map[string]any{
			"instance":  n,
			"documents": cited,
			"fields":    differing,
			"values":    values,
		}))
	}
	issue.Sort(out)
	return out
}

func spansDocuments(obs []Observation) bool {
	for _, o := range obs[1:] {
		if o.DocIndex != obs[0].DocIndex {
			return true
		}
	}
	return false
}
