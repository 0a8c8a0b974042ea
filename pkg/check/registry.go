// Package check holds the catalog of topology checks. The catalog is a
// closed set: every check is a Name constant bound to its implementation
// here, and requesting any other name is a configuration error.
package check

import (
	"fmt"
	"sort"
	"strings"

	"github.com/newtron-network/topocheck/pkg/correlate"
	"github.com/newtron-network/topocheck/pkg/issue"
	"github.com/newtron-network/topocheck/pkg/model"
	"github.com/newtron-network/topocheck/pkg/util"
)

// Name identifies one check. It doubles as the issue_type of what it reports.
type Name string

const (
	NetworkLoops           Name = "network-loops"
	UnreachableNetworks    Name = "unreachable-networks"
	MissingRouters         Name = "missing-routers"
	DuplicateDeviceID      Name = "duplicate-device-id"
	DuplicateNetwork       Name = "duplicate-network"
	DuplicateRouter        Name = "duplicate-router"
	InvalidDeviceRanges    Name = "invalid-device-ranges"
	DeviceAddressConflicts Name = "device-address-conflicts"
	DuplicateBBMD          Name = "duplicate-bbmd"
	SubnetMismatches       Name = "subnet-mismatches"
	OrphanedDevices        Name = "orphaned-devices"
	MissingVendorIDs       Name = "missing-vendor-ids"
	MissingProperties      Name = "missing-properties"
	OversizedNetworks      Name = "oversized-networks"
	BroadcastDomains       Name = "broadcast-domains"
	RoutingInefficiencies  Name = "routing-inefficiencies"
	ConsistencyViolations  Name = correlate.ConsistencyViolations
	CrossGraphConflicts    Name = correlate.CrossGraphConflicts
)

// All is the reserved selector meaning every check.
const All = "all"

// Category groups checks for listing.
type Category string

const (
	CategoryStructure   Category = "structure"
	CategoryIdentity    Category = "identity"
	CategoryAddressing  Category = "addressing"
	CategoryDataQuality Category = "data-quality"
	CategoryCorrelation Category = "correlation"
)

// Scope says what a check consumes.
type Scope string

const (
	// ScopeDocument checks run once per document.
	ScopeDocument Scope = "document"
	// ScopeCorpus checks run once over all documents together.
	ScopeCorpus Scope = "corpus"
)

// Definition binds a check name to its implementation.
type Definition struct {
	Name        Name
	Description string
	Category    Category
	Scope       Scope

	document func(*Input) []issue.Issue
	corpus   func([]*model.Document) []issue.Issue
}

// Run executes a document-scoped check. Issues come back in stable order.
// Corpus checks return nil.
func (d Definition) Run(in *Input) []issue.Issue {
	if d.document == nil {
		return nil
	}
	out := d.document(in)
	issue.Sort(out)
	return out
}

// RunCorpus executes a corpus-scoped check. Document checks return nil.
func (d Definition) RunCorpus(docs []*model.Document) []issue.Issue {
	if d.corpus == nil {
		return nil
	}
	out := d.corpus(docs)
	issue.Sort(out)
	return out
}

var definitions = []Definition{
	{
		Name:        NetworkLoops,
		Description: "Detect routing loops between networks",
		Category:    CategoryStructure,
		Scope:       ScopeDocument,
		document:    checkNetworkLoops,
	},
	{
		Name:        UnreachableNetworks,
		Description: "Detect networks without a routing path to the rest of the internetwork",
		Category:    CategoryStructure,
		Scope:       ScopeDocument,
		document:    checkUnreachableNetworks,
	},
	{
		Name:        MissingRouters,
		Description: "Detect router references to unknown networks and device networks without routers",
		Category:    CategoryStructure,
		Scope:       ScopeDocument,
		document:    checkMissingRouters,
	},
	{
		Name:        DuplicateDeviceID,
		Description: "Detect devices sharing a device instance number",
		Category:    CategoryIdentity,
		Scope:       ScopeDocument,
		document:    checkDuplicateDeviceIDs,
	},
	{
		Name:        DuplicateNetwork,
		Description: "Detect networks sharing a network number",
		Category:    CategoryIdentity,
		Scope:       ScopeDocument,
		document:    checkDuplicateNetworks,
	},
	{
		Name:        DuplicateRouter,
		Description: "Detect several routers on one subnet routing to the same network number",
		Category:    CategoryIdentity,
		Scope:       ScopeDocument,
		document:    checkDuplicateRouters,
	},
	{
		Name:        InvalidDeviceRanges,
		Description: "Detect device instances missing, non-numeric or outside 0-4194303",
		Category:    CategoryIdentity,
		Scope:       ScopeDocument,
		document:    checkInvalidDeviceRanges,
	},
	{
		Name:        DeviceAddressConflicts,
		Description: "Detect devices with the same address on the same network or subnet",
		Category:    CategoryAddressing,
		Scope:       ScopeDocument,
		document:    checkDeviceAddressConflicts,
	},
	{
		Name:        DuplicateBBMD,
		Description: "Detect several BBMDs serving one subnet",
		Category:    CategoryAddressing,
		Scope:       ScopeDocument,
		document:    checkDuplicateBBMDs,
	},
	{
		Name:        SubnetMismatches,
		Description: "Detect device IP addresses outside their subnet",
		Category:    CategoryAddressing,
		Scope:       ScopeDocument,
		document:    checkSubnetMismatches,
	},
	{
		Name:        OrphanedDevices,
		Description: "Detect devices not attached to any network or subnet",
		Category:    CategoryDataQuality,
		Scope:       ScopeDocument,
		document:    checkOrphanedDevices,
	},
	{
		Name:        MissingVendorIDs,
		Description: "Detect devices without a valid vendor identifier",
		Category:    CategoryDataQuality,
		Scope:       ScopeDocument,
		document:    checkMissingVendorIDs,
	},
	{
		Name:        MissingProperties,
		Description: "Detect devices missing essential properties",
		Category:    CategoryDataQuality,
		Scope:       ScopeDocument,
		document:    checkMissingProperties,
	},
	{
		Name:        OversizedNetworks,
		Description: "Detect networks with more devices than their media supports well",
		Category:    CategoryDataQuality,
		Scope:       ScopeDocument,
		document:    checkOversizedNetworks,
	},
	{
		Name:        BroadcastDomains,
		Description: "Detect oversized, overlapping or BBMD-less broadcast domains",
		Category:    CategoryAddressing,
		Scope:       ScopeDocument,
		document:    checkBroadcastDomains,
	},
	{
		Name:        RoutingInefficiencies,
		Description: "Detect asymmetric routes, single points of failure and long routing paths",
		Category:    CategoryStructure,
		Scope:       ScopeDocument,
		document:    checkRoutingInefficiencies,
	},
	{
		Name:        ConsistencyViolations,
		Description: "Detect device attributes that differ between documents",
		Category:    CategoryCorrelation,
		Scope:       ScopeCorpus,
		corpus:      correlate.Consistency,
	},
	{
		Name:        CrossGraphConflicts,
		Description: "Detect device instances on different networks in different documents",
		Category:    CategoryCorrelation,
		Scope:       ScopeCorpus,
		corpus:      correlate.CrossGraph,
	},
}

// Definitions returns every check in catalog order.
func Definitions() []Definition {
	out := make([]Definition, len(definitions))
	copy(out, definitions)
	return out
}

// Names returns every check name, sorted.
func Names() []string {
	out := make([]string, len(definitions))
	for i, d := range definitions {
		out[i] = string(d.Name)
	}
	sort.Strings(out)
	return out
}

// Lookup finds a check by name.
func Lookup(name string) (Definition, bool) {
	for _, d := range definitions {
		if string(d.Name) == name {
			return d, true
		}
	}
	return Definition{}, false
}

// Resolve turns requested names into definitions in catalog order, without
// duplicates. "all" selects every check. Any unknown name fails the whole
// request.
func Resolve(names []string) ([]Definition, error) {
	selected := map[Name]bool{}
	for _, raw := range names {
		name := strings.TrimSpace(raw)
		if name == "" {
			continue
		}
		if name == All {
			for _, d := range definitions {
				selected[d.Name] = true
			}
			continue
		}
		d, ok := Lookup(name)
		if !ok {
			return nil, &ConfigurationError{Check: name}
		}
		selected[d.Name] = true
	}

	var out []Definition
	for _, d := range definitions {
		if selected[d.Name] {
			out = append(out, d)
		}
	}
	return out, nil
}

// ConfigurationError reports a request for a check that does not exist.
type ConfigurationError struct {
	Check string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("unknown check %q (valid: %s, %s)", e.Check, All, strings.Join(Names(), ", "))
}

func (e *ConfigurationError) Unwrap() error {
	return util.ErrInvalidConfig
}
