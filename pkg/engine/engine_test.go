package engine

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/newtron-network/topocheck/pkg/check"
	"github.com/newtron-network/topocheck/pkg/issue"
	"github.com/newtron-network/topocheck/pkg/model"
	"github.com/newtron-network/topocheck/pkg/util"
)

// defectDoc carries at least one defect for most checks.
func defectDoc(name string) *model.Document {
	return &model.Document{
		Name: name,
		Networks: []model.Network{
			{ID: "n1", Number: 1, Type: "mstp"},
			{ID: "n2", Number: 2},
			{ID: "n3", Number: 2},
			{ID: "n4", Number: 4},
		},
		Subnets: []model.Subnet{{ID: "s1", Address: "10.0.0.0/24", Network: "n2"}},
		Devices: []model.Device{
			{ID: "d1", Instance: "100", VendorID: "5", Address: "1", Network: "n1"},
			{ID: "d2", Instance: "100", VendorID: "5", Address: "1", Network: "n1"},
			{ID: "d3", Instance: "-5", Address: "10.1.0.1", Subnet: "s1"},
			{ID: "d4", Instance: "abc"},
		},
		Routers: []model.Router{
			{ID: "r1", Networks: []string{"n1", "n2"}},
			{ID: "r2", Networks: []string{"n2", "n3"}},
			{ID: "r3", Networks: []string{"n3", "n1"}},
			{ID: "r4", Networks: []string{"ghost"}},
		},
		Relays: []model.BroadcastRelay{
			{ID: "b1", Subnet: "s1", BDT: []string{"x"}},
			{ID: "b2", Subnet: "s1"},
		},
	}
}

func types(issues []issue.Issue) map[string]int {
	out := map[string]int{}
	for _, i := range issues {
		out[i.IssueType]++
	}
	return out
}

func TestRun_AllChecks(t *testing.T) {
	issues, err := Run(context.Background(), []*model.Document{defectDoc("site-a")}, []string{"all"})
	require.NoError(t, err)

	got := types(issues)
	for _, name := range []check.Name{
		check.NetworkLoops,
		check.UnreachableNetworks,
		check.MissingRouters,
		check.DuplicateDeviceID,
		check.DuplicateNetwork,
		check.InvalidDeviceRanges,
		check.DeviceAddressConflicts,
		check.DuplicateBBMD,
		check.SubnetMismatches,
		check.OrphanedDevices,
		check.MissingVendorIDs,
		check.MissingProperties,
	} {
		assert.NotZero(t, got[string(name)], "expected %s issues", name)
	}

	for _, i := range issues {
		assert.Equal(t, "site-a", i.Document(), "document issues carry their source")
	}
}

func TestRun_UnknownCheck(t *testing.T) {
	issues, err := Run(context.Background(), []*model.Document{defectDoc("a")}, []string{"network-loops", "bogus"})

	assert.Nil(t, issues)
	var cfgErr *check.ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "bogus", cfgErr.Check)
	assert.True(t, errors.Is(err, util.ErrInvalidConfig))
}

func TestRun_Idempotent(t *testing.T) {
	docs := []*model.Document{defectDoc("a"), defectDoc("b")}
	e := New(WithConcurrency(8))

	first, err := e.Run(context.Background(), docs, []string{"all"})
	require.NoError(t, err)
	second, err := e.Run(context.Background(), docs, []string{"all"})
	require.NoError(t, err)

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b), "output must be byte-identical")
}

func TestRun_ConcurrencyDoesNotChangeOutput(t *testing.T) {
	docs := []*model.Document{defectDoc("a"), defectDoc("b"), defectDoc("c")}

	serial, err := New(WithConcurrency(1)).Run(context.Background(), docs, []string{"all"})
	require.NoError(t, err)
	parallel, err := New(WithConcurrency(16)).Run(context.Background(), docs, []string{"all"})
	require.NoError(t, err)

	assert.Equal(t, serial, parallel)
}

func TestRun_Scenarios(t *testing.T) {
	t.Run("duplicate device id", func(t *testing.T) {
		doc := &model.Document{
			Name:     "s",
			Networks: []model.Network{{ID: "1", Number: 1}},
			Devices: []model.Device{
				{ID: "a", Instance: "100", Network: "1"},
				{ID: "b", Instance: "100", Network: "1"},
			},
		}
		issues, err := Run(context.Background(), []*model.Document{doc}, []string{"duplicate-device-id"})
		require.NoError(t, err)
		require.Len(t, issues, 1)
		assert.Equal(t, issue.Error, issues[0].Severity)
		assert.Equal(t, []string{"a", "b"}, issues[0].AffectedEntityIDs)
	})

	t.Run("negative instance", func(t *testing.T) {
		doc := &model.Document{Name: "s", Devices: []model.Device{{ID: "a", Instance: "-5"}}}
		issues, err := Run(context.Background(), []*model.Document{doc}, []string{"invalid-device-ranges"})
		require.NoError(t, err)
		require.Len(t, issues, 1)
		assert.Equal(t, "invalid-device-ranges", issues[0].IssueType)
		assert.Equal(t, issue.Error, issues[0].Severity)
	})

	t.Run("address drift across documents", func(t *testing.T) {
		a := &model.Document{Name: "a", Devices: []model.Device{{ID: "x", Instance: "42", Address: "10.0.0.1"}}}
		b := &model.Document{Name: "b", Devices: []model.Device{{ID: "x", Instance: "42", Address: "10.0.0.2"}}}
		issues, err := Run(context.Background(), []*model.Document{a, b}, []string{"consistency-violations"})
		require.NoError(t, err)
		require.Len(t, issues, 1)
		assert.Equal(t, "consistency-violations", issues[0].IssueType)
		assert.Empty(t, issues[0].Document(), "corpus issues are not tied to one document")
	})
}

func TestRun_CorrelationOrderInvariance(t *testing.T) {
	a := defectDoc("a")
	b := &model.Document{
		Name:     "b",
		Networks: []model.Network{{ID: "n1", Number: 7}},
		Devices:  []model.Device{{ID: "d1", Instance: "100", VendorID: "6", Address: "9", Network: "n1"}},
	}
	names := []string{"consistency-violations", "cross-graph-conflicts"}

	forward, err := Run(context.Background(), []*model.Document{a, b}, names)
	require.NoError(t, err)
	reverse, err := Run(context.Background(), []*model.Document{b, a}, names)
	require.NoError(t, err)

	require.Len(t, forward, 2)
	require.Len(t, reverse, len(forward))
	for i := range forward {
		assert.Equal(t, forward[i].IssueType, reverse[i].IssueType)
		assert.Equal(t, forward[i].Message, reverse[i].Message)
		assert.Equal(t, forward[i].AffectedEntityIDs, reverse[i].AffectedEntityIDs)
		assert.ElementsMatch(t, forward[i].Extra["documents"], reverse[i].Extra["documents"])
	}
}

func TestRun_NoChecksNoDocuments(t *testing.T) {
	issues, err := Run(context.Background(), nil, []string{"all"})
	require.NoError(t, err)
	assert.Empty(t, issues)

	issues, err = Run(context.Background(), []*model.Document{defectDoc("a")}, nil)
	require.NoError(t, err)
	assert.Empty(t, issues)
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, []*model.Document{defectDoc("a")}, []string{"all"})
	assert.ErrorIs(t, err, context.Canceled)
}
