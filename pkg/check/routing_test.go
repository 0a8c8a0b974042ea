package check

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/newtron-network/topocheck/pkg/issue"
	"github.com/newtron-network/topocheck/pkg/model"
)

func ofKind(issues []issue.Issue, kind string) []issue.Issue {
	var out []issue.Issue
	for _, i := range issues {
		if i.Extra["kind"] == kind {
			out = append(out, i)
		}
	}
	return out
}

// chain links networks n0..n(count-1) in a line, one router per hop.
func chain(count int) *model.Document {
	doc := &model.Document{}
	for i := 0; i < count; i++ {
		doc.Networks = append(doc.Networks, model.Network{ID: fmt.Sprintf("n%d", i), Number: i + 1})
		if i > 0 {
			doc.Routers = append(doc.Routers, model.Router{
				ID:       fmt.Sprintf("r%d", i),
				Networks: []string{fmt.Sprintf("n%d", i-1), fmt.Sprintf("n%d", i)},
			})
		}
	}
	return doc
}

func TestRoutingInefficiencies(t *testing.T) {
	tests := []struct {
		name    string
		routers []model.Router
		want    []string
	}{
		{
			name:    "bidirectional pair",
			routers: []model.Router{{ID: "r1", Networks: []string{"A", "B"}}},
		},
		{
			name:    "unidirectional pair",
			routers: []model.Router{{ID: "r1", Networks: []string{"A", "B"}, Unidirectional: true}},
			want:    []string{"asymmetric-routing"},
		},
		{
			name: "triangle of routers",
			routers: []model.Router{
				{ID: "r1", Networks: []string{"A", "B"}},
				{ID: "r2", Networks: []string{"B", "C"}},
				{ID: "r3", Networks: []string{"C", "A"}},
			},
		},
		{
			name:    "one router for three networks",
			routers: []model.Router{{ID: "r1", Networks: []string{"A", "B", "C"}}},
			want: []string{
				"router-single-point-failure",
				"router-single-point-failure",
				"router-single-point-failure",
			},
		},
		{
			name: "line",
			routers: []model.Router{
				{ID: "r1", Networks: []string{"A", "B"}},
				{ID: "r2", Networks: []string{"B", "C"}},
			},
			want: []string{"missing-redundancy"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := &model.Document{Networks: numbered("A", "B", "C"), Routers: tt.routers}
			issues := run(RoutingInefficiencies, doc)
			assert.ElementsMatch(t, tt.want, kinds(issues))
			for _, i := range issues {
				assert.Equal(t, issue.Warning, i.Severity)
				assert.Equal(t, string(RoutingInefficiencies), i.IssueType)
			}
		})
	}
}

func TestRoutingInefficiencies_Asymmetric(t *testing.T) {
	doc := &model.Document{
		Networks: numbered("A", "B"),
		Routers:  []model.Router{{ID: "r1", Networks: []string{"A", "B"}, Unidirectional: true}},
	}

	issues := run(RoutingInefficiencies, doc)

	require.Len(t, issues, 1)
	got := issues[0]
	assert.Equal(t, []string{"A", "B"}, got.AffectedEntityIDs)
	assert.Equal(t, "A", got.Extra["source_network"])
	assert.Equal(t, "B", got.Extra["target_network"])
	assert.Equal(t, []string{"r1"}, got.Extra["routers"])
	assert.Contains(t, got.Message, "asymmetric routing")
}

func TestRoutingInefficiencies_SinglePointFailure(t *testing.T) {
	doc := &model.Document{
		Networks: numbered("A", "B", "C"),
		Routers:  []model.Router{{ID: "r1", Networks: []string{"A", "B", "C"}}},
	}

	issues := ofKind(run(RoutingInefficiencies, doc), "router-single-point-failure")

	require.Len(t, issues, 3)
	got := issues[0]
	assert.Equal(t, "r1", got.Extra["router"])
	assert.Contains(t, got.AffectedEntityIDs, "r1")
	assert.Equal(t, 2, got.Extra["connected_networks_count"])
}

func TestRoutingInefficiencies_MissingRedundancy(t *testing.T) {
	issues := ofKind(run(RoutingInefficiencies, chain(4)), "missing-redundancy")

	assert.Equal(t, [][]string{{"n1"}, {"n2"}}, affected(issues))
}

func TestRoutingInefficiencies_LongPath(t *testing.T) {
	tests := []struct {
		name     string
		networks int
		want     int
	}{
		{"four hops", 5, 0},
		{"five hops", 6, 1},
		{"six hops", 7, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			issues := ofKind(run(RoutingInefficiencies, chain(tt.networks)), "suboptimal-routing-path")
			assert.Len(t, issues, tt.want)
		})
	}
}

func TestRoutingInefficiencies_LongPathDetail(t *testing.T) {
	issues := ofKind(run(RoutingInefficiencies, chain(6)), "suboptimal-routing-path")

	require.Len(t, issues, 1)
	got := issues[0]
	assert.Equal(t, []string{"n0", "n5"}, got.AffectedEntityIDs)
	assert.Equal(t, 5, got.Extra["path_length"])
	assert.Equal(t, []string{"n0", "n1", "n2", "n3", "n4", "n5"}, got.Extra["routing_path"])
}

func TestArticulationPoints(t *testing.T) {
	doc := &model.Document{
		Networks: numbered("A", "B", "C", "D", "E"),
		Routers: []model.Router{
			{ID: "r1", Networks: []string{"A", "B"}},
			{ID: "r2", Networks: []string{"B", "C"}},
			{ID: "r3", Networks: []string{"C", "A"}},
			{ID: "r4", Networks: []string{"C", "D"}},
			{ID: "r5", Networks: []string{"E", "E"}},
		},
	}

	assert.Equal(t, []string{"C"}, articulationPoints(NewInput(doc).Graph))
}
