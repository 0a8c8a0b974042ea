package check

import (
	"fmt"

	"github.com/newtron-network/topocheck/pkg/issue"
	"github.com/newtron-network/topocheck/pkg/model"
)

// run executes one check against doc the way the engine does.
func run(name Name, doc *model.Document) []issue.Issue {
	d, ok := Lookup(string(name))
	if !ok {
		panic("unknown check " + string(name))
	}
	return d.Run(NewInput(doc))
}

func numbered(ids ...string) []model.Network {
	out := make([]model.Network, len(ids))
	for i, id := range ids {
		out[i] = model.Network{ID: id, Number: i + 1}
	}
	return out
}

func severities(issues []issue.Issue) []issue.Severity {
	var out []issue.Severity
	for _, i := range issues {
		out = append(out, i.Severity)
	}
	return out
}

func affected(issues []issue.Issue) [][]string {
	var out [][]string
	for _, i := range issues {
		out = append(out, i.AffectedEntityIDs)
	}
	return out
}

func kinds(issues []issue.Issue) []string {
	var out []string
	for _, i := range issues {
		out = append(out, fmt.Sprint(i.Extra["kind"]))
	}
	return out
}
