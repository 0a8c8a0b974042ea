package check

import (
	"github.com/newtron-network/topocheck/pkg/model"
	"github.com/newtron-network/topocheck/pkg/topology"
)

// Input is what a document-scoped check reads: the document and its
// topology graph, both shared read-only between concurrent checks.
type Input struct {
	Doc   *model.Document
	Graph *topology.Graph
}

// NewInput builds the topology graph for doc.
func NewInput(doc *model.Document) *Input {
	return &Input{Doc: doc, Graph: topology.Build(doc)}
}
