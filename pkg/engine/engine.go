// Package engine runs a selection of checks over one or more documents and
// returns one deterministically ordered issue list.
package engine

import (
	"context"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/newtron-network/topocheck/pkg/check"
	"github.com/newtron-network/topocheck/pkg/issue"
	"github.com/newtron-network/topocheck/pkg/model"
	"github.com/newtron-network/topocheck/pkg/util"
)

// Engine holds execution options. Checks themselves are stateless, so one
// Engine may serve concurrent Run calls.
type Engine struct {
	concurrency int
}

// Option configures an Engine.
type Option func(*Engine)

// WithConcurrency limits how many check tasks run at once. Values below 1
// mean one task per CPU.
func WithConcurrency(n int) Option {
	return func(e *Engine) {
		e.concurrency = n
	}
}

// New creates an engine.
func New(opts ...Option) *Engine {
	e := &Engine{}
	for _, opt := range opts {
		opt(e)
	}
	if e.concurrency < 1 {
		e.concurrency = runtime.GOMAXPROCS(0)
	}
	return e
}

// Run is New().Run with default options.
func Run(ctx context.Context, docs []*model.Document, names []string) ([]issue.Issue, error) {
	return New().Run(ctx, docs, names)
}

type task struct {
	def check.Definition
	in  *check.Input // nil for corpus checks
}

// Run resolves names against the check catalog and executes every selected
// check: document checks once per document, corpus checks once over all of
// docs. An unknown check name fails with *check.ConfigurationError before
// anything runs. Document issues are tagged with extra["document"].
//
// The result depends only on the inputs: tasks run in parallel but each
// writes its own slot, and the merged list is sorted with issue.Sort.
func (e *Engine) Run(ctx context.Context, docs []*model.Document, names []string) ([]issue.Issue, error) {
	defs, err := check.Resolve(names)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	inputs := make([]*check.Input, len(docs))
	for i, doc := range docs {
		inputs[i] = check.NewInput(doc)
		util.WithDocument(doc.Name).Debugf("topology: %d nodes, %d edges, %d unresolved references",
			len(inputs[i].Graph.Nodes), len(inputs[i].Graph.Edges), len(inputs[i].Graph.Unresolved))
	}

	var tasks []task
	for _, def := range defs {
		switch def.Scope {
		case check.ScopeDocument:
			for _, in := range inputs {
				tasks = append(tasks, task{def: def, in: in})
			}
		case check.ScopeCorpus:
			tasks = append(tasks, task{def: def})
		}
	}

	results := make([][]issue.Issue, len(tasks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)
	for i, t := range tasks {
		i, t := i, t
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = e.execute(t, docs)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := 0
	for _, r := range results {
		total += len(r)
	}
	out := make([]issue.Issue, 0, total)
	for _, r := range results {
		out = append(out, r...)
	}
	issue.Sort(out)

	util.WithFields(map[string]interface{}{
		"documents": len(docs),
		"checks":    len(defs),
		"tasks":     len(tasks),
		"issues":    len(out),
	}).Debugf("validation finished in %s", time.Since(start).Round(time.Millisecond))
	return out, nil
}

func (e *Engine) execute(t task, docs []*model.Document) []issue.Issue {
	if t.in == nil {
		issues := t.def.RunCorpus(docs)
		util.WithCheck(string(t.def.Name), "").Debugf("%d issues", len(issues))
		return issues
	}

	name := t.in.Doc.Name
	issues := t.def.Run(t.in)
	for i := range issues {
		issues[i] = issues[i].With("document", name)
	}
	util.WithCheck(string(t.def.Name), name).Debugf("%d issues", len(issues))
	return issues
}
