// Package report computes and serializes the reachability overlay the
// CLI produces on top of a saturated flow.Graph: given a set of root
// Names (a program's entry points), which function definitions are
// reachable and which are therefore dead code.
package report

import (
	"fmt"
	"io"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/viant/dcegraph/flow"
)

// FunctionRef identifies one reachable FuncDef for reporting purposes.
// Label mirrors the declared Name's spelling when available (anonymous
// functions report an empty label, distinguished only by position in the
// Live slice).
type FunctionRef struct {
	Label string `yaml:"label"`
}

// Report is the serializable result of a reachability walk.
type Report struct {
	// Roots lists the spellings of the root Names the walk started from,
	// in the order they were supplied.
	Roots []string `yaml:"roots"`
	// Live lists every FuncDef reached from Roots (plus the always-live
	// dynamic node), deduplicated and ordered for deterministic output.
	Live []FunctionRef `yaml:"live"`
}

// WriteYAML serializes the report to w.
func (r *Report) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return nil
}

// Compute walks g from roots (plus the graph's dynamic node, which is
// always reachable per flow's invariants) and returns every FuncDef
// observed along the way. Reachability here means "points-to observed at
// a root, or at any node transitively connected to one" — the exact
// notion functions(n) models (SPEC_FULL.md §3, §4.1).
func Compute(g *flow.Graph, roots []*flow.Name) *Report {
	report := &Report{Roots: make([]string, 0, len(roots))}

	visited := make(map[flow.NodeHandle]bool)
	var queue []flow.NodeHandle

	enqueue := func(h flow.NodeHandle) {
		if h == flow.NoHandle || visited[h] {
			return
		}
		visited[h] = true
		queue = append(queue, h)
	}

	for _, root := range roots {
		report.Roots = append(report.Roots, root.Label)
		if h, ok := g.Lookup(root); ok {
			enqueue(h)
		}
	}
	enqueue(g.DynamicNode())

	liveFuncs := make(map[*flow.FuncDef]bool)
	for len(queue) > 0 {
		h := queue[0]
		queue = queue[1:]

		for _, fn := range g.Functions(h) {
			liveFuncs[fn] = true
		}
		for _, name := range g.MemberNames(h) {
			if member, ok := g.MemberIfPresent(h, name); ok {
				enqueue(member)
			}
		}
		if dyn, ok := g.DynamicMemberIfPresent(h); ok {
			enqueue(dyn)
		}
		for i := 0; i < g.ParameterCount(h); i++ {
			if p, ok := g.ParameterIfPresent(h, i); ok {
				enqueue(p)
			}
		}
		if rv, ok := g.ReturnValueIfPresent(h); ok {
			enqueue(rv)
		}
		for _, s := range g.Successors(h) {
			enqueue(s)
		}
	}

	for fn := range liveFuncs {
		label := ""
		if fn.Name != nil {
			label = fn.Name.Label
		}
		report.Live = append(report.Live, FunctionRef{Label: label})
	}
	sort.Slice(report.Live, func(i, j int) bool { return report.Live[i].Label < report.Live[j].Label })

	return report
}
