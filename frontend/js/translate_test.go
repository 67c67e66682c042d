package js

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/dcegraph/flow"
)

func boundHandle(t *testing.T, g *flow.Graph, label string) flow.NodeHandle {
	t.Helper()
	for _, n := range g.BoundNames() {
		if n.Label == label {
			h, ok := g.Lookup(n)
			require.True(t, ok)
			return h
		}
	}
	t.Fatalf("no Name bound with label %q", label)
	return flow.NoHandle
}

func TestParseSource_DirectBindingFlows(t *testing.T) {
	src := `
function f() {}
var a = f;
var b = a;
`
	root, _, err := ParseSource([]byte(src))
	require.NoError(t, err)

	g := flow.NewGraph()
	g.Apply(root)

	aHandle := boundHandle(t, g, "a")
	bHandle := boundHandle(t, g, "b")

	assert.Len(t, g.Functions(aHandle), 1)
	assert.Len(t, g.Functions(bHandle), 1)
}

func TestParseSource_ObjectMemberPropagation(t *testing.T) {
	src := `
function f() {}
var o = { m: f };
`
	root, _, err := ParseSource([]byte(src))
	require.NoError(t, err)

	g := flow.NewGraph()
	g.Apply(root)

	oHandle := boundHandle(t, g, "o")
	member, ok := g.MemberIfPresent(oHandle, "m")
	require.True(t, ok)
	assert.Len(t, g.Functions(member), 1)
}

func TestParseSource_DynamicAccessContaminates(t *testing.T) {
	src := `
function f() {}
var o = { m: f };
o[k];
`
	root, _, err := ParseSource([]byte(src))
	require.NoError(t, err)

	g := flow.NewGraph()
	g.Apply(root)

	oHandle := boundHandle(t, g, "o")
	dyn, ok := g.DynamicMemberIfPresent(oHandle)
	require.True(t, ok)
	assert.Len(t, g.Functions(dyn), 1)
}

func TestParseSource_LogicalOrUnion(t *testing.T) {
	src := `
function f() {}
function g() {}
var a = f;
var b = g;
var c = a || b;
`
	root, _, err := ParseSource([]byte(src))
	require.NoError(t, err)

	graph := flow.NewGraph()
	graph.Apply(root)

	cHandle := boundHandle(t, graph, "c")
	assert.Len(t, graph.Functions(cHandle), 2)
}
