package golang

import (
	"go/parser"
	"go/token"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/dcegraph/flow"
)

func parseSource(t *testing.T, src string) flow.Node {
	t.Helper()
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "test.go", src, 0)
	require.NoError(t, err)
	return File(fset, file, NewNames("example.org/m"))
}

func TestFile_DirectBindingFlows(t *testing.T) {
	src := `package p

func f() {}

var a = f
var b = a
`
	root := parseSource(t, src)

	g := flow.NewGraph()
	g.Apply(root)

	aName := findBoundName(g, "a")
	bName := findBoundName(g, "b")
	require.NotNil(t, aName)
	require.NotNil(t, bName)

	aHandle, _ := g.Lookup(aName)
	bHandle, _ := g.Lookup(bName)
	assert.Len(t, g.Functions(aHandle), 1)
	assert.Len(t, g.Functions(bHandle), 1)
}

func TestFile_StructLiteralMemberPropagation(t *testing.T) {
	src := `package p

func f() {}

var o = struct{ M func() }{M: f}
`
	root := parseSource(t, src)

	g := flow.NewGraph()
	g.Apply(root)

	oName := findBoundName(g, "o")
	require.NotNil(t, oName)
	oHandle, _ := g.Lookup(oName)

	member, ok := g.MemberIfPresent(oHandle, "M")
	require.True(t, ok)
	assert.Len(t, g.Functions(member), 1)
}

func TestFile_ReassignmentThroughSelector(t *testing.T) {
	src := `package p

func f() {}

type T struct{ M func() }

func use(t T) {
	t.M = f
	g := t.M
	_ = g
}
`
	root := parseSource(t, src)

	g := flow.NewGraph()
	g.Apply(root)

	gName := findBoundName(g, "g")
	require.NotNil(t, gName)
	gHandle, _ := g.Lookup(gName)
	assert.Len(t, g.Functions(gHandle), 1)
}

// findBoundName is a test helper that walks a Names table indirectly by
// re-deriving the spelling -> *flow.Name mapping the translator produced,
// since the translator keeps that table private to the front-end.
func findBoundName(g *flow.Graph, label string) *flow.Name {
	for _, n := range g.BoundNames() {
		if n.Label == label {
			return n
		}
	}
	return nil
}
