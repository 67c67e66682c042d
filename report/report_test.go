package report

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/viant/dcegraph/flow"
)

func TestCompute_DirectRootReachesFunction(t *testing.T) {
	fName := &flow.Name{Label: "f"}
	f := &flow.FuncDef{Name: fName}
	a := &flow.Name{Label: "a"}

	g := flow.NewGraph()
	g.Apply(&flow.Block{Stmts: []flow.Node{
		f,
		&flow.VarDecl{Name: a, Init: &flow.NameRef{Name: fName}},
	}})

	got := Compute(g, []*flow.Name{a})
	assert.Equal(t, []string{"a"}, got.Roots)
	assert.Equal(t, []FunctionRef{{Label: "f"}}, got.Live)
}

func TestCompute_MemberReachableFromRoot(t *testing.T) {
	fName := &flow.Name{Label: "f"}
	f := &flow.FuncDef{Name: fName}
	o := &flow.Name{Label: "o"}

	g := flow.NewGraph()
	g.Apply(&flow.Block{Stmts: []flow.Node{
		f,
		&flow.VarDecl{Name: o, Init: &flow.ObjectLiteral{Inits: []flow.ObjectInit{
			{Label: flow.IdentLabel{Spelling: "m"}, Value: &flow.NameRef{Name: fName}},
		}}},
	}})

	got := Compute(g, []*flow.Name{o})
	assert.Equal(t, []FunctionRef{{Label: "f"}}, got.Live)
}

func TestCompute_UnrootedFunctionIsNotLive(t *testing.T) {
	deadName := &flow.Name{Label: "dead"}
	dead := &flow.FuncDef{Name: deadName}
	rootName := &flow.Name{Label: "root"}

	g := flow.NewGraph()
	g.Apply(&flow.Block{Stmts: []flow.Node{
		dead,
		&flow.VarDecl{Name: rootName},
	}})

	got := Compute(g, []*flow.Name{rootName})
	assert.Empty(t, got.Live)
}

func TestCompute_YAMLRoundTrip(t *testing.T) {
	fName := &flow.Name{Label: "f"}
	f := &flow.FuncDef{Name: fName}
	a := &flow.Name{Label: "a"}

	g := flow.NewGraph()
	g.Apply(&flow.Block{Stmts: []flow.Node{
		f,
		&flow.VarDecl{Name: a, Init: &flow.NameRef{Name: fName}},
	}})

	got := Compute(g, []*flow.Name{a})

	var buf bytes.Buffer
	require.NoError(t, got.WriteYAML(&buf))

	const expectYAML = `
roots:
  - a
live:
  - label: f
`
	var expected Report
	require.NoError(t, yaml.Unmarshal([]byte(expectYAML), &expected))

	var roundTripped Report
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &roundTripped))
	assert.Equal(t, expected, roundTripped)
}
