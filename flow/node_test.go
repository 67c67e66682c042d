package flow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetroNotificationOrdering(t *testing.T) {
	g := NewGraph()
	n := g.NewNode(nil)

	f1 := &FuncDef{Name: &Name{Label: "one"}}
	f2 := &FuncDef{Name: &Name{Label: "two"}}
	g.AddFunction(n, f1)
	g.AddFunction(n, f2)
	g.drain()

	var seen []*FuncDef
	g.AddHandler(n, Handler{FunctionAdded: func(f *FuncDef) { seen = append(seen, f) }})
	g.drain()

	// Late subscription observes every earlier fact, in the order the
	// facts were created.
	assert.Equal(t, []*FuncDef{f1, f2}, seen)
}

func TestMonotonicity(t *testing.T) {
	g := NewGraph()
	n := g.NewNode(nil)
	f := &FuncDef{Name: &Name{Label: "f"}}

	g.AddFunction(n, f)
	g.drain()
	before := g.Functions(n)

	// Further seeding can only add facts, never remove them.
	g.GetMember(n, "m")
	g.drain()
	after := g.Functions(n)

	assert.Equal(t, before, after)
	assert.Contains(t, g.MemberNames(n), "m")
}

func TestAddFunctionIsIdempotent(t *testing.T) {
	g := NewGraph()
	n := g.NewNode(nil)
	f := &FuncDef{Name: &Name{Label: "f"}}

	fired := 0
	g.AddHandler(n, Handler{FunctionAdded: func(*FuncDef) { fired++ }})
	g.AddFunction(n, f)
	g.AddFunction(n, f)
	g.drain()

	assert.Equal(t, 1, fired)
	assert.Len(t, g.Functions(n), 1)
}

func TestConnectToIsIdempotent(t *testing.T) {
	g := NewGraph()
	a := g.NewNode(nil)
	b := g.NewNode(nil)

	g.ConnectTo(a, b)
	g.ConnectTo(a, b)
	g.drain()

	assert.Equal(t, []NodeHandle{b}, g.Successors(a))
}

func TestGetParameterPadsGaps(t *testing.T) {
	g := NewGraph()
	n := g.NewNode(nil)

	p2 := g.GetParameter(n, 2)
	require.NotEqual(t, NoHandle, p2)

	_, ok0 := g.ParameterIfPresent(n, 0)
	_, ok1 := g.ParameterIfPresent(n, 1)
	_, ok2 := g.ParameterIfPresent(n, 2)
	assert.False(t, ok0)
	assert.False(t, ok1)
	assert.True(t, ok2)
	assert.Equal(t, 3, g.ParameterCount(n))
}

func TestBindFirstIgnoresRedeclaration(t *testing.T) {
	g := NewGraph()
	name := &Name{Label: "x"}
	first := g.NewNode(nil)
	second := g.NewNode(nil)

	g.bindFirst(name, first)
	g.bindFirst(name, second)

	h, ok := g.Lookup(name)
	require.True(t, ok)
	assert.Equal(t, first, h)
}

func TestBindNameNilIsNoOp(t *testing.T) {
	g := NewGraph()
	assert.Equal(t, NoHandle, g.BindName(nil))
	g.bindFirst(nil, g.NewNode(nil))
	_, ok := g.Lookup(nil)
	assert.False(t, ok)
}
