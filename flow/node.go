package flow

// NodeHandle is an arena index into Graph.nodes. The graph is densely
// cyclic once bidirectional member mirroring kicks in (§4.2), so nodes
// are addressed by handle rather than by pointer: edges and handler
// subscriptions reference a NodeHandle, which sidesteps reference-cycle
// bookkeeping entirely and lets Go's ordinary GC reclaim the whole arena
// at once when the Graph is dropped.
type NodeHandle int

// NoHandle is the sentinel for "not yet created" structural slots
// (dynamic member, parameters, return value).
const NoHandle NodeHandle = -1

// Handler is the event-bus subscriber. Each field is an optional
// callback; a nil field is a no-op. Installed per-node via AddHandler,
// handlers are retro-notified of every fact already present on the node
// at subscription time (see AddHandler), and from then on fire once per
// new fact.
type Handler struct {
	FunctionAdded      func(f *FuncDef)
	ParameterAdded     func(i int, v NodeHandle)
	ReturnValueAdded   func(v NodeHandle)
	DynamicMemberAdded func(v NodeHandle)
	MemberAdded        func(name string, v NodeHandle)
}

// nodeState holds the facts and subscriptions of one arena slot.
type nodeState struct {
	origin Node // diagnostic only

	functions map[*FuncDef]struct{}
	funcOrder []*FuncDef

	members     map[string]NodeHandle
	memberOrder []string

	dynamic NodeHandle

	params []NodeHandle // index -> handle; NoHandle marks a gap

	returnValue NodeHandle

	successors map[NodeHandle]struct{}
	succOrder  []NodeHandle

	handlers []Handler
}

func newNodeState(origin Node) *nodeState {
	return &nodeState{
		dynamic:     NoHandle,
		returnValue: NoHandle,
		origin:      origin,
	}
}

// Graph owns every Node created during a run, plus the Name -> NodeHandle
// bindings and the single dynamic-node sentinel. It is not safe for
// concurrent use; see SPEC_FULL.md §5.
type Graph struct {
	nodes       []*nodeState
	names       map[*Name]NodeHandle
	dynamicNode NodeHandle
	queue       []func()
}

// NewGraph creates an empty graph with its dynamic node already
// allocated.
func NewGraph() *Graph {
	g := &Graph{names: make(map[*Name]NodeHandle)}
	g.dynamicNode = g.newNode(nil)
	return g
}

// DynamicNode returns this graph's instance-wide unknown sink.
func (g *Graph) DynamicNode() NodeHandle { return g.dynamicNode }

func (g *Graph) state(h NodeHandle) *nodeState { return g.nodes[h] }

func (g *Graph) newNode(origin Node) NodeHandle {
	g.nodes = append(g.nodes, newNodeState(origin))
	return NodeHandle(len(g.nodes) - 1)
}

// NewNode allocates a fresh, unbound node (used by the walker for
// function definitions, object literals, and variable declarations).
func (g *Graph) NewNode(origin Node) NodeHandle { return g.newNode(origin) }

// Origin returns the AST node that introduced h, if any. Diagnostic only.
func (g *Graph) Origin(h NodeHandle) Node { return g.state(h).origin }

func (g *Graph) enqueue(f func()) { g.queue = append(g.queue, f) }

// drain runs the worklist to quiescence. Every Node mutation enqueues
// rather than invokes its handlers directly, so a handler never observes
// a half-grown node, and callbacks fire in the exact order their facts
// were created.
func (g *Graph) drain() {
	for len(g.queue) > 0 {
		next := g.queue[0]
		g.queue = g.queue[1:]
		next()
	}
}

// BindName returns the Node for n, creating it on first request. A nil
// Name is a no-op returning NoHandle (the malformed-ast case of §7: a
// function/variable declaration with no Name slot simply isn't bound).
func (g *Graph) BindName(n *Name) NodeHandle {
	if n == nil {
		return NoHandle
	}
	if h, ok := g.names[n]; ok {
		return h
	}
	h := g.newNode(nil)
	g.names[n] = h
	return h
}

// bindFirst binds n to h unless n already has a binding: re-declaration
// is not modeled, so only the first declaration site wins (§3 invariant).
func (g *Graph) bindFirst(n *Name, h NodeHandle) {
	if n == nil {
		return
	}
	if _, exists := g.names[n]; exists {
		return
	}
	g.names[n] = h
}

// Lookup returns the Node bound to n, if any.
func (g *Graph) Lookup(n *Name) (NodeHandle, bool) {
	if n == nil {
		return NoHandle, false
	}
	h, ok := g.names[n]
	return h, ok
}

// BoundNames returns every Name currently bound to a node, in
// unspecified order. Intended for front-end tests and tooling that need
// to recover a Name by its spelling without keeping their own table.
func (g *Graph) BoundNames() []*Name {
	out := make([]*Name, 0, len(g.names))
	for n := range g.names {
		out = append(out, n)
	}
	return out
}

// AddFunction adds f to h's function set. Idempotent: adding the same
// function twice fires handlers only on the first addition.
func (g *Graph) AddFunction(h NodeHandle, f *FuncDef) {
	st := g.state(h)
	if st.functions == nil {
		st.functions = make(map[*FuncDef]struct{})
	}
	if _, ok := st.functions[f]; ok {
		return
	}
	st.functions[f] = struct{}{}
	st.funcOrder = append(st.funcOrder, f)

	handlers := append([]Handler(nil), st.handlers...)
	g.enqueue(func() {
		for _, hd := range handlers {
			if hd.FunctionAdded != nil {
				hd.FunctionAdded(f)
			}
		}
	})
}

// GetMember returns the child Node for name, creating it on first
// request (idempotent structural accessor).
func (g *Graph) GetMember(h NodeHandle, name string) NodeHandle {
	st := g.state(h)
	if st.members == nil {
		st.members = make(map[string]NodeHandle)
	}
	if c, ok := st.members[name]; ok {
		return c
	}
	c := g.newNode(nil)
	st.members[name] = c
	st.memberOrder = append(st.memberOrder, name)

	handlers := append([]Handler(nil), st.handlers...)
	g.enqueue(func() {
		for _, hd := range handlers {
			if hd.MemberAdded != nil {
				hd.MemberAdded(name, c)
			}
		}
	})
	return c
}

// GetDynamicMember returns h's dynamic-member child, creating it on
// first request. Creation also installs an internal handler on h that
// aliases every named member — past and future alike, via the ordinary
// retro-notification of AddHandler — bidirectionally with the dynamic
// child, which is what lets an indexed access contaminate (and be
// contaminated by) every statically-named member.
func (g *Graph) GetDynamicMember(h NodeHandle) NodeHandle {
	st := g.state(h)
	if st.dynamic != NoHandle {
		return st.dynamic
	}
	c := g.newNode(nil)
	st.dynamic = c

	handlers := append([]Handler(nil), st.handlers...)
	g.enqueue(func() {
		for _, hd := range handlers {
			if hd.DynamicMemberAdded != nil {
				hd.DynamicMemberAdded(c)
			}
		}
	})

	g.AddHandler(h, Handler{
		MemberAdded: func(_ string, v NodeHandle) {
			g.ConnectBidirectional(c, v)
		},
	})
	return c
}

// GetParameter returns the parameter Node at index i, creating it (and
// padding any skipped indices with NoHandle) on first request.
func (g *Graph) GetParameter(h NodeHandle, i int) NodeHandle {
	st := g.state(h)
	for len(st.params) <= i {
		st.params = append(st.params, NoHandle)
	}
	if st.params[i] != NoHandle {
		return st.params[i]
	}
	c := g.newNode(nil)
	st.params[i] = c

	handlers := append([]Handler(nil), st.handlers...)
	g.enqueue(func() {
		for _, hd := range handlers {
			if hd.ParameterAdded != nil {
				hd.ParameterAdded(i, c)
			}
		}
	})
	return c
}

// GetReturnValue returns the return-value Node, creating it on first
// request.
func (g *Graph) GetReturnValue(h NodeHandle) NodeHandle {
	st := g.state(h)
	if st.returnValue != NoHandle {
		return st.returnValue
	}
	c := g.newNode(nil)
	st.returnValue = c

	handlers := append([]Handler(nil), st.handlers...)
	g.enqueue(func() {
		for _, hd := range handlers {
			if hd.ReturnValueAdded != nil {
				hd.ReturnValueAdded(c)
			}
		}
	})
	return c
}

// AddHandler subscribes hd to h. Per §4.1, a newly subscribed handler is
// retro-notified of every fact already present on h — functions, then
// named members, then the dynamic member, parameters and return value,
// each kind in creation order — so that installing an edge late still
// observes every earlier fact exactly once.
func (g *Graph) AddHandler(h NodeHandle, hd Handler) {
	st := g.state(h)
	st.handlers = append(st.handlers, hd)

	funcs := append([]*FuncDef(nil), st.funcOrder...)
	members := append([]string(nil), st.memberOrder...)
	memberTargets := make(map[string]NodeHandle, len(members))
	for _, name := range members {
		memberTargets[name] = st.members[name]
	}
	dyn := st.dynamic
	params := append([]NodeHandle(nil), st.params...)
	rv := st.returnValue

	g.enqueue(func() {
		for _, f := range funcs {
			if hd.FunctionAdded != nil {
				hd.FunctionAdded(f)
			}
		}
		for _, name := range members {
			if hd.MemberAdded != nil {
				hd.MemberAdded(name, memberTargets[name])
			}
		}
		if dyn != NoHandle && hd.DynamicMemberAdded != nil {
			hd.DynamicMemberAdded(dyn)
		}
		for i, p := range params {
			if p != NoHandle && hd.ParameterAdded != nil {
				hd.ParameterAdded(i, p)
			}
		}
		if rv != NoHandle && hd.ReturnValueAdded != nil {
			hd.ReturnValueAdded(rv)
		}
	})
}

// ConnectTo adds the directed edge self -> other. Edges are a set: a
// repeat add is a no-op. On the first add it installs the paired
// forward/reverse handlers that realize the propagation contracts of
// §4.2.
func (g *Graph) ConnectTo(self, other NodeHandle) {
	st := g.state(self)
	if st.successors == nil {
		st.successors = make(map[NodeHandle]struct{})
	}
	if _, ok := st.successors[other]; ok {
		return
	}
	st.successors[other] = struct{}{}
	st.succOrder = append(st.succOrder, other)

	a, b := self, other

	// Forward handler on A (source -> sink): functions flow forward
	// only; parameters are contravariant inputs; returns are
	// contravariant outputs; members alias bidirectionally.
	g.AddHandler(a, Handler{
		FunctionAdded: func(f *FuncDef) {
			g.AddFunction(b, f)
		},
		ParameterAdded: func(i int, p NodeHandle) {
			g.ConnectTo(p, g.GetParameter(b, i))
		},
		ReturnValueAdded: func(rv NodeHandle) {
			g.ConnectTo(g.GetReturnValue(b), rv)
		},
		DynamicMemberAdded: func(d NodeHandle) {
			g.ConnectBidirectional(g.GetDynamicMember(b), d)
		},
		MemberAdded: func(name string, v NodeHandle) {
			g.ConnectBidirectional(v, g.GetMember(b, name))
		},
	})

	// Reverse handler on B, complementary to the forward one.
	g.AddHandler(b, Handler{
		ReturnValueAdded: func(rv NodeHandle) {
			g.ConnectTo(rv, g.GetReturnValue(a))
		},
		DynamicMemberAdded: func(d NodeHandle) {
			g.ConnectBidirectional(g.GetDynamicMember(a), d)
		},
		MemberAdded: func(name string, v NodeHandle) {
			g.ConnectBidirectional(g.GetMember(a, name), v)
		},
	})
}

// ConnectBidirectional connects a and b in both directions.
func (g *Graph) ConnectBidirectional(a, b NodeHandle) {
	g.ConnectTo(a, b)
	g.ConnectTo(b, a)
}

// Functions returns the functions reaching h, in the order they were
// added.
func (g *Graph) Functions(h NodeHandle) []*FuncDef {
	return append([]*FuncDef(nil), g.state(h).funcOrder...)
}

// MemberNames returns h's named member keys, in the order they were
// first requested.
func (g *Graph) MemberNames(h NodeHandle) []string {
	return append([]string(nil), g.state(h).memberOrder...)
}

// MemberIfPresent returns h's member node for name without creating it.
func (g *Graph) MemberIfPresent(h NodeHandle, name string) (NodeHandle, bool) {
	st := g.state(h)
	c, ok := st.members[name]
	return c, ok
}

// DynamicMemberIfPresent returns h's dynamic member without creating it.
func (g *Graph) DynamicMemberIfPresent(h NodeHandle) (NodeHandle, bool) {
	st := g.state(h)
	return st.dynamic, st.dynamic != NoHandle
}

// ParameterIfPresent returns h's parameter i without creating it.
func (g *Graph) ParameterIfPresent(h NodeHandle, i int) (NodeHandle, bool) {
	st := g.state(h)
	if i < 0 || i >= len(st.params) || st.params[i] == NoHandle {
		return NoHandle, false
	}
	return st.params[i], true
}

// ParameterCount returns one past the highest requested parameter index
// (including any gaps), or 0 if none were requested.
func (g *Graph) ParameterCount(h NodeHandle) int {
	return len(g.state(h).params)
}

// ReturnValueIfPresent returns h's return-value node without creating it.
func (g *Graph) ReturnValueIfPresent(h NodeHandle) (NodeHandle, bool) {
	st := g.state(h)
	return st.returnValue, st.returnValue != NoHandle
}

// Successors returns h's outgoing edges, in the order they were added.
func (g *Graph) Successors(h NodeHandle) []NodeHandle {
	return append([]NodeHandle(nil), g.state(h).succOrder...)
}
