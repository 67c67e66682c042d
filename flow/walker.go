package flow

// Apply seeds the graph from root in a single pre-order pass and then
// drains the worklist to a fixed point. Control flow: seed, then
// saturate — the walker never calls drain itself, so a full program can
// be seeded (across many top-level statements, across many files) before
// the first callback runs, exactly as the flow-insensitive,
// context-insensitive analysis requires.
func (g *Graph) Apply(root Node) {
	g.eval(root)
	g.drain()
}

// eval walks n in pre-order, seeding the graph per the rules of
// SPEC_FULL.md §4.3, and returns the result set of the expression most
// recently visited (resultNodes in the spec's terms).
func (g *Graph) eval(n Node) []NodeHandle {
	if n == nil {
		return nil
	}

	switch v := n.(type) {
	case *BinaryExpr:
		return g.evalBinary(v)
	case *FuncDef:
		return g.evalFuncDef(v)
	case *ObjectLiteral:
		return g.evalObjectLiteral(v)
	case *VarDecl:
		return g.evalVarDecl(v)
	case *NameRef:
		return g.evalNameRef(v)
	case *IndexExpr:
		return g.evalIndexExpr(v)
	default:
		// unmodeled-construct (§7): recurse generically, conservative
		// empty result unless the last child produced one.
		var last []NodeHandle
		for _, c := range n.Children() {
			last = g.eval(c)
		}
		return last
	}
}

func (g *Graph) evalBinary(b *BinaryExpr) []NodeHandle {
	switch b.Op {
	case OpAssign:
		lhs := g.eval(b.Left)
		rhs := g.eval(b.Right)
		for _, l := range lhs {
			for _, r := range rhs {
				g.ConnectTo(r, l)
			}
		}
		return lhs
	case OpLogicalOr:
		a := g.eval(b.Left)
		c := g.eval(b.Right)
		union := make([]NodeHandle, 0, len(a)+len(c))
		union = append(union, a...)
		union = append(union, c...)
		return union
	default:
		g.eval(b.Left)
		return g.eval(b.Right)
	}
}

func (g *Graph) evalFuncDef(f *FuncDef) []NodeHandle {
	n := g.newNode(f)
	g.bindFirst(f.Name, n)
	g.AddFunction(n, f)
	g.eval(f.Body)
	return []NodeHandle{n}
}

func (g *Graph) evalObjectLiteral(o *ObjectLiteral) []NodeHandle {
	n := g.newNode(o)
	for _, init := range o.Inits {
		if computed, ok := init.Label.(ComputedLabel); ok {
			g.eval(computed.Expr)
		}
		values := g.eval(init.Value)
		if name, ok := init.staticName(); ok {
			member := g.GetMember(n, name)
			for _, v := range values {
				g.ConnectTo(v, member)
			}
		} else {
			dyn := g.GetDynamicMember(n)
			for _, v := range values {
				g.ConnectTo(v, dyn)
			}
		}
	}
	return []NodeHandle{n}
}

func (g *Graph) evalVarDecl(v *VarDecl) []NodeHandle {
	n := g.newNode(v)
	g.bindFirst(v.Name, n)
	if v.Init != nil {
		// SPEC_FULL.md §9 records this as an explicit Open Question:
		// the source this spec was distilled from evaluates the
		// initializer but never connects its result into n. The
		// worked scenarios (and the primary reading of the "direct
		// binding" one) all assume the edge is present, so that is
		// the choice made here; evalVarDeclElidingInitEdge below
		// reproduces the alternate, documented-bug behavior for the
		// regression test that pins it down.
		for _, r := range g.eval(v.Init) {
			g.ConnectTo(r, n)
		}
	}
	return nil
}

// evalVarDeclElidingInitEdge mirrors evalVarDecl but reproduces the
// literal, unfixed source behavior described in SPEC_FULL.md §9: the
// initializer is still walked for its side effects, but its result is
// never connected into the declared Name's node. It exists purely so the
// documented gap stays pinned down by a test instead of silently
// disappearing.
func (g *Graph) evalVarDeclElidingInitEdge(v *VarDecl) []NodeHandle {
	n := g.newNode(v)
	g.bindFirst(v.Name, n)
	if v.Init != nil {
		g.eval(v.Init)
	}
	return nil
}

func (g *Graph) evalNameRef(ref *NameRef) []NodeHandle {
	if ref.Qualifier != nil {
		qualifiers := g.eval(ref.Qualifier)
		out := make([]NodeHandle, 0, len(qualifiers))
		for _, q := range qualifiers {
			out = append(out, g.GetMember(q, ref.Member))
		}
		return out
	}
	if h, ok := g.Lookup(ref.Name); ok {
		return []NodeHandle{h}
	}
	// unknown-name (§7): substitute the dynamic node, never a failure.
	return []NodeHandle{g.dynamicNode}
}

func (g *Graph) evalIndexExpr(idx *IndexExpr) []NodeHandle {
	arrays := g.eval(idx.Array)
	if idx.StringIndex == nil {
		g.eval(idx.Index)
	}
	out := make([]NodeHandle, 0, len(arrays))
	for _, a := range arrays {
		if idx.StringIndex != nil {
			out = append(out, g.GetMember(a, *idx.StringIndex))
		} else {
			out = append(out, g.GetDynamicMember(a))
		}
	}
	return out
}
