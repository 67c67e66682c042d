// Package js translates JavaScript (and JSX) source into the synthetic
// AST package flow seeds its node graph from, using tree-sitter as the
// teacher's own JSX inspector does. Like the golang front-end, this
// package performs no analysis: it only shapes flow.Node values.
package js

import (
	"context"
	"fmt"
	"os"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"

	"github.com/viant/dcegraph/flow"
)

// Names binds JavaScript identifiers to *flow.Name identities by
// declaration-site byte offset, which tree-sitter exposes for every node
// and is stable across re-visiting the same subtree.
type Names struct {
	bySite map[uint32]*flow.Name
}

// NewNames creates an empty binding table, one per file: unlike Go,
// JavaScript module-level identity qualification is out of scope here
// (SPEC_FULL.md §3), so nothing is shared across files.
func NewNames() *Names {
	return &Names{bySite: make(map[uint32]*flow.Name)}
}

func (n *Names) forSite(node *sitter.Node, label string) *flow.Name {
	key := node.StartByte()
	if existing, ok := n.bySite[key]; ok {
		return existing
	}
	name := &flow.Name{Label: label}
	n.bySite[key] = name
	return name
}

// ParseSource parses JavaScript/JSX source into a flow.Node.
func ParseSource(src []byte) (flow.Node, *Names, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(javascript.GetLanguage())

	tree, err := parser.ParseCtx(context.Background(), nil, src)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse JavaScript source: %w", err)
	}

	names := NewNames()
	t := &translator{src: src, names: names}
	return t.program(tree.RootNode()), names, nil
}

// ParseFile reads and parses a JavaScript/JSX file.
func ParseFile(path string) (flow.Node, *Names, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return ParseSource(src)
}

type translator struct {
	src   []byte
	names *Names
	// decls tracks the declaration site of every identifier binding seen
	// via a variable_declarator or a function/method name (parameters are
	// not recorded), so a later
	// identifier reference resolves to the same declaration by lexical
	// text match within the file — tree-sitter gives us no scope-graph,
	// so this is a best-effort single-file resolution, same fidelity as
	// the teacher's own regex/string-based JSX analyzer falls back to.
	decls map[string]*sitter.Node
}

func (t *translator) program(root *sitter.Node) flow.Node {
	if t.decls == nil {
		t.decls = make(map[string]*sitter.Node)
	}
	return &flow.Block{Stmts: t.children(root)}
}

func (t *translator) children(node *sitter.Node) []flow.Node {
	var out []flow.Node
	count := int(node.NamedChildCount())
	for i := 0; i < count; i++ {
		if n := t.node(node.NamedChild(i)); n != nil {
			out = append(out, n)
		}
	}
	return out
}

func (t *translator) node(n *sitter.Node) flow.Node {
	if n == nil {
		return nil
	}
	switch n.Type() {
	case "assignment_expression":
		return t.assignmentExpression(n)
	case "binary_expression":
		return t.binaryExpression(n)
	case "function", "function_declaration", "arrow_function", "method_definition":
		return t.functionLike(n)
	case "object":
		return t.object(n)
	case "variable_declarator":
		return t.variableDeclarator(n)
	case "identifier", "shorthand_property_identifier":
		return t.identifier(n)
	case "member_expression":
		return t.memberExpression(n)
	case "subscript_expression":
		return t.subscriptExpression(n)
	case "parenthesized_expression":
		return t.node(n.NamedChild(0))
	default:
		return &flow.Block{Stmts: t.children(n)}
	}
}

func (t *translator) assignmentExpression(n *sitter.Node) flow.Node {
	left := n.ChildByFieldName("left")
	right := n.ChildByFieldName("right")
	return &flow.BinaryExpr{Op: flow.OpAssign, Left: t.node(left), Right: t.node(right)}
}

func (t *translator) binaryExpression(n *sitter.Node) flow.Node {
	op := flow.OpOther
	if operator := n.ChildByFieldName("operator"); operator != nil && operator.Content(t.src) == "||" {
		op = flow.OpLogicalOr
	}
	left := n.ChildByFieldName("left")
	right := n.ChildByFieldName("right")
	return &flow.BinaryExpr{Op: op, Left: t.node(left), Right: t.node(right)}
}

func (t *translator) functionLike(n *sitter.Node) flow.Node {
	var name *flow.Name
	if nameNode := n.ChildByFieldName("name"); nameNode != nil {
		label := nameNode.Content(t.src)
		name = t.names.forSite(nameNode, label)
		t.decls[label] = nameNode
	}
	body := n.ChildByFieldName("body")
	return &flow.FuncDef{Name: name, Body: t.node(body)}
}

func (t *translator) object(n *sitter.Node) flow.Node {
	var inits []flow.ObjectInit
	var generic []flow.Node
	count := int(n.NamedChildCount())
	for i := 0; i < count; i++ {
		pair := n.NamedChild(i)
		switch pair.Type() {
		case "pair":
			key := pair.ChildByFieldName("key")
			value := pair.ChildByFieldName("value")
			inits = append(inits, flow.ObjectInit{Label: t.label(key), Value: t.node(value)})
		case "shorthand_property_identifier":
			label := pair.Content(t.src)
			inits = append(inits, flow.ObjectInit{
				Label: flow.IdentLabel{Spelling: label},
				Value: t.identifier(pair),
			})
		case "computed_property_name":
			// handled only when nested under a "pair" above; a bare
			// computed_property_name at this level shouldn't occur.
		default:
			// spread element or similar: walk generically for the
			// values it carries, with no static or dynamic member.
			generic = append(generic, t.node(pair))
		}
	}
	if len(generic) > 0 {
		// The literal goes last so the Block's result is the literal's node.
		return &flow.Block{Stmts: append(generic, &flow.ObjectLiteral{Inits: inits})}
	}
	return &flow.ObjectLiteral{Inits: inits}
}

func (t *translator) label(key *sitter.Node) flow.Label {
	switch key.Type() {
	case "property_identifier", "identifier":
		return flow.IdentLabel{Spelling: key.Content(t.src)}
	case "string":
		return flow.StringLabel{Value: stringContent(key.Content(t.src))}
	case "computed_property_name":
		return flow.ComputedLabel{Expr: t.node(key.NamedChild(0))}
	default:
		return flow.ComputedLabel{Expr: t.node(key)}
	}
}

func stringContent(raw string) string {
	if len(raw) >= 2 {
		return raw[1 : len(raw)-1]
	}
	return raw
}

func (t *translator) variableDeclarator(n *sitter.Node) flow.Node {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil || nameNode.Type() != "identifier" {
		// Destructuring patterns have no single declared Name to bind;
		// walk the value generically for its side effects.
		return t.node(n.ChildByFieldName("value"))
	}
	label := nameNode.Content(t.src)
	t.decls[label] = nameNode
	return &flow.VarDecl{
		Name: t.names.forSite(nameNode, label),
		Init: t.node(n.ChildByFieldName("value")),
	}
}

func (t *translator) identifier(n *sitter.Node) flow.Node {
	label := n.Content(t.src)
	site, ok := t.decls[label]
	if !ok {
		site = n
	}
	return &flow.NameRef{Name: t.names.forSite(site, label)}
}

func (t *translator) memberExpression(n *sitter.Node) flow.Node {
	object := n.ChildByFieldName("object")
	property := n.ChildByFieldName("property")
	return &flow.NameRef{Qualifier: t.node(object), Member: property.Content(t.src)}
}

func (t *translator) subscriptExpression(n *sitter.Node) flow.Node {
	object := n.ChildByFieldName("object")
	index := n.ChildByFieldName("index")
	if index != nil && index.Type() == "string" {
		s := stringContent(index.Content(t.src))
		return &flow.IndexExpr{Array: t.node(object), StringIndex: &s}
	}
	return &flow.IndexExpr{Array: t.node(object), Index: t.node(index)}
}
