// Package golang translates Go source into the synthetic AST that
// package flow seeds its node graph from. It performs no analysis of its
// own: every construct it recognizes is handed off as a flow.Node. Calls,
// returns and the bodies of if/for/range statements are wrapped in a
// flow.Block so the walker's generic recursion still reaches them; a
// statement or expression of any other kind is dropped together with its
// sub-expressions (a for loop's init, condition and post included).
package golang

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"

	"github.com/viant/dcegraph/flow"
	"github.com/viant/dcegraph/internal/repository"
)

// Names binds Go declarations to *flow.Name identities, shared across
// every file of one package so that a package-level symbol resolves to
// the same Name regardless of which file references it.
type Names struct {
	modulePath string
	byObject   map[*ast.Object]*flow.Name
	byQualname map[string]*flow.Name
}

// NewNames creates a binding table qualified by modulePath (the enclosing
// Go module path, or "" when the file isn't part of a detected module).
func NewNames(modulePath string) *Names {
	return &Names{
		modulePath: modulePath,
		byObject:   make(map[*ast.Object]*flow.Name),
		byQualname: make(map[string]*flow.Name),
	}
}

func (n *Names) forObject(obj *ast.Object, label string) *flow.Name {
	if obj == nil {
		// No *ast.Object (e.g. package-qualified or resolver-less
		// identifiers): fall back to spelling alone, scoped to this
		// table so it never collides across packages.
		return n.forQualified(label, label)
	}
	if existing, ok := n.byObject[obj]; ok {
		return existing
	}
	name := &flow.Name{Label: label}
	n.byObject[obj] = name
	return name
}

func (n *Names) forQualified(qualifier, label string) *flow.Name {
	key := fmt.Sprintf("%s.%s#%s", n.modulePath, qualifier, label)
	if existing, ok := n.byQualname[key]; ok {
		return existing
	}
	name := &flow.Name{Label: label}
	n.byQualname[key] = name
	return name
}

// File translates one parsed Go file into a flow.Node. names is the
// shared binding table for the enclosing package (see NewNames).
func File(fset *token.FileSet, file *ast.File, names *Names) flow.Node {
	t := &translator{fset: fset, names: names, pkg: file.Name.Name}
	stmts := make([]flow.Node, 0, len(file.Decls))
	for _, decl := range file.Decls {
		if n := t.decl(decl); n != nil {
			stmts = append(stmts, n)
		}
	}
	return &flow.Block{Stmts: stmts}
}

// ParseFile reads and parses path, detecting its enclosing project so the
// returned Names table is qualified by the correct module path.
func ParseFile(path string) (flow.Node, *Names, error) {
	det := repository.New(nil)
	project, err := det.Detect(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to detect project for %s: %w", path, err)
	}

	source, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, path, source, parser.ParseComments)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse Go source %s: %w", path, err)
	}

	names := NewNames(project.ModulePath)
	return File(fset, file, names), names, nil
}

// ParseBytes parses already-loaded Go source (e.g. fetched through afs)
// against a caller-supplied, already-qualified Names table, for callers
// that have their own project-detection pass (such as the CLI, which
// detects the project once per batch of files rather than once per
// file).
func ParseBytes(path string, source []byte, names *Names) (flow.Node, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, path, source, parser.ParseComments)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Go source %s: %w", path, err)
	}
	return File(fset, file, names), nil
}

// PackageDir translates every .go file of a directory into one merged
// flow.Node, flow-insensitively, mirroring how the analyzer is meant to
// consume a whole package (§4.3, §5).
func PackageDir(dir string) (flow.Node, *Names, error) {
	det := repository.New(nil)
	project, err := det.Detect(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to detect project for %s: %w", dir, err)
	}
	names := NewNames(project.ModulePath)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	var stmts []flow.Node
	fset := token.NewFileSet()
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".go" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		source, err := os.ReadFile(path)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		file, err := parser.ParseFile(fset, path, source, parser.ParseComments)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to parse Go source %s: %w", path, err)
		}
		stmts = append(stmts, File(fset, file, names))
	}
	return &flow.Block{Stmts: stmts}, names, nil
}

type translator struct {
	fset  *token.FileSet
	names *Names
	pkg   string
}

func (t *translator) decl(d ast.Decl) flow.Node {
	switch decl := d.(type) {
	case *ast.FuncDecl:
		return t.funcDecl(decl)
	case *ast.GenDecl:
		return t.genDecl(decl)
	default:
		return nil
	}
}

func (t *translator) funcDecl(decl *ast.FuncDecl) flow.Node {
	qualifier := t.pkg
	if decl.Recv != nil && len(decl.Recv.List) > 0 {
		qualifier = t.pkg + "." + receiverType(decl.Recv.List[0].Type)
	}
	name := t.names.forQualified(qualifier, decl.Name.Name)
	var body flow.Node
	if decl.Body != nil {
		body = t.block(decl.Body)
	}
	return &flow.FuncDef{Name: name, Body: body}
}

func receiverType(expr ast.Expr) string {
	switch e := expr.(type) {
	case *ast.StarExpr:
		return receiverType(e.X)
	case *ast.Ident:
		return e.Name
	default:
		return ""
	}
}

// genDecl handles top-level and block-scoped `var` groups. Each
// ValueSpec becomes its own VarDecl, one per declared identifier,
// mirroring how `var a, b = f(), g()` declares two independent bindings.
func (t *translator) genDecl(decl *ast.GenDecl) flow.Node {
	if decl.Tok != token.VAR {
		return nil
	}
	var decls []flow.Node
	for _, spec := range decl.Specs {
		valueSpec, ok := spec.(*ast.ValueSpec)
		if !ok {
			continue
		}
		for i, ident := range valueSpec.Names {
			if ident.Name == "_" {
				continue
			}
			var init flow.Node
			if i < len(valueSpec.Values) {
				init = t.expr(valueSpec.Values[i])
			}
			decls = append(decls, &flow.VarDecl{
				Name: t.names.forObject(ident.Obj, ident.Name),
				Init: init,
			})
		}
	}
	if len(decls) == 1 {
		return decls[0]
	}
	return &flow.Block{Stmts: decls}
}

func (t *translator) block(b *ast.BlockStmt) flow.Node {
	if b == nil {
		return nil
	}
	stmts := make([]flow.Node, 0, len(b.List))
	for _, s := range b.List {
		if n := t.stmt(s); n != nil {
			stmts = append(stmts, n)
		}
	}
	return &flow.Block{Stmts: stmts}
}

func (t *translator) stmt(s ast.Stmt) flow.Node {
	switch stmt := s.(type) {
	case *ast.ExprStmt:
		return t.expr(stmt.X)
	case *ast.AssignStmt:
		return t.assignStmt(stmt)
	case *ast.DeclStmt:
		if genDecl, ok := stmt.Decl.(*ast.GenDecl); ok {
			return t.genDecl(genDecl)
		}
		return nil
	case *ast.ReturnStmt:
		// No dedicated return-value rule in the core (SPEC_FULL.md §9):
		// walked generically for side effects only.
		var stmts []flow.Node
		for _, r := range stmt.Results {
			stmts = append(stmts, t.expr(r))
		}
		return &flow.Block{Stmts: stmts}
	case *ast.BlockStmt:
		return t.block(stmt)
	case *ast.IfStmt:
		var stmts []flow.Node
		if stmt.Init != nil {
			stmts = append(stmts, t.stmt(stmt.Init))
		}
		stmts = append(stmts, t.expr(stmt.Cond), t.block(stmt.Body))
		if stmt.Else != nil {
			stmts = append(stmts, t.stmt(stmt.Else))
		}
		return &flow.Block{Stmts: stmts}
	case *ast.ForStmt:
		return t.block(stmt.Body)
	case *ast.RangeStmt:
		return t.block(stmt.Body)
	default:
		return nil
	}
}

// assignStmt covers both `a = b` (token.ASSIGN, a genuine assignment edge)
// and `a := b` (token.DEFINE, which also introduces a's binding). Both
// map onto BinaryExpr{Op: OpAssign}; for DEFINE each identifier on the
// left is first declared by a VarDecl without initializer, so the
// assignment edge lands on a bound node, as it does for a `var`.
func (t *translator) assignStmt(stmt *ast.AssignStmt) flow.Node {
	var pairs []flow.Node
	for i, lhs := range stmt.Lhs {
		if id, ok := lhs.(*ast.Ident); ok && stmt.Tok == token.DEFINE && id.Name != "_" {
			pairs = append(pairs, &flow.VarDecl{Name: t.names.forObject(id.Obj, id.Name)})
		}
		var rhs ast.Expr
		switch {
		case len(stmt.Rhs) == len(stmt.Lhs):
			rhs = stmt.Rhs[i]
		case len(stmt.Rhs) == 1:
			rhs = stmt.Rhs[0]
		}
		if rhs == nil {
			continue
		}
		pairs = append(pairs, &flow.BinaryExpr{
			Op:    flow.OpAssign,
			Left:  t.expr(lhs),
			Right: t.expr(rhs),
		})
	}
	if len(pairs) == 1 {
		return pairs[0]
	}
	return &flow.Block{Stmts: pairs}
}

func (t *translator) expr(e ast.Expr) flow.Node {
	if e == nil {
		return nil
	}
	switch expr := e.(type) {
	case *ast.Ident:
		if expr.Name == "_" {
			return nil
		}
		if expr.Obj == nil || expr.Obj.Kind == ast.Fun {
			// Package-level functions are bound under their package-qualified
			// Name (see funcDecl); an identifier the parser left unresolved may
			// be declared in another file of the package, so it takes that form too.
			return &flow.NameRef{Name: t.names.forQualified(t.pkg, expr.Name)}
		}
		return &flow.NameRef{Name: t.names.forObject(expr.Obj, expr.Name)}
	case *ast.SelectorExpr:
		return &flow.NameRef{Qualifier: t.expr(expr.X), Member: expr.Sel.Name}
	case *ast.IndexExpr:
		return t.indexExpr(expr)
	case *ast.BinaryExpr:
		op := flow.OpOther
		if expr.Op == token.LOR {
			op = flow.OpLogicalOr
		}
		return &flow.BinaryExpr{Op: op, Left: t.expr(expr.X), Right: t.expr(expr.Y)}
	case *ast.FuncLit:
		return &flow.FuncDef{Body: t.block(expr.Body)}
	case *ast.CompositeLit:
		return t.compositeLit(expr)
	case *ast.ParenExpr:
		return t.expr(expr.X)
	case *ast.CallExpr:
		var stmts []flow.Node
		stmts = append(stmts, t.expr(expr.Fun))
		for _, arg := range expr.Args {
			stmts = append(stmts, t.expr(arg))
		}
		return &flow.Block{Stmts: stmts}
	default:
		return nil
	}
}

func (t *translator) indexExpr(expr *ast.IndexExpr) flow.Node {
	array := t.expr(expr.X)
	if lit, ok := expr.Index.(*ast.BasicLit); ok && lit.Kind == token.STRING {
		s := stringLitValue(lit.Value)
		return &flow.IndexExpr{Array: array, StringIndex: &s}
	}
	return &flow.IndexExpr{Array: array, Index: t.expr(expr.Index)}
}

func stringLitValue(raw string) string {
	if len(raw) >= 2 {
		return raw[1 : len(raw)-1]
	}
	return raw
}

// compositeLit handles struct and map literals with explicit keys as
// ObjectLiteral; positional (keyless) composite literals have no static
// member identity to key on, so each element is walked generically.
func (t *translator) compositeLit(lit *ast.CompositeLit) flow.Node {
	var inits []flow.ObjectInit
	var generic []flow.Node
	for _, elt := range lit.Elts {
		kv, ok := elt.(*ast.KeyValueExpr)
		if !ok {
			generic = append(generic, t.expr(elt))
			continue
		}
		inits = append(inits, flow.ObjectInit{
			Label: t.label(kv.Key),
			Value: t.expr(kv.Value),
		})
	}
	if len(inits) == 0 {
		return &flow.Block{Stmts: generic}
	}
	if len(generic) == 0 {
		return &flow.ObjectLiteral{Inits: inits}
	}
	// Mixed keyed/keyless elements (e.g. a partially-indexed array literal
	// `[5]int{1: a, b}`): walk the keyless ones for their side effects,
	// then the keyed literal last, so Block's generic "return the last
	// child's result" rule still surfaces the literal's own node.
	return &flow.Block{Stmts: append(generic, &flow.ObjectLiteral{Inits: inits})}
}

func (t *translator) label(key ast.Expr) flow.Label {
	switch k := key.(type) {
	case *ast.Ident:
		return flow.IdentLabel{Spelling: k.Name}
	case *ast.BasicLit:
		if k.Kind == token.STRING {
			return flow.StringLabel{Value: stringLitValue(k.Value)}
		}
	}
	return flow.ComputedLabel{Expr: t.expr(key)}
}
