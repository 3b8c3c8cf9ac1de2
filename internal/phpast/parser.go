package phpast

import (
	"bytes"
	"log"
	"strings"

	"github.com/VKCOM/php-parser/pkg/ast"
	"github.com/VKCOM/php-parser/pkg/conf"
	"github.com/VKCOM/php-parser/pkg/errors"
	"github.com/VKCOM/php-parser/pkg/parser"
	"github.com/VKCOM/php-parser/pkg/position"
	"github.com/VKCOM/php-parser/pkg/version"
)

// Range is a source range in a file. Positions are byte offsets.
type Range struct {
	StartLine int `json:"start_line"`
	EndLine   int `json:"end_line"`
	StartPos  int `json:"start_pos"`
	EndPos    int `json:"end_pos"`
}

// RangeOf returns the source range of a node, or the zero Range when the
// parser attached none.
func RangeOf(n ast.Vertex) Range {
	if n == nil {
		return Range{}
	}
	return fromPosition(n.GetPosition())
}

func fromPosition(p *position.Position) Range {
	if p == nil {
		return Range{}
	}
	return Range{
		StartLine: p.StartLine,
		EndLine:   p.EndLine,
		StartPos:  p.StartPos,
		EndPos:    p.EndPos,
	}
}

// File holds the facts extracted from one PHP source file
type File struct {
	Source    []byte
	Root      ast.Vertex
	Namespace string
	Uses      *UseTable
	// Class is the first class declared in the file, or the anonymous class
	// of a top-level `return new class ...` statement.
	Class *Class
	// Returned is the expression of the first top-level return statement
	Returned ast.Vertex
	// Errors counts syntax errors the parser recovered from
	Errors int
}

// Parse parses PHP source. It never fails: malformed source yields a File
// with whatever could be recovered, and an empty File when nothing could.
func Parse(src []byte) *File {
	f := &File{Source: src, Uses: NewUseTable()}
	if len(bytes.TrimSpace(src)) == 0 {
		return f
	}

	root, errCount := parseSource(src)
	f.Errors = errCount
	if root == nil {
		return f
	}
	f.Root = root

	if r, ok := root.(*ast.Root); ok {
		f.collect(r.Stmts)
	}
	return f
}

func parseSource(src []byte) (root ast.Vertex, errCount int) {
	defer func() {
		// The parser can panic on some truncated inputs
		if r := recover(); r != nil {
			log.Printf("[WARN] php parser panic: %v", r)
			root = nil
		}
	}()

	var parserErrors []*errors.Error
	node, err := parser.Parse(src, conf.Config{
		Version: &version.Version{Major: 8, Minor: 0},
		ErrorHandlerFunc: func(e *errors.Error) {
			parserErrors = append(parserErrors, e)
		},
	})
	if err != nil {
		return nil, len(parserErrors)
	}
	return node, len(parserErrors)
}

// collect walks top-level statements. Bracketed namespaces are descended into.
func (f *File) collect(stmts []ast.Vertex) {
	for _, stmt := range stmts {
		switch n := stmt.(type) {
		case *ast.StmtNamespace:
			f.Namespace = nameString(n.Name)
			if n.Stmts != nil {
				f.collect(n.Stmts)
			}
		case *ast.StmtUseList:
			if isClassUse(n.Type) {
				for _, u := range n.Uses {
					f.addUse("", u)
				}
			}
		case *ast.StmtGroupUseList:
			if isClassUse(n.Type) {
				prefix := nameString(n.Prefix)
				for _, u := range n.Uses {
					f.addUse(prefix, u)
				}
			}
		case *ast.StmtClass:
			if f.Class == nil {
				f.Class = newClass(n)
			}
		case *ast.StmtReturn:
			if f.Returned == nil {
				f.Returned = n.Expr
			}
			if f.Class == nil {
				if nw, ok := n.Expr.(*ast.ExprNew); ok {
					if cls, ok := nw.Class.(*ast.StmtClass); ok {
						f.Class = newClass(cls)
					}
				}
			}
		}
	}
}

// isClassUse reports whether a use list imports classes (not functions or constants)
func isClassUse(typ ast.Vertex) bool {
	if typ == nil {
		return true
	}
	id, ok := typ.(*ast.Identifier)
	if !ok {
		return true
	}
	kind := strings.ToLower(string(id.Value))
	return kind != "function" && kind != "const"
}

func (f *File) addUse(prefix string, node ast.Vertex) {
	use, ok := node.(*ast.StmtUse)
	if !ok || !isClassUse(use.Type) {
		return
	}
	name := nameString(use.Use)
	if name == "" {
		return
	}
	if prefix != "" {
		name = prefix + `\` + name
	}
	alias := ""
	if id, ok := use.Alias.(*ast.Identifier); ok {
		alias = string(id.Value)
	}
	f.Uses.Add(name, alias, RangeOf(use))
}

// Snippet returns the source text covered by a node
func (f *File) Snippet(n ast.Vertex) string {
	r := RangeOf(n)
	if r.EndPos <= r.StartPos || r.StartPos < 0 || r.EndPos > len(f.Source) {
		return ""
	}
	return string(f.Source[r.StartPos:r.EndPos])
}

// nameString joins the parts of a name node with `\`, without a leading separator
func nameString(n ast.Vertex) string {
	switch v := n.(type) {
	case *ast.Name:
		return joinParts(v.Parts)
	case *ast.NameFullyQualified:
		return joinParts(v.Parts)
	case *ast.NameRelative:
		return joinParts(v.Parts)
	case *ast.Identifier:
		return string(v.Value)
	}
	return ""
}

func joinParts(parts []ast.Vertex) string {
	names := make([]string, 0, len(parts))
	for _, part := range parts {
		if np, ok := part.(*ast.NamePart); ok {
			names = append(names, string(np.Value))
		}
	}
	return strings.Join(names, `\`)
}
