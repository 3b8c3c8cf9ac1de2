package phpast

import (
	"strings"

	"github.com/VKCOM/php-parser/pkg/ast"
	"github.com/VKCOM/php-parser/pkg/token"
)

// Class is a class declaration together with its members
type Class struct {
	Node *ast.StmtClass
	// Name is empty for anonymous classes
	Name       string
	Extends    *Name
	Implements []Name
	Modifiers  []string
	Traits     []Name
	Properties []*Property
	Methods    []*Method
	// DocProperties are the @property tags of the class docblock
	DocProperties []DocProperty
	Range         Range
}

// Anonymous reports whether the class was declared with `new class`
func (c *Class) Anonymous() bool {
	return c.Name == ""
}

// IsAbstract reports whether the class carries the abstract modifier
func (c *Class) IsAbstract() bool {
	return hasModifier(c.Modifiers, "abstract")
}

// Property is one declared class property
type Property struct {
	Name      string
	Modifiers []string
	// Value is the default value expression, nil when none
	Value ast.Vertex
	Range Range
}

// IsStatic reports whether the property is static
func (p *Property) IsStatic() bool { return hasModifier(p.Modifiers, "static") }

// Visibility returns public, protected or private
func (p *Property) Visibility() string { return visibility(p.Modifiers) }

// Method is one declared class method
type Method struct {
	Node       *ast.StmtClassMethod
	Name       string
	Modifiers  []string
	Parameters []string
	Range      Range
	// NameRange covers the method identifier only
	NameRange Range
}

// Visibility returns public, protected or private
func (m *Method) Visibility() string { return visibility(m.Modifiers) }

// IsStatic reports whether the method is static
func (m *Method) IsStatic() bool { return hasModifier(m.Modifiers, "static") }

// Body returns the statements of the method, nil for abstract methods
func (m *Method) Body() []ast.Vertex {
	if list, ok := m.Node.Stmt.(*ast.StmtStmtList); ok {
		return list.Stmts
	}
	return nil
}

func newClass(n *ast.StmtClass) *Class {
	c := &Class{
		Node:      n,
		Name:      nameString(n.Name),
		Modifiers: modifiers(n.Modifiers),
		Range:     RangeOf(n),
	}

	if n.Extends != nil {
		if name, ok := NameOf(n.Extends); ok {
			c.Extends = &name
		}
	}
	for _, iface := range n.Implements {
		if name, ok := NameOf(iface); ok {
			c.Implements = append(c.Implements, name)
		}
	}

	c.DocProperties = parseDocProperties(classDocComment(n))

	for _, stmt := range n.Stmts {
		switch s := stmt.(type) {
		case *ast.StmtPropertyList:
			mods := modifiers(s.Modifiers)
			for _, prop := range s.Props {
				p, ok := prop.(*ast.StmtProperty)
				if !ok {
					continue
				}
				c.Properties = append(c.Properties, &Property{
					Name:      variableName(p.Var),
					Modifiers: mods,
					Value:     p.Expr,
					Range:     RangeOf(p),
				})
			}
		case *ast.StmtClassMethod:
			name := nameString(s.Name)
			if name == "" {
				continue
			}
			m := &Method{
				Node:      s,
				Name:      name,
				Modifiers: modifiers(s.Modifiers),
				Range:     RangeOf(s),
				NameRange: RangeOf(s.Name),
			}
			for _, param := range s.Params {
				if p, ok := param.(*ast.Parameter); ok {
					m.Parameters = append(m.Parameters, variableName(p.Var))
				}
			}
			c.Methods = append(c.Methods, m)
		case *ast.StmtTraitUse:
			for _, trait := range s.Traits {
				if name, ok := NameOf(trait); ok {
					c.Traits = append(c.Traits, name)
				}
			}
		}
	}
	return c
}

// Property returns the declared property with the given name (without `$`)
func (c *Class) Property(name string) *Property {
	if c == nil {
		return nil
	}
	for _, p := range c.Properties {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// Method returns the declared method with the given name, compared
// case-insensitively
func (c *Class) Method(name string) *Method {
	if c == nil {
		return nil
	}
	for _, m := range c.Methods {
		if strings.EqualFold(m.Name, name) {
			return m
		}
	}
	return nil
}

func modifiers(nodes []ast.Vertex) []string {
	var mods []string
	for _, mod := range nodes {
		if id, ok := mod.(*ast.Identifier); ok {
			mods = append(mods, strings.ToLower(string(id.Value)))
		}
	}
	return mods
}

func hasModifier(mods []string, target string) bool {
	for _, m := range mods {
		if m == target {
			return true
		}
	}
	return false
}

func visibility(mods []string) string {
	for _, m := range mods {
		switch m {
		case "public", "protected", "private":
			return m
		}
	}
	return "public"
}

func variableName(n ast.Vertex) string {
	if v, ok := n.(*ast.ExprVariable); ok {
		if id, ok := v.Name.(*ast.Identifier); ok {
			return strings.TrimPrefix(string(id.Value), "$")
		}
	}
	return ""
}

// classDocComment finds the docblock attached to the first token of a class
// declaration: its first modifier, or the `class` keyword.
func classDocComment(n *ast.StmtClass) string {
	for _, mod := range n.Modifiers {
		if id, ok := mod.(*ast.Identifier); ok {
			if doc := docComment(id.IdentifierTkn); doc != "" {
				return doc
			}
		}
	}
	return docComment(n.ClassTkn)
}

func docComment(tok *token.Token) string {
	if tok == nil {
		return ""
	}
	doc := ""
	for _, ff := range tok.FreeFloating {
		if ff.ID.String() == "T_DOC_COMMENT" {
			// The closest docblock wins
			doc = string(ff.Value)
		}
	}
	return doc
}
