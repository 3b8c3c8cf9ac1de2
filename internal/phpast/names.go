package phpast

import (
	"strings"

	"github.com/VKCOM/php-parser/pkg/ast"
)

// NameKind tells how a class reference was written in source
type NameKind int

const (
	// Unqualified is a bare name: `Foo`
	Unqualified NameKind = iota
	// Qualified contains a separator but no leading one: `Sub\Foo`
	Qualified
	// FullyQualified starts with a separator: `\App\Foo`
	FullyQualified
)

func (k NameKind) String() string {
	switch k {
	case Qualified:
		return "qualified"
	case FullyQualified:
		return "fully-qualified"
	default:
		return "unqualified"
	}
}

// Name is a class reference as written, without any leading separator
type Name struct {
	Kind  NameKind
	Value string
}

// NewName classifies a textual reference such as `\App\Foo` or `Sub\Foo`
func NewName(s string) Name {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, `\`) {
		return Name{Kind: FullyQualified, Value: strings.TrimLeft(s, `\`)}
	}
	if strings.Contains(s, `\`) {
		return Name{Kind: Qualified, Value: s}
	}
	return Name{Kind: Unqualified, Value: s}
}

// NameOf converts a name node. ok is false for anything that is not a name.
func NameOf(n ast.Vertex) (Name, bool) {
	switch v := n.(type) {
	case *ast.NameFullyQualified:
		return Name{Kind: FullyQualified, Value: joinParts(v.Parts)}, true
	case *ast.Name:
		if len(v.Parts) > 1 {
			return Name{Kind: Qualified, Value: joinParts(v.Parts)}, true
		}
		return Name{Kind: Unqualified, Value: joinParts(v.Parts)}, true
	case *ast.NameRelative:
		// namespace\Foo is relative to the current namespace
		return Name{Kind: Qualified, Value: "namespace\\" + joinParts(v.Parts)}, true
	case *ast.Identifier:
		return Name{Kind: Unqualified, Value: string(v.Value)}, true
	}
	return Name{}, false
}

// Use is one imported class
type Use struct {
	FQN   string
	Alias string
	Range Range
}

// UseTable maps import aliases to fully-qualified names. Aliases compare
// case-insensitively, as class names do in PHP.
type UseTable struct {
	uses    []Use
	byAlias map[string]int
}

// NewUseTable creates an empty alias table
func NewUseTable() *UseTable {
	return &UseTable{byAlias: make(map[string]int)}
}

// Add records `use fqn as alias`. An empty alias defaults to the last segment.
func (t *UseTable) Add(fqn, alias string, r Range) {
	fqn = strings.TrimLeft(fqn, `\`)
	if alias == "" {
		alias = lastSegment(fqn)
	}
	t.byAlias[strings.ToLower(alias)] = len(t.uses)
	t.uses = append(t.uses, Use{FQN: fqn, Alias: alias, Range: r})
}

// Lookup returns the FQN imported under alias
func (t *UseTable) Lookup(alias string) (string, bool) {
	if t == nil {
		return "", false
	}
	i, ok := t.byAlias[strings.ToLower(alias)]
	if !ok {
		return "", false
	}
	return t.uses[i].FQN, true
}

// All returns the imports in source order
func (t *UseTable) All() []Use {
	if t == nil {
		return nil
	}
	return append([]Use(nil), t.uses...)
}

// ResolveName turns a reference into an absolute FQN using the file's
// namespace and imports:
//   - fully-qualified: the leading separator is dropped
//   - qualified: an imported first segment is expanded, otherwise the
//     current namespace is prepended
//   - unqualified: an import wins, otherwise the current namespace is prepended
func (f *File) ResolveName(n Name) string {
	return resolve(n, f.Namespace, f.Uses)
}

// ResolveString resolves a class reference written as text
func (f *File) ResolveString(s string) string {
	return f.ResolveName(NewName(s))
}

func resolve(n Name, namespace string, uses *UseTable) string {
	if n.Value == "" {
		return ""
	}
	switch n.Kind {
	case FullyQualified:
		return n.Value
	case Qualified:
		if rest, ok := strings.CutPrefix(n.Value, "namespace\\"); ok {
			return qualify(namespace, rest)
		}
		head, tail, _ := strings.Cut(n.Value, `\`)
		if fqn, ok := uses.Lookup(head); ok {
			return fqn + `\` + tail
		}
		return qualify(namespace, n.Value)
	default:
		if fqn, ok := uses.Lookup(n.Value); ok {
			return fqn
		}
		return qualify(namespace, n.Value)
	}
}

// ResolveExtends resolves an `extends` target the way the classifier expects:
// an imported alias is expanded, anything else is taken as already absolute.
// This is what lets a bare `Model` match the Model allow-list.
func (f *File) ResolveExtends(n Name) string {
	if n.Value == "" {
		return ""
	}
	switch n.Kind {
	case FullyQualified:
		return n.Value
	case Qualified:
		head, tail, _ := strings.Cut(n.Value, `\`)
		if fqn, ok := f.Uses.Lookup(head); ok {
			return fqn + `\` + tail
		}
		return n.Value
	default:
		if fqn, ok := f.Uses.Lookup(n.Value); ok {
			return fqn
		}
		return n.Value
	}
}

func qualify(namespace, name string) string {
	if namespace == "" {
		return name
	}
	return namespace + `\` + name
}

func lastSegment(fqn string) string {
	if i := strings.LastIndex(fqn, `\`); i >= 0 {
		return fqn[i+1:]
	}
	return fqn
}

// ShortName returns the last segment of a class name
func ShortName(fqn string) string {
	return lastSegment(strings.TrimLeft(fqn, `\`))
}
