package phpast

import (
	"strings"

	"github.com/VKCOM/php-parser/pkg/ast"
)

// ArrayItem is one entry of an array literal. Key is nil for list entries.
type ArrayItem struct {
	Key   ast.Vertex
	Value ast.Vertex
	Range Range
}

// ArrayItems returns the entries of an array literal, both `[...]` and
// `array(...)` forms. Anything else yields nil.
func ArrayItems(n ast.Vertex) []ArrayItem {
	arr, ok := n.(*ast.ExprArray)
	if !ok {
		return nil
	}
	items := make([]ArrayItem, 0, len(arr.Items))
	for _, item := range arr.Items {
		ai, ok := item.(*ast.ExprArrayItem)
		if !ok || ai.Val == nil {
			// trailing commas produce empty items
			continue
		}
		items = append(items, ArrayItem{Key: ai.Key, Value: ai.Val, Range: RangeOf(ai)})
	}
	return items
}

// IsArray reports whether n is an array literal
func IsArray(n ast.Vertex) bool {
	_, ok := n.(*ast.ExprArray)
	return ok
}

// IsList reports whether n is an array literal without explicit keys
func IsList(n ast.Vertex) bool {
	if !IsArray(n) {
		return false
	}
	for _, item := range ArrayItems(n) {
		if item.Key != nil {
			return false
		}
	}
	return true
}

// StringValue returns the value of a string literal
func StringValue(n ast.Vertex) (string, bool) {
	switch v := n.(type) {
	case *ast.ScalarString:
		return unquote(string(v.Value)), true
	case *ast.ScalarEncapsed:
		var sb strings.Builder
		for _, part := range v.Parts {
			if sp, ok := part.(*ast.ScalarEncapsedStringPart); ok {
				sb.WriteString(string(sp.Value))
			}
		}
		return sb.String(), true
	}
	return "", false
}

// KeyString returns an array key as text: string and integer literals only
func KeyString(n ast.Vertex) (string, bool) {
	if s, ok := StringValue(n); ok {
		return s, true
	}
	if num, ok := n.(*ast.ScalarLnumber); ok {
		return string(num.Value), true
	}
	return "", false
}

// ClassConstant returns the class of a `Foo::class` expression
func ClassConstant(n ast.Vertex) (Name, bool) {
	fetch, ok := n.(*ast.ExprClassConstFetch)
	if !ok {
		return Name{}, false
	}
	id, ok := fetch.Const.(*ast.Identifier)
	if !ok || !strings.EqualFold(string(id.Value), "class") {
		return Name{}, false
	}
	return NameOf(fetch.Class)
}

// StringList returns the string entries of a list literal
func StringList(n ast.Vertex) []string {
	var result []string
	for _, item := range ArrayItems(n) {
		if s, ok := StringValue(item.Value); ok && s != "" {
			result = append(result, s)
		}
	}
	return result
}

// StringMap returns the string-to-string entries of an associative literal
func StringMap(n ast.Vertex) map[string]string {
	result := make(map[string]string)
	for _, item := range ArrayItems(n) {
		key, ok := KeyString(item.Key)
		if !ok {
			continue
		}
		if val, ok := StringValue(item.Value); ok {
			result[key] = val
		}
	}
	return result
}

// Lookup returns the value stored under key in an associative literal
func Lookup(n ast.Vertex, key string) ast.Vertex {
	for _, item := range ArrayItems(n) {
		if k, ok := KeyString(item.Key); ok && k == key {
			return item.Value
		}
	}
	return nil
}

// FunctionCall returns the callee name and unwrapped arguments of a plain
// function call such as `trans('key')`
func FunctionCall(n ast.Vertex) (string, []ast.Vertex, bool) {
	call, ok := n.(*ast.ExprFunctionCall)
	if !ok {
		return "", nil, false
	}
	name := nameString(call.Function)
	if name == "" {
		return "", nil, false
	}
	return name, Arguments(call.Args), true
}

// Arguments unwraps argument nodes into their expressions
func Arguments(args []ast.Vertex) []ast.Vertex {
	exprs := make([]ast.Vertex, 0, len(args))
	for _, arg := range args {
		if a, ok := arg.(*ast.Argument); ok {
			exprs = append(exprs, a.Expr)
			continue
		}
		exprs = append(exprs, arg)
	}
	return exprs
}

// ReturnedExpressions collects the expressions of every return statement
// directly in a method body, in source order
func ReturnedExpressions(m *Method) []ast.Vertex {
	if m == nil {
		return nil
	}
	var result []ast.Vertex
	for _, stmt := range m.Body() {
		if ret, ok := stmt.(*ast.StmtReturn); ok && ret.Expr != nil {
			result = append(result, ret.Expr)
		}
	}
	return result
}

// unquote strips the delimiters of a PHP string literal and resolves the
// escapes that matter for identifiers and keys
func unquote(raw string) string {
	if len(raw) < 2 {
		return raw
	}
	quote := raw[0]
	if (quote != '\'' && quote != '"') || raw[len(raw)-1] != quote {
		return raw
	}
	body := raw[1 : len(raw)-1]
	if !strings.Contains(body, `\`) {
		return body
	}

	var sb strings.Builder
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c != '\\' || i+1 >= len(body) {
			sb.WriteByte(c)
			continue
		}
		next := body[i+1]
		switch {
		case next == '\\' || next == quote:
			sb.WriteByte(next)
			i++
		case quote == '"' && next == 'n':
			sb.WriteByte('\n')
			i++
		case quote == '"' && next == 't':
			sb.WriteByte('\t')
			i++
		case quote == '"' && next == '$':
			sb.WriteByte('$')
			i++
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String()
}
