package phpast

import (
	"strings"

	"github.com/VKCOM/php-parser/pkg/ast"
	"github.com/VKCOM/php-parser/pkg/visitor"
	"github.com/VKCOM/php-parser/pkg/visitor/traverser"
)

// CallKind distinguishes the call syntaxes
type CallKind int

const (
	FunctionCallKind CallKind = iota
	MethodCallKind
	StaticCallKind
)

// Call is a call expression found while walking a subtree
type Call struct {
	Kind CallKind
	// Receiver is the variable name without `$` for method calls
	// (`this` for `$this->foo()`), the class name for static calls and
	// empty for function calls or computed receivers
	Receiver string
	Name     string
	Args     []ast.Vertex
	Range    Range
}

// callCollector gathers calls in traversal order
type callCollector struct {
	visitor.Null
	calls []Call
}

func (v *callCollector) ExprFunctionCall(n *ast.ExprFunctionCall) {
	name := nameString(n.Function)
	if name == "" {
		return
	}
	v.calls = append(v.calls, Call{
		Kind:  FunctionCallKind,
		Name:  name,
		Args:  Arguments(n.Args),
		Range: RangeOf(n),
	})
}

func (v *callCollector) ExprMethodCall(n *ast.ExprMethodCall) {
	v.addMethodCall(n.Var, n.Method, n.Args, RangeOf(n))
}

func (v *callCollector) ExprNullsafeMethodCall(n *ast.ExprNullsafeMethodCall) {
	v.addMethodCall(n.Var, n.Method, n.Args, RangeOf(n))
}

func (v *callCollector) addMethodCall(receiver, method ast.Vertex, args []ast.Vertex, r Range) {
	id, ok := method.(*ast.Identifier)
	if !ok {
		return
	}
	v.calls = append(v.calls, Call{
		Kind:     MethodCallKind,
		Receiver: variableName(receiver),
		Name:     string(id.Value),
		Args:     Arguments(args),
		Range:    r,
	})
}

func (v *callCollector) ExprStaticCall(n *ast.ExprStaticCall) {
	id, ok := n.Call.(*ast.Identifier)
	if !ok {
		return
	}
	v.calls = append(v.calls, Call{
		Kind:     StaticCallKind,
		Receiver: nameString(n.Class),
		Name:     string(id.Value),
		Args:     Arguments(n.Args),
		Range:    RangeOf(n),
	})
}

// FindCalls returns every call expression beneath n, outermost first
func FindCalls(n ast.Vertex) []Call {
	if n == nil {
		return nil
	}
	collector := &callCollector{}
	traverser.NewTraverser(collector).Traverse(n)
	return collector.calls
}

// FindMethodCalls returns the calls named name (case-insensitive) made on
// any receiver beneath n
func FindMethodCalls(n ast.Vertex, name string) []Call {
	var result []Call
	for _, call := range FindCalls(n) {
		if call.Kind == MethodCallKind && strings.EqualFold(call.Name, name) {
			result = append(result, call)
		}
	}
	return result
}
