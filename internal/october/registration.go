package october

import (
	"sort"
	"strings"

	"github.com/VKCOM/php-parser/pkg/ast"

	"github.com/doITmagic/october-code-mcp/internal/phpast"
)

// Permission is a registered backend permission
type Permission struct {
	Code  string       `json:"code"`
	Label string       `json:"label,omitempty"`
	Tab   string       `json:"tab,omitempty"`
	Range phpast.Range `json:"range"`
}

// NavigationItem is a main menu entry or, with a Parent, a side menu entry.
// Code is `main` or `main.side`.
type NavigationItem struct {
	Code   string       `json:"code"`
	Parent string       `json:"parent,omitempty"`
	Label  string       `json:"label,omitempty"`
	Range  phpast.Range `json:"range"`
}

// Registration is what an owner registers through its registration file
type Registration struct {
	Permissions   []Permission     `json:"permissions"`
	Navigation    []NavigationItem `json:"navigation"`
	TwigFunctions []string         `json:"twig_functions"`
	TwigFilters   []string         `json:"twig_filters"`
}

// Registration parses the registration file of a backend owner. Plugins and
// the app directory return arrays from register* methods; module service
// providers call register* on the manager objects instead.
func (r *Resolver) Registration(o *Owner) *Registration {
	reg := &Registration{}
	path := o.RegistrationFile()
	if path == "" || !r.fs.Exists(path) {
		return reg
	}
	file := r.parse(path)

	if o.Kind == OwnerModule {
		r.collectRegistrationCalls(file, reg)
	} else if file.Class != nil {
		r.collectRegistrationMethods(file.Class, reg)
	}

	sort.Strings(reg.TwigFunctions)
	sort.Strings(reg.TwigFilters)
	return reg
}

func (r *Resolver) collectRegistrationMethods(class *phpast.Class, reg *Registration) {
	for _, expr := range phpast.ReturnedExpressions(class.Method("registerPermissions")) {
		reg.Permissions = append(reg.Permissions, permissionsFrom(expr)...)
	}
	for _, expr := range phpast.ReturnedExpressions(class.Method("registerNavigation")) {
		reg.Navigation = append(reg.Navigation, navigationFrom(expr)...)
	}
	for _, expr := range phpast.ReturnedExpressions(class.Method("registerMarkupTags")) {
		reg.TwigFunctions = appendUnique(reg.TwigFunctions, arrayKeys(phpast.Lookup(expr, "functions"))...)
		reg.TwigFilters = appendUnique(reg.TwigFilters, arrayKeys(phpast.Lookup(expr, "filters"))...)
	}
}

func (r *Resolver) collectRegistrationCalls(file *phpast.File, reg *Registration) {
	for _, call := range phpast.FindCalls(file.Root) {
		if call.Kind == phpast.FunctionCallKind {
			continue
		}
		items := lastArrayArgument(call.Args)
		if items == nil {
			continue
		}
		switch strings.ToLower(call.Name) {
		case "registerpermissions":
			reg.Permissions = append(reg.Permissions, permissionsFrom(items)...)
		case "registermenuitems", "registermainmenuitems":
			reg.Navigation = append(reg.Navigation, navigationFrom(items)...)
		case "registerfunctions":
			reg.TwigFunctions = appendUnique(reg.TwigFunctions, arrayKeys(items)...)
		case "registerfilters":
			reg.TwigFilters = appendUnique(reg.TwigFilters, arrayKeys(items)...)
		}
	}
}

func lastArrayArgument(args []ast.Vertex) ast.Vertex {
	for i := len(args) - 1; i >= 0; i-- {
		if phpast.IsArray(args[i]) {
			return args[i]
		}
	}
	return nil
}

func permissionsFrom(expr ast.Vertex) []Permission {
	var result []Permission
	for _, item := range phpast.ArrayItems(expr) {
		code, ok := phpast.KeyString(item.Key)
		if !ok {
			continue
		}
		result = append(result, Permission{
			Code:  code,
			Label: labelOf(phpast.Lookup(item.Value, "label")),
			Tab:   labelOf(phpast.Lookup(item.Value, "tab")),
			Range: item.Range,
		})
	}
	return result
}

func navigationFrom(expr ast.Vertex) []NavigationItem {
	var result []NavigationItem
	for _, item := range phpast.ArrayItems(expr) {
		main, ok := phpast.KeyString(item.Key)
		if !ok {
			continue
		}
		result = append(result, NavigationItem{
			Code:  main,
			Label: labelOf(phpast.Lookup(item.Value, "label")),
			Range: item.Range,
		})
		for _, side := range phpast.ArrayItems(phpast.Lookup(item.Value, "sideMenu")) {
			code, ok := phpast.KeyString(side.Key)
			if !ok {
				continue
			}
			result = append(result, NavigationItem{
				Code:   main + "." + code,
				Parent: main,
				Label:  labelOf(phpast.Lookup(side.Value, "label")),
				Range:  side.Range,
			})
		}
	}
	return result
}

// labelOf reads a label literal or the key passed to a translation helper
func labelOf(expr ast.Vertex) string {
	if s, ok := phpast.StringValue(expr); ok {
		return s
	}
	if s, ok := translationCallKey(expr); ok {
		return s
	}
	return ""
}

func arrayKeys(expr ast.Vertex) []string {
	var keys []string
	for _, item := range phpast.ArrayItems(expr) {
		if key, ok := phpast.KeyString(item.Key); ok {
			keys = append(keys, key)
		}
	}
	return keys
}
