package october

import (
	"log"
	"regexp"
	"strings"

	"github.com/doITmagic/october-code-mcp/internal/files"
	"github.com/doITmagic/october-code-mcp/internal/phpast"
)

// Resolver computes derived facts from the current content of entity
// files. Nothing is stored on entities: every call re-reads the file
// through the FileSystem and reuses the parse cache when the content is
// unchanged. Unresolvable references are omitted, never reported as errors.
type Resolver struct {
	fs      files.FileSystem
	cache   *phpast.Cache
	project *Project
}

// NewResolver creates a resolver. cache may be nil.
func NewResolver(fsys files.FileSystem, cache *phpast.Cache, project *Project) *Resolver {
	return &Resolver{fs: fsys, cache: cache, project: project}
}

// Project returns the project the resolver answers for
func (r *Resolver) Project() *Project {
	return r.project
}

// parse returns the parsed file at path, or an empty file when unreadable
func (r *Resolver) parse(path string) *phpast.File {
	content, err := r.fs.ReadFile(path)
	if err != nil {
		return phpast.Parse(nil)
	}
	return r.cache.Parse(path, content)
}

// source returns the content of path, or nil when unreadable
func (r *Resolver) source(path string) []byte {
	content, err := r.fs.ReadFile(path)
	if err != nil {
		log.Printf("[WARN] Failed to read %s: %v", path, err)
		return nil
	}
	return content
}

// classOf parses the file of an entity. The class is nil when the file no
// longer declares one.
func (r *Resolver) classOf(c *Class) (*phpast.File, *phpast.Class) {
	file := r.parse(c.Path)
	return file, file.Class
}

// Method is a method reference with its location
type Method struct {
	Name  string       `json:"name"`
	Range phpast.Range `json:"range"`
}

var ajaxHandlerRe = regexp.MustCompile(`^on[A-Z]`)

// AjaxMethods lists the public `on*` handlers of controllers, components and widgets
func (r *Resolver) AjaxMethods(c *Class) []Method {
	if !c.Kind.HasAjaxMethods() {
		return nil
	}
	_, class := r.classOf(c)
	if class == nil {
		return nil
	}
	var result []Method
	for _, m := range class.Methods {
		if m.Visibility() == "public" && ajaxHandlerRe.MatchString(m.Name) {
			result = append(result, Method{Name: m.Name, Range: m.NameRange})
		}
	}
	return result
}

// BehaviorAttachment is one resolved `$implement` entry
type BehaviorAttachment struct {
	FQN      string       `json:"fqn"`
	Behavior *Class       `json:"-"`
	Range    phpast.Range `json:"range"`
}

// ImplementedBehaviors returns every class named in `$implement`, resolved
// to a fully-qualified name, whether or not it is indexed
func (r *Resolver) ImplementedBehaviors(c *Class) []BehaviorAttachment {
	if !c.Kind.HasBehaviors() {
		return nil
	}
	file, class := r.classOf(c)
	prop := class.Property("implement")
	if prop == nil {
		return nil
	}

	var result []BehaviorAttachment
	for _, item := range phpast.ArrayItems(prop.Value) {
		fqn := behaviorFQN(file, item)
		if fqn == "" {
			continue
		}
		result = append(result, BehaviorAttachment{FQN: fqn, Range: item.Range})
	}
	return result
}

// behaviorFQN resolves one `$implement` entry: `Foo::class` through the
// imports, or a string written with `.` or `\` separators
func behaviorFQN(file *phpast.File, item phpast.ArrayItem) string {
	if name, ok := phpast.ClassConstant(item.Value); ok {
		return file.ResolveName(name)
	}
	s, ok := phpast.StringValue(item.Value)
	if !ok {
		return ""
	}
	// `@` marks a soft implement: attached only when the behavior exists
	s = strings.TrimPrefix(strings.TrimSpace(s), "@")
	s = strings.ReplaceAll(s, ".", `\`)
	return strings.TrimLeft(s, `\`)
}

// Behaviors returns the `$implement` entries that resolve to an indexed
// behavior of the matching kind anywhere in the project
func (r *Resolver) Behaviors(c *Class) []BehaviorAttachment {
	kind, ok := c.Kind.behaviorKind()
	if !ok {
		return nil
	}
	var result []BehaviorAttachment
	for _, att := range r.ImplementedBehaviors(c) {
		if behavior := r.project.findByFqn(kind, att.FQN); behavior != nil {
			att.Behavior = behavior
			result = append(result, att)
		}
	}
	return result
}

// Traits returns the fully-qualified traits used in the class body
func (r *Resolver) Traits(c *Class) []string {
	file, class := r.classOf(c)
	if class == nil {
		return nil
	}
	result := make([]string, 0, len(class.Traits))
	for _, t := range class.Traits {
		result = append(result, file.ResolveName(t))
	}
	return result
}
