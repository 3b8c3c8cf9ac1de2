package october

import (
	"sort"
	"strings"
	"sync"

	"github.com/VKCOM/php-parser/pkg/ast"
	"github.com/gertd/go-pluralize"

	"github.com/doITmagic/october-code-mcp/internal/phpast"
)

// RelationTypes are the model properties that declare relations
var RelationTypes = []string{
	"belongsTo",
	"hasOne",
	"hasMany",
	"belongsToMany",
	"hasManyThrough",
	"hasOneThrough",
	"morphOne",
	"morphMany",
	"morphTo",
	"attachOne",
	"attachMany",
}

var (
	pluralizeOnce   sync.Once
	pluralizeClient *pluralize.Client
)

func plural(word string) string {
	pluralizeOnce.Do(func() {
		pluralizeClient = pluralize.NewClient()
	})
	return pluralizeClient.Plural(word)
}

// Table returns the `$table` property of a model, or the pluralized
// lowercase class name when none is declared
func (r *Resolver) Table(c *Class) string {
	if c.Kind != KindModel {
		return ""
	}
	_, class := r.classOf(c)
	if prop := class.Property("table"); prop != nil {
		if table, ok := phpast.StringValue(prop.Value); ok && table != "" {
			return table
		}
	}
	return plural(strings.ToLower(c.Name()))
}

// Relation is one resolved model relation
type Relation struct {
	Name  string       `json:"name"`
	Type  string       `json:"type"`
	Model *Class       `json:"-"`
	FQN   string       `json:"fqn"`
	Range phpast.Range `json:"range"`
}

// Relations resolves the relation properties of a model. Targets are looked
// up in the model's own owner only; anything else is dropped.
func (r *Resolver) Relations(c *Class) []Relation {
	if c.Kind != KindModel || c.Owner == nil {
		return nil
	}
	file, class := r.classOf(c)
	if class == nil {
		return nil
	}

	var result []Relation
	for _, relType := range RelationTypes {
		prop := class.Property(relType)
		if prop == nil {
			continue
		}
		for _, item := range phpast.ArrayItems(prop.Value) {
			name, ok := phpast.KeyString(item.Key)
			if !ok {
				continue
			}
			fqn := relationTarget(file, item.Value)
			if fqn == "" {
				continue
			}
			target := c.Owner.findByFqn(KindModel, fqn)
			if target == nil {
				continue
			}
			result = append(result, Relation{
				Name:  name,
				Type:  relType,
				Model: target,
				FQN:   target.FQN,
				Range: item.Range,
			})
		}
	}
	return result
}

// RelationMap indexes Relations by name
func (r *Resolver) RelationMap(c *Class) map[string]*Class {
	result := make(map[string]*Class)
	for _, rel := range r.Relations(c) {
		result[rel.Name] = rel.Model
	}
	return result
}

// relationTarget resolves `Foo::class`, a class string, or the first
// element of an options array holding either
func relationTarget(file *phpast.File, value ast.Vertex) string {
	if phpast.IsArray(value) {
		items := phpast.ArrayItems(value)
		if len(items) == 0 {
			return ""
		}
		value = items[0].Value
	}
	if name, ok := phpast.ClassConstant(value); ok {
		return file.ResolveName(name)
	}
	s, ok := phpast.StringValue(value)
	if !ok || s == "" {
		return ""
	}
	if strings.Contains(s, `\`) {
		return strings.TrimLeft(s, `\`)
	}
	return file.ResolveString(s)
}

// Attribute is a model attribute and where it was found
type Attribute struct {
	Name   string `json:"name"`
	Type   string `json:"type,omitempty"`
	Source string `json:"source"`
}

// DeclaredAttributes collects @property docblock tags, `$fillable` and
// `$jsonable` entries, first declaration wins
func (r *Resolver) DeclaredAttributes(c *Class) []Attribute {
	if c.Kind != KindModel {
		return nil
	}
	_, class := r.classOf(c)
	if class == nil {
		return nil
	}

	seen := make(map[string]bool)
	var result []Attribute
	add := func(attr Attribute) {
		if attr.Name == "" || seen[attr.Name] {
			return
		}
		seen[attr.Name] = true
		result = append(result, attr)
	}

	for _, doc := range class.DocProperties {
		add(Attribute{Name: doc.Name, Type: doc.Type, Source: "docblock"})
	}
	for _, prop := range []string{"fillable", "jsonable"} {
		if p := class.Property(prop); p != nil {
			for _, name := range phpast.StringList(p.Value) {
				add(Attribute{Name: name, Source: prop})
			}
		}
	}
	return result
}

// GuessedAttributes returns the columns that migrations of the model's owner
// declare on the model's table, sorted
func (r *Resolver) GuessedAttributes(c *Class) []Attribute {
	if c.Kind != KindModel || c.Owner == nil {
		return nil
	}
	table := r.Table(c)

	seen := make(map[string]bool)
	for _, migration := range c.Owner.Entities(KindMigration) {
		for _, col := range r.ColumnsByTable(migration)[table] {
			seen[col] = true
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)

	result := make([]Attribute, 0, len(names))
	for _, name := range names {
		result = append(result, Attribute{Name: name, Source: "migration"})
	}
	return result
}
