package october

import (
	"sort"

	"github.com/doITmagic/october-code-mcp/internal/phpast"
)

// ComponentDetails is what componentDetails() returns
type ComponentDetails struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ComponentDetails reads the array returned by componentDetails()
func (r *Resolver) ComponentDetails(c *Class) ComponentDetails {
	var details ComponentDetails
	if c.Kind != KindComponent {
		return details
	}
	_, class := r.classOf(c)
	for _, expr := range phpast.ReturnedExpressions(class.Method("componentDetails")) {
		values := phpast.StringMap(expr)
		if details.Name == "" {
			details.Name = values["name"]
		}
		if details.Description == "" {
			details.Description = values["description"]
		}
	}
	return details
}

// ComponentProperties returns the property keys defined by defineProperties(), sorted
func (r *Resolver) ComponentProperties(c *Class) []string {
	if c.Kind != KindComponent {
		return nil
	}
	_, class := r.classOf(c)

	var keys []string
	for _, expr := range phpast.ReturnedExpressions(class.Method("defineProperties")) {
		for _, item := range phpast.ArrayItems(expr) {
			if key, ok := phpast.KeyString(item.Key); ok {
				keys = appendUnique(keys, key)
			}
		}
	}
	sort.Strings(keys)
	return keys
}
