package october

import (
	"strings"

	"github.com/doITmagic/october-code-mcp/internal/phpast"
)

// CommandName returns the console name of a command: the first word of
// `$signature` on platforms that use signatures, `$name` otherwise. The other
// property is tried when the preferred one is missing.
func (r *Resolver) CommandName(c *Class) string {
	if c.Kind != KindCommand {
		return ""
	}
	_, class := r.classOf(c)

	order := []string{"name", "signature"}
	if r.project.Platform.UsesCommandSignature() {
		order = []string{"signature", "name"}
	}
	for _, prop := range order {
		p := class.Property(prop)
		if p == nil {
			continue
		}
		value, ok := phpast.StringValue(p.Value)
		if !ok {
			continue
		}
		if fields := strings.Fields(value); len(fields) > 0 {
			return fields[0]
		}
	}
	return ""
}
