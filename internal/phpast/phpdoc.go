package phpast

import (
	"regexp"
	"strings"
)

// DocProperty is a magic property declared in a class docblock
type DocProperty struct {
	Name        string
	Type        string
	Description string
	ReadOnly    bool
}

var docPropertyRe = regexp.MustCompile(`^@property(-read|-write)?\s+(?:([^\s$]+)\s+)?\$([A-Za-z_][A-Za-z0-9_]*)(?:\s+(.*))?$`)

// parseDocProperties extracts @property, @property-read and @property-write tags
func parseDocProperties(docComment string) []DocProperty {
	if docComment == "" {
		return nil
	}

	var props []DocProperty
	for _, line := range cleanDocLines(docComment) {
		m := docPropertyRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		props = append(props, DocProperty{
			Name:        m[3],
			Type:        m[2],
			Description: strings.TrimSpace(m[4]),
			ReadOnly:    m[1] == "-read",
		})
	}
	return props
}

// cleanDocLines strips comment delimiters and leading stars
func cleanDocLines(docComment string) []string {
	lines := strings.Split(docComment, "\n")
	clean := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		line = strings.TrimPrefix(line, "/**")
		line = strings.TrimSuffix(line, "*/")
		line = strings.TrimSpace(line)
		line = strings.TrimPrefix(line, "*")
		line = strings.TrimSpace(line)
		if line != "" {
			clean = append(clean, line)
		}
	}
	return clean
}
