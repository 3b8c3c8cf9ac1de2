package october

import (
	"path/filepath"
	"regexp"
	"sort"
)

// eventCallRe matches an event fired with a literal name directly after the
// opening parenthesis
var eventCallRe = regexp.MustCompile(`(Event::fire|->fireSystemEvent|->fireViewEvent)\((?:'([^']+)'|"([^"]+)")`)

// EventReference is one place an event is fired. Offset is the byte offset
// of the first character of the event name.
type EventReference struct {
	Name   string `json:"name"`
	Call   string `json:"call"`
	Path   string `json:"path"`
	Offset int    `json:"offset"`
}

// FindEvents scans source text for fired events
func FindEvents(path string, src []byte) []EventReference {
	var refs []EventReference
	for _, m := range eventCallRe.FindAllSubmatchIndex(src, -1) {
		start, end := m[4], m[5]
		if start < 0 {
			start, end = m[6], m[7]
		}
		refs = append(refs, EventReference{
			Name:   string(src[start:end]),
			Call:   string(src[m[2]:m[3]]),
			Path:   path,
			Offset: start,
		})
	}
	return refs
}

// Events scans every PHP file of every backend owner
func (r *Resolver) Events() []EventReference {
	var refs []EventReference
	for _, owner := range r.project.BackendOwners() {
		names, err := r.fs.ListFiles(owner.Path, true, ".php")
		if err != nil {
			continue
		}
		for _, name := range names {
			path := filepath.Join(owner.Path, name)
			refs = append(refs, FindEvents(path, r.source(path))...)
		}
	}
	return refs
}

// EventNames returns the distinct fired event names, sorted
func (r *Resolver) EventNames() []string {
	seen := make(map[string]bool)
	var names []string
	for _, ref := range r.Events() {
		if !seen[ref.Name] {
			seen[ref.Name] = true
			names = append(names, ref.Name)
		}
	}
	sort.Strings(names)
	return names
}
