package october

import (
	"path/filepath"
	"strings"
)

// View is a template under an owner's views directory
type View struct {
	Key  string `json:"key"`
	Path string `json:"path"`
}

// Views lists the templates of a backend owner keyed as `code::dotted.path`,
// with every extension dropped
func (r *Resolver) Views(o *Owner) []View {
	if !o.IsBackend() {
		return nil
	}
	dir := filepath.Join(o.Path, "views")
	names, err := r.fs.ListFiles(dir, true)
	if err != nil {
		return nil
	}

	views := make([]View, 0, len(names))
	for _, name := range names {
		slashed := filepath.ToSlash(name)
		base := slashed
		if i := strings.LastIndex(slashed, "/"); i >= 0 {
			base = slashed[i+1:]
		}
		stem, _, _ := strings.Cut(base, ".")
		if stem == "" {
			continue
		}
		dotted := strings.ReplaceAll(strings.TrimSuffix(slashed, base)+stem, "/", ".")
		views = append(views, View{
			Key:  o.Code() + "::" + dotted,
			Path: filepath.Join(dir, name),
		})
	}
	return views
}
