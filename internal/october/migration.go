package october

import (
	"regexp"
	"sort"
)

// Table and column extraction is a pattern match over source text, not a
// parse. `Schema::dropIfExists('x')` counts as a table declaration too.
var (
	schemaTableRe = regexp.MustCompile(`Schema::(create|table|dropIfExists)\(\s*['"]([^'"]+)['"]`)
	columnRe      = regexp.MustCompile(`\$table->(\w+)\(\s*['"]([^'"]+)['"]`)
	idColumnRe    = regexp.MustCompile(`\$table->id\(\s*\)`)
	timestampsRe  = regexp.MustCompile(`\$table->(timestamps|nullableTimestamps|timestampsTz)\(\s*\)`)
	softDeletesRe = regexp.MustCompile(`\$table->softDeletes(Tz)?\(\s*\)`)
)

// Blueprint methods that take a column name but do not add a column
var nonColumnMethods = map[string]bool{
	"index":          true,
	"unique":         true,
	"primary":        true,
	"foreign":        true,
	"dropColumn":     true,
	"dropIndex":      true,
	"dropUnique":     true,
	"dropPrimary":    true,
	"dropForeign":    true,
	"renameColumn":   true,
	"renameIndex":    true,
	"dropIfExists":   true,
	"spatialIndex":   true,
	"fullText":       true,
	"dropTimestamps": true,
}

// TableReference is one `Schema::` call naming a table
type TableReference struct {
	Table  string `json:"table"`
	Op     string `json:"op"`
	Offset int    `json:"offset"`
}

// MigrationTables returns the tables a migration touches, in source order
func (r *Resolver) MigrationTables(c *Class) []TableReference {
	if c.Kind != KindMigration {
		return nil
	}
	return tableReferences(r.source(c.Path))
}

func tableReferences(src []byte) []TableReference {
	var refs []TableReference
	for _, m := range schemaTableRe.FindAllSubmatchIndex(src, -1) {
		refs = append(refs, TableReference{
			Op:     string(src[m[2]:m[3]]),
			Table:  string(src[m[4]:m[5]]),
			Offset: m[4],
		})
	}
	return refs
}

// ColumnsByTable maps each table of a migration to the columns declared in
// its section of the file. A section runs from one `Schema::` call to the next.
func (r *Resolver) ColumnsByTable(c *Class) map[string][]string {
	if c.Kind != KindMigration {
		return nil
	}
	src := r.source(c.Path)
	refs := tableReferences(src)

	result := make(map[string][]string)
	for i, ref := range refs {
		end := len(src)
		if i+1 < len(refs) {
			end = refs[i+1].Offset
		}
		cols := r.columns(src[ref.Offset:end])
		result[ref.Table] = appendUnique(result[ref.Table], cols...)
	}
	return result
}

// MigrationColumns returns every column declared anywhere in the migration, sorted
func (r *Resolver) MigrationColumns(c *Class) []string {
	var all []string
	for _, cols := range r.ColumnsByTable(c) {
		all = appendUnique(all, cols...)
	}
	sort.Strings(all)
	return all
}

func (r *Resolver) columns(section []byte) []string {
	var cols []string
	if r.project.Platform.UsesIdInMigrations() && idColumnRe.Match(section) {
		cols = append(cols, "id")
	}
	for _, m := range columnRe.FindAllSubmatch(section, -1) {
		if nonColumnMethods[string(m[1])] {
			continue
		}
		cols = appendUnique(cols, string(m[2]))
	}
	if timestampsRe.Match(section) {
		cols = appendUnique(cols, "created_at", "updated_at")
	}
	if softDeletesRe.Match(section) {
		cols = appendUnique(cols, "deleted_at")
	}
	return cols
}

func appendUnique(list []string, values ...string) []string {
	for _, v := range values {
		found := false
		for _, existing := range list {
			if existing == v {
				found = true
				break
			}
		}
		if !found {
			list = append(list, v)
		}
	}
	return list
}
