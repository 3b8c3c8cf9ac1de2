package platform

// Platform wraps the detected version of one project and answers the
// capability questions that gate indexing and resolution.
type Platform struct {
	version Version
}

// New creates a Platform for v
func New(v Version) *Platform {
	return &Platform{version: v}
}

// Version returns the detected version
func (p *Platform) Version() Version {
	return p.version
}

func (p *Platform) String() string {
	return p.version.String()
}

// AtLeast reports whether the platform is v or newer
func (p *Platform) AtLeast(v Version) bool {
	return p.version >= v
}

// HasAppDirectory reports whether projects carry an `app` owner directory
func (p *Platform) HasAppDirectory() bool {
	return p.AtLeast(V3_0)
}

// SupportsAnonymousMigrations reports whether migrations may be written as
// `return new class extends Migration`
func (p *Platform) SupportsAnonymousMigrations() bool {
	return p.AtLeast(V3_0)
}

// UsesIdInMigrations reports whether `$table->id()` declares a column
func (p *Platform) UsesIdInMigrations() bool {
	return p.AtLeast(V2_0)
}

// UsesCommandSignature reports whether console commands are named by
// `$signature` instead of `$name`
func (p *Platform) UsesCommandSignature() bool {
	return p.AtLeast(V3_0)
}

// RootLangDirectory is the project-level translations directory
func (p *Platform) RootLangDirectory() string {
	if p.AtLeast(V3_0) {
		return "lang"
	}
	return "resources/lang"
}
