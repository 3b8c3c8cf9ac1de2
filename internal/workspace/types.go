package workspace

import (
	"time"

	"github.com/doITmagic/october-code-mcp/internal/october"
)

// Info describes an opened project
type Info struct {
	// Root is the absolute path to the project root directory
	Root string `json:"root"`

	// ID is a stable, unique identifier for this project (hash of Root)
	ID string `json:"id"`

	// Version is the detected platform version, e.g. "v3.5"
	Version string `json:"version,omitempty"`

	// Markers are the root markers found (e.g. "artisan", "composer.json")
	Markers []string `json:"markers,omitempty"`

	// OpenedAt is when the project was indexed
	OpenedAt time.Time `json:"opened_at,omitempty"`

	// Stats summarizes the initial indexing pass
	Stats october.Stats `json:"stats"`

	// Watching is true while file notifications update the project
	Watching bool `json:"watching"`
}

// Op is a file change kind reported to HandleChange
type Op int

const (
	// Changed covers both creation and modification
	Changed Op = iota
	Deleted
)

func (o Op) String() string {
	if o == Deleted {
		return "deleted"
	}
	return "changed"
}
