package workspace

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path/filepath"

	"github.com/doITmagic/october-code-mcp/internal/files"
)

// Detector finds the October CMS project root above a file path
type Detector struct {
	fs files.FileSystem

	// Markers confirming a root, in priority order
	markers []string

	// rootDirs are directories that, next to composer.json, mark a root.
	// A plugin's own composer.json never has them beside it.
	rootDirs []string
}

// NewDetector creates a detector using the default markers. pluginsDir is
// the configured plugins directory name.
func NewDetector(fsys files.FileSystem, pluginsDir string) *Detector {
	return &Detector{
		fs: fsys,
		markers: []string{
			"artisan",       // framework console entry point (highest priority)
			"composer.json", // only counts together with one of rootDirs
			"composer.lock",
		},
		rootDirs: []string{"modules", pluginsDir, "vendor/october/rain"},
	}
}

// DetectFromPath walks up from path to the nearest project root
func (d *Detector) DetectFromPath(path string) (*Info, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}

	current := absPath
	if !d.fs.IsDir(absPath) {
		current = filepath.Dir(absPath)
	}

	for {
		if found := d.findMarkers(current); len(found) > 0 {
			return &Info{
				Root:    current,
				ID:      generateProjectID(current),
				Markers: found,
			}, nil
		}

		parent := filepath.Dir(current)
		if parent == current {
			break
		}
		current = parent
	}

	return nil, fmt.Errorf(
		"could not detect an October CMS project for '%s'.\n\n"+
			"The path appears to be outside any project directory.\n"+
			"A project root holds an artisan file, or a composer.json next to\n"+
			"a modules or plugins directory.",
		absPath,
	)
}

// findMarkers returns the markers present in dir when dir qualifies as a root
func (d *Detector) findMarkers(dir string) []string {
	var found []string
	for _, marker := range d.markers {
		if d.fs.Exists(filepath.Join(dir, marker)) {
			found = append(found, marker)
		}
	}
	if len(found) == 0 {
		return nil
	}
	if found[0] == "artisan" {
		return found
	}
	for _, rootDir := range d.rootDirs {
		if d.fs.IsDir(filepath.Join(dir, filepath.FromSlash(rootDir))) {
			return append(found, rootDir)
		}
	}
	return nil
}

// generateProjectID creates a stable, unique ID from the project root path
func generateProjectID(rootPath string) string {
	h := sha256.Sum256([]byte(rootPath))
	return hex.EncodeToString(h[:])[:12]
}
