package platform

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/doITmagic/october-code-mcp/internal/files"
)

const (
	corePackage     = "october/rain"
	umbrellaPackage = "october/all"
)

var (
	// ErrNotOctoberProject means a manifest exists but requires neither the
	// umbrella nor the core package
	ErrNotOctoberProject = errors.New("not an October CMS project")
	// ErrVersionNotDetected means no lockfile, manifest or vendor signal matched
	ErrVersionNotDetected = errors.New("platform version not detected")
)

type composerLock struct {
	Packages    []composerPackage `json:"packages"`
	PackagesDev []composerPackage `json:"packages-dev"`
}

type composerPackage struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type composerManifest struct {
	Require map[string]string `json:"require"`
}

// Detect picks the platform version of the project at root. Signals are
// tried in order, first match wins:
//  1. the core package pinned in composer.lock
//  2. the umbrella or core constraint in composer.json
//  3. an installed vendor/october/rain directory, taken as the oldest version
func Detect(fsys files.FileSystem, root string) (Version, error) {
	if v, ok := fromLockfile(fsys, filepath.Join(root, "composer.lock")); ok {
		return v, nil
	}

	v, err := fromManifest(fsys, filepath.Join(root, "composer.json"))
	if err == nil {
		return v, nil
	}
	if errors.Is(err, ErrNotOctoberProject) {
		return 0, err
	}

	if fsys.IsDir(filepath.Join(root, "vendor", "october", "rain")) {
		return V1_0, nil
	}
	return 0, fmt.Errorf("%s: %w", root, ErrVersionNotDetected)
}

func fromLockfile(fsys files.FileSystem, path string) (Version, bool) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		return 0, false
	}
	var lock composerLock
	if err := json.Unmarshal(data, &lock); err != nil {
		return 0, false
	}
	for _, pkg := range append(lock.Packages, lock.PackagesDev...) {
		if pkg.Name == corePackage {
			return ParseVersion(pkg.Version)
		}
	}
	return 0, false
}

func fromManifest(fsys files.FileSystem, path string) (Version, error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		return 0, ErrVersionNotDetected
	}
	var manifest composerManifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return 0, fmt.Errorf("failed to parse %s: %w", path, ErrVersionNotDetected)
	}

	constraint, ok := manifest.Require[umbrellaPackage]
	if !ok {
		constraint, ok = manifest.Require[corePackage]
	}
	if !ok {
		return 0, fmt.Errorf("%s requires neither %s nor %s: %w", path, umbrellaPackage, corePackage, ErrNotOctoberProject)
	}

	if v, ok := ParseVersion(constraint); ok {
		return v, nil
	}
	return 0, fmt.Errorf("unrecognized constraint %q in %s: %w", constraint, path, ErrVersionNotDetected)
}
