package october

import (
	"log"
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// title upper-cases the first letter of each word. Casers are stateful, so
// one is built per call.
func title(s string) string {
	return cases.Title(language.Und, cases.NoLower).String(s)
}

// pluginCode derives Vendor.Plugin from the Plugin.php namespace, falling
// back to the title-cased directory names
func (ix *Indexer) pluginCode(vendorDir, pluginDir, pluginPath string) string {
	content, err := ix.fs.ReadFile(filepath.Join(pluginPath, "Plugin.php"))
	if err == nil {
		file := ix.cache.Parse(filepath.Join(pluginPath, "Plugin.php"), content)
		if parts := strings.Split(file.Namespace, `\`); len(parts) == 2 && parts[0] != "" && parts[1] != "" {
			return parts[0] + "." + parts[1]
		}
	}
	return title(vendorDir) + "." + title(pluginDir)
}

// Discover finds every owner directory of the project. Owners already
// present are kept.
func (ix *Indexer) Discover() {
	p := ix.project

	if p.App == nil && p.Platform.HasAppDirectory() {
		appPath := filepath.Join(p.Root, "app")
		if ix.fs.IsDir(appPath) && !ix.fs.Excluded(appPath) {
			p.AddAppDirectory(NewOwner(OwnerApp, "app", appPath))
		}
	}

	modulesDir := filepath.Join(p.Root, "modules")
	modules, err := ix.fs.ListDirectories(modulesDir, false)
	if err != nil {
		log.Printf("[WARN] Failed to list modules in %s: %v", modulesDir, err)
	}
	for _, name := range modules {
		path := filepath.Join(modulesDir, name)
		if ix.ownerAt(path) == nil {
			p.AddModule(NewOwner(OwnerModule, name, path))
		}
	}

	pluginsDir := filepath.Join(p.Root, p.Options.PluginsDir)
	vendors, err := ix.fs.ListDirectories(pluginsDir, false)
	if err != nil {
		log.Printf("[WARN] Failed to list plugin vendors in %s: %v", pluginsDir, err)
	}
	for _, vendor := range vendors {
		plugins, err := ix.fs.ListDirectories(filepath.Join(pluginsDir, vendor), false)
		if err != nil {
			log.Printf("[WARN] Failed to list plugins of vendor %s: %v", vendor, err)
			continue
		}
		for _, plugin := range plugins {
			ix.discoverPlugin(filepath.Join(pluginsDir, vendor, plugin))
		}
	}

	themesDir := filepath.Join(p.Root, p.Options.ThemesDir)
	themes, err := ix.fs.ListDirectories(themesDir, false)
	if err != nil {
		log.Printf("[WARN] Failed to list themes in %s: %v", themesDir, err)
	}
	for _, name := range themes {
		path := filepath.Join(themesDir, name)
		if ix.ownerAt(path) == nil {
			p.AddTheme(NewOwner(OwnerTheme, name, path))
		}
	}
}

// discoverPlugin registers the plugin at path when it has a Plugin.php
func (ix *Indexer) discoverPlugin(path string) *Owner {
	if existing := ix.ownerAt(path); existing != nil {
		return existing
	}
	if !ix.fs.Exists(filepath.Join(path, "Plugin.php")) {
		return nil
	}
	vendor := filepath.Base(filepath.Dir(path))
	owner := NewOwner(OwnerPlugin, ix.pluginCode(vendor, filepath.Base(path), path), path)
	ix.project.AddPlugin(owner)
	return owner
}

// ownerAt returns the owner rooted exactly at path
func (ix *Indexer) ownerAt(path string) *Owner {
	path = filepath.Clean(path)
	for _, o := range ix.project.Owners() {
		if o.Path == path {
			return o
		}
	}
	return nil
}

// discoverOwnerFor creates the owner a new file belongs to, if its
// directory follows an owner convention
func (ix *Indexer) discoverOwnerFor(path string) *Owner {
	p := ix.project
	rel, ok := p.relative(path)
	if !ok {
		return nil
	}
	parts := strings.Split(rel, string(filepath.Separator))

	switch {
	case parts[0] == "app" && p.Platform.HasAppDirectory() && p.App == nil:
		appPath := filepath.Join(p.Root, "app")
		if ix.fs.IsDir(appPath) {
			p.AddAppDirectory(NewOwner(OwnerApp, "app", appPath))
			return p.App
		}
	case parts[0] == "modules" && len(parts) >= 2:
		modulePath := filepath.Join(p.Root, "modules", parts[1])
		if ix.fs.IsDir(modulePath) && !ix.fs.Excluded(modulePath) {
			owner := NewOwner(OwnerModule, parts[1], modulePath)
			p.AddModule(owner)
			return owner
		}
	case parts[0] == p.Options.PluginsDir && len(parts) >= 3:
		pluginPath := filepath.Join(p.Root, parts[0], parts[1], parts[2])
		if ix.fs.Excluded(pluginPath) {
			return nil
		}
		return ix.discoverPlugin(pluginPath)
	case parts[0] == p.Options.ThemesDir && len(parts) >= 2:
		themePath := filepath.Join(p.Root, parts[0], parts[1])
		if ix.fs.IsDir(themePath) && !ix.fs.Excluded(themePath) {
			owner := NewOwner(OwnerTheme, parts[1], themePath)
			p.AddTheme(owner)
			return owner
		}
	}
	return nil
}
