package workspace

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/doITmagic/october-code-mcp/internal/config"
	"github.com/doITmagic/october-code-mcp/internal/october"
)

func TestManagerStartWatcherRegistersWatcher(t *testing.T) {
	root := t.TempDir()

	mgr := NewManager(config.DefaultConfig())

	if err := mgr.StartWatcher(root); err != nil {
		t.Fatalf("StartWatcher failed: %v", err)
	}

	mgr.watchersMu.Lock()
	watcher, ok := mgr.watchers[root]
	mgr.watchersMu.Unlock()
	if !ok {
		t.Fatalf("expected watcher for %s", root)
	}
	if watcher == nil {
		t.Fatalf("watcher for %s is nil", root)
	}
	t.Cleanup(func() { mgr.StopWatcher(root) })

	// Starting the watcher again for the same root should reuse the same instance
	if err := mgr.StartWatcher(root); err != nil {
		t.Fatalf("second StartWatcher failed: %v", err)
	}

	mgr.watchersMu.Lock()
	defer mgr.watchersMu.Unlock()
	if len(mgr.watchers) != 1 {
		t.Fatalf("expected exactly one watcher, got %d", len(mgr.watchers))
	}
	if mgr.watchers[root] != watcher {
		t.Fatalf("expected watcher instance to be reused for %s", root)
	}
}

func TestOpFor(t *testing.T) {
	cases := map[fsnotify.Op]Op{
		fsnotify.Create:                  Changed,
		fsnotify.Write:                   Changed,
		fsnotify.Remove:                  Deleted,
		fsnotify.Rename:                  Deleted,
		fsnotify.Create | fsnotify.Write: Changed,
	}
	for in, want := range cases {
		if got := opFor(in); got != want {
			t.Errorf("opFor(%v) = %v, want %v", in, got, want)
		}
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestWatcherIndexesNewFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "composer.json"), `{"require": {"october/rain": "^3.0"}}`)
	writeFile(t, filepath.Join(root, "plugins", "acme", "blog", "Plugin.php"), "<?php namespace Acme\\Blog;\nclass Plugin {}\n")
	if err := os.MkdirAll(filepath.Join(root, "plugins", "acme", "blog", "models"), 0755); err != nil {
		t.Fatal(err)
	}

	cfg := config.DefaultConfig()
	cfg.Watch.DebounceMs = 20
	mgr := NewManager(cfg)
	t.Cleanup(mgr.CloseAll)

	info, err := mgr.Open(context.Background(), root)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if !mgr.isWatching(info.Root) {
		t.Fatalf("expected %s to be watched", info.Root)
	}

	modelPath := filepath.Join(root, "plugins", "acme", "blog", "models", "Post.php")
	writeFile(t, modelPath, "<?php namespace Acme\\Blog\\Models;\nclass Post extends \\Model {}\n")

	deadline := time.Now().Add(5 * time.Second)
	for mgr.FindEntity(modelPath) == nil {
		if time.Now().After(deadline) {
			t.Fatalf("model %s was never indexed", modelPath)
		}
		time.Sleep(20 * time.Millisecond)
	}
	if cls := mgr.FindEntity(modelPath); cls.Kind != october.KindModel {
		t.Fatalf("expected a model, got %s", cls.Kind)
	}

	if err := os.Remove(modelPath); err != nil {
		t.Fatal(err)
	}
	for mgr.FindEntity(modelPath) != nil {
		if time.Now().After(deadline) {
			t.Fatalf("model %s was never removed", modelPath)
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func TestWatcherFollowsMovedInTrees(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "composer.json"), `{"require": {"october/rain": "^3.0"}}`)
	if err := os.MkdirAll(filepath.Join(root, "plugins", "acme"), 0755); err != nil {
		t.Fatal(err)
	}

	// a complete plugin prepared elsewhere and moved in at once
	staged := filepath.Join(t.TempDir(), "shop")
	writeFile(t, filepath.Join(staged, "Plugin.php"), "<?php namespace Acme\\Shop;\nclass Plugin {}\n")
	writeFile(t, filepath.Join(staged, "models", "Order.php"), "<?php namespace Acme\\Shop\\Models;\nclass Order extends \\Model {}\n")

	cfg := config.DefaultConfig()
	cfg.Watch.DebounceMs = 20
	mgr := NewManager(cfg)
	t.Cleanup(mgr.CloseAll)

	if _, err := mgr.Open(context.Background(), root); err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	plugin := filepath.Join(root, "plugins", "acme", "shop")
	if err := os.Rename(staged, plugin); err != nil {
		t.Fatal(err)
	}
	orderPath := filepath.Join(plugin, "models", "Order.php")
	waitFor(t, "the moved-in plugin", func() bool { return mgr.FindEntity(orderPath) != nil })

	// models/ came in with the move; edits below it must still be seen
	invoicePath := filepath.Join(plugin, "models", "Invoice.php")
	writeFile(t, invoicePath, "<?php namespace Acme\\Shop\\Models;\nclass Invoice extends \\Model {}\n")
	waitFor(t, "the new model", func() bool { return mgr.FindEntity(invoicePath) != nil })
}
