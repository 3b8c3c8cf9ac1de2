package files

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

func TestOSFileSystem_ListFiles(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"models/Post.php":               "<?php",
		"models/post/fields.yaml":       "fields: {}",
		"models/Comment.PHP":            "<?php",
		"node_modules/pkg/index.php":    "<?php",
		"models/legacy/Old.php":         "<?php",
		"updates/2020/create_posts.php": "<?php",
		"updates/version.yaml":          "1.0.1: First",
	})

	fsys := NewOSFileSystem("legacy")

	flat, err := fsys.ListFiles(filepath.Join(root, "models"), false, ".php")
	require.NoError(t, err)
	assert.Equal(t, []string{"Comment.PHP", "Post.php"}, flat)

	deep, err := fsys.ListFiles(root, true, ".php")
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join("models", "Comment.PHP"),
		filepath.Join("models", "Post.php"),
		filepath.Join("updates", "2020", "create_posts.php"),
	}, deep)

	all, err := fsys.ListFiles(filepath.Join(root, "updates"), false)
	require.NoError(t, err)
	assert.Equal(t, []string{"version.yaml"}, all)
}

func TestOSFileSystem_MissingDirectoryListsNothing(t *testing.T) {
	fsys := NewOSFileSystem()

	got, err := fsys.ListFiles(filepath.Join(t.TempDir(), "nope"), true)
	assert.NoError(t, err)
	assert.Empty(t, got)

	dirs, err := fsys.ListDirectories(filepath.Join(t.TempDir(), "nope"), false)
	assert.NoError(t, err)
	assert.Empty(t, dirs)
}

func TestOSFileSystem_ListDirectories(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"acme/blog/Plugin.php":      "<?php",
		"acme/shop/Plugin.php":      "<?php",
		"acme/shop/models/Item.php": "<?php",
		"rainlab/user/Plugin.php":   "<?php",
	})

	fsys := NewOSFileSystem()

	top, err := fsys.ListDirectories(root, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"acme", "rainlab"}, top)

	nested, err := fsys.ListDirectories(filepath.Join(root, "acme"), false)
	require.NoError(t, err)
	assert.Equal(t, []string{"blog", "shop"}, nested)
}

func TestOSFileSystem_ExcludedGlobs(t *testing.T) {
	fsys := NewOSFileSystem("tmp*", "plugins/**/tests")

	assert.True(t, fsys.Excluded("/srv/app/tmp-cache"))
	assert.True(t, fsys.Excluded("/srv/app/plugins/acme/blog/tests"))
	assert.False(t, fsys.Excluded("/srv/app/plugins/acme/blog/models"))
	assert.True(t, fsys.Excluded("/srv/app/plugins/acme/blog/updates/vendor"))
}

func TestOverlay_PrefersBuffer(t *testing.T) {
	mem := NewMemFS()
	mem.WriteFile("/p/models/Post.php", "disk")

	overlay := NewOverlay(mem)

	content, err := overlay.ReadFile("/p/models/Post.php")
	require.NoError(t, err)
	assert.Equal(t, "disk", string(content))

	overlay.SetBuffer("/p/models/Post.php", []byte("live"))
	content, err = overlay.ReadFile("/p/models/Post.php")
	require.NoError(t, err)
	assert.Equal(t, "live", string(content))

	// A buffer for a file that is not on disk yet still exists
	overlay.SetBuffer("/p/models/Draft.php", []byte("new"))
	assert.True(t, overlay.Exists("/p/models/Draft.php"))

	overlay.ClearBuffer("/p/models/Post.php")
	content, err = overlay.ReadFile("/p/models/Post.php")
	require.NoError(t, err)
	assert.Equal(t, "disk", string(content))
}

func TestMemFS_Listing(t *testing.T) {
	mem := NewMemFS("legacy")
	mem.WriteFile("/p/plugins/acme/blog/Plugin.php", "<?php")
	mem.WriteFile("/p/plugins/acme/blog/models/Post.php", "<?php")
	mem.WriteFile("/p/plugins/acme/blog/legacy/Old.php", "<?php")
	mem.WriteFile("/p/plugins/acme/blog/vendor/x/Y.php", "<?php")

	files, err := mem.ListFiles("/p/plugins/acme/blog", true, ".php")
	require.NoError(t, err)
	assert.Equal(t, []string{"Plugin.php", filepath.Join("models", "Post.php")}, files)

	dirs, err := mem.ListDirectories("/p/plugins", false)
	require.NoError(t, err)
	assert.Equal(t, []string{"acme"}, dirs)

	assert.True(t, mem.IsDir("/p/plugins/acme"))
	assert.False(t, mem.IsDir("/p/plugins/acme/blog/Plugin.php"))

	mem.Remove("/p/plugins/acme/blog/models")
	assert.False(t, mem.Exists("/p/plugins/acme/blog/models/Post.php"))

	_, err = mem.ReadFile("/p/missing.php")
	assert.ErrorIs(t, err, os.ErrNotExist)
}
